// Package cache implementa um cache de curta duração sobre o Redis,
// com serialização JSON dos valores.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/automatize/funnel-tracker/internal/config"
)

// Cache encapsula o cliente Redis.
type Cache struct {
	Db *redis.Client
}

// InitServer abre a conexão com o Redis e valida com um ping.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{Db: db}, nil
}

// Get busca a chave no cache e desserializa o valor em result.
// Retorna false quando a chave não existe.
func (c *Cache) Get(key string, result any) (bool, error) {
	const op = "cache.Get"
	val, err := c.Db.Get(context.Background(), key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	err = json.Unmarshal([]byte(val), result)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Set grava o valor serializado em JSON com o tempo de vida informado.
func (c *Cache) Set(key string, value any, expiration time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Db.Set(context.Background(), key, jsonData, expiration).Err()
}

// Invalidate remove a chave do cache.
func (c *Cache) Invalidate(key string) error {
	return c.Db.Del(context.Background(), key).Err()
}
