// Package config fornece as estruturas e a função de carga da configuração.
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config é a estrutura geral de configuração do serviço.
type Config struct {
	Env                     string        `yaml:"env" env-default:"local"`
	StorageConnectionString string        `yaml:"storage_connection_string"`
	RabbitConnection        string        `yaml:"rabbit_connection"`
	TrialSweepInterval      time.Duration `yaml:"trial_sweep_interval" env-default:"1h"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
}

// HTTPServer agrupa as opções do servidor HTTP.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:"0.0.0.0:8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection agrupa as opções de conexão com o Redis.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// JWTToken agrupa as opções do emissor de tokens JWT.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// MustLoad carrega a configuração do arquivo apontado por CONFIG_PATH.
// Encerra o processo se o arquivo não existir ou não puder ser lido.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
