// Package funneltracker monta e executa a aplicação: abre as conexões com
// Postgres, Redis e RabbitMQ, aplica as migrações, liga os serviços e
// sobe o servidor HTTP com desligamento gracioso.
package funneltracker

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/streadway/amqp"

	"github.com/automatize/funnel-tracker/internal/cache"
	"github.com/automatize/funnel-tracker/internal/config"
	libjwt "github.com/automatize/funnel-tracker/internal/lib/jwt"
	"github.com/automatize/funnel-tracker/internal/lib/rabbitmq"
	"github.com/automatize/funnel-tracker/internal/migrations"
	authservice "github.com/automatize/funnel-tracker/internal/services/auth"
	funnelservice "github.com/automatize/funnel-tracker/internal/services/funnel"
	sweeperservice "github.com/automatize/funnel-tracker/internal/services/sweeper"
	trialservice "github.com/automatize/funnel-tracker/internal/services/trial"
	"github.com/automatize/funnel-tracker/internal/storage/repository"
)

// App agrupa o servidor HTTP e os recursos que precisam ser liberados
// no desligamento.
type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *repository.Storage
	amqpConn *amqp.Connection
	amqpChan *amqp.Channel
	sweeper  *sweeperservice.Service
}

// New monta a aplicação a partir da configuração carregada.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	amqpConn, err := rabbitmq.Connect(cfg.RabbitConnection, 5, 3*time.Second)
	if err != nil {
		return nil, err
	}
	amqpChan, err := rabbitmq.SetupChannel(amqpConn, rabbitmq.GetNotificationQueues())
	if err != nil {
		return nil, err
	}

	jwtMaker := libjwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	funnelSvc := funnelservice.New(db, cacheRedis, logger)
	trialSvc := trialservice.New(db, logger)
	authSvc := authservice.New(db, jwtMaker, logger)
	sweeper := sweeperservice.New(db, cfg.TrialSweepInterval, logger)

	router := NewRouter(logger, jwtMaker, funnelSvc, trialSvc, authSvc)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:   srv,
		logger:   logger,
		db:       db,
		amqpConn: amqpConn,
		amqpChan: amqpChan,
		sweeper:  sweeper,
	}, nil
}

// Run sobe o servidor HTTP e o worker de varredura, e desliga os dois
// graciosamente quando o contexto é cancelado.
func (a *App) Run(ctx context.Context) error {
	go a.sweeper.Run(ctx, a.amqpChan)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.amqpChan.Close()
		_ = a.amqpConn.Close()
		_ = a.db.DB.Close()
		return err
	}
}
