// Package sweeper executa a varredura periódica de expiração de trials e
// publica o aviso de cada trial expirado na fila de notificações.
//
// A varredura síncrona antes de cada leitura continua existindo no serviço
// de trials; este worker cobre o caso de baixo tráfego de leitura, em que
// trials vencidos ficariam visíveis como ativos por tempo indefinido.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/automatize/funnel-tracker/internal/lib/rabbitmq"
	"github.com/automatize/funnel-tracker/internal/lib/sl"
	"github.com/automatize/funnel-tracker/internal/models"
)

// TrialRepository define o método de varredura usado pelo worker.
type TrialRepository interface {
	ExpireDueTrials(ctx context.Context) ([]*models.FreeTrial, error)
}

// Service executa a varredura em intervalos fixos.
type Service struct {
	repo     TrialRepository
	interval time.Duration
	log      *slog.Logger
}

// New cria um novo Service de varredura.
func New(repo TrialRepository, interval time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		interval: interval,
		log:      log,
	}
}

// Run executa a varredura imediatamente e depois a cada intervalo,
// até o contexto ser cancelado.
func (s *Service) Run(ctx context.Context, channel *amqp.Channel) {
	s.runSweep(ctx, channel)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runSweep(ctx, channel)
		}
	}
}

func (s *Service) runSweep(ctx context.Context, channel *amqp.Channel) {
	s.log.Info("starting trial expiry sweep")
	expired, err := s.repo.ExpireDueTrials(ctx)
	if err != nil {
		s.log.Error("failed to expire due trials", sl.Err(err))
		return
	}
	if len(expired) == 0 {
		s.log.Info("no expired trials found")
		return
	}
	s.log.Info("expired trials", slog.Int("count", len(expired)))

	for _, t := range expired {
		notice := models.TrialExpiredNotice{
			UserUID:      t.UserUID,
			ProductSlug:  t.ProductSlug,
			ProductTitle: t.ProductTitle,
			ExpiredAt:    t.ExpiresAt,
		}
		if err := rabbitmq.PublishMessage(channel, "notifications", "trial-expired", notice); err != nil {
			s.log.Error("failed to publish trial-expired notice", sl.Err(err))
		}
	}
}
