// Package funnel implementa a lógica do funil de vendas: o registro de
// eventos imutáveis, o upsert da sessão abandonada aberta e o encerramento
// de sessões em status terminal.
package funnel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/automatize/funnel-tracker/internal/lib/sl"
	"github.com/automatize/funnel-tracker/internal/models"
	"github.com/automatize/funnel-tracker/internal/storage/repository"
)

// ErrNoUser indica chamada sem identidade resolvida. Este módulo nunca
// inventa uma identidade: sem usuário autenticado, nada é gravado.
var ErrNoUser = errors.New("no authenticated user")

// Repository define os métodos de armazenamento usados pelo funil.
type Repository interface {
	// SaveFunnelEvent insere um evento imutável e retorna o ID.
	SaveFunnelEvent(ctx context.Context, event models.FunnelEvent) (int, error)
	// FindOpenSession retorna a sessão open mais recente do usuário.
	FindOpenSession(ctx context.Context, userUID string) (*models.AbandonedSession, error)
	// InsertOpenSession cria uma nova sessão open e retorna o ID.
	InsertOpenSession(ctx context.Context, session models.AbandonedSession) (int, error)
	// UpdateOpenSession sobrescreve a sessão pelo ID, mantendo-a open.
	UpdateOpenSession(ctx context.Context, session models.AbandonedSession) (int, error)
	// CloseOpenSessions move as sessões open do usuário para um status terminal.
	CloseOpenSessions(ctx context.Context, userUID, status string, closedAt time.Time) (int, error)
	// ListFunnelEvents retorna os eventos do usuário com paginação.
	ListFunnelEvents(ctx context.Context, userUID string, limit, offset int) ([]*models.FunnelEvent, error)
}

// Cache descreve os métodos de cache usados para a sessão aberta.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service implementa as operações do funil sobre o repositório e o cache.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// New cria um novo Service do funil.
func New(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

func openSessionKey(userUID string) string {
	return fmt.Sprintf("funnel:open:%s", userUID)
}

// LogEvent grava um evento de funil para o usuário. Telemetria é
// best-effort: a falha de gravação é retornada, mas os chamadores podem
// ignorá-la sem comprometer o fluxo principal.
func (s *Service) LogEvent(ctx context.Context, userUID, eventType string, metadata map[string]any) error {
	if userUID == "" {
		return ErrNoUser
	}

	_, err := s.repo.SaveFunnelEvent(ctx, models.FunnelEvent{
		UserUID:   userUID,
		EventType: eventType,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	})
	if err != nil {
		s.log.Warn("failed to log funnel event",
			slog.String("event_type", eventType), sl.Err(err))
		return err
	}
	return nil
}

// TrackSession registra o evento correspondente ao estágio e faz o upsert
// da sessão aberta do usuário. Sequência: busca a sessão open mais recente
// (sem filtrar por estágio); se existir, sobrescreve a mesma linha; senão,
// insere uma nova. Retorna o ID da sessão.
//
// A janela entre a leitura e a escrita pode correr com outra aba do mesmo
// usuário; o rastreio do funil tolera isso por ser telemetria.
func (s *Service) TrackSession(ctx context.Context, userUID, stage string, items []models.CartLineSnapshot, totalAmount float64) (int, error) {
	if userUID == "" {
		return 0, ErrNoUser
	}

	eventType := models.EventCartUpdated
	if stage == models.StageCheckout {
		eventType = models.EventCheckoutView
	}
	// O registro do evento nunca bloqueia o upsert.
	_ = s.LogEvent(ctx, userUID, eventType, map[string]any{
		"stage":        stage,
		"items_count":  len(items),
		"total_amount": totalAmount,
	})

	now := time.Now()
	session := models.AbandonedSession{
		UserUID:     userUID,
		Stage:       stage,
		Status:      models.SessionOpen,
		CartItems:   items,
		TotalAmount: totalAmount,
		LastEventAt: now,
		UpdatedAt:   now,
		CreatedAt:   now,
	}

	current, err := s.repo.FindOpenSession(ctx, userUID)
	if err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
		return 0, err
	}

	if current != nil {
		session.ID = current.ID
		session.CreatedAt = current.CreatedAt
		if _, err := s.repo.UpdateOpenSession(ctx, session); err != nil {
			return 0, err
		}
	} else {
		newID, err := s.repo.InsertOpenSession(ctx, session)
		if err != nil {
			return 0, err
		}
		session.ID = newID
	}

	cacheKey := openSessionKey(userUID)
	if err := s.cache.Set(cacheKey, session, time.Hour); err != nil {
		s.log.Warn("failed to cache open session", slog.String("key", cacheKey), sl.Err(err))
	}

	return session.ID, nil
}

// CurrentOpenSession retorna a sessão aberta do usuário, usando o cache
// quando possível. Retorna repository.ErrSessionNotFound sem sessão aberta.
func (s *Service) CurrentOpenSession(ctx context.Context, userUID string) (*models.AbandonedSession, error) {
	if userUID == "" {
		return nil, ErrNoUser
	}

	var cached models.AbandonedSession
	cacheKey := openSessionKey(userUID)
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read open session from cache", slog.String("key", cacheKey), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	session, err := s.repo.FindOpenSession(ctx, userUID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(cacheKey, session, time.Hour); err != nil {
		s.log.Warn("failed to cache open session", slog.String("key", cacheKey), sl.Err(err))
	}
	return session, nil
}

// CloseSessions registra o evento de encerramento e move todas as sessões
// open do usuário para o status terminal informado. Idempotente: sem
// sessão aberta, é um no-op bem-sucedido. Não existe transição de volta
// a partir de cleared ou converted.
func (s *Service) CloseSessions(ctx context.Context, userUID, status string) error {
	if userUID == "" {
		return ErrNoUser
	}

	eventType := models.EventCartCleared
	if status == models.SessionConverted {
		eventType = models.EventOrderCreated
	}
	_ = s.LogEvent(ctx, userUID, eventType, map[string]any{"status": status})

	closed, err := s.repo.CloseOpenSessions(ctx, userUID, status, time.Now())
	if err != nil {
		return err
	}
	s.log.Info("closed open sessions",
		slog.String("status", status), slog.Int("count", closed))

	cacheKey := openSessionKey(userUID)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate open session cache", slog.String("key", cacheKey), sl.Err(err))
	}
	return nil
}

// ListEvents retorna o histórico de eventos do usuário com paginação.
func (s *Service) ListEvents(ctx context.Context, userUID string, limit, offset int) ([]*models.FunnelEvent, error) {
	if userUID == "" {
		return nil, ErrNoUser
	}
	return s.repo.ListFunnelEvents(ctx, userUID, limit, offset)
}
