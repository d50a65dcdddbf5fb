package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/automatize/funnel-tracker/internal/models"
)

// ErrSessionNotFound indica que o usuário não possui sessão com status open.
var ErrSessionNotFound = errors.New("open session not found")

// SaveFunnelEvent insere um evento de funil e retorna o ID gerado.
// Eventos nunca são atualizados nem removidos depois de gravados.
func (s *Storage) SaveFunnelEvent(ctx context.Context, event models.FunnelEvent) (int, error) {
	const op = "storage.SaveFunnelEvent"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO funnel_events (user_uid, event_type, metadata, created_at)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int
	err = s.DB.QueryRowContext(ctx, query,
		event.UserUID, event.EventType, metadata, event.CreatedAt).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListFunnelEvents retorna os eventos de um usuário, do mais recente para
// o mais antigo, com paginação.
func (s *Storage) ListFunnelEvents(ctx context.Context, userUID string, limit, offset int) ([]*models.FunnelEvent, error) {
	const op = "storage.ListFunnelEvents"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, event_type, metadata, created_at
			  FROM funnel_events
			  WHERE user_uid = $1
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.FunnelEvent
	for rows.Next() {
		var item models.FunnelEvent
		var metadata []byte
		if err := rows.Scan(&item.ID, &item.UserUID, &item.EventType, &metadata, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &item.Metadata); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// FindOpenSession retorna a sessão open mais recentemente atualizada do
// usuário, independente do estágio. Retorna ErrSessionNotFound quando o
// usuário não tem sessão aberta.
func (s *Storage) FindOpenSession(ctx context.Context, userUID string) (*models.AbandonedSession, error) {
	const op = "storage.FindOpenSession"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, stage, status, cart_items, total_amount,
			      last_event_at, updated_at, created_at
			  FROM abandoned_carts
			  WHERE user_uid = $1 AND status = 'open'
			  ORDER BY updated_at DESC
			  LIMIT 1`
	row := s.DB.QueryRowContext(ctx, query, userUID)

	var result models.AbandonedSession
	var cartItems []byte
	err := row.Scan(&result.ID, &result.UserUID, &result.Stage, &result.Status,
		&cartItems, &result.TotalAmount, &result.LastEventAt, &result.UpdatedAt, &result.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal(cartItems, &result.CartItems); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// InsertOpenSession cria uma nova sessão com status open e retorna o ID.
func (s *Storage) InsertOpenSession(ctx context.Context, session models.AbandonedSession) (int, error) {
	const op = "storage.InsertOpenSession"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	cartItems, err := json.Marshal(session.CartItems)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO abandoned_carts (user_uid, stage, status, cart_items,
			      total_amount, last_event_at, updated_at, created_at)
			  VALUES ($1, $2, 'open', $3, $4, $5, $6, $7)
			  RETURNING id`
	var newID int
	err = s.DB.QueryRowContext(ctx, query,
		session.UserUID, session.Stage, cartItems, session.TotalAmount,
		session.LastEventAt, session.UpdatedAt, session.CreatedAt).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpdateOpenSession sobrescreve a sessão identificada por session.ID com o
// novo estágio e o novo retrato do carrinho, forçando o status de volta
// para open. A identidade da linha é preservada na troca de estágio.
func (s *Storage) UpdateOpenSession(ctx context.Context, session models.AbandonedSession) (int, error) {
	const op = "storage.UpdateOpenSession"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	cartItems, err := json.Marshal(session.CartItems)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE abandoned_carts
			  SET stage = $1, status = 'open', cart_items = $2, total_amount = $3,
			      last_event_at = $4, updated_at = $5
			  WHERE id = $6`
	result, err := s.DB.ExecContext(ctx, query,
		session.Stage, cartItems, session.TotalAmount,
		session.LastEventAt, session.UpdatedAt, session.ID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// CloseOpenSessions move todas as sessões open do usuário para o status
// terminal informado (cleared ou converted), carimbando last_event_at e
// updated_at. Sem sessão aberta a operação é um no-op bem-sucedido.
func (s *Storage) CloseOpenSessions(ctx context.Context, userUID, status string, closedAt time.Time) (int, error) {
	const op = "storage.CloseOpenSessions"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE abandoned_carts
			  SET status = $1, last_event_at = $2, updated_at = $2
			  WHERE user_uid = $3 AND status = 'open'`
	result, err := s.DB.ExecContext(ctx, query, status, closedAt, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
