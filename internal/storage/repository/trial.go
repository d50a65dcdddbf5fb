package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/automatize/funnel-tracker/internal/models"
)

// ErrTrialExists indica que já existe trial (ativo ou expirado) para a
// dupla (user_uid, product_slug). Mapeado da violação de unicidade do
// banco para que o chamador distinga de falhas genéricas.
var ErrTrialExists = errors.New("trial already exists for user and product")

// ListTrials retorna todos os trials do usuário, do mais antigo para o
// mais recente.
func (s *Storage) ListTrials(ctx context.Context, userUID string) ([]*models.FreeTrial, error) {
	const op = "storage.ListTrials"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, product_slug, product_title, status, expires_at, created_at
			  FROM free_trials
			  WHERE user_uid = $1
			  ORDER BY created_at`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.FreeTrial
	for rows.Next() {
		var item models.FreeTrial
		if err := rows.Scan(&item.ID, &item.UserUID, &item.ProductSlug, &item.ProductTitle,
			&item.Status, &item.ExpiresAt, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountActiveTrials conta quantos trials do usuário ainda estão ativos.
func (s *Storage) CountActiveTrials(ctx context.Context, userUID string) (int, error) {
	const op = "storage.CountActiveTrials"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*) FROM free_trials
			  WHERE user_uid = $1 AND status = 'active'`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, userUID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// TrialExists verifica se o usuário já possui trial para o produto,
// em qualquer status.
func (s *Storage) TrialExists(ctx context.Context, userUID, productSlug string) (bool, error) {
	const op = "storage.TrialExists"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT EXISTS (
			  SELECT 1 FROM free_trials
			  WHERE user_uid = $1 AND product_slug = $2)`
	var exists bool
	if err := s.DB.QueryRowContext(ctx, query, userUID, productSlug).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// InsertTrial insere um novo trial e retorna o ID gerado. A violação da
// restrição de unicidade (user_uid, product_slug) vira ErrTrialExists.
func (s *Storage) InsertTrial(ctx context.Context, trial models.FreeTrial) (int, error) {
	const op = "storage.InsertTrial"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO free_trials (user_uid, product_slug, product_title,
			      status, expires_at, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		trial.UserUID, trial.ProductSlug, trial.ProductTitle,
		trial.Status, trial.ExpiresAt, trial.CreatedAt).Scan(&newID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return 0, ErrTrialExists
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ExpireDueTrials marca como expirados os trials ativos cujo expires_at já
// passou e retorna as linhas alteradas. Equivale à rotina server-side
// update_expired_trials; trials nunca são removidos.
func (s *Storage) ExpireDueTrials(ctx context.Context) ([]*models.FreeTrial, error) {
	const op = "storage.ExpireDueTrials"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE free_trials
			  SET status = 'expired'
			  WHERE status = 'active' AND expires_at <= NOW()
			  RETURNING id, user_uid, product_slug, product_title, status, expires_at, created_at`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.FreeTrial
	for rows.Next() {
		var item models.FreeTrial
		if err := rows.Scan(&item.ID, &item.UserUID, &item.ProductSlug, &item.ProductTitle,
			&item.Status, &item.ExpiresAt, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
