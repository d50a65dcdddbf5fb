package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/automatize/funnel-tracker/internal/models"
)

// ErrUserExists indica que email ou username já estão cadastrados.
var ErrUserExists = errors.New("user already exists")

// ErrUserNotFound indica que o usuário não foi encontrado.
var ErrUserNotFound = errors.New("user not found")

// RegisterUser grava um novo usuário e retorna o UID gerado pelo banco.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (email, username, password_hash, role)
			  VALUES ($1, $2, $3, $4)
			  RETURNING uid`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.Username, user.PasswordHash, user.Role).Scan(&newUID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return "", ErrUserExists
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUserByUsername retorna o usuário pelo username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, username, password_hash, role, created_at
			  FROM users
			  WHERE username = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, username)

	err := row.Scan(&u.UID, &u.Email, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}
