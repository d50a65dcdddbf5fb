// Package auth implementa o cadastro e o login de usuários, emitindo o
// token JWT que resolve a identidade usada pelo rastreador de funil.
package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/automatize/funnel-tracker/internal/lib/password"
	"github.com/automatize/funnel-tracker/internal/models"
	"github.com/automatize/funnel-tracker/internal/storage/repository"
)

// ErrInvalidCredentials indica usuário inexistente ou senha incorreta.
var ErrInvalidCredentials = errors.New("invalid username or password")

// UserRepository define os métodos de armazenamento de usuários.
type UserRepository interface {
	RegisterUser(ctx context.Context, user models.User) (string, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// TokenMaker define a emissão de tokens de sessão.
type TokenMaker interface {
	GenerateToken(userUID, username, role string) (string, error)
}

// Service implementa o cadastro e o login.
type Service struct {
	repo  UserRepository
	maker TokenMaker
	log   *slog.Logger
}

// New cria um novo Service de autenticação.
func New(repo UserRepository, maker TokenMaker, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		maker: maker,
		log:   log,
	}
}

// Register cadastra um novo usuário com papel user e retorna o UID gerado.
func (s *Service) Register(ctx context.Context, email, username, plainPassword string) (string, error) {
	hash, err := password.GetHash(plainPassword)
	if err != nil {
		return "", err
	}

	uid, err := s.repo.RegisterUser(ctx, models.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         "user",
	})
	if err != nil {
		return "", err
	}

	s.log.Info("registered new user", slog.String("username", username))
	return uid, nil
}

// Login valida as credenciais e retorna um token JWT de sessão.
// Usuário inexistente e senha errada produzem o mesmo erro.
func (s *Service) Login(ctx context.Context, username, plainPassword string) (string, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if err := password.CompareHash(user.PasswordHash, plainPassword); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.maker.GenerateToken(user.UID, user.Username, user.Role)
	if err != nil {
		return "", err
	}
	return token, nil
}
