// Package trial implementa a máquina de estados dos trials gratuitos:
// ativação com cota e unicidade por produto, varredura de expiração
// disparada antes de cada leitura e consulta do tempo restante.
package trial

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/automatize/funnel-tracker/internal/lib/sl"
	"github.com/automatize/funnel-tracker/internal/models"
	"github.com/automatize/funnel-tracker/internal/storage/repository"
)

// TrialDuration é o tempo de vida de um trial a partir da ativação.
const TrialDuration = 48 * time.Hour

// MaxActiveTrials é o número máximo de trials ativos simultâneos por usuário.
const MaxActiveTrials = 2

// ErrNoUser indica chamada sem identidade resolvida.
var ErrNoUser = errors.New("no authenticated user")

// ErrQuotaExceeded indica que o usuário já atingiu a cota de trials ativos.
var ErrQuotaExceeded = errors.New("active trial quota exceeded")

// ErrAlreadyTrialed indica que o produto já foi testado pelo usuário,
// em qualquer época. Não há segunda chance para o mesmo produto.
var ErrAlreadyTrialed = errors.New("product already trialed by user")

// Repository define os métodos de armazenamento usados pelos trials.
type Repository interface {
	// ListTrials retorna todos os trials do usuário.
	ListTrials(ctx context.Context, userUID string) ([]*models.FreeTrial, error)
	// CountActiveTrials conta os trials ativos do usuário.
	CountActiveTrials(ctx context.Context, userUID string) (int, error)
	// TrialExists verifica se já existe trial para (usuário, produto).
	TrialExists(ctx context.Context, userUID, productSlug string) (bool, error)
	// InsertTrial insere um trial; violação de unicidade vira ErrTrialExists.
	InsertTrial(ctx context.Context, trial models.FreeTrial) (int, error)
	// ExpireDueTrials expira os trials vencidos e retorna as linhas alteradas.
	ExpireDueTrials(ctx context.Context) ([]*models.FreeTrial, error)
}

// View agrupa a visão dos trials de um usuário após a varredura.
type View struct {
	Trials      []*models.FreeTrial
	Active      []*models.FreeTrial
	CanActivate bool
}

// Service implementa o ciclo de vida dos trials sobre o repositório.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New cria um novo Service de trials.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// sweep expira os trials vencidos antes de qualquer leitura. A varredura
// roda de forma síncrona na leitura, não em um timer; a falha é registrada
// e a leitura prossegue com o que estiver no banco.
func (s *Service) sweep(ctx context.Context) {
	expired, err := s.repo.ExpireDueTrials(ctx)
	if err != nil {
		s.log.Warn("failed to expire due trials", sl.Err(err))
		return
	}
	if len(expired) > 0 {
		s.log.Info("expired due trials", slog.Int("count", len(expired)))
	}
}

// List dispara a varredura de expiração e retorna os trials do usuário,
// particionados entre todos e somente ativos.
func (s *Service) List(ctx context.Context, userUID string) (*View, error) {
	if userUID == "" {
		return nil, ErrNoUser
	}

	s.sweep(ctx)

	trials, err := s.repo.ListTrials(ctx, userUID)
	if err != nil {
		return nil, err
	}

	var active []*models.FreeTrial
	for _, t := range trials {
		if t.Status == models.TrialActive {
			active = append(active, t)
		}
	}
	return &View{
		Trials:      trials,
		Active:      active,
		CanActivate: len(active) < MaxActiveTrials,
	}, nil
}

// CanActivate informa se o usuário ainda tem vaga para um trial ativo.
func (s *Service) CanActivate(ctx context.Context, userUID string) (bool, error) {
	if userUID == "" {
		return false, ErrNoUser
	}
	count, err := s.repo.CountActiveTrials(ctx, userUID)
	if err != nil {
		return false, err
	}
	return count < MaxActiveTrials, nil
}

// Activate concede um trial de 48 horas para (usuário, produto).
// Falha com ErrQuotaExceeded com a cota de ativos cheia e com
// ErrAlreadyTrialed se o produto já foi testado — detectado pela
// pré-consulta ou pela violação de unicidade no insert.
func (s *Service) Activate(ctx context.Context, userUID, productSlug, productTitle string) (*models.FreeTrial, error) {
	if userUID == "" {
		return nil, ErrNoUser
	}

	s.sweep(ctx)

	count, err := s.repo.CountActiveTrials(ctx, userUID)
	if err != nil {
		return nil, err
	}
	if count >= MaxActiveTrials {
		return nil, ErrQuotaExceeded
	}

	exists, err := s.repo.TrialExists(ctx, userUID, productSlug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyTrialed
	}

	now := time.Now()
	trial := models.FreeTrial{
		UserUID:      userUID,
		ProductSlug:  productSlug,
		ProductTitle: productTitle,
		Status:       models.TrialActive,
		ExpiresAt:    now.Add(TrialDuration),
		CreatedAt:    now,
	}
	newID, err := s.repo.InsertTrial(ctx, trial)
	if errors.Is(err, repository.ErrTrialExists) {
		// A pré-consulta pode perder uma inserção concorrente; a
		// restrição do banco é a palavra final.
		return nil, ErrAlreadyTrialed
	}
	if err != nil {
		return nil, err
	}
	trial.ID = newID

	s.log.Info("activated free trial",
		slog.String("product_slug", productSlug), slog.Int("id", newID))
	return &trial, nil
}
