// Package activate implementa o handler HTTP de ativação de trial.
//
// As rejeições de regra de negócio (cota cheia, produto já testado) são
// devolvidas como mensagens acionáveis; falhas de infraestrutura viram
// uma mensagem genérica de tentar mais tarde.
package activate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/automatize/funnel-tracker/internal/http/middlewarectx"
	"github.com/automatize/funnel-tracker/internal/http/response"
	"github.com/automatize/funnel-tracker/internal/lib/remaining"
	"github.com/automatize/funnel-tracker/internal/lib/sl"
	"github.com/automatize/funnel-tracker/internal/models"
	"github.com/automatize/funnel-tracker/internal/services/trial"
)

// Service descreve a ativação de trial usada pelo handler.
type Service interface {
	Activate(ctx context.Context, userUID, productSlug, productTitle string) (*models.FreeTrial, error)
}

// Handler processa as requisições de ativação.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New cria um novo Handler de ativação.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary      Ativa um trial gratuito de 48 horas
// @Tags         trials
// @Accept       json
// @Produce      json
// @Param        request body models.DummyActivateTrial true "Produto"
// @Success      200 {object} response.Response
// @Failure      401 {object} response.ErrorResponse
// @Failure      409 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /trials [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.activate.New"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID := middlewarectx.GetUserUID(r.Context())
	if userUID == "" {
		log.Error("user uid not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var req models.DummyActivateTrial
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		validateErr := err.(validator.ValidationErrors)
		log.Error("invalid request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(validateErr))
		return
	}

	created, err := h.service.Activate(r.Context(), userUID, req.ProductSlug, req.ProductTitle)
	switch {
	case errors.Is(err, trial.ErrQuotaExceeded):
		log.Info("trial quota exceeded", slog.String("product_slug", req.ProductSlug))
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, response.Error("você já possui 2 testes ativos"))
		return
	case errors.Is(err, trial.ErrAlreadyTrialed):
		log.Info("product already trialed", slog.String("product_slug", req.ProductSlug))
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, response.Error("você já testou este produto"))
		return
	case err != nil:
		log.Error("failed to activate trial", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("falha ao ativar o teste, tente novamente"))
		return
	}

	log.Info("activated trial", slog.String("product_slug", req.ProductSlug), slog.Int("id", created.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"trial": map[string]any{
			"id":             created.ID,
			"product_slug":   created.ProductSlug,
			"product_title":  created.ProductTitle,
			"status":         created.Status,
			"expires_at":     created.ExpiresAt,
			"remaining_time": remaining.Until(time.Now(), created.ExpiresAt),
		},
	}))
}
