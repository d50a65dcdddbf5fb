// Package opensession implementa o handler HTTP que devolve a sessão
// aberta do usuário, usada pela loja para restaurar o carrinho.
package opensession

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/automatize/funnel-tracker/internal/http/middlewarectx"
	"github.com/automatize/funnel-tracker/internal/http/response"
	"github.com/automatize/funnel-tracker/internal/lib/sl"
	"github.com/automatize/funnel-tracker/internal/models"
	"github.com/automatize/funnel-tracker/internal/storage/repository"
)

// Service descreve a consulta da sessão aberta usada pelo handler.
type Service interface {
	CurrentOpenSession(ctx context.Context, userUID string) (*models.AbandonedSession, error)
}

// Handler processa as consultas da sessão aberta.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New cria um novo Handler de consulta.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary      Retorna a sessão aberta do usuário
// @Tags         funnel
// @Produce      json
// @Success      200 {object} response.Response
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /funnel/sessions/open [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.opensession.New"

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

	session, err := h.service.CurrentOpenSession(r.Context(), userUID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("no open session"))
		return
	}
	if err != nil {
		log.Error("failed to read open session", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to read open session"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"session": map[string]any{
			"id":            session.ID,
			"stage":         session.Stage,
			"status":        session.Status,
			"cart_items":    session.CartItems,
			"total_amount":  session.TotalAmount,
			"last_event_at": session.LastEventAt,
		},
	}))
}
