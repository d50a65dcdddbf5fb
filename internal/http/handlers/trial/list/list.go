// Package list implementa o handler HTTP de listagem dos trials do usuário.
// O tempo restante de cada trial é derivado no momento da resposta.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/automatize/funnel-tracker/internal/http/middlewarectx"
	"github.com/automatize/funnel-tracker/internal/http/response"
	"github.com/automatize/funnel-tracker/internal/lib/remaining"
	"github.com/automatize/funnel-tracker/internal/lib/sl"
	"github.com/automatize/funnel-tracker/internal/services/trial"
)

// Service descreve a listagem de trials usada pelo handler.
type Service interface {
	List(ctx context.Context, userUID string) (*trial.View, error)
}

// Handler processa as consultas de trials.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New cria um novo Handler de listagem.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary      Lista os trials do usuário com o tempo restante
// @Tags         trials
// @Produce      json
// @Success      200 {object} response.Response
// @Failure      401 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /trials [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.list.New"

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

	view, err := h.service.List(r.Context(), userUID)
	if err != nil {
		log.Error("failed to list trials", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list trials"))
		return
	}

	now := time.Now()
	items := make([]map[string]any, 0, len(view.Trials))
	for _, t := range view.Trials {
		items = append(items, map[string]any{
			"id":             t.ID,
			"product_slug":   t.ProductSlug,
			"product_title":  t.ProductTitle,
			"status":         t.Status,
			"expires_at":     t.ExpiresAt,
			"remaining_time": remaining.Until(now, t.ExpiresAt),
		})
	}

	log.Info("listed trials", slog.Int("count", len(items)), slog.Int("active", len(view.Active)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"trials":       items,
		"active_count": len(view.Active),
		"can_activate": view.CanActivate,
	}))
}
