// Package events implementa o handler HTTP de listagem do histórico de
// eventos de funil do usuário.
package events

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/automatize/funnel-tracker/internal/http/middlewarectx"
	"github.com/automatize/funnel-tracker/internal/http/response"
	"github.com/automatize/funnel-tracker/internal/lib/sl"
	"github.com/automatize/funnel-tracker/internal/models"
)

// Service descreve a listagem de eventos usada pelo handler.
type Service interface {
	ListEvents(ctx context.Context, userUID string, limit, offset int) ([]*models.FunnelEvent, error)
}

// Handler processa as consultas do histórico de eventos.
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
// @Summary      Lista os eventos de funil do usuário
// @Tags         funnel
// @Produce      json
// @Param        limit query int false "Limite de itens"
// @Param        offset query int false "Deslocamento"
// @Success      200 {object} response.Response
// @Failure      401 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /funnel/events [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.events.New"

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

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	list, err := h.service.ListEvents(r.Context(), userUID, limit, offset)
	if err != nil {
		log.Error("failed to list funnel events", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list events"))
		return
	}

	items := make([]map[string]any, 0, len(list))
	for _, e := range list {
		items = append(items, map[string]any{
			"id":         e.ID,
			"event_type": e.EventType,
			"metadata":   e.Metadata,
			"created_at": e.CreatedAt,
		})
	}

	log.Info("listed funnel events", slog.Int("count", len(items)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"events_count": len(items),
		"events":       items,
	}))
}
