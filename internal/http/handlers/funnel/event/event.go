// Package event implementa o handler HTTP de registro de eventos de funil.
//
// O contrato é fire-and-forget: a falha de gravação é registrada em log,
// mas o cliente sempre recebe sucesso — telemetria de funil nunca bloqueia
// o fluxo principal de compra.
package event

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/automatize/funnel-tracker/internal/http/middlewarectx"
	"github.com/automatize/funnel-tracker/internal/http/response"
	"github.com/automatize/funnel-tracker/internal/lib/sl"
	"github.com/automatize/funnel-tracker/internal/models"
)

// Service descreve o registrador de eventos usado pelo handler.
type Service interface {
	LogEvent(ctx context.Context, userUID, eventType string, metadata map[string]any) error
}

// Handler processa as requisições de registro de evento.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New cria um novo Handler de eventos.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary      Registra um evento de funil
// @Tags         funnel
// @Accept       json
// @Produce      json
// @Param        request body models.DummyFunnelEvent true "Evento"
// @Success      200 {object} response.Response
// @Failure      401 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /funnel/events [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.event.New"

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

	var req models.DummyFunnelEvent
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

	// Best-effort: o erro fica só no log, o cliente recebe OK.
	if err := h.service.LogEvent(r.Context(), userUID, req.EventType, req.Metadata); err != nil {
		log.Warn("funnel event dropped", sl.Err(err))
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"event_type": req.EventType,
	}))
}
