// Package closesessions implementa o handler HTTP de encerramento das
// sessões abertas do usuário em um status terminal (cleared ou converted).
package closesessions

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

// Service descreve o encerramento de sessões usado pelo handler.
type Service interface {
	CloseSessions(ctx context.Context, userUID, status string) error
}

// Handler processa as requisições de encerramento.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New cria um novo Handler de encerramento.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary      Encerra as sessões abertas do usuário
// @Tags         funnel
// @Accept       json
// @Produce      json
// @Param        request body models.DummyCloseSession true "Status terminal"
// @Success      200 {object} response.Response
// @Failure      401 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /funnel/sessions/close [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.closesessions.New"

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

	var req models.DummyCloseSession
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

	if err := h.service.CloseSessions(r.Context(), userUID, req.Status); err != nil {
		log.Error("failed to close sessions", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to close sessions"))
		return
	}

	log.Info("closed sessions", slog.String("status", req.Status))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"status": req.Status,
	}))
}
