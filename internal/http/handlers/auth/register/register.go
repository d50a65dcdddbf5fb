// Package register implementa o handler HTTP de cadastro de usuário.
package register

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/automatize/funnel-tracker/internal/http/response"
	"github.com/automatize/funnel-tracker/internal/lib/sl"
	"github.com/automatize/funnel-tracker/internal/models"
	"github.com/automatize/funnel-tracker/internal/storage/repository"
)

// Service descreve a lógica de cadastro usada pelo handler.
type Service interface {
	Register(ctx context.Context, email, username, password string) (string, error)
}

// Handler processa as requisições de cadastro.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New cria um novo Handler de cadastro.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary      Cadastra um novo usuário
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body models.DummyRegister true "Dados de cadastro"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.ErrorResponse
// @Router       /auth/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.register.New"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyRegister
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

	uid, err := h.service.Register(r.Context(), req.Email, req.Username, req.Password)
	if err == repository.ErrUserExists {
		log.Error("user already exists", slog.String("username", req.Username))
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, response.Error("user already exists"))
		return
	}
	if err != nil {
		log.Error("failed to register user", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to register"))
		return
	}

	log.Info("registered new user", slog.String("uid", uid))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"uid": uid,
	}))
}
