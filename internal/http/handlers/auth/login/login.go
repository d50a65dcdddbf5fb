// Package login implementa o handler HTTP de login, que troca as
// credenciais do usuário por um token JWT de sessão.
package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/automatize/funnel-tracker/internal/http/response"
	"github.com/automatize/funnel-tracker/internal/lib/sl"
	"github.com/automatize/funnel-tracker/internal/models"
	"github.com/automatize/funnel-tracker/internal/services/auth"
)

// Service descreve a lógica de login usada pelo handler.
type Service interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// Handler processa as requisições de login.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New cria um novo Handler de login.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary      Autentica o usuário e emite um token JWT
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body models.DummyLogin true "Credenciais"
// @Success      200 {object} response.Response
// @Failure      401 {object} response.ErrorResponse
// @Router       /auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.login.New"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyLogin
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

	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		log.Error("invalid credentials", slog.String("username", req.Username))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid username or password"))
		return
	}
	if err != nil {
		log.Error("failed to login", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to login"))
		return
	}

	log.Info("user logged in", slog.String("username", req.Username))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"token": token,
	}))
}
