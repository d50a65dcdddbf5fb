package health

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/automatize/funnel-tracker/internal/http/response"
)

type Handler struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Handler {
	return &Handler{
		log: log,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"status": "ok",
	}))
}
