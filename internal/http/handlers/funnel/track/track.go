// Package track implementa o handler HTTP de rastreamento do carrinho:
// registra o evento do estágio e faz o upsert da sessão aberta do usuário.
package track

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

// Service descreve o upsert de sessão usado pelo handler.
type Service interface {
	TrackSession(ctx context.Context, userUID, stage string, items []models.CartLineSnapshot, totalAmount float64) (int, error)
}

// Handler processa as requisições de rastreamento de sessão.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New cria um novo Handler de rastreamento.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// toSnapshots converte os itens da requisição em retratos por valor.
// Mapeamento puro e determinístico: campos opcionais viram null explícito,
// nunca são omitidos.
func toSnapshots(items []models.DummyCartLine) []models.CartLineSnapshot {
	snapshots := make([]models.CartLineSnapshot, 0, len(items))
	for _, item := range items {
		snapshots = append(snapshots, models.CartLineSnapshot{
			Slug:             item.Slug,
			Title:            item.Title,
			Price:            item.Price,
			Quantity:         item.Quantity,
			Image:            item.Image,
			AcquisitionType:  item.AcquisitionType,
			RentalMonths:     item.RentalMonths,
			IsPackage:        item.IsPackage,
			PackageID:        item.PackageID,
			SubscriptionPlan: item.SubscriptionPlan,
			IncludedProducts: item.IncludedProducts,
		})
	}
	return snapshots
}

// ServeHTTP godoc
// @Summary      Atualiza a sessão aberta do usuário (carrinho/checkout)
// @Tags         funnel
// @Accept       json
// @Produce      json
// @Param        request body models.DummyTrackSession true "Estado do carrinho"
// @Success      200 {object} response.Response
// @Failure      401 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /funnel/sessions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.track.New"

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

	var req models.DummyTrackSession
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

	sessionID, err := h.service.TrackSession(r.Context(), userUID, req.Stage,
		toSnapshots(req.Items), req.TotalAmount)
	if err != nil {
		log.Error("failed to track session", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to track session"))
		return
	}

	log.Info("tracked session", slog.Int("session_id", sessionID), slog.String("stage", req.Stage))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"session_id": sessionID,
	}))
}
