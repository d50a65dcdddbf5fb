// Package funneltracker registra as rotas da aplicação.
package funneltracker

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/automatize/funnel-tracker/internal/http/handlers/auth/login"
	"github.com/automatize/funnel-tracker/internal/http/handlers/auth/register"
	"github.com/automatize/funnel-tracker/internal/http/handlers/funnel/closesessions"
	"github.com/automatize/funnel-tracker/internal/http/handlers/funnel/event"
	"github.com/automatize/funnel-tracker/internal/http/handlers/funnel/events"
	"github.com/automatize/funnel-tracker/internal/http/handlers/funnel/opensession"
	"github.com/automatize/funnel-tracker/internal/http/handlers/funnel/track"
	"github.com/automatize/funnel-tracker/internal/http/handlers/health"
	trialactivate "github.com/automatize/funnel-tracker/internal/http/handlers/trial/activate"
	triallist "github.com/automatize/funnel-tracker/internal/http/handlers/trial/list"
	"github.com/automatize/funnel-tracker/internal/http/middlewarectx"
	authservice "github.com/automatize/funnel-tracker/internal/services/auth"
	funnelservice "github.com/automatize/funnel-tracker/internal/services/funnel"
	trialservice "github.com/automatize/funnel-tracker/internal/services/trial"
)

// NewRouter monta o roteador com todas as rotas da aplicação.
func NewRouter(logger *slog.Logger, tokenParser middlewarectx.TokenParser,
	funnelSvc *funnelservice.Service, trialSvc *trialservice.Service,
	authSvc *authservice.Service) http.Handler {

	router := chi.NewRouter()

	// Middlewares globais
	router.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	router.Route("/api/v1", func(r chi.Router) {
		// Rotas abertas
		r.Post("/auth/register", register.New(logger, authSvc).ServeHTTP)
		r.Post("/auth/login", login.New(logger, authSvc).ServeHTTP)
		r.Get("/health", health.New(logger).ServeHTTP)

		// Grupo autenticado por JWT
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(tokenParser, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/funnel/events", event.New(logger, funnelSvc).ServeHTTP)
			r.Get("/funnel/events", events.New(logger, funnelSvc).ServeHTTP)
			r.Post("/funnel/sessions", track.New(logger, funnelSvc).ServeHTTP)
			r.Get("/funnel/sessions/open", opensession.New(logger, funnelSvc).ServeHTTP)
			r.Post("/funnel/sessions/close", closesessions.New(logger, funnelSvc).ServeHTTP)
			r.Get("/trials", triallist.New(logger, trialSvc).ServeHTTP)
			r.Post("/trials", trialactivate.New(logger, trialSvc).ServeHTTP)
		})
	})

	router.Handle("/metrics", promhttp.Handler())
	// Documentação Swagger
	router.Get("/docs/*", httpSwagger.WrapHandler)

	return router
}
