// Package api exposes the market intelligence operations over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the handlers and the middleware stack.
func NewRouter(h *Handler, cfg HTTPConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(corsHandler(cfg))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimit(cfg))
		if cfg.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
		}

		r.Route("/products/{productID}", func(r chi.Router) {
			r.Post("/analysis", h.AnalyzeProduct)
			r.Get("/analysis", h.GetAnalysis)
			r.Get("/analyses", h.ListAnalyses)
		})
		r.Post("/moderation/score", h.ScoreContent)
		r.Get("/ambassadors", h.FindAmbassadors)
	})

	return r
}
