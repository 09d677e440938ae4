package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates a new HTTP router with configured routes, middleware, and handlers.
// It sets up version, install, loader and job routes, health check, and Prometheus metrics endpoint.
func NewRouter(jobs JobServiceI, catalog CatalogI, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	h := NewHandler(jobs, catalog, logger)

	r.Get("/versions", h.ListVersions)
	r.Post("/installs", h.CreateInstall)

	r.Route("/loaders", func(r chi.Router) {
		r.Post("/", h.CreateLoader)
		r.Get("/{family}/versions", h.LoaderVersions)
	})

	r.Get("/jobs/{jobID}", h.GetJob)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
