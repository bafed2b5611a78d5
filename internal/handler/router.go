package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig collects what NewRouter mounts.
type RouterConfig struct {
	AllowedOrigins []string
	Health         *Handler
	Contact        *ContactHandler
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
	// UploadsDir is served at /uploads when set (local storage driver).
	UploadsDir string
}

// NewRouter builds the HTTP routes and middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(SecurityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		if cfg.Health != nil {
			r.Get("/health", cfg.Health.Health)
		}
		r.Options("/contact", cfg.Contact.Preflight)
		r.Post("/contact", cfg.Contact.Submit)
	})

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}
	if cfg.UploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))
	}

	return r
}
