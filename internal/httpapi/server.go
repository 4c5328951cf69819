package httpapi

import (
	"net/http"
	"time"

	"tradehub-be/internal/logger"
	mw "tradehub-be/internal/middleware"
	"tradehub-be/internal/profile"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// NewRouter assembles the full middleware chain and mounts the API under
// /api. Identity resolution runs before rate limiting so authenticated
// callers get per-user buckets.
func NewRouter(jwtSecret []byte, profiles profile.Repository, orders *OrderHandler, disputes *DisputeHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(15 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(mw.Auth(jwtSecret, profiles))
		api.Use(mw.RateLimit)

		orders.Register(api)
		disputes.Register(api)
	})

	return r
}
