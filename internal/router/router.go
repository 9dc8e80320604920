package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"teamcal-backend/internal/handlers"
	"teamcal-backend/internal/middleware"
)

func New(
	adminAuth *middleware.AdminAuth,
	activitiesHandler *handlers.ActivitiesHandler,
	adminHandler *handlers.AdminHandler,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Admin rate limiter (30 req/min per IP)
	adminLimiter := middleware.NewRateLimiter(30, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Calendar feed (public) ────
		r.Get("/activities", activitiesHandler.GetActivities)

		// ──── Admin Routes ────
		r.Route("/admin", func(r chi.Router) {
			r.Use(adminLimiter.Middleware)
			r.Use(adminAuth.Middleware)

			r.Put("/credentials", adminHandler.SaveCredentials)
			r.Post("/sync", adminHandler.SyncNow)
			r.Post("/purge", adminHandler.Purge)
			r.Get("/status", adminHandler.Status)
		})
	})

	return r
}
