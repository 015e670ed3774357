package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/9A-Ayush/Car-Repair-and-Service/internal/appointment"
	"github.com/9A-Ayush/Car-Repair-and-Service/internal/config"
)

type RouterConfig struct {
	Service *appointment.Service
	PgPool  *pgxpool.Pool
	Redis   *redis.Client
	Cfg     config.Config
	Version string
}

func NewRouter(rc RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	// Health endpoints
	health := NewHealthHandler(rc.PgPool, rc.Redis, rc.Cfg.Env, rc.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	secret := rc.Cfg.JWTSecret
	requireAuth := RequireAuth(secret)
	optionalAuth := OptionalAuth(secret)

	r.Route("/api/appointments", func(r chi.Router) {
		// Public booking paths
		r.With(optionalAuth).Post("/", createAppointmentHandler(rc.Service))
		r.With(optionalAuth).Post("/chatbot", chatbotAppointmentHandler(rc.Service))
		r.Get("/slots", availableSlotsHandler(rc.Service))
		r.Get("/ref/{ref}", getByBookingRefHandler(rc.Service))

		// Authenticated paths
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/user", listUserAppointmentsHandler(rc.Service))
			r.Get("/{id}", getAppointmentHandler(rc.Service))
			r.Put("/{id}", updateAppointmentHandler(rc.Service))
			r.Put("/{id}/cancel", cancelAppointmentHandler(rc.Service))
			r.Delete("/{id}", deleteAppointmentHandler(rc.Service))

			// Admin-only paths
			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin)

				r.Get("/", listAllAppointmentsHandler(rc.Service))
				r.Get("/stats", statsHandler(rc.Service))
				r.Put("/{id}/status", updateStatusHandler(rc.Service))
			})
		})
	})

	return r
}
