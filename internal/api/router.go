package api

import (
	"log/slog"
	"net/http"

	"github.com/Priya8975/newsletter-subscription-service/internal/ratelimit"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates and configures the HTTP router. hub and limiter may be
// nil to disable the activity feed and rate limiting.
func NewRouter(svc SubscriptionService, db Pinger, hub ActivityHub, limiter *ratelimit.Limiter, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	subHandler := NewSubscriptionHandler(svc, hub, logger)

	r.Get("/health", HealthHandler(db))
	r.Handle("/metrics", promhttp.Handler())
	if hub != nil {
		r.Get("/ws", hub.HandleWebSocket)
	}

	r.Route("/subscriptions", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if limiter != nil {
				r.Use(rateLimit(limiter))
			}
			r.Post("/subscribe", subHandler.Subscribe)
			r.Post("/unsubscribe", subHandler.Unsubscribe)
		})

		r.Get("/checkSubscription", subHandler.CheckSubscription)
		r.Get("/subscribersBeforeDate", subHandler.SubscribersBefore)
		r.Get("/subscribersAfterDate", subHandler.SubscribersAfter)
		r.Get("/newsletters", subHandler.AllNewsletters)
		r.Get("/newsletter/{id}", subHandler.Newsletter)
		r.Get("/user/{id}", subHandler.User)
	})

	return r
}
