package api

import (
	"net/http"

	"multidrop-route-service/internal/api/handlers"
	"multidrop-route-service/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(quotes handlers.QuoteService, maxDrops int, vehicles []domain.VehicleType, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(correlationMiddleware(log))
	r.Use(loggingMiddleware)
	r.Use(middleware.Recoverer)

	routing := &handlers.RoutingHandler{
		Quotes:   quotes,
		MaxDrops: maxDrops,
		Vehicles: vehicles,
	}

	r.Get("/health", handlers.Health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/routing/multi-drop", routing.Capabilities)
		r.Post("/routing/multi-drop", routing.Optimize)
		r.Get("/quotes/{id}", routing.GetQuote)
	})

	return r
}
