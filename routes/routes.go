package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/shipment-ledger/app"
	"github.com/upb/shipment-ledger/handlers"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	shipmentHandler := handlers.NewShipmentHandler(deps.Registry, deps.Logger)
	eventHandler := handlers.NewEventHandler(deps.Recorder, deps.Logger)
	healthHandler := handlers.NewHealthHandler(deps.DBHealth, deps.Logger)

	// Health check endpoints
	r.Get("/healthz", healthHandler.HandleLiveness)
	r.Get("/readyz", healthHandler.HandleReadiness)

	// Development token endpoint
	if deps.Config.IsDevelopment() {
		authHandler := handlers.NewAuthHandler(deps.Tokens, deps.Logger)
		r.Post("/auth/token", authHandler.HandleIssueToken)
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(deps.AuthMiddleware.RequireAuth)

		r.Route("/shipments", func(r chi.Router) {
			r.Post("/", shipmentHandler.HandleRegisterShipment)
			r.Get("/", shipmentHandler.HandleListShipments)
			r.Get("/{id}", shipmentHandler.HandleGetShipment)
			r.Get("/{id}/events", eventHandler.HandleListShipmentEvents)
		})

		r.Route("/events", func(r chi.Router) {
			r.Post("/", eventHandler.HandleRecordEvent)
			r.Get("/{id}", eventHandler.HandleGetEvent)
		})
	})

	return r
}
