/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Client IP behind proxies
  3. Logger:     Request logging
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. CORS:       Cross-origin requests for the public frontend

ROUTE GROUPS:
  /api/calculator/*   Amortization calculator
  /api/plans/*        Financing plan management
  /api/borrowers/*    Points ledger and standing
  /api/admin/*        Admin operations
  /api/health         Liveness

SECURITY NOTE:
  No authentication middleware currently. The calculator and plan listing
  are intentionally public (landing-page calculator); /api/admin must be
  gated upstream.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		// Calculator routes
		r.Route("/calculator", func(r chi.Router) {
			r.Post("/calculate", h.Calculate)
		})

		// Plan routes
		r.Route("/plans", func(r chi.Router) {
			r.Get("/", h.ListPlans)
			r.Post("/", h.CreatePlan)
			r.Get("/{id}", h.GetPlan)
		})

		// Borrower routes
		r.Route("/borrowers/{id}", func(r chi.Router) {
			r.Post("/register", h.RegisterBorrower)
			r.Post("/payments", h.ReportPayment)
			r.Post("/courses", h.CompleteCourse)
			r.Get("/points", h.GetSummary)
			r.Get("/transactions", h.GetTransactions)
			r.Get("/standing", h.GetStanding)
			r.Get("/simulations", h.ListSimulations)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/adjustments", h.CreateAdjustment)
		})
	})

	return r
}
