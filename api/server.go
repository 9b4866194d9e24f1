/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Client address from X-Forwarded-For / X-Real-IP
  3. Logger:     Request logging
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. CORS:       Cross-origin requests for the web client

ROUTE GROUPS:
  /, /health           Public
  /auth/*              Public, except logout-all and me
  /hours, /models/*    Bearer token required
  /report              Bearer token required

SEE ALSO:
  - handlers.go: Handler implementations
  - auth.go: RequireAuth middleware
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// DefaultAllowedOrigins are the local web client dev servers.
var DefaultAllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// NewRouter creates a new router with all routes configured. An empty
// origin list falls back to DefaultAllowedOrigins.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = DefaultAllowedOrigins
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Device-Name"},
		AllowCredentials: true,
	}))

	r.Get("/", h.Root)
	r.Get("/health", h.Health)

	// Auth routes
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)
			r.Post("/logout-all", h.LogoutAll)
			r.Get("/me", h.Me)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		// Hours routes
		r.Route("/hours", func(r chi.Router) {
			r.Get("/", h.GetHours)
			r.Put("/", h.SaveHours)
		})

		// Model routes
		r.Route("/models", func(r chi.Router) {
			r.Get("/", h.GetModels)
			r.Put("/", h.SaveModels)
			r.Post("/", h.AddModel)
			r.Patch("/{id}", h.UpdateModel)
			r.Delete("/{id}", h.DeleteModel)
		})

		r.Get("/report", h.GetReport)
	})

	return r
}
