package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/lmoren/credstore-be/internal/api/handlers"
	"github.com/lmoren/credstore-be/internal/auth"
	"github.com/lmoren/credstore-be/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(corsOrigin string, tokenTTL time.Duration, issuer *auth.TokenIssuer, authService services.AuthServiceProvider, eventService services.EventServiceProvider) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{corsOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, tokenTTL)
	userHandler := handlers.NewUserHandler(authService)
	eventHandler := handlers.NewEventHandler(eventService)

	// Liveness probe
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("Backend is running"))
	})

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			// Public credential lifecycle. Reset-password is deliberately
			// unauthenticated: the reset token is the proof of ownership
			// and a locked-out user has no session.
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/reset-password", authHandler.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(auth.Middleware(issuer))
				r.Get("/me", userHandler.GetMe)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(issuer))
			r.Get("/events", eventHandler.GetRecent)
		})
	})

	return r
}
