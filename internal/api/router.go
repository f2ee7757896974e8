package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterConfig carries the dependencies and limits for the API router.
type RouterConfig struct {
	// Recon runs the site classification pipeline
	Recon ReconService
	// Users backs the user endpoints
	Users UserStore
	// MaxBodySize caps request body size in bytes; zero disables the cap
	MaxBodySize int64
	// CORSOrigin is the allowed cross-origin value; empty means "*"
	CORSOrigin string
}

// NewRouter creates a new chi router with all endpoints and middleware
func NewRouter(cfg RouterConfig) http.Handler {
	h := &Handler{
		recon:       cfg.Recon,
		users:       cfg.Users,
		maxBodySize: cfg.MaxBodySize,
	}

	origin := cfg.CORSOrigin
	if origin == "" {
		origin = "*"
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(corsMiddleware(origin))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.handleHealth)
		r.Post("/recon/site", h.handleSiteRecon)

		r.Route("/user", func(r chi.Router) {
			r.Post("/register", h.handleRegister)
			r.Post("/login", h.handleLogin)
			r.Get("/", h.handleListUsers)
			r.Get("/{id}", h.handleGetUser)
		})
	})

	return r
}

// corsMiddleware allows browser access from the configured origin
func corsMiddleware(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
			if origin != "*" {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
