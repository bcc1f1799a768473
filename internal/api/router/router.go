package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/barbershop-concierge/internal/conversation"
	httpmiddleware "github.com/wolfman30/barbershop-concierge/internal/http/middleware"
	"github.com/wolfman30/barbershop-concierge/internal/webchat"
	"github.com/wolfman30/barbershop-concierge/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	ChatHandler        *conversation.Handler
	WebChatHandler     *webchat.Handler
	IndexHandler       http.Handler
	MetricsHandler     http.Handler
	RateLimiter        *httpmiddleware.RateLimiter
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Compress(5))

		if cfg.IndexHandler != nil {
			r.Method(http.MethodGet, "/", cfg.IndexHandler)
		}
		if cfg.MetricsHandler != nil {
			r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
		}

		r.Get("/api/health", cfg.ChatHandler.Health)
		r.Get("/api/appointments", cfg.ChatHandler.Appointments)
		r.Group(func(r chi.Router) {
			if cfg.RateLimiter != nil {
				r.Use(cfg.RateLimiter.Middleware)
			}
			r.Post("/api/chat", cfg.ChatHandler.Chat)
		})
	})

	// WebSocket upgrades stay outside Compress.
	if cfg.WebChatHandler != nil {
		r.Group(func(r chi.Router) {
			if cfg.RateLimiter != nil {
				r.Use(cfg.RateLimiter.Middleware)
			}
			r.Get("/api/chat/ws", cfg.WebChatHandler.HandleWebSocket)
		})
	}

	return r
}
