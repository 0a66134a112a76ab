package api

import (
	"net/http"

	"trivia-arena/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig contains all dependencies needed to construct the HTTP router.
// This struct is designed for dependency injection and testability.
//
// Example usage in tests:
//
//	cfg := api.RouterConfig{
//	    Registry: registry,
//	    Hub:      hub,
//	    RateLimitConfig: &api.RateLimitConfig{
//	        RequestsPerSecond: 1000, // High limit for tests
//	        Burst:             1000,
//	    },
//	}
//	router := api.NewRouter(cfg)
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Registry is the match registry (required)
	Registry *game.Registry

	// Hub delivers match broadcasts to WebSocket subscribers (required)
	Hub *WebSocketHub

	// JournalDir is where per-match journals are written. Empty disables
	// journal files.
	JournalDir string

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one will be created using RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is optional configuration for the rate limiter.
	// Only used if RateLimiter is nil. If both are nil, uses DefaultRateLimitConfig.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins is an optional list of allowed CORS origins.
	// If nil, uses the default production origins.
	CORSOrigins []string

	// DisableLogging disables the request logger middleware (useful for benchmarks).
	DisableLogging bool
}

// routerHandlers holds the handler dependencies for the router
type routerHandlers struct {
	registry   *game.Registry
	hub        *WebSocketHub
	journalDir string
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// IMPORTANT: This function is PURE - it has no side effects:
//   - No goroutines are started
//   - No network listeners are opened
//   - No background workers are launched
//
// This makes it safe to use in tests with httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware - Order matters!
	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	// Rate limiting (BEFORE CORS to reject early and save CPU)
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	// CORS configuration
	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{
			"http://localhost:*",
			"http://127.0.0.1:*",
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	h := &routerHandlers{
		registry:   cfg.Registry,
		hub:        cfg.Hub,
		journalDir: cfg.JournalDir,
	}

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", h.handleGetStats)

		r.Route("/match", func(r chi.Router) {
			r.Post("/", h.handleCreateMatch)

			r.Route("/{matchID}", func(r chi.Router) {
				r.Post("/start", h.handleStartMatch)
				r.Post("/stop", h.handleStopMatch)
				r.Post("/join", h.handleJoin)
				r.Post("/leave", h.handleLeave)
				r.Post("/arena", h.handleLoadArena)
				r.Get("/snapshot", h.handleSnapshot)

				r.Post("/input/move", h.handleMove)
				r.Post("/input/fire", h.handleFire)
				r.Post("/check-hit", h.handleCheckHit)
				r.Post("/impact", h.handleProjectileImpact)
				r.Post("/trigger", h.handleTriggerLink)
				r.Post("/quiz", h.handleQuizOutcome)
			})
		})
	})

	// WebSocket subscription per match
	if cfg.Hub != nil {
		r.Get("/ws/{matchID}", func(w http.ResponseWriter, req *http.Request) {
			cfg.Hub.HandleWebSocket(chi.URLParam(req, "matchID"), w, req)
		})
	}

	return r
}
