package api

import (
	"log"
	"net/http"

	"trivia-arena/internal/game"

	"github.com/go-chi/chi/v5"
)

// Server is the HTTP API server with WebSocket support.
// It combines the HTTP router with the WebSocket hub for real-time updates.
type Server struct {
	registry    *game.Registry
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
}

// NewServer creates a new API server with default production configuration.
//
// IMPORTANT: Background workers do NOT start until Start() is called.
// This enables testing by allowing the server to be constructed without
// starting goroutines or opening network listeners.
//
// For testing HTTP endpoints without WebSocket support, use NewRouter() directly.
func NewServer(registry *game.Registry, journalDir string) *Server {
	s := &Server{
		registry: registry,
		wsHub:    NewWebSocketHub(registry),
	}

	// Create rate limiter (we track it for potential cleanup)
	s.rateLimiter = NewIPRateLimiter(DefaultRateLimitConfig)

	// Wire simulation metrics
	registry.SetHooks(game.Hooks{
		OnTick:        RecordTick,
		OnMatchCount:  UpdateActiveMatches,
		OnViolation:   RecordViolation,
		OnKick:        RecordKick,
		OnJournalDrop: RecordJournalDropped,
		OnProjectiles: UpdateProjectileCount,
	})

	// Build router using the factory
	s.router = NewRouter(RouterConfig{
		Registry:    registry,
		Hub:         s.wsHub,
		JournalDir:  journalDir,
		RateLimiter: s.rateLimiter,
	})

	return s
}

// Hub returns the WebSocket hub for wiring match broadcasts.
func (s *Server) Hub() *WebSocketHub {
	return s.wsHub
}

// Start begins the HTTP server AND starts background workers.
// This is the ONLY method that starts goroutines or opens network listeners.
//
// Call this method only once. To stop the server, signal the process.
func (s *Server) Start(addr string) error {
	// Start background workers NOW, not in constructor
	// This is critical for testability - tests can construct the server
	// and use Router() without these workers running.
	go s.wsHub.Run()

	log.Printf("🌐 API server starting on %s", addr)
	log.Printf("🎮 Match API: http://localhost%s/api/match", addr)

	return http.ListenAndServe(addr, s.router)
}

// Router returns the HTTP handler for use with httptest.
// Use this in integration tests instead of calling Start().
//
// Example:
//
//	server := api.NewServer(registry, "")
//	ts := httptest.NewServer(server.Router())
//	defer ts.Close()
//	resp, _ := http.Get(ts.URL + "/api/stats")
func (s *Server) Router() http.Handler {
	return s.router
}

// Stop performs graceful shutdown of background workers.
// Call this before process exit to ensure clean cleanup.
func (s *Server) Stop() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	s.registry.Shutdown()
}
