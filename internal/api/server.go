package api

import (
	"log"
	"net/http"

	"ringside/internal/arena"
	"ringside/internal/ui"

	"github.com/go-chi/chi/v5"
)

// Server is the HTTP API server with WebSocket support.
// It combines the HTTP router with a WebSocket hub for real-time match updates.
type Server struct {
	engine      *arena.Engine
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
	picker      *ui.Picker
	view        *ui.ViewState
}

// ServerConfig configures the API server.
type ServerConfig struct {
	// AllowedOrigins governs both CORS and WebSocket origin checks.
	AllowedOrigins []string

	// RateLimit overrides the default per-IP limiter settings when non-nil.
	RateLimit *RateLimitConfig
}

// NewServer creates a new API server with default production configuration.
//
// IMPORTANT: Background workers do NOT start until Start() is called.
// This enables testing by allowing the server to be constructed without
// starting goroutines or opening network listeners.
//
// For testing HTTP endpoints without WebSocket support, use NewRouter() directly.
func NewServer(engine *arena.Engine, cfg ServerConfig) *Server {
	s := &Server{
		engine: engine,
		wsHub:  NewWebSocketHub(cfg.AllowedOrigins),
		view:   ui.NewViewState(),
	}

	// The overlay lists every punch by name. Confirming one throws it for
	// the red corner fighter.
	options := make([]string, 0)
	for _, a := range arena.AllAttacks() {
		options = append(options, a.Kind.String())
	}
	s.picker = ui.NewPicker(options, func(id string) {
		kind, ok := arena.ParseAttackKind(id)
		if !ok {
			return
		}
		red, _ := engine.Fighters()
		if red == nil {
			return
		}
		if _, err := engine.CommandAttack(red.Name, kind); err != nil {
			log.Printf("⚠️ Picker attack failed: %v", err)
			return
		}
		engine.NotePickerConfirm(red.Name, id)
	})

	// Create rate limiter (we track it for cleanup on Stop)
	rateLimitCfg := DefaultRateLimitConfig
	if cfg.RateLimit != nil {
		rateLimitCfg = *cfg.RateLimit
	}
	s.rateLimiter = NewIPRateLimiter(rateLimitCfg)

	// Build router using the factory
	s.router = NewRouter(RouterConfig{
		Engine:      engine,
		Picker:      s.picker,
		ViewState:   s.view,
		RateLimiter: s.rateLimiter,
		CORSOrigins: cfg.AllowedOrigins,
	})

	// Add WebSocket routes (these need the wsHub instance)
	s.setupWebSocketRoutes()

	return s
}

// setupWebSocketRoutes adds WebSocket-specific routes to the router.
// These routes need access to the wsHub instance, so they can't be
// part of the generic NewRouter factory.
func (s *Server) setupWebSocketRoutes() {
	s.router.Get("/ws", s.handleWS)
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
	s.wsHub.StartBroadcastLoop(s.engine)

	log.Printf("🌐 API server starting on %s", addr)
	log.Printf("📡 Live state: ws://localhost%s/ws", addr)

	return http.ListenAndServe(addr, s.router)
}

// Router returns the HTTP handler for use with httptest.
// Use this in integration tests instead of calling Start().
//
// Example:
//
//	server := api.NewServer(engine, api.ServerConfig{})
//	ts := httptest.NewServer(server.Router())
//	defer ts.Close()
//	resp, _ := http.Get(ts.URL + "/api/state")
func (s *Server) Router() http.Handler {
	return s.router
}

// Picker returns the punch selection overlay state.
func (s *Server) Picker() *ui.Picker {
	return s.picker
}

// Stop performs graceful shutdown of background workers.
// Call this before process exit to ensure clean cleanup.
func (s *Server) Stop() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	// Note: WebSocket hub doesn't have a Stop method yet,
	// connections will be closed when the process exits.
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	s.wsHub.HandleWebSocket(w, r)
}
