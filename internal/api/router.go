package api

import (
	"net/http"

	"ringside/internal/arena"
	"ringside/internal/ui"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// EngineInterface defines the match engine methods used by the API.
// This interface enables mocking for tests without spinning up the full tick loop.
// Keep this minimal - only include methods the API layer actually calls.
type EngineInterface interface {
	// GetSnapshot returns the latest lock-free immutable snapshot (may be nil before the first tick)
	GetSnapshot() *arena.MatchSnapshot
	// GetStats returns engine counters for the stats endpoint
	GetStats() map[string]interface{}
	// CommandAttack requests a punch for a named fighter
	CommandAttack(name string, kind arena.AttackKind) (arena.AttackVerdict, error)
	// CommandDefense requests a defensive move for a named fighter
	CommandDefense(name string, kind arena.DefenseKind) (bool, error)
	// CommandCancel interrupts a named fighter's punch
	CommandCancel(name string) (bool, error)
	// CommandMove sets a named fighter's movement axis
	CommandMove(name string, axis float64) error
	// CommandTestMode toggles the AI attack cycling loop
	CommandTestMode(name string, on bool) error
	// CommandAction fires a resolved input action
	CommandAction(name string, action arena.Action) (string, error)
}

// RouterConfig contains all dependencies needed to construct the HTTP router.
// This struct is designed for dependency injection and testability.
//
// Example usage in tests:
//
//	cfg := api.RouterConfig{
//	    Engine: mockEngine,
//	    RateLimitConfig: &api.RateLimitConfig{
//	        RequestsPerSecond: 1000, // High limit for tests
//	        Burst:             1000,
//	    },
//	}
//	router := api.NewRouter(cfg)
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Engine is the match engine (required)
	Engine EngineInterface

	// Picker is the punch selection overlay state. Optional; picker routes
	// return 404 when nil.
	Picker *ui.Picker

	// ViewState gates combat input while the picker overlay is open.
	// Optional; combat input is never locked when nil.
	ViewState *ui.ViewState

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one will be created using RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is optional configuration for the rate limiter.
	// Only used if RateLimiter is nil. If both are nil, uses DefaultRateLimitConfig.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins is an optional list of allowed CORS origins.
	// If nil, uses the default local-development origins.
	CORSOrigins []string

	// DisableLogging disables the request logger middleware (useful for benchmarks).
	DisableLogging bool
}

// routerHandlers holds the handler functions for the router.
// This is used internally to pass handlers to route setup.
type routerHandlers struct {
	engine EngineInterface
	picker *ui.Picker
	view   *ui.ViewState
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// IMPORTANT: This function is PURE - it has no side effects:
//   - No goroutines are started
//   - No network listeners are opened
//   - No background workers are launched
//
// This makes it safe to use in tests with httptest.NewServer.
//
// Example:
//
//	router := api.NewRouter(cfg)
//	ts := httptest.NewServer(router)
//	defer ts.Close()
//	resp, _ := http.Get(ts.URL + "/api/state")
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

	// Create handlers struct
	h := &routerHandlers{
		engine: cfg.Engine,
		picker: cfg.Picker,
		view:   cfg.ViewState,
	}

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Match state
		r.Get("/state", h.handleGetState)
		r.Get("/stats", h.handleGetStats)
		r.Get("/attacks", h.handleGetAttacks)

		// Fighter commands
		r.Route("/fighters/{name}", func(r chi.Router) {
			r.Get("/", h.handleGetFighter)
			r.Post("/attack", h.handleAttack)
			r.Post("/defense", h.handleDefense)
			r.Post("/cancel", h.handleCancel)
			r.Post("/move", h.handleMove)
			r.Post("/action", h.handleAction)
		})

		// AI control
		r.Post("/ai/testmode", h.handleTestMode)

		// Debug rendering
		r.Get("/debug/frame.png", h.handleDebugFrame)

		// Punch selection overlay
		r.Route("/picker", func(r chi.Router) {
			r.Get("/", h.handlePickerGet)
			r.Post("/open", h.handlePickerOpen)
			r.Post("/close", h.handlePickerClose)
			r.Post("/press", h.handlePickerPress)
		})
	})

	// Operational endpoints
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
