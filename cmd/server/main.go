package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"ringside/internal/api"
	"ringside/internal/arena"
	"ringside/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if present
	if err := godotenv.Load(".env"); err != nil {
		log.Println("💡 No .env file found, using environment variables only")
	} else {
		log.Println("✅ Loaded environment from .env")
	}

	log.Println("🥊 ================================")
	log.Println("🥊  RINGSIDE - MATCH ENGINE")
	log.Println("🥊 ================================")

	// Load centralized configuration (SSOT - Single Source of Truth)
	appConfig := config.Load()
	matchCfg := appConfig.Match
	serverCfg := appConfig.Server
	roster := appConfig.Roster

	port := strconv.Itoa(serverCfg.Port)

	log.Printf("🎮 Config: %d TPS, %d Hz physics, ring [%.1f, %.1f]",
		matchCfg.TickRate, matchCfg.PhysicsRate, matchCfg.ArenaMinZ, matchCfg.ArenaMaxZ)

	// Create match engine with centralized config
	engine := arena.NewEngine(arena.EngineConfig{
		TickRate:    matchCfg.TickRate,
		PhysicsRate: matchCfg.PhysicsRate,
		ArenaMinZ:   matchCfg.ArenaMinZ,
		ArenaMaxZ:   matchCfg.ArenaMaxZ,
		Seed:        matchCfg.Seed,
		AI: arena.AIParams{
			ReactionTime: appConfig.AI.ReactionTime,
			DodgeChance:  appConfig.AI.DodgeChance,
			SettleDelay:  appConfig.AI.SettleDelay,
			IdleDebounce: appConfig.AI.IdleDebounce,
			AttackRange:  appConfig.AI.AttackRange,
			MoveSpeed:    appConfig.AI.MoveSpeed,
			TestInterval: appConfig.AI.TestInterval,
		},
	})

	// Seat the corners
	red := engine.AddFighter(roster.Red.Name, arena.CornerRed, parseControl(roster.Red.Control))
	blue := engine.AddFighter(roster.Blue.Name, arena.CornerBlue, parseControl(roster.Blue.Control))
	if red == nil || blue == nil {
		log.Fatal("❌ Failed to seat both corners; check fighter names")
	}
	api.UpdateFighterCount(2)

	// Feed landed punches into metrics
	engine.SetCallbacks(nil, func(hit arena.Hit) {
		api.RecordHit(hit.Kind.String())
	})

	// Start event log
	if matchCfg.EventLog != "" {
		if err := engine.StartEventLog(matchCfg.EventLog); err != nil {
			log.Printf("⚠️ Event log disabled: %v", err)
		} else {
			log.Printf("📝 Event log: %s", matchCfg.EventLog)
		}
	}

	// Start debug server
	debugCfg := api.DefaultObservabilityConfig()
	if os.Getenv("DISABLE_DEBUG_SERVER") != "true" {
		if err := api.StartDebugServer(debugCfg); err != nil {
			log.Printf("⚠️ Debug server disabled: %v", err)
		}
	}

	// Create API server
	server := api.NewServer(engine, api.ServerConfig{
		AllowedOrigins: serverCfg.AllowedOrigins,
		RateLimit: &api.RateLimitConfig{
			RequestsPerSecond: serverCfg.RequestsPerSec,
			Burst:             serverCfg.RequestBurst,
			CleanupInterval:   5 * time.Minute,
		},
	})

	// Start match engine
	engine.Start()
	log.Println("✅ Match engine started")

	// Keep event log gauges current
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			stats := engine.EventLogStats()
			total, _ := stats["total"].(uint64)
			dropped, _ := stats["dropped"].(uint64)
			api.UpdateEventLogStats(total, dropped)
		}
	}()

	// Start API server in goroutine
	go func() {
		addr := ":" + port
		log.Printf("🌐 API server on http://localhost%s", addr)

		if err := server.Start(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("✅ Server ready! Press Ctrl+C to stop.")
	<-quit

	log.Println("🛑 Shutting down...")
	server.Stop()
	engine.StopEventLog()
	engine.Stop()
	log.Println("👋 Goodbye!")
}

func parseControl(s string) arena.ControlKind {
	if s == "player" {
		return arena.ControlPlayer
	}
	return arena.ControlAI
}
