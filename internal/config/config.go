// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for all match and server settings.
//
// IMPORTANT: When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"
)

// =============================================================================
// MATCH CONFIGURATION
// =============================================================================

// MatchConfig holds the tick loop and arena settings.
type MatchConfig struct {
	TickRate    int     // Logic ticks per second
	PhysicsRate int     // Fixed movement steps per second
	ArenaMinZ   float64 // Ring bounds along the fight axis, meters
	ArenaMaxZ   float64
	Seed        int64  // RNG seed; 0 seeds from the clock
	EventLog    string // JSONL event log path, empty disables file output
}

// DefaultMatch returns the default match configuration.
func DefaultMatch() MatchConfig {
	return MatchConfig{
		TickRate:    60,
		PhysicsRate: 50,
		ArenaMinZ:   -4.0,
		ArenaMaxZ:   4.0,
		EventLog:    "match_events.jsonl",
	}
}

// MatchFromEnv returns match configuration with environment variable overrides.
// Environment variables take precedence over defaults.
func MatchFromEnv() MatchConfig {
	cfg := DefaultMatch()

	if tr := getEnvInt("TICK_RATE", 0); tr > 0 {
		cfg.TickRate = tr
	}
	if pr := getEnvInt("PHYSICS_RATE", 0); pr > 0 {
		cfg.PhysicsRate = pr
	}
	if s := getEnvInt("MATCH_SEED", 0); s != 0 {
		cfg.Seed = int64(s)
	}
	switch p := os.Getenv("EVENT_LOG"); p {
	case "":
	case "off":
		cfg.EventLog = ""
	default:
		cfg.EventLog = p
	}

	return cfg
}

// =============================================================================
// AI TUNING
// =============================================================================

// AIConfig tunes the autonomous opponent.
type AIConfig struct {
	ReactionTime float64 // Delay before a defensive response, seconds
	DodgeChance  float64 // Probability [0,1] a detected punch draws a defense
	SettleDelay  float64 // Hold after a defense before reacting again
	IdleDebounce float64 // Idle time required before a new attack attempt
	AttackRange  float64 // Preferred striking distance, meters
	MoveSpeed    float64 // Approach speed, m/s
	TestInterval float64 // Attack cycling period in test mode, seconds
}

// DefaultAI returns the default AI tuning.
func DefaultAI() AIConfig {
	return AIConfig{
		ReactionTime: 0.25,
		DodgeChance:  0.6,
		SettleDelay:  0.4,
		IdleDebounce: 0.05,
		AttackRange:  1.2,
		MoveSpeed:    1.5,
		TestInterval: 1.5,
	}
}

// AIFromEnv returns AI tuning with environment variable overrides.
func AIFromEnv() AIConfig {
	cfg := DefaultAI()

	if v := getEnvFloat("AI_REACTION_TIME", -1); v >= 0 {
		cfg.ReactionTime = v
	}
	if v := getEnvFloat("AI_DODGE_CHANCE", -1); v >= 0 && v <= 1 {
		cfg.DodgeChance = v
	}
	if v := getEnvFloat("AI_SETTLE_DELAY", -1); v >= 0 {
		cfg.SettleDelay = v
	}
	if v := getEnvFloat("AI_MOVE_SPEED", -1); v > 0 {
		cfg.MoveSpeed = v
	}
	if v := getEnvFloat("AI_ATTACK_RANGE", -1); v > 0 {
		cfg.AttackRange = v
	}

	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int
	AllowedOrigins []string
	RequestsPerSec float64 // Per-IP rate limit
	RequestBurst   int
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:           3000,
		AllowedOrigins: []string{"*"},
		RequestsPerSec: 20,
		RequestBurst:   40,
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if o := os.Getenv("ALLOWED_ORIGINS"); o != "" {
		cfg.AllowedOrigins = []string{o}
	}
	if r := getEnvFloat("REQUESTS_PER_SEC", -1); r > 0 {
		cfg.RequestsPerSec = r
	}
	if b := getEnvInt("REQUEST_BURST", 0); b > 0 {
		cfg.RequestBurst = b
	}

	return cfg
}

// =============================================================================
// FIGHTER ROSTER
// =============================================================================

// FighterConfig describes one configured combatant.
type FighterConfig struct {
	Name    string
	Control string // "player" or "ai"
}

// RosterConfig holds the two corners.
type RosterConfig struct {
	Red  FighterConfig
	Blue FighterConfig
}

// DefaultRoster returns a player in the red corner against an AI.
func DefaultRoster() RosterConfig {
	return RosterConfig{
		Red:  FighterConfig{Name: "Red", Control: "player"},
		Blue: FighterConfig{Name: "Blue", Control: "ai"},
	}
}

// RosterFromEnv returns the roster with environment variable overrides.
func RosterFromEnv() RosterConfig {
	cfg := DefaultRoster()

	if n := os.Getenv("RED_NAME"); n != "" {
		cfg.Red.Name = n
	}
	if c := os.Getenv("RED_CONTROL"); c == "player" || c == "ai" {
		cfg.Red.Control = c
	}
	if n := os.Getenv("BLUE_NAME"); n != "" {
		cfg.Blue.Name = n
	}
	if c := os.Getenv("BLUE_CONTROL"); c == "player" || c == "ai" {
		cfg.Blue.Control = c
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Match  MatchConfig
	AI     AIConfig
	Server ServerConfig
	Roster RosterConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Match:  MatchFromEnv(),
		AI:     AIFromEnv(),
		Server: ServerFromEnv(),
		Roster: RosterFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
