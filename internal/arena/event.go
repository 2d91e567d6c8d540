package arena

import (
	"encoding/json"
	"time"
)

// EventType enum for event classification
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeTick              // Tick boundary with RNG seed
	EventTypeFighterJoin
	EventTypeAttack
	EventTypeAttackQueued
	EventTypeAttackCanceled
	EventTypeDefense
	EventTypeHit
	EventTypePickerConfirm
)

// EventVersion for backwards compatibility in replay
const EventVersion uint8 = 1

// Event is the core event structure for the match log
type Event struct {
	Version   uint8     `json:"version"`   // Schema version
	Type      EventType `json:"type"`      // Event type
	Timestamp int64     `json:"timestamp"` // Unix nano
	Sequence  uint64    `json:"sequence"`  // Monotonic sequence
	TickNum   uint64    `json:"tickNum"`   // Match tick this occurred in
	FighterID string    `json:"fighterId"` // Source fighter (for rate limiting)
	Payload   []byte    `json:"payload"`   // JSON-encoded payload
}

// String returns human-readable event type
func (t EventType) String() string {
	switch t {
	case EventTypeTick:
		return "tick"
	case EventTypeFighterJoin:
		return "fighter_join"
	case EventTypeAttack:
		return "attack"
	case EventTypeAttackQueued:
		return "attack_queued"
	case EventTypeAttackCanceled:
		return "attack_canceled"
	case EventTypeDefense:
		return "defense"
	case EventTypeHit:
		return "hit"
	case EventTypePickerConfirm:
		return "picker_confirm"
	default:
		return "unknown"
	}
}

// Typed payloads for different event types

// TickPayload contains tick boundary information for replay
type TickPayload struct {
	RNGSeed      int64 `json:"rngSeed"`
	FighterCount int   `json:"fighterCount"`
	DeltaTimeNs  int64 `json:"deltaTimeNs"`
}

// FighterJoinPayload contains fighter join details
type FighterJoinPayload struct {
	FighterID string  `json:"fighterId"`
	Name      string  `json:"name"`
	Corner    string  `json:"corner"`
	Control   string  `json:"control"`
	SpawnZ    float64 `json:"spawnZ"`
}

// AttackPayload contains attack event details
type AttackPayload struct {
	FighterID string `json:"fighterId"`
	Attack    string `json:"attack"`
	Queued    bool   `json:"queued"`
}

// DefensePayload contains defense event details
type DefensePayload struct {
	FighterID string `json:"fighterId"`
	Defense   string `json:"defense"`
}

// HitPayload contains landed punch details
type HitPayload struct {
	AttackerID   string  `json:"attackerId"`
	VictimID     string  `json:"victimId"`
	Attack       string  `json:"attack"`
	PointZ       float64 `json:"pointZ"`
	VictimTaken  int     `json:"victimTaken"`
	AttackerHits int     `json:"attackerHits"`
}

// PickerConfirmPayload contains a confirmed attack selection
type PickerConfirmPayload struct {
	FighterID string `json:"fighterId"`
	Attack    string `json:"attack"`
}

// EncodePayload marshals a payload to JSON bytes
func EncodePayload(payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, tickNum uint64, fighterID string, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		TickNum:   tickNum,
		FighterID: fighterID,
		Payload:   EncodePayload(payload),
	}
}
