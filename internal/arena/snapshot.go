package arena

import (
	"sync/atomic"
	"time"
)

// ResourceLimits defines hard caps on snapshot contents
type ResourceLimits struct {
	MaxFighters   int // Hard cap on fighters in a snapshot
	MaxRecentHits int // Per-snapshot landed punch history
}

// DefaultLimits provides production-safe default limits
var DefaultLimits = ResourceLimits{
	MaxFighters:   2,
	MaxRecentHits: 16,
}

// FighterSnapshot is an immutable copy of fighter state for observers.
// Uses value types (not pointers) to ensure immutability.
type FighterSnapshot struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Corner string  `json:"corner"`
	Z      float64 `json:"z"`
	Vel    float64 `json:"vel"`
	Facing float64 `json:"facing"`

	Control string `json:"control"`

	IsAttacking bool    `json:"isAttacking"`
	Attack      string  `json:"attack,omitempty"`
	IsPunching  bool    `json:"isPunching"`
	IsDefending bool    `json:"isDefending"`
	CanCounter  bool    `json:"canCounter"`
	Defense     string  `json:"defense,omitempty"`
	Queued      string  `json:"queued,omitempty"`
	StateTag    string  `json:"stateTag"`
	Progress    float64 `json:"progress"`

	HitsLanded int `json:"hitsLanded"`
	HitsTaken  int `json:"hitsTaken"`
}

// HitSnapshot is one landed punch in the recent history
type HitSnapshot struct {
	Attacker string  `json:"attacker"`
	Victim   string  `json:"victim"`
	Attack   string  `json:"attack"`
	PointZ   float64 `json:"pointZ"`
	Tick     uint64  `json:"tick"`
}

// MatchSnapshot is a complete immutable match state for observers.
// All slices are pre-allocated and capped.
type MatchSnapshot struct {
	Sequence   uint64    `json:"sequence"`   // Monotonic sequence for ordering
	Timestamp  time.Time `json:"timestamp"`  // When the snapshot was created
	TickNumber uint64    `json:"tickNumber"` // Match tick this represents
	RNGSeed    int64     `json:"rngSeed"`    // Seed for deterministic replay

	Fighters   []FighterSnapshot `json:"fighters"`
	RecentHits []HitSnapshot     `json:"recentHits"`

	TotalHits uint64 `json:"totalHits"`
}

// SnapshotPool pre-allocates snapshots to avoid GC pressure.
// Uses triple buffering for lock-free producer/consumer.
type SnapshotPool struct {
	snapshots [3]MatchSnapshot // Triple buffer
	limits    ResourceLimits
	writeIdx  uint32 // atomic - producer index
	readIdx   uint32 // atomic - consumer index
	sequence  uint64 // atomic - monotonic sequence
}

// NewSnapshotPool creates a pool with pre-allocated slices
func NewSnapshotPool(limits ResourceLimits) *SnapshotPool {
	pool := &SnapshotPool{limits: limits}

	for i := 0; i < 3; i++ {
		pool.snapshots[i] = MatchSnapshot{
			Fighters:   make([]FighterSnapshot, 0, limits.MaxFighters),
			RecentHits: make([]HitSnapshot, 0, limits.MaxRecentHits),
		}
	}

	return pool
}

// AcquireWrite gets the next write slot (producer only, called from the tick).
// Returns a snapshot with reset slices but preserved capacity.
func (p *SnapshotPool) AcquireWrite() *MatchSnapshot {
	idx := atomic.AddUint32(&p.writeIdx, 1) % 3
	snap := &p.snapshots[idx]

	snap.Fighters = snap.Fighters[:0]
	snap.RecentHits = snap.RecentHits[:0]
	snap.TotalHits = 0

	snap.Sequence = atomic.AddUint64(&p.sequence, 1)
	snap.Timestamp = time.Now()

	return snap
}

// PublishWrite marks write complete and advances the read pointer
func (p *SnapshotPool) PublishWrite() {
	atomic.StoreUint32(&p.readIdx, atomic.LoadUint32(&p.writeIdx))
}

// AcquireRead gets the latest complete snapshot (consumer only)
func (p *SnapshotPool) AcquireRead() *MatchSnapshot {
	idx := atomic.LoadUint32(&p.readIdx) % 3
	return &p.snapshots[idx]
}

// GetLimits returns the resource limits
func (p *SnapshotPool) GetLimits() ResourceLimits {
	return p.limits
}
