package arena

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"
)

// EngineConfig tunes the match loop and the arena itself.
type EngineConfig struct {
	TickRate    int     // logic ticks per second
	PhysicsRate int     // fixed movement steps per second
	ArenaMinZ   float64 // ring bounds along the fight axis
	ArenaMaxZ   float64
	Seed        int64 // 0 means seed from the clock
	AI          AIParams
	Limits      ResourceLimits
}

// DefaultEngineConfig returns sane tuning for a two-fighter match.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		TickRate:    60,
		PhysicsRate: 50,
		ArenaMinZ:   -4.0,
		ArenaMaxZ:   4.0,
		AI: AIParams{
			ReactionTime: 0.25,
			DodgeChance:  0.6,
			SettleDelay:  0.4,
			IdleDebounce: 0.05,
			AttackRange:  1.2,
			MoveSpeed:    1.5,
			TestInterval: 1.5,
		},
		Limits: DefaultLimits,
	}
}

// Engine runs the match: the tick loop, both fighters, the scheduler that all
// combat timing hangs off, hit dispatch, the event log, and the snapshot the
// API reads without locks.
type Engine struct {
	mu sync.RWMutex

	cfg      EngineConfig
	fighters map[string]*Fighter
	red      *Fighter
	blue     *Fighter

	sched      *Scheduler
	dispatcher *Dispatcher

	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}

	tickCount    uint64
	physicsAccum float64

	rng     *rand.Rand
	rngSeed int64

	snapshotPool *SnapshotPool
	eventLog     *EventLog

	recentHits []HitSnapshot
	totalHits  uint64

	// Observability hooks, all optional.
	onTick func(tick uint64)
	onHit  func(hit Hit)
}

// NewEngine builds a stopped engine; call AddFighter then Start.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.TickRate <= 0 {
		cfg.TickRate = 60
	}
	if cfg.PhysicsRate <= 0 {
		cfg.PhysicsRate = cfg.TickRate
	}
	if cfg.Limits.MaxFighters == 0 {
		cfg.Limits = DefaultLimits
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e := &Engine{
		cfg:          cfg,
		fighters:     make(map[string]*Fighter),
		sched:        NewScheduler(),
		dispatcher:   NewDispatcher(),
		stopChan:     make(chan struct{}),
		snapshotPool: NewSnapshotPool(cfg.Limits),
		eventLog:     NewEventLog(),
		recentHits:   make([]HitSnapshot, 0, cfg.Limits.MaxRecentHits),
		rng:          rand.New(rand.NewSource(seed)),
		rngSeed:      seed,
	}
	e.dispatcher.Register(e)
	return e
}

// Scheduler exposes the match clock. Tests drive it directly.
func (e *Engine) Scheduler() *Scheduler { return e.sched }

// Config returns the tuning in effect.
func (e *Engine) Config() EngineConfig { return e.cfg }

// SetCallbacks wires observability hooks.
func (e *Engine) SetCallbacks(onTick func(uint64), onHit func(Hit)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onTick = onTick
	e.onHit = onHit
}

// AddFighter registers a combatant in the given corner. Returns nil when the
// corner is already taken; a match holds at most one fighter per corner.
func (e *Engine) AddFighter(name string, corner Corner, control ControlKind) *Fighter {
	e.mu.Lock()
	defer e.mu.Unlock()

	if (corner == CornerRed && e.red != nil) || (corner == CornerBlue && e.blue != nil) {
		log.Printf("⚠️ %s corner already taken, rejecting %s", corner, name)
		return nil
	}
	if _, exists := e.fighters[name]; exists {
		log.Printf("⚠️ fighter name %s already in use", name)
		return nil
	}

	// Red starts on the negative side facing +Z, blue mirrored.
	z, facing := e.cfg.ArenaMinZ/2, 1.0
	if corner == CornerBlue {
		z, facing = e.cfg.ArenaMaxZ/2, -1.0
	}

	anim := NewGraphAnimator()
	f := NewFighter(name, corner, z, facing, anim, e.sched, e.dispatcher, e.cfg.ArenaMinZ, e.cfg.ArenaMaxZ)
	ctrl := NewController(control, f, e.sched, e.rng, e.cfg.AI)
	ctrl.SetHooks(
		func(ff *Fighter, kind AttackKind, v AttackVerdict) {
			if v == AttackQueued {
				e.eventLog.EmitSimple(EventTypeAttackQueued, e.tickCount, ff.ID,
					AttackPayload{FighterID: ff.ID, Attack: GetAttack(kind).Name, Queued: true})
			}
		},
		func(ff *Fighter, kind DefenseKind) {
			e.eventLog.EmitSimple(EventTypeDefense, e.tickCount, ff.ID,
				DefensePayload{FighterID: ff.ID, Defense: GetDefense(kind).Name})
		},
	)

	f.Machine().SetAttackHook(func(kind AttackKind) {
		e.eventLog.EmitSimple(EventTypeAttack, e.tickCount, f.ID,
			AttackPayload{FighterID: f.ID, Attack: GetAttack(kind).Name})
	})

	e.fighters[name] = f
	if corner == CornerRed {
		e.red = f
	} else {
		e.blue = f
	}
	if e.red != nil && e.blue != nil {
		e.red.Opponent = e.blue
		e.blue.Opponent = e.red
	}

	e.eventLog.EmitSimple(EventTypeFighterJoin, e.tickCount, f.ID, FighterJoinPayload{
		FighterID: f.ID,
		Name:      name,
		Corner:    corner.String(),
		Control:   control.String(),
		SpawnZ:    z,
	})
	log.Printf("🥊 %s enters the %s corner (%s)", name, corner, control)
	return f
}

// GetFighter looks a fighter up by name.
func (e *Engine) GetFighter(name string) *Fighter {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.fighters[name]
}

// Fighters returns both fighters, red first. Either may be nil.
func (e *Engine) Fighters() (*Fighter, *Fighter) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.red, e.blue
}

// Start begins the match loop
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.mu.Unlock()

	e.ticker = time.NewTicker(time.Second / time.Duration(e.cfg.TickRate))

	go func() {
		for {
			select {
			case <-e.ticker.C:
				e.tick()
			case <-e.stopChan:
				return
			}
		}
	}()

	log.Printf("🔔 match engine started at %d TPS", e.cfg.TickRate)
}

// Stop stops the match loop
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}

	e.running = false
	if e.ticker != nil {
		e.ticker.Stop()
	}
	close(e.stopChan)
	log.Println("🛑 match engine stopped")
}

// tick runs one logic step at tickRate per second
func (e *Engine) tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.step(1.0 / float64(e.cfg.TickRate))
}

// StepOnce advances the match by dt without the wall clock. Tests and replay
// tooling drive the engine this way.
func (e *Engine) StepOnce(dt float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.step(dt)
}

func (e *Engine) step(dt float64) {
	e.tickCount++

	// Log tick event with RNG seed for deterministic replay
	e.eventLog.EmitSimple(EventTypeTick, e.tickCount, "", TickPayload{
		RNGSeed:      e.rngSeed,
		FighterCount: len(e.fighters),
		DeltaTimeNs:  int64(dt * 1e9),
	})

	// Advance RNG seed deterministically for next tick
	e.rngSeed = e.rng.Int63()
	e.rng.Seed(e.rngSeed)

	// Fire due timers before decisions so delayed reactions land this tick.
	e.sched.Advance(dt)

	// Red then blue, always: map iteration order would wreck replays.
	ordered := e.orderedFighters()
	for _, f := range ordered {
		f.Update(dt)
	}

	// Fixed-rate movement integration.
	physDt := 1.0 / float64(e.cfg.PhysicsRate)
	e.physicsAccum += dt
	for e.physicsAccum >= physDt {
		for _, f := range ordered {
			f.PhysicsStep(physDt)
		}
		e.physicsAccum -= physDt
	}

	e.sweepHitboxes()

	if e.onTick != nil {
		e.onTick(e.tickCount)
	}

	e.produceSnapshot()
}

// orderedFighters returns the roster in corner order, skipping empty corners.
func (e *Engine) orderedFighters() []*Fighter {
	out := make([]*Fighter, 0, 2)
	if e.red != nil {
		out = append(out, e.red)
	}
	if e.blue != nil {
		out = append(out, e.blue)
	}
	return out
}

// sweepHitboxes tests every active probe against every rig volume. Two
// fighters and a handful of spheres each; brute force is the right tool.
func (e *Engine) sweepHitboxes() {
	ordered := e.orderedFighters()
	for _, f := range ordered {
		for _, h := range f.Hitboxes() {
			if !h.Active() {
				continue
			}
			for _, other := range ordered {
				for _, c := range other.Colliders() {
					if h.Overlaps(c) {
						h.OnOverlap(c)
					}
				}
			}
		}
	}
}

// DispatchHit implements HitSink: deliver the punch to the victim, record it,
// and notify observers. Runs inside the tick, under the engine lock.
func (e *Engine) DispatchHit(hit Hit) {
	if hit.Victim == nil {
		return
	}
	hit.Victim.NotifyHit(hit.Attacker, hit.Kind, hit.Point)
	e.totalHits++

	snap := HitSnapshot{
		Victim: hit.Victim.ID,
		Attack: GetAttack(hit.Kind).Name,
		PointZ: hit.Point.Z,
		Tick:   e.tickCount,
	}
	attackerID := ""
	if hit.Attacker != nil {
		attackerID = hit.Attacker.ID
		snap.Attacker = hit.Attacker.ID
	}
	if limit := e.cfg.Limits.MaxRecentHits; limit > 0 && len(e.recentHits) >= limit {
		// Shift in place so the backing array never regrows past the limit.
		copy(e.recentHits, e.recentHits[len(e.recentHits)-limit+1:])
		e.recentHits = e.recentHits[:limit-1]
	}
	e.recentHits = append(e.recentHits, snap)

	payload := HitPayload{
		AttackerID:  attackerID,
		VictimID:    hit.Victim.ID,
		Attack:      GetAttack(hit.Kind).Name,
		PointZ:      hit.Point.Z,
		VictimTaken: hit.Victim.HitsTaken,
	}
	if hit.Attacker != nil {
		payload.AttackerHits = hit.Attacker.HitsLanded
	}
	e.eventLog.EmitSimple(EventTypeHit, e.tickCount, attackerID, payload)

	if e.onHit != nil {
		e.onHit(hit)
	}
}

// produceSnapshot publishes an immutable match state for lock-free readers.
// Caller holds the engine lock.
func (e *Engine) produceSnapshot() {
	snap := e.snapshotPool.AcquireWrite()
	snap.TickNumber = e.tickCount
	snap.RNGSeed = e.rngSeed
	snap.TotalHits = e.totalHits

	for _, f := range []*Fighter{e.red, e.blue} {
		if f == nil {
			continue
		}
		snap.Fighters = append(snap.Fighters, e.fighterSnapshot(f))
	}
	snap.RecentHits = append(snap.RecentHits, e.recentHits...)

	e.snapshotPool.PublishWrite()
}

func (e *Engine) fighterSnapshot(f *Fighter) FighterSnapshot {
	m := f.Machine()
	fs := FighterSnapshot{
		ID:          f.ID,
		Name:        f.Name,
		Corner:      f.Corner.String(),
		Z:           f.Pos.Z,
		Vel:         f.Vel,
		Facing:      f.Facing,
		Control:     f.ControlledBy().String(),
		IsAttacking: f.IsAttacking(),
		IsPunching:  m.IsPunching(),
		IsDefending: m.IsDefending(),
		CanCounter:  m.CanCounter(),
		HitsLanded:  f.HitsLanded,
		HitsTaken:   f.HitsTaken,
	}
	if kind, ok := f.CurrentAttack(); ok {
		fs.Attack = GetAttack(kind).Name
	}
	if kind, ok := m.CurrentDefense(); ok && m.IsDefending() {
		fs.Defense = GetDefense(kind).Name
	}
	if kind, ok := m.Queued(); ok {
		fs.Queued = GetAttack(kind).Name
	}
	if g, ok := fighterGraph(f); ok {
		fs.StateTag = g.Tag().String()
		fs.Progress = g.Progress()
	}
	return fs
}

func fighterGraph(f *Fighter) (*GraphAnimator, bool) {
	g, ok := f.anim.(*GraphAnimator)
	return g, ok
}

// GetSnapshot returns the latest published match snapshot. Safe to call from
// any goroutine without holding the engine lock.
func (e *Engine) GetSnapshot() *MatchSnapshot {
	return e.snapshotPool.AcquireRead()
}

// GetStats returns aggregate counters for the stats endpoint.
func (e *Engine) GetStats() map[string]interface{} {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stats := map[string]interface{}{
		"tick":      e.tickCount,
		"totalHits": e.totalHits,
		"running":   e.running,
		"rngSeed":   e.rngSeed,
		"fighters":  len(e.fighters),
		"eventLog":  e.eventLog.GetStats(),
	}
	for _, f := range e.fighters {
		stats[fmt.Sprintf("hits_%s", f.Name)] = f.HitsLanded
	}
	return stats
}

// Command surface. HTTP handlers and input bindings call these; the engine
// lock serializes them with the tick.

// CommandAttack requests a punch for a named fighter.
func (e *Engine) CommandAttack(name string, kind AttackKind) (AttackVerdict, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	f, ok := e.fighters[name]
	if !ok {
		return AttackRejected, fmt.Errorf("unknown fighter %q", name)
	}
	return f.Controller().RequestAttack(kind), nil
}

// CommandDefense requests a defensive move for a named fighter.
func (e *Engine) CommandDefense(name string, kind DefenseKind) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	f, ok := e.fighters[name]
	if !ok {
		return false, fmt.Errorf("unknown fighter %q", name)
	}
	return f.Controller().RequestDefense(kind), nil
}

// CommandCancel interrupts a named fighter's punch.
func (e *Engine) CommandCancel(name string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	f, ok := e.fighters[name]
	if !ok {
		return false, fmt.Errorf("unknown fighter %q", name)
	}
	canceled := f.Machine().Cancel()
	if canceled {
		e.eventLog.EmitSimple(EventTypeAttackCanceled, e.tickCount, f.ID, AttackPayload{FighterID: f.ID})
	}
	return canceled, nil
}

// CommandMove sets a named fighter's movement axis in [-1, 1].
func (e *Engine) CommandMove(name string, axis float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	f, ok := e.fighters[name]
	if !ok {
		return fmt.Errorf("unknown fighter %q", name)
	}
	if axis > 1 {
		axis = 1
	} else if axis < -1 {
		axis = -1
	}
	f.SetMove(axis * e.cfg.AI.MoveSpeed)
	return nil
}

// CommandTestMode toggles the AI attack cycling loop for a named fighter.
func (e *Engine) CommandTestMode(name string, on bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	f, ok := e.fighters[name]
	if !ok {
		return fmt.Errorf("unknown fighter %q", name)
	}
	if f.ControlledBy() != ControlAI {
		return fmt.Errorf("fighter %q is not AI controlled", name)
	}
	f.Controller().SetTestMode(on)
	return nil
}

// NotePickerConfirm records a confirmed overlay selection in the event log.
func (e *Engine) NotePickerConfirm(name, attack string) {
	e.mu.RLock()
	f, ok := e.fighters[name]
	tick := e.tickCount
	e.mu.RUnlock()
	if !ok {
		return
	}
	e.eventLog.EmitSimple(EventTypePickerConfirm, tick, f.ID, PickerConfirmPayload{
		FighterID: f.ID,
		Attack:    attack,
	})
}

// StartEventLog begins async event logging to a file
func (e *Engine) StartEventLog(filePath string) error {
	return e.eventLog.Start(filePath)
}

// StopEventLog stops the event logger
func (e *Engine) StopEventLog() {
	e.eventLog.Stop()
}

// EventLogStats exposes the log's counters.
func (e *Engine) EventLogStats() map[string]interface{} {
	return e.eventLog.GetStats()
}
