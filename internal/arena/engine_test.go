package arena

import (
	"testing"
	"time"
)

func testEngineConfig(seed int64) EngineConfig {
	cfg := DefaultEngineConfig()
	cfg.Seed = seed
	return cfg
}

// TestNewEngine verifies engine creation with defaulted tuning
func TestNewEngine(t *testing.T) {
	tests := []struct {
		name string
		cfg  EngineConfig
	}{
		{"defaults", DefaultEngineConfig()},
		{"zero tick rate falls back", EngineConfig{}},
		{"custom rates", EngineConfig{TickRate: 30, PhysicsRate: 30}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(tt.cfg)
			if e == nil {
				t.Fatal("NewEngine returned nil")
			}
			if e.cfg.TickRate <= 0 || e.cfg.PhysicsRate <= 0 {
				t.Errorf("rates must be positive, got %d/%d", e.cfg.TickRate, e.cfg.PhysicsRate)
			}
		})
	}
}

// TestEngineStartStop verifies the loop starts and stops without panics
func TestEngineStartStop(t *testing.T) {
	e := NewEngine(testEngineConfig(1))
	e.Start()
	time.Sleep(100 * time.Millisecond)
	e.Stop()

	// Should not panic on double stop
	e.Stop()
}

// TestAddFighterCorners verifies one fighter per corner and opponent wiring
func TestAddFighterCorners(t *testing.T) {
	e := NewEngine(testEngineConfig(1))

	red := e.AddFighter("Rocky", CornerRed, ControlPlayer)
	if red == nil {
		t.Fatal("AddFighter returned nil for an open corner")
	}
	if red.Corner != CornerRed {
		t.Errorf("expected red corner, got %v", red.Corner)
	}

	if dup := e.AddFighter("Clubber", CornerRed, ControlAI); dup != nil {
		t.Error("a taken corner must reject the second fighter")
	}
	if dup := e.AddFighter("Rocky", CornerBlue, ControlAI); dup != nil {
		t.Error("a taken name must be rejected")
	}

	blue := e.AddFighter("Apollo", CornerBlue, ControlAI)
	if blue == nil {
		t.Fatal("blue corner should be open")
	}
	if red.Opponent != blue || blue.Opponent != red {
		t.Error("both fighters should be wired as opponents")
	}
	if e.GetFighter("Apollo") != blue {
		t.Error("GetFighter lookup failed")
	}
}

// TestStepOnceProducesSnapshot verifies stepping publishes a readable snapshot
func TestStepOnceProducesSnapshot(t *testing.T) {
	e := NewEngine(testEngineConfig(1))
	e.AddFighter("Rocky", CornerRed, ControlPlayer)
	e.AddFighter("Apollo", CornerBlue, ControlPlayer)

	for i := 0; i < 10; i++ {
		e.StepOnce(1.0 / 60.0)
	}

	snap := e.GetSnapshot()
	if snap.TickNumber != 10 {
		t.Errorf("expected tick 10, got %d", snap.TickNumber)
	}
	if len(snap.Fighters) != 2 {
		t.Fatalf("expected 2 fighters in the snapshot, got %d", len(snap.Fighters))
	}
	if snap.Fighters[0].Corner != "red" || snap.Fighters[1].Corner != "blue" {
		t.Error("snapshot fighters must be in corner order")
	}
	if snap.Fighters[0].StateTag != "idle" {
		t.Errorf("expected idle fighters, got %q", snap.Fighters[0].StateTag)
	}
}

// TestEngineHitPipeline runs a full punch through the engine sweep
func TestEngineHitPipeline(t *testing.T) {
	e := NewEngine(testEngineConfig(1))
	red := e.AddFighter("Rocky", CornerRed, ControlPlayer)
	blue := e.AddFighter("Apollo", CornerBlue, ControlPlayer)

	// Close the distance, then throw.
	red.Pos.Z, blue.Pos.Z = -0.5, 0.5
	red.Controller().RequestAttack(AttackJab)

	jab := GetAttack(AttackJab)
	steps := int((jab.HoldTime+jab.StrikeTime+0.1)*60) + 1
	for i := 0; i < steps; i++ {
		e.StepOnce(1.0 / 60.0)
	}

	if blue.HitsTaken != 1 {
		t.Fatalf("expected 1 hit taken by blue, got %d", blue.HitsTaken)
	}
	if red.HitsLanded != 1 {
		t.Fatalf("expected 1 hit landed by red, got %d", red.HitsLanded)
	}

	snap := e.GetSnapshot()
	if snap.TotalHits != 1 {
		t.Errorf("expected 1 total hit in the snapshot, got %d", snap.TotalHits)
	}
	if len(snap.RecentHits) != 1 || snap.RecentHits[0].Attack != jab.Name {
		t.Errorf("expected recent jab hit, got %+v", snap.RecentHits)
	}
}

// TestVictimNotification verifies the victim's callback fires on a landed hit
// TestRecentHitsCapped keeps the hit history at its configured limit no
// matter how many hits land, without regrowing the backing array.
func TestRecentHitsCapped(t *testing.T) {
	e := NewEngine(testEngineConfig(1))
	red := e.AddFighter("Rocky", CornerRed, ControlPlayer)
	blue := e.AddFighter("Apollo", CornerBlue, ControlPlayer)

	limit := e.cfg.Limits.MaxRecentHits
	initialCap := cap(e.recentHits)

	for i := 0; i < limit*10; i++ {
		e.tickCount = uint64(i)
		e.DispatchHit(Hit{Attacker: red, Victim: blue, Kind: AttackJab})
	}

	if len(e.recentHits) != limit {
		t.Fatalf("recent hits grew to %d entries, limit is %d", len(e.recentHits), limit)
	}
	if cap(e.recentHits) != initialCap {
		t.Errorf("backing array regrew: cap %d, want %d", cap(e.recentHits), initialCap)
	}

	// Oldest entries fell off the front; the newest dispatch is last.
	wantOldest := uint64(limit*10 - limit)
	if e.recentHits[0].Tick != wantOldest {
		t.Errorf("oldest retained hit at tick %d, want %d", e.recentHits[0].Tick, wantOldest)
	}
	if last := e.recentHits[limit-1].Tick; last != uint64(limit*10-1) {
		t.Errorf("newest retained hit at tick %d, want %d", last, limit*10-1)
	}

	e.StepOnce(1.0 / 60.0)
	snap := e.GetSnapshot()
	if len(snap.RecentHits) != limit {
		t.Errorf("snapshot carries %d recent hits, limit is %d", len(snap.RecentHits), limit)
	}
}

func TestVictimNotification(t *testing.T) {
	e := NewEngine(testEngineConfig(1))
	red := e.AddFighter("Rocky", CornerRed, ControlPlayer)
	blue := e.AddFighter("Apollo", CornerBlue, ControlPlayer)

	var notified []AttackKind
	blue.SetOnHitReceived(func(attacker *Fighter, kind AttackKind, point Vec3) {
		if attacker != red {
			t.Error("expected red as the attacker")
		}
		notified = append(notified, kind)
	})

	red.Pos.Z, blue.Pos.Z = -0.5, 0.5
	red.Controller().RequestAttack(AttackStraight)
	for i := 0; i < 60; i++ {
		e.StepOnce(1.0 / 60.0)
	}

	if len(notified) != 1 || notified[0] != AttackStraight {
		t.Fatalf("expected one straight notification, got %v", notified)
	}
}

// TestDeterministicReplay verifies two engines with the same seed follow the
// same match, tick for tick.
func TestDeterministicReplay(t *testing.T) {
	run := func() *MatchSnapshot {
		e := NewEngine(testEngineConfig(1234))
		e.AddFighter("Rocky", CornerRed, ControlAI)
		e.AddFighter("Apollo", CornerBlue, ControlAI)
		for i := 0; i < 600; i++ { // ten simulated seconds
			e.StepOnce(1.0 / 60.0)
		}
		return e.GetSnapshot()
	}

	a := run()
	b := run()

	if a.RNGSeed != b.RNGSeed {
		t.Errorf("seed streams diverged: %d vs %d", a.RNGSeed, b.RNGSeed)
	}
	if a.TotalHits != b.TotalHits {
		t.Errorf("hit counts diverged: %d vs %d", a.TotalHits, b.TotalHits)
	}
	for i := range a.Fighters {
		af, bf := a.Fighters[i], b.Fighters[i]
		if af.Z != bf.Z {
			t.Errorf("%s position diverged: %v vs %v", af.Name, af.Z, bf.Z)
		}
		if af.StateTag != bf.StateTag || af.Attack != bf.Attack {
			t.Errorf("%s combat state diverged", af.Name)
		}
		if af.HitsLanded != bf.HitsLanded || af.HitsTaken != bf.HitsTaken {
			t.Errorf("%s tallies diverged", af.Name)
		}
	}
}

// TestAIMatchProgresses verifies an AI-vs-AI match actually fights: the two
// close distance and land punches within a reasonable window.
func TestAIMatchProgresses(t *testing.T) {
	e := NewEngine(testEngineConfig(99))
	e.AddFighter("Rocky", CornerRed, ControlAI)
	e.AddFighter("Apollo", CornerBlue, ControlAI)

	for i := 0; i < 60*30; i++ { // thirty simulated seconds
		e.StepOnce(1.0 / 60.0)
	}

	snap := e.GetSnapshot()
	if snap.TotalHits == 0 {
		t.Error("expected at least one landed punch in thirty seconds")
	}
	red, blue := e.Fighters()
	if red.DistanceTo(blue) > 3.5 {
		t.Errorf("fighters never engaged, distance %.2f", red.DistanceTo(blue))
	}
}

// TestEngineStats verifies the stats map carries the core counters
func TestEngineStats(t *testing.T) {
	e := NewEngine(testEngineConfig(1))
	e.AddFighter("Rocky", CornerRed, ControlPlayer)
	e.StepOnce(1.0 / 60.0)

	stats := e.GetStats()
	if stats["tick"].(uint64) != 1 {
		t.Errorf("expected tick 1, got %v", stats["tick"])
	}
	if stats["fighters"].(int) != 1 {
		t.Errorf("expected 1 fighter, got %v", stats["fighters"])
	}
}
