package arena

import (
	"math/rand"
	"testing"
)

// recordSink collects dispatched hits for assertions.
type recordSink struct {
	hits []Hit
}

func (r *recordSink) DispatchHit(hit Hit) { r.hits = append(r.hits, hit) }

// newHitFixture builds two close fighters and a probe owned by red, with a
// recording sink behind the dispatcher.
func newHitFixture() (red, blue *Fighter, sink *recordSink, sched *Scheduler) {
	sched = NewScheduler()
	disp := NewDispatcher()
	sink = &recordSink{}
	disp.Register(sink)

	red = NewFighter("Red", CornerRed, -0.5, 1, NewGraphAnimator(), sched, disp, -4, 4)
	blue = NewFighter("Blue", CornerBlue, 0.5, -1, NewGraphAnimator(), sched, disp, -4, 4)
	red.Opponent = blue
	blue.Opponent = red
	return red, blue, sink, sched
}

// overlap drives the probe against a collider the way the engine sweep does.
func overlap(h *Hitbox, c *Collider) bool {
	if h.Overlaps(c) {
		return h.OnOverlap(c)
	}
	return false
}

func torso(f *Fighter) *Collider { return f.Colliders()[0] }
func head(f *Fighter) *Collider  { return f.Colliders()[1] }
func glove(f *Fighter) *Collider { return f.Colliders()[2] }

// TestHitDispatch verifies an armed probe overlapping the opponent's torso
// dispatches one event with attacker, victim, attack type, and hit point.
func TestHitDispatch(t *testing.T) {
	red, blue, sink, _ := newHitFixture()

	probe := red.Hitboxes()[0]
	probe.Arm(AttackJab)
	probe.SetCenter(torso(blue).Center)

	if !overlap(probe, torso(blue)) {
		t.Fatal("expected the overlap to land")
	}
	if len(sink.hits) != 1 {
		t.Fatalf("expected 1 dispatched hit, got %d", len(sink.hits))
	}
	hit := sink.hits[0]
	if hit.Attacker != red || hit.Victim != blue {
		t.Error("hit must carry attacker red, victim blue")
	}
	if hit.Kind != AttackJab {
		t.Errorf("expected jab, got %v", hit.Kind)
	}
	if hit.Point != probe.Center() {
		t.Error("hit point should be the probe center")
	}
	if probe.Active() {
		t.Error("a landed hit must deactivate the probe")
	}
}

// TestSelfHitExcluded verifies a probe never hits its own rig, root or
// descendant.
func TestSelfHitExcluded(t *testing.T) {
	red, _, sink, _ := newHitFixture()

	probe := red.Hitboxes()[0]
	probe.Arm(AttackJab)

	for _, c := range red.Colliders() {
		probe.SetCenter(c.Center)
		if overlap(probe, c) {
			t.Errorf("probe hit its own %s", c.Name)
		}
	}
	if len(sink.hits) != 0 {
		t.Fatalf("expected no self hits, got %d", len(sink.hits))
	}
	if !probe.Active() {
		t.Error("self overlaps must not consume the probe")
	}
}

// TestLayerMask verifies colliders outside the target mask are ignored.
func TestLayerMask(t *testing.T) {
	red, blue, sink, _ := newHitFixture()

	probe := red.Hitboxes()[0]
	probe.Arm(AttackJab)
	probe.SetCenter(glove(blue).Center)

	// Gloves sit on the rig layer, outside the fighter mask.
	if overlap(probe, glove(blue)) {
		t.Error("rig-layer collider should be filtered by the target mask")
	}
	if len(sink.hits) != 0 {
		t.Fatal("masked overlap must not dispatch")
	}
}

// TestInactiveProbeIgnored verifies a disarmed probe never reports.
func TestInactiveProbeIgnored(t *testing.T) {
	red, blue, sink, _ := newHitFixture()

	probe := red.Hitboxes()[0]
	probe.SetCenter(torso(blue).Center)
	if overlap(probe, torso(blue)) {
		t.Error("disarmed probe reported a hit")
	}
	if len(sink.hits) != 0 {
		t.Fatal("disarmed probe dispatched")
	}
}

// TestHitCooldown verifies at most one hit per activation cycle and that the
// cooldown persists across re-arms.
func TestHitCooldown(t *testing.T) {
	red, blue, sink, sched := newHitFixture()

	probe := red.Hitboxes()[0]
	probe.Arm(AttackJab)
	probe.SetCenter(torso(blue).Center)

	overlap(probe, torso(blue))
	if len(sink.hits) != 1 {
		t.Fatalf("expected first hit, got %d", len(sink.hits))
	}

	// Immediate re-arm: still inside the cooldown.
	probe.Arm(AttackJab)
	if overlap(probe, torso(blue)) {
		t.Error("hit landed inside the cooldown window")
	}
	if len(sink.hits) != 1 {
		t.Fatalf("cooldown breached: %d hits", len(sink.hits))
	}

	// Past the cooldown a fresh activation may land again.
	sched.Advance(1.0)
	probe.Arm(AttackJab)
	if !overlap(probe, torso(blue)) {
		t.Error("expected a hit after the cooldown")
	}
	if len(sink.hits) != 2 {
		t.Fatalf("expected 2 hits total, got %d", len(sink.hits))
	}
}

// TestOpponentResolutionFallsBackToRoot verifies a descendant collider with
// no owner resolves through its root ancestor.
func TestOpponentResolutionFallsBackToRoot(t *testing.T) {
	red, blue, sink, _ := newHitFixture()

	// A strap on blue's torso: no owner of its own, fighter layer.
	strap := &Collider{Name: "strap", Parent: torso(blue), Layer: LayerFighter, Radius: 0.1, Center: torso(blue).Center}

	probe := red.Hitboxes()[0]
	probe.Arm(AttackStraight)
	probe.SetCenter(strap.Center)

	if !overlap(probe, strap) {
		t.Fatal("expected the root-ancestor walk to find blue")
	}
	if len(sink.hits) != 1 || sink.hits[0].Victim != blue {
		t.Fatal("expected blue as the resolved victim")
	}
}

// TestHeadAndTorsoBothHittable verifies both fighter-layer volumes resolve.
func TestHeadAndTorsoBothHittable(t *testing.T) {
	red, blue, sink, sched := newHitFixture()

	probe := red.Hitboxes()[1]
	probe.Arm(AttackUppercut)
	probe.SetCenter(head(blue).Center)
	if !overlap(probe, head(blue)) {
		t.Fatal("expected a head hit")
	}

	sched.Advance(1.0)
	probe.Arm(AttackStraight)
	probe.SetCenter(torso(blue).Center)
	if !overlap(probe, torso(blue)) {
		t.Fatal("expected a torso hit")
	}
	if len(sink.hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(sink.hits))
	}
}

// TestDuplicateSinkIgnored verifies the dispatcher keeps its first sink.
func TestDuplicateSinkIgnored(t *testing.T) {
	disp := NewDispatcher()
	first := &recordSink{}
	second := &recordSink{}
	disp.Register(first)
	disp.Register(second)

	disp.DispatchHit(Hit{Kind: AttackJab})
	if len(first.hits) != 1 {
		t.Error("first sink should receive the hit")
	}
	if len(second.hits) != 0 {
		t.Error("second registration must be ignored")
	}
}

// TestUnboundDispatcherDrops verifies dispatch without a sink is a no-op.
func TestUnboundDispatcherDrops(t *testing.T) {
	disp := NewDispatcher()
	disp.DispatchHit(Hit{Kind: AttackJab}) // must not panic
}

// TestPunchArmsAndLandsThroughMachine runs the full path: machine fires,
// graph reaches the punch state, the probe arms and the hit lands.
func TestPunchArmsAndLandsThroughMachine(t *testing.T) {
	red, blue, sink, sched := newHitFixture()
	rng := rand.New(rand.NewSource(1))
	NewController(ControlPlayer, red, sched, rng, AIParams{})
	NewController(ControlPlayer, blue, sched, rng, AIParams{})

	red.Controller().RequestAttack(AttackJab)
	jab := GetAttack(AttackJab)

	const dt = 1.0 / 60.0
	for elapsed := 0.0; elapsed < jab.HoldTime+jab.StrikeTime+0.1; elapsed += dt {
		sched.Advance(dt)
		red.Update(dt)
		blue.Update(dt)
		red.PhysicsStep(dt)
		blue.PhysicsStep(dt)
		for _, h := range red.Hitboxes() {
			if !h.Active() {
				continue
			}
			for _, c := range blue.Colliders() {
				if h.Overlaps(c) {
					h.OnOverlap(c)
				}
			}
		}
	}

	if len(sink.hits) != 1 {
		t.Fatalf("expected exactly 1 hit from one jab, got %d", len(sink.hits))
	}
	if sink.hits[0].Victim != blue {
		t.Error("expected blue as victim")
	}
}
