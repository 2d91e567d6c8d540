package arena

import "log"

// Vec3 is a point or direction in arena space. Fighters move along Z.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// LenSq returns the squared length.
func (v Vec3) LenSq() float64 { return v.X*v.X + v.Y*v.Y + v.Z*v.Z }

// Layer is a collision layer bitmask.
type Layer uint32

const (
	LayerFighter Layer = 1 << iota
	LayerRig
	LayerEnvironment
)

// Collider is a spatial volume attached to a fighter's rig (or to the arena
// itself, with a nil owner). Limb colliders chain to their parent so hit
// resolution can walk up to the topmost ancestor.
type Collider struct {
	Name   string
	Owner  *Fighter // weak: lookup only, never owning
	Parent *Collider
	Layer  Layer
	Center Vec3
	Radius float64
}

// Root walks the parent chain to the topmost collider.
func (c *Collider) Root() *Collider {
	for c.Parent != nil {
		c = c.Parent
	}
	return c
}

// belongsTo reports whether the collider or any of its ancestors is owned by f.
func (c *Collider) belongsTo(f *Fighter) bool {
	for ; c != nil; c = c.Parent {
		if c.Owner == f {
			return true
		}
	}
	return false
}

// Hit is one confirmed landed punch.
type Hit struct {
	Attacker *Fighter
	Victim   *Fighter
	Kind     AttackKind
	Point    Vec3
}

// HitSink receives confirmed hits. Exactly one sink serves the whole match;
// it forwards to the victim's controller and performs no damage computation.
type HitSink interface {
	DispatchHit(hit Hit)
}

// Dispatcher is the single process-wide forwarding point for hits. The sink
// is injected once at construction time rather than discovered at runtime;
// a second registration is logged and ignored.
type Dispatcher struct {
	sink HitSink
}

// NewDispatcher creates a dispatcher with no sink bound yet.
func NewDispatcher() *Dispatcher { return &Dispatcher{} }

// Register binds the sink. The first registration wins.
func (d *Dispatcher) Register(sink HitSink) {
	if d.sink != nil {
		log.Printf("⚠️ duplicate hit sink registration ignored, keeping the first")
		return
	}
	d.sink = sink
}

// DispatchHit forwards a hit to the bound sink. With no sink bound the hit is
// dropped; the match degrades rather than crashing on a half-wired scene.
func (d *Dispatcher) DispatchHit(hit Hit) {
	if d.sink == nil {
		return
	}
	d.sink.DispatchHit(hit)
}

// Hitbox is a probe bound to a fighter's striking limb. It activates for one
// attack cycle at a time and registers at most one hit per cycle; the hit
// cooldown is at least as long as the activation gap, so even an immediate
// re-arm cannot double-report.
type Hitbox struct {
	Name       string
	Radius     float64
	TargetMask Layer // zero means no layer filtering

	owner *Fighter
	sched *Scheduler
	sink  *Dispatcher

	active    bool
	kind      AttackKind
	lastHitAt float64
	hasHit    bool
	cooldown  float64

	center Vec3
}

// NewHitbox creates an inactive probe for the given limb.
func NewHitbox(name string, owner *Fighter, radius, cooldown float64, sched *Scheduler, sink *Dispatcher) *Hitbox {
	return &Hitbox{
		Name:     name,
		Radius:   radius,
		owner:    owner,
		sched:    sched,
		sink:     sink,
		cooldown: cooldown,
	}
}

// Active reports whether the probe is live this cycle.
func (h *Hitbox) Active() bool { return h.active }

// Kind returns the punch the probe is currently tagged with.
func (h *Hitbox) Kind() AttackKind { return h.kind }

// Center returns the probe's bounding-volume center.
func (h *Hitbox) Center() Vec3 { return h.center }

// SetCenter moves the probe; the rig sync calls this every physics step.
func (h *Hitbox) SetCenter(p Vec3) { h.center = p }

// Arm activates the probe for a new attack cycle.
func (h *Hitbox) Arm(kind AttackKind) {
	h.active = true
	h.kind = kind
}

// Disarm deactivates the probe (attack ended, was canceled, or landed).
func (h *Hitbox) Disarm() { h.active = false }

// Overlaps reports whether the probe volume intersects the collider volume.
func (h *Hitbox) Overlaps(c *Collider) bool {
	r := h.Radius + c.Radius
	return c.Center.Sub(h.center).LenSq() <= r*r
}

// OnOverlap resolves a probe-entered-region notification. Returns true when a
// hit was dispatched.
//
// The pipeline, in order: activation and cooldown gate, self-hit exclusion
// (owner or any descendant of the owner), optional layer filter, opponent
// determination (corner tag, then controller kind, then the same checks
// against the topmost ancestor), and finally a single dispatch followed by
// deactivation.
func (h *Hitbox) OnOverlap(c *Collider) bool {
	if !h.active || h.owner == nil {
		return false
	}
	now := h.sched.Now()
	if h.hasHit && now-h.lastHitAt < h.cooldown {
		return false
	}

	if c.belongsTo(h.owner) {
		return false
	}

	if h.TargetMask != 0 && c.Layer&h.TargetMask == 0 {
		return false
	}

	victim := h.resolveOpponent(c)
	if victim == nil {
		return false
	}

	h.lastHitAt = now
	h.hasHit = true
	h.active = false
	h.sink.DispatchHit(Hit{
		Attacker: h.owner,
		Victim:   victim,
		Kind:     h.kind,
		Point:    h.center, // probe bounding-volume center
	})
	return true
}

// resolveOpponent decides whether the collider belongs to the other fighter.
func (h *Hitbox) resolveOpponent(c *Collider) *Fighter {
	if f := h.opponentOf(c.Owner); f != nil {
		return f
	}
	// The immediate collider may be an untagged sub-part; try the topmost
	// ancestor with the same checks.
	if root := c.Root(); root != c {
		if f := h.opponentOf(root.Owner); f != nil {
			return f
		}
	}
	return nil
}

// opponentOf applies the corner-tag comparison first and the controller-kind
// comparison second.
func (h *Hitbox) opponentOf(f *Fighter) *Fighter {
	if f == nil || f == h.owner {
		return nil
	}
	if f.Corner != h.owner.Corner {
		return f
	}
	if f.ControlledBy() != h.owner.ControlledBy() {
		return f
	}
	return nil
}
