package arena

import (
	"fmt"
	"math"
	"time"
)

// Corner tags which side of the ring a fighter fights out of. Hit resolution
// uses it as the first opponent check.
type Corner int

const (
	CornerRed Corner = iota
	CornerBlue
)

// String returns the corner name.
func (c Corner) String() string {
	if c == CornerRed {
		return "red"
	}
	return "blue"
}

// Fighter is one combatant: position and movement on the arena axis, the rig
// of colliders and limb probes, the combat state machine, and the public
// attack snapshot the opponent's AI reads.
type Fighter struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Corner Corner `json:"corner"`

	Pos    Vec3    `json:"pos"`
	Facing float64 `json:"facing"` // +1 faces toward +Z, -1 toward -Z
	Vel    float64 `json:"vel"`    // velocity along Z

	targetVel float64

	anim       Animator
	machine    *Machine
	controller *Controller
	sched      *Scheduler

	Opponent *Fighter `json:"-"`

	idleFor float64 // seconds the graph has sat in idle

	hitboxes  []*Hitbox
	colliders []*Collider

	// Victim notification. Set by whoever hosts the fighter; nil is fine.
	onHitReceived func(attacker *Fighter, kind AttackKind, point Vec3)

	// Running tallies, no damage model behind them.
	HitsLanded int `json:"hitsLanded"`
	HitsTaken  int `json:"hitsTaken"`

	arenaMinZ float64
	arenaMaxZ float64
}

// Body proportions for the rig, in meters.
const (
	torsoHeight = 1.2
	headHeight  = 1.7
	gloveHeight = 1.4
	torsoRadius = 0.30
	headRadius  = 0.15
	gloveRadius = 0.10
	probeRadius = 0.12
)

// NewFighter builds a fighter with its rig at the given Z position, facing
// the rest of the arena. The returned fighter still needs an opponent and a
// controller before it does anything.
func NewFighter(name string, corner Corner, z, facing float64, anim Animator, sched *Scheduler, sink *Dispatcher, minZ, maxZ float64) *Fighter {
	f := &Fighter{
		ID:        fmt.Sprintf("fighter_%d_%s", time.Now().UnixNano(), name),
		Name:      name,
		Corner:    corner,
		Pos:       Vec3{Z: z},
		Facing:    facing,
		anim:      anim,
		sched:     sched,
		arenaMinZ: minZ,
		arenaMaxZ: maxZ,
	}

	f.machine = NewMachine(anim, sched)
	f.machine.SetHitboxHooks(f.armHitboxes, f.disarmHitboxes)

	// Rig: torso is the root, head and gloves are descendants. The gloves sit
	// on the rig layer so a target-mask can exclude them from being hit.
	torso := &Collider{Name: "torso", Owner: f, Layer: LayerFighter, Radius: torsoRadius}
	head := &Collider{Name: "head", Owner: f, Parent: torso, Layer: LayerFighter, Radius: headRadius}
	lglove := &Collider{Name: "left_glove", Owner: f, Parent: torso, Layer: LayerRig, Radius: gloveRadius}
	rglove := &Collider{Name: "right_glove", Owner: f, Parent: torso, Layer: LayerRig, Radius: gloveRadius}
	f.colliders = []*Collider{torso, head, lglove, rglove}

	// One probe per glove, cooldown no shorter than the fastest attack cycle.
	f.hitboxes = []*Hitbox{
		NewHitbox("left_glove", f, probeRadius, 0.5, sched, sink),
		NewHitbox("right_glove", f, probeRadius, 0.5, sched, sink),
	}
	for _, h := range f.hitboxes {
		h.TargetMask = LayerFighter
	}

	f.syncRig()
	return f
}

// Machine exposes the fighter's combat state machine.
func (f *Fighter) Machine() *Machine { return f.machine }

// Controller exposes the fighter's decision engine (may be nil mid-wiring).
func (f *Fighter) Controller() *Controller { return f.controller }

// Colliders exposes the rig volumes for the overlap sweep.
func (f *Fighter) Colliders() []*Collider { return f.colliders }

// Hitboxes exposes the limb probes for the overlap sweep.
func (f *Fighter) Hitboxes() []*Hitbox { return f.hitboxes }

// ControlledBy reports who drives this fighter. Fighters without a controller
// yet count as AI; the distinction only matters as a hit-resolution tiebreak.
func (f *Fighter) ControlledBy() ControlKind {
	if f.controller == nil {
		return ControlAI
	}
	return f.controller.Kind()
}

// SetOnHitReceived wires the victim notification callback.
func (f *Fighter) SetOnHitReceived(fn func(attacker *Fighter, kind AttackKind, point Vec3)) {
	f.onHitReceived = fn
}

// NotifyHit delivers a landed punch to this fighter's controller.
func (f *Fighter) NotifyHit(attacker *Fighter, kind AttackKind, point Vec3) {
	f.HitsTaken++
	if attacker != nil {
		attacker.HitsLanded++
	}
	if f.onHitReceived != nil {
		f.onHitReceived(attacker, kind, point)
	}
}

// IsAttacking reports the public attack state: true from the first back-swing
// frame through the end of the strike. Opponent AI keys off this.
func (f *Fighter) IsAttacking() bool {
	if f.anim == nil {
		return false
	}
	return f.anim.Tag() == TagHold || f.anim.Flag(FlagPunching)
}

// CurrentAttack returns the punch behind IsAttacking.
func (f *Fighter) CurrentAttack() (AttackKind, bool) {
	if !f.IsAttacking() {
		return 0, false
	}
	return f.machine.Current()
}

// SetMove sets the desired velocity along the arena axis. Ignored while
// punching or defending; combat freezes the feet.
func (f *Fighter) SetMove(v float64) {
	f.targetVel = v
}

// Update runs one logic tick: advance the graph, track idling, and let the
// controller decide. A fighter with no graph wired yet no-ops for the tick.
func (f *Fighter) Update(dt float64) {
	if f.anim == nil {
		return
	}

	if g, ok := f.anim.(*GraphAnimator); ok {
		g.Advance(dt)
	}

	if f.anim.Tag() == TagIdle {
		f.idleFor += dt
	} else {
		f.idleFor = 0
	}

	if f.controller != nil {
		f.controller.Update(dt)
	}
}

// IdleFor returns how long the graph has been idle, the decision debounce.
func (f *Fighter) IdleFor() float64 { return f.idleFor }

// PhysicsStep integrates movement at the fixed physics rate: interpolate
// velocity toward the target, advance along Z, clamp to the arena bounds.
func (f *Fighter) PhysicsStep(dt float64) {
	target := f.targetVel
	if f.machine.IsPunching() || f.machine.IsDefending() {
		target = 0
	}

	const accel = 10.0 // 1/s, velocity interpolation gain
	blend := accel * dt
	if blend > 1 {
		blend = 1
	}
	f.Vel += (target - f.Vel) * blend

	f.Pos.Z += f.Vel * dt
	f.Pos.Z = math.Max(f.arenaMinZ, math.Min(f.arenaMaxZ, f.Pos.Z))

	f.syncRig()
}

// DistanceTo returns the separation along the arena axis.
func (f *Fighter) DistanceTo(other *Fighter) float64 {
	return math.Abs(other.Pos.Z - f.Pos.Z)
}

// syncRig moves colliders and probes with the body. Probes extend in front of
// the fighter by the armed punch's reach.
func (f *Fighter) syncRig() {
	f.colliders[0].Center = Vec3{f.Pos.X, f.Pos.Y + torsoHeight, f.Pos.Z}
	f.colliders[1].Center = Vec3{f.Pos.X, f.Pos.Y + headHeight, f.Pos.Z}
	f.colliders[2].Center = Vec3{f.Pos.X - 0.2, f.Pos.Y + gloveHeight, f.Pos.Z + f.Facing*0.3}
	f.colliders[3].Center = Vec3{f.Pos.X + 0.2, f.Pos.Y + gloveHeight, f.Pos.Z + f.Facing*0.3}

	reach := 0.5
	if kind, ok := f.machine.Current(); ok {
		reach = GetAttack(kind).Range
	}
	for i, h := range f.hitboxes {
		x := -0.2
		if i == 1 {
			x = 0.2
		}
		h.SetCenter(Vec3{f.Pos.X + x, f.Pos.Y + gloveHeight, f.Pos.Z + f.Facing*reach})
	}
}

// armHitboxes activates the probe for the striking limb when the graph enters
// the punch state.
func (f *Fighter) armHitboxes(kind AttackKind) {
	h := f.hitboxForAttack(kind)
	h.Arm(kind)
	f.syncRig()
}

// disarmHitboxes deactivates every probe: punch ended or was canceled.
func (f *Fighter) disarmHitboxes() {
	for _, h := range f.hitboxes {
		h.Disarm()
	}
}

// hitboxForAttack picks the glove that throws the given punch.
func (f *Fighter) hitboxForAttack(kind AttackKind) *Hitbox {
	switch kind {
	case AttackJab, AttackLeftHook:
		return f.hitboxes[0]
	default: // straight, right hook, uppercut come off the rear hand
		return f.hitboxes[1]
	}
}
