package arena

import (
	"log"
	"math/rand"
)

// ControlKind distinguishes who makes decisions for a fighter.
type ControlKind int

const (
	ControlPlayer ControlKind = iota
	ControlAI
)

// String returns the control kind name.
func (k ControlKind) String() string {
	if k == ControlPlayer {
		return "player"
	}
	return "ai"
}

// AIParams tunes the autonomous controller. Zero values are usable but inert;
// engines fill these from config.
type AIParams struct {
	ReactionTime float64 // delay before a defensive response, seconds
	DodgeChance  float64 // probability [0,1] a detected attack draws a defense
	SettleDelay  float64 // hold time after a defense before reacting again
	IdleDebounce float64 // idle time required before a new attack attempt
	AttackRange  float64 // preferred striking distance, meters
	MoveSpeed    float64 // approach speed, m/s
	TestInterval float64 // attack cycling period in test mode, seconds
}

// Controller is the decision engine for one fighter. The player variant
// translates bound actions into state-machine requests; the AI variant runs
// steering, attack selection, and the reaction pipeline every tick.
type Controller struct {
	kind    ControlKind
	fighter *Fighter
	machine *Machine
	sched   *Scheduler
	rng     *rand.Rand

	params   AIParams
	reaction *ReactionController

	testMode bool
	testSeq  *Sequence
	testNext int

	// Emission hooks, wired by the engine. All optional.
	onAttack  func(f *Fighter, kind AttackKind, verdict AttackVerdict)
	onDefense func(f *Fighter, kind DefenseKind)
}

// NewController attaches a decision engine to a fighter.
func NewController(kind ControlKind, f *Fighter, sched *Scheduler, rng *rand.Rand, params AIParams) *Controller {
	c := &Controller{
		kind:    kind,
		fighter: f,
		machine: f.Machine(),
		sched:   sched,
		rng:     rng,
		params:  params,
		testSeq: NewSequence(sched),
	}
	f.controller = c
	if kind == ControlAI {
		c.reaction = NewReactionController(c)
	}
	return c
}

// Kind returns who drives this controller.
func (c *Controller) Kind() ControlKind { return c.kind }

// Params returns the tuning in effect.
func (c *Controller) Params() AIParams { return c.params }

// Reaction exposes the AI reaction pipeline, nil for player controllers.
func (c *Controller) Reaction() *ReactionController { return c.reaction }

// SetHooks wires event emission callbacks.
func (c *Controller) SetHooks(onAttack func(*Fighter, AttackKind, AttackVerdict), onDefense func(*Fighter, DefenseKind)) {
	c.onAttack = onAttack
	c.onDefense = onDefense
}

// RequestAttack forwards an attack decision to the state machine and reports
// the verdict.
func (c *Controller) RequestAttack(kind AttackKind) AttackVerdict {
	v := c.machine.RequestAttack(kind)
	if v != AttackRejected && c.onAttack != nil {
		c.onAttack(c.fighter, kind, v)
	}
	return v
}

// RequestDefense forwards a defense decision. The AI variant cancels an
// in-flight punch first so the dodge is never swallowed by the punch lock.
func (c *Controller) RequestDefense(kind DefenseKind) bool {
	if c.kind == ControlAI && c.machine.IsPunching() {
		c.machine.Cancel()
	}
	ok := c.machine.RequestDefense(kind)
	if ok && c.onDefense != nil {
		c.onDefense(c.fighter, kind)
	}
	return ok
}

// SelectWeightedAttack rolls a weighted roulette across the AI repertoire.
// All-zero weights degrade to the first repertoire entry.
func (c *Controller) SelectWeightedAttack() AttackKind {
	total := 0.0
	for _, kind := range AIRepertoire {
		total += GetAttack(kind).Weight
	}
	if total <= 0 {
		return AIRepertoire[0]
	}

	return pickWeighted(c.rng.Float64() * total)
}

// pickWeighted walks the repertoire until the cumulative weight meets or
// exceeds the draw. A draw landing exactly on a cumulative boundary selects
// the kind that reached it.
func pickWeighted(roll float64) AttackKind {
	for _, kind := range AIRepertoire {
		roll -= GetAttack(kind).Weight
		if roll <= 0 {
			return kind
		}
	}
	return AIRepertoire[len(AIRepertoire)-1]
}

// Update runs one AI decision tick. Player controllers are driven by commands,
// so this is a no-op for them.
func (c *Controller) Update(dt float64) {
	if c.kind != ControlAI {
		return
	}

	c.reaction.Observe()
	c.steer()
	c.maybeAttack()
}

// steer applies the positioning policy: close when out of range, back off at
// half speed when crowded, hold inside the comfort band.
func (c *Controller) steer() {
	f := c.fighter
	opp := f.Opponent
	if opp == nil {
		f.SetMove(0)
		return
	}
	if c.machine.IsPunching() || c.machine.IsDefending() {
		f.SetMove(0)
		return
	}

	dist := f.DistanceTo(opp)
	dir := 1.0
	if opp.Pos.Z < f.Pos.Z {
		dir = -1.0
	}

	switch {
	case dist > c.params.AttackRange:
		f.SetMove(dir * c.params.MoveSpeed)
	case dist < c.params.AttackRange*0.8:
		f.SetMove(-dir * c.params.MoveSpeed * 0.5)
	default:
		f.SetMove(0)
	}
}

// maybeAttack runs the attack gate and, when open, throws a weighted pick.
func (c *Controller) maybeAttack() {
	if c.testMode {
		return
	}
	f := c.fighter
	opp := f.Opponent
	if opp == nil || f.DistanceTo(opp) > c.params.AttackRange {
		return
	}

	now := c.sched.Now()
	if now < c.machine.NextEligibleAt() {
		return
	}
	if c.machine.IsDefending() {
		return
	}
	if c.machine.IsPunching() && !c.heldPastMin(now) {
		return
	}
	if c.reaction.Reacting() {
		return
	}
	if f.IdleFor() < c.params.IdleDebounce {
		return
	}

	c.RequestAttack(c.SelectWeightedAttack())
}

// heldPastMin reports whether the current hold has run long enough that a
// follow-up request is allowed to queue behind it.
func (c *Controller) heldPastMin(now float64) bool {
	kind, ok := c.machine.Current()
	if !ok {
		return false
	}
	atk := GetAttack(kind)
	if atk.Hold != HoldLong {
		return false
	}
	return now-c.machine.AttackStartAt() >= atk.MinHold
}

// SetTestMode toggles the attack cycling loop used for tuning sessions. While
// on, the normal attack gate is suspended and the repertoire is thrown in
// order at a fixed interval.
func (c *Controller) SetTestMode(on bool) {
	if c.kind != ControlAI || c.testMode == on {
		return
	}
	c.testMode = on
	if !on {
		c.testSeq.Stop()
		return
	}
	log.Printf("🥊 %s entering attack test cycle", c.fighter.Name)
	c.testNext = 0
	c.scheduleTestStep()
}

func (c *Controller) scheduleTestStep() {
	interval := c.params.TestInterval
	if interval <= 0 {
		interval = 1.5
	}
	c.testSeq.Start(Step{Delay: interval, Run: func() bool {
		if !c.testMode {
			return false
		}
		kind := AIRepertoire[c.testNext%len(AIRepertoire)]
		c.testNext++
		c.RequestAttack(kind)
		c.scheduleTestStep()
		return true
	}})
}
