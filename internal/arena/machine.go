package arena

import "log"

// AttackVerdict is the outcome of an attack request against the state machine.
type AttackVerdict int

const (
	AttackRejected AttackVerdict = iota
	AttackQueued
	AttackFired
)

// Machine is the per-fighter combat state machine. It arbitrates which punches
// and defenses are legal given what the animation graph reports, queues
// requests that arrive during a back-swing, and owns the cooldown bookkeeping.
// The graph's enter/exit callbacks, not this code, flip the punching and
// defending flags; the machine only requests transitions and reads them back.
type Machine struct {
	anim  Animator
	sched *Scheduler

	current    AttackKind
	hasCurrent bool
	queued     AttackKind
	hasQueued  bool

	defense       DefenseKind // armed defense clip, survives pose expiry
	hasDefense    bool
	defenseActive bool // pose currently held

	attackStartAt float64
	lastAttackAt  float64
	hasAttacked   bool

	attackWatch *Sequence // auto-cancel if a punch overstays its clips
	defenseTick *Sequence // defensive pose reset

	// Hitbox activation hooks, wired by the owning fighter. Either may be nil
	// while the rig is still being assembled; the machine degrades to a no-op.
	onHitboxesArmed    func(kind AttackKind)
	onHitboxesDisarmed func()

	// Fires for every punch that actually starts, queued fires included.
	onAttackFired func(kind AttackKind)
}

// NewMachine builds a state machine over an animation port. The machine
// registers itself as the graph's tag listener.
func NewMachine(anim Animator, sched *Scheduler) *Machine {
	m := &Machine{
		anim:        anim,
		sched:       sched,
		attackWatch: NewSequence(sched),
		defenseTick: NewSequence(sched),
	}
	if g, ok := anim.(*GraphAnimator); ok {
		g.SetListener(m)
	}
	return m
}

// SetHitboxHooks wires the activate/deactivate callbacks for the fighter's rig.
func (m *Machine) SetHitboxHooks(armed func(AttackKind), disarmed func()) {
	m.onHitboxesArmed = armed
	m.onHitboxesDisarmed = disarmed
}

// SetAttackHook wires a callback invoked whenever a punch fires.
func (m *Machine) SetAttackHook(fn func(kind AttackKind)) { m.onAttackFired = fn }

// IsPunching reads the graph's punching flag.
func (m *Machine) IsPunching() bool { return m.anim != nil && m.anim.Flag(FlagPunching) }

// IsDefending reads the graph's defending flag.
func (m *Machine) IsDefending() bool { return m.anim != nil && m.anim.Flag(FlagDefending) }

// CanCounter reads the graph's counter-window flag.
func (m *Machine) CanCounter() bool { return m.anim != nil && m.anim.Flag(FlagCanCounter) }

// Current returns the armed punch, if any.
func (m *Machine) Current() (AttackKind, bool) { return m.current, m.hasCurrent }

// CurrentDefense returns the active defensive move, if any.
func (m *Machine) CurrentDefense() (DefenseKind, bool) { return m.defense, m.defenseActive }

// Queued returns the queued punch, if any.
func (m *Machine) Queued() (AttackKind, bool) { return m.queued, m.hasQueued }

// LastAttackAt returns when the last punch fired and whether one ever has.
func (m *Machine) LastAttackAt() (float64, bool) { return m.lastAttackAt, m.hasAttacked }

// AttackStartAt returns when the current punch started. Meaningless before
// the first punch.
func (m *Machine) AttackStartAt() float64 { return m.attackStartAt }

// NextEligibleAt returns the earliest time another punch attempt may pass the
// cooldown gate. Before the first punch every time is eligible.
func (m *Machine) NextEligibleAt() float64 {
	if !m.hasAttacked {
		return 0
	}
	return m.lastAttackAt + GetAttack(m.current).Cooldown
}

// RequestAttack asks the machine to start a punch.
//
// While the graph sits in an incomplete "hold" state the request is queued
// instead of fired. While punching or defending the request is rejected unless
// the counter window is open (defending, not punching, CanCounter set).
func (m *Machine) RequestAttack(kind AttackKind) AttackVerdict {
	if m.anim == nil {
		return AttackRejected
	}

	if m.anim.Tag() == TagHold && m.anim.Progress() < 1.0 {
		m.queued = kind
		m.hasQueued = true
		m.anim.SetQueuedAttack(kind)
		m.anim.SetFlag(FlagQueuedAttack, true)
		return AttackQueued
	}

	punching := m.anim.Flag(FlagPunching)
	defending := m.anim.Flag(FlagDefending)
	if punching || defending {
		counter := defending && !punching && m.anim.Flag(FlagCanCounter)
		if !counter {
			return AttackRejected
		}
	}

	m.fireAttack(kind)
	return AttackFired
}

// RequestDefense asks the machine to start a defensive move. The caller is
// responsible for the punching-state policy (players are rejected upstream,
// the AI cancels its punch first); the machine itself refuses only while a
// punch or another defense is in flight.
func (m *Machine) RequestDefense(kind DefenseKind) bool {
	if m.anim == nil {
		return false
	}
	if m.anim.Flag(FlagPunching) || m.anim.Flag(FlagDefending) {
		return false
	}

	def := GetDefense(kind)
	if !m.hasDefense || m.defense != kind {
		m.anim.ApplyDefenseClip(def)
	}
	m.defense = kind
	m.hasDefense = true
	m.defenseActive = true
	m.anim.RequestTransition(DefenseTrigger(kind))

	// Reset the pose after its duration. Starting the sequence cancels any
	// pending reset from a previous defense, so two defenses in quick
	// succession cannot double-clear.
	m.defenseTick.Start(Step{
		Delay: def.Duration,
		Run: func() bool {
			m.defenseActive = false
			return true
		},
	})
	return true
}

// Cancel interrupts an in-flight punch: fires the cancel trigger, forces the
// punching flag down, disarms the hitboxes, and refunds part of the cooldown
// so the fighter recovers a cancel-transition faster than a full swing.
// Returns false when there is nothing to cancel.
func (m *Machine) Cancel() bool {
	if m.anim == nil {
		return false
	}
	tag := m.anim.Tag()
	if !m.anim.Flag(FlagPunching) && tag != TagHold {
		return false
	}

	m.attackWatch.Stop()
	m.anim.RequestTransition(TriggerAttackCanceled)
	m.anim.SetFlag(FlagPunching, false)
	if m.onHitboxesDisarmed != nil {
		m.onHitboxesDisarmed()
	}
	if m.hasAttacked {
		// Next eligible becomes start + cooldown - CancelTransition: strictly
		// earlier than the full wait, never more than the transition earlier.
		m.lastAttackAt = m.attackStartAt - CancelTransition
	}
	return true
}

// fireAttack arms the clips (only when the kind changed), pulls the trigger,
// and records timing for the cooldown gate.
func (m *Machine) fireAttack(kind AttackKind) {
	atk := GetAttack(kind)
	if !m.hasCurrent || m.current != kind {
		m.anim.ApplyAttackClips(atk)
	}
	m.current = kind
	m.hasCurrent = true
	m.attackStartAt = m.sched.Now()
	m.lastAttackAt = m.attackStartAt
	m.hasAttacked = true
	m.anim.RequestTransition(TriggerAttack)
	if m.onAttackFired != nil {
		m.onAttackFired(kind)
	}

	// Safety net: if the graph stalls in the punch past its clips, cancel it.
	// The step re-validates because the punch normally ends on its own first.
	m.attackWatch.Start(Step{
		Delay: atk.HoldTime + atk.StrikeTime + CancelTransition,
		Run: func() bool {
			if m.anim.Flag(FlagPunching) {
				log.Printf("⚠️ %s punch overstayed its clips, canceling", atk.Name)
				m.Cancel()
			}
			return true
		},
	})
}

// OnTagEnter implements TagListener.
func (m *Machine) OnTagEnter(tag StateTag) {
	switch tag {
	case TagIdle:
		// A queued punch fires the moment the graph settles back to idle.
		if m.hasQueued {
			kind := m.queued
			m.hasQueued = false
			m.anim.SetFlag(FlagQueuedAttack, false)
			m.fireAttack(kind)
		}
	case TagPunch:
		if m.onHitboxesArmed != nil {
			m.onHitboxesArmed(m.current)
		}
	}
}

// OnTagExit implements TagListener.
func (m *Machine) OnTagExit(tag StateTag) {
	if tag == TagPunch {
		m.attackWatch.Stop()
		if m.onHitboxesDisarmed != nil {
			m.onHitboxesDisarmed()
		}
	}
}
