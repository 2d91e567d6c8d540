package arena

// The animation graph owns the truth of the combat flags. Decision code only
// requests transitions through triggers and reads the flags back; the graph
// flips IsPunching/IsDefending when it enters or leaves the matching states.

// Trigger is a transition request slot on the animation graph.
type Trigger int

const (
	TriggerAttack Trigger = iota
	TriggerAttackCanceled
	TriggerDuck
	TriggerLean
	TriggerSlipLeft
	TriggerSlipRight
)

// String returns the graph slot name for a trigger.
func (t Trigger) String() string {
	switch t {
	case TriggerAttack:
		return "Attack"
	case TriggerAttackCanceled:
		return "AttackCanceled"
	case TriggerDuck:
		return "Duck"
	case TriggerLean:
		return "Lean"
	case TriggerSlipLeft:
		return "SlipLeft"
	case TriggerSlipRight:
		return "SlipRight"
	default:
		return "unknown"
	}
}

// DefenseTrigger maps a defense kind to its graph trigger.
func DefenseTrigger(kind DefenseKind) Trigger {
	switch kind {
	case DefenseDuck:
		return TriggerDuck
	case DefenseLean:
		return TriggerLean
	case DefenseSlipLeft:
		return TriggerSlipLeft
	case DefenseSlipRight:
		return TriggerSlipRight
	default:
		return TriggerDuck
	}
}

// FlagID is a boolean slot on the animation graph.
type FlagID int

const (
	FlagPunching FlagID = iota
	FlagDefending
	FlagCanCounter
	FlagQueuedAttack

	flagCount
)

// StateTag labels the graph state the playhead currently sits in.
type StateTag int

const (
	TagIdle StateTag = iota
	TagHold
	TagPunch
	TagDefend
	TagCancel
)

// String returns the tag name used by the graph.
func (t StateTag) String() string {
	switch t {
	case TagIdle:
		return "idle"
	case TagHold:
		return "hold"
	case TagPunch:
		return "punch"
	case TagDefend:
		return "defend"
	case TagCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// TagListener receives graph state enter/exit notifications.
type TagListener interface {
	OnTagEnter(tag StateTag)
	OnTagExit(tag StateTag)
}

// Animator is the boundary to the animation graph. The core never owns the
// flags' truth through this interface; it requests transitions and reads the
// results back.
type Animator interface {
	RequestTransition(t Trigger)
	Flag(id FlagID) bool
	SetFlag(id FlagID, v bool)
	SetQueuedAttack(kind AttackKind)
	QueuedAttack() AttackKind
	ApplyAttackClips(a Attack)
	ApplyDefenseClip(d Defense)
	Tag() StateTag
	Progress() float64
}

// CancelTransition is the grace interval the cancel state plays for. It is
// also the amount refunded from the attack cooldown when a punch is cut short.
const CancelTransition = 0.12

// GraphAnimator is a deterministic tick-driven stand-in for the engine's
// animation graph. It plays the armed back-swing clip in a "hold"-tagged state,
// advances to the finish clip, and returns to idle, flipping the combat flags
// on each boundary exactly as the real graph would.
type GraphAnimator struct {
	tag      StateTag
	elapsed  float64
	duration float64

	flags  [flagCount]bool
	queued AttackKind

	armedAttack    Attack
	hasArmedAttack bool
	armedDefense   Defense

	listener TagListener
}

// NewGraphAnimator creates a graph in the idle state.
func NewGraphAnimator() *GraphAnimator {
	return &GraphAnimator{tag: TagIdle}
}

// SetListener registers the enter/exit observer. A nil listener is allowed;
// notifications are simply dropped.
func (g *GraphAnimator) SetListener(l TagListener) { g.listener = l }

// RequestTransition moves the playhead per the graph's transition table.
func (g *GraphAnimator) RequestTransition(t Trigger) {
	switch t {
	case TriggerAttack:
		dur := 0.2
		if g.hasArmedAttack {
			dur = g.armedAttack.HoldTime
		}
		g.enter(TagHold, dur)
	case TriggerAttackCanceled:
		g.enter(TagCancel, CancelTransition)
	case TriggerDuck, TriggerLean, TriggerSlipLeft, TriggerSlipRight:
		g.enter(TagDefend, g.armedDefense.Duration)
	}
}

// Flag reads a boolean slot.
func (g *GraphAnimator) Flag(id FlagID) bool { return g.flags[id] }

// SetFlag writes a boolean slot.
func (g *GraphAnimator) SetFlag(id FlagID, v bool) { g.flags[id] = v }

// SetQueuedAttack mirrors the queued-attack slot into the graph.
func (g *GraphAnimator) SetQueuedAttack(kind AttackKind) { g.queued = kind }

// QueuedAttack reads the queued-attack slot back.
func (g *GraphAnimator) QueuedAttack() AttackKind { return g.queued }

// ApplyAttackClips swaps the back-swing/finish clips for the given punch.
func (g *GraphAnimator) ApplyAttackClips(a Attack) {
	g.armedAttack = a
	g.hasArmedAttack = true
}

// ApplyDefenseClip swaps the defense override clip.
func (g *GraphAnimator) ApplyDefenseClip(d Defense) { g.armedDefense = d }

// Tag returns the tag of the current graph state.
func (g *GraphAnimator) Tag() StateTag { return g.tag }

// Progress returns normalized playhead progress in the current state.
// States without a clip report 1.0 (complete).
func (g *GraphAnimator) Progress() float64 {
	if g.duration <= 0 {
		return 1.0
	}
	p := g.elapsed / g.duration
	if p > 1.0 {
		p = 1.0
	}
	return p
}

// ArmedAttack returns the punch whose clips are currently applied.
func (g *GraphAnimator) ArmedAttack() (Attack, bool) { return g.armedAttack, g.hasArmedAttack }

// Advance moves the playhead by dt seconds and runs automatic transitions:
// hold completes into the punch, the punch and defenses drain back to idle.
func (g *GraphAnimator) Advance(dt float64) {
	if g.duration <= 0 {
		return
	}
	g.elapsed += dt
	if g.elapsed < g.duration {
		return
	}

	switch g.tag {
	case TagHold:
		dur := 0.25
		if g.hasArmedAttack {
			dur = g.armedAttack.StrikeTime
		}
		g.enter(TagPunch, dur)
	case TagPunch, TagDefend, TagCancel:
		g.enter(TagIdle, 0)
	}
}

// enter performs the state change, flips the flags the graph owns, and fires
// the exit/enter notifications. Flag writes happen before the enter callback
// so listeners observe the post-transition truth.
func (g *GraphAnimator) enter(tag StateTag, duration float64) {
	prev := g.tag

	switch prev {
	case TagPunch:
		g.flags[FlagPunching] = false
	case TagDefend:
		g.flags[FlagDefending] = false
		g.flags[FlagCanCounter] = false
	}

	g.tag = tag
	g.elapsed = 0
	g.duration = duration

	switch tag {
	case TagPunch:
		g.flags[FlagPunching] = true
	case TagDefend:
		g.flags[FlagDefending] = true
		g.flags[FlagCanCounter] = true
	}

	if g.listener != nil {
		g.listener.OnTagExit(prev)
		g.listener.OnTagEnter(tag)
	}
}
