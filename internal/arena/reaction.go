package arena

// ReactionController watches the opponent's public attack state and drives the
// AI's defensive response: a human-like delay, a dodge-chance roll, the mapped
// defense, then a settle period before it will react again. Each detected
// attack starts a fresh sequence; a newer detection replaces a pending one.
type ReactionController struct {
	ctrl *Controller
	seq  *Sequence

	lastKind AttackKind
	hasLast  bool
	reacting bool
}

// NewReactionController builds the reaction pipeline for an AI controller.
func NewReactionController(c *Controller) *ReactionController {
	return &ReactionController{
		ctrl: c,
		seq:  NewSequence(c.sched),
	}
}

// Reacting reports whether a reaction sequence is in flight. The attack gate
// checks this so the AI does not punch mid-dodge.
func (r *ReactionController) Reacting() bool { return r.reacting }

// Observe runs once per tick. It detects a new opponent punch by kind change,
// and forgets the last kind once the opponent goes quiet so the same punch
// can be reacted to again later.
func (r *ReactionController) Observe() {
	opp := r.ctrl.fighter.Opponent
	if opp == nil {
		return
	}

	kind, attacking := opp.CurrentAttack()
	if !attacking {
		if !r.reacting {
			r.hasLast = false
		}
		return
	}
	if r.hasLast && kind == r.lastKind {
		return
	}

	r.lastKind = kind
	r.hasLast = true
	r.begin(kind)
}

// begin starts the delayed response to a detected punch.
func (r *ReactionController) begin(kind AttackKind) {
	p := r.ctrl.params
	r.reacting = true
	r.seq.Start(
		Step{Delay: p.ReactionTime, Run: func() bool {
			if r.ctrl.rng.Float64() > p.DodgeChance {
				// Eating this one.
				r.reacting = false
				return false
			}
			r.ctrl.RequestDefense(CounterFor(kind))
			return true
		}},
		Step{Delay: p.SettleDelay, Run: func() bool {
			r.reacting = false
			return true
		}},
	)
}
