package arena

// DefenseKind identifies a defensive move.
type DefenseKind int

const (
	DefenseDuck DefenseKind = iota
	DefenseLean
	DefenseSlipLeft
	DefenseSlipRight

	defenseKindCount
)

// String returns a human-readable defense name.
func (k DefenseKind) String() string {
	switch k {
	case DefenseDuck:
		return "duck"
	case DefenseLean:
		return "lean"
	case DefenseSlipLeft:
		return "slip_left"
	case DefenseSlipRight:
		return "slip_right"
	default:
		return "unknown"
	}
}

// Defense describes one defensive move and its override clip.
type Defense struct {
	Kind     DefenseKind `json:"kind"`
	Name     string      `json:"name"`
	Override string      `json:"override"` // override clip ref
	Duration float64     `json:"duration"` // seconds before the pose resets
}

// Defenses is the table of all defensive moves.
var Defenses = map[DefenseKind]Defense{
	DefenseDuck: {
		Kind:     DefenseDuck,
		Name:     "Duck",
		Override: "duck_override",
		Duration: 0.45,
	},
	DefenseLean: {
		Kind:     DefenseLean,
		Name:     "Lean Back",
		Override: "lean_override",
		Duration: 0.50,
	},
	DefenseSlipLeft: {
		Kind:     DefenseSlipLeft,
		Name:     "Slip Left",
		Override: "slip_left_override",
		Duration: 0.40,
	},
	DefenseSlipRight: {
		Kind:     DefenseSlipRight,
		Name:     "Slip Right",
		Override: "slip_right_override",
		Duration: 0.40,
	},
}

// GetDefense returns the table entry for a defense kind.
// Unknown kinds fall back to the duck.
func GetDefense(kind DefenseKind) Defense {
	if d, ok := Defenses[kind]; ok {
		return d
	}
	return Defenses[DefenseDuck]
}

// ParseDefenseKind resolves a defense by its enum name ("slip_left") or its
// display name ("Slip Left").
func ParseDefenseKind(name string) (DefenseKind, bool) {
	for k := DefenseKind(0); k < defenseKindCount; k++ {
		if name == k.String() || name == Defenses[k].Name {
			return k, true
		}
	}
	return 0, false
}

// CounterFor maps an incoming punch to the defense that beats it.
// Hooks from either side are answered with a lean; uppercuts read like hooks
// at reaction time, so they get the lean as well.
func CounterFor(attack AttackKind) DefenseKind {
	switch attack {
	case AttackJab:
		return DefenseSlipLeft
	case AttackStraight:
		return DefenseSlipRight
	case AttackLeftHook, AttackRightHook:
		return DefenseLean
	default:
		return DefenseLean
	}
}
