package arena

// AttackKind identifies a punch.
type AttackKind int

const (
	AttackJab AttackKind = iota
	AttackStraight
	AttackLeftHook
	AttackRightHook
	AttackUppercut

	attackKindCount
)

// String returns a human-readable punch name.
func (k AttackKind) String() string {
	switch k {
	case AttackJab:
		return "jab"
	case AttackStraight:
		return "straight"
	case AttackLeftHook:
		return "left_hook"
	case AttackRightHook:
		return "right_hook"
	case AttackUppercut:
		return "uppercut"
	default:
		return "unknown"
	}
}

// HoldClass distinguishes how long a punch sits in its back-swing.
type HoldClass int

const (
	HoldShort HoldClass = iota
	HoldLong
)

// Attack describes one punch: its animation clips, timing and AI tuning.
// Durations are in seconds; weights are relative (0 excludes the punch from
// weighted selection).
type Attack struct {
	Kind       AttackKind `json:"kind"`
	Name       string     `json:"name"`
	BackSwing  string     `json:"backSwing"`  // windup clip ref (tagged "hold")
	Finish     string     `json:"finish"`     // strike clip ref
	Weight     float64    `json:"weight"`     // AI selection weight
	Hold       HoldClass  `json:"hold"`       // short or long back-swing
	HoldTime   float64    `json:"holdTime"`   // back-swing clip duration
	StrikeTime float64    `json:"strikeTime"` // finish clip duration
	MinHold    float64    `json:"minHold"`    // held this long before a follow-up is legal
	Range      float64    `json:"range"`      // reach along the arena axis
	Cooldown   float64    `json:"cooldown"`   // seconds between attempts
}

// Attacks is the table of all punches.
// NOTE: Straight is the only long hold; its back-swing can be charged.
var Attacks = map[AttackKind]Attack{
	AttackJab: {
		Kind:       AttackJab,
		Name:       "Jab",
		BackSwing:  "jab_backswing",
		Finish:     "jab_finish",
		Weight:     1.0,
		Hold:       HoldShort,
		HoldTime:   0.15,
		StrikeTime: 0.25,
		MinHold:    0.10,
		Range:      1.1,
		Cooldown:   0.8,
	},
	AttackStraight: {
		Kind:       AttackStraight,
		Name:       "Straight",
		BackSwing:  "straight_backswing",
		Finish:     "straight_finish",
		Weight:     0.8,
		Hold:       HoldLong,
		HoldTime:   0.35,
		StrikeTime: 0.30,
		MinHold:    0.25,
		Range:      1.3,
		Cooldown:   1.0,
	},
	AttackLeftHook: {
		Kind:       AttackLeftHook,
		Name:       "Left Hook",
		BackSwing:  "left_hook_backswing",
		Finish:     "left_hook_finish",
		Weight:     0.6,
		Hold:       HoldShort,
		HoldTime:   0.20,
		StrikeTime: 0.30,
		MinHold:    0.12,
		Range:      0.9,
		Cooldown:   1.1,
	},
	AttackRightHook: {
		Kind:       AttackRightHook,
		Name:       "Right Hook",
		BackSwing:  "right_hook_backswing",
		Finish:     "right_hook_finish",
		Weight:     0, // manual only, AI never rolls it
		Hold:       HoldShort,
		HoldTime:   0.20,
		StrikeTime: 0.30,
		MinHold:    0.12,
		Range:      0.9,
		Cooldown:   1.1,
	},
	AttackUppercut: {
		Kind:       AttackUppercut,
		Name:       "Uppercut",
		BackSwing:  "uppercut_backswing",
		Finish:     "uppercut_finish",
		Weight:     0, // manual only
		Hold:       HoldShort,
		HoldTime:   0.25,
		StrikeTime: 0.35,
		MinHold:    0.15,
		Range:      0.7,
		Cooldown:   1.4,
	},
}

// AIRepertoire lists the punches that participate in weighted selection,
// in priority order. Right hook and uppercut stay player-only.
var AIRepertoire = []AttackKind{AttackJab, AttackStraight, AttackLeftHook}

// GetAttack returns the table entry for a punch kind.
// Unknown kinds fall back to the jab.
func GetAttack(kind AttackKind) Attack {
	if a, ok := Attacks[kind]; ok {
		return a
	}
	return Attacks[AttackJab]
}

// ParseAttackKind resolves a punch by its enum name ("jab") or its display
// name ("Jab").
func ParseAttackKind(name string) (AttackKind, bool) {
	for k := AttackKind(0); k < attackKindCount; k++ {
		if name == k.String() || name == Attacks[k].Name {
			return k, true
		}
	}
	return 0, false
}

// AllAttacks returns every punch in kind order.
func AllAttacks() []Attack {
	out := make([]Attack, 0, len(Attacks))
	for k := AttackKind(0); k < attackKindCount; k++ {
		out = append(out, Attacks[k])
	}
	return out
}
