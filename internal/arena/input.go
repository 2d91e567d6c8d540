package arena

import (
	"log"
	"strings"
)

// ActionOp says what a bound action does when it fires.
type ActionOp int

const (
	OpAttack ActionOp = iota
	OpDefense
	OpCancel
)

// Action is one logical input action resolved against the combat tables.
// Bindings arrive as names ("attack:jab", "defense:duck", "cancel"); the
// physical device side lives outside the core.
type Action struct {
	Name    string
	Op      ActionOp
	Attack  AttackKind
	Defense DefenseKind
}

// ParseAction resolves a logical action name. The second return is false for
// names that match no combat operation.
func ParseAction(name string) (Action, bool) {
	if name == "cancel" {
		return Action{Name: name, Op: OpCancel}, true
	}

	op, arg, found := strings.Cut(name, ":")
	if !found {
		return Action{}, false
	}

	switch op {
	case "attack":
		if kind, ok := ParseAttackKind(arg); ok {
			return Action{Name: name, Op: OpAttack, Attack: kind}, true
		}
	case "defense":
		if kind, ok := ParseDefenseKind(arg); ok {
			return Action{Name: name, Op: OpDefense, Defense: kind}, true
		}
	}
	return Action{}, false
}

// BuildActionSet resolves a configured list of action names. Entries that
// match nothing are omitted from the active set, never an error.
func BuildActionSet(names []string) map[string]Action {
	set := make(map[string]Action, len(names))
	for _, name := range names {
		action, ok := ParseAction(name)
		if !ok {
			log.Printf("⚠️ Unknown action %q omitted from bindings", name)
			continue
		}
		set[action.Name] = action
	}
	return set
}

// CommandAction fires a resolved action for a named fighter. The attack
// verdict (or defense/cancel acceptance) comes back as a string for callers
// that only report outcomes.
func (e *Engine) CommandAction(name string, action Action) (string, error) {
	switch action.Op {
	case OpAttack:
		verdict, err := e.CommandAttack(name, action.Attack)
		if err != nil {
			return "", err
		}
		switch verdict {
		case AttackFired:
			return "fired", nil
		case AttackQueued:
			return "queued", nil
		default:
			return "rejected", nil
		}
	case OpDefense:
		ok, err := e.CommandDefense(name, action.Defense)
		if err != nil {
			return "", err
		}
		if ok {
			return "accepted", nil
		}
		return "rejected", nil
	default:
		ok, err := e.CommandCancel(name)
		if err != nil {
			return "", err
		}
		if ok {
			return "canceled", nil
		}
		return "rejected", nil
	}
}
