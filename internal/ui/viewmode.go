package ui

import "sync"

// Mode is the active combat view.
type Mode int

const (
	// ModeFight is the normal follow camera with combat input live.
	ModeFight Mode = iota
	// ModeSelect is active while the picker is open; combat input is gated.
	ModeSelect
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeFight {
		return "fight"
	}
	return "select"
}

// ViewState tracks which mode is active and gates combat input on it. It
// consumes the picker's open/close transitions; it takes no part in combat
// decisions itself.
type ViewState struct {
	mu   sync.RWMutex
	mode Mode
}

// NewViewState starts in fight mode.
func NewViewState() *ViewState { return &ViewState{mode: ModeFight} }

// Mode returns the active view mode.
func (v *ViewState) Mode() Mode {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.mode
}

// EnterSelect switches to the selection view.
func (v *ViewState) EnterSelect() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mode = ModeSelect
}

// ExitSelect returns to the fight view.
func (v *ViewState) ExitSelect() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mode = ModeFight
}

// CombatInputLive reports whether combat actions should be forwarded.
func (v *ViewState) CombatInputLive() bool {
	return v.Mode() == ModeFight
}
