// Package ui holds the non-rendered state of the punch selection overlay and
// the view mode it gates. Widget drawing and fades live client-side; this is
// only the open/close/arm/confirm protocol.
package ui

import "sync"

// PressResult describes what a press did.
type PressResult int

const (
	PressIgnored PressResult = iota
	PressArmed
	PressConfirmed
)

// Picker is a two-step selection list: the first press on an option arms it,
// a repeat press on the armed option confirms and closes. Pressing any other
// option re-arms. At most one option is armed at a time, and a confirmation
// can only come from the already-armed option.
type Picker struct {
	mu sync.Mutex

	options   map[string]bool
	open      bool
	armed     string
	hasArmed  bool
	onConfirm func(id string)
}

// NewPicker builds a closed picker over the given option ids. Presses on ids
// outside the set are ignored.
func NewPicker(options []string, onConfirm func(id string)) *Picker {
	set := make(map[string]bool, len(options))
	for _, id := range options {
		set[id] = true
	}
	return &Picker{options: set, onConfirm: onConfirm}
}

// Open shows the picker with nothing armed.
func (p *Picker) Open() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = true
	p.hasArmed = false
	p.armed = ""
}

// Close hides the picker and drops any armed option.
func (p *Picker) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = false
	p.hasArmed = false
	p.armed = ""
}

// IsOpen reports visibility.
func (p *Picker) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

// Armed returns the currently armed option, if any.
func (p *Picker) Armed() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.armed, p.hasArmed
}

// Press handles one press on an option. Confirmation closes the picker and
// fires the callback outside the lock.
func (p *Picker) Press(id string) PressResult {
	p.mu.Lock()
	if !p.open || !p.options[id] {
		p.mu.Unlock()
		return PressIgnored
	}

	if p.hasArmed && p.armed == id {
		p.open = false
		p.hasArmed = false
		p.armed = ""
		fn := p.onConfirm
		p.mu.Unlock()
		if fn != nil {
			fn(id)
		}
		return PressConfirmed
	}

	p.armed = id
	p.hasArmed = true
	p.mu.Unlock()
	return PressArmed
}
