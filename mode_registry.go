package vtcore

import "sync"

// ModeRegistry tracks which ANSI and DEC private modes are currently set,
// independent of the legacy TerminalMode bitmask that drives the actual
// screen-model side effects. It exists so DECRQM (CSI Ps $ p / CSI ? Ps $ p)
// can answer "is mode N set, reset, or not recognized at all" for any mode
// the decoder knows about, including ones that carry no bitmask side effect
// of their own (e.g. synchronized update, SGR extended mouse).
type ModeRegistry struct {
	mu      sync.RWMutex
	ansi    map[ParsedMode]bool
	dec     map[ParsedMode]bool
	known   map[ParsedMode]bool
}

// NewModeRegistry creates an empty mode registry.
func NewModeRegistry() *ModeRegistry {
	return &ModeRegistry{
		ansi:  make(map[ParsedMode]bool),
		dec:   make(map[ParsedMode]bool),
		known: make(map[ParsedMode]bool),
	}
}

// MarkKnown records that mode is a recognized mode identifier, regardless
// of its current set/reset state. Called once per decoded mode number so
// DECRQM can distinguish "reset" (2) from "not recognized" (0).
func (r *ModeRegistry) MarkKnown(mode ParsedMode, dec bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.known[mode] = true
	if dec {
		if _, ok := r.dec[mode]; !ok {
			r.dec[mode] = false
		}
	} else {
		if _, ok := r.ansi[mode]; !ok {
			r.ansi[mode] = false
		}
	}
}

// Set records mode as set or reset in the given namespace (DEC private vs
// ANSI).
func (r *ModeRegistry) Set(mode ParsedMode, dec bool, on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.known[mode] = true
	if dec {
		r.dec[mode] = on
	} else {
		r.ansi[mode] = on
	}
}

// DECRQMReply encodes the CSI Ps $ p query reply values: 0 not recognized,
// 1 set, 2 reset, 3 permanently set, 4 permanently reset.
type DECRQMReply int

const (
	DECRQMNotRecognized DECRQMReply = 0
	DECRQMSet           DECRQMReply = 1
	DECRQMReset         DECRQMReply = 2
)

// Query reports the DECRQM status of mode in the given namespace.
func (r *ModeRegistry) Query(mode ParsedMode, dec bool) DECRQMReply {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.known[mode] {
		return DECRQMNotRecognized
	}
	var on bool
	if dec {
		on = r.dec[mode]
	} else {
		on = r.ansi[mode]
	}
	if on {
		return DECRQMSet
	}
	return DECRQMReset
}
