package vtcore

import "strconv"

// ProgressBarState is the current OSC 9;4 taskbar progress state
// (xterm/ConEmu-derived), and the payload of EventProgressBarChanged.
type ProgressBarState struct {
	// Action is "set" or "remove".
	Action string
	// State is "normal", "error", "indeterminate", or "warning"; empty
	// when Action is "remove".
	State string
	// Percent is nil for the indeterminate state or when the host omitted
	// it on an "error" report; otherwise clamped to 0..100.
	Percent *int
}

var progressBarStateNames = map[int]string{
	1: "normal",
	2: "error",
	3: "indeterminate",
	4: "warning",
}

// ProgressBar handles the OSC 9;4 taskbar progress sequence. pt is
// everything after "9;" (so it starts with the literal "4"); the parser
// has already disambiguated this from a bare OSC 9 notification.
func (t *Terminal) ProgressBar(pt string) {
	if t.middleware != nil && t.middleware.ProgressBar != nil {
		t.middleware.ProgressBar(pt, t.progressBarInternal)
		return
	}
	t.progressBarInternal(pt)
}

func (t *Terminal) progressBarInternal(pt string) {
	parts := splitOnChar(pt, ';')

	if len(parts) < 2 || parts[1] == "" || parts[1] == "0" {
		t.publishProgressBar(ProgressBarState{Action: "remove"})
		return
	}

	stateCode, err := strconv.Atoi(parts[1])
	if err != nil {
		return
	}
	name, ok := progressBarStateNames[stateCode]
	if !ok {
		return
	}

	var percent *int
	if len(parts) >= 3 {
		if p, err := strconv.Atoi(parts[2]); err == nil {
			p = clamp(p, 0, 100)
			percent = &p
		}
	}
	if stateCode == 3 {
		// Indeterminate never carries a percent even if one was sent.
		percent = nil
	}

	t.publishProgressBar(ProgressBarState{Action: "set", State: name, Percent: percent})
}

func (t *Terminal) publishProgressBar(s ProgressBarState) {
	t.mu.Lock()
	t.progressBar = s
	events := t.events
	t.mu.Unlock()
	publishEvent(events, EventProgressBarChanged, s)
}

// CurrentProgressBar returns the terminal's current taskbar progress state.
func (t *Terminal) CurrentProgressBar() ProgressBarState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.progressBar
}
