package vtcore

// User variables are iTerm2's OSC 1337 SetUserVar mechanism: a flat
// name/value string map a shell integration script populates (e.g. the
// current git branch, a Kubernetes context) for badge/status-line
// consumption. See dispatchOSC1337SetUserVar in parser.go for the OSC 1337
// "SetUserVar=NAME=BASE64VALUE" wire form that calls SetUserVar after
// base64-decoding the value.

// SetUserVar stores a user variable (OSC 1337 SetUserVar=NAME=VALUE, value
// already base64-decoded by the caller).
func (t *Terminal) SetUserVar(name, value string) {
	if t.middleware != nil && t.middleware.SetUserVar != nil {
		t.middleware.SetUserVar(name, value, t.setUserVarInternal)
		return
	}
	t.setUserVarInternal(name, value)
}

func (t *Terminal) setUserVarInternal(name, value string) {
	t.mu.Lock()
	if t.userVars == nil {
		t.userVars = make(map[string]string)
	}
	t.userVars[name] = value
	events := t.events
	t.mu.Unlock()

	publishEvent(events, EventUserVarChanged, UserVarChange{Name: name, Value: value})
}

// UserVarChange is the payload of EventUserVarChanged.
type UserVarChange struct {
	Name, Value string
}

// GetUserVar returns the current value of name, or "" if unset.
func (t *Terminal) GetUserVar(name string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.userVars[name]
}

// GetUserVars returns a copy of all currently set user variables; mutating
// the returned map does not affect terminal state.
func (t *Terminal) GetUserVars() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]string, len(t.userVars))
	for k, v := range t.userVars {
		out[k] = v
	}
	return out
}

// ClearUserVars removes all user variables.
func (t *Terminal) ClearUserVars() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.userVars = make(map[string]string)
}
