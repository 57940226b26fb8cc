package vtcore

// PromptMark stores information about a shell integration mark (OSC 133).
// Used for prompt-based navigation in scrollback.
type PromptMark struct {
	// Type is the mark type (PromptStart, CommandStart, CommandExecuted, CommandFinished).
	Type ShellIntegrationMark
	// Row is the absolute row position: the cursor row plus the cumulative
	// number of lines ever pushed to scrollback (0 is the first line ever
	// written). It is never negative.
	Row int
	// ExitCode is the command exit code (only valid for CommandFinished marks, -1 otherwise).
	ExitCode int
}

// ShellIntegrationProvider handles shell integration events (OSC 133).
type ShellIntegrationProvider interface {
	// OnMark is called when a shell integration mark is received.
	OnMark(mark ShellIntegrationMark, exitCode int)
}

// NoopShellIntegration ignores all shell integration events.
type NoopShellIntegration struct{}

func (NoopShellIntegration) OnMark(mark ShellIntegrationMark, exitCode int) {}

// Ensure NoopShellIntegration satisfies the interface
var _ ShellIntegrationProvider = (*NoopShellIntegration)(nil)

// Zone is a semantic region of the screen delimited by OSC 133 marks: a
// shell prompt, the command line typed at it, and (once finished) the
// command's exit status. Zones give a caller prompt-aware navigation and
// "select last command output" without re-parsing the shell's own prompt
// string.
type Zone struct {
	ID           uint64
	StartRow     int // absolute row of the PromptStart mark
	OutputRow    int // absolute row of the CommandExecuted mark, -1 if not yet reached
	EndRow       int // absolute row of the CommandFinished mark, -1 if still open
	Command      string
	ExitCode     int // only valid once EndRow >= 0
	Open         bool
}

// ShellIntegrationMark processes a shell integration mark (OSC 133).
// Records the mark position for prompt-based navigation.
func (t *Terminal) ShellIntegrationMark(mark ShellIntegrationMark, exitCode int) {
	if t.middleware != nil && t.middleware.ShellIntegrationMark != nil {
		t.middleware.ShellIntegrationMark(mark, exitCode, t.shellIntegrationMarkInternal)
		return
	}
	t.shellIntegrationMarkInternal(mark, exitCode)
}

func (t *Terminal) shellIntegrationMarkInternal(mark ShellIntegrationMark, exitCode int) {
	t.mu.Lock()

	// Calculate absolute row against the cumulative scrollback basis, not
	// the live (capacity-bounded) length, so row numbers stay stable as
	// old lines age out from under them.
	absoluteRow := t.cursor.Row + t.primaryBuffer.ScrollbackTotalLen()

	// Store the mark
	t.promptMarks = append(t.promptMarks, PromptMark{
		Type:     mark,
		Row:      absoluteRow,
		ExitCode: exitCode,
	})

	var opened, closed *Zone
	var finished *ShellIntegrationFinished
	switch mark {
	case PromptStart:
		t.nextZoneID++
		zone := Zone{ID: t.nextZoneID, StartRow: absoluteRow, OutputRow: -1, EndRow: -1, Open: true}
		t.zones = append(t.zones, zone)
		opened = &t.zones[len(t.zones)-1]
		limit := t.config.ZoneHistoryLimit
		if limit > 0 && len(t.zones) > limit {
			t.zones = t.zones[len(t.zones)-limit:]
		}
	case CommandStart:
		if z := t.openZoneLocked(); z != nil {
			z.Command = t.extractTextBetweenRows(z.StartRow, absoluteRow)
		}
	case CommandExecuted:
		if z := t.openZoneLocked(); z != nil {
			z.OutputRow = absoluteRow
		}
	case CommandFinished:
		if z := t.openZoneLocked(); z != nil {
			z.EndRow = absoluteRow
			z.ExitCode = exitCode
			z.Open = false
			closed = z
			finished = &ShellIntegrationFinished{
				Command:    z.Command,
				ExitCode:   exitCode,
				CursorLine: absoluteRow,
			}
		}
	}

	scrolledOut := t.pruneScrolledOutZonesLocked()

	provider := t.shellIntegrationProvider
	events := t.events
	t.mu.Unlock()

	if provider != nil {
		provider.OnMark(mark, exitCode)
	}
	if opened != nil {
		publishEvent(events, EventZoneOpened, *opened)
	}
	if closed != nil {
		publishEvent(events, EventZoneClosed, *closed)
	}
	if finished != nil {
		publishEvent(events, EventShellIntegration, *finished)
	}
	for _, z := range scrolledOut {
		publishEvent(events, EventZoneScrolledOut, z)
	}
}

// pruneScrolledOutZonesLocked drops zones whose highest known row has
// fallen off scrollback (spec: "evicted when all its absolute rows have
// fallen out of scrollback") and returns the ones it removed. Caller must
// hold t.mu.
func (t *Terminal) pruneScrolledOutZonesLocked() []Zone {
	total := t.primaryBuffer.ScrollbackTotalLen()
	evicted := total - t.primaryBuffer.ScrollbackLen()
	if evicted <= 0 || len(t.zones) == 0 {
		return nil
	}

	var scrolledOut []Zone
	kept := t.zones[:0]
	for _, z := range t.zones {
		lastRow := z.EndRow
		if lastRow < 0 {
			lastRow = z.OutputRow
		}
		if lastRow < 0 {
			lastRow = z.StartRow
		}
		if lastRow < evicted {
			scrolledOut = append(scrolledOut, z)
			continue
		}
		kept = append(kept, z)
	}
	t.zones = kept
	return scrolledOut
}

// ShellIntegrationFinished is the payload of EventShellIntegration, emitted
// when an OSC 133;D mark closes a Command/Output zone pair.
type ShellIntegrationFinished struct {
	Command    string
	ExitCode   int
	CursorLine int
}

// openZoneLocked returns the most recently opened, still-open zone, or nil.
// Caller must hold t.mu.
func (t *Terminal) openZoneLocked() *Zone {
	for i := len(t.zones) - 1; i >= 0; i-- {
		if t.zones[i].Open {
			return &t.zones[i]
		}
	}
	return nil
}

// Zones returns a copy of the retained semantic zones, oldest first, capped
// at Config.ZoneHistoryLimit.
func (t *Terminal) Zones() []Zone {
	t.mu.RLock()
	defer t.mu.RUnlock()
	zones := make([]Zone, len(t.zones))
	copy(zones, t.zones)
	return zones
}

// LastZone returns the most recently opened zone, or nil if none exist.
func (t *Terminal) LastZone() *Zone {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.zones) == 0 {
		return nil
	}
	z := t.zones[len(t.zones)-1]
	return &z
}

// PromptMarks returns all recorded prompt marks.
func (t *Terminal) PromptMarks() []PromptMark {
	t.mu.RLock()
	defer t.mu.RUnlock()

	// Return a copy to prevent external modification
	marks := make([]PromptMark, len(t.promptMarks))
	copy(marks, t.promptMarks)
	return marks
}

// PromptMarkCount returns the number of recorded prompt marks.
func (t *Terminal) PromptMarkCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.promptMarks)
}

// ClearPromptMarks removes all recorded prompt marks.
func (t *Terminal) ClearPromptMarks() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.promptMarks = nil
}

// NextPromptRow returns the absolute row of the next prompt mark after the given absolute row.
// Returns -1 if no next prompt exists.
// If markType is specified (not -1), only returns marks of that type.
func (t *Terminal) NextPromptRow(currentAbsRow int, markType ShellIntegrationMark) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, mark := range t.promptMarks {
		if mark.Row > currentAbsRow {
			if markType == -1 || mark.Type == markType {
				return mark.Row
			}
		}
	}
	return -1
}

// PrevPromptRow returns the absolute row of the previous prompt mark before the given absolute row.
// Returns -1 if no previous prompt exists.
// If markType is specified (not -1), only returns marks of that type.
func (t *Terminal) PrevPromptRow(currentAbsRow int, markType ShellIntegrationMark) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	// Search backwards
	for i := len(t.promptMarks) - 1; i >= 0; i-- {
		mark := t.promptMarks[i]
		if mark.Row < currentAbsRow {
			if markType == -1 || mark.Type == markType {
				return mark.Row
			}
		}
	}
	return -1
}

// ViewportRowToAbsolute converts a viewport row to an absolute row (the PromptMark.Row basis).
func (t *Terminal) ViewportRowToAbsolute(row int) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return row + t.primaryBuffer.ScrollbackTotalLen()
}

// AbsoluteRowToViewport converts an absolute row to a viewport row, or -1 if it is not on screen.
func (t *Terminal) AbsoluteRowToViewport(absRow int) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if row := absRow - t.primaryBuffer.ScrollbackTotalLen(); row >= 0 && row < t.rows {
		return row
	}
	return -1
}

// GetPromptMarkAt returns the prompt mark at the given absolute row, or nil if none exists.
func (t *Terminal) GetPromptMarkAt(absRow int) *PromptMark {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i := range t.promptMarks {
		if t.promptMarks[i].Row == absRow {
			mark := t.promptMarks[i]
			return &mark
		}
	}
	return nil
}

// SetShellIntegrationProvider sets the shell integration provider at runtime.
func (t *Terminal) SetShellIntegrationProvider(p ShellIntegrationProvider) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.shellIntegrationProvider = p
}

// ShellIntegrationProviderValue returns the current shell integration provider.
func (t *Terminal) ShellIntegrationProviderValue() ShellIntegrationProvider {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.shellIntegrationProvider
}

// GetLastCommandOutput returns the output of the last executed command.
// It finds the text between the last CommandExecuted (C) mark and the last CommandFinished (D) mark.
// Returns empty string if no complete command output is available.
func (t *Terminal) GetLastCommandOutput() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.promptMarks) == 0 {
		return ""
	}

	// Find the last CommandExecuted and CommandFinished marks
	var lastExecuted, lastFinished *PromptMark
	for i := len(t.promptMarks) - 1; i >= 0; i-- {
		mark := &t.promptMarks[i]
		if lastFinished == nil && mark.Type == CommandFinished {
			lastFinished = mark
		}
		if lastExecuted == nil && mark.Type == CommandExecuted {
			lastExecuted = mark
		}
		// Once we have both, check if they form a valid pair
		if lastExecuted != nil && lastFinished != nil {
			// CommandExecuted must come before CommandFinished
			if lastExecuted.Row < lastFinished.Row {
				break
			}
			// Invalid pair, continue searching
			lastFinished = nil
			lastExecuted = nil
		}
	}

	if lastExecuted == nil || lastFinished == nil {
		return ""
	}

	// Extract text between the two marks
	return t.extractTextBetweenRows(lastExecuted.Row, lastFinished.Row)
}

// extractTextBetweenRows extracts text from startRow (inclusive) to endRow (exclusive).
// Rows are absolute, against the cumulative ScrollbackTotalLen() basis (see
// shellIntegrationMarkInternal), not the live scrollback length.
func (t *Terminal) extractTextBetweenRows(startRow, endRow int) string {
	total := t.primaryBuffer.ScrollbackTotalLen()
	live := t.primaryBuffer.ScrollbackLen()
	evicted := total - live

	var lines []string
	// Start from the CommandExecuted row (inclusive) to CommandFinished row (exclusive)
	for absRow := startRow; absRow < endRow; absRow++ {
		var lineContent string

		switch {
		case absRow < evicted:
			// Fell off scrollback before we could read it; no data left.
		case absRow < total:
			// Row is live in scrollback.
			scrollbackLine := t.primaryBuffer.ScrollbackLine(absRow - evicted)
			if scrollbackLine != nil {
				lineContent = t.cellsToString(scrollbackLine)
			}
		default:
			// Row is in the visible buffer.
			bufferRow := absRow - total
			if bufferRow >= 0 && bufferRow < t.rows {
				lineContent = t.activeBuffer.LineContent(bufferRow)
			}
		}

		lines = append(lines, lineContent)
	}

	// Join lines, trimming trailing empty lines
	result := ""
	lastNonEmpty := -1
	for i, line := range lines {
		if line != "" {
			lastNonEmpty = i
		}
	}

	if lastNonEmpty < 0 {
		return ""
	}

	for i := 0; i <= lastNonEmpty; i++ {
		if i > 0 {
			result += "\n"
		}
		result += lines[i]
	}

	return result
}

// cellsToString converts a slice of cells to a string.
func (t *Terminal) cellsToString(cells []Cell) string {
	// Find the last non-space character
	lastNonSpace := -1
	for i := len(cells) - 1; i >= 0; i-- {
		cell := &cells[i]
		if cell.Char != ' ' && cell.Char != 0 && !cell.IsWideSpacer() {
			lastNonSpace = i
			break
		}
	}

	if lastNonSpace < 0 {
		return ""
	}

	runes := make([]rune, 0, lastNonSpace+1)
	for i := 0; i <= lastNonSpace; i++ {
		cell := &cells[i]
		if cell.IsWideSpacer() {
			continue
		}
		if cell.Char == 0 {
			runes = append(runes, ' ')
		} else {
			runes = append(runes, cell.Char)
		}
	}

	return string(runes)
}
