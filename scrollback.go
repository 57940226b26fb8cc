package vtcore

// RingScrollback is the default ScrollbackProvider: a circular in-memory
// store capped at maxLines, evicting the oldest line once full. Used
// automatically by New() when no custom ScrollbackProvider is supplied via
// WithScrollback.
type RingScrollback struct {
	lines        [][]Cell
	wrapped      []bool
	maxLines     int
	totalEvicted int
}

// NewRingScrollback creates a ring buffer capped at maxLines lines. A
// non-positive maxLines disables storage (Push becomes a no-op), matching
// NoopScrollback's behavior.
func NewRingScrollback(maxLines int) *RingScrollback {
	if maxLines < 0 {
		maxLines = 0
	}
	return &RingScrollback{maxLines: maxLines}
}

func (r *RingScrollback) Push(line []Cell, wrapped bool) {
	if r.maxLines <= 0 {
		return
	}
	cp := make([]Cell, len(line))
	copy(cp, line)
	r.lines = append(r.lines, cp)
	r.wrapped = append(r.wrapped, wrapped)
	r.evictExcess()
}

func (r *RingScrollback) Len() int { return len(r.lines) }

func (r *RingScrollback) Line(index int) []Cell {
	if index < 0 || index >= len(r.lines) {
		return nil
	}
	return r.lines[index]
}

func (r *RingScrollback) Wrapped(index int) bool {
	if index < 0 || index >= len(r.wrapped) {
		return false
	}
	return r.wrapped[index]
}

func (r *RingScrollback) Clear() {
	r.lines = nil
	r.wrapped = nil
}

func (r *RingScrollback) SetMaxLines(max int) {
	if max < 0 {
		max = 0
	}
	r.maxLines = max
	r.evictExcess()
}

func (r *RingScrollback) MaxLines() int { return r.maxLines }

// TotalEvicted returns the number of lines ever scrolled out of the ring,
// the basis for absolute scrollback-row ids that survive eviction.
func (r *RingScrollback) TotalEvicted() int { return r.totalEvicted }

func (r *RingScrollback) evictExcess() {
	for len(r.lines) > r.maxLines {
		r.lines = r.lines[1:]
		r.wrapped = r.wrapped[1:]
		r.totalEvicted++
	}
}

var _ ScrollbackProvider = (*RingScrollback)(nil)
