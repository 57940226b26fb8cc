package vtcore

import (
	"os"

	"go.uber.org/zap"
)

// Config holds the runtime-tunable options that shape parsing and buffer
// policy but are not themselves terminal *state* (state lives on Terminal
// directly: cursor, modes, buffers). Construct with DefaultConfig and
// override individual fields, or use WithConfig.
type Config struct {
	// MaxScrollbackLines caps the primary buffer's scrollback when no
	// explicit ScrollbackProvider limit has been set via SetMaxScrollback.
	MaxScrollbackLines int

	// ReflowOnResize enables the width-reflow algorithm on Resize; when
	// false, Resize only reallocates the grid (teacher's original
	// behavior), which is faster but loses wrapped-line continuity across
	// a width change.
	ReflowOnResize bool

	// NormalizationForm is the Unicode normalization form applied to
	// incoming text before grapheme clustering ("", "NFC", "NFD", "NFKC",
	// "NFKD"); empty disables normalization.
	NormalizationForm string

	// TabWidth is the default tab stop interval before any HTS (ESC H)
	// sequence has been received.
	TabWidth int

	// AnswerbackString is returned for ENQ (0x05); empty means no reply.
	AnswerbackString string

	// AllowWindowOps gates replies to CSI t window-manipulation queries
	// (text area size, cell size), which can leak host display geometry.
	// Mirrors xterm's allowWindowOps resource. Captured from the
	// PAR_TERM_REPLY_XTWINOPS environment variable at construction when
	// not set explicitly.
	AllowWindowOps bool

	// ImageMaxMemoryBytes is the graphics store's total pixel-data budget
	// across all stored images (Sixel, iTerm2, Kitty).
	ImageMaxMemoryBytes int64

	// ImageMaxCount is carried in the configuration but is not read by the
	// graphics store: the number of distinct stored images is not capped,
	// only their total memory (ImageMaxMemoryBytes).
	ImageMaxCount int

	// SynchronizedUpdateTimeoutMS bounds how long a DEC 2026 "begin
	// synchronized update" can suppress observer notification before it
	// is forced closed, guarding against a stream that never sends the
	// matching "end" sequence.
	SynchronizedUpdateTimeoutMS int

	// KittyKeyboardDefaultFlags seeds the bottom of the keyboard protocol
	// flag stack before any CSI > flags u push.
	KittyKeyboardDefaultFlags KeyboardMode

	// ZoneHistoryLimit caps the number of retained semantic zones
	// (OSC 133 prompt/command lifecycle) before the oldest are dropped.
	ZoneHistoryLimit int

	// ResponseQueueCapacity bounds the host-bound response queue; oldest
	// entries are dropped once exceeded (a capacity breach per the error
	// taxonomy, logged rather than blocking the write path).
	ResponseQueueCapacity int

	// StrictModeValidation logs (via the configured Logger) any attempt
	// to set an unrecognized DEC private mode, instead of silently
	// ignoring it.
	StrictModeValidation bool

	// MaxClipboardEventBytes caps the decoded payload size accepted from an
	// OSC 52 clipboard-store request; payloads over the limit are
	// truncated and the truncation is logged, rather than handed to the
	// ClipboardProvider unbounded.
	MaxClipboardEventBytes int64

	// BoldBrightening renders bold text set against one of the 8 standard
	// indexed colors (0-7) using its bright counterpart (8-15) instead,
	// matching most terminal emulators' default behavior.
	BoldBrightening bool

	// FaintTextAlpha is the blend factor applied to faint (SGR 2) text's
	// resolved foreground color toward the cell's background: 0 leaves the
	// foreground unchanged, 1 renders it identical to the background.
	FaintTextAlpha float64

	// MaxTransferBytes caps the decoded pixel payload accepted from any
	// single graphics transmission (Sixel, Kitty, iTerm2 File=); a
	// transfer whose declared or observed size would exceed it is a
	// capacity breach and is dropped rather than decoded.
	MaxTransferBytes int64
}

// DefaultConfig returns the configuration New uses when WithConfig is not
// supplied.
func DefaultConfig() Config {
	return Config{
		MaxScrollbackLines:          10000,
		ReflowOnResize:              true,
		NormalizationForm:           "",
		TabWidth:                    8,
		AnswerbackString:            "",
		AllowWindowOps:              os.Getenv("PAR_TERM_REPLY_XTWINOPS") == "1",
		ImageMaxMemoryBytes:         320 * 1024 * 1024,
		ImageMaxCount:               256,
		SynchronizedUpdateTimeoutMS: 10000,
		KittyKeyboardDefaultFlags:   KeyboardModeNoMode,
		ZoneHistoryLimit:            1000,
		ResponseQueueCapacity:       256,
		StrictModeValidation:        false,
		MaxClipboardEventBytes:      1 << 20,
		BoldBrightening:             true,
		FaintTextAlpha:              0.5,
		MaxTransferBytes:            100 * 1024 * 1024,
	}
}

// WithConfig overrides the terminal's runtime configuration. Unset zero
// values are not special-cased: pass a full Config (typically built from
// DefaultConfig()) rather than a partial literal, unless the zero value is
// the value you want.
func WithConfig(cfg Config) Option {
	return func(t *Terminal) {
		t.config = cfg
	}
}

// WithLogger attaches a structured logger for diagnostic (not trace-level)
// events: clamped invariant violations, dropped sequences, capacity
// breaches. Defaults to zap.NewNop() so the hot per-byte write path never
// pays for logging nobody asked for.
func WithLogger(logger *zap.Logger) Option {
	return func(t *Terminal) {
		if logger != nil {
			t.logger = logger
		}
	}
}
