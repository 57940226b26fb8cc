package vtcore

// This file defines the sequence-level vocabulary that the parser (see
// parser.go) uses to describe a dispatched escape sequence to the Terminal
// handler methods in handler.go. It stands in for the semantic layer a
// wire-level byte parser would otherwise hand off to a higher-level escape
// interpreter: CharAttribute values name one SGR sub-attribute at a time,
// ClearMode/LineClearMode/TabulationClearMode name one erase variant, and so
// on. None of these types touch the byte stream directly; parser.go is the
// only file that constructs them.

// CharAttribute identifies one SGR (Select Graphic Rendition) sub-attribute.
// A single CSI "m" sequence with several ';'-separated parameters dispatches
// one SetTerminalCharAttribute call per parameter.
type CharAttribute int

const (
	CharAttributeReset CharAttribute = iota
	CharAttributeBold
	CharAttributeDim
	CharAttributeItalic
	CharAttributeUnderline
	CharAttributeDoubleUnderline
	CharAttributeCurlyUnderline
	CharAttributeDottedUnderline
	CharAttributeDashedUnderline
	CharAttributeBlinkSlow
	CharAttributeBlinkFast
	CharAttributeReverse
	CharAttributeHidden
	CharAttributeStrike
	CharAttributeCancelBold
	CharAttributeCancelBoldDim
	CharAttributeCancelItalic
	CharAttributeCancelUnderline
	CharAttributeCancelBlink
	CharAttributeCancelReverse
	CharAttributeCancelHidden
	CharAttributeCancelStrike
	CharAttributeForeground
	CharAttributeBackground
	CharAttributeUnderlineColor
)

// RGBColorValue is a 24-bit truecolor SGR operand (38/48/58;2;r;g;b).
type RGBColorValue struct {
	R, G, B uint8
}

// IndexedColorValue is a 256-color palette SGR operand (38/48/58;5;n).
type IndexedColorValue struct {
	Index uint8
}

// NamedColorAttr is a semantic color SGR operand (the 16 classic ANSI colors
// plus the default foreground/background), carried as an int so it can index
// DefaultPalette or resolve to NamedColorForeground/NamedColorBackground.
type NamedColorAttr int

// TerminalCharAttribute carries one SGR sub-attribute and, for color
// attributes, the operand that selects which color. At most one of
// RGBColor/IndexedColor/NamedColor is non-nil.
type TerminalCharAttribute struct {
	Attr         CharAttribute
	RGBColor     *RGBColorValue
	IndexedColor *IndexedColorValue
	NamedColor   *NamedColorAttr
}

// ClearMode selects the extent of a screen erase (ED, CSI n J).
type ClearMode int

const (
	ClearModeBelow ClearMode = iota
	ClearModeAbove
	ClearModeAll
	ClearModeSaved
)

// LineClearMode selects the extent of a line erase (EL, CSI n K).
type LineClearMode int

const (
	LineClearModeRight LineClearMode = iota
	LineClearModeLeft
	LineClearModeAll
)

// TabulationClearMode selects which tab stops TBC clears (CSI n g).
type TabulationClearMode int

const (
	TabulationClearModeCurrent TabulationClearMode = iota
	TabulationClearModeAll
)

// ParsedMode identifies a DEC private or ANSI mode named in a SM/RM (CSI h/l)
// sequence, before it is folded into the Terminal's TerminalMode bitmask by
// setModeLocked. Kept distinct from TerminalMode: TerminalMode is the
// terminal's persistent state, ParsedMode is a transient wire-level
// identifier the parser hands to SetMode/UnsetMode.
type ParsedMode int

const (
	ParsedModeCursorKeys ParsedMode = iota
	ParsedModeColumnMode
	ParsedModeInsert
	ParsedModeOrigin
	ParsedModeLineWrap
	ParsedModeBlinkingCursor
	ParsedModeLineFeedNewLine
	ParsedModeShowCursor
	ParsedModeReportMouseClicks
	ParsedModeReportCellMouseMotion
	ParsedModeReportAllMouseMotion
	ParsedModeReportFocusInOut
	ParsedModeUTF8Mouse
	ParsedModeSGRMouse
	ParsedModeAlternateScroll
	ParsedModeUrgencyHints
	ParsedModeSwapScreenAndSetRestoreCursor
	ParsedModeBracketedPaste
	ParsedModeSynchronizedUpdate
	ParsedModeAnyMouseMotion
	ParsedModeUTF8Ext
	ParsedModeSGRExtMouse
	ParsedModeLeftRightMargin
)

// Rectangle is a VT420 rectangular area as named by a DECFRA/DECERA/
// DECSERA/DECCARA/DECRARA/DECCRA/DECRQCRA parameter list: 1-based,
// inclusive on all four edges, exactly as the wire protocol specifies. A
// zero component means "unspecified" and is resolved by the handler to the
// current scroll/margin bounds before use.
type Rectangle struct {
	Top, Left, Bottom, Right int
}

// Hyperlink is the OSC 8 payload: an optional client-supplied id grouping
// several ranges into one link, and the target URI.
type Hyperlink struct {
	ID  string
	URI string
}

// KeyboardMode is the Kitty keyboard protocol progressive-enhancement
// bitmask (CSI > flags u / CSI = flags ; behavior u).
type KeyboardMode uint8

const (
	KeyboardModeNoMode                   KeyboardMode = 0
	KeyboardModeDisambiguateEscapeCodes  KeyboardMode = 1 << 0
	KeyboardModeReportEventTypes         KeyboardMode = 1 << 1
	KeyboardModeReportAlternateKeys      KeyboardMode = 1 << 2
	KeyboardModeReportAllKeysAsEscapes   KeyboardMode = 1 << 3
	KeyboardModeReportAssociatedText     KeyboardMode = 1 << 4
)

// KeyboardModeBehavior selects how SetKeyboardMode combines a new flag set
// with the mode currently on top of the keyboard mode stack.
type KeyboardModeBehavior int

const (
	KeyboardModeBehaviorReplace KeyboardModeBehavior = iota
	KeyboardModeBehaviorUnion
	KeyboardModeBehaviorDifference
)

// ModifyOtherKeys is xterm's modifyOtherKeys setting (CSI > 4 ; n m), 0-2.
type ModifyOtherKeys int

// ShellIntegrationMark identifies an OSC 133 semantic prompt zone boundary.
type ShellIntegrationMark int

const (
	PromptStart ShellIntegrationMark = iota
	CommandStart
	CommandExecuted
	CommandFinished
)
