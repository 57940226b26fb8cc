package vtcore

import (
	"encoding/base64"
	"unicode/utf8"
)

// stdBase64Decode decodes standard (RFC 4648) base64, accepting input
// missing its '=' padding as some iTerm2 clients omit it.
func stdBase64Decode(s string) ([]byte, error) {
	if decoded, err := base64.StdEncoding.DecodeString(s); err == nil {
		return decoded, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}

// Handler receives decoded terminal actions from Decoder. Terminal implements
// this interface; handler.go contains the method bodies.
//
// The split between Decoder (byte-level state machine, this file) and
// Handler (semantic operations, handler.go) mirrors the accumulate-then-
// dispatch shape used throughout the rest of this package: a sequence is
// collected across Decoder.Write calls, then dispatched once its final byte
// arrives.
type Handler interface {
	Input(r rune)
	Execute(b byte)

	CarriageReturn()
	LineFeed()
	Backspace()
	HorizontalTabSet()
	Tab(n int)
	MoveBackwardTabs(n int)
	Bell()
	Substitute()
	ReverseIndex()

	Goto(row, col int)
	GotoCol(col int)
	GotoLine(row int)
	MoveUp(n int)
	MoveDown(n int)
	MoveForward(n int)
	MoveBackward(n int)
	MoveUpCr(n int)
	MoveDownCr(n int)
	MoveForwardTabs(n int)
	SaveCursorPosition()
	RestoreCursorPosition()

	ClearScreen(mode ClearMode)
	ClearLine(mode LineClearMode)
	ClearTabs(mode TabulationClearMode)
	InsertBlank(n int)
	InsertBlankLines(n int)
	DeleteChars(n int)
	DeleteLines(n int)
	EraseChars(n int)
	ScrollUp(n int)
	ScrollDown(n int)
	SetScrollingRegion(top, bottom int)
	SetLeftRightMargins(left, right int)

	FillRectangle(ch int, rect Rectangle)
	EraseRectangle(rect Rectangle, selective bool)
	ChangeAttributesRectangle(rect Rectangle, attrs []int, reverse bool)
	CopyRectangle(src Rectangle, destTop, destLeft int)
	RequestRectangleChecksum(id int, rect Rectangle)

	SetMode(mode ParsedMode)
	UnsetMode(mode ParsedMode)
	SetTerminalCharAttribute(attr TerminalCharAttribute)
	SetCursorStyle(style CursorStyle)
	SetKeypadApplicationMode()
	UnsetKeypadApplicationMode()
	SetKeyboardMode(mode KeyboardMode, behavior KeyboardModeBehavior)
	PushKeyboardMode(mode KeyboardMode)
	PopKeyboardMode(n int)
	ReportKeyboardMode()
	ReportMode(raw int, mode ParsedMode, dec bool)
	SetModifyOtherKeys(modify ModifyOtherKeys)
	ReportModifyOtherKeys()
	ConfigureCharset(index CharsetIndex, charset Charset)
	SetActiveCharset(n int)
	Decaln()
	ResetState()

	DeviceStatus(n int)
	IdentifyTerminal(b byte)
	TextAreaSizeChars()
	TextAreaSizePixels()
	CellSizePixels()

	SetTitle(title string)
	PushTitle()
	PopTitle()
	SetColor(index int, c Color)
	ResetColor(i int)
	SetDynamicColor(prefix string, index int, terminator string)
	SetHyperlink(hyperlink *Hyperlink)
	ClipboardStore(clipboard byte, data []byte)
	ClipboardLoad(clipboard byte, terminator string)
	SetWorkingDirectory(uri string)
	ShellIntegrationMark(mark ShellIntegrationMark, exitCode int)
	DesktopNotification(payload *NotificationPayload)
	ProgressBar(pt string)
	SetUserVar(name, value string)
	ITermInlineImage(args ITermImageArgs, data []byte)

	SixelReceived(params [][]uint16, data []byte)
	ApplicationCommandReceived(data []byte)
	PrivacyMessageReceived(data []byte)
	StartOfStringReceived(data []byte)
}

// Color is a narrow alias so parser.go does not need to import image/color
// directly; Terminal's SetColor already accepts image/color.Color values.
type Color = interface {
	RGBA() (r, g, b, a uint32)
}

// parserState is one state of the Paul Williams VT500-series parser model.
type parserState int

const (
	stateGround parserState = iota
	stateEscape
	stateEscapeIntermediate
	stateCSIEntry
	stateCSIParam
	stateCSIIntermediate
	stateCSIIgnore
	stateOSCString
	stateDCSEntry
	stateDCSParam
	stateDCSIntermediate
	stateDCSPassthrough
	stateDCSIgnore
	stateAPCString
	stateSOSPMString
)

const maxIntermediates = 8
const maxOSCLength = 1 << 20
const maxParams = 32

// Decoder is the byte-driven escape sequence state machine. It owns no
// terminal state itself: every recognized action is dispatched immediately
// to the attached Handler. Decoder.Write is safe to call with partial UTF-8
// sequences and partial escape sequences split across calls.
type Decoder struct {
	handler Handler
	state   parserState

	intermediates []byte
	params        []int
	curParam      int
	paramStarted  bool
	private       byte // '?', '<', '=', '>', or 0

	strBuf         []byte // OSC/DCS/APC/SOS/PM payload accumulator
	dcsSixelParams [][]uint16
	dcsFinal       byte

	utf8Buf  [4]byte
	utf8Need int
	utf8Got  int
}

// NewDecoder creates a decoder that dispatches to h.
func NewDecoder(h Handler) *Decoder {
	return &Decoder{handler: h, state: stateGround}
}

// Write feeds raw bytes into the state machine. Always returns
// (len(data), nil): malformed sequences are absorbed, never surfaced as an
// I/O error, matching the "never abort the stream" failure mode.
func (d *Decoder) Write(data []byte) (int, error) {
	for _, b := range data {
		d.step(b)
	}
	return len(data), nil
}

func (d *Decoder) step(b byte) {
	// UTF-8 continuation bytes are only meaningful in stateGround; every
	// other state operates on raw control/ASCII bytes.
	if d.state == stateGround {
		if d.utf8Need > 0 {
			if b&0xC0 == 0x80 {
				d.utf8Buf[d.utf8Got] = b
				d.utf8Got++
				if d.utf8Got == d.utf8Need {
					r, _ := utf8.DecodeRune(d.utf8Buf[:d.utf8Got])
					d.handler.Input(r)
					d.utf8Need = 0
					d.utf8Got = 0
				}
				return
			}
			// Invalid continuation: abandon the partial rune and
			// reprocess b as a fresh byte.
			d.utf8Need = 0
			d.utf8Got = 0
		}

		if b < 0x20 {
			d.executeC0(b)
			return
		}
		if b == 0x7f {
			return // DEL: ignored in ground state
		}
		if b < 0x80 {
			d.handler.Input(rune(b))
			return
		}
		if n := utf8SeqLen(b); n > 1 {
			d.utf8Buf[0] = b
			d.utf8Got = 1
			d.utf8Need = n
			return
		}
		// Stray continuation byte or invalid lead byte in ground state.
		return
	}

	switch d.state {
	case stateEscape:
		d.stepEscape(b)
	case stateEscapeIntermediate:
		d.stepEscapeIntermediate(b)
	case stateCSIEntry:
		d.stepCSIEntry(b)
	case stateCSIParam:
		d.stepCSIParam(b)
	case stateCSIIntermediate:
		d.stepCSIIntermediate(b)
	case stateCSIIgnore:
		d.stepCSIIgnore(b)
	case stateOSCString:
		d.stepOSCString(b)
	case stateDCSEntry:
		d.stepDCSEntry(b)
	case stateDCSParam:
		d.stepDCSParam(b)
	case stateDCSIntermediate:
		d.stepDCSIntermediate(b)
	case stateDCSPassthrough:
		d.stepDCSPassthrough(b)
	case stateDCSIgnore:
		d.stepDCSIgnore(b)
	case stateAPCString:
		d.stepAPCString(b)
	case stateSOSPMString:
		d.stepSOSPMString(b)
	}
}

func utf8SeqLen(lead byte) int {
	switch {
	case lead&0xE0 == 0xC0:
		return 2
	case lead&0xF0 == 0xE0:
		return 3
	case lead&0xF8 == 0xF0:
		return 4
	default:
		return 0
	}
}

// executeC0 handles a C0 control code seen in ground state. ESC (0x1b)
// transitions to the escape-sequence states; all other C0 codes execute
// immediately via Execute or a dedicated Handler method.
func (d *Decoder) executeC0(b byte) {
	switch b {
	case 0x1b:
		d.resetSeq()
		d.state = stateEscape
	case '\r':
		d.handler.CarriageReturn()
	case '\n', '\v', '\f':
		d.handler.LineFeed()
	case '\b':
		d.handler.Backspace()
	case '\t':
		d.handler.Tab(1)
	case 0x07:
		d.handler.Bell()
	case 0x18, 0x1a:
		// CAN/SUB: abort sequence, return to ground (no-op here, already ground)
	default:
		d.handler.Execute(b)
	}
}

func (d *Decoder) resetSeq() {
	d.intermediates = d.intermediates[:0]
	d.params = d.params[:0]
	d.curParam = 0
	d.paramStarted = false
	d.private = 0
	d.strBuf = d.strBuf[:0]
	d.dcsSixelParams = nil
}

func (d *Decoder) stepEscape(b byte) {
	switch {
	case b == '[':
		d.state = stateCSIEntry
	case b == ']':
		d.state = stateOSCString
	case b == 'P':
		d.state = stateDCSEntry
	case b == '_':
		d.state = stateAPCString
	case b == '^' || b == 'X':
		d.state = stateSOSPMString
	case b >= 0x20 && b <= 0x2f:
		d.intermediates = append(d.intermediates, b)
		d.state = stateEscapeIntermediate
	case b >= 0x30 && b <= 0x7e:
		d.dispatchEsc(b)
		d.state = stateGround
	default:
		d.state = stateGround
	}
}

func (d *Decoder) stepEscapeIntermediate(b byte) {
	switch {
	case b >= 0x20 && b <= 0x2f:
		if len(d.intermediates) < maxIntermediates {
			d.intermediates = append(d.intermediates, b)
		}
	case b >= 0x30 && b <= 0x7e:
		d.dispatchEsc(b)
		d.state = stateGround
	default:
		d.state = stateGround
	}
}

// dispatchEsc handles a two-(or-more)-character ESC sequence (not CSI/OSC/
// DCS/APC/SOS/PM, which have their own states).
func (d *Decoder) dispatchEsc(final byte) {
	if len(d.intermediates) == 0 {
		switch final {
		case 'D':
			d.handler.LineFeed()
		case 'E':
			d.handler.CarriageReturn()
			d.handler.LineFeed()
		case 'H':
			d.handler.HorizontalTabSet()
		case 'M':
			d.handler.ReverseIndex()
		case 'Z':
			d.handler.IdentifyTerminal(0)
		case 'c':
			d.handler.ResetState()
		case '7':
			d.handler.SaveCursorPosition()
		case '8':
			d.handler.RestoreCursorPosition()
		case '=':
			d.handler.SetKeypadApplicationMode()
		case '>':
			d.handler.UnsetKeypadApplicationMode()
		}
		return
	}

	switch d.intermediates[0] {
	case '(':
		d.handler.ConfigureCharset(CharsetIndexG0, escCharset(final))
	case ')':
		d.handler.ConfigureCharset(CharsetIndexG1, escCharset(final))
	case '*':
		d.handler.ConfigureCharset(CharsetIndexG2, escCharset(final))
	case '+':
		d.handler.ConfigureCharset(CharsetIndexG3, escCharset(final))
	case '#':
		if final == '8' {
			d.handler.Decaln()
		}
	}
}

func escCharset(final byte) Charset {
	if final == '0' {
		return CharsetLineDrawing
	}
	return CharsetASCII
}

func (d *Decoder) stepCSIEntry(b byte) {
	switch {
	case b >= '0' && b <= '9':
		d.paramStarted = true
		d.curParam = int(b - '0')
		d.state = stateCSIParam
	case b == ';':
		d.params = append(d.params, 0)
		d.state = stateCSIParam
	case b == '?' || b == '<' || b == '=' || b == '>':
		d.private = b
		d.state = stateCSIParam
	case b >= 0x20 && b <= 0x2f:
		d.intermediates = append(d.intermediates, b)
		d.state = stateCSIIntermediate
	case b >= 0x40 && b <= 0x7e:
		d.dispatchCSI(b)
		d.state = stateGround
	case b == 0x18 || b == 0x1a:
		d.state = stateGround
	default:
		d.state = stateCSIIgnore
	}
}

func (d *Decoder) stepCSIParam(b byte) {
	switch {
	case b >= '0' && b <= '9':
		d.paramStarted = true
		d.curParam = d.curParam*10 + int(b-'0')
	case b == ';':
		if len(d.params) < maxParams {
			d.params = append(d.params, d.curParam)
		}
		d.curParam = 0
		d.paramStarted = false
	case b == ':':
		// sub-parameter separator: flatten into the same param slot,
		// discarding sub-structure (not needed for the sequences this
		// parser recognizes).
	case b >= 0x20 && b <= 0x2f:
		d.flushParam()
		d.intermediates = append(d.intermediates, b)
		d.state = stateCSIIntermediate
	case b >= 0x40 && b <= 0x7e:
		d.flushParam()
		d.dispatchCSI(b)
		d.state = stateGround
	case b == 0x18 || b == 0x1a:
		d.state = stateGround
	default:
		d.state = stateCSIIgnore
	}
}

func (d *Decoder) stepCSIIntermediate(b byte) {
	switch {
	case b >= 0x20 && b <= 0x2f:
		if len(d.intermediates) < maxIntermediates {
			d.intermediates = append(d.intermediates, b)
		}
	case b >= 0x40 && b <= 0x7e:
		d.dispatchCSI(b)
		d.state = stateGround
	default:
		d.state = stateCSIIgnore
	}
}

func (d *Decoder) stepCSIIgnore(b byte) {
	if b >= 0x40 && b <= 0x7e {
		d.state = stateGround
	}
}

func (d *Decoder) flushParam() {
	if d.paramStarted || len(d.params) == 0 {
		d.params = append(d.params, d.curParam)
	}
}

func (d *Decoder) param(i, def int) int {
	if i >= len(d.params) || d.params[i] == 0 {
		return def
	}
	return d.params[i]
}

func (d *Decoder) paramRaw(i, def int) int {
	if i >= len(d.params) {
		return def
	}
	return d.params[i]
}

func (d *Decoder) stepOSCString(b byte) {
	if b == 0x07 {
		d.dispatchOSC()
		d.state = stateGround
		return
	}
	if b == 0x1b {
		// Might be ST (ESC \); peek handled by staying here and letting
		// the next byte decide, tracked via a trailing ESC marker.
		d.strBuf = append(d.strBuf, b)
		return
	}
	if b == '\\' && len(d.strBuf) > 0 && d.strBuf[len(d.strBuf)-1] == 0x1b {
		d.strBuf = d.strBuf[:len(d.strBuf)-1]
		d.dispatchOSC()
		d.state = stateGround
		return
	}
	if len(d.strBuf) < maxOSCLength {
		d.strBuf = append(d.strBuf, b)
	}
}

func (d *Decoder) stepAPCString(b byte) {
	if d.terminateString(b) {
		d.handler.ApplicationCommandReceived(append([]byte(nil), d.strBuf...))
		d.state = stateGround
	}
}

func (d *Decoder) stepSOSPMString(b byte) {
	if d.terminateString(b) {
		if len(d.strBuf) > 0 && d.strBuf[0] == '^' {
			d.handler.PrivacyMessageReceived(append([]byte(nil), d.strBuf[1:]...))
		} else {
			d.handler.StartOfStringReceived(append([]byte(nil), d.strBuf...))
		}
		d.state = stateGround
	}
}

// terminateString accumulates bytes for a BEL/ST-terminated string state
// (APC/SOS/PM) and returns true once a terminator has been consumed.
func (d *Decoder) terminateString(b byte) bool {
	if b == 0x07 {
		return true
	}
	if b == 0x1b {
		d.strBuf = append(d.strBuf, b)
		return false
	}
	if b == '\\' && len(d.strBuf) > 0 && d.strBuf[len(d.strBuf)-1] == 0x1b {
		d.strBuf = d.strBuf[:len(d.strBuf)-1]
		return true
	}
	if len(d.strBuf) < maxOSCLength {
		d.strBuf = append(d.strBuf, b)
	}
	return false
}

func (d *Decoder) stepDCSEntry(b byte) {
	switch {
	case b >= '0' && b <= '9':
		d.paramStarted = true
		d.curParam = int(b - '0')
		d.state = stateDCSParam
	case b == ';':
		d.params = append(d.params, 0)
		d.state = stateDCSParam
	case b == '?' || b == '<' || b == '=' || b == '>':
		d.private = b
		d.state = stateDCSParam
	case b >= 0x20 && b <= 0x2f:
		d.intermediates = append(d.intermediates, b)
		d.state = stateDCSIntermediate
	case b >= 0x40 && b <= 0x7e:
		d.dcsFinal = b
		d.state = stateDCSPassthrough
	default:
		d.state = stateDCSIgnore
	}
}

func (d *Decoder) stepDCSParam(b byte) {
	switch {
	case b >= '0' && b <= '9':
		d.paramStarted = true
		d.curParam = d.curParam*10 + int(b-'0')
	case b == ';':
		d.flushParam()
		d.curParam = 0
		d.paramStarted = false
	case b >= 0x20 && b <= 0x2f:
		d.flushParam()
		d.intermediates = append(d.intermediates, b)
		d.state = stateDCSIntermediate
	case b >= 0x40 && b <= 0x7e:
		d.flushParam()
		d.dcsFinal = b
		d.state = stateDCSPassthrough
	default:
		d.state = stateDCSIgnore
	}
}

func (d *Decoder) stepDCSIntermediate(b byte) {
	switch {
	case b >= 0x20 && b <= 0x2f:
		if len(d.intermediates) < maxIntermediates {
			d.intermediates = append(d.intermediates, b)
		}
	case b >= 0x40 && b <= 0x7e:
		d.dcsFinal = b
		d.state = stateDCSPassthrough
	default:
		d.state = stateDCSIgnore
	}
}

func (d *Decoder) stepDCSPassthrough(b byte) {
	if b == 0x1b {
		d.strBuf = append(d.strBuf, b)
		return
	}
	if b == '\\' && len(d.strBuf) > 0 && d.strBuf[len(d.strBuf)-1] == 0x1b {
		d.strBuf = d.strBuf[:len(d.strBuf)-1]
		d.dispatchDCS()
		d.state = stateGround
		return
	}
	if b == 0x07 {
		d.dispatchDCS()
		d.state = stateGround
		return
	}
	if len(d.strBuf) < maxOSCLength {
		d.strBuf = append(d.strBuf, b)
	}
}

func (d *Decoder) stepDCSIgnore(b byte) {
	if b == 0x1b || b == 0x07 {
		d.state = stateGround
	}
}

// dispatchCSI handles a complete CSI sequence: private marker (if any),
// parameters, intermediates, and final byte. Unrecognized (marker,
// intermediates, final) combinations are silently ignored.
func (d *Decoder) dispatchCSI(final byte) {
	h := d.handler

	if len(d.intermediates) > 0 {
		d.dispatchCSIIntermediate(final)
		return
	}

	if d.private == '?' {
		d.dispatchDECPrivateMode(final)
		return
	}
	if d.private == '>' && final == 'c' {
		h.IdentifyTerminal('>')
		return
	}
	if d.private == '>' && final == 'm' {
		// CSI > 4 ; n m  (SetModifyOtherKeys) or CSI > m (reset)
		h.SetModifyOtherKeys(ModifyOtherKeys(d.param(1, 0)))
		return
	}
	if d.private == '=' && final == 'u' {
		h.SetKeyboardMode(KeyboardMode(d.param(0, 0)), KeyboardModeBehaviorReplace)
		return
	}
	if d.private == '>' && final == 'u' {
		h.PushKeyboardMode(KeyboardMode(d.param(0, 0)))
		return
	}
	if d.private == '<' && final == 'u' {
		h.PopKeyboardMode(d.param(0, 1))
		return
	}

	switch final {
	case 'A':
		h.MoveUp(d.param(0, 1))
	case 'B':
		h.MoveDown(d.param(0, 1))
	case 'C':
		h.MoveForward(d.param(0, 1))
	case 'D':
		h.MoveBackward(d.param(0, 1))
	case 'E':
		h.MoveDownCr(d.param(0, 1))
	case 'F':
		h.MoveUpCr(d.param(0, 1))
	case 'G', '`':
		h.GotoCol(d.param(0, 1) - 1)
	case 'd':
		h.GotoLine(d.param(0, 1) - 1)
	case 'H', 'f':
		h.Goto(d.param(0, 1)-1, d.param(1, 1)-1)
	case 'I':
		h.MoveForwardTabs(d.param(0, 1))
	case 'Z':
		h.MoveBackwardTabs(d.param(0, 1))
	case 'J':
		h.ClearScreen(ClearMode(d.param(0, 0)))
	case 'K':
		h.ClearLine(LineClearMode(d.param(0, 0)))
	case 'L':
		h.InsertBlankLines(d.param(0, 1))
	case 'M':
		h.DeleteLines(d.param(0, 1))
	case 'P':
		h.DeleteChars(d.param(0, 1))
	case '@':
		h.InsertBlank(d.param(0, 1))
	case 'X':
		h.EraseChars(d.param(0, 1))
	case 'S':
		h.ScrollUp(d.param(0, 1))
	case 'T':
		h.ScrollDown(d.param(0, 1))
	case 'g':
		h.ClearTabs(tabClearMode(d.param(0, 0)))
	case 'r':
		h.SetScrollingRegion(d.param(0, 1)-1, d.paramRaw(1, 0))
	case 'm':
		d.dispatchSGR()
	case 'h':
		h.SetMode(csiAnsiMode(d.param(0, 0)))
	case 'l':
		h.UnsetMode(csiAnsiMode(d.param(0, 0)))
	case 'n':
		h.DeviceStatus(d.param(0, 0))
	case 'c':
		h.IdentifyTerminal(0)
	case 's':
		if len(d.params) >= 2 {
			h.SetLeftRightMargins(d.param(0, 1), d.param(1, 0))
		} else {
			h.SaveCursorPosition()
		}
	case 'u':
		h.RestoreCursorPosition()
	case 't':
		d.dispatchWindowOp()
	}
}

func (d *Decoder) dispatchCSIIntermediate(final byte) {
	h := d.handler
	switch d.intermediates[0] {
	case ' ':
		if final == 'q' {
			h.SetCursorStyle(CursorStyle(d.param(0, 1) - 1))
		}
	case '$':
		switch final {
		case 'p':
			dec := d.private == '?'
			var mode ParsedMode
			if dec {
				mode, _ = decPrivateMode(d.param(0, 0))
			} else {
				mode = csiAnsiMode(d.param(0, 0))
			}
			h.ReportMode(d.param(0, 0), mode, dec)
		case 'x':
			// DECFRA: CSI Pc ; Pt ; Pl ; Pb ; Pr $ x
			h.FillRectangle(d.param(0, 0), Rectangle{
				Top: d.param(1, 0), Left: d.param(2, 0),
				Bottom: d.param(3, 0), Right: d.param(4, 0),
			})
		case 'z':
			// DECERA: CSI Pt ; Pl ; Pb ; Pr $ z
			h.EraseRectangle(d.rectFromParams(0), false)
		case '{':
			// DECSERA: CSI Pt ; Pl ; Pb ; Pr $ {
			h.EraseRectangle(d.rectFromParams(0), true)
		case 'r':
			// DECCARA: CSI Pt ; Pl ; Pb ; Pr ; Ps... $ r
			h.ChangeAttributesRectangle(d.rectFromParams(0), d.attrParamsAfterRect(), false)
		case 't':
			// DECRARA: CSI Pt ; Pl ; Pb ; Pr ; Ps... $ t
			h.ChangeAttributesRectangle(d.rectFromParams(0), d.attrParamsAfterRect(), true)
		case 'v':
			// DECCRA: CSI Pts ; Pls ; Pbs ; Prs ; Pps ; Ptd ; Pld ; Ppd $ v
			h.CopyRectangle(d.rectFromParams(0), d.param(5, 0), d.param(6, 0))
		}
	case '*':
		if final == 'y' {
			// DECRQCRA: CSI Pid ; Pg ; Pt ; Pl ; Pb ; Pr * y
			h.RequestRectangleChecksum(d.param(0, 0), d.rectFromParams(2))
		}
	}
}

// rectFromParams reads a Top;Left;Bottom;Right rectangle starting at
// parameter index offset. Unspecified (zero) components are resolved to
// screen/margin defaults by the handler, matching d.param's zero-as-default
// convention used throughout this parser.
func (d *Decoder) rectFromParams(offset int) Rectangle {
	return Rectangle{
		Top:    d.param(offset, 0),
		Left:   d.param(offset+1, 0),
		Bottom: d.param(offset+2, 0),
		Right:  d.param(offset+3, 0),
	}
}

// attrParamsAfterRect returns the SGR-style attribute selectors trailing a
// DECCARA/DECRARA rectangle (its first four parameters).
func (d *Decoder) attrParamsAfterRect() []int {
	ps := d.allParams()
	if len(ps) <= 4 {
		return nil
	}
	return ps[4:]
}

func (d *Decoder) dispatchWindowOp() {
	switch d.param(0, 0) {
	case 18:
		d.handler.TextAreaSizeChars()
	case 14:
		d.handler.TextAreaSizePixels()
	case 16:
		d.handler.CellSizePixels()
	}
}

func tabClearMode(n int) TabulationClearMode {
	if n == 3 {
		return TabulationClearModeAll
	}
	return TabulationClearModeCurrent
}

// isANSIMode reports whether mode belongs to the ANSI (CSI Ps h/l) namespace
// rather than the DEC private (CSI ? Ps h/l) namespace, for ModeRegistry
// bookkeeping.
func isANSIMode(mode ParsedMode) bool {
	switch mode {
	case ParsedModeInsert, ParsedModeLineFeedNewLine:
		return true
	default:
		return false
	}
}

func csiAnsiMode(n int) ParsedMode {
	switch n {
	case 4:
		return ParsedModeInsert
	case 20:
		return ParsedModeLineFeedNewLine
	default:
		return ParsedMode(-1)
	}
}

func (d *Decoder) dispatchDECPrivateMode(final byte) {
	h := d.handler
	if final != 'h' && final != 'l' {
		return
	}
	set := final == 'h'
	for _, p := range d.allParams() {
		mode, ok := decPrivateMode(p)
		if !ok {
			continue
		}
		if set {
			h.SetMode(mode)
		} else {
			h.UnsetMode(mode)
		}
	}
}

func (d *Decoder) allParams() []int {
	if len(d.params) == 0 {
		if d.paramStarted || d.curParam != 0 {
			return []int{d.curParam}
		}
		return nil
	}
	return d.params
}

func decPrivateMode(n int) (ParsedMode, bool) {
	switch n {
	case 1:
		return ParsedModeCursorKeys, true
	case 3:
		return ParsedModeColumnMode, true
	case 6:
		return ParsedModeOrigin, true
	case 7:
		return ParsedModeLineWrap, true
	case 12:
		return ParsedModeBlinkingCursor, true
	case 25:
		return ParsedModeShowCursor, true
	case 9:
		return ParsedModeReportMouseClicks, true
	case 1000:
		return ParsedModeReportMouseClicks, true
	case 1002:
		return ParsedModeReportCellMouseMotion, true
	case 1003:
		return ParsedModeReportAllMouseMotion, true
	case 1004:
		return ParsedModeReportFocusInOut, true
	case 1005:
		return ParsedModeUTF8Mouse, true
	case 1006:
		return ParsedModeSGRMouse, true
	case 1015:
		return ParsedModeUTF8Ext, true
	case 1007:
		return ParsedModeAlternateScroll, true
	case 1042, 1043:
		return ParsedModeUrgencyHints, true
	case 1047, 1049:
		return ParsedModeSwapScreenAndSetRestoreCursor, true
	case 2004:
		return ParsedModeBracketedPaste, true
	case 2026:
		return ParsedModeSynchronizedUpdate, true
	case 69:
		return ParsedModeLeftRightMargin, true
	default:
		return 0, false
	}
}

// dispatchSGR splits the accumulated CSI parameters into one
// TerminalCharAttribute per SGR sub-attribute, consuming the extra operand
// parameters that 38/48/58 (extended color) sequences carry.
func (d *Decoder) dispatchSGR() {
	params := d.allParams()
	if len(params) == 0 {
		params = []int{0}
	}
	h := d.handler
	for i := 0; i < len(params); i++ {
		p := params[i]
		switch {
		case p == 0:
			h.SetTerminalCharAttribute(TerminalCharAttribute{Attr: CharAttributeReset})
		case p == 1:
			h.SetTerminalCharAttribute(TerminalCharAttribute{Attr: CharAttributeBold})
		case p == 2:
			h.SetTerminalCharAttribute(TerminalCharAttribute{Attr: CharAttributeDim})
		case p == 3:
			h.SetTerminalCharAttribute(TerminalCharAttribute{Attr: CharAttributeItalic})
		case p == 4:
			h.SetTerminalCharAttribute(TerminalCharAttribute{Attr: CharAttributeUnderline})
		case p == 5:
			h.SetTerminalCharAttribute(TerminalCharAttribute{Attr: CharAttributeBlinkSlow})
		case p == 6:
			h.SetTerminalCharAttribute(TerminalCharAttribute{Attr: CharAttributeBlinkFast})
		case p == 7:
			h.SetTerminalCharAttribute(TerminalCharAttribute{Attr: CharAttributeReverse})
		case p == 8:
			h.SetTerminalCharAttribute(TerminalCharAttribute{Attr: CharAttributeHidden})
		case p == 9:
			h.SetTerminalCharAttribute(TerminalCharAttribute{Attr: CharAttributeStrike})
		case p == 21:
			h.SetTerminalCharAttribute(TerminalCharAttribute{Attr: CharAttributeDoubleUnderline})
		case p == 22:
			h.SetTerminalCharAttribute(TerminalCharAttribute{Attr: CharAttributeCancelBoldDim})
		case p == 23:
			h.SetTerminalCharAttribute(TerminalCharAttribute{Attr: CharAttributeCancelItalic})
		case p == 24:
			h.SetTerminalCharAttribute(TerminalCharAttribute{Attr: CharAttributeCancelUnderline})
		case p == 25:
			h.SetTerminalCharAttribute(TerminalCharAttribute{Attr: CharAttributeCancelBlink})
		case p == 27:
			h.SetTerminalCharAttribute(TerminalCharAttribute{Attr: CharAttributeCancelReverse})
		case p == 28:
			h.SetTerminalCharAttribute(TerminalCharAttribute{Attr: CharAttributeCancelHidden})
		case p == 29:
			h.SetTerminalCharAttribute(TerminalCharAttribute{Attr: CharAttributeCancelStrike})
		case p >= 30 && p <= 37:
			n := NamedColorAttr(p - 30)
			h.SetTerminalCharAttribute(TerminalCharAttribute{Attr: CharAttributeForeground, NamedColor: &n})
		case p == 38:
			attr, consumed := d.extendedColor(params[i:], CharAttributeForeground)
			h.SetTerminalCharAttribute(attr)
			i += consumed
		case p == 39:
			h.SetTerminalCharAttribute(TerminalCharAttribute{Attr: CharAttributeForeground})
		case p >= 40 && p <= 47:
			n := NamedColorAttr(p - 40)
			h.SetTerminalCharAttribute(TerminalCharAttribute{Attr: CharAttributeBackground, NamedColor: &n})
		case p == 48:
			attr, consumed := d.extendedColor(params[i:], CharAttributeBackground)
			h.SetTerminalCharAttribute(attr)
			i += consumed
		case p == 49:
			h.SetTerminalCharAttribute(TerminalCharAttribute{Attr: CharAttributeBackground})
		case p == 53:
			// overline: not in CharAttribute surface, ignored.
		case p == 58:
			attr, consumed := d.extendedColor(params[i:], CharAttributeUnderlineColor)
			h.SetTerminalCharAttribute(attr)
			i += consumed
		case p == 59:
			h.SetTerminalCharAttribute(TerminalCharAttribute{Attr: CharAttributeUnderlineColor})
		case p >= 90 && p <= 97:
			n := NamedColorAttr(p - 90 + 8)
			h.SetTerminalCharAttribute(TerminalCharAttribute{Attr: CharAttributeForeground, NamedColor: &n})
		case p >= 100 && p <= 107:
			n := NamedColorAttr(p - 100 + 8)
			h.SetTerminalCharAttribute(TerminalCharAttribute{Attr: CharAttributeBackground, NamedColor: &n})
		}
	}
}

// extendedColor parses the "5;n" (indexed) or "2;r;g;b" (truecolor) operand
// following a 38/48/58 parameter and returns the resulting attribute plus
// how many extra parameter slots it consumed.
func (d *Decoder) extendedColor(rest []int, attr CharAttribute) (TerminalCharAttribute, int) {
	if len(rest) < 2 {
		return TerminalCharAttribute{Attr: attr}, len(rest) - 1
	}
	switch rest[1] {
	case 2:
		if len(rest) >= 5 {
			return TerminalCharAttribute{Attr: attr, RGBColor: &RGBColorValue{
				R: uint8(rest[2]), G: uint8(rest[3]), B: uint8(rest[4]),
			}}, 4
		}
		return TerminalCharAttribute{Attr: attr}, len(rest) - 1
	case 5:
		if len(rest) >= 3 {
			return TerminalCharAttribute{Attr: attr, IndexedColor: &IndexedColorValue{Index: uint8(rest[2])}}, 2
		}
		return TerminalCharAttribute{Attr: attr}, len(rest) - 1
	default:
		return TerminalCharAttribute{Attr: attr}, len(rest) - 1
	}
}

// dispatchOSC splits the accumulated "Ps;Pt" OSC payload on its first ';'
// and dispatches by the numeric Ps code.
func (d *Decoder) dispatchOSC() {
	payload := string(d.strBuf)
	ps, pt := splitOSC(payload)
	h := d.handler

	switch ps {
	case "0", "1", "2":
		// icon name (1) has no dedicated handler method, folded into title.
		h.SetTitle(pt)
	case "7":
		h.SetWorkingDirectory(pt)
	case "8":
		h.SetHyperlink(parseHyperlinkOSC(pt))
	case "52":
		d.dispatchClipboardOSC(pt)
	case "133":
		d.dispatchShellIntegrationOSC(pt)
	case "4", "10", "11", "12", "17", "19":
		h.SetDynamicColor(ps, 0, "\x07")
	case "104":
		h.ResetColor(-1)
	case "9":
		d.dispatchOSC9(pt)
	case "99":
		d.dispatchOSC99(pt)
	case "777":
		d.dispatchOSC777(pt)
	case "1337":
		d.dispatchOSC1337(pt)
	}
}

// dispatchOSC9 disambiguates xterm/ConEmu taskbar progress (OSC 9;4;...)
// from a bare iTerm2-style OSC 9 text notification per spec §4.H: "OSC 9
// followed immediately by ;4 is progress; OSC 9 followed by a non-;4
// first parameter is a notification."
func (d *Decoder) dispatchOSC9(pt string) {
	if pt == "4" || (len(pt) > 1 && pt[:2] == "4;") {
		d.handler.ProgressBar(pt)
		return
	}
	d.handler.DesktopNotification(&NotificationPayload{
		PayloadType: "title",
		Data:        []byte(pt),
		Done:        true,
	})
}

// dispatchOSC99 parses the Kitty desktop notification protocol:
// "99;key=value:key=value;payload". Unrecognized keys are ignored.
func (d *Decoder) dispatchOSC99(pt string) {
	semi := -1
	for i := 0; i < len(pt); i++ {
		if pt[i] == ';' {
			semi = i
			break
		}
	}
	var meta, data string
	if semi >= 0 {
		meta, data = pt[:semi], pt[semi+1:]
	} else {
		meta = pt
	}

	payload := &NotificationPayload{PayloadType: "body", Done: true}
	for _, kv := range splitOnChar(meta, ':') {
		k, v := splitKV(kv)
		switch k {
		case "i":
			payload.ID = v
		case "d":
			payload.Done = v != "0"
		case "p":
			payload.PayloadType = v
		case "e":
			payload.Encoding = v
		case "a":
			payload.Actions = append(payload.Actions, v)
		case "c":
			payload.TrackClose = v == "1"
		case "o":
			payload.Occasion = v
		}
	}
	if payload.Encoding == "1" {
		if decoded, err := stdBase64Decode(data); err == nil {
			payload.Data = decoded
		}
	} else {
		payload.Data = []byte(data)
	}
	d.handler.DesktopNotification(payload)
}

// dispatchOSC777 parses the growl/rxvt-derived plain notification form:
// "777;notify;title;body".
func (d *Decoder) dispatchOSC777(pt string) {
	parts := splitOnChar(pt, ';')
	if len(parts) == 0 || parts[0] != "notify" {
		return
	}
	payload := &NotificationPayload{PayloadType: "body", Done: true}
	if len(parts) >= 2 {
		payload.AppName = parts[1]
	}
	if len(parts) >= 3 {
		payload.Data = []byte(parts[2])
	}
	d.handler.DesktopNotification(payload)
}

// dispatchOSC1337 parses iTerm2 proprietary sequences of the form
// "1337;Key=Value" or "1337;Key=Sub1=Sub2". SetUserVar and File= (inline
// image transmission) are interpreted; other iTerm2 sub-forms (badges,
// uploads, marks) are silently ignored per spec's failure mode for
// unrecognized sequences.
func (d *Decoder) dispatchOSC1337(pt string) {
	if hasWirePrefix(pt, "SetUserVar=") {
		d.dispatchOSC1337SetUserVar(pt[len("SetUserVar="):])
		return
	}
	if hasWirePrefix(pt, "File=") {
		d.dispatchOSC1337File(pt[len("File="):])
		return
	}
}

// hasWirePrefix reports whether s begins with prefix, without pulling in
// strings.HasPrefix for this file's otherwise byte-index-only parsers.
func hasWirePrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

func (d *Decoder) dispatchOSC1337SetUserVar(rest string) {
	eq := -1
	for i := 0; i < len(rest); i++ {
		if rest[i] == '=' {
			eq = i
			break
		}
	}
	if eq < 0 {
		return
	}
	name, encoded := rest[:eq], rest[eq+1:]
	decoded, err := stdBase64Decode(encoded)
	if err != nil {
		return
	}
	d.handler.SetUserVar(name, string(decoded))
}

// dispatchOSC1337File parses "File=[args]:base64data", iTerm2's inline
// image transmission. args is a ';'-separated key=value list (same shape
// as the Kitty graphics protocol's key-value parameters in kitty.go); the
// payload after the ':' is the raw (PNG/JPEG/GIF) file content, base64
// encoded. Neither args nor base64 data can contain ':', so the first
// occurrence unambiguously separates them.
func (d *Decoder) dispatchOSC1337File(rest string) {
	colon := -1
	for i := 0; i < len(rest); i++ {
		if rest[i] == ':' {
			colon = i
			break
		}
	}
	if colon < 0 {
		return
	}
	argsPart, dataPart := rest[:colon], rest[colon+1:]
	data, err := stdBase64Decode(dataPart)
	if err != nil || len(data) == 0 {
		return
	}
	d.handler.ITermInlineImage(parseITermImageArgs(argsPart), data)
}

// splitOnChar splits s on every occurrence of sep, like strings.Split
// without importing strings into this file's small byte-oriented parsers.
func splitOnChar(s string, sep byte) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

// splitKV splits "key=value" into its two parts; returns ("", s) if there
// is no '='.
func splitKV(s string) (key, value string) {
	for i := 0; i < len(s); i++ {
		if s[i] == '=' {
			return s[:i], s[i+1:]
		}
	}
	return "", s
}

func splitOSC(payload string) (ps, pt string) {
	for i := 0; i < len(payload); i++ {
		if payload[i] == ';' {
			return payload[:i], payload[i+1:]
		}
	}
	return payload, ""
}

func parseHyperlinkOSC(pt string) *Hyperlink {
	// pt is "params;uri"; params is "id=xxx" optionally, uri may be empty
	// to clear the active hyperlink.
	semi := -1
	for i := 0; i < len(pt); i++ {
		if pt[i] == ';' {
			semi = i
			break
		}
	}
	var params, uri string
	if semi >= 0 {
		params, uri = pt[:semi], pt[semi+1:]
	} else {
		uri = pt
	}
	if uri == "" {
		return nil
	}
	id := ""
	const idPrefix = "id="
	for _, kv := range splitSemicolons(params) {
		if len(kv) > len(idPrefix) && kv[:len(idPrefix)] == idPrefix {
			id = kv[len(idPrefix):]
		}
	}
	return &Hyperlink{ID: id, URI: uri}
}

func splitSemicolons(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

func (d *Decoder) dispatchClipboardOSC(pt string) {
	semi := -1
	for i := 0; i < len(pt); i++ {
		if pt[i] == ';' {
			semi = i
			break
		}
	}
	if semi < 0 {
		return
	}
	selector, data := pt[:semi], pt[semi+1:]
	clipboard := byte('c')
	if len(selector) > 0 {
		clipboard = selector[0]
	}
	if data == "?" {
		d.handler.ClipboardLoad(clipboard, "\x07")
		return
	}
	d.handler.ClipboardStore(clipboard, []byte(data))
}

func (d *Decoder) dispatchShellIntegrationOSC(pt string) {
	if pt == "" {
		return
	}
	rest := pt[1:]
	switch pt[0] {
	case 'A':
		d.handler.ShellIntegrationMark(PromptStart, -1)
	case 'B':
		d.handler.ShellIntegrationMark(CommandStart, -1)
	case 'C':
		d.handler.ShellIntegrationMark(CommandExecuted, -1)
	case 'D':
		d.handler.ShellIntegrationMark(CommandFinished, parseExitCode(rest))
	}
}

func parseExitCode(rest string) int {
	rest = trimLeadingSemicolon(rest)
	if rest == "" {
		return -1
	}
	n := 0
	neg := false
	i := 0
	if rest[0] == '-' {
		neg = true
		i = 1
	}
	for ; i < len(rest); i++ {
		if rest[i] < '0' || rest[i] > '9' {
			break
		}
		n = n*10 + int(rest[i]-'0')
	}
	if neg {
		n = -n
	}
	return n
}

func trimLeadingSemicolon(s string) string {
	if len(s) > 0 && s[0] == ';' {
		return s[1:]
	}
	return s
}

// dispatchDCS handles a complete DCS sequence. The only DCS introducer this
// parser recognizes payload-wise is Sixel (no private marker, numeric
// parameters, final 'q'); anything else is absorbed without effect.
func (d *Decoder) dispatchDCS() {
	if d.dcsFinal == 'q' {
		params := d.allParams()
		paramPairs := make([][]uint16, 0, len(params))
		for _, p := range params {
			paramPairs = append(paramPairs, []uint16{uint16(p)})
		}
		d.handler.SixelReceived(paramPairs, append([]byte(nil), d.strBuf...))
	}
}
