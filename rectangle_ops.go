package vtcore

import "fmt"

// SetLeftRightMargins implements DECSLRM (CSI Pl ; Pr s), setting the
// horizontal scroll region. Only takes effect while DECLRMM (mode 69) is
// enabled; otherwise the sequence is a no-op here (the bare-CSI-s save
// cursor case is handled upstream in the parser, before this is reached).
func (t *Terminal) SetLeftRightMargins(left, right int) {
	if t.middleware != nil && t.middleware.SetLeftRightMargins != nil {
		t.middleware.SetLeftRightMargins(left, right, t.setLeftRightMarginsInternal)
		return
	}
	t.setLeftRightMarginsInternal(left, right)
}

func (t *Terminal) setLeftRightMarginsInternal(left, right int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.decLRMM {
		return
	}

	l := left - 1
	if left <= 0 {
		l = 0
	}
	r := right
	if right <= 0 || right > t.cols {
		r = t.cols
	}
	if l < 0 {
		l = 0
	}
	if l >= r {
		return
	}

	t.leftMargin = l
	t.rightMargin = r
	t.cursor.Row = t.scrollTop
	t.cursor.Col = t.leftMargin
}

// resolveRect fills in unspecified (zero) rectangle edges with the current
// scroll/margin bounds and clamps the result to the live grid, converting
// from the wire protocol's 1-based inclusive edges to 0-based inclusive
// row/col bounds. Caller must hold t.mu.
func (t *Terminal) resolveRect(rect Rectangle) (top, left, bottom, right int) {
	top = rect.Top - 1
	if rect.Top <= 0 {
		top = t.scrollTop
	}
	left = rect.Left - 1
	if rect.Left <= 0 {
		left = t.leftMargin
	}
	bottom = rect.Bottom - 1
	if rect.Bottom <= 0 {
		bottom = t.scrollBottom - 1
	}
	right = rect.Right - 1
	if rect.Right <= 0 {
		right = t.rightMargin - 1
	}

	if top < 0 {
		top = 0
	}
	if left < 0 {
		left = 0
	}
	if bottom >= t.rows {
		bottom = t.rows - 1
	}
	if right >= t.cols {
		right = t.cols - 1
	}
	return
}

// FillRectangle implements DECFRA: fill every cell of rect with the
// character identified by the decimal code point ch, keeping each cell's
// existing colors and attributes.
func (t *Terminal) FillRectangle(ch int, rect Rectangle) {
	if t.middleware != nil && t.middleware.FillRectangle != nil {
		t.middleware.FillRectangle(ch, rect, t.fillRectangleInternal)
		return
	}
	t.fillRectangleInternal(ch, rect)
}

func (t *Terminal) fillRectangleInternal(ch int, rect Rectangle) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r := rune(ch)
	if r == 0 {
		r = ' '
	}
	top, left, bottom, right := t.resolveRect(rect)
	for row := top; row <= bottom; row++ {
		for col := left; col <= right; col++ {
			cell := t.activeBuffer.Cell(row, col)
			if cell == nil {
				continue
			}
			*cell = cell.WithChar(r)
			cell.MarkDirty()
		}
	}
}

// EraseRectangle implements DECERA/DECSERA: reset every cell of rect to
// blank, default-attribute state. When selective is true (DECSERA), cells
// flagged CellFlagGuarded (DECSCA-protected) are left untouched.
func (t *Terminal) EraseRectangle(rect Rectangle, selective bool) {
	if t.middleware != nil && t.middleware.EraseRectangle != nil {
		t.middleware.EraseRectangle(rect, selective, t.eraseRectangleInternal)
		return
	}
	t.eraseRectangleInternal(rect, selective)
}

func (t *Terminal) eraseRectangleInternal(rect Rectangle, selective bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	top, left, bottom, right := t.resolveRect(rect)
	for row := top; row <= bottom; row++ {
		for col := left; col <= right; col++ {
			cell := t.activeBuffer.Cell(row, col)
			if cell == nil {
				continue
			}
			if selective && cell.HasFlag(CellFlagGuarded) {
				continue
			}
			cell.Reset()
			cell.MarkDirty()
		}
	}
}

// ChangeAttributesRectangle implements DECCARA (reverse=false, attrs set)
// and DECRARA (reverse=true, attrs toggled) over rect.
func (t *Terminal) ChangeAttributesRectangle(rect Rectangle, attrs []int, reverse bool) {
	if t.middleware != nil && t.middleware.ChangeAttributesRectangle != nil {
		t.middleware.ChangeAttributesRectangle(rect, attrs, reverse, t.changeAttributesRectangleInternal)
		return
	}
	t.changeAttributesRectangleInternal(rect, attrs, reverse)
}

func (t *Terminal) changeAttributesRectangleInternal(rect Rectangle, attrs []int, reverse bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(attrs) == 0 {
		attrs = []int{0}
	}
	top, left, bottom, right := t.resolveRect(rect)
	for row := top; row <= bottom; row++ {
		for col := left; col <= right; col++ {
			cell := t.activeBuffer.Cell(row, col)
			if cell == nil {
				continue
			}
			for _, code := range attrs {
				applyRectAttr(cell, code, reverse)
			}
			cell.MarkDirty()
		}
	}
}

// applyRectAttr applies one DECCARA/DECRARA attribute selector to cell.
// DECRARA only recognizes the toggleable attributes (1/4/5/7); the
// clear-only codes (0/22/24/25/27) are DECCARA-only, per xterm's ctlseqs.
func applyRectAttr(cell *Cell, code int, reverse bool) {
	switch code {
	case 1:
		toggleFlag(cell, CellFlagBold, reverse)
	case 4:
		toggleFlag(cell, CellFlagUnderline, reverse)
		if !reverse {
			cell.Underline = UnderlineSingle
		}
	case 5:
		toggleFlag(cell, CellFlagBlink, reverse)
	case 7:
		toggleFlag(cell, CellFlagReverse, reverse)
	case 0:
		if !reverse {
			cell.Flags &^= CellFlagBold | CellFlagUnderline | CellFlagBlink | CellFlagReverse
			cell.Underline = UnderlineNone
		}
	case 22:
		if !reverse {
			cell.ClearFlag(CellFlagBold)
		}
	case 24:
		if !reverse {
			cell.ClearFlag(CellFlagUnderline)
			cell.Underline = UnderlineNone
		}
	case 25:
		if !reverse {
			cell.ClearFlag(CellFlagBlink)
		}
	case 27:
		if !reverse {
			cell.ClearFlag(CellFlagReverse)
		}
	}
}

func toggleFlag(cell *Cell, flag CellFlags, reverse bool) {
	if reverse {
		cell.Flags ^= flag
	} else {
		cell.SetFlag(flag)
	}
}

// CopyRectangle implements DECCRA, copying src to a destination whose
// top-left corner is (destTop, destLeft) (1-based, as on the wire). Source
// and destination may overlap; cells are read from a snapshot taken before
// any write. Single-page only: the page operands DECCRA carries are
// accepted by the parser but ignored here, since this terminal has no
// multi-page buffer model.
func (t *Terminal) CopyRectangle(src Rectangle, destTop, destLeft int) {
	if t.middleware != nil && t.middleware.CopyRectangle != nil {
		t.middleware.CopyRectangle(src, destTop, destLeft, t.copyRectangleInternal)
		return
	}
	t.copyRectangleInternal(src, destTop, destLeft)
}

func (t *Terminal) copyRectangleInternal(src Rectangle, destTop, destLeft int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	top, left, bottom, right := t.resolveRect(src)
	dTop := destTop - 1
	if destTop <= 0 {
		dTop = t.scrollTop
	}
	dLeft := destLeft - 1
	if destLeft <= 0 {
		dLeft = t.leftMargin
	}

	rows := bottom - top + 1
	cols := right - left + 1
	if rows <= 0 || cols <= 0 {
		return
	}

	snapshot := make([][]Cell, rows)
	for i := 0; i < rows; i++ {
		snapshot[i] = make([]Cell, cols)
		for j := 0; j < cols; j++ {
			if cell := t.activeBuffer.Cell(top+i, left+j); cell != nil {
				snapshot[i][j] = cell.Copy()
			}
		}
	}

	for i := 0; i < rows; i++ {
		destRow := dTop + i
		if destRow >= t.rows {
			break
		}
		for j := 0; j < cols; j++ {
			destCol := dLeft + j
			if destCol >= t.cols {
				break
			}
			t.activeBuffer.SetCell(destRow, destCol, snapshot[i][j])
		}
	}
}

// RequestRectangleChecksum implements DECRQCRA, replying with a DCS
// checksum report of rect's contents. The checksum is xterm's formula: the
// negated 16-bit sum of each cell's code point, modulo 2^16, formatted as
// four hex digits. No alternate (strict DEC) checksum variant is exposed;
// nothing in this codebase's retrieval pack implements one to ground an
// alternate path against.
func (t *Terminal) RequestRectangleChecksum(id int, rect Rectangle) {
	if t.middleware != nil && t.middleware.RequestRectangleChecksum != nil {
		t.middleware.RequestRectangleChecksum(id, rect, t.requestRectangleChecksumInternal)
		return
	}
	t.requestRectangleChecksumInternal(id, rect)
}

func (t *Terminal) requestRectangleChecksumInternal(id int, rect Rectangle) {
	t.mu.RLock()
	top, left, bottom, right := t.resolveRect(rect)
	var sum uint16
	for row := top; row <= bottom; row++ {
		for col := left; col <= right; col++ {
			if cell := t.activeBuffer.Cell(row, col); cell != nil {
				sum += uint16(cell.Char)
			}
		}
	}
	t.mu.RUnlock()

	checksum := -int16(sum)
	response := fmt.Sprintf("\x1bP%d!~%04x\x1b\\", id, uint16(checksum))
	t.writeResponseString(response)
}
