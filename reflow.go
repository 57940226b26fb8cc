package vtcore

// Width-reflow: rewraps the primary grid plus its scrollback across a
// column-width change, joining wrapped continuation lines into logical
// lines and re-splitting them at the new width. Gated behind
// Config.ReflowOnResize; alt-screen content is never reflowed (it has no
// scrollback to absorb lines that no longer fit, so it is discarded
// instead — see Terminal.Resize).

// isBlankCell reports whether a cell is indistinguishable from an unwritten
// grid cell, used to trim the padding a non-wrapped line's row carries out
// to the old grid width.
func isBlankCell(c Cell) bool {
	return c.Char == ' ' && len(c.Combining) == 0 && c.Flags == 0 &&
		c.HyperlinkID == 0 && c.Image == nil
}

func trimTrailingBlank(cells []Cell) []Cell {
	end := len(cells)
	for end > 0 && isBlankCell(cells[end-1]) {
		end--
	}
	return cells[:end]
}

// collectLogicalLines joins physical lines where the preceding line has
// wrapped=true into single logical lines, trimming unwritten trailing
// cells off the end of each. When trackCursor is set, it also records
// which logical line the cursor's physical line falls in and its
// pre-trim slot offset within that logical line (targetLine is -1 if the
// cursor position was never reached, which should not happen for a valid
// cursorPhysLine).
func collectLogicalLines(physCells [][]Cell, physWrapped []bool, cursorPhysLine, cursorCol int, trackCursor bool) (lines [][]Cell, targetLine, targetOffset int) {
	targetLine = -1
	var cur []Cell
	logIdx := 0
	for i, row := range physCells {
		if trackCursor && i == cursorPhysLine {
			targetLine = logIdx
			targetOffset = len(cur) + cursorCol
		}
		cur = append(cur, row...)
		if i < len(physWrapped) && physWrapped[i] {
			continue
		}
		lines = append(lines, trimTrailingBlank(cur))
		cur = nil
		logIdx++
	}
	if len(cur) > 0 {
		lines = append(lines, trimTrailingBlank(cur))
	}
	return
}

// wrapLogicalLine splits a logical line's cells into physical rows of at
// most width columns. A wide character's lead cell never starts at the
// last column of a row (which would strand its spacer on the next row) —
// such a lead+spacer pair is pushed to the next row instead.
func wrapLogicalLine(cells []Cell, width int) (rows [][]Cell, wraps []bool) {
	if width <= 0 {
		width = 1
	}
	if len(cells) == 0 {
		return [][]Cell{padRow(nil, width)}, []bool{false}
	}

	var row []Cell
	col := 0
	i := 0
	for i < len(cells) {
		cell := cells[i]
		if cell.IsWide() && col == width-1 {
			rows = append(rows, padRow(row, width))
			wraps = append(wraps, true)
			row = nil
			col = 0
			continue
		}
		row = append(row, cell)
		col++
		i++
		if col == width && i < len(cells) {
			rows = append(rows, row)
			wraps = append(wraps, true)
			row = nil
			col = 0
		}
	}
	rows = append(rows, padRow(row, width))
	wraps = append(wraps, false)
	return
}

// locateOffset mirrors wrapLogicalLine's row-splitting decisions to find
// which emitted physical row/column a pre-wrap slot offset lands at.
func locateOffset(cells []Cell, width int, offset int) (row, col int) {
	if width <= 0 {
		width = 1
	}
	if offset > len(cells) {
		offset = len(cells)
	}
	c, r, i := 0, 0, 0
	for i < offset {
		cell := cells[i]
		if cell.IsWide() && c == width-1 {
			r++
			c = 0
			continue
		}
		c++
		i++
	}
	return r, c
}

func padRow(row []Cell, width int) []Cell {
	if row == nil {
		row = make([]Cell, 0, width)
	}
	for len(row) < width {
		row = append(row, NewCell())
	}
	if len(row) > width {
		row = row[:width]
	}
	return row
}

// reflowPrimary rewraps the primary buffer's scrollback + grid to newCols
// and repartitions the result into the new newRows-high grid plus
// scrollback, preserving the cursor's logical position when it currently
// lives on the primary buffer. Caller holds t.mu.
func (t *Terminal) reflowPrimary(newRows, newCols int) {
	b := t.primaryBuffer
	sbLen := b.ScrollbackLen()
	oldRows := b.Rows()

	physCells := make([][]Cell, sbLen+oldRows)
	physWrapped := make([]bool, sbLen+oldRows)
	for i := 0; i < sbLen; i++ {
		physCells[i] = b.ScrollbackLine(i)
		physWrapped[i] = b.ScrollbackWrapped(i)
	}
	for i := 0; i < oldRows; i++ {
		physCells[sbLen+i] = b.RawRow(i)
		physWrapped[sbLen+i] = b.IsWrapped(i)
	}

	trackCursor := t.activeBuffer == b
	cursorPhysLine := sbLen + t.cursor.Row

	logLines, targetLine, targetOffset := collectLogicalLines(physCells, physWrapped, cursorPhysLine, t.cursor.Col, trackCursor)

	var emittedCells [][]Cell
	var emittedWrapped []bool
	cursorRowGlobal, cursorColGlobal := -1, 0

	for li, cells := range logLines {
		rows, wraps := wrapLogicalLine(cells, newCols)
		if trackCursor && li == targetLine {
			localRow, localCol := locateOffset(cells, newCols, targetOffset)
			cursorRowGlobal = len(emittedCells) + localRow
			cursorColGlobal = localCol
		}
		emittedCells = append(emittedCells, rows...)
		emittedWrapped = append(emittedWrapped, wraps...)
	}

	total := len(emittedCells)
	gridStart := total - newRows
	if gridStart < 0 {
		gridStart = 0
	}

	sbCells := emittedCells[:gridStart]
	sbWrapped := emittedWrapped[:gridStart]
	gridCells := append([][]Cell(nil), emittedCells[gridStart:]...)
	gridWrapped := append([]bool(nil), emittedWrapped[gridStart:]...)

	for len(gridCells) < newRows {
		gridCells = append(gridCells, padRow(nil, newCols))
		gridWrapped = append(gridWrapped, false)
	}

	b.ClearScrollback()
	for i := range sbCells {
		b.PushScrollback(sbCells[i], sbWrapped[i])
	}
	b.ReplaceRows(gridCells, gridWrapped, newCols)

	if !trackCursor {
		return
	}
	if cursorRowGlobal < gridStart {
		// Cursor fell into the discarded/scrollback portion (width
		// shrink pushed it off-grid): clamp to the top of the grid.
		t.cursor.Row = 0
		t.cursor.Col = 0
		t.cursor.PendingWrap = false
		return
	}
	t.cursor.Row = cursorRowGlobal - gridStart
	t.cursor.Col = cursorColGlobal
	if t.cursor.Row >= newRows {
		t.cursor.Row = newRows - 1
	}
	if t.cursor.Col >= newCols {
		t.cursor.Col = newCols - 1
	}
	t.cursor.PendingWrap = false
}
