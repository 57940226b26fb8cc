package vtcore

import (
	"fmt"
	"testing"
)

func TestDECFRA_FillsRectangle(t *testing.T) {
	term := New(WithSize(10, 10))

	term.WriteString(fmt.Sprintf("\x1b[%d;2;2;4;4$x", 'A'))

	for row := 1; row <= 3; row++ {
		for col := 1; col <= 3; col++ {
			cell := term.activeBuffer.Cell(row, col)
			if cell == nil || cell.Char != 'A' {
				t.Errorf("expected 'A' at (%d,%d), got %+v", row, col, cell)
			}
		}
	}
	if cell := term.activeBuffer.Cell(0, 0); cell != nil && cell.Char == 'A' {
		t.Errorf("fill leaked outside the rectangle")
	}
}

func TestDECERA_ErasesRectangle(t *testing.T) {
	term := New(WithSize(10, 10))
	term.WriteString("AAAAAAAAAA\r\nAAAAAAAAAA\r\nAAAAAAAAAA")

	term.WriteString("\x1b[2;2;3;4$z")

	for row := 1; row <= 2; row++ {
		for col := 1; col <= 3; col++ {
			cell := term.activeBuffer.Cell(row, col)
			if cell == nil || cell.Char != ' ' {
				t.Errorf("expected blank at (%d,%d), got %+v", row, col, cell)
			}
		}
	}
	if cell := term.activeBuffer.Cell(0, 0); cell == nil || cell.Char != 'A' {
		t.Errorf("erase affected cell outside the rectangle")
	}
}

func TestDECCARA_SetsBold(t *testing.T) {
	term := New(WithSize(10, 10))
	term.WriteString("ABCDEFGHIJ")

	term.WriteString("\x1b[1;2;1;4;1$r")

	for col := 1; col <= 3; col++ {
		cell := term.activeBuffer.Cell(0, col)
		if cell == nil || !cell.HasFlag(CellFlagBold) {
			t.Errorf("expected bold at col %d", col)
		}
	}
	if cell := term.activeBuffer.Cell(0, 4); cell != nil && cell.HasFlag(CellFlagBold) {
		t.Errorf("DECCARA affected a cell outside the rectangle")
	}
}

func TestDECRARA_TogglesBold(t *testing.T) {
	term := New(WithSize(10, 10))
	term.WriteString("ABCDEFGHIJ")

	term.WriteString("\x1b[1;2;1;4;1$t")
	for col := 1; col <= 3; col++ {
		cell := term.activeBuffer.Cell(0, col)
		if cell == nil || !cell.HasFlag(CellFlagBold) {
			t.Errorf("expected bold after first toggle at col %d", col)
		}
	}

	term.WriteString("\x1b[1;2;1;4;1$t")
	for col := 1; col <= 3; col++ {
		cell := term.activeBuffer.Cell(0, col)
		if cell == nil || cell.HasFlag(CellFlagBold) {
			t.Errorf("expected bold cleared after second toggle at col %d", col)
		}
	}
}

func TestDECCRA_CopiesRectangle(t *testing.T) {
	term := New(WithSize(10, 10))
	term.WriteString("ABC")

	// Copy rows 1-1, cols 1-3 (source) to row 3, col 5 (dest).
	term.WriteString("\x1b[1;1;1;3;0;3;5;0$v")

	for i, want := range []rune{'A', 'B', 'C'} {
		cell := term.activeBuffer.Cell(2, 4+i)
		if cell == nil || cell.Char != want {
			t.Errorf("expected %q at dest col %d, got %+v", want, 4+i, cell)
		}
	}
}

func TestDECLRMM_SetsMargins(t *testing.T) {
	term := New(WithSize(10, 20))

	term.WriteString("\x1b[?69h")
	term.WriteString("\x1b[5;15s")

	term.mu.RLock()
	left, right := term.leftMargin, term.rightMargin
	term.mu.RUnlock()

	if left != 4 || right != 15 {
		t.Errorf("expected margins (4,15), got (%d,%d)", left, right)
	}
}

func TestDECLRMM_DisabledIgnoresDECSLRM(t *testing.T) {
	term := New(WithSize(10, 20))

	term.WriteString("\x1b[5;15s")

	term.mu.RLock()
	left, right := term.leftMargin, term.rightMargin
	term.mu.RUnlock()

	if left != 0 || right != 20 {
		t.Errorf("expected untouched full-width margins, got (%d,%d)", left, right)
	}
}

func TestBareCSIs_StillSavesAndRestoresCursor(t *testing.T) {
	term := New(WithSize(10, 20))
	term.WriteString("\x1b[5;5H")
	term.WriteString("\x1b[s")
	term.WriteString("\x1b[1;1H")
	term.WriteString("\x1b[u")

	row, col := term.CursorPos()
	if row != 4 || col != 4 {
		t.Errorf("expected cursor restored to (4,4), got (%d,%d)", row, col)
	}
}

func TestDECRQCRA_RespondsWithChecksum(t *testing.T) {
	term := New(WithSize(10, 20))
	term.WriteString("AB")

	term.WriteString("\x1b[1;1;1;1;1;2*y")

	responses := term.DrainResponses()
	if len(responses) == 0 {
		t.Fatal("expected a DECRQCRA response")
	}
	last := string(responses[len(responses)-1])
	if last[:2] != "\x1bP" {
		t.Errorf("expected DCS response prefix, got %q", last)
	}
}
