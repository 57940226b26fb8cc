package vtcore

import "testing"

func TestNormalizeRune_NoForm(t *testing.T) {
	runes := normalizeRune("", 'e')
	if len(runes) != 1 || runes[0] != 'e' {
		t.Errorf("expected ['e'] unchanged, got %v", runes)
	}
}

func TestNormalizeRune_NFD_Decomposes(t *testing.T) {
	// U+00E9 LATIN SMALL LETTER E WITH ACUTE decomposes under NFD into
	// 'e' (U+0065) + COMBINING ACUTE ACCENT (U+0301).
	runes := normalizeRune("NFD", 'é')
	if len(runes) != 2 || runes[0] != 'e' || runes[1] != '́' {
		t.Errorf("expected decomposed [e, combining acute], got %v", runes)
	}
}

func TestNormalizeRune_NFC_LeavesPrecomposed(t *testing.T) {
	runes := normalizeRune("NFC", 'é')
	if len(runes) != 1 || runes[0] != 'é' {
		t.Errorf("expected [e-acute] unchanged, got %v", runes)
	}
}

func TestTerminal_InputNFD_AppendsCombiningMark(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NormalizationForm = "NFD"
	term := New(WithSize(24, 80), WithConfig(cfg))

	term.WriteString("café")

	cell := term.activeBuffer.Cell(0, 3)
	if cell == nil {
		t.Fatal("expected cell at col 3")
	}
	if cell.Char != 'e' {
		t.Errorf("expected base rune 'e', got %q", cell.Char)
	}
	if len(cell.Combining) != 1 || cell.Combining[0] != '́' {
		t.Errorf("expected combining acute accent, got %v", cell.Combining)
	}
}

func TestTerminal_InputNoForm_KeepsPrecomposed(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("café")

	cell := term.activeBuffer.Cell(0, 3)
	if cell == nil {
		t.Fatal("expected cell at col 3")
	}
	if cell.Char != 'é' {
		t.Errorf("expected precomposed e-acute, got %q", cell.Char)
	}
	if len(cell.Combining) != 0 {
		t.Errorf("expected no combining marks, got %v", cell.Combining)
	}
}
