package vtcore

import "image/color"

// CellFlags is a 16-bit bitfield of cell rendering attributes. Underline
// style is a separate 3-bit field (UnderlineStyle), not part of CellFlags,
// since it needs six distinct values rather than a boolean.
type CellFlags uint16

const (
	CellFlagBold CellFlags = 1 << iota
	CellFlagDim
	CellFlagItalic
	CellFlagUnderline
	CellFlagBlink
	CellFlagReverse
	CellFlagHidden
	CellFlagStrike
	CellFlagOverline
	CellFlagGuarded
	CellFlagWideChar
	CellFlagWideCharSpacer
	CellFlagDirty
)

// UnderlineStyle enumerates the rendered underline shape (SGR 4:n).
type UnderlineStyle uint8

const (
	UnderlineNone UnderlineStyle = iota
	UnderlineSingle
	UnderlineDouble
	UnderlineCurly
	UnderlineDotted
	UnderlineDashed
)

// Cell stores the character, grapheme extensions, colors, and formatting
// attributes for one grid position. Wide characters (2 columns) are
// immediately followed by a spacer cell whose Char is 0 and whose
// CellFlagWideCharSpacer bit is set.
type Cell struct {
	Char           rune
	Combining      []rune // zero-width combining marks, ZWJ, variation selectors, skin-tone modifiers
	Fg             color.Color
	Bg             color.Color
	UnderlineColor color.Color
	Flags          CellFlags
	Underline      UnderlineStyle
	Width          uint8 // 1 or 2; 0 for a wide-char spacer and the zero-value Cell
	HyperlinkID    uint32 // 0 = no hyperlink; see HyperlinkTable
	Image          *CellImage
}

// NewCell creates a cell initialized with space character and default colors.
func NewCell() Cell {
	return Cell{
		Char:  ' ',
		Fg:    &NamedColor{Name: NamedColorForeground},
		Bg:    &NamedColor{Name: NamedColorBackground},
		Width: 1,
	}
}

// Reset clears all attributes and sets the cell to default state (space character, default colors).
func (c *Cell) Reset() {
	c.Char = ' '
	c.Combining = nil
	c.Fg = &NamedColor{Name: NamedColorForeground}
	c.Bg = &NamedColor{Name: NamedColorBackground}
	c.UnderlineColor = nil
	c.Flags = 0
	c.Underline = UnderlineNone
	c.Width = 1
	c.HyperlinkID = 0
	c.Image = nil
}

// WithChar returns a copy of the cell with Char set to base and Width
// computed from runeWidth(base); combining marks are cleared.
func (c Cell) WithChar(base rune) Cell {
	c.Char = base
	c.Combining = nil
	c.Width = uint8(runeWidth(base))
	if c.Width == 0 {
		c.Width = 1
	}
	return c
}

// AppendCombining appends a combining mark, ZWJ, variation selector, or
// skin-tone modifier to the grapheme cluster. Variation selectors
// U+FE0E/U+FE0F may promote or demote the cluster's rendered width;
// Width itself is not changed by this call (spec: "Grapheme appends
// never change width").
func (c *Cell) AppendCombining(r rune) {
	c.Combining = append(c.Combining, r)
}

// Grapheme concatenates Char with its combining marks in order.
func (c *Cell) Grapheme() string {
	if len(c.Combining) == 0 {
		return string(c.Char)
	}
	runes := make([]rune, 0, len(c.Combining)+1)
	runes = append(runes, c.Char)
	runes = append(runes, c.Combining...)
	return string(runes)
}

// HasFlag returns true if the specified flag is set.
func (c *Cell) HasFlag(flag CellFlags) bool {
	return c.Flags&flag != 0
}

// SetFlag enables the specified flag without affecting others.
func (c *Cell) SetFlag(flag CellFlags) {
	c.Flags |= flag
}

// ClearFlag disables the specified flag without affecting others.
func (c *Cell) ClearFlag(flag CellFlags) {
	c.Flags &^= flag
}

// IsDirty returns true if the cell was modified since the last ClearDirty call.
func (c *Cell) IsDirty() bool {
	return c.HasFlag(CellFlagDirty)
}

// MarkDirty marks the cell as modified for dirty tracking.
func (c *Cell) MarkDirty() {
	c.SetFlag(CellFlagDirty)
}

// ClearDirty resets the dirty tracking flag.
func (c *Cell) ClearDirty() {
	c.ClearFlag(CellFlagDirty)
}

// IsWide returns true if this cell contains a wide character (CJK, emoji, etc.) that occupies 2 columns.
func (c *Cell) IsWide() bool {
	return c.HasFlag(CellFlagWideChar)
}

// IsWideSpacer returns true if this is the second cell of a wide character (should be skipped during rendering).
func (c *Cell) IsWideSpacer() bool {
	return c.HasFlag(CellFlagWideCharSpacer)
}

// Copy returns a deep copy of the cell, including combining marks and the image pointer.
func (c *Cell) Copy() Cell {
	cp := *c
	if len(c.Combining) > 0 {
		cp.Combining = append([]rune(nil), c.Combining...)
	}
	return cp
}

// HasImage returns true if this cell has an image reference.
func (c *Cell) HasImage() bool {
	return c.Image != nil
}

// HasHyperlink returns true if this cell references a hyperlink table entry.
func (c *Cell) HasHyperlink() bool {
	return c.HyperlinkID != 0
}
