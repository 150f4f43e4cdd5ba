package ui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Cell is one character cell of a Buffer.
type Cell struct {
	Rune  rune
	Style tcell.Style
}

// Buffer is an in-memory Surface, used for text export and off-screen rendering.
type Buffer struct {
	width, height int
	cells         []Cell
}

// NewBuffer creates a blank buffer of the given size.
func NewBuffer(width, height int) *Buffer {
	b := &Buffer{
		width:  max(width, 0),
		height: max(height, 0),
	}
	b.cells = make([]Cell, b.width*b.height)
	for i := range b.cells {
		b.cells[i] = Cell{Rune: ' ', Style: tcell.StyleDefault}
	}
	return b
}

// SetContent implements Surface. Writes outside the buffer are dropped.
func (b *Buffer) SetContent(x, y int, r rune, style tcell.Style) {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return
	}
	b.cells[y*b.width+x] = Cell{Rune: r, Style: style}
}

// Size implements Surface.
func (b *Buffer) Size() (width, height int) {
	return b.width, b.height
}

// Cell returns the cell at (x, y), or a blank cell when out of range.
func (b *Buffer) Cell(x, y int) Cell {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return Cell{Rune: ' ', Style: tcell.StyleDefault}
	}
	return b.cells[y*b.width+x]
}

// Row returns row y as a string.
func (b *Buffer) Row(y int) string {
	var sb strings.Builder
	for x := 0; x < b.width; x++ {
		sb.WriteRune(b.Cell(x, y).Rune)
	}
	return sb.String()
}

// String returns every row, right-trimmed, joined by newlines.
func (b *Buffer) String() string {
	rows := make([]string, b.height)
	for y := range rows {
		rows[y] = strings.TrimRight(b.Row(y), " ")
	}
	return strings.Join(rows, "\n")
}
