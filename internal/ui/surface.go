package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Box-drawing characters.
const (
	BoxH        = '─'
	BoxV        = '│'
	BoxCornerTL = '┌'
	BoxCornerTR = '┐'
	BoxCornerBL = '└'
	BoxCornerBR = '┘'
)

// Surface is a character-cell canvas addressable by absolute column and row.
// Screen implements it; inverted spans are drawn with a reversed style.
type Surface interface {
	SetContent(x, y int, r rune, style tcell.Style)
	Size() (width, height int)
}

// Rect is a rectangular area of cells.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the cell (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Inset returns the rectangle shrunk by n cells on every side.
func (r Rect) Inset(n int) Rect {
	out := Rect{X: r.X + n, Y: r.Y + n, W: r.W - 2*n, H: r.H - 2*n}
	if out.W < 0 {
		out.W = 0
	}
	if out.H < 0 {
		out.H = 0
	}
	return out
}

// Centered returns a w x h rectangle centered inside r, clamped to r's size.
func (r Rect) Centered(w, h int) Rect {
	w = min(w, r.W)
	h = min(h, r.H)
	return Rect{X: r.X + (r.W-w)/2, Y: r.Y + (r.H-h)/2, W: w, H: h}
}

// SurfaceRect returns the full area of a surface.
func SurfaceRect(s Surface) Rect {
	w, h := s.Size()
	return Rect{W: w, H: h}
}

// Fill sets every cell of r to ch.
func Fill(s Surface, r Rect, ch rune, style tcell.Style) {
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			s.SetContent(x, y, ch, style)
		}
	}
}

// DrawString draws s starting at (x, y), clipped to maxWidth cells.
// It returns the number of cells used.
func DrawString(s Surface, x, y int, str string, maxWidth int, style tcell.Style) int {
	used := 0
	for _, ch := range str {
		w := runewidth.RuneWidth(ch)
		if w == 0 {
			continue
		}
		if used+w > maxWidth {
			break
		}
		s.SetContent(x+used, y, ch, style)
		if w == 2 {
			s.SetContent(x+used+1, y, ' ', style)
		}
		used += w
	}
	return used
}

// DrawCentered draws str horizontally centered on row y of r.
func DrawCentered(s Surface, r Rect, y int, str string, style tcell.Style) {
	str = runewidth.Truncate(str, r.W, "…")
	x := r.X + (r.W-runewidth.StringWidth(str))/2
	DrawString(s, x, y, str, r.W, style)
}

// DrawPane clears r and draws a single-line border around it.
func DrawPane(s Surface, r Rect, style tcell.Style) {
	if r.W < 2 || r.H < 2 {
		Fill(s, r, ' ', style)
		return
	}
	Fill(s, r.Inset(1), ' ', style)

	right, bottom := r.X+r.W-1, r.Y+r.H-1
	for x := r.X + 1; x < right; x++ {
		s.SetContent(x, r.Y, BoxH, style)
		s.SetContent(x, bottom, BoxH, style)
	}
	for y := r.Y + 1; y < bottom; y++ {
		s.SetContent(r.X, y, BoxV, style)
		s.SetContent(right, y, BoxV, style)
	}
	s.SetContent(r.X, r.Y, BoxCornerTL, style)
	s.SetContent(right, r.Y, BoxCornerTR, style)
	s.SetContent(r.X, bottom, BoxCornerBL, style)
	s.SetContent(right, bottom, BoxCornerBR, style)
}
