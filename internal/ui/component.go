package ui

import "github.com/gdamore/tcell/v2"

// Component is something that can draw itself and take keyboard focus.
// Modal dialogs implement it; the editor routes keys to the topmost one.
type Component interface {
	Draw(s Surface, area Rect)
	HandleKey(ev *tcell.EventKey)
}

// Result is the outcome of a dialog: either a value or a cancellation.
type Result[T any] struct {
	Value     T
	Cancelled bool
}

// Resolved returns a successful result carrying v.
func Resolved[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Cancelled returns a cancellation result.
func Cancelled[T any]() Result[T] {
	return Result[T]{Cancelled: true}
}

// List is a vertically scrolling list of text rows with one selected row.
type List struct {
	Items    []string
	Selected int
	offset   int
}

// Move shifts the selection by delta, clamped to the list.
func (l *List) Move(delta int) {
	l.Select(l.Selected + delta)
}

// Select sets the selection, clamped to the list.
func (l *List) Select(i int) {
	if len(l.Items) == 0 {
		l.Selected = 0
		return
	}
	l.Selected = max(0, min(i, len(l.Items)-1))
}

// HandleKey applies the navigation keys. It reports whether the key was used.
func (l *List) HandleKey(ev *tcell.EventKey, page int) bool {
	switch ev.Key() {
	case tcell.KeyUp:
		l.Move(-1)
	case tcell.KeyDown:
		l.Move(1)
	case tcell.KeyPgUp:
		l.Move(-max(page, 1))
	case tcell.KeyPgDn:
		l.Move(max(page, 1))
	case tcell.KeyHome:
		l.Select(0)
	case tcell.KeyEnd:
		l.Select(len(l.Items) - 1)
	default:
		return false
	}
	return true
}

// Draw renders the rows that fit in r, scrolling to keep the selection visible.
func (l *List) Draw(s Surface, r Rect, style, selStyle tcell.Style) {
	if r.H <= 0 {
		return
	}
	if l.Selected < l.offset {
		l.offset = l.Selected
	}
	if l.Selected >= l.offset+r.H {
		l.offset = l.Selected - r.H + 1
	}
	for row := 0; row < r.H; row++ {
		i := l.offset + row
		if i >= len(l.Items) {
			break
		}
		st := style
		if i == l.Selected {
			st = selStyle
			Fill(s, Rect{X: r.X, Y: r.Y + row, W: r.W, H: 1}, ' ', st)
		}
		DrawString(s, r.X, r.Y+row, l.Items[i], r.W, st)
	}
}
