package ui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/dungeonmap/internal/world"
)

// Comment overlay dimensions.
const (
	commentPaneMaxWidth = 52
	commentPaneHeight   = 3
)

// Theme holds the styles used by the map view and dialogs.
type Theme struct {
	Wall   tcell.Style
	Label  tcell.Style
	Pane   tcell.Style
	Title  tcell.Style
	Status tcell.Style
	Select tcell.Style // Highlighted list row
}

// DefaultTheme returns the built-in styles.
func DefaultTheme() Theme {
	return Theme{
		Wall:   tcell.StyleDefault,
		Label:  tcell.StyleDefault.Bold(true),
		Pane:   tcell.StyleDefault,
		Title:  tcell.StyleDefault.Bold(true),
		Status: tcell.StyleDefault,
		Select: tcell.StyleDefault.Reverse(true),
	}
}

// WithColors returns a copy of the theme with wall and label foregrounds replaced.
func (t Theme) WithColors(wall, label tcell.Color) Theme {
	t.Wall = t.Wall.Foreground(wall)
	t.Label = t.Label.Foreground(label)
	return t
}

// MapView renders the visible part of a grid as 3x3 tile blocks.
type MapView struct {
	theme Theme

	// CommentShown reports whether the last Draw displayed the comment overlay.
	CommentShown bool
}

// NewMapView creates a map view using the given theme.
func NewMapView(theme Theme) *MapView {
	return &MapView{theme: theme}
}

// Draw renders grid into area. The scroll offset in view is first adjusted so the
// cursor is visible. The selected block is drawn inverted, and the comment overlay
// is shown when the selected tile has a comment.
func (m *MapView) Draw(s Surface, area Rect, grid *world.Grid, view *world.ViewState) {
	vp := world.ViewportFor(area.W, area.H)
	view.Follow(vp)

	Fill(s, area, ' ', tcell.StyleDefault)

	for _, t := range grid.All() {
		if !view.Visible(t.X, t.Y, vp) {
			continue
		}
		selected := t.X == view.SelectedX && t.Y == view.SelectedY
		m.drawBlock(s, area, view, t, selected)
	}

	selectedTile := grid.Get(view.SelectedX, view.SelectedY)
	if selectedTile == nil && view.Visible(view.SelectedX, view.SelectedY, vp) {
		m.drawBlock(s, area, view, nil, true)
	}

	m.CommentShown = selectedTile != nil && selectedTile.Comment != ""
	if m.CommentShown {
		m.drawComment(s, area, selectedTile.Comment)
	}
}

func (m *MapView) drawBlock(s Surface, area Rect, view *world.ViewState, t *world.Tile, selected bool) {
	tx, ty := view.SelectedX, view.SelectedY
	if t != nil {
		tx, ty = t.X, t.Y
	}
	ox, oy := view.Origin(tx, ty)
	block := Glyphs(t)

	for row := range block {
		for col, ch := range block[row] {
			x, y := area.X+ox+col, area.Y+oy+row
			if !area.Contains(x, y) {
				continue
			}
			style := m.theme.Wall
			if row == 1 && col == 1 {
				style = m.theme.Label
			}
			if selected {
				style = style.Reverse(true)
			}
			s.SetContent(x, y, ch, style)
		}
	}
}

func (m *MapView) drawComment(s Surface, area Rect, comment string) {
	w := min(commentPaneMaxWidth, area.W)
	h := min(commentPaneHeight, area.H)
	pane := Rect{
		X: area.X + (area.W-w)/2,
		Y: area.Y + area.H - h,
		W: w,
		H: h,
	}
	DrawPane(s, pane, m.theme.Pane)
	inner := pane.Inset(1)
	if inner.H > 0 {
		DrawCentered(s, inner, inner.Y, comment, m.theme.Pane)
	}
}

// DrawFrame draws the outer border and returns the area inside it.
func DrawFrame(s Surface, theme Theme) Rect {
	full := SurfaceRect(s)
	DrawPane(s, full, theme.Pane)
	return full.Inset(1)
}

// DrawStatus writes the status text on the last row of area.
func DrawStatus(s Surface, area Rect, theme Theme, status string) {
	if area.H <= 0 || status == "" {
		return
	}
	DrawString(s, area.X, area.Y+area.H-1, status, area.W, theme.Status)
}
