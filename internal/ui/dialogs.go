package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/samdwyer/dungeonmap/internal/gamedata"
)

// Dialog sizes.
const (
	labelPaneWidth   = 22
	labelPaneHeight  = 10
	commentPaneWidth = 40
	errorPaneMinW    = 20
)

// LabelPicker offers the fixed set of tile labels.
type LabelPicker struct {
	theme    Theme
	registry *gamedata.LabelRegistry
	list     List
	done     func(Result[string])
	page     int
}

// NewLabelPicker creates a picker with the row for current preselected.
// done receives the chosen label, or a cancellation.
func NewLabelPicker(theme Theme, registry *gamedata.LabelRegistry, current string, done func(Result[string])) *LabelPicker {
	items := make([]string, 0, registry.Count())
	for _, l := range registry.All() {
		items = append(items, l.Display())
	}
	p := &LabelPicker{
		theme:    theme,
		registry: registry,
		list:     List{Items: items},
		done:     done,
	}
	p.list.Select(registry.IndexOf(current))
	return p
}

// Selected returns the index of the highlighted row.
func (p *LabelPicker) Selected() int {
	return p.list.Selected
}

// HandleKey implements Component.
func (p *LabelPicker) HandleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		p.done(Cancelled[string]())
	case tcell.KeyEnter:
		p.done(Resolved(p.registry.At(p.list.Selected).Label))
	default:
		p.list.HandleKey(ev, p.page)
	}
}

// Draw implements Component.
func (p *LabelPicker) Draw(s Surface, area Rect) {
	pane := area.Centered(labelPaneWidth, labelPaneHeight)
	DrawPane(s, pane, p.theme.Pane)
	inner := pane.Inset(1)
	if inner.H == 0 {
		return
	}
	DrawCentered(s, inner, inner.Y, "Label:", p.theme.Title)
	listArea := Rect{X: inner.X, Y: inner.Y + 1, W: inner.W, H: inner.H - 1}
	p.page = listArea.H
	p.list.Draw(s, listArea, p.theme.Pane, p.theme.Select)
}

// CommentEditor is a single-line text input for a tile comment.
type CommentEditor struct {
	theme  Theme
	value  []rune
	cursor int
	offset int
	done   func(Result[string])
}

// NewCommentEditor creates an editor pre-filled with current, cursor at the end.
func NewCommentEditor(theme Theme, current string, done func(Result[string])) *CommentEditor {
	value := []rune(current)
	return &CommentEditor{
		theme:  theme,
		value:  value,
		cursor: len(value),
		done:   done,
	}
}

// Value returns the text being edited.
func (c *CommentEditor) Value() string {
	return string(c.value)
}

// HandleKey implements Component.
func (c *CommentEditor) HandleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		c.done(Cancelled[string]())
	case tcell.KeyEnter:
		c.done(Resolved(string(c.value)))
	case tcell.KeyLeft:
		if c.cursor > 0 {
			c.cursor--
		}
	case tcell.KeyRight:
		if c.cursor < len(c.value) {
			c.cursor++
		}
	case tcell.KeyHome, tcell.KeyCtrlA:
		c.cursor = 0
	case tcell.KeyEnd, tcell.KeyCtrlE:
		c.cursor = len(c.value)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if c.cursor > 0 {
			c.value = append(c.value[:c.cursor-1], c.value[c.cursor:]...)
			c.cursor--
		}
	case tcell.KeyDelete:
		if c.cursor < len(c.value) {
			c.value = append(c.value[:c.cursor], c.value[c.cursor+1:]...)
		}
	case tcell.KeyRune:
		c.value = append(c.value[:c.cursor], append([]rune{ev.Rune()}, c.value[c.cursor:]...)...)
		c.cursor++
	}
}

// Draw implements Component.
func (c *CommentEditor) Draw(s Surface, area Rect) {
	pane := area.Centered(commentPaneWidth, 3)
	DrawPane(s, pane, c.theme.Pane)
	inner := pane.Inset(1)
	if inner.H == 0 {
		return
	}

	const prompt = "Comment:"
	used := DrawString(s, inner.X+1, inner.Y, prompt, inner.W-1, c.theme.Title)
	field := Rect{X: inner.X + 1 + used + 1, Y: inner.Y, W: inner.W - used - 2, H: 1}
	if field.W <= 0 {
		return
	}

	// Scroll horizontally so the cursor cell stays inside the field
	if c.cursor < c.offset {
		c.offset = c.cursor
	}
	for runewidth.StringWidth(string(c.value[c.offset:c.cursor])) >= field.W {
		c.offset++
	}

	x := field.X
	for i := c.offset; i <= len(c.value); i++ {
		ch := ' '
		if i < len(c.value) {
			ch = c.value[i]
		}
		w := max(runewidth.RuneWidth(ch), 1)
		if x+w > field.X+field.W {
			break
		}
		style := c.theme.Pane.Underline(true)
		if i == c.cursor {
			style = c.theme.Select
		}
		s.SetContent(x, field.Y, ch, style)
		x += w
	}
}

// ErrorDialog shows a message until dismissed.
type ErrorDialog struct {
	theme   Theme
	message string
	done    func()
}

// NewErrorDialog creates a dialog for message. done runs once the user dismisses it.
func NewErrorDialog(theme Theme, message string, done func()) *ErrorDialog {
	return &ErrorDialog{theme: theme, message: message, done: done}
}

// Message returns the displayed text.
func (d *ErrorDialog) Message() string {
	return d.message
}

// HandleKey implements Component.
func (d *ErrorDialog) HandleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyEnter:
		d.done()
	case tcell.KeyRune:
		if ev.Rune() == ' ' {
			d.done()
		}
	}
}

// Draw implements Component.
func (d *ErrorDialog) Draw(s Surface, area Rect) {
	w := max(runewidth.StringWidth(d.message)+4, errorPaneMinW)
	pane := area.Centered(w, 5)
	DrawPane(s, pane, d.theme.Pane)
	inner := pane.Inset(1)
	if inner.H < 1 {
		return
	}
	DrawCentered(s, inner, inner.Y, d.message, d.theme.Pane)
	if inner.H >= 3 {
		DrawCentered(s, inner, inner.Y+2, "[ OK ]", d.theme.Select)
	}
}
