package editor

import (
	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/dungeonmap/internal/gamedata"
	"github.com/samdwyer/dungeonmap/internal/ui"
)

// Prompter collects input from the user on behalf of a Session. Requests
// return immediately; done is called later, on the event loop, with the
// outcome.
type Prompter interface {
	PickLabel(current string, done func(ui.Result[string]))
	EditComment(current string, done func(ui.Result[string]))
	BrowseFile(dir string, done func(ui.Result[string]))
	ShowError(message string, done func())

	// Active reports whether a dialog currently owns the keyboard.
	Active() bool
	// HandleKey forwards a key to the topmost dialog.
	HandleKey(ev *tcell.EventKey)
	// Draw renders open dialogs over the map.
	Draw(s ui.Surface, area ui.Rect)
}

// Dialogs is the terminal Prompter. It keeps a stack of modal components;
// the topmost one receives keys and all of them are drawn bottom-up.
type Dialogs struct {
	theme  ui.Theme
	labels *gamedata.LabelRegistry
	stack  []ui.Component
}

// NewDialogs creates an empty dialog stack.
func NewDialogs(theme ui.Theme, labels *gamedata.LabelRegistry) *Dialogs {
	return &Dialogs{theme: theme, labels: labels}
}

// PickLabel implements Prompter.
func (d *Dialogs) PickLabel(current string, done func(ui.Result[string])) {
	var picker *ui.LabelPicker
	picker = ui.NewLabelPicker(d.theme, d.labels, current, func(r ui.Result[string]) {
		d.remove(picker)
		done(r)
	})
	d.push(picker)
}

// EditComment implements Prompter.
func (d *Dialogs) EditComment(current string, done func(ui.Result[string])) {
	var editor *ui.CommentEditor
	editor = ui.NewCommentEditor(d.theme, current, func(r ui.Result[string]) {
		d.remove(editor)
		done(r)
	})
	d.push(editor)
}

// BrowseFile implements Prompter.
func (d *Dialogs) BrowseFile(dir string, done func(ui.Result[string])) {
	var browser *ui.FileBrowser
	browser = ui.NewFileBrowser(d.theme, "Pick file", dir, func(r ui.Result[string]) {
		d.remove(browser)
		done(r)
	})
	d.push(browser)
}

// ShowError implements Prompter.
func (d *Dialogs) ShowError(message string, done func()) {
	var dialog *ui.ErrorDialog
	dialog = ui.NewErrorDialog(d.theme, message, func() {
		d.remove(dialog)
		if done != nil {
			done()
		}
	})
	d.push(dialog)
}

// Active implements Prompter.
func (d *Dialogs) Active() bool {
	return len(d.stack) > 0
}

// HandleKey implements Prompter.
func (d *Dialogs) HandleKey(ev *tcell.EventKey) {
	if len(d.stack) == 0 {
		return
	}
	d.stack[len(d.stack)-1].HandleKey(ev)
}

// Draw implements Prompter.
func (d *Dialogs) Draw(s ui.Surface, area ui.Rect) {
	for _, c := range d.stack {
		c.Draw(s, area)
	}
}

func (d *Dialogs) push(c ui.Component) {
	d.stack = append(d.stack, c)
}

// remove drops c from the stack wherever it is, so a dialog that resolves
// beneath a newer one does not pop the wrong component.
func (d *Dialogs) remove(c ui.Component) {
	for i, x := range d.stack {
		if x == c {
			d.stack = append(d.stack[:i], d.stack[i+1:]...)
			return
		}
	}
}
