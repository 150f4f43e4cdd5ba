package editor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/samdwyer/dungeonmap/internal/export"
	"github.com/samdwyer/dungeonmap/internal/logger"
	"github.com/samdwyer/dungeonmap/internal/mapfile"
	"github.com/samdwyer/dungeonmap/internal/ui"
	"github.com/samdwyer/dungeonmap/internal/world"
)

const (
	// flashDuration is how long a transient status message stays up.
	flashDuration = time.Second

	// postRetryDelay is the pause between posts while the event queue is full.
	postRetryDelay = 10 * time.Millisecond
)

// Deps are the collaborators of a Session.
type Deps struct {
	Prompter Prompter

	// Post delivers background results to the event loop.
	Post func(tcell.Event) error

	// Clipboard receives text exports. Nil uses the system clipboard.
	Clipboard func(string) error

	// Now is the clock for status timeouts. Nil uses time.Now.
	Now func() time.Time
}

// Session holds the map being edited and reacts to keys and background
// results. All methods must be called from the event loop goroutine.
type Session struct {
	ctx      context.Context
	theme    ui.Theme
	mapView  *ui.MapView
	prompter Prompter
	post     func(tcell.Event) error
	copyText func(string) error
	now      func() time.Time
	log      *logrus.Entry

	grid  *world.Grid
	view  world.ViewState
	state State

	path      string // file bound to save
	isNew     bool   // path did not exist when bound
	cwd       string
	browseDir string
	loading   bool

	flash      string
	flashUntil time.Time
}

// NewSession creates a session with an empty map bound to cfg.File.
func NewSession(ctx context.Context, cfg Config, deps Deps) *Session {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	s := &Session{
		ctx:       ctx,
		theme:     cfg.Theme(),
		prompter:  deps.Prompter,
		post:      deps.Post,
		copyText:  deps.Clipboard,
		now:       deps.Now,
		log:       logger.Log.WithField("session", uuid.NewString()),
		grid:      world.NewGrid(),
		state:     StateNavigating,
		path:      cfg.File,
		isNew:     true,
		cwd:       cwd,
		browseDir: cfg.StartDir,
	}
	s.mapView = ui.NewMapView(s.theme)
	if s.copyText == nil {
		s.copyText = clipboard.WriteAll
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.browseDir == "" {
		s.browseDir = cwd
	}
	return s
}

// Grid returns the map being edited.
func (s *Session) Grid() *world.Grid { return s.grid }

// View returns the current scroll and cursor position.
func (s *Session) View() world.ViewState { return s.view }

// State returns the editing state.
func (s *Session) State() State { return s.state }

// Path returns the file the map is saved to.
func (s *Session) Path() string { return s.path }

// Loading reports whether a load is outstanding.
func (s *Session) Loading() bool { return s.loading }

// Status returns the text for the status line.
func (s *Session) Status() string {
	if s.loading {
		return "(Loading)"
	}
	if s.flash != "" && s.now().Before(s.flashUntil) {
		return s.flash
	}
	if s.isNew {
		return "New file: " + s.rel(s.path)
	}
	return "Editing file: " + s.rel(s.path)
}

// Draw renders the frame, the map, the status line and any open dialogs.
func (s *Session) Draw(surf ui.Surface) {
	area := ui.DrawFrame(surf, s.theme)
	mapArea := area
	mapArea.H = max(mapArea.H-1, 0)
	s.mapView.Draw(surf, mapArea, s.grid, &s.view)
	ui.DrawStatus(surf, area, s.theme, s.Status())
	s.prompter.Draw(surf, ui.SurfaceRect(surf))
}

// HandleEvent applies a key or a background result. It reports whether the
// user asked to quit; a non-nil error is fatal.
func (s *Session) HandleEvent(ev tcell.Event) (quit bool, err error) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return s.HandleKey(ev), nil
	case *loadedEvent:
		return false, s.applyLoad(ev)
	case *savedEvent:
		s.applySave(ev)
	case *exportedEvent:
		s.applyExport(ev)
	}
	return false, nil
}

// HandleKey processes keyboard input and reports whether to quit.
func (s *Session) HandleKey(ev *tcell.EventKey) bool {
	if isCtrl(ev, tcell.KeyCtrlC, 'c') {
		s.log.Info("quit")
		return true
	}

	if s.prompter.Active() {
		s.prompter.HandleKey(ev)
		return false
	}
	if s.loading {
		return false
	}

	switch {
	case isCtrl(ev, tcell.KeyCtrlS, 's'):
		s.Save()
		return false
	case isCtrl(ev, tcell.KeyCtrlO, 'o'):
		s.Browse()
		return false
	case isCtrl(ev, tcell.KeyCtrlT, 't'):
		s.CopyText()
		return false
	case isCtrl(ev, tcell.KeyCtrlE, 'e'):
		s.ExportPNG()
		return false
	}

	if s.state == StateAwaitingInput {
		return false
	}
	s.handleMapKey(ev)
	return false
}

func (s *Session) handleMapKey(ev *tcell.EventKey) {
	shift := ev.Modifiers()&tcell.ModShift != 0

	switch ev.Key() {
	case tcell.KeyUp:
		s.step(world.Up, shift)
	case tcell.KeyDown:
		s.step(world.Down, shift)
	case tcell.KeyLeft:
		s.step(world.Left, shift)
	case tcell.KeyRight:
		s.step(world.Right, shift)

	case tcell.KeyEnter:
		s.selectedTile()

	case tcell.KeyBackspace, tcell.KeyBackspace2, tcell.KeyDelete:
		sel := s.view.Selected()
		res := s.grid.Clear(sel.X, sel.Y)
		s.log.WithFields(logrus.Fields{"x": sel.X, "y": sel.Y, "result": res}).Debug("clear")

	case tcell.KeyRune:
		switch ev.Rune() {
		case ' ':
			s.selectedTile()
		case 'l':
			s.RequestLabel()
		case '/':
			s.RequestComment()
		}
	}
}

// step moves the cursor, or with shift held toggles the edge of the
// selected tile in that direction.
func (s *Session) step(d world.Direction, toggle bool) {
	if toggle {
		s.selectedTile().Toggle(d)
		return
	}
	s.view.Move(d.Delta())
}

func (s *Session) selectedTile() *world.Tile {
	sel := s.view.Selected()
	return s.grid.GetOrCreate(sel.X, sel.Y)
}

// RequestLabel asks the prompter for a new label for the selected tile.
// Cancelling keeps the previous label.
func (s *Session) RequestLabel() {
	tile := s.selectedTile()
	s.state = StateAwaitingInput
	s.prompter.PickLabel(tile.Label, func(r ui.Result[string]) {
		if !r.Cancelled {
			tile.Label = r.Value
		}
		s.state = StateNavigating
	})
}

// RequestComment asks the prompter for a new comment for the selected tile.
// Cancelling keeps the previous comment.
func (s *Session) RequestComment() {
	tile := s.selectedTile()
	s.state = StateAwaitingInput
	s.prompter.EditComment(tile.Comment, func(r ui.Result[string]) {
		if !r.Cancelled {
			tile.Comment = r.Value
		}
		s.state = StateNavigating
	})
}

// Open loads path in the background. Map keys are ignored until the
// result arrives.
func (s *Session) Open(path string) {
	s.loading = true
	s.log.WithField("path", path).Info("loading map")

	ctx := s.ctx
	go func() {
		doc, err := mapfile.Load(ctx, path)
		s.deliver(newLoadedEvent(path, doc, err))
	}()
}

func (s *Session) applyLoad(ev *loadedEvent) error {
	s.loading = false
	log := s.log.WithField("path", ev.path)

	switch {
	case ev.err == nil:
		s.grid, s.view = ev.doc.Restore()
		s.path, s.isNew = ev.path, false
		log.WithField("tiles", s.grid.Len()).Info("map loaded")
	case errors.Is(ev.err, mapfile.ErrNotFound):
		s.grid, s.view = world.NewGrid(), world.ViewState{}
		s.path, s.isNew = ev.path, true
		log.Info("starting new map")
	case errors.Is(ev.err, mapfile.ErrMalformed):
		log.WithError(ev.err).Warn("invalid map file")
		s.prompter.ShowError("Invalid JSON data: "+ev.path, nil)
	default:
		log.WithError(ev.err).Error("failed to load map")
		return fmt.Errorf("failed to load %s: %w", ev.path, ev.err)
	}
	return nil
}

// Browse opens the file browser and loads the chosen file.
func (s *Session) Browse() {
	s.prompter.BrowseFile(s.browseDir, func(r ui.Result[string]) {
		if r.Cancelled {
			return
		}
		s.browseDir = filepath.Dir(r.Value)
		s.Open(r.Value)
	})
}

// Save writes the map in the background. The document is captured now, so
// edits made while the write is in flight are not part of it.
func (s *Session) Save() {
	doc := mapfile.Snapshot(s.grid, s.view)
	path := s.path
	s.log.WithFields(logrus.Fields{"path": path, "tiles": len(doc.Tiles)}).Debug("saving map")

	ctx := s.ctx
	go func() {
		s.deliver(newSavedEvent(path, mapfile.Save(ctx, path, doc)))
	}()
}

func (s *Session) applySave(ev *savedEvent) {
	log := s.log.WithField("path", ev.path)
	if ev.err != nil {
		log.WithError(ev.err).Error("save failed")
		s.prompter.ShowError("Failed to save: "+ev.err.Error(), nil)
		return
	}
	log.Info("map saved")
	if ev.path == s.path {
		s.isNew = false
	}
	s.showFlash("Saved.")
}

// CopyText puts the text rendering of the whole map on the clipboard.
func (s *Session) CopyText() {
	text, err := export.Text(s.grid)
	if err != nil {
		s.log.WithError(err).Warn("text export failed")
		s.prompter.ShowError("Failed to copy: "+err.Error(), nil)
		return
	}
	if err := s.copyText(text); err != nil {
		s.log.WithError(err).Warn("clipboard copy failed")
		s.prompter.ShowError("Failed to copy: "+err.Error(), nil)
		return
	}
	s.showFlash("Copied map to clipboard.")
}

// ExportPNG writes an image of the whole map next to the save file.
func (s *Session) ExportPNG() {
	if _, _, _, err := export.Extent(s.grid); err != nil {
		s.log.WithError(err).Warn("PNG export refused")
		s.prompter.ShowError("Failed to export: "+err.Error(), nil)
		return
	}
	grid, _ := mapfile.Snapshot(s.grid, s.view).Restore()
	path := pngPath(s.path)

	ctx := s.ctx
	go func() {
		s.deliver(newExportedEvent(path, writePNG(ctx, path, grid)))
	}()
}

// deliver posts a background result to the event loop, retrying while the
// queue is full. It gives up only when the context ends or the screen
// rejects the event for another reason.
func (s *Session) deliver(ev tcell.Event) {
	for {
		err := s.post(ev)
		if err == nil {
			return
		}
		log := s.log.WithField("event", fmt.Sprintf("%T", ev))
		if !errors.Is(err, tcell.ErrEventQFull) {
			log.WithError(err).Error("failed to deliver background result")
			return
		}
		select {
		case <-s.ctx.Done():
			log.WithError(s.ctx.Err()).Warn("background result dropped")
			return
		case <-time.After(postRetryDelay):
		}
	}
}

func (s *Session) applyExport(ev *exportedEvent) {
	log := s.log.WithField("path", ev.path)
	if ev.err != nil {
		log.WithError(ev.err).Error("export failed")
		s.prompter.ShowError("Failed to export: "+ev.err.Error(), nil)
		return
	}
	log.Info("map exported")
	s.showFlash("Exported " + s.rel(ev.path))
}

func (s *Session) showFlash(msg string) {
	s.flash = msg
	s.flashUntil = s.now().Add(flashDuration)
}

// rel returns path relative to the working directory when possible.
func (s *Session) rel(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	r, err := filepath.Rel(s.cwd, abs)
	if err != nil {
		return path
	}
	return r
}

func pngPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".png"
}

// writePNG renders the whole image before touching path, so a failed export
// leaves no partial file behind.
func writePNG(ctx context.Context, path string, grid *world.Grid) error {
	var buf bytes.Buffer
	if err := export.PNG(ctx, &buf, grid, export.DefaultPNGOptions()); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// isCtrl matches Ctrl+letter whether the terminal reports it as a control
// key or as a rune with the Ctrl modifier.
func isCtrl(ev *tcell.EventKey, key tcell.Key, r rune) bool {
	if ev.Key() == key {
		return true
	}
	return ev.Key() == tcell.KeyRune &&
		ev.Modifiers()&tcell.ModCtrl != 0 &&
		unicode.ToLower(ev.Rune()) == r
}
