package editor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/dungeonmap/internal/export"
	"github.com/samdwyer/dungeonmap/internal/mapfile"
	"github.com/samdwyer/dungeonmap/internal/ui"
	"github.com/samdwyer/dungeonmap/internal/world"
)

// fakePrompter records requests; tests resolve them by calling the stored
// callbacks.
type fakePrompter struct {
	active bool

	labelCurrent   string
	labelDone      func(ui.Result[string])
	commentCurrent string
	commentDone    func(ui.Result[string])
	browseDir      string
	browseDone     func(ui.Result[string])
	errors         []string
	forwarded      int
}

func (f *fakePrompter) PickLabel(current string, done func(ui.Result[string])) {
	f.labelCurrent, f.labelDone = current, done
}

func (f *fakePrompter) EditComment(current string, done func(ui.Result[string])) {
	f.commentCurrent, f.commentDone = current, done
}

func (f *fakePrompter) BrowseFile(dir string, done func(ui.Result[string])) {
	f.browseDir, f.browseDone = dir, done
}

func (f *fakePrompter) ShowError(message string, done func()) {
	f.errors = append(f.errors, message)
}

func (f *fakePrompter) Active() bool { return f.active }

func (f *fakePrompter) HandleKey(*tcell.EventKey) { f.forwarded++ }

func (f *fakePrompter) Draw(ui.Surface, ui.Rect) {}

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time { return c.t }

type harness struct {
	s        *Session
	prompter *fakePrompter
	events   chan tcell.Event
	clock    *testClock
	copied   []string
}

func newHarness(t *testing.T, file string) *harness {
	t.Helper()
	h := &harness{
		prompter: &fakePrompter{},
		events:   make(chan tcell.Event, 8),
		clock:    &testClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)},
	}
	cfg := DefaultConfig()
	cfg.File = file
	h.s = NewSession(context.Background(), cfg, Deps{
		Prompter: h.prompter,
		Post: func(ev tcell.Event) error {
			h.events <- ev
			return nil
		},
		Clipboard: func(text string) error {
			h.copied = append(h.copied, text)
			return nil
		},
		Now: h.clock.Now,
	})
	return h
}

// settle waits for one background result and applies it.
func (h *harness) settle(t *testing.T) error {
	t.Helper()
	select {
	case ev := <-h.events:
		_, err := h.s.HandleEvent(ev)
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a background result")
		return nil
	}
}

func (h *harness) press(k tcell.Key, mod tcell.ModMask) bool {
	return h.s.HandleKey(tcell.NewEventKey(k, 0, mod))
}

func (h *harness) typeRune(r rune) {
	h.s.HandleKey(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
}

func TestSessionMoveAndCreate(t *testing.T) {
	h := newHarness(t, filepath.Join(t.TempDir(), "map.json"))

	h.press(tcell.KeyRight, tcell.ModNone)
	h.press(tcell.KeyDown, tcell.ModNone)
	h.press(tcell.KeyDown, tcell.ModNone)
	h.press(tcell.KeyLeft, tcell.ModNone)
	if sel := h.s.View().Selected(); sel != (world.Point{X: 0, Y: 2}) {
		t.Fatalf("selected = %+v, want (0,2)", sel)
	}
	if h.s.Grid().Len() != 0 {
		t.Error("moving must not create tiles")
	}

	h.press(tcell.KeyEnter, tcell.ModNone)
	h.press(tcell.KeyUp, tcell.ModNone)
	h.typeRune(' ')

	for _, p := range []world.Point{{X: 0, Y: 2}, {X: 0, Y: 1}} {
		tile := h.s.Grid().Get(p.X, p.Y)
		if tile == nil {
			t.Fatalf("no tile at %+v", p)
		}
		if !tile.Up || !tile.Down || !tile.Left || !tile.Right {
			t.Errorf("new tile at %+v should be open on every side: %+v", p, tile)
		}
	}

	h.typeRune('q')
	if h.s.Grid().Len() != 2 {
		t.Error("unbound keys should not touch the map")
	}
}

func TestSessionToggleEdges(t *testing.T) {
	h := newHarness(t, filepath.Join(t.TempDir(), "map.json"))

	h.press(tcell.KeyUp, tcell.ModShift)
	h.press(tcell.KeyRight, tcell.ModShift)

	tile := h.s.Grid().Get(0, 0)
	if tile == nil {
		t.Fatal("shift+arrow should create the selected tile")
	}
	if tile.Up || tile.Right || !tile.Down || !tile.Left {
		t.Errorf("edges = %+v, want up and right closed", tile)
	}
	if sel := h.s.View().Selected(); sel != (world.Point{}) {
		t.Errorf("shift+arrow moved the cursor to %+v", sel)
	}

	h.press(tcell.KeyUp, tcell.ModShift)
	if !tile.Up {
		t.Error("second toggle should reopen the edge")
	}
}

func TestSessionLabel(t *testing.T) {
	h := newHarness(t, filepath.Join(t.TempDir(), "map.json"))

	h.typeRune('l')
	if h.s.State() != StateAwaitingInput {
		t.Fatalf("state = %v, want awaiting-input", h.s.State())
	}
	if h.prompter.labelDone == nil || h.prompter.labelCurrent != "" {
		t.Fatalf("label request not made correctly: current=%q", h.prompter.labelCurrent)
	}

	// Map keys are ignored while waiting
	h.press(tcell.KeyRight, tcell.ModNone)
	h.press(tcell.KeyDelete, tcell.ModNone)
	if sel := h.s.View().Selected(); sel != (world.Point{}) {
		t.Errorf("cursor moved while awaiting input: %+v", sel)
	}
	if h.s.Grid().Get(0, 0) == nil {
		t.Fatal("tile removed while awaiting input")
	}

	h.prompter.labelDone(ui.Resolved("C"))
	if h.s.State() != StateNavigating {
		t.Errorf("state = %v, want navigating", h.s.State())
	}
	if got := h.s.Grid().Get(0, 0).Label; got != "C" {
		t.Errorf("label = %q, want C", got)
	}

	h.typeRune('l')
	if h.prompter.labelCurrent != "C" {
		t.Errorf("picker should start on the current label, got %q", h.prompter.labelCurrent)
	}
	h.prompter.labelDone(ui.Cancelled[string]())
	if got := h.s.Grid().Get(0, 0).Label; got != "C" {
		t.Errorf("cancel changed the label to %q", got)
	}
}

func TestSessionComment(t *testing.T) {
	h := newHarness(t, filepath.Join(t.TempDir(), "map.json"))
	h.press(tcell.KeyDown, tcell.ModNone)

	h.typeRune('/')
	if h.s.State() != StateAwaitingInput || h.prompter.commentDone == nil {
		t.Fatal("comment request not made")
	}
	h.prompter.commentDone(ui.Resolved("secret door"))

	tile := h.s.Grid().Get(0, 1)
	if tile == nil || tile.Comment != "secret door" {
		t.Fatalf("tile = %+v, want comment set", tile)
	}

	h.typeRune('/')
	if h.prompter.commentCurrent != "secret door" {
		t.Errorf("editor should start with the current comment, got %q", h.prompter.commentCurrent)
	}
	h.prompter.commentDone(ui.Cancelled[string]())
	if tile.Comment != "secret door" {
		t.Errorf("cancel changed the comment to %q", tile.Comment)
	}
	if h.s.State() != StateNavigating {
		t.Errorf("state = %v, want navigating", h.s.State())
	}
}

func TestSessionDeleteKeys(t *testing.T) {
	h := newHarness(t, filepath.Join(t.TempDir(), "map.json"))
	tile := h.s.Grid().GetOrCreate(0, 0)
	tile.Label, tile.Comment = "X", "loot"

	h.press(tcell.KeyBackspace2, tcell.ModNone)
	if tile.Label != "" || tile.Comment != "loot" {
		t.Errorf("first delete should clear only the label: %+v", tile)
	}
	h.press(tcell.KeyDelete, tcell.ModNone)
	if tile.Comment != "" || h.s.Grid().Get(0, 0) == nil {
		t.Errorf("second delete should clear only the comment: %+v", tile)
	}
	h.press(tcell.KeyBackspace, tcell.ModNone)
	if h.s.Grid().Get(0, 0) != nil {
		t.Error("third delete should remove the tile")
	}
	h.press(tcell.KeyDelete, tcell.ModNone)
	if h.s.Grid().Len() != 0 {
		t.Error("delete on an empty cell should be a no-op")
	}
}

func TestLoadMalformedKeepsGrid(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(t, filepath.Join(dir, "map.json"))
	h.s.Grid().GetOrCreate(2, 3).Label = "↑"
	h.press(tcell.KeyRight, tcell.ModNone)
	before := h.s.Grid()
	view := h.s.View()

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	h.s.Open(bad)
	if err := h.settle(t); err != nil {
		t.Fatalf("malformed file should not be fatal: %v", err)
	}

	if h.s.Grid() != before || before.Len() != 1 || before.Get(2, 3).Label != "↑" {
		t.Error("grid changed after a malformed load")
	}
	if h.s.View() != view {
		t.Errorf("view = %+v, want %+v", h.s.View(), view)
	}
	if h.s.Path() != filepath.Join(dir, "map.json") {
		t.Errorf("path = %q, should be unchanged", h.s.Path())
	}
	if len(h.prompter.errors) != 1 || h.prompter.errors[0] != "Invalid JSON data: "+bad {
		t.Errorf("errors = %q", h.prompter.errors)
	}
	if h.s.Loading() {
		t.Error("loading flag not cleared")
	}
}

func TestSessionLoadMissing(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(t, filepath.Join(dir, "map.json"))
	h.s.Grid().GetOrCreate(0, 0)

	fresh := filepath.Join(dir, "fresh.json")
	h.s.Open(fresh)
	if err := h.settle(t); err != nil {
		t.Fatalf("missing file should not be fatal: %v", err)
	}

	if h.s.Grid().Len() != 0 {
		t.Error("missing file should start an empty map")
	}
	if h.s.Path() != fresh {
		t.Errorf("path = %q, want %q", h.s.Path(), fresh)
	}
	if st := h.s.Status(); !strings.HasPrefix(st, "New file: ") || !strings.HasSuffix(st, "fresh.json") {
		t.Errorf("status = %q", st)
	}
	if len(h.prompter.errors) != 0 {
		t.Errorf("unexpected error dialogs: %q", h.prompter.errors)
	}
}

func TestSessionLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "level.json")

	g := world.NewGrid()
	g.Put(world.Tile{X: 4, Y: -1, Up: true, Label: "X", Comment: "boss"})
	if err := mapfile.Save(context.Background(), path, mapfile.Snapshot(g, world.ViewState{SelectedX: 4, SelectedY: -1})); err != nil {
		t.Fatal(err)
	}

	h := newHarness(t, path)
	h.s.Open(path)
	if st := h.s.Status(); st != "(Loading)" {
		t.Errorf("status while loading = %q", st)
	}
	if err := h.settle(t); err != nil {
		t.Fatal(err)
	}

	tile := h.s.Grid().Get(4, -1)
	if tile == nil || tile.Label != "X" || tile.Comment != "boss" || !tile.Up || tile.Down {
		t.Errorf("loaded tile = %+v", tile)
	}
	if sel := h.s.View().Selected(); sel != (world.Point{X: 4, Y: -1}) {
		t.Errorf("selected = %+v", sel)
	}
	if st := h.s.Status(); !strings.HasPrefix(st, "Editing file: ") {
		t.Errorf("status = %q", st)
	}
}

func TestSessionLoadFatal(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(t, filepath.Join(dir, "map.json"))

	// Reading a directory fails with something other than not-found.
	h.s.Open(dir)
	err := h.settle(t)
	if err == nil {
		t.Fatal("expected a fatal error")
	}
	if errors.Is(err, mapfile.ErrNotFound) || errors.Is(err, mapfile.ErrMalformed) {
		t.Errorf("error should be neither not-found nor malformed: %v", err)
	}
}

func TestSessionIgnoresKeysWhileLoading(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(t, filepath.Join(dir, "map.json"))

	h.s.Open(filepath.Join(dir, "other.json"))
	h.press(tcell.KeyRight, tcell.ModNone)
	h.press(tcell.KeyEnter, tcell.ModNone)
	h.typeRune('l')
	h.press(tcell.KeyCtrlS, tcell.ModCtrl)

	if sel := h.s.View().Selected(); sel != (world.Point{}) {
		t.Errorf("cursor moved while loading: %+v", sel)
	}
	if h.s.Grid().Len() != 0 || h.prompter.labelDone != nil {
		t.Error("map keys should be ignored while loading")
	}
	if !h.press(tcell.KeyCtrlC, tcell.ModCtrl) {
		t.Error("Ctrl-C should quit even while loading")
	}

	if err := h.settle(t); err != nil {
		t.Fatal(err)
	}
	select {
	case ev := <-h.events:
		t.Errorf("unexpected background event %T", ev)
	default:
	}
}

func TestSessionCommandsIgnoredWhileDialog(t *testing.T) {
	h := newHarness(t, filepath.Join(t.TempDir(), "map.json"))
	h.prompter.active = true

	h.press(tcell.KeyCtrlS, tcell.ModCtrl)
	h.press(tcell.KeyCtrlO, tcell.ModCtrl)
	h.press(tcell.KeyDown, tcell.ModNone)

	if h.prompter.forwarded != 3 {
		t.Errorf("forwarded = %d, want 3", h.prompter.forwarded)
	}
	if h.prompter.browseDone != nil {
		t.Error("file browser opened under a dialog")
	}
	if sel := h.s.View().Selected(); sel != (world.Point{}) {
		t.Errorf("cursor moved under a dialog: %+v", sel)
	}
	select {
	case ev := <-h.events:
		t.Errorf("unexpected background event %T", ev)
	default:
	}
	if !h.press(tcell.KeyCtrlC, tcell.ModCtrl) {
		t.Error("Ctrl-C should quit under a dialog")
	}
}

func TestSessionSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.json")
	h := newHarness(t, path)
	h.s.Grid().GetOrCreate(1, 1).Label = "1"

	h.press(tcell.KeyCtrlS, tcell.ModCtrl)
	if err := h.settle(t); err != nil {
		t.Fatal(err)
	}
	if st := h.s.Status(); st != "Saved." {
		t.Errorf("status = %q, want Saved.", st)
	}

	h.clock.t = h.clock.t.Add(1500 * time.Millisecond)
	if st := h.s.Status(); !strings.HasPrefix(st, "Editing file: ") {
		t.Errorf("status after timeout = %q", st)
	}

	doc, err := mapfile.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("saved file did not load: %v", err)
	}
	if len(doc.Tiles) != 1 || doc.Tiles[0].Label != "1" {
		t.Errorf("saved tiles = %+v", doc.Tiles)
	}
}

func TestSessionSaveFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "map.json")
	h := newHarness(t, path)
	h.s.Grid().GetOrCreate(0, 0)

	h.press(tcell.KeyCtrlS, tcell.ModCtrl)
	if err := h.settle(t); err != nil {
		t.Fatalf("save failure should not be fatal: %v", err)
	}
	if len(h.prompter.errors) != 1 || !strings.HasPrefix(h.prompter.errors[0], "Failed to save: ") {
		t.Errorf("errors = %q", h.prompter.errors)
	}
	if h.s.Grid().Len() != 1 {
		t.Error("grid changed after a failed save")
	}
	if st := h.s.Status(); !strings.HasPrefix(st, "New file: ") {
		t.Errorf("status = %q", st)
	}
}

func TestSessionBrowse(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "maps", "b.json")
	h := newHarness(t, filepath.Join(dir, "map.json"))

	h.press(tcell.KeyCtrlO, tcell.ModCtrl)
	if h.prompter.browseDone == nil {
		t.Fatal("file browser not opened")
	}
	wd, _ := os.Getwd()
	if h.prompter.browseDir != wd {
		t.Errorf("browser started in %q, want %q", h.prompter.browseDir, wd)
	}

	h.prompter.browseDone(ui.Cancelled[string]())
	if h.s.Loading() {
		t.Error("cancel should not load")
	}

	h.press(tcell.KeyCtrlO, tcell.ModCtrl)
	h.prompter.browseDone(ui.Resolved(target))
	if !h.s.Loading() {
		t.Fatal("choosing a file should start a load")
	}
	if err := h.settle(t); err != nil {
		t.Fatal(err)
	}
	if h.s.Path() != target {
		t.Errorf("path = %q, want %q", h.s.Path(), target)
	}

	h.press(tcell.KeyCtrlO, tcell.ModCtrl)
	if h.prompter.browseDir != filepath.Dir(target) {
		t.Errorf("browser should reopen in %q, got %q", filepath.Dir(target), h.prompter.browseDir)
	}
}

func TestSessionCopyText(t *testing.T) {
	h := newHarness(t, filepath.Join(t.TempDir(), "map.json"))
	h.s.Grid().GetOrCreate(0, 0).Label = "C"
	h.s.Grid().Get(0, 0).Left = false

	h.press(tcell.KeyCtrlT, tcell.ModCtrl)
	if len(h.copied) != 1 {
		t.Fatalf("copied %d times, want 1", len(h.copied))
	}
	if want := "│ └\n│C\n│ ┌\n"; h.copied[0] != want {
		t.Errorf("copied %q, want %q", h.copied[0], want)
	}
	if st := h.s.Status(); st != "Copied map to clipboard." {
		t.Errorf("status = %q", st)
	}
}

func TestSessionExportPNG(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(t, filepath.Join(dir, "map.json"))
	h.s.Grid().GetOrCreate(0, 0).Label = "X"

	h.press(tcell.KeyCtrlE, tcell.ModCtrl)
	if err := h.settle(t); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(filepath.Join(dir, "map.png"))
	if err != nil {
		t.Fatalf("PNG not written: %v", err)
	}
	if info.Size() == 0 {
		t.Error("PNG is empty")
	}
	if st := h.s.Status(); !strings.HasPrefix(st, "Exported ") {
		t.Errorf("status = %q", st)
	}
}

func TestSessionDraw(t *testing.T) {
	h := newHarness(t, filepath.Join(t.TempDir(), "map.json"))
	h.s.Grid().GetOrCreate(0, 0).Label = "↓"

	buf := ui.NewBuffer(40, 12)
	h.s.Draw(buf)

	if got := buf.Cell(0, 0).Rune; got != ui.BoxCornerTL {
		t.Errorf("frame corner = %q", got)
	}
	if got := buf.Cell(2, 2).Rune; got != '↓' {
		t.Errorf("label cell = %q, want ↓", got)
	}
	if row := buf.Row(10); !strings.Contains(row, "New file: ") {
		t.Errorf("status row = %q", row)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateNavigating, "navigating"},
		{StateAwaitingInput, "awaiting-input"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestSessionExportTooLarge(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(t, filepath.Join(dir, "map.json"))
	h.s.Grid().GetOrCreate(0, 0)
	h.s.Grid().GetOrCreate(1<<40, 0)

	h.press(tcell.KeyCtrlT, tcell.ModCtrl)
	if len(h.copied) != 0 {
		t.Error("oversized map should not reach the clipboard")
	}
	h.press(tcell.KeyCtrlE, tcell.ModCtrl)

	want := []string{"Failed to copy: ", "Failed to export: "}
	if len(h.prompter.errors) != len(want) {
		t.Fatalf("errors = %q, want %d dialogs", h.prompter.errors, len(want))
	}
	for i, prefix := range want {
		msg := h.prompter.errors[i]
		if !strings.HasPrefix(msg, prefix) || !strings.Contains(msg, export.ErrTooLarge.Error()) {
			t.Errorf("error %d = %q, want %q and %q", i, msg, prefix, export.ErrTooLarge)
		}
	}

	select {
	case ev := <-h.events:
		t.Errorf("unexpected background event %T", ev)
	default:
	}
	if _, err := os.Stat(filepath.Join(dir, "map.png")); !os.IsNotExist(err) {
		t.Errorf("no PNG should be written, stat err = %v", err)
	}
	if h.s.Grid().Len() != 2 {
		t.Error("grid changed after a refused export")
	}
}

// newPostSession builds a session whose Post is supplied by the test.
func newPostSession(ctx context.Context, t *testing.T, post func(tcell.Event) error) *Session {
	t.Helper()
	cfg := DefaultConfig()
	cfg.File = filepath.Join(t.TempDir(), "map.json")
	return NewSession(ctx, cfg, Deps{
		Prompter:  &fakePrompter{},
		Post:      post,
		Clipboard: func(string) error { return nil },
	})
}

func TestSessionRetriesFullQueue(t *testing.T) {
	events := make(chan tcell.Event, 1)
	var calls atomic.Int32
	s := newPostSession(context.Background(), t, func(ev tcell.Event) error {
		if calls.Add(1) == 1 {
			return tcell.ErrEventQFull
		}
		events <- ev
		return nil
	})

	s.Open(filepath.Join(t.TempDir(), "missing.json"))

	select {
	case ev := <-events:
		if _, err := s.HandleEvent(ev); err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("load result was never delivered")
	}

	if calls.Load() != 2 {
		t.Errorf("post called %d times, want 2", calls.Load())
	}
	if s.Loading() {
		t.Fatal("session still loading after the result arrived")
	}
	s.HandleKey(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone))
	if s.View().SelectedX != 1 {
		t.Error("map keys should work again after the load")
	}
}

func TestSessionDeliverGivesUp(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		cancel bool
	}{
		{"screen rejects the event", errors.New("screen finalized"), false},
		{"context cancelled while the queue is full", tcell.ErrEventQFull, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if tt.cancel {
				cancel()
			}

			var calls atomic.Int32
			s := newPostSession(ctx, t, func(tcell.Event) error {
				calls.Add(1)
				return tt.err
			})

			done := make(chan struct{})
			go func() {
				s.deliver(newSavedEvent("map.json", nil))
				close(done)
			}()

			select {
			case <-done:
			case <-time.After(5 * time.Second):
				t.Fatal("deliver did not return")
			}
			if calls.Load() != 1 {
				t.Errorf("post called %d times, want 1", calls.Load())
			}
		})
	}
}
