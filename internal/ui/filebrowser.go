package ui

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/gdamore/tcell/v2"
	"github.com/maruel/natural"
)

const (
	browserPaneWidth  = 40
	browserPaneHeight = 14
	browserReadFailed = "Failed to read path! (Cancel)"
)

// FileEntry is one row of the file browser.
type FileEntry struct {
	Path  string
	Label string
	IsDir bool
}

// ReadEntries lists dir for the browser: "../" first, then directories, then files,
// each group in natural order. Directory labels end in "/".
func ReadEntries(dir string) ([]FileEntry, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	entries := make([]FileEntry, 0, len(items)+1)
	for _, item := range items {
		path := filepath.Join(dir, item.Name())
		isDir := item.IsDir()
		if item.Type()&fs.ModeSymlink != 0 {
			if info, err := os.Stat(path); err == nil {
				isDir = info.IsDir()
			}
		}
		label := item.Name()
		if isDir {
			label += "/"
		}
		entries = append(entries, FileEntry{Path: path, Label: label, IsDir: isDir})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return natural.Less(entries[i].Label, entries[j].Label)
	})

	parent := FileEntry{Path: filepath.Dir(dir), Label: "../", IsDir: true}
	return append([]FileEntry{parent}, entries...), nil
}

// FileBrowser lets the user walk directories and pick a file.
type FileBrowser struct {
	theme   Theme
	title   string
	dir     string
	entries []FileEntry
	failed  bool
	list    List
	page    int
	done    func(Result[string])
}

// NewFileBrowser creates a browser showing dir. done receives the chosen file path,
// or a cancellation.
func NewFileBrowser(theme Theme, title, dir string, done func(Result[string])) *FileBrowser {
	b := &FileBrowser{theme: theme, title: title, done: done}
	b.fill(dir)
	return b
}

// Dir returns the directory currently listed.
func (b *FileBrowser) Dir() string {
	return b.dir
}

// Entries returns the rows currently listed.
func (b *FileBrowser) Entries() []FileEntry {
	return b.entries
}

// Failed reports whether the current directory could not be read.
func (b *FileBrowser) Failed() bool {
	return b.failed
}

func (b *FileBrowser) fill(dir string) {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	b.dir = dir

	entries, err := ReadEntries(dir)
	b.failed = err != nil
	if b.failed {
		b.entries = nil
		b.list = List{Items: []string{browserReadFailed}}
		return
	}

	b.entries = entries
	items := make([]string, len(entries))
	for i, e := range entries {
		items[i] = e.Label
	}
	b.list = List{Items: items}
}

// HandleKey implements Component.
func (b *FileBrowser) HandleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		b.done(Cancelled[string]())
	case tcell.KeyEnter:
		if b.failed {
			b.done(Cancelled[string]())
			return
		}
		entry := b.entries[b.list.Selected]
		if entry.IsDir {
			b.fill(entry.Path)
			return
		}
		b.done(Resolved(entry.Path))
	default:
		b.list.HandleKey(ev, b.page)
	}
}

// Draw implements Component.
func (b *FileBrowser) Draw(s Surface, area Rect) {
	pane := area.Centered(browserPaneWidth, browserPaneHeight)
	DrawPane(s, pane, b.theme.Pane)
	inner := pane.Inset(1)
	if inner.H == 0 {
		return
	}
	DrawCentered(s, inner, inner.Y, b.title, b.theme.Title)
	listArea := Rect{X: inner.X, Y: inner.Y + 1, W: inner.W, H: inner.H - 1}
	b.page = listArea.H
	b.list.Draw(s, listArea, b.theme.Pane, b.theme.Select)
}
