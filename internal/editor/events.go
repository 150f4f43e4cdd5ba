package editor

import (
	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/dungeonmap/internal/mapfile"
)

// Background work reports back to the event loop with these events. They
// travel through Screen.PostEvent so the session is only ever touched by
// the loop goroutine.

type loadedEvent struct {
	tcell.EventTime
	path string
	doc  *mapfile.Document
	err  error
}

type savedEvent struct {
	tcell.EventTime
	path string
	err  error
}

type exportedEvent struct {
	tcell.EventTime
	path string
	err  error
}

func newLoadedEvent(path string, doc *mapfile.Document, err error) *loadedEvent {
	ev := &loadedEvent{path: path, doc: doc, err: err}
	ev.SetEventNow()
	return ev
}

func newSavedEvent(path string, err error) *savedEvent {
	ev := &savedEvent{path: path, err: err}
	ev.SetEventNow()
	return ev
}

func newExportedEvent(path string, err error) *exportedEvent {
	ev := &exportedEvent{path: path, err: err}
	ev.SetEventNow()
	return ev
}
