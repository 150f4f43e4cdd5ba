package editor

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/dungeonmap/internal/gamedata"
	"github.com/samdwyer/dungeonmap/internal/logger"
	"github.com/samdwyer/dungeonmap/internal/telemetry"
	"github.com/samdwyer/dungeonmap/internal/ui"
)

// Editor owns the terminal and runs the event loop for a Session.
type Editor struct {
	screen  *ui.Screen
	cfg     Config
	session *Session
	running bool
}

// New creates an editor on the terminal.
func New(cfg Config) (*Editor, error) {
	screen, err := ui.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Editor{
		screen:  screen,
		cfg:     cfg,
		running: true,
	}, nil
}

// Run executes the main loop until the user quits or a fatal error occurs.
func (e *Editor) Run(ctx context.Context) error {
	defer e.screen.Close()

	tracer := telemetry.Tracer("editor")
	ctx, initSpan := tracer.Start(ctx, "editor.init")

	labels, err := gamedata.LoadLabelRegistry()
	if err != nil {
		initSpan.RecordError(err)
		initSpan.End()
		return err
	}
	theme := e.cfg.Theme()
	e.session = NewSession(ctx, e.cfg, Deps{
		Prompter: NewDialogs(theme, labels),
		Post:     e.screen.PostEvent,
	})
	e.session.Open(e.cfg.File)

	initSpan.SetAttributes(
		attribute.String("editor.file", e.cfg.File),
		attribute.Int("editor.labels", labels.Count()),
		attribute.Int64("editor.tick_ms", e.cfg.Tick.Milliseconds()),
	)
	initSpan.End()

	stop := make(chan struct{})
	defer close(stop)
	go e.tick(stop)

	for e.running {
		e.screen.Clear()
		e.session.Draw(e.screen)
		e.screen.Show()

		if err := e.handleEvent(e.screen.PollEvent()); err != nil {
			return err
		}
	}
	return nil
}

// tick posts a redraw at a fixed interval so timed status messages expire
// without user input.
func (e *Editor) tick(stop <-chan struct{}) {
	ticker := time.NewTicker(e.cfg.Tick)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			_ = e.screen.PostEvent(tcell.NewEventInterrupt(nil))
		}
	}
}

// handleEvent processes a single event.
func (e *Editor) handleEvent(ev tcell.Event) error {
	switch ev := ev.(type) {
	case nil:
		// Screen finalized
		e.running = false
	case *tcell.EventResize:
		e.screen.Sync()
	case *tcell.EventInterrupt:
		// Redraw only
	default:
		quit, err := e.session.HandleEvent(ev)
		if err != nil {
			return err
		}
		if quit {
			logger.Log.Debug("editor stopping")
			e.running = false
		}
	}
	return nil
}

