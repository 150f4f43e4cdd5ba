package editor

import (
	"os"
	"strconv"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/dungeonmap/internal/gamedata"
	"github.com/samdwyer/dungeonmap/internal/ui"
)

// Defaults used when the environment does not say otherwise.
const (
	DefaultFile = "save.json"
	DefaultTick = 100 * time.Millisecond
)

// Config holds editor configuration options.
type Config struct {
	// File is the map loaded at startup and written by save.
	File string

	// Tick is the interval of the redraw timer.
	Tick time.Duration

	// StartDir is where the file browser opens before any file was picked.
	// Empty means the working directory.
	StartDir string

	// WallColor and LabelColor are hex colours ("#rrggbb"). Empty or invalid
	// values keep the terminal's default foreground.
	WallColor  string
	LabelColor string
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		File: DefaultFile,
		Tick: DefaultTick,
	}
}

// LoadConfig reads DUNGEONMAP_* variables over the defaults. The first
// element of args, when present, overrides the map file.
func LoadConfig(args []string) Config {
	cfg := DefaultConfig()

	if v := os.Getenv("DUNGEONMAP_FILE"); v != "" {
		cfg.File = v
	}
	if v := os.Getenv("DUNGEONMAP_TICK_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.Tick = time.Duration(ms) * time.Millisecond
		}
	}
	cfg.StartDir = os.Getenv("DUNGEONMAP_DIR")
	cfg.WallColor = os.Getenv("DUNGEONMAP_WALL_COLOR")
	cfg.LabelColor = os.Getenv("DUNGEONMAP_LABEL_COLOR")

	if len(args) > 0 && args[0] != "" {
		cfg.File = args[0]
	}
	return cfg
}

// Theme builds the UI theme with the configured colours applied.
func (c Config) Theme() ui.Theme {
	return ui.DefaultTheme().WithColors(
		gamedata.ColorOr(c.WallColor, tcell.ColorDefault),
		gamedata.ColorOr(c.LabelColor, tcell.ColorDefault),
	)
}
