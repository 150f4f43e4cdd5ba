// Package logger holds the application-wide logrus logger.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the global logger. It discards output until Init is called.
var Log = newDiscard()

func newDiscard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Options configures the global logger.
type Options struct {
	Level  string // logrus level name, "info" when empty or invalid
	Format string // "json" or "text"
	File   string // log file path; empty discards output
}

// OptionsFromEnv reads LOG_LEVEL, LOG_FORMAT and LOG_FILE.
func OptionsFromEnv() Options {
	return Options{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
		File:   os.Getenv("LOG_FILE"),
	}
}

// Init configures the global logger. The terminal belongs to the editor,
// so logs only go to a file.
// The returned closer releases the log file and must be called on exit.
func Init(opts Options) (io.Closer, error) {
	l := logrus.New()

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if strings.ToLower(opts.Format) == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			DisableColors: true,
		})
	}

	var closer io.Closer = nopCloser{}
	if opts.File == "" {
		l.SetOutput(io.Discard)
	} else {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		l.SetOutput(f)
		closer = f
	}

	Log = l
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
