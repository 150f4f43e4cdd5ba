// Package main is the entry point for the dungeon map editor.
package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/samdwyer/dungeonmap/internal/editor"
	"github.com/samdwyer/dungeonmap/internal/logger"
	"github.com/samdwyer/dungeonmap/internal/telemetry"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code. Everything deferred here runs before
// the process exits, so the log file and pending spans are flushed on the
// failure paths too.
func run(args []string) int {
	// Load .env file for local development.
	// Not fatal: env vars might be set directly.
	envErr := godotenv.Load()

	closer, err := logger.Init(logger.OptionsFromEnv())
	if err != nil {
		log.Printf("Failed to initialize logging: %v", err)
		return 1
	}
	defer closer.Close()

	if envErr != nil {
		logger.Log.WithError(envErr).Debug(".env file not loaded")
	}

	// Set up OTEL environment variables from our own
	setupOTelEnv()

	ctx := context.Background()

	if telemetry.Enabled() {
		shutdown, err := telemetry.Setup(ctx)
		if err != nil {
			// Continue without telemetry, the editor still works
			logger.Log.WithError(err).Warn("telemetry setup failed")
		} else {
			defer func() {
				if err := shutdown(ctx); err != nil {
					logger.Log.WithError(err).Warn("telemetry shutdown failed")
				}
			}()
		}
	}

	cfg := editor.LoadConfig(args)
	logger.Log.WithField("file", cfg.File).Info("starting editor")

	ed, err := editor.New(cfg)
	if err != nil {
		logger.Log.WithError(err).Error("terminal setup failed")
		log.Printf("Failed to initialize terminal: %v", err)
		return 1
	}

	// Run restores the terminal before returning, so the error is readable.
	if err := ed.Run(ctx); err != nil {
		logger.Log.WithError(err).Error("editor stopped")
		log.Printf("Error: %v", err)
		return 1
	}
	return 0
}

// setupOTelEnv maps DUNGEONMAP_OTLP_* onto the standard OTEL variables
// unless those are already set.
func setupOTelEnv() {
	mapping := map[string]string{
		"DUNGEONMAP_OTLP_ENDPOINT": "OTEL_EXPORTER_OTLP_ENDPOINT",
		"DUNGEONMAP_OTLP_HEADERS":  "OTEL_EXPORTER_OTLP_HEADERS",
	}
	for from, to := range mapping {
		v := os.Getenv(from)
		if v == "" || os.Getenv(to) != "" {
			continue
		}
		os.Setenv(to, v)
	}
}
