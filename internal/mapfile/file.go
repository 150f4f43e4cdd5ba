package mapfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samdwyer/dungeonmap/internal/telemetry"
)

var (
	// ErrNotFound means the map file does not exist. Callers start a new map.
	ErrNotFound = errors.New("map file not found")
	// ErrMalformed means the file exists but is not a valid map document.
	ErrMalformed = errors.New("invalid JSON data")
)

// Load reads and parses the map file at path.
// A missing file yields an error wrapping ErrNotFound; unparseable content wraps ErrMalformed.
// Any other error is an unexpected filesystem failure.
func Load(ctx context.Context, path string) (*Document, error) {
	_, span := telemetry.Tracer("mapfile").Start(ctx, "mapfile.load")
	defer span.End()
	span.SetAttributes(attribute.String("mapfile.path", path))

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			span.SetAttributes(attribute.Bool("mapfile.missing", true))
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	doc, err := Decode(data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed document")
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("mapfile.bytes", len(data)),
		attribute.Int("mapfile.tiles", len(doc.Tiles)),
	)
	return doc, nil
}

// Save writes the document to path as indented JSON.
func Save(ctx context.Context, path string, doc *Document) error {
	_, span := telemetry.Tracer("mapfile").Start(ctx, "mapfile.save")
	defer span.End()
	span.SetAttributes(
		attribute.String("mapfile.path", path),
		attribute.Int("mapfile.tiles", len(doc.Tiles)),
	)

	data, err := Encode(doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "encode failed")
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write failed")
		return err
	}
	return nil
}
