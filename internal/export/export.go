// Package export renders a whole map, independent of the editor viewport.
package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/samdwyer/dungeonmap/internal/telemetry"
	"github.com/samdwyer/dungeonmap/internal/ui"
	"github.com/samdwyer/dungeonmap/internal/world"
)

// MaxExtent is the largest number of tiles an export spans along either axis.
const MaxExtent = 256

// maxImageSide bounds the pixel width and height of a PNG export.
const maxImageSide = 16384

// ErrTooLarge is returned when the stored tiles span more than MaxExtent
// tiles, or the image would exceed the pixel limit.
var ErrTooLarge = errors.New("map too large to export")

// Extent returns the origin and the size in tiles of the grid's bounding box.
// An empty grid has zero size.
func Extent(grid *world.Grid) (origin world.Point, cols, rows int, err error) {
	min, max, ok := grid.Bounds()
	if !ok {
		return world.Point{}, 0, 0, nil
	}
	w, h := span(min.X, max.X), span(min.Y, max.Y)
	if w > MaxExtent || h > MaxExtent {
		return world.Point{}, 0, 0, fmt.Errorf("%w (%d x %d tiles)", ErrTooLarge, w, h)
	}
	return min, int(w), int(h), nil
}

// span counts the tiles from lo to hi inclusive without overflowing. The
// count saturates at math.MaxUint64.
func span(lo, hi int) uint64 {
	n := uint64(hi) - uint64(lo) + 1
	if n == 0 {
		return math.MaxUint64
	}
	return n
}

// Text renders every tile of the grid with the editor's box-drawing glyphs.
// The output covers the bounding box of the stored tiles; an empty grid yields "".
func Text(grid *world.Grid) (string, error) {
	min, cols, rows, err := Extent(grid)
	if err != nil || cols == 0 {
		return "", err
	}

	buf := ui.NewBuffer(cols*world.TileSize, rows*world.TileSize)
	for _, t := range grid.All() {
		block := ui.Glyphs(t)
		ox := (t.X - min.X) * world.TileSize
		oy := (t.Y - min.Y) * world.TileSize
		for r := range block {
			for c, ch := range block[r] {
				buf.SetContent(ox+c, oy+r, ch, ui.DefaultTheme().Wall)
			}
		}
	}
	return buf.String() + "\n", nil
}

// PNGOptions configures PNG rendering.
type PNGOptions struct {
	TileSize  int // Pixels per tile side
	Padding   int // Pixels around the map
	WallWidth int
	FontSize  float64
}

// DefaultPNGOptions returns sensible defaults for PNG rendering.
func DefaultPNGOptions() PNGOptions {
	return PNGOptions{
		TileSize:  24,
		Padding:   12,
		WallWidth: 2,
		FontSize:  14,
	}
}

var (
	colorBackground = color.RGBA{255, 255, 255, 255}
	colorFloor      = color.RGBA{236, 236, 236, 255}
	colorWall       = color.RGBA{33, 33, 33, 255}
	colorLabel      = color.RGBA{21, 101, 192, 255}
)

// PNG draws the grid as an image: stored tiles get a floor, closed edges a wall line
// and labels are centered in their tile.
func PNG(ctx context.Context, w io.Writer, grid *world.Grid, opts PNGOptions) error {
	_, span := telemetry.Tracer("export").Start(ctx, "export.png")
	defer span.End()
	span.SetAttributes(attribute.Int("export.tiles", grid.Len()))

	img, err := Image(grid, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "image too large")
		return err
	}
	if err := png.Encode(w, img); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

// imageSize returns the pixel size for cols x rows tiles, or ErrTooLarge when
// either side would exceed the limit.
func (o PNGOptions) imageSize(cols, rows int) (w, h int, err error) {
	if o.TileSize <= 0 || o.Padding < 0 {
		return 0, 0, fmt.Errorf("invalid PNG options: tile size %d, padding %d", o.TileSize, o.Padding)
	}
	if o.TileSize > maxImageSide || o.Padding > maxImageSide {
		return 0, 0, fmt.Errorf("%w (tile size %d, padding %d)", ErrTooLarge, o.TileSize, o.Padding)
	}
	// cols, rows <= MaxExtent, so these cannot overflow
	w = cols*o.TileSize + 2*o.Padding
	h = rows*o.TileSize + 2*o.Padding
	if w > maxImageSide || h > maxImageSide {
		return 0, 0, fmt.Errorf("%w (%d x %d pixels)", ErrTooLarge, w, h)
	}
	return w, h, nil
}

// Image renders the grid into an RGBA image.
func Image(grid *world.Grid, opts PNGOptions) (*image.RGBA, error) {
	min, cols, rows, err := Extent(grid)
	if err != nil {
		return nil, err
	}
	w, h, err := opts.imageSize(cols, rows)
	if err != nil {
		return nil, err
	}

	size := opts.TileSize
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)
	if cols == 0 {
		return img, nil
	}

	face := newFace(opts.FontSize)
	for _, t := range grid.All() {
		x0 := opts.Padding + (t.X-min.X)*size
		y0 := opts.Padding + (t.Y-min.Y)*size
		cell := image.Rect(x0, y0, x0+size, y0+size)
		fill(img, cell, colorFloor)

		ww := opts.WallWidth
		if !t.Up {
			fill(img, image.Rect(x0, y0, x0+size, y0+ww), colorWall)
		}
		if !t.Down {
			fill(img, image.Rect(x0, y0+size-ww, x0+size, y0+size), colorWall)
		}
		if !t.Left {
			fill(img, image.Rect(x0, y0, x0+ww, y0+size), colorWall)
		}
		if !t.Right {
			fill(img, image.Rect(x0+size-ww, y0, x0+size, y0+size), colorWall)
		}
		if t.Label != "" && face != nil {
			drawTextCentered(img, face, x0+size/2, y0+size/2, t.Label, colorLabel)
		}
	}
	return img, nil
}

func fill(img draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// newFace parses the embedded Go Regular font. It returns nil if the font
// cannot be loaded, in which case labels are skipped.
func newFace(size float64) font.Face {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil
	}
	return face
}

// drawTextCentered draws text with its visual center at (x, y).
func drawTextCentered(img draw.Image, face font.Face, x, y int, text string, c color.Color) {
	width := font.MeasureString(face, text).Ceil()
	ascent := face.Metrics().Ascent.Ceil()

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(x - width/2),
			Y: fixed.I(y + ascent*7/20),
		},
	}
	d.DrawString(text)
}
