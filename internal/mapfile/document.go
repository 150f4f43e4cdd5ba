// Package mapfile reads and writes dungeon map save files.
package mapfile

import (
	"encoding/json"
	"fmt"

	"github.com/samdwyer/dungeonmap/internal/world"
)

// TileRecord is the serialized form of a tile.
type TileRecord struct {
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Up      bool   `json:"up"`
	Left    bool   `json:"left"`
	Down    bool   `json:"down"`
	Right   bool   `json:"right"`
	Label   string `json:"label,omitempty"`
	Comment string `json:"comment,omitempty"`
}

// Document is a snapshot of an editing session: every tile plus the view scalars.
type Document struct {
	Tiles     []TileRecord `json:"tiles"`
	ScrollX   int          `json:"scrollX"`
	ScrollY   int          `json:"scrollY"`
	SelectedX int          `json:"selectedX"`
	SelectedY int          `json:"selectedY"`
}

// Snapshot builds a document from a grid and view state. Tiles keep grid order.
func Snapshot(grid *world.Grid, view world.ViewState) *Document {
	doc := &Document{
		Tiles:     make([]TileRecord, 0, grid.Len()),
		ScrollX:   view.ScrollX,
		ScrollY:   view.ScrollY,
		SelectedX: view.SelectedX,
		SelectedY: view.SelectedY,
	}
	for _, t := range grid.All() {
		doc.Tiles = append(doc.Tiles, TileRecord{
			X:       t.X,
			Y:       t.Y,
			Up:      t.Up,
			Left:    t.Left,
			Down:    t.Down,
			Right:   t.Right,
			Label:   t.Label,
			Comment: t.Comment,
		})
	}
	return doc
}

// Restore rebuilds the grid and view state described by the document.
// A later record at an already used coordinate replaces the earlier one.
func (d *Document) Restore() (*world.Grid, world.ViewState) {
	grid := world.NewGrid()
	for _, r := range d.Tiles {
		grid.Put(world.Tile{
			X:       r.X,
			Y:       r.Y,
			Up:      r.Up,
			Down:    r.Down,
			Left:    r.Left,
			Right:   r.Right,
			Label:   r.Label,
			Comment: r.Comment,
		})
	}
	view := world.ViewState{
		ScrollX:   d.ScrollX,
		ScrollY:   d.ScrollY,
		SelectedX: d.SelectedX,
		SelectedY: d.SelectedY,
	}
	return grid, view
}

// Encode serializes the document as indented JSON.
func Encode(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode map: %w", err)
	}
	return data, nil
}

// Decode parses a JSON document. Syntax and type errors wrap ErrMalformed.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return &doc, nil
}
