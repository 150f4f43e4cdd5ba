// Package world provides the dungeon map model: tiles, the sparse grid and view state.
package world

// Direction names one of the four edges of a tile.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// String returns a human-readable direction name.
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// Delta returns the one-step offset in direction d. Y grows downward.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	}
	return 0, 0
}

// Point is a grid coordinate.
type Point struct {
	X, Y int
}

// Tile represents a single map tile.
// An edge flag of true means the passage toward that neighbor is open.
type Tile struct {
	X, Y    int
	Up      bool
	Down    bool
	Left    bool
	Right   bool
	Label   string // Zero or one display character
	Comment string
}

// NewTile creates a tile at the given position with every edge open.
func NewTile(x, y int) *Tile {
	return &Tile{
		X:     x,
		Y:     y,
		Up:    true,
		Down:  true,
		Left:  true,
		Right: true,
	}
}

// Pos returns the tile's grid coordinate.
func (t *Tile) Pos() Point {
	return Point{X: t.X, Y: t.Y}
}

// Open reports whether the edge in the given direction is open.
func (t *Tile) Open(d Direction) bool {
	switch d {
	case Up:
		return t.Up
	case Down:
		return t.Down
	case Left:
		return t.Left
	case Right:
		return t.Right
	}
	return false
}

// Toggle flips the edge flag in the given direction.
func (t *Tile) Toggle(d Direction) {
	switch d {
	case Up:
		t.Up = !t.Up
	case Down:
		t.Down = !t.Down
	case Left:
		t.Left = !t.Left
	case Right:
		t.Right = !t.Right
	}
}

// LabelRune returns the label as a rune for rendering, or ' ' when there is none.
func (t *Tile) LabelRune() rune {
	for _, r := range t.Label {
		return r
	}
	return ' '
}
