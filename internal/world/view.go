package world

// TileSize is the width and height, in character cells, of one rendered tile.
const TileSize = 3

// Viewport is the number of whole tiles that fit in a character-cell area.
type Viewport struct {
	Columns int
	Rows    int
}

// ViewportFor returns the viewport for an area of width x height cells.
func ViewportFor(width, height int) Viewport {
	return Viewport{
		Columns: floorDiv(width, TileSize),
		Rows:    floorDiv(height, TileSize),
	}
}

// ViewState holds the scroll offset and the cursor position.
// The cursor may reference a coordinate with no tile.
type ViewState struct {
	ScrollX   int // Leftmost visible tile column
	ScrollY   int // Topmost visible tile row
	SelectedX int
	SelectedY int
}

// Move shifts the cursor by the given delta. Coordinates are unbounded.
func (v *ViewState) Move(dx, dy int) {
	v.SelectedX += dx
	v.SelectedY += dy
}

// Selected returns the cursor coordinate.
func (v ViewState) Selected() Point {
	return Point{X: v.SelectedX, Y: v.SelectedY}
}

// VisibleX reports whether tile column tx is inside the viewport.
func (v ViewState) VisibleX(tx int, vp Viewport) bool {
	return tx >= v.ScrollX && tx-v.ScrollX < vp.Columns
}

// VisibleY reports whether tile row ty is inside the viewport.
func (v ViewState) VisibleY(ty int, vp Viewport) bool {
	return ty >= v.ScrollY && ty-v.ScrollY < vp.Rows
}

// Visible reports whether the tile at (tx, ty) is inside the viewport.
func (v ViewState) Visible(tx, ty int, vp Viewport) bool {
	return v.VisibleX(tx, vp) && v.VisibleY(ty, vp)
}

// Follow adjusts the scroll offset so the cursor lies inside the viewport.
// Each axis is handled independently; applying it twice changes nothing.
func (v *ViewState) Follow(vp Viewport) {
	if v.SelectedX < v.ScrollX {
		v.ScrollX = v.SelectedX
	}
	if v.SelectedY < v.ScrollY {
		v.ScrollY = v.SelectedY
	}
	if !v.VisibleX(v.SelectedX, vp) {
		v.ScrollX = v.SelectedX - vp.Columns + 1
	}
	if !v.VisibleY(v.SelectedY, vp) {
		v.ScrollY = v.SelectedY - vp.Rows + 1
	}
}

// Origin returns the top-left cell offset of tile (tx, ty) relative to the viewport origin.
func (v ViewState) Origin(tx, ty int) (x, y int) {
	return TileSize * (tx - v.ScrollX), TileSize * (ty - v.ScrollY)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
