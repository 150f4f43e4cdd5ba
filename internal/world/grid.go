package world

// ClearResult reports which action a Clear call performed.
type ClearResult int

const (
	// ClearedNothing means no tile existed at the coordinate.
	ClearedNothing ClearResult = iota
	// ClearedLabel means the tile's label was emptied.
	ClearedLabel
	// ClearedComment means the tile's comment was emptied.
	ClearedComment
	// Removed means the tile itself was deleted.
	Removed
)

// String returns a human-readable result name.
func (r ClearResult) String() string {
	switch r {
	case ClearedNothing:
		return "nothing"
	case ClearedLabel:
		return "label"
	case ClearedComment:
		return "comment"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Grid is a sparse set of tiles keyed by coordinate.
// At most one tile exists per coordinate; enumeration follows insertion order.
type Grid struct {
	tiles map[Point]*Tile
	order []*Tile
}

// NewGrid creates an empty grid.
func NewGrid() *Grid {
	return &Grid{
		tiles: make(map[Point]*Tile),
		order: make([]*Tile, 0),
	}
}

// Get returns the tile at the given position, or nil if none exists.
func (g *Grid) Get(x, y int) *Tile {
	return g.tiles[Point{X: x, Y: y}]
}

// GetOrCreate returns the tile at the given position, creating an all-open tile if needed.
func (g *Grid) GetOrCreate(x, y int) *Tile {
	if t := g.Get(x, y); t != nil {
		return t
	}
	t := NewTile(x, y)
	g.tiles[t.Pos()] = t
	g.order = append(g.order, t)
	return t
}

// Put stores a copy of t, replacing any tile already at its coordinate.
func (g *Grid) Put(t Tile) *Tile {
	stored := &t
	if old, ok := g.tiles[t.Pos()]; ok {
		for i := range g.order {
			if g.order[i] == old {
				g.order[i] = stored
				break
			}
		}
	} else {
		g.order = append(g.order, stored)
	}
	g.tiles[t.Pos()] = stored
	return stored
}

// Remove deletes the tile at the given position. It is a no-op if none exists.
func (g *Grid) Remove(x, y int) {
	p := Point{X: x, Y: y}
	t, ok := g.tiles[p]
	if !ok {
		return
	}
	delete(g.tiles, p)
	for i := range g.order {
		if g.order[i] == t {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

// Clear applies the delete priority at the given position: the label goes first,
// then the comment, and finally the tile itself. Exactly one action fires per call.
func (g *Grid) Clear(x, y int) ClearResult {
	t := g.Get(x, y)
	switch {
	case t == nil:
		return ClearedNothing
	case t.Label != "":
		t.Label = ""
		return ClearedLabel
	case t.Comment != "":
		t.Comment = ""
		return ClearedComment
	default:
		g.Remove(x, y)
		return Removed
	}
}

// All returns every stored tile in insertion order.
func (g *Grid) All() []*Tile {
	out := make([]*Tile, len(g.order))
	copy(out, g.order)
	return out
}

// Len returns the number of stored tiles.
func (g *Grid) Len() int {
	return len(g.order)
}

// Bounds returns the smallest and largest coordinates holding a tile.
// ok is false for an empty grid.
func (g *Grid) Bounds() (min, max Point, ok bool) {
	for i, t := range g.order {
		if i == 0 {
			min, max = t.Pos(), t.Pos()
			continue
		}
		if t.X < min.X {
			min.X = t.X
		}
		if t.Y < min.Y {
			min.Y = t.Y
		}
		if t.X > max.X {
			max.X = t.X
		}
		if t.Y > max.Y {
			max.Y = t.Y
		}
	}
	return min, max, len(g.order) > 0
}
