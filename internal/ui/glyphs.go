package ui

import "github.com/samdwyer/dungeonmap/internal/world"

// Block is the 3x3 character rendering of one tile, indexed [row][column].
type Block [world.TileSize][world.TileSize]rune

// blankBlock is what an empty coordinate looks like.
var blankBlock = Block{
	{' ', ' ', ' '},
	{' ', ' ', ' '},
	{' ', ' ', ' '},
}

// corner picks the glyph where two edges of a tile meet.
// Both open draws the piece bridging the two open directions, both closed a sharp corner,
// and a single closed edge continues as a straight wall.
func corner(vertOpen, horizOpen bool, bothOpen, vertOnly, horizOnly, closed rune) rune {
	switch {
	case vertOpen && horizOpen:
		return bothOpen
	case vertOpen:
		return vertOnly
	case horizOpen:
		return horizOnly
	default:
		return closed
	}
}

// Glyphs renders a tile as a 3x3 block from its own edge flags and label.
// Neighboring tiles are never consulted. A nil tile renders blank.
func Glyphs(t *world.Tile) Block {
	b := blankBlock
	if t == nil {
		return b
	}

	b[0][0] = corner(t.Up, t.Left, BoxCornerBR, BoxV, BoxH, BoxCornerTL)
	b[0][2] = corner(t.Up, t.Right, BoxCornerBL, BoxV, BoxH, BoxCornerTR)
	b[2][0] = corner(t.Down, t.Left, BoxCornerTR, BoxV, BoxH, BoxCornerBL)
	b[2][2] = corner(t.Down, t.Right, BoxCornerTL, BoxV, BoxH, BoxCornerBR)

	if !t.Up {
		b[0][1] = BoxH
	}
	if !t.Down {
		b[2][1] = BoxH
	}
	if !t.Left {
		b[1][0] = BoxV
	}
	if !t.Right {
		b[1][2] = BoxV
	}
	if t.Label != "" {
		b[1][1] = t.LabelRune()
	}
	return b
}

// Rows returns the block as three strings, top to bottom.
func (b Block) Rows() [world.TileSize]string {
	var rows [world.TileSize]string
	for i := range b {
		rows[i] = string(b[i][:])
	}
	return rows
}
