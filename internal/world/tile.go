// Package world provides the farm plot terrain: a grid of ground tiles with
// fences around the edge and soil beds where crops are planted.
package world

// Tile represents a single ground cell.
type Tile rune

const (
	// TileGrass is open pasture.
	TileGrass Tile = '"'
	// TileSoil is tilled ground in a planting bed.
	TileSoil Tile = '_'
	// TileFence is an impassable fence segment.
	TileFence Tile = '#'
)

// IsPassable returns true if the tile can be walked on.
func (t Tile) IsPassable() bool {
	return t == TileGrass || t == TileSoil
}

// Rune returns the tile's display character.
func (t Tile) Rune() rune {
	return rune(t)
}
