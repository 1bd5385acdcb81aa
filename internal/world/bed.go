package world

// Bed is a rectangular planting bed in cell coordinates.
type Bed struct {
	X, Y          int // Top-left cell
	Width, Height int // Size in cells
}

// Center returns the center cell of the bed.
func (b Bed) Center() (int, int) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// Contains returns true if the given cell is inside the bed.
func (b Bed) Contains(x, y int) bool {
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

// Intersects returns true if this bed overlaps with another bed.
func (b Bed) Intersects(other Bed) bool {
	return b.X < other.X+other.Width &&
		b.X+b.Width > other.X &&
		b.Y < other.Y+other.Height &&
		b.Y+b.Height > other.Y
}
