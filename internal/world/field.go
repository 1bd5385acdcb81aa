package world

import (
	"context"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/farmplot/internal/gamedata"
	"github.com/samdwyer/farmplot/internal/telemetry"
)

const (
	// Terminal cells are roughly twice as tall as wide, so X is sampled at
	// twice the resolution of Z to keep the plot's proportions.
	CellWidth = 0.5 // Metres along X per cell
	CellDepth = 1.0 // Metres along Z per cell

	seedPrefab = "seed"
)

// Field is the plot's terrain grid. Cell (0,0) covers the world origin and row
// numbers grow with Z.
type Field struct {
	Width  int // Columns
	Height int // Rows
	Tiles  [][]Tile
	Beds   []Bed
	layout gamedata.LayoutDef
}

// NewField creates a field sized to layout, filled with grass.
func NewField(layout gamedata.LayoutDef) *Field {
	width := int(math.Ceil(layout.Width / CellWidth))
	height := int(math.Ceil(layout.Depth / CellDepth))

	tiles := make([][]Tile, height)
	for y := range tiles {
		tiles[y] = make([]Tile, width)
		for x := range tiles[y] {
			tiles[y][x] = TileGrass
		}
	}

	return &Field{
		Width:  width,
		Height: height,
		Tiles:  tiles,
		Beds:   make([]Bed, 0, len(layout.Beds)),
		layout: layout,
	}
}

// Generate lays the fence around the edge, the layout's beds, and a soil cell
// under every seed.
func (f *Field) Generate(ctx context.Context) {
	tracer := telemetry.Tracer("world")
	_, span := tracer.Start(ctx, "field.generate")
	defer span.End()

	for _, def := range f.layout.Beds {
		x0, y0 := f.cellAt(def.X, def.Z)
		x1, y1 := f.cellAt(def.X+def.Width, def.Z+def.Depth)
		bed := Bed{X: x0, Y: y0, Width: max(x1-x0, 1), Height: max(y1-y0, 1)}
		f.Beds = append(f.Beds, bed)
		for y := bed.Y; y < bed.Y+bed.Height; y++ {
			for x := bed.X; x < bed.X+bed.Width; x++ {
				f.setTile(x, y, TileSoil)
			}
		}
	}

	seeds := 0
	for _, p := range f.layout.Entities {
		if p.Prefab != seedPrefab {
			continue
		}
		x, y := f.cellAt(p.Position[0], p.Position[2])
		f.setTile(x, y, TileSoil)
		seeds++
	}

	for x := 0; x < f.Width; x++ {
		f.setTile(x, 0, TileFence)
		f.setTile(x, f.Height-1, TileFence)
	}
	for y := 0; y < f.Height; y++ {
		f.setTile(0, y, TileFence)
		f.setTile(f.Width-1, y, TileFence)
	}

	span.SetAttributes(
		attribute.Int("field.width", f.Width),
		attribute.Int("field.height", f.Height),
		attribute.Int("field.bed_count", len(f.Beds)),
		attribute.Int("field.seed_count", seeds),
	)
}

// IsPassable returns true if the given cell can be walked on.
func (f *Field) IsPassable(x, y int) bool {
	if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return false
	}
	return f.Tiles[y][x].IsPassable()
}

// GetTile returns the tile at the given cell.
func (f *Field) GetTile(x, y int) Tile {
	if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return TileFence
	}
	return f.Tiles[y][x]
}

// CellAt returns the cell containing a world position.
func (f *Field) CellAt(pos mgl64.Vec3) (int, int) {
	return f.cellAt(pos.X(), pos.Z())
}

// WorldPos returns the world position at the center of a cell, on the ground.
func (f *Field) WorldPos(x, y int) mgl64.Vec3 {
	return mgl64.Vec3{(float64(x) + 0.5) * CellWidth, 0, (float64(y) + 0.5) * CellDepth}
}

// WalkableAt reports whether a world position lies on passable ground.
func (f *Field) WalkableAt(pos mgl64.Vec3) bool {
	x, y := f.CellAt(pos)
	return f.IsPassable(x, y)
}

// BedIndexAt returns the index of the bed containing the cell, or -1 if none.
func (f *Field) BedIndexAt(x, y int) int {
	for i, bed := range f.Beds {
		if bed.Contains(x, y) {
			return i
		}
	}
	return -1
}

func (f *Field) cellAt(x, z float64) (int, int) {
	return int(math.Floor(x / CellWidth)), int(math.Floor(z / CellDepth))
}

func (f *Field) setTile(x, y int, t Tile) {
	if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return
	}
	f.Tiles[y][x] = t
}
