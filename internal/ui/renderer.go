package ui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/farmplot/internal/gamedata"
	"github.com/samdwyer/farmplot/internal/scene"
	"github.com/samdwyer/farmplot/internal/world"
)

// View is everything the renderer draws in one frame.
type View struct {
	Field    *world.Field
	Entities []scene.Entity
	Status   []string // Lines drawn under the field
}

// Renderer handles drawing the farm to the screen.
type Renderer struct {
	screen  *Screen
	prefabs *gamedata.PrefabRegistry
}

// NewRenderer creates a new renderer for the given screen.
func NewRenderer(screen *Screen, prefabs *gamedata.PrefabRegistry) *Renderer {
	return &Renderer{screen: screen, prefabs: prefabs}
}

// Render draws the field, the entities on it and the status lines.
// Entities later in the list are drawn over earlier ones sharing a cell.
func (r *Renderer) Render(v View) {
	r.screen.Clear()

	for y := 0; y < v.Field.Height; y++ {
		for x := 0; x < v.Field.Width; x++ {
			tile := v.Field.GetTile(x, y)
			r.screen.SetContent(x, y, tile.Rune(), r.getTileStyle(tile))
		}
	}

	for _, e := range v.Entities {
		x, y := v.Field.CellAt(e.Pose.Position)
		if x < 0 || x >= v.Field.Width || y < 0 || y >= v.Field.Height {
			continue
		}
		glyph, style := r.entityLook(e)
		r.screen.SetContent(x, y, glyph, style)
	}

	for i, line := range v.Status {
		r.RenderMessage(line, v.Field.Height+1+i)
	}

	r.screen.Show()
}

// entityLook returns the glyph and style for an entity from its prefab.
func (r *Renderer) entityLook(e scene.Entity) (rune, tcell.Style) {
	def := r.prefabs.GetByID(e.Kind)
	if def == nil {
		return '?', tcell.StyleDefault.Foreground(tcell.ColorFuchsia)
	}
	style := tcell.StyleDefault.Foreground(def.TCellColor()).Bold(true)
	if e.Body.Interactable() {
		style = style.Underline(true)
	}
	return def.GlyphRune(), style
}

// getTileStyle returns the appropriate style for a tile type.
func (r *Renderer) getTileStyle(tile world.Tile) tcell.Style {
	switch tile {
	case world.TileFence:
		return tcell.StyleDefault.Foreground(tcell.ColorSaddleBrown)
	case world.TileSoil:
		return tcell.StyleDefault.Foreground(tcell.ColorSienna)
	case world.TileGrass:
		return tcell.StyleDefault.Foreground(tcell.ColorDarkGreen)
	default:
		return tcell.StyleDefault
	}
}

// RenderMessage displays a message at the given row.
func (r *Renderer) RenderMessage(msg string, y int) {
	r.screen.DrawText(0, y, msg, tcell.StyleDefault.Foreground(tcell.ColorWhite))
}
