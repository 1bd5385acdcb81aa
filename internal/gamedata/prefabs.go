package gamedata

import "github.com/gdamore/tcell/v2"

// PrefabDef defines a spawnable entity kind loaded from JSON.
type PrefabDef struct {
	ID           string  `json:"id"`                     // Unique identifier (e.g., "plant_small")
	Name         string  `json:"name"`                   // Display name
	Tag          string  `json:"tag"`                    // Scene tag given to every instance
	Glyph        string  `json:"glyph"`                  // Single character for rendering
	Color        string  `json:"color"`                  // Hex color code or tcell color name
	Scale        float64 `json:"scale"`                  // Uniform local scale at spawn
	Interactable bool    `json:"interactable,omitempty"` // Grab/physics setup applied after spawn
}

// GlyphRune returns the glyph as a rune for rendering.
func (p *PrefabDef) GlyphRune() rune {
	for _, r := range p.Glyph {
		return r
	}
	return '?'
}

// TCellColor returns the color as a tcell.Color.
func (p *PrefabDef) TCellColor() tcell.Color {
	color, err := ParseHexColor(p.Color)
	if err != nil {
		return tcell.ColorWhite
	}
	return color
}

// PrefabsFile represents the structure of prefabs.json.
type PrefabsFile struct {
	Prefabs []PrefabDef `json:"prefabs"`
}

// LoadPrefabs loads prefab definitions from the embedded prefabs.json file.
func LoadPrefabs() ([]PrefabDef, error) {
	file, err := Load[PrefabsFile]("prefabs.json")
	if err != nil {
		return nil, err
	}
	return file.Prefabs, nil
}
