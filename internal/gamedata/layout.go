package gamedata

// BedDef is a rectangle of tilled soil, in metres from the plot origin.
type BedDef struct {
	X     float64 `json:"x"`
	Z     float64 `json:"z"`
	Width float64 `json:"width"`
	Depth float64 `json:"depth"`
}

// PlacementDef places one prefab instance in the scene at startup.
type PlacementDef struct {
	Prefab   string     `json:"prefab"`
	Position [3]float64 `json:"position"`      // x, y, z in metres; y is up
	Yaw      float64    `json:"yaw,omitempty"` // Degrees around the Y axis
}

// LayoutDef describes the initial scene.
type LayoutDef struct {
	Name     string         `json:"name"`
	Width    float64        `json:"width"` // Plot extent along X
	Depth    float64        `json:"depth"` // Plot extent along Z
	Beds     []BedDef       `json:"beds"`
	Entities []PlacementDef `json:"entities"`
}

// LoadLayout loads the scene layout from the embedded layout.json file.
func LoadLayout() (LayoutDef, error) {
	return Load[LayoutDef]("layout.json")
}
