package gamedata

// StageRowDef is one row of the growth transition table.
type StageRowDef struct {
	From   string `json:"from"`
	Prefab string `json:"prefab"`
	To     string `json:"to"`
}

// GrowthDef configures watering-driven growth.
type GrowthDef struct {
	Distance    float64       `json:"distance"`
	Time        float64       `json:"time"` // Seconds per stage
	ResourceTag string        `json:"resourceTag"`
	SeedTag     string        `json:"seedTag"`
	Stages      []StageRowDef `json:"stages"`
}

// RevealDef configures the harrow's one-shot tomato reveal.
type RevealDef struct {
	ActorTag  string  `json:"actorTag"`
	TargetTag string  `json:"targetTag"`
	Radius    float64 `json:"radius"`
	Prefab    string  `json:"prefab"`
}

// ForageDef configures sheep eating large plants.
type ForageDef struct {
	PlantTag string  `json:"plantTag"`
	SheepTag string  `json:"sheepTag"`
	Distance float64 `json:"distance"`
}

// GrazeDef configures sheep growing while near feed plants.
type GrazeDef struct {
	PlantTag      string  `json:"plantTag"`
	SheepTag      string  `json:"sheepTag"`
	Proximity     float64 `json:"proximity"`
	ScaleStep     float64 `json:"scaleStep"`
	ScaleInterval float64 `json:"scaleInterval"`
	InitialScale  float64 `json:"initialScale"`
	TargetScale   float64 `json:"targetScale"`
}

// WanderDef configures sheep movement.
type WanderDef struct {
	SheepTag     string  `json:"sheepTag"`
	MoveSpeed    float64 `json:"moveSpeed"`    // Metres per second
	TurnInterval float64 `json:"turnInterval"` // Seconds between heading changes

	DetectionRadius float64  `json:"detectionRadius"`
	ObstacleTags    []string `json:"obstacleTags"`
}

// SettingsDef holds the default tuning for every behaviour.
type SettingsDef struct {
	TickRate     int       `json:"tickRate"`
	ReplaceOrder string    `json:"replaceOrder"`
	Growth       GrowthDef `json:"growth"`
	Reveal       RevealDef `json:"reveal"`
	Forage       ForageDef `json:"forage"`
	Graze        GrazeDef  `json:"graze"`
	Wander       WanderDef `json:"wander"`
}

// LoadSettings loads default settings from the embedded settings.json file.
func LoadSettings() (SettingsDef, error) {
	return Load[SettingsDef]("settings.json")
}

// MustLoadSettings loads default settings, panicking on error.
func MustLoadSettings() SettingsDef {
	settings, err := LoadSettings()
	if err != nil {
		panic(err)
	}
	return settings
}
