package game

import (
	"fmt"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/samdwyer/farmplot/internal/gamedata"
	"github.com/samdwyer/farmplot/internal/growth"
	"github.com/samdwyer/farmplot/internal/livestock"
	"github.com/samdwyer/farmplot/internal/scene"
)

// Environment variables read by ApplyEnv.
const (
	EnvGrowthDistance = "FARMPLOT_GROWTH_DISTANCE"
	EnvGrowthTime     = "FARMPLOT_GROWTH_TIME"
	EnvTickRate       = "FARMPLOT_TICK_RATE"
	EnvReplaceOrder   = "FARMPLOT_REPLACE_ORDER"
	EnvSeed           = "FARMPLOT_SEED"
	EnvLogFile        = "FARMPLOT_LOG_FILE"
)

// DefaultLogFile receives the log while the terminal UI owns the screen.
const DefaultLogFile = "farmplot.log"

// Config holds game configuration options.
type Config struct {
	// Seed for random number generation. Used for reproducible sheep movement.
	// A seed of 0 means a random seed will be generated.
	Seed int64

	// TickRate is the number of fixed simulation steps per second.
	TickRate     int
	ReplaceOrder scene.ReplaceOrder
	LogFile      string

	// SeedTag marks the entities the growth registry starts with.
	SeedTag string

	Growth growth.Config
	Reveal growth.OneShotConfig
	Forage livestock.ForagerConfig
	Graze  livestock.GrazerConfig
	Wander livestock.WandererConfig
}

// DefaultConfig builds the configuration from the embedded settings.
func DefaultConfig() (Config, error) {
	settings, err := gamedata.LoadSettings()
	if err != nil {
		return Config{}, err
	}
	return ConfigFromSettings(settings)
}

// ConfigFromSettings converts settings data into a Config.
func ConfigFromSettings(s gamedata.SettingsDef) (Config, error) {
	order, err := scene.ParseReplaceOrder(s.ReplaceOrder)
	if err != nil {
		return Config{}, err
	}

	rows := make([]growth.Row, 0, len(s.Growth.Stages))
	for _, def := range s.Growth.Stages {
		from, err := growth.ParseStage(def.From)
		if err != nil {
			return Config{}, fmt.Errorf("stage row %q: %w", def.Prefab, err)
		}
		to, err := growth.ParseStage(def.To)
		if err != nil {
			return Config{}, fmt.Errorf("stage row %q: %w", def.Prefab, err)
		}
		rows = append(rows, growth.Row{From: from, Kind: def.Prefab, To: to})
	}

	return Config{
		TickRate:     s.TickRate,
		ReplaceOrder: order,
		LogFile:      DefaultLogFile,
		SeedTag:      s.Growth.SeedTag,
		Growth: growth.Config{
			GrowthDistance: s.Growth.Distance,
			GrowthTime:     s.Growth.Time,
			ResourceTag:    s.Growth.ResourceTag,
			Table:          growth.NewTable(rows...),
		},
		Reveal: growth.OneShotConfig{
			ActorTag:  s.Reveal.ActorTag,
			TargetTag: s.Reveal.TargetTag,
			Radius:    s.Reveal.Radius,
			Kind:      s.Reveal.Prefab,
		},
		Forage: livestock.ForagerConfig{
			PlantTag: s.Forage.PlantTag,
			SheepTag: s.Forage.SheepTag,
			Distance: s.Forage.Distance,
		},
		Graze: livestock.GrazerConfig{
			PlantTag:      s.Graze.PlantTag,
			SheepTag:      s.Graze.SheepTag,
			Proximity:     s.Graze.Proximity,
			ScaleStep:     s.Graze.ScaleStep,
			ScaleInterval: s.Graze.ScaleInterval,
			InitialScale:  s.Graze.InitialScale,
			TargetScale:   s.Graze.TargetScale,
		},
		Wander: livestock.WandererConfig{
			SheepTag:        s.Wander.SheepTag,
			MoveSpeed:       s.Wander.MoveSpeed,
			TurnInterval:    s.Wander.TurnInterval,
			DetectionRadius: s.Wander.DetectionRadius,
			ObstacleTags:    s.Wander.ObstacleTags,
		},
	}, nil
}

// LoadConfig returns the default configuration with overrides from the
// environment applied. lookup is usually os.LookupEnv.
func LoadConfig(lookup func(string) (string, bool)) (Config, error) {
	cfg, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile is LoadConfig reading overrides from a dotenv file instead of
// the process environment.
func LoadConfigFile(path string) (Config, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return LoadConfig(MapLookup(env))
}

// MapLookup adapts a map to the lookup signature used by LoadConfig.
func MapLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

// ApplyEnv overrides fields from environment variables. Empty values are
// ignored; malformed ones are errors.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		return v, ok && v != ""
	}

	if v, ok := get(EnvGrowthDistance); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvGrowthDistance, err)
		}
		c.Growth.GrowthDistance = f
	}
	if v, ok := get(EnvGrowthTime); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvGrowthTime, err)
		}
		c.Growth.GrowthTime = f
	}
	if v, ok := get(EnvTickRate); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTickRate, err)
		}
		c.TickRate = n
	}
	if v, ok := get(EnvReplaceOrder); ok {
		order, err := scene.ParseReplaceOrder(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvReplaceOrder, err)
		}
		c.ReplaceOrder = order
	}
	if v, ok := get(EnvSeed); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
		c.Seed = n
	}
	if v, ok := get(EnvLogFile); ok {
		c.LogFile = v
	}
	return nil
}

// Validate checks the settings the game itself owns. Behaviour settings are
// validated by their constructors.
func (c Config) Validate(prefabs *gamedata.PrefabRegistry) error {
	if c.TickRate <= 0 {
		return fmt.Errorf("tick rate must be positive, got %d", c.TickRate)
	}
	if c.SeedTag == "" {
		return &growth.ConfigError{Field: "SeedTag", Reason: "must not be empty"}
	}
	for _, kind := range c.Growth.Table.Kinds() {
		if prefabs.GetByID(kind) == nil {
			return &growth.ConfigError{Field: "Table", Reason: fmt.Sprintf("uses unknown prefab %q", kind)}
		}
	}
	if prefabs.GetByID(c.Reveal.Kind) == nil {
		return &growth.ConfigError{Field: "Reveal.Kind", Reason: fmt.Sprintf("uses unknown prefab %q", c.Reveal.Kind)}
	}
	return nil
}

// StepSeconds returns the duration of one fixed step.
func (c Config) StepSeconds() float64 {
	return 1 / float64(c.TickRate)
}
