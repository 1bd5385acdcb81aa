package growth

import (
	"fmt"
	"math"
)

// Tracking selects how plants enter the registry.
type Tracking int

const (
	// TrackOnce tracks only the entities passed to Registry.Initialize.
	// Entities appearing later are never tracked.
	TrackOnce Tracking = iota
	// TrackEveryTick adds every entity carrying TargetTag at the start of
	// each tick.
	TrackEveryTick
)

// Config holds the tuning of a scheduler.
type Config struct {
	// GrowthDistance is the maximum plant-to-resource distance that starts a
	// transition.
	GrowthDistance float64
	// GrowthTime is the dwell time of each transition in seconds.
	GrowthTime float64
	// ResourceTag tags the entity plants must be near. The first match is used.
	ResourceTag string
	Table       Table

	Tracking  Tracking
	TargetTag string // Required with TrackEveryTick
}

// DefaultConfig returns the stock watering-can growth tuning.
func DefaultConfig() Config {
	return Config{
		GrowthDistance: 2,
		GrowthTime:     5,
		ResourceTag:    "WaterCan",
		Table:          DefaultTable(),
	}
}

// ConfigError reports an option that prevents a scheduler from running.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("growth config: %s %s", e.Field, e.Reason)
}

// Validate checks a growth configuration: both distance and time must be
// positive and the table must cover every stage before StageTomatoLarge.
func (c Config) Validate() error {
	return c.validate(false, int(StageTomatoLarge))
}

func (c Config) validate(instant bool, rows int) error {
	if !(c.GrowthDistance > 0) || math.IsInf(c.GrowthDistance, 0) {
		return &ConfigError{Field: "GrowthDistance", Reason: "must be a positive number"}
	}
	if math.IsNaN(c.GrowthTime) || math.IsInf(c.GrowthTime, 0) {
		return &ConfigError{Field: "GrowthTime", Reason: "must be a finite number"}
	}
	if instant {
		if c.GrowthTime != 0 {
			return &ConfigError{Field: "GrowthTime", Reason: "must be zero for a one-shot transform"}
		}
	} else if c.GrowthTime <= 0 {
		return &ConfigError{Field: "GrowthTime", Reason: "must be positive"}
	}
	if c.ResourceTag == "" {
		return &ConfigError{Field: "ResourceTag", Reason: "must not be empty"}
	}
	if c.Tracking == TrackEveryTick && c.TargetTag == "" {
		return &ConfigError{Field: "TargetTag", Reason: "must not be empty when tracking every tick"}
	}
	return c.Table.validate(rows)
}
