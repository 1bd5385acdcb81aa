// Package growth drives plants through their growth stages while a watering
// resource is nearby, replacing each plant's entity with its next-stage form
// once the stage's dwell time has elapsed.
package growth

import "fmt"

// Stage is a plant's position in the growth sequence.
type Stage int

const (
	StageSeed Stage = iota
	StageSmall
	StageMedium
	StageTomatoMedium
	// StageTomatoLarge is terminal for the default table.
	StageTomatoLarge
)

var stageNames = [...]string{
	StageSeed:         "seed",
	StageSmall:        "small",
	StageMedium:       "medium",
	StageTomatoMedium: "tomato_medium",
	StageTomatoLarge:  "tomato_large",
}

// String returns the stage name used in data files.
func (s Stage) String() string {
	if s >= 0 && int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// ParseStage converts a data-file stage name to a Stage.
func ParseStage(name string) (Stage, error) {
	for i, n := range stageNames {
		if n == name {
			return Stage(i), nil
		}
	}
	return 0, fmt.Errorf("unknown growth stage %q", name)
}
