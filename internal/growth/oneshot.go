package growth

import "github.com/samdwyer/farmplot/internal/entity"

// StageDone is the terminal stage of a one-shot transform.
const StageDone = StageSmall

// OneShotConfig configures a transform that replaces each target entity once,
// with no timer, as soon as the actor comes within Radius. Targets are looked
// up by tag every tick, so entities spawned later are covered too.
type OneShotConfig struct {
	ActorTag  string
	TargetTag string
	Radius    float64
	Kind      string // Prefab spawned in place of each target
}

// NewOneShot creates a scheduler with zero dwell time and a single-row table.
func NewOneShot(cfg OneShotConfig, query entity.SpatialQuery, replacer entity.Replacer, opts ...Option) (*Scheduler, error) {
	c := Config{
		GrowthDistance: cfg.Radius,
		ResourceTag:    cfg.ActorTag,
		Table:          NewTable(Row{From: StageSeed, Kind: cfg.Kind, To: StageDone}),
		Tracking:       TrackEveryTick,
		TargetTag:      cfg.TargetTag,
	}
	if err := c.validate(true, 1); err != nil {
		return nil, err
	}
	return newScheduler("reveal", c, query, replacer, opts)
}
