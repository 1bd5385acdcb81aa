// Package livestock implements the sheep behaviours: wandering the plot,
// growing while grazing near young plants and eating large plants.
package livestock

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/metric"

	"github.com/samdwyer/farmplot/internal/entity"
	"github.com/samdwyer/farmplot/internal/telemetry"
)

// Destroyer is a scene that can remove entities.
type Destroyer interface {
	entity.SpatialQuery
	Destroy(h entity.Handle) bool
}

// ForagerConfig configures plant consumption.
type ForagerConfig struct {
	PlantTag string
	SheepTag string
	Distance float64
}

// Forager destroys plants that a sheep comes close to.
type Forager struct {
	cfg   ForagerConfig
	world Destroyer
	eaten metric.Int64Counter
	total int
}

// NewForager creates a forager over world.
func NewForager(cfg ForagerConfig, world Destroyer) (*Forager, error) {
	if cfg.PlantTag == "" || cfg.SheepTag == "" {
		return nil, errors.New("forager needs plant and sheep tags")
	}
	if !(cfg.Distance > 0) {
		return nil, errors.New("forager distance must be positive")
	}
	eaten, err := telemetry.Meter("livestock").Int64Counter("livestock.plants.eaten",
		metric.WithDescription("Plants destroyed by grazing sheep"))
	if err != nil {
		return nil, err
	}
	return &Forager{cfg: cfg, world: world, eaten: eaten}, nil
}

// Tick destroys every plant within Distance of any sheep and returns how many
// were eaten.
func (f *Forager) Tick(ctx context.Context, dt float64) int {
	sheep := f.world.FindByTag(f.cfg.SheepTag)
	if len(sheep) == 0 {
		return 0
	}

	n := 0
	for _, plant := range f.world.FindByTag(f.cfg.PlantTag) {
		pos, err := f.world.Position(plant)
		if err != nil {
			continue
		}
		if nearest(f.world, sheep, pos) <= f.cfg.Distance && f.world.Destroy(plant) {
			n++
		}
	}
	if n > 0 {
		f.total += n
		f.eaten.Add(ctx, int64(n))
	}
	return n
}

// Eaten returns the number of plants eaten so far.
func (f *Forager) Eaten() int {
	return f.total
}
