package livestock

import (
	"context"
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/samdwyer/farmplot/internal/entity"
)

// Scaler is a scene whose entities can be resized.
type Scaler interface {
	entity.SpatialQuery
	SetScale(h entity.Handle, scale mgl64.Vec3) error
}

// GrazerConfig configures sheep growth. Values follow the stock sheep model.
type GrazerConfig struct {
	PlantTag      string
	SheepTag      string
	Proximity     float64 // Feed plant distance that counts as grazing
	ScaleStep     float64
	ScaleInterval float64 // Seconds between steps
	InitialScale  float64
	TargetScale   float64
}

type grazeState struct {
	scale     float64
	sinceStep float64
	eating    bool
}

// Grazer grows each sheep in steps while a feed plant is near it.
type Grazer struct {
	cfg   GrazerConfig
	world Scaler
	sheep map[entity.Handle]*grazeState
}

// NewGrazer creates a grazer over world.
func NewGrazer(cfg GrazerConfig, world Scaler) (*Grazer, error) {
	switch {
	case cfg.PlantTag == "" || cfg.SheepTag == "":
		return nil, errors.New("grazer needs plant and sheep tags")
	case !(cfg.Proximity > 0):
		return nil, errors.New("grazer proximity must be positive")
	case cfg.ScaleStep <= 0 || cfg.ScaleInterval < 0:
		return nil, errors.New("grazer scale step must be positive and interval non-negative")
	case cfg.InitialScale <= 0 || cfg.TargetScale < cfg.InitialScale:
		return nil, errors.New("grazer target scale must not be below initial scale")
	}
	return &Grazer{cfg: cfg, world: world, sheep: make(map[entity.Handle]*grazeState)}, nil
}

// Tick updates every sheep's grazing state and scale.
func (g *Grazer) Tick(ctx context.Context, dt float64) {
	plants := g.world.FindByTag(g.cfg.PlantTag)
	seen := make(map[entity.Handle]bool, len(g.sheep))

	for _, h := range g.world.FindByTag(g.cfg.SheepTag) {
		seen[h] = true
		st, ok := g.sheep[h]
		if !ok {
			st = &grazeState{scale: g.cfg.InitialScale}
			g.sheep[h] = st
			g.applyScale(h, st.scale)
		}

		pos, err := g.world.Position(h)
		if err != nil {
			continue
		}
		st.eating = nearest(g.world, plants, pos) <= g.cfg.Proximity

		if st.eating && st.sinceStep >= g.cfg.ScaleInterval && st.scale < g.cfg.TargetScale {
			st.scale = math.Min(st.scale+g.cfg.ScaleStep, g.cfg.TargetScale)
			g.applyScale(h, st.scale)
			st.sinceStep = 0
		}
		st.sinceStep += dt
	}

	for h := range g.sheep {
		if !seen[h] {
			delete(g.sheep, h)
		}
	}
}

// Eating reports whether the sheep had a feed plant in range on the last tick.
func (g *Grazer) Eating(h entity.Handle) bool {
	st, ok := g.sheep[h]
	return ok && st.eating
}

// ScaleOf returns the sheep's current uniform scale.
func (g *Grazer) ScaleOf(h entity.Handle) (float64, bool) {
	st, ok := g.sheep[h]
	if !ok {
		return 0, false
	}
	return st.scale, true
}

func (g *Grazer) applyScale(h entity.Handle, s float64) {
	_ = g.world.SetScale(h, mgl64.Vec3{s, s, s})
}

// nearest returns the distance from pos to the closest of handles, or +Inf.
func nearest(q entity.SpatialQuery, handles []entity.Handle, pos mgl64.Vec3) float64 {
	best := math.Inf(1)
	for _, h := range handles {
		p, err := q.Position(h)
		if err != nil {
			continue
		}
		if d := entity.Distance(p, pos); d < best {
			best = d
		}
	}
	return best
}
