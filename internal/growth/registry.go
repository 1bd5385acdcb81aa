package growth

import (
	"iter"
	"slices"

	"github.com/samdwyer/farmplot/internal/entity"
)

// TrackedPlant is the registry's record of one growth-capable entity.
// Its fields change only through Registry methods.
type TrackedPlant struct {
	handle        entity.Handle
	stage         Stage
	transitioning bool
	elapsed       float64
	failures      int // consecutive failed replacements of the current transition
}

// Handle returns the plant's current entity.
func (p *TrackedPlant) Handle() entity.Handle { return p.handle }

// Stage returns the plant's current stage.
func (p *TrackedPlant) Stage() Stage { return p.stage }

// Transitioning reports whether a timed transition is in flight.
func (p *TrackedPlant) Transitioning() bool { return p.transitioning }

// Elapsed returns the time accumulated by the in-flight transition.
func (p *TrackedPlant) Elapsed() float64 { return p.elapsed }

// PlantStatus is a copy of a TrackedPlant for observers.
type PlantStatus struct {
	Handle        entity.Handle
	Stage         Stage
	Transitioning bool
	Elapsed       float64
}

// Liveness reports whether a handle still refers to a live entity.
type Liveness interface {
	Exists(h entity.Handle) bool
}

// Registry owns the set of tracked plants.
type Registry struct {
	alive       Liveness
	plants      []*TrackedPlant // insertion order
	tracked     map[entity.Handle]struct{}
	initialized bool
	onPurge     func(*TrackedPlant)
}

// NewRegistry creates an empty registry checking handles against alive.
func NewRegistry(alive Liveness) *Registry {
	return &Registry{
		alive:   alive,
		tracked: make(map[entity.Handle]struct{}),
	}
}

// Initialize tracks one Seed-stage plant per handle. Only the first call has
// any effect; it returns false on later calls.
func (r *Registry) Initialize(seeds []entity.Handle) bool {
	if r.initialized {
		return false
	}
	r.initialized = true
	for _, h := range seeds {
		r.track(h)
	}
	return true
}

// track adds h as a Seed-stage plant unless it is already tracked.
func (r *Registry) track(h entity.Handle) bool {
	if _, ok := r.tracked[h]; ok {
		return false
	}
	r.tracked[h] = struct{}{}
	r.plants = append(r.plants, &TrackedPlant{handle: h, stage: StageSeed})
	return true
}

// Live yields every plant whose entity still exists, newest first. Plants
// whose entity is gone are removed as the scan reaches them and are never
// yielded. Each call starts a fresh scan.
func (r *Registry) Live() iter.Seq[*TrackedPlant] {
	return func(yield func(*TrackedPlant) bool) {
		for i := len(r.plants) - 1; i >= 0; i-- {
			p := r.plants[i]
			if !r.alive.Exists(p.handle) {
				r.purge(i)
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

// Replace points plant at its replacement entity and records the new stage.
func (r *Registry) Replace(p *TrackedPlant, h entity.Handle, stage Stage) {
	delete(r.tracked, p.handle)
	r.tracked[h] = struct{}{}
	p.handle = h
	p.stage = stage
}

// Len returns the number of tracked plants, including any not yet found dead.
func (r *Registry) Len() int {
	return len(r.plants)
}

// Snapshot copies every tracked plant in insertion order without purging.
func (r *Registry) Snapshot() []PlantStatus {
	out := make([]PlantStatus, len(r.plants))
	for i, p := range r.plants {
		out[i] = PlantStatus{
			Handle:        p.handle,
			Stage:         p.stage,
			Transitioning: p.transitioning,
			Elapsed:       p.elapsed,
		}
	}
	return out
}

// StageCounts counts tracked plants per stage.
func (r *Registry) StageCounts() map[Stage]int {
	counts := make(map[Stage]int)
	for _, p := range r.plants {
		counts[p.stage]++
	}
	return counts
}

// begin starts a transition. It reports false if one is already in flight.
func (r *Registry) begin(p *TrackedPlant) bool {
	if p.transitioning {
		return false
	}
	p.transitioning = true
	p.elapsed = 0
	p.failures = 0
	return true
}

func (r *Registry) advance(p *TrackedPlant, dt float64) float64 {
	p.elapsed += dt
	return p.elapsed
}

func (r *Registry) fail(p *TrackedPlant) int {
	p.failures++
	return p.failures
}

func (r *Registry) finish(p *TrackedPlant) {
	p.transitioning = false
	p.elapsed = 0
	p.failures = 0
}

func (r *Registry) purge(i int) {
	p := r.plants[i]
	delete(r.tracked, p.handle)
	r.plants = slices.Delete(r.plants, i, i+1)
	if r.onPurge != nil {
		r.onPurge(p)
	}
}
