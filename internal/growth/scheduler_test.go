package growth

import (
	"bytes"
	"context"
	"log"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/samdwyer/farmplot/internal/entity"
)

func newTestScheduler(t *testing.T, w *fakeWorld, opts ...Option) *Scheduler {
	t.Helper()
	cfg := DefaultConfig()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	s, err := New(cfg, w, w, opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	s.Registry().Initialize(w.FindByTag("Seed"))
	return s
}

func plantFor(t *testing.T, s *Scheduler, index int) PlantStatus {
	t.Helper()
	snap := s.Registry().Snapshot()
	if index >= len(snap) {
		t.Fatalf("registry has %d plants, want index %d", len(snap), index)
	}
	return snap[index]
}

func TestSeedGrowsAfterDwellTime(t *testing.T) {
	ctx := context.Background()
	w := newFakeWorld()
	w.add("WaterCan", mgl64.Vec3{0, 0, 0})
	seed := w.add("Seed", mgl64.Vec3{1.5, 0, 0})
	s := newTestScheduler(t, w)

	s.Tick(ctx, 0) // t = 0
	p := plantFor(t, s, 0)
	if !p.Transitioning || p.Stage != StageSeed {
		t.Fatalf("after t=0: %+v, want growing seed", p)
	}

	s.Tick(ctx, 4.9) // t = 4.9
	p = plantFor(t, s, 0)
	if p.Stage != StageSeed || !p.Transitioning {
		t.Fatalf("after t=4.9: %+v, want growing seed", p)
	}

	s.Tick(ctx, 0.1) // t = 5.0
	p = plantFor(t, s, 0)
	if p.Stage != StageSmall {
		t.Errorf("after t=5.0: stage = %v, want small", p.Stage)
	}
	if p.Transitioning {
		t.Error("after t=5.0: plant should be idle")
	}
	if w.Exists(seed) {
		t.Error("seed entity should have been replaced")
	}
	if got := w.tagOf(p.Handle); got != "plant_small" {
		t.Errorf("replacement kind = %q, want plant_small", got)
	}
}

func TestReplacementKeepsPose(t *testing.T) {
	ctx := context.Background()
	w := newFakeWorld()
	w.add("WaterCan", mgl64.Vec3{0, 0, 0})
	seed := w.add("Seed", mgl64.Vec3{1, 0, 1})
	rot := mgl64.QuatRotate(1.2, mgl64.Vec3{0, 1, 0})
	w.ents[seed].rot = rot
	s := newTestScheduler(t, w)

	s.Tick(ctx, 0)
	s.Tick(ctx, 5)

	h := plantFor(t, s, 0).Handle
	pos, _ := w.Position(h)
	gotRot, _ := w.Rotation(h)
	if !pos.ApproxEqual(mgl64.Vec3{1, 0, 1}) {
		t.Errorf("replacement position = %v, want (1,0,1)", pos)
	}
	if !gotRot.ApproxEqual(rot) {
		t.Errorf("replacement rotation = %v, want %v", gotRot, rot)
	}
}

func TestProximityGatesStart(t *testing.T) {
	w := newFakeWorld()
	w.add("WaterCan", mgl64.Vec3{0, 0, 0})
	near := w.add("Seed", mgl64.Vec3{1, 0, 0})
	far := w.add("Seed", mgl64.Vec3{0, 0, 3})
	s := newTestScheduler(t, w)

	s.Tick(context.Background(), 0.1)

	for _, p := range s.Registry().Snapshot() {
		switch p.Handle {
		case near:
			if !p.Transitioning {
				t.Error("seed at distance 1 should be growing")
			}
		case far:
			if p.Transitioning || p.Stage != StageSeed {
				t.Errorf("seed at distance 3 = %+v, want idle seed", p)
			}
		}
	}
}

func TestBoundaryDistanceStarts(t *testing.T) {
	w := newFakeWorld()
	w.add("WaterCan", mgl64.Vec3{0, 0, 0})
	w.add("Seed", mgl64.Vec3{2, 0, 0})
	s := newTestScheduler(t, w)

	s.Tick(context.Background(), 0)

	if !plantFor(t, s, 0).Transitioning {
		t.Error("seed exactly at growth distance should start growing")
	}
}

func TestResourceAbsenceStallsStarts(t *testing.T) {
	w := newFakeWorld()
	w.add("Seed", mgl64.Vec3{0, 0, 0})
	s := newTestScheduler(t, w)

	for i := 0; i < 10; i++ {
		s.Tick(context.Background(), 1)
	}

	p := plantFor(t, s, 0)
	if p.Transitioning || p.Stage != StageSeed {
		t.Errorf("without a watering can: %+v, want idle seed", p)
	}
}

func TestGrowthCompletesAfterResourceRemoved(t *testing.T) {
	ctx := context.Background()
	w := newFakeWorld()
	can := w.add("WaterCan", mgl64.Vec3{0, 0, 0})
	w.add("Seed", mgl64.Vec3{1, 0, 0})
	s := newTestScheduler(t, w)

	s.Tick(ctx, 0)
	w.destroy(can)

	s.Tick(ctx, 2.5)
	s.Tick(ctx, 2.5)

	p := plantFor(t, s, 0)
	if p.Stage != StageSmall || p.Transitioning {
		t.Errorf("after can removed: %+v, want idle small", p)
	}

	// No new transition starts while the can is gone.
	s.Tick(ctx, 10)
	if p := plantFor(t, s, 0); p.Transitioning || p.Stage != StageSmall {
		t.Errorf("without can: %+v, want idle small", p)
	}
}

func TestGrowthIgnoresLeavingRange(t *testing.T) {
	ctx := context.Background()
	w := newFakeWorld()
	can := w.add("WaterCan", mgl64.Vec3{0, 0, 0})
	w.add("Seed", mgl64.Vec3{1, 0, 0})
	s := newTestScheduler(t, w)

	s.Tick(ctx, 0)
	w.ents[can].pos = mgl64.Vec3{50, 0, 50}
	s.Tick(ctx, 5)

	if got := plantFor(t, s, 0).Stage; got != StageSmall {
		t.Errorf("stage = %v, want small", got)
	}
}

func TestSingleTransitionInFlight(t *testing.T) {
	ctx := context.Background()
	w := newFakeWorld()
	w.add("WaterCan", mgl64.Vec3{0, 0, 0})
	w.add("Seed", mgl64.Vec3{1, 0, 0})
	s := newTestScheduler(t, w)

	s.Tick(ctx, 0)
	prev := plantFor(t, s, 0).Elapsed
	for i := 0; i < 9; i++ {
		s.Tick(ctx, 0.5)
		p := plantFor(t, s, 0)
		if !p.Transitioning {
			t.Fatalf("tick %d: transition ended early", i)
		}
		if p.Elapsed <= prev {
			t.Fatalf("tick %d: elapsed %v did not advance from %v; timer restarted", i, p.Elapsed, prev)
		}
		prev = p.Elapsed
	}
	if w.replacements != 0 {
		t.Errorf("replacements = %d before dwell time, want 0", w.replacements)
	}

	s.Tick(ctx, 0.5)
	if w.replacements != 1 {
		t.Errorf("replacements = %d, want 1", w.replacements)
	}
}

func TestStagesAdvanceInOrder(t *testing.T) {
	ctx := context.Background()
	w := newFakeWorld()
	w.add("WaterCan", mgl64.Vec3{0, 0, 0})
	w.add("Seed", mgl64.Vec3{0.5, 0, 0.5})
	s := newTestScheduler(t, w)

	prev := StageSeed
	for i := 0; i < 200; i++ {
		s.Tick(ctx, 0.25)
		got := plantFor(t, s, 0).Stage
		if got != prev && got != prev+1 {
			t.Fatalf("tick %d: stage jumped from %v to %v", i, prev, got)
		}
		prev = got
	}

	if prev != StageTomatoLarge {
		t.Errorf("final stage = %v, want tomato_large", prev)
	}
	if w.replacements != 4 {
		t.Errorf("replacements = %d, want 4", w.replacements)
	}
	h := plantFor(t, s, 0).Handle
	if got := w.tagOf(h); got != "tomato_large" {
		t.Errorf("final entity kind = %q, want tomato_large", got)
	}
}

func TestTerminalStageIsStable(t *testing.T) {
	ctx := context.Background()
	w := newFakeWorld()
	w.add("WaterCan", mgl64.Vec3{0, 0, 0})
	w.add("Seed", mgl64.Vec3{1, 0, 0})
	s := newTestScheduler(t, w)

	for i := 0; i < 5; i++ {
		s.Tick(ctx, 0)
		s.Tick(ctx, 5)
	}
	if got := plantFor(t, s, 0).Stage; got != StageTomatoLarge {
		t.Fatalf("stage = %v, want tomato_large", got)
	}

	replaced := w.replacements
	for i := 0; i < 50; i++ {
		s.Tick(ctx, 1)
	}
	p := plantFor(t, s, 0)
	if w.replacements != replaced {
		t.Errorf("replacements grew from %d to %d at terminal stage", replaced, w.replacements)
	}
	if p.Stage != StageTomatoLarge || p.Transitioning {
		t.Errorf("terminal plant = %+v, want idle tomato_large", p)
	}
}

func TestDestroyedPlantIsPurged(t *testing.T) {
	ctx := context.Background()
	w := newFakeWorld()
	w.add("WaterCan", mgl64.Vec3{0, 0, 0})
	eaten := w.add("Seed", mgl64.Vec3{1, 0, 0})
	w.add("Seed", mgl64.Vec3{0, 0, 1})
	s := newTestScheduler(t, w)

	s.Tick(ctx, 0)
	w.destroy(eaten)

	for p := range s.Registry().Live() {
		if p.Handle() == eaten {
			t.Fatal("destroyed plant yielded by Live")
		}
	}
	if got := s.Registry().Len(); got != 1 {
		t.Fatalf("Len() after purge = %d, want 1", got)
	}

	for i := 0; i < 20; i++ {
		s.Tick(ctx, 1)
		for _, p := range s.Registry().Snapshot() {
			if p.Handle == eaten {
				t.Fatal("purged plant reappeared")
			}
		}
	}
	if w.replacements == 0 {
		t.Error("surviving plant should keep growing")
	}
}

func TestLateSeedsAreNotTracked(t *testing.T) {
	ctx := context.Background()
	w := newFakeWorld()
	w.add("WaterCan", mgl64.Vec3{0, 0, 0})
	w.add("Seed", mgl64.Vec3{1, 0, 0})
	s := newTestScheduler(t, w)

	late := w.add("Seed", mgl64.Vec3{0, 0, 1})
	if s.Registry().Initialize(w.FindByTag("Seed")) {
		t.Error("second Initialize should report false")
	}

	s.Tick(ctx, 0)
	s.Tick(ctx, 5)

	if got := s.Registry().Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
	if !w.Exists(late) {
		t.Error("untracked seed should not be replaced")
	}
}

func TestSpawnFailureRetriesNextTick(t *testing.T) {
	ctx := context.Background()
	w := newFakeWorld()
	w.add("WaterCan", mgl64.Vec3{0, 0, 0})
	stuck := w.add("Seed", mgl64.Vec3{1, 0, 0})
	w.add("Seed", mgl64.Vec3{-1, 0, 0})
	w.failOn[stuck] = 3

	var logs bytes.Buffer
	s := newTestScheduler(t, w, WithLogger(log.New(&logs, "", 0)))

	s.Tick(ctx, 0)
	s.Tick(ctx, 5)

	var stuckPlant, other PlantStatus
	for _, p := range s.Registry().Snapshot() {
		if p.Handle == stuck {
			stuckPlant = p
		} else {
			other = p
		}
	}
	if !stuckPlant.Transitioning || stuckPlant.Stage != StageSeed {
		t.Errorf("failing plant = %+v, want growing seed", stuckPlant)
	}
	if other.Stage != StageSmall {
		t.Errorf("other plant stage = %v, want small; failures must stay isolated", other.Stage)
	}

	s.Tick(ctx, 0.1)
	s.Tick(ctx, 0.1)
	s.Tick(ctx, 0.1)

	found := false
	for _, p := range s.Registry().Snapshot() {
		if p.Stage == StageSmall && p.Handle != other.Handle {
			found = true
			if p.Transitioning {
				t.Error("recovered plant should be idle")
			}
		}
	}
	if !found {
		t.Error("failing plant should advance once spawning succeeds")
	}

	if n := strings.Count(logs.String(), "warning:"); n != 1 {
		t.Errorf("logged %d warnings, want 1:\n%s", n, logs.String())
	}
}

func TestSpawnFailureWithDestroyFirstDropsPlant(t *testing.T) {
	ctx := context.Background()
	w := newFakeWorld()
	w.destroyFirst = true
	w.add("WaterCan", mgl64.Vec3{0, 0, 0})
	lost := w.add("Seed", mgl64.Vec3{1, 0, 0})
	w.failOn[lost] = 1
	s := newTestScheduler(t, w)

	s.Tick(ctx, 0)
	s.Tick(ctx, 5)
	s.Tick(ctx, 0)

	if got := s.Registry().Len(); got != 0 {
		t.Errorf("Len() = %d, want 0 after the entity was lost", got)
	}
}

func TestNegativeDeltaIgnored(t *testing.T) {
	ctx := context.Background()
	w := newFakeWorld()
	w.add("WaterCan", mgl64.Vec3{0, 0, 0})
	w.add("Seed", mgl64.Vec3{1, 0, 0})
	s := newTestScheduler(t, w)

	s.Tick(ctx, 0)
	s.Tick(ctx, 3)
	s.Tick(ctx, -100)

	if got := plantFor(t, s, 0).Elapsed; got != 3 {
		t.Errorf("Elapsed = %v, want 3", got)
	}
}

func TestSchedulerMetrics(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	w := newFakeWorld()
	w.add("WaterCan", mgl64.Vec3{0, 0, 0})
	w.add("Seed", mgl64.Vec3{1, 0, 0})
	eaten := w.add("Seed", mgl64.Vec3{0, 0, 1})
	s := newTestScheduler(t, w, WithMeterProvider(mp))

	s.Tick(ctx, 0)
	w.destroy(eaten)
	s.Tick(ctx, 5)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect error: %v", err)
	}

	want := map[string]int64{
		"growth.transitions.started": 2,
		"growth.stages.advanced":     1,
		"growth.plants.purged":       1,
	}
	for name, total := range want {
		if got := counterTotal(rm, name); got != total {
			t.Errorf("%s = %d, want %d", name, got, total)
		}
	}
}

func counterTotal(rm metricdata.ResourceMetrics, name string) int64 {
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total
}

var _ entity.SpatialQuery = (*fakeWorld)(nil)
var _ entity.Replacer = (*fakeWorld)(nil)
