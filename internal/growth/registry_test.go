package growth

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/samdwyer/farmplot/internal/entity"
)

func TestRegistryInitialize(t *testing.T) {
	w := newFakeWorld()
	a := w.add("Seed", mgl64.Vec3{})
	b := w.add("Seed", mgl64.Vec3{})
	r := NewRegistry(w)

	if !r.Initialize([]entity.Handle{a, b, a}) {
		t.Fatal("first Initialize should report true")
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (duplicates ignored)", r.Len())
	}
	for _, p := range r.Snapshot() {
		if p.Stage != StageSeed || p.Transitioning || p.Elapsed != 0 {
			t.Errorf("initial plant = %+v, want idle seed", p)
		}
	}

	if r.Initialize([]entity.Handle{w.add("Seed", mgl64.Vec3{})}) {
		t.Error("second Initialize should report false")
	}
	if r.Len() != 2 {
		t.Errorf("Len() after second Initialize = %d, want 2", r.Len())
	}
}

func TestRegistryLiveOrderAndPurge(t *testing.T) {
	w := newFakeWorld()
	handles := []entity.Handle{
		w.add("Seed", mgl64.Vec3{}),
		w.add("Seed", mgl64.Vec3{}),
		w.add("Seed", mgl64.Vec3{}),
		w.add("Seed", mgl64.Vec3{}),
	}
	r := NewRegistry(w)
	r.Initialize(handles)

	var purged []entity.Handle
	r.onPurge = func(p *TrackedPlant) { purged = append(purged, p.Handle()) }

	w.destroy(handles[1])
	w.destroy(handles[2])

	var seen []entity.Handle
	for p := range r.Live() {
		seen = append(seen, p.Handle())
	}

	want := []entity.Handle{handles[3], handles[0]}
	if len(seen) != len(want) {
		t.Fatalf("Live() yielded %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("Live()[%d] = %v, want %v", i, seen[i], want[i])
		}
	}
	if len(purged) != 2 || purged[0] != handles[2] || purged[1] != handles[1] {
		t.Errorf("purged = %v, want [%v %v]", purged, handles[2], handles[1])
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}

	// A second scan is a fresh pass over the survivors.
	count := 0
	for range r.Live() {
		count++
	}
	if count != 2 {
		t.Errorf("second scan yielded %d plants, want 2", count)
	}
}

func TestRegistryLiveStopsEarly(t *testing.T) {
	w := newFakeWorld()
	a := w.add("Seed", mgl64.Vec3{})
	b := w.add("Seed", mgl64.Vec3{})
	c := w.add("Seed", mgl64.Vec3{})
	r := NewRegistry(w)
	r.Initialize([]entity.Handle{a, b, c})
	w.destroy(a)

	for p := range r.Live() {
		if p.Handle() != c {
			t.Errorf("first yielded plant = %v, want %v", p.Handle(), c)
		}
		break
	}

	// a was never reached, so it is still on record until the next full scan.
	if r.Len() != 3 {
		t.Errorf("Len() after early stop = %d, want 3", r.Len())
	}
	for range r.Live() {
	}
	if r.Len() != 2 {
		t.Errorf("Len() after full scan = %d, want 2", r.Len())
	}
}

func TestRegistryReplace(t *testing.T) {
	w := newFakeWorld()
	old := w.add("Seed", mgl64.Vec3{})
	r := NewRegistry(w)
	r.Initialize([]entity.Handle{old})

	var plant *TrackedPlant
	for p := range r.Live() {
		plant = p
	}

	next := w.add("plant_small", mgl64.Vec3{})
	w.destroy(old)
	r.Replace(plant, next, StageSmall)

	if plant.Handle() != next || plant.Stage() != StageSmall {
		t.Errorf("after Replace: handle %v stage %v, want %v small", plant.Handle(), plant.Stage(), next)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
	if !r.track(old) {
		t.Error("old handle should no longer count as tracked")
	}
}

func TestRegistryTransitionGuard(t *testing.T) {
	w := newFakeWorld()
	r := NewRegistry(w)
	r.Initialize([]entity.Handle{w.add("Seed", mgl64.Vec3{})})

	for p := range r.Live() {
		if !r.begin(p) {
			t.Fatal("first begin should succeed")
		}
		r.advance(p, 1.5)
		if r.begin(p) {
			t.Error("begin while transitioning should fail")
		}
		if p.Elapsed() != 1.5 {
			t.Errorf("Elapsed() = %v, want 1.5; a refused begin must not reset the timer", p.Elapsed())
		}
		r.finish(p)
		if p.Transitioning() || p.Elapsed() != 0 {
			t.Error("finish should return the plant to idle")
		}
	}
}

func TestRegistryStageCounts(t *testing.T) {
	w := newFakeWorld()
	r := NewRegistry(w)
	r.Initialize([]entity.Handle{w.add("Seed", mgl64.Vec3{}), w.add("Seed", mgl64.Vec3{})})

	for p := range r.Live() {
		r.Replace(p, p.Handle(), StageSmall)
		break
	}

	counts := r.StageCounts()
	if counts[StageSeed] != 1 || counts[StageSmall] != 1 {
		t.Errorf("StageCounts() = %v, want one seed and one small", counts)
	}
}
