package growth

import (
	"fmt"
	"io"
	"log"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/samdwyer/farmplot/internal/entity"
)

type fakeEnt struct {
	tag string
	pos mgl64.Vec3
	rot mgl64.Quat
}

// fakeWorld is a minimal SpatialQuery and Replacer. Replacements are tagged
// with the prefab kind they were spawned from.
type fakeWorld struct {
	next         uint32
	ents         map[entity.Handle]*fakeEnt
	order        []entity.Handle
	destroyFirst bool
	failOn       map[entity.Handle]int
	replacements int
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		ents:   make(map[entity.Handle]*fakeEnt),
		failOn: make(map[entity.Handle]int),
	}
}

func (w *fakeWorld) add(tag string, pos mgl64.Vec3) entity.Handle {
	w.next++
	h := entity.Handle{ID: w.next, Version: 1}
	w.ents[h] = &fakeEnt{tag: tag, pos: pos, rot: mgl64.QuatIdent()}
	w.order = append(w.order, h)
	return h
}

func (w *fakeWorld) destroy(h entity.Handle) {
	delete(w.ents, h)
}

func (w *fakeWorld) tagOf(h entity.Handle) string {
	if e, ok := w.ents[h]; ok {
		return e.tag
	}
	return ""
}

func (w *fakeWorld) FindByTag(tag string) []entity.Handle {
	out := make([]entity.Handle, 0)
	for _, h := range w.order {
		if e, ok := w.ents[h]; ok && e.tag == tag {
			out = append(out, h)
		}
	}
	return out
}

func (w *fakeWorld) Exists(h entity.Handle) bool {
	_, ok := w.ents[h]
	return ok
}

func (w *fakeWorld) Position(h entity.Handle) (mgl64.Vec3, error) {
	e, ok := w.ents[h]
	if !ok {
		return mgl64.Vec3{}, entity.ErrInvalidHandle
	}
	return e.pos, nil
}

func (w *fakeWorld) Rotation(h entity.Handle) (mgl64.Quat, error) {
	e, ok := w.ents[h]
	if !ok {
		return mgl64.Quat{}, entity.ErrInvalidHandle
	}
	return e.rot, nil
}

func (w *fakeWorld) Replace(old entity.Handle, kind string, pos mgl64.Vec3, rot mgl64.Quat) (entity.Handle, error) {
	if w.destroyFirst {
		w.destroy(old)
	}
	if w.failOn[old] > 0 {
		w.failOn[old]--
		return entity.Handle{}, fmt.Errorf("prefab %q: %w", kind, entity.ErrSpawnFailure)
	}
	w.destroy(old)
	w.replacements++
	h := w.add(kind, pos)
	w.ents[h].rot = rot
	return h, nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}
