// Package scene is the in-memory entity world the farm behaviours run against.
// It implements entity.SpatialQuery and entity.Replacer.
package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/samdwyer/farmplot/internal/entity"
	"github.com/samdwyer/farmplot/internal/gamedata"
)

// ReplaceOrder selects how Replace sequences destroy and spawn.
type ReplaceOrder int

const (
	// SpawnFirst spawns the replacement before destroying the old entity, so a
	// failed spawn leaves the old entity in place.
	SpawnFirst ReplaceOrder = iota
	// DestroyFirst destroys the old entity before spawning. A failed spawn
	// loses the old entity.
	DestroyFirst
)

// String returns the configuration name of the order.
func (o ReplaceOrder) String() string {
	switch o {
	case SpawnFirst:
		return "spawn_first"
	case DestroyFirst:
		return "destroy_first"
	default:
		return "unknown"
	}
}

// ParseReplaceOrder converts a configuration name to a ReplaceOrder.
func ParseReplaceOrder(s string) (ReplaceOrder, error) {
	switch s {
	case "", "spawn_first":
		return SpawnFirst, nil
	case "destroy_first":
		return DestroyFirst, nil
	default:
		return SpawnFirst, fmt.Errorf("unknown replace order %q", s)
	}
}

// Entity is a snapshot of one live scene entity.
type Entity struct {
	Handle entity.Handle
	Kind   string // Prefab ID
	Tag    string
	Pose   entity.Pose
	Scale  mgl64.Vec3
	Body   Body
}

type slot struct {
	version uint32
	alive   bool
	ent     Entity
}

// Scene holds every entity and the prefab catalog used to spawn them.
// It is not safe for concurrent use; the game loop owns it.
type Scene struct {
	prefabs *gamedata.PrefabRegistry
	order   ReplaceOrder
	slots   []slot // index 0 is reserved so the zero Handle never resolves
	free    []uint32
	live    int
}

// New creates an empty scene spawning from prefabs.
func New(prefabs *gamedata.PrefabRegistry, order ReplaceOrder) *Scene {
	return &Scene{
		prefabs: prefabs,
		order:   order,
		slots:   make([]slot, 1),
	}
}

// Order returns the scene's replace order.
func (s *Scene) Order() ReplaceOrder {
	return s.order
}

// Prefabs returns the catalog the scene spawns from.
func (s *Scene) Prefabs() *gamedata.PrefabRegistry {
	return s.prefabs
}

// Len returns the number of live entities.
func (s *Scene) Len() int {
	return s.live
}

// Spawn instantiates prefab kind at pose. Prefabs flagged interactable are
// made interactable before Spawn returns.
func (s *Scene) Spawn(kind string, pose entity.Pose) (entity.Handle, error) {
	def := s.prefabs.GetByID(kind)
	if def == nil {
		return entity.Handle{}, fmt.Errorf("prefab %q: %w", kind, entity.ErrSpawnFailure)
	}

	scale := def.Scale
	if scale <= 0 {
		scale = 1
	}

	ent := Entity{
		Kind:  def.ID,
		Tag:   def.Tag,
		Pose:  pose,
		Scale: mgl64.Vec3{scale, scale, scale},
		Body:  Body{Collider: ColliderMesh},
	}

	var id uint32
	if n := len(s.free); n > 0 {
		id = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		s.slots = append(s.slots, slot{version: 1})
		id = uint32(len(s.slots) - 1)
	}

	sl := &s.slots[id]
	ent.Handle = entity.Handle{ID: id, Version: sl.version}
	sl.ent = ent
	sl.alive = true
	s.live++

	if def.Interactable {
		if err := s.MakeInteractable(ent.Handle); err != nil {
			return entity.Handle{}, err
		}
	}
	return ent.Handle, nil
}

// Destroy removes the entity. It returns false if h was already invalid.
func (s *Scene) Destroy(h entity.Handle) bool {
	sl := s.lookup(h)
	if sl == nil {
		return false
	}
	sl.alive = false
	sl.version++
	sl.ent = Entity{}
	s.free = append(s.free, h.ID)
	s.live--
	return true
}

// Replace swaps old for a new entity of kind at the given pose.
func (s *Scene) Replace(old entity.Handle, kind string, position mgl64.Vec3, rotation mgl64.Quat) (entity.Handle, error) {
	pose := entity.Pose{Position: position, Rotation: rotation}

	if s.order == DestroyFirst {
		s.Destroy(old)
		return s.Spawn(kind, pose)
	}

	h, err := s.Spawn(kind, pose)
	if err != nil {
		return entity.Handle{}, err
	}
	s.Destroy(old)
	return h, nil
}

// Exists reports whether h refers to a live entity.
func (s *Scene) Exists(h entity.Handle) bool {
	return s.lookup(h) != nil
}

// Get returns a snapshot of the entity.
func (s *Scene) Get(h entity.Handle) (Entity, bool) {
	sl := s.lookup(h)
	if sl == nil {
		return Entity{}, false
	}
	return sl.ent, true
}

// FindByTag lists live entities carrying tag in slot order.
func (s *Scene) FindByTag(tag string) []entity.Handle {
	handles := make([]entity.Handle, 0)
	for i := 1; i < len(s.slots); i++ {
		if s.slots[i].alive && s.slots[i].ent.Tag == tag {
			handles = append(handles, s.slots[i].ent.Handle)
		}
	}
	return handles
}

// FindFirstByTag returns the first live entity carrying tag.
func (s *Scene) FindFirstByTag(tag string) (entity.Handle, bool) {
	for i := 1; i < len(s.slots); i++ {
		if s.slots[i].alive && s.slots[i].ent.Tag == tag {
			return s.slots[i].ent.Handle, true
		}
	}
	return entity.Handle{}, false
}

// Entities returns snapshots of every live entity in slot order.
func (s *Scene) Entities() []Entity {
	out := make([]Entity, 0, s.live)
	for i := 1; i < len(s.slots); i++ {
		if s.slots[i].alive {
			out = append(out, s.slots[i].ent)
		}
	}
	return out
}

// Pose returns the entity's pose.
func (s *Scene) Pose(h entity.Handle) (entity.Pose, error) {
	sl := s.lookup(h)
	if sl == nil {
		return entity.Pose{}, fmt.Errorf("pose of %s: %w", h, entity.ErrInvalidHandle)
	}
	return sl.ent.Pose, nil
}

// Position returns the entity's world position.
func (s *Scene) Position(h entity.Handle) (mgl64.Vec3, error) {
	pose, err := s.Pose(h)
	return pose.Position, err
}

// Rotation returns the entity's world rotation.
func (s *Scene) Rotation(h entity.Handle) (mgl64.Quat, error) {
	pose, err := s.Pose(h)
	return pose.Rotation, err
}

// SetPose moves and orients the entity.
func (s *Scene) SetPose(h entity.Handle, pose entity.Pose) error {
	sl := s.lookup(h)
	if sl == nil {
		return fmt.Errorf("set pose of %s: %w", h, entity.ErrInvalidHandle)
	}
	sl.ent.Pose = pose
	return nil
}

// Move sets the entity's position, keeping its rotation.
func (s *Scene) Move(h entity.Handle, position mgl64.Vec3) error {
	sl := s.lookup(h)
	if sl == nil {
		return fmt.Errorf("move %s: %w", h, entity.ErrInvalidHandle)
	}
	sl.ent.Pose.Position = position
	return nil
}

// Scale returns the entity's local scale.
func (s *Scene) Scale(h entity.Handle) (mgl64.Vec3, error) {
	sl := s.lookup(h)
	if sl == nil {
		return mgl64.Vec3{}, fmt.Errorf("scale of %s: %w", h, entity.ErrInvalidHandle)
	}
	return sl.ent.Scale, nil
}

// SetScale sets the entity's local scale.
func (s *Scene) SetScale(h entity.Handle, scale mgl64.Vec3) error {
	sl := s.lookup(h)
	if sl == nil {
		return fmt.Errorf("set scale of %s: %w", h, entity.ErrInvalidHandle)
	}
	sl.ent.Scale = scale
	return nil
}

func (s *Scene) lookup(h entity.Handle) *slot {
	if h.ID == 0 || int(h.ID) >= len(s.slots) {
		return nil
	}
	sl := &s.slots[h.ID]
	if !sl.alive || sl.version != h.Version {
		return nil
	}
	return sl
}
