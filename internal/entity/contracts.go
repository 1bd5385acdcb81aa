package entity

import "github.com/go-gl/mathgl/mgl64"

// SpatialQuery answers where things are in the scene.
type SpatialQuery interface {
	// FindByTag lists every live entity carrying tag. It returns an empty
	// slice, never an error, when nothing matches.
	FindByTag(tag string) []Handle
	// Exists reports whether h still refers to a live entity.
	Exists(h Handle) bool
	// Position fails with ErrInvalidHandle once the entity is gone.
	Position(h Handle) (mgl64.Vec3, error)
	// Rotation fails with ErrInvalidHandle once the entity is gone.
	Rotation(h Handle) (mgl64.Quat, error)
}

// Replacer swaps an entity for a freshly spawned one of another kind.
type Replacer interface {
	// Replace destroys old and spawns kind at the given pose, returning the
	// new entity. Errors wrap ErrSpawnFailure when kind cannot be
	// instantiated. Whether old survives a failed spawn depends on the
	// implementation's replace order.
	Replace(old Handle, kind string, position mgl64.Vec3, rotation mgl64.Quat) (Handle, error)
}
