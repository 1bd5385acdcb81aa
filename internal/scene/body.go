package scene

import (
	"fmt"

	"github.com/samdwyer/farmplot/internal/entity"
)

// Collider is the collision shape attached to an entity.
type Collider int

const (
	ColliderNone Collider = iota
	// ColliderMesh is the model's own mesh; unreliable for dynamic bodies.
	ColliderMesh
	ColliderBox
)

// String returns the collider name.
func (c Collider) String() string {
	switch c {
	case ColliderNone:
		return "none"
	case ColliderMesh:
		return "mesh"
	case ColliderBox:
		return "box"
	default:
		return "unknown"
	}
}

// Rigidbody holds the physics flags the engine needs for a dynamic body.
type Rigidbody struct {
	UseGravity  bool
	IsKinematic bool
}

// Grab holds hand-interaction settings.
type Grab struct {
	ThrowOnDetach bool
	Layer         string
}

// Body collects the interaction components of an entity.
type Body struct {
	Collider  Collider
	Rigidbody *Rigidbody
	Grab      *Grab
}

// Interactable reports whether the body can be picked up and thrown.
func (b Body) Interactable() bool {
	return b.Collider == ColliderBox && b.Rigidbody != nil && b.Grab != nil
}

// MakeInteractable gives the entity a box collider, a dynamic rigidbody with
// gravity and a grab component that throws on release. Calling it again on an
// already interactable entity changes nothing.
func (s *Scene) MakeInteractable(h entity.Handle) error {
	sl := s.lookup(h)
	if sl == nil {
		return fmt.Errorf("make %s interactable: %w", h, entity.ErrInvalidHandle)
	}

	body := &sl.ent.Body
	if body.Collider == ColliderNone || body.Collider == ColliderMesh {
		body.Collider = ColliderBox
	}
	if body.Rigidbody == nil {
		body.Rigidbody = &Rigidbody{}
	}
	body.Rigidbody.UseGravity = true
	body.Rigidbody.IsKinematic = false

	if body.Grab == nil {
		body.Grab = &Grab{}
	}
	body.Grab.ThrowOnDetach = true
	body.Grab.Layer = "Default"
	return nil
}
