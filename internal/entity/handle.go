// Package entity defines the references and contracts shared between the scene
// and the behaviours that drive it.
package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidHandle is returned when a handle refers to an entity that no
	// longer exists.
	ErrInvalidHandle = errors.New("invalid entity handle")
	// ErrSpawnFailure is returned when a prefab kind cannot be instantiated.
	ErrSpawnFailure = errors.New("spawn failure")
)

// Handle is an opaque reference to a live scene entity.
// A handle goes stale when its entity is destroyed: the slot's version moves on
// and the old handle never resolves again.
type Handle struct {
	ID      uint32 // Slot index in the scene, starting at 1
	Version uint32 // Slot generation at the time the handle was issued
}

// IsZero reports whether the handle is the empty reference.
func (h Handle) IsZero() bool {
	return h.ID == 0
}

// String returns a compact "id:version" form for logs.
func (h Handle) String() string {
	return fmt.Sprintf("%d:%d", h.ID, h.Version)
}
