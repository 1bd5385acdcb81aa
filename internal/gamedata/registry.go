package gamedata

import (
	"errors"
	"fmt"
)

// PrefabRegistry holds loaded prefab definitions and provides lookup utilities.
type PrefabRegistry struct {
	prefabs map[string]*PrefabDef
	all     []PrefabDef
}

// NewPrefabRegistry creates a registry from loaded prefab definitions.
// Duplicate or empty IDs are rejected.
func NewPrefabRegistry(prefabs []PrefabDef) (*PrefabRegistry, error) {
	registry := &PrefabRegistry{
		prefabs: make(map[string]*PrefabDef, len(prefabs)),
		all:     prefabs,
	}
	for i := range prefabs {
		id := prefabs[i].ID
		if id == "" {
			return nil, fmt.Errorf("prefab %d has no id", i)
		}
		if _, dup := registry.prefabs[id]; dup {
			return nil, fmt.Errorf("duplicate prefab id %q", id)
		}
		registry.prefabs[id] = &prefabs[i]
	}
	return registry, nil
}

// LoadPrefabRegistry loads and creates a registry from the embedded prefabs.json.
func LoadPrefabRegistry() (*PrefabRegistry, error) {
	prefabs, err := LoadPrefabs()
	if err != nil {
		return nil, err
	}
	if len(prefabs) == 0 {
		return nil, errors.New("no prefabs loaded from prefabs.json")
	}
	return NewPrefabRegistry(prefabs)
}

// MustLoadPrefabRegistry loads a registry, panicking on error.
func MustLoadPrefabRegistry() *PrefabRegistry {
	registry, err := LoadPrefabRegistry()
	if err != nil {
		panic(err)
	}
	return registry
}

// GetByID returns the prefab definition with the given ID, or nil if not found.
func (r *PrefabRegistry) GetByID(id string) *PrefabDef {
	return r.prefabs[id]
}

// GetByTag returns the first prefab spawning entities with tag, or nil.
func (r *PrefabRegistry) GetByTag(tag string) *PrefabDef {
	for i := range r.all {
		if r.all[i].Tag == tag {
			return &r.all[i]
		}
	}
	return nil
}

// All returns all prefab definitions.
func (r *PrefabRegistry) All() []PrefabDef {
	return r.all
}

// Count returns the number of prefabs in the registry.
func (r *PrefabRegistry) Count() int {
	return len(r.all)
}
