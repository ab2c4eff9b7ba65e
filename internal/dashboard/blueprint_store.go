package dashboard

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// BlueprintStore owns the set of named blueprints. All mutations replace
// whole records; callers never share memory with stored values.
type BlueprintStore struct {
	mu         sync.RWMutex
	blueprints map[string]Blueprint
}

// NewBlueprintStore creates an empty store.
func NewBlueprintStore() *BlueprintStore {
	return &BlueprintStore{blueprints: make(map[string]Blueprint)}
}

// Add inserts a new blueprint. The id must be set and unused.
func (s *BlueprintStore) Add(bp Blueprint) error {
	if bp.ID == "" {
		return errors.New("blueprint id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blueprints[bp.ID]; ok {
		return ErrDuplicateID
	}
	s.blueprints[bp.ID] = bp.Clone()
	return nil
}

// Update replaces the record with the matching id wholesale.
func (s *BlueprintStore) Update(bp Blueprint) error {
	if bp.ID == "" {
		return errors.New("blueprint id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blueprints[bp.ID]; !ok {
		return ErrNotFound
	}
	s.blueprints[bp.ID] = bp.Clone()
	return nil
}

// Remove deletes a blueprint. System defaults cannot be removed. Assignments
// referencing the deleted blueprint are left in place; resolution treats them
// as absent at their level.
func (s *BlueprintStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bp, ok := s.blueprints[id]
	if !ok {
		return ErrNotFound
	}
	if bp.IsSystemDefault {
		return ErrProtectedRecord
	}
	delete(s.blueprints, id)
	return nil
}

// Get returns a copy of the blueprint with the given id.
func (s *BlueprintStore) Get(id string) (Blueprint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bp, ok := s.blueprints[id]
	if !ok {
		return Blueprint{}, false
	}
	return bp.Clone(), true
}

// Filter narrows List output. Zero values match everything.
type Filter struct {
	Persona Persona
	// Query matches case-insensitively against name and description.
	Query string
}

func (f Filter) matches(bp Blueprint) bool {
	if f.Persona != "" && bp.Persona != f.Persona {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(bp.Name), q) &&
			!strings.Contains(strings.ToLower(bp.Description), q) {
			return false
		}
	}
	return true
}

// List returns copies of all blueprints matching the filter, ordered by name
// then id so output is stable for identical store state.
func (s *BlueprintStore) List(f Filter) []Blueprint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Blueprint, 0, len(s.blueprints))
	for _, bp := range s.blueprints {
		if f.matches(bp) {
			out = append(out, bp.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Len reports the number of stored blueprints.
func (s *BlueprintStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blueprints)
}
