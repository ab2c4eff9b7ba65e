package dashboard

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// AssignmentStore owns the set of override records. It is the single point
// enforcing the "at most one assignment per (target type, target id)"
// invariant; callers never create assignments directly.
type AssignmentStore struct {
	mu    sync.RWMutex
	byID  map[string]Assignment
	order []string
}

// NewAssignmentStore creates an empty store.
func NewAssignmentStore() *AssignmentStore {
	return &AssignmentStore{byID: make(map[string]Assignment)}
}

// Upsert binds blueprintID to the given target. When an assignment for the
// (targetType, targetID) pair already exists its blueprint reference is
// replaced in place, keeping the same id; otherwise a new assignment is
// created with a fresh id. Idempotent under repeated identical calls.
func (s *AssignmentStore) Upsert(targetType TargetType, targetID, blueprintID string) (Assignment, error) {
	if targetType.Priority() == 0 {
		return Assignment{}, errors.New("target type is required")
	}
	if targetID == "" {
		return Assignment{}, errors.New("target id is required")
	}
	if blueprintID == "" {
		return Assignment{}, errors.New("blueprint id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.order {
		a := s.byID[id]
		if a.TargetType == targetType && a.TargetID == targetID {
			a.BlueprintID = blueprintID
			s.byID[id] = a
			return a, nil
		}
	}

	a := Assignment{
		ID:          uuid.NewString(),
		BlueprintID: blueprintID,
		TargetType:  targetType,
		TargetID:    targetID,
	}
	s.byID[a.ID] = a
	s.order = append(s.order, a.ID)
	return a, nil
}

// Restore inserts an assignment with its existing id, used when hydrating the
// store from a persisted snapshot. The uniqueness invariant still holds: a
// snapshot row colliding on target replaces the earlier one.
func (s *AssignmentStore) Restore(a Assignment) error {
	if a.ID == "" {
		return errors.New("assignment id is required")
	}
	if a.TargetType.Priority() == 0 {
		return errors.New("target type is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[a.ID]; ok {
		return ErrDuplicateID
	}
	for _, id := range s.order {
		existing := s.byID[id]
		if existing.TargetType == a.TargetType && existing.TargetID == a.TargetID {
			delete(s.byID, id)
			s.removeFromOrder(id)
			break
		}
	}
	s.byID[a.ID] = a
	s.order = append(s.order, a.ID)
	return nil
}

// Remove deletes an assignment by id. Resolution for its target reverts to
// the next lower-priority level.
func (s *AssignmentStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	s.removeFromOrder(id)
	return nil
}

func (s *AssignmentStore) removeFromOrder(id string) {
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// FindFor returns the assignment for the given target, if any.
func (s *AssignmentStore) FindFor(targetType TargetType, targetID string) (Assignment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.order {
		a := s.byID[id]
		if a.TargetType == targetType && a.TargetID == targetID {
			return a, true
		}
	}
	return Assignment{}, false
}

// List returns all assignments in creation order. The order is stable for
// identical store state.
func (s *AssignmentStore) List() []Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Assignment, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Len reports the number of stored assignments.
func (s *AssignmentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
