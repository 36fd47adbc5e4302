package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/modelforge-bio/modelforge/internal/model"
)

// ModelStore is the session table of metabolic models, keyed by their
// lifecycle-suffixed identifiers. A draft and the gapfilled model derived
// from it coexist under distinct keys; deleting one never cascades to
// the other.
type ModelStore struct {
	mu     sync.RWMutex
	models map[string]model.MetabolicModel
}

// NewModelStore creates an empty model store.
func NewModelStore() *ModelStore {
	return &ModelStore{models: make(map[string]model.MetabolicModel)}
}

// Put stores m under its ID, replacing any existing entry with that ID.
func (s *ModelStore) Put(m model.MetabolicModel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.models[m.ID] = m
}

// Get returns the model stored under id.
func (s *ModelStore) Get(id string) (model.MetabolicModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.models[id]
	if !ok {
		return model.MetabolicModel{}, fmt.Errorf("model %q: %w", id, ErrNotFound)
	}
	return m, nil
}

// Exists reports whether id is present without copying the model.
func (s *ModelStore) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.models[id]
	return ok
}

// Delete removes exactly the entry under id. Predecessors and derived
// models are untouched.
func (s *ModelStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.models[id]; !ok {
		return fmt.Errorf("model %q: %w", id, ErrNotFound)
	}
	delete(s.models, id)
	return nil
}

// List returns models ordered by creation time (ID as tiebreaker),
// optionally filtered by lifecycle state. A nil filter returns everything.
func (s *ModelStore) List(state *model.LifecycleState) []model.MetabolicModel {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.MetabolicModel, 0, len(s.models))
	for _, m := range s.models {
		if state != nil && m.State != *state {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
