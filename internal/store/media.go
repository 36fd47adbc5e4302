package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/modelforge-bio/modelforge/internal/model"
)

// MediaStore is the session table of growth-media definitions. Predefined
// media are loaded at startup from the media library; the rest are built
// during the session. Media are immutable once stored.
type MediaStore struct {
	mu    sync.RWMutex
	media map[string]model.Media
}

// NewMediaStore creates an empty media store.
func NewMediaStore() *MediaStore {
	return &MediaStore{media: make(map[string]model.Media)}
}

// Put stores m under its ID, replacing any existing entry with that ID.
func (s *MediaStore) Put(m model.Media) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.media[m.ID] = m
}

// Get returns the media stored under id.
func (s *MediaStore) Get(id string) (model.Media, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.media[id]
	if !ok {
		return model.Media{}, fmt.Errorf("media %q: %w", id, ErrNotFound)
	}
	return m, nil
}

// Delete removes exactly the entry under id.
func (s *MediaStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.media[id]; !ok {
		return fmt.Errorf("media %q: %w", id, ErrNotFound)
	}
	delete(s.media, id)
	return nil
}

// List returns media ordered by creation time (ID as tiebreaker),
// optionally filtered by the predefined flag. A nil filter returns
// everything.
func (s *MediaStore) List(predefined *bool) []model.Media {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Media, 0, len(s.media))
	for _, m := range s.media {
		if predefined != nil && m.Predefined != *predefined {
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
