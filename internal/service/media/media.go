// Package media builds validated growth-media definitions.
package media

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/modelforge-bio/modelforge/internal/biochem"
	"github.com/modelforge-bio/modelforge/internal/model"
	"github.com/modelforge-bio/modelforge/internal/store"
)

// Builder validates compound lists against the reference index and
// constructs new Media entries in the session store.
type Builder struct {
	index  *biochem.Index
	store  *store.MediaStore
	logger *slog.Logger
}

// NewBuilder creates a media Builder.
func NewBuilder(index *biochem.Index, mediaStore *store.MediaStore, logger *slog.Logger) *Builder {
	return &Builder{index: index, store: mediaStore, logger: logger}
}

// BuildInput is the request for one media build.
type BuildInput struct {
	// Name is optional; a name is derived from the ID when empty.
	Name string

	// CompoundIDs lists every compound available in the media.
	CompoundIDs []string

	// DefaultBound B applies symmetric exchange bounds (-B, +B) to every
	// compound: uptake up to B, secretion up to B.
	DefaultBound float64

	// Overrides replaces the default bounds for the listed compounds.
	Overrides map[string]model.Bounds
}

// Build validates the input, constructs the Media, and stores it.
//
// Every compound ID — including override keys — must resolve in the
// reference index. Validation collects ALL unresolved IDs and fails the
// whole call; no partial media is ever created.
func (b *Builder) Build(input BuildInput) (model.Media, error) {
	if len(input.CompoundIDs) == 0 {
		return model.Media{}, model.NewValidationError("media: at least one compound is required")
	}
	if input.DefaultBound < 0 {
		return model.Media{}, model.NewValidationError("media: default bound must be non-negative")
	}

	var unknown []string
	seen := make(map[string]struct{}, len(input.CompoundIDs))
	for _, id := range input.CompoundIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, err := b.index.GetCompound(id); errors.Is(err, biochem.ErrNotFound) {
			unknown = append(unknown, id)
		}
	}
	for id := range input.Overrides {
		if _, ok := seen[id]; !ok {
			return model.Media{}, model.NewValidationError("media: override for compound not in media", id)
		}
	}
	if len(unknown) > 0 {
		return model.Media{}, model.NewValidationError("media: unknown compound IDs", unknown...)
	}

	compounds := make(map[string]model.Bounds, len(seen))
	for id := range seen {
		compounds[id] = model.Bounds{Lower: -input.DefaultBound, Upper: input.DefaultBound}
	}
	for id, bounds := range input.Overrides {
		compounds[id] = bounds
	}

	id := "media_" + strings.Split(uuid.NewString(), "-")[0]
	name := input.Name
	if name == "" {
		name = fmt.Sprintf("Custom media (%d compounds)", len(compounds))
	}

	m := model.Media{
		ID:        id,
		Name:      name,
		Compounds: compounds,
		CreatedAt: time.Now().UTC(),
	}
	b.store.Put(m)
	b.logger.Info("media built", "media_id", m.ID, "compounds", len(compounds))
	return m, nil
}
