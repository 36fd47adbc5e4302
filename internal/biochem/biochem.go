// Package biochem owns the biochemistry reference index: every compound
// and reaction record known to the system, loaded once at startup from
// two tabular reference files and read-only thereafter.
//
// All pathway attribution in the gapfill interpretation pipeline goes
// through this index. Pathways come only from the curated reference data;
// keyword matching on reaction names is not an acceptable substitute.
package biochem

import (
	"errors"
	"fmt"

	"github.com/modelforge-bio/modelforge/internal/model"
)

// ErrNotFound is returned when an identifier has no record in the index.
// Callers decide whether absence is an error (user-supplied compound ID)
// or expected (a reaction without curation).
var ErrNotFound = errors.New("biochem: not found")

// Index is the in-memory reference index. Built once by Load; safe for
// concurrent readers without locking because it is never mutated after
// construction.
type Index struct {
	compounds map[string]model.Compound
	reactions map[string]model.Reaction

	// Load-order slices keep search iteration deterministic.
	compoundOrder []string
	reactionOrder []string
}

// GetCompound returns the compound record for an exact ID.
func (ix *Index) GetCompound(id string) (model.Compound, error) {
	c, ok := ix.compounds[id]
	if !ok {
		return model.Compound{}, fmt.Errorf("compound %q: %w", id, ErrNotFound)
	}
	return c, nil
}

// GetReaction returns the reaction record for an exact base ID.
// Callers must strip any compartment suffix first (see StripCompartment);
// the index is keyed on base identifiers only.
func (ix *Index) GetReaction(id string) (model.Reaction, error) {
	r, ok := ix.reactions[id]
	if !ok {
		return model.Reaction{}, fmt.Errorf("reaction %q: %w", id, ErrNotFound)
	}
	return r, nil
}

// CompoundCount returns the number of loaded compound records.
func (ix *Index) CompoundCount() int { return len(ix.compounds) }

// ReactionCount returns the number of loaded reaction records.
func (ix *Index) ReactionCount() int { return len(ix.reactions) }
