package model

import "time"

// LifecycleState tags where a metabolic model sits in its build lifecycle.
// The state is stored as an explicit field — identifiers carry a matching
// suffix at the interface boundary only, never parsed back out of strings.
type LifecycleState string

const (
	// StateDraft marks a freshly built model that has not been shown to grow.
	StateDraft LifecycleState = "draft"
	// StateGapfilled marks a model that had reactions added to meet a
	// growth objective. Its PredecessorID points at the source draft.
	StateGapfilled LifecycleState = "gapfilled"
)

// Valid reports whether s is a known lifecycle state.
func (s LifecycleState) Valid() bool {
	return s == StateDraft || s == StateGapfilled
}

// MetabolicModel is a genome-scale metabolic model held in session state.
type MetabolicModel struct {
	ID       string         `json:"id"`
	BaseName string         `json:"base_name"`
	State    LifecycleState `json:"state"`

	// PredecessorID is the draft this model was gapfilled from.
	// Empty for drafts. Gapfilling never deletes or overwrites the source,
	// so the referenced draft stays independently retrievable.
	PredecessorID string `json:"predecessor_id,omitempty"`

	GenomeSource string `json:"genome_source,omitempty"`
	Template     string `json:"template,omitempty"`

	Reactions   []string `json:"reactions"`
	Metabolites []string `json:"metabolites"`
	GeneCount   int      `json:"gene_count"`

	// GrowthRate is the cached growth-rate estimate from the most recent
	// FBA or gapfill run. Nil when never evaluated; drafts that have never
	// been gapfilled are treated as non-growing.
	GrowthRate *float64 `json:"growth_rate,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// ModelID renders the external identifier for a base name and state,
// e.g. "ecoli.draft" or "ecoli.gapfilled". This is the only place the
// lifecycle suffix is ever attached.
func ModelID(baseName string, state LifecycleState) string {
	return baseName + "." + string(state)
}
