package model

import "time"

// QualityTier classifies a gapfill by the number of reactions added.
// Thresholds are policy constants; the calling agent relies on the exact
// wording of these values.
type QualityTier string

const (
	TierMinimal   QualityTier = "minimal"   // fewer than 10 reactions added
	TierModerate  QualityTier = "moderate"  // fewer than 50 reactions added
	TierExtensive QualityTier = "extensive" // 50 or more reactions added
)

// ReactionExample is a representative (ID, name) pair shown in a pathway
// summary. Name falls back to the ID when the reaction is unknown.
type ReactionExample struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PathwaySummary aggregates the reactions a gapfill added to one curated
// metabolic pathway. Examples is capped; Count is not.
type PathwaySummary struct {
	Pathway  string            `json:"pathway"`
	Count    int               `json:"count"`
	Examples []ReactionExample `json:"examples"`
}

// GapfillResult is the structured interpretation of one gapfill run.
// Immutable once produced.
//
// Invariant: sum of per-pathway counts plus UnannotatedCount equals
// ReactionsAdded, always — unannotated reactions are reported, never hidden.
type GapfillResult struct {
	ModelID       string `json:"model_id"`
	SourceModelID string `json:"source_model_id"`
	MediaID       string `json:"media_id"`

	ReactionsAdded     int              `json:"reactions_added"`
	Pathways           []PathwaySummary `json:"pathways"`
	UnannotatedCount   int              `json:"unannotated_count"`
	UnannotatedPercent float64          `json:"unannotated_percent"`

	GrowthBefore float64 `json:"growth_before"`
	GrowthAfter  float64 `json:"growth_after"`
	TargetGrowth float64 `json:"target_growth"`
	TargetMet    bool    `json:"target_met"`

	Quality       QualityTier `json:"quality"`
	QualityCaveat string      `json:"quality_caveat,omitempty"`

	Summary string `json:"summary"`

	CreatedAt time.Time `json:"created_at"`
}

// FluxInterpretation is the compact qualitative reading of one FBA run.
// Derived per call; not persisted.
type FluxInterpretation struct {
	GrowthRate   float64 `json:"growth_rate"`
	GrowthTier   string  `json:"growth_tier"`
	Metabolism   string  `json:"metabolism"`
	CarbonSource string  `json:"carbon_source"`
	Summary      string  `json:"summary"`
}
