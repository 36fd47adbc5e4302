package gapfill

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/modelforge-bio/modelforge/internal/biochem"
	"github.com/modelforge-bio/modelforge/internal/model"
)

// maxPathwayExamples caps the representative reactions listed per pathway
// so the interpretation stays bounded no matter how large the gapfill is.
const maxPathwayExamples = 5

// Quality tier thresholds, in reactions added. Policy constants.
const (
	tierModerateMin  = 10
	tierExtensiveMin = 50
)

// extensiveCaveat is attached to every extensive-tier result.
const extensiveCaveat = "A gapfill this large often indicates poor input annotation quality; review the draft model's genome annotation before trusting downstream predictions."

// categorize attributes each added reaction to a curated metabolic
// pathway through the reference index. Attribution comes only from the
// authoritative reference data — name-keyword matching is not used and
// must not be reintroduced.
//
// A reaction whose base ID is unknown to the index, or whose pathway list
// is empty, lands in the unannotated count. Each annotated reaction
// counts toward exactly one pathway (its primary), so the per-pathway
// counts plus the unannotated count always partition the total.
func categorize(ix *biochem.Index, added []string) ([]model.PathwaySummary, int) {
	type bucket struct {
		count    int
		examples []model.ReactionExample
	}
	buckets := make(map[string]*bucket)
	unannotated := 0

	for _, id := range added {
		base := biochem.StripCompartment(id)
		rxn, err := ix.GetReaction(base)
		if errors.Is(err, biochem.ErrNotFound) || len(rxn.Pathways) == 0 {
			unannotated++
			continue
		}

		pathway := rxn.PrimaryPathway()
		b, ok := buckets[pathway]
		if !ok {
			b = &bucket{}
			buckets[pathway] = b
		}
		b.count++
		if len(b.examples) < maxPathwayExamples {
			name := rxn.Name
			if name == "" {
				name = id
			}
			b.examples = append(b.examples, model.ReactionExample{ID: id, Name: name})
		}
	}

	summaries := make([]model.PathwaySummary, 0, len(buckets))
	for pathway, b := range buckets {
		summaries = append(summaries, model.PathwaySummary{
			Pathway:  pathway,
			Count:    b.count,
			Examples: b.examples,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Count != summaries[j].Count {
			return summaries[i].Count > summaries[j].Count
		}
		return summaries[i].Pathway < summaries[j].Pathway
	})
	return summaries, unannotated
}

// qualityTier classifies a gapfill by total reactions added.
func qualityTier(reactionsAdded int) (model.QualityTier, string) {
	switch {
	case reactionsAdded < tierModerateMin:
		return model.TierMinimal, ""
	case reactionsAdded < tierExtensiveMin:
		return model.TierModerate, ""
	default:
		return model.TierExtensive, extensiveCaveat
	}
}

// percentage returns part/total as a percentage rounded to one decimal
// place. Zero when total is zero.
func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}

// buildSummary renders the human-readable overview. The wording is
// conditioned on whether the target growth rate was actually met: a
// gapfill that failed to enable growth is reported as exactly that, never
// as a success.
func buildSummary(r model.GapfillResult) string {
	var b strings.Builder

	switch {
	case r.ReactionsAdded == 0 && r.TargetMet:
		fmt.Fprintf(&b, "No reactions were needed: the model already grows at %.3g 1/h, meeting the target of %.3g.",
			r.GrowthAfter, r.TargetGrowth)
	case r.TargetMet:
		fmt.Fprintf(&b, "Gapfilling added %d reaction(s) across %d pathway(s), enabling growth at %.3g 1/h (target %.3g met; before: %.3g).",
			r.ReactionsAdded, len(r.Pathways), r.GrowthAfter, r.TargetGrowth, r.GrowthBefore)
	default:
		fmt.Fprintf(&b, "Gapfilling added %d reaction(s), but the model does NOT meet the target growth rate: %.3g of %.3g 1/h. Growth was not enabled on this media — consider a richer media, a lower target, or reviewing the genome annotation.",
			r.ReactionsAdded, r.GrowthAfter, r.TargetGrowth)
	}

	if r.UnannotatedCount > 0 {
		fmt.Fprintf(&b, " %d of the added reactions (%.1f%%) have no pathway annotation in the reference data.",
			r.UnannotatedCount, r.UnannotatedPercent)
	}
	if r.QualityCaveat != "" {
		b.WriteString(" ")
		b.WriteString(r.QualityCaveat)
	}
	return b.String()
}
