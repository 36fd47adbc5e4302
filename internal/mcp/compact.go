package mcp

import (
	"github.com/modelforge-bio/modelforge/internal/model"
	"github.com/modelforge-bio/modelforge/internal/solver"
)

// Response-size caps. A model can carry thousands of reactions and an
// FBA solution a flux per reaction; responses stay bounded by reporting
// counts plus capped samples, never the raw collections. Gapfill results
// are bounded upstream by pathway aggregation.
const (
	maxSampleReactions = 10
	maxListedModels    = 50
	maxListedMedia     = 50
	maxListedGapfills  = 20
	maxFluxEntries     = 25
)

// compactModel returns a bounded representation of a model for MCP
// responses: counts and a reaction sample instead of full reaction and
// metabolite lists.
func compactModel(m model.MetabolicModel) map[string]any {
	out := map[string]any{
		"id":               m.ID,
		"state":            m.State,
		"reaction_count":   len(m.Reactions),
		"metabolite_count": len(m.Metabolites),
		"gene_count":       m.GeneCount,
		"created_at":       m.CreatedAt,
	}
	if m.PredecessorID != "" {
		out["predecessor_id"] = m.PredecessorID
	}
	if m.GenomeSource != "" {
		out["genome_source"] = m.GenomeSource
	}
	if m.Template != "" {
		out["template"] = m.Template
	}
	if m.GrowthRate != nil {
		out["growth_rate"] = *m.GrowthRate
	}
	if len(m.Reactions) > 0 {
		sample := m.Reactions
		if len(sample) > maxSampleReactions {
			sample = sample[:maxSampleReactions]
		}
		out["reaction_sample"] = sample
	}
	return out
}

// compactMedia returns a media with its full bounds map — media are
// small (tens of compounds) so the map itself is the useful payload.
func compactMedia(m model.Media) map[string]any {
	return map[string]any{
		"id":             m.ID,
		"name":           m.Name,
		"predefined":     m.Predefined,
		"compound_count": len(m.Compounds),
		"compounds":      m.Compounds,
		"created_at":     m.CreatedAt,
	}
}

// compactFBAResult keeps the uptake/secretion exchange lists (small, and
// what the interpretation is based on) and caps each; the full per-
// reaction flux map is reduced to a count.
func compactFBAResult(res solver.FBAResult) map[string]any {
	return map[string]any{
		"objective_value": res.ObjectiveValue,
		"uptake":          capFluxes(res.Uptake),
		"secretion":       capFluxes(res.Secretion),
		"flux_count":      len(res.Fluxes),
	}
}

func capFluxes(entries []solver.FluxEntry) []solver.FluxEntry {
	if len(entries) > maxFluxEntries {
		return entries[:maxFluxEntries]
	}
	return entries
}
