package mcp

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelforge-bio/modelforge/internal/model"
	"github.com/modelforge-bio/modelforge/internal/solver"
)

func TestCompactModel(t *testing.T) {
	reactions := make([]string, 3000)
	for i := range reactions {
		reactions[i] = fmt.Sprintf("rxn%05d_c0", i)
	}
	rate := 0.42
	m := model.MetabolicModel{
		ID:            "ecoli.gapfilled",
		BaseName:      "ecoli",
		State:         model.StateGapfilled,
		PredecessorID: "ecoli.draft",
		GenomeSource:  "GCF_000005845.2",
		Reactions:     reactions,
		Metabolites:   []string{"cpd00027_c0"},
		GeneCount:     812,
		GrowthRate:    &rate,
		CreatedAt:     time.Now(),
	}

	out := compactModel(m)
	assert.Equal(t, 3000, out["reaction_count"])
	assert.Equal(t, 1, out["metabolite_count"])
	assert.Equal(t, "ecoli.draft", out["predecessor_id"])
	assert.Equal(t, 0.42, out["growth_rate"])
	assert.NotContains(t, out, "reactions", "the raw reaction list never crosses the wire")

	sample, ok := out["reaction_sample"].([]string)
	require.True(t, ok)
	assert.Len(t, sample, maxSampleReactions)
}

func TestCompactModel_OptionalFields(t *testing.T) {
	out := compactModel(model.MetabolicModel{
		ID:    "ecoli.draft",
		State: model.StateDraft,
	})
	assert.NotContains(t, out, "predecessor_id")
	assert.NotContains(t, out, "growth_rate")
	assert.NotContains(t, out, "reaction_sample")
}

func TestCompactFBAResult(t *testing.T) {
	uptake := make([]solver.FluxEntry, 40)
	for i := range uptake {
		uptake[i] = solver.FluxEntry{ID: fmt.Sprintf("cpd%05d_e0", i), Flux: -1}
	}
	fluxes := make(map[string]float64, 3000)
	for i := 0; i < 3000; i++ {
		fluxes[fmt.Sprintf("rxn%05d_c0", i)] = float64(i)
	}

	out := compactFBAResult(solver.FBAResult{
		ObjectiveValue: 0.3,
		Uptake:         uptake,
		Secretion:      []solver.FluxEntry{{ID: "cpd00011_e0", Flux: 2}},
		Fluxes:         fluxes,
	})

	assert.Len(t, out["uptake"], maxFluxEntries)
	assert.Len(t, out["secretion"], 1)
	assert.Equal(t, 3000, out["flux_count"])
	assert.NotContains(t, out, "fluxes")
}
