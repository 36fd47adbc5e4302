// Package fba runs flux balance analysis through the external solver and
// classifies the resulting flux vector into the compact qualitative
// categories the calling agent acts on.
package fba

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelforge-bio/modelforge/internal/biochem"
	"github.com/modelforge-bio/modelforge/internal/model"
	"github.com/modelforge-bio/modelforge/internal/solver"
	"github.com/modelforge-bio/modelforge/internal/store"
)

// oxygenCompound is the reference ID for O2.
const oxygenCompound = "cpd00007"

// Metabolism and growth-tier labels. The calling agent relies on this
// exact wording; do not rephrase.
const (
	MetabolismAerobic   = "aerobic respiration"
	MetabolismAnaerobic = "anaerobic/fermentation"

	TierFast     = "fast"
	TierModerate = "moderate"
	TierSlow     = "slow"
	TierVerySlow = "very slow"

	CarbonUnknown = "unknown"
)

// carbonSource pairs a reference compound ID with its display name.
type carbonSource struct {
	id   string
	name string
}

// carbonSources is scanned in priority order; the first compound with a
// nonzero uptake flux is reported as the primary carbon source.
var carbonSources = []carbonSource{
	{"cpd00027", "glucose"},
	{"cpd00082", "fructose"},
	{"cpd00076", "sucrose"},
	{"cpd00314", "mannitol"},
	{"cpd00179", "maltose"},
	{"cpd00208", "lactose"},
	{"cpd00029", "acetate"},
	{"cpd00047", "formate"},
	{"cpd00363", "ethanol"},
	{"cpd00159", "lactate"},
	{"cpd00221", "D-lactate"},
	{"cpd00036", "succinate"},
	{"cpd00137", "citrate"},
	{"cpd00023", "glutamate"},
	{"cpd00035", "alanine"},
}

// Interpreter runs FBA and interprets flux vectors.
type Interpreter struct {
	fba    solver.FBARunner
	models *store.ModelStore
	media  *store.MediaStore
	logger *slog.Logger
}

// NewInterpreter creates an FBA Interpreter.
func NewInterpreter(runner solver.FBARunner, models *store.ModelStore, media *store.MediaStore, logger *slog.Logger) *Interpreter {
	return &Interpreter{fba: runner, models: models, media: media, logger: logger}
}

// Run looks up the model and media, runs FBA through the solver, caches
// the growth rate on the model, and returns the interpretation alongside
// the raw result. Store lookups fail before the solver is invoked.
func (i *Interpreter) Run(ctx context.Context, modelID, mediaID, objectiveID string) (model.FluxInterpretation, solver.FBAResult, error) {
	m, err := i.models.Get(modelID)
	if err != nil {
		return model.FluxInterpretation{}, solver.FBAResult{}, fmt.Errorf("fba: %w", err)
	}
	growthMedia, err := i.media.Get(mediaID)
	if err != nil {
		return model.FluxInterpretation{}, solver.FBAResult{}, fmt.Errorf("fba: %w", err)
	}

	res, err := i.fba.RunFBA(ctx, m, growthMedia, objectiveID)
	if err != nil {
		return model.FluxInterpretation{}, solver.FBAResult{}, fmt.Errorf("fba: %w", err)
	}

	// Cache the growth estimate on the stored model.
	rate := res.ObjectiveValue
	m.GrowthRate = &rate
	i.models.Put(m)

	interp := Interpret(res)
	i.logger.Info("fba complete",
		"model", modelID,
		"media", mediaID,
		"growth", interp.GrowthRate,
		"tier", interp.GrowthTier,
	)
	return interp, res, nil
}

// Interpret classifies a raw flux vector. Pure; exported for direct use
// in tests and by callers that already hold a result.
func Interpret(res solver.FBAResult) model.FluxInterpretation {
	interp := model.FluxInterpretation{
		GrowthRate:   res.ObjectiveValue,
		GrowthTier:   growthTier(res.ObjectiveValue),
		Metabolism:   metabolism(res.Uptake),
		CarbonSource: primaryCarbonSource(res.Uptake),
	}
	interp.Summary = buildSummary(interp)
	return interp
}

// growthTier applies the fixed thresholds. Boundaries are exclusive on
// the lower tier: exactly 0.5 is moderate, exactly 0.1 is slow.
func growthTier(rate float64) string {
	switch {
	case rate > 0.5:
		return TierFast
	case rate > 0.1:
		return TierModerate
	case rate > 0.01:
		return TierSlow
	default:
		return TierVerySlow
	}
}

// metabolism reports aerobic respiration when a nonzero oxygen uptake
// flux is present, anaerobic/fermentation otherwise.
func metabolism(uptake []solver.FluxEntry) string {
	for _, e := range uptake {
		if biochem.StripCompartment(e.ID) == oxygenCompound && e.Flux != 0 {
			return MetabolismAerobic
		}
	}
	return MetabolismAnaerobic
}

// primaryCarbonSource scans the uptake fluxes against the priority list.
func primaryCarbonSource(uptake []solver.FluxEntry) string {
	taken := make(map[string]bool, len(uptake))
	for _, e := range uptake {
		if e.Flux != 0 {
			taken[biochem.StripCompartment(e.ID)] = true
		}
	}
	for _, cs := range carbonSources {
		if taken[cs.id] {
			return cs.name
		}
	}
	return CarbonUnknown
}

func buildSummary(interp model.FluxInterpretation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Growth rate %.3g 1/h (%s). Metabolism: %s.", interp.GrowthRate, interp.GrowthTier, interp.Metabolism)
	if interp.CarbonSource != CarbonUnknown {
		fmt.Fprintf(&b, " Primary carbon source: %s.", interp.CarbonSource)
	} else {
		b.WriteString(" Primary carbon source could not be identified from the uptake fluxes.")
	}
	return b.String()
}
