// Package solver defines the narrow interfaces to the external modeling
// service that does the actual numerical work: constraint-based gapfilling
// search, flux balance analysis, and genome-to-model construction.
//
// The interfaces let the orchestration layer swap the HTTP-backed client
// for a stub in tests without changing consumers. Search strategy, LP
// internals, and annotation pipelines are the service's problem, not ours.
package solver

import (
	"context"
	"errors"

	"github.com/modelforge-bio/modelforge/internal/model"
)

// ErrInfeasible is returned when the modeling service cannot satisfy the
// requested constraints (no gapfill solution, or an infeasible LP). It is
// a terminal outcome for that invocation; no retries are performed.
var ErrInfeasible = errors.New("solver: infeasible")

// FluxEntry is one exchange flux in an FBA solution. ID is the compound
// identifier of the exchanged species (possibly compartment-tagged).
type FluxEntry struct {
	ID   string  `json:"id"`
	Name string  `json:"name,omitempty"`
	Flux float64 `json:"flux"`
}

// FBAResult is the raw outcome of one flux balance analysis run.
type FBAResult struct {
	ObjectiveValue float64            `json:"objective_value"`
	Uptake         []FluxEntry        `json:"uptake"`
	Secretion      []FluxEntry        `json:"secretion"`
	Fluxes         map[string]float64 `json:"fluxes"`
}

// BuildOutput is the draft model content returned by the build service.
type BuildOutput struct {
	Reactions   []string `json:"reactions"`
	Metabolites []string `json:"metabolites"`
	GeneCount   int      `json:"gene_count"`
}

// Gapfiller runs the external gapfilling search. On success it returns
// the complete post-gapfill reaction set in the service's insertion
// order; the orchestrator diffs it against the input model. Infeasibility
// is reported as an error wrapping ErrInfeasible.
type Gapfiller interface {
	Gapfill(ctx context.Context, m model.MetabolicModel, media model.Media, targetGrowth float64) ([]string, error)
}

// FBARunner runs flux balance analysis for a model on a media.
// objectiveID selects the objective reaction; "" means the service
// default (the biomass reaction).
type FBARunner interface {
	RunFBA(ctx context.Context, m model.MetabolicModel, media model.Media, objectiveID string) (FBAResult, error)
}

// Builder constructs a draft model from genome data and a template.
type Builder interface {
	BuildModel(ctx context.Context, genomeSource, template string) (BuildOutput, error)
}
