// Package gapfill orchestrates the external gapfilling search and turns
// its raw output into a structured, non-misleading interpretation.
//
// The orchestrator owns everything around the numerical black box:
// store lookups before the call, the before/after reaction diff, pathway
// attribution through the biochemistry reference index, growth
// assessment, and writing the gapfilled model back without touching the
// source draft.
package gapfill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/modelforge-bio/modelforge/internal/biochem"
	"github.com/modelforge-bio/modelforge/internal/model"
	"github.com/modelforge-bio/modelforge/internal/solver"
	"github.com/modelforge-bio/modelforge/internal/store"
	"github.com/modelforge-bio/modelforge/internal/telemetry"
)

// phase names the steps of one gapfill run for logging and metrics.
type phase string

const (
	phaseNotStarted  phase = "not_started"
	phaseInvoked     phase = "external_gapfill_invoked"
	phaseDiffed      phase = "diffed"
	phaseCategorized phase = "categorized"
	phaseAssessed    phase = "assessed"
	phaseStored      phase = "stored"
	phaseFailed      phase = "failed"
)

// defaultHistoryCap bounds the per-session audit trail of gapfill results.
const defaultHistoryCap = 50

// Orchestrator runs gapfill invocations and records their interpretations.
type Orchestrator struct {
	models    *store.ModelStore
	media     *store.MediaStore
	index     *biochem.Index
	gapfiller solver.Gapfiller
	fba       solver.FBARunner
	logger    *slog.Logger

	runDuration metric.Float64Histogram

	mu         sync.Mutex
	history    []model.GapfillResult
	historyCap int
}

// New creates a gapfill Orchestrator.
func New(models *store.ModelStore, media *store.MediaStore, index *biochem.Index, gapfiller solver.Gapfiller, fba solver.FBARunner, logger *slog.Logger) *Orchestrator {
	meter := telemetry.Meter("modelforge/gapfill")
	dur, _ := meter.Float64Histogram("modelforge.gapfill.duration",
		metric.WithDescription("End-to-end gapfill run time (ms)"),
		metric.WithUnit("ms"),
	)
	return &Orchestrator{
		models:      models,
		media:       media,
		index:       index,
		gapfiller:   gapfiller,
		fba:         fba,
		logger:      logger,
		runDuration: dur,
		historyCap:  defaultHistoryCap,
	}
}

// Run executes one gapfill: load → invoke → diff → categorize → assess →
// store. On solver infeasibility the stores are left exactly as they
// were and a structured error is returned; a partial or non-growing
// "gapfilled" model is never stored alongside a success claim it did not
// earn.
func (o *Orchestrator) Run(ctx context.Context, modelID, mediaID string, targetGrowth float64) (model.GapfillResult, error) {
	current := phaseNotStarted
	start := time.Now()
	defer func() {
		o.runDuration.Record(ctx, float64(time.Since(start).Milliseconds()),
			metric.WithAttributes(attribute.String("final_phase", string(current))))
	}()

	if targetGrowth <= 0 {
		current = phaseFailed
		return model.GapfillResult{}, model.NewValidationError("gapfill: target growth rate must be positive")
	}

	// Both lookups happen before any solver work: a bad identifier must
	// never cost a numerical search.
	source, err := o.models.Get(modelID)
	if err != nil {
		current = phaseFailed
		return model.GapfillResult{}, fmt.Errorf("gapfill: %w", err)
	}
	growthMedia, err := o.media.Get(mediaID)
	if err != nil {
		current = phaseFailed
		return model.GapfillResult{}, fmt.Errorf("gapfill: %w", err)
	}

	current = phaseInvoked
	o.logger.Debug("gapfill phase", "phase", current, "model", modelID, "media", mediaID)
	post, err := o.gapfiller.Gapfill(ctx, source, growthMedia, targetGrowth)
	if err != nil {
		current = phaseFailed
		if errors.Is(err, solver.ErrInfeasible) {
			return model.GapfillResult{}, fmt.Errorf(
				"gapfill: model %s cannot reach growth %.3g on media %s — try a richer media, a lower target, or check the genome annotation: %w",
				modelID, targetGrowth, mediaID, err)
		}
		return model.GapfillResult{}, fmt.Errorf("gapfill: %w", err)
	}

	current = phaseDiffed
	added := diffReactions(source.Reactions, post)
	o.logger.Debug("gapfill phase", "phase", current, "added", len(added))

	current = phaseCategorized
	pathways, unannotated := categorize(o.index, added)

	current = phaseAssessed
	growthBefore := 0.0
	if source.GrowthRate != nil {
		growthBefore = *source.GrowthRate
	}

	gapfilled := o.deriveGapfilledModel(source, post)
	growthAfter := o.assessGrowth(ctx, gapfilled, growthMedia)
	targetMet := growthAfter >= targetGrowth
	gapfilled.GrowthRate = &growthAfter

	tier, caveat := qualityTier(len(added))
	result := model.GapfillResult{
		ModelID:            gapfilled.ID,
		SourceModelID:      source.ID,
		MediaID:            growthMedia.ID,
		ReactionsAdded:     len(added),
		Pathways:           pathways,
		UnannotatedCount:   unannotated,
		UnannotatedPercent: percentage(unannotated, len(added)),
		GrowthBefore:       growthBefore,
		GrowthAfter:        growthAfter,
		TargetGrowth:       targetGrowth,
		TargetMet:          targetMet,
		Quality:            tier,
		QualityCaveat:      caveat,
		CreatedAt:          time.Now().UTC(),
	}
	result.Summary = buildSummary(result)

	// The draft is never mutated or removed; the gapfilled model is a new
	// entry whose predecessor reference points back at it.
	o.models.Put(gapfilled)
	current = phaseStored

	o.recordHistory(result)
	o.logger.Info("gapfill complete",
		"model", gapfilled.ID,
		"source", source.ID,
		"reactions_added", len(added),
		"target_met", targetMet,
		"quality", tier,
	)
	return result, nil
}

// deriveGapfilledModel builds the successor model under a fresh gapfilled
// identifier. When the natural ID is taken (the draft was gapfilled
// before), a numeric suffix keeps the new model distinct instead of
// overwriting history.
func (o *Orchestrator) deriveGapfilledModel(source model.MetabolicModel, post []string) model.MetabolicModel {
	baseName := source.BaseName
	for i := 2; o.models.Exists(model.ModelID(baseName, model.StateGapfilled)); i++ {
		baseName = fmt.Sprintf("%s_%d", source.BaseName, i)
	}

	reactions := make([]string, len(post))
	copy(reactions, post)

	return model.MetabolicModel{
		ID:            model.ModelID(baseName, model.StateGapfilled),
		BaseName:      baseName,
		State:         model.StateGapfilled,
		PredecessorID: source.ID,
		GenomeSource:  source.GenomeSource,
		Template:      source.Template,
		Reactions:     reactions,
		Metabolites:   source.Metabolites,
		GeneCount:     source.GeneCount,
		CreatedAt:     time.Now().UTC(),
	}
}

// assessGrowth runs FBA on the candidate model. A failed or infeasible
// FBA yields growth 0 — the interpretation must then report the target as
// unmet rather than assume the gapfill worked.
func (o *Orchestrator) assessGrowth(ctx context.Context, m model.MetabolicModel, growthMedia model.Media) float64 {
	res, err := o.fba.RunFBA(ctx, m, growthMedia, "")
	if err != nil {
		o.logger.Warn("gapfill: post-gapfill FBA failed, reporting zero growth", "model", m.ID, "error", err)
		return 0
	}
	return res.ObjectiveValue
}

// diffReactions returns the reactions present in post but not in pre, in
// post's insertion order. This is the authoritative "reactions added" set.
func diffReactions(pre, post []string) []string {
	before := make(map[string]struct{}, len(pre))
	for _, r := range pre {
		before[r] = struct{}{}
	}
	var added []string
	seen := make(map[string]struct{}, len(post))
	for _, r := range post {
		if _, old := before[r]; old {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		added = append(added, r)
	}
	return added
}

func (o *Orchestrator) recordHistory(r model.GapfillResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.history = append(o.history, r)
	if len(o.history) > o.historyCap {
		o.history = o.history[len(o.history)-o.historyCap:]
	}
}

// History returns up to limit most recent gapfill results, newest first.
func (o *Orchestrator) History(limit int) []model.GapfillResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := len(o.history)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]model.GapfillResult, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, o.history[i])
	}
	return out
}
