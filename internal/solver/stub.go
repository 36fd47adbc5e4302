package solver

import (
	"context"

	"github.com/modelforge-bio/modelforge/internal/model"
)

// Stub is a test double for the modeling service. Unset function fields
// return zero values, so tests configure only what they exercise.
type Stub struct {
	GapfillFunc    func(ctx context.Context, m model.MetabolicModel, media model.Media, targetGrowth float64) ([]string, error)
	RunFBAFunc     func(ctx context.Context, m model.MetabolicModel, media model.Media, objectiveID string) (FBAResult, error)
	BuildModelFunc func(ctx context.Context, genomeSource, template string) (BuildOutput, error)
}

// Gapfill implements Gapfiller.
func (s *Stub) Gapfill(ctx context.Context, m model.MetabolicModel, media model.Media, targetGrowth float64) ([]string, error) {
	if s.GapfillFunc == nil {
		return nil, nil
	}
	return s.GapfillFunc(ctx, m, media, targetGrowth)
}

// RunFBA implements FBARunner.
func (s *Stub) RunFBA(ctx context.Context, m model.MetabolicModel, media model.Media, objectiveID string) (FBAResult, error) {
	if s.RunFBAFunc == nil {
		return FBAResult{}, nil
	}
	return s.RunFBAFunc(ctx, m, media, objectiveID)
}

// BuildModel implements Builder.
func (s *Stub) BuildModel(ctx context.Context, genomeSource, template string) (BuildOutput, error) {
	if s.BuildModelFunc == nil {
		return BuildOutput{}, nil
	}
	return s.BuildModelFunc(ctx, genomeSource, template)
}
