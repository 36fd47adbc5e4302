// Package modelbuild turns genome data into draft metabolic models via
// the external build service.
package modelbuild

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/modelforge-bio/modelforge/internal/model"
	"github.com/modelforge-bio/modelforge/internal/solver"
	"github.com/modelforge-bio/modelforge/internal/store"
)

// Builder calls the external model-construction service and stores the
// resulting draft. Annotation and templating internals belong to the
// service; this layer owns identifiers and lifecycle state.
type Builder struct {
	solver solver.Builder
	models *store.ModelStore
	logger *slog.Logger
}

// NewBuilder creates a model Builder.
func NewBuilder(s solver.Builder, models *store.ModelStore, logger *slog.Logger) *Builder {
	return &Builder{solver: s, models: models, logger: logger}
}

// BuildInput is the request for one draft model build.
type BuildInput struct {
	// BaseName names the model; the draft is stored as "<BaseName>.draft".
	// Derived from GenomeSource when empty.
	BaseName     string
	GenomeSource string
	Template     string
}

var nonIdentifier = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// Build constructs a draft model. The draft's growth rate is left unset:
// by definition a fresh draft has not been shown to grow.
func (b *Builder) Build(ctx context.Context, input BuildInput) (model.MetabolicModel, error) {
	if input.GenomeSource == "" {
		return model.MetabolicModel{}, model.NewValidationError("modelbuild: genome source is required")
	}

	baseName := input.BaseName
	if baseName == "" {
		baseName = deriveBaseName(input.GenomeSource)
	}
	baseName = nonIdentifier.ReplaceAllString(baseName, "_")

	id := model.ModelID(baseName, model.StateDraft)
	if b.models.Exists(id) {
		return model.MetabolicModel{}, model.NewValidationError("modelbuild: model already exists", id)
	}

	out, err := b.solver.BuildModel(ctx, input.GenomeSource, input.Template)
	if err != nil {
		return model.MetabolicModel{}, fmt.Errorf("modelbuild: %w", err)
	}

	m := model.MetabolicModel{
		ID:           id,
		BaseName:     baseName,
		State:        model.StateDraft,
		GenomeSource: input.GenomeSource,
		Template:     input.Template,
		Reactions:    out.Reactions,
		Metabolites:  out.Metabolites,
		GeneCount:    out.GeneCount,
		CreatedAt:    time.Now().UTC(),
	}
	b.models.Put(m)
	b.logger.Info("draft model built",
		"model_id", m.ID,
		"reactions", len(m.Reactions),
		"genes", m.GeneCount,
	)
	return m, nil
}

// deriveBaseName extracts a usable base name from a genome source such as
// a file path or accession string.
func deriveBaseName(source string) string {
	s := source
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.IndexByte(s, '.'); i > 0 {
		s = s[:i]
	}
	if s == "" {
		s = "model"
	}
	return s
}
