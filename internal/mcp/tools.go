package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/modelforge-bio/modelforge/internal/biochem"
	"github.com/modelforge-bio/modelforge/internal/model"
	mediasvc "github.com/modelforge-bio/modelforge/internal/service/media"
	"github.com/modelforge-bio/modelforge/internal/service/modelbuild"
	"github.com/modelforge-bio/modelforge/internal/solver"
	"github.com/modelforge-bio/modelforge/internal/store"
)

const defaultTargetGrowth = 0.1

func (s *Server) registerTools() {
	// search_biochem — find compounds/reactions in the reference data.
	s.mcpServer.AddTool(
		mcplib.NewTool("search_biochem",
			mcplib.WithDescription(`Search the biochemistry reference data for compounds or reactions by name.

WHEN TO USE: BEFORE building media or interpreting reactions, to resolve
human names ("glucose", "oxygen") into reference IDs (cpd00027, cpd00007).
Tools like build_media only accept reference IDs.

Matching is case-insensitive substring search over names and aliases;
exact name matches rank first. The response says whether results were
truncated — narrow the query if so.`),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("query",
				mcplib.Description("Name or name fragment to search for, e.g. 'glucose'"),
				mcplib.Required(),
			),
			mcplib.WithString("kind",
				mcplib.Description("What to search: 'compound', 'reaction', or 'both'"),
				mcplib.Enum("compound", "reaction", "both"),
				mcplib.DefaultString("both"),
			),
			mcplib.WithNumber("limit",
				mcplib.Description("Maximum results per record kind"),
				mcplib.Min(1),
				mcplib.Max(100),
				mcplib.DefaultNumber(20),
			),
		),
		s.handleSearchBiochem,
	)

	// get_compound — exact compound lookup.
	s.mcpServer.AddTool(
		mcplib.NewTool("get_compound",
			mcplib.WithDescription("Look up one compound by its exact reference ID (e.g. cpd00027). Returns name, formula, mass, and aliases."),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("compound_id",
				mcplib.Description("Reference compound ID"),
				mcplib.Required(),
			),
		),
		s.handleGetCompound,
	)

	// get_reaction — exact reaction lookup, compartment suffix tolerated.
	s.mcpServer.AddTool(
		mcplib.NewTool("get_reaction",
			mcplib.WithDescription(`Look up one reaction by its reference ID (e.g. rxn00148). A trailing
compartment tag (rxn00148_c0) is stripped automatically. Returns name,
equation, EC numbers, and the curated pathway list — an empty pathway
list means the reaction is unannotated, which is a normal data state.`),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("reaction_id",
				mcplib.Description("Reference reaction ID, with or without a compartment tag"),
				mcplib.Required(),
			),
		),
		s.handleGetReaction,
	)

	// build_media — construct a validated growth media.
	s.mcpServer.AddTool(
		mcplib.NewTool("build_media",
			mcplib.WithDescription(`Build a growth media from a list of compound IDs.

Every compound gets symmetric default bounds (-B, +B): uptake up to B,
secretion up to B (negative = uptake). Use custom_bounds to override
specific compounds, e.g. to limit the carbon source uptake.

Every compound ID must exist in the reference data — use search_biochem
first to resolve names. If any ID is unknown the whole call fails and
lists every offending ID; no partial media is created.

EXAMPLE: glucose minimal media — compound_ids
"cpd00027,cpd00007,cpd00001,cpd00009,cpd00013", default_uptake_bound 100,
custom_bounds {"cpd00027": [-5, 100]}.`),
			mcplib.WithDestructiveHintAnnotation(false),
			mcplib.WithIdempotentHintAnnotation(false),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("compound_ids",
				mcplib.Description("Comma-separated reference compound IDs"),
				mcplib.Required(),
			),
			mcplib.WithNumber("default_uptake_bound",
				mcplib.Description("Default bound magnitude B applied as (-B, +B) to every compound"),
				mcplib.DefaultNumber(100),
			),
			mcplib.WithString("custom_bounds",
				mcplib.Description(`JSON object of per-compound [lower, upper] overrides, e.g. {"cpd00027": [-5, 100]}`),
			),
			mcplib.WithString("name",
				mcplib.Description("Optional human-readable media name"),
			),
		),
		s.handleBuildMedia,
	)

	// build_model — build a draft model from genome data.
	s.mcpServer.AddTool(
		mcplib.NewTool("build_model",
			mcplib.WithDescription(`Build a draft metabolic model from genome data using the modeling service.

The result is a DRAFT: by definition it has not been shown to grow.
Gapfill it (gapfill_model) before expecting nonzero growth from run_fba.
The draft is stored as "<name>.draft" and the name must be unused.`),
			mcplib.WithDestructiveHintAnnotation(false),
			mcplib.WithIdempotentHintAnnotation(false),
			mcplib.WithOpenWorldHintAnnotation(true),
			mcplib.WithString("genome_source",
				mcplib.Description("Genome data reference: a file path, accession, or workspace ID understood by the modeling service"),
				mcplib.Required(),
			),
			mcplib.WithString("template",
				mcplib.Description("Model template, e.g. 'gram_negative', 'gram_positive', 'core'"),
			),
			mcplib.WithString("name",
				mcplib.Description("Base name for the model; derived from genome_source when omitted"),
			),
		),
		s.handleBuildModel,
	)

	// gapfill_model — gapfill a draft and interpret the result.
	s.mcpServer.AddTool(
		mcplib.NewTool("gapfill_model",
			mcplib.WithDescription(`Gapfill a model so it can grow on a media, and interpret what was added.

Runs the modeling service's gapfilling search, then attributes every
added reaction to a curated metabolic pathway via the reference data.
The result reports per-pathway counts with example reactions, the count
and percentage of unannotated additions, growth before/after against the
target, and a quality tier (minimal/moderate/extensive — extensive
gapfills often mean poor input annotation).

The source model is never modified: the gapfilled model is stored as a
new "<name>.gapfilled" entry with a predecessor reference, and the source
stays retrievable. If no gapfill solution exists the session state is
left untouched and the error says what to try instead.`),
			mcplib.WithDestructiveHintAnnotation(false),
			mcplib.WithIdempotentHintAnnotation(false),
			mcplib.WithOpenWorldHintAnnotation(true),
			mcplib.WithString("model_id",
				mcplib.Description("ID of the model to gapfill, e.g. 'ecoli.draft'"),
				mcplib.Required(),
			),
			mcplib.WithString("media_id",
				mcplib.Description("ID of the media to gapfill against"),
				mcplib.Required(),
			),
			mcplib.WithNumber("target_growth_rate",
				mcplib.Description("Growth rate (1/h) the gapfilled model must reach"),
				mcplib.Min(0),
				mcplib.DefaultNumber(defaultTargetGrowth),
			),
		),
		s.handleGapfillModel,
	)

	// run_fba — flux balance analysis with interpretation.
	s.mcpServer.AddTool(
		mcplib.NewTool("run_fba",
			mcplib.WithDescription(`Run flux balance analysis on a model with a media and interpret the result.

Returns the growth rate with a qualitative tier (fast/moderate/slow/very
slow), detected metabolism (aerobic respiration vs anaerobic/
fermentation, from oxygen uptake), the detected primary carbon source,
and the uptake/secretion fluxes. Drafts typically report zero growth —
gapfill first.`),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(true),
			mcplib.WithString("model_id",
				mcplib.Description("ID of the model to analyze"),
				mcplib.Required(),
			),
			mcplib.WithString("media_id",
				mcplib.Description("ID of the media to analyze on"),
				mcplib.Required(),
			),
			mcplib.WithString("objective_id",
				mcplib.Description("Objective reaction ID; the modeling service's biomass default when omitted"),
			),
		),
		s.handleRunFBA,
	)

	// get_model — inspect one model.
	s.mcpServer.AddTool(
		mcplib.NewTool("get_model",
			mcplib.WithDescription("Get one model's summary: lifecycle state, predecessor, reaction/metabolite/gene counts, and cached growth rate."),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("model_id",
				mcplib.Description("Model ID"),
				mcplib.Required(),
			),
		),
		s.handleGetModel,
	)

	// list_models — enumerate session models.
	s.mcpServer.AddTool(
		mcplib.NewTool("list_models",
			mcplib.WithDescription("List the models in this session, optionally filtered by lifecycle state ('draft' or 'gapfilled')."),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("state",
				mcplib.Description("Optional lifecycle filter"),
				mcplib.Enum("draft", "gapfilled"),
			),
		),
		s.handleListModels,
	)

	// list_media — enumerate session media.
	s.mcpServer.AddTool(
		mcplib.NewTool("list_media",
			mcplib.WithDescription("List the growth media in this session, predefined and user-created."),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithBoolean("predefined_only",
				mcplib.Description("When true, list only the predefined media library"),
			),
		),
		s.handleListMedia,
	)

	// delete_model — remove exactly one model.
	s.mcpServer.AddTool(
		mcplib.NewTool("delete_model",
			mcplib.WithDescription(`Delete one model by ID. Removes exactly that entry: deleting a draft
never deletes the gapfilled model derived from it, and vice versa.`),
			mcplib.WithDestructiveHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(false),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("model_id",
				mcplib.Description("Model ID to delete"),
				mcplib.Required(),
			),
		),
		s.handleDeleteModel,
	)
}

func (s *Server) handleSearchBiochem(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	query := request.GetString("query", "")
	if query == "" {
		return errorResult("query is required"), nil
	}
	kind := request.GetString("kind", "both")
	limit := request.GetInt("limit", 20)

	out := map[string]any{"query": query}
	if kind == "compound" || kind == "both" {
		compounds, truncated := s.index.SearchCompounds(query, limit)
		out["compounds"] = compounds
		out["compounds_truncated"] = truncated
	}
	if kind == "reaction" || kind == "both" {
		reactions, truncated := s.index.SearchReactions(query, limit)
		out["reactions"] = reactions
		out["reactions_truncated"] = truncated
	}
	return jsonResult(out), nil
}

func (s *Server) handleGetCompound(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	id := request.GetString("compound_id", "")
	if id == "" {
		return errorResult("compound_id is required"), nil
	}
	c, err := s.index.GetCompound(id)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(c), nil
}

func (s *Server) handleGetReaction(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	id := request.GetString("reaction_id", "")
	if id == "" {
		return errorResult("reaction_id is required"), nil
	}
	base := biochem.StripCompartment(id)
	r, err := s.index.GetReaction(base)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	out := map[string]any{
		"id":         r.ID,
		"name":       r.Name,
		"equation":   r.Equation,
		"ec_numbers": r.ECNumbers,
		"pathways":   r.Pathways,
		"annotated":  len(r.Pathways) > 0,
	}
	if base != id {
		out["queried_id"] = id
	}
	return jsonResult(out), nil
}

func (s *Server) handleBuildMedia(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	rawIDs := request.GetString("compound_ids", "")
	if rawIDs == "" {
		return errorResult("compound_ids is required"), nil
	}
	var compoundIDs []string
	for _, id := range strings.Split(rawIDs, ",") {
		if id = strings.TrimSpace(id); id != "" {
			compoundIDs = append(compoundIDs, id)
		}
	}

	overrides, err := parseCustomBounds(request.GetString("custom_bounds", ""))
	if err != nil {
		return errorResult(err.Error()), nil
	}

	built, err := s.mediaBuilder.Build(mediasvc.BuildInput{
		Name:         request.GetString("name", ""),
		CompoundIDs:  compoundIDs,
		DefaultBound: request.GetFloat("default_uptake_bound", 100),
		Overrides:    overrides,
	})
	if err != nil {
		return errorResult(fmt.Sprintf("build media failed: %v", err)), nil
	}
	return jsonResult(built), nil
}

// parseCustomBounds decodes the custom_bounds JSON argument:
// {"cpd00027": [-5, 100], ...}.
func parseCustomBounds(raw string) (map[string]model.Bounds, error) {
	if raw == "" {
		return nil, nil
	}
	var pairs map[string][2]float64
	if err := json.Unmarshal([]byte(raw), &pairs); err != nil {
		return nil, fmt.Errorf(`custom_bounds must be a JSON object of [lower, upper] pairs, e.g. {"cpd00027": [-5, 100]}: %v`, err)
	}
	out := make(map[string]model.Bounds, len(pairs))
	for id, b := range pairs {
		if b[0] > b[1] {
			return nil, fmt.Errorf("custom_bounds for %s: lower bound %g exceeds upper bound %g", id, b[0], b[1])
		}
		out[id] = model.Bounds{Lower: b[0], Upper: b[1]}
	}
	return out, nil
}

func (s *Server) handleBuildModel(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	genomeSource := request.GetString("genome_source", "")
	if genomeSource == "" {
		return errorResult("genome_source is required"), nil
	}

	built, err := s.modelBuilder.Build(ctx, modelbuild.BuildInput{
		BaseName:     request.GetString("name", ""),
		GenomeSource: genomeSource,
		Template:     request.GetString("template", ""),
	})
	if err != nil {
		return errorResult(fmt.Sprintf("build model failed: %v", err)), nil
	}
	return jsonResult(compactModel(built)), nil
}

func (s *Server) handleGapfillModel(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	modelID := request.GetString("model_id", "")
	mediaID := request.GetString("media_id", "")
	if modelID == "" || mediaID == "" {
		return errorResult("model_id and media_id are required"), nil
	}
	target := request.GetFloat("target_growth_rate", defaultTargetGrowth)

	result, err := s.gapfiller.Run(ctx, modelID, mediaID, target)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return errorResult(err.Error()), nil
		case errors.Is(err, solver.ErrInfeasible):
			return errorResult(err.Error()), nil
		default:
			return errorResult(fmt.Sprintf("gapfill failed: %v", err)), nil
		}
	}
	return jsonResult(result), nil
}

func (s *Server) handleRunFBA(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	modelID := request.GetString("model_id", "")
	mediaID := request.GetString("media_id", "")
	if modelID == "" || mediaID == "" {
		return errorResult("model_id and media_id are required"), nil
	}

	interp, raw, err := s.fbaSvc.Run(ctx, modelID, mediaID, request.GetString("objective_id", ""))
	if err != nil {
		return errorResult(fmt.Sprintf("fba failed: %v", err)), nil
	}
	return jsonResult(map[string]any{
		"interpretation": interp,
		"fluxes":         compactFBAResult(raw),
	}), nil
}

func (s *Server) handleGetModel(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	id := request.GetString("model_id", "")
	if id == "" {
		return errorResult("model_id is required"), nil
	}
	m, err := s.models.Get(id)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(compactModel(m)), nil
}

func (s *Server) handleListModels(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var filter *model.LifecycleState
	if raw := request.GetString("state", ""); raw != "" {
		state := model.LifecycleState(raw)
		if !state.Valid() {
			return errorResult(fmt.Sprintf("unknown state %q: use 'draft' or 'gapfilled'", raw)), nil
		}
		filter = &state
	}

	models := s.models.List(filter)
	total := len(models)
	if total > maxListedModels {
		models = models[:maxListedModels]
	}
	out := make([]map[string]any, len(models))
	for i, m := range models {
		out[i] = compactModel(m)
	}
	return jsonResult(map[string]any{"models": out, "total": total}), nil
}

func (s *Server) handleListMedia(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var filter *bool
	if request.GetBool("predefined_only", false) {
		t := true
		filter = &t
	}

	media := s.media.List(filter)
	total := len(media)
	if total > maxListedMedia {
		media = media[:maxListedMedia]
	}
	out := make([]map[string]any, len(media))
	for i, m := range media {
		out[i] = compactMedia(m)
	}
	return jsonResult(map[string]any{"media": out, "total": total}), nil
}

func (s *Server) handleDeleteModel(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	id := request.GetString("model_id", "")
	if id == "" {
		return errorResult("model_id is required"), nil
	}
	if err := s.models.Delete(id); err != nil {
		return errorResult(err.Error()), nil
	}
	s.logger.Info("model deleted", "model_id", id)
	return jsonResult(map[string]any{"model_id": id, "status": "deleted"}), nil
}
