package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/modelforge-bio/modelforge/internal/biochem"
	"github.com/modelforge-bio/modelforge/internal/model"
	"github.com/modelforge-bio/modelforge/internal/service/fba"
	"github.com/modelforge-bio/modelforge/internal/service/gapfill"
	mediasvc "github.com/modelforge-bio/modelforge/internal/service/media"
	"github.com/modelforge-bio/modelforge/internal/service/modelbuild"
	"github.com/modelforge-bio/modelforge/internal/solver"
	"github.com/modelforge-bio/modelforge/internal/store"
)

const testCompoundsTSV = `id	name	formula	mass	aliases
cpd00001	H2O	H2O	18.01	Water
cpd00007	O2	O2	31.99	Oxygen; Searchname: dioxygen
cpd00027	D-Glucose	C6H12O6	180.16	Glucose; Dextrose
`

const testReactionsTSV = `id	name	equation	ec_numbers	pathways
rxn00148	hexokinase	(1) cpd00027 + (1) cpd00002 <=> (1) cpd00008	2.7.1.1	Glycolysis
rxn00459	phosphoglucomutase		5.4.2.2	Glycolysis; Starch metabolism
rxn05064	orphan transporter		null	null
`

type env struct {
	server *Server
	models *store.ModelStore
	media  *store.MediaStore
	stub   *solver.Stub
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ix, err := biochem.LoadTables(strings.NewReader(testCompoundsTSV), strings.NewReader(testReactionsTSV))
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)
	models := store.NewModelStore()
	media := store.NewMediaStore()
	stub := &solver.Stub{
		BuildModelFunc: func(ctx context.Context, genomeSource, template string) (solver.BuildOutput, error) {
			return solver.BuildOutput{
				Reactions:   []string{"rxn09000_c0", "rxn09001_c0"},
				Metabolites: []string{"cpd00027_c0"},
				GeneCount:   812,
			}, nil
		},
		GapfillFunc: func(ctx context.Context, m model.MetabolicModel, md model.Media, target float64) ([]string, error) {
			return append(append([]string{}, m.Reactions...), "rxn00148_c0", "rxn05064_c0"), nil
		},
		RunFBAFunc: func(ctx context.Context, m model.MetabolicModel, md model.Media, objective string) (solver.FBAResult, error) {
			return solver.FBAResult{
				ObjectiveValue: 0.42,
				Uptake: []solver.FluxEntry{
					{ID: "cpd00007_e0", Name: "O2", Flux: -4},
					{ID: "cpd00027_e0", Name: "D-Glucose", Flux: -5},
				},
			}, nil
		},
	}

	server := New(
		ix,
		models,
		media,
		mediasvc.NewBuilder(ix, media, logger),
		modelbuild.NewBuilder(stub, models, logger),
		gapfill.New(models, media, ix, stub, stub, logger),
		fba.NewInterpreter(stub, models, media, logger),
		logger,
		"test",
	)
	return &env{server: server, models: models, media: media, stub: stub}
}

func callRequest(name string, args map[string]any) mcplib.CallToolRequest {
	return mcplib.CallToolRequest{
		Params: mcplib.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// toolText extracts the first TextContent text from a CallToolResult.
func toolText(t *testing.T, result *mcplib.CallToolResult) string {
	t.Helper()
	for _, c := range result.Content {
		if tc, ok := c.(mcplib.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatal("no TextContent found in tool result")
	return ""
}

func decode(t *testing.T, result *mcplib.CallToolResult, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(toolText(t, result)), out))
}

// mustBuildMedia creates a glucose media through the tool handler.
func mustBuildMedia(t *testing.T, e *env) string {
	t.Helper()
	result, err := e.server.handleBuildMedia(context.Background(), callRequest("build_media", map[string]any{
		"compound_ids":  "cpd00027,cpd00007,cpd00001",
		"custom_bounds": `{"cpd00027": [-5, 100]}`,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, toolText(t, result))

	var resp struct {
		ID string `json:"id"`
	}
	decode(t, result, &resp)
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

// mustBuildModel creates a draft model through the tool handler.
func mustBuildModel(t *testing.T, e *env, name string) string {
	t.Helper()
	result, err := e.server.handleBuildModel(context.Background(), callRequest("build_model", map[string]any{
		"genome_source": "GCF_000005845.2",
		"name":          name,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, toolText(t, result))

	var resp struct {
		ID string `json:"id"`
	}
	decode(t, result, &resp)
	return resp.ID
}

func TestHandleSearchBiochem(t *testing.T) {
	e := newEnv(t)

	result, err := e.server.handleSearchBiochem(context.Background(), callRequest("search_biochem", map[string]any{
		"query": "glucose",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var resp struct {
		Compounds []model.Compound `json:"compounds"`
		Reactions []model.Reaction `json:"reactions"`
	}
	decode(t, result, &resp)
	require.NotEmpty(t, resp.Compounds)
	assert.Equal(t, "cpd00027", resp.Compounds[0].ID, "exact alias match ranks first")

	// kind filter limits the record kinds searched.
	result, err = e.server.handleSearchBiochem(context.Background(), callRequest("search_biochem", map[string]any{
		"query": "hexokinase",
		"kind":  "reaction",
	}))
	require.NoError(t, err)
	var rxnOnly map[string]any
	decode(t, result, &rxnOnly)
	assert.Contains(t, rxnOnly, "reactions")
	assert.NotContains(t, rxnOnly, "compounds")
}

func TestHandleSearchBiochem_MissingQuery(t *testing.T) {
	e := newEnv(t)
	result, err := e.server.handleSearchBiochem(context.Background(), callRequest("search_biochem", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleGetCompound(t *testing.T) {
	e := newEnv(t)

	result, err := e.server.handleGetCompound(context.Background(), callRequest("get_compound", map[string]any{
		"compound_id": "cpd00027",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var c model.Compound
	decode(t, result, &c)
	assert.Equal(t, "D-Glucose", c.Name)

	result, err = e.server.handleGetCompound(context.Background(), callRequest("get_compound", map[string]any{
		"compound_id": "cpd99999",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleGetReaction_StripsCompartment(t *testing.T) {
	e := newEnv(t)

	result, err := e.server.handleGetReaction(context.Background(), callRequest("get_reaction", map[string]any{
		"reaction_id": "rxn00148_c0",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var resp struct {
		ID        string   `json:"id"`
		QueriedID string   `json:"queried_id"`
		Pathways  []string `json:"pathways"`
		Annotated bool     `json:"annotated"`
	}
	decode(t, result, &resp)
	assert.Equal(t, "rxn00148", resp.ID)
	assert.Equal(t, "rxn00148_c0", resp.QueriedID)
	assert.True(t, resp.Annotated)
	assert.Equal(t, []string{"Glycolysis"}, resp.Pathways)
}

func TestHandleGetReaction_Unannotated(t *testing.T) {
	e := newEnv(t)

	result, err := e.server.handleGetReaction(context.Background(), callRequest("get_reaction", map[string]any{
		"reaction_id": "rxn05064",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, "an unannotated reaction is a normal data state, not an error")

	var resp struct {
		Annotated bool     `json:"annotated"`
		Pathways  []string `json:"pathways"`
	}
	decode(t, result, &resp)
	assert.False(t, resp.Annotated)
	assert.Empty(t, resp.Pathways)
}

func TestHandleBuildMedia(t *testing.T) {
	e := newEnv(t)
	id := mustBuildMedia(t, e)

	stored, err := e.media.Get(id)
	require.NoError(t, err)
	assert.Equal(t, model.Bounds{Lower: -5, Upper: 100}, stored.Compounds["cpd00027"])
	assert.Equal(t, model.Bounds{Lower: -100, Upper: 100}, stored.Compounds["cpd00007"])
}

func TestHandleBuildMedia_UnknownCompounds(t *testing.T) {
	e := newEnv(t)

	result, err := e.server.handleBuildMedia(context.Background(), callRequest("build_media", map[string]any{
		"compound_ids": "cpd00027,cpd99998,cpd99999",
	}))
	require.NoError(t, err)
	require.True(t, result.IsError)

	// Every offending ID is reported, not just the first.
	text := toolText(t, result)
	assert.Contains(t, text, "cpd99998")
	assert.Contains(t, text, "cpd99999")
	assert.Empty(t, e.media.List(nil), "no partial media is created")
}

func TestHandleBuildMedia_BadBoundsJSON(t *testing.T) {
	e := newEnv(t)

	result, err := e.server.handleBuildMedia(context.Background(), callRequest("build_media", map[string]any{
		"compound_ids":  "cpd00027",
		"custom_bounds": "not json",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = e.server.handleBuildMedia(context.Background(), callRequest("build_media", map[string]any{
		"compound_ids":  "cpd00027",
		"custom_bounds": `{"cpd00027": [100, -5]}`,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, toolText(t, result), "exceeds upper bound")
}

func TestHandleBuildModel(t *testing.T) {
	e := newEnv(t)
	id := mustBuildModel(t, e, "ecoli")
	assert.Equal(t, "ecoli.draft", id)

	var resp struct {
		ID             string   `json:"id"`
		State          string   `json:"state"`
		ReactionCount  int      `json:"reaction_count"`
		GeneCount      int      `json:"gene_count"`
		ReactionSample []string `json:"reaction_sample"`
	}
	result, err := e.server.handleGetModel(context.Background(), callRequest("get_model", map[string]any{
		"model_id": id,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	decode(t, result, &resp)
	assert.Equal(t, "draft", resp.State)
	assert.Equal(t, 2, resp.ReactionCount)
	assert.Equal(t, 812, resp.GeneCount)
	assert.Len(t, resp.ReactionSample, 2)
}

func TestHandleGapfillModel(t *testing.T) {
	e := newEnv(t)
	mediaID := mustBuildMedia(t, e)
	modelID := mustBuildModel(t, e, "ecoli")

	result, err := e.server.handleGapfillModel(context.Background(), callRequest("gapfill_model", map[string]any{
		"model_id": modelID,
		"media_id": mediaID,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, toolText(t, result))

	var resp model.GapfillResult
	decode(t, result, &resp)
	assert.Equal(t, "ecoli.gapfilled", resp.ModelID)
	assert.Equal(t, 2, resp.ReactionsAdded)
	assert.Equal(t, 1, resp.UnannotatedCount)
	assert.True(t, resp.TargetMet)

	// The draft survives alongside the new gapfilled model.
	_, err = e.models.Get(modelID)
	assert.NoError(t, err)
	_, err = e.models.Get(resp.ModelID)
	assert.NoError(t, err)
}

func TestHandleGapfillModel_NotFound(t *testing.T) {
	e := newEnv(t)
	mediaID := mustBuildMedia(t, e)

	result, err := e.server.handleGapfillModel(context.Background(), callRequest("gapfill_model", map[string]any{
		"model_id": "missing.draft",
		"media_id": mediaID,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, toolText(t, result), "not found")
}

func TestHandleRunFBA(t *testing.T) {
	e := newEnv(t)
	mediaID := mustBuildMedia(t, e)
	modelID := mustBuildModel(t, e, "ecoli")

	result, err := e.server.handleRunFBA(context.Background(), callRequest("run_fba", map[string]any{
		"model_id": modelID,
		"media_id": mediaID,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, toolText(t, result))

	var resp struct {
		Interpretation model.FluxInterpretation `json:"interpretation"`
		Fluxes         struct {
			ObjectiveValue float64 `json:"objective_value"`
		} `json:"fluxes"`
	}
	decode(t, result, &resp)
	assert.Equal(t, fba.TierModerate, resp.Interpretation.GrowthTier)
	assert.Equal(t, fba.MetabolismAerobic, resp.Interpretation.Metabolism)
	assert.Equal(t, "glucose", resp.Interpretation.CarbonSource)
	assert.InDelta(t, 0.42, resp.Fluxes.ObjectiveValue, 1e-9)
}

func TestHandleListModels(t *testing.T) {
	e := newEnv(t)
	mediaID := mustBuildMedia(t, e)
	modelID := mustBuildModel(t, e, "ecoli")

	_, err := e.server.handleGapfillModel(context.Background(), callRequest("gapfill_model", map[string]any{
		"model_id": modelID,
		"media_id": mediaID,
	}))
	require.NoError(t, err)

	var resp struct {
		Models []map[string]any `json:"models"`
		Total  int              `json:"total"`
	}

	result, err := e.server.handleListModels(context.Background(), callRequest("list_models", map[string]any{}))
	require.NoError(t, err)
	decode(t, result, &resp)
	assert.Equal(t, 2, resp.Total)

	result, err = e.server.handleListModels(context.Background(), callRequest("list_models", map[string]any{
		"state": "gapfilled",
	}))
	require.NoError(t, err)
	decode(t, result, &resp)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "ecoli.gapfilled", resp.Models[0]["id"])

	result, err = e.server.handleListModels(context.Background(), callRequest("list_models", map[string]any{
		"state": "published",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleListMedia(t *testing.T) {
	e := newEnv(t)
	mustBuildMedia(t, e)
	e.media.Put(model.Media{ID: "lb_rich", Name: "LB rich", Predefined: true})

	var resp struct {
		Media []map[string]any `json:"media"`
		Total int              `json:"total"`
	}

	result, err := e.server.handleListMedia(context.Background(), callRequest("list_media", map[string]any{}))
	require.NoError(t, err)
	decode(t, result, &resp)
	assert.Equal(t, 2, resp.Total)

	result, err = e.server.handleListMedia(context.Background(), callRequest("list_media", map[string]any{
		"predefined_only": true,
	}))
	require.NoError(t, err)
	decode(t, result, &resp)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "lb_rich", resp.Media[0]["id"])
}

func TestHandleDeleteModel(t *testing.T) {
	e := newEnv(t)
	mediaID := mustBuildMedia(t, e)
	modelID := mustBuildModel(t, e, "ecoli")

	gapResult, err := e.server.handleGapfillModel(context.Background(), callRequest("gapfill_model", map[string]any{
		"model_id": modelID,
		"media_id": mediaID,
	}))
	require.NoError(t, err)
	var gap model.GapfillResult
	decode(t, gapResult, &gap)

	result, err := e.server.handleDeleteModel(context.Background(), callRequest("delete_model", map[string]any{
		"model_id": modelID,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	// Deleting the draft never cascades to its gapfilled successor.
	_, err = e.models.Get(modelID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = e.models.Get(gap.ModelID)
	assert.NoError(t, err)

	result, err = e.server.handleDeleteModel(context.Background(), callRequest("delete_model", map[string]any{
		"model_id": modelID,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
