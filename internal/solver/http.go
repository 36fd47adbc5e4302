package solver

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/modelforge-bio/modelforge/internal/model"
	"github.com/modelforge-bio/modelforge/internal/telemetry"
)

// Client talks to the modeling service over HTTP. FBA responses are
// cached in an LRU keyed by (model, media, objective) content — FBA is
// deterministic for fixed inputs, and the agent tends to re-run it on the
// same model/media pair while exploring.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	fbaCache *lru.Cache[string, FBAResult]

	callDuration metric.Float64Histogram
}

// NewClient creates an HTTP solver client. cacheSize <= 0 disables the
// FBA cache.
func NewClient(baseURL string, timeout time.Duration, cacheSize int, logger *slog.Logger) (*Client, error) {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
	if cacheSize > 0 {
		cache, err := lru.New[string, FBAResult](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("solver: create fba cache: %w", err)
		}
		c.fbaCache = cache
	}

	meter := telemetry.Meter("modelforge/solver")
	dur, _ := meter.Float64Histogram("modelforge.solver.call.duration",
		metric.WithDescription("Wall-clock time of modeling service calls (ms)"),
		metric.WithUnit("ms"),
	)
	c.callDuration = dur

	return c, nil
}

type gapfillRequest struct {
	ModelID      string             `json:"model_id"`
	Reactions    []string           `json:"reactions"`
	Media        map[string][2]float64 `json:"media"`
	TargetGrowth float64            `json:"target_growth"`
}

type gapfillResponse struct {
	Feasible  bool     `json:"feasible"`
	Reactions []string `json:"reactions"`
	Detail    string   `json:"detail,omitempty"`
}

// Gapfill implements Gapfiller.
func (c *Client) Gapfill(ctx context.Context, m model.MetabolicModel, media model.Media, targetGrowth float64) ([]string, error) {
	req := gapfillRequest{
		ModelID:      m.ID,
		Reactions:    m.Reactions,
		Media:        mediaPayload(media),
		TargetGrowth: targetGrowth,
	}
	var resp gapfillResponse
	if err := c.post(ctx, "/v1/gapfill", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Feasible {
		if resp.Detail != "" {
			return nil, fmt.Errorf("%w: %s", ErrInfeasible, resp.Detail)
		}
		return nil, fmt.Errorf("%w: no gapfill solution for model %s on media %s", ErrInfeasible, m.ID, media.ID)
	}
	return resp.Reactions, nil
}

type fbaRequest struct {
	ModelID     string                `json:"model_id"`
	Reactions   []string              `json:"reactions"`
	Media       map[string][2]float64 `json:"media"`
	ObjectiveID string                `json:"objective_id,omitempty"`
}

type fbaResponse struct {
	Feasible bool      `json:"feasible"`
	Result   FBAResult `json:"result"`
	Detail   string    `json:"detail,omitempty"`
}

// RunFBA implements FBARunner.
func (c *Client) RunFBA(ctx context.Context, m model.MetabolicModel, media model.Media, objectiveID string) (FBAResult, error) {
	key := fbaCacheKey(m, media, objectiveID)
	if c.fbaCache != nil {
		if cached, ok := c.fbaCache.Get(key); ok {
			c.logger.Debug("solver: fba cache hit", "model", m.ID, "media", media.ID)
			return cached, nil
		}
	}

	req := fbaRequest{
		ModelID:     m.ID,
		Reactions:   m.Reactions,
		Media:       mediaPayload(media),
		ObjectiveID: objectiveID,
	}
	var resp fbaResponse
	if err := c.post(ctx, "/v1/fba", req, &resp); err != nil {
		return FBAResult{}, err
	}
	if !resp.Feasible {
		if resp.Detail != "" {
			return FBAResult{}, fmt.Errorf("%w: %s", ErrInfeasible, resp.Detail)
		}
		return FBAResult{}, fmt.Errorf("%w: fba infeasible for model %s on media %s", ErrInfeasible, m.ID, media.ID)
	}

	if c.fbaCache != nil {
		c.fbaCache.Add(key, resp.Result)
	}
	return resp.Result, nil
}

type buildRequest struct {
	GenomeSource string `json:"genome_source"`
	Template     string `json:"template"`
}

type buildResponse struct {
	Output BuildOutput `json:"output"`
	Detail string      `json:"detail,omitempty"`
}

// BuildModel implements Builder.
func (c *Client) BuildModel(ctx context.Context, genomeSource, template string) (BuildOutput, error) {
	req := buildRequest{GenomeSource: genomeSource, Template: template}
	var resp buildResponse
	if err := c.post(ctx, "/v1/build", req, &resp); err != nil {
		return BuildOutput{}, err
	}
	return resp.Output, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("solver: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("solver: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.callDuration.Record(ctx, float64(time.Since(start).Milliseconds()),
		metric.WithAttributes(attribute.String("endpoint", path)))
	if err != nil {
		return fmt.Errorf("solver: call %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("solver: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("solver: %s returned status %d: %s", path, resp.StatusCode, string(raw))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("solver: unmarshal response: %w", err)
	}
	return nil
}

func mediaPayload(media model.Media) map[string][2]float64 {
	out := make(map[string][2]float64, len(media.Compounds))
	for id, b := range media.Compounds {
		out[id] = [2]float64{b.Lower, b.Upper}
	}
	return out
}

// fbaCacheKey hashes the model reaction set, media bounds, and objective
// so stale reaction lists can never alias a cache entry.
func fbaCacheKey(m model.MetabolicModel, media model.Media, objectiveID string) string {
	h := sha256.New()
	io.WriteString(h, m.ID)
	io.WriteString(h, "\x00")
	for _, r := range m.Reactions {
		io.WriteString(h, r)
		io.WriteString(h, ";")
	}
	io.WriteString(h, "\x00")
	io.WriteString(h, media.ID)
	io.WriteString(h, "\x00")
	ids := make([]string, 0, len(media.Compounds))
	for id := range media.Compounds {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		b := media.Compounds[id]
		fmt.Fprintf(h, "%s=%g,%g;", id, b.Lower, b.Upper)
	}
	io.WriteString(h, "\x00")
	io.WriteString(h, objectiveID)
	return hex.EncodeToString(h.Sum(nil))
}
