package biochem

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/modelforge-bio/modelforge/internal/model"
)

// Load parses the compound and reaction reference tables (tab-separated,
// one header row, one record per row) and builds the index. The two files
// are parsed concurrently. Structural problems — a missing required
// column, a duplicate ID — fail the whole load; there is no partial index.
func Load(ctx context.Context, compoundsPath, reactionsPath string) (*Index, error) {
	ix := &Index{
		compounds: make(map[string]model.Compound),
		reactions: make(map[string]model.Reaction),
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		f, err := os.Open(compoundsPath)
		if err != nil {
			return fmt.Errorf("biochem: open compounds table: %w", err)
		}
		defer f.Close()
		return ix.loadCompounds(f)
	})
	g.Go(func() error {
		f, err := os.Open(reactionsPath)
		if err != nil {
			return fmt.Errorf("biochem: open reactions table: %w", err)
		}
		defer f.Close()
		return ix.loadReactions(f)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ix, nil
}

// LoadTables builds the index from already-open table readers. Load is
// the file-path convenience wrapper around this.
func LoadTables(compounds, reactions io.Reader) (*Index, error) {
	ix := &Index{
		compounds: make(map[string]model.Compound),
		reactions: make(map[string]model.Reaction),
	}
	if err := ix.loadCompounds(compounds); err != nil {
		return nil, err
	}
	if err := ix.loadReactions(reactions); err != nil {
		return nil, err
	}
	return ix, nil
}

// header maps lowercased column names to positions and fetches fields
// from rows that may be shorter than the header.
type header map[string]int

func readHeader(r *csv.Reader, required ...string) (header, error) {
	row, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	h := make(header, len(row))
	for i, name := range row {
		h[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, ok := h[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}
	return h, nil
}

func (h header) field(row []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func newTSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	return cr
}

func (ix *Index) loadCompounds(r io.Reader) error {
	cr := newTSVReader(r)
	h, err := readHeader(cr, "id", "name")
	if err != nil {
		return fmt.Errorf("biochem: compounds table: %w", err)
	}

	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("biochem: compounds table line %d: %w", line, err)
		}
		id := h.field(row, "id")
		if id == "" {
			continue
		}
		if _, dup := ix.compounds[id]; dup {
			return fmt.Errorf("biochem: compounds table line %d: duplicate id %q", line, id)
		}

		c := model.Compound{
			ID:      id,
			Name:    h.field(row, "name"),
			Formula: nullable(h.field(row, "formula")),
			Aliases: splitAliases(h.field(row, "aliases")),
		}
		if raw := nullable(h.field(row, "mass")); raw != "" {
			if m, err := strconv.ParseFloat(raw, 64); err == nil {
				c.Mass = m
			}
		}
		ix.compounds[id] = c
		ix.compoundOrder = append(ix.compoundOrder, id)
	}
	return nil
}

func (ix *Index) loadReactions(r io.Reader) error {
	cr := newTSVReader(r)
	h, err := readHeader(cr, "id", "name")
	if err != nil {
		return fmt.Errorf("biochem: reactions table: %w", err)
	}

	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("biochem: reactions table line %d: %w", line, err)
		}
		id := h.field(row, "id")
		if id == "" {
			continue
		}
		if _, dup := ix.reactions[id]; dup {
			return fmt.Errorf("biochem: reactions table line %d: duplicate id %q", line, id)
		}

		ix.reactions[id] = model.Reaction{
			ID:        id,
			Name:      h.field(row, "name"),
			Equation:  nullable(h.field(row, "equation")),
			ECNumbers: splitList(nullable(h.field(row, "ec_numbers"))),
			Pathways:  ParsePathways(h.field(row, "pathways")),
		}
		ix.reactionOrder = append(ix.reactionOrder, id)
	}
	return nil
}

// nullable collapses the literal placeholders the reference tables use
// for absent values into "".
func nullable(s string) string {
	switch strings.ToLower(s) {
	case "null", "none", "nan", "-":
		return ""
	}
	return s
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == '|' }) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitAliases(s string) []string {
	if nullable(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == '|' }) {
		p := strings.TrimSpace(part)
		// Alias fields may carry a "Source: value" prefix; keep the value.
		if i := strings.Index(p, ":"); i >= 0 {
			p = strings.TrimSpace(p[i+1:])
		}
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
