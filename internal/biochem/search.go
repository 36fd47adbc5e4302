package biochem

import (
	"sort"
	"strings"

	"github.com/modelforge-bio/modelforge/internal/model"
)

// Match ranks, best first. Exact name/alias matches always outrank
// prefix matches, which outrank plain substring matches.
const (
	rankExact = iota
	rankPrefix
	rankSubstring
)

// SearchCompounds performs a case-insensitive substring search over
// compound names and aliases. Results are ranked (exact, prefix,
// substring; load order within a rank), capped at limit, and truncated
// reports whether more matches existed than were returned.
func (ix *Index) SearchCompounds(query string, limit int) (results []model.Compound, truncated bool) {
	matches := ix.match(query, ix.compoundOrder, func(id string) (string, []string) {
		c := ix.compounds[id]
		return c.Name, c.Aliases
	})
	matches, truncated = capMatches(matches, limit)
	results = make([]model.Compound, len(matches))
	for i, id := range matches {
		results[i] = ix.compounds[id]
	}
	return results, truncated
}

// SearchReactions is the reaction analogue of SearchCompounds.
func (ix *Index) SearchReactions(query string, limit int) (results []model.Reaction, truncated bool) {
	matches := ix.match(query, ix.reactionOrder, func(id string) (string, []string) {
		r := ix.reactions[id]
		return r.Name, nil
	})
	matches, truncated = capMatches(matches, limit)
	results = make([]model.Reaction, len(matches))
	for i, id := range matches {
		results[i] = ix.reactions[id]
	}
	return results, truncated
}

type scored struct {
	id   string
	rank int
	pos  int // load order; keeps ties deterministic
}

func (ix *Index) match(query string, order []string, fields func(id string) (name string, aliases []string)) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var hits []scored
	for pos, id := range order {
		name, aliases := fields(id)
		rank, ok := rankMatch(q, name, aliases)
		if !ok && strings.EqualFold(q, id) {
			rank, ok = rankExact, true
		}
		if ok {
			hits = append(hits, scored{id: id, rank: rank, pos: pos})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].rank != hits[j].rank {
			return hits[i].rank < hits[j].rank
		}
		return hits[i].pos < hits[j].pos
	})

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.id
	}
	return ids
}

func rankMatch(q, name string, aliases []string) (int, bool) {
	best := -1
	consider := func(field string) {
		f := strings.ToLower(field)
		switch {
		case f == q:
			if best == -1 || rankExact < best {
				best = rankExact
			}
		case strings.HasPrefix(f, q):
			if best == -1 || rankPrefix < best {
				best = rankPrefix
			}
		case strings.Contains(f, q):
			if best == -1 || rankSubstring < best {
				best = rankSubstring
			}
		}
	}
	consider(name)
	for _, a := range aliases {
		consider(a)
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}

func capMatches(ids []string, limit int) ([]string, bool) {
	if limit <= 0 || len(ids) <= limit {
		return ids, false
	}
	return ids[:limit], true
}
