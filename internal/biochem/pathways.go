package biochem

import (
	"regexp"
	"strings"
)

// compartmentSuffix matches a single trailing compartment tag on a model
// identifier: an underscore, one lowercase letter, and an optional index
// (e.g. "_c0", "_e0", "_p"). This is the one normalization rule for
// mapping model-scoped IDs back to base reference IDs; it is applied
// here and nowhere else.
var compartmentSuffix = regexp.MustCompile(`_[a-z]\d*$`)

// StripCompartment removes a trailing compartment tag from a reaction or
// compound identifier, returning the base reference ID. IDs without a
// compartment tag pass through unchanged.
func StripCompartment(id string) string {
	return compartmentSuffix.ReplaceAllString(id, "")
}

// ParsePathways splits a raw multi-valued pathway field into a normalized
// ordered list. The field may separate entries with ';' or '|' and may be
// empty or a null placeholder — an empty result is valid and means the
// reaction is unannotated, which is distinct from a failed lookup.
func ParsePathways(raw string) []string {
	if nullable(strings.TrimSpace(raw)) == "" {
		return nil
	}
	var out []string
	seen := make(map[string]struct{})
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool { return r == ';' || r == '|' }) {
		p := strings.TrimSpace(part)
		if nullable(p) == "" {
			continue
		}
		// Some curation sources prefix entries with a category tag
		// ("MetaCycle: Glycolysis"); keep the pathway name.
		if i := strings.Index(p, ":"); i >= 0 {
			if tail := strings.TrimSpace(p[i+1:]); tail != "" {
				p = tail
			}
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
