// Package model defines the domain types shared across ModelForge:
// biochemistry reference records, media, metabolic models, and the
// structured result types returned by the tool layer.
package model

// Compound is a reference biochemistry compound record.
// Immutable once loaded from the reference tables.
type Compound struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Formula string   `json:"formula,omitempty"`
	Mass    float64  `json:"mass,omitempty"`
	Aliases []string `json:"aliases,omitempty"`
}

// Reaction is a reference biochemistry reaction record.
// Pathways is ordered and may be empty — an unannotated reaction is a
// legitimate data state, not a load error. Immutable once loaded.
type Reaction struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Equation  string   `json:"equation,omitempty"`
	ECNumbers []string `json:"ec_numbers,omitempty"`
	Pathways  []string `json:"pathways,omitempty"`
}

// PrimaryPathway returns the first curated pathway for the reaction,
// or "" when the reaction is unannotated.
func (r Reaction) PrimaryPathway() string {
	if len(r.Pathways) == 0 {
		return ""
	}
	return r.Pathways[0]
}
