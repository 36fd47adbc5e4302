package model

import "time"

// Bounds is a (lower, upper) exchange-flux bound pair in mmol/gDW/hr.
// Sign convention: a negative lower bound permits uptake (consumption),
// a positive upper bound permits secretion.
type Bounds struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Media is a growth-media definition: the compounds available to a model
// with per-compound exchange bounds. Media are never mutated in place —
// edits produce a new Media under a new identifier.
type Media struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Compounds  map[string]Bounds `json:"compounds"`
	Predefined bool              `json:"predefined"`
	CreatedAt  time.Time         `json:"created_at"`
}
