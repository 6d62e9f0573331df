// Package recipe contains the recipe entity as it travels over the wire:
// the structure the LLM is asked to emit, the structure the client renders.
package recipe

import "strings"

// Ingredient is a single recipe ingredient. OnSale is mutated exactly once,
// by the ingredient matcher, after the deal set is known.
type Ingredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Category string  `json:"category"`
	OnSale   bool    `json:"on_sale"`
}

// Recipe is a generated recipe plus the storage metadata attached by the
// enricher for meal-prep scheduling.
type Recipe struct {
	Title        string       `json:"title"`
	Servings     int          `json:"servings"`
	TotalMinutes int          `json:"total_minutes"`
	Ingredients  []Ingredient `json:"ingredients"`
	Steps        []string     `json:"steps"`
	Equipment    []string     `json:"equipment"`
	Tags         []string     `json:"tags"`

	// Storage metadata, present after enrichment.
	ShelfLifeDays int    `json:"shelf_life_days,omitempty"`
	IsFreezable   bool   `json:"is_freezable,omitempty"`
	StorageNote   string `json:"storage_note,omitempty"`
}

// MinGeneratedSteps is the floor the generator enforces on LLM output.
// The deterministic fallback recipe is exempt.
const MinGeneratedSteps = 5

// Validate checks the structural invariants of a decoded recipe.
func (r *Recipe) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return ErrEmptyTitle
	}
	if r.Servings <= 0 {
		return ErrInvalidServings
	}
	if r.TotalMinutes <= 0 {
		return ErrInvalidTotalMinutes
	}
	if len(r.Ingredients) == 0 {
		return ErrNoIngredients
	}
	for _, ing := range r.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			return ErrUnnamedIngredient
		}
		if ing.Quantity < 0 {
			return ErrNegativeQuantity
		}
	}
	if len(r.Steps) == 0 {
		return ErrNoSteps
	}
	return nil
}

// ApplyDefaults fills the unit and category of every ingredient that the
// model left blank, localized to the request language. The original server
// did this after every JSON decode; every ingredient must carry both fields
// by the time the enricher runs.
func (r *Recipe) ApplyDefaults(language string) {
	unit, category := "unit", "other"
	if language == "fr" {
		unit, category = "unité", "autre"
	}
	for i := range r.Ingredients {
		if strings.TrimSpace(r.Ingredients[i].Unit) == "" {
			r.Ingredients[i].Unit = unit
		}
		if strings.TrimSpace(r.Ingredients[i].Category) == "" {
			r.Ingredients[i].Category = category
		}
	}
}
