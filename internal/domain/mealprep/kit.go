// Package mealprep contains the batch-cook domain: kits, grouped prep
// steps and the four-phase cooking pipeline. Field names are bit-exact
// with what the client decodes.
package mealprep

import (
	"time"

	"github.com/planea/aiserver/internal/domain/plan"
	"github.com/planea/aiserver/internal/domain/recipe"
)

// PrepAction is one of the seven prep buckets the grouper classifies into.
type PrepAction string

const (
	ActionCut      PrepAction = "cut"
	ActionPeel     PrepAction = "peel"
	ActionGrate    PrepAction = "grate"
	ActionMix      PrepAction = "mix"
	ActionMeasure  PrepAction = "measure"
	ActionMarinate PrepAction = "marinate"
	ActionPreheat  PrepAction = "preheat"
)

// Priority returns the fixed ordering rank of the action in a kit's prep
// list. Lower runs first.
func (a PrepAction) Priority() int {
	switch a {
	case ActionCut:
		return 1
	case ActionPeel:
		return 2
	case ActionGrate:
		return 3
	case ActionMix:
		return 4
	case ActionMeasure:
		return 5
	case ActionMarinate:
		return 6
	case ActionPreheat:
		return 7
	}
	return 8
}

// PrepIngredient is one ingredient association inside a grouped prep step,
// annotated with the recipe it came from.
type PrepIngredient struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Quantity    string `json:"quantity"`
	RecipeTitle string `json:"recipe_title"`
	RecipeID    string `json:"recipe_id"`
	Usage       string `json:"usage"`
}

// GroupedPrepStep batches one prep action across every recipe of a kit.
type GroupedPrepStep struct {
	ID               string           `json:"id"`
	ActionType       PrepAction       `json:"action_type"`
	Description      string           `json:"description"`
	Ingredients      []PrepIngredient `json:"ingredients"`
	DetailedSteps    []string         `json:"detailed_steps"`
	EstimatedMinutes int              `json:"estimated_minutes"`
}

// PhaseStep is a single step inside a cooking phase. IsParallel marks steps
// that run alongside a previous long-running step; ParallelNote names it.
type PhaseStep struct {
	ID               string  `json:"id"`
	Description      string  `json:"description"`
	RecipeTitle      string  `json:"recipe_title"`
	RecipeIndex      *int    `json:"recipe_index"`
	EstimatedMinutes int     `json:"estimated_minutes"`
	IsParallel       bool    `json:"is_parallel"`
	ParallelNote     *string `json:"parallel_note"`
}

// Phase is one of the four stages of a kit's execution.
type Phase struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	TotalMinutes int         `json:"total_minutes"`
	Steps        []PhaseStep `json:"steps"`
}

// The four phases, always emitted in this order.
const (
	PhaseCook     = "cook"
	PhaseAssemble = "assemble"
	PhaseCool     = "cool_down"
	PhaseStore    = "store"
)

// PhaseKeys lists the phase identifiers in execution order.
var PhaseKeys = []string{PhaseCook, PhaseAssemble, PhaseCool, PhaseStore}

// RecipeRef binds a generated recipe into a kit together with its storage
// metadata and its target consumption day. ShelfLifeDays >= TargetDayIndex+1
// is the scheduling invariant.
type RecipeRef struct {
	ID            string        `json:"id"`
	RecipeID      string        `json:"recipe_id"`
	Title         string        `json:"title"`
	ShelfLifeDays int           `json:"shelf_life_days"`
	IsFreezable   bool          `json:"is_freezable"`
	StorageNote   string        `json:"storage_note"`
	TargetWeekday plan.Weekday  `json:"target_weekday"`
	Recipe        recipe.Recipe `json:"recipe"`
}

// Kit is a batch-cook bundle: recipes prepared together, grouped prep
// steps and a four-phase cooking plan.
type Kit struct {
	ID                   string            `json:"id"`
	Name                 string            `json:"name"`
	Description          string            `json:"description"`
	TotalPortions        int               `json:"total_portions"`
	EstimatedPrepMinutes int               `json:"estimated_prep_minutes"`
	Recipes              []RecipeRef       `json:"recipes"`
	GroupedPrepSteps     []GroupedPrepStep `json:"grouped_prep_steps"`
	Phases               []Phase           `json:"phases"`
	CreatedAt            time.Time         `json:"created_at"`
}

// Concept is a generated kit theme the user can pick before building a kit.
type Concept struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Cuisine     string   `json:"cuisine,omitempty"`
	Tags        []string `json:"tags"`
}
