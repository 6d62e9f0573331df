// Package chat contains the conversational assistant domain: transcript
// turns, the user context the client sends along, and the structured
// response the intent router emits.
package chat

import (
	"time"

	"github.com/planea/aiserver/internal/domain/plan"
	"github.com/planea/aiserver/internal/domain/recipe"
)

// Turn is one transcript entry.
type Turn struct {
	IsFromUser bool      `json:"is_from_user"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
}

// MealSummary is one entry of the client's current plan, as shown in the
// plan-display reply.
type MealSummary struct {
	MealType plan.MealType `json:"meal_type"`
	Title    string        `json:"title"`
}

// UserContext is the client-owned state forwarded with every chat request.
// The server only reads it; the client stays authoritative between turns.
type UserContext struct {
	CurrentPlan   map[plan.Weekday][]MealSummary `json:"current_plan,omitempty"`
	RecentRecipes []recipe.Recipe                `json:"recent_recipes,omitempty"`
	Favorites     []recipe.Recipe                `json:"favorites,omitempty"`
	Preferences   plan.Preferences               `json:"preferences,omitempty"`
	Constraints   plan.Constraints               `json:"constraints,omitempty"`
	HasPremium    bool                           `json:"has_premium"`
}

// Mode is the assistant mode reported to the client.
type Mode string

const (
	ModeRecipeQA       Mode = "recipe_qa"
	ModeNutritionCoach Mode = "nutrition_coach"
	ModeOnboarding     Mode = "onboarding"
)

// ModificationType tags the pending change a mutating intent proposed.
type ModificationType string

const (
	ModReplaceIngredient ModificationType = "replace_ingredient"
	ModAdjustPortions    ModificationType = "adjust_portions"
	ModPendingAddMeal    ModificationType = "pending_add_meal"
)

// Intent is the classified kind of the current user turn. Tagged variants
// rather than behavioral subclassing; each one is handled by a dedicated
// router function.
type Intent string

const (
	IntentPlanDisplay    Intent = "plan_display"
	IntentConfirmation   Intent = "confirmation"
	IntentAddMeal        Intent = "add_meal"
	IntentAddMealMissing Intent = "add_meal_missing"
	IntentModifyRecipe   Intent = "modify_recipe"
	IntentModifyQuestion Intent = "modify_question"
	IntentRecipeQA       Intent = "recipe_qa"
	IntentNutrition      Intent = "nutrition_coach"
)

// PendingModification describes a proposed recipe change held client-side
// between the propose turn and the next user turn.
type PendingModification struct {
	OriginalRecipeTitle string           `json:"original_recipe_title,omitempty"`
	ProposedRecipe      *recipe.Recipe   `json:"proposed_recipe,omitempty"`
	ModificationType    ModificationType `json:"modification_type"`
	TargetWeekday       plan.Weekday     `json:"target_weekday,omitempty"`
	TargetMealType      plan.MealType    `json:"target_meal_type,omitempty"`
}

// Response is the uniform shape every intent handler returns.
type Response struct {
	Reply                     string               `json:"reply"`
	DetectedMode              Mode                 `json:"detected_mode"`
	RequiresConfirmation      bool                 `json:"requires_confirmation"`
	SuggestedActions          []string             `json:"suggested_actions,omitempty"`
	ModifiedRecipe            *recipe.Recipe       `json:"modified_recipe,omitempty"`
	PendingRecipeModification *PendingModification `json:"pending_recipe_modification,omitempty"`
	ModificationType          ModificationType     `json:"modification_type,omitempty"`
	ModificationMetadata      map[string]string    `json:"modification_metadata,omitempty"`
}
