package handlers

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/planea/aiserver/internal/application/mealprep"
	mealprepdom "github.com/planea/aiserver/internal/domain/mealprep"
	"github.com/planea/aiserver/internal/domain/plan"
	"github.com/planea/aiserver/pkg/errors"
)

type conceptsPayload struct {
	Constraints plan.Constraints `json:"constraints"`
	Language    string           `json:"language"`
}

type conceptsResponse struct {
	Concepts []mealprepdom.Concept `json:"concepts"`
}

// Concepts handles POST /meal-prep-concepts: three kit themes the user can
// pick from before building a kit.
func (h *Handlers) Concepts(w http.ResponseWriter, r *http.Request) {
	var payload conceptsPayload
	if !h.decode(w, r, &payload) {
		return
	}
	concepts := h.kits.Concepts(r.Context(), payload.Constraints, normalizeLanguage(payload.Language))
	h.writeJSON(w, http.StatusOK, conceptsResponse{Concepts: concepts})
}

type kitPayload struct {
	Days                    []string             `json:"days" validate:"required,min=1"`
	Meals                   []string             `json:"meals" validate:"required,min=1"`
	ServingsPerMeal         int                  `json:"servings_per_meal" validate:"omitempty,min=1,max=12"`
	TotalPrepTimePreference string               `json:"total_prep_time_preference" validate:"omitempty,oneof=1h 1h30 2h+"`
	SkillLevel              string               `json:"skill_level" validate:"omitempty,oneof=beginner intermediate advanced"`
	AvoidRareIngredients    bool                 `json:"avoid_rare_ingredients"`
	PreferLongShelfLife     bool                 `json:"prefer_long_shelf_life"`
	Constraints             plan.Constraints     `json:"constraints"`
	Units                   string               `json:"units"`
	Language                string               `json:"language"`
	SelectedConcept         *mealprepdom.Concept `json:"selected_concept"`
}

type kitResponse struct {
	Kits []mealprepdom.Kit `json:"kits"`
}

// Kit handles POST /meal-prep-kit. The response wraps the single kit in a
// list; the client is built for a future multi-kit variant.
func (h *Handlers) Kit(w http.ResponseWriter, r *http.Request) {
	var payload kitPayload
	if !h.decode(w, r, &payload) {
		return
	}
	language := normalizeLanguage(payload.Language)

	units, ok := h.parseUnits(w, r, payload.Units)
	if !ok {
		return
	}
	days := make([]plan.Weekday, 0, len(payload.Days))
	for i, d := range payload.Days {
		day, err := plan.ParseWeekday(d)
		if err != nil {
			h.writeError(w, r, errors.NewValidationError(fmt.Sprintf("days[%d]", i), err.Error()))
			return
		}
		days = append(days, day)
	}
	meals := make([]plan.MealType, 0, len(payload.Meals))
	for i, m := range payload.Meals {
		meal, err := plan.ParseMealType(m)
		if err != nil {
			h.writeError(w, r, errors.NewValidationError(fmt.Sprintf("meals[%d]", i), err.Error()))
			return
		}
		meals = append(meals, meal)
	}

	kit, err := h.kits.BuildKit(r.Context(), mealprep.KitRequest{
		Days:                    days,
		Meals:                   meals,
		ServingsPerMeal:         payload.ServingsPerMeal,
		TotalPrepTimePreference: payload.TotalPrepTimePreference,
		SkillLevel:              payload.SkillLevel,
		AvoidRareIngredients:    payload.AvoidRareIngredients,
		PreferLongShelfLife:     payload.PreferLongShelfLife,
		Constraints:             payload.Constraints,
		Units:                   units,
		Language:                language,
		SelectedConcept:         payload.SelectedConcept,
	})
	if err != nil {
		if stderrors.Is(err, plan.ErrBreakfastInKit) {
			h.writeError(w, r, errors.NewValidationError("meals", err.Error()))
			return
		}
		if stderrors.Is(err, plan.ErrNoDays) || stderrors.Is(err, plan.ErrNoSlots) {
			h.writeError(w, r, errors.NewBadRequestError(err.Error()))
			return
		}
		h.writeError(w, r, errors.NewInternalError(generationFailed(language)).WithCause(err))
		return
	}
	h.writeJSON(w, http.StatusOK, kitResponse{Kits: []mealprepdom.Kit{*kit}})
}
