package handlers

import (
	"fmt"
	"net/http"

	"github.com/planea/aiserver/internal/application/planner"
	"github.com/planea/aiserver/internal/domain/plan"
	"github.com/planea/aiserver/pkg/errors"
)

type slotPayload struct {
	Weekday  string `json:"weekday" validate:"required"`
	MealType string `json:"meal_type" validate:"required"`
}

// parseSlots converts wire slots into domain slots, reporting the first
// offending field on failure.
func (h *Handlers) parseSlots(w http.ResponseWriter, r *http.Request, payload []slotPayload) ([]plan.Slot, bool) {
	slots := make([]plan.Slot, 0, len(payload))
	for i, s := range payload {
		day, err := plan.ParseWeekday(s.Weekday)
		if err != nil {
			h.writeError(w, r, errors.NewValidationError(
				fmt.Sprintf("slots[%d].weekday", i), err.Error()))
			return nil, false
		}
		meal, err := plan.ParseMealType(s.MealType)
		if err != nil {
			h.writeError(w, r, errors.NewValidationError(
				fmt.Sprintf("slots[%d].meal_type", i), err.Error()))
			return nil, false
		}
		slots = append(slots, plan.Slot{Weekday: day, MealType: meal})
	}
	return slots, true
}

type planPayload struct {
	WeekStart   string           `json:"week_start"`
	Units       string           `json:"units"`
	Slots       []slotPayload    `json:"slots" validate:"required,min=1,dive"`
	Constraints plan.Constraints `json:"constraints"`
	Preferences plan.Preferences `json:"preferences"`
	Language    string           `json:"language"`
}

type planResponse struct {
	Items []planner.PlanItem `json:"items"`
}

// Plan handles POST /plan.
func (h *Handlers) Plan(w http.ResponseWriter, r *http.Request) {
	var payload planPayload
	if !h.decode(w, r, &payload) {
		return
	}
	language := normalizeLanguage(payload.Language)

	weekStart, err := parseWeekStart(payload.WeekStart)
	if err != nil {
		h.writeError(w, r, errors.NewValidationError("week_start", err.Error()))
		return
	}
	units, ok := h.parseUnits(w, r, payload.Units)
	if !ok {
		return
	}
	slots, ok := h.parseSlots(w, r, payload.Slots)
	if !ok {
		return
	}

	items, err := h.plans.GeneratePlan(r.Context(), planner.PlanRequest{
		WeekStart:   weekStart,
		Units:       units,
		Slots:       slots,
		Constraints: payload.Constraints,
		Preferences: payload.Preferences,
		Language:    language,
	})
	if err != nil {
		h.writeError(w, r, errors.NewInternalError(generationFailed(language)).WithCause(err))
		return
	}
	h.writeJSON(w, http.StatusOK, planResponse{Items: items})
}

type regeneratePayload struct {
	Slot          slotPayload      `json:"slot" validate:"required"`
	Units         string           `json:"units"`
	Constraints   plan.Constraints `json:"constraints"`
	Preferences   plan.Preferences `json:"preferences"`
	DiversitySeed int              `json:"diversity_seed"`
	Language      string           `json:"language"`
}

// RegenerateMeal handles POST /regenerate-meal.
func (h *Handlers) RegenerateMeal(w http.ResponseWriter, r *http.Request) {
	var payload regeneratePayload
	if !h.decode(w, r, &payload) {
		return
	}
	language := normalizeLanguage(payload.Language)

	units, ok := h.parseUnits(w, r, payload.Units)
	if !ok {
		return
	}
	slots, ok := h.parseSlots(w, r, []slotPayload{payload.Slot})
	if !ok {
		return
	}

	result, err := h.plans.RegenerateMeal(r.Context(), planner.RegenerateRequest{
		Slot:          slots[0],
		Units:         units,
		Constraints:   payload.Constraints,
		Preferences:   payload.Preferences,
		DiversitySeed: payload.DiversitySeed,
		Language:      language,
	})
	if err != nil {
		h.writeError(w, r, errors.NewInternalError(generationFailed(language)).WithCause(err))
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}
