package handlers

import (
	"net/http"
	"strings"

	"github.com/planea/aiserver/internal/application/planner"
	"github.com/planea/aiserver/internal/domain/plan"
	"github.com/planea/aiserver/pkg/errors"
)

type recipePayload struct {
	Idea        string           `json:"idea" validate:"required"`
	Servings    int              `json:"servings" validate:"omitempty,min=1,max=12"`
	Units       string           `json:"units"`
	Constraints plan.Constraints `json:"constraints"`
	Preferences plan.Preferences `json:"preferences"`
	Language    string           `json:"language"`
}

// Recipe handles POST /recipe: a single recipe from a free-text idea.
func (h *Handlers) Recipe(w http.ResponseWriter, r *http.Request) {
	var payload recipePayload
	if !h.decode(w, r, &payload) {
		return
	}
	units, ok := h.parseUnits(w, r, payload.Units)
	if !ok {
		return
	}

	result := h.plans.FromIdea(r.Context(), planner.RecipeRequest{
		Idea:        payload.Idea,
		Servings:    payload.Servings,
		Units:       units,
		Constraints: payload.Constraints,
		Preferences: payload.Preferences,
		Language:    normalizeLanguage(payload.Language),
	})
	h.writeJSON(w, http.StatusOK, result)
}

type recipeFromTitlePayload struct {
	Title       string           `json:"title" validate:"required"`
	Servings    int              `json:"servings" validate:"omitempty,min=1,max=12"`
	Units       string           `json:"units"`
	Constraints plan.Constraints `json:"constraints"`
	Preferences plan.Preferences `json:"preferences"`
	Language    string           `json:"language"`
}

// RecipeFromTitle handles POST /recipe-from-title. The response title is
// the input title verbatim.
func (h *Handlers) RecipeFromTitle(w http.ResponseWriter, r *http.Request) {
	var payload recipeFromTitlePayload
	if !h.decode(w, r, &payload) {
		return
	}
	units, ok := h.parseUnits(w, r, payload.Units)
	if !ok {
		return
	}

	result := h.plans.FromTitle(r.Context(), planner.RecipeRequest{
		ExactTitle:  payload.Title,
		Servings:    payload.Servings,
		Units:       units,
		Constraints: payload.Constraints,
		Preferences: payload.Preferences,
		Language:    normalizeLanguage(payload.Language),
	})
	h.writeJSON(w, http.StatusOK, result)
}

type recipeFromImagePayload struct {
	ImageBase64 string           `json:"image_base64" validate:"required"`
	MimeType    string           `json:"mime_type"`
	Servings    int              `json:"servings" validate:"omitempty,min=1,max=12"`
	Units       string           `json:"units"`
	Constraints plan.Constraints `json:"constraints"`
	Preferences plan.Preferences `json:"preferences"`
	Language    string           `json:"language"`
}

// imageDataURL wraps raw base64 content into a data URL, passing through
// payloads that already carry the scheme.
func imageDataURL(content, mimeType string) string {
	if strings.HasPrefix(content, "data:") {
		return content
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return "data:" + mimeType + ";base64," + content
}

// RecipeFromImage handles POST /recipe-from-image: a single vision call.
func (h *Handlers) RecipeFromImage(w http.ResponseWriter, r *http.Request) {
	var payload recipeFromImagePayload
	if !h.decode(w, r, &payload) {
		return
	}
	language := normalizeLanguage(payload.Language)
	units, ok := h.parseUnits(w, r, payload.Units)
	if !ok {
		return
	}

	result, err := h.plans.FromImage(r.Context(), planner.ImageRequest{
		ImageURL:    imageDataURL(payload.ImageBase64, payload.MimeType),
		Servings:    payload.Servings,
		Units:       units,
		Constraints: payload.Constraints,
		Preferences: payload.Preferences,
		Language:    language,
	})
	if err != nil {
		h.writeError(w, r, errors.NewInternalError(generationFailed(language)).WithCause(err))
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}
