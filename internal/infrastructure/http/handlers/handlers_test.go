package handlers

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/planea/aiserver/internal/application/ai"
	"github.com/planea/aiserver/internal/application/chat"
	"github.com/planea/aiserver/internal/application/mealprep"
	"github.com/planea/aiserver/internal/application/planner"
	"github.com/planea/aiserver/internal/domain/recipe"
	"github.com/planea/aiserver/internal/testutil"
	"github.com/planea/aiserver/pkg/errors"
)

func newTestHandlers(llm *testutil.ScriptedLLM) *Handlers {
	ids := &testutil.SequenceIDs{}
	gen := ai.NewService(llm, ids, zap.NewNop(), nil, ai.Config{})
	dist := planner.NewDistributor(rand.New(rand.NewSource(1)), zap.NewNop())
	plans := planner.NewService(gen, nil, dist, zap.NewNop())
	kits := mealprep.NewService(gen, dist, mealprep.NewGrouper(ids), ids, testutil.FixedClock{T: time.Now()}, zap.NewNop())
	chats := chat.NewService(gen, plans, zap.NewNop())
	return New(plans, kits, chats, zap.NewNop(), "test")
}

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) errors.ErrorDetails {
	t.Helper()
	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func TestPlanPreservesSlotOrder(t *testing.T) {
	llm := &testutil.ScriptedLLM{Replies: []string{testutil.RecipeJSON("Poulet au paprika", 25)}}
	h := newTestHandlers(llm)

	w := post(h.Plan, `{
		"slots": [
			{"weekday": "Mon", "meal_type": "DINNER"},
			{"weekday": "Tue", "meal_type": "LUNCH"}
		],
		"language": "en"
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Items []planner.PlanItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "Mon", string(resp.Items[0].Weekday))
	assert.Equal(t, "DINNER", string(resp.Items[0].MealType))
	assert.Equal(t, "Tue", string(resp.Items[1].Weekday))
	assert.Equal(t, "LUNCH", string(resp.Items[1].MealType))
	assert.NotEmpty(t, resp.Items[0].Recipe.StorageNote, "plan recipes come back storage-enriched")
}

func TestPlanRejectsUnknownWeekday(t *testing.T) {
	h := newTestHandlers(&testutil.ScriptedLLM{})

	w := post(h.Plan, `{"slots": [{"weekday": "Funday", "meal_type": "DINNER"}]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	detail := errorBody(t, w)
	assert.Equal(t, errors.CodeValidationFailed, detail.Code)
	assert.Equal(t, "slots[0].weekday", detail.Metadata["field"])
}

func TestPlanRequiresSlots(t *testing.T) {
	h := newTestHandlers(&testutil.ScriptedLLM{})

	w := post(h.Plan, `{"language": "fr"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	detail := errorBody(t, w)
	assert.Equal(t, errors.CodeValidationFailed, detail.Code)
	assert.Contains(t, detail.Metadata["field"], "slots")
}

func TestPlanRejectsInvalidJSON(t *testing.T) {
	h := newTestHandlers(&testutil.ScriptedLLM{})

	w := post(h.Plan, `{"slots": [`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errors.CodeBadRequest, errorBody(t, w).Code)
}

func TestRegenerateMealReturnsRecipe(t *testing.T) {
	llm := &testutil.ScriptedLLM{Replies: []string{testutil.RecipeJSON("Ragoût du samedi", 55)}}
	h := newTestHandlers(llm)

	w := post(h.RegenerateMeal, `{
		"slot": {"weekday": "Sat", "meal_type": "DINNER"},
		"diversity_seed": 4,
		"language": "en"
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var r recipe.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r))
	assert.Equal(t, "Ragoût du samedi", r.Title)
	assert.LessOrEqual(t, r.TotalMinutes, 60, "weekend cap binds the regenerated slot")
}

func TestRecipeFromTitleIsVerbatim(t *testing.T) {
	llm := &testutil.ScriptedLLM{Replies: []string{testutil.RecipeJSON("Creative chef name", 25)}}
	h := newTestHandlers(llm)

	w := post(h.RecipeFromTitle, `{"title": "Tarte au citron", "language": "fr"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var r recipe.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r))
	assert.Equal(t, "Tarte au citron", r.Title)
}

func TestRecipeRequiresIdea(t *testing.T) {
	h := newTestHandlers(&testutil.ScriptedLLM{})

	w := post(h.Recipe, `{"language": "fr"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorBody(t, w).Metadata["field"], "idea")
}

func TestRecipeFromImageBuildsDataURL(t *testing.T) {
	llm := &testutil.ScriptedLLM{Replies: []string{testutil.RecipeJSON("Bol poke", 20)}}
	h := newTestHandlers(llm)

	w := post(h.RecipeFromImage, `{"image_base64": "abcd", "language": "en"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, llm.ImageURLs, 1)
	assert.Equal(t, "data:image/jpeg;base64,abcd", llm.ImageURLs[0])

	w = post(h.RecipeFromImage, `{"image_base64": "abcd", "mime_type": "image/png"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "data:image/png;base64,abcd", llm.ImageURLs[1])

	// Payloads that already carry the scheme pass through untouched.
	w = post(h.RecipeFromImage, `{"image_base64": "data:image/webp;base64,xyz"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "data:image/webp;base64,xyz", llm.ImageURLs[2])
}

func TestRecipeFromImageFailureIsLocalized(t *testing.T) {
	llm := &testutil.ScriptedLLM{Err: assert.AnError}
	h := newTestHandlers(llm)

	w := post(h.RecipeFromImage, `{"image_base64": "abcd", "language": "en"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	detail := errorBody(t, w)
	assert.Equal(t, errors.CodeInternal, detail.Code)
	assert.Equal(t, "Generation failed. Please try again.", detail.Message)

	w = post(h.RecipeFromImage, `{"image_base64": "abcd", "language": "fr"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "La génération a échoué. Veuillez réessayer.", errorBody(t, w).Message)
}

func TestChatPremiumGate(t *testing.T) {
	llm := &testutil.ScriptedLLM{}
	h := newTestHandlers(llm)

	w := post(h.Chat, `{"message": "show my plan", "user_context": {"has_premium": false}}`)
	require.Equal(t, http.StatusForbidden, w.Code)
	detail := errorBody(t, w)
	assert.Equal(t, errors.CodeForbidden, detail.Code)
	assert.Equal(t, "premium subscription required", detail.Message)
	assert.Zero(t, llm.CallCount(), "the gate runs before any classification")
}

func TestChatPlanDisplay(t *testing.T) {
	llm := &testutil.ScriptedLLM{}
	h := newTestHandlers(llm)

	w := post(h.Chat, `{
		"message": "show my plan",
		"language": "en",
		"user_context": {
			"has_premium": true,
			"current_plan": {"Mon": [{"meal_type": "DINNER", "title": "Butter chicken"}]}
		}
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "CURRENT PLAN")
	assert.Contains(t, w.Body.String(), "Butter chicken")
	assert.Zero(t, llm.CallCount())
}

func TestChatRequiresMessage(t *testing.T) {
	h := newTestHandlers(&testutil.ScriptedLLM{})

	w := post(h.Chat, `{"user_context": {"has_premium": true}}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorBody(t, w).Metadata["field"], "message")
}

func TestKitRejectsBreakfast(t *testing.T) {
	h := newTestHandlers(&testutil.ScriptedLLM{})

	w := post(h.Kit, `{"days": ["Mon"], "meals": ["BREAKFAST"]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	detail := errorBody(t, w)
	assert.Equal(t, errors.CodeValidationFailed, detail.Code)
	assert.Equal(t, "meals", detail.Metadata["field"])
}

func TestKitRejectsUnknownDay(t *testing.T) {
	h := newTestHandlers(&testutil.ScriptedLLM{})

	w := post(h.Kit, `{"days": ["Funday"], "meals": ["DINNER"]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "days[0]", errorBody(t, w).Metadata["field"])
}

func TestKitWrapsSingleKit(t *testing.T) {
	llm := &testutil.ScriptedLLM{Replies: []string{testutil.RecipeJSON("Poulet au miel", 20)}}
	h := newTestHandlers(llm)

	w := post(h.Kit, `{"days": ["Mon", "Wed"], "meals": ["DINNER"], "language": "en"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Kits []json.RawMessage `json:"kits"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Kits, 1)
}

func TestConceptsAlwaysReturnsThree(t *testing.T) {
	// A scripted failure exercises the static fallback trio.
	llm := &testutil.ScriptedLLM{Err: assert.AnError}
	h := newTestHandlers(llm)

	w := post(h.Concepts, `{"language": "fr"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Concepts []json.RawMessage `json:"concepts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Concepts, 3)
}

func TestRootAndHealth(t *testing.T) {
	h := newTestHandlers(&testutil.ScriptedLLM{})

	w := httptest.NewRecorder()
	h.Root(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "planea-aiserver")

	w = httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}
