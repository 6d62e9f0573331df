package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/planea/aiserver/internal/domain/plan"
	"github.com/planea/aiserver/internal/domain/recipe"
	"github.com/planea/aiserver/internal/testutil"
)

func newTestService(llm *testutil.ScriptedLLM) *Service {
	return NewService(llm, &testutil.SequenceIDs{}, zap.NewNop(), nil, Config{})
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around", "Here you go:\n{\"a\":1}\nEnjoy!", `{"a":1}`},
		{"nested braces", `intro {"a":{"b":2}} outro`, `{"a":{"b":2}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSON(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := extractJSON("sorry, I cannot do that")
	assert.ErrorIs(t, err, ErrNoJSONObject)
	_, err = extractJSON("}{")
	assert.ErrorIs(t, err, ErrNoJSONObject)
}

func TestGenerateRecipeRejectsTooFewSteps(t *testing.T) {
	llm := &testutil.ScriptedLLM{Replies: []string{
		`{"title":"Quick dish","servings":4,"total_minutes":20,
		  "ingredients":[{"name":"eggs","quantity":3,"unit":"unit"}],
		  "steps":["Beat the eggs.","Cook them."]}`,
	}}
	s := newTestService(llm)

	_, err := s.GenerateRecipe(context.Background(), RecipePromptInput{Language: "en", Servings: 4})
	assert.ErrorIs(t, err, recipe.ErrTooFewSteps)
}

func TestGenerateRecipeExactTitleWins(t *testing.T) {
	llm := &testutil.ScriptedLLM{Replies: []string{testutil.RecipeJSON("Creative chef name", 25)}}
	s := newTestService(llm)

	r, err := s.GenerateRecipe(context.Background(), RecipePromptInput{
		Language:   "en",
		Servings:   4,
		ExactTitle: "Tarte au saumon",
	})
	require.NoError(t, err)
	assert.Equal(t, "Tarte au saumon", r.Title)
}

func TestGenerateRecipeWithRetryRecoversFromGarbage(t *testing.T) {
	llm := &testutil.ScriptedLLM{Replies: []string{
		"I would be happy to help!",
		testutil.RecipeJSON("Poulet au paprika", 25),
	}}
	s := newTestService(llm)

	r := s.GenerateRecipeWithRetry(context.Background(), RecipePromptInput{Language: "fr", Servings: 4, TimeCap: 30})
	assert.Equal(t, "Poulet au paprika", r.Title)
	assert.Equal(t, 2, llm.CallCount())
}

func TestGenerateRecipeWithRetryClampsOverCap(t *testing.T) {
	// Every attempt comes back over the cap: the clamped candidate is
	// served instead of the fallback.
	llm := &testutil.ScriptedLLM{Replies: []string{testutil.RecipeJSON("Ragoût du dimanche", 55)}}
	s := newTestService(llm)

	r := s.GenerateRecipeWithRetry(context.Background(), RecipePromptInput{Language: "fr", Servings: 4, TimeCap: 30})
	assert.Equal(t, "Ragoût du dimanche", r.Title)
	assert.Equal(t, 30, r.TotalMinutes)
	assert.Equal(t, 3, llm.CallCount(), "over-cap results keep retrying until the budget runs out")
}

func TestGenerateRecipeWithRetryServesFallback(t *testing.T) {
	llm := &testutil.ScriptedLLM{Err: errors.New("upstream down")}
	s := newTestService(llm)

	r := s.GenerateRecipeWithRetry(context.Background(), RecipePromptInput{Language: "fr", Servings: 2, TimeCap: 25})
	require.NoError(t, r.Validate())
	assert.Equal(t, "Poulet grillé simple", r.Title)
	assert.Equal(t, 25, r.TotalMinutes)
	assert.Equal(t, 2, r.Servings)
	assert.Len(t, r.Ingredients, 1)
	assert.Len(t, r.Steps, 2)
	assert.Equal(t, []string{"simple"}, r.Tags)
	assert.Equal(t, 3, llm.CallCount())
}

func TestFallbackHonorsExactTitle(t *testing.T) {
	llm := &testutil.ScriptedLLM{Err: errors.New("upstream down")}
	s := newTestService(llm)

	r := s.GenerateRecipeWithRetry(context.Background(), RecipePromptInput{
		Language:   "en",
		ExactTitle: "Grandma's lasagna",
	})
	assert.Equal(t, "Grandma's lasagna", r.Title)
	assert.Equal(t, 30, r.TotalMinutes, "uncapped fallback defaults to 30 minutes")
}

func TestGenerateRecipeFromImageSurfacesErrors(t *testing.T) {
	llm := &testutil.ScriptedLLM{Err: errors.New("vision refused")}
	s := newTestService(llm)

	_, err := s.GenerateRecipeFromImage(context.Background(), "data:image/jpeg;base64,abcd", RecipePromptInput{Language: "en", Servings: 4})
	assert.Error(t, err)
	assert.Equal(t, []string{"data:image/jpeg;base64,abcd"}, llm.ImageURLs)
}

func TestModifyRecipePreservesStorageMetadata(t *testing.T) {
	llm := &testutil.ScriptedLLM{Replies: []string{testutil.RecipeJSON("Poulet au paprika doux", 25)}}
	s := newTestService(llm)

	original := &recipe.Recipe{
		Title:         "Poulet au paprika",
		Servings:      4,
		TotalMinutes:  25,
		Ingredients:   []recipe.Ingredient{{Name: "poulet", Quantity: 600, Unit: "g"}},
		Steps:         []string{"Cuire."},
		ShelfLifeDays: 4,
		IsFreezable:   true,
		StorageNote:   "Se conserve 4 jours au réfrigérateur.",
	}
	modified, err := s.ModifyRecipe(context.Background(), original, "moins épicé", "fr")
	require.NoError(t, err)
	assert.Equal(t, 4, modified.ShelfLifeDays)
	assert.True(t, modified.IsFreezable)
	assert.Equal(t, original.StorageNote, modified.StorageNote)
}

func TestGeneratePhasesAssignsFreshIDs(t *testing.T) {
	llm := &testutil.ScriptedLLM{Replies: []string{`{
		"cook": {"title": "Cuisson", "total_minutes": 0, "steps": [
			{"description": "Cuire le riz", "recipe_title": "Bol de riz", "estimated_minutes": 20, "is_parallel": false},
			{"description": "Rôtir les légumes", "recipe_title": "Légumes rôtis", "estimated_minutes": 25, "is_parallel": true, "parallel_note": "pendant la cuisson du riz"}
		]},
		"assemble": {"title": "Assemblage", "total_minutes": 10, "steps": [
			{"description": "Répartir dans les contenants", "recipe_title": "", "estimated_minutes": 10, "is_parallel": false}
		]},
		"cool_down": {"title": "Refroidissement", "total_minutes": 30, "steps": []},
		"store": {"title": "Rangement", "total_minutes": 5, "steps": []}
	}`}}
	s := newTestService(llm)

	phases := s.GeneratePhases(context.Background(), nil, "fr")
	require.Len(t, phases, 4)

	assert.Equal(t, "Cuisson", phases[0].Title)
	assert.Equal(t, 45, phases[0].TotalMinutes, "missing totals are summed from the steps")
	assert.Equal(t, 10, phases[1].TotalMinutes, "claimed totals are trusted")

	seen := map[string]struct{}{}
	for _, p := range phases {
		_, dup := seen[p.ID]
		assert.False(t, dup)
		seen[p.ID] = struct{}{}
		for _, step := range p.Steps {
			_, dup := seen[step.ID]
			assert.False(t, dup)
			seen[step.ID] = struct{}{}
		}
	}
}

func TestGeneratePhasesSkeletonOnMissingPhase(t *testing.T) {
	llm := &testutil.ScriptedLLM{Replies: []string{`{"cook": {"title": "Cuisson", "steps": []}}`}}
	s := newTestService(llm)

	phases := s.GeneratePhases(context.Background(), nil, "fr")
	require.Len(t, phases, 4)
	assert.Equal(t, "Cuisson", phases[0].Title)
	assert.Equal(t, "Rangement", phases[3].Title)
	for _, p := range phases {
		assert.Empty(t, p.Steps)
		assert.NotEmpty(t, p.ID)
	}
}

func TestGeneratePhasesSkeletonOnTransportError(t *testing.T) {
	llm := &testutil.ScriptedLLM{Err: errors.New("boom")}
	s := newTestService(llm)

	phases := s.GeneratePhases(context.Background(), nil, "en")
	require.Len(t, phases, 4)
	assert.Equal(t, "Cooking", phases[0].Title)
	assert.Equal(t, "Storage", phases[3].Title)
}

func TestGenerateConceptsDecodes(t *testing.T) {
	llm := &testutil.ScriptedLLM{Replies: []string{`{"concepts": [
		{"name": "Semaine cajun", "description": "Épices de la Louisiane", "cuisine": "cajun", "tags": ["épicé"]},
		{"name": "Semaine verte", "description": "Légumes à l'honneur", "tags": ["végé"]},
		{"name": "Classiques québécois", "description": "Plats réconfortants", "cuisine": "québécoise", "tags": []}
	]}`}}
	s := newTestService(llm)

	concepts := s.GenerateConcepts(context.Background(), plan.Constraints{}, "fr")
	require.Len(t, concepts, 3)
	assert.Equal(t, "Semaine cajun", concepts[0].Name)
	for _, c := range concepts {
		assert.NotEmpty(t, c.ID)
	}
}

func TestGenerateConceptsStaticFallback(t *testing.T) {
	llm := &testutil.ScriptedLLM{Err: errors.New("boom")}
	s := newTestService(llm)

	concepts := s.GenerateConcepts(context.Background(), plan.Constraints{}, "fr")
	require.Len(t, concepts, 3)
	assert.Equal(t, "Semaine méditerranéenne", concepts[0].Name)

	english := s.GenerateConcepts(context.Background(), plan.Constraints{}, "en")
	require.Len(t, english, 3)
	assert.Equal(t, "Mediterranean week", english[0].Name)
}
