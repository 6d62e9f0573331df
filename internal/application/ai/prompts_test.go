package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planea/aiserver/internal/domain/mealprep"
	"github.com/planea/aiserver/internal/domain/plan"
)

func TestBuildRecipePromptIsDeterministic(t *testing.T) {
	in := RecipePromptInput{
		Language:      "fr",
		MealType:      plan.Dinner,
		Servings:      4,
		Band:          plan.BandMedium,
		TimeCap:       45,
		DiversitySeed: 3,
		Constraints:   plan.Constraints{Evict: []string{"arachides"}, Diet: []string{"végétarien"}},
	}
	assert.Equal(t, BuildRecipePrompt(in), BuildRecipePrompt(in))
}

func TestAllergenBlockComesFirst(t *testing.T) {
	in := RecipePromptInput{
		Language:    "en",
		MealType:    plan.Dinner,
		Servings:    4,
		Band:        plan.BandSimple,
		Constraints: plan.Constraints{Evict: []string{"peanuts", "shellfish"}, Diet: []string{"vegetarian"}},
	}
	prompt := BuildRecipePrompt(in)

	allergens := strings.Index(prompt, "ABSOLUTE PROHIBITION")
	diet := strings.Index(prompt, "Dietary requirements")
	complexity := strings.Index(prompt, "COMPLEXITY")
	require.NotEqual(t, -1, allergens)
	require.NotEqual(t, -1, diet)
	require.NotEqual(t, -1, complexity)
	assert.Less(t, allergens, diet)
	assert.Less(t, diet, complexity)
	assert.Contains(t, prompt, "peanuts, shellfish")
}

func TestExactTitleAppearsInOpeningAndSchema(t *testing.T) {
	in := RecipePromptInput{
		Language:   "fr",
		Servings:   2,
		ExactTitle: "Tarte au saumon",
	}
	prompt := BuildRecipePrompt(in)
	assert.Contains(t, prompt, `ce titre exact: "Tarte au saumon" pour 2 personnes`)
	assert.Contains(t, prompt, `"title": "Tarte au saumon"`)
	// Exact-title requests must not fall through to the generic opener.
	assert.NotContains(t, prompt, "Génère une recette de")
}

func TestTimeCapReminderAndSchemaMinutes(t *testing.T) {
	in := RecipePromptInput{Language: "en", MealType: plan.Dinner, Servings: 4, TimeCap: 30}
	prompt := BuildRecipePrompt(in)
	assert.Contains(t, prompt, "CRITICAL REMINDER: total_minutes must be 30 or less.")
	assert.Contains(t, prompt, `"total_minutes": 30`)

	uncapped := BuildRecipePrompt(RecipePromptInput{Language: "en", MealType: plan.Dinner, Servings: 4})
	assert.NotContains(t, uncapped, "CRITICAL REMINDER")
}

func TestLunchGuidanceOnlyForLunch(t *testing.T) {
	lunch := BuildRecipePrompt(RecipePromptInput{Language: "en", MealType: plan.Lunch, Servings: 4})
	assert.Contains(t, lunch, "LUNCH MEAL REQUIREMENTS")

	dinner := BuildRecipePrompt(RecipePromptInput{Language: "en", MealType: plan.Dinner, Servings: 4})
	assert.NotContains(t, dinner, "LUNCH MEAL REQUIREMENTS")
}

func TestDiversityHintsFollowSeed(t *testing.T) {
	in := RecipePromptInput{Language: "fr", MealType: plan.Dinner, Servings: 4, DiversitySeed: 2}
	prompt := BuildRecipePrompt(in)
	assert.Contains(t, prompt, "cuisine mexicaine")
	assert.Contains(t, prompt, "Méthode de cuisson suggérée: grillé")

	// Negative seeds index the same tables.
	in.DiversitySeed = -2
	assert.Contains(t, BuildRecipePrompt(in), "cuisine mexicaine")
}

func TestDiversityBlockListsForbiddenProteins(t *testing.T) {
	in := RecipePromptInput{
		Language:          "en",
		MealType:          plan.Dinner,
		Servings:          4,
		SuggestedProtein:  "salmon",
		ForbiddenProteins: []string{"chicken", "beef"},
	}
	prompt := BuildRecipePrompt(in)
	assert.Contains(t, prompt, "Suggested main protein: salmon")
	assert.Contains(t, prompt, "Do NOT use these proteins (already used in the plan): chicken, beef")
}

func TestClientPreferencesStringWinsVerbatim(t *testing.T) {
	in := RecipePromptInput{
		Language:    "fr",
		MealType:    plan.Dinner,
		Servings:    4,
		TimeCap:     30,
		Constraints: plan.Constraints{PreferencesString: "- Pas de four\n- Cuisine relevée"},
		Preferences: plan.Preferences{PreferredProteins: []string{"tofu"}},
	}
	prompt := BuildRecipePrompt(in)
	assert.Contains(t, prompt, "PRÉFÉRENCES UTILISATEUR (À RESPECTER STRICTEMENT):\n- Pas de four\n- Cuisine relevée")
	// The synthesized fragment stays out when the client built one.
	assert.NotContains(t, prompt, "Temps de préparation maximal")
}

func TestExtraNoteRendered(t *testing.T) {
	in := RecipePromptInput{
		Language:    "en",
		MealType:    plan.Dinner,
		Servings:    4,
		Constraints: plan.Constraints{Extra: "my kids hate mushrooms"},
	}
	assert.Contains(t, BuildRecipePrompt(in), "Note from the user: my kids hate mushrooms")
}

func TestProteinOverrideOnlyWithoutPreferences(t *testing.T) {
	base := RecipePromptInput{
		Language:    "en",
		MealType:    plan.Dinner,
		Servings:    4,
		Constraints: plan.Constraints{PreferredProteins: []string{"tofu", "legumes"}},
	}
	assert.Contains(t, BuildRecipePrompt(base), "MANDATORY PROTEINS: ONLY USE THESE PROTEINS: tofu, legumes.")

	// Preferences already surface proteins: no hard override.
	withPrefs := base
	withPrefs.Preferences = plan.Preferences{PreferredProteins: []string{"tofu"}}
	assert.NotContains(t, BuildRecipePrompt(withPrefs), "MANDATORY PROTEINS")
}

func TestStorageBlockForLateWeekRecipes(t *testing.T) {
	late := RecipePromptInput{Language: "en", MealType: plan.Dinner, Servings: 4, MinShelfLife: 4}
	assert.Contains(t, BuildRecipePrompt(late), "This recipe will be eaten 4 days after it is prepared.")

	early := RecipePromptInput{Language: "en", MealType: plan.Dinner, Servings: 4, MinShelfLife: 2}
	assert.NotContains(t, BuildRecipePrompt(early), "STORAGE (IMPORTANT)")
}

func TestConceptBlock(t *testing.T) {
	in := RecipePromptInput{
		Language: "fr",
		MealType: plan.Dinner,
		Servings: 4,
		Concept:  &mealprep.Concept{Name: "Bols asiatiques", Description: "Bols de riz variés", Cuisine: "asiatique"},
	}
	prompt := BuildRecipePrompt(in)
	assert.Contains(t, prompt, "THÈME DU KIT: Bols asiatiques")
	assert.Contains(t, prompt, "Cuisine: asiatique")
}
