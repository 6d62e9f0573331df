package recipe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecipe() Recipe {
	return Recipe{
		Title:        "Poulet rôti",
		Servings:     4,
		TotalMinutes: 45,
		Ingredients: []Ingredient{
			{Name: "poulet", Quantity: 600, Unit: "g", Category: "viandes"},
		},
		Steps: []string{"Préchauffer le four.", "Rôtir le poulet."},
	}
}

func TestValidate(t *testing.T) {
	r := validRecipe()
	require.NoError(t, r.Validate())

	r = validRecipe()
	r.Title = "  "
	assert.ErrorIs(t, r.Validate(), ErrEmptyTitle)

	r = validRecipe()
	r.Servings = 0
	assert.ErrorIs(t, r.Validate(), ErrInvalidServings)

	r = validRecipe()
	r.TotalMinutes = 0
	assert.ErrorIs(t, r.Validate(), ErrInvalidTotalMinutes)

	r = validRecipe()
	r.Ingredients = nil
	assert.ErrorIs(t, r.Validate(), ErrNoIngredients)

	r = validRecipe()
	r.Ingredients[0].Name = ""
	assert.ErrorIs(t, r.Validate(), ErrUnnamedIngredient)

	r = validRecipe()
	r.Ingredients[0].Quantity = -1
	assert.ErrorIs(t, r.Validate(), ErrNegativeQuantity)

	r = validRecipe()
	r.Steps = nil
	assert.ErrorIs(t, r.Validate(), ErrNoSteps)
}

func TestApplyDefaultsLocalized(t *testing.T) {
	r := Recipe{Ingredients: []Ingredient{{Name: "sel"}, {Name: "farine", Unit: "g", Category: "sec"}}}
	r.ApplyDefaults("fr")
	assert.Equal(t, "unité", r.Ingredients[0].Unit)
	assert.Equal(t, "autre", r.Ingredients[0].Category)
	// Already-set fields are left alone.
	assert.Equal(t, "g", r.Ingredients[1].Unit)
	assert.Equal(t, "sec", r.Ingredients[1].Category)

	r = Recipe{Ingredients: []Ingredient{{Name: "salt"}}}
	r.ApplyDefaults("en")
	assert.Equal(t, "unit", r.Ingredients[0].Unit)
	assert.Equal(t, "other", r.Ingredients[0].Category)
}

func TestEnrichStorageBuckets(t *testing.T) {
	tests := []struct {
		title     string
		days      int
		freezable bool
	}{
		{"Salade de quinoa", 2, false},
		{"Crevettes à l'ail", 2, false},
		{"Poulet au miel", 3, true},
		{"Soupe aux lentilles", 5, true},
		{"Chili con carne", 5, true},
		{"Bol du dragon", 3, true}, // default bucket
	}
	for _, tt := range tests {
		r := Recipe{Title: tt.title}
		r.EnrichStorage(false, "fr")
		assert.Equal(t, tt.days, r.ShelfLifeDays, tt.title)
		assert.Equal(t, tt.freezable, r.IsFreezable, tt.title)
		assert.NotEmpty(t, r.StorageNote, tt.title)
	}
}

func TestEnrichStorageFragileWinsOverProtein(t *testing.T) {
	// "salade de poulet" contains both a fragile and a protein keyword;
	// the fragile bucket must win.
	r := Recipe{Title: "Salade de poulet"}
	r.EnrichStorage(false, "fr")
	assert.Equal(t, 2, r.ShelfLifeDays)
	assert.False(t, r.IsFreezable)
}

func TestEnrichStoragePreferLongShelfLife(t *testing.T) {
	r := Recipe{Title: "Poulet grillé"}
	r.EnrichStorage(true, "en")
	assert.Equal(t, 4, r.ShelfLifeDays)

	r = Recipe{Title: "Poulet grillé"}
	r.EnrichStorage(false, "en")
	assert.Equal(t, 3, r.ShelfLifeDays)
}

func TestStorageNoteLocalization(t *testing.T) {
	r := Recipe{Title: "Soupe à l'oignon"}
	r.EnrichStorage(false, "fr")
	assert.True(t, strings.Contains(r.StorageNote, "réfrigérateur"))
	assert.True(t, strings.Contains(r.StorageNote, "congelé"))

	r = Recipe{Title: "Salade verte"}
	r.EnrichStorage(false, "en")
	assert.True(t, strings.Contains(r.StorageNote, "Do not freeze"))
}

func TestRaiseShelfLifeFloor(t *testing.T) {
	r := Recipe{Title: "Poulet au citron"}
	r.EnrichStorage(false, "en") // 3 days
	r.RaiseShelfLifeFloor(5, "en")
	assert.Equal(t, 5, r.ShelfLifeDays)
	assert.True(t, strings.Contains(r.StorageNote, "5 days"))

	// A floor below the classified value changes nothing.
	note := r.StorageNote
	r.RaiseShelfLifeFloor(2, "en")
	assert.Equal(t, 5, r.ShelfLifeDays)
	assert.Equal(t, note, r.StorageNote)
}
