package grocery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planea/aiserver/internal/domain/recipe"
	"github.com/planea/aiserver/internal/ports/outbound"
)

func deals(names ...string) []outbound.Deal {
	out := make([]outbound.Deal, len(names))
	for i, n := range names {
		out[i] = outbound.Deal{Name: n, OnSale: true}
	}
	return out
}

func recipeWith(ingredients ...string) *recipe.Recipe {
	r := &recipe.Recipe{Title: "test"}
	for _, name := range ingredients {
		r.Ingredients = append(r.Ingredients, recipe.Ingredient{Name: name, Quantity: 1, Unit: "unit"})
	}
	return r
}

func TestEmptyIndexMatchesNothing(t *testing.T) {
	var idx *DealIndex
	assert.True(t, idx.Empty())

	idx = NewDealIndex(nil)
	assert.True(t, idx.Empty())

	r := recipeWith("poulet")
	assert.Zero(t, idx.MarkOnSale(r))
	assert.False(t, r.Ingredients[0].OnSale)
}

func TestExactMatch(t *testing.T) {
	idx := NewDealIndex(deals("Poulet"))
	r := recipeWith("poulet", "riz")
	n := idx.MarkOnSale(r)
	assert.Equal(t, 1, n)
	assert.True(t, r.Ingredients[0].OnSale)
	assert.False(t, r.Ingredients[1].OnSale)
}

func TestBilingualSynonyms(t *testing.T) {
	// An English deal term flags the French ingredient spelling.
	idx := NewDealIndex(deals("chicken"))
	r := recipeWith("poitrine de poulet")
	assert.Equal(t, 1, idx.MarkOnSale(r))

	idx = NewDealIndex(deals("carottes"))
	r = recipeWith("carrots")
	assert.Equal(t, 1, idx.MarkOnSale(r))
}

func TestKeywordMatchIgnoresStopwords(t *testing.T) {
	idx := NewDealIndex(deals("filet de saumon frais"))
	r := recipeWith("saumon")
	assert.Equal(t, 1, idx.MarkOnSale(r))
}

func TestSubstringRequiresLength(t *testing.T) {
	// Long terms match through containment.
	idx := NewDealIndex(deals("champignons blancs"))
	r := recipeWith("champignons")
	assert.Equal(t, 1, idx.MarkOnSale(r))

	// Short fragments must not: "ail" inside "travail" style false hits.
	idx = NewDealIndex(deals("ail"))
	r = recipeWith("aileron de poulet")
	assert.Zero(t, idx.MarkOnSale(r))
}

func TestMarkOnSaleIdempotent(t *testing.T) {
	idx := NewDealIndex(deals("poulet", "tomates"))
	r := recipeWith("poulet", "tomates", "sel")

	first := idx.MarkOnSale(r)
	require.Equal(t, 2, first)
	snapshot := *r

	second := idx.MarkOnSale(r)
	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, *r)
}

func TestMarkOnSaleNeverTouchesQuantities(t *testing.T) {
	idx := NewDealIndex(deals("poulet"))
	r := recipeWith("poulet")
	r.Ingredients[0].Quantity = 600
	r.Ingredients[0].Unit = "g"

	idx.MarkOnSale(r)
	assert.Equal(t, float64(600), r.Ingredients[0].Quantity)
	assert.Equal(t, "g", r.Ingredients[0].Unit)
}
