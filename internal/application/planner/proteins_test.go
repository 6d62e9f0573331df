package planner

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/planea/aiserver/internal/domain/plan"
)

func newDistributor(seed int64) *Distributor {
	return NewDistributor(rand.New(rand.NewSource(seed)), zap.NewNop())
}

func dinnerSlots(n int) []SlotPlan {
	out := make([]SlotPlan, n)
	for i := range out {
		out[i] = SlotPlan{Slot: plan.Slot{Weekday: plan.Monday, MealType: plan.Dinner}, Index: i}
	}
	return out
}

func TestForPlanNoImmediateRepeats(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		d := newDistributor(seed)
		out := d.ForPlan(dinnerSlots(7), plan.Preferences{})
		require.Len(t, out, 7)
		for i := 1; i < len(out); i++ {
			assert.NotEqual(t, out[i-1], out[i], "seed %d position %d", seed, i)
		}
	}
}

func TestForPlanRespectsPreferredPool(t *testing.T) {
	prefs := plan.Preferences{PreferredProteins: []string{"tofu", "salmon", "legumes", "shrimp"}}
	d := newDistributor(1)
	out := d.ForPlan(dinnerSlots(6), prefs)
	for _, p := range out {
		assert.Contains(t, prefs.PreferredProteins, p)
	}
}

func TestForPlanTinyPoolIsExtended(t *testing.T) {
	// A single preferred protein would degenerate into a monotonous plan;
	// the pool is topped up from the defaults instead.
	prefs := plan.Preferences{PreferredProteins: []string{"tofu"}}
	d := newDistributor(3)
	out := d.ForPlan(dinnerSlots(6), prefs)

	distinct := map[string]struct{}{}
	for _, p := range out {
		distinct[p] = struct{}{}
	}
	assert.GreaterOrEqual(t, len(distinct), 2)
}

func TestForPlanBreakfastUsesBreakfastPool(t *testing.T) {
	slots := []SlotPlan{
		{Slot: plan.Slot{Weekday: plan.Monday, MealType: plan.Breakfast}},
		{Slot: plan.Slot{Weekday: plan.Monday, MealType: plan.Dinner}},
		{Slot: plan.Slot{Weekday: plan.Tuesday, MealType: plan.Breakfast}},
	}
	for seed := int64(0); seed < 10; seed++ {
		d := newDistributor(seed)
		out := d.ForPlan(slots, plan.Preferences{})
		assert.Contains(t, breakfastProteinPool, out[0])
		assert.Contains(t, breakfastProteinPool, out[2])
	}
}

func TestForPlanBreakfastAvoidsLastTwo(t *testing.T) {
	slots := make([]SlotPlan, 6)
	for i := range slots {
		slots[i] = SlotPlan{Slot: plan.Slot{Weekday: plan.Monday, MealType: plan.Breakfast}}
	}
	for seed := int64(0); seed < 10; seed++ {
		d := newDistributor(seed)
		out := d.ForPlan(slots, plan.Preferences{})
		for i := 1; i < len(out); i++ {
			assert.NotEqual(t, out[i-1], out[i], "seed %d position %d", seed, i)
		}
	}
}

func TestForKitVariety(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		d := newDistributor(seed)
		n := 5
		out := d.ForKit(n, plan.Preferences{})
		require.Len(t, out, n)

		uses := map[string]int{}
		for _, p := range out {
			uses[p]++
		}
		assert.GreaterOrEqual(t, len(uses), n-1, "seed %d: %v", seed, out)
		for p, c := range uses {
			assert.LessOrEqual(t, c, 2, "seed %d protein %s", seed, p)
		}
		for i := 1; i < n-1; i++ {
			assert.NotEqual(t, out[i-1], out[i], "seed %d position %d", seed, i)
		}
	}
}

func TestForKitExcludesBreakfastOnlyProteins(t *testing.T) {
	// Kits never serve breakfasts; eggs and yogurt in the user's pool must
	// not leak into kit slots even when they are all the user listed.
	prefs := plan.Preferences{PreferredProteins: []string{"eggs", "yogurt"}}
	for seed := int64(0); seed < 10; seed++ {
		d := newDistributor(seed)
		out := d.ForKit(3, prefs)
		require.Len(t, out, 3)
		for i, p := range out {
			assert.NotEqual(t, "eggs", p, "seed %d slot %d", seed, i)
			assert.NotEqual(t, "yogurt", p, "seed %d slot %d", seed, i)
		}
	}
}

func TestForKitKeepsDualUseProteins(t *testing.T) {
	// Salmon and tofu sit in both pools; only the breakfast-exclusive
	// entries are filtered.
	prefs := plan.Preferences{PreferredProteins: []string{"eggs", "salmon", "tofu", "shrimp"}}
	for seed := int64(0); seed < 10; seed++ {
		d := newDistributor(seed)
		for i, p := range d.ForKit(4, prefs) {
			assert.NotEqual(t, "eggs", p, "seed %d slot %d", seed, i)
		}
	}
}

func TestForKitMinimumTwoUnique(t *testing.T) {
	// Even a two-slot kit with a one-protein preference must end up with
	// at least two distinct proteins.
	prefs := plan.Preferences{PreferredProteins: []string{"chicken"}}
	for seed := int64(0); seed < 10; seed++ {
		d := newDistributor(seed)
		out := d.ForKit(2, prefs)
		assert.NotEqual(t, out[0], out[1], "seed %d", seed)
	}
}
