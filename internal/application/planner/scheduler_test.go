package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planea/aiserver/internal/domain/plan"
)

func intPtr(v int) *int { return &v }

func TestScheduleRejectsEmptyAndInvalidSlots(t *testing.T) {
	_, err := Schedule(nil, plan.Preferences{}, 0, nil)
	assert.ErrorIs(t, err, plan.ErrNoSlots)

	_, err = Schedule([]plan.Slot{{Weekday: "Funday", MealType: plan.Dinner}}, plan.Preferences{}, 0, nil)
	assert.ErrorIs(t, err, plan.ErrUnknownWeekday)
}

func TestScheduleBands(t *testing.T) {
	slots := []plan.Slot{
		{Weekday: plan.Monday, MealType: plan.Dinner},   // weekday, cap 30
		{Weekday: plan.Tuesday, MealType: plan.Dinner},  // weekday, cap 30
		{Weekday: plan.Saturday, MealType: plan.Dinner}, // weekend, cap 60, even index
		{Weekday: plan.Sunday, MealType: plan.Dinner},   // weekend, cap 60, odd index
	}
	schedule, err := Schedule(slots, plan.Preferences{}, 0, nil)
	require.NoError(t, err)

	assert.Equal(t, plan.BandSimple, schedule[0].Band)
	assert.Equal(t, plan.BandSimple, schedule[1].Band)
	assert.Equal(t, plan.BandComplex, schedule[2].Band)
	assert.Equal(t, plan.BandMedium, schedule[3].Band)

	assert.Equal(t, 30, schedule[0].TimeCap)
	assert.Equal(t, 60, schedule[2].TimeCap)
	assert.False(t, schedule[0].IsWeekend)
	assert.True(t, schedule[2].IsWeekend)
}

func TestScheduleWeekendWithoutBudgetIsMedium(t *testing.T) {
	// A weekend slot capped under an hour never goes elaborate.
	prefs := plan.Preferences{WeekendMaxMinutes: intPtr(45)}
	schedule, err := Schedule([]plan.Slot{{Weekday: plan.Saturday, MealType: plan.Dinner}}, prefs, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, plan.BandMedium, schedule[0].Band)
}

func TestScheduleGenerousWeekdayIsMedium(t *testing.T) {
	prefs := plan.Preferences{WeekdayMaxMinutes: intPtr(40)}
	schedule, err := Schedule([]plan.Slot{{Weekday: plan.Wednesday, MealType: plan.Dinner}}, prefs, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, plan.BandMedium, schedule[0].Band)
}

func TestScheduleDiversitySeeds(t *testing.T) {
	slots := []plan.Slot{
		{Weekday: plan.Monday, MealType: plan.Dinner},
		{Weekday: plan.Tuesday, MealType: plan.Dinner},
	}
	schedule, err := Schedule(slots, plan.Preferences{}, 7, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, schedule[0].DiversitySeed)
	assert.Equal(t, 8, schedule[1].DiversitySeed)

	// Identical inputs produce identical schedules.
	again, err := Schedule(slots, plan.Preferences{}, 7, nil)
	require.NoError(t, err)
	assert.Equal(t, schedule, again)
}

func TestSchedulePlanModeHasNoShelfLife(t *testing.T) {
	schedule, err := Schedule([]plan.Slot{{Weekday: plan.Friday, MealType: plan.Lunch}}, plan.Preferences{}, 0, nil)
	require.NoError(t, err)
	assert.Zero(t, schedule[0].TargetDayIndex)
	assert.Zero(t, schedule[0].MinShelfLife)
}

func TestScheduleKitShelfLifeFollowsDayList(t *testing.T) {
	// The target day index is the weekday's position in the kit's day
	// list, not its calendar position.
	kitDays := []plan.Weekday{plan.Monday, plan.Wednesday, plan.Friday}
	slots := []plan.Slot{
		{Weekday: plan.Monday, MealType: plan.Lunch},
		{Weekday: plan.Monday, MealType: plan.Dinner},
		{Weekday: plan.Wednesday, MealType: plan.Lunch},
		{Weekday: plan.Friday, MealType: plan.Dinner},
	}
	schedule, err := Schedule(slots, plan.Preferences{}, 0, kitDays)
	require.NoError(t, err)

	assert.Equal(t, 0, schedule[0].TargetDayIndex)
	assert.Equal(t, 1, schedule[0].MinShelfLife)
	assert.Equal(t, 0, schedule[1].TargetDayIndex)
	assert.Equal(t, 1, schedule[2].TargetDayIndex)
	assert.Equal(t, 2, schedule[2].MinShelfLife)
	assert.Equal(t, 2, schedule[3].TargetDayIndex)
	assert.Equal(t, 3, schedule[3].MinShelfLife)
}
