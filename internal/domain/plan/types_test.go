package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeekday(t *testing.T) {
	for _, tag := range []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"} {
		d, err := ParseWeekday(tag)
		require.NoError(t, err)
		assert.Equal(t, tag, string(d))
	}

	_, err := ParseWeekday("Monday")
	assert.ErrorIs(t, err, ErrUnknownWeekday)
	_, err = ParseWeekday("")
	assert.ErrorIs(t, err, ErrUnknownWeekday)
}

func TestIsWeekend(t *testing.T) {
	assert.True(t, Saturday.IsWeekend())
	assert.True(t, Sunday.IsWeekend())
	assert.False(t, Monday.IsWeekend())
	assert.False(t, Friday.IsWeekend())
}

func TestParseMealType(t *testing.T) {
	for _, tag := range []string{"BREAKFAST", "LUNCH", "DINNER"} {
		m, err := ParseMealType(tag)
		require.NoError(t, err)
		assert.Equal(t, tag, string(m))
	}

	_, err := ParseMealType("brunch")
	assert.ErrorIs(t, err, ErrUnknownMealType)
}

func TestParseUnitSystemDefaultsToMetric(t *testing.T) {
	u, err := ParseUnitSystem("")
	require.NoError(t, err)
	assert.Equal(t, Metric, u)

	_, err = ParseUnitSystem("IMPERIAL")
	assert.NoError(t, err)
	_, err = ParseUnitSystem("metric")
	assert.ErrorIs(t, err, ErrUnknownUnitSystem)
}

func TestSlotValidate(t *testing.T) {
	assert.NoError(t, Slot{Weekday: Monday, MealType: Dinner}.Validate())
	assert.Error(t, Slot{Weekday: "Lundi", MealType: Dinner}.Validate())
	assert.Error(t, Slot{Weekday: Monday, MealType: "SUPPER"}.Validate())
}

func intPtr(v int) *int { return &v }

func TestTimeCap(t *testing.T) {
	// Built-in defaults.
	assert.Equal(t, DefaultWeekdayCap, Preferences{}.TimeCap(false))
	assert.Equal(t, DefaultWeekendCap, Preferences{}.TimeCap(true))

	// Generic cap covers both when the specific ones are unset.
	p := Preferences{MaxMinutes: intPtr(45)}
	assert.Equal(t, 45, p.TimeCap(false))
	assert.Equal(t, 45, p.TimeCap(true))

	// Specific caps win over the generic one.
	p = Preferences{WeekdayMaxMinutes: intPtr(20), WeekendMaxMinutes: intPtr(90), MaxMinutes: intPtr(45)}
	assert.Equal(t, 20, p.TimeCap(false))
	assert.Equal(t, 90, p.TimeCap(true))
}

func TestWantsFlyers(t *testing.T) {
	yes := true
	postal := "H2X 1Y4"
	empty := ""

	assert.False(t, Preferences{}.WantsFlyers())
	assert.False(t, Preferences{UseWeeklyFlyers: &yes}.WantsFlyers())
	assert.False(t, Preferences{UseWeeklyFlyers: &yes, PostalCode: &empty}.WantsFlyers())
	assert.True(t, Preferences{UseWeeklyFlyers: &yes, PostalCode: &postal}.WantsFlyers())
}
