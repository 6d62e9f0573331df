// Package plan contains the core domain types for week planning:
// slots, weekdays, meal types, unit systems and the user preference model.
package plan

import "time"

// Weekday is the wire tag for a day of the week. The client parses these
// literals, so they are bit-exact: Mon..Sun.
type Weekday string

const (
	Monday    Weekday = "Mon"
	Tuesday   Weekday = "Tue"
	Wednesday Weekday = "Wed"
	Thursday  Weekday = "Thu"
	Friday    Weekday = "Fri"
	Saturday  Weekday = "Sat"
	Sunday    Weekday = "Sun"
)

// Weekdays lists all weekdays in calendar order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseWeekday validates a weekday tag.
func ParseWeekday(s string) (Weekday, error) {
	for _, d := range Weekdays {
		if string(d) == s {
			return d, nil
		}
	}
	return "", ErrUnknownWeekday
}

// IsWeekend reports whether the weekday falls on Saturday or Sunday.
func (d Weekday) IsWeekend() bool {
	return d == Saturday || d == Sunday
}

// Time returns the civil date of this weekday within the week starting at weekStart.
func (d Weekday) Time(weekStart time.Time) time.Time {
	for i, day := range Weekdays {
		if day == d {
			return weekStart.AddDate(0, 0, i)
		}
	}
	return weekStart
}

// MealType is the wire tag for a meal slot kind.
type MealType string

const (
	Breakfast MealType = "BREAKFAST"
	Lunch     MealType = "LUNCH"
	Dinner    MealType = "DINNER"
)

// ParseMealType validates a meal type tag.
func ParseMealType(s string) (MealType, error) {
	switch MealType(s) {
	case Breakfast, Lunch, Dinner:
		return MealType(s), nil
	}
	return "", ErrUnknownMealType
}

// UnitSystem selects metric or imperial quantities in generated recipes.
type UnitSystem string

const (
	Metric   UnitSystem = "METRIC"
	Imperial UnitSystem = "IMPERIAL"
)

// ParseUnitSystem validates a unit system tag, defaulting to metric when empty.
func ParseUnitSystem(s string) (UnitSystem, error) {
	switch UnitSystem(s) {
	case Metric, Imperial:
		return UnitSystem(s), nil
	case "":
		return Metric, nil
	}
	return "", ErrUnknownUnitSystem
}

// Slot is a (weekday, meal type) coordinate in a week plan or meal-prep kit.
type Slot struct {
	Weekday  Weekday  `json:"weekday"`
	MealType MealType `json:"meal_type"`
}

// Validate checks both coordinates of the slot.
func (s Slot) Validate() error {
	if _, err := ParseWeekday(string(s.Weekday)); err != nil {
		return err
	}
	if _, err := ParseMealType(string(s.MealType)); err != nil {
		return err
	}
	return nil
}

// ComplexityBand drives how elaborate the generated dish should be.
// It is derived deterministically from the slot position and time budget
// so that the same request always produces the same band mix.
type ComplexityBand string

const (
	BandSimple  ComplexityBand = "simple"
	BandMedium  ComplexityBand = "medium"
	BandComplex ComplexityBand = "complex"
)
