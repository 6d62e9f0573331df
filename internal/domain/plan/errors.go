package plan

import "errors"

// Domain errors for plan requests

var (
	ErrUnknownWeekday    = errors.New("unknown weekday tag")
	ErrUnknownMealType   = errors.New("unknown meal type tag")
	ErrUnknownUnitSystem = errors.New("unknown unit system tag")
	ErrNoSlots           = errors.New("plan request must contain at least one slot")
	ErrNoDays            = errors.New("meal-prep request must contain at least one day")
	ErrBreakfastInKit    = errors.New("meal-prep kits support lunch and dinner only")
)
