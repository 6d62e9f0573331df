package recipe

import "errors"

// Domain errors for recipe validation

var (
	ErrEmptyTitle          = errors.New("recipe title must not be empty")
	ErrInvalidServings     = errors.New("servings must be greater than 0")
	ErrInvalidTotalMinutes = errors.New("total_minutes must be greater than 0")
	ErrNoIngredients       = errors.New("recipe must have at least one ingredient")
	ErrUnnamedIngredient   = errors.New("every ingredient must have a name")
	ErrNegativeQuantity    = errors.New("ingredient quantity must not be negative")
	ErrNoSteps             = errors.New("recipe must have at least one step")
	ErrTooFewSteps         = errors.New("generated recipe has too few steps")
)
