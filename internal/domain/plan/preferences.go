package plan

// Preferences is the user configuration bundle forwarded by the client.
// Every option is optional: absence is distinct from the zero value, so
// scalar options are pointers. Mirrors the onboarding model on the app side.
type Preferences struct {
	WeekdayMaxMinutes     *int     `json:"weekdayMaxMinutes,omitempty"`
	WeekendMaxMinutes     *int     `json:"weekendMaxMinutes,omitempty"`
	MaxMinutes            *int     `json:"maxMinutes,omitempty"`
	SpiceLevel            *string  `json:"spiceLevel,omitempty"`
	PreferredProteins     []string `json:"preferredProteins,omitempty"`
	AvailableAppliances   []string `json:"availableAppliances,omitempty"`
	KidFriendly           *bool    `json:"kidFriendly,omitempty"`
	UseWeeklyFlyers       *bool    `json:"useWeeklyFlyers,omitempty"`
	PostalCode            *string  `json:"postalCode,omitempty"`
	PreferredGroceryStore *string  `json:"preferredGroceryStore,omitempty"`
}

// Default time caps when the user never set a budget.
const (
	DefaultWeekdayCap = 30
	DefaultWeekendCap = 60
)

// TimeCap returns the effective per-meal time budget in minutes for a
// weekday or weekend slot, falling back to the generic cap and then the
// built-in defaults.
func (p Preferences) TimeCap(weekend bool) int {
	if weekend {
		if p.WeekendMaxMinutes != nil {
			return *p.WeekendMaxMinutes
		}
		if p.MaxMinutes != nil {
			return *p.MaxMinutes
		}
		return DefaultWeekendCap
	}
	if p.WeekdayMaxMinutes != nil {
		return *p.WeekdayMaxMinutes
	}
	if p.MaxMinutes != nil {
		return *p.MaxMinutes
	}
	return DefaultWeekdayCap
}

// WantsFlyers reports whether the deal source should be consulted. It
// requires both the opt-in flag and a postal code.
func (p Preferences) WantsFlyers() bool {
	return p.UseWeeklyFlyers != nil && *p.UseWeeklyFlyers &&
		p.PostalCode != nil && *p.PostalCode != ""
}

// Store returns the preferred grocery store, empty when unset.
func (p Preferences) Store() string {
	if p.PreferredGroceryStore == nil {
		return ""
	}
	return *p.PreferredGroceryStore
}

// Constraints carries the hard dietary directives of a request.
// Evict has absolute priority over every other directive: it is rendered
// first in every prompt and forbids substitutes.
type Constraints struct {
	Diet              []string `json:"diet,omitempty"`
	Evict             []string `json:"evict,omitempty"`
	PreferredProteins []string `json:"preferredProteins,omitempty"`
	Extra             string   `json:"extra,omitempty"`
	PreferencesString string   `json:"preferences_string,omitempty"`
}

