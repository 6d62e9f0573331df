// Package planner implements week-plan orchestration: slot scheduling,
// protein distribution and the parallel generation fan-out.
package planner

import (
	"github.com/planea/aiserver/internal/domain/plan"
)

// SlotPlan is the per-slot generation schedule: the time budget, complexity
// band, shelf-life floor and diversity seed every generation call receives.
type SlotPlan struct {
	Slot      plan.Slot
	Index     int
	IsWeekend bool
	TimeCap   int
	Band      plan.ComplexityBand

	// Kit scheduling: 0-based day offset from the cook day, and the
	// shelf-life floor it implies. Zero for plain week plans.
	TargetDayIndex int
	MinShelfLife   int

	DiversitySeed int
}

// Schedule derives the deterministic generation schedule for the requested
// slots. baseSeed offsets the diversity seeds so a regenerated plan drifts
// toward different cuisines; everything else is a pure function of the
// slot list and preferences. kitDays, when non-nil, is the kit's ordered
// day list: each slot's target consumption day is its weekday's position in
// that list, and the shelf-life floor follows from it.
func Schedule(slots []plan.Slot, prefs plan.Preferences, baseSeed int, kitDays []plan.Weekday) ([]SlotPlan, error) {
	if len(slots) == 0 {
		return nil, plan.ErrNoSlots
	}
	for _, s := range slots {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}

	out := make([]SlotPlan, len(slots))
	for i, s := range slots {
		weekend := s.Weekday.IsWeekend()
		cap := prefs.TimeCap(weekend)
		sp := SlotPlan{
			Slot:          s,
			Index:         i,
			IsWeekend:     weekend,
			TimeCap:       cap,
			Band:          bandFor(weekend, cap, i),
			DiversitySeed: baseSeed + i,
		}
		if kitDays != nil {
			sp.TargetDayIndex = dayIndex(s.Weekday, kitDays)
			sp.MinShelfLife = sp.TargetDayIndex + 1
		}
		out[i] = sp
	}
	return out, nil
}

// bandFor maps a slot position onto a complexity band. Elaborate dishes are
// reserved for weekend slots with a real time budget, and only every other
// one so a full weekend is not wall-to-wall projects.
func bandFor(weekend bool, cap, index int) plan.ComplexityBand {
	if weekend && cap >= 60 && index%2 == 0 {
		return plan.BandComplex
	}
	if weekend || cap > 30 {
		return plan.BandMedium
	}
	return plan.BandSimple
}

func dayIndex(d plan.Weekday, days []plan.Weekday) int {
	for i, day := range days {
		if day == d {
			return i
		}
	}
	return 0
}
