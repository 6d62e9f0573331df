package mealprep

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/planea/aiserver/internal/application/ai"
	"github.com/planea/aiserver/internal/application/planner"
	"github.com/planea/aiserver/internal/domain/mealprep"
	"github.com/planea/aiserver/internal/domain/plan"
	"github.com/planea/aiserver/internal/domain/recipe"
	"github.com/planea/aiserver/internal/ports/outbound"
)

// Per-recipe time caps derived from the session budget. The session covers
// every recipe, so each one gets a slice of the budget, never less than
// minRecipeCap.
const minRecipeCap = 20

// prepBudgets maps the client's session-length choice to minutes.
var prepBudgets = map[string]int{
	"1h":   60,
	"1h30": 90,
	"2h+":  120,
}

// KitRequest is the decoded /meal-prep-kit intent.
type KitRequest struct {
	Days                    []plan.Weekday
	Meals                   []plan.MealType
	ServingsPerMeal         int
	TotalPrepTimePreference string
	SkillLevel              string
	AvoidRareIngredients    bool
	PreferLongShelfLife     bool
	Constraints             plan.Constraints
	Units                   plan.UnitSystem
	Language                string
	SelectedConcept         *mealprep.Concept
}

// Service builds meal-prep kits: floors, distribution, fan-out, enrichment,
// grouping, phases.
type Service struct {
	gen         *ai.Service
	dist        *planner.Distributor
	grouper     *Grouper
	ids         outbound.IDGenerator
	clock       outbound.Clock
	logger      *zap.Logger
	concurrency int
}

// NewService wires the kit orchestrator.
func NewService(gen *ai.Service, dist *planner.Distributor, grouper *Grouper, ids outbound.IDGenerator, clock outbound.Clock, logger *zap.Logger) *Service {
	return &Service{
		gen:         gen,
		dist:        dist,
		grouper:     grouper,
		ids:         ids,
		clock:       clock,
		logger:      logger,
		concurrency: planner.DefaultConcurrency,
	}
}

// BuildKit generates a complete kit. Recipe generation is fail-soft; the
// error paths are input validation and cancellation.
func (s *Service) BuildKit(ctx context.Context, req KitRequest) (*mealprep.Kit, error) {
	slots, err := kitSlots(req)
	if err != nil {
		return nil, err
	}

	prefs := plan.Preferences{PreferredProteins: req.Constraints.PreferredProteins}
	schedule, err := planner.Schedule(slots, prefs, 0, req.Days)
	if err != nil {
		return nil, err
	}
	s.applyBudget(schedule, req)

	proteins := s.dist.ForKit(len(schedule), prefs)
	constraints := req.Constraints
	if req.AvoidRareIngredients {
		constraints.Extra = joinNote(constraints.Extra, rareIngredientsNote(req.Language))
	}

	servings := req.ServingsPerMeal
	if servings <= 0 {
		servings = 4
	}

	results := make([]*recipe.Recipe, len(schedule))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, sp := range schedule {
		i, sp := i, sp
		g.Go(func() error {
			results[i] = s.gen.GenerateRecipeWithRetry(gctx, ai.RecipePromptInput{
				Language:          req.Language,
				MealType:          sp.Slot.MealType,
				Units:             req.Units,
				Servings:          servings,
				Constraints:       constraints,
				Band:              sp.Band,
				TimeCap:           sp.TimeCap,
				MinShelfLife:      sp.MinShelfLife,
				Concept:           req.SelectedConcept,
				SuggestedProtein:  proteins[i],
				ForbiddenProteins: othersOf(proteins, i),
				DiversitySeed:     sp.DiversitySeed,
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	refs := make([]mealprep.RecipeRef, len(schedule))
	totalPortions, totalMinutes := 0, 0
	for i, sp := range schedule {
		r := results[i]
		r.EnrichStorage(req.PreferLongShelfLife, req.Language)
		r.RaiseShelfLifeFloor(sp.MinShelfLife, req.Language)
		refs[i] = mealprep.RecipeRef{
			ID:            s.ids.NewUUID(),
			RecipeID:      s.ids.NewUUID(),
			Title:         r.Title,
			ShelfLifeDays: r.ShelfLifeDays,
			IsFreezable:   r.IsFreezable,
			StorageNote:   r.StorageNote,
			TargetWeekday: sp.Slot.Weekday,
			Recipe:        *r,
		}
		totalPortions += r.Servings
		totalMinutes += r.TotalMinutes
	}

	grouped := s.grouper.Group(refs, req.Language)
	phases := s.gen.GeneratePhases(ctx, refs, req.Language)

	kit := &mealprep.Kit{
		ID:                   s.ids.NewUUID(),
		TotalPortions:        totalPortions,
		EstimatedPrepMinutes: totalMinutes,
		Recipes:              refs,
		GroupedPrepSteps:     grouped,
		Phases:               phases,
		CreatedAt:            s.clock.Now(),
	}
	s.nameKit(kit, req)
	return kit, nil
}

// Concepts proposes three kit themes.
func (s *Service) Concepts(ctx context.Context, constraints plan.Constraints, language string) []mealprep.Concept {
	return s.gen.GenerateConcepts(ctx, constraints, language)
}

// kitSlots expands days × meals into the generation slot list. Kits batch
// lunches and dinners only.
func kitSlots(req KitRequest) ([]plan.Slot, error) {
	if len(req.Days) == 0 {
		return nil, plan.ErrNoDays
	}
	if len(req.Meals) == 0 {
		return nil, plan.ErrNoSlots
	}
	for _, m := range req.Meals {
		if m == plan.Breakfast {
			return nil, plan.ErrBreakfastInKit
		}
	}
	var slots []plan.Slot
	for _, d := range req.Days {
		if _, err := plan.ParseWeekday(string(d)); err != nil {
			return nil, err
		}
		for _, m := range req.Meals {
			if _, err := plan.ParseMealType(string(m)); err != nil {
				return nil, err
			}
			slots = append(slots, plan.Slot{Weekday: d, MealType: m})
		}
	}
	return slots, nil
}

// applyBudget overrides the weekday/weekend caps with the session budget
// sliced per recipe, and folds the skill level into the complexity bands.
func (s *Service) applyBudget(schedule []planner.SlotPlan, req KitRequest) {
	budget, ok := prepBudgets[req.TotalPrepTimePreference]
	if !ok {
		budget = prepBudgets["1h30"]
	}
	cap := budget / len(schedule)
	if cap < minRecipeCap {
		cap = minRecipeCap
	}
	for i := range schedule {
		schedule[i].TimeCap = cap
		switch req.SkillLevel {
		case "beginner":
			schedule[i].Band = plan.BandSimple
		case "advanced":
			if schedule[i].Band == plan.BandSimple {
				schedule[i].Band = plan.BandMedium
			}
		}
	}
}

// othersOf lists the distinct proteins assigned to the other slots.
func othersOf(proteins []string, i int) []string {
	var out []string
	for j, p := range proteins {
		if j == i || p == proteins[i] {
			continue
		}
		if !contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (s *Service) nameKit(kit *mealprep.Kit, req KitRequest) {
	if c := req.SelectedConcept; c != nil {
		kit.Name = c.Name
		kit.Description = c.Description
		return
	}
	if req.Language == "fr" {
		kit.Name = "Kit de batch cooking de la semaine"
		kit.Description = "Recettes préparées en une session et réparties sur les jours choisis."
		return
	}
	kit.Name = "Weekly batch-cooking kit"
	kit.Description = "Recipes cooked in one session and spread across the chosen days."
}

func joinNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + " " + note
}

func rareIngredientsNote(language string) string {
	if language == "fr" {
		return "Utilise uniquement des ingrédients courants faciles à trouver en épicerie."
	}
	return "Use only common ingredients that are easy to find at a regular grocery store."
}
