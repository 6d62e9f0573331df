package planner

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/planea/aiserver/internal/application/ai"
	"github.com/planea/aiserver/internal/application/grocery"
	"github.com/planea/aiserver/internal/domain/plan"
	"github.com/planea/aiserver/internal/domain/recipe"
	"github.com/planea/aiserver/internal/ports/outbound"
)

// Week plans are generated for a fixed household size; servings only vary
// on the single-recipe and kit paths.
const planServings = 4

// DefaultConcurrency bounds the per-request generation fan-out.
const DefaultConcurrency = 6

// DefaultDealTimeout bounds the best-effort flyer lookup.
const DefaultDealTimeout = 10 * time.Second

// PlanItem pairs a slot with its generated recipe.
type PlanItem struct {
	Weekday  plan.Weekday  `json:"weekday"`
	MealType plan.MealType `json:"meal_type"`
	Recipe   recipe.Recipe `json:"recipe"`
}

// PlanRequest is the decoded /plan intent.
type PlanRequest struct {
	WeekStart   time.Time
	Units       plan.UnitSystem
	Slots       []plan.Slot
	Constraints plan.Constraints
	Preferences plan.Preferences
	Language    string
}

// RegenerateRequest re-rolls a single slot. The client hands back a fresh
// diversity seed so the replacement drifts toward a different style.
type RegenerateRequest struct {
	Slot          plan.Slot
	Units         plan.UnitSystem
	Constraints   plan.Constraints
	Preferences   plan.Preferences
	DiversitySeed int
	Language      string
}

// RecipeRequest is a single-recipe intent: a free-text idea or a verbatim
// title, depending on the endpoint.
type RecipeRequest struct {
	Idea        string
	ExactTitle  string
	Servings    int
	Units       plan.UnitSystem
	Constraints plan.Constraints
	Preferences plan.Preferences
	Language    string
}

// ImageRequest decodes a dish photo into a recipe.
type ImageRequest struct {
	ImageURL    string // data URL with base64 payload
	Servings    int
	Units       plan.UnitSystem
	Constraints plan.Constraints
	Preferences plan.Preferences
	Language    string
}

// Service orchestrates week-plan generation: schedule, distribute, fan out,
// enrich, match deals.
type Service struct {
	gen         *ai.Service
	deals       outbound.DealSource
	dist        *Distributor
	logger      *zap.Logger
	concurrency int
	dealTimeout time.Duration
}

// NewService wires the plan orchestrator.
func NewService(gen *ai.Service, deals outbound.DealSource, dist *Distributor, logger *zap.Logger) *Service {
	return &Service{
		gen:         gen,
		deals:       deals,
		dist:        dist,
		logger:      logger,
		concurrency: DefaultConcurrency,
		dealTimeout: DefaultDealTimeout,
	}
}

// GeneratePlan builds the full week plan. Per-slot generation is fail-soft,
// so the only error paths are input validation and request cancellation.
// The response preserves the input slot order regardless of which LLM call
// finished first.
func (s *Service) GeneratePlan(ctx context.Context, req PlanRequest) ([]PlanItem, error) {
	schedule, err := Schedule(req.Slots, req.Preferences, 0, nil)
	if err != nil {
		return nil, err
	}
	proteins := s.dist.ForPlan(schedule, req.Preferences)

	// Flyer lookup runs alongside generation and never blocks the plan:
	// by the time the fan-out joins, the deals are either there or not.
	dealCh := s.fetchDeals(ctx, req.Preferences)

	results := make([]*recipe.Recipe, len(schedule))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, sp := range schedule {
		i, sp := i, sp
		g.Go(func() error {
			in := ai.RecipePromptInput{
				Language:         req.Language,
				MealType:         sp.Slot.MealType,
				Units:            req.Units,
				Servings:         planServings,
				Constraints:      req.Constraints,
				Preferences:      req.Preferences,
				Band:             sp.Band,
				TimeCap:          sp.TimeCap,
				SuggestedProtein: proteins[i],
				DiversitySeed:    sp.DiversitySeed,
			}
			if i > 0 && proteins[i-1] != proteins[i] {
				in.ForbiddenProteins = []string{proteins[i-1]}
			}
			r := s.gen.GenerateRecipeWithRetry(gctx, in)
			r.EnrichStorage(false, req.Language)
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx := grocery.NewDealIndex(<-dealCh)
	items := make([]PlanItem, len(schedule))
	for i, sp := range schedule {
		if !idx.Empty() {
			idx.MarkOnSale(results[i])
		}
		items[i] = PlanItem{
			Weekday:  sp.Slot.Weekday,
			MealType: sp.Slot.MealType,
			Recipe:   *results[i],
		}
	}
	return items, nil
}

// fetchDeals resolves the weekly deal set off the request path. The
// returned channel always yields exactly once; failures yield nil.
func (s *Service) fetchDeals(ctx context.Context, prefs plan.Preferences) <-chan []outbound.Deal {
	ch := make(chan []outbound.Deal, 1)
	if s.deals == nil || !prefs.WantsFlyers() {
		ch <- nil
		return ch
	}
	store := prefs.Store()
	postal := *prefs.PostalCode
	go func() {
		dctx, cancel := context.WithTimeout(ctx, s.dealTimeout)
		defer cancel()
		deals, err := s.deals.GetWeeklyDeals(dctx, store, postal)
		if err != nil {
			s.logger.Warn("weekly deal lookup failed, proceeding without deals",
				zap.String("store", store),
				zap.Error(err))
			ch <- nil
			return
		}
		ch <- deals
	}()
	return ch
}

// RegenerateMeal re-rolls one slot of an existing plan.
func (s *Service) RegenerateMeal(ctx context.Context, req RegenerateRequest) (*recipe.Recipe, error) {
	schedule, err := Schedule([]plan.Slot{req.Slot}, req.Preferences, req.DiversitySeed, nil)
	if err != nil {
		return nil, err
	}
	sp := schedule[0]
	proteins := s.dist.ForPlan(schedule, req.Preferences)

	r := s.gen.GenerateRecipeWithRetry(ctx, ai.RecipePromptInput{
		Language:         req.Language,
		MealType:         sp.Slot.MealType,
		Units:            req.Units,
		Servings:         planServings,
		Constraints:      req.Constraints,
		Preferences:      req.Preferences,
		Band:             sp.Band,
		TimeCap:          sp.TimeCap,
		SuggestedProtein: proteins[0],
		DiversitySeed:    sp.DiversitySeed,
	})
	r.EnrichStorage(false, req.Language)
	return r, nil
}

// FromIdea generates a single recipe from a free-text idea.
func (s *Service) FromIdea(ctx context.Context, req RecipeRequest) *recipe.Recipe {
	r := s.gen.GenerateRecipeWithRetry(ctx, s.singleRecipeInput(req))
	r.EnrichStorage(false, req.Language)
	return r
}

// FromTitle generates a recipe whose title equals the request verbatim.
func (s *Service) FromTitle(ctx context.Context, req RecipeRequest) *recipe.Recipe {
	r := s.gen.GenerateRecipeWithRetry(ctx, s.singleRecipeInput(req))
	r.EnrichStorage(false, req.Language)
	return r
}

// FromImage decodes a dish photo. Single shot, no fallback: the caller
// surfaces failures directly.
func (s *Service) FromImage(ctx context.Context, req ImageRequest) (*recipe.Recipe, error) {
	servings := req.Servings
	if servings <= 0 {
		servings = planServings
	}
	r, err := s.gen.GenerateRecipeFromImage(ctx, req.ImageURL, ai.RecipePromptInput{
		Language:    req.Language,
		Units:       req.Units,
		Servings:    servings,
		Constraints: req.Constraints,
		Preferences: req.Preferences,
		Band:        plan.BandSimple,
	})
	if err != nil {
		return nil, err
	}
	r.EnrichStorage(false, req.Language)
	return r, nil
}

func (s *Service) singleRecipeInput(req RecipeRequest) ai.RecipePromptInput {
	servings := req.Servings
	if servings <= 0 {
		servings = planServings
	}
	cap := 0
	if req.Preferences.MaxMinutes != nil {
		cap = *req.Preferences.MaxMinutes
	}
	return ai.RecipePromptInput{
		Language:    req.Language,
		Units:       req.Units,
		Servings:    servings,
		Constraints: req.Constraints,
		Preferences: req.Preferences,
		Band:        plan.BandSimple,
		TimeCap:     cap,
		Idea:        req.Idea,
		ExactTitle:  req.ExactTitle,
	}
}
