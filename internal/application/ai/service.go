package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/planea/aiserver/internal/domain/mealprep"
	"github.com/planea/aiserver/internal/domain/plan"
	"github.com/planea/aiserver/internal/domain/recipe"
	"github.com/planea/aiserver/internal/ports/outbound"
)

// ErrNoJSONObject is returned when the model reply contains no JSON object.
var ErrNoJSONObject = errors.New("no JSON object found in model reply")

// Config tunes the adapter. Zero values fall back to sane defaults via
// ApplyDefaults.
type Config struct {
	Model        string
	VisionModel  string
	Temperature  float64
	MaxTokens    int
	MaxAttempts  int
	RequestsPerS float64
	Burst        int
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
	if c.VisionModel == "" {
		c.VisionModel = "gpt-4o"
	}
	if c.Temperature == 0 {
		c.Temperature = 0.9
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 2048
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}
	if c.RequestsPerS == 0 {
		c.RequestsPerS = 10
	}
	if c.Burst == 0 {
		c.Burst = 20
	}
}

// Service is the LLM adapter: it turns prompt inputs into validated domain
// objects, absorbing malformed output, over-cap durations and hard failures
// so that plan generation itself never fails.
type Service struct {
	llm     outbound.LLMClient
	ids     outbound.IDGenerator
	logger  *zap.Logger
	limiter *rate.Limiter
	metrics *Metrics
	cfg     Config
}

// NewService builds the adapter. metrics may be nil in tests.
func NewService(llm outbound.LLMClient, ids outbound.IDGenerator, logger *zap.Logger, metrics *Metrics, cfg Config) *Service {
	cfg.ApplyDefaults()
	return &Service{
		llm:     llm,
		ids:     ids,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerS), cfg.Burst),
		metrics: metrics,
		cfg:     cfg,
	}
}

// GenerateRecipe performs a single generation attempt and returns the
// decoded, validated recipe.
func (s *Service) GenerateRecipe(ctx context.Context, in RecipePromptInput) (*recipe.Recipe, error) {
	raw, err := s.complete(ctx, "recipe", outbound.ChatRequest{
		Model:       s.cfg.Model,
		System:      RecipeSystemPrompt(in.Language),
		User:        BuildRecipePrompt(in),
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	})
	if err != nil {
		return nil, err
	}
	return s.decodeRecipe(raw, in)
}

// GenerateRecipeWithRetry runs up to MaxAttempts generation attempts and
// never returns an error: after exhaustion it serves the deterministic
// fallback recipe. An over-cap recipe triggers one more attempt in the hope
// of a naturally shorter dish; on the last attempt it is clamped instead.
func (s *Service) GenerateRecipeWithRetry(ctx context.Context, in RecipePromptInput) *recipe.Recipe {
	var lastErr error
	var clamped *recipe.Recipe
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		r, err := s.GenerateRecipe(ctx, in)
		if err != nil {
			lastErr = err
			s.logger.Warn("recipe generation attempt failed",
				zap.Int("attempt", attempt),
				zap.String("meal_type", string(in.MealType)),
				zap.Error(err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if in.TimeCap > 0 && r.TotalMinutes > in.TimeCap {
			// Clamp in place and keep as candidate; retry for a naturally
			// shorter dish while budget remains.
			s.logger.Info("recipe over time cap, clamping",
				zap.Int("attempt", attempt),
				zap.String("title", r.Title),
				zap.Int("total_minutes", r.TotalMinutes),
				zap.Int("cap", in.TimeCap))
			r.TotalMinutes = in.TimeCap
			clamped = r
			continue
		}
		return r
	}
	if clamped != nil {
		return clamped
	}

	s.metrics.fallback("recipe")
	s.logger.Error("recipe generation exhausted, serving fallback",
		zap.String("meal_type", string(in.MealType)),
		zap.Error(lastErr))
	return fallbackRecipe(in)
}

// GenerateRecipeFromImage decodes a dish photo into a recipe. Single shot:
// vision calls are expensive and the caller surfaces errors directly.
func (s *Service) GenerateRecipeFromImage(ctx context.Context, imageURL string, in RecipePromptInput) (*recipe.Recipe, error) {
	prompt := BuildRecipePrompt(in)
	if in.Language == "fr" {
		prompt = "Identifie le plat sur cette photo, puis:\n" + prompt
	} else {
		prompt = "Identify the dish in this photo, then:\n" + prompt
	}
	raw, err := s.completeWithImage(ctx, "recipe_from_image", outbound.ChatRequest{
		Model:       s.cfg.VisionModel,
		System:      RecipeSystemPrompt(in.Language),
		User:        prompt,
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	}, imageURL)
	if err != nil {
		return nil, err
	}
	return s.decodeRecipe(raw, in)
}

// ModifyRecipe applies a free-text change request to an existing recipe.
func (s *Service) ModifyRecipe(ctx context.Context, original *recipe.Recipe, request, language string) (*recipe.Recipe, error) {
	encoded, err := json.Marshal(original)
	if err != nil {
		return nil, fmt.Errorf("encoding original recipe: %w", err)
	}
	raw, err := s.complete(ctx, "modify_recipe", outbound.ChatRequest{
		Model:       s.cfg.Model,
		System:      RecipeSystemPrompt(language),
		User:        BuildModifyRecipePrompt(string(encoded), request, language),
		Temperature: 0.4,
		MaxTokens:   s.cfg.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	body, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}
	var modified recipe.Recipe
	if err := json.Unmarshal([]byte(body), &modified); err != nil {
		return nil, fmt.Errorf("decoding modified recipe: %w", err)
	}
	modified.ApplyDefaults(language)
	if err := modified.Validate(); err != nil {
		return nil, err
	}
	// The modification must not silently lose storage metadata.
	if modified.ShelfLifeDays == 0 {
		modified.ShelfLifeDays = original.ShelfLifeDays
		modified.IsFreezable = original.IsFreezable
		modified.StorageNote = original.StorageNote
	}
	return &modified, nil
}

// FreeTextReply answers a conversational turn with plain text.
func (s *Service) FreeTextReply(ctx context.Context, system, user string) (string, error) {
	return s.complete(ctx, "chat", outbound.ChatRequest{
		Model:       s.cfg.Model,
		System:      system,
		User:        user,
		Temperature: 0.7,
		MaxTokens:   s.cfg.MaxTokens,
	})
}

type phaseStepPayload struct {
	Description      string  `json:"description"`
	RecipeTitle      string  `json:"recipe_title"`
	RecipeIndex      *int    `json:"recipe_index"`
	EstimatedMinutes int     `json:"estimated_minutes"`
	IsParallel       bool    `json:"is_parallel"`
	ParallelNote     *string `json:"parallel_note"`
}

type phasePayload struct {
	Title        string             `json:"title"`
	TotalMinutes int                `json:"total_minutes"`
	Steps        []phaseStepPayload `json:"steps"`
}

// GeneratePhases synthesizes the four-phase cooking pipeline for a kit.
// Never fails: on any error it serves an empty skeleton so the kit still
// renders. Every phase and step gets a fresh identifier regardless of what
// the model claimed.
func (s *Service) GeneratePhases(ctx context.Context, recipes []mealprep.RecipeRef, language string) []mealprep.Phase {
	raw, err := s.complete(ctx, "phases", outbound.ChatRequest{
		Model:       s.cfg.Model,
		System:      PhasesSystemPrompt(language),
		User:        BuildPhasesPrompt(recipes, language),
		Temperature: 0.5,
		MaxTokens:   s.cfg.MaxTokens,
	})
	if err != nil {
		s.metrics.fallback("phases")
		s.logger.Error("phase synthesis failed, serving skeleton", zap.Error(err))
		return s.skeletonPhases(language)
	}

	phases, err := s.decodePhases(raw)
	if err != nil {
		s.metrics.fallback("phases")
		s.logger.Error("phase payload rejected, serving skeleton", zap.Error(err))
		return s.skeletonPhases(language)
	}
	return phases
}

func (s *Service) decodePhases(raw string) ([]mealprep.Phase, error) {
	body, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}
	var payload map[string]phasePayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil, fmt.Errorf("decoding phases: %w", err)
	}

	phases := make([]mealprep.Phase, 0, len(mealprep.PhaseKeys))
	for _, key := range mealprep.PhaseKeys {
		p, ok := payload[key]
		if !ok {
			return nil, fmt.Errorf("phase payload missing %q", key)
		}
		phase := mealprep.Phase{
			ID:           s.ids.NewUUID(),
			Title:        p.Title,
			TotalMinutes: p.TotalMinutes,
			Steps:        make([]mealprep.PhaseStep, 0, len(p.Steps)),
		}
		summed := 0
		for _, step := range p.Steps {
			phase.Steps = append(phase.Steps, mealprep.PhaseStep{
				ID:               s.ids.NewUUID(),
				Description:      step.Description,
				RecipeTitle:      step.RecipeTitle,
				RecipeIndex:      step.RecipeIndex,
				EstimatedMinutes: step.EstimatedMinutes,
				IsParallel:       step.IsParallel,
				ParallelNote:     step.ParallelNote,
			})
			summed += step.EstimatedMinutes
		}
		if phase.TotalMinutes <= 0 {
			phase.TotalMinutes = summed
		}
		phases = append(phases, phase)
	}
	return phases, nil
}

// skeletonPhases is the zero-step fallback pipeline.
func (s *Service) skeletonPhases(language string) []mealprep.Phase {
	titles := map[string]string{
		mealprep.PhaseCook:     "Cooking",
		mealprep.PhaseAssemble: "Assembly",
		mealprep.PhaseCool:     "Cooling",
		mealprep.PhaseStore:    "Storage",
	}
	if language == "fr" {
		titles = map[string]string{
			mealprep.PhaseCook:     "Cuisson",
			mealprep.PhaseAssemble: "Assemblage",
			mealprep.PhaseCool:     "Refroidissement",
			mealprep.PhaseStore:    "Rangement",
		}
	}
	phases := make([]mealprep.Phase, 0, len(mealprep.PhaseKeys))
	for _, key := range mealprep.PhaseKeys {
		phases = append(phases, mealprep.Phase{
			ID:    s.ids.NewUUID(),
			Title: titles[key],
			Steps: []mealprep.PhaseStep{},
		})
	}
	return phases
}

type conceptsPayload struct {
	Concepts []struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Cuisine     string   `json:"cuisine"`
		Tags        []string `json:"tags"`
	} `json:"concepts"`
}

// GenerateConcepts proposes three kit themes. Falls back to a static
// localized trio so the concept picker always has something to show.
func (s *Service) GenerateConcepts(ctx context.Context, constraints plan.Constraints, language string) []mealprep.Concept {
	raw, err := s.complete(ctx, "concepts", outbound.ChatRequest{
		Model:       s.cfg.Model,
		System:      RecipeSystemPrompt(language),
		User:        BuildConceptsPrompt(constraints, language),
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	})
	if err == nil {
		if concepts, derr := s.decodeConcepts(raw); derr == nil {
			return concepts
		} else {
			err = derr
		}
	}
	s.metrics.fallback("concepts")
	s.logger.Error("concept generation failed, serving static concepts", zap.Error(err))
	return s.staticConcepts(language)
}

func (s *Service) decodeConcepts(raw string) ([]mealprep.Concept, error) {
	body, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}
	var payload conceptsPayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil, fmt.Errorf("decoding concepts: %w", err)
	}
	if len(payload.Concepts) == 0 {
		return nil, errors.New("empty concept list")
	}
	concepts := make([]mealprep.Concept, 0, len(payload.Concepts))
	for _, c := range payload.Concepts {
		if strings.TrimSpace(c.Name) == "" {
			continue
		}
		concepts = append(concepts, mealprep.Concept{
			ID:          s.ids.NewUUID(),
			Name:        c.Name,
			Description: c.Description,
			Cuisine:     c.Cuisine,
			Tags:        c.Tags,
		})
	}
	if len(concepts) == 0 {
		return nil, errors.New("no usable concepts in payload")
	}
	return concepts, nil
}

func (s *Service) staticConcepts(language string) []mealprep.Concept {
	if language == "fr" {
		return []mealprep.Concept{
			{ID: s.ids.NewUUID(), Name: "Semaine méditerranéenne", Description: "Plats colorés à base de légumes, poisson et légumineuses.", Cuisine: "méditerranéenne", Tags: []string{"santé", "léger"}},
			{ID: s.ids.NewUUID(), Name: "Confort réinventé", Description: "Mijotés et gratins réconfortants qui se conservent bien.", Cuisine: "française", Tags: []string{"réconfort", "congélation"}},
			{ID: s.ids.NewUUID(), Name: "Bols asiatiques", Description: "Bols de riz et de nouilles avec protéines variées.", Cuisine: "asiatique", Tags: []string{"rapide", "varié"}},
		}
	}
	return []mealprep.Concept{
		{ID: s.ids.NewUUID(), Name: "Mediterranean week", Description: "Colorful dishes built on vegetables, fish and legumes.", Cuisine: "Mediterranean", Tags: []string{"healthy", "light"}},
		{ID: s.ids.NewUUID(), Name: "Comfort food, reinvented", Description: "Stews and casseroles that keep well through the week.", Cuisine: "French", Tags: []string{"comfort", "freezer-friendly"}},
		{ID: s.ids.NewUUID(), Name: "Asian bowls", Description: "Rice and noodle bowls with rotating proteins.", Cuisine: "Asian", Tags: []string{"quick", "varied"}},
	}
}

func (s *Service) complete(ctx context.Context, operation string, req outbound.ChatRequest) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}
	start := time.Now()
	raw, err := s.llm.ChatCompletion(ctx, req)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.metrics.observe(operation, outcome, time.Since(start).Seconds())
	return raw, err
}

func (s *Service) completeWithImage(ctx context.Context, operation string, req outbound.ChatRequest, imageURL string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}
	start := time.Now()
	raw, err := s.llm.ChatCompletionWithImage(ctx, req, imageURL)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.metrics.observe(operation, outcome, time.Since(start).Seconds())
	return raw, err
}

func (s *Service) decodeRecipe(raw string, in RecipePromptInput) (*recipe.Recipe, error) {
	body, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}
	var r recipe.Recipe
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return nil, fmt.Errorf("decoding recipe: %w", err)
	}
	r.ApplyDefaults(in.Language)
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if len(r.Steps) < recipe.MinGeneratedSteps {
		return nil, recipe.ErrTooFewSteps
	}
	// The exact-title endpoints guarantee the requested title verbatim,
	// regardless of model creativity.
	if in.ExactTitle != "" {
		r.Title = in.ExactTitle
	}
	return &r, nil
}

// extractJSON recovers the JSON object from a model reply that may be
// wrapped in markdown fences or prose: strip fences, then take everything
// from the first "{" to the last "}".
func extractJSON(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end <= start {
		return "", ErrNoJSONObject
	}
	return cleaned[start : end+1], nil
}

// fallbackRecipe is the deterministic recipe served when every generation
// attempt fails: one primary ingredient, two generic steps, the time cap as
// its duration. It always decodes and never exceeds the cap.
func fallbackRecipe(in RecipePromptInput) *recipe.Recipe {
	minutes := 30
	if in.TimeCap > 0 {
		minutes = in.TimeCap
	}
	servings := in.Servings
	if servings <= 0 {
		servings = 4
	}
	title := func(def string) string {
		if in.ExactTitle != "" {
			return in.ExactTitle
		}
		return def
	}

	if in.Language == "fr" {
		return &recipe.Recipe{
			Title:        title("Poulet grillé simple"),
			Servings:     servings,
			TotalMinutes: minutes,
			Ingredients: []recipe.Ingredient{
				{Name: "poitrines de poulet", Quantity: 600, Unit: "g", Category: "viandes"},
			},
			Steps: []string{
				"Assaisonner le poulet de sel, de poivre et d'huile d'olive.",
				"Griller à feu moyen-vif jusqu'à cuisson complète et servir avec un accompagnement au choix.",
			},
			Equipment: []string{"poêle"},
			Tags:      []string{"simple"},
		}
	}
	return &recipe.Recipe{
		Title:        title("Simple grilled chicken"),
		Servings:     servings,
		TotalMinutes: minutes,
		Ingredients: []recipe.Ingredient{
			{Name: "chicken breasts", Quantity: 600, Unit: "g", Category: "meats"},
		},
		Steps: []string{
			"Season the chicken with salt, pepper and olive oil.",
			"Grill over medium-high heat until cooked through and serve with a side of your choice.",
		},
		Equipment: []string{"pan"},
		Tags:      []string{"simple"},
	}
}
