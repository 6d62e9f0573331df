package chat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/planea/aiserver/internal/application/ai"
	"github.com/planea/aiserver/internal/application/planner"
	chatdom "github.com/planea/aiserver/internal/domain/chat"
	"github.com/planea/aiserver/internal/domain/plan"
	"github.com/planea/aiserver/internal/domain/recipe"
)

// Request is the decoded /chat intent. The premium gate runs in the
// transport layer before this is ever built.
type Request struct {
	Message     string
	History     []chatdom.Turn
	UserContext chatdom.UserContext
	Language    string
}

// Service routes a chat turn to its intent handler and composes the reply.
type Service struct {
	gen    *ai.Service
	plans  *planner.Service
	logger *zap.Logger
}

// NewService wires the chat orchestrator.
func NewService(gen *ai.Service, plans *planner.Service, logger *zap.Logger) *Service {
	return &Service{gen: gen, plans: plans, logger: logger}
}

// Handle classifies the turn and dispatches. Mutating intents stage a
// pending payload for the client; everything else is read-only.
func (s *Service) Handle(ctx context.Context, req Request) (*chatdom.Response, error) {
	intent := Classify(req.Message, req.History, req.UserContext)
	s.logger.Debug("chat turn classified", zap.String("intent", string(intent)))

	switch intent {
	case chatdom.IntentPlanDisplay:
		return s.planDisplay(req), nil
	case chatdom.IntentConfirmation:
		return s.confirmation(req), nil
	case chatdom.IntentAddMeal:
		return s.addMeal(ctx, req)
	case chatdom.IntentAddMealMissing:
		return s.addMealMissing(req), nil
	case chatdom.IntentModifyRecipe:
		return s.modifyRecipe(ctx, req)
	case chatdom.IntentNutrition:
		return s.freeText(ctx, req, chatdom.ModeNutritionCoach)
	default:
		return s.freeText(ctx, req, chatdom.ModeRecipeQA)
	}
}

// planDisplay renders the client's current plan. The leading marker is
// parsed by the client, so it is bit-exact. No LLM call.
func (s *Service) planDisplay(req Request) *chatdom.Response {
	fr := req.Language == "fr"
	var b strings.Builder
	if fr {
		b.WriteString("📅 PLAN ACTUEL\n")
	} else {
		b.WriteString("📅 CURRENT PLAN\n")
	}
	for _, day := range plan.Weekdays {
		meals, ok := req.UserContext.CurrentPlan[day]
		if !ok || len(meals) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s:\n", dayName(day, fr))
		for _, m := range meals {
			fmt.Fprintf(&b, "- %s: %s\n", mealLabel(m.MealType, fr), m.Title)
		}
	}
	return &chatdom.Response{
		Reply:        b.String(),
		DetectedMode: chatdom.ModeRecipeQA,
	}
}

// confirmation acknowledges an apply of the client-held pending change.
func (s *Service) confirmation(req Request) *chatdom.Response {
	reply := "Done! The change has been applied to your plan."
	if req.Language == "fr" {
		reply = "C'est fait! La modification a été appliquée à ton plan."
	}
	return &chatdom.Response{
		Reply:                reply,
		DetectedMode:         chatdom.ModeRecipeQA,
		ModificationMetadata: map[string]string{"action": "apply_pending"},
	}
}

// addMeal generates a recipe for the extracted slot and stages it for the
// client to add.
func (s *Service) addMeal(ctx context.Context, req Request) (*chatdom.Response, error) {
	lower := strings.ToLower(req.Message)
	day, _ := extractWeekday(lower)
	meal, _ := extractMealType(lower)
	idea := stripIntentTokens(req.Message)

	r := s.plans.FromIdea(ctx, planner.RecipeRequest{
		Idea:        idea,
		Constraints: req.UserContext.Constraints,
		Preferences: req.UserContext.Preferences,
		Language:    req.Language,
	})

	fr := req.Language == "fr"
	var reply string
	if fr {
		reply = fmt.Sprintf("Voici ce que je te propose pour %s (%s):\n\n📋 **%s**\n\nVeux-tu que je l'ajoute à ton plan?",
			dayName(day, true), strings.ToLower(mealLabel(meal, true)), r.Title)
	} else {
		reply = fmt.Sprintf("Here is my suggestion for %s (%s):\n\n📋 **%s**\n\nShould I add it to your plan?",
			dayName(day, false), strings.ToLower(mealLabel(meal, false)), r.Title)
	}
	return &chatdom.Response{
		Reply:                reply,
		DetectedMode:         chatdom.ModeRecipeQA,
		RequiresConfirmation: true,
		ModifiedRecipe:       r,
		ModificationType:     chatdom.ModPendingAddMeal,
		ModificationMetadata: map[string]string{
			"weekday":   string(day),
			"meal_type": string(meal),
		},
		PendingRecipeModification: &chatdom.PendingModification{
			ProposedRecipe:   r,
			ModificationType: chatdom.ModPendingAddMeal,
			TargetWeekday:    day,
			TargetMealType:   meal,
		},
	}, nil
}

// addMealMissing asks for the missing slot coordinate instead of guessing.
func (s *Service) addMealMissing(req Request) *chatdom.Response {
	lower := strings.ToLower(req.Message)
	_, hasDay := extractWeekday(lower)
	fr := req.Language == "fr"

	var reply string
	switch {
	case !hasDay && fr:
		reply = "Avec plaisir! Pour quel jour de la semaine veux-tu ajouter ce repas?"
	case !hasDay:
		reply = "Happy to! Which day of the week should I add this meal to?"
	case fr:
		reply = "Bien sûr! Pour quel repas: déjeuner, dîner ou souper?"
	default:
		reply = "Sure! For which meal: breakfast, lunch or dinner?"
	}
	return &chatdom.Response{
		Reply:        reply,
		DetectedMode: chatdom.ModeRecipeQA,
	}
}

// modifyRecipe locates the target, asks the model for the modified version
// and stages it pending confirmation. Nothing is applied server-side.
func (s *Service) modifyRecipe(ctx context.Context, req Request) (*chatdom.Response, error) {
	target := findRecipe(req.Message, req.UserContext)
	fr := req.Language == "fr"
	if target == nil {
		reply := "Which recipe would you like to change? Tell me its name."
		if fr {
			reply = "Quelle recette veux-tu modifier? Donne-moi son nom."
		}
		return &chatdom.Response{Reply: reply, DetectedMode: chatdom.ModeRecipeQA}, nil
	}

	modified, err := s.gen.ModifyRecipe(ctx, target, req.Message, req.Language)
	if err != nil {
		s.logger.Warn("recipe modification failed", zap.String("title", target.Title), zap.Error(err))
		reply := "I could not modify that recipe right now. Try again in a moment."
		if fr {
			reply = "Je n'ai pas réussi à modifier cette recette. Réessaie dans un instant."
		}
		return &chatdom.Response{Reply: reply, DetectedMode: chatdom.ModeRecipeQA}, nil
	}

	modType := chatdom.ModReplaceIngredient
	if containsAny(strings.ToLower(req.Message), []string{"portion", "personne", "serving", "people"}) {
		modType = chatdom.ModAdjustPortions
	}

	var reply string
	if fr {
		reply = fmt.Sprintf("Voici la version modifiée de **%s**. Veux-tu que j'applique ce remplacement à ton plan?", target.Title)
	} else {
		reply = fmt.Sprintf("Here is the modified version of **%s**. Do you want me to apply this replacement to your plan?", target.Title)
	}
	return &chatdom.Response{
		Reply:                reply,
		DetectedMode:         chatdom.ModeRecipeQA,
		RequiresConfirmation: true,
		ModificationType:     modType,
		PendingRecipeModification: &chatdom.PendingModification{
			OriginalRecipeTitle: target.Title,
			ProposedRecipe:      modified,
			ModificationType:    modType,
		},
	}, nil
}

// freeText routes Q&A and nutrition turns through the model with a
// mode-specific system prompt and the transcript tail as context.
func (s *Service) freeText(ctx context.Context, req Request, mode chatdom.Mode) (*chatdom.Response, error) {
	reply, err := s.gen.FreeTextReply(ctx, systemPrompt(mode, req.Language, req.UserContext), conversationContext(req))
	if err != nil {
		return nil, err
	}
	return &chatdom.Response{
		Reply:        reply,
		DetectedMode: mode,
	}, nil
}

// findRecipe resolves the modification target: current-plan meals first,
// then recent recipes, then favorites, by title substring or long-token
// match against the message. The plan carries titles only, so a plan hit
// still resolves to a full recipe through the other two pools.
func findRecipe(message string, userCtx chatdom.UserContext) *recipe.Recipe {
	lower := strings.ToLower(message)
	for _, day := range plan.Weekdays {
		for _, m := range userCtx.CurrentPlan[day] {
			if !titleMatches(lower, m.Title) {
				continue
			}
			if r := recipeByTitle(m.Title, userCtx); r != nil {
				return r
			}
		}
	}
	pools := [][]recipe.Recipe{userCtx.RecentRecipes, userCtx.Favorites}
	for _, pool := range pools {
		for i := range pool {
			if titleMatches(lower, pool[i].Title) {
				return &pool[i]
			}
		}
	}
	return nil
}

func recipeByTitle(title string, userCtx chatdom.UserContext) *recipe.Recipe {
	for _, pool := range [][]recipe.Recipe{userCtx.RecentRecipes, userCtx.Favorites} {
		for i := range pool {
			if strings.EqualFold(pool[i].Title, title) {
				return &pool[i]
			}
		}
	}
	return nil
}

func titleMatches(message, title string) bool {
	t := strings.ToLower(strings.TrimSpace(title))
	if t == "" {
		return false
	}
	if strings.Contains(message, t) {
		return true
	}
	for _, tok := range strings.Fields(t) {
		if len([]rune(tok)) > 3 && strings.Contains(message, tok) {
			return true
		}
	}
	return false
}

func systemPrompt(mode chatdom.Mode, language string, userCtx chatdom.UserContext) string {
	fr := language == "fr"
	var b strings.Builder
	if mode == chatdom.ModeNutritionCoach {
		if fr {
			b.WriteString("Tu es un coach en nutrition bienveillant. Tu donnes des conseils pratiques et factuels, sans jargon médical, et tu réfères à un professionnel pour toute question de santé sérieuse.")
		} else {
			b.WriteString("You are a supportive nutrition coach. You give practical, factual advice without medical jargon, and refer serious health questions to a professional.")
		}
	} else {
		if fr {
			b.WriteString("Tu es un assistant culinaire sympathique. Tu réponds aux questions sur les recettes, les techniques et les substitutions de façon concise.")
		} else {
			b.WriteString("You are a friendly cooking assistant. You answer questions about recipes, techniques and substitutions concisely.")
		}
	}

	if len(userCtx.CurrentPlan) > 0 {
		if fr {
			b.WriteString("\n\nPlan actuel de l'utilisateur:\n")
		} else {
			b.WriteString("\n\nThe user's current plan:\n")
		}
		for _, day := range plan.Weekdays {
			for _, m := range userCtx.CurrentPlan[day] {
				fmt.Fprintf(&b, "- %s %s: %s\n", day, m.MealType, m.Title)
			}
		}
	}
	if len(userCtx.Constraints.Evict) > 0 {
		if fr {
			fmt.Fprintf(&b, "\nAllergies (à ne jamais suggérer): %s\n", strings.Join(userCtx.Constraints.Evict, ", "))
		} else {
			fmt.Fprintf(&b, "\nAllergies (never suggest these): %s\n", strings.Join(userCtx.Constraints.Evict, ", "))
		}
	}
	return b.String()
}

// conversationContext renders the transcript tail plus the current turn.
func conversationContext(req Request) string {
	var b strings.Builder
	for _, t := range tailOf(req.History, historyTail) {
		role := "Assistant"
		if t.IsFromUser {
			role = "User"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, t.Content)
	}
	fmt.Fprintf(&b, "User: %s", req.Message)
	return b.String()
}

func dayName(d plan.Weekday, fr bool) string {
	names := map[plan.Weekday][2]string{
		plan.Monday:    {"Monday", "Lundi"},
		plan.Tuesday:   {"Tuesday", "Mardi"},
		plan.Wednesday: {"Wednesday", "Mercredi"},
		plan.Thursday:  {"Thursday", "Jeudi"},
		plan.Friday:    {"Friday", "Vendredi"},
		plan.Saturday:  {"Saturday", "Samedi"},
		plan.Sunday:    {"Sunday", "Dimanche"},
	}
	pair := names[d]
	if fr {
		return pair[1]
	}
	return pair[0]
}

func mealLabel(m plan.MealType, fr bool) string {
	switch m {
	case plan.Breakfast:
		if fr {
			return "Déjeuner"
		}
		return "Breakfast"
	case plan.Lunch:
		if fr {
			return "Dîner"
		}
		return "Lunch"
	default:
		if fr {
			return "Souper"
		}
		return "Dinner"
	}
}
