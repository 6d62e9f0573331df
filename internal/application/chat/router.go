// Package chat implements the conversational assistant: a stateless intent
// router over the transcript tail plus an orchestrator that composes
// replies. The server never stores chat state; the client carries the plan
// and any pending modification between turns.
package chat

import (
	"strings"

	chatdom "github.com/planea/aiserver/internal/domain/chat"
	"github.com/planea/aiserver/internal/domain/plan"
)

// historyTail bounds how much transcript the router scans.
const historyTail = 10

// fallbackScan bounds the entries inspected for the Q&A/nutrition split.
const fallbackScan = 5

var planDisplayKeywords = []string{
	"mon plan", "mon menu", "plan de la semaine", "plan actuel",
	"voir mon plan", "montre-moi mon plan", "affiche mon plan",
	"my plan", "my menu", "show my plan", "show my menu", "current plan",
	"weekly plan",
}

// Affirmatives are matched against the whole trimmed message, not as
// substrings: "ok" inside "cook" must not confirm anything.
var affirmatives = map[string]struct{}{
	"oui": {}, "ok": {}, "okay": {}, "yes": {}, "yep": {}, "confirm": {},
	"confirme": {}, "je confirme": {}, "d'accord": {}, "daccord": {},
	"parfait": {}, "go": {}, "vas-y": {}, "sure": {}, "oui merci": {},
	"yes please": {}, "c'est bon": {}, "applique": {}, "apply": {},
}

var confirmationAsks = []string{
	"veux-tu que j'applique", "veux-tu confirmer", "confirmes-tu",
	"souhaites-tu appliquer", "veux-tu que je l'ajoute",
	"do you want me to apply", "shall i apply", "do you confirm",
	"would you like me to apply", "should i add it",
}

var modificationKeywords = []string{
	"remplace", "replace", "modifi", "modify", "portion", "ajust", "adjust",
	"ajout", "add",
}

var addVerbs = []string{"ajoute", "ajouter", "rajoute", "add", "crée", "créer", "create"}

var modifyVerbs = []string{
	"remplace", "replace", "change", "modifie", "modify", "ajuste", "adjust",
	"substitue", "substitute", "swap", "enlève", "remove",
}

// Possibility questions ("can I freeze this?") ask about the recipe, they
// do not request a change.
var possibilityPrefixes = []string{
	"can i", "could i", "puis-je", "est-ce que je peux", "est-ce que je pourrais",
}

var nutritionKeywords = []string{
	"calorie", "protéine", "proteine", "protein", "nutrition", "macro",
	"vitamine", "vitamin", "santé", "healthy", "poids", "weight", "régime",
	"regime", "diet", "fibre", "fiber", "sucre", "sugar",
}

// Weekday extraction table. Quebec French: déjeuner is the morning meal,
// dîner is midday, souper is the evening meal.
var weekdayTokens = []struct {
	token string
	day   plan.Weekday
}{
	{"lundi", plan.Monday}, {"monday", plan.Monday},
	{"mardi", plan.Tuesday}, {"tuesday", plan.Tuesday},
	{"mercredi", plan.Wednesday}, {"wednesday", plan.Wednesday},
	{"jeudi", plan.Thursday}, {"thursday", plan.Thursday},
	{"vendredi", plan.Friday}, {"friday", plan.Friday},
	{"samedi", plan.Saturday}, {"saturday", plan.Saturday},
	{"dimanche", plan.Sunday}, {"sunday", plan.Sunday},
}

var mealTypeTokens = []struct {
	token string
	meal  plan.MealType
}{
	{"petit-déjeuner", plan.Breakfast}, {"petit déjeuner", plan.Breakfast},
	{"déjeuner", plan.Breakfast}, {"dejeuner", plan.Breakfast},
	{"breakfast", plan.Breakfast}, {"matin", plan.Breakfast},
	{"dîner", plan.Lunch}, {"diner", plan.Lunch},
	{"lunch", plan.Lunch}, {"midi", plan.Lunch},
	{"souper", plan.Dinner}, {"dinner", plan.Dinner},
	{"soir", plan.Dinner}, {"soirée", plan.Dinner}, {"tonight", plan.Dinner},
}

// Classify determines the intent of the current turn. First match wins;
// anything that is neither a confirmation nor a mutating intent falls
// through to the Q&A/nutrition split, which never stages a modification.
func Classify(message string, history []chatdom.Turn, userCtx chatdom.UserContext) chatdom.Intent {
	lower := strings.ToLower(strings.TrimSpace(message))
	tail := tailOf(history, historyTail)

	if containsAny(lower, planDisplayKeywords) && len(userCtx.CurrentPlan) > 0 {
		return chatdom.IntentPlanDisplay
	}
	if isAffirmative(lower) && assistantAskedConfirmation(tail) {
		return chatdom.IntentConfirmation
	}
	if containsAny(lower, addVerbs) {
		_, dayOK := extractWeekday(lower)
		_, mealOK := extractMealType(lower)
		if dayOK && mealOK {
			return chatdom.IntentAddMeal
		}
		return chatdom.IntentAddMealMissing
	}
	if containsAny(lower, modifyVerbs) {
		if isPossibilityQuestion(lower) {
			return chatdom.IntentModifyQuestion
		}
		return chatdom.IntentModifyRecipe
	}
	if mentionsNutrition(lower, tail) {
		return chatdom.IntentNutrition
	}
	return chatdom.IntentRecipeQA
}

func isAffirmative(lower string) bool {
	stripped := strings.Trim(lower, " !.?")
	_, ok := affirmatives[stripped]
	return ok
}

// assistantAskedConfirmation reports whether the scanned tail holds an
// assistant turn that both asked for confirmation and referenced a
// modification. Both are required for the Proposed→Applied transition.
func assistantAskedConfirmation(tail []chatdom.Turn) bool {
	for i := len(tail) - 1; i >= 0; i-- {
		t := tail[i]
		if t.IsFromUser {
			continue
		}
		lower := strings.ToLower(t.Content)
		return containsAny(lower, confirmationAsks) && containsAny(lower, modificationKeywords)
	}
	return false
}

func isPossibilityQuestion(lower string) bool {
	for _, p := range possibilityPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

func mentionsNutrition(lower string, tail []chatdom.Turn) bool {
	if containsAny(lower, nutritionKeywords) {
		return true
	}
	for _, t := range tailOf(tail, fallbackScan) {
		if containsAny(strings.ToLower(t.Content), nutritionKeywords) {
			return true
		}
	}
	return false
}

func extractWeekday(lower string) (plan.Weekday, bool) {
	for _, e := range weekdayTokens {
		if strings.Contains(lower, e.token) {
			return e.day, true
		}
	}
	return "", false
}

func extractMealType(lower string) (plan.MealType, bool) {
	for _, e := range mealTypeTokens {
		if strings.Contains(lower, e.token) {
			return e.meal, true
		}
	}
	return "", false
}

// stripIntentTokens removes add verbs and the matched day/meal tokens from
// the message, leaving the free-text dish description for the generator.
func stripIntentTokens(message string) string {
	lower := strings.ToLower(message)
	for _, v := range addVerbs {
		lower = strings.ReplaceAll(lower, v, " ")
	}
	for _, e := range weekdayTokens {
		lower = strings.ReplaceAll(lower, e.token, " ")
	}
	for _, e := range mealTypeTokens {
		lower = strings.ReplaceAll(lower, e.token, " ")
	}
	lower = " " + lower + " "
	for _, filler := range []string{" au ", " aux ", " du ", " des ", " de la ", " pour ", " le ", " la ", " les ", " un ", " une ", " moi ", " for ", " on ", " the ", " me ", " a "} {
		lower = strings.ReplaceAll(lower, filler, " ")
	}
	return strings.Join(strings.Fields(lower), " ")
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func tailOf(history []chatdom.Turn, n int) []chatdom.Turn {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
