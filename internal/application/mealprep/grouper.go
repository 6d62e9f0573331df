// Package mealprep implements the batch-cook orchestration: kit assembly,
// the deterministic prep grouper and the concept picker.
package mealprep

import (
	"fmt"
	"sort"
	"strings"

	"github.com/planea/aiserver/internal/domain/mealprep"
	"github.com/planea/aiserver/internal/ports/outbound"
)

// Keyword table for the seven prep buckets, EN and FR mixed. Order within
// a bucket does not matter; a step lands in the first bucket that matches.
var actionKeywords = []struct {
	action   mealprep.PrepAction
	keywords []string
}{
	{mealprep.ActionCut, []string{"cut", "chop", "dice", "slice", "mince", "julienne", "couper", "hacher", "émincer", "trancher", "tailler", "découper"}},
	{mealprep.ActionPeel, []string{"peel", "éplucher", "peler"}},
	{mealprep.ActionGrate, []string{"grate", "shred", "râper", "zest", "zester"}},
	{mealprep.ActionMix, []string{"mix", "combine", "whisk", "mélanger", "fouetter", "incorporer", "combiner"}},
	{mealprep.ActionMeasure, []string{"measure", "weigh", "portion", "mesurer", "peser"}},
	{mealprep.ActionMarinate, []string{"marinate", "marinade", "mariner", "faire mariner"}},
	{mealprep.ActionPreheat, []string{"preheat", "préchauffer"}},
}

// Cooking verbs end the prep scan once seen past the first steps: from
// there on, the recipe has moved to the stove.
var cookingVerbs = []string{"cook", "cuire", "heat", "chauffer", "roast", "rôtir", "fry", "frire"}

// prepScanFloor is the step index after which a cooking verb stops the scan.
const prepScanFloor = 2

// Localized bucket descriptions.
var actionDescriptions = map[mealprep.PrepAction][2]string{
	mealprep.ActionCut:      {"Cut all vegetables and proteins", "Couper tous les légumes et protéines"},
	mealprep.ActionPeel:     {"Peel everything that needs peeling", "Éplucher tout ce qui doit l'être"},
	mealprep.ActionGrate:    {"Grate and shred", "Râper et déchiqueter"},
	mealprep.ActionMix:      {"Mix sauces and seasonings", "Mélanger les sauces et assaisonnements"},
	mealprep.ActionMeasure:  {"Measure out dry goods and liquids", "Mesurer les ingrédients secs et liquides"},
	mealprep.ActionMarinate: {"Start the marinades", "Lancer les marinades"},
	mealprep.ActionPreheat:  {"Preheat ovens and equipment", "Préchauffer le four et l'équipement"},
}

// Grouper batches prep work across the recipes of a kit. Pure over its
// inputs: identical kits yield identical groups, UUIDs aside.
type Grouper struct {
	ids outbound.IDGenerator
}

// NewGrouper builds a grouper around the ID source.
func NewGrouper(ids outbound.IDGenerator) *Grouper {
	return &Grouper{ids: ids}
}

type prepGroup struct {
	ingredients []mealprep.PrepIngredient
	seen        map[string]struct{}
	snippets    []string
}

// Group scans every recipe's prep steps, classifies them into action
// buckets and emits one prioritized GroupedPrepStep per non-empty bucket.
func (g *Grouper) Group(recipes []mealprep.RecipeRef, language string) []mealprep.GroupedPrepStep {
	groups := make(map[mealprep.PrepAction]*prepGroup)

	for _, ref := range recipes {
		for idx, step := range ref.Recipe.Steps {
			lower := strings.ToLower(step)
			if idx > prepScanFloor && containsAnyWord(lower, cookingVerbs) {
				break
			}
			action, ok := classify(lower)
			if !ok {
				continue
			}
			grp := groups[action]
			if grp == nil {
				grp = &prepGroup{seen: make(map[string]struct{})}
				groups[action] = grp
			}
			g.collect(grp, ref, step, lower)
		}
	}

	actions := make([]mealprep.PrepAction, 0, len(groups))
	for action, grp := range groups {
		if len(grp.ingredients) == 0 {
			continue
		}
		actions = append(actions, action)
	}
	sort.Slice(actions, func(i, j int) bool {
		return actions[i].Priority() < actions[j].Priority()
	})

	var out []mealprep.GroupedPrepStep
	for _, action := range actions {
		grp := groups[action]
		out = append(out, mealprep.GroupedPrepStep{
			ID:               g.ids.NewUUID(),
			ActionType:       action,
			Description:      describe(action, language),
			Ingredients:      grp.ingredients,
			DetailedSteps:    grp.snippets,
			EstimatedMinutes: clampMinutes(len(grp.ingredients) * 2),
		})
	}
	return out
}

// collect associates the recipe's ingredients that the step text mentions,
// deduplicated per bucket by recipe and name.
func (g *Grouper) collect(grp *prepGroup, ref mealprep.RecipeRef, step, lower string) {
	matched := false
	for _, ing := range ref.Recipe.Ingredients {
		if !mentions(lower, ing.Name) {
			continue
		}
		key := ref.RecipeID + "|" + strings.ToLower(ing.Name)
		if _, dup := grp.seen[key]; dup {
			matched = true
			continue
		}
		grp.seen[key] = struct{}{}
		grp.ingredients = append(grp.ingredients, mealprep.PrepIngredient{
			ID:          g.ids.NewUUID(),
			Name:        ing.Name,
			Quantity:    formatQuantity(ing.Quantity, ing.Unit),
			RecipeTitle: ref.Title,
			RecipeID:    ref.RecipeID,
			Usage:       strings.TrimSpace(step),
		})
		matched = true
	}
	if matched {
		grp.snippets = append(grp.snippets, ref.Title+": "+strings.TrimSpace(step))
	}
}

// classify returns the first bucket whose keyword appears in the step.
func classify(lower string) (mealprep.PrepAction, bool) {
	for _, entry := range actionKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.action, true
			}
		}
	}
	return "", false
}

// mentions reports whether the step text names the ingredient, either in
// full or through any of its longer tokens.
func mentions(step, ingredient string) bool {
	name := strings.ToLower(strings.TrimSpace(ingredient))
	if name == "" {
		return false
	}
	if strings.Contains(step, name) {
		return true
	}
	for _, tok := range strings.Fields(name) {
		if len([]rune(tok)) > 3 && strings.Contains(step, tok) {
			return true
		}
	}
	return false
}

func containsAnyWord(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func describe(action mealprep.PrepAction, language string) string {
	pair := actionDescriptions[action]
	if language == "fr" {
		return pair[1]
	}
	return pair[0]
}

func clampMinutes(m int) int {
	if m < 5 {
		return 5
	}
	if m > 20 {
		return 20
	}
	return m
}

func formatQuantity(q float64, unit string) string {
	return strings.TrimSpace(fmt.Sprintf("%g %s", q, unit))
}
