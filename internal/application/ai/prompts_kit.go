package ai

import (
	"fmt"
	"strings"

	"github.com/planea/aiserver/internal/domain/mealprep"
	"github.com/planea/aiserver/internal/domain/plan"
)

// BuildPhasesPrompt assembles the second-pass prompt that turns a kit's
// recipes into the four-phase cooking pipeline. Prep steps are explicitly
// excluded: the grouped prep list already covers them.
func BuildPhasesPrompt(recipes []mealprep.RecipeRef, language string) string {
	fr := language == "fr"
	var b strings.Builder

	if fr {
		b.WriteString("Tu organises une session de batch cooking. Voici les recettes du kit:\n\n")
	} else {
		b.WriteString("You are organizing a batch-cooking session. Here are the kit's recipes:\n\n")
	}

	for i, ref := range recipes {
		r := ref.Recipe
		fmt.Fprintf(&b, "RECIPE %d: %s (%d min, %d servings)\n", i+1, r.Title, r.TotalMinutes, r.Servings)
		if ref.StorageNote != "" {
			fmt.Fprintf(&b, "Storage: %s\n", ref.StorageNote)
		}
		if len(r.Equipment) > 0 {
			fmt.Fprintf(&b, "Equipment: %s\n", strings.Join(r.Equipment, ", "))
		}
		for j, step := range r.Steps {
			fmt.Fprintf(&b, "  %d. %s\n", j+1, step)
		}
		b.WriteString("\n")
	}

	if fr {
		b.WriteString(`RÈGLES STRICTES:
- Chaque étape DOIT suivre le format: [Verbe d'action] + [ingrédients spécifiques] + [méthode/endroit]
- INTERDIT: formulations génériques comme "cuire les légumes" ou "préparer la viande"
- EXCLUS les étapes de préparation (découpe, râpage, mesure): elles sont déjà regroupées ailleurs
- Marque is_parallel=true pour une étape qui se fait pendant qu'une étape longue est en cours (ex: cuisson au four), avec parallel_note nommant cette étape
- recipe_title peut être "Multiple" pour une étape couvrant plusieurs recettes

`)
	} else {
		b.WriteString(`STRICT RULES:
- Every step MUST follow the pattern: [Action verb] + [specific ingredients] + [method/location]
- FORBIDDEN: generic phrasings such as "cook the vegetables" or "prepare the meat"
- EXCLUDE preparation steps (cutting, grating, measuring): they are already grouped elsewhere
- Mark is_parallel=true for a step that runs while a previous long-running step is in progress (e.g. oven-roasting), with parallel_note naming that step
- recipe_title may be "Multiple" for a step spanning several recipes

`)
	}

	b.WriteString(`Return ONLY a valid JSON object with exactly this structure:
{
    "cook": {"title": "...", "total_minutes": 45, "steps": [
        {"id": "1", "description": "...", "recipe_title": "...", "recipe_index": 0, "estimated_minutes": 10, "is_parallel": false, "parallel_note": null}
    ]},
    "assemble": {"title": "...", "total_minutes": 15, "steps": [...]},
    "cool_down": {"title": "...", "total_minutes": 20, "steps": [...]},
    "store": {"title": "...", "total_minutes": 10, "steps": [...]}
}
`)
	return b.String()
}

// PhasesSystemPrompt is the system message for the phase synthesis call.
func PhasesSystemPrompt(language string) string {
	if language == "fr" {
		return "Tu es un chef expert en batch cooking qui organise des sessions de cuisine efficaces. Tu réponds uniquement en JSON valide."
	}
	return "You are an expert batch-cooking chef who organizes efficient cooking sessions. You respond only with valid JSON."
}

// BuildConceptsPrompt asks the model for three kit themes.
func BuildConceptsPrompt(constraints plan.Constraints, language string) string {
	fr := language == "fr"
	var b strings.Builder
	if fr {
		b.WriteString("Propose exactement 3 concepts de batch cooking variés pour la semaine.\n")
	} else {
		b.WriteString("Propose exactly 3 varied batch-cooking concepts for the week.\n")
	}
	if len(constraints.Evict) > 0 {
		b.WriteString(allergenBlock(constraints.Evict, fr))
	}
	if len(constraints.Diet) > 0 {
		if fr {
			fmt.Fprintf(&b, "Régimes alimentaires: %s.\n", strings.Join(constraints.Diet, ", "))
		} else {
			fmt.Fprintf(&b, "Dietary requirements: %s.\n", strings.Join(constraints.Diet, ", "))
		}
	}
	b.WriteString(`
Return ONLY a valid JSON object with exactly this structure:
{
    "concepts": [
        {"name": "...", "description": "...", "cuisine": "...", "tags": ["...", "..."]}
    ]
}
`)
	return b.String()
}

// BuildModifyRecipePrompt asks the model to apply a user-requested change
// to an existing recipe while keeping the same JSON shape.
func BuildModifyRecipePrompt(original string, request, language string) string {
	fr := language == "fr"
	var b strings.Builder
	if fr {
		b.WriteString("Modifie la recette suivante selon la demande de l'utilisateur.\n\nRECETTE ORIGINALE (JSON):\n")
	} else {
		b.WriteString("Modify the following recipe according to the user's request.\n\nORIGINAL RECIPE (JSON):\n")
	}
	b.WriteString(original)
	if fr {
		fmt.Fprintf(&b, "\n\nDEMANDE: %s\n", request)
		b.WriteString("\nRetourne UNIQUEMENT la recette modifiée, au même format JSON que l'originale (title, servings, total_minutes, ingredients, steps, equipment, tags). Garde tout ce qui n'est pas visé par la demande.\n")
	} else {
		fmt.Fprintf(&b, "\n\nREQUEST: %s\n", request)
		b.WriteString("\nReturn ONLY the modified recipe, in the same JSON shape as the original (title, servings, total_minutes, ingredients, steps, equipment, tags). Keep everything the request does not target.\n")
	}
	return b.String()
}
