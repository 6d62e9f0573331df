// Package ai implements the LLM-facing side of the orchestration engine:
// prompt assembly, the chat-completion adapter with retry and structured
// output recovery, and the second-pass phase synthesis call.
package ai

import (
	"fmt"
	"strings"

	"github.com/planea/aiserver/internal/domain/mealprep"
	"github.com/planea/aiserver/internal/domain/plan"
)

// RecipePromptInput carries everything the assembler needs for one recipe
// generation call. The assembled prompt is a pure function of this struct:
// identical inputs produce identical prompts.
type RecipePromptInput struct {
	Language    string
	MealType    plan.MealType
	Units       plan.UnitSystem
	Servings    int
	Constraints plan.Constraints
	Preferences plan.Preferences

	Band         plan.ComplexityBand
	TimeCap      int // minutes, 0 means uncapped
	MinShelfLife int // kit shelf-life floor, 0 for plain plans

	Concept           *mealprep.Concept
	SuggestedProtein  string
	ForbiddenProteins []string
	DiversitySeed     int

	// Exactly one of these may be set for the single-recipe endpoints.
	Idea       string // free-text idea (/recipe, chat add-meal)
	ExactTitle string // verbatim title (/recipe-from-title)
}

// Diversity hint tables, indexed by seed. Carried over from the original
// server so regenerating a slot nudges the model toward a different style.
var (
	cuisineHintsEN = []string{"Mediterranean", "Asian", "Mexican", "French", "Italian", "Indian", "Moroccan", "Greek"}
	cuisineHintsFR = []string{"méditerranéenne", "asiatique", "mexicaine", "française", "italienne", "indienne", "marocaine", "grecque"}
	methodHintsEN  = []string{"sautéed", "roasted", "grilled", "stewed", "steamed", "pan-fried", "baked in parchment", "braised"}
	methodHintsFR  = []string{"sauté", "rôti au four", "grillé", "mijoté", "à la vapeur", "poêlé", "en papillote", "braisé"}
)

// proteinPortions is the fixed per-person gram range table rendered into
// every recipe prompt.
var proteinPortions = []struct {
	nameEN, nameFR string
	grams          string
}{
	{"chicken", "poulet", "150-200g"},
	{"beef", "bœuf", "125-180g"},
	{"pork", "porc", "150-200g"},
	{"fish", "poisson", "140-180g"},
	{"shrimp", "crevettes", "120-150g"},
	{"tofu", "tofu", "100-150g"},
	{"legumes (dry)", "légumineuses (sèches)", "80-100g"},
	{"eggs", "œufs", "2-3 units / unités"},
}

// BuildRecipePrompt assembles the user message for a recipe generation
// call. Section order is fixed; the allergen block, when present, is
// always the first constraint section.
func BuildRecipePrompt(in RecipePromptInput) string {
	fr := in.Language == "fr"
	var b strings.Builder

	b.WriteString(openingLine(in, fr))
	b.WriteString("\n")

	// 1. Absolute allergen block, before everything else.
	if len(in.Constraints.Evict) > 0 {
		b.WriteString(allergenBlock(in.Constraints.Evict, fr))
	}

	// 2. Dietary regimes.
	if len(in.Constraints.Diet) > 0 {
		if fr {
			fmt.Fprintf(&b, "\nRégimes alimentaires: %s.\n", strings.Join(in.Constraints.Diet, ", "))
		} else {
			fmt.Fprintf(&b, "\nDietary requirements: %s.\n", strings.Join(in.Constraints.Diet, ", "))
		}
	}

	// 3. Complexity band plus midday guidance for lunch slots.
	b.WriteString(complexityBlock(in.Band, fr))
	if in.MealType == plan.Lunch {
		b.WriteString(lunchGuidance(fr))
	}

	// 4. Preference fragment: verbatim when the client pre-built it.
	if pref := preferenceFragment(in, fr); pref != "" {
		b.WriteString("\n")
		b.WriteString(pref)
		b.WriteString("\n")
	}
	if extra := strings.TrimSpace(in.Constraints.Extra); extra != "" {
		if fr {
			fmt.Fprintf(&b, "\nNote de l'utilisateur: %s\n", extra)
		} else {
			fmt.Fprintf(&b, "\nNote from the user: %s\n", extra)
		}
	}

	// 5. Hard protein override when preferences did not surface it.
	if block := proteinOverrideBlock(in, fr); block != "" {
		b.WriteString(block)
	}

	// 6. Portion table.
	b.WriteString(portionTable(fr))

	// 7. Storage directive for late-week kit recipes.
	if in.MinShelfLife >= 4 {
		b.WriteString(storageBlock(in.MinShelfLife, fr))
	}

	// 8. Concept theme.
	if in.Concept != nil {
		b.WriteString(conceptBlock(in.Concept, fr))
	}

	// 9. Diversity block.
	b.WriteString(diversityBlock(in, fr))

	// 10-11. Prep-step and temperature directives.
	b.WriteString(prepStepsDirective(fr))
	b.WriteString(temperatureDirective(fr))

	// 12. Structured-output schema.
	b.WriteString(schemaBlock(in, fr))

	// 13. Unit system and categories.
	b.WriteString(unitsAndCategories(in.Units, fr))

	if in.TimeCap > 0 {
		if fr {
			fmt.Fprintf(&b, "\nRAPPEL CRITIQUE: total_minutes doit être %d maximum.\n", in.TimeCap)
		} else {
			fmt.Fprintf(&b, "\nCRITICAL REMINDER: total_minutes must be %d or less.\n", in.TimeCap)
		}
	}

	return b.String()
}

func openingLine(in RecipePromptInput, fr bool) string {
	switch {
	case in.ExactTitle != "":
		if fr {
			return fmt.Sprintf("Génère une recette complète en français avec ce titre exact: %q pour %d personnes.", in.ExactTitle, in.Servings)
		}
		return fmt.Sprintf("Generate a complete recipe in English with this exact title: %q for %d people.", in.ExactTitle, in.Servings)
	case in.Idea != "":
		if fr {
			return fmt.Sprintf("Génère une recette en français basée sur cette idée: %q pour %d personnes.", in.Idea, in.Servings)
		}
		return fmt.Sprintf("Generate a recipe in English based on this idea: %q for %d people.", in.Idea, in.Servings)
	default:
		if fr {
			return fmt.Sprintf("Génère une recette de %s en français pour %d personnes.", mealTypeFR(in.MealType), in.Servings)
		}
		return fmt.Sprintf("Generate a %s recipe in English for %d people.", mealTypeEN(in.MealType), in.Servings)
	}
}

func mealTypeFR(mt plan.MealType) string {
	switch mt {
	case plan.Breakfast:
		return "déjeuner"
	case plan.Lunch:
		return "dîner"
	case plan.Dinner:
		return "souper"
	}
	return "repas"
}

func mealTypeEN(mt plan.MealType) string {
	switch mt {
	case plan.Breakfast:
		return "breakfast"
	case plan.Lunch:
		return "lunch"
	case plan.Dinner:
		return "dinner"
	}
	return "meal"
}

func allergenBlock(evict []string, fr bool) string {
	list := strings.Join(evict, ", ")
	if fr {
		return fmt.Sprintf(`
INTERDICTION ABSOLUE - ALLERGIES (PRIORITÉ MAXIMALE):
Les ingrédients suivants sont STRICTEMENT INTERDITS: %s.
- N'utilise JAMAIS ces ingrédients, sous aucune forme
- N'utilise AUCUN substitut similaire ou dérivé de ces ingrédients
- Cette règle est NON NÉGOCIABLE et prévaut sur toute autre directive
`, list)
	}
	return fmt.Sprintf(`
ABSOLUTE PROHIBITION - ALLERGIES (HIGHEST PRIORITY):
The following ingredients are STRICTLY FORBIDDEN: %s.
- NEVER use these ingredients, in any form
- Do NOT use any similar substitute or derivative of these ingredients
- This rule is NON-NEGOTIABLE and overrides every other directive
`, list)
}

func complexityBlock(band plan.ComplexityBand, fr bool) string {
	switch band {
	case plan.BandComplex:
		if fr {
			return "\nCOMPLEXITÉ: Recette ÉLABORÉE de fin de semaine. Techniques avancées (braisage, cuisson lente, sauces maison), plusieurs composantes, 8-10 ingrédients minimum.\n"
		}
		return "\nCOMPLEXITY: ELABORATE weekend recipe. Advanced techniques (braising, slow cooking, homemade sauces), multiple components, at least 8-10 ingredients.\n"
	case plan.BandMedium:
		if fr {
			return "\nCOMPLEXITÉ: Recette de complexité MOYENNE. Techniques intermédiaires (rôtir, mijoter, gratiner), 6-7 ingrédients.\n"
		}
		return "\nCOMPLEXITY: MEDIUM complexity recipe. Intermediate techniques (roasting, simmering, gratinating), 6-7 ingredients.\n"
	default:
		if fr {
			return "\nCOMPLEXITÉ: Recette SIMPLE et rapide de semaine. Techniques de base (sauté, grillé, poêlé), au moins 5 ingrédients.\n"
		}
		return "\nCOMPLEXITY: SIMPLE and quick weeknight recipe. Basic techniques (sauté, grill, pan-fry), at least 5 ingredients.\n"
	}
}

func lunchGuidance(fr bool) string {
	if fr {
		return `
IMPORTANT - EXIGENCES POUR LE DÎNER:
- Ceci DOIT être un repas approprié pour le dîner (repas du midi)
- Options appropriées: salades, sandwichs, wraps, plats de pâtes, bols de grains, soupes, quiches, plats légers avec protéines
- Doit être plus léger que le souper, facile à préparer et servir
- Éviter les viandes rôties lourdes ou les plats élaborés de type souper
`
	}
	return `
IMPORTANT - LUNCH MEAL REQUIREMENTS:
- This MUST be an appropriate lunch meal (midday meal)
- Suitable options include: salads, sandwiches, wraps, pasta dishes, grain bowls, soups, quiches, light protein dishes
- Should be lighter than dinner, easy to prepare and serve
- Avoid heavy roasted meats or elaborate dinner-style dishes
`
}

// preferenceFragment prefers the client-built preferences string verbatim,
// otherwise synthesizes one from the preference bundle in a fixed order:
// time cap, complexity by time, spice, proteins, appliances, kid-friendly.
func preferenceFragment(in RecipePromptInput, fr bool) string {
	if s := strings.TrimSpace(in.Constraints.PreferencesString); s != "" {
		if fr {
			return "PRÉFÉRENCES UTILISATEUR (À RESPECTER STRICTEMENT):\n" + s
		}
		return "USER PREFERENCES (MUST BE STRICTLY RESPECTED):\n" + s
	}

	p := in.Preferences
	var parts []string
	if in.TimeCap > 0 {
		if fr {
			parts = append(parts, fmt.Sprintf("Temps de préparation maximal: %d minutes (total_minutes ≤ %d).", in.TimeCap, in.TimeCap))
			if in.TimeCap <= 30 {
				parts = append(parts, "Privilégie les recettes rapides à une seule casserole.")
			}
		} else {
			parts = append(parts, fmt.Sprintf("Maximum preparation time: %d minutes (total_minutes ≤ %d).", in.TimeCap, in.TimeCap))
			if in.TimeCap <= 30 {
				parts = append(parts, "Favor quick one-pan recipes.")
			}
		}
	}
	if p.SpiceLevel != nil && *p.SpiceLevel != "" {
		if fr {
			parts = append(parts, fmt.Sprintf("Niveau d'épices souhaité: %s.", *p.SpiceLevel))
		} else {
			parts = append(parts, fmt.Sprintf("Desired spice level: %s.", *p.SpiceLevel))
		}
	}
	if len(p.PreferredProteins) > 0 {
		if fr {
			parts = append(parts, fmt.Sprintf("Protéines préférées: %s.", strings.Join(p.PreferredProteins, ", ")))
		} else {
			parts = append(parts, fmt.Sprintf("Preferred proteins: %s.", strings.Join(p.PreferredProteins, ", ")))
		}
	}
	if len(p.AvailableAppliances) > 0 {
		if fr {
			parts = append(parts, fmt.Sprintf("Électroménagers disponibles: %s.", strings.Join(p.AvailableAppliances, ", ")))
		} else {
			parts = append(parts, fmt.Sprintf("Available appliances: %s.", strings.Join(p.AvailableAppliances, ", ")))
		}
	}
	if p.KidFriendly != nil && *p.KidFriendly {
		if fr {
			parts = append(parts, "Les repas doivent convenir aux enfants.")
		} else {
			parts = append(parts, "Meals must be kid-friendly.")
		}
	}
	if len(parts) == 0 {
		return ""
	}
	header := "USER PREFERENCES (MUST BE STRICTLY RESPECTED):\n"
	if fr {
		header = "PRÉFÉRENCES UTILISATEUR (À RESPECTER STRICTEMENT):\n"
	}
	return header + "- " + strings.Join(parts, "\n- ")
}

// proteinOverrideBlock injects a hard protein restriction when the
// constraints carry preferred proteins that the preference fragment did
// not already surface.
func proteinOverrideBlock(in RecipePromptInput, fr bool) string {
	if len(in.Constraints.PreferredProteins) == 0 {
		return ""
	}
	if len(in.Preferences.PreferredProteins) > 0 || strings.TrimSpace(in.Constraints.PreferencesString) != "" {
		return ""
	}
	list := strings.Join(in.Constraints.PreferredProteins, ", ")
	if fr {
		return fmt.Sprintf("\nPROTÉINES OBLIGATOIRES: UTILISE UNIQUEMENT CES PROTÉINES: %s. Aucune autre protéine n'est permise.\n", list)
	}
	return fmt.Sprintf("\nMANDATORY PROTEINS: ONLY USE THESE PROTEINS: %s. No other protein is allowed.\n", list)
}

func portionTable(fr bool) string {
	var b strings.Builder
	if fr {
		b.WriteString("\nPORTIONS DE PROTÉINES (par personne):\n")
	} else {
		b.WriteString("\nPROTEIN PORTIONS (per person):\n")
	}
	for _, p := range proteinPortions {
		name := p.nameEN
		if fr {
			name = p.nameFR
		}
		fmt.Fprintf(&b, "- %s: %s\n", name, p.grams)
	}
	return b.String()
}

func storageBlock(minDays int, fr bool) string {
	if fr {
		return fmt.Sprintf(`
CONSERVATION (IMPORTANT): Cette recette sera consommée %d jours après sa préparation.
- Privilégie les plats qui se conservent bien: soupes, ragoûts, mijotés, casseroles, currys
- Évite les salades fraîches, le poisson frais et tout plat qui se dégrade rapidement
`, minDays)
	}
	return fmt.Sprintf(`
STORAGE (IMPORTANT): This recipe will be eaten %d days after it is prepared.
- Favor dishes that keep well: soups, stews, braises, casseroles, curries
- Avoid fresh salads, fresh fish and anything that degrades quickly
`, minDays)
}

func conceptBlock(c *mealprep.Concept, fr bool) string {
	var b strings.Builder
	if fr {
		fmt.Fprintf(&b, "\nTHÈME DU KIT: %s — %s\n", c.Name, c.Description)
	} else {
		fmt.Fprintf(&b, "\nKIT THEME: %s — %s\n", c.Name, c.Description)
	}
	if c.Cuisine != "" {
		if fr {
			fmt.Fprintf(&b, "Cuisine: %s\n", c.Cuisine)
		} else {
			fmt.Fprintf(&b, "Cuisine: %s\n", c.Cuisine)
		}
	}
	return b.String()
}

func diversityBlock(in RecipePromptInput, fr bool) string {
	var b strings.Builder
	cuisines, methods := cuisineHintsEN, methodHintsEN
	if fr {
		cuisines, methods = cuisineHintsFR, methodHintsFR
		b.WriteString("\nIMPORTANT - DIVERSITÉ ET ORIGINALITÉ:\n")
	} else {
		b.WriteString("\nIMPORTANT - DIVERSITY AND ORIGINALITY:\n")
	}
	seed := in.DiversitySeed
	if seed < 0 {
		seed = -seed
	}
	if fr {
		fmt.Fprintf(&b, "- Inspire-toi de la cuisine %s\n", cuisines[seed%len(cuisines)])
		fmt.Fprintf(&b, "- Méthode de cuisson suggérée: %s\n", methods[seed%len(methods)])
	} else {
		fmt.Fprintf(&b, "- Draw inspiration from %s cuisine\n", cuisines[seed%len(cuisines)])
		fmt.Fprintf(&b, "- Suggested cooking method: %s\n", methods[seed%len(methods)])
	}
	if in.SuggestedProtein != "" {
		if fr {
			fmt.Fprintf(&b, "- Protéine principale suggérée: %s\n", in.SuggestedProtein)
		} else {
			fmt.Fprintf(&b, "- Suggested main protein: %s\n", in.SuggestedProtein)
		}
	}
	if len(in.ForbiddenProteins) > 0 {
		list := strings.Join(in.ForbiddenProteins, ", ")
		if fr {
			fmt.Fprintf(&b, "- N'utilise PAS ces protéines (déjà utilisées dans le plan): %s\n", list)
		} else {
			fmt.Fprintf(&b, "- Do NOT use these proteins (already used in the plan): %s\n", list)
		}
	}
	if fr {
		b.WriteString("- Varie les formats de cuisson (bols, plats mijotés, grillades, plats au four)\n")
		b.WriteString("- Crée une recette UNIQUE et ORIGINALE\n")
	} else {
		b.WriteString("- Vary cooking formats (bowls, braises, grills, oven dishes)\n")
		b.WriteString("- Create a UNIQUE and ORIGINAL recipe\n")
	}
	return b.String()
}

func prepStepsDirective(fr bool) string {
	if fr {
		return `
CRITIQUE - ÉTAPES DE PRÉPARATION: La recette DOIT commencer par des étapes de préparation détaillées:
- Les premières étapes doivent décrire TOUTES les préparations d'ingrédients (couper, émincer, hacher, râper, etc.)
- Sois précis sur les coupes: "couper les carottes en dés de 1cm", "râper 100g de fromage", "émincer finement 2 oignons"
- Inclure la préparation de TOUS les ingrédients avant les étapes de cuisson
- Ensuite inclure les étapes de cuisson/assemblage avec temps exacts, températures et techniques
`
	}
	return `
CRITICAL - PREPARATION STEPS: The recipe MUST start with detailed preparation steps:
- First steps should describe ALL ingredient preparations (cutting, dicing, chopping, grating, etc.)
- Be specific about cuts: "dice carrots into 1cm cubes", "grate 100g cheese", "finely chop 2 onions"
- Include prep for ALL ingredients before cooking steps
- Then include cooking/assembly steps with exact times, temperatures, and techniques
`
}

func temperatureDirective(fr bool) string {
	if fr {
		return `
FORMAT DES TEMPÉRATURES: Lors de la mention de températures, TOUJOURS inclure Celsius ET Fahrenheit entre parenthèses.
- Format: "180°C (350°F)" ou "à 180°C (350°F)"
- Ceci s'applique à TOUTES les mentions de température (four, cuisson, service, etc.)
`
	}
	return `
TEMPERATURE FORMAT: When mentioning temperatures, ALWAYS include both Celsius and Fahrenheit in parentheses.
- Format: "180°C (350°F)" or "at 180°C (350°F)"
- This applies to ALL temperature mentions (oven, cooking, serving temperatures, etc.)
`
}

func schemaBlock(in RecipePromptInput, fr bool) string {
	minutes := 30
	if in.TimeCap > 0 {
		minutes = in.TimeCap
	}
	title := "Nom créatif et appétissant de la recette"
	if !fr {
		title = "Creative and appetizing recipe name"
	}
	if in.ExactTitle != "" {
		title = in.ExactTitle
	}
	if fr {
		return fmt.Sprintf(`
Retourne UNIQUEMENT un objet JSON valide avec cette structure exacte (sans texte avant ou après):
{
    "title": %q,
    "servings": %d,
    "total_minutes": %d,
    "ingredients": [
        {"name": "ingrédient", "quantity": 200, "unit": "g", "category": "légumes"}
    ],
    "steps": [
        "Préparation: Couper les carottes en dés de 1cm. Émincer finement l'oignon.",
        "Faire chauffer l'huile dans une grande poêle à feu moyen-vif...",
        "Ajouter les ingrédients et cuire..."
    ],
    "equipment": ["poêle", "casserole"],
    "tags": ["facile", "rapide"]
}

IMPORTANT: Génère au moins %d étapes détaillées avec des étapes de préparation EXPLICITES au début.
`, title, in.Servings, minutes, 5)
	}
	return fmt.Sprintf(`
Return ONLY a valid JSON object with this exact structure (no text before or after):
{
    "title": %q,
    "servings": %d,
    "total_minutes": %d,
    "ingredients": [
        {"name": "ingredient", "quantity": 200, "unit": "g", "category": "vegetables"}
    ],
    "steps": [
        "Preparation: Dice the carrots into 1cm cubes. Finely chop the onion.",
        "Heat oil in a large pan over medium-high heat...",
        "Add ingredients and cook..."
    ],
    "equipment": ["pan", "pot"],
    "tags": ["easy", "quick"]
}

IMPORTANT: Generate at least %d detailed steps with EXPLICIT preparation steps at the beginning.
`, title, in.Servings, minutes, 5)
}

func unitsAndCategories(units plan.UnitSystem, fr bool) string {
	if fr {
		system := "métrique (grammes, ml)"
		if units == plan.Imperial {
			system = "impérial (oz, cups)"
		}
		return fmt.Sprintf("\nUtilise le système %s.\nCatégories d'ingrédients possibles: légumes, fruits, viandes, poissons, produits laitiers, sec, condiments, conserves.\n", system)
	}
	system := "metric (grams, ml)"
	if units == plan.Imperial {
		system = "imperial (oz, cups)"
	}
	return fmt.Sprintf("\nUse the %s system.\nPossible ingredient categories: vegetables, fruits, meats, fish, dairy, dry goods, condiments, canned goods.\n", system)
}

// RecipeSystemPrompt is the system message for every recipe generation call.
func RecipeSystemPrompt(language string) string {
	if language == "fr" {
		return "Tu es un chef cuisinier créatif et expert qui génère des recettes uniques et détaillées en JSON. Tu varies toujours les ingrédients, cuisines et techniques. Tu RESPECTES TOUJOURS les contraintes de temps et d'allergies données."
	}
	return "You are a creative and expert chef who generates unique and detailed recipes in JSON. You always vary ingredients, cuisines and techniques. You ALWAYS respect the given time and allergy constraints."
}
