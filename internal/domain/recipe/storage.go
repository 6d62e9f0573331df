package recipe

import (
	"fmt"
	"strings"
)

// Title keyword buckets for the storage classifier. Short-lived dishes are
// checked first so that "salade de poulet" lands in the fragile bucket.
var (
	fragileKeywords = []string{
		"salad", "salade", "fresh fish", "poisson frais", "shrimp", "crevette",
	}
	proteinKeywords = []string{
		"chicken", "poulet", "pork", "porc", "beef", "boeuf", "bœuf", "pasta", "pâtes",
	}
	longLifeKeywords = []string{
		"soup", "soupe", "stew", "ragoût", "ragout", "mijoté", "chili",
		"curry", "casserole", "gratin",
	}
)

// EnrichStorage attaches shelf life, freezability and a localized storage
// note to the recipe by classifying its title against keyword buckets.
// preferLongShelfLife stretches the middle bucket by one day.
func (r *Recipe) EnrichStorage(preferLongShelfLife bool, language string) {
	title := strings.ToLower(r.Title)

	switch {
	case containsAny(title, fragileKeywords):
		r.ShelfLifeDays = 2
		r.IsFreezable = false
	case containsAny(title, proteinKeywords):
		if preferLongShelfLife {
			r.ShelfLifeDays = 4
		} else {
			r.ShelfLifeDays = 3
		}
		r.IsFreezable = true
	case containsAny(title, longLifeKeywords):
		r.ShelfLifeDays = 5
		r.IsFreezable = true
	default:
		r.ShelfLifeDays = 3
		r.IsFreezable = true
	}

	r.StorageNote = storageNote(r.ShelfLifeDays, r.IsFreezable, language)
}

// RaiseShelfLifeFloor bumps the shelf life up to the scheduling floor of a
// kit slot. Classification alone cannot always reach the floor (a chicken
// dish tops out at 4 days), so the floor wins and the note is rebuilt.
func (r *Recipe) RaiseShelfLifeFloor(floor int, language string) {
	if r.ShelfLifeDays >= floor {
		return
	}
	r.ShelfLifeDays = floor
	r.StorageNote = storageNote(r.ShelfLifeDays, r.IsFreezable, language)
}

func storageNote(days int, freezable bool, language string) string {
	if language == "fr" {
		note := fmt.Sprintf("Se conserve %d jours au réfrigérateur.", days)
		if freezable {
			note += " Peut être congelé jusqu'à 3 mois."
		} else {
			note += " Ne pas congeler."
		}
		return note
	}
	note := fmt.Sprintf("Keeps %d days in the refrigerator.", days)
	if freezable {
		note += " Can be frozen for up to 3 months."
	} else {
		note += " Do not freeze."
	}
	return note
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
