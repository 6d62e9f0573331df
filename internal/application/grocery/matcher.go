// Package grocery marks recipe ingredients that appear in the weekly
// flyer deals. Matching is heuristic and bilingual; false negatives are
// acceptable, silent mutation of quantities is not.
package grocery

import (
	"strings"

	"github.com/planea/aiserver/internal/domain/recipe"
	"github.com/planea/aiserver/internal/ports/outbound"
)

// Stopwords stripped before keyword comparison, both languages mixed since
// flyers and recipes freely code-switch.
var stopwords = map[string]struct{}{
	"de": {}, "du": {}, "des": {}, "le": {}, "la": {}, "les": {},
	"au": {}, "aux": {}, "et": {}, "en": {}, "avec": {},
	"the": {}, "of": {}, "with": {}, "and": {}, "in": {}, "a": {},
	"frais": {}, "fraiche": {}, "fraîche": {}, "fresh": {},
	"bio": {}, "organic": {},
}

// synonyms expands a deal term into the spellings recipes actually use.
// Keys and values are matched case-insensitively.
var synonyms = map[string][]string{
	"chicken":     {"poulet", "chicken breast", "poitrine de poulet"},
	"poulet":      {"chicken", "poitrine de poulet"},
	"beef":        {"boeuf", "bœuf", "ground beef", "boeuf haché"},
	"boeuf":       {"beef", "boeuf haché"},
	"pork":        {"porc", "pork loin", "longe de porc"},
	"porc":        {"pork", "longe de porc"},
	"salmon":      {"saumon", "salmon fillet", "filet de saumon"},
	"saumon":      {"salmon", "filet de saumon"},
	"shrimp":      {"crevette", "crevettes"},
	"crevettes":   {"shrimp", "crevette"},
	"turkey":      {"dinde", "ground turkey", "dinde hachée"},
	"dinde":       {"turkey", "dinde hachée"},
	"tofu":        {"tofu ferme", "firm tofu"},
	"peppers":     {"poivron", "poivrons", "bell pepper"},
	"poivrons":    {"peppers", "bell pepper", "poivron"},
	"carrots":     {"carotte", "carottes"},
	"carottes":    {"carrots", "carotte"},
	"broccoli":    {"brocoli"},
	"brocoli":     {"broccoli"},
	"onions":      {"oignon", "oignons"},
	"oignons":     {"onions", "oignon"},
	"tomatoes":    {"tomate", "tomates"},
	"tomates":     {"tomatoes", "tomate"},
	"potatoes":    {"pomme de terre", "pommes de terre"},
	"zucchini":    {"courgette", "courgettes"},
	"courgettes":  {"zucchini", "courgette"},
	"mushrooms":   {"champignon", "champignons"},
	"champignons": {"mushrooms", "champignon"},
}

// DealIndex is the expanded, normalized deal vocabulary for one plan
// request. Build once, match every recipe against it.
type DealIndex struct {
	terms []string
}

// NewDealIndex normalizes the deal names and expands them through the
// synonym table. A nil or empty deal list yields an index that matches
// nothing.
func NewDealIndex(deals []outbound.Deal) *DealIndex {
	seen := make(map[string]struct{}, len(deals)*2)
	var terms []string
	add := func(t string) {
		t = normalize(t)
		if t == "" {
			return
		}
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		terms = append(terms, t)
	}
	for _, d := range deals {
		add(d.Name)
		for _, syn := range synonyms[normalize(d.Name)] {
			add(syn)
		}
		// Expand individual deal keywords too: "poitrine de poulet" should
		// also match through "poulet".
		for _, tok := range keywords(d.Name) {
			for _, syn := range synonyms[tok] {
				add(syn)
			}
		}
	}
	return &DealIndex{terms: terms}
}

// Empty reports whether the index can match anything.
func (idx *DealIndex) Empty() bool {
	return idx == nil || len(idx.terms) == 0
}

// MarkOnSale flags every ingredient that matches a deal term and returns
// the number of flagged ingredients. Idempotent: re-running on the same
// recipe and index changes nothing.
func (idx *DealIndex) MarkOnSale(r *recipe.Recipe) int {
	if idx.Empty() {
		return 0
	}
	n := 0
	for i := range r.Ingredients {
		if idx.matches(r.Ingredients[i].Name) {
			r.Ingredients[i].OnSale = true
		}
		if r.Ingredients[i].OnSale {
			n++
		}
	}
	return n
}

// matches applies the three tiers in order: exact name, shared keyword,
// long-substring containment.
func (idx *DealIndex) matches(name string) bool {
	norm := normalize(name)
	if norm == "" {
		return false
	}
	for _, t := range idx.terms {
		if t == norm {
			return true
		}
	}

	ingKeys := keywords(name)
	for _, t := range idx.terms {
		for _, tk := range keywords(t) {
			for _, ik := range ingKeys {
				if tk == ik {
					return true
				}
			}
		}
	}

	for _, t := range idx.terms {
		if len(t) >= 5 && strings.Contains(norm, t) {
			return true
		}
		if len(norm) >= 5 && strings.Contains(t, norm) {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// keywords splits a term into significant tokens: stopwords and tokens of
// three characters or fewer are dropped.
func keywords(s string) []string {
	var out []string
	for _, tok := range strings.Fields(normalize(s)) {
		if len([]rune(tok)) <= 3 {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}
