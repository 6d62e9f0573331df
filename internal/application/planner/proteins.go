package planner

import (
	"math/rand"
	"strings"

	"go.uber.org/zap"

	"github.com/planea/aiserver/internal/domain/plan"
)

// Default protein rotation when the user never stated a preference.
var defaultProteinPool = []string{
	"chicken", "ground beef", "pork", "salmon", "white fish",
	"shrimp", "tofu", "legumes", "turkey",
}

// Breakfast slots draw from a narrower, morning-appropriate pool.
var breakfastProteinPool = []string{"eggs", "turkey", "salmon", "tofu", "yogurt"}

// minPoolSize is the floor under which a user pool is extended with the top
// defaults, so the rotation never degenerates into one or two proteins.
const minPoolSize = 3

// Distributor assigns a suggested protein to every slot of a plan or kit.
// The rand source is injected so tests can fix the shuffle.
type Distributor struct {
	rng    *rand.Rand
	logger *zap.Logger
}

// NewDistributor builds a distributor around the given source.
func NewDistributor(rng *rand.Rand, logger *zap.Logger) *Distributor {
	return &Distributor{rng: rng, logger: logger}
}

// ForPlan assigns proteins to week-plan slots: shuffle the pool once, then
// walk it cyclically, skipping forward once when a candidate would repeat
// the previous slot. Breakfast slots pick uniformly from the breakfast
// pool, avoiding the last two assignments when possible.
func (d *Distributor) ForPlan(slots []SlotPlan, prefs plan.Preferences) []string {
	pool := d.shuffled(extend(mainPool(prefs), defaultProteinPool, minPoolSize))

	out := make([]string, len(slots))
	var last, secondLast string
	cursor := 0
	for i, s := range slots {
		var p string
		if s.Slot.MealType == plan.Breakfast {
			p = d.pickBreakfast(last, secondLast)
		} else {
			p, cursor = pick(pool, cursor, last)
		}
		out[i] = p
		secondLast, last = last, p
	}
	return out
}

// ForKit assigns proteins to kit slots under tighter variety rules: at
// least max(2, n-1) distinct proteins, and no protein used more than
// twice. The final slot may repeat its predecessor when the walk has no
// other candidate, which is logged rather than rejected.
func (d *Distributor) ForKit(n int, prefs plan.Preferences) []string {
	minUnique := n - 1
	if minUnique < 2 {
		minUnique = 2
	}
	pool := d.shuffled(extend(kitPool(prefs), defaultProteinPool, minUnique))
	uses := make(map[string]int, len(pool))

	out := make([]string, n)
	cursor := 0
	prev := ""
	for i := 0; i < n; i++ {
		lastSlot := i == n-1
		p, next, ok := kitCandidate(pool, cursor, uses, prev, lastSlot)
		if !ok {
			// No acceptable candidate left. Repeat the least-used protein;
			// only legal on the tail of the walk.
			p = leastUsed(pool, uses)
			d.logger.Info("protein variety constraint relaxed",
				zap.String("protein", p),
				zap.Int("slot", i))
		} else {
			cursor = next
		}
		uses[p]++
		out[i] = p
		prev = p
	}
	return out
}

func (d *Distributor) pickBreakfast(last, secondLast string) string {
	var candidates []string
	for _, p := range breakfastProteinPool {
		if p != last && p != secondLast {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		candidates = breakfastProteinPool
	}
	return candidates[d.rng.Intn(len(candidates))]
}

func mainPool(prefs plan.Preferences) []string {
	if len(prefs.PreferredProteins) > 0 {
		return prefs.PreferredProteins
	}
	return defaultProteinPool
}

// kitPool drops breakfast-only proteins from the user's pool. Kits batch
// lunches and dinners, so eggs and yogurt have no slot to land on.
func kitPool(prefs plan.Preferences) []string {
	pool := mainPool(prefs)
	out := make([]string, 0, len(pool))
	for _, p := range pool {
		if breakfastOnly(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func breakfastOnly(p string) bool {
	return containsFold(breakfastProteinPool, p) && !containsFold(defaultProteinPool, p)
}

// extend unions the pool with the leading defaults until it reaches size.
func extend(pool, defaults []string, size int) []string {
	if len(pool) >= size {
		return pool
	}
	out := make([]string, len(pool))
	copy(out, pool)
	for _, def := range defaults[:min(5, len(defaults))] {
		if len(out) >= size {
			break
		}
		if !containsFold(out, def) {
			out = append(out, def)
		}
	}
	return out
}

func (d *Distributor) shuffled(pool []string) []string {
	out := make([]string, len(pool))
	copy(out, pool)
	d.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// pick returns the next pool entry, skipping forward once when it would
// repeat last. Single-entry pools repeat by necessity.
func pick(pool []string, cursor int, last string) (string, int) {
	if len(pool) == 0 {
		return "", cursor
	}
	p := pool[cursor%len(pool)]
	cursor++
	if p == last && len(pool) > 1 {
		p = pool[cursor%len(pool)]
		cursor++
	}
	return p, cursor
}

// kitCandidate walks the pool cyclically for an entry with fewer than two
// uses that differs from the previous pick, the latter waived on the last
// slot.
func kitCandidate(pool []string, cursor int, uses map[string]int, prev string, lastSlot bool) (string, int, bool) {
	for i := 0; i < len(pool); i++ {
		p := pool[(cursor+i)%len(pool)]
		if uses[p] >= 2 {
			continue
		}
		if p == prev && !lastSlot {
			continue
		}
		return p, cursor + i + 1, true
	}
	return "", cursor, false
}

func leastUsed(pool []string, uses map[string]int) string {
	best := pool[0]
	for _, p := range pool[1:] {
		if uses[p] < uses[best] {
			best = p
		}
	}
	return best
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
