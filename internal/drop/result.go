package drop

import (
	"math/big"

	"github.com/xtding233/dropcalc/internal/tc"
)

// TreasureClassPaths is the frozen result of one evaluation: for every
// recorded outcome, the independent paths that can produce it.
type TreasureClassPaths struct {
	order    []tc.Outcome
	paths    map[tc.Outcome][]PathOutcome
	leaves   map[tc.Outcome][]leaf
	warnings []string
}

// Len reports the number of distinct outcomes recorded.
func (r *TreasureClassPaths) Len() int { return len(r.order) }

// Outcomes returns the recorded outcomes in first-recorded order.
func (r *TreasureClassPaths) Outcomes() []tc.Outcome {
	return append([]tc.Outcome(nil), r.order...)
}

// Paths returns copies of the paths recorded for o.
func (r *TreasureClassPaths) Paths(o tc.Outcome) []PathOutcome {
	list := r.paths[o]
	out := make([]PathOutcome, len(list))
	for i, p := range list {
		out[i] = p.clone()
	}
	return out
}

// Warnings lists validation findings such as a path probability above 1.
func (r *TreasureClassPaths) Warnings() []string {
	return append([]string(nil), r.warnings...)
}

// FinalProbability is the chance of getting o at least once, with every
// drop of o kept only with probability factor. A nil factor is 1. Outcomes
// that were never recorded have probability 0.
//
// Alternatives picked by the same treasure class are summed and independent
// draws are combined by probabilistic OR, following the treasure classes the
// paths went through. When no treasure class below the root repeats its
// picks this equals 1 - Π(1 - path.Derived(factor)).
func (r *TreasureClassPaths) FinalProbability(o tc.Outcome, factor *big.Rat) *big.Rat {
	return r.FinalProbabilityFunc(o, func(PathOutcome) *big.Rat { return factor })
}

// FinalProbabilityFunc is FinalProbability with a factor chosen per path,
// typically from the path's quality ratios. factor sees paths as recorded,
// before entries of a draw-group are summed.
func (r *TreasureClassPaths) FinalProbabilityFunc(o tc.Outcome, factor func(PathOutcome) *big.Rat) *big.Rat {
	leaves := r.leaves[o]
	if len(leaves) == 0 {
		return new(big.Rat)
	}
	none := missChance(leaves, factor)
	return none.Sub(ratOne, none)
}

// Total sums the single-attempt probability of every recorded path. For a
// solo evaluation without no-drop this partitions the outcome space and
// equals 1.
func (r *TreasureClassPaths) Total() *big.Rat {
	sum := new(big.Rat)
	for _, o := range r.order {
		sum.Add(sum, sumProbabilities(r.paths[o]))
	}
	return sum
}
