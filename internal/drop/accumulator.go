package drop

import (
	"fmt"
	"math/big"

	"github.com/xtding233/dropcalc/internal/tc"
)

type entry struct {
	group int
	path  PathOutcome
}

// accumulator is the per-evaluation scratch space. Entries in the same
// draw-group with the same multiplicity and quality are summed; entries
// from different draw-groups are independent and kept apart. Every
// contribution is also kept as a leaf of the slot tree, which is what final
// probabilities are computed from.
type accumulator struct {
	order  []tc.Outcome
	paths  map[tc.Outcome][]entry
	leaves map[tc.Outcome][]leaf
	groups int
}

func newAccumulator() *accumulator {
	return &accumulator{
		paths:  make(map[tc.Outcome][]entry),
		leaves: make(map[tc.Outcome][]leaf),
	}
}

// fork opens a new draw-group.
func (a *accumulator) fork() int {
	a.groups++
	return a.groups
}

func (a *accumulator) record(o tc.Outcome, group int, p PathOutcome, at *slot) {
	list, seen := a.paths[o]
	if !seen {
		a.order = append(a.order, o)
	}
	if at != nil {
		a.leaves[o] = append(a.leaves[o], leaf{at: at, path: p.clone()})
	}
	for i := range list {
		e := &list[i]
		if e.group == group && e.path.Picks == p.Picks && e.path.Drops == p.Drops && e.path.Quality == p.Quality {
			e.path.Probability.Add(e.path.Probability, p.Probability)
			return
		}
	}
	a.paths[o] = append(list, entry{group: group, path: p.clone()})
}

// result freezes the accumulator. Entries whose summed probability exceeds 1
// point at sibling alternatives that are not actually exclusive.
func (a *accumulator) result() *TreasureClassPaths {
	r := &TreasureClassPaths{
		order:  a.order,
		paths:  make(map[tc.Outcome][]PathOutcome, len(a.paths)),
		leaves: a.leaves,
	}
	for _, o := range a.order {
		list := a.paths[o]
		out := make([]PathOutcome, len(list))
		for i, e := range list {
			out[i] = e.path
			if e.path.Probability.Cmp(ratOne) > 0 {
				r.warnings = append(r.warnings, fmt.Sprintf(
					"%s: probability %s exceeds 1 in draw-group %d", o.Name(), e.path.Probability.RatString(), e.group))
			}
		}
		r.paths[o] = out
	}
	return r
}

func sumProbabilities(list []PathOutcome) *big.Rat {
	sum := new(big.Rat)
	for _, p := range list {
		sum.Add(sum, p.Probability)
	}
	return sum
}
