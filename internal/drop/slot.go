package drop

import "math/big"

// slot is one place an outcome can land: an edge of the treasure class that
// picked it. Slots of expanded treasure classes are the parents of their
// children's slots, so the slots of one evaluation form a tree.
type slot struct {
	parent *slot
	// chance of landing here on one pick of parent; nil when parent has
	// negative picks and drops every child.
	chance *big.Rat
	// times the outcome is dropped per landing: the edge weight under a
	// negative-picks parent, 1 otherwise.
	times int
	// picks of the treasure class expanded here; unused for leaves.
	picks int
}

type leaf struct {
	at   *slot
	path PathOutcome
}

// missChance returns the probability that none of leaves yields its
// outcome. hit gives, for each leaf, the chance that landing on it once
// actually produces the outcome. Picks of one treasure class are mutually
// exclusive alternatives and are summed; repeated picks and the children
// of negative-picks classes are independent and multiplied.
func missChance(leaves []leaf, hit func(PathOutcome) *big.Rat) *big.Rat {
	kids := make(map[*slot][]*slot)
	linked := make(map[*slot]bool)
	leafMiss := make(map[*slot]*big.Rat, len(leaves))
	for _, l := range leaves {
		h := ratOne
		if f := hit(l.path); f != nil {
			h = f
		}
		leafMiss[l.at] = new(big.Rat).Sub(ratOne, h)
		for s := l.at; s != nil && !linked[s]; s = s.parent {
			linked[s] = true
			kids[s.parent] = append(kids[s.parent], s)
		}
	}

	var landing func(s *slot) *big.Rat
	landing = func(s *slot) *big.Rat {
		m, ok := leafMiss[s]
		if !ok {
			m = runMiss(s, kids[s], landing)
		}
		return ratPow(m, s.times)
	}

	none := big.NewRat(1, 1)
	for _, s := range kids[nil] {
		none.Mul(none, landing(s))
	}
	return none
}

// runMiss is the chance that one expansion of the treasure class at s
// misses.
func runMiss(s *slot, children []*slot, landing func(*slot) *big.Rat) *big.Rat {
	if s.picks < 0 {
		m := big.NewRat(1, 1)
		for _, c := range children {
			m.Mul(m, landing(c))
		}
		return m
	}
	hit := new(big.Rat)
	for _, c := range children {
		h := new(big.Rat).Sub(ratOne, landing(c))
		hit.Add(hit, h.Mul(h, c.chance))
	}
	return ratPow(hit.Sub(ratOne, hit), s.picks)
}
