package drop

import (
	"math/big"

	"github.com/xtding233/dropcalc/internal/tc"
)

// PathOutcome is one independently drawn contribution to an outcome.
// Probability is the chance a single attempt yields the outcome; the
// attempt is repeated Picks*Drops times.
type PathOutcome struct {
	Probability *big.Rat
	Quality     tc.QualityRatios
	Picks       int
	Drops       int
}

// Attempts is the number of independent attempts this path makes.
func (p PathOutcome) Attempts() int {
	return p.Picks * p.Drops
}

// Derived returns 1 - (1 - Probability*factor)^Attempts. A nil factor is 1.
func (p PathOutcome) Derived(factor *big.Rat) *big.Rat {
	n := p.Attempts()
	if n <= 0 || p.Probability == nil {
		return new(big.Rat)
	}
	single := new(big.Rat).Set(p.Probability)
	if factor != nil {
		single.Mul(single, factor)
	}
	miss := new(big.Rat).Sub(ratOne, single)
	return miss.Sub(ratOne, ratPow(miss, n))
}

func (p PathOutcome) clone() PathOutcome {
	p.Probability = new(big.Rat).Set(p.Probability)
	return p
}

var ratOne = big.NewRat(1, 1)

func ratPow(x *big.Rat, n int) *big.Rat {
	e := big.NewInt(int64(n))
	num := new(big.Int).Exp(x.Num(), e, nil)
	den := new(big.Int).Exp(x.Denom(), e, nil)
	return new(big.Rat).SetFrac(num, den)
}
