package tc

import (
	"fmt"
	"math/big"
)

// NoDropExtra returns the extra denominator weight standing for "nothing
// drops" at a node with the given outcome denominator.
//
// Solo play uses the configured no-drop weight as is. With more players the
// no-drop rate N/(N+D) is raised to floor(1 + (players-1)/2 + (party-1)/2)
// and converted back into a weight relative to D. The rate is kept as an
// exact rational so it can get arbitrarily close to 1 without cancellation.
func NoDropExtra(denominator int, noDrop *int, players, partySize int) (int, error) {
	if noDrop == nil || *noDrop < 1 {
		return 0, nil
	}
	n := *noDrop
	if players <= 1 {
		return n, nil
	}
	exponent := (players + partySize) / 2

	base := big.NewRat(int64(n), int64(n)+int64(denominator))
	scaled := ratPow(base, exponent)

	one := big.NewRat(1, 1)
	if scaled.Cmp(one) >= 0 {
		return 0, fmt.Errorf("%w: rate %s (no_drop=%d, denominator=%d, exponent=%d)",
			ErrNoDropPrecision, scaled.RatString(), n, denominator, exponent)
	}

	// scaled / (1 - scaled) * denominator
	rest := new(big.Rat).Sub(one, scaled)
	extra := new(big.Rat).Quo(scaled, rest)
	extra.Mul(extra, big.NewRat(int64(denominator), 1))

	floor := new(big.Int).Quo(extra.Num(), extra.Denom())
	if !floor.IsInt64() {
		return 0, fmt.Errorf("%w: weight overflows (no_drop=%d, denominator=%d)",
			ErrNoDropPrecision, n, denominator)
	}
	return int(floor.Int64()), nil
}

// EffectiveDenominator is the denominator used to select among t's outcomes
// once no-drop has been scaled for the given players and party size.
func EffectiveDenominator(t *TreasureClass, players, partySize int) (int, error) {
	extra, err := NoDropExtra(t.denominator, t.props.NoDrop, players, partySize)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", t.name, err)
	}
	return t.denominator + extra, nil
}

func ratPow(x *big.Rat, n int) *big.Rat {
	num := new(big.Int).Exp(x.Num(), big.NewInt(int64(n)), nil)
	den := new(big.Int).Exp(x.Denom(), big.NewInt(int64(n)), nil)
	return new(big.Rat).SetFrac(num, den)
}
