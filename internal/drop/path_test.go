package drop

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerivedMonotoneInAttempts(t *testing.T) {
	p := big.NewRat(3, 40)
	prev := new(big.Rat)
	for picks := 1; picks <= 4; picks++ {
		for drops := 1; drops <= 4; drops++ {
			got := PathOutcome{Probability: p, Picks: picks, Drops: drops}.Derived(nil)
			if drops > 1 {
				assert.GreaterOrEqual(t, got.Cmp(prev), 0, "picks=%d drops=%d", picks, drops)
			}
			prev = got
		}
	}
	one := PathOutcome{Probability: p, Picks: 1, Drops: 1}.Derived(nil)
	two := PathOutcome{Probability: p, Picks: 2, Drops: 1}.Derived(nil)
	assert.Equal(t, 1, two.Cmp(one))
}

func TestDerivedEdgeCases(t *testing.T) {
	assert.Equal(t, "0", PathOutcome{Probability: big.NewRat(1, 2), Picks: 0, Drops: 5}.Derived(nil).RatString())
	assert.Equal(t, "1", PathOutcome{Probability: big.NewRat(1, 1), Picks: 3, Drops: 1}.Derived(nil).RatString())
	assert.Equal(t, "0", PathOutcome{Picks: 1, Drops: 1}.Derived(nil).RatString())
	assert.Equal(t, "3/4", PathOutcome{Probability: big.NewRat(1, 2), Picks: 1, Drops: 2}.Derived(nil).RatString())
}
