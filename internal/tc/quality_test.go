package tc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeIsElementwiseMax(t *testing.T) {
	a := QualityRatios{Unique: 983, Set: 983, Rare: 983, Magic: 983}
	b := QualityRatios{Unique: 1024, Set: 0, Rare: 1000, Magic: 10}
	c := QualityRatios{Unique: 5, Set: 2000, Rare: 1, Magic: 1024}

	assert.Equal(t, QualityRatios{Unique: 1024, Set: 983, Rare: 1000, Magic: 983}, Merge(a, b))
	assert.Equal(t, Merge(a, b), Merge(b, a), "commutative")
	assert.Equal(t, Merge(Merge(a, b), c), Merge(a, Merge(b, c)), "associative")
	assert.Equal(t, a, Merge(a, a), "idempotent")
	assert.Equal(t, a, Merge(a, QualityRatios{}), "zero is identity")
	assert.True(t, QualityRatios{}.IsZero())
	assert.False(t, a.IsZero())
}
