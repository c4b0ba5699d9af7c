package sim

import (
	cryptoRand "crypto/rand"
	"math/big"
	"math/rand/v2"
)

// RandomSource draws the uniform integers a simulation needs. IntN returns
// a value in [0, n); n must be positive.
type RandomSource interface {
	IntN(n int) int
}

// cryptoSource is the default: unpredictable, not replayable.
type cryptoSource struct{}

func (cryptoSource) IntN(n int) int {
	v, err := cryptoRand.Int(cryptoRand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return rand.IntN(n)
	}
	return int(v.Int64())
}

func DefaultRNG() RandomSource { return cryptoSource{} }

// seededSource replays the same sequence for the same seed.
type seededSource struct{ r *rand.Rand }

func NewSeededRNG(seed uint64) RandomSource {
	return &seededSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seededSource) IntN(n int) int { return s.r.IntN(n) }

// roll picks a weight slot in [0, den).
func roll(rng RandomSource, den int) int {
	return rng.IntN(den)
}
