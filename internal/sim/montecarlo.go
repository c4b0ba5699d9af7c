package sim

import (
	"math"
	"sort"

	"github.com/xtding233/dropcalc/internal/drop"
	"github.com/xtding233/dropcalc/internal/tc"
)

// Params describes the mechanics for one simulation run.
type Params struct {
	Players   int
	PartySize int
	Mode      drop.Mode
}

// Stats summarizes simulation results.
type Stats struct {
	Mean   float64 `json:"mean"`
	Var    float64 `json:"var"`
	StdDev float64 `json:"std_dev"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`
	// Optional: raw samples if caller needs histograms/exports
	Samples []int `json:"-"`
}

// Report is the outcome of RunMonteCarlo.
type Report struct {
	Trials int
	// Hits counts trials in which the outcome dropped at least once.
	Hits map[string]int
	// Drops summarizes the number of recorded drops per trial.
	Drops Stats
}

// Frequency is the observed chance of getting the named outcome at least once.
func (r Report) Frequency(name string) float64 {
	if r.Trials == 0 {
		return 0
	}
	return float64(r.Hits[name]) / float64(r.Trials)
}

// calcStats computes mean/variance/percentiles for integer samples.
func calcStats(xs []int) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	// mean
	var sum float64
	for _, v := range xs {
		sum += float64(v)
	}
	mean := sum / float64(n)

	// variance (population)
	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}
	variance := acc / float64(n)
	stddev := math.Sqrt(variance)

	// percentiles
	cp := append([]int(nil), xs...)
	sort.Ints(cp)
	percentile := func(p float64) float64 {
		if n == 1 || p <= 0 {
			return float64(cp[0])
		}
		if p >= 1 {
			return float64(cp[n-1])
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i+1 >= n {
			return float64(cp[i])
		}
		return float64(cp[i])*(1-f) + float64(cp[i+1])*f
	}

	return Stats{
		Mean:    mean,
		Var:     variance,
		StdDev:  stddev,
		P50:     percentile(0.50),
		P90:     percentile(0.90),
		P99:     percentile(0.99),
		Samples: xs,
	}
}

// simulator rolls a graph the way the game does: positive picks choose
// among outcomes plus no-drop, negative picks drop every child weight times.
type simulator struct {
	p    Params
	rng  RandomSource
	dens map[*tc.TreasureClass]int
}

func (s *simulator) effective(t *tc.TreasureClass) (int, error) {
	if d, ok := s.dens[t]; ok {
		return d, nil
	}
	d, err := tc.EffectiveDenominator(t, s.p.Players, s.p.PartySize)
	if err != nil {
		return 0, err
	}
	s.dens[t] = d
	return d, nil
}

func (s *simulator) visit(o tc.Outcome, got map[tc.Outcome]int) error {
	if s.p.Mode.Records(o.Kind()) {
		got[o]++
		return nil
	}
	t, ok := o.(*tc.TreasureClass)
	if !ok {
		return nil
	}

	if t.Picks() < 0 {
		for _, e := range t.Outcomes() {
			for i := 0; i < e.Weight; i++ {
				if err := s.visit(e.Target, got); err != nil {
					return err
				}
			}
		}
		return nil
	}

	den, err := s.effective(t)
	if err != nil {
		return err
	}
	if den == 0 {
		return nil
	}
	for pick := 0; pick < t.Picks(); pick++ {
		r := roll(s.rng, den)
		for _, e := range t.Outcomes() {
			if r < e.Weight {
				if err := s.visit(e.Target, got); err != nil {
					return err
				}
				break
			}
			r -= e.Weight
		}
		// falling through the loop is a no-drop roll
	}
	return nil
}

// RunMonteCarlo rolls root trials times and returns hit counts and stats.
func RunMonteCarlo(root tc.Outcome, p Params, trials int, rng RandomSource) (Report, error) {
	if trials <= 0 || root == nil {
		return Report{Hits: map[string]int{}}, nil
	}
	if p.Players < 1 {
		p.Players = 1
	}
	if p.PartySize < 1 {
		p.PartySize = 1
	}
	if rng == nil {
		rng = DefaultRNG()
	}

	s := &simulator{p: p, rng: rng, dens: make(map[*tc.TreasureClass]int)}
	hits := make(map[string]int)
	samples := make([]int, trials)
	got := make(map[tc.Outcome]int)
	for i := 0; i < trials; i++ {
		clear(got)
		if err := s.visit(root, got); err != nil {
			return Report{}, err
		}
		total := 0
		for o, n := range got {
			hits[o.Name()]++
			total += n
		}
		samples[i] = total
	}
	return Report{Trials: trials, Hits: hits, Drops: calcStats(samples)}, nil
}
