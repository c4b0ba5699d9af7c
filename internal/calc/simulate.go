package calc

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xtding233/dropcalc/internal/drop"
	"github.com/xtding233/dropcalc/internal/sim"
)

const MaxTrials = 1_000_000

// Simulation puts observed frequencies next to the exact probabilities of
// the same request.
type Simulation struct {
	Root   string    `json:"root"`
	Trials int       `json:"trials"`
	Seed   uint64    `json:"seed,omitempty"`
	Rows   []SimRow  `json:"rows"`
	Drops  sim.Stats `json:"drops"`
}

type SimRow struct {
	Outcome  string  `json:"outcome"`
	Exact    float64 `json:"exact"`
	Observed float64 `json:"observed"`
}

// Simulate rolls the request's root trials times. A zero seed draws from
// crypto/rand. Quality is not rolled, so the request's quality is ignored.
func (s *Service) Simulate(ctx context.Context, req Request, trials int, seed uint64) (*Simulation, error) {
	if trials < 1 || trials > MaxTrials {
		return nil, fmt.Errorf("%w: trials must be in [1,%d]", ErrInvalidRequest, MaxTrials)
	}
	req.Quality = ""
	exact, err := s.Evaluate(ctx, req)
	if err != nil {
		return nil, err
	}

	root, ok := s.Catalog().Graph.TreasureClass(exact.Root)
	if !ok {
		return nil, fmt.Errorf("simulate: %q vanished in a reload", exact.Root)
	}
	mode, err := drop.ParseMode(exact.Mode)
	if err != nil {
		return nil, err
	}
	rng := sim.DefaultRNG()
	if seed != 0 {
		rng = sim.NewSeededRNG(seed)
	}
	n := req.normalized()
	rep, err := sim.RunMonteCarlo(root, sim.Params{Players: n.Players, PartySize: n.PartySize, Mode: mode}, trials, rng)
	if err != nil {
		return nil, err
	}

	out := &Simulation{Root: exact.Root, Trials: rep.Trials, Seed: seed, Rows: []SimRow{}, Drops: rep.Drops}
	for _, row := range exact.Rows {
		out.Rows = append(out.Rows, SimRow{
			Outcome:  row.Outcome,
			Exact:    row.Decimal,
			Observed: rep.Frequency(row.Outcome),
		})
	}
	s.log.Debug("simulated", zap.String("root", exact.Root), zap.Int("trials", trials), zap.Float64("mean_drops", rep.Drops.Mean))
	return out, nil
}
