package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/dropcalc/internal/drop"
	"github.com/xtding233/dropcalc/internal/tc"
)

func intp(v int) *int { return &v }

func simGraph(t *testing.T) *tc.Graph {
	t.Helper()
	e := func(ref string, w int) tc.EdgeDef { return tc.EdgeDef{Ref: ref, Weight: w} }
	g, err := tc.NewBuilder().
		AddItem(tc.NewItem("hax", "Hand Axe", "weap", 3, 3)).
		AddItem(tc.NewItem("axe", "Axe", "weap", 3, 1)).
		AddItem(tc.NewItem("cap", "Cap", "armo", 1, 3)).
		AddItem(tc.NewItem("gld", "Gold", "", 0, 0)).
		AddTreasureClass(tc.TreasureClassDef{Name: "weap3", Kind: tc.KindVirtual, Picks: 1, Outcomes: []tc.EdgeDef{e("hax", 3), e("axe", 1)}}).
		AddTreasureClass(tc.TreasureClassDef{Name: "armo3", Kind: tc.KindVirtual, Picks: 1, Outcomes: []tc.EdgeDef{e("cap", 1)}}).
		AddTreasureClass(tc.TreasureClassDef{Name: "Junk", Picks: 1, NoDrop: intp(100), Outcomes: []tc.EdgeDef{e("weap3", 21), e("armo3", 39)}}).
		AddTreasureClass(tc.TreasureClassDef{Name: "Boss", Picks: 5, Outcomes: []tc.EdgeDef{e("weap3", 1), e("armo3", 2), e("gld", 1)}}).
		AddTreasureClass(tc.TreasureClassDef{Name: "Quest", Picks: -1, Outcomes: []tc.EdgeDef{e("Junk", 2), e("weap3", 1)}}).
		AddTreasureClass(tc.TreasureClassDef{Name: "Rich", Picks: 2, Quality: tc.QualityRatios{Unique: 900, Rare: 200}, Outcomes: []tc.EdgeDef{e("weap3", 1), e("armo3", 1)}}).
		AddTreasureClass(tc.TreasureClassDef{Name: "Plain", Picks: 1, Outcomes: []tc.EdgeDef{e("weap3", 2), e("armo3", 1)}}).
		AddTreasureClass(tc.TreasureClassDef{Name: "Mixed", Picks: 2, Outcomes: []tc.EdgeDef{e("Rich", 1), e("Plain", 2), e("gld", 1)}}).
		Build()
	require.NoError(t, err)
	return g
}

// The Monte Carlo frequencies must agree with the exact evaluation,
// including sibling treasure classes with different picks and quality.
func TestMonteCarloAgreesWithExact(t *testing.T) {
	g := simGraph(t)
	const trials = 60000

	for _, tt := range []struct {
		root    string
		players int
		mode    drop.Mode
	}{
		{"Junk", 1, drop.ModeDefined},
		{"Junk", 6, drop.ModeVirtual},
		{"Boss", 1, drop.ModeVirtual},
		{"Quest", 3, drop.ModeDefined},
		{"Mixed", 1, drop.ModeDefined},
		{"Mixed", 1, drop.ModeVirtual},
	} {
		t.Run(tt.root+"/"+tt.mode.String(), func(t *testing.T) {
			root, ok := g.Outcome(tt.root)
			require.True(t, ok)

			exact, err := drop.Evaluate(root, drop.Options{Players: tt.players, PartySize: 1, Mode: tt.mode})
			require.NoError(t, err)
			rep, err := RunMonteCarlo(root, Params{Players: tt.players, PartySize: 1, Mode: tt.mode}, trials, NewSeededRNG(42))
			require.NoError(t, err)

			for _, o := range exact.Outcomes() {
				want, _ := exact.FinalProbability(o, nil).Float64()
				assert.InDelta(t, want, rep.Frequency(o.Name()), 0.01, o.Name())
			}
		})
	}
}

func TestMonteCarloStats(t *testing.T) {
	g := simGraph(t)
	root, _ := g.Outcome("Boss")

	rep, err := RunMonteCarlo(root, Params{Players: 1, PartySize: 1, Mode: drop.ModeVirtual}, 2000, NewSeededRNG(7))
	require.NoError(t, err)
	assert.Equal(t, 2000, rep.Trials)
	assert.InDelta(t, 5.0, rep.Drops.Mean, 1e-9, "five picks without no-drop always drop five items")
	assert.Zero(t, rep.Drops.Var)
	assert.Len(t, rep.Drops.Samples, 2000)
}

func TestMonteCarloNoTrials(t *testing.T) {
	rep, err := RunMonteCarlo(nil, Params{}, 10, nil)
	require.NoError(t, err)
	assert.Zero(t, rep.Frequency("hax"))
}

func TestCalcStats(t *testing.T) {
	s := calcStats([]int{1, 2, 3, 4})
	assert.InDelta(t, 2.5, s.Mean, 1e-12)
	assert.InDelta(t, 1.25, s.Var, 1e-12)
	assert.InDelta(t, 2.5, s.P50, 1e-12)
	assert.Equal(t, Stats{}, calcStats(nil))
}

func TestSeededRNGReplicable(t *testing.T) {
	a, b := NewSeededRNG(1), NewSeededRNG(1)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.IntN(1000), b.IntN(1000))
	}
	for i := 0; i < 100; i++ {
		v := DefaultRNG().IntN(7)
		assert.True(t, v >= 0 && v < 7)
	}
}
