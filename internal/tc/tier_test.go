package tc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tierGraph(t *testing.T, levels ...*int) *Graph {
	t.Helper()
	b := NewBuilder().AddItem(NewItem("gld", "Gold", "", 0, 0))
	for i, lvl := range levels {
		b.AddTreasureClass(TreasureClassDef{
			Name:     tierName(i),
			Group:    intp(5),
			Level:    lvl,
			Picks:    1,
			Outcomes: []EdgeDef{{Ref: "gld", Weight: 1}},
		})
	}
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func tierName(i int) string {
	return "Act 1 H2H " + string(rune('A'+i))
}

func mustTC(t *testing.T, g *Graph, name string) *TreasureClass {
	t.Helper()
	tc, ok := g.TreasureClass(name)
	require.True(t, ok, name)
	return tc
}

func TestResolveTierLevelThreshold(t *testing.T) {
	g := tierGraph(t, intp(2), intp(9))
	low := mustTC(t, g, tierName(0))
	high := mustTC(t, g, tierName(1))

	got, err := ResolveTier(g, low, 8, Hell, false)
	require.NoError(t, err)
	assert.Same(t, low, got)

	got, err = ResolveTier(g, low, 9, Hell, false)
	require.NoError(t, err)
	assert.Same(t, high, got)
}

func TestResolveTierNormalNeedsAlwaysUpgrade(t *testing.T) {
	g := tierGraph(t, intp(2), intp(9), intp(15))
	low := mustTC(t, g, tierName(0))

	got, err := ResolveTier(g, low, 99, Normal, false)
	require.NoError(t, err)
	assert.Same(t, low, got)

	got, err = ResolveTier(g, low, 99, Normal, true)
	require.NoError(t, err)
	assert.Same(t, mustTC(t, g, tierName(2)), got)
}

func TestResolveTierStartsAfterBase(t *testing.T) {
	g := tierGraph(t, intp(2), intp(9), intp(15))
	mid := mustTC(t, g, tierName(1))

	got, err := ResolveTier(g, mid, 3, Nightmare, false)
	require.NoError(t, err)
	assert.Same(t, mid, got, "never downgrades")
}

func TestResolveTierWithoutGroup(t *testing.T) {
	g, err := NewBuilder().
		AddItem(NewItem("gld", "", "", 0, 0)).
		AddTreasureClass(TreasureClassDef{Name: "Gold", Picks: 1, Outcomes: []EdgeDef{{Ref: "gld", Weight: 1}}}).
		Build()
	require.NoError(t, err)
	base := mustTC(t, g, "Gold")

	got, err := ResolveTier(g, base, 99, Hell, true)
	require.NoError(t, err)
	assert.Same(t, base, got)
}

func TestResolveTierGroupWithoutLevels(t *testing.T) {
	g := tierGraph(t, nil, nil)
	_, err := ResolveTier(g, mustTC(t, g, tierName(0)), 50, Hell, false)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, tierName(0), cfgErr.Name)
}

func TestParseDifficulty(t *testing.T) {
	for in, want := range map[string]Difficulty{"normal": Normal, "NM": Nightmare, "Hell": Hell, "h": Hell} {
		got, err := ParseDifficulty(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDifficulty("inferno")
	assert.Error(t, err)
}
