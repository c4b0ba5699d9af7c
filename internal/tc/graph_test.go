package tc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildResolvesAndSumsWeights(t *testing.T) {
	g, err := NewBuilder().
		AddItem(NewItem("gld", "Gold", "", 0, 0)).
		AddItem(NewItem("hax", "Hand Axe", "weap", 3, 3)).
		AddTreasureClass(TreasureClassDef{Name: "weap3", Kind: KindVirtual, Picks: 1, Outcomes: []EdgeDef{{Ref: "hax", Weight: 3}}}).
		AddTreasureClass(TreasureClassDef{
			Name:    "Act 1 Equip A",
			Picks:   1,
			Quality: QualityRatios{Unique: 983, Set: 983, Rare: 983, Magic: 983},
			Outcomes: []EdgeDef{
				{Ref: "weap3", Weight: 21},
				{Ref: "gld", Weight: 139},
				{Ref: "hax", Weight: 0},
			},
		}).
		Build()
	require.NoError(t, err)

	equip := mustTC(t, g, "Act 1 Equip A")
	assert.Equal(t, KindDefined, equip.Kind())
	assert.Equal(t, 160, equip.Denominator())
	require.Len(t, equip.Outcomes(), 2, "zero weights are dropped")
	assert.Equal(t, "weap3", equip.Outcomes()[0].Target.Name())
	assert.Equal(t, KindVirtual, equip.Outcomes()[0].Target.Kind())
	assert.Equal(t, KindItem, equip.Outcomes()[1].Target.Kind())

	o, ok := g.Outcome("hax")
	require.True(t, ok)
	assert.Equal(t, "Hand Axe", o.(*Item).Display())
	assert.Len(t, g.TreasureClasses(), 2)
	assert.Len(t, g.Items(), 2)
}

func TestBuildRejectsMalformedGraphs(t *testing.T) {
	gold := NewItem("gld", "", "", 0, 0)
	one := func(name string, refs ...string) TreasureClassDef {
		def := TreasureClassDef{Name: name, Picks: 1}
		for _, r := range refs {
			def.Outcomes = append(def.Outcomes, EdgeDef{Ref: r, Weight: 1})
		}
		return def
	}

	neg := TreasureClassDef{Name: "A", Picks: 1, Outcomes: []EdgeDef{{Ref: "gld", Weight: -1}}}

	cases := map[string]*Builder{
		"self reference":  NewBuilder().AddTreasureClass(one("A", "A")),
		"unresolved":      NewBuilder().AddTreasureClass(one("A", "nope")),
		"duplicate":       NewBuilder().AddItem(gold).AddTreasureClass(one("A", "gld")).AddTreasureClass(one("A", "gld")),
		"cycle":           NewBuilder().AddTreasureClass(one("A", "B")).AddTreasureClass(one("B", "C")).AddTreasureClass(one("C", "A")),
		"name clash":      NewBuilder().AddItem(gold).AddTreasureClass(one("gld")),
		"negative weight": NewBuilder().AddItem(gold).AddTreasureClass(neg),
	}
	for name, b := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := b.Build()
			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestBuildAcceptsDiamond(t *testing.T) {
	g, err := NewBuilder().
		AddItem(NewItem("gld", "", "", 0, 0)).
		AddTreasureClass(TreasureClassDef{Name: "Top", Picks: 1, Outcomes: []EdgeDef{{Ref: "L", Weight: 1}, {Ref: "R", Weight: 1}}}).
		AddTreasureClass(TreasureClassDef{Name: "L", Picks: 1, Outcomes: []EdgeDef{{Ref: "Bottom", Weight: 1}}}).
		AddTreasureClass(TreasureClassDef{Name: "R", Picks: 1, Outcomes: []EdgeDef{{Ref: "Bottom", Weight: 1}}}).
		AddTreasureClass(TreasureClassDef{Name: "Bottom", Picks: 1, Outcomes: []EdgeDef{{Ref: "gld", Weight: 1}}}).
		Build()
	require.NoError(t, err)
	assert.Len(t, g.TreasureClasses(), 4)
}

func TestGroupOrderedByLevel(t *testing.T) {
	b := NewBuilder().AddItem(NewItem("gld", "", "", 0, 0))
	for _, def := range []struct {
		name  string
		level *int
	}{{"C", intp(30)}, {"X", nil}, {"A", intp(2)}, {"B", intp(9)}} {
		b.AddTreasureClass(TreasureClassDef{Name: def.name, Group: intp(1), Level: def.level, Picks: 1,
			Outcomes: []EdgeDef{{Ref: "gld", Weight: 1}}})
	}
	g, err := b.Build()
	require.NoError(t, err)

	var names []string
	for _, m := range g.Group(1) {
		names = append(names, m.Name())
	}
	assert.Equal(t, []string{"A", "B", "C", "X"}, names)
	assert.Empty(t, g.Group(2))
}
