package game

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/xtding233/dropcalc/internal/tc"
)

// Monster is a resolved monster record. Arrays are indexed by tc.Difficulty.
type Monster struct {
	ID              string
	Name            string
	Levels          [3]int
	TreasureClasses [3]*tc.TreasureClass
}

// Catalog is the immutable result of building a RawConfig: the outcome
// graph plus the monsters that reference it.
type Catalog struct {
	Version  string
	Graph    *tc.Graph
	monsters map[string]*Monster
	order    []*Monster
}

func (c *Catalog) Monster(id string) (*Monster, bool) {
	m, ok := c.monsters[id]
	return m, ok
}

func (c *Catalog) Monsters() []*Monster { return c.order }

// Build turns a validated RawConfig into a Catalog. Virtual treasure classes
// are generated from the items first so that authored classes can refer to
// them; an authored class with the same name replaces the generated one.
func Build(cfg RawConfig) (*Catalog, error) {
	b := tc.NewBuilder()
	for _, it := range cfg.Items {
		b.AddItem(tc.NewItem(it.Code, it.Name, it.Class, it.Level, it.Rarity))
	}

	authored := make(map[string]bool, len(cfg.TreasureClasses))
	for _, t := range cfg.TreasureClasses {
		authored[t.Name] = true
	}
	for _, v := range VirtualTreasureClasses(cfg.Items, cfg.VirtualLevelStep) {
		if !authored[v.Name] {
			b.AddTreasureClass(v)
		}
	}

	for _, t := range cfg.TreasureClasses {
		picks := 1
		if t.Picks != nil {
			picks = *t.Picks
		}
		def := tc.TreasureClassDef{
			Name:    t.Name,
			Kind:    tc.KindDefined,
			Group:   t.Group,
			Level:   t.Level,
			Picks:   picks,
			Quality: t.Quality,
			NoDrop:  t.NoDrop,
		}
		for _, o := range t.Outcomes {
			def.Outcomes = append(def.Outcomes, tc.EdgeDef{Ref: o.Ref, Weight: o.Weight})
		}
		b.AddTreasureClass(def)
	}

	g, err := b.Build()
	if err != nil {
		return nil, err
	}

	cat := &Catalog{
		Version:  cfg.Version,
		Graph:    g,
		monsters: make(map[string]*Monster, len(cfg.Monsters)),
	}
	for _, md := range cfg.Monsters {
		m, err := buildMonster(g, md)
		if err != nil {
			return nil, err
		}
		cat.monsters[m.ID] = m
		cat.order = append(cat.order, m)
	}
	return cat, nil
}

func buildMonster(g *tc.Graph, md MonsterDef) (*Monster, error) {
	m := &Monster{ID: md.ID, Name: md.Name}
	if m.Name == "" {
		m.Name = md.ID
	}
	for key, name := range md.TreasureClasses {
		d, err := tc.ParseDifficulty(key)
		if err != nil {
			return nil, &tc.ConfigurationError{Name: md.ID, Reason: err.Error()}
		}
		t, ok := g.TreasureClass(name)
		if !ok {
			return nil, &tc.ConfigurationError{Name: md.ID, Reason: fmt.Sprintf("unknown treasure class %q", name)}
		}
		m.TreasureClasses[d] = t
	}
	for key, lvl := range md.Levels {
		d, err := tc.ParseDifficulty(key)
		if err != nil {
			return nil, &tc.ConfigurationError{Name: md.ID, Reason: err.Error()}
		}
		m.Levels[d] = lvl
	}
	return m, nil
}

// VirtualTreasureClasses groups items by class into level buckets of width
// step: class c, bucket k holds every item of class c with a level in
// ((k-1)*step, k*step], weighted by rarity, and is named c + k*step. Every
// bucket up to the class' highest level is generated, empty or not. Items
// without a class or with zero rarity are left out.
func VirtualTreasureClasses(items []ItemDef, step int) []tc.TreasureClassDef {
	if step <= 0 {
		step = defaultVirtualLevelStep
	}
	buckets := make(map[string]map[int][]tc.EdgeDef)
	top := make(map[string]int)
	for _, it := range items {
		if it.Class == "" || it.Rarity <= 0 {
			continue
		}
		k := (max(it.Level, 1) + step - 1) / step
		if buckets[it.Class] == nil {
			buckets[it.Class] = make(map[int][]tc.EdgeDef)
		}
		buckets[it.Class][k] = append(buckets[it.Class][k], tc.EdgeDef{Ref: it.Code, Weight: it.Rarity})
		top[it.Class] = max(top[it.Class], k)
	}

	classes := make([]string, 0, len(buckets))
	for c := range buckets {
		classes = append(classes, c)
	}
	sort.Strings(classes)

	var defs []tc.TreasureClassDef
	for _, c := range classes {
		for k := 1; k <= top[c]; k++ {
			defs = append(defs, tc.TreasureClassDef{
				Name:     c + strconv.Itoa(k*step),
				Kind:     tc.KindVirtual,
				Picks:    1,
				Outcomes: buckets[c][k],
			})
		}
	}
	return defs
}
