package tc

import (
	"sort"
)

// EdgeDef is an unresolved weighted reference by name.
type EdgeDef struct {
	Ref    string
	Weight int
}

// TreasureClassDef is the build-time record of a treasure class.
type TreasureClassDef struct {
	Name     string
	Kind     Kind // KindDefined when zero
	Group    *int
	Level    *int
	Picks    int
	Quality  QualityRatios
	NoDrop   *int
	Outcomes []EdgeDef
}

// Graph is the immutable, shareable outcome graph. It is safe for concurrent
// readers.
type Graph struct {
	classes map[string]*TreasureClass
	items   map[string]*Item
	order   []*TreasureClass
	itemSeq []*Item
	groups  map[int][]*TreasureClass
}

// TreasureClass looks up a defined or virtual treasure class by name.
func (g *Graph) TreasureClass(name string) (*TreasureClass, bool) {
	t, ok := g.classes[name]
	return t, ok
}

// Item looks up an item by code.
func (g *Graph) Item(code string) (*Item, bool) {
	i, ok := g.items[code]
	return i, ok
}

// Outcome resolves a name the same way edge references are resolved:
// treasure classes first, then items.
func (g *Graph) Outcome(name string) (Outcome, bool) {
	if t, ok := g.classes[name]; ok {
		return t, true
	}
	if i, ok := g.items[name]; ok {
		return i, true
	}
	return nil, false
}

// Group returns the members of a group, level-ascending. Members without a
// level sort last.
func (g *Graph) Group(id int) []*TreasureClass {
	return g.groups[id]
}

// TreasureClasses returns every treasure class in build order.
func (g *Graph) TreasureClasses() []*TreasureClass {
	return g.order
}

// Items returns every item in build order.
func (g *Graph) Items() []*Item {
	return g.itemSeq
}

// Builder collects items and treasure-class records and resolves them into
// a Graph. It is not safe for concurrent use.
type Builder struct {
	items []*Item
	defs  []TreasureClassDef
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) AddItem(item *Item) *Builder {
	b.items = append(b.items, item)
	return b
}

func (b *Builder) AddTreasureClass(def TreasureClassDef) *Builder {
	b.defs = append(b.defs, def)
	return b
}

// Build resolves references, computes denominators and rejects duplicate
// names, unresolved or self references, negative weights and cycles.
func (b *Builder) Build() (*Graph, error) {
	g := &Graph{
		classes: make(map[string]*TreasureClass, len(b.defs)),
		items:   make(map[string]*Item, len(b.items)),
		groups:  make(map[int][]*TreasureClass),
	}

	for _, it := range b.items {
		if it == nil || it.code == "" {
			return nil, configErr("", "item without code")
		}
		if _, dup := g.items[it.code]; dup {
			return nil, configErr(it.code, "duplicate item")
		}
		g.items[it.code] = it
		g.itemSeq = append(g.itemSeq, it)
	}

	for _, def := range b.defs {
		if def.Name == "" {
			return nil, configErr("", "treasure class without name")
		}
		if _, dup := g.classes[def.Name]; dup {
			return nil, configErr(def.Name, "duplicate treasure class")
		}
		if _, clash := g.items[def.Name]; clash {
			return nil, configErr(def.Name, "name is also an item code")
		}
		kind := def.Kind
		if kind == 0 {
			kind = KindDefined
		}
		if kind == KindItem {
			return nil, configErr(def.Name, "treasure class cannot be of kind item")
		}
		t := &TreasureClass{
			name: def.Name,
			kind: kind,
			props: Properties{
				Group:   def.Group,
				Level:   def.Level,
				Picks:   def.Picks,
				Quality: def.Quality,
				NoDrop:  def.NoDrop,
			},
		}
		g.classes[def.Name] = t
		g.order = append(g.order, t)
	}

	for i, def := range b.defs {
		t := g.order[i]
		for _, e := range def.Outcomes {
			if e.Ref == def.Name {
				return nil, configErr(def.Name, "references itself")
			}
			if e.Weight < 0 {
				return nil, configErr(def.Name, "negative weight %d for %q", e.Weight, e.Ref)
			}
			if e.Weight == 0 {
				continue
			}
			target, ok := g.Outcome(e.Ref)
			if !ok {
				return nil, configErr(def.Name, "unresolved reference %q", e.Ref)
			}
			t.outcomes = append(t.outcomes, Edge{Weight: e.Weight, Target: target})
			t.denominator += e.Weight
		}
	}

	if err := checkAcyclic(g.order); err != nil {
		return nil, err
	}

	for _, t := range g.order {
		if t.props.Group == nil {
			continue
		}
		id := *t.props.Group
		g.groups[id] = append(g.groups[id], t)
	}
	for _, members := range g.groups {
		sort.SliceStable(members, func(i, j int) bool {
			return levelLess(members[i].props.Level, members[j].props.Level)
		})
	}

	return g, nil
}

func levelLess(a, b *int) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return *a < *b
	}
}

// checkAcyclic runs a three-colour DFS over treasure-class edges.
func checkAcyclic(order []*TreasureClass) error {
	const (
		white = iota
		grey
		black
	)
	color := make(map[*TreasureClass]int, len(order))

	var visit func(t *TreasureClass, path []string) error
	visit = func(t *TreasureClass, path []string) error {
		color[t] = grey
		path = append(path, t.name)
		for _, e := range t.outcomes {
			child, ok := e.Target.(*TreasureClass)
			if !ok {
				continue
			}
			switch color[child] {
			case grey:
				return configErr(child.name, "cyclic reference via %v", append(path, child.name))
			case white:
				if err := visit(child, path); err != nil {
					return err
				}
			}
		}
		color[t] = black
		return nil
	}

	for _, t := range order {
		if color[t] == white {
			if err := visit(t, nil); err != nil {
				return err
			}
		}
	}
	return nil
}
