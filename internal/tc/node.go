package tc

// Kind tags the closed set of outcome variants.
type Kind uint8

const (
	KindDefined Kind = iota + 1 // authored treasure class
	KindVirtual                 // synthetic grouping of items by class and level
	KindItem                    // terminal item
)

func (k Kind) String() string {
	switch k {
	case KindDefined:
		return "defined"
	case KindVirtual:
		return "virtual"
	case KindItem:
		return "item"
	default:
		return "unknown"
	}
}

// Outcome is the target of a weighted edge. Only *TreasureClass and *Item
// implement it.
type Outcome interface {
	Name() string
	Kind() Kind
	outcome()
}

// Properties are the treasure-class-only attributes read by the evaluator
// and the tier resolver.
type Properties struct {
	Group   *int
	Level   *int
	Picks   int
	Quality QualityRatios
	NoDrop  *int
}

// Edge is one weighted choice of a treasure class.
type Edge struct {
	Weight int
	Target Outcome
}

// TreasureClass is a weighted-choice node. It is immutable once its Graph
// has been built.
type TreasureClass struct {
	name        string
	kind        Kind
	denominator int
	props       Properties
	outcomes    []Edge
}

func (t *TreasureClass) Name() string { return t.name }
func (t *TreasureClass) Kind() Kind   { return t.kind }
func (*TreasureClass) outcome()       {}

// Denominator is the sum of outcome weights, excluding no-drop.
func (t *TreasureClass) Denominator() int { return t.denominator }

func (t *TreasureClass) Props() Properties { return t.props }

// Picks is the configured pick count; negative values fork draw-groups.
func (t *TreasureClass) Picks() int { return t.props.Picks }

// Outcomes returns the edges in configuration order. Callers must not modify
// the returned slice.
func (t *TreasureClass) Outcomes() []Edge { return t.outcomes }

// Item is a terminal outcome.
type Item struct {
	code   string
	name   string
	class  string
	level  int
	rarity int
}

// NewItem creates a terminal item. Display name defaults to code.
func NewItem(code, name, class string, level, rarity int) *Item {
	if name == "" {
		name = code
	}
	return &Item{code: code, name: name, class: class, level: level, rarity: rarity}
}

// Name returns the item code, which is its identity in the graph.
func (i *Item) Name() string    { return i.code }
func (i *Item) Kind() Kind      { return KindItem }
func (*Item) outcome()          {}
func (i *Item) Display() string { return i.name }
func (i *Item) Class() string   { return i.class }
func (i *Item) Level() int      { return i.level }
func (i *Item) Rarity() int     { return i.rarity }

// PicksOf returns the configured picks of o: a treasure class' own value,
// 1 for items.
func PicksOf(o Outcome) int {
	if t, ok := o.(*TreasureClass); ok {
		return t.props.Picks
	}
	return 1
}
