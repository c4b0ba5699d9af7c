// resolve.go
package game

import (
	"errors"
	"fmt"

	"github.com/xtding233/dropcalc/internal/tc"
)

var ErrUnknownMonster = errors.New("unknown monster")

// Resolved is the root treasure class for one kill.
type Resolved struct {
	Base  *tc.TreasureClass // configured treasure class
	Root  *tc.TreasureClass // after the tier upgrade
	Level int               // monster level used for the upgrade
}

// ResolveMonster picks a monster's treasure class for a difficulty and
// upgrades it through its group. A positive level overrides the monster's
// configured level, as when the monster spawns in a higher-level area.
func (c *Catalog) ResolveMonster(id string, d tc.Difficulty, level int, alwaysUpgrade bool) (Resolved, error) {
	m, ok := c.monsters[id]
	if !ok {
		return Resolved{}, fmt.Errorf("%w: %q", ErrUnknownMonster, id)
	}
	if int(d) >= len(m.TreasureClasses) || m.TreasureClasses[d] == nil {
		return Resolved{}, fmt.Errorf("%w: %q has no treasure class in %s", ErrUnknownMonster, id, d)
	}
	if level <= 0 {
		level = m.Levels[d]
	}
	return c.resolveTreasureClass(m.TreasureClasses[d], d, level, alwaysUpgrade)
}

// ResolveTreasureClass looks up a treasure class by name and upgrades it the
// same way a monster's would be for the given level.
func (c *Catalog) ResolveTreasureClass(name string, d tc.Difficulty, level int, alwaysUpgrade bool) (Resolved, error) {
	t, ok := c.Graph.TreasureClass(name)
	if !ok {
		return Resolved{}, fmt.Errorf("%w: %q", tc.ErrUnknownTreasureClass, name)
	}
	if level <= 0 {
		return Resolved{Base: t, Root: t}, nil
	}
	return c.resolveTreasureClass(t, d, level, alwaysUpgrade)
}

func (c *Catalog) resolveTreasureClass(base *tc.TreasureClass, d tc.Difficulty, level int, alwaysUpgrade bool) (Resolved, error) {
	root, err := tc.ResolveTier(c.Graph, base, level, d, alwaysUpgrade)
	if err != nil {
		return Resolved{}, err
	}
	return Resolved{Base: base, Root: root, Level: level}, nil
}
