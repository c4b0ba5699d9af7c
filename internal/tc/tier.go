package tc

import (
	"fmt"
	"strings"
)

// Difficulty of the game the monster is killed in.
type Difficulty uint8

const (
	Normal Difficulty = iota
	Nightmare
	Hell
)

func (d Difficulty) String() string {
	switch d {
	case Normal:
		return "normal"
	case Nightmare:
		return "nightmare"
	case Hell:
		return "hell"
	default:
		return fmt.Sprintf("difficulty(%d)", uint8(d))
	}
}

// ParseDifficulty accepts the names above, case-insensitively, plus their
// initials.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal", "n", "":
		return Normal, nil
	case "nightmare", "nm":
		return Nightmare, nil
	case "hell", "h":
		return Hell, nil
	}
	return 0, fmt.Errorf("unknown difficulty %q", s)
}

// ResolveTier upgrades base to the highest member of its group whose level
// does not exceed monsterLevel. Normal difficulty only upgrades when
// alwaysUpgrade is set.
func ResolveTier(g *Graph, base *TreasureClass, monsterLevel int, d Difficulty, alwaysUpgrade bool) (*TreasureClass, error) {
	if !alwaysUpgrade && d == Normal {
		return base, nil
	}
	if base.props.Group == nil {
		return base, nil
	}
	members := g.Group(*base.props.Group)
	if len(members) <= 1 {
		return base, nil
	}

	leveled := false
	pos := -1
	for i, m := range members {
		if m.props.Level != nil {
			leveled = true
		}
		if m == base {
			pos = i
		}
	}
	if !leveled {
		return nil, configErr(base.name, "group %d has no leveled members", *base.props.Group)
	}
	if pos < 0 {
		return nil, configErr(base.name, "not a member of its own group %d", *base.props.Group)
	}

	for pos+1 < len(members) {
		next := members[pos+1].props.Level
		if next == nil || *next > monsterLevel {
			break
		}
		pos++
	}
	return members[pos], nil
}
