package calc

import (
	"sort"

	"github.com/xtding233/dropcalc/internal/tc"
)

type TreasureClassInfo struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Group       *int   `json:"group,omitempty"`
	Level       *int   `json:"level,omitempty"`
	Picks       int    `json:"picks"`
	NoDrop      *int   `json:"no_drop,omitempty"`
	Denominator int    `json:"denominator"`
	Outcomes    int    `json:"outcomes"`
}

type MonsterInfo struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Levels          map[string]int    `json:"levels"`
	TreasureClasses map[string]string `json:"treasure_classes"`
}

type ItemInfo struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Class  string `json:"class,omitempty"`
	Level  int    `json:"level"`
	Rarity int    `json:"rarity"`
}

// TreasureClasses lists the catalog's treasure classes, optionally only
// those of one kind, sorted by name.
func (s *Service) TreasureClasses(kind string) []TreasureClassInfo {
	classes := s.Catalog().Graph.TreasureClasses()
	out := make([]TreasureClassInfo, 0, len(classes))
	for _, t := range classes {
		if kind != "" && t.Kind().String() != kind {
			continue
		}
		p := t.Props()
		out = append(out, TreasureClassInfo{
			Name:        t.Name(),
			Kind:        t.Kind().String(),
			Group:       p.Group,
			Level:       p.Level,
			Picks:       p.Picks,
			NoDrop:      p.NoDrop,
			Denominator: t.Denominator(),
			Outcomes:    len(t.Outcomes()),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Monsters lists monsters in configuration order.
func (s *Service) Monsters() []MonsterInfo {
	monsters := s.Catalog().Monsters()
	out := make([]MonsterInfo, 0, len(monsters))
	for _, m := range monsters {
		info := MonsterInfo{
			ID:              m.ID,
			Name:            m.Name,
			Levels:          map[string]int{},
			TreasureClasses: map[string]string{},
		}
		for _, d := range []tc.Difficulty{tc.Normal, tc.Nightmare, tc.Hell} {
			if t := m.TreasureClasses[d]; t != nil {
				info.TreasureClasses[d.String()] = t.Name()
			}
			if lvl := m.Levels[d]; lvl > 0 {
				info.Levels[d.String()] = lvl
			}
		}
		out = append(out, info)
	}
	return out
}

// Items lists items, optionally of one class, in configuration order.
func (s *Service) Items(class string) []ItemInfo {
	out := []ItemInfo{}
	for _, it := range s.Catalog().Graph.Items() {
		if class != "" && it.Class() != class {
			continue
		}
		out = append(out, ItemInfo{
			Code:   it.Name(),
			Name:   it.Display(),
			Class:  it.Class(),
			Level:  it.Level(),
			Rarity: it.Rarity(),
		})
	}
	return out
}
