// types.go
package game

import "github.com/xtding233/dropcalc/internal/tc"

// Raw config loaded from YAML; mirrors the data files under data/.
type RawConfig struct {
	Version string `yaml:"version"`
	Notes   string `yaml:"notes,omitempty"`
	// VirtualLevelStep is the width of the level buckets used to group items
	// into virtual treasure classes (weap3, weap6, ...). Zero means 3.
	VirtualLevelStep int                `yaml:"virtual_level_step,omitempty"`
	Tables           []string           `yaml:"treasure_class_tables,omitempty"` // TSV files relative to data/
	Items            []ItemDef          `yaml:"items"`
	TreasureClasses  []TreasureClassDef `yaml:"treasure_classes"`
	Monsters         []MonsterDef       `yaml:"monsters,omitempty"`
}

type ItemDef struct {
	Code   string `yaml:"code"`
	Name   string `yaml:"name,omitempty"`
	Class  string `yaml:"class,omitempty"` // weap, armo, ...; empty for misc items
	Level  int    `yaml:"level"`
	Rarity int    `yaml:"rarity"`
}

type TreasureClassDef struct {
	Name     string           `yaml:"name"`
	Group    *int             `yaml:"group,omitempty"`
	Level    *int             `yaml:"level,omitempty"`
	Picks    *int             `yaml:"picks,omitempty"` // defaults to 1
	Quality  tc.QualityRatios `yaml:"quality,omitempty"`
	NoDrop   *int             `yaml:"no_drop,omitempty"`
	Outcomes []OutcomeDef     `yaml:"outcomes"`
}

type OutcomeDef struct {
	Ref    string `yaml:"ref"`
	Weight int    `yaml:"weight"`
}

// MonsterDef keys Levels and TreasureClasses by difficulty name.
type MonsterDef struct {
	ID              string            `yaml:"id"`
	Name            string            `yaml:"name,omitempty"`
	Levels          map[string]int    `yaml:"levels"`
	TreasureClasses map[string]string `yaml:"treasure_classes"`
}

const defaultVirtualLevelStep = 3
