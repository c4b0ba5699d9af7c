package game

import (
	"fmt"
	"strings"

	"github.com/xtding233/dropcalc/internal/tc"
)

// ValidateRaw checks semantic constraints of a RawConfig. Reference
// resolution and cycles are checked when the graph is built.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	if cfg.VirtualLevelStep < 0 {
		errs = append(errs, "virtual_level_step must be >= 0")
	}

	// items
	codes := make(map[string]bool, len(cfg.Items))
	for i, it := range cfg.Items {
		switch {
		case it.Code == "":
			errs = append(errs, fmt.Sprintf("items[%d].code is required", i))
		case codes[it.Code]:
			errs = append(errs, fmt.Sprintf("items[%d].code %q is duplicated", i, it.Code))
		}
		codes[it.Code] = true
		if it.Level < 0 {
			errs = append(errs, fmt.Sprintf("items[%d].level must be >= 0", i))
		}
		if it.Rarity < 0 {
			errs = append(errs, fmt.Sprintf("items[%d].rarity must be >= 0", i))
		}
	}

	// treasure classes
	if len(cfg.TreasureClasses) == 0 {
		errs = append(errs, "at least one treasure class is required")
	}
	names := make(map[string]bool, len(cfg.TreasureClasses))
	for i, t := range cfg.TreasureClasses {
		field := fmt.Sprintf("treasure_classes[%d]", i)
		switch {
		case t.Name == "":
			errs = append(errs, field+".name is required")
		case names[t.Name]:
			errs = append(errs, fmt.Sprintf("%s.name %q is duplicated", field, t.Name))
		case codes[t.Name]:
			errs = append(errs, fmt.Sprintf("%s.name %q is also an item code", field, t.Name))
		}
		names[t.Name] = true
		if t.Picks != nil && *t.Picks == 0 {
			errs = append(errs, field+".picks must not be 0")
		}
		if t.NoDrop != nil && *t.NoDrop < 0 {
			errs = append(errs, field+".no_drop must be >= 0")
		}
		for _, r := range []int{t.Quality.Unique, t.Quality.Set, t.Quality.Rare, t.Quality.Magic} {
			if r < 0 || r > 1024 {
				errs = append(errs, field+".quality ratios must be in [0,1024]")
				break
			}
		}
		for j, o := range t.Outcomes {
			if o.Ref == "" {
				errs = append(errs, fmt.Sprintf("%s.outcomes[%d].ref is required", field, j))
			}
			if o.Weight < 0 {
				errs = append(errs, fmt.Sprintf("%s.outcomes[%d].weight must be >= 0", field, j))
			}
		}
	}

	// monsters
	ids := make(map[string]bool, len(cfg.Monsters))
	for i, m := range cfg.Monsters {
		field := fmt.Sprintf("monsters[%d]", i)
		switch {
		case m.ID == "":
			errs = append(errs, field+".id is required")
		case ids[m.ID]:
			errs = append(errs, fmt.Sprintf("%s.id %q is duplicated", field, m.ID))
		}
		ids[m.ID] = true
		if len(m.TreasureClasses) == 0 {
			errs = append(errs, field+".treasure_classes is required")
		}
		for d, name := range m.TreasureClasses {
			if _, err := tc.ParseDifficulty(d); err != nil {
				errs = append(errs, fmt.Sprintf("%s.treasure_classes: %v", field, err))
			}
			if name == "" {
				errs = append(errs, fmt.Sprintf("%s.treasure_classes.%s is empty", field, d))
			}
		}
		for d, lvl := range m.Levels {
			if _, err := tc.ParseDifficulty(d); err != nil {
				errs = append(errs, fmt.Sprintf("%s.levels: %v", field, err))
			}
			if lvl < 1 {
				errs = append(errs, fmt.Sprintf("%s.levels.%s must be >= 1", field, d))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
