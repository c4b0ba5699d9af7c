package game

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Paths helper for base/mod/table files.
type Paths struct {
	BaseDir string // base directory, e.g., /opt/dropcalc/configs
}

func (p Paths) BasePath() string {
	return filepath.Join(p.BaseDir, "data", "base.yaml")
}
func (p Paths) ModPath(mod string) string {
	return filepath.Join(p.BaseDir, "data", "mods", mod+".yaml")
}
func (p Paths) TablePath(rel string) string {
	return filepath.Join(p.BaseDir, "data", rel)
}

// Files lists every file a load of mod reads, for the watcher.
func (p Paths) Files(cfg RawConfig, mod string) []string {
	files := []string{p.BasePath()}
	if mod != "" {
		files = append(files, p.ModPath(mod))
	}
	for _, t := range cfg.Tables {
		files = append(files, p.TablePath(t))
	}
	return files
}

// Loader reads YAML data files and merges base → mod.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: mod name, "" for base only
}

// NewLoader creates a data loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

func (l *Loader) Paths() Paths { return l.paths }

// LoadMerged loads base, overlays mod (optional) and folds in the
// tab-separated treasure class tables both reference. YAML records win over
// table rows of the same name. The result is validated but not built.
func (l *Loader) LoadMerged(mod string) (RawConfig, error) {
	l.mu.RLock()
	if cfg, ok := l.cache[mod]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	merged, err := l.readOverlay(mod)
	if err != nil {
		return RawConfig{}, err
	}

	var fromTables []TreasureClassDef
	for _, rel := range merged.Tables {
		defs, err := readTable(l.paths.TablePath(rel))
		if err != nil {
			return RawConfig{}, fmt.Errorf("read table %q: %w", rel, err)
		}
		fromTables = mergeTreasureClasses(fromTables, defs)
	}
	merged.TreasureClasses = mergeTreasureClasses(fromTables, merged.TreasureClasses)

	if err := ValidateRaw(merged); err != nil {
		return RawConfig{}, err
	}

	l.mu.Lock()
	l.cache[mod] = merged
	l.mu.Unlock()

	return merged, nil
}

// WatchFiles lists the files a load of mod currently depends on. Only the
// YAML files are read, so tables that are referenced but missing are
// listed too.
func (l *Loader) WatchFiles(mod string) ([]string, error) {
	cfg, err := l.readOverlay(mod)
	if err != nil {
		return nil, err
	}
	return l.paths.Files(cfg, mod), nil
}

func (l *Loader) readOverlay(mod string) (RawConfig, error) {
	baseCfg, err := readYAML(l.paths.BasePath())
	if err != nil {
		return RawConfig{}, fmt.Errorf("read base: %w", err)
	}
	if mod == "" {
		return baseCfg, nil
	}
	modCfg, err := readYAML(l.paths.ModPath(mod))
	if err != nil {
		return RawConfig{}, fmt.Errorf("read mod %q: %w", mod, err)
	}
	return mergeRaw(baseCfg, modCfg), nil
}

// Invalidate clears loader's cache. Call after the watcher detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// readYAML loads a YAML file into RawConfig. Missing files return zero cfg, no error.
func readYAML(path string) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, err
	}
	return cfg, nil
}

func readTable(path string) ([]TreasureClassDef, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadTreasureClassTSV(f)
}

// mergeRaw overlays b onto a. Scalars in b win when set; records in b
// replace records of a with the same key and are appended otherwise.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}
	if b.VirtualLevelStep != 0 {
		out.VirtualLevelStep = b.VirtualLevelStep
	}
	out.Tables = append(append([]string(nil), a.Tables...), b.Tables...)

	out.Items = mergeByKey(a.Items, b.Items, func(i ItemDef) string { return i.Code })
	out.TreasureClasses = mergeTreasureClasses(a.TreasureClasses, b.TreasureClasses)
	out.Monsters = mergeByKey(a.Monsters, b.Monsters, func(m MonsterDef) string { return m.ID })

	return out
}

func mergeTreasureClasses(a, b []TreasureClassDef) []TreasureClassDef {
	return mergeByKey(a, b, func(t TreasureClassDef) string { return t.Name })
}

func mergeByKey[T any](a, b []T, key func(T) string) []T {
	out := append([]T(nil), a...)
	pos := make(map[string]int, len(out))
	for i, v := range out {
		pos[key(v)] = i
	}
	for _, v := range b {
		if i, ok := pos[key(v)]; ok {
			out[i] = v
			continue
		}
		pos[key(v)] = len(out)
		out = append(out, v)
	}
	return out
}
