package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `version: "1.0"
treasure_class_tables: [tc.txt]
items:
  - {code: hax, name: Hand Axe, class: weap, level: 3, rarity: 3}
  - {code: cap, name: Cap, class: armo, level: 1, rarity: 1}
  - {code: gld, name: Gold}
treasure_classes:
  - name: Act 1 Equip A
    group: 1
    level: 1
    quality: {unique: 983, set: 983, rare: 983, magic: 983}
    outcomes:
      - {ref: weap3, weight: 21}
      - {ref: armo3, weight: 21}
monsters:
  - id: zombie
    name: Zombie
    levels: {normal: 2, nightmare: 37}
    treasure_classes: {normal: Act 1 H2H A, nightmare: Act 1 H2H A}
`

const tableTSV = "Treasure Class\tgroup\tlevel\tPicks\tUnique\tSet\tRare\tMagic\tNoDrop\tItem1\tProb1\tItem2\tProb2\n" +
	"Act 1 H2H A\t\t\t1\t\t\t\t\t100\tAct 1 Equip A\t60\tgld\t20\n" +
	"Act 1 Equip A\t\t\t\t\t\t\t\t\tgld\t1\t\t\n" +
	"Expansion\n" +
	"\n"

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func newDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "data", "base.yaml"), baseYAML)
	writeFile(t, filepath.Join(dir, "data", "tc.txt"), tableTSV)
	return dir
}

func TestLoadMergedFoldsTablesUnderYAML(t *testing.T) {
	l := NewLoader(newDataDir(t))

	cfg, err := l.LoadMerged("")
	require.NoError(t, err)
	assert.Equal(t, "1.0", cfg.Version)
	require.Len(t, cfg.TreasureClasses, 2)

	names := map[string]TreasureClassDef{}
	for _, def := range cfg.TreasureClasses {
		names[def.Name] = def
	}
	h2h := names["Act 1 H2H A"]
	require.NotNil(t, h2h.NoDrop)
	assert.Equal(t, 100, *h2h.NoDrop)
	assert.Len(t, h2h.Outcomes, 2)

	// the YAML record replaces the table row of the same name
	equip := names["Act 1 Equip A"]
	assert.Equal(t, 983, equip.Quality.Unique)
	assert.Len(t, equip.Outcomes, 2)
}

func TestLoadMergedAppliesMod(t *testing.T) {
	dir := newDataDir(t)
	writeFile(t, filepath.Join(dir, "data", "mods", "ladder.yaml"), `version: "1.0-ladder"
items:
  - {code: hax, name: Hand Axe, class: weap, level: 3, rarity: 9}
monsters:
  - id: fallen
    levels: {normal: 1}
    treasure_classes: {normal: Act 1 H2H A}
`)
	l := NewLoader(dir)

	cfg, err := l.LoadMerged("ladder")
	require.NoError(t, err)
	assert.Equal(t, "1.0-ladder", cfg.Version)
	require.Len(t, cfg.Items, 3)
	assert.Equal(t, 9, cfg.Items[0].Rarity)
	assert.Len(t, cfg.Monsters, 2)

	base, err := l.LoadMerged("")
	require.NoError(t, err)
	assert.Equal(t, 3, base.Items[0].Rarity)
	assert.Len(t, base.Monsters, 1)
}

func TestLoadMergedCachesUntilInvalidated(t *testing.T) {
	dir := newDataDir(t)
	l := NewLoader(dir)

	_, err := l.LoadMerged("")
	require.NoError(t, err)

	writeFile(t, filepath.Join(dir, "data", "base.yaml"), "version: broken\ntreasure_classes: []\n")
	cfg, err := l.LoadMerged("")
	require.NoError(t, err)
	assert.Equal(t, "1.0", cfg.Version)

	l.Invalidate()
	_, err = l.LoadMerged("")
	assert.ErrorContains(t, err, "at least one treasure class")
}

func TestLoadMergedReportsMissingTable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "data", "base.yaml"), "treasure_class_tables: [nope.txt]\n")

	_, err := NewLoader(dir).LoadMerged("")
	assert.ErrorContains(t, err, `read table "nope.txt"`)
}

func TestPathsFiles(t *testing.T) {
	p := Paths{BaseDir: "/srv"}
	files := p.Files(RawConfig{Tables: []string{"tc.txt"}}, "ladder")
	assert.Equal(t, []string{
		filepath.Join("/srv", "data", "base.yaml"),
		filepath.Join("/srv", "data", "mods", "ladder.yaml"),
		filepath.Join("/srv", "data", "tc.txt"),
	}, files)
}
