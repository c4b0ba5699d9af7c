package game

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xtding233/dropcalc/internal/tc"
)

const tableSlots = 10

// ReadTreasureClassTSV parses a tab-separated treasure class table with the
// columns "Treasure Class", "group", "level", "Picks", "Unique", "Set",
// "Rare", "Magic", "NoDrop", "Item1".."Item10" and "Prob1".."Prob10".
// Blank rows and the "Expansion" separator row are skipped.
func ReadTreasureClassTSV(r io.Reader) ([]TreasureClassDef, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := col["treasure class"]; !ok {
		return nil, errors.New(`header: missing "Treasure Class" column`)
	}

	var defs []TreasureClassDef
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row := tableRow{rec: rec, col: col}
		name := row.str("treasure class")
		if name == "" || strings.EqualFold(name, "expansion") {
			continue
		}

		def := TreasureClassDef{Name: name}
		if def.Group, err = row.optInt("group"); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if def.Level, err = row.optInt("level"); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if def.Picks, err = row.optInt("picks"); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if def.NoDrop, err = row.optInt("nodrop"); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		var q tc.QualityRatios
		for key, dst := range map[string]*int{"unique": &q.Unique, "set": &q.Set, "rare": &q.Rare, "magic": &q.Magic} {
			v, err := row.optInt(key)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			if v != nil {
				*dst = *v
			}
		}
		def.Quality = q

		for i := 1; i <= tableSlots; i++ {
			ref := row.str("item" + strconv.Itoa(i))
			if ref == "" {
				continue
			}
			w, err := row.optInt("prob" + strconv.Itoa(i))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			if w == nil {
				return nil, fmt.Errorf("line %d: %s: Item%d without Prob%d", line, name, i, i)
			}
			def.Outcomes = append(def.Outcomes, OutcomeDef{Ref: ref, Weight: *w})
		}
		defs = append(defs, def)
	}
	return defs, nil
}

type tableRow struct {
	rec []string
	col map[string]int
}

func (r tableRow) str(name string) string {
	i, ok := r.col[name]
	if !ok || i >= len(r.rec) {
		return ""
	}
	return strings.TrimSpace(r.rec[i])
}

func (r tableRow) optInt(name string) (*int, error) {
	s := r.str(name)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", name, err)
	}
	return &v, nil
}
