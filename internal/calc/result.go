package calc

import (
	"math/big"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/xtding233/dropcalc/internal/tc"
)

// Result is the answer to one Request. Cached results are shared; callers
// must not modify them.
type Result struct {
	Root       string   `json:"root"`
	Base       string   `json:"base"`
	Level      int      `json:"level,omitempty"`
	Difficulty string   `json:"difficulty"`
	Mode       string   `json:"mode"`
	Quality    string   `json:"quality,omitempty"`
	Rows       []Row    `json:"rows"`
	Warnings   []string `json:"warnings,omitempty"`
	Version    string   `json:"version,omitempty"`
}

// Row is the final probability of one outcome.
type Row struct {
	Outcome     string  `json:"outcome"`
	Name        string  `json:"name,omitempty"`
	Kind        string  `json:"kind"`
	Probability string  `json:"probability"` // exact, "num/den"
	Decimal     float64 `json:"decimal"`
	OneIn       string  `json:"one_in"`

	prob *big.Rat
}

// Rat returns a copy of the exact probability.
func (r Row) Rat() *big.Rat {
	if r.prob == nil {
		p, ok := new(big.Rat).SetString(r.Probability)
		if !ok {
			return new(big.Rat)
		}
		return p
	}
	return new(big.Rat).Set(r.prob)
}

var printer = message.NewPrinter(language.English)

func newRow(o tc.Outcome, p *big.Rat) Row {
	f, _ := p.Float64()
	row := Row{
		Outcome:     o.Name(),
		Kind:        o.Kind().String(),
		Probability: p.RatString(),
		Decimal:     f,
		OneIn:       oneIn(p),
		prob:        p,
	}
	if it, ok := o.(*tc.Item); ok && it.Display() != it.Name() {
		row.Name = it.Display()
	}
	return row
}

// oneIn renders p as odds, e.g. "1:1,234.5".
func oneIn(p *big.Rat) string {
	if p.Sign() <= 0 {
		return "never"
	}
	f, _ := new(big.Rat).Inv(p).Float64()
	return printer.Sprintf("1:%.1f", f)
}

// sortRows orders by probability, most likely first, then by outcome name.
func sortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if c := rows[i].prob.Cmp(rows[j].prob); c != 0 {
			return c > 0
		}
		return rows[i].Outcome < rows[j].Outcome
	})
}
