// Package quality computes the chance that a dropped item rolls a given
// quality (unique, set, rare, magic) from its levels, the killer's magic
// find and the quality ratios merged along its drop path.
package quality

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/xtding233/dropcalc/internal/tc"
)

var (
	ErrInvalidProb  = errors.New("invalid probability; must be 0..1")
	ErrInvalidInput = errors.New("invalid quality input")
)

// Quality of a dropped item, in the order the game checks them.
type Quality uint8

const (
	Unique Quality = iota + 1
	Set
	Rare
	Magic
)

func (q Quality) String() string {
	switch q {
	case Unique:
		return "unique"
	case Set:
		return "set"
	case Rare:
		return "rare"
	case Magic:
		return "magic"
	default:
		return "any"
	}
}

// Parse accepts a quality name; the empty string and "any" yield 0, meaning
// no quality restriction.
func Parse(s string) (Quality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any", "normal":
		return 0, nil
	case "unique", "u":
		return Unique, nil
	case "set", "s":
		return Set, nil
	case "rare", "r":
		return Rare, nil
	case "magic", "m":
		return Magic, nil
	}
	return 0, fmt.Errorf("%w: unknown quality %q", ErrInvalidInput, s)
}

// Ratio is one row of the item ratio table.
type Ratio struct {
	Value   int
	Divisor int
	Min     int
}

// Table holds the ratio rows for one item family.
type Table struct {
	Unique Ratio
	Set    Ratio
	Rare   Ratio
	Magic  Ratio
}

var (
	// StandardTable applies to regular and exceptional/elite bases.
	StandardTable = Table{
		Unique: Ratio{400, 1, 6400},
		Set:    Ratio{160, 2, 5600},
		Rare:   Ratio{100, 2, 3200},
		Magic:  Ratio{34, 3, 192},
	}
	// ClassTable applies to class-specific bases.
	ClassTable = Table{
		Unique: Ratio{240, 3, 6400},
		Set:    Ratio{120, 3, 5600},
		Rare:   Ratio{80, 3, 3200},
		Magic:  Ratio{17, 6, 192},
	}
)

// diminishing-returns factors for magic find
const (
	uniqueMFFactor = 250
	setMFFactor    = 500
	rareMFFactor   = 600
)

// Input describes one dropped item.
type Input struct {
	ItemLevel    int // usually the monster level
	QualityLevel int // base item level
	MagicFind    int
	Ratios       tc.QualityRatios
	Table        Table
}

func (in Input) validate() error {
	if in.MagicFind < 0 {
		return fmt.Errorf("%w: magic find %d < 0", ErrInvalidInput, in.MagicFind)
	}
	if in.ItemLevel < 0 || in.QualityLevel < 0 {
		return fmt.Errorf("%w: negative level", ErrInvalidInput)
	}
	return nil
}

// Check returns the probability that the check for q passes, given that the
// item reaches it. The arithmetic is integer, matching the game.
func Check(q Quality, in Input) (*big.Rat, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var (
		r       Ratio
		tcRatio int
		mf      = in.MagicFind
	)
	switch q {
	case Unique:
		r, tcRatio = in.Table.Unique, in.Ratios.Unique
		mf = mf * uniqueMFFactor / (mf + uniqueMFFactor)
	case Set:
		r, tcRatio = in.Table.Set, in.Ratios.Set
		mf = mf * setMFFactor / (mf + setMFFactor)
	case Rare:
		r, tcRatio = in.Table.Rare, in.Ratios.Rare
		mf = mf * rareMFFactor / (mf + rareMFFactor)
	case Magic:
		r, tcRatio = in.Table.Magic, in.Ratios.Magic
	default:
		return big.NewRat(1, 1), nil
	}
	if r.Divisor <= 0 {
		return nil, fmt.Errorf("%w: %s divisor %d", ErrInvalidInput, q, r.Divisor)
	}

	chance := (r.Value - (in.ItemLevel-in.QualityLevel)/r.Divisor) * 128
	chance = chance * 100 / (100 + mf)
	if chance < r.Min {
		chance = r.Min
	}
	chance -= chance * tcRatio / 1024
	if chance <= 128 {
		return big.NewRat(1, 1), nil
	}
	return big.NewRat(128, int64(chance)), nil
}

// Chances are the exclusive probabilities of each quality for one item.
type Chances struct {
	Unique *big.Rat
	Set    *big.Rat
	Rare   *big.Rat
	Magic  *big.Rat
}

// Of returns the chance for q; 0 means any quality and yields 1.
func (c Chances) Of(q Quality) *big.Rat {
	switch q {
	case Unique:
		return c.Unique
	case Set:
		return c.Set
	case Rare:
		return c.Rare
	case Magic:
		return c.Magic
	default:
		return big.NewRat(1, 1)
	}
}

// Roll evaluates the checks in game order; each quality's chance is the
// probability every earlier check failed and its own passed.
func Roll(in Input) (Chances, error) {
	remaining := big.NewRat(1, 1)
	var out Chances
	for _, q := range []Quality{Unique, Set, Rare, Magic} {
		p, err := Check(q, in)
		if err != nil {
			return Chances{}, err
		}
		got := new(big.Rat).Mul(remaining, p)
		remaining.Sub(remaining, got)
		switch q {
		case Unique:
			out.Unique = got
		case Set:
			out.Set = got
		case Rare:
			out.Rare = got
		case Magic:
			out.Magic = got
		}
	}
	return out, nil
}

// ValidateProb rejects probabilities outside [0, 1].
func ValidateProb(p *big.Rat) error {
	if p == nil || p.Sign() < 0 || p.Cmp(big.NewRat(1, 1)) > 0 {
		return ErrInvalidProb
	}
	return nil
}
