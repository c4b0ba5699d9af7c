package drop

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/xtding233/dropcalc/internal/tc"
)

var (
	ErrInvalidModifier = errors.New("invalid runtime modifier")
	ErrNoRoot          = errors.New("no root outcome")
)

// Mode selects which outcomes are terminal for an evaluation.
type Mode uint8

const (
	// ModeDefined stops at virtual treasure classes.
	ModeDefined Mode = iota
	// ModeVirtual expands virtual treasure classes down to items.
	ModeVirtual
)

func (m Mode) String() string {
	if m == ModeVirtual {
		return "virtual"
	}
	return "defined"
}

// ParseMode accepts "defined" (or empty) and "virtual".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "defined", "tc":
		return ModeDefined, nil
	case "virtual", "item", "items":
		return ModeVirtual, nil
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

// Records reports whether an outcome of kind k is a terminal under m.
func (m Mode) Records(k tc.Kind) bool {
	switch k {
	case tc.KindVirtual:
		return m == ModeDefined
	case tc.KindItem:
		return m == ModeVirtual
	case tc.KindDefined:
		return false
	default:
		return false
	}
}

// Options are the runtime modifiers of one evaluation.
type Options struct {
	Players   int
	PartySize int
	Mode      Mode
	// Filter restricts recording to a single outcome; nil records all.
	Filter tc.Outcome
}

func (o Options) validate() error {
	if o.Players < 1 {
		return fmt.Errorf("%w: players %d < 1", ErrInvalidModifier, o.Players)
	}
	if o.PartySize < 1 {
		return fmt.Errorf("%w: party size %d < 1", ErrInvalidModifier, o.PartySize)
	}
	if o.PartySize > o.Players {
		return fmt.Errorf("%w: party size %d exceeds players %d", ErrInvalidModifier, o.PartySize, o.Players)
	}
	return nil
}

// step is the path-dependent state handed to a child. It is copied on
// every call and never mutated. frame is the slot of the treasure class
// doing the picking.
type step struct {
	num, den    int64
	parentPicks int
	prob        *big.Rat
	quality     tc.QualityRatios
	picks       int
	group       int
	frame       *slot
}

type evaluator struct {
	opts Options
	acc  *accumulator
}

// Evaluate walks the graph below root and returns, for every terminal
// outcome reached, the paths producing it.
//
// A negative pick count on a node means every child is dropped on its own:
// the child's weight becomes a drop multiplier, its selection probability
// is 1 and each child opens a new draw-group whose paths combine with the
// rest by probabilistic OR rather than by summation.
func Evaluate(root tc.Outcome, opts Options) (*TreasureClassPaths, error) {
	if root == nil {
		return nil, ErrNoRoot
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	e := &evaluator{opts: opts, acc: newAccumulator()}
	start := step{num: 1, den: 1, parentPicks: 1, prob: ratOne, picks: 1}
	if err := e.visit(root, start); err != nil {
		return nil, err
	}
	return e.acc.result(), nil
}

func (e *evaluator) visit(t tc.Outcome, s step) error {
	c := tc.PicksOf(t)
	parentNegative := s.parentPicks < 0

	adjusted := c
	if c < 0 {
		adjusted = s.picks
	}

	picks := s.picks * adjusted
	group := s.group
	at := &slot{parent: s.frame, times: 1}
	var selection *big.Rat
	if parentNegative {
		picks = int(s.num) * s.picks * adjusted
		selection = ratOne
		group = e.acc.fork()
		at.times = int(s.num)
	} else {
		at.chance = big.NewRat(s.num, s.den)
		selection = new(big.Rat).Mul(at.chance, s.prob)
	}

	node, isTC := t.(*tc.TreasureClass)
	quality := s.quality
	if isTC {
		quality = tc.Merge(quality, node.Props().Quality)
	}

	if e.opts.Mode.Records(t.Kind()) {
		if e.opts.Filter == nil || e.opts.Filter == t {
			e.acc.record(t, group, PathOutcome{
				Probability: selection,
				Quality:     quality,
				Picks:       adjusted,
				Drops:       picks,
			}, at)
		}
		return nil
	}
	if !isTC {
		return nil
	}

	den, err := tc.EffectiveDenominator(node, e.opts.Players, e.opts.PartySize)
	if err != nil {
		return err
	}
	if den == 0 {
		return nil
	}
	at.picks = c
	for _, edge := range node.Outcomes() {
		next := step{
			num:         int64(edge.Weight),
			den:         int64(den),
			parentPicks: c,
			prob:        selection,
			quality:     quality,
			picks:       picks,
			group:       group,
			frame:       at,
		}
		if err := e.visit(edge.Target, next); err != nil {
			return err
		}
	}
	return nil
}
