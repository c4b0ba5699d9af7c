package calc

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xtding233/dropcalc/internal/drop"
	"github.com/xtding233/dropcalc/internal/game"
	"github.com/xtding233/dropcalc/internal/metrics"
	"github.com/xtding233/dropcalc/internal/quality"
	"github.com/xtding233/dropcalc/internal/tc"
)

// Options tune a Service.
type Options struct {
	CacheSize   int
	CacheTTL    time.Duration // 0 keeps entries until evicted or reloaded
	MaxParallel int
}

type snapshot struct {
	cat *game.Catalog
	gen uint64
}

// Service evaluates requests against the current catalog. The catalog can
// be replaced at any time; in-flight evaluations finish on the one they
// started with.
type Service struct {
	log      *zap.Logger
	current  atomic.Pointer[snapshot]
	cache    *expirable.LRU[string, *Result]
	parallel int
}

func NewService(cat *game.Catalog, opts Options, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 512
	}
	if opts.MaxParallel <= 0 {
		opts.MaxParallel = 1
	}
	s := &Service{
		log:      log,
		cache:    expirable.NewLRU[string, *Result](opts.CacheSize, nil, opts.CacheTTL),
		parallel: opts.MaxParallel,
	}
	s.swap(cat)
	return s
}

// Catalog returns the catalog currently served.
func (s *Service) Catalog() *game.Catalog {
	return s.current.Load().cat
}

// Reload builds raw and, if that succeeds, swaps it in and drops every
// cached result. On error the previous catalog stays in service.
func (s *Service) Reload(raw game.RawConfig) error {
	cat, err := game.Build(raw)
	if err != nil {
		metrics.Reloads.WithLabelValues("error").Inc()
		s.log.Warn("reload rejected", zap.Error(err))
		return fmt.Errorf("reload: %w", err)
	}
	s.swap(cat)
	metrics.Reloads.WithLabelValues("ok").Inc()
	return nil
}

func (s *Service) swap(cat *game.Catalog) {
	var gen uint64
	if old := s.current.Load(); old != nil {
		gen = old.gen + 1
	}
	s.current.Store(&snapshot{cat: cat, gen: gen})
	s.cache.Purge()

	metrics.CatalogSize.WithLabelValues("treasure_classes").Set(float64(len(cat.Graph.TreasureClasses())))
	metrics.CatalogSize.WithLabelValues("items").Set(float64(len(cat.Graph.Items())))
	metrics.CatalogSize.WithLabelValues("monsters").Set(float64(len(cat.Monsters())))
	s.log.Info("catalog loaded",
		zap.String("version", cat.Version),
		zap.Uint64("generation", gen),
		zap.Int("treasure_classes", len(cat.Graph.TreasureClasses())),
		zap.Int("items", len(cat.Graph.Items())),
		zap.Int("monsters", len(cat.Monsters())),
	)
}

// Evaluate validates req and returns the final probability of every
// outcome reachable from its root, cached per catalog generation.
func (s *Service) Evaluate(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req = req.normalized()

	snap := s.current.Load()
	key := req.cacheKey(snap.gen)
	if res, ok := s.cache.Get(key); ok {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return res, nil
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	start := time.Now()
	res, err := evaluate(snap.cat, req)
	metrics.EvaluationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Evaluations.WithLabelValues(req.rootKind(), "error").Inc()
		s.log.Debug("evaluation failed", zap.String("root", req.TreasureClass+req.Monster), zap.Error(err))
		return nil, err
	}
	metrics.Evaluations.WithLabelValues(req.rootKind(), "ok").Inc()
	s.log.Debug("evaluated",
		zap.String("root", res.Root),
		zap.Int("rows", len(res.Rows)),
		zap.Duration("took", time.Since(start)),
	)

	s.cache.Add(key, res)
	return res, nil
}

// EvaluateBatch evaluates reqs concurrently, at most MaxParallel at a time.
// Results are in request order. The first failure cancels the rest.
func (s *Service) EvaluateBatch(ctx context.Context, reqs []Request) ([]*Result, error) {
	out := make([]*Result, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallel)
	for i, req := range reqs {
		g.Go(func() error {
			res, err := s.Evaluate(ctx, req)
			if err != nil {
				return fmt.Errorf("request %d: %w", i, err)
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func evaluate(cat *game.Catalog, req Request) (*Result, error) {
	d, err := tc.ParseDifficulty(req.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	mode, err := drop.ParseMode(req.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	q, err := quality.Parse(req.Quality)
	if err != nil {
		return nil, err
	}
	if q != 0 && mode != drop.ModeVirtual {
		return nil, fmt.Errorf("%w: quality needs mode virtual", ErrInvalidRequest)
	}

	var root game.Resolved
	if req.Monster != "" {
		root, err = cat.ResolveMonster(req.Monster, d, req.Level, req.AlwaysUpgrade)
	} else {
		root, err = cat.ResolveTreasureClass(req.TreasureClass, d, req.Level, req.AlwaysUpgrade)
	}
	if err != nil {
		return nil, err
	}
	if q != 0 && root.Level < 1 {
		return nil, fmt.Errorf("%w: quality needs a level", ErrInvalidRequest)
	}

	opts := drop.Options{Players: req.Players, PartySize: req.PartySize, Mode: mode}
	if req.Filter != "" {
		o, ok := cat.Graph.Outcome(req.Filter)
		if !ok {
			return nil, fmt.Errorf("%w: unknown filter outcome %q", ErrInvalidRequest, req.Filter)
		}
		opts.Filter = o
	}

	paths, err := drop.Evaluate(root.Root, opts)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Root:       root.Root.Name(),
		Base:       root.Base.Name(),
		Level:      root.Level,
		Difficulty: d.String(),
		Mode:       mode.String(),
		Rows:       []Row{},
		Warnings:   paths.Warnings(),
		Version:    cat.Version,
	}
	if q != 0 {
		res.Quality = q.String()
	}
	for _, o := range paths.Outcomes() {
		p, err := finalProbability(paths, o, q, root.Level, req.MagicFind)
		if err != nil {
			return nil, err
		}
		if quality.ValidateProb(p) != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: final probability %s is outside [0,1]", o.Name(), p.RatString()))
		}
		res.Rows = append(res.Rows, newRow(o, p))
	}
	sortRows(res.Rows)
	return res, nil
}

// finalProbability applies the quality roll of each path, computed from the
// quality ratios merged along it, as the external factor.
func finalProbability(paths *drop.TreasureClassPaths, o tc.Outcome, q quality.Quality, level, mf int) (*big.Rat, error) {
	item, ok := o.(*tc.Item)
	if q == 0 || !ok {
		return paths.FinalProbability(o, nil), nil
	}
	var rollErr error
	p := paths.FinalProbabilityFunc(o, func(path drop.PathOutcome) *big.Rat {
		ch, err := quality.Roll(quality.Input{
			ItemLevel:    level,
			QualityLevel: item.Level(),
			MagicFind:    mf,
			Ratios:       path.Quality,
			Table:        quality.StandardTable,
		})
		if err != nil {
			rollErr = err
			return new(big.Rat)
		}
		return ch.Of(q)
	})
	if rollErr != nil {
		return nil, rollErr
	}
	return p, nil
}

// IsInvalid reports whether err was caused by the request itself.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, drop.ErrInvalidModifier) ||
		errors.Is(err, quality.ErrInvalidInput) ||
		errors.Is(err, tc.ErrNoDropPrecision)
}

// IsNotFound reports whether err names a treasure class or monster that
// does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, tc.ErrUnknownTreasureClass) || errors.Is(err, game.ErrUnknownMonster)
}

// ErrorKind classifies err for logging and transports.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsInvalid(err):
		return "invalid"
	case IsNotFound(err):
		return "not_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
