// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compare finds near-duplicate files by scoring every pair of a
// corpus. Each pair goes through a trigram pre-filter and, if it passes,
// the precise metric; pairs above the threshold become comparisons.
// Evaluation runs on a fixed-size worker pool.
package compare

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/msuchane/near-facsimile/internal/logging"
	"github.com/msuchane/near-facsimile/internal/similarity"
	"github.com/msuchane/near-facsimile/pkg/types"
)

// jobsPerWorker sizes the pair channel buffer.
const jobsPerWorker = 16

var validate = validator.New(validator.WithRequiredStructEnabled())

// Progress receives the progress of a comparison run. Increment is called
// concurrently from all workers.
type Progress interface {
	Start(total int)
	Increment()
	Finish()
}

type noProgress struct{}

func (noProgress) Start(int)  {}
func (noProgress) Increment() {}
func (noProgress) Finish()    {}

// Options configures a Collector.
type Options struct {
	Config types.CompareConfig

	// Logger receives the per-pair report lines. Its level is lowered or
	// raised to match Config.Verbosity.
	Logger zerolog.Logger

	// Progress is optional.
	Progress Progress
}

// DefaultOptions returns options with the default pre-filter ratio and one
// worker per CPU. The logger discards everything.
func DefaultOptions(threshold float64) Options {
	return Options{
		Config: types.CompareConfig{
			Threshold:      threshold,
			PrefilterRatio: types.DefaultPrefilterRatio,
		},
		Logger: zerolog.Nop(),
	}
}

// Result holds the comparisons of a run and its counters.
type Result struct {
	// Comparisons holds the qualifying pairs in no particular order.
	Comparisons []types.Comparison

	// Pairs is the number of pairs in the corpus.
	Pairs int

	// Prefiltered is the number of pairs rejected by the trigram pre-filter.
	Prefiltered int

	// Evaluated is the number of pairs scored with the precise metric.
	Evaluated int
}

// Collector drives the evaluation of all pairs of a corpus.
type Collector struct {
	eval     *Evaluator
	log      zerolog.Logger
	progress Progress
	workers  int
	level    similarity.Level
}

// NewCollector validates opts and returns a Collector. Invalid settings
// fail with ErrConfiguration.
func NewCollector(opts Options) (*Collector, error) {
	if err := validateConfig(opts.Config); err != nil {
		return nil, err
	}

	workers := opts.Config.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	progress := opts.Progress
	if progress == nil {
		progress = noProgress{}
	}

	return &Collector{
		eval:     NewEvaluator(opts.Config),
		log:      opts.Logger.Level(logging.Level(opts.Config.Verbosity)),
		progress: progress,
		workers:  workers,
		level:    similarity.LevelFromCount(opts.Config.Fast),
	}, nil
}

// Run validates opts and compares all pairs of units.
func Run(units []types.TextUnit, opts Options) (Result, error) {
	c, err := NewCollector(opts)
	if err != nil {
		return Result{}, err
	}
	return c.Collect(units)
}

// Collect compares every pair of units and returns the pairs whose
// similarity exceeds the threshold. It fails with ErrInsufficientInput for
// fewer than two units. Once started, all pairs are evaluated.
func (c *Collector) Collect(units []types.TextUnit) (Result, error) {
	pairs, err := NewPairSet(units)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	total := pairs.Len()
	c.log.Info().
		Int("files", len(units)).
		Int("comparisons", total).
		Int("workers", c.workers).
		Stringer("metric", c.level).
		Msg("Comparing files…")

	c.progress.Start(total)
	defer c.progress.Finish()

	var (
		mu          sync.Mutex
		comparisons []types.Comparison
		prefiltered atomic.Int64
		evaluated   atomic.Int64
	)

	jobs := make(chan Pair, c.workers*jobsPerWorker)

	var g errgroup.Group
	g.Go(func() error {
		defer close(jobs)
		for p := range pairs.All() {
			jobs <- p
		}
		return nil
	})

	for range c.workers {
		g.Go(func() error {
			for p := range jobs {
				v := c.eval.Evaluate(p.A.Content, p.B.Content)
				if v.Outcome == Prefiltered {
					prefiltered.Add(1)
				} else {
					evaluated.Add(1)
				}

				if cmp, ok := c.report(p, v); ok {
					mu.Lock()
					comparisons = append(comparisons, cmp)
					mu.Unlock()
				}
				c.progress.Increment()
			}
			return nil
		})
	}

	// Workers never fail.
	_ = g.Wait()

	res := Result{
		Comparisons: comparisons,
		Pairs:       total,
		Prefiltered: int(prefiltered.Load()),
		Evaluated:   int(evaluated.Load()),
	}
	c.log.Info().
		Int("similar", len(res.Comparisons)).
		Int("prefiltered", res.Prefiltered).
		Int("evaluated", res.Evaluated).
		Dur("elapsed", time.Since(start)).
		Msg("Comparison finished")

	return res, nil
}

// report logs the verdict for a pair and returns its comparison record if
// the pair qualifies.
func (c *Collector) report(p Pair, v Verdict) (types.Comparison, bool) {
	switch v.Outcome {
	case Prefiltered:
		c.log.Debug().
			Float64("trigram", v.Approx).
			Str("file1", p.A.Path).
			Str("file2", p.B.Path).
			Msg("Trigram similarity below the threshold")
		return types.Comparison{}, false
	case Different:
		c.log.Debug().
			Float64("similarity", v.Score).
			Str("file1", p.A.Path).
			Str("file2", p.B.Path).
			Msg("Similarity below the threshold")
		return types.Comparison{}, false
	}

	pct := types.PercentageFromScore(v.Score)
	c.log.Info().
		Str("file1", p.A.Path).
		Str("file2", p.B.Path).
		Msgf("These two files are %s (%s%%)", v.Outcome, pct)
	c.log.Debug().
		Float64("similarity", v.Score).
		Msg("Similarity above the threshold")

	return types.Comparison{
		Path1:      p.A.Path,
		Path2:      p.B.Path,
		Similarity: pct,
	}, true
}

// validateConfig checks cfg with its struct tags and reports every
// violation in one ErrConfiguration.
func validateConfig(cfg types.CompareConfig) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s must be %s %s, got %v",
			strings.ToLower(fe.Field()), comparisonWord(fe.Tag()), fe.Param(), fe.Value()))
	}
	return fmt.Errorf("%w: %s", ErrConfiguration, strings.Join(msgs, "; "))
}

func comparisonWord(tag string) string {
	switch tag {
	case "gte":
		return ">="
	case "lte":
		return "<="
	default:
		return tag
	}
}
