// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compare

import (
	"github.com/msuchane/near-facsimile/internal/similarity"
	"github.com/msuchane/near-facsimile/pkg/types"
)

// Outcome classifies the evaluation of one pair.
type Outcome int

const (
	// Prefiltered means the trigram score was below the pre-filter cutoff
	// and the precise metric never ran.
	Prefiltered Outcome = iota
	// Different means the precise score did not exceed the threshold.
	Different
	// Similar means the precise score exceeded the threshold.
	Similar
	// Identical means the precise score is 1.0.
	Identical
)

func (o Outcome) String() string {
	switch o {
	case Prefiltered:
		return "prefiltered"
	case Different:
		return "different"
	case Similar:
		return "similar"
	case Identical:
		return "identical"
	default:
		return "unknown"
	}
}

// Qualifies reports whether the pair is reported as a comparison.
func (o Outcome) Qualifies() bool {
	return o == Similar || o == Identical
}

// Verdict is the result of evaluating a pair.
type Verdict struct {
	Outcome Outcome
	// Approx is the trigram pre-filter score.
	Approx float64
	// Score is the precise score. It is zero for prefiltered pairs.
	Score float64
}

// Evaluator scores pairs in two stages: a cheap trigram pre-filter, then
// the precise metric selected by the configured level.
type Evaluator struct {
	approximate similarity.Metric
	precise     similarity.Refiner
	threshold   float64
	cutoff      float64
}

// NewEvaluator resolves the metrics for cfg. cfg must already be valid.
func NewEvaluator(cfg types.CompareConfig) *Evaluator {
	return &Evaluator{
		approximate: similarity.Trigram,
		precise:     similarity.LevelFromCount(cfg.Fast).Refiner(),
		threshold:   cfg.Threshold,
		cutoff:      cfg.Threshold * cfg.PrefilterRatio,
	}
}

// Evaluate scores the contents of a pair. The trigram score only
// approximates the precise metrics; the cutoff is a margin below the
// threshold rather than a bound, so some true matches may be lost when
// the ratio is raised towards 1.
func (e *Evaluator) Evaluate(a, b string) Verdict {
	approx := e.approximate(a, b)
	if approx < e.cutoff {
		return Verdict{Outcome: Prefiltered, Approx: approx}
	}

	score := e.precise(a, b, approx)
	v := Verdict{Approx: approx, Score: score}
	switch {
	case score <= e.threshold:
		v.Outcome = Different
	case score >= 1:
		v.Outcome = Identical
	default:
		v.Outcome = Similar
	}
	return v
}
