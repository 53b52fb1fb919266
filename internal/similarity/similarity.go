// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package similarity implements the string metrics used to compare files.
// Every metric returns a score between 0.0 and 1.0, and exactly 1.0 for
// identical strings.
package similarity

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// trigramLength is the shingle size of the approximate metric.
const trigramLength = 3

// Metric scores the similarity of two strings.
type Metric func(a, b string) float64

// Refiner computes the precise score of a pair that passed the pre-filter.
// approx is the pre-filter score already computed for the same pair.
type Refiner func(a, b string, approx float64) float64

// Level selects the precise metric, trading accuracy for speed.
type Level int

const (
	// Precise uses the normalized Levenshtein distance.
	Precise Level = iota
	// Balanced uses the Jaro similarity, about twice as fast.
	Balanced
	// Fast reuses the trigram pre-filter score.
	Fast
)

// LevelFromCount maps the number of --fast flags to a Level. Any count
// above Fast is Fast.
func LevelFromCount(n int) Level {
	switch {
	case n <= 0:
		return Precise
	case n == 1:
		return Balanced
	default:
		return Fast
	}
}

func (l Level) String() string {
	switch l {
	case Precise:
		return "levenshtein"
	case Balanced:
		return "jaro"
	case Fast:
		return "trigram"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Refiner returns the precise metric for the level.
func (l Level) Refiner() Refiner {
	switch l {
	case Precise:
		return func(a, b string, _ float64) float64 { return NormalizedLevenshtein(a, b) }
	case Balanced:
		return func(a, b string, _ float64) float64 { return Jaro(a, b) }
	default:
		return func(_, _ string, approx float64) float64 { return approx }
	}
}

// Trigram returns the Jaccard similarity of the sets of three-rune
// shingles of a and b. It costs a small fraction of the edit distance and
// serves as the pre-filter.
func Trigram(a, b string) float64 {
	if a == b {
		return 1
	}
	return distinct(float64(edlib.JaccardSimilarity(a, b, trigramLength)))
}

// NormalizedLevenshtein returns 1 - distance/maxLen, where maxLen is the
// rune length of the longer string.
func NormalizedLevenshtein(a, b string) float64 {
	if a == b {
		return 1
	}
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	dist := edlib.LevenshteinDistance(a, b)
	return distinct(1 - float64(dist)/float64(maxLen))
}

// Jaro returns the Jaro similarity of a and b.
func Jaro(a, b string) float64 {
	if a == b {
		return 1
	}
	return distinct(float64(edlib.JaroSimilarity(a, b)))
}

// distinct clamps the score of two different strings to [0, 1). Scores of
// 1.0 are reserved for identical content, and float32 results from edlib
// can round up to 1.0 for long, nearly identical texts.
func distinct(v float64) float64 {
	v = clamp(v)
	if v >= 1 {
		return math.Nextafter(1, 0)
	}
	return v
}

// clamp keeps library results inside [0, 1]. Degenerate inputs such as
// strings shorter than a shingle can yield NaN, which maps to 0.
func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
