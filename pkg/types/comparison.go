// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"math"
	"strconv"
)

// Percentage is a similarity score scaled to the 0-100 range.
type Percentage float64

// PercentageFromScore converts a similarity score between 0.0 and 1.0 to a
// Percentage.
func PercentageFromScore(score float64) Percentage {
	return Percentage(score * 100)
}

// Rounded returns the percentage with one decimal place. Values strictly
// between 99.9 and 100.0 round down to 99.9 so that 100.0 only ever
// appears for identical files.
func (p Percentage) Rounded() float64 {
	scaled := float64(p) * 10

	if 999 < scaled && scaled < 1000 {
		return 99.9
	}
	return math.Round(scaled) / 10
}

// String formats the rounded percentage, always with one decimal.
func (p Percentage) String() string {
	return strconv.FormatFloat(p.Rounded(), 'f', 1, 64)
}

// Comparison records a pair of files whose similarity exceeded the
// threshold. The order of Path1 and Path2 carries no meaning.
type Comparison struct {
	Path1      string     `json:"path1" yaml:"path1"`
	Path2      string     `json:"path2" yaml:"path2"`
	Similarity Percentage `json:"similarity" yaml:"similarity"`
}
