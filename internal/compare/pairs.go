// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compare

import (
	"fmt"
	"iter"

	"github.com/msuchane/near-facsimile/pkg/types"
)

// Pair is an unordered combination of two distinct text units.
type Pair struct {
	A *types.TextUnit
	B *types.TextUnit
}

// PairSet enumerates every unordered pair of a corpus exactly once.
type PairSet struct {
	units []types.TextUnit
}

// NewPairSet returns the pairs of units. It fails with ErrInsufficientInput
// when there are fewer than two units.
func NewPairSet(units []types.TextUnit) (*PairSet, error) {
	if len(units) < 2 {
		return nil, fmt.Errorf("%w: %d file(s) to compare, need at least 2", ErrInsufficientInput, len(units))
	}
	return &PairSet{units: units}, nil
}

// Len returns the number of pairs, n*(n-1)/2.
func (s *PairSet) Len() int {
	n := len(s.units)
	return n * (n - 1) / 2
}

// All yields each pair once, the earlier unit of the corpus first.
func (s *PairSet) All() iter.Seq[Pair] {
	return func(yield func(Pair) bool) {
		for i := range s.units {
			for j := i + 1; j < len(s.units); j++ {
				if !yield(Pair{A: &s.units[i], B: &s.units[j]}) {
					return
				}
			}
		}
	}
}
