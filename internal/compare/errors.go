// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compare

import "errors"

var (
	// ErrConfiguration reports invalid comparison settings. It is returned
	// before any pair is compared.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrInsufficientInput reports a corpus with fewer than two files.
	ErrInsufficientInput = errors.New("too few files to compare")
)
