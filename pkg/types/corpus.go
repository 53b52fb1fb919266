// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the near-facsimile
// pipeline: the text units produced by the corpus loader, the comparison
// records produced by the collector, and the configuration of each stage.
package types

// TextUnit is a loaded text file: its path and its full content after any
// skipped lines were removed. A TextUnit is never modified after loading.
type TextUnit struct {
	// Path is the location of the file as found by the loader.
	Path string `json:"path" yaml:"path"`

	// Content is the UTF-8 text that takes part in the comparison.
	Content string `json:"content" yaml:"content"`
}
