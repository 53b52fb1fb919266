// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report turns comparison records into sorted rows with paths
// relative to the compared directory, and writes them as CSV, JSON, YAML,
// a terminal table, or into a SQLite report store.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"go.yaml.in/yaml/v3"

	"github.com/msuchane/near-facsimile/pkg/types"
)

// Pct is a percentage already rounded for display. It always serializes
// with one decimal place.
type Pct float64

// MarshalCSV implements gocsv.TypeMarshaller.
func (p Pct) MarshalCSV() (string, error) {
	return p.String(), nil
}

// MarshalJSON writes the value with one decimal, e.g. 90.0 rather than 90.
func (p Pct) MarshalJSON() ([]byte, error) {
	return []byte(p.String()), nil
}

// MarshalYAML keeps the one-decimal form as a YAML float.
func (p Pct) MarshalYAML() (any, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: p.String()}, nil
}

func (p Pct) String() string {
	return strconv.FormatFloat(float64(p), 'f', 1, 64)
}

// Row is one reported pair of files.
type Row struct {
	PctSimilar Pct    `json:"pct_similar" yaml:"pct_similar" csv:"% similar"`
	File1      string `json:"file1" yaml:"file1" csv:"File 1"`
	File2      string `json:"file2" yaml:"file2" csv:"File 2"`
}

// Rows sorts comparisons from most to least similar and converts them to
// rows with paths relative to baseDir. Rows with equal percentages keep
// their input order.
func Rows(comparisons []types.Comparison, baseDir string) ([]Row, error) {
	sorted := slices.Clone(comparisons)
	slices.SortStableFunc(sorted, func(a, b types.Comparison) int {
		ra, rb := a.Similarity.Rounded(), b.Similarity.Rounded()
		switch {
		case ra > rb:
			return -1
		case ra < rb:
			return 1
		default:
			return 0
		}
	})

	rows := make([]Row, len(sorted))
	for i, c := range sorted {
		file1, err := relativePath(baseDir, c.Path1)
		if err != nil {
			return nil, err
		}
		file2, err := relativePath(baseDir, c.Path2)
		if err != nil {
			return nil, err
		}
		rows[i] = Row{
			PctSimilar: Pct(c.Similarity.Rounded()),
			File1:      file1,
			File2:      file2,
		}
	}
	return rows, nil
}

// relativePath strips baseDir from path. A path outside baseDir is an error.
func relativePath(baseDir, path string) (string, error) {
	rel, err := filepath.Rel(baseDir, path)
	if err != nil {
		return "", fmt.Errorf("relativizing %s: %w", path, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s is outside %s", path, baseDir)
	}
	return rel, nil
}

// WriteCSV writes rows as CSV with the header "% similar,File 1,File 2".
func WriteCSV(w io.Writer, rows []Row) error {
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("marshaling CSV: %w", err)
	}
	return nil
}

// WriteJSON writes rows as an indented JSON array.
func WriteJSON(w io.Writer, rows []Row) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// WriteYAML writes rows as a YAML sequence.
func WriteYAML(w io.Writer, rows []Row) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// SaveFile creates path and writes rows to it with write.
func SaveFile(path string, rows []Row, write func(io.Writer, []Row) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// WriteTable writes rows as a human-readable table.
func WriteTable(w io.Writer, rows []Row) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No similar files found.")
		return
	}

	fmt.Fprintf(w, "%-9s  %-50s  %s\n", "% similar", "File 1", "File 2")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for _, r := range rows {
		fmt.Fprintf(w, "%9s  %-50s  %s\n", r.PctSimilar, truncate(r.File1, 50), r.File2)
	}

	fmt.Fprintf(w, "\n%d similar pairs\n", len(rows))
}

// truncate shortens s from the left so the file name stays visible.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}

// WriteRunsTable writes stored runs as a human-readable table.
func WriteRunsTable(w io.Writer, runs []RunInfo) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No stored runs.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-20s  %-9s  %-11s  %6s  %8s  %7s  %s\n",
		"Run", "Started", "Threshold", "Metric", "Files", "Pairs", "Similar", "Root")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for _, r := range runs {
		fmt.Fprintf(w, "%-4d  %-20s  %-9.2f  %-11s  %6d  %8d  %7d  %s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Threshold, r.Metric,
			r.Files, r.Pairs, r.Similar, r.Root)
	}
}
