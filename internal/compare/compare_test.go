// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compare

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"pgregory.net/rapid"

	"github.com/msuchane/near-facsimile/pkg/types"
)

func helloCorpus() []types.TextUnit {
	return []types.TextUnit{
		{Path: "A", Content: "hello world"},
		{Path: "B", Content: "hello world"},
		{Path: "C", Content: "xyz123"},
	}
}

// countingProgress records the calls made by the collector.
type countingProgress struct {
	total     int
	increment atomic.Int64
	finished  bool
}

func (p *countingProgress) Start(total int) { p.total = total }
func (p *countingProgress) Increment()      { p.increment.Add(1) }
func (p *countingProgress) Finish()         { p.finished = true }

func TestRun_IdenticalPair(t *testing.T) {
	defer goleak.VerifyNone(t)

	res, err := Run(helloCorpus(), DefaultOptions(0.85))
	require.NoError(t, err)

	require.Len(t, res.Comparisons, 1)
	cmp := res.Comparisons[0]
	assert.Equal(t, "A", cmp.Path1)
	assert.Equal(t, "B", cmp.Path2)
	assert.Equal(t, 100.0, cmp.Similarity.Rounded())
	assert.Equal(t, 3, res.Pairs)
	assert.Equal(t, 2, res.Prefiltered, "hello world vs xyz123 shares no trigram")
	assert.Equal(t, 1, res.Evaluated)
}

func TestRun_ConfigurationError(t *testing.T) {
	tests := []struct {
		name string
		cfg  types.CompareConfig
		msg  string
	}{
		{name: "threshold above one", cfg: types.CompareConfig{Threshold: 1.1, PrefilterRatio: 0.5}, msg: "threshold must be <= 1"},
		{name: "negative threshold", cfg: types.CompareConfig{Threshold: -0.1, PrefilterRatio: 0.5}, msg: "threshold must be >= 0"},
		{name: "NaN threshold", cfg: types.CompareConfig{Threshold: math.NaN(), PrefilterRatio: 0.5}, msg: "threshold"},
		{name: "prefilter ratio above one", cfg: types.CompareConfig{Threshold: 0.5, PrefilterRatio: 2}, msg: "prefilterratio must be <= 1"},
		{name: "negative workers", cfg: types.CompareConfig{Threshold: 0.5, Workers: -1}, msg: "workers must be >= 0"},
		{name: "negative fast level", cfg: types.CompareConfig{Threshold: 0.5, Fast: -1}, msg: "fast must be >= 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			progress := &countingProgress{}
			opts := Options{Config: tt.cfg, Logger: zerolog.Nop(), Progress: progress}

			// A corpus of one file: the configuration error must win.
			_, err := Run(corpusOf(1), opts)

			require.ErrorIs(t, err, ErrConfiguration)
			assert.Contains(t, err.Error(), tt.msg)
			assert.Zero(t, progress.total, "no comparison may start")
		})
	}
}

func TestRun_InsufficientInput(t *testing.T) {
	progress := &countingProgress{}
	opts := DefaultOptions(0.85)
	opts.Progress = progress

	_, err := Run(corpusOf(1), opts)

	require.ErrorIs(t, err, ErrInsufficientInput)
	assert.Zero(t, progress.total)
	assert.False(t, progress.finished)
}

func TestCollector_PrefilterSkipsPreciseMetric(t *testing.T) {
	c, err := NewCollector(DefaultOptions(0.8))
	require.NoError(t, err)

	var calls atomic.Int64
	c.eval = &Evaluator{
		// Pairs involving "far" score below 0.4, all others above.
		approximate: func(a, b string) float64 {
			if a == "far" || b == "far" {
				return 0.39
			}
			return 0.41
		},
		precise: func(_, _ string, _ float64) float64 {
			calls.Add(1)
			return 0.9
		},
		threshold: 0.8,
		cutoff:    0.4,
	}

	units := []types.TextUnit{
		{Path: "1", Content: "near"},
		{Path: "2", Content: "near"},
		{Path: "3", Content: "near"},
		{Path: "4", Content: "far"},
	}
	res, err := c.Collect(units)
	require.NoError(t, err)

	assert.Equal(t, int64(3), calls.Load(), "only pairs among 1, 2 and 3 reach the precise metric")
	assert.Equal(t, 3, res.Evaluated)
	assert.Equal(t, 3, res.Prefiltered)
	assert.Len(t, res.Comparisons, 3)
}

func TestCollector_ProgressHook(t *testing.T) {
	progress := &countingProgress{}
	opts := DefaultOptions(0.5)
	opts.Progress = progress
	opts.Config.Workers = 3

	res, err := Run(corpusOf(12), opts)
	require.NoError(t, err)

	assert.Equal(t, 66, progress.total)
	assert.Equal(t, int64(66), progress.increment.Load())
	assert.True(t, progress.finished)
	assert.Equal(t, 66, res.Pairs)
	assert.Equal(t, res.Pairs, res.Prefiltered+res.Evaluated)
}

func TestCollector_SameResultForAnyWorkerCount(t *testing.T) {
	defer goleak.VerifyNone(t)

	units := docCorpus()
	var want []string
	for _, workers := range []int{1, 2, 7, 32} {
		opts := DefaultOptions(0.6)
		opts.Config.Workers = workers

		res, err := Run(units, opts)
		require.NoError(t, err)

		got := comparisonKeys(res.Comparisons)
		if want == nil {
			want = got
			require.NotEmpty(t, want)
			continue
		}
		assert.ElementsMatch(t, want, got, "workers = %d", workers)
	}
}

func TestCollector_LogLines(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions(0.85)
	opts.Logger = zerolog.New(&buf)
	opts.Config.Verbosity = 2
	opts.Config.Workers = 1

	units := []types.TextUnit{
		{Path: "a.adoc", Content: "The installation guide explains every step in detail."},
		{Path: "b.adoc", Content: "The installation guide explains every step in detail."},
		{Path: "c.adoc", Content: "The installation guide explains every step in details."},
		{Path: "d.adoc", Content: "0123456789"},
	}
	_, err := Run(units, opts)
	require.NoError(t, err)

	var messages []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		messages = append(messages, m)
	}

	assert.True(t, hasMessage(messages, "These two files are identical (100.0%)", "a.adoc", "b.adoc"))
	assert.True(t, hasMessagePrefix(messages, "These two files are similar (", "a.adoc", "c.adoc"))
	assert.True(t, hasMessage(messages, "Trigram similarity below the threshold", "a.adoc", "d.adoc"))
}

func TestCollector_QuietAtDefaultVerbosity(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions(0.85)
	opts.Logger = zerolog.New(&buf)

	_, err := Run(helloCorpus(), opts)
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestRun_ThresholdMonotonicity(t *testing.T) {
	units := docCorpus()

	rapid.Check(t, func(t *rapid.T) {
		low := rapid.Float64Range(0, 1).Draw(t, "low")
		high := rapid.Float64Range(low, 1).Draw(t, "high")
		fast := rapid.IntRange(0, 2).Draw(t, "fast")

		count := func(threshold float64) int {
			opts := DefaultOptions(threshold)
			opts.Config.Fast = fast
			res, err := Run(units, opts)
			if err != nil {
				t.Fatal(err)
			}
			return len(res.Comparisons)
		}

		if lo, hi := count(low), count(high); hi > lo {
			t.Fatalf("threshold %v gives %d results, higher threshold %v gives %d", low, lo, high, hi)
		}
	})
}

// docCorpus returns a small corpus with forked and unrelated documents.
func docCorpus() []types.TextUnit {
	base := "= Configuring the server\n\nEdit the configuration file and restart the service.\n"
	return []types.TextUnit{
		{Path: "install/server.adoc", Content: base},
		{Path: "upgrade/server.adoc", Content: base},
		{Path: "upgrade/server-old.adoc", Content: strings.Replace(base, "restart", "reload", 1)},
		{Path: "admin/server.adoc", Content: base + "\nSee also the logging chapter.\n"},
		{Path: "release-notes.adoc", Content: "= Release notes\n\nThis release fixes three bugs.\n"},
		{Path: "glossary.adoc", Content: "API:: application programming interface\n"},
	}
}

func comparisonKeys(cmps []types.Comparison) []string {
	keys := make([]string, len(cmps))
	for i, c := range cmps {
		keys[i] = fmt.Sprintf("%s|%s|%s", c.Path1, c.Path2, c.Similarity)
	}
	return keys
}

func hasMessage(messages []map[string]any, msg, file1, file2 string) bool {
	for _, m := range messages {
		if m["message"] == msg && m["file1"] == file1 && m["file2"] == file2 {
			return true
		}
	}
	return false
}

func hasMessagePrefix(messages []map[string]any, prefix, file1, file2 string) bool {
	for _, m := range messages {
		s, _ := m["message"].(string)
		if strings.HasPrefix(s, prefix) && m["file1"] == file1 && m["file2"] == file2 {
			return true
		}
	}
	return false
}
