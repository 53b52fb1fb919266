// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"context"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "reports", "near-facsimile.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_SaveAndReadRun(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	run := RunInfo{
		Root:      "docs",
		Threshold: 0.85,
		Metric:    "levenshtein",
		Files:     12,
		Pairs:     66,
		StartedAt: started,
		Duration:  1.5,
	}

	id, err := store.SaveRun(ctx, run, testRows())
	require.NoError(t, err)
	assert.Positive(t, id)

	runs, err := store.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Equal(t, "docs", runs[0].Root)
	assert.Equal(t, 0.85, runs[0].Threshold)
	assert.Equal(t, "levenshtein", runs[0].Metric)
	assert.Equal(t, 12, runs[0].Files)
	assert.Equal(t, 66, runs[0].Pairs)
	assert.Equal(t, 2, runs[0].Similar)
	assert.True(t, started.Equal(runs[0].StartedAt))

	rows, err := store.Rows(ctx, id, 0)
	require.NoError(t, err)
	assert.Equal(t, testRows(), rows)
}

func TestStore_RowsLimit(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	id, err := store.SaveRun(ctx, RunInfo{Root: ".", Metric: "trigram", StartedAt: time.Now()}, testRows())
	require.NoError(t, err)

	rows, err := store.Rows(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, testRows()[:1], rows)
}

func TestStore_RunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	first, err := store.SaveRun(ctx, RunInfo{Root: "one", Metric: "jaro", StartedAt: time.Now()}, nil)
	require.NoError(t, err)
	second, err := store.SaveRun(ctx, RunInfo{Root: "two", Metric: "jaro", StartedAt: time.Now()}, testRows())
	require.NoError(t, err)

	runs, err := store.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, first, runs[1].ID)
	assert.Zero(t, runs[1].Similar)

	rows, err := store.Rows(ctx, first, 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestStore_UnknownRun(t *testing.T) {
	_, err := openTestStore(t).Rows(context.Background(), 42, 0)
	require.ErrorIs(t, err, ErrRunNotFound)
}

func TestStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "near-facsimile.db")

	store, err := OpenStore(path)
	require.NoError(t, err)
	_, err = store.SaveRun(ctx, RunInfo{Root: "docs", Metric: "trigram", StartedAt: time.Now()}, testRows())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = OpenStore(path)
	require.NoError(t, err)
	defer store.Close()

	runs, err := store.Runs(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestWriteRunsTable(t *testing.T) {
	var buf bytes.Buffer
	WriteRunsTable(&buf, []RunInfo{{ID: 3, Root: "docs", Threshold: 0.85, Metric: "jaro", Files: 4, Pairs: 6, Similar: 1}})
	assert.Contains(t, buf.String(), "Threshold")
	assert.Contains(t, buf.String(), "jaro")

	buf.Reset()
	WriteRunsTable(&buf, nil)
	assert.Equal(t, "No stored runs.\n", buf.String())
}

func TestOpenExistingStore(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "typo", "reports.db")

	_, err := OpenExistingStore(missing)
	require.ErrorIs(t, err, fs.ErrNotExist)
	assert.NoDirExists(t, filepath.Dir(missing), "a missing database must not be created")

	_, err = OpenExistingStore(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")

	path := filepath.Join(dir, "reports.db")
	store, err := OpenStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = OpenExistingStore(path)
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}

func TestStore_EmptyResultsAreNotNil(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	runs, err := store.Runs(ctx)
	require.NoError(t, err)
	assert.NotNil(t, runs)

	id, err := store.SaveRun(ctx, RunInfo{Root: "docs", Metric: "jaro", StartedAt: time.Now()}, nil)
	require.NoError(t, err)

	rows, err := store.Rows(ctx, id, 0)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, rows))
	assert.Equal(t, "[]\n", buf.String())
}

func TestStore_RunsBadStartTime(t *testing.T) {
	store := openTestStore(t)
	_, err := store.db.Exec(`INSERT INTO runs (root, threshold, metric, files, pairs, similar, started_at, duration)
		VALUES ('docs', 0.85, 'jaro', 2, 1, 0, 'yesterday', 0)`)
	require.NoError(t, err)

	_, err = store.Runs(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing start time of run 1")
}
