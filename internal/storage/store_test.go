package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HarryCaveMan/gillespy/internal/experiment"
	"github.com/HarryCaveMan/gillespy/internal/metrics"
	"github.com/HarryCaveMan/gillespy/internal/models"
	"github.com/HarryCaveMan/gillespy/internal/sim"
)

func runDecay(t *testing.T) *experiment.Result {
	t.Helper()
	m, err := models.NewDecay(20, 0.5)
	require.NoError(t, err)

	cfg := sim.DefaultConfig()
	cfg.Trajectories = 3
	cfg.EndTime = 4
	cfg.Seed = sim.Seed(42)

	exp := experiment.New(m, cfg)
	exp.Setup(metrics.NewMeanEvents())
	res, err := exp.Run(context.Background())
	require.NoError(t, err)
	return res
}

func openStore(t *testing.T) *Store {
	t.Helper()
	st := New(t.TempDir())
	require.NoError(t, st.Init())
	t.Cleanup(func() { st.Close() })
	return st
}

func TestStoreSaveLoad(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	res := runDecay(t)

	runID, err := st.Save(ctx, res, []string{"decay"}, 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(runID, "decay_"))

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, "decay", meta.Model)
	assert.Equal(t, int64(42), meta.Seed)
	assert.Equal(t, 3, meta.Trajectories)
	assert.Equal(t, []string{"X"}, meta.Species)
	assert.Equal(t, res.TotalEvents(), meta.Events)
	assert.Equal(t, res.Metrics["mean_events"], meta.Metrics["mean_events"])

	trajs, err := st.LoadTrajectories(runID)
	require.NoError(t, err)
	require.Len(t, trajs, 3)
	for i, tr := range trajs {
		orig := res.Trajectories[i]
		assert.Equal(t, orig.Index, tr.Index)
		assert.Equal(t, orig.Seed, tr.Seed)
		assert.Equal(t, orig.Times, tr.Times)
		assert.Equal(t, orig.States, tr.States)
		assert.Equal(t, orig.Firings, tr.Firings)
		assert.Equal(t, orig.Absorbed, tr.Absorbed)
	}
}

func TestStoreLoadMissing(t *testing.T) {
	st := openStore(t)
	_, err := st.Load("nope")
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestCatalogListAndFilter(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	res := runDecay(t)

	first, err := st.Save(ctx, res, nil, 0)
	require.NoError(t, err)
	second, err := st.Save(ctx, res, nil, 0)
	require.NoError(t, err)

	runs, err := st.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, first, runs[1].ID)

	runs, err = st.List(ctx, ListOptions{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	runs, err = st.List(ctx, ListOptions{Model: "tyson"})
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestReindexRebuildsCatalog(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	res := runDecay(t)

	st := New(dir)
	require.NoError(t, st.Init())
	runID, err := st.Save(ctx, res, nil, 0)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	for _, suffix := range []string{"", "-wal", "-shm"} {
		err := os.Remove(filepath.Join(dir, catalogFile+suffix))
		if suffix == "" {
			require.NoError(t, err)
		}
	}

	st = New(dir)
	require.NoError(t, st.Init())
	defer st.Close()

	n, err := st.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	runs, err := st.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].ID)
}

func TestListWithoutCatalogScansDirectories(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	st := New(dir)
	require.NoError(t, st.Init())
	_, err := st.Save(ctx, runDecay(t), nil, 0)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	runs, err := New(dir).List(ctx, ListOptions{Model: "decay"})
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestExportJSON(t *testing.T) {
	res := runDecay(t)
	meta := newMetadata(res, 0)

	var buf bytes.Buffer
	require.NoError(t, ExportJSON(&buf, meta, res.Completed(), 1))

	var got ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got.Trajectories, 3)
	assert.Equal(t, meta.ID, got.Run.ID)
	assert.Equal(t, []float64{0, 1, 2, 3, 4}, got.Trajectories[0].Times)
	assert.Len(t, got.Trajectories[0].Series["X"], 5)
	assert.Equal(t, int64(20), got.Trajectories[0].Series["X"][0])
}

func TestExportGridCSV(t *testing.T) {
	res := runDecay(t)

	var buf bytes.Buffer
	require.NoError(t, ExportGridCSV(&buf, res.Species, res.Completed(), 2))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "trajectory,time,X", lines[0])
	// three trajectories sampled at 0, 2, 4
	assert.Len(t, lines, 1+3*3)
	assert.Equal(t, "0,0,20", lines[1])
}

func TestReadTrajectoriesCSVRejectsBadHeader(t *testing.T) {
	_, err := ReadTrajectoriesCSV(strings.NewReader("t,x\n0,1\n"))
	assert.Error(t, err)
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	res := runDecay(t)

	keep, err := st.Save(ctx, res, nil, 0)
	require.NoError(t, err)
	drop, err := st.Save(ctx, res, nil, 0)
	require.NoError(t, err)

	n, err := st.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, st.Delete(ctx, drop))

	_, err = st.Load(drop)
	assert.ErrorIs(t, err, ErrRunNotFound)

	n, err = st.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	runs, err := st.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, keep, runs[0].ID)

	assert.ErrorIs(t, st.Delete(ctx, drop), ErrRunNotFound)
}
