package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farchat/bench"
)

func newTestStorage(t *testing.T) *BenchStorage {
	t.Helper()
	bs, err := NewBenchStorage(filepath.Join(t.TempDir(), "bench.db"))
	require.NoError(t, err)
	t.Cleanup(func() { bs.Close() })
	return bs
}

func sampleRun(id string, start time.Time) *bench.Run {
	return &bench.Run{
		ID:           id,
		Model:        "deepseek-r1:32b",
		Host:         "http://localhost:11434",
		NumPredict:   100,
		StartTime:    start,
		EndTime:      start.Add(3 * time.Second),
		Duration:     3 * time.Second,
		Passed:       1,
		Failed:       1,
		AvgDuration:  1500 * time.Millisecond,
		AvgTokensSec: 12.5,
		Results: []bench.PromptResult{
			{Index: 0, Prompt: "What is the sum of row 11 Total COGS?", Status: bench.StatusPassed, StartTime: start, Duration: 1500 * time.Millisecond, Response: "1,204", EvalCount: 20, PromptEvalCount: 300, TokensPerSec: 12.5},
			{Index: 1, Prompt: "What is the sum of row 23 Net Income?", Status: bench.StatusFailed, StartTime: start, Duration: 10 * time.Millisecond, Error: "connection refused"},
		},
	}
}

func TestSaveAndLoadRun(t *testing.T) {
	bs := newTestStorage(t)
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, bs.SaveRun(sampleRun("run-1", start)))

	got, err := bs.LoadRun("run-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "deepseek-r1:32b", got.Model)
	assert.Equal(t, 3*time.Second, got.Duration)
	assert.Equal(t, 1500*time.Millisecond, got.AvgDuration)
	assert.True(t, start.Equal(got.StartTime))
	require.Len(t, got.Results, 2)
	assert.Equal(t, "1,204", got.Results[0].Response)
	assert.Equal(t, bench.StatusFailed, got.Results[1].Status)
	assert.Equal(t, "connection refused", got.Results[1].Error)
}

func TestLoadRunMissing(t *testing.T) {
	bs := newTestStorage(t)
	got, err := bs.LoadRun("nope")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestListRunsNewestFirst(t *testing.T) {
	bs := newTestStorage(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, bs.SaveRun(sampleRun("old", base)))
	require.NoError(t, bs.SaveRun(sampleRun("new", base.Add(time.Hour))))

	runs, err := bs.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].ID)
	assert.Equal(t, "old", runs[1].ID)
	assert.Empty(t, runs[0].Results)
}

func TestSaveRunReplacesResults(t *testing.T) {
	bs := newTestStorage(t)
	run := sampleRun("run-1", time.Now().UTC())
	require.NoError(t, bs.SaveRun(run))

	run.Results = run.Results[:1]
	require.NoError(t, bs.SaveRun(run))

	got, err := bs.LoadRun("run-1")
	require.NoError(t, err)
	assert.Len(t, got.Results, 1)
}

func TestDeleteRun(t *testing.T) {
	bs := newTestStorage(t)
	require.NoError(t, bs.SaveRun(sampleRun("run-1", time.Now().UTC())))
	require.NoError(t, bs.DeleteRun("run-1"))

	runs, err := bs.ListRuns()
	require.NoError(t, err)
	assert.Empty(t, runs)
}
