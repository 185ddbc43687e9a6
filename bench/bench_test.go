package bench

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farchat/ollama"
)

type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	fail    map[int]error
	calls   int
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, numPredict int) (*ollama.Generation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if err := f.fail[i]; err != nil {
		return nil, err
	}
	return &ollama.Generation{
		Model:     "fake",
		Response:  "answer",
		Elapsed:   2 * time.Second,
		EvalCount: 10,
	}, nil
}

func (f *fakeGenerator) GetModel() string { return "fake" }

func TestRunRecordsEveryPrompt(t *testing.T) {
	gen := &fakeGenerator{fail: map[int]error{1: errors.New("model not loaded")}}
	r := NewRunner(gen, Options{Context: "sheet", NumPredict: 100}, nil)

	run, err := r.Run(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)

	require.Len(t, run.Results, 3)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "fake", run.Model)
	assert.Equal(t, 2, run.Passed)
	assert.Equal(t, 1, run.Failed)

	assert.Equal(t, StatusFailed, run.Results[1].Status)
	assert.Equal(t, "model not loaded", run.Results[1].Error)
	assert.Equal(t, StatusPassed, run.Results[2].Status)
	assert.Equal(t, 2, run.Results[2].Index)

	assert.Equal(t, 2*time.Second, run.AvgDuration)
	assert.InDelta(t, 5.0, run.AvgTokensSec, 1e-9)

	assert.Equal(t, []string{"sheet\na", "sheet\nb", "sheet\nc"}, gen.prompts)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &fakeGenerator{}
	run, err := NewRunner(gen, Options{}, nil).Run(ctx, DefaultPrompts)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, run)
	assert.Empty(t, run.Results)
	assert.Zero(t, gen.calls)
}

func TestEmptyPromptFailsWithoutRequest(t *testing.T) {
	gen := &fakeGenerator{}
	run, err := NewRunner(gen, Options{}, nil).Run(context.Background(), []string{""})
	require.NoError(t, err)
	assert.Equal(t, 1, run.Failed)
	assert.Zero(t, gen.calls)
}

func TestBuildPrompt(t *testing.T) {
	assert.Equal(t, "q", BuildPrompt("", "q"))
	assert.Equal(t, "ctx\nq", BuildPrompt("ctx", "q"))
}

func TestDefaultPrompts(t *testing.T) {
	assert.Len(t, DefaultPrompts, 18)
	for _, p := range DefaultPrompts {
		assert.True(t, strings.HasPrefix(p, "What is the"), p)
	}
}

func TestLoadPrompts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.txt")
	require.NoError(t, os.WriteFile(path, []byte("# header\nFirst?\n\n  Second?  \n"), 0600))

	prompts, err := LoadPrompts(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"First?", "Second?"}, prompts)

	empty := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte("# nothing\n"), 0600))
	_, err = LoadPrompts(empty)
	assert.Error(t, err)

	_, err = LoadPrompts(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestRunAgainstOllamaServer(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		mu.Lock()
		seen = append(seen, req.Prompt)
		mu.Unlock()

		if strings.Contains(req.Prompt, "EBITDA") {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"out of memory"}`))
			return
		}
		_, _ = w.Write([]byte(`{"model":"deepseek-r1:32b","response":"42","done":true,"eval_count":4}`))
	}))
	defer srv.Close()

	client, err := ollama.NewClient(srv.URL, "", srv.Client())
	require.NoError(t, err)

	run, err := NewRunner(client, Options{NumPredict: 100, Host: srv.URL}, nil).Run(context.Background(), DefaultPrompts[:6])
	require.NoError(t, err)

	assert.Equal(t, "deepseek-r1:32b", run.Model)
	assert.Equal(t, 4, run.Passed)
	assert.Equal(t, 2, run.Failed)
	assert.Equal(t, DefaultPrompts[:6], seen)
	assert.Contains(t, run.Results[4].Error, "out of memory")
}
