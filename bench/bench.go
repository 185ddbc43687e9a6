// Package bench replays a prompt list against an Ollama model and records
// how long each generation took.
package bench

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"farchat/ollama"
)

// Generator is the part of ollama.Client the runner needs.
type Generator interface {
	Generate(ctx context.Context, prompt string, numPredict int) (*ollama.Generation, error)
	GetModel() string
}

// Options configure a run.
type Options struct {
	// Context is prepended to every prompt, separated by a newline.
	Context    string
	NumPredict int
	// Host is recorded with the run for display only.
	Host string
}

// Runner executes prompts one at a time. It is not safe for concurrent use.
type Runner struct {
	gen    Generator
	opts   Options
	logger *zap.SugaredLogger
}

// NewRunner creates a runner. logger may be nil.
func NewRunner(gen Generator, opts Options, logger *zap.SugaredLogger) *Runner {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Runner{gen: gen, opts: opts, logger: logger}
}

// Run sends every prompt in order. A failed prompt is recorded and the run
// continues; only cancellation of ctx stops it early, in which case the
// partial run is returned together with ctx's error.
func (r *Runner) Run(ctx context.Context, prompts []string) (*Run, error) {
	run := &Run{
		ID:         uuid.New().String(),
		Model:      r.gen.GetModel(),
		Host:       r.opts.Host,
		NumPredict: r.opts.NumPredict,
		StartTime:  time.Now(),
		Results:    make([]PromptResult, 0, len(prompts)),
	}

	var err error
	for i, prompt := range prompts {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
			break
		}

		result := r.runPrompt(ctx, i, prompt)
		run.Results = append(run.Results, result)

		if result.Status == StatusFailed {
			r.logger.Warnw("Prompt failed", "index", i, "error", result.Error)
		} else {
			r.logger.Infow("Prompt done", "index", i, "duration", result.Duration, "evalCount", result.EvalCount)
		}
	}

	run.EndTime = time.Now()
	run.Duration = run.EndTime.Sub(run.StartTime)
	run.computeAggregates()

	return run, err
}

func (r *Runner) runPrompt(ctx context.Context, index int, prompt string) PromptResult {
	result := PromptResult{
		Index:     index,
		Prompt:    prompt,
		StartTime: time.Now(),
	}

	if prompt == "" {
		result.Status = StatusFailed
		result.Error = "empty prompt"
		return result
	}

	gen, err := r.gen.Generate(ctx, BuildPrompt(r.opts.Context, prompt), r.opts.NumPredict)
	if err != nil {
		result.Status = StatusFailed
		result.Error = err.Error()
		result.Duration = time.Since(result.StartTime)
		return result
	}

	result.Status = StatusPassed
	result.Response = gen.Response
	result.Duration = gen.Elapsed
	result.EvalCount = gen.EvalCount
	result.PromptEvalCount = gen.PromptEvalCount
	if gen.EvalCount > 0 && gen.Elapsed > 0 {
		result.TokensPerSec = float64(gen.EvalCount) / gen.Elapsed.Seconds()
	}
	return result
}

// Summary is a one-line description of a finished run.
func (r *Run) Summary() string {
	return fmt.Sprintf("%s  %s  %d passed, %d failed  avg %s",
		r.StartTime.Format(time.DateTime), r.Model, r.Passed, r.Failed, r.AvgDuration.Round(time.Millisecond))
}
