package bench

import "time"

type Status string

const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
)

// Run is one pass over a prompt list.
type Run struct {
	ID         string         `json:"id"`
	Model      string         `json:"model"`
	Host       string         `json:"host,omitempty"`
	NumPredict int            `json:"num_predict"`
	StartTime  time.Time      `json:"start_time"`
	EndTime    time.Time      `json:"end_time"`
	Duration   time.Duration  `json:"duration"`
	Results    []PromptResult `json:"results,omitempty"`

	Passed       int           `json:"passed"`
	Failed       int           `json:"failed"`
	AvgDuration  time.Duration `json:"avg_duration"`
	AvgTokensSec float64       `json:"avg_tokens_per_sec"`
}

// PromptResult is the outcome of a single prompt.
type PromptResult struct {
	Index           int           `json:"index"`
	Prompt          string        `json:"prompt"`
	Status          Status        `json:"status"`
	StartTime       time.Time     `json:"start_time"`
	Duration        time.Duration `json:"duration"`
	Response        string        `json:"response,omitempty"`
	EvalCount       int           `json:"eval_count"`
	PromptEvalCount int           `json:"prompt_eval_count"`
	TokensPerSec    float64       `json:"tokens_per_sec"`
	Error           string        `json:"error,omitempty"`
}

// computeAggregates fills the counters and averages from Results. Averages
// only consider passed prompts.
func (r *Run) computeAggregates() {
	r.Passed, r.Failed = 0, 0
	var total time.Duration
	var tps float64
	var tpsCount int

	for _, res := range r.Results {
		if res.Status != StatusPassed {
			r.Failed++
			continue
		}
		r.Passed++
		total += res.Duration
		if res.TokensPerSec > 0 {
			tps += res.TokensPerSec
			tpsCount++
		}
	}

	r.AvgDuration = 0
	if r.Passed > 0 {
		r.AvgDuration = total / time.Duration(r.Passed)
	}
	r.AvgTokensSec = 0
	if tpsCount > 0 {
		r.AvgTokensSec = tps / float64(tpsCount)
	}
}
