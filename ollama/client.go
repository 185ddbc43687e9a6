package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

const (
	DefaultHost  = "http://localhost:11434"
	DefaultModel = "deepseek-r1:32b"
)

// Sampling options used by every benchmark prompt.
const (
	Temperature   = 0.7
	TopP          = 0.9
	TopK          = 40
	RepeatPenalty = 1.1
)

// Client runs single, non-streamed generations against an Ollama server.
type Client struct {
	client  *api.Client
	model   string
	baseURL string
}

// Generation is the outcome of one prompt.
type Generation struct {
	Model    string
	Response string
	// Elapsed is wall-clock time measured around the request.
	Elapsed         time.Duration
	TotalDuration   time.Duration
	PromptEvalCount int
	EvalCount       int
	DoneReason      string
}

func NewClient(baseURL, model string, httpClient *http.Client) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultHost
	}
	if model == "" {
		model = DefaultModel
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid Ollama URL %q: scheme must be http or https", baseURL)
	}

	return &Client{
		client:  api.NewClient(parsedURL, httpClient),
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Generate sends prompt with streaming disabled and returns the full response.
// numPredict caps the number of generated tokens; zero or less leaves it unset.
func (c *Client) Generate(ctx context.Context, prompt string, numPredict int) (*Generation, error) {
	options := map[string]any{
		"temperature":    Temperature,
		"top_p":          TopP,
		"top_k":          TopK,
		"repeat_penalty": RepeatPenalty,
	}
	if numPredict > 0 {
		options["num_predict"] = numPredict
	}

	stream := false
	req := &api.GenerateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Stream:  &stream,
		Options: options,
	}

	gen := &Generation{Model: c.model}
	var text strings.Builder

	start := time.Now()
	err := c.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		text.WriteString(resp.Response)
		if resp.Done {
			gen.TotalDuration = resp.TotalDuration
			gen.PromptEvalCount = resp.PromptEvalCount
			gen.EvalCount = resp.EvalCount
			gen.DoneReason = resp.DoneReason
		}
		return nil
	})
	gen.Elapsed = time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("failed to generate: %w", err)
	}

	gen.Response = text.String()
	return gen, nil
}

func (c *Client) SetModel(model string) {
	c.model = model
}

func (c *Client) GetModel() string {
	return c.model
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ping checks the server is reachable by listing its models.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := c.client.List(ctx)
	return err
}

// HasModel reports whether the server has pulled the configured model.
func (c *Client) HasModel(ctx context.Context) (bool, error) {
	resp, err := c.client.List(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list models: %w", err)
	}
	for _, m := range resp.Models {
		if m.Name == c.model || m.Model == c.model {
			return true, nil
		}
	}
	return false, nil
}
