package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
)

// Backend sends one chat turn. *Client is the HTTP implementation.
type Backend interface {
	Send(ctx context.Context, req *ChatRequest) (*Response, error)
	Endpoint() string
}

type Client struct {
	httpClient *http.Client
	endpoint   string
}

// NewClient returns a client posting to endpoint, a full http(s) URL such as
// "http://localhost:3000/api/chat". A nil httpClient means a plain
// &http.Client{} with no timeout: chat turns run until the backend finishes.
func NewClient(endpoint string, httpClient *http.Client) (*Client, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid chat endpoint: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid chat endpoint %q: scheme must be http or https", endpoint)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("invalid chat endpoint %q: missing host", endpoint)
	}

	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		httpClient: httpClient,
		endpoint:   parsed.String(),
	}, nil
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// Send posts req and classifies the reply. For ModeStream the returned
// Stream holds the open body.
func (c *Client) Send(ctx context.Context, req *ChatRequest) (*Response, error) {
	body, err := encodeRequest(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to reach chat endpoint: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	if isJSON(resp.Header.Get("Content-Type")) {
		defer resp.Body.Close()
		text, err := decodeWhole(resp.Body)
		if err != nil {
			return nil, err
		}
		return &Response{Mode: ModeWhole, Text: text}, nil
	}

	return &Response{Mode: ModeStream, Stream: NewStream(resp.Body)}, nil
}

// encodeRequest marshals req, sending empty arrays rather than null.
func encodeRequest(req *ChatRequest) ([]byte, error) {
	if req == nil {
		return nil, fmt.Errorf("chat request is nil")
	}
	out := *req
	if out.Messages == nil {
		out.Messages = []Message{}
	}
	if out.Functions == nil {
		out.Functions = []string{}
	}
	body, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat request: %w", err)
	}
	return body, nil
}

func decodeWhole(r io.Reader) (string, error) {
	var payload wholePayload
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode chat reply: %w", err)
	}
	if payload.Response == nil {
		return "", ErrMissingResponse
	}
	return *payload.Response, nil
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json"
}
