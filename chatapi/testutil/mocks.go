package testutil

import (
	"context"
	"errors"
	"io"
	"sync"

	"farchat/chatapi"
)

// MockBackend implements chatapi.Backend for tests. Requests are recorded in order.
type MockBackend struct {
	SendFunc func(ctx context.Context, req *chatapi.ChatRequest) (*chatapi.Response, error)

	mu       sync.Mutex
	requests []chatapi.ChatRequest
}

// NewMockBackend returns a backend that answers every turn with "Mock response".
func NewMockBackend() *MockBackend {
	return &MockBackend{
		SendFunc: func(ctx context.Context, req *chatapi.ChatRequest) (*chatapi.Response, error) {
			return WholeResponse("Mock response"), nil
		},
	}
}

func (m *MockBackend) Send(ctx context.Context, req *chatapi.ChatRequest) (*chatapi.Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, cloneRequest(req))
	m.mu.Unlock()
	return m.SendFunc(ctx, req)
}

func (m *MockBackend) Endpoint() string {
	return "mock://chat"
}

// Requests returns copies of the requests seen so far.
func (m *MockBackend) Requests() []chatapi.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]chatapi.ChatRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

func cloneRequest(req *chatapi.ChatRequest) chatapi.ChatRequest {
	if req == nil {
		return chatapi.ChatRequest{}
	}
	out := chatapi.ChatRequest{UseFAR: req.UseFAR}
	out.Messages = append([]chatapi.Message(nil), req.Messages...)
	out.Functions = append([]string(nil), req.Functions...)
	return out
}

// WholeResponse builds a whole-payload reply.
func WholeResponse(text string) *chatapi.Response {
	return &chatapi.Response{Mode: chatapi.ModeWhole, Text: text}
}

// StreamResponse builds a streamed reply that yields exactly the given chunks.
func StreamResponse(chunks ...string) *chatapi.Response {
	return &chatapi.Response{Mode: chatapi.ModeStream, Stream: chatapi.NewStream(NewChunkReader(chunks...))}
}

// FailingStreamResponse yields chunks and then fails with err instead of EOF.
func FailingStreamResponse(err error, chunks ...string) *chatapi.Response {
	r := NewChunkReader(chunks...)
	r.Err = err
	return &chatapi.Response{Mode: chatapi.ModeStream, Stream: chatapi.NewStream(r)}
}

// ChunkReader returns one chunk per Read call, then Err (io.EOF by default).
type ChunkReader struct {
	chunks []string
	Err    error
	Closed bool
}

func NewChunkReader(chunks ...string) *ChunkReader {
	return &ChunkReader{chunks: chunks, Err: io.EOF}
}

func (r *ChunkReader) Read(p []byte) (int, error) {
	if r.Closed {
		return 0, errors.New("read on closed chunk reader")
	}
	if len(r.chunks) == 0 {
		return 0, r.Err
	}
	n := copy(p, r.chunks[0])
	if n < len(r.chunks[0]) {
		r.chunks[0] = r.chunks[0][n:]
	} else {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

func (r *ChunkReader) Close() error {
	r.Closed = true
	return nil
}
