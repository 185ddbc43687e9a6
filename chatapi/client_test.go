package chatapi_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"farchat/chatapi"
	"farchat/chatapi/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *chatapi.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := chatapi.NewClient(srv.URL+"/api/chat", srv.Client())
	require.NoError(t, err)
	return client
}

func drain(t *testing.T, s *chatapi.Stream) []string {
	t.Helper()
	var chunks []string
	for {
		chunk, err := s.Next()
		if err == io.EOF {
			return chunks
		}
		require.NoError(t, err)
		chunks = append(chunks, chunk)
	}
}

func TestNewClientValidatesEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		wantErr  bool
	}{
		{"http://localhost:3000/api/chat", false},
		{"https://chat.example.com/api/chat", false},
		{"localhost:3000/api/chat", true},
		{"ftp://host/api/chat", true},
		{"http:///api/chat", true},
		{"://bad", true},
	}
	for _, tt := range tests {
		_, err := chatapi.NewClient(tt.endpoint, nil)
		if tt.wantErr {
			assert.Error(t, err, tt.endpoint)
		} else {
			assert.NoError(t, err, tt.endpoint)
		}
	}
}

func TestSendEncodesRequest(t *testing.T) {
	var got map[string]any
	var gotMethod, gotPath, gotType string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotType = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"ok"}`))
	})

	req := &chatapi.ChatRequest{
		Messages:  testutil.TestTranscript(),
		Functions: []string{"Sum", "Average"},
		UseFAR:    true,
	}
	_, err := client.Send(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/chat", gotPath)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, []any{"Sum", "Average"}, got["functions"])
	assert.Equal(t, true, got["useFAR"])

	messages, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 3)
	last := messages[2].(map[string]any)
	assert.Equal(t, "user", last["role"])
	assert.Equal(t, "And the average?", last["content"])
}

func TestSendEncodesEmptySelectionAsArray(t *testing.T) {
	var raw string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		raw = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":""}`))
	})

	_, err := client.Send(context.Background(), &chatapi.ChatRequest{
		Messages: []chatapi.Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Contains(t, raw, `"functions":[]`)
	assert.Contains(t, raw, `"useFAR":false`)
}

func TestSendWholePayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"response":"The average is 301."}`))
	})

	resp, err := client.Send(context.Background(), &chatapi.ChatRequest{})
	require.NoError(t, err)
	assert.Equal(t, chatapi.ModeWhole, resp.Mode)
	assert.Equal(t, "The average is 301.", resp.Text)
	assert.Nil(t, resp.Stream)
}

func TestSendWholePayloadWithoutResponseField(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"answer":"wrong key"}`))
	})

	_, err := client.Send(context.Background(), &chatapi.ChatRequest{})
	assert.ErrorIs(t, err, chatapi.ErrMissingResponse)
}

func TestSendWholePayloadMalformed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":`))
	})

	_, err := client.Send(context.Background(), &chatapi.ChatRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode chat reply")
}

func TestSendStreamed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		flusher := w.(http.Flusher)
		for _, part := range []string{"Hel", "lo", " world"} {
			_, _ = w.Write([]byte(part))
			flusher.Flush()
		}
	})

	resp, err := client.Send(context.Background(), &chatapi.ChatRequest{})
	require.NoError(t, err)
	require.Equal(t, chatapi.ModeStream, resp.Mode)
	defer resp.Stream.Close()

	assert.Equal(t, "Hello world", strings.Join(drain(t, resp.Stream), ""))
}

func TestSendNonSuccessStatus(t *testing.T) {
	for _, code := range []int{http.StatusInternalServerError, http.StatusNotFound, http.StatusBadRequest} {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(code)
			_, _ = w.Write([]byte(`{"response":"should be ignored"}`))
		})

		resp, err := client.Send(context.Background(), &chatapi.ChatRequest{})
		assert.Nil(t, resp)
		assert.True(t, chatapi.IsStatus(err, code), "want status %d, got %v", code, err)
	}
}

func TestSendTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL + "/api/chat"
	srv.Close()

	client, err := chatapi.NewClient(endpoint, nil)
	require.NoError(t, err)

	_, err = client.Send(context.Background(), &chatapi.ChatRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to reach chat endpoint")
}

func TestSendNilRequest(t *testing.T) {
	client, err := chatapi.NewClient("http://localhost:1/api/chat", nil)
	require.NoError(t, err)
	_, err = client.Send(context.Background(), nil)
	assert.Error(t, err)
}
