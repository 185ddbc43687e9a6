package chatapi

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const streamReadSize = 4096

// Stream yields the text fragments of a streamed reply in arrival order.
//
// Bytes pass through a UTF-8 decoder that holds back an incomplete trailing
// sequence until the next fragment completes it and turns invalid bytes into
// U+FFFD. Next must not be called concurrently.
type Stream struct {
	body    io.ReadCloser
	decoded io.Reader
	buf     []byte
	done    bool
	err     error

	closeOnce sync.Once
	closeErr  error
}

// NewStream wraps body. The Stream takes ownership and closes body on EOF,
// on error, or on Close.
func NewStream(body io.ReadCloser) *Stream {
	return &Stream{
		body:    body,
		decoded: transform.NewReader(body, unicode.UTF8.NewDecoder()),
		buf:     make([]byte, streamReadSize),
	}
}

// Next returns the next decoded fragment. It returns io.EOF once the body is
// exhausted; any other error means the stream failed and is closed.
func (s *Stream) Next() (string, error) {
	if s.done {
		return "", s.err
	}

	for {
		n, err := s.decoded.Read(s.buf)
		if n > 0 {
			chunk := string(s.buf[:n])
			if err != nil {
				_ = s.finish(err)
			}
			return chunk, nil
		}
		if err != nil {
			return "", s.finish(err)
		}
	}
}

// finish records the terminal state. A later Next reports io.EOF for a clean
// end and the original failure otherwise.
func (s *Stream) finish(err error) error {
	s.done = true
	_ = s.Close()
	if errors.Is(err, io.EOF) {
		s.err = io.EOF
	} else {
		s.err = fmt.Errorf("failed to read reply stream: %w", err)
	}
	return s.err
}

// Close releases the underlying body. It is safe to call more than once.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.body.Close()
	})
	return s.closeErr
}
