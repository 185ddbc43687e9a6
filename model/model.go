package model

import (
	"context"
	"errors"

	"farchat/chatapi"
	"farchat/config"
)

// ErrNoBackend is returned by Submit when the chat client could not be created.
var ErrNoBackend = errors.New("chat backend is not configured")

// Model holds the core application data and turn bookkeeping
type Model struct {
	Config  *config.Config
	Backend chatapi.Backend

	Session Session

	// Current turn. stream is set while a streamed reply is open.
	TurnID string
	stream *chatapi.Stream

	// LastError is the most recent turn failure. It never reaches the transcript.
	LastError error

	// ctx is cancelled on shutdown so an in-flight request does not outlive the program.
	ctx    context.Context
	cancel context.CancelFunc

	Quitting bool

	Version string
	License string
}

// NewModel creates a Model. backend may be nil (offline); submissions then fail
// through the normal failure path.
func NewModel(cfg *config.Config, backend chatapi.Backend, version, license string) *Model {
	ctx, cancel := context.WithCancel(context.Background())

	catalog := config.DefaultFunctions()
	useFAR := false
	if cfg != nil {
		catalog = cfg.Functions
		useFAR = cfg.UseFAR
	}

	return &Model{
		Config:  cfg,
		Backend: backend,
		Session: NewSession(catalog, useFAR),
		ctx:     ctx,
		cancel:  cancel,
		Version: version,
		License: license,
	}
}

// Waiting reports whether a turn is in flight.
func (m *Model) Waiting() bool {
	return m.Session.Waiting
}

// ShowErrors reports whether turn failures should be surfaced in the status bar.
func (m *Model) ShowErrors() bool {
	return m.Config != nil && m.Config.ShowErrors
}

// Shutdown cancels any in-flight request and closes an open reply stream.
func (m *Model) Shutdown() {
	m.Quitting = true
	m.cancel()
	if m.stream != nil {
		_ = m.stream.Close()
		m.stream = nil
	}
}
