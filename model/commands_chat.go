package model

import (
	"errors"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"farchat/chatapi"
	"farchat/config"
)

// Submit starts a turn for input and returns the command that sends it.
// It returns nil when the session refuses the input (blank, or a turn is
// already waiting).
func (m *Model) Submit(input string) tea.Cmd {
	next, req := m.Session.Submit(input)
	if req == nil {
		return nil
	}

	// The attachment is dropped by Submit and is not part of the request.
	attached := m.attachmentName()

	m.Session = next
	m.TurnID = uuid.New().String()
	m.LastError = nil

	if config.DebugLog != nil {
		config.DebugLog.Debugw("Submitting turn",
			"turn", m.TurnID,
			"messages", len(req.Messages),
			"functions", req.Functions,
			"useFAR", req.UseFAR,
			"droppedAttachment", attached)
	}

	return m.sendChat(m.TurnID, req)
}

func (m *Model) attachmentName() string {
	if m.Session.Attachment == nil {
		return ""
	}
	return m.Session.Attachment.Name
}

// sendChat posts req and reports how the backend answered.
func (m *Model) sendChat(turnID string, req *chatapi.ChatRequest) tea.Cmd {
	backend := m.Backend
	ctx := m.ctx

	return func() tea.Msg {
		if backend == nil {
			return StreamErrorMsg{TurnID: turnID, Err: ErrNoBackend}
		}

		start := time.Now()
		resp, err := backend.Send(ctx, req)
		if err != nil {
			return StreamErrorMsg{TurnID: turnID, Err: err}
		}

		if config.DebugLog != nil {
			config.DebugLog.Debugw("Reply started", "turn", turnID, "mode", resp.Mode.String(), "after", time.Since(start))
		}

		if resp.Mode == chatapi.ModeWhole {
			return ChatReplyMsg{TurnID: turnID, Text: resp.Text}
		}
		return StreamOpenedMsg{TurnID: turnID, Stream: resp.Stream}
	}
}

// ReadChunk reads exactly one fragment from stream. The next read is only
// issued after the previous fragment has been applied, which keeps fragments
// in arrival order.
func ReadChunk(turnID string, stream *chatapi.Stream) tea.Cmd {
	return func() tea.Msg {
		chunk, err := stream.Next()
		if errors.Is(err, io.EOF) {
			return StreamDoneMsg{TurnID: turnID}
		}
		if err != nil {
			return StreamErrorMsg{TurnID: turnID, Err: err}
		}
		return StreamChunkMsg{TurnID: turnID, Chunk: chunk}
	}
}

// HandleChatMsg applies a turn message to the session. handled is false for
// messages that are not turn messages. Messages from a stale turn are dropped.
func (m *Model) HandleChatMsg(msg tea.Msg) (handled bool, cmd tea.Cmd) {
	switch msg := msg.(type) {
	case ChatReplyMsg:
		if !m.isCurrent(msg.TurnID) {
			return true, nil
		}
		m.Session = m.Session.ApplyReply(msg.Text)
		if config.DebugLog != nil {
			config.DebugLog.Debugw("Whole reply applied", "turn", msg.TurnID, "chars", len(msg.Text))
		}
		return true, nil

	case StreamOpenedMsg:
		if !m.isCurrent(msg.TurnID) {
			_ = msg.Stream.Close()
			return true, nil
		}
		m.stream = msg.Stream
		return true, ReadChunk(msg.TurnID, msg.Stream)

	case StreamChunkMsg:
		if !m.isCurrent(msg.TurnID) || m.stream == nil {
			return true, nil
		}
		m.Session = m.Session.ApplyChunk(msg.Chunk)
		return true, ReadChunk(msg.TurnID, m.stream)

	case StreamDoneMsg:
		if !m.isCurrent(msg.TurnID) {
			return true, nil
		}
		m.stream = nil
		if !m.Session.Streaming() && config.DebugLog != nil {
			config.DebugLog.Warnw("Stream ended without any text", "turn", msg.TurnID)
		}
		m.Session = m.Session.Complete()
		if config.DebugLog != nil {
			config.DebugLog.Debugw("Stream complete", "turn", msg.TurnID)
		}
		return true, nil

	case StreamErrorMsg:
		if !m.isCurrent(msg.TurnID) {
			return true, nil
		}
		m.fail(msg.TurnID, msg.Err)
		return true, nil
	}

	return false, nil
}

func (m *Model) isCurrent(turnID string) bool {
	return m.Session.Waiting && turnID == m.TurnID
}

// fail ends the turn without touching the transcript beyond dropping a partial
// reply. The error goes to the diagnostic log only.
func (m *Model) fail(turnID string, err error) {
	if m.stream != nil {
		_ = m.stream.Close()
		m.stream = nil
	}
	m.Session = m.Session.Fail()
	m.LastError = err

	if config.DebugLog != nil {
		config.DebugLog.Errorw("Chat turn failed", "turn", turnID, "error", err)
	}
}
