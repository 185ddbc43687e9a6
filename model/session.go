package model

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"farchat/chatapi"
)

// AttachmentSuffix is the only accepted attachment file name ending (case-sensitive).
const AttachmentSuffix = ".xlsx"

var ErrUnsupportedAttachment = errors.New("only .xlsx files can be attached")

// Session is the chat state of one program run. Every method is a value
// transition: it returns the next Session and never mutates the receiver's
// slices, so earlier states stay valid.
type Session struct {
	Transcript []Message
	Catalog    []string
	Selected   []string
	UseFAR     bool
	Attachment *Attachment
	Waiting    bool

	// streamPos is 1 + the transcript index of the assistant message being
	// streamed, 0 when none. acc is the text received so far for it.
	streamPos int
	acc       string
}

func NewSession(catalog []string, useFAR bool) Session {
	return Session{
		Catalog: slices.Clone(catalog),
		UseFAR:  useFAR,
	}
}

// Submit starts a turn. Blank input or a turn already in flight leaves the
// session unchanged and returns a nil request.
func (s Session) Submit(input string) (Session, *chatapi.ChatRequest) {
	if strings.TrimSpace(input) == "" || s.Waiting {
		return s, nil
	}

	s.Transcript = append(slices.Clip(s.Transcript), newMessage(RoleUser, input))
	s.Attachment = nil
	s.Waiting = true
	s.streamPos = 0
	s.acc = ""

	return s, s.Request()
}

// Request builds the POST body from the current transcript and selection.
func (s Session) Request() *chatapi.ChatRequest {
	messages := make([]chatapi.Message, 0, len(s.Transcript))
	for _, msg := range s.Transcript {
		messages = append(messages, chatapi.Message{Role: msg.Role, Content: msg.Content})
	}
	functions := slices.Clone(s.Selected)
	if functions == nil {
		functions = []string{}
	}
	return &chatapi.ChatRequest{
		Messages:  messages,
		Functions: functions,
		UseFAR:    s.UseFAR,
	}
}

// ApplyReply appends a whole-payload reply and ends the turn.
func (s Session) ApplyReply(text string) Session {
	if !s.Waiting {
		return s
	}
	s.Transcript = append(slices.Clip(s.Transcript), newMessage(RoleAssistant, text))
	return s.Complete()
}

// ApplyChunk folds one streamed fragment into the in-progress assistant
// message. The first non-empty fragment creates that message; later ones
// overwrite its content with everything received so far. Empty fragments
// change nothing.
func (s Session) ApplyChunk(chunk string) Session {
	if !s.Waiting || chunk == "" {
		return s
	}

	s.acc += chunk
	if s.streamPos == 0 {
		s.Transcript = append(slices.Clip(s.Transcript), newMessage(RoleAssistant, s.acc))
		s.streamPos = len(s.Transcript)
		return s
	}

	s.Transcript = slices.Clone(s.Transcript)
	msg := &s.Transcript[s.streamPos-1]
	msg.Content = s.acc
	msg.Rendered = s.acc
	return s
}

// Complete ends the turn successfully.
func (s Session) Complete() Session {
	s.Waiting = false
	s.streamPos = 0
	s.acc = ""
	return s
}

// Fail ends the turn without a reply. A partially streamed assistant message
// is removed; the user message stays.
func (s Session) Fail() Session {
	if i := s.StreamingIndex(); i >= 0 && i < len(s.Transcript) {
		s.Transcript = slices.Delete(slices.Clone(s.Transcript), i, i+1)
	}
	return s.Complete()
}

// Streaming reports whether a streamed reply has produced its first fragment.
func (s Session) Streaming() bool {
	return s.streamPos > 0
}

// StreamingIndex is the transcript index of the in-progress reply, or -1.
func (s Session) StreamingIndex() int {
	return s.streamPos - 1
}

// ToggleFunction adds name to the selection, or removes it if present.
// Names outside the catalog are ignored.
func (s Session) ToggleFunction(name string) Session {
	if !slices.Contains(s.Catalog, name) {
		return s
	}
	if i := slices.Index(s.Selected, name); i >= 0 {
		s.Selected = slices.Delete(slices.Clone(s.Selected), i, i+1)
		return s
	}
	s.Selected = append(slices.Clip(s.Selected), name)
	return s
}

func (s Session) IsSelected(name string) bool {
	return slices.Contains(s.Selected, name)
}

func (s Session) SetFAR(on bool) Session {
	s.UseFAR = on
	return s
}

func (s Session) ToggleFAR() Session {
	return s.SetFAR(!s.UseFAR)
}

// Attach records path as the attachment if its file name ends in .xlsx.
// Otherwise the current attachment is cleared and ErrUnsupportedAttachment returned.
func (s Session) Attach(path string) (Session, error) {
	name := filepath.Base(path)
	if path == "" || !strings.HasSuffix(name, AttachmentSuffix) {
		s.Attachment = nil
		return s, fmt.Errorf("%w: %s", ErrUnsupportedAttachment, name)
	}
	s.Attachment = &Attachment{Name: name, Path: path}
	return s, nil
}

func (s Session) ClearAttachment() Session {
	s.Attachment = nil
	return s
}

// SetRendered stores the display form of message i if its content is still content.
func (s Session) SetRendered(i int, content, rendered string) Session {
	if i < 0 || i >= len(s.Transcript) || s.Transcript[i].Content != content {
		return s
	}
	s.Transcript = slices.Clone(s.Transcript)
	s.Transcript[i].Rendered = rendered
	return s
}

// LastReply returns the content of the most recent assistant message.
func (s Session) LastReply() (string, bool) {
	for i := len(s.Transcript) - 1; i >= 0; i-- {
		if s.Transcript[i].Role == RoleAssistant {
			return s.Transcript[i].Content, true
		}
	}
	return "", false
}
