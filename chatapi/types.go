package chatapi

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one transcript entry as it goes over the wire.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the POST body for one turn.
type ChatRequest struct {
	Messages  []Message `json:"messages"`
	Functions []string  `json:"functions"`
	UseFAR    bool      `json:"useFAR"`
}

// wholePayload is the JSON body of a non-streamed reply.
type wholePayload struct {
	Response *string `json:"response"`
}

// Mode tells how the backend delivered the reply.
type Mode int

const (
	ModeWhole Mode = iota
	ModeStream
)

func (m Mode) String() string {
	switch m {
	case ModeWhole:
		return "whole"
	case ModeStream:
		return "stream"
	default:
		return "unknown"
	}
}

// Response is the outcome of a successful Send. Exactly one of Text (ModeWhole)
// or Stream (ModeStream) is meaningful. The caller owns Stream and must Close it.
type Response struct {
	Mode   Mode
	Text   string
	Stream *Stream
}
