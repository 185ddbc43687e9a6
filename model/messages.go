package model

import "farchat/chatapi"

// Every chat message carries the TurnID it belongs to so late arrivals from an
// earlier turn are dropped.

// ChatReplyMsg delivers a whole-payload reply.
type ChatReplyMsg struct {
	TurnID string
	Text   string
}

// StreamOpenedMsg hands over a streamed reply before its first fragment is read.
type StreamOpenedMsg struct {
	TurnID string
	Stream *chatapi.Stream
}

type StreamChunkMsg struct {
	TurnID string
	Chunk  string
}

type StreamDoneMsg struct {
	TurnID string
}

type StreamErrorMsg struct {
	TurnID string
	Err    error
}

type MarkdownRenderedMsg struct {
	MessageIndex int
	Content      string
	Rendered     string
}

type ClipboardCopiedMsg struct {
	Chars int
	Err   error
}
