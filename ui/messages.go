package ui

import (
	"farchat/model"
)

type Message = model.Message

// Message type aliases - these are defined in the model package
type chatReplyMsg = model.ChatReplyMsg
type streamOpenedMsg = model.StreamOpenedMsg
type streamChunkMsg = model.StreamChunkMsg
type streamDoneMsg = model.StreamDoneMsg
type streamErrorMsg = model.StreamErrorMsg
type markdownRenderedMsg = model.MarkdownRenderedMsg
type clipboardCopiedMsg = model.ClipboardCopiedMsg
