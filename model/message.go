package model

import (
	"time"

	"farchat/chatapi"
)

const (
	RoleUser      = chatapi.RoleUser
	RoleAssistant = chatapi.RoleAssistant
)

// Message represents a chat message in the transcript
type Message struct {
	Role      string
	Content   string // Raw text as sent or received
	Rendered  string // Display form; markdown-rendered once a reply is complete
	Timestamp time.Time
}

func newMessage(role, content string) Message {
	return Message{
		Role:      role,
		Content:   content,
		Rendered:  content,
		Timestamp: time.Now(),
	}
}

// Attachment is a spreadsheet the user picked. Only its location is kept.
type Attachment struct {
	Name string
	Path string
}
