package testutil

import "farchat/chatapi"

// TestTranscript returns a short finished exchange followed by a new user turn.
func TestTranscript() []chatapi.Message {
	return []chatapi.Message{
		{Role: chatapi.RoleUser, Content: "What is the sum of row 11 Total COGS?"},
		{Role: chatapi.RoleAssistant, Content: "The sum is 1,204."},
		{Role: chatapi.RoleUser, Content: "And the average?"},
	}
}

// TestCatalog is the default function catalog.
func TestCatalog() []string {
	return []string{"Sum", "Average", "LinearRegression"}
}
