package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var catalog = []string{"Sum", "Average", "LinearRegression"}

func TestSubmitBlankInputIsNoOp(t *testing.T) {
	for _, input := range []string{"", " ", "\t\n  ", " "} {
		s := NewSession(catalog, false)
		next, req := s.Submit(input)
		assert.Nil(t, req, "input %q", input)
		assert.Empty(t, next.Transcript)
		assert.False(t, next.Waiting)
	}
}

func TestSubmitAppendsUserMessageAndClearsAttachment(t *testing.T) {
	s := NewSession(catalog, true)
	s, err := s.Attach("/tmp/model.xlsx")
	require.NoError(t, err)

	next, req := s.Submit("  What is the sum of row 11?  ")
	require.NotNil(t, req)

	require.Len(t, next.Transcript, 1)
	assert.Equal(t, RoleUser, next.Transcript[0].Role)
	assert.Equal(t, "  What is the sum of row 11?  ", next.Transcript[0].Content, "content is sent as typed")
	assert.True(t, next.Waiting)
	assert.Nil(t, next.Attachment)

	require.Len(t, req.Messages, 1)
	assert.Equal(t, next.Transcript[0].Content, req.Messages[0].Content)
	assert.True(t, req.UseFAR)
	assert.Equal(t, []string{}, req.Functions)

	// the earlier state is untouched
	assert.Empty(t, s.Transcript)
	assert.NotNil(t, s.Attachment)
}

func TestSubmitRefusedWhileWaiting(t *testing.T) {
	s, req := NewSession(catalog, false).Submit("first")
	require.NotNil(t, req)

	next, req := s.Submit("second")
	assert.Nil(t, req)
	assert.Len(t, next.Transcript, 1)
}

func TestRequestCarriesSelectionInOrder(t *testing.T) {
	s := NewSession(catalog, false)
	s = s.ToggleFunction("Sum").ToggleFunction("Average").SetFAR(true)

	_, req := s.Submit("go")
	require.NotNil(t, req)
	assert.Equal(t, []string{"Sum", "Average"}, req.Functions)
	assert.True(t, req.UseFAR)

	s = NewSession(catalog, false).ToggleFunction("Average").ToggleFunction("Sum")
	_, req = s.Submit("go")
	assert.Equal(t, []string{"Average", "Sum"}, req.Functions)
}

func TestToggleFunctionIsInvolution(t *testing.T) {
	start := NewSession(catalog, false).ToggleFunction("LinearRegression")
	for _, name := range catalog {
		twice := start.ToggleFunction(name).ToggleFunction(name)
		assert.ElementsMatch(t, start.Selected, twice.Selected, "toggling %s twice", name)
	}
}

func TestToggleFunctionIgnoresUnknownNames(t *testing.T) {
	s := NewSession(catalog, false).ToggleFunction("Median")
	assert.Empty(t, s.Selected)
	assert.False(t, s.IsSelected("Median"))
}

func TestToggleFunctionDoesNotAliasEarlierState(t *testing.T) {
	a := NewSession(catalog, false).ToggleFunction("Sum").ToggleFunction("Average")
	b := a.ToggleFunction("Sum")
	c := a.ToggleFunction("LinearRegression")

	assert.Equal(t, []string{"Sum", "Average"}, a.Selected)
	assert.Equal(t, []string{"Average"}, b.Selected)
	assert.Equal(t, []string{"Sum", "Average", "LinearRegression"}, c.Selected)
}

func TestToggleFAR(t *testing.T) {
	s := NewSession(catalog, false)
	assert.True(t, s.ToggleFAR().UseFAR)
	assert.False(t, s.ToggleFAR().ToggleFAR().UseFAR)
	assert.Empty(t, s.ToggleFAR().Selected, "FAR is independent of the selection")
}

func TestStreamingReconciliation(t *testing.T) {
	s, _ := NewSession(catalog, false).Submit("hi")

	want := []string{"Hel", "Hello", "Hello world"}
	for i, chunk := range []string{"Hel", "lo", " world"} {
		s = s.ApplyChunk(chunk)
		require.Len(t, s.Transcript, 2, "exactly one assistant message after chunk %d", i)
		last := s.Transcript[1]
		assert.Equal(t, RoleAssistant, last.Role)
		assert.Equal(t, want[i], last.Content)
		assert.Equal(t, 1, s.StreamingIndex())
		assert.True(t, s.Waiting)
	}

	s = s.Complete()
	assert.False(t, s.Waiting)
	assert.False(t, s.Streaming())
	assert.Equal(t, "Hello world", s.Transcript[1].Content)
}

func TestStreamingRepeatedFragments(t *testing.T) {
	// identical accumulator states must not confuse reconciliation
	s, _ := NewSession(catalog, false).Submit("echo")
	for _, chunk := range []string{"ab", "", "ab", "", "ab"} {
		s = s.ApplyChunk(chunk)
	}
	require.Len(t, s.Transcript, 2)
	assert.Equal(t, "ababab", s.Transcript[1].Content)
}

func TestStreamingSecondTurnDoesNotTouchFirstReply(t *testing.T) {
	s, _ := NewSession(catalog, false).Submit("one")
	s = s.ApplyChunk("same").Complete()

	s, _ = s.Submit("two")
	s = s.ApplyChunk("same").ApplyChunk(" again").Complete()

	require.Len(t, s.Transcript, 4)
	assert.Equal(t, "same", s.Transcript[1].Content)
	assert.Equal(t, "same again", s.Transcript[3].Content)
}

func TestApplyChunkIgnoredWhenIdle(t *testing.T) {
	s := NewSession(catalog, false).ApplyChunk("stray")
	assert.Empty(t, s.Transcript)
}

func TestApplyReply(t *testing.T) {
	s, _ := NewSession(catalog, false).Submit("hi")
	s = s.ApplyReply("hello")
	require.Len(t, s.Transcript, 2)
	assert.Equal(t, "hello", s.Transcript[1].Content)
	assert.False(t, s.Waiting)

	// a late duplicate is ignored once idle
	s = s.ApplyReply("late")
	assert.Len(t, s.Transcript, 2)
}

func TestFailKeepsUserMessage(t *testing.T) {
	s, _ := NewSession(catalog, false).Submit("hi")
	s = s.Fail()
	require.Len(t, s.Transcript, 1)
	assert.Equal(t, RoleUser, s.Transcript[0].Role)
	assert.False(t, s.Waiting)
}

func TestFailDropsPartialReply(t *testing.T) {
	s, _ := NewSession(catalog, false).Submit("hi")
	s = s.ApplyChunk("Hal").ApplyChunk("f")
	require.Len(t, s.Transcript, 2)

	s = s.Fail()
	require.Len(t, s.Transcript, 1)
	assert.Equal(t, "hi", s.Transcript[0].Content)
	assert.False(t, s.Streaming())
}

func TestAttach(t *testing.T) {
	s, err := NewSession(catalog, false).Attach("/home/me/data.xlsx")
	require.NoError(t, err)
	require.NotNil(t, s.Attachment)
	assert.Equal(t, "data.xlsx", s.Attachment.Name)
	assert.Equal(t, "/home/me/data.xlsx", s.Attachment.Path)

	s, err = s.Attach("/home/me/data.csv")
	assert.True(t, errors.Is(err, ErrUnsupportedAttachment))
	assert.Nil(t, s.Attachment, "rejection clears the previous attachment")
}

func TestAttachSuffixIsCaseSensitive(t *testing.T) {
	for _, path := range []string{"DATA.XLSX", "data.Xlsx", "data.xlsx.bak", "data.xls", ""} {
		s, err := NewSession(catalog, false).Attach(path)
		assert.ErrorIs(t, err, ErrUnsupportedAttachment, path)
		assert.Nil(t, s.Attachment)
	}
}

func TestClearAttachment(t *testing.T) {
	s, _ := NewSession(catalog, false).Attach("a.xlsx")
	assert.Nil(t, s.ClearAttachment().Attachment)
}

func TestSetRendered(t *testing.T) {
	s, _ := NewSession(catalog, false).Submit("hi")
	s = s.ApplyReply("**bold**")

	updated := s.SetRendered(1, "**bold**", "BOLD")
	assert.Equal(t, "BOLD", updated.Transcript[1].Rendered)
	assert.Equal(t, "**bold**", s.Transcript[1].Rendered, "earlier state untouched")

	stale := s.SetRendered(1, "something else", "X")
	assert.Equal(t, "**bold**", stale.Transcript[1].Rendered)

	assert.Equal(t, s, s.SetRendered(7, "x", "y"))
}

func TestLastReply(t *testing.T) {
	s := NewSession(catalog, false)
	_, ok := s.LastReply()
	assert.False(t, ok)

	s, _ = s.Submit("hi")
	s = s.ApplyReply("first")
	s, _ = s.Submit("again")
	s = s.ApplyReply("second")

	reply, ok := s.LastReply()
	assert.True(t, ok)
	assert.Equal(t, "second", reply)
}

func TestZeroValueSessionIsUsable(t *testing.T) {
	var s Session
	assert.False(t, s.Streaming())
	assert.Equal(t, -1, s.StreamingIndex())

	s, req := s.Submit("hi")
	require.NotNil(t, req)
	s = s.ApplyChunk("x")
	assert.Equal(t, 1, s.StreamingIndex())
}
