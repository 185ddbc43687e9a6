package ui

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	markdown "github.com/MichaelMure/go-term-markdown"
	tea "github.com/charmbracelet/bubbletea"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
	"github.com/mattn/go-runewidth"

	"farchat/config"
	appmodel "farchat/model"
)

// Pre-compiled regex patterns
var (
	inlineCodeRegex = regexp.MustCompile(`(?s)\x1b\[44;3m(.*?)\x1b\[0m`)
	mdLinkRegex     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
	urlRegex        = regexp.MustCompile(`(https?://[^\s]+)`)
)

const (
	codeBar     = "┃"
	streamGlyph = "▋"
)

func (a *AppView) updateViewportContent(gotoBottom bool) {
	session := a.dataModel.Session

	if len(session.Transcript) == 0 {
		a.viewport.SetContent(DimStyle.Render("No messages yet. Toggle functions, attach a spreadsheet, and ask away."))
		return
	}

	streaming := session.StreamingIndex()

	var content strings.Builder
	for i, msg := range session.Transcript {
		timestamp := DimStyle.Render(msg.Timestamp.Format("[15:04]"))

		if msg.Role == appmodel.RoleUser {
			content.WriteString(formatUserMessage(timestamp, UserStyle.Render("You"), msg.Rendered))
			continue
		}

		body := msg.Rendered
		if i == streaming {
			body = msg.Content + streamGlyph
		}
		content.WriteString(fmt.Sprintf("%s %s\n%s\n\n", timestamp, AssistantStyle.Render("Assistant"), body))
	}

	// Waiting for the first fragment (or a whole reply)
	if session.Waiting && !session.Streaming() {
		content.WriteString(fmt.Sprintf("%s %s\n", a.loadingSpinner.View(), DimStyle.Render("Thinking...")))
	}

	a.viewport.SetContent(content.String())
	if gotoBottom {
		a.viewport.GotoBottom()
	}
}

func formatUserMessage(timestamp, role, content string) string {
	greenBold := "\x1b[32;1m"
	reset := "\x1b[0m"
	bar := greenBold + "┃" + reset

	var result strings.Builder
	result.WriteString(fmt.Sprintf("%s %s %s\n", bar, timestamp, role))
	for _, line := range strings.Split(content, "\n") {
		result.WriteString(fmt.Sprintf("%s %s\n", bar, line))
	}
	result.WriteString("\n")

	return result.String()
}

// renderFunctionBar draws one checkbox per catalog function followed by FAR.
func (a AppView) renderFunctionBar() string {
	session := a.dataModel.Session

	parts := make([]string, 0, len(session.Catalog)+1)
	for _, name := range session.Catalog {
		on := session.IsSelected(name)
		style := UncheckedStyle
		if on {
			style = CheckedStyle
		}
		parts = append(parts, style.Render(checkbox(on)+" "+name))
	}

	farStyle := UncheckedStyle
	if session.UseFAR {
		farStyle = CheckedStyle
	}
	bar := strings.Join(parts, "  ") + "   " + farStyle.Render(checkbox(session.UseFAR)+" Function Augmented Reasoning (FAR)")

	return bar
}

// statusText is the plain status bar content before styling.
func (a AppView) statusText() string {
	session := a.dataModel.Session
	kb := a.keys()

	var parts []string
	if session.Attachment != nil {
		parts = append(parts, "Attached: "+session.Attachment.Name)
	} else {
		parts = append(parts, "No attachment")
	}

	if session.Waiting {
		parts = append(parts, "Waiting for reply")
	} else {
		parts = append(parts, "Enter Send")
	}

	parts = append(parts,
		kb.DisplayActionKey("attach_file")+" Attach",
		kb.DisplayActionKey("function_picker")+" Functions",
		kb.DisplayActionKey("help")+" Help",
		kb.DisplayActionKey("quit")+" Quit",
	)

	return strings.Join(parts, "  ")
}

func (a AppView) renderStatusBar() string {
	text := a.statusText()

	var note string
	switch {
	case a.statusNote != "":
		note = a.statusNote
	case a.dataModel.ShowErrors() && a.dataModel.LastError != nil:
		note = "Error: " + a.dataModel.LastError.Error()
	}

	width := a.width
	if width <= 0 {
		width = 80
	}

	if note == "" {
		return StatusStyle.Render(truncateWidth(text, width))
	}

	// The note takes priority; the key hints give way first
	note = truncateWidth(note, width)
	remaining := width - runewidth.StringWidth(note) - 2
	rendered := ErrorNoteStyle.Render(note)
	if remaining > 0 {
		rendered = StatusStyle.Render(truncateWidth(text, remaining)) + "  " + rendered
	}
	return rendered
}

func postProcessMarkdown(rendered string, width int) string {
	rendered = fixInlineCode(rendered)
	rendered = fixMarkdownLinks(rendered)
	return frameCodeBlocks(rendered, width)
}

// preprocessLinks strips [text](url) down to url so every link renders the same way.
func preprocessLinks(content string) string {
	return mdLinkRegex.ReplaceAllString(content, "$2")
}

// fixInlineCode swaps the blue-background inline code style for red text.
func fixInlineCode(s string) string {
	return inlineCodeRegex.ReplaceAllString(s, "\x1b[31m$1\x1b[0m")
}

func fixMarkdownLinks(s string) string {
	redColor := "\x1b[31m"
	reset := "\x1b[0m"

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		// Code block lines keep their own highlighting
		if !strings.Contains(line, codeBar) {
			lines[i] = urlRegex.ReplaceAllString(line, redColor+"$1"+reset)
		}
	}
	return strings.Join(lines, "\n")
}

// frameCodeBlocks replaces the per-line bar of rendered code blocks with a
// horizontal rule above and below the block.
func frameCodeBlocks(s string, width int) string {
	ruleWidth := width - 4
	if ruleWidth < 8 {
		ruleWidth = 8
	}

	darkGray := "\x1b[90m"
	reset := "\x1b[0m"
	label := "[code]"
	leftLen := (ruleWidth - len(label)) / 2
	rightLen := ruleWidth - len(label) - leftLen
	topRule := darkGray + strings.Repeat("━", leftLen) + reset + label + darkGray + strings.Repeat("━", rightLen) + reset
	bottomRule := darkGray + strings.Repeat("━", ruleWidth) + reset

	var result []string
	inCodeBlock := false
	for _, line := range strings.Split(s, "\n") {
		if strings.Contains(line, codeBar) {
			if !inCodeBlock {
				inCodeBlock = true
				result = append(result, "", topRule, "")
			}
			result = append(result, stripCodeBlockPrefix(line))
			continue
		}
		if inCodeBlock {
			result = append(result, "", bottomRule, "")
			inCodeBlock = false
		}
		result = append(result, line)
	}
	if inCodeBlock {
		result = append(result, "", bottomRule, "")
	}

	return strings.Join(result, "\n")
}

func stripCodeBlockPrefix(line string) string {
	idx := strings.Index(line, codeBar)
	if idx < 0 {
		return line
	}
	after := idx + len(codeBar)
	if after < len(line) && line[after] == ' ' {
		after++
	}
	return line[after:]
}

// renderMarkdown renders content for a terminal of the given width.
func renderMarkdown(content string, width int) string {
	if width < 20 {
		width = 20
	}

	content = preprocessLinks(content)

	// Autolink off: plain URLs stay plain so the terminal can detect them
	ext := markdown.Extensions() &^ parser.Autolink
	p := parser.NewWithExtensions(ext)
	r := markdown.NewRenderer(width-4, 0)
	doc := p.Parse([]byte(content))
	rendered := gomarkdown.Render(doc, r)

	return strings.TrimRight(postProcessMarkdown(string(rendered), width), "\n")
}

func (a AppView) renderMarkdownAsync(messageIndex int, content string) tea.Cmd {
	width := a.width
	return func() tea.Msg {
		start := time.Now()
		rendered := renderMarkdown(content, width)
		if config.DebugLog != nil {
			config.DebugLog.Debugw("Markdown rendered", "message", messageIndex, "chars", len(content), "took", time.Since(start))
		}
		return markdownRenderedMsg{
			MessageIndex: messageIndex,
			Content:      content,
			Rendered:     rendered,
		}
	}
}
