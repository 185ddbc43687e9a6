package ui

import (
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// stripANSI removes ANSI color codes for width calculations
func stripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// wrapLines word-wraps text to maxWidth display cells. Explicit newlines are kept.
// Words wider than maxWidth are placed on their own line and truncated.
func wrapLines(text string, maxWidth int) []string {
	if maxWidth < 1 {
		maxWidth = 1
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		var current strings.Builder
		currentWidth := 0
		for _, word := range words {
			w := runewidth.StringWidth(word)
			if w > maxWidth {
				word = runewidth.Truncate(word, maxWidth, "…")
				w = runewidth.StringWidth(word)
			}
			if currentWidth > 0 && currentWidth+1+w > maxWidth {
				lines = append(lines, current.String())
				current.Reset()
				currentWidth = 0
			}
			if currentWidth > 0 {
				current.WriteByte(' ')
				currentWidth++
			}
			current.WriteString(word)
			currentWidth += w
		}
		lines = append(lines, current.String())
	}
	return lines
}

// truncateWidth cuts s to width display cells, marking the cut with an ellipsis.
func truncateWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}
