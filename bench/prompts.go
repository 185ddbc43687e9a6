package bench

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// DefaultPrompts are row statistics questions over the financial model
// spreadsheet the chat service is usually given.
var DefaultPrompts = []string{
	"What is the average of row 11 Total COGS?",
	"What is the sum of row 11 Total COGS?",
	"What is the average of row 23 Net Income?",
	"What is the sum of row 23 Net Income?",
	"What is the average of row 29 EBITDA?",
	"What is the sum of row 29 EBITDA?",
	"What is the average of row 27 D&A?",
	"What is the sum of row 27 D&A?",
	"What is the average of row 38 Deferred Revenue?",
	"What is the sum of row 38 Deferred Revenue?",
	"What is the average of row 39 Deferred Taxes?",
	"What is the sum of row 39 Deferred Taxes?",
	"What is the correlation between row 12 Gross Profit and row 13 R&D?",
	"What is the correlation between row 12 Gross Profit and row 14 S&M?",
	"What is the correlation between row 12 Gross Profit and row 16 Operating Expenses?",
	"What is the correlation between row 34 Net Income and row 39 Deferred Taxes?",
	"What is the correlation between row 34 Net Income and row 37 SBC?",
	"What is the correlation between row 50 Capex and row 51 M&A?",
}

// LoadPrompts reads one prompt per line. Blank lines and lines starting with
// '#' are skipped.
func LoadPrompts(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open prompts file: %w", err)
	}
	defer f.Close()

	var prompts []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		prompts = append(prompts, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}
	if len(prompts) == 0 {
		return nil, fmt.Errorf("prompts file %s has no prompts", path)
	}
	return prompts, nil
}

// LoadContext reads the text placed ahead of every prompt, usually a
// spreadsheet dumped to plain text.
func LoadContext(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read context file: %w", err)
	}
	return string(data), nil
}

// BuildPrompt joins the context and the question the way the model saw them
// when the prompt list was written: context, newline, question.
func BuildPrompt(context, prompt string) string {
	if context == "" {
		return prompt
	}
	return context + "\n" + prompt
}
