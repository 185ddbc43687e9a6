package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var Features = []string{
	"Chat with a spreadsheet-aware backend",
	"Toggle Sum, Average and LinearRegression per turn",
	"Function Augmented Reasoning on demand",
	"Replies render as they stream in",
}

func (a AppView) renderAboutModal(width, height int) string {
	var sb strings.Builder

	titleStyle := lipgloss.NewStyle().
		Foreground(successColor).
		Bold(true)

	featureStyle := lipgloss.NewStyle().
		Foreground(dimColor)

	labelStyle := lipgloss.NewStyle().
		Foreground(accentColor).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(dimColor)

	sb.WriteString(titleStyle.Render("farchat"))
	sb.WriteString("\n\n")

	for _, feature := range Features {
		sb.WriteString(featureStyle.Render("• " + feature))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	rows := [][2]string{
		{"Version: ", a.dataModel.Version},
		{"License: ", a.dataModel.License},
		{"Endpoint: ", a.endpointURL()},
	}
	if a.dataModel.Config != nil {
		rows = append(rows, [2]string{"Data: ", a.dataModel.Config.DataDir()})
	}
	for _, row := range rows {
		sb.WriteString(labelStyle.Render(row[0]))
		sb.WriteString(valueStyle.Render(row[1]))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	sb.WriteString(featureStyle.Render(fmt.Sprintf("Press Esc or %s to close", a.keys().DisplayActionKey("about"))))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(1, 2)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, boxStyle.Render(sb.String()))
}

func (a AppView) endpointURL() string {
	if a.dataModel.Backend == nil {
		return "not configured"
	}
	return a.dataModel.Backend.Endpoint()
}
