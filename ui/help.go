package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"farchat/config"
)

func (a AppView) renderHelpModal(width, height int) string {
	kb := a.keys()

	green := lipgloss.NewStyle().
		Bold(true).
		Foreground(successColor)

	title := green.Render("farchat - Keyboard Shortcuts")

	blue := lipgloss.NewStyle().Foreground(accentColor)

	functionsTitle := blue.Render("## Functions")
	functionLines := []string{functionsTitle}
	for i, name := range a.dataModel.Session.Catalog {
		k := kb.FunctionToggleKey(i)
		if k == "" {
			break
		}
		functionLines = append(functionLines, fmt.Sprintf("• %-13s Toggle %s", config.DisplayKey(k), name))
	}
	functionLines = append(functionLines,
		fmt.Sprintf("• %-13s Toggle FAR", kb.DisplayActionKey("toggle_far")),
		fmt.Sprintf("• %-13s Function picker", kb.DisplayActionKey("function_picker")),
	)
	functions := lipgloss.JoinVertical(lipgloss.Left, functionLines...)

	chatActions := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Chat Actions"),
		"• Enter         Send message",
		"• Alt+Enter     New line",
		fmt.Sprintf("• %-13s Attach .xlsx file", kb.DisplayActionKey("attach_file")),
		fmt.Sprintf("• %-13s Remove attachment", kb.DisplayActionKey("clear_attachment")),
		fmt.Sprintf("• %-13s Copy last reply", kb.DisplayActionKey("yank_last_reply")),
		fmt.Sprintf("• %-13s Clear input", kb.DisplayActionKey("clear_input")),
		fmt.Sprintf("• %-13s Toggle this help", kb.DisplayActionKey("help")),
		fmt.Sprintf("• %-13s About", kb.DisplayActionKey("about")),
		fmt.Sprintf("• %-13s Quit", kb.DisplayActionKey("quit")),
	)

	navigation := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Chat Navigation"),
		fmt.Sprintf("• %-13s Scroll down 1 line", kb.DisplayActionKey("scroll_down")),
		fmt.Sprintf("• %-13s Scroll up 1 line", kb.DisplayActionKey("scroll_up")),
		fmt.Sprintf("• %-13s Half page down", kb.DisplayActionKey("half_page_down")),
		fmt.Sprintf("• %-13s Half page up", kb.DisplayActionKey("half_page_up")),
		fmt.Sprintf("• %-13s Jump to top", kb.DisplayActionKey("scroll_to_top")),
		fmt.Sprintf("• %-13s Jump to bottom", kb.DisplayActionKey("scroll_to_bottom")),
	)

	column1 := lipgloss.JoinVertical(lipgloss.Left, functions, "", navigation)
	column2 := chatActions

	columnStyle := lipgloss.NewStyle().Width(42).PaddingLeft(4)

	twoColumns := lipgloss.JoinHorizontal(
		lipgloss.Top,
		columnStyle.Render(column1),
		"  ",
		columnStyle.Render(column2),
	)

	footer := lipgloss.NewStyle().
		Foreground(dimColor).
		Render(fmt.Sprintf("Press %s or Esc to close this help", kb.DisplayActionKey("help")))

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		twoColumns,
		"",
		footer,
	)

	boxWidth := 96
	if width-4 < boxWidth {
		boxWidth = width - 4
	}

	helpBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(1, 2).
		Width(boxWidth)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		helpBox.Render(content),
	)
}
