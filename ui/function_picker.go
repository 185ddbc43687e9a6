package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// functionPickerState is the fuzzy-filtered list of catalog functions.
// matches holds catalog indices in display order.
type functionPickerState struct {
	active  bool
	filter  textinput.Model
	matches []int
	cursor  int
}

func newFunctionPicker() functionPickerState {
	filter := textinput.New()
	filter.Prompt = "Filter: "
	filter.CharLimit = 64
	return functionPickerState{filter: filter}
}

func (p *functionPickerState) open(catalog []string) tea.Cmd {
	p.active = true
	p.cursor = 0
	p.filter.SetValue("")
	p.applyFilter(catalog)
	p.filter.Focus()
	return textinput.Blink
}

func (p *functionPickerState) close() {
	p.active = false
	p.filter.Blur()
}

func (p *functionPickerState) applyFilter(catalog []string) {
	value := p.filter.Value()
	p.matches = p.matches[:0]
	if value == "" {
		for i := range catalog {
			p.matches = append(p.matches, i)
		}
	} else {
		for _, match := range fuzzy.Find(value, catalog) {
			p.matches = append(p.matches, match.Index)
		}
	}
	if p.cursor >= len(p.matches) {
		p.cursor = len(p.matches) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

// current returns the catalog index under the cursor, or -1.
func (p functionPickerState) current() int {
	if p.cursor < 0 || p.cursor >= len(p.matches) {
		return -1
	}
	return p.matches[p.cursor]
}

func (a AppView) handleFunctionPickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kb := a.keys()
	catalog := a.dataModel.Session.Catalog

	switch msg.String() {
	case kb.GetActionKey("close_modal"), kb.GetActionKey("function_picker"):
		a.functionPicker.close()
		return a, nil
	case kb.GetActionKey("picker_down"), "ctrl+n":
		if a.functionPicker.cursor < len(a.functionPicker.matches)-1 {
			a.functionPicker.cursor++
		}
		return a, nil
	case kb.GetActionKey("picker_up"), "ctrl+p":
		if a.functionPicker.cursor > 0 {
			a.functionPicker.cursor--
		}
		return a, nil
	case kb.GetActionKey("picker_toggle"), "enter":
		if i := a.functionPicker.current(); i >= 0 {
			a.toggleFunction(catalog[i])
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.functionPicker.filter, cmd = a.functionPicker.filter.Update(msg)
	a.functionPicker.applyFilter(catalog)
	return a, cmd
}

func (a AppView) renderFunctionPicker(width, height int) string {
	modalWidth := 50
	catalog := a.dataModel.Session.Catalog

	lineStyle := lipgloss.NewStyle().Width(modalWidth)

	lines := []string{lineStyle.Render("  " + a.functionPicker.filter.View()), ""}
	if len(a.functionPicker.matches) == 0 {
		lines = append(lines, lineStyle.Render(DimStyle.Render("  No matching functions")))
	}
	for row, i := range a.functionPicker.matches {
		name := catalog[i]
		on := a.dataModel.Session.IsSelected(name)
		text := fmt.Sprintf("%s %s", checkbox(on), name)

		style := UncheckedStyle
		if on {
			style = CheckedStyle
		}
		prefix := "  "
		if row == a.functionPicker.cursor {
			prefix = SelectedStyle.Render("> ")
		}
		lines = append(lines, lineStyle.Render(prefix+style.Render(text)))
	}

	footer := FormatFooter("↑/↓", "Navigate", "Space", "Toggle", "Esc", "Close")
	return RenderThreeSectionModal("Functions", lines, footer, ModalTypeInfo, modalWidth, width, height)
}
