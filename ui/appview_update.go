package ui

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"farchat/config"
	appmodel "farchat/model"
)

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	// The file picker needs its directory listings; keys go through handleFilePickerKey
	if a.filePicker.Active {
		if _, isKey := msg.(tea.KeyMsg); !isKey {
			a.filePicker.Picker, cmd = a.filePicker.Picker.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

		viewportHeight := a.height - chromeHeight
		if viewportHeight < 1 {
			viewportHeight = 1
		}
		a.viewport.Width = a.width
		a.viewport.Height = viewportHeight
		a.textarea.SetWidth(a.width)

		a.ready = true
		a.updateViewportContent(true)
		return a, tea.Batch(cmds...)

	case spinner.TickMsg:
		// Only keep ticking while a turn is waiting
		if !a.dataModel.Waiting() {
			return a, tea.Batch(cmds...)
		}
		a.loadingSpinner, cmd = a.loadingSpinner.Update(msg)
		a.updateViewportContent(true)
		return a, tea.Batch(append(cmds, cmd)...)

	case tea.KeyMsg:
		m, keyCmd := a.handleKey(msg)
		return m, tea.Batch(append(cmds, keyCmd)...)

	case markdownRenderedMsg:
		a.dataModel.Session = a.dataModel.Session.SetRendered(msg.MessageIndex, msg.Content, msg.Rendered)
		a.updateViewportContent(!a.userScrolledUp())
		return a, tea.Batch(cmds...)

	case clipboardCopiedMsg:
		if msg.Err != nil {
			a.statusNote = "Copy failed: " + msg.Err.Error()
			if config.DebugLog != nil {
				config.DebugLog.Warnw("Clipboard write failed", "error", msg.Err)
			}
		} else {
			a.statusNote = fmt.Sprintf("Copied %d characters", msg.Chars)
		}
		return a, tea.Batch(cmds...)
	}

	// Turn messages: replies, stream fragments, completion and failure
	wasWaiting := a.dataModel.Waiting()
	if handled, chatCmd := a.dataModel.HandleChatMsg(msg); handled {
		cmds = append(cmds, chatCmd)
		if wasWaiting && !a.dataModel.Waiting() {
			cmds = append(cmds, a.renderLastReply())
		}
		a.updateViewportContent(true)
		return a, tea.Batch(cmds...)
	}

	return a, tea.Batch(cmds...)
}

// renderLastReply schedules markdown rendering of a just-finished reply.
func (a AppView) renderLastReply() tea.Cmd {
	transcript := a.dataModel.Session.Transcript
	if len(transcript) == 0 {
		return nil
	}
	last := len(transcript) - 1
	if transcript[last].Role != appmodel.RoleAssistant {
		return nil
	}
	return a.renderMarkdownAsync(last, transcript[last].Content)
}

func (a AppView) userScrolledUp() bool {
	return !a.viewport.AtBottom()
}

func (a AppView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kb := a.keys()
	key := msg.String()

	if key == "ctrl+c" {
		return a.quit()
	}

	a.statusNote = ""

	// Modal layers take every key while open
	if a.showNotice {
		switch key {
		case kb.GetActionKey("acknowledge_modal"), kb.GetActionKey("close_modal"):
			a.showNotice = false
		}
		return a, nil
	}

	if a.showHelp {
		switch key {
		case kb.GetActionKey("help"), kb.GetActionKey("close_modal"):
			a.showHelp = false
		case kb.GetActionKey("quit"):
			return a.quit()
		}
		return a, nil
	}

	if a.showAbout {
		switch key {
		case kb.GetActionKey("about"), kb.GetActionKey("close_modal"):
			a.showAbout = false
		case kb.GetActionKey("quit"):
			return a.quit()
		}
		return a, nil
	}

	if a.filePicker.Active {
		return a.handleFilePickerKey(msg)
	}

	if a.functionPicker.active {
		return a.handleFunctionPickerKey(msg)
	}

	for i, name := range a.dataModel.Session.Catalog {
		if k := kb.FunctionToggleKey(i); k != "" && key == k {
			a.toggleFunction(name)
			return a, nil
		}
	}

	switch key {
	case kb.GetActionKey("quit"):
		return a.quit()

	case kb.GetActionKey("help"):
		a.showHelp = true
		return a, nil

	case kb.GetActionKey("about"):
		a.showAbout = true
		return a, nil

	case kb.GetActionKey("toggle_far"):
		a.dataModel.Session = a.dataModel.Session.ToggleFAR()
		return a, nil

	case kb.GetActionKey("function_picker"):
		cmd := a.functionPicker.open(a.dataModel.Session.Catalog)
		return a, cmd

	case kb.GetActionKey("attach_file"):
		cmd := a.filePicker.Activate()
		return a, cmd

	case kb.GetActionKey("clear_attachment"):
		a.dataModel.Session = a.dataModel.Session.ClearAttachment()
		return a, nil

	case kb.GetActionKey("yank_last_reply"):
		reply, ok := a.dataModel.Session.LastReply()
		if !ok {
			a.statusNote = "Nothing to copy yet"
			return a, nil
		}
		return a, copyToClipboard(reply)

	case kb.GetActionKey("clear_input"):
		a.textarea.Reset()
		return a, nil

	case kb.GetActionKey("scroll_down"):
		a.viewport.LineDown(1)
		return a, nil

	case kb.GetActionKey("scroll_up"):
		a.viewport.LineUp(1)
		return a, nil

	case kb.GetActionKey("half_page_down"):
		a.viewport.HalfPageDown()
		return a, nil

	case kb.GetActionKey("half_page_up"):
		a.viewport.HalfPageUp()
		return a, nil

	case kb.GetActionKey("scroll_to_top"):
		a.viewport.GotoTop()
		return a, nil

	case kb.GetActionKey("scroll_to_bottom"):
		a.viewport.GotoBottom()
		return a, nil

	case "enter":
		return a.submit()
	}

	var cmd tea.Cmd
	a.textarea, cmd = a.textarea.Update(msg)
	return a, cmd
}

// submit sends the input box contents. Blank input and input typed while a
// turn is waiting stay in the box.
func (a AppView) submit() (tea.Model, tea.Cmd) {
	if a.dataModel.Waiting() {
		return a, nil
	}

	cmd := a.dataModel.Submit(a.textarea.Value())
	if cmd == nil {
		return a, nil
	}

	a.textarea.Reset()
	a.updateViewportContent(true)
	return a, tea.Batch(cmd, a.loadingSpinner.Tick)
}

func (a *AppView) toggleFunction(name string) {
	a.dataModel.Session = a.dataModel.Session.ToggleFunction(name)
}

func (a AppView) handleFilePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == a.keys().GetActionKey("close_modal") {
		a.filePicker.Reset()
		return a, nil
	}

	var cmd tea.Cmd
	a.filePicker.Picker, cmd = a.filePicker.Picker.Update(msg)

	if didSelect, path := a.filePicker.Picker.DidSelectFile(msg); didSelect {
		return a.attach(path), cmd
	}
	if didSelect, path := a.filePicker.Picker.DidSelectDisabledFile(msg); didSelect {
		return a.attach(path), cmd
	}

	return a, cmd
}

// attach records path as the attachment. A rejected file resets the picker
// and raises a notice the user has to acknowledge.
func (a AppView) attach(path string) AppView {
	a.filePicker.Reset()

	next, err := a.dataModel.Session.Attach(path)
	a.dataModel.Session = next
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Infow("Attachment rejected", "path", path, "error", err)
		}
		if errors.Is(err, appmodel.ErrUnsupportedAttachment) {
			a.openNotice("Unsupported File", "Please select an Excel (.xlsx) file.")
		} else {
			a.openNotice("Attachment Failed", err.Error())
		}
		return a
	}

	if config.DebugLog != nil {
		config.DebugLog.Debugw("Attachment set", "name", next.Attachment.Name)
	}
	return a
}

func (a AppView) quit() (tea.Model, tea.Cmd) {
	a.closeAllModals()
	a.dataModel.Shutdown()
	return a, tea.Quit
}

func copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		err := clipboard.WriteAll(text)
		return clipboardCopiedMsg{Chars: len([]rune(text)), Err: err}
	}
}
