package ui

import (
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"farchat/config"
	appmodel "farchat/model"
)

// Rows taken by everything except the viewport: title, separator, function
// bar, textarea (3) and status bar.
const chromeHeight = 7

type AppView struct {
	// Reference to core data model
	dataModel *appmodel.Model

	// UI Components
	viewport viewport.Model
	textarea textarea.Model

	// Window state
	width  int
	height int
	ready  bool

	showHelp  bool
	showAbout bool

	// Spinner shown while a turn waits for its first fragment
	loadingSpinner spinner.Model

	filePicker     FilePickerState
	functionPicker functionPickerState

	// Blocking notice; Enter or Esc dismisses it
	showNotice    bool
	noticeTitle   string
	noticeMessage string

	// Transient status bar note (e.g. clipboard result), cleared on the next key press
	statusNote string
}

func NewAppView(dataModel *appmodel.Model) AppView {
	ta := textarea.New()
	ta.Placeholder = "Ask about your spreadsheet..."
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(80)

	// Alt+Enter for newline, Enter alone sends (handled in Update)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))

	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = AssistantStyle

	return AppView{
		dataModel:      dataModel,
		viewport:       viewport.New(0, 0),
		textarea:       ta,
		loadingSpinner: sp,
		filePicker:     NewAttachmentPicker(""),
		functionPicker: newFunctionPicker(),
	}
}

func (a AppView) Init() tea.Cmd {
	// Markdown rendering waits for WindowSizeMsg to learn the width
	return textarea.Blink
}

// keys returns the configured keybindings, or the defaults when none are loaded.
func (a AppView) keys() *config.KeyBindingsConfig {
	if a.dataModel.Config != nil && a.dataModel.Config.Keybindings != nil {
		return a.dataModel.Config.Keybindings
	}
	return config.DefaultKeybindings()
}

func (a AppView) View() string {
	if !a.ready {
		return "Loading farchat..."
	}

	// Modal layers, top to bottom: notice, help, about, file picker, function picker
	if a.showNotice {
		return RenderAcknowledgeModal(a.noticeTitle, a.noticeMessage, ModalTypeWarning, a.width, a.height)
	}

	if a.showHelp {
		return a.renderHelpModal(a.width, a.height)
	}

	if a.showAbout {
		return a.renderAboutModal(a.width, a.height)
	}

	if a.filePicker.Active {
		return RenderFilePickerModal(a.filePicker, a.width, a.height)
	}

	if a.functionPicker.active {
		return a.renderFunctionPicker(a.width, a.height)
	}

	title := TitleStyle.Render("farchat")
	if a.dataModel.Version != "" {
		title += DimStyle.Render(" v" + a.dataModel.Version)
	}
	title += DimStyle.Render(" | " + a.endpointHost())

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		"",
		a.viewport.View(),
		a.renderFunctionBar(),
		a.textarea.View(),
		a.renderStatusBar(),
	)
}

// endpointHost is the host[:port] of the chat endpoint, for display.
func (a AppView) endpointHost() string {
	if a.dataModel.Backend == nil {
		return "offline"
	}
	endpoint := a.dataModel.Backend.Endpoint()
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		return u.Host
	}
	return strings.TrimSpace(endpoint)
}

func (a *AppView) openNotice(title, message string) {
	a.showNotice = true
	a.noticeTitle = title
	a.noticeMessage = message
}

func (a *AppView) closeAllModals() {
	a.showNotice = false
	a.showHelp = false
	a.showAbout = false
	a.filePicker.Reset()
	a.functionPicker.close()
}
