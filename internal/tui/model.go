package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/studiowebux/reqshot/internal/capture"
	"github.com/studiowebux/reqshot/internal/config"
	"github.com/studiowebux/reqshot/internal/keybinds"
	"github.com/studiowebux/reqshot/internal/redact"
	"github.com/studiowebux/reqshot/internal/search"
)

// Mode represents the current TUI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeFind
	ModeSave
	ModeHelp
)

// Pane identifies one of the two message panes
type Pane int

const (
	PaneRequest Pane = iota
	PaneResponse
)

func paneOf(id search.BufferID) Pane {
	if id == search.Response {
		return PaneResponse
	}
	return PaneRequest
}

// snapshot is one undo step: both buffers before an edit
type snapshot struct {
	label    string
	request  string
	response string
}

// Model represents the TUI state
type Model struct {
	// Core state
	exchange capture.Exchange
	request  string // displayed request text
	response string // displayed response text
	session  search.Session
	history  []snapshot
	redactor *redact.Redactor
	keybinds *keybinds.Registry
	settings *config.Settings
	log      zerolog.Logger
	mode     Mode

	// settingsPath is where toggles and the last export dir are persisted;
	// empty disables persistence
	settingsPath string

	// Views
	requestView  viewport.Model
	responseView viewport.Model
	helpView     viewport.Model
	findInput    textinput.Model
	pathInput    textinput.Model
	focusedPane  Pane

	// UI state
	width     int
	height    int
	wrap      bool
	theme     string
	statusMsg string
	errorMsg  string

	// writeClipboard is swapped out in tests
	writeClipboard func(string) error
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateViewport()
		m.updatePanes()

	case clearStatusMsg:
		if msg.text == m.statusMsg {
			m.statusMsg = ""
		}

	case errorMsg:
		m.errorMsg = string(msg)
		m.statusMsg = ""
	}

	return m, cmd
}

func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	switch m.mode {
	case ModeHelp:
		return m.renderHelp()
	default:
		return m.renderMain()
	}
}

// Request returns the displayed request text
func (m Model) Request() string {
	return m.request
}

// Response returns the displayed response text
func (m Model) Response() string {
	return m.response
}

// Session returns the active search session
func (m Model) Session() search.Session {
	return m.session
}

type clearStatusMsg struct {
	text string
}

type errorMsg string
