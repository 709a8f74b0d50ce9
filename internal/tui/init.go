package tui

import (
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/studiowebux/reqshot/internal/capture"
	"github.com/studiowebux/reqshot/internal/config"
	"github.com/studiowebux/reqshot/internal/keybinds"
	"github.com/studiowebux/reqshot/internal/message"
	"github.com/studiowebux/reqshot/internal/redact"
	"github.com/studiowebux/reqshot/internal/search"
)

// Options configures a new inspector
type Options struct {
	// Settings supplies theme, wrap and export directory. Defaults apply when nil.
	Settings *config.Settings

	// SettingsPath receives setting changes made in the TUI
	SettingsPath string

	// Keybinds defaults to keybinds.NewDefaultRegistry()
	Keybinds *keybinds.Registry

	// Redactor defaults to redact.Default()
	Redactor *redact.Redactor

	Logger zerolog.Logger
}

// New creates a new TUI model showing ex with both bodies reformatted
func New(ex capture.Exchange, opts Options) Model {
	settings := opts.Settings
	if settings == nil {
		settings = config.DefaultSettings()
	}
	registry := opts.Keybinds
	if registry == nil {
		registry = keybinds.NewDefaultRegistry()
	}
	redactor := opts.Redactor
	if redactor == nil {
		redactor = redact.Default()
	}

	formatter := message.NewFormatter(opts.Logger)

	findInput := textinput.New()
	findInput.Prompt = "Find: "
	findInput.Placeholder = "literal text"
	findInput.CharLimit = FindCharLimit

	pathInput := textinput.New()
	pathInput.Prompt = "Save to: "
	pathInput.CharLimit = PathCharLimit

	m := Model{
		exchange:       ex,
		request:        formatter.Format(ex.Request),
		response:       formatter.Format(ex.Response),
		session:        search.Search(search.Buffers{}, ""),
		redactor:       redactor,
		keybinds:       registry,
		settings:       settings,
		settingsPath:   opts.SettingsPath,
		log:            opts.Logger,
		mode:           ModeNormal,
		requestView:    viewport.New(80, 20),
		responseView:   viewport.New(80, 20),
		helpView:       viewport.New(80, 20),
		findInput:      findInput,
		pathInput:      pathInput,
		focusedPane:    PaneRequest,
		wrap:           settings.Wrap,
		theme:          settings.Theme,
		writeClipboard: clipboard.WriteAll,
	}
	m.applyTheme()

	m.log.Debug().
		Str("url", ex.URL).
		Int("requestBytes", len(m.request)).
		Int("responseBytes", len(m.response)).
		Msg("inspector opened")

	return m
}

// Run starts the TUI
func Run(ex capture.Exchange, opts Options) error {
	m := New(ex, opts)

	// Start TUI (pass pointer since Update uses pointer receiver)
	p := tea.NewProgram(&m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}

	return nil
}

// applyTheme points lipgloss' adaptive colours at the chosen theme
func (m *Model) applyTheme() {
	lipgloss.SetHasDarkBackground(m.theme != "light")
}
