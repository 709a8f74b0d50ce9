package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/reqshot/internal/config"
	"github.com/studiowebux/reqshot/internal/export"
	"github.com/studiowebux/reqshot/internal/redact"
	"github.com/studiowebux/reqshot/internal/search"
)

// activeView returns the viewport of the focused pane
func (m *Model) activeView() *viewport.Model {
	if m.focusedPane == PaneResponse {
		return &m.responseView
	}
	return &m.requestView
}

// buffers returns both displayed texts for the search engine
func (m *Model) buffers() search.Buffers {
	return search.Buffers{Request: m.request, Response: m.response}
}

// runSearch searches both panes for the find bar query and jumps to the
// first match
func (m *Model) runSearch() {
	m.session = search.Search(m.buffers(), m.findInput.Value())
	m.updatePanes()
	m.scrollToMatch()
}

// refreshSearch reruns the active query after an edit, keeping the cursor
// at the same index where the list still reaches it
func (m *Model) refreshSearch() {
	cursor := m.session.Cursor
	m.session = search.Search(m.buffers(), m.session.Query)
	if cursor >= 0 && m.session.Len() > 0 {
		m.session.Cursor = min(cursor, m.session.Len()-1)
	}
	m.updatePanes()
}

func (m *Model) nextMatch() tea.Cmd {
	if m.session.Len() == 0 {
		return m.setStatusMessage("No matches")
	}
	m.session = m.session.Advance()
	m.updatePanes()
	m.scrollToMatch()
	return nil
}

func (m *Model) previousMatch() tea.Cmd {
	if m.session.Len() == 0 {
		return m.setStatusMessage("No matches")
	}
	m.session = m.session.Retreat()
	m.updatePanes()
	m.scrollToMatch()
	return nil
}

// scrollToMatch focuses the pane holding the current match and centres the
// match line in it
func (m *Model) scrollToMatch() {
	match, ok := m.session.Current()
	if !ok {
		return
	}

	m.focusedPane = paneOf(match.Buffer)
	view := m.activeView()
	text := m.buffers().Text(match.Buffer)
	line := matchLine(text, match.Start, view.Width, m.wrap)
	view.SetYOffset(max(0, line-view.Height/2))
}

// edit replaces the displayed buffers, recording the previous state for undo
func (m *Model) edit(label, request, response string) {
	m.history = append(m.history, snapshot{label: label, request: m.request, response: m.response})
	m.request = request
	m.response = response
	m.refreshSearch()

	m.log.Debug().
		Str("edit", label).
		Int("undoDepth", len(m.history)).
		Msg("buffer edited")
}

// autoRedact masks Cookie and Authorization values in the request pane
func (m *Model) autoRedact() tea.Cmd {
	redacted, count := m.redactor.RedactCount(m.request)
	if redacted == m.request {
		return m.setStatusMessage("Nothing to redact")
	}

	m.edit("auto-redact", redacted, m.response)
	return m.setStatusMessage(fmt.Sprintf("Redacted %d header(s)", count))
}

// spanEdit applies fn to the buffer holding the current match
func (m *Model) spanEdit(label string, fn func(text string, start, end int) string) tea.Cmd {
	match, ok := m.session.Current()
	if !ok {
		return m.setStatusMessage("No current match")
	}

	request, response := m.request, m.response
	if match.Buffer == search.Response {
		response = fn(response, match.Start, match.End)
	} else {
		request = fn(request, match.Start, match.End)
	}

	m.edit(label, request, response)
	return m.setStatusMessage(fmt.Sprintf("%s in %s", strings.ToUpper(label[:1])+label[1:], match.Buffer))
}

// maskMatch blacks out the current match
func (m *Model) maskMatch() tea.Cmd {
	return m.spanEdit("masked match", redact.MaskSpan)
}

// removeMatch deletes the current match
func (m *Model) removeMatch() tea.Cmd {
	return m.spanEdit("removed match", redact.RemoveSpan)
}

// undo restores the buffers as they were before the last edit
func (m *Model) undo() tea.Cmd {
	if len(m.history) == 0 {
		return m.setStatusMessage("Nothing to undo")
	}

	last := m.history[len(m.history)-1]
	m.history = m.history[:len(m.history)-1]
	m.request = last.request
	m.response = last.response
	m.refreshSearch()

	return m.setStatusMessage("Undid " + last.label)
}

// copyText puts text on the system clipboard
func (m *Model) copyText(what, text string) tea.Cmd {
	if text == "" {
		return m.setStatusMessage(what + " is empty")
	}
	if err := m.writeClipboard(text); err != nil {
		m.log.Warn().Err(err).Str("what", what).Msg("clipboard write failed")
		return reportError(fmt.Errorf("failed to copy to clipboard: %w", err))
	}
	return m.setStatusMessage(what + " copied to clipboard")
}

func (m *Model) toggleWrap() tea.Cmd {
	m.wrap = !m.wrap
	m.settings.Wrap = m.wrap
	m.persistSettings()
	m.updatePanes()
	m.scrollToMatch()

	if m.wrap {
		return m.setStatusMessage("Wrap on")
	}
	return m.setStatusMessage("Wrap off")
}

func (m *Model) toggleTheme() tea.Cmd {
	if m.theme == "light" {
		m.theme = "dark"
	} else {
		m.theme = "light"
	}
	m.settings.Theme = m.theme
	m.applyTheme()
	m.persistSettings()
	m.updatePanes()

	return m.setStatusMessage("Theme: " + m.theme)
}

// openSavePrompt asks for the snapshot directory, starting from the last one used
func (m *Model) openSavePrompt() tea.Cmd {
	dir, err := m.settings.ResolveExportDir()
	if err != nil {
		dir = "."
	}
	m.pathInput.SetValue(dir)
	m.pathInput.CursorEnd()
	m.mode = ModeSave
	return m.pathInput.Focus()
}

// saveSnapshot writes both panes into dir and remembers dir for next time
func (m *Model) saveSnapshot(dir string) tea.Cmd {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = "."
	}

	path, err := export.Write(dir, export.Snapshot{
		URL:      m.exchange.URL,
		Request:  m.request,
		Response: m.response,
	})
	if err != nil {
		m.log.Error().Err(err).Str("dir", dir).Msg("snapshot export failed")
		return reportError(err)
	}

	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	m.settings.ExportDir = dir
	m.persistSettings()

	m.log.Info().Str("path", path).Msg("snapshot saved")
	return m.setStatusMessage("Saved " + path)
}

// persistSettings writes the settings back when a settings path is known
func (m *Model) persistSettings() {
	if m.settingsPath == "" {
		return
	}
	if err := config.SaveSettings(m.settingsPath, m.settings); err != nil {
		m.log.Warn().Err(err).Str("path", m.settingsPath).Msg("failed to save settings")
	}
}

// setStatusMessage shows text and clears it after StatusTimeout
func (m *Model) setStatusMessage(text string) tea.Cmd {
	m.statusMsg = text
	m.errorMsg = ""
	return tea.Tick(StatusTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{text: text}
	})
}

// reportError shows err in the status bar until the next action
func reportError(err error) tea.Cmd {
	return func() tea.Msg {
		return errorMsg(err.Error())
	}
}
