package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/reqshot/internal/keybinds"
)

// handleKeyPress routes key presses based on current mode
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	// Global keys (work in all modes)
	if action, ok := m.keybinds.Match(keybinds.ContextGlobal, msg.String()); ok && action == keybinds.ActionQuitForce {
		return tea.Quit
	}

	// Mode-specific handling
	switch m.mode {
	case ModeFind:
		return m.handleFindKeys(msg)
	case ModeSave:
		return m.handleSaveKeys(msg)
	case ModeHelp:
		return m.handleHelpKeys(msg)
	default:
		return m.handleNormalKeys(msg)
	}
}

func (m *Model) handleNormalKeys(msg tea.KeyMsg) tea.Cmd {
	// Match key to action using keybinds registry
	action, ok, partial := m.keybinds.MatchMultiKey(keybinds.ContextNormal, msg.String())
	if partial || !ok {
		return nil
	}

	m.errorMsg = ""

	switch action {
	case keybinds.ActionQuit, keybinds.ActionQuitForce:
		return tea.Quit

	case keybinds.ActionScrollUp:
		m.activeView().LineUp(1)
	case keybinds.ActionScrollDown:
		m.activeView().LineDown(1)
	case keybinds.ActionPageUp:
		m.activeView().ViewUp()
	case keybinds.ActionPageDown:
		m.activeView().ViewDown()
	case keybinds.ActionGoToTop:
		m.activeView().GotoTop()
	case keybinds.ActionGoToBottom:
		m.activeView().GotoBottom()

	case keybinds.ActionSwitchPane:
		if m.focusedPane == PaneRequest {
			m.focusedPane = PaneResponse
		} else {
			m.focusedPane = PaneRequest
		}
		m.updatePanes()

	case keybinds.ActionOpenFind:
		m.mode = ModeFind
		return m.findInput.Focus()

	case keybinds.ActionSearchNext:
		return m.nextMatch()
	case keybinds.ActionSearchPrevious:
		return m.previousMatch()

	case keybinds.ActionAutoRedact:
		return m.autoRedact()
	case keybinds.ActionMaskMatch:
		return m.maskMatch()
	case keybinds.ActionRemoveMatch:
		return m.removeMatch()
	case keybinds.ActionUndo:
		return m.undo()

	case keybinds.ActionCopyRequest:
		return m.copyText("Request", m.request)
	case keybinds.ActionCopyResponse:
		return m.copyText("Response", m.response)
	case keybinds.ActionCopyURL:
		return m.copyText("URL", m.exchange.URL)

	case keybinds.ActionToggleWrap:
		return m.toggleWrap()
	case keybinds.ActionToggleTheme:
		return m.toggleTheme()
	case keybinds.ActionToggleHelp:
		m.mode = ModeHelp
		m.updateHelpView()

	case keybinds.ActionSaveSnapshot:
		return m.openSavePrompt()
	}

	return nil
}

// handleFindKeys handles keys while the find bar has focus. Keys without
// a binding edit the query, and every edit reruns the search.
func (m *Model) handleFindKeys(msg tea.KeyMsg) tea.Cmd {
	if action, ok := m.keybinds.Match(keybinds.ContextFind, msg.String()); ok {
		switch action {
		case keybinds.ActionCloseFind:
			m.mode = ModeNormal
			m.findInput.Blur()
			return nil
		case keybinds.ActionSearchNext:
			return m.nextMatch()
		case keybinds.ActionSearchPrevious:
			return m.previousMatch()
		}
	}

	before := m.findInput.Value()
	var cmd tea.Cmd
	m.findInput, cmd = m.findInput.Update(msg)
	if m.findInput.Value() != before {
		m.runSearch()
	}
	return cmd
}

// handleSaveKeys handles the export directory prompt
func (m *Model) handleSaveKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
		m.pathInput.Blur()
		return nil
	case "enter":
		m.mode = ModeNormal
		m.pathInput.Blur()
		return m.saveSnapshot(m.pathInput.Value())
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return cmd
}

// handleHelpKeys scrolls the help view; the help toggle, quit and esc close it
func (m *Model) handleHelpKeys(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "esc" {
		m.mode = ModeNormal
		return nil
	}
	if action, ok := m.keybinds.Match(keybinds.ContextNormal, msg.String()); ok {
		switch action {
		case keybinds.ActionToggleHelp, keybinds.ActionQuit:
			m.mode = ModeNormal
			return nil
		case keybinds.ActionScrollUp:
			m.helpView.LineUp(1)
			return nil
		case keybinds.ActionScrollDown:
			m.helpView.LineDown(1)
			return nil
		}
	}

	var cmd tea.Cmd
	m.helpView, cmd = m.helpView.Update(msg)
	return cmd
}
