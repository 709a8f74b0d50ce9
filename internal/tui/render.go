package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/studiowebux/reqshot/internal/keybinds"
	"github.com/studiowebux/reqshot/internal/search"
)

// Adaptive color definitions; the theme toggle flips which side applies
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"}
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"}
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"}
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"}
	colorText   = lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"}
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleMatch = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#ffe680", Dark: "#5f5f00"}).
			Foreground(colorText)

	styleCurrentMatch = lipgloss.NewStyle().
				Bold(true).
				Background(lipgloss.AdaptiveColor{Light: "#ff9f1a", Dark: "#d75f00"}).
				Foreground(colorText)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)
)

// paneWidth is the lipgloss width of each pane box, excluding borders
func (m Model) paneWidth() int {
	return max(10, (m.width-2*ViewportBorderWidth)/2)
}

// paneHeight is the lipgloss height of each pane box, excluding borders
func (m Model) paneHeight() int {
	return max(3, m.height-ChromeLines-ViewportBorderWidth)
}

// updateViewport sizes the viewports to the window
func (m *Model) updateViewport() {
	// MUST match the box sizes in renderMain
	width := m.paneWidth() - ViewportPaddingHorizontal
	height := m.paneHeight() - PaneTitleLines

	m.requestView.Width = width
	m.requestView.Height = height
	m.responseView.Width = width
	m.responseView.Height = height

	m.helpView.Width = max(10, m.width-HelpWidthMargin)
	m.helpView.Height = max(3, m.height-HelpHeightMargin)
}

// updatePanes re-renders both buffers into their viewports, keeping the
// scroll position
func (m *Model) updatePanes() {
	m.setPaneContent(&m.requestView, m.decorate(search.Request, m.request))
	m.setPaneContent(&m.responseView, m.decorate(search.Response, m.response))
}

func (m *Model) setPaneContent(view *viewport.Model, content string) {
	offset := view.YOffset
	if m.wrap {
		content = softWrap(content, view.Width)
	}
	view.SetContent(content)
	view.SetYOffset(offset)
}

// decorate styles the matches of one buffer, the current match stronger
// than the rest. Carriage returns are dropped for display only.
func (m Model) decorate(id search.BufferID, text string) string {
	var sb strings.Builder
	last := 0

	for i, match := range m.session.Matches {
		if match.Buffer != id || match.Start < last || match.End > len(text) {
			continue
		}
		style := styleMatch
		if i == m.session.Cursor {
			style = styleCurrentMatch
		}
		sb.WriteString(text[last:match.Start])
		sb.WriteString(renderLines(style, text[match.Start:match.End]))
		last = match.End
	}
	sb.WriteString(text[last:])

	return strings.ReplaceAll(sb.String(), "\r", "")
}

// renderLines styles each line of s separately so lipgloss does not pad
// the span into a block
func renderLines(style lipgloss.Style, s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

// softWrap breaks at word boundaries first and hard-wraps what still
// overflows
func softWrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	return wrap.String(wordwrap.String(text, width), width)
}

// matchLine returns the display line holding byte offset of text
func matchLine(text string, offset, width int, wrapped bool) int {
	before := strings.ReplaceAll(text[:min(offset, len(text))], "\r", "")
	if wrapped {
		before = softWrap(before, width)
	}
	return strings.Count(before, "\n")
}

// renderMain renders the URL bar, both panes and the bottom bar
func (m Model) renderMain() string {
	urlBar := m.renderURLBar()
	request := m.renderPane(PaneRequest, "Request", m.requestView.View())
	response := m.renderPane(PaneResponse, "Response", m.responseView.View())

	panes := lipgloss.JoinHorizontal(lipgloss.Top, request, response)

	var bottom string
	switch m.mode {
	case ModeFind:
		bottom = m.renderFindBar()
	case ModeSave:
		bottom = m.pathInput.View()
	default:
		bottom = m.renderStatusBar()
	}

	return lipgloss.JoinVertical(lipgloss.Left, urlBar, panes, bottom)
}

// renderURLBar shows the exchange URL on the left and the response length
// on the right
func (m Model) renderURLBar() string {
	left := styleTitle.Render("URL: ") + m.exchange.URL
	right := styleSubtle.Render(fmt.Sprintf("Length: %d bytes", len(m.response)))
	return spread(left, right, m.width)
}

func (m Model) renderPane(pane Pane, title, body string) string {
	borderColor := colorGray
	if m.focusedPane == pane {
		borderColor = colorGreen
	}

	content := lipgloss.JoinVertical(lipgloss.Left, styleTitle.Render(title), body)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(m.paneWidth()).
		Height(m.paneHeight()).
		Render(content)
}

// renderFindBar shows the query input and the i/N counter
func (m Model) renderFindBar() string {
	counter := m.session.Counter()
	if m.session.Query != "" && m.session.Len() == 0 {
		counter = styleError.Render(counter)
	} else {
		counter = styleWarning.Render(counter)
	}
	return spread(m.findInput.View(), counter, m.width)
}

// renderStatusBar renders the status bar at the bottom
func (m Model) renderStatusBar() string {
	left := styleSubtle.Render(m.modeLabel())

	right := ""
	if m.session.Len() > 0 {
		right = styleWarning.Render(fmt.Sprintf("%q %s | ", m.session.Query, m.session.Counter()))
	}

	switch {
	case m.errorMsg != "":
		right += styleError.Render(m.errorMsg)
	case m.statusMsg != "":
		right += styleSuccess.Render(m.statusMsg)
	default:
		right += styleSubtle.Render(fmt.Sprintf("%s find | %s redact | %s help | %s quit",
			m.keybinds.GetBindingString(keybinds.ContextNormal, keybinds.ActionOpenFind),
			m.keybinds.GetBindingString(keybinds.ContextNormal, keybinds.ActionAutoRedact),
			m.keybinds.GetBindingString(keybinds.ContextNormal, keybinds.ActionToggleHelp),
			m.keybinds.GetBindingString(keybinds.ContextNormal, keybinds.ActionQuit)))
	}

	return spread(left, right, m.width)
}

// modeLabel summarises wrap, theme and undo depth
func (m Model) modeLabel() string {
	wrapLabel := "nowrap"
	if m.wrap {
		wrapLabel = "wrap"
	}
	label := fmt.Sprintf("%s · %s", wrapLabel, m.theme)
	if n := len(m.history); n > 0 {
		label += fmt.Sprintf(" · %d edit(s)", n)
	}
	return label
}

// spread places left and right at the edges of a line of width
func spread(left, right string, width int) string {
	spacing := width - lipgloss.Width(left) - lipgloss.Width(right)
	if spacing < 1 {
		spacing = 1
	}
	return left + strings.Repeat(" ", spacing) + right
}

// updateHelpView lists the effective bindings grouped by context
func (m *Model) updateHelpView() {
	var sb strings.Builder

	for _, context := range []keybinds.Context{keybinds.ContextNormal, keybinds.ContextFind} {
		sb.WriteString(styleTitle.Render(strings.ToUpper(string(context))))
		sb.WriteString("\n")

		for _, b := range m.keybinds.ListBindings(context) {
			info := keybinds.GetActionInfo(b.Action)
			fmt.Fprintf(&sb, "  %-12s %-10s %s\n", b.Key, info.Category, info.Description)
		}
		sb.WriteString("\n")
	}

	m.helpView.SetContent(sb.String())
	m.helpView.GotoTop()
}

// renderHelp renders the keybinding reference
func (m Model) renderHelp() string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorCyan).
		Padding(0, 1).
		Render(m.helpView.View())

	footer := styleSubtle.Render("esc or ? to close")
	return lipgloss.JoinVertical(lipgloss.Left, styleTitle.Render("Keybindings"), box, footer)
}
