package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (m Model) renderLogs() string {
	if m.logs == nil {
		return m.theme.Styles().MutedText.Render("Logging to memory is disabled.")
	}
	return m.logViewport.View()
}

// updateLogViewport pulls new lines from the ring when it has changed.
func (m *Model) updateLogViewport() {
	if m.logs == nil {
		return
	}
	version := m.logs.Version()
	if version == m.logVersion && m.logViewport.TotalLineCount() > 0 {
		return
	}
	m.logVersion = version

	lines := m.logs.Lines()
	styled := make([]string, len(lines))
	for i, line := range lines {
		styled[i] = m.colorizeLogLine(line)
	}
	m.logViewport.SetContent(strings.Join(styled, "\n"))
	if m.logFollow {
		m.logViewport.GotoBottom()
	}
}

// colorizeLogLine tints slog text output by its level attribute.
func (m Model) colorizeLogLine(line string) string {
	styles := m.theme.Styles()
	var style lipgloss.Style
	switch {
	case strings.Contains(line, "level=ERROR"):
		style = styles.DangerText
	case strings.Contains(line, "level=WARN"):
		style = styles.WarningText
	case strings.Contains(line, "level=DEBUG"):
		style = styles.FaintText
	default:
		style = styles.Text
	}
	return style.Render(line)
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Bottom):
		m.logFollow = true
		m.logViewport.GotoBottom()
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.logFollow = false
		m.logViewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Escape):
		m.switchView(ViewGallery)
		return m, nil
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	m.logFollow = m.logViewport.AtBottom()
	return m, cmd
}
