package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorTitle)).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorHelp))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorError)).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorStatus))

	notifyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorNotify)).
			Bold(true)
)

// View renders the UI based on the current state
func (m *Model) View() string {
	if m.modal != nil {
		return m.viewModal()
	}

	switch m.uiState {
	case StateHistory:
		return m.viewHistory()
	default:
		return m.viewPorts()
	}
}

func (m *Model) viewPorts() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Workspace Ports"))
	b.WriteString("\n")

	if m.filterMode || m.filterInput.Value() != "" {
		b.WriteString(fmt.Sprintf("Filter: %s\n", m.filterInput.View()))
	}

	b.WriteString(m.portsTable.View())
	b.WriteString("\n")

	if line := m.feedbackLine(); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}

	help := fmt.Sprintf("%s: open url • %s: copy url • %s: ignore/unignore • %s: history • /: filter • q: quit",
		ShortcutOpen, ShortcutCopy, ShortcutIgnore, ShortcutHistory)
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

// feedbackLine renders the single transient line below the table:
// pending notification first, then error, then status.
func (m *Model) feedbackLine() string {
	if m.notify != nil {
		return notifyStyle.Render(fmt.Sprintf("%s  [y: %s / x: dismiss]", m.notify.message, m.notify.action))
	}
	if m.errorMsg != "" {
		return errorStyle.Render(m.errorMsg)
	}
	if m.statusMsg != "" {
		return statusStyle.Render(m.statusMsg)
	}
	return ""
}
