package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var modalStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color(ColorTitle)).
	Padding(1, 2)

// viewModal renders the blocking prompt overlay. The background view
// is replaced rather than dimmed; bubbletea redraws it on answer.
func (m *Model) viewModal() string {
	var b strings.Builder

	switch m.modal.kind {
	case promptError:
		b.WriteString(errorStyle.Render("Error"))
		b.WriteString("\n\n")
		b.WriteString(m.modal.message)
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("press enter to continue"))
	default:
		b.WriteString(titleStyle.Render("Confirm"))
		b.WriteString("\n\n")
		b.WriteString(m.modal.message)
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("y: yes • n: no"))
	}

	box := modalStyle.Render(b.String())
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}
