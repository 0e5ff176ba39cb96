package ui

import (
	"fmt"
	"strings"
)

func (m *Model) viewHistory() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Redirect History"))
	b.WriteString("\n")
	b.WriteString(m.historyTable.View())
	b.WriteString("\n")

	if m.errorMsg != "" {
		b.WriteString(errorStyle.Render(m.errorMsg))
		b.WriteString("\n")
	}

	help := fmt.Sprintf("%s/esc: back • q: quit", ShortcutHistory)
	b.WriteString(helpStyle.Render(help))

	return b.String()
}
