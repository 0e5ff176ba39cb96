package ui

import (
	"fmt"

	"portwatch/pkg/logging"
	"portwatch/pkg/policy"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

// handlePortsKey handles keys in the live ports view.
func (m *Model) handlePortsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case ShortcutOpen:
		m.openSelected()
		return m, nil
	case ShortcutCopy:
		m.copySelected()
		return m, nil
	case ShortcutIgnore:
		m.toggleIgnoreSelected()
		return m, nil
	}

	var cmd tea.Cmd
	m.portsTable, cmd = m.portsTable.Update(msg)
	return m, cmd
}

func (m *Model) openSelected() {
	row, ok := m.selectedRow()
	if !ok {
		return
	}
	if row.URL == "" {
		m.errorMsg = fmt.Sprintf("Port %d has no URL to open", row.Port.Number)
		return
	}
	if err := (BrowserOpener{}).OpenExternal(row.URL); err != nil {
		m.errorMsg = fmt.Sprintf("Error opening URL: %v", err)
		return
	}
	m.statusMsg = fmt.Sprintf("Opened %s", row.URL)
}

func (m *Model) copySelected() {
	row, ok := m.selectedRow()
	if !ok {
		return
	}
	if row.URL == "" {
		m.errorMsg = fmt.Sprintf("Port %d has no URL to copy", row.Port.Number)
		return
	}
	if err := clipboard.WriteAll(row.URL); err != nil {
		m.errorMsg = fmt.Sprintf("Error copying URL to clipboard: %v", err)
		return
	}
	m.statusMsg = fmt.Sprintf("Copied %s to clipboard", row.URL)
}

// toggleIgnoreSelected remembers (or forgets) an ignore decision for
// the selected port so future opens stay quiet.
func (m *Model) toggleIgnoreSelected() {
	row, ok := m.selectedRow()
	if !ok {
		return
	}
	if m.deps.Store == nil {
		m.errorMsg = "Decision store unavailable"
		return
	}

	if _, remembered := m.deps.Store.Decision(row.Port.Number); remembered {
		if err := m.deps.Store.ClearDecision(row.Port.Number); err != nil {
			m.errorMsg = fmt.Sprintf("Error clearing decision: %v", err)
			return
		}
		logging.LogInfo("Cleared remembered decision for port %d", row.Port.Number)
		m.statusMsg = fmt.Sprintf("Port %d will prompt again", row.Port.Number)
	} else {
		if err := m.deps.Store.SetDecision(row.Port.Number, policy.DecisionIgnore); err != nil {
			m.errorMsg = fmt.Sprintf("Error saving decision: %v", err)
			return
		}
		logging.LogInfo("Remembered ignore for port %d", row.Port.Number)
		m.statusMsg = fmt.Sprintf("Port %d ignored from now on", row.Port.Number)
	}
	m.refreshTable()
}
