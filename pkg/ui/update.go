package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages and updates the model accordingly
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateTableSizes()
		return m, nil

	case promptRequestMsg:
		m.enqueuePrompt(msg.req)
		return m, nil

	case tickMsg:
		m.refreshTable()
		if m.uiState == StateHistory {
			m.refreshHistory()
		}
		return m, tickCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// enqueuePrompt admits a policy-engine request: modal prompts take the
// overlay one at a time, notifications take the notification line.
func (m *Model) enqueuePrompt(req *promptRequest) {
	switch req.kind {
	case promptNotify:
		if m.notify == nil {
			m.notify = req
		} else {
			m.notifyQueue = append(m.notifyQueue, req)
		}
	default:
		if m.modal == nil {
			m.modal = req
		} else {
			m.modalQueue = append(m.modalQueue, req)
		}
	}
}

// answerModal delivers the answer and advances the queue.
func (m *Model) answerModal(answer bool) {
	if m.modal == nil {
		return
	}
	m.modal.reply <- answer
	m.modal = nil
	if len(m.modalQueue) > 0 {
		m.modal = m.modalQueue[0]
		m.modalQueue = m.modalQueue[1:]
	}
}

// answerNotify delivers the notification answer and advances the queue.
func (m *Model) answerNotify(answer bool) {
	if m.notify == nil {
		return
	}
	m.notify.reply <- answer
	m.notify = nil
	if len(m.notifyQueue) > 0 {
		m.notify = m.notifyQueue[0]
		m.notifyQueue = m.notifyQueue[1:]
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A modal prompt swallows all keys until answered.
	if m.modal != nil {
		switch m.modal.kind {
		case promptConfirm:
			switch msg.String() {
			case "y", "Y", "enter":
				m.answerModal(true)
			case "n", "N", "esc":
				m.answerModal(false)
			}
		case promptError:
			switch msg.String() {
			case "enter", "esc", " ":
				m.answerModal(true)
			}
		}
		return m, nil
	}

	// Clear transient messages on any keypress.
	m.errorMsg = ""
	m.statusMsg = ""

	// Notification line: accept or dismiss without leaving the table.
	if m.notify != nil {
		switch msg.String() {
		case "y", "Y":
			m.answerNotify(true)
			return m, nil
		case "x", "X":
			m.answerNotify(false)
			return m, nil
		}
	}

	if m.filterMode {
		return m.handleFilterKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "/":
		if m.uiState == StatePorts {
			m.filterMode = true
			m.filterInput.Focus()
			return m, nil
		}
	case ShortcutHistory:
		if m.uiState == StatePorts {
			m.uiState = StateHistory
			m.refreshHistory()
		} else {
			m.uiState = StatePorts
		}
		return m, nil
	case "esc":
		if m.uiState == StateHistory {
			m.uiState = StatePorts
			return m, nil
		}
		if m.filterInput.Value() != "" {
			m.filterInput.SetValue("")
			m.refreshTable()
			return m, nil
		}
	}

	switch m.uiState {
	case StatePorts:
		return m.handlePortsKey(msg)
	case StateHistory:
		var cmd tea.Cmd
		m.historyTable, cmd = m.historyTable.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filterMode = false
		m.filterInput.Blur()
		return m, nil
	case "esc":
		m.filterMode = false
		m.filterInput.Blur()
		m.filterInput.SetValue("")
		m.refreshTable()
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.refreshTable()
	return m, cmd
}
