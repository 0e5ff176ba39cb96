package ui

import (
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"portwatch/pkg/config"
	"portwatch/pkg/logging"
	"portwatch/pkg/redirect"
	"portwatch/pkg/registry"
	"portwatch/pkg/watcher"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Deps are the collaborators the watch view renders and drives. They
// are constructed in main and passed in explicitly.
type Deps struct {
	Registry   *registry.Registry
	Pool       *redirect.Pool
	Redirector *redirect.Redirector
	Watcher    *watcher.PortWatcher
	Store      config.Store // may be nil
}

// Model represents the state of the UI
type Model struct {
	uiState UIState

	deps Deps

	width  int
	height int

	// Central error message
	errorMsg string
	// Status/info message (non-error feedback)
	statusMsg string

	// Ports table
	portsTable table.Model
	rows       []PortRow // parallel to the table rows

	// Filter state
	filterMode  bool
	filterInput textinput.Model

	// Redirect history table
	historyTable table.Model

	// Prompt overlay state: one modal at a time plus a queue, and the
	// current non-modal notification.
	modal       *promptRequest
	modalQueue  []*promptRequest
	notify      *promptRequest
	notifyQueue []*promptRequest
}

// NewModel builds the watch UI.
func NewModel(deps Deps) *Model {
	m := &Model{
		uiState: StatePorts,
		deps:    deps,
	}

	filterInput := textinput.New()
	filterInput.Placeholder = "type to filter ports..."
	filterInput.CharLimit = 50
	filterInput.Width = 30
	m.filterInput = filterInput

	m.portsTable = table.New(
		table.WithColumns(m.calculateColumnWidths()),
		table.WithRows([]table.Row{}),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	m.portsTable.SetStyles(tableStyles())

	m.historyTable = table.New(
		table.WithColumns(historyColumns()),
		table.WithRows([]table.Row{}),
		table.WithFocused(false),
		table.WithHeight(10),
	)
	m.historyTable.SetStyles(tableStyles())

	m.refreshTable()
	return m
}

// tableStyles is the shared look of both tables.
func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color(ColorSelectedFg)).
		Background(lipgloss.Color(ColorSelectedBg)).
		Bold(false)
	return s
}

// calculateColumnWidths returns column widths based on terminal width
func (m *Model) calculateColumnWidths() []table.Column {
	// Minimum widths for each column
	minWidths := map[string]int{
		ColPort:      5,  // "PORT"
		ColInterface: 10, // "INTERFACE"
		ColServer:    8,  // "SERVER"
		ColURL:       12, // "URL"
		ColStatus:    10, // "STATUS"
	}

	availableWidth := m.width - 10
	availableWidth = max(availableWidth, 55)

	totalMinWidth := 0
	for _, width := range minWidths {
		totalMinWidth += width
	}

	extraSpace := availableWidth - totalMinWidth
	extraSpace = max(extraSpace, 0)

	// Priority order for expanding columns (most important first)
	expandPriority := []string{ColURL, ColServer, ColInterface, ColStatus, ColPort}

	finalWidths := make(map[string]int)
	for col, minWidth := range minWidths {
		finalWidths[col] = minWidth
	}

	remainingSpace := extraSpace
	for _, col := range expandPriority {
		if remainingSpace <= 0 {
			break
		}

		var extraForCol int
		switch col {
		case ColURL:
			extraForCol = remainingSpace * 45 / 100
		case ColServer:
			extraForCol = remainingSpace * 25 / 100
		case ColInterface:
			extraForCol = remainingSpace * 15 / 100
		default:
			extraForCol = remainingSpace * 5 / 100
		}

		if extraForCol > remainingSpace {
			extraForCol = remainingSpace
		}

		finalWidths[col] += extraForCol
		remainingSpace -= extraForCol
	}

	return []table.Column{
		{Title: ColPort, Width: finalWidths[ColPort]},
		{Title: ColInterface, Width: finalWidths[ColInterface]},
		{Title: ColServer, Width: finalWidths[ColServer]},
		{Title: ColURL, Width: finalWidths[ColURL]},
		{Title: ColStatus, Width: finalWidths[ColStatus]},
	}
}

func historyColumns() []table.Column {
	return []table.Column{
		{Title: ColLocalPort, Width: 10},
		{Title: ColTargetPort, Width: 10},
		{Title: ColURL, Width: 40},
		{Title: ColCreatedAt, Width: 20},
	}
}

// Init starts the periodic refresh.
func (m *Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// Cleanup shuts the redirect listeners down on exit.
func (m *Model) Cleanup() {
	if m.deps.Redirector != nil {
		m.deps.Redirector.CloseAll()
	}
	if m.deps.Store != nil {
		if err := m.deps.Store.Close(); err != nil {
			logging.LogError("Closing store: %v", err)
		}
	}
}

// OpenInBrowser opens a URL with the platform's opener. It is also
// the policy engine's LinkOpener.
type BrowserOpener struct{}

func (BrowserOpener) OpenExternal(url string) error {
	logging.LogDebug("Opening URL in browser: %s", url)

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	return cmd.Run()
}
