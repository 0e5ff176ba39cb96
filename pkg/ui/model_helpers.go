package ui

import (
	"fmt"
	"strconv"
	"strings"

	"portwatch/pkg/netstat"

	"github.com/charmbracelet/bubbles/table"
)

// refreshTable rebuilds the ports table from the watcher's last sample
// and the currently active redirects.
func (m *Model) refreshTable() {
	var ports []netstat.Port
	if m.deps.Watcher != nil {
		ports = m.deps.Watcher.Known()
	}

	rows := make([]PortRow, 0, len(ports))
	for _, p := range ports {
		rows = append(rows, m.buildRow(p))
	}

	filter := strings.ToLower(strings.TrimSpace(m.filterInput.Value()))
	if filter != "" {
		filtered := rows[:0]
		for _, r := range rows {
			if rowMatches(r, filter) {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}

	m.rows = rows

	tableRows := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, table.Row{
			strconv.Itoa(r.Port.Number),
			r.Port.Interface,
			r.Server,
			r.URL,
			r.Status,
		})
	}

	cursor := m.portsTable.Cursor()
	m.portsTable.SetRows(tableRows)
	if cursor >= len(tableRows) && len(tableRows) > 0 {
		m.portsTable.SetCursor(len(tableRows) - 1)
	}
}

// buildRow resolves one listening port against the registry, the
// remembered decisions and the active redirects.
func (m *Model) buildRow(p netstat.Port) PortRow {
	row := PortRow{Port: p}

	if m.deps.Redirector != nil && m.deps.Redirector.IsActive(p.Number) {
		for _, a := range m.deps.Redirector.Active() {
			if a.LocalPort == p.Number {
				row.Server = a.Entry.Name
				row.URL = a.Entry.URL
				row.Status = fmt.Sprintf("%s -> :%d", StatusRedirected, a.TargetPort)
				return row
			}
		}
	}

	if m.deps.Registry != nil {
		if wp, ok := m.deps.Registry.Lookup(p.Number); ok {
			row.Server = wp.Name
			row.URL = wp.URL
			row.Status = StatusDeclared
		} else if m.deps.Registry.IsRedirectPort(p.Number) {
			row.Status = StatusReserved
		}
	}

	if row.Status == "" {
		if !netstat.IsWildcard(p.Interface) {
			row.Status = StatusInternal
		} else {
			row.Status = StatusUndeclared
		}
	}

	if m.deps.Store != nil {
		if _, ok := m.deps.Store.Decision(p.Number); ok {
			row.Status = StatusIgnored
		}
	}

	return row
}

func rowMatches(r PortRow, filter string) bool {
	fields := []string{
		strconv.Itoa(r.Port.Number),
		r.Port.Interface,
		r.Server,
		r.URL,
		r.Status,
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), filter) {
			return true
		}
	}
	return false
}

// refreshHistory reloads the redirect history table from the store.
func (m *Model) refreshHistory() {
	if m.deps.Store == nil {
		m.historyTable.SetRows([]table.Row{})
		return
	}

	records, err := m.deps.Store.RedirectHistory()
	if err != nil {
		m.errorMsg = fmt.Sprintf("Error loading redirect history: %v", err)
		return
	}

	rows := make([]table.Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, table.Row{
			strconv.Itoa(rec.LocalPort),
			strconv.Itoa(rec.TargetPort),
			rec.URL,
			rec.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	m.historyTable.SetRows(rows)
}

// selectedRow returns the row under the cursor, if any.
func (m *Model) selectedRow() (PortRow, bool) {
	cursor := m.portsTable.Cursor()
	if cursor < 0 || cursor >= len(m.rows) {
		return PortRow{}, false
	}
	return m.rows[cursor], true
}

// updateTableSizes recalculates table dimensions from the terminal
// size.
func (m *Model) updateTableSizes() {
	m.portsTable.SetColumns(m.calculateColumnWidths())

	height := m.height - PortsViewOffset
	height = max(height, MinTableHeight)
	m.portsTable.SetHeight(height)
	m.historyTable.SetHeight(height)
}
