package ui

// Table Column Titles
const (
	ColPort      = "PORT"
	ColInterface = "INTERFACE"
	ColServer    = "SERVER"
	ColURL       = "URL"
	ColStatus    = "STATUS"
)

// History table columns
const (
	ColLocalPort  = "REDIRECT"
	ColTargetPort = "TARGET"
	ColCreatedAt  = "CREATED"
)

// Keyboard shortcuts
const (
	ShortcutHistory = "h"
	ShortcutOpen    = "o"
	ShortcutCopy    = "c"
	ShortcutIgnore  = "i"
)

// Numeric Constants for Layout/Indexing
const (
	MinTableHeight  = 4 // Minimum height for tables after calculation
	PortsViewOffset = 8 // Estimated non-table lines in the ports view for height calc
)

// Status Strings - display-only
const (
	StatusDeclared   = "Declared"
	StatusReserved   = "Redirect target"
	StatusRedirected = "Redirected"
	StatusInternal   = "Internal"
	StatusUndeclared = "Undeclared"
	StatusIgnored    = "Ignored"
)

// Lipgloss Colors
const (
	ColorBorder     = "240"
	ColorSelectedFg = "229"
	ColorSelectedBg = "57"
	ColorTitle      = "14"  // Cyan for titles
	ColorHelp       = "245" // Grey for help text
	ColorError      = "9"   // Red for errors
	ColorNotify     = "11"  // Yellow for pending notifications
	ColorStatus     = "10"  // Green for status feedback
)
