package ui

import "portwatch/pkg/netstat"

// UIState represents the different views/states of the UI
type UIState int

const (
	StatePorts   UIState = iota // Live listening-ports table view
	StateHistory                // Redirect history view ('h')
)

// promptKind distinguishes the overlay variants.
type promptKind int

const (
	promptConfirm promptKind = iota // modal yes/no
	promptError                     // modal acknowledge
	promptNotify                    // non-modal, one action
)

// promptRequest is one question from the policy engine. The answer is
// delivered on reply; the sender blocks until then.
type promptRequest struct {
	kind    promptKind
	message string
	action  string // label of the notify action
	reply   chan bool
}

// promptRequestMsg carries a request into the update loop.
type promptRequestMsg struct {
	req *promptRequest
}

// tickMsg drives the periodic table refresh.
type tickMsg struct{}

// PortRow is one rendered row of the ports table.
type PortRow struct {
	Port   netstat.Port
	Server string
	URL    string
	Status string
}
