package ui

import (
	"sync"

	"portwatch/pkg/logging"

	tea "github.com/charmbracelet/bubbletea"
)

// Prompter bridges the policy engine's questions into the TUI. Each
// call sends a request into the update loop and blocks its own
// goroutine until the user answers; sampling and other prompts keep
// going meanwhile.
type Prompter struct {
	mutex   sync.Mutex
	program *tea.Program
}

// NewPrompter creates an unattached prompter. Attach must be called
// with the running program before the watcher starts checking.
func NewPrompter() *Prompter {
	return &Prompter{}
}

// Attach wires the prompter to the bubbletea program.
func (pr *Prompter) Attach(program *tea.Program) {
	pr.mutex.Lock()
	defer pr.mutex.Unlock()
	pr.program = program
}

func (pr *Prompter) send(req *promptRequest) bool {
	pr.mutex.Lock()
	program := pr.program
	pr.mutex.Unlock()

	if program == nil {
		// No UI attached (headless one-shot commands); log and decline.
		logging.LogInfo("Prompt without UI: %s", req.message)
		return false
	}

	program.Send(promptRequestMsg{req: req})
	return <-req.reply
}

// Confirm asks a modal yes/no question.
func (pr *Prompter) Confirm(question string) bool {
	return pr.send(&promptRequest{
		kind:    promptConfirm,
		message: question,
		reply:   make(chan bool, 1),
	})
}

// Error shows a blocking error until the user acknowledges it.
func (pr *Prompter) Error(message string) {
	pr.send(&promptRequest{
		kind:    promptError,
		message: message,
		reply:   make(chan bool, 1),
	})
}

// Notify shows a non-modal message with one action and reports
// whether the action was chosen.
func (pr *Prompter) Notify(message, action string) bool {
	return pr.send(&promptRequest{
		kind:    promptNotify,
		message: message,
		action:  action,
		reply:   make(chan bool, 1),
	})
}
