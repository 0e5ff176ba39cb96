package policy

import (
	"fmt"

	"portwatch/pkg/logging"
	"portwatch/pkg/netstat"
	"portwatch/pkg/redirect"
	"portwatch/pkg/registry"
	"portwatch/pkg/watcher"
)

// Prompter is the host UI surface. Confirm and Error are modal from
// the user's point of view; Notify is not. All of them may block the
// calling goroutine until the user responds.
type Prompter interface {
	// Confirm asks a yes/no question and reports the answer.
	Confirm(question string) bool
	// Notify shows a non-modal message with one action button and
	// reports whether the action was chosen.
	Notify(message, action string) bool
	// Error shows a blocking error message.
	Error(message string)
}

// LinkOpener opens an external URL in the user's browser.
type LinkOpener interface {
	OpenExternal(url string) error
}

// RedirectStarter starts a redirect listener for a consumed pool
// entry.
type RedirectStarter interface {
	Start(entry registry.WorkspacePort, targetPort int) (redirect.Active, error)
}

// DecisionStore remembers per-port choices between sessions. May be
// nil.
type DecisionStore interface {
	Decision(port int) (string, bool)
}

// HistoryRecorder keeps an audit of created redirects. May be nil.
type HistoryRecorder interface {
	AddRedirect(localPort, targetPort int, url string) error
}

// DecisionIgnore is the remembered choice that suppresses prompts for
// a port.
const DecisionIgnore = "ignore"

// Engine decides, for every opened port, whether to stay quiet, point
// the user at the declared URL, or offer a redirect.
type Engine struct {
	registry   *registry.Registry
	pool       *redirect.Pool
	redirector RedirectStarter
	prompter   Prompter
	opener     LinkOpener
	decisions  DecisionStore
	history    HistoryRecorder
}

// NewEngine wires the engine's collaborators explicitly. decisions
// and history are optional.
func NewEngine(reg *registry.Registry, pool *redirect.Pool, redirector RedirectStarter, prompter Prompter, opener LinkOpener, decisions DecisionStore, history HistoryRecorder) *Engine {
	return &Engine{
		registry:   reg,
		pool:       pool,
		redirector: redirector,
		prompter:   prompter,
		opener:     opener,
		decisions:  decisions,
		history:    history,
	}
}

// Watch registers the engine on a port watcher. Each event is handled
// on its own goroutine so an unanswered prompt never stalls sampling;
// two prompts can be up at the same time.
func (e *Engine) Watch(w *watcher.PortWatcher) {
	w.OnOpened(func(p netstat.Port) { go e.HandleOpened(p) })
	w.OnClosed(func(p netstat.Port) { go e.HandleClosed(p) })
}

// HandleOpened runs the decision algorithm for one opened port.
// First match wins: remembered ignore, non-wildcard bind, declared
// (reserved or user-facing), undeclared.
func (e *Engine) HandleOpened(p netstat.Port) {
	logging.LogInfo("Port opened: %d on interface %s", p.Number, p.Interface)

	if e.decisions != nil {
		if d, ok := e.decisions.Decision(p.Number); ok && d == DecisionIgnore {
			logging.LogInfo("Port %d is remembered as ignored, skipping", p.Number)
			return
		}
	}

	if !netstat.IsWildcard(p.Interface) {
		e.offerRedirect(p,
			fmt.Sprintf("A process is listening on port %d, but it is bound to %s and only reachable from inside the workspace.", p.Number, p.Interface),
			fmt.Sprintf("Port %d listens on %s and no redirect ports are left. It cannot be exposed without binding it to 0.0.0.0.", p.Number, p.Interface))
		return
	}

	if wp, ok := e.registry.Lookup(p.Number); ok {
		logging.LogInfo("Port %d matches declared server %q (%s)", p.Number, wp.Name, wp.URL)
		if e.prompter.Notify(fmt.Sprintf("Server %q is now listening on port %d and reachable at %s.", wp.Name, p.Number, wp.URL), "Open") {
			if err := e.opener.OpenExternal(wp.URL); err != nil {
				logging.LogError("Failed to open %s: %v", wp.URL, err)
			}
		}
		return
	}

	if e.registry.IsRedirectPort(p.Number) {
		// Redirect infrastructure coming up, already wired.
		logging.LogInfo("Port %d belongs to a redirect target, no action", p.Number)
		return
	}

	e.offerRedirect(p,
		fmt.Sprintf("A process is listening on port %d, which is not declared as a server of this workspace.", p.Number),
		fmt.Sprintf("Port %d is not declared as a server and no redirect ports are left. Declare a server for it to make it reachable.", p.Number))
}

// HandleClosed only leaves a trace; closed ports never change the
// pool or prompt the user.
func (e *Engine) HandleClosed(p netstat.Port) {
	logging.LogInfo("Port closed: %d on interface %s", p.Number, p.Interface)
}

// offerRedirect runs the confirm-then-act sequence. Declining leaves
// the pool untouched; confirming consumes exactly one entry, which is
// never returned even if the listener fails to start.
func (e *Engine) offerRedirect(p netstat.Port, reason, unavailableMsg string) {
	if e.pool.Size() == 0 {
		logging.LogInfo("Redirect needed for port %d but the pool is exhausted", p.Number)
		e.prompter.Error(unavailableMsg)
		return
	}

	if !e.prompter.Confirm(fmt.Sprintf("%s Create a redirect for it?", reason)) {
		logging.LogInfo("Redirect for port %d declined", p.Number)
		return
	}

	// The pool may have been drained by a concurrent offer while the
	// prompt was up; TryPop re-checks atomically.
	entry, ok := e.pool.TryPop()
	if !ok {
		logging.LogInfo("Redirect for port %d confirmed but the pool drained meanwhile", p.Number)
		e.prompter.Error(unavailableMsg)
		return
	}

	active, err := e.redirector.Start(entry, p.Number)
	if err != nil {
		// The entry stays consumed; surfacing the failure is all we
		// can do.
		logging.LogError("Redirect listener for port %d failed to start: %v", p.Number, err)
		e.prompter.Error(fmt.Sprintf("Failed to start a redirect on port %s: %v", entry.Port, err))
		return
	}

	if e.history != nil {
		if err := e.history.AddRedirect(active.LocalPort, active.TargetPort, entry.URL); err != nil {
			logging.LogError("Failed to record redirect history: %v", err)
		}
	}

	if entry.URL != "" {
		if e.prompter.Confirm(fmt.Sprintf("Port %d is now redirected and reachable at %s. Open it?", p.Number, entry.URL)) {
			if err := e.opener.OpenExternal(entry.URL); err != nil {
				logging.LogError("Failed to open %s: %v", entry.URL, err)
			}
		}
	}
}
