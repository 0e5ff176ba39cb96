package watcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"portwatch/pkg/logging"
	"portwatch/pkg/netstat"
)

// PortCallback receives one open or close event.
type PortCallback func(netstat.Port)

// PortWatcher keeps the last known set of listening ports and emits
// open/close events for every change between consecutive samples.
type PortWatcher struct {
	sampler  netstat.Sampler
	interval time.Duration

	mutex     sync.Mutex
	known     map[string]netstat.Port
	openedFns []PortCallback
	closedFns []PortCallback
}

// New creates a watcher polling the given sampler.
func New(sampler netstat.Sampler, interval time.Duration) *PortWatcher {
	return &PortWatcher{
		sampler:  sampler,
		interval: interval,
		known:    make(map[string]netstat.Port),
	}
}

// OnOpened registers a callback for newly opened ports. Callbacks fire
// in registration order.
func (w *PortWatcher) OnOpened(fn PortCallback) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.openedFns = append(w.openedFns, fn)
}

// OnClosed registers a callback for ports that stopped listening.
func (w *PortWatcher) OnClosed(fn PortCallback) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.closedFns = append(w.closedFns, fn)
}

// Init takes the baseline sample. No events are fired for ports that
// are already open at startup.
func (w *PortWatcher) Init() error {
	ports, err := w.sampler.Sample()
	if err != nil {
		return fmt.Errorf("baseline sample failed: %w", err)
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.known = make(map[string]netstat.Port, len(ports))
	for _, p := range ports {
		w.known[p.Key()] = p
	}
	logging.LogDebug("Watcher baseline: %d listening ports", len(ports))
	return nil
}

// Check performs one sampling pass and fires events for the symmetric
// difference against the previous sample. Running it twice with no
// underlying change yields zero events. The opened/closed slices are
// also returned for one-shot callers.
func (w *PortWatcher) Check() (opened, closed []netstat.Port, err error) {
	ports, err := w.sampler.Sample()
	if err != nil {
		return nil, nil, fmt.Errorf("sample failed: %w", err)
	}

	w.mutex.Lock()
	current := make(map[string]netstat.Port, len(ports))
	for _, p := range ports {
		current[p.Key()] = p
		if _, ok := w.known[p.Key()]; !ok {
			opened = append(opened, p)
		}
	}
	for key, p := range w.known {
		if _, ok := current[key]; !ok {
			closed = append(closed, p)
		}
	}
	w.known = current
	openedFns := append([]PortCallback(nil), w.openedFns...)
	closedFns := append([]PortCallback(nil), w.closedFns...)
	w.mutex.Unlock()

	netstat.SortPorts(opened)
	netstat.SortPorts(closed)

	for _, p := range opened {
		logging.LogDebug("Port opened: %s", p)
		for _, fn := range openedFns {
			fn(p)
		}
	}
	for _, p := range closed {
		logging.LogDebug("Port closed: %s", p)
		for _, fn := range closedFns {
			fn(p)
		}
	}
	return opened, closed, nil
}

// Known returns the last sampled set of listening ports, sorted.
func (w *PortWatcher) Known() []netstat.Port {
	w.mutex.Lock()
	out := make([]netstat.Port, 0, len(w.known))
	for _, p := range w.known {
		out = append(out, p)
	}
	w.mutex.Unlock()
	netstat.SortPorts(out)
	return out
}

// Run polls until the context is cancelled. Only one pass is ever in
// flight; callbacks that need to wait on the user must not block (the
// policy engine handles its interactive flow on its own goroutine).
func (w *PortWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.LogDebug("Watcher loop stopped: %v", ctx.Err())
			return
		case <-ticker.C:
			if _, _, err := w.Check(); err != nil {
				logging.LogError("Sampling pass failed: %v", err)
			}
		}
	}
}
