package redirect

import (
	"sync"

	"portwatch/pkg/logging"
	"portwatch/pkg/registry"
)

// Pool holds the reserved redirect-target declarations. It only
// shrinks: entries are popped when a redirect is created and are never
// returned, even if the listener later fails to start.
type Pool struct {
	mutex   sync.Mutex
	entries []registry.WorkspacePort
}

// NewPool seeds the pool with the registry's redirect targets.
func NewPool(entries []registry.WorkspacePort) *Pool {
	p := &Pool{entries: make([]registry.WorkspacePort, len(entries))}
	copy(p.entries, entries)
	return p
}

// Size returns the number of unconsumed redirect targets.
func (p *Pool) Size() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return len(p.entries)
}

// TryPop removes and returns one entry. The emptiness check and the
// pop are a single atomic operation so two concurrent offers can
// never allocate the same entry.
func (p *Pool) TryPop() (registry.WorkspacePort, bool) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if len(p.entries) == 0 {
		return registry.WorkspacePort{}, false
	}
	entry := p.entries[0]
	p.entries = p.entries[1:]
	logging.LogDebug("Popped redirect target %s (port %s), %d left in pool", entry.Name, entry.Port, len(p.entries))
	return entry, true
}
