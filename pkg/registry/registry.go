package registry

import (
	"fmt"

	"portwatch/pkg/logging"
)

// Registry holds the workspace's declared servers, loaded once at
// startup and read-only afterwards.
type Registry struct {
	all []WorkspacePort
}

// Load fetches the declared servers from the configured source. A
// failure here is fatal to startup and must be propagated, not
// swallowed.
func Load(opts LoadOptions) (*Registry, error) {
	var (
		ports []WorkspacePort
		err   error
	)
	if opts.ServersFile != "" {
		ports, err = loadFromFile(opts.ServersFile)
	} else {
		ports, err = loadFromCluster(opts)
	}
	if err != nil {
		return nil, fmt.Errorf("loading declared servers: %w", err)
	}
	return New(ports)
}

// New builds a registry from already-fetched declarations, validating
// that declared port numbers are unique.
func New(ports []WorkspacePort) (*Registry, error) {
	seen := make(map[int]string, len(ports))
	for _, wp := range ports {
		n, err := wp.Number()
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[n]; dup {
			return nil, fmt.Errorf("declared port %d used by both %q and %q", n, prev, wp.Name)
		}
		seen[n] = wp.Name
	}
	logging.LogDebug("Registry loaded with %d declared servers", len(ports))
	return &Registry{all: ports}, nil
}

// All returns every declared server.
func (r *Registry) All() []WorkspacePort {
	out := make([]WorkspacePort, len(r.all))
	copy(out, r.all)
	return out
}

// Lookup finds the declared server for a port number. Redirect-target
// entries are infrastructure and excluded from the general lookup.
func (r *Registry) Lookup(portNumber int) (WorkspacePort, bool) {
	for _, wp := range r.all {
		if wp.IsRedirectTarget() {
			continue
		}
		if n, err := wp.Number(); err == nil && n == portNumber {
			return wp, true
		}
	}
	return WorkspacePort{}, false
}

// IsRedirectPort reports whether the port number belongs to a
// reserved redirect-target declaration.
func (r *Registry) IsRedirectPort(portNumber int) bool {
	for _, wp := range r.all {
		if !wp.IsRedirectTarget() {
			continue
		}
		if n, err := wp.Number(); err == nil && n == portNumber {
			return true
		}
	}
	return false
}

// RedirectTargets returns the reserved redirect-target entries. The
// partition is a pure filter; the underlying declarations are never
// mutated.
func (r *Registry) RedirectTargets() []WorkspacePort {
	var out []WorkspacePort
	for _, wp := range r.all {
		if wp.IsRedirectTarget() {
			out = append(out, wp)
		}
	}
	return out
}
