package netstat

import (
	"fmt"
	"sort"
)

// Port is one observed OS-level listening endpoint. A fresh value is
// produced on every sample; it is never mutated afterwards.
type Port struct {
	Number    int    // TCP port number (1-65535)
	Interface string // bind address, e.g. "0.0.0.0", "127.0.0.1", "::"
}

// Key returns a stable identity for set-difference computations.
func (p Port) Key() string {
	return fmt.Sprintf("%s:%d", p.Interface, p.Number)
}

func (p Port) String() string {
	return p.Key()
}

// Sampler reads the live listening-socket table. Every call re-reads
// the OS state; results are not cached.
type Sampler interface {
	Sample() ([]Port, error)
}

// IsWildcard reports whether the bind address means "all interfaces"
// (IPv4 0.0.0.0 or IPv6 ::).
func IsWildcard(iface string) bool {
	return iface == "0.0.0.0" || iface == "::" || iface == "*"
}

// SortPorts orders ports by number, then bind address, for stable
// iteration within a sampling pass.
func SortPorts(ports []Port) {
	sort.Slice(ports, func(i, j int) bool {
		if ports[i].Number != ports[j].Number {
			return ports[i].Number < ports[j].Number
		}
		return ports[i].Interface < ports[j].Interface
	})
}
