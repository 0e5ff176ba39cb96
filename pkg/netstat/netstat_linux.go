//go:build linux

package netstat

import (
	"fmt"

	"portwatch/pkg/logging"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// TCP_LISTEN from include/net/tcp_states.h.
const tcpListen = 10

// DiagSampler lists listening TCP sockets through the netlink
// sock-diag interface.
type DiagSampler struct{}

// NewSampler returns the platform sampler.
func NewSampler() Sampler {
	return &DiagSampler{}
}

// Sample returns every TCP socket currently in LISTEN state, across
// IPv4 and IPv6, deduplicated by (port, bind address).
func (s *DiagSampler) Sample() ([]Port, error) {
	var ports []Port
	seen := make(map[string]bool)

	for _, family := range []uint8{unix.AF_INET, unix.AF_INET6} {
		sockets, err := netlink.SocketDiagTCP(family)
		if err != nil {
			return nil, fmt.Errorf("socket diag (family %d) failed: %w", family, err)
		}
		for _, sock := range sockets {
			if sock.State != tcpListen {
				continue
			}
			p := Port{
				Number:    int(sock.ID.SourcePort),
				Interface: sock.ID.Source.String(),
			}
			if p.Number == 0 {
				continue
			}
			if seen[p.Key()] {
				continue
			}
			seen[p.Key()] = true
			ports = append(ports, p)
		}
	}

	SortPorts(ports)
	logging.LogDebug("Sampled %d listening sockets", len(ports))
	return ports, nil
}
