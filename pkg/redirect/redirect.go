package redirect

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"portwatch/pkg/logging"
	"portwatch/pkg/registry"
)

// Sentinel error for a redirect port that is already bound locally.
var ErrPortInUse = errors.New("redirect port already in use")

// Sentinel error for a redirect port with an active listener managed
// by this process.
var ErrAlreadyActive = errors.New("redirect already active on this port")

// Active describes one running redirect listener.
type Active struct {
	Entry      registry.WorkspacePort
	LocalPort  int // bound redirect port (from the pool entry)
	TargetPort int // original workspace port the traffic goes to
	CreatedAt  time.Time
}

// activeRedirect pairs the public info with the live listener.
type activeRedirect struct {
	info     Active
	listener net.Listener
}

// Redirector owns the redirect listeners. Each listener accepts local
// connections on its pool port and relays every one of them to
// localhost:<target port> until the process ends.
type Redirector struct {
	mutex  sync.Mutex
	active map[int]*activeRedirect // keyed by local port
}

func NewRedirector() *Redirector {
	return &Redirector{
		active: make(map[int]*activeRedirect),
	}
}

// Start binds the entry's port and begins relaying to the target
// port. The pool entry is already consumed by the caller; a bind
// failure here does not put it back.
func (r *Redirector) Start(entry registry.WorkspacePort, targetPort int) (Active, error) {
	localPort, err := entry.Number()
	if err != nil {
		return Active{}, err
	}

	r.mutex.Lock()
	if _, exists := r.active[localPort]; exists {
		r.mutex.Unlock()
		return Active{}, ErrAlreadyActive
	}
	r.mutex.Unlock()

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", localPort))
	if err != nil {
		logging.LogError("Failed to bind redirect port %d: %v", localPort, err)
		if opErr, ok := err.(*net.OpError); ok && strings.Contains(opErr.Err.Error(), "bind") {
			return Active{}, fmt.Errorf("%w: port %d", ErrPortInUse, localPort)
		}
		return Active{}, fmt.Errorf("failed to bind redirect port %d: %w", localPort, err)
	}

	ar := &activeRedirect{
		info: Active{
			Entry:      entry,
			LocalPort:  localPort,
			TargetPort: targetPort,
			CreatedAt:  time.Now(),
		},
		listener: listener,
	}

	r.mutex.Lock()
	r.active[localPort] = ar
	r.mutex.Unlock()

	go r.acceptLoop(ar)

	logging.LogInfo("Redirect active: :%d -> localhost:%d (%s)", localPort, targetPort, entry.Name)
	return ar.info, nil
}

// acceptLoop serves one listener. A failed connection never brings
// down the listener or its other connections.
func (r *Redirector) acceptLoop(ar *activeRedirect) {
	for {
		conn, err := ar.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				logging.LogDebug("Redirect listener on port %d closed", ar.info.LocalPort)
				return
			}
			logging.LogError("Accept on redirect port %d failed: %v", ar.info.LocalPort, err)
			continue
		}
		go relay(conn, ar.info.TargetPort)
	}
}

// relay pipes one accepted connection to the target port in both
// directions until either side closes.
func relay(conn net.Conn, targetPort int) {
	defer conn.Close()

	target, err := net.Dial("tcp", fmt.Sprintf("localhost:%d", targetPort))
	if err != nil {
		logging.LogError("Redirect dial to localhost:%d failed: %v", targetPort, err)
		return
	}
	defer target.Close()

	done := make(chan struct{}, 2)
	go func() {
		_, err := io.Copy(target, conn)
		if err != nil {
			logging.LogDebug("Redirect upstream copy ended: %v", err)
		}
		done <- struct{}{}
	}()
	go func() {
		_, err := io.Copy(conn, target)
		if err != nil {
			logging.LogDebug("Redirect downstream copy ended: %v", err)
		}
		done <- struct{}{}
	}()
	<-done
}

// Active lists the running redirects.
func (r *Redirector) Active() []Active {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	out := make([]Active, 0, len(r.active))
	for _, ar := range r.active {
		out = append(out, ar.info)
	}
	return out
}

// IsActive reports whether a listener is bound on the local port.
func (r *Redirector) IsActive(localPort int) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	_, exists := r.active[localPort]
	return exists
}

// CloseAll shuts every listener down (process exit path).
func (r *Redirector) CloseAll() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for port, ar := range r.active {
		if err := ar.listener.Close(); err != nil {
			logging.LogError("Closing redirect listener on port %d: %v", port, err)
		}
		delete(r.active, port)
	}
	logging.LogDebug("All redirect listeners closed")
}
