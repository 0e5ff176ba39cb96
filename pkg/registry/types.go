package registry

import (
	"fmt"
	"strconv"
	"strings"
)

// RedirectPrefix marks declared servers that exist only as
// pre-allocated redirect targets, not as user-facing endpoints.
const RedirectPrefix = "redirect-"

// WorkspacePort is one statically declared server endpoint of the
// workspace. The port number stays string-typed as declared; parse it
// with Number() when needed.
type WorkspacePort struct {
	Port string `yaml:"port"`
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Number parses the declared port number.
func (w WorkspacePort) Number() (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(w.Port))
	if err != nil {
		return 0, fmt.Errorf("declared port %q for server %q is not numeric: %w", w.Port, w.Name, err)
	}
	if n < 1 || n > 65535 {
		return 0, fmt.Errorf("declared port %d for server %q out of range", n, w.Name)
	}
	return n, nil
}

// IsRedirectTarget reports whether the entry follows the reserved
// redirect naming convention.
func (w WorkspacePort) IsRedirectTarget() bool {
	return strings.HasPrefix(w.Name, RedirectPrefix)
}

// LoadOptions selects the declaration source. ServersFile takes
// precedence; otherwise the Kubernetes source is used.
type LoadOptions struct {
	ServersFile   string // YAML declarations file
	Context       string // kubectl context ("" = current)
	Namespace     string // workspace namespace
	WorkspaceID   string // value of the workspace label selector
	URLAnnotation string // service annotation carrying the external URL
}
