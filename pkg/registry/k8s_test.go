package registry

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubKubectl replaces the kubectl invocation with a fixed stdout
// payload and records the arguments.
func stubKubectl(t *testing.T, payload string, capturedArgs *[]string) {
	t.Helper()
	original := execCommand
	execCommand = func(name string, args ...string) *exec.Cmd {
		if capturedArgs != nil {
			*capturedArgs = append([]string{name}, args...)
		}
		return exec.Command("echo", payload)
	}
	t.Cleanup(func() { execCommand = original })
}

func stubKubectlFailure(t *testing.T, stderr string) {
	t.Helper()
	original := execCommand
	execCommand = func(name string, args ...string) *exec.Cmd {
		return exec.Command("sh", "-c", "echo '"+stderr+"' >&2; exit 1")
	}
	t.Cleanup(func() { execCommand = original })
}

const serviceListJSON = `{
  "items": [
    {
      "metadata": {
        "name": "webapp",
        "namespace": "ws-abc123",
        "annotations": {
          "portwatch.io/url": "https://ws.example.test",
          "portwatch.io/url-admin": "https://ws.example.test/admin"
        }
      },
      "spec": {
        "ports": [
          {"name": "http", "port": 3000},
          {"name": "admin", "port": 3001},
          {"name": "", "port": 3002}
        ]
      }
    }
  ]
}`

func TestLoadFromClusterBuildsDeclarations(t *testing.T) {
	var args []string
	stubKubectl(t, serviceListJSON, &args)

	servers, err := loadFromCluster(LoadOptions{
		WorkspaceID: "abc123",
		Namespace:   "ws-abc123",
		Context:     "minikube",
	})
	require.NoError(t, err)
	require.Len(t, servers, 3)

	assert.Equal(t, WorkspacePort{Port: "3000", Name: "http", URL: "https://ws.example.test"}, servers[0])
	// Per-port annotation wins over the service-wide one.
	assert.Equal(t, WorkspacePort{Port: "3001", Name: "admin", URL: "https://ws.example.test/admin"}, servers[1])
	// Unnamed ports fall back to service name + number.
	assert.Equal(t, "webapp-3002", servers[2].Name)

	assert.Contains(t, args, "portwatch.io/workspace=abc123")
	assert.Contains(t, args, "ws-abc123")
	assert.Contains(t, args, "--context")
}

func TestLoadFromClusterRequiresWorkspaceID(t *testing.T) {
	_, err := loadFromCluster(LoadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workspace id")
}

func TestLoadFromClusterKubectlFailure(t *testing.T) {
	stubKubectlFailure(t, "Unable to connect to the server")

	_, err := loadFromCluster(LoadOptions{WorkspaceID: "abc123"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unable to connect")
}

func TestLoadFromClusterNoServices(t *testing.T) {
	stubKubectl(t, `{"items": []}`, nil)

	_, err := loadFromCluster(LoadOptions{WorkspaceID: "abc123"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no services")
}
