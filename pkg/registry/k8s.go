package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"portwatch/pkg/logging"
)

// workspaceLabel selects the services that belong to this workspace.
const workspaceLabel = "portwatch.io/workspace"

// defaultURLAnnotation carries the externally reachable URL for a
// service port. Per-port variants use "<annotation>-<portName>".
const defaultURLAnnotation = "portwatch.io/url"

// execCommand is a seam for tests.
var execCommand = exec.Command

// k8sService mirrors the kubectl JSON for a service.
type k8sService struct {
	Metadata struct {
		Name        string            `json:"name"`
		Namespace   string            `json:"namespace"`
		Annotations map[string]string `json:"annotations"`
	} `json:"metadata"`
	Spec struct {
		Ports []struct {
			Name string `json:"name"`
			Port int32  `json:"port"`
		} `json:"ports"`
	} `json:"spec"`
}

type k8sServiceList struct {
	Items []k8sService `json:"items"`
}

// loadFromCluster lists the workspace's declared servers from the
// services labeled with the workspace id. Each service port becomes
// one declaration; the external URL comes from service annotations.
func loadFromCluster(opts LoadOptions) ([]WorkspacePort, error) {
	if opts.WorkspaceID == "" {
		return nil, fmt.Errorf("workspace id is required for cluster lookup")
	}

	annotationKey := opts.URLAnnotation
	if annotationKey == "" {
		annotationKey = defaultURLAnnotation
	}

	args := []string{"get", "services",
		"-l", fmt.Sprintf("%s=%s", workspaceLabel, opts.WorkspaceID),
		"-o", "json",
	}
	if opts.Namespace != "" {
		args = append(args, "-n", opts.Namespace)
	}
	if opts.Context != "" {
		args = append([]string{"--context", opts.Context}, args...)
	}

	cmd := execCommand("kubectl", args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("kubectl get services failed: %w (stderr: %s)", err, stderr.String())
	}

	var list k8sServiceList
	if err := json.Unmarshal(stdout.Bytes(), &list); err != nil {
		return nil, fmt.Errorf("failed to parse kubectl output: %w", err)
	}

	var servers []WorkspacePort
	for _, svc := range list.Items {
		for _, port := range svc.Spec.Ports {
			name := port.Name
			if name == "" {
				name = fmt.Sprintf("%s-%d", svc.Metadata.Name, port.Port)
			}
			servers = append(servers, WorkspacePort{
				Port: fmt.Sprintf("%d", port.Port),
				Name: name,
				URL:  serviceURL(svc, port.Name, annotationKey),
			})
		}
	}

	if len(servers) == 0 {
		return nil, fmt.Errorf("no services labeled %s=%s in namespace %q", workspaceLabel, opts.WorkspaceID, opts.Namespace)
	}

	logging.LogDebug("Cluster lookup found %d declared servers for workspace %s", len(servers), opts.WorkspaceID)
	return servers, nil
}

// serviceURL resolves the external URL for one service port: the
// per-port annotation wins over the service-wide one.
func serviceURL(svc k8sService, portName, annotationKey string) string {
	if svc.Metadata.Annotations == nil {
		return ""
	}
	if portName != "" {
		if url, ok := svc.Metadata.Annotations[annotationKey+"-"+portName]; ok {
			return strings.TrimSpace(url)
		}
	}
	return strings.TrimSpace(svc.Metadata.Annotations[annotationKey])
}
