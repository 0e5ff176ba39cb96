package credentials

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"portwatch/pkg/logging"
)

// Sentinel error for a credential that does not exist.
var ErrNotFound = errors.New("credential not found")

// execCommand is a seam for tests.
var execCommand = exec.Command

const (
	workspaceLabel = "portwatch.io/workspace"
	serviceLabel   = "portwatch.io/service"
	accountLabel   = "portwatch.io/account"
)

// Store keeps (service, account) credential pairs, one Kubernetes
// secret each, scoped to the workspace by label. Mutations fire the
// registered change callbacks.
type Store struct {
	workspaceID string
	namespace   string
	kubeContext string

	mutex     sync.Mutex
	changeFns []func()
}

// NewStore creates a credential store for the workspace.
func NewStore(workspaceID, namespace, kubeContext string) (*Store, error) {
	if workspaceID == "" {
		return nil, fmt.Errorf("workspace id is required")
	}
	return &Store{
		workspaceID: workspaceID,
		namespace:   namespace,
		kubeContext: kubeContext,
	}, nil
}

// OnChange registers a callback fired after every successful
// mutation.
func (s *Store) OnChange(fn func()) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.changeFns = append(s.changeFns, fn)
}

func (s *Store) notifyChanged() {
	s.mutex.Lock()
	fns := append([]func(){}, s.changeFns...)
	s.mutex.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// secretName derives the deterministic secret name for a pair.
func (s *Store) secretName(service, account string) string {
	return fmt.Sprintf("portwatch-cred-%s-%s", sanitizeNamePart(service), sanitizeNamePart(account))
}

// kubeSecret mirrors the kubectl JSON for a secret.
type kubeSecret struct {
	Metadata struct {
		Name   string            `json:"name"`
		Labels map[string]string `json:"labels"`
	} `json:"metadata"`
	Data map[string]string `json:"data"`
}

type kubeSecretList struct {
	Items []kubeSecret `json:"items"`
}

// Get returns the password stored for (service, account).
func (s *Store) Get(service, account string) (string, error) {
	secret, err := s.fetch(service, account)
	if err != nil {
		return "", err
	}
	raw, ok := secret.Data["password"]
	if !ok {
		return "", fmt.Errorf("secret %s has no password key", secret.Metadata.Name)
	}
	password, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", fmt.Errorf("failed to decode password for %s/%s: %w", service, account, err)
	}
	return string(password), nil
}

// fetch is the single lookup helper behind Get and FindAccounts'
// existence checks.
func (s *Store) fetch(service, account string) (*kubeSecret, error) {
	args := s.withCommonArgs("get", "secret", s.secretName(service, account), "-o", "json")

	cmd := execCommand("kubectl", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if strings.Contains(stderr.String(), "NotFound") {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, service, account)
		}
		return nil, fmt.Errorf("kubectl get secret failed: %w (stderr: %s)", err, stderr.String())
	}

	var secret kubeSecret
	if err := json.Unmarshal(stdout.Bytes(), &secret); err != nil {
		return nil, fmt.Errorf("failed to parse kubectl output: %w", err)
	}
	return &secret, nil
}

// Set stores or replaces the password for (service, account).
func (s *Store) Set(service, account, password string) error {
	manifest := map[string]interface{}{
		"apiVersion": "v1",
		"kind":       "Secret",
		"metadata": map[string]interface{}{
			"name":      s.secretName(service, account),
			"namespace": s.namespace,
			"labels": map[string]string{
				workspaceLabel: s.workspaceID,
				serviceLabel:   sanitizeNamePart(service),
				accountLabel:   sanitizeNamePart(account),
			},
		},
		"type": "Opaque",
		"stringData": map[string]string{
			"service":  service,
			"account":  account,
			"password": password,
		},
	}

	data, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to marshal secret manifest: %w", err)
	}

	args := s.withCommonArgs("apply", "-f", "-")
	cmd := execCommand("kubectl", args...)
	cmd.Stdin = bytes.NewReader(data)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("kubectl apply secret failed: %w (stderr: %s)", err, stderr.String())
	}

	logging.LogDebug("Stored credential for %s/%s", service, account)
	s.notifyChanged()
	return nil
}

// Delete removes the credential for (service, account). Deleting a
// missing credential returns ErrNotFound.
func (s *Store) Delete(service, account string) error {
	args := s.withCommonArgs("delete", "secret", s.secretName(service, account))

	cmd := execCommand("kubectl", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if strings.Contains(stderr.String(), "NotFound") {
			return fmt.Errorf("%w: %s/%s", ErrNotFound, service, account)
		}
		return fmt.Errorf("kubectl delete secret failed: %w (stderr: %s)", err, stderr.String())
	}

	logging.LogDebug("Deleted credential for %s/%s", service, account)
	s.notifyChanged()
	return nil
}

// FindAccounts lists the accounts that have credentials stored for a
// service.
func (s *Store) FindAccounts(service string) ([]string, error) {
	selector := fmt.Sprintf("%s=%s,%s=%s", workspaceLabel, s.workspaceID, serviceLabel, sanitizeNamePart(service))
	args := s.withCommonArgs("get", "secrets", "-l", selector, "-o", "json")

	cmd := execCommand("kubectl", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("kubectl get secrets failed: %w (stderr: %s)", err, stderr.String())
	}

	var list kubeSecretList
	if err := json.Unmarshal(stdout.Bytes(), &list); err != nil {
		return nil, fmt.Errorf("failed to parse kubectl output: %w", err)
	}

	var accounts []string
	for _, item := range list.Items {
		if account, ok := item.Metadata.Labels[accountLabel]; ok {
			accounts = append(accounts, account)
		}
	}
	return accounts, nil
}

// withCommonArgs prepends context and namespace flags.
func (s *Store) withCommonArgs(args ...string) []string {
	if s.namespace != "" {
		args = append(args, "-n", s.namespace)
	}
	if s.kubeContext != "" {
		args = append([]string{"--context", s.kubeContext}, args...)
	}
	return args
}

// sanitizeNamePart makes a string usable inside a secret name or
// label value.
func sanitizeNamePart(input string) string {
	var b strings.Builder
	for _, char := range strings.ToLower(input) {
		switch {
		case char >= 'a' && char <= 'z', char >= '0' && char <= '9':
			b.WriteRune(char)
		case char == '-' || char == '_' || char == '.':
			b.WriteRune('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		out = "unknown"
	}
	return out
}
