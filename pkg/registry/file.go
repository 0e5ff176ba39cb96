package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// serversFile is the YAML document shape of a declarations file:
//
//	servers:
//	  - port: "3000"
//	    name: webapp
//	    url: https://ws.example.com/3000
type serversFile struct {
	Servers []WorkspacePort `yaml:"servers"`
}

func loadFromFile(path string) ([]WorkspacePort, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading servers file %s: %w", path, err)
	}

	var doc serversFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing servers file %s: %w", path, err)
	}
	if len(doc.Servers) == 0 {
		return nil, fmt.Errorf("servers file %s declares no servers", path)
	}
	return doc.Servers, nil
}

// WriteServersFile renders declarations back to YAML (used by the
// scan subcommand's -o flag).
func WriteServersFile(path string, servers []WorkspacePort) error {
	data, err := yaml.Marshal(serversFile{Servers: servers})
	if err != nil {
		return fmt.Errorf("marshaling servers: %w", err)
	}
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing servers file %s: %w", path, err)
	}
	return nil
}
