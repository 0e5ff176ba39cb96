package cmd

import (
	"flag"
	"fmt"
	"os"

	"portwatch/pkg/config"
	"portwatch/pkg/registry"
)

// HandleServersCommand lists the workspace's declared servers and the
// redirect-target pool.
func HandleServersCommand() {
	serversCmd := flag.NewFlagSet("servers", flag.ExitOnError)
	serversFile := serversCmd.String("servers", "", "YAML declarations file (defaults to settings)")

	if err := serversCmd.Parse(os.Args[2:]); err != nil {
		fmt.Printf("Error parsing arguments: %v\n", err)
		os.Exit(1)
	}

	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Printf("Error loading settings: %v\n", err)
		os.Exit(1)
	}
	if *serversFile != "" {
		settings.ServersFile = *serversFile
	}

	reg, err := registry.Load(registry.LoadOptions{
		ServersFile:   settings.ServersFile,
		Context:       settings.Context,
		Namespace:     settings.Namespace,
		WorkspaceID:   settings.WorkspaceID,
		URLAnnotation: settings.URLAnnotation,
	})
	if err != nil {
		fmt.Printf("Error loading declared servers: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Declared servers:")
	for _, wp := range reg.All() {
		if wp.IsRedirectTarget() {
			continue
		}
		fmt.Printf("  %-6s %-20s %s\n", wp.Port, wp.Name, wp.URL)
	}

	targets := reg.RedirectTargets()
	fmt.Printf("\nRedirect targets (%d):\n", len(targets))
	for _, wp := range targets {
		fmt.Printf("  %-6s %-20s %s\n", wp.Port, wp.Name, wp.URL)
	}
}
