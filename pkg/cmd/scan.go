package cmd

import (
	"flag"
	"fmt"
	"os"

	"portwatch/pkg/config"
	"portwatch/pkg/netstat"
	"portwatch/pkg/registry"
)

// HandleScanCommand handles the scan subcommand: one sampling pass
// cross-referenced with the declared servers.
func HandleScanCommand() {
	if len(os.Args) > 2 {
		for _, arg := range os.Args[2:] {
			if arg == "-h" || arg == "--help" {
				showScanHelp()
				os.Exit(0)
			}
		}
	}

	scanCmd := flag.NewFlagSet("scan", flag.ExitOnError)
	serversFile := scanCmd.String("servers", "", "YAML declarations file (defaults to settings)")
	outputFile := scanCmd.String("o", "", "Write undeclared ports as a servers YAML skeleton to this file")
	verbose := scanCmd.Bool("v", false, "Verbose output")

	scanCmd.Usage = showScanHelp

	if err := scanCmd.Parse(os.Args[2:]); err != nil {
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

	ports, err := netstat.NewSampler().Sample()
	if err != nil {
		fmt.Printf("Error sampling listening ports: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Found %d listening port(s), %d declared server(s)\n\n", len(ports), len(reg.All()))
	}

	var undeclared []registry.WorkspacePort
	fmt.Printf("%-7s %-22s %-18s %s\n", "PORT", "INTERFACE", "SERVER", "URL")
	for _, p := range ports {
		server := "-"
		url := "-"
		if wp, ok := reg.Lookup(p.Number); ok {
			server = wp.Name
			url = wp.URL
		} else if reg.IsRedirectPort(p.Number) {
			server = "(redirect target)"
		} else {
			undeclared = append(undeclared, registry.WorkspacePort{
				Port: fmt.Sprintf("%d", p.Number),
				Name: fmt.Sprintf("port-%d", p.Number),
			})
		}
		fmt.Printf("%-7d %-22s %-18s %s\n", p.Number, p.Interface, server, url)
	}

	if *outputFile != "" {
		if len(undeclared) == 0 {
			fmt.Println("\nNo undeclared ports, nothing to write.")
			return
		}
		if err := registry.WriteServersFile(*outputFile, undeclared); err != nil {
			fmt.Printf("Error writing %s: %v\n", *outputFile, err)
			os.Exit(1)
		}
		fmt.Printf("\nWrote %d undeclared port(s) to %s\n", len(undeclared), *outputFile)
	}
}

// showScanHelp displays help for the scan command.
func showScanHelp() {
	programName := os.Args[0]
	fmt.Fprintf(os.Stderr, `%s scan - One-shot listening-port report

Sample the workspace's listening TCP ports once and cross-reference
them with the declared servers.

Usage:
  %s scan [options]

Options:
  --servers string   YAML declarations file (overrides settings)
  -o string          Write undeclared ports as a servers YAML skeleton
  -v                 Enable verbose output
  -h, --help         Show this help message

Examples:
  %s scan                         Report listening vs declared ports
  %s scan -o servers.yaml         Draft declarations for undeclared ports
  %s scan --servers servers.yaml  Use an explicit declarations file
`, programName, programName, programName, programName, programName)
}
