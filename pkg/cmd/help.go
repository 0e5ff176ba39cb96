package cmd

import (
	"fmt"
	"os"
)

// HandleHelpCommand displays help information for the application
func HandleHelpCommand() {
	showMainHelp()
}

// showMainHelp displays the main application help
func showMainHelp() {
	programName := os.Args[0]
	fmt.Printf(`portwatch - Workspace Port Monitor

Watches the TCP ports your workspace starts listening on, matches them
against the workspace's declared servers, and offers to open the
exposed URL or create a redirect for ports that aren't reachable yet.

Usage:
  %s [command]

Available Commands:
  scan         One-shot report of listening vs declared ports
  servers      List declared servers and redirect targets
  credentials  Manage workspace-scoped service credentials
  help         Show help information

Options:
  -h, --help  Show help information

Interactive Mode:
  Run without any command to start the watch TUI where you can:
  - See live listening ports with their declared servers
  - Answer redirect and open-link prompts as ports come up
  - Press 'o' to open a port's URL, 'c' to copy it
  - Press 'i' to remember "ignore" for the selected port
  - Press 'h' to review created redirects

Examples:
  %s                        Start the watch TUI
  %s scan -o servers.yaml   Draft declarations for undeclared ports
  %s servers                Show the declared servers
  %s help                   Show this help message

For more information about a specific command, use:
  %s <command> --help
`, programName, programName, programName, programName, programName, programName)
}

// ShowMainHelpAndExit displays help and exits with code 0
func ShowMainHelpAndExit() {
	showMainHelp()
	os.Exit(0)
}
