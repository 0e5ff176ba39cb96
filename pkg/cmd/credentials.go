package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"portwatch/pkg/config"
	"portwatch/pkg/credentials"
)

// HandleCredentialsCommand handles the credentials subcommand:
// workspace-scoped secrets keyed by (service, account).
func HandleCredentialsCommand() {
	if len(os.Args) < 3 {
		showCredentialsHelp()
		os.Exit(1)
	}

	action := os.Args[2]
	if action == "-h" || action == "--help" || action == "help" {
		showCredentialsHelp()
		os.Exit(0)
	}

	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Printf("Error loading settings: %v\n", err)
		os.Exit(1)
	}

	store, err := credentials.NewStore(settings.WorkspaceID, settings.Namespace, settings.Context)
	if err != nil {
		fmt.Printf("Error: %v (set workspace_id in settings or PORTWATCH_WORKSPACE_ID)\n", err)
		os.Exit(1)
	}

	args := os.Args[3:]
	switch action {
	case "get":
		requireArgs(args, 2, "credentials get <service> <account>")
		password, err := store.Get(args[0], args[1])
		if err != nil {
			exitCredentialsErr(err)
		}
		fmt.Println(password)

	case "set":
		requireArgs(args, 2, "credentials set <service> <account>")
		password, err := readPassword()
		if err != nil {
			fmt.Printf("Error reading password: %v\n", err)
			os.Exit(1)
		}
		if err := store.Set(args[0], args[1], password); err != nil {
			exitCredentialsErr(err)
		}
		fmt.Printf("Stored credential for %s/%s\n", args[0], args[1])

	case "delete":
		requireArgs(args, 2, "credentials delete <service> <account>")
		if err := store.Delete(args[0], args[1]); err != nil {
			exitCredentialsErr(err)
		}
		fmt.Printf("Deleted credential for %s/%s\n", args[0], args[1])

	case "accounts":
		requireArgs(args, 1, "credentials accounts <service>")
		accounts, err := store.FindAccounts(args[0])
		if err != nil {
			exitCredentialsErr(err)
		}
		if len(accounts) == 0 {
			fmt.Printf("No accounts stored for service %q\n", args[0])
			return
		}
		for _, account := range accounts {
			fmt.Println(account)
		}

	default:
		fmt.Printf("Unknown credentials action: %s\n\n", action)
		showCredentialsHelp()
		os.Exit(1)
	}
}

func requireArgs(args []string, n int, usage string) {
	if len(args) < n {
		fmt.Printf("Usage: %s %s\n", os.Args[0], usage)
		os.Exit(1)
	}
}

// readPassword takes the password from stdin so it never lands in the
// shell history.
func readPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func exitCredentialsErr(err error) {
	if errors.Is(err, credentials.ErrNotFound) {
		fmt.Printf("Not found: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Error: %v\n", err)
	os.Exit(1)
}

// showCredentialsHelp displays help for the credentials command.
func showCredentialsHelp() {
	programName := os.Args[0]
	fmt.Fprintf(os.Stderr, `%s credentials - Workspace credential store

Store and retrieve per-service credentials as workspace-scoped
Kubernetes secrets. The password for "set" is read from stdin.

Usage:
  %s credentials <action> [arguments]

Actions:
  get <service> <account>     Print the stored password
  set <service> <account>     Store or replace a password (stdin)
  delete <service> <account>  Remove a stored credential
  accounts <service>          List accounts stored for a service

Examples:
  %s credentials set registry deploy-bot
  %s credentials get registry deploy-bot
  %s credentials accounts registry
`, programName, programName, programName, programName, programName)
}
