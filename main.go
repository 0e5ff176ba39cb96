package main

import (
	"context"
	"fmt"
	"os"

	"portwatch/pkg/cmd"
	"portwatch/pkg/config"
	"portwatch/pkg/logging"
	"portwatch/pkg/netstat"
	"portwatch/pkg/policy"
	"portwatch/pkg/redirect"
	"portwatch/pkg/registry"
	"portwatch/pkg/ui"
	"portwatch/pkg/watcher"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	logging.LogDebug("Logger test: main started")

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "scan":
			cmd.HandleScanCommand()
			return
		case "servers":
			cmd.HandleServersCommand()
			return
		case "credentials":
			cmd.HandleCredentialsCommand()
			return
		case "help":
			cmd.HandleHelpCommand()
			return
		case "-h", "--help":
			cmd.ShowMainHelpAndExit()
			return
		}
	}

	// Default behavior - start the watch TUI
	runWatch()
}

func runWatch() {
	settings, err := config.LoadSettings()
	if err != nil {
		// Defaults still apply; the broken file is worth a note.
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		logging.LogError("Settings load: %v", err)
	}

	// The declared servers are the basis for every decision; without
	// them the watch mode cannot run.
	reg, err := registry.Load(registry.LoadOptions{
		ServersFile:   settings.ServersFile,
		Context:       settings.Context,
		Namespace:     settings.Namespace,
		WorkspaceID:   settings.WorkspaceID,
		URLAnnotation: settings.URLAnnotation,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	store, err := config.NewStore()
	if err != nil {
		// Decisions and history degrade gracefully without the store.
		fmt.Fprintf(os.Stderr, "Warning: decision store unavailable: %v\n", err)
		logging.LogError("Store init: %v", err)
		store = nil
	}

	pool := redirect.NewPool(reg.RedirectTargets())
	redirector := redirect.NewRedirector()
	w := watcher.New(netstat.NewSampler(), settings.PollInterval())

	if err := w.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	prompter := ui.NewPrompter()
	engine := policy.NewEngine(reg, pool, redirector, prompter, ui.BrowserOpener{}, decisionStore(store), historyRecorder(store))
	engine.Watch(w)

	model := ui.NewModel(ui.Deps{
		Registry:   reg,
		Pool:       pool,
		Redirector: redirector,
		Watcher:    w,
		Store:      store,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())
	prompter.Attach(p)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	cancel()
	model.Cleanup()
}

// decisionStore narrows the optional store to the policy interface
// without handing it a typed nil.
func decisionStore(store config.Store) policy.DecisionStore {
	if store == nil {
		return nil
	}
	return store
}

func historyRecorder(store config.Store) policy.HistoryRecorder {
	if store == nil {
		return nil
	}
	return store
}
