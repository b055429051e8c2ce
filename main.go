// chatline - a terminal chat client for streaming conversation backends.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/morganforge/chatline/internal/api"
	"github.com/morganforge/chatline/internal/cli"
	"github.com/morganforge/chatline/internal/config"
	"github.com/morganforge/chatline/internal/export"
	"github.com/morganforge/chatline/internal/server"
	"github.com/morganforge/chatline/internal/storage"
	"github.com/morganforge/chatline/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdServe:
		runServe(args)
	case cli.CmdExport:
		runExport(args)
	case cli.CmdVersion:
		cli.HandleVersion()
	case cli.CmdHelp:
		cli.HandleHelp()
	default:
		runTUI(args)
	}
}

// loadConfig reads configuration and applies CLI overrides on top of it.
func loadConfig(args cli.Args) *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if args.BackendURL != "" {
		cfg.Backend.BaseURL = args.BackendURL
	}
	if args.Listen != "" {
		cfg.Demo.Listen = args.Listen
	}
	if args.Theme != "" {
		cfg.UI.Theme = args.Theme
	}
	if args.Demo {
		cfg.Demo.Enabled = true
	}
	if args.NoDemo {
		cfg.Demo.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// runTUI starts the chat interface, optionally starting the embedded demo
// backend first.
func runTUI(args cli.Args) {
	cfg := loadConfig(args)

	// The TUI needs a real terminal; refuse to start when piped.
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: chatline requires an interactive terminal")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Demo.Enabled {
		if err := startDemoBackend(ctx, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	client := api.NewClient(cfg.EffectiveBaseURL())
	m := chat.New(cfg, client)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running chatline: %v\n", err)
		os.Exit(1)
	}
}

// runServe runs the demo backend standalone, logging to stderr.
func runServe(args cli.Args) {
	cfg := loadConfig(args)

	dbPath, err := cfg.DemoDatabasePath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	srv := server.New(store, nil)
	srv.SetLogger(log.New(os.Stderr, "chatline-serve ", log.LstdFlags))

	fmt.Fprintf(os.Stderr, "chatline demo backend listening on %s\n", cfg.Demo.Listen)
	if err := srv.ListenAndServe(context.Background(), cfg.Demo.Listen); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runExport writes a stored conversation from the demo database to a file.
func runExport(args cli.Args) {
	cfg := loadConfig(args)

	if len(args.Raw) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: chatline export ID [--format markdown|json] [--out DIR]")
		os.Exit(2)
	}
	id := args.Raw[0]

	opts := export.DefaultOptions()
	if args.OutputDir != "" {
		opts.OutputDir = args.OutputDir
	}
	format := args.Format
	if format == "" {
		format = "markdown"
	}
	exporter, err := export.ForFormat(format, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	dbPath, err := cfg.DemoDatabasePath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	store, err := storage.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conv, err := store.Get(ctx, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	path, err := export.ToFile(&conv, exporter, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Exported to %s\n", path)
}

// startDemoBackend launches the embedded demo backend in the background and
// returns once it is accepting connections.
func startDemoBackend(ctx context.Context, cfg *config.Config) error {
	dbPath, err := cfg.DemoDatabasePath()
	if err != nil {
		return err
	}

	store, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open demo database: %w", err)
	}

	srv := server.New(store, nil)
	go func() {
		defer store.Close()
		if err := srv.ListenAndServe(ctx, cfg.Demo.Listen); err != nil {
			fmt.Fprintf(os.Stderr, "demo backend stopped: %v\n", err)
		}
	}()

	// Wait briefly for the listener so the first request does not race it.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", cfg.Demo.Listen, 100*time.Millisecond)
		if err == nil {
			conn.Close()
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("demo backend did not start on %s", cfg.Demo.Listen)
}
