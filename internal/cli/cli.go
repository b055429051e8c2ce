// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing for chatline.
//
// The binary has a small surface: the TUI is the default command, `serve`
// runs the demo backend standalone, and `version` prints build info.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdServe
	CmdExport
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	BackendURL string // --backend overrides the configured backend URL
	Listen     string // --listen overrides the serve address
	Theme      string // --theme dark|light
	Format     string // --format markdown|json (export only)
	OutputDir  string // --out target directory (export only)
	Demo       bool   // --demo forces the embedded demo backend
	NoDemo     bool   // --no-demo disables the embedded demo backend

	// Raw args remaining after flag parsing
	Raw []string
}

const usageText = `chatline - a terminal chat client

Chatline talks to a conversation backend over HTTP and streams assistant
replies over one websocket channel per conversation. Without a backend it
can run its own demo server backed by a local SQLite store.

Usage:
  chatline                 Start the TUI (default)
  chatline serve           Run the demo backend standalone
  chatline export ID       Export a stored conversation to a file
  chatline version, -v     Print version information
  chatline help, -h        Show this help

Flags:
  --backend URL            Backend base URL (default http://localhost:8000)
  --listen ADDR            Demo backend listen address (serve only)
  --theme dark|light       Color theme override
  --format markdown|json   Export format (default markdown)
  --out DIR                Export output directory (default .)
  --demo                   Start the embedded demo backend
  --no-demo                Never start the embedded demo backend

Environment:
  CHATLINE_BACKEND_URL     Same as --backend
  CHATLINE_THEME           Same as --theme
  CHATLINE_DEMO            "1" enables the embedded demo backend

Configuration is read from ~/.chatline/config.toml.
`

// Parse reads os.Args and returns the command plus its arguments.
func Parse() (Command, Args) {
	raw := os.Args[1:]

	cmd := CmdTUI
	var rest []string
	if len(raw) > 0 && !strings.HasPrefix(raw[0], "-") {
		switch raw[0] {
		case "serve":
			cmd = CmdServe
		case "export":
			cmd = CmdExport
		case "version":
			cmd = CmdVersion
		case "help":
			cmd = CmdHelp
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", raw[0], usageText)
			os.Exit(2)
		}
		rest = raw[1:]
	} else {
		rest = raw
	}

	args, err := parseFlags(rest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n\n%s", err, usageText)
		os.Exit(2)
	}

	switch {
	case args.has("h", "help"):
		cmd = CmdHelp
	case args.has("v", "version"):
		cmd = CmdVersion
	}
	return cmd, args.Args
}

// HandleVersion prints build information.
func HandleVersion() {
	fmt.Printf("chatline %s\n", Version)
	fmt.Printf("  commit: %s\n", GitCommit)
	fmt.Printf("  built:  %s\n", BuildDate)
	fmt.Printf("  go:     %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// HandleHelp prints usage.
func HandleHelp() {
	fmt.Print(usageText)
}

// =============================================================================
// FLAG PARSING
// =============================================================================

type parsed struct {
	Args
	bools map[string]bool
}

func (p *parsed) has(names ...string) bool {
	for _, n := range names {
		if p.bools[n] {
			return true
		}
	}
	return false
}

// parseFlags handles --flag value, --flag=value, and boolean --flag forms.
func parseFlags(raw []string) (*parsed, error) {
	p := &parsed{bools: make(map[string]bool)}

	i := 0
	for i < len(raw) {
		arg := raw[i]
		if !strings.HasPrefix(arg, "-") {
			p.Raw = append(p.Raw, arg)
			i++
			continue
		}

		name := strings.TrimLeft(arg, "-")
		value := ""
		hasValue := false
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			name, value = name[:eq], name[eq+1:]
			hasValue = true
		}

		takesValue := name == "backend" || name == "listen" || name == "theme" ||
			name == "format" || name == "out"
		if takesValue && !hasValue {
			if i+1 >= len(raw) {
				return nil, fmt.Errorf("flag --%s requires a value", name)
			}
			value = raw[i+1]
			i++
		}

		switch name {
		case "backend":
			p.BackendURL = value
		case "listen":
			p.Listen = value
		case "theme":
			p.Theme = value
		case "format":
			p.Format = value
		case "out":
			p.OutputDir = value
		case "demo":
			p.Demo = true
		case "no-demo":
			p.NoDemo = true
		case "h", "help", "v", "version":
			p.bools[name] = true
		default:
			return nil, fmt.Errorf("unknown flag --%s", name)
		}
		i++
	}
	return p, nil
}
