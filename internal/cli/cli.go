// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - argument parsing and command dispatch for parley.
package cli

import (
	"fmt"
	"os"
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
	CmdAsk
	CmdConfig
	CmdStats
	CmdExport
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	Command Command

	// Global flags
	Quiet    bool
	Plain    bool // disable markdown rendering for ask output
	Provider string

	// Command-specific
	Query      string
	Subcommand string
	ConfigKey  string
	ConfigVal  string

	// Raw args remaining after parsing
	Raw []string
}

const usageText = `parley - terminal chat for hosted LLMs

Parley forwards your messages to a hosted model (OpenAI or Google
Gemini) and renders the replies in your terminal.

Usage:
  parley                      Start the chat TUI (default)
  parley ask "question"       Ask a single question and exit
  parley config list          Show all preferences
  parley config get KEY       Show one preference
  parley config set KEY VAL   Change a preference
  parley config reset         Restore preference defaults
  parley stats [--days N]     Show provider request statistics
  parley export [ID]          Export a conversation (--format md|json)
  parley version              Show version
  parley help                 Show this help

Preferences:
  use_web_search   Let the model consult live web results (true/false)
  theme            UI appearance: auto, light, or dark

Flags:
  --provider NAME  Override the configured provider (openai, gemini)
  --plain          Plain text output for ask (no markdown rendering)
  -q, --quiet      Minimal output

Configuration:
  ~/.parley/config.toml holds the provider, API keys, and models.
  OPENAI_API_KEY / GEMINI_API_KEY environment variables override it.

Examples:
  parley ask "What is a goroutine?"
  parley config set use_web_search true
  parley config set theme dark
  parley stats --days 7
`

// Parse parses command-line arguments into an Args struct.
func Parse(argv []string) (*Args, error) {
	args := &Args{Command: CmdTUI}

	var positional []string
	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch {
		case arg == "-q" || arg == "--quiet":
			args.Quiet = true
		case arg == "--plain":
			args.Plain = true
		case arg == "--provider":
			if i+1 >= len(argv) {
				return nil, fmt.Errorf("--provider requires a value")
			}
			i++
			args.Provider = argv[i]
		case strings.HasPrefix(arg, "--provider="):
			args.Provider = strings.TrimPrefix(arg, "--provider=")
		case arg == "-h" || arg == "--help":
			args.Command = CmdHelp
			return args, nil
		case strings.HasPrefix(arg, "-") && arg != "-":
			// Command-specific flags (e.g. --days) pass through.
			positional = append(positional, arg)
		default:
			positional = append(positional, arg)
		}
	}

	if len(positional) == 0 {
		return args, nil
	}

	cmd, rest := positional[0], positional[1:]
	switch cmd {
	case "ask":
		args.Command = CmdAsk
		args.Query = strings.Join(rest, " ")
	case "config":
		args.Command = CmdConfig
		if len(rest) > 0 {
			args.Subcommand = rest[0]
		}
		if len(rest) > 1 {
			args.ConfigKey = rest[1]
		}
		if len(rest) > 2 {
			args.ConfigVal = strings.Join(rest[2:], " ")
		}
	case "stats":
		args.Command = CmdStats
		args.Raw = rest
	case "export":
		args.Command = CmdExport
		args.Raw = rest
	case "version", "--version", "-V":
		args.Command = CmdVersion
	case "help":
		args.Command = CmdHelp
	default:
		return nil, fmt.Errorf("unknown command %q (try 'parley help')", cmd)
	}

	return args, nil
}

// PrintUsage writes the usage text to stdout.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion writes version information to stdout.
func PrintVersion() {
	fmt.Printf("parley %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}

// Fatal prints an error and exits non-zero.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "parley: %v\n", err)
	os.Exit(1)
}
