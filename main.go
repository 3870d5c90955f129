// parley - a terminal chat client for hosted LLMs.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/parley/internal/chat"
	"github.com/jeranaias/parley/internal/cli"
	"github.com/jeranaias/parley/internal/config"
	"github.com/jeranaias/parley/internal/provider"
	"github.com/jeranaias/parley/internal/settings"
	"github.com/jeranaias/parley/internal/storage"
	"github.com/jeranaias/parley/internal/telemetry"
	uichat "github.com/jeranaias/parley/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	args, err := cli.Parse(os.Args[1:])
	if err != nil {
		cli.Fatal(err)
	}

	switch args.Command {
	case cli.CmdHelp:
		cli.PrintUsage()
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdConfig:
		if err := cli.HandleConfig(args, openSettings()); err != nil {
			cli.Fatal(err)
		}
	case cli.CmdStats:
		requestLog, err := openTelemetry()
		if err != nil {
			cli.Fatal(err)
		}
		defer requestLog.Close()
		if err := cli.HandleStats(args, requestLog); err != nil {
			cli.Fatal(err)
		}
	case cli.CmdExport:
		convStore, err := storage.NewStore()
		if err != nil {
			cli.Fatal(err)
		}
		if err := cli.HandleExport(args, convStore); err != nil {
			cli.Fatal(err)
		}
	case cli.CmdAsk:
		runAsk(args)
	case cli.CmdTUI:
		runTUI(args)
	}
}

// loadProvider builds the configured backend, honoring --provider.
func loadProvider(args *cli.Args) (provider.Provider, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if args.Provider != "" {
		cfg.Provider = args.Provider
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}
	backend, err := provider.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return backend, cfg, nil
}

// openSettings opens the preference store, degrading to in-memory
// defaults when the home directory is unavailable.
func openSettings() *settings.Store {
	path, err := settings.DefaultPath()
	if err != nil {
		log.Printf("settings unavailable, using defaults: %v", err)
		return settings.NewInMemory()
	}
	return settings.New(path)
}

// openTelemetry opens the local request log.
func openTelemetry() (*telemetry.Log, error) {
	path, err := telemetry.DefaultPath()
	if err != nil {
		return nil, err
	}
	return telemetry.Open(path)
}

// runAsk handles the one-shot ask command.
func runAsk(args *cli.Args) {
	backend, _, err := loadProvider(args)
	if err != nil {
		cli.Fatal(err)
	}

	store := openSettings()
	var recorder chat.Recorder
	if requestLog, err := openTelemetry(); err == nil {
		defer requestLog.Close()
		recorder = requestLog
	} else {
		log.Printf("telemetry disabled: %v", err)
	}

	if err := cli.HandleAsk(args, backend, store, recorder); err != nil {
		cli.Fatal(err)
	}
}

// runTUI starts the interactive chat.
func runTUI(args *cli.Args) {
	backend, _, err := loadProvider(args)
	if err != nil {
		cli.Fatal(err)
	}

	store := openSettings()
	ctrl := chat.NewController(backend, store)

	requestLog, err := openTelemetry()
	if err == nil {
		defer requestLog.Close()
		ctrl.WithRecorder(requestLog)
	} else {
		log.Printf("telemetry disabled: %v", err)
	}

	m := uichat.New(ctrl, store, backend.Name())
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		cli.Fatal(fmt.Errorf("ui error: %w", err))
	}

	// Persist the transcript so it can be exported or resumed later.
	// Snapshot under the controller lock; a send goroutine may still be
	// finishing when the program exits mid-call.
	if convStore, err := storage.NewStore(); err == nil {
		if err := convStore.Save(ctrl.Snapshot()); err != nil {
			log.Printf("could not save conversation: %v", err)
		}
	}
}
