// aichat TUI - A terminal client for the sspencer10 streaming assist service.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sspencer10/aichat-tui/internal/assist"
	"github.com/sspencer10/aichat-tui/internal/chat"
	"github.com/sspencer10/aichat-tui/internal/cli"
	"github.com/sspencer10/aichat-tui/internal/config"
	"github.com/sspencer10/aichat-tui/internal/model"
	"github.com/sspencer10/aichat-tui/internal/storage"
	uichat "github.com/sspencer10/aichat-tui/internal/ui/chat"
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
	case cli.CmdAsk:
		exitOnError(cli.HandleAsk(args))
	case cli.CmdChat:
		exitOnError(cli.HandleChat(args))
	case cli.CmdSession:
		exitOnError(cli.HandleSession(args))
	case cli.CmdConfig:
		exitOnError(cli.HandleConfig(args))
	case cli.CmdVersion:
		cli.HandleVersion()
	case cli.CmdHelp:
		cli.HandleHelp()
	default:
		runTUI(args)
	}
}

// exitOnError prints the error and exits non-zero.
func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runTUI wires the full stack and starts the Bubble Tea program.
func runTUI(args cli.Args) {
	cfg, err := config.Load()
	if err != nil {
		exitOnError(fmt.Errorf("load config: %w", err))
	}
	if args.Model != "" {
		cfg.Chat.Model = args.Model
	}

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		exitOnError(fmt.Errorf("open storage: %w", err))
	}
	defer store.Close()

	client := assist.NewClient(&assist.ClientConfig{
		URL:     cfg.Server.URL,
		APIKey:  cfg.Server.APIKey,
		Timeout: cfg.Timeout(),
	})

	logger := cli.NewFileLogger()

	var speaker chat.Speaker
	if cfg.Speech.Enabled {
		speaker = cli.NewCommandSpeaker(cfg.Speech.Command, logger)
	}

	manager := chat.NewManager(chat.Options{
		Conversation: model.NewConversation(),
		Repository:   store,
		Transport:    client,
		Speaker:      speaker,
		Opener:       cli.NewExecOpener(logger),
		Model:        cfg.Chat.Model,
		HistoryLimit: cfg.Chat.HistoryLimit,
		SyncInterval: cfg.SyncInterval(),
		Logger:       logger,
	})
	if args.WebSearch {
		manager.EnableWebSearch()
	}

	m := uichat.New(manager)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		exitOnError(fmt.Errorf("run TUI: %w", err))
	}
}
