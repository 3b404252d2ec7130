// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// session_cmd.go - Session management commands for the aichat CLI.
package cli

import (
	"fmt"

	"github.com/sspencer10/aichat-tui/internal/config"
	"github.com/sspencer10/aichat-tui/internal/storage"
)

// HandleSession handles the "session" command and its subcommands.
func HandleSession(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	switch args.Subcommand {
	case "list", "":
		return sessionList(store)

	case "show":
		id, err := sessionTarget(args)
		if err != nil {
			return err
		}
		return sessionShow(store, id)

	case "export":
		id, err := sessionTarget(args)
		if err != nil {
			return err
		}
		return sessionExport(store, id, args.JSON)

	case "delete":
		id, err := sessionTarget(args)
		if err != nil {
			return err
		}
		if err := store.DeleteSession(id); err != nil {
			return err
		}
		fmt.Printf("Deleted session %s\n", id)
		return nil

	default:
		return fmt.Errorf("unknown session subcommand %q (try list, show, export, delete)", args.Subcommand)
	}
}

// sessionTarget pulls the required session ID argument.
func sessionTarget(args Args) (string, error) {
	if len(args.Raw) != 1 {
		return "", fmt.Errorf("usage: aichat session %s <session-id>", args.Subcommand)
	}
	return args.Raw[0], nil
}

func sessionList(store *storage.Store) error {
	metas, err := store.ListSessions()
	if err != nil {
		return err
	}
	fmt.Println(storage.FormatSessionList(metas))
	return nil
}

// sessionShow prints a transcript with terminal rendering.
func sessionShow(store *storage.Store, id string) error {
	session, err := store.GetSession(id)
	if err != nil {
		return err
	}
	msgs, err := store.FetchMessages(id)
	if err != nil {
		return err
	}

	fmt.Println(RenderResponse(storage.ExportMarkdown(session, msgs)))
	return nil
}

// sessionExport prints the raw transcript, suitable for piping to a file.
func sessionExport(store *storage.Store, id string, asJSON bool) error {
	session, err := store.GetSession(id)
	if err != nil {
		return err
	}
	msgs, err := store.FetchMessages(id)
	if err != nil {
		return err
	}

	if asJSON {
		out, err := storage.ExportJSON(session, msgs)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}
	fmt.Print(storage.ExportMarkdown(session, msgs))
	return nil
}
