// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question handler for the aichat CLI.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/sspencer10/aichat-tui/internal/assist"
	"github.com/sspencer10/aichat-tui/internal/chat"
	"github.com/sspencer10/aichat-tui/internal/config"
)

// HandleAsk handles the "ask" command: send one question, print the answer.
// No session is created and nothing is persisted.
func HandleAsk(args Args) error {
	query := strings.TrimSpace(args.Query)
	if query == "" {
		return fmt.Errorf("usage: aichat ask \"question\"")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	modelName := cfg.Chat.Model
	if args.Model != "" {
		modelName = args.Model
	}

	client := assist.NewClient(&assist.ClientConfig{
		URL:     cfg.Server.URL,
		APIKey:  cfg.Server.APIKey,
		Timeout: cfg.Timeout(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
	defer cancel()

	resp, err := client.Ask(ctx, &assist.AskRequest{
		Command:   query,
		Model:     modelName,
		WebSearch: args.WebSearch,
	})
	if err != nil {
		return err
	}
	if resp.Error != "" {
		return fmt.Errorf("server error: %s", resp.Error)
	}

	// Strip any trailing title marker; one-shot output has no session to name.
	body, _ := chat.ExtractTitle(resp.Text())
	fmt.Println(RenderResponse(body))

	if args.Verbose {
		if resp.ModelUsed != "" {
			fmt.Printf("\nModel: %s\n", resp.ModelUsed)
		}
		if resp.TotalCost != "" {
			fmt.Printf("Cost: %s\n", resp.TotalCost)
		}
	}
	return nil
}
