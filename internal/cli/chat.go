// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat REPL for the aichat CLI.
//
// The REPL drives the same session manager as the TUI: input goes to the
// manager, the manager mutates the conversation, and the REPL watches
// conversation events to know when a response has finished.
package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/sspencer10/aichat-tui/internal/assist"
	"github.com/sspencer10/aichat-tui/internal/chat"
	"github.com/sspencer10/aichat-tui/internal/config"
	"github.com/sspencer10/aichat-tui/internal/model"
	"github.com/sspencer10/aichat-tui/internal/storage"
	"github.com/sspencer10/aichat-tui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(styles.Purple).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	warningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for the interactive REPL.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	cli := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	cli.LoadHistory()
	return cli
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt. Arrow keys
// navigate history.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists command history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0755); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// REPL STATE
// =============================================================================

// chatREPL bundles the manager, store, and event stream for one REPL run.
type chatREPL struct {
	store   *storage.Store
	manager *chat.Manager
	conv    *model.Conversation

	events      <-chan model.Event
	unsubscribe func()

	input *ChatCLI
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChat handles the "chat" command.
func HandleChat(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if args.Model != "" {
		cfg.Chat.Model = args.Model
	}

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	client := assist.NewClient(&assist.ClientConfig{
		URL:     cfg.Server.URL,
		APIKey:  cfg.Server.APIKey,
		Timeout: cfg.Timeout(),
	})

	// Exchange plumbing logs go to a file, not the prompt line.
	logger := NewFileLogger()

	var speaker chat.Speaker
	if cfg.Speech.Enabled {
		speaker = NewCommandSpeaker(cfg.Speech.Command, logger)
	}

	conv := model.NewConversation()
	manager := chat.NewManager(chat.Options{
		Conversation: conv,
		Repository:   store,
		Transport:    client,
		Speaker:      speaker,
		Opener:       NewExecOpener(logger),
		Model:        cfg.Chat.Model,
		HistoryLimit: cfg.Chat.HistoryLimit,
		SyncInterval: cfg.SyncInterval(),
		Logger:       logger,
	})

	events, unsubscribe := conv.Subscribe()
	defer unsubscribe()

	repl := &chatREPL{
		store:       store,
		manager:     manager,
		conv:        conv,
		events:      events,
		unsubscribe: unsubscribe,
		input:       NewChatCLI(),
	}
	defer repl.input.Close()

	printWelcome(cfg)

	for {
		input, err := repl.input.ReadInput(promptStyle.Render("aichat> "))
		if err != nil {
			// Ctrl+C or Ctrl+D: exit gracefully.
			fmt.Println()
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			keepGoing, err := repl.handleSlashCommand(input)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
			}
			if !keepGoing {
				return nil
			}
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			return nil
		}

		repl.manager.Send(input)
		response := repl.awaitResponse()
		if response == "" {
			fmt.Fprintln(os.Stderr, warningStyle.Render("[No response received]"))
			continue
		}
		fmt.Println()
		fmt.Println(RenderResponse(response))
		fmt.Println()
	}
}

// awaitResponse blocks until the exchange started by the last Send settles,
// then returns the assistant's reply.
//
// Remote exchanges bracket their work with typing on/off; local actions
// append the user command and the canned reply with no typing at all. The
// second append before any typing event is therefore the local reply.
func (r *chatREPL) awaitResponse() string {
	appends := 0
	sawTyping := false

	for ev := range r.events {
		switch ev.Kind {
		case model.EventTyping:
			if ev.IsTyping {
				sawTyping = true
			} else if sawTyping {
				return r.lastAssistantText()
			}
		case model.EventAppend:
			appends++
			if appends >= 2 && !sawTyping {
				return r.lastAssistantText()
			}
		}
	}
	return ""
}

// lastAssistantText returns the trailing assistant message, if any.
func (r *chatREPL) lastAssistantText() string {
	msgs := r.conv.Messages()
	if len(msgs) == 0 {
		return ""
	}
	last := msgs[len(msgs)-1]
	if last.IsUser {
		return ""
	}
	return last.Content
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes a /command. The bool reports whether the REPL
// should keep running.
func (r *chatREPL) handleSlashCommand(input string) (bool, error) {
	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	rest := parts[1:]

	switch cmd {
	case "/quit", "/exit":
		return false, nil

	case "/help":
		fmt.Println(infoStyle.Render(
			"/new · /sessions · /load <id> · /model <name> · /web · /contact <number> · /quit"))
		return true, nil

	case "/new":
		r.manager.NewSession()
		fmt.Println(infoStyle.Render("Started a new session."))
		return true, nil

	case "/sessions":
		metas, err := r.store.ListSessions()
		if err != nil {
			return true, err
		}
		fmt.Println(storage.FormatSessionList(metas))
		return true, nil

	case "/load":
		if len(rest) != 1 {
			return true, fmt.Errorf("usage: /load <session-id>")
		}
		session, err := r.store.GetSession(rest[0])
		if err != nil {
			return true, err
		}
		msgs, err := r.store.FetchMessages(session.ID)
		if err != nil {
			return true, err
		}
		r.manager.LoadSession(session, msgs)
		fmt.Println(infoStyle.Render(fmt.Sprintf("Loaded %q (%d messages).", session.Title, len(msgs))))
		return true, nil

	case "/model":
		if len(rest) != 1 {
			return true, fmt.Errorf("usage: /model <name>")
		}
		r.manager.SetModel(rest[0])
		fmt.Println(infoStyle.Render("Model set to " + rest[0] + "."))
		return true, nil

	case "/web":
		r.manager.EnableWebSearch()
		fmt.Println(infoStyle.Render("Web search armed for the next command."))
		return true, nil

	case "/contact":
		if len(rest) != 1 {
			return true, fmt.Errorf("usage: /contact <number>")
		}
		r.manager.SetContactNumber(rest[0])
		fmt.Println(infoStyle.Render("Contact number set."))
		return true, nil

	default:
		return true, fmt.Errorf("unknown command %s (try /help)", cmd)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// printWelcome shows the banner and active settings.
func printWelcome(cfg *config.Config) {
	fmt.Println(welcomeStyle.Render("aichat interactive chat"))
	fmt.Println(infoStyle.Render(fmt.Sprintf("Model: %s · Server: %s", cfg.Chat.Model, cfg.Server.URL)))
	fmt.Println(infoStyle.Render("Type /help for commands, /quit to exit."))
	fmt.Println()
}

// NewFileLogger logs exchange diagnostics to ~/.aichat/aichat.log so they
// do not tear up the prompt line or the TUI frame.
func NewFileLogger() *log.Logger {
	dir, err := config.ConfigDir()
	if err != nil {
		return log.New(io.Discard, "", 0)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return log.New(io.Discard, "", 0)
	}
	f, err := os.OpenFile(filepath.Join(dir, "aichat.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return log.New(io.Discard, "", 0)
	}
	return log.New(f, "", log.LstdFlags)
}
