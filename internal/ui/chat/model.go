// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	chatcore "github.com/sspencer10/aichat-tui/internal/chat"
	"github.com/sspencer10/aichat-tui/internal/model"
)

// =============================================================================
// MESSAGES
// =============================================================================

// convEventMsg wraps a conversation state change for the Bubble Tea loop.
type convEventMsg model.Event

// eventsClosedMsg signals that the conversation subscription ended.
type eventsClosedMsg struct{}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view. It is a thin projection:
// all conversation mutations happen inside the session manager, and the view
// re-renders from conversation snapshots whenever a change event arrives.
type Model struct {
	manager *chatcore.Manager
	conv    *model.Conversation

	events      <-chan model.Event
	unsubscribe func()

	// UI Components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// Markdown rendering
	renderer *glamour.TermRenderer

	// Dimensions
	width  int
	height int
	ready  bool

	statusMsg string
}

// New creates the chat view bound to a session manager.
func New(manager *chatcore.Manager) Model {
	input := textinput.New()
	input.Placeholder = "Type a command..."
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	events, unsubscribe := manager.Conversation().Subscribe()

	return Model{
		manager:     manager,
		conv:        manager.Conversation(),
		events:      events,
		unsubscribe: unsubscribe,
		input:       input,
		spinner:     sp,
	}
}

// Init starts the event pump and spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForEvent(), m.spinner.Tick, textinput.Blink)
}

// waitForEvent blocks on the next conversation change.
func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return eventsClosedMsg{}
		}
		return convEventMsg(ev)
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles Bubble Tea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.unsubscribe()
			return m, tea.Quit

		case "enter":
			command := strings.TrimSpace(m.input.Value())
			if command != "" {
				m.input.Reset()
				m.statusMsg = ""
				manager := m.manager
				cmds = append(cmds, func() tea.Msg {
					manager.Send(command)
					return nil
				})
			}

		case "ctrl+n":
			m.manager.NewSession()
			m.statusMsg = "Started a new session"

		case "ctrl+w":
			m.manager.EnableWebSearch()
			m.statusMsg = "Web search armed for the next command"

		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}

	case convEventMsg:
		m.refreshViewport()
		if model.Event(msg).Kind != model.EventTyping {
			m.viewport.GotoBottom()
		}
		cmds = append(cmds, m.waitForEvent())

	case eventsClosedMsg:
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// layout recomputes component sizes after a resize.
func (m *Model) layout() {
	headerHeight := 1
	footerHeight := 3

	if !m.ready {
		m.viewport = viewport.New(m.width, m.height-headerHeight-footerHeight)
		m.ready = true
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = m.height - headerHeight - footerHeight
	}
	m.input.Width = m.width - 4

	// Glamour wraps to the viewport width; rebuild on resize.
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(m.viewport.Width-4),
	)
	if err == nil {
		m.renderer = renderer
	}
}

// refreshViewport re-renders the transcript from a conversation snapshot.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
}

// =============================================================================
// RENDERING HELPERS
// =============================================================================

// renderMarkdown renders assistant text through glamour, falling back to the
// raw text when rendering fails.
func (m *Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

// sessionTitle returns the active session title, or a placeholder.
func (m *Model) sessionTitle() string {
	if s := m.conv.CurrentSession(); s != nil {
		return s.Title
	}
	return "New Session"
}
