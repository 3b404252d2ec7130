// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat contains the session manager driving the exchange lifecycle.
package chat

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/sspencer10/aichat-tui/internal/assist"
	"github.com/sspencer10/aichat-tui/internal/model"
)

// =============================================================================
// COLLABORATOR CONTRACTS
// =============================================================================

// Repository is the durable store the manager commits exchanges to.
type Repository interface {
	// CreateSession persists a new session immediately and returns it.
	CreateSession(title string) (*model.Session, error)

	// BatchAddMessages appends all writes to a session in one transaction;
	// either all of the batch is visible or none of it.
	BatchAddMessages(sessionID string, writes []model.PendingWrite) error
}

// Transport issues one request per exchange and delivers the response
// through the handler.
type Transport interface {
	AskStream(ctx context.Context, req *assist.AskRequest, handler assist.StreamHandler) error
}

// URLOpener hands an action URL (maps, sms, shortcuts) to the platform.
type URLOpener interface {
	Open(url string)
}

// =============================================================================
// MANAGER
// =============================================================================

// generatingText is the buffered-path placeholder shown while the full
// response is in flight.
const generatingText = "Generating response..."

// decodeFailureText replaces the placeholder when a buffered body cannot be
// decoded; the exchange is not persisted.
const decodeFailureText = "Sorry, something went wrong reading the response. Please try again."

// Options configures a Manager. Conversation, Repository, and Transport are
// required; the rest have sensible defaults.
type Options struct {
	Conversation *model.Conversation
	Repository   Repository
	Transport    Transport

	// Speaker, when non-nil, voices finished responses.
	Speaker Speaker

	// Opener, when non-nil, receives local-action URLs.
	Opener URLOpener

	// Model is the model identifier sent with every command.
	Model string

	// HistoryLimit is how many trailing turns accompany each command
	// (default 20).
	HistoryLimit int

	// SyncInterval is the minimum spacing between placeholder refreshes
	// during streaming (default 300ms).
	SyncInterval time.Duration

	Logger *log.Logger
}

// Manager owns one in-flight exchange at a time: it classifies commands,
// dispatches requests, assembles streamed fragments, throttles placeholder
// refreshes, and commits each completed exchange to the repository with
// exactly one batched write. Partial fragments never touch the repository.
//
// Transport callbacks may arrive on any goroutine; every callback is tagged
// with the generation of the exchange that started it and no-ops once a newer
// exchange has taken over, so a slow superseded stream can never corrupt the
// current buffer.
type Manager struct {
	conv    *model.Conversation
	repo    Repository
	client  Transport
	speaker Speaker
	opener  URLOpener
	logger  *log.Logger

	modelName    string
	historyLimit int
	syncInterval time.Duration

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	pending    pendingExchange
	dctx       DispatchContext
}

// pendingExchange is the transient state of one request/response cycle,
// reset synchronously before every dispatch.
type pendingExchange struct {
	// PERFORMANCE: strings.Builder avoids quadratic allocations
	buffer    strings.Builder
	streaming bool
	buffered  *assist.AskResponse
	finalized bool
	limiter   *rate.Limiter

	// userText is the command that started this exchange, captured at
	// dispatch. The batch write queues this copy; reading the conversation
	// at finalize instead could pick up a newer exchange's user message.
	userText string
}

// NewManager creates a session manager.
func NewManager(opts Options) *Manager {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 20
	}
	if opts.SyncInterval <= 0 {
		opts.SyncInterval = 300 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	return &Manager{
		conv:         opts.Conversation,
		repo:         opts.Repository,
		client:       opts.Transport,
		speaker:      opts.Speaker,
		opener:       opts.Opener,
		logger:       opts.Logger,
		modelName:    opts.Model,
		historyLimit: opts.HistoryLimit,
		syncInterval: opts.SyncInterval,
	}
}

// Conversation returns the conversation state the manager mutates.
func (m *Manager) Conversation() *model.Conversation {
	return m.conv
}

// =============================================================================
// AMBIENT STATE
// =============================================================================

// SetModel changes the model identifier for subsequent commands.
func (m *Manager) SetModel(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modelName = name
}

// Model returns the current model identifier.
func (m *Manager) Model() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.modelName
}

// EnableWebSearch arms the one-shot web search flag for the next exchange.
func (m *Manager) EnableWebSearch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dctx.WebSearch = true
}

// WebSearchArmed reports whether the next exchange requests a web search.
func (m *Manager) WebSearchArmed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dctx.WebSearch
}

// ArmUpload stages a document payload: the next command is wrapped with the
// upload marker and the payload rides along as an extra history turn.
func (m *Manager) ArmUpload(payload string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dctx.Upload = true
	m.dctx.UploadPayload = payload
}

// SetContactNumber records the number chosen through the contact picker.
func (m *Manager) SetContactNumber(number string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dctx.ContactNumber = number
}

// =============================================================================
// SESSION LIFECYCLE
// =============================================================================

// NewSession abandons any in-flight exchange and clears the conversation.
// The next completed exchange creates a fresh session.
func (m *Manager) NewSession() {
	m.mu.Lock()
	m.generation++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.pending = pendingExchange{}
	m.dctx = DispatchContext{}
	m.mu.Unlock()

	m.conv.StartNewSession()
}

// LoadSession abandons any in-flight exchange and replaces the conversation
// with a persisted session's messages.
func (m *Manager) LoadSession(s *model.Session, msgs []*model.Message) {
	m.mu.Lock()
	m.generation++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.pending = pendingExchange{}
	m.dctx = DispatchContext{}
	m.mu.Unlock()

	m.conv.LoadSession(s, msgs)
}

// ensureSession returns the active session, creating one with the given
// title if none exists yet. Returns nil when creation fails; the exchange
// then stays in memory only.
func (m *Manager) ensureSession(title string) *model.Session {
	if s := m.conv.CurrentSession(); s != nil {
		return s
	}
	s, err := m.repo.CreateSession(title)
	if err != nil {
		m.logger.Printf("chat: create session failed: %v", err)
		return nil
	}
	m.conv.SetSession(s)
	return s
}

// =============================================================================
// SEND
// =============================================================================

// Send runs one exchange for the given command. It never returns an error:
// all failure handling is terminal inside the manager, and the user-visible
// effect of a failure is at most a missing assistant bubble and no persisted
// row. Starting a new exchange supersedes any exchange still in flight.
func (m *Manager) Send(command string) {
	command = strings.TrimSpace(command)
	if command == "" {
		return
	}

	// Take over from any in-flight exchange before anything else; the reset
	// must be synchronous so late callbacks from the old exchange find a
	// stale generation, never a half-reset buffer.
	m.mu.Lock()
	m.generation++
	gen := m.generation
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.pending = pendingExchange{}
	dctx := m.dctx
	m.mu.Unlock()

	if action, ok := Classify(command, dctx); ok {
		m.handleLocal(command, action)
		return
	}

	m.dispatch(gen, command, dctx)
}

// handleLocal completes a locally classified exchange: synthetic assistant
// reply, context mutations, optional URL handoff, and the same single
// batched write a server exchange gets.
func (m *Manager) handleLocal(command string, action *LocalAction) {
	m.conv.AppendUser(command)
	m.conv.AppendAssistant(action.Reply)

	m.mu.Lock()
	if action.ClearPending {
		m.dctx.PendingNumber = ""
		m.dctx.AwaitingBody = false
	}
	if action.AwaitBody {
		m.dctx.AwaitingBody = true
	}
	if action.PendingNumber != "" {
		m.dctx.PendingNumber = action.PendingNumber
	}
	m.mu.Unlock()

	if session := m.ensureSession(action.SessionTitle); session != nil {
		writes := []model.PendingWrite{
			{Content: command, IsUser: true},
			{Content: action.Reply, IsUser: false},
		}
		if err := m.repo.BatchAddMessages(session.ID, writes); err != nil {
			m.logger.Printf("chat: batch write failed: %v", err)
		}
	}

	if action.OpenURL != "" && m.opener != nil {
		m.opener.Open(action.OpenURL)
	}
	m.speak(action.Reply)
}

// dispatch issues the transport request for a non-local command.
func (m *Manager) dispatch(gen uint64, command string, dctx DispatchContext) {
	// History is captured before the append so the command itself is not
	// doubled; it travels in the command field.
	history := m.conv.RecentHistory(m.historyLimit)
	if dctx.Upload && dctx.UploadPayload != "" {
		history = append(history, model.HistoryTurn{Role: "user", Content: dctx.UploadPayload})
	}
	outbound := TransformCommand(command, dctx)

	m.conv.AppendUser(command)
	m.conv.SetTyping(true)

	req := &assist.AskRequest{
		Command:   outbound,
		Model:     m.Model(),
		History:   history,
		WebSearch: dctx.WebSearch,
	}

	ctx, cancel := context.WithCancel(context.Background())

	m.mu.Lock()
	if gen != m.generation {
		// Superseded between classify and dispatch.
		m.mu.Unlock()
		cancel()
		return
	}
	m.cancel = cancel
	m.pending.limiter = rate.NewLimiter(rate.Every(m.syncInterval), 1)
	m.pending.userText = command
	if dctx.Upload {
		m.dctx.Upload = false
		m.dctx.UploadPayload = ""
	}
	m.mu.Unlock()

	go func() {
		err := m.client.AskStream(ctx, req, &exchangeHandler{m: m, gen: gen})
		if err != nil {
			m.failExchange(gen, err)
		}
	}()
}

// =============================================================================
// TRANSPORT CALLBACKS
// =============================================================================

// exchangeHandler routes transport callbacks for one exchange into the
// manager, tagged with that exchange's generation.
type exchangeHandler struct {
	m   *Manager
	gen uint64
}

func (h *exchangeHandler) Headers(contentType string, streaming bool) {
	m := h.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if h.gen != m.generation || m.pending.finalized {
		return
	}
	m.pending.streaming = streaming

	// Append while the guard is still held: releasing the lock first would
	// let a Send land in between and a superseded exchange would drop a
	// stray placeholder after the new exchange's user message.
	if streaming {
		m.conv.AppendPlaceholder("")
	} else {
		m.conv.AppendPlaceholder(generatingText)
	}
}

func (h *exchangeHandler) Fragment(content string) {
	m := h.m
	m.mu.Lock()
	if h.gen != m.generation || m.pending.finalized {
		m.mu.Unlock()
		return
	}
	m.pending.buffer.WriteString(content)
	text := m.pending.buffer.String()
	// The throttle only gates UI refresh frequency; the buffer always holds
	// the full text, and finalize performs the last flush.
	sync := m.pending.limiter.Allow()
	m.mu.Unlock()

	if sync {
		m.conv.SyncPlaceholder(text)
	}
}

func (h *exchangeHandler) Buffered(resp *assist.AskResponse) {
	m := h.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if h.gen != m.generation || m.pending.finalized {
		return
	}
	m.pending.buffered = resp
}

func (h *exchangeHandler) Done() {
	h.m.finalize(h.gen)
}

// failExchange handles a transport-level failure. Nothing is persisted; the
// typing indicator is cleared and the one-shot flags reset.
func (m *Manager) failExchange(gen uint64, err error) {
	m.mu.Lock()
	if gen != m.generation || m.pending.finalized {
		m.mu.Unlock()
		return
	}
	m.pending.finalized = true
	m.dctx.WebSearch = false
	m.mu.Unlock()

	m.logger.Printf("chat: exchange failed: %v", err)
	if assist.IsInvalidResponse(err) {
		// The placeholder is already showing; swap in the failure text so
		// the bubble does not sit on "Generating response..." forever.
		m.conv.FinalizePlaceholder(decodeFailureText)
	}
	m.conv.SetTyping(false)
}

// =============================================================================
// FINALIZATION
// =============================================================================

// finalize runs the completion procedure exactly once per exchange: resolve
// the final text, extract the title, create the session if needed, freeze
// the placeholder, and issue the single batched repository write.
func (m *Manager) finalize(gen uint64) {
	m.mu.Lock()
	if gen != m.generation || m.pending.finalized {
		m.mu.Unlock()
		return
	}
	m.pending.finalized = true
	streaming := m.pending.streaming
	buffered := m.pending.buffered
	finalText := m.pending.buffer.String()
	userText := m.pending.userText
	m.dctx.WebSearch = false
	m.mu.Unlock()

	if !streaming {
		switch {
		case buffered == nil:
			m.logger.Printf("chat: buffered exchange completed without a body")
			m.conv.SetTyping(false)
			return
		case buffered.Error != "":
			m.conv.FinalizePlaceholder("Error: " + buffered.Error)
			m.conv.SetTyping(false)
			return
		case buffered.Response == nil:
			// A body with neither response nor error is a server bug;
			// nothing to finalize.
			m.logger.Printf("chat: buffered body missing response field")
			m.conv.SetTyping(false)
			return
		}
		finalText = buffered.Text()
	}

	m.completeExchange(finalText, userText)
}

// completeExchange commits a successful exchange. userText is the command
// captured when the exchange was dispatched; the conversation is not
// consulted for it, so a Send racing the tail of finalize cannot smuggle
// its own user message into this exchange's batch.
func (m *Manager) completeExchange(finalText, userText string) {
	body, title := ExtractTitle(finalText)
	if title == "" {
		title = FallbackTitle(time.Now())
	}

	session := m.ensureSession(title)

	writes := []model.PendingWrite{
		{Content: userText, IsUser: true},
		{Content: body, IsUser: false},
	}

	m.conv.FinalizePlaceholder(body)

	if session != nil {
		if err := m.repo.BatchAddMessages(session.ID, writes); err != nil {
			// The in-memory state already shows the exchange; losing the
			// row is degraded behavior, not a crash.
			m.logger.Printf("chat: batch write failed: %v", err)
		}
	}

	m.conv.SetTyping(false)
	m.speak(body)
}

// speak forwards the response to the speech collaborator, applying the
// content-aware reductions.
func (m *Manager) speak(text string) {
	if m.speaker == nil {
		return
	}
	if spoken := SpeakableText(text); spoken != "" {
		m.speaker.Speak(spoken)
	}
}
