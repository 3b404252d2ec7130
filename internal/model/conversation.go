// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversation state.
package model

import (
	"sync"
)

// =============================================================================
// EVENTS
// =============================================================================

// EventKind identifies the kind of conversation state change.
type EventKind int

const (
	// EventAppend is sent when a message is appended.
	EventAppend EventKind = iota
	// EventUpdate is sent when the streaming placeholder content is synced.
	EventUpdate
	// EventTyping is sent when the typing indicator toggles.
	EventTyping
	// EventReset is sent when the conversation is cleared or reloaded.
	EventReset
)

// Event is a notification of a conversation state change. Consumers
// re-render from a Snapshot rather than from the event payload; the payload
// only says what kind of change happened.
type Event struct {
	Kind     EventKind
	IsTyping bool
}

// subscriberBuffer is the per-subscriber channel depth. Events beyond it are
// dropped for that subscriber; a dropped event is safe because consumers
// always re-read the full snapshot on the next event they do receive.
const subscriberBuffer = 64

// =============================================================================
// CONVERSATION STATE
// =============================================================================

// Conversation is the in-memory conversation state: the ordered message list,
// the active session reference, and the typing indicator.
//
// It has a single logical writer (the chat manager); the mutex exists so that
// readers (the presentation layer) can take consistent snapshots while
// transport callbacks drive mutations from another goroutine.
type Conversation struct {
	mu sync.Mutex

	messages []*Message
	session  *Session
	isTyping bool

	subs    map[int]chan Event
	nextSub int
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{
		messages: make([]*Message, 0),
		subs:     make(map[int]chan Event),
	}
}

// =============================================================================
// OBSERVERS
// =============================================================================

// Subscribe registers an observer and returns its event channel plus an
// unsubscribe function.
func (c *Conversation) Subscribe() (<-chan Event, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	ch := make(chan Event, subscriberBuffer)
	c.subs[id] = ch

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// notifyLocked broadcasts an event to all subscribers without blocking.
// Caller must hold the lock.
func (c *Conversation) notifyLocked(ev Event) {
	for _, ch := range c.subs {
		select {
		case ch <- ev:
		default:
			// Subscriber is behind; it will catch up on the next event.
		}
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AppendUser appends a finalized user message and returns it.
func (c *Conversation) AppendUser(content string) *Message {
	msg := NewUserMessage(content)
	c.append(msg)
	return msg
}

// AppendAssistant appends a finalized assistant message and returns it.
func (c *Conversation) AppendAssistant(content string) *Message {
	msg := NewAssistantMessage(content)
	c.append(msg)
	return msg
}

// AppendPlaceholder appends the mutable in-progress assistant bubble.
func (c *Conversation) AppendPlaceholder(content string) *Message {
	msg := NewPlaceholderMessage(content)
	c.append(msg)
	return msg
}

func (c *Conversation) append(msg *Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
	c.notifyLocked(Event{Kind: EventAppend, IsTyping: c.isTyping})
}

// SyncPlaceholder overwrites the streaming placeholder's content with the
// latest accumulated text. Returns false if no placeholder is present.
func (c *Conversation) SyncPlaceholder(content string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	last := c.lastAssistantLocked()
	if last == nil || !last.IsStreaming {
		return false
	}
	last.Content = content
	c.notifyLocked(Event{Kind: EventUpdate, IsTyping: c.isTyping})
	return true
}

// FinalizePlaceholder freezes the streaming placeholder with the final text.
// If no placeholder exists (defensive case) a new assistant message is
// appended instead. The finalized message is returned.
func (c *Conversation) FinalizePlaceholder(content string) *Message {
	c.mu.Lock()
	last := c.lastAssistantLocked()
	if last != nil && last.IsStreaming {
		last.Finalize(content)
		c.notifyLocked(Event{Kind: EventUpdate, IsTyping: c.isTyping})
		c.mu.Unlock()
		return last
	}
	c.mu.Unlock()
	return c.AppendAssistant(content)
}

// lastAssistantLocked returns the last non-user message, or nil.
// Caller must hold the lock.
func (c *Conversation) lastAssistantLocked() *Message {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if !c.messages[i].IsUser {
			return c.messages[i]
		}
	}
	return nil
}

// Messages returns a snapshot copy of the message list.
func (c *Conversation) Messages() []*Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return c.MessageCount() == 0
}

// =============================================================================
// HISTORY
// =============================================================================

// HistoryTurn is one role/content pair of trailing history sent to the
// assistant endpoint.
type HistoryTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RecentHistory returns the last n turns as role/content pairs, oldest
// first. The streaming placeholder, if present, is included with whatever
// content it holds, matching the order the turns were displayed.
func (c *Conversation) RecentHistory(n int) []HistoryTurn {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := 0
	if len(c.messages) > n {
		start = len(c.messages) - n
	}

	turns := make([]HistoryTurn, 0, len(c.messages)-start)
	for _, msg := range c.messages[start:] {
		turns = append(turns, HistoryTurn{Role: msg.Role(), Content: msg.Content})
	}
	return turns
}

// =============================================================================
// SESSION AND TYPING STATE
// =============================================================================

// CurrentSession returns the active session reference, or nil before the
// first completed exchange.
func (c *Conversation) CurrentSession() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// SetSession records the active session. Once set, it stays set until
// StartNewSession or LoadSession replaces it.
func (c *Conversation) SetSession(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
}

// SetTyping toggles the typing indicator.
func (c *Conversation) SetTyping(typing bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isTyping == typing {
		return
	}
	c.isTyping = typing
	c.notifyLocked(Event{Kind: EventTyping, IsTyping: typing})
}

// IsTyping reports whether the assistant is mid-response.
func (c *Conversation) IsTyping() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isTyping
}

// StartNewSession clears the message list, the session reference, and the
// typing flag. The next completed exchange will create a fresh session.
func (c *Conversation) StartNewSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = make([]*Message, 0)
	c.session = nil
	c.isTyping = false
	c.notifyLocked(Event{Kind: EventReset})
}

// LoadSession replaces the conversation state with a persisted session's
// messages.
func (c *Conversation) LoadSession(s *Session, msgs []*Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
	c.messages = make([]*Message, len(msgs))
	copy(c.messages, msgs)
	c.isTyping = false
	c.notifyLocked(Event{Kind: EventReset})
}
