// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat contains the session manager driving the exchange lifecycle.
package chat

import (
	"net/url"
	"regexp"
	"strings"
)

// =============================================================================
// DISPATCH CONTEXT
// =============================================================================

// DispatchContext carries the cross-command state that shapes how the next
// command is classified. It is owned by the manager and mutated only between
// exchanges, never by callbacks mid-stream.
type DispatchContext struct {
	// ContactNumber is the number chosen through the contact picker,
	// consumed by the "use the selected number" flow.
	ContactNumber string

	// PendingNumber is a number captured from a "send a text <number>"
	// command; the next command becomes the message body.
	PendingNumber string

	// AwaitingBody means the next command is the message body for
	// ContactNumber.
	AwaitingBody bool

	// Upload wraps the next command with the upload payload path before it
	// is sent to the server; UploadPayload rides along as an extra history
	// turn. Both are cleared once consumed.
	Upload        bool
	UploadPayload string

	// WebSearch asks the server to augment the next response with a web
	// search. One-shot: reset after every exchange, success or failure.
	WebSearch bool
}

// =============================================================================
// LOCAL ACTIONS
// =============================================================================

// LocalAction is a command handled on-device instead of being sent to the
// server. The manager renders Reply as the assistant bubble, hands OpenURL to
// the system opener, applies the context mutations, and persists the exchange
// like any other.
type LocalAction struct {
	// Reply is the assistant bubble text for this exchange.
	Reply string

	// SessionTitle is the fixed title used if this exchange creates the
	// session.
	SessionTitle string

	// OpenURL, when set, is handed to the platform URL opener.
	OpenURL string

	// AwaitBody arms the message-body capture for the selected contact.
	AwaitBody bool

	// PendingNumber records a captured destination number.
	PendingNumber string

	// ClearPending drops any armed text-message state.
	ClearPending bool
}

// useSelectedNumber is the exact control phrase emitted by the contact
// picker flow; matched verbatim, not fuzzily.
const useSelectedNumber = "Use the selected number"

// uploadPrefix wraps a command when an upload is armed, pointing the server
// at the staged payload.
const uploadPrefix = "Upload: /home/steve/ai/uploaded.json : "

// Fixed session titles for locally handled exchanges.
const (
	titleNavigation = "Navigation"
	titleSendText   = "Send a Text"
	titleSetAlarm   = "Set Alarm"
)

var (
	// phoneNumberRe matches a bare 10-digit destination number.
	phoneNumberRe = regexp.MustCompile(`\b\d{10}\b`)

	// alarmTimeRe matches a clock time like 7:30 or 12:05.
	alarmTimeRe = regexp.MustCompile(`\b\d{1,2}:\d{2}\b`)
)

// =============================================================================
// CLASSIFICATION
// =============================================================================

// Classify decides whether a command is handled locally. Returns nil, false
// for commands that go to the server. Classification is pure: all side
// effects are described on the returned action and applied by the manager.
//
// Order matters: armed conversational state (a pending number, an awaited
// message body) captures the whole next command, so those checks run before
// any keyword matching except the explicit trigger phrases that start a new
// flow.
func Classify(command string, dctx DispatchContext) (*LocalAction, bool) {
	lower := strings.ToLower(command)

	// Navigation requests open the maps handler directly.
	if strings.Contains(lower, "navigate") || strings.Contains(lower, "directions") {
		dest := extractDestination(command)
		return &LocalAction{
			Reply:        "Opening Maps for \"" + dest + "\".",
			SessionTitle: titleNavigation,
			OpenURL:      "https://maps.apple.com/?q=" + url.QueryEscape(dest),
			ClearPending: true,
		}, true
	}

	// Exact control phrase from the contact picker flow.
	if command == useSelectedNumber {
		if dctx.ContactNumber == "" {
			return &LocalAction{
				Reply:        "No contact is selected. Pick a contact first, or say \"send a text\" followed by a 10-digit number.",
				SessionTitle: titleSendText,
			}, true
		}
		return &LocalAction{
			Reply:        "What would you like the message to say?",
			SessionTitle: titleSendText,
			AwaitBody:    true,
		}, true
	}

	// "send a text" starts the flow, with or without an inline number.
	if strings.Contains(lower, "send a text") {
		if number := phoneNumberRe.FindString(command); number != "" {
			return &LocalAction{
				Reply:         "What would you like the message to say?",
				SessionTitle:  titleSendText,
				PendingNumber: number,
			}, true
		}
		return &LocalAction{
			Reply:        "Who should get it? Include a 10-digit number, or pick a contact and say \"" + useSelectedNumber + "\".",
			SessionTitle: titleSendText,
		}, true
	}

	// Armed state: the whole command is the message body.
	if dctx.PendingNumber != "" {
		return &LocalAction{
			Reply:        "Opening Messages.",
			SessionTitle: titleSendText,
			OpenURL:      smsURL(dctx.PendingNumber, command),
			ClearPending: true,
		}, true
	}
	if dctx.AwaitingBody {
		return &LocalAction{
			Reply:        "Opening Messages.",
			SessionTitle: titleSendText,
			OpenURL:      smsURL(dctx.ContactNumber, command),
			ClearPending: true,
		}, true
	}

	// Alarm requests run the Add Alarm shortcut with the extracted time.
	if strings.Contains(lower, "set") && strings.Contains(lower, "alarm") {
		alarmTime := alarmTimeRe.FindString(command)
		if alarmTime == "" {
			return &LocalAction{
				Reply:        "What time should the alarm be set for? Include a time like 7:30.",
				SessionTitle: titleSetAlarm,
			}, true
		}
		return &LocalAction{
			Reply:        "Setting an alarm for " + alarmTime + ".",
			SessionTitle: titleSetAlarm,
			OpenURL:      "shortcuts://run-shortcut?name=Add%20Alarm&input=text&text=" + url.QueryEscape(alarmTime),
		}, true
	}

	return nil, false
}

// TransformCommand applies the upload wrapper when an upload is armed. The
// transformed text is what goes to the server; the conversation shows the
// command as typed.
func TransformCommand(command string, dctx DispatchContext) string {
	if dctx.Upload {
		return uploadPrefix + command
	}
	return command
}

// extractDestination strips the navigation trigger words from a command,
// leaving the place to route to.
func extractDestination(command string) string {
	dest := command
	for _, prefix := range []string{"navigate to", "navigate", "directions to", "directions"} {
		if idx := strings.Index(strings.ToLower(dest), prefix); idx >= 0 {
			dest = dest[idx+len(prefix):]
			break
		}
	}
	return strings.TrimSpace(dest)
}

// smsURL builds the sms: handler URL for a destination and body.
func smsURL(number, body string) string {
	return "sms:" + number + "&body=" + url.QueryEscape(body)
}
