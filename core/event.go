// Package core defines the canonical event model: the format-independent
// representation of a session transcript that all adapters produce and the
// renderer consumes.
package core

import "time"

// Kind enumerates canonical event variants. The Kind field of an Event
// determines which other fields are populated.
type Kind string

const (
	KindMetadata      Kind = "metadata"
	KindUserTurn      Kind = "user"
	KindAssistantTurn Kind = "assistant"
	KindToolOutcome   Kind = "tool"
	KindModelChange   Kind = "model"
	KindNotification  Kind = "notification"
	KindSummary       Kind = "summary"
)

// Event is a single canonical semantic unit of a session. Adapters emit
// events in session order; the renderer maps each to one tagged output line.
type Event struct {
	Kind Kind

	// Text is set for user, assistant, and notification events.
	Text string

	// Metadata fields, set for KindMetadata.
	SessionID string
	Dir       string
	StartedAt time.Time
	Version   string
	Branch    string

	// Tool outcome fields, set for KindToolOutcome.
	ToolName string
	ToolArgs string
	Failed   bool

	// Model is the short model name, set for KindModelChange.
	Model string

	// Summary is set for KindSummary.
	Summary *Summary
}

// UserTurn builds a user turn event.
func UserTurn(text string) Event {
	return Event{Kind: KindUserTurn, Text: text}
}

// AssistantTurn builds an assistant turn event.
func AssistantTurn(text string) Event {
	return Event{Kind: KindAssistantTurn, Text: text}
}

// Notification builds an out-of-band notification event.
func Notification(text string) Event {
	return Event{Kind: KindNotification, Text: text}
}

// ToolOutcome builds a resolved tool invocation event.
func ToolOutcome(name, args string, failed bool) Event {
	return Event{Kind: KindToolOutcome, ToolName: name, ToolArgs: args, Failed: failed}
}

// ModelChange builds a model change marker event.
func ModelChange(model string) Event {
	return Event{Kind: KindModelChange, Model: model}
}
