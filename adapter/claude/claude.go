// Package claude converts Claude Code session logs (JSONL in
// ~/.claude/projects/) into canonical events, one record at a time.
package claude

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/sonnes/lekhak/adapter"
	"github.com/sonnes/lekhak/core"
)

// Raw JSON deserialization types. These mirror the JSONL structure on disk.

type rawEntry struct {
	Type        string     `json:"type"`
	UUID        string     `json:"uuid"`
	SessionID   string     `json:"sessionId"`
	Timestamp   string     `json:"timestamp"`
	CWD         string     `json:"cwd"`
	GitBranch   string     `json:"gitBranch"`
	Version     string     `json:"version"`
	IsSidechain bool       `json:"isSidechain"`
	Content     string     `json:"content"` // system records only
	Message     rawMessage `json:"message"`
}

type rawMessage struct {
	ID    string          `json:"id"`
	Role  string          `json:"role"`
	Model string          `json:"model"`
	Usage *rawUsage       `json:"usage"`
	// Content is a bare string for simple user turns, or an array of typed
	// content blocks.
	Content json.RawMessage `json:"content"`
}

type rawUsage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
}

type rawContentBlock struct {
	Type      string         `json:"type"`
	Text      string         `json:"text"`
	Thinking  string         `json:"thinking"`
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Input     map[string]any `json:"input"`
	ToolUseID string         `json:"tool_use_id"`
	IsError   bool           `json:"is_error"`
}

// Adapter is the session-scoped state machine for one Claude Code session.
type Adapter struct {
	pending *core.PendingCalls
	stats   *core.Stats

	metaDone bool

	// Streaming assistant messages repeat their cumulative usage on every
	// chunk sharing one message.id; the last chunk wins.
	lastUsageMsgID string
	lastUsage      core.Usage
}

// New creates an adapter for a single session.
func New() *Adapter {
	return &Adapter{
		pending: core.NewPendingCalls(),
		stats:   core.NewStats(),
	}
}

// Consume processes one JSONL record. Malformed lines yield no events.
func (a *Adapter) Consume(line []byte) []core.Event {
	var entry rawEntry
	if err := json.Unmarshal(line, &entry); err != nil {
		return nil
	}

	ts := parseTime(entry.Timestamp)
	a.stats.Observe(ts)

	var events []core.Event
	if !a.metaDone && entry.SessionID != "" {
		a.metaDone = true
		a.stats.StartedAt = ts
		events = append(events, core.Event{
			Kind:      core.KindMetadata,
			SessionID: entry.SessionID,
			Dir:       entry.CWD,
			StartedAt: ts,
			Version:   entry.Version,
			Branch:    entry.GitBranch,
		})
	}

	if entry.IsSidechain {
		return events
	}

	switch entry.Type {
	case "user":
		events = append(events, a.consumeUser(entry)...)
	case "assistant":
		events = append(events, a.consumeAssistant(entry)...)
	case "system":
		if text := strings.TrimSpace(entry.Content); text != "" && !core.IsInjected(text) {
			events = append(events, core.Notification(text))
		}
	}

	return events
}

// Finalize returns the session summary, or nil for empty sessions.
// Unresolved pending invocations are discarded.
func (a *Adapter) Finalize() *core.Event {
	return a.stats.Summarize()
}

var _ adapter.Adapter = (*Adapter)(nil)

// consumeUser handles a user record: text blocks become one user turn, and
// tool_result blocks resolve pending invocations.
func (a *Adapter) consumeUser(entry rawEntry) []core.Event {
	var events []core.Event
	var texts []string

	for _, b := range decodeBlocks(entry.Message.Content) {
		switch b.Type {
		case "text":
			texts = append(texts, b.Text)
		case "tool_result":
			if ev, ok := a.resolveTool(b.ToolUseID, b.IsError); ok {
				events = append(events, ev)
			}
		}
	}

	if text := strings.TrimSpace(strings.Join(texts, "\n")); text != "" && !core.IsInjected(text) {
		a.stats.AddUserTurn(text)
		events = append(events, core.UserTurn(text))
	}
	return events
}

// consumeAssistant handles an assistant record: model transitions, text
// turns, tool invocations, and token usage. Thinking blocks are dropped.
func (a *Adapter) consumeAssistant(entry rawEntry) []core.Event {
	var events []core.Event

	// "<synthetic>" marks tool-generated assistant records and is not a model.
	if model := entry.Message.Model; model != "<synthetic>" && a.stats.ObserveModel(model) {
		events = append(events, core.ModelChange(core.ShortModel(model)))
	}
	a.addUsage(entry.Message.ID, entry.Message.Usage)

	for _, b := range decodeBlocks(entry.Message.Content) {
		switch b.Type {
		case "text":
			if text := strings.TrimSpace(b.Text); text != "" {
				a.stats.AddAssistantTurn(text)
				events = append(events, core.AssistantTurn(text))
			}
		case "tool_use":
			a.pending.Record(b.ID, b.Name, adapter.RenderArgs(b.Name, b.Input), b.Input)
		}
	}
	return events
}

// resolveTool pairs a tool result with its pending invocation. Unknown call
// IDs are silently ignored; they reference truncated or previously processed
// log segments.
func (a *Adapter) resolveTool(callID string, failed bool) (core.Event, bool) {
	pending, ok := a.pending.Resolve(callID)
	if !ok {
		return core.Event{}, false
	}

	a.stats.AddToolOutcome(failed)
	if !failed {
		a.touchFiles(pending)
	}
	return core.ToolOutcome(pending.Name, pending.Args, failed), true
}

func (a *Adapter) touchFiles(pending core.Pending) {
	if kind, path, ok := adapter.FileAccessKind(pending.Name, pending.Input); ok {
		a.stats.TouchFile(kind, path)
		return
	}
	if strings.EqualFold(pending.Name, "bash") {
		if path := adapter.ShellReadPath(stringField(pending.Input, "command")); path != "" {
			a.stats.TouchFile(core.FileRead, path)
		}
	}
}

// addUsage folds an assistant record's usage into the session totals. Chunks
// of the same message replace the previous chunk's contribution.
func (a *Adapter) addUsage(msgID string, raw *rawUsage) {
	if raw == nil {
		return
	}
	u := core.Usage{
		InputTokens:         raw.InputTokens,
		OutputTokens:        raw.OutputTokens,
		CacheReadTokens:     raw.CacheReadInputTokens,
		CacheCreationTokens: raw.CacheCreationInputTokens,
	}

	if msgID != "" && msgID == a.lastUsageMsgID {
		a.stats.Usage.Add(core.Usage{
			InputTokens:         u.InputTokens - a.lastUsage.InputTokens,
			OutputTokens:        u.OutputTokens - a.lastUsage.OutputTokens,
			CacheReadTokens:     u.CacheReadTokens - a.lastUsage.CacheReadTokens,
			CacheCreationTokens: u.CacheCreationTokens - a.lastUsage.CacheCreationTokens,
		})
	} else {
		a.stats.Usage.Add(u)
	}
	a.lastUsageMsgID = msgID
	a.lastUsage = u
}

// decodeBlocks handles message content that is either a bare string or an
// array of typed blocks.
func decodeBlocks(raw json.RawMessage) []rawContentBlock {
	if len(raw) == 0 {
		return nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return []rawContentBlock{{Type: "text", Text: asString}}
	}

	var blocks []rawContentBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return nil
	}
	return blocks
}

func stringField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
