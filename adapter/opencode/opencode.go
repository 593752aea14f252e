// Package opencode converts OpenCode sessions into canonical events. OpenCode
// splits one session across independently written JSON entity files keyed by
// foreign IDs (session info, per-session messages, per-message parts), so
// this adapter joins the entity graph in memory first, then replays it
// through the same emission rules as the streaming adapters in a single pass.
package opencode

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sonnes/lekhak/adapter"
	"github.com/sonnes/lekhak/core"
)

// toolEchoPrefix marks user text parts that echo a tool invocation back into
// the conversation; these are source-injected, not authored by a human.
const toolEchoPrefix = "Called the "

// Raw JSON deserialization types. These mirror the entity files on disk.

type sessionRecord struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Directory string     `json:"directory"`
	Version   string     `json:"version"`
	Time      recordTime `json:"time"`
}

type messageRecord struct {
	ID        string     `json:"id"`
	SessionID string     `json:"sessionID"`
	Role      string     `json:"role"`
	ModelID   string     `json:"modelID"`
	Time      recordTime `json:"time"`
	Tokens    *tokens    `json:"tokens"`
}

type recordTime struct {
	Created   int64 `json:"created"` // Unix milliseconds
	Completed int64 `json:"completed"`
}

type tokens struct {
	Input  int `json:"input"`
	Output int `json:"output"`
	Cache  struct {
		Read  int `json:"read"`
		Write int `json:"write"`
	} `json:"cache"`
}

type partRecord struct {
	ID        string    `json:"id"`
	MessageID string    `json:"messageID"`
	Type      string    `json:"type"`
	Text      string    `json:"text"`
	Synthetic bool      `json:"synthetic"`
	Tool      string    `json:"tool"`
	CallID    string    `json:"callID"`
	State     toolState `json:"state"`
}

type toolState struct {
	Status string         `json:"status"`
	Input  map[string]any `json:"input"`
	// Exit distinguishes "no exit code" from zero: success is no exit code
	// field, or exit code exactly zero.
	Exit *int `json:"exit"`
}

// Adapter joins and replays one OpenCode session. Root is the OpenCode data
// directory containing storage/session/.
type Adapter struct {
	Root string

	stats *core.Stats
}

// New creates an adapter for sessions stored under root.
func New(root string) *Adapter {
	stats := core.NewStats()
	stats.TrackModel = true
	return &Adapter{Root: root, stats: stats}
}

// Convert joins the session's entity graph and emits its canonical events in
// message-creation order. A missing or unreadable entity skips the session by
// returning an error; it never aborts a larger run.
func (a *Adapter) Convert(sessionID string) ([]core.Event, error) {
	session, err := a.loadSession(sessionID)
	if err != nil {
		return nil, err
	}

	messages, err := a.loadMessages(sessionID)
	if err != nil {
		return nil, err
	}

	started := msTime(session.Time.Created)
	a.stats.StartedAt = started
	a.stats.Observe(started)

	events := []core.Event{{
		Kind:      core.KindMetadata,
		SessionID: session.ID,
		Dir:       session.Directory,
		StartedAt: started,
		Version:   session.Version,
	}}

	for _, msg := range messages {
		events = append(events, a.emitMessage(msg)...)
	}
	return events, nil
}

// Finalize returns the session summary, or nil for empty sessions.
func (a *Adapter) Finalize() *core.Event {
	return a.stats.Summarize()
}

// loadSession locates the session info record. Newer layouts key info files
// by project directory, so the scan descends one level; the first match wins
// because session IDs are globally unique.
func (a *Adapter) loadSession(sessionID string) (*sessionRecord, error) {
	infoDir := filepath.Join(a.Root, "storage", "session", "info")

	direct := filepath.Join(infoDir, sessionID+".json")
	if session, err := readJSON[sessionRecord](direct); err == nil {
		return session, nil
	}

	projects, err := os.ReadDir(infoDir)
	if err != nil {
		return nil, fmt.Errorf("read session info directory: %w", err)
	}
	for _, p := range projects {
		if !p.IsDir() {
			continue
		}
		path := filepath.Join(infoDir, p.Name(), sessionID+".json")
		if session, err := readJSON[sessionRecord](path); err == nil {
			return session, nil
		}
	}

	return nil, fmt.Errorf("session %s not found", sessionID)
}

// loadMessages loads all message records for the session, sorted ascending by
// creation time. Directory enumeration order is meaningless and never used.
func (a *Adapter) loadMessages(sessionID string) ([]messageRecord, error) {
	dir := filepath.Join(a.Root, "storage", "session", "message", sessionID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read message directory: %w", err)
	}

	var messages []messageRecord
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		msg, err := readJSON[messageRecord](filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		messages = append(messages, *msg)
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Time.Created < messages[j].Time.Created
	})
	return messages, nil
}

// loadParts loads a message's parts. Parts carry no ordering field; filename
// order is accepted as creation order, a known fidelity limitation of the
// source storage.
func (a *Adapter) loadParts(messageID string) []partRecord {
	dir := filepath.Join(a.Root, "storage", "session", "part", messageID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var parts []partRecord
	for _, name := range names {
		part, err := readJSON[partRecord](filepath.Join(dir, name))
		if err != nil {
			continue
		}
		parts = append(parts, *part)
	}
	return parts
}

func (a *Adapter) emitMessage(msg messageRecord) []core.Event {
	a.stats.Observe(msTime(msg.Time.Created))
	if t := msTime(msg.Time.Completed); !t.IsZero() {
		a.stats.Observe(t)
	}

	var events []core.Event
	if msg.Role == "assistant" {
		if a.stats.ObserveModel(msg.ModelID) {
			events = append(events, core.ModelChange(core.ShortModel(msg.ModelID)))
		}
		if msg.Tokens != nil {
			a.stats.Usage.Add(core.Usage{
				InputTokens:         msg.Tokens.Input,
				OutputTokens:        msg.Tokens.Output,
				CacheReadTokens:     msg.Tokens.Cache.Read,
				CacheCreationTokens: msg.Tokens.Cache.Write,
			})
		}
	}

	for _, part := range a.loadParts(msg.ID) {
		switch part.Type {
		case "text":
			if ev, ok := a.emitText(msg.Role, part); ok {
				events = append(events, ev)
			}
		case "tool":
			events = append(events, a.emitTool(part))
		}
		// reasoning, step-start, and step-finish parts carry no transcript
		// content.
	}
	return events
}

// emitText maps a text part to a turn. User parts are suppressed when
// synthetic, when wrapped in injected file context, or when they echo a tool
// invocation.
func (a *Adapter) emitText(role string, part partRecord) (core.Event, bool) {
	text := strings.TrimSpace(part.Text)
	if text == "" {
		return core.Event{}, false
	}

	switch role {
	case "user":
		if part.Synthetic || core.IsInjected(text) || strings.HasPrefix(text, toolEchoPrefix) {
			return core.Event{}, false
		}
		a.stats.AddUserTurn(text)
		return core.UserTurn(text), true
	case "assistant":
		a.stats.AddAssistantTurn(text)
		return core.AssistantTurn(text), true
	default:
		return core.Event{}, false
	}
}

// emitTool maps a tool part to an outcome. The part co-locates request and
// result, so no correlation step is needed: success is no exit code field,
// or exit code exactly zero.
func (a *Adapter) emitTool(part partRecord) core.Event {
	failed := part.State.Exit != nil && *part.State.Exit != 0
	a.stats.AddToolOutcome(failed)

	if !failed {
		if kind, path, ok := adapter.FileAccessKind(part.Tool, part.State.Input); ok {
			a.stats.TouchFile(kind, path)
		} else if strings.EqualFold(part.Tool, "bash") {
			if path := adapter.ShellReadPath(stringField(part.State.Input, "command")); path != "" {
				a.stats.TouchFile(core.FileRead, path)
			}
		}
	}

	return core.ToolOutcome(part.Tool, adapter.RenderArgs(part.Tool, part.State.Input), failed)
}

func readJSON[T any](path string) (*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return &v, nil
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

func msTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
