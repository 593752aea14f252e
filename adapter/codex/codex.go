// Package codex converts Codex CLI rollout logs (JSONL in ~/.codex/sessions/)
// into canonical events, one record at a time.
package codex

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sonnes/lekhak/adapter"
	"github.com/sonnes/lekhak/core"
)

// Raw JSON deserialization types, mirroring the rollout record envelope:
// every line is {"timestamp", "type", "payload"}.

type rawRecord struct {
	Timestamp string          `json:"timestamp"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
}

type sessionMetaPayload struct {
	ID         string `json:"id"`
	Timestamp  string `json:"timestamp"`
	CWD        string `json:"cwd"`
	CLIVersion string `json:"cli_version"`
	Git        struct {
		Branch string `json:"branch"`
	} `json:"git"`
}

type responseItemPayload struct {
	Type      string            `json:"type"`
	Role      string            `json:"role"`
	Content   []rawContentBlock `json:"content"`
	Name      string            `json:"name"`
	Arguments string            `json:"arguments"`
	Input     string            `json:"input"`
	CallID    string            `json:"call_id"`
	Output    string            `json:"output"`
}

type rawContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type eventMsgPayload struct {
	Type    string          `json:"type"`
	Message string          `json:"message"`
	Info    *tokenCountInfo `json:"info"`
}

type tokenCountInfo struct {
	TotalTokenUsage tokenUsage `json:"total_token_usage"`
}

type tokenUsage struct {
	InputTokens       int `json:"input_tokens"`
	CachedInputTokens int `json:"cached_input_tokens"`
	OutputTokens      int `json:"output_tokens"`
}

type turnContextPayload struct {
	Model string `json:"model"`
}

// callOutput is the structured form of a function_call_output "output"
// field. Older rollouts put a bare string there instead.
type callOutput struct {
	Metadata struct {
		ExitCode *int `json:"exit_code"`
	} `json:"metadata"`
}

// Adapter is the session-scoped state machine for one Codex rollout.
type Adapter struct {
	pending *core.PendingCalls
	stats   *core.Stats

	metaDone bool

	// token_count events carry cumulative totals; deltas are folded in.
	lastTotals tokenUsage
}

// New creates an adapter for a single session.
func New() *Adapter {
	stats := core.NewStats()
	stats.TrackModel = true
	return &Adapter{
		pending: core.NewPendingCalls(),
		stats:   stats,
	}
}

// Consume processes one JSONL record. Malformed lines yield no events.
func (a *Adapter) Consume(line []byte) []core.Event {
	var rec rawRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		return nil
	}
	a.stats.Observe(parseTime(rec.Timestamp))

	switch rec.Type {
	case "session_meta":
		return a.consumeMeta(rec)
	case "response_item":
		return a.consumeResponseItem(rec.Payload)
	case "event_msg":
		return a.consumeEventMsg(rec.Payload)
	case "turn_context":
		return a.consumeTurnContext(rec.Payload)
	default:
		return nil
	}
}

// Finalize returns the session summary, or nil for empty sessions.
func (a *Adapter) Finalize() *core.Event {
	return a.stats.Summarize()
}

var _ adapter.Adapter = (*Adapter)(nil)

func (a *Adapter) consumeMeta(rec rawRecord) []core.Event {
	if a.metaDone {
		return nil
	}
	var payload sessionMetaPayload
	if err := json.Unmarshal(rec.Payload, &payload); err != nil {
		return nil
	}

	ts := parseTime(payload.Timestamp)
	if ts.IsZero() {
		ts = parseTime(rec.Timestamp)
	}

	a.metaDone = true
	a.stats.StartedAt = ts
	return []core.Event{{
		Kind:      core.KindMetadata,
		SessionID: payload.ID,
		Dir:       payload.CWD,
		StartedAt: ts,
		Version:   payload.CLIVersion,
		Branch:    payload.Git.Branch,
	}}
}

func (a *Adapter) consumeResponseItem(raw json.RawMessage) []core.Event {
	var payload responseItemPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}

	switch payload.Type {
	case "message":
		return a.consumeMessage(payload)
	case "function_call":
		a.recordCall(payload.CallID, payload.Name, parseArguments(payload.Arguments))
		return nil
	case "custom_tool_call":
		a.recordCall(payload.CallID, payload.Name, map[string]any{"input": payload.Input})
		return nil
	case "function_call_output", "custom_tool_call_output":
		if ev, ok := a.resolveCall(payload.CallID, payload.Output); ok {
			return []core.Event{ev}
		}
		return nil
	default:
		// reasoning and anything unknown.
		return nil
	}
}

func (a *Adapter) consumeMessage(payload responseItemPayload) []core.Event {
	var texts []string
	for _, b := range payload.Content {
		if b.Type == "input_text" || b.Type == "output_text" || b.Type == "text" {
			texts = append(texts, b.Text)
		}
	}
	text := strings.TrimSpace(strings.Join(texts, "\n"))
	if text == "" {
		return nil
	}

	switch payload.Role {
	case "user":
		if core.IsInjected(text) {
			return nil
		}
		a.stats.AddUserTurn(text)
		return []core.Event{core.UserTurn(text)}
	case "assistant":
		a.stats.AddAssistantTurn(text)
		return []core.Event{core.AssistantTurn(text)}
	default:
		return nil
	}
}

func (a *Adapter) consumeEventMsg(raw json.RawMessage) []core.Event {
	var payload eventMsgPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}

	switch payload.Type {
	case "token_count":
		a.addTokenCount(payload.Info)
		return nil
	case "turn_aborted":
		return []core.Event{core.Notification("turn aborted")}
	case "background_event":
		if msg := strings.TrimSpace(payload.Message); msg != "" {
			return []core.Event{core.Notification(msg)}
		}
		return nil
	default:
		// user_message and agent_message duplicate response_item records;
		// response_item is authoritative.
		return nil
	}
}

func (a *Adapter) consumeTurnContext(raw json.RawMessage) []core.Event {
	var payload turnContextPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}
	if a.stats.ObserveModel(payload.Model) {
		return []core.Event{core.ModelChange(core.ShortModel(payload.Model))}
	}
	return nil
}

// recordCall inserts a pending invocation. Shell command arrays are joined
// into one command string so rendering and the read heuristic see a plain
// shell command.
func (a *Adapter) recordCall(callID, name string, input map[string]any) {
	if callID == "" {
		return
	}
	if cmd, ok := input["command"].([]any); ok {
		var parts []string
		for _, c := range cmd {
			if s, ok := c.(string); ok {
				parts = append(parts, s)
			}
		}
		input["command"] = strings.Join(parts, " ")
	}

	args := adapter.RenderArgs(name, input)
	if name == "apply_patch" {
		if files := patchFiles(stringField(input, "input")); len(files) > 0 {
			args = fmt.Sprintf("file=%q", files[0].path)
		}
	}
	a.pending.Record(callID, name, args, input)
}

// resolveCall pairs a call output with its pending invocation. Success is
// defined by the output metadata: no exit_code field, or exit code zero.
func (a *Adapter) resolveCall(callID, output string) (core.Event, bool) {
	pending, ok := a.pending.Resolve(callID)
	if !ok {
		return core.Event{}, false
	}

	failed := outputFailed(output)
	a.stats.AddToolOutcome(failed)
	if !failed {
		a.touchFiles(pending)
	}
	return core.ToolOutcome(pending.Name, pending.Args, failed), true
}

func (a *Adapter) touchFiles(pending core.Pending) {
	if pending.Name == "apply_patch" {
		for _, f := range patchFiles(stringField(pending.Input, "input")) {
			a.stats.TouchFile(f.kind, f.path)
		}
		return
	}
	if path := adapter.ShellReadPath(stringField(pending.Input, "command")); path != "" {
		a.stats.TouchFile(core.FileRead, path)
	}
}

func (a *Adapter) addTokenCount(info *tokenCountInfo) {
	if info == nil {
		return
	}
	totals := info.TotalTokenUsage
	a.stats.Usage.Add(core.Usage{
		InputTokens:     totals.InputTokens - a.lastTotals.InputTokens,
		OutputTokens:    totals.OutputTokens - a.lastTotals.OutputTokens,
		CacheReadTokens: totals.CachedInputTokens - a.lastTotals.CachedInputTokens,
	})
	a.lastTotals = totals
}

// outputFailed inspects a call output for a non-zero exit code. Outputs that
// are not structured JSON are treated as successful.
func outputFailed(output string) bool {
	var parsed callOutput
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		return false
	}
	return parsed.Metadata.ExitCode != nil && *parsed.Metadata.ExitCode != 0
}

// parseArguments decodes the function_call arguments JSON string. A bad
// payload degrades to an empty input, never an error.
func parseArguments(arguments string) map[string]any {
	input := map[string]any{}
	if arguments != "" {
		_ = json.Unmarshal([]byte(arguments), &input)
	}
	return input
}

// patchFileRE matches apply_patch hunk headers like "*** Update File: x.go".
var patchFileRE = regexp.MustCompile(`(?m)^\*\*\* (Add|Update|Delete) File: (.+)$`)

type patchFile struct {
	kind core.FileAccess
	path string
}

// patchFiles extracts the files touched by an apply_patch payload. Added
// files count as written, updated and deleted files as edited.
func patchFiles(patch string) []patchFile {
	var files []patchFile
	for _, m := range patchFileRE.FindAllStringSubmatch(patch, -1) {
		kind := core.FileEdited
		if m[1] == "Add" {
			kind = core.FileWritten
		}
		files = append(files, patchFile{kind: kind, path: strings.TrimSpace(m[2])})
	}
	return files
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
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
