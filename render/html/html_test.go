package html

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonnes/lekhak/core"
	"github.com/sonnes/lekhak/manifest"
)

func sessionEvents() ([]core.Event, *core.Event) {
	d := 5 * time.Minute
	events := []core.Event{
		{
			Kind:      core.KindMetadata,
			SessionID: "sess-1",
			Dir:       "/work",
			StartedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			Version:   "1.0.80",
			Branch:    "main",
		},
		core.UserTurn("Fix the **auth** bug"),
		core.ToolOutcome("Bash", `command="go test ./..."`, true),
		core.ToolOutcome("Read", `file_path="/work/auth.go"`, false),
		core.ModelChange("claude-sonnet-4-5"),
		core.AssistantTurn("Done. Use `git diff` to review."),
		core.Notification("turn aborted"),
	}
	summary := &core.Event{Kind: core.KindSummary, Summary: &core.Summary{
		Duration:       &d,
		UserTurns:      1,
		AssistantTurns: 1,
		ToolCalls:      2,
		ToolFailures:   1,
		Usage:          core.Usage{InputTokens: 1200, OutputTokens: 300},
	}}
	return events, summary
}

func TestRender(t *testing.T) {
	events, summary := sessionEvents()

	var buf bytes.Buffer
	require.NoError(t, New().Render(&buf, events, summary))
	out := buf.String()

	assert.Contains(t, out, "<title>Fix the **auth** bug</title>")
	assert.Contains(t, out, "sess-1")
	assert.Contains(t, out, "/work")
	assert.Contains(t, out, "(main)")
	assert.Contains(t, out, "Mar 1, 2026")

	// Markdown is rendered, not echoed.
	assert.Contains(t, out, "<strong>auth</strong>")
	assert.Contains(t, out, "<code>git diff</code>")

	assert.Contains(t, out, "Bash")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "model: claude-sonnet-4-5")
	assert.Contains(t, out, "turn aborted")

	assert.Contains(t, out, "duration: 5m")
	assert.Contains(t, out, "messages: 1 user, 1 assistant")
	assert.Contains(t, out, "tools: 2 total, 1 failed")
	assert.Contains(t, out, "tokens: 1.2K in, 300 out")
}

func TestRenderEscapesToolArgs(t *testing.T) {
	events := []core.Event{
		{Kind: core.KindMetadata, SessionID: "s"},
		core.UserTurn("hi"),
		core.ToolOutcome("Bash", `command="echo <script>"`, false),
	}

	var buf bytes.Buffer
	require.NoError(t, New().Render(&buf, events, nil))
	out := buf.String()

	assert.Contains(t, out, "&lt;script&gt;")
	assert.NotContains(t, out, `"echo <script>"`)
}

func TestRenderNoSummary(t *testing.T) {
	events := []core.Event{
		{Kind: core.KindMetadata, SessionID: "empty-ish"},
		core.UserTurn("hello"),
	}

	var buf bytes.Buffer
	require.NoError(t, New().Render(&buf, events, nil))
	assert.NotContains(t, buf.String(), "messages:")
}

func TestRenderIndex(t *testing.T) {
	entries := []manifest.Entry{
		{SessionID: "old", Title: "First session", Source: "claude",
			CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), Href: "old.txt"},
		{SessionID: "new", Source: "codex", Model: "gpt-5-codex",
			CreatedAt: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), Href: "new.txt"},
	}

	var buf bytes.Buffer
	require.NoError(t, New().RenderIndex(&buf, entries))
	out := buf.String()

	assert.Contains(t, out, "First session")
	assert.Contains(t, out, "gpt-5-codex")
	assert.Less(t, strings.Index(out, "new.txt"), strings.Index(out, "old.txt"),
		"newest entry listed first")
}

func TestRenderTitleFallsBackToSessionID(t *testing.T) {
	events := []core.Event{{Kind: core.KindMetadata, SessionID: "sess-9"}}

	var buf bytes.Buffer
	require.NoError(t, New().Render(&buf, events, nil))
	assert.Contains(t, buf.String(), "<title>Session sess-9</title>")
}
