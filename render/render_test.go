package render

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonnes/lekhak/core"
)

func TestLines(t *testing.T) {
	tests := []struct {
		name string
		ev   core.Event
		want []string
	}{
		{
			name: "user turn",
			ev:   core.UserTurn("find config"),
			want: []string{"> find config"},
		},
		{
			name: "multi-line text collapses to one line",
			ev:   core.AssistantTurn("Found it\nin two places"),
			want: []string{"< Found it in two places"},
		},
		{
			name: "successful tool outcome",
			ev:   core.ToolOutcome("Glob", `pattern="**/config.*"`, false),
			want: []string{`+ Glob: pattern="**/config.*"`},
		},
		{
			name: "failed tool outcome",
			ev:   core.ToolOutcome("Bash", `command="make test"`, true),
			want: []string{`! Bash: command="make test"`},
		},
		{
			name: "tool outcome without args",
			ev:   core.ToolOutcome("TodoWrite", "", false),
			want: []string{"+ TodoWrite"},
		},
		{
			name: "model change",
			ev:   core.ModelChange("claude-sonnet-4-5"),
			want: []string{"# model: claude-sonnet-4-5"},
		},
		{
			name: "notification",
			ev:   core.Notification("background task finished"),
			want: []string{"~ background task finished"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Lines(tt.ev))
		})
	}
}

func TestMetadataLines(t *testing.T) {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ev := core.Event{
		Kind:      core.KindMetadata,
		SessionID: "sess-1",
		Dir:       "/work",
		StartedAt: started,
		Version:   "1.0.80",
		Branch:    "main",
	}

	assert.Equal(t, []string{
		"# session: sess-1",
		"# dir: /work",
		"# started: 2026-03-01T10:00:00Z",
		"# version: 1.0.80",
		"# branch: main",
	}, Lines(ev))

	t.Run("empty fields dropped", func(t *testing.T) {
		ev := core.Event{Kind: core.KindMetadata, SessionID: "sess-2"}
		assert.Equal(t, []string{"# session: sess-2"}, Lines(ev))
	})
}

func TestSummaryLines(t *testing.T) {
	d := time.Hour + 4*time.Minute
	ev := core.Event{Kind: core.KindSummary, Summary: &core.Summary{
		Duration:       &d,
		Model:          "gpt-5-codex",
		UserTurns:      3,
		AssistantTurns: 5,
		ToolCalls:      7,
		ToolFailures:   1,
		FilesRead:      2,
		FilesEdited:    1,
		Usage: core.Usage{
			InputTokens:         1234,
			OutputTokens:        350,
			CacheReadTokens:     10_000,
			CacheCreationTokens: 2_000,
		},
	}}

	assert.Equal(t, []string{
		"# duration: 1h 4m",
		"# model: gpt-5-codex",
		"# messages: 3 user, 5 assistant",
		"# tools: 7 total, 1 failed",
		"# files: 2 read, 1 edited",
		"# tokens: 1.2K in, 350 out",
		"# cache: 10K read, 2K created",
	}, Lines(ev))

	t.Run("zero lines dropped", func(t *testing.T) {
		ev := core.Event{Kind: core.KindSummary, Summary: &core.Summary{
			UserTurns:      1,
			AssistantTurns: 1,
		}}
		assert.Equal(t, []string{"# messages: 1 user, 1 assistant"}, Lines(ev))
	})
}

func TestWriterSpacing(t *testing.T) {
	var buf bytes.Buffer
	tw := NewWriter(&buf)

	events := []core.Event{
		{Kind: core.KindMetadata, SessionID: "sess-1", Dir: "/work"},
		core.UserTurn("find config"),
		core.ToolOutcome("Glob", `pattern="**/config.*"`, false),
		core.AssistantTurn("Found it"),
		{Kind: core.KindSummary, Summary: &core.Summary{
			UserTurns: 1, AssistantTurns: 1, ToolCalls: 1,
		}},
	}
	require.NoError(t, tw.WriteAll(events))

	assert.Equal(t, `# session: sess-1
# dir: /work

> find config
+ Glob: pattern="**/config.*"
< Found it

# messages: 1 user, 1 assistant
# tools: 1 total, 0 failed
`, buf.String())
}
