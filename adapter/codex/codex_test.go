package codex

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonnes/lekhak/core"
)

func consumeFile(t *testing.T, name string) ([]core.Event, *core.Event) {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", name))
	require.NoError(t, err)
	defer f.Close()

	a := New()
	var events []core.Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		events = append(events, a.Consume(scanner.Bytes())...)
	}
	require.NoError(t, scanner.Err())
	return events, a.Finalize()
}

func TestRollout(t *testing.T) {
	events, summary := consumeFile(t, "rollout.jsonl")

	want := []core.Kind{
		core.KindMetadata,
		core.KindUserTurn,
		core.KindToolOutcome,
		core.KindToolOutcome,
		core.KindToolOutcome,
		core.KindAssistantTurn,
		core.KindNotification,
	}
	got := make([]core.Kind, len(events))
	for i, ev := range events {
		got[i] = ev.Kind
	}
	assert.Equal(t, want, got)

	t.Run("metadata", func(t *testing.T) {
		meta := events[0]
		assert.Equal(t, "019b2f45", meta.SessionID)
		assert.Equal(t, "/repo", meta.Dir)
		assert.Equal(t, "0.48.0", meta.Version)
		assert.Equal(t, "main", meta.Branch)
	})

	t.Run("injected user instructions suppressed", func(t *testing.T) {
		assert.Equal(t, "run the tests", events[1].Text)
	})

	t.Run("shell command rendered as one string", func(t *testing.T) {
		assert.Equal(t, "shell", events[2].ToolName)
		assert.Equal(t, `command="bash -lc make test"`, events[2].ToolArgs)
		assert.True(t, events[2].Failed, "exit_code 2 is a failure")
		assert.False(t, events[3].Failed, "exit_code 0 succeeds")
	})

	t.Run("apply_patch", func(t *testing.T) {
		assert.Equal(t, "apply_patch", events[4].ToolName)
		assert.Equal(t, `file="pkg/run.go"`, events[4].ToolArgs)
		assert.False(t, events[4].Failed, "plain text output succeeds")
	})

	require.NotNil(t, summary)
	s := summary.Summary

	t.Run("summary", func(t *testing.T) {
		assert.Equal(t, 1, s.UserTurns)
		assert.Equal(t, 1, s.AssistantTurns)
		assert.Equal(t, 3, s.ToolCalls)
		assert.Equal(t, 1, s.ToolFailures)
		assert.Equal(t, "gpt-5-codex", s.Model)
	})

	t.Run("cumulative token counts folded as deltas", func(t *testing.T) {
		assert.Equal(t, 2500, s.Usage.InputTokens)
		assert.Equal(t, 300, s.Usage.OutputTokens)
		assert.Equal(t, 900, s.Usage.CacheReadTokens)
	})

	t.Run("file touches", func(t *testing.T) {
		// cat pkg/run.go via the shell heuristic, then apply_patch update.
		assert.Equal(t, 1, s.FilesRead)
		assert.Equal(t, 1, s.FilesEdited)
		assert.Equal(t, 0, s.FilesWritten)
	})

	t.Run("duration", func(t *testing.T) {
		require.NotNil(t, s.Duration)
		assert.Equal(t, "4m", core.FormatDuration(*s.Duration))
	})
}

func TestModelChangeOnlyOnTransition(t *testing.T) {
	a := New()

	turnContext := func(model string) []core.Event {
		return a.Consume([]byte(`{"timestamp":"2026-03-02T09:00:00Z","type":"turn_context","payload":{"model":"` + model + `"}}`))
	}

	assert.Empty(t, turnContext("gpt-5-codex"), "first observation is not a change")
	assert.Empty(t, turnContext("gpt-5-codex"), "repeat is not a change")

	events := turnContext("gpt-5.1-codex")
	require.Len(t, events, 1)
	assert.Equal(t, core.KindModelChange, events[0].Kind)
	assert.Equal(t, "gpt-5.1-codex", events[0].Model)
}

func TestOrphanOutputIgnored(t *testing.T) {
	a := New()
	events := a.Consume([]byte(`{"timestamp":"2026-03-02T09:00:00Z","type":"response_item","payload":{"type":"function_call_output","call_id":"call_unknown","output":"whatever"}}`))
	assert.Empty(t, events)
	assert.Nil(t, a.Finalize())
}

func TestMalformedLines(t *testing.T) {
	a := New()
	assert.Empty(t, a.Consume([]byte("{broken")))
	assert.Empty(t, a.Consume([]byte(`{"type":"response_item","payload":"not an object"}`)))
	assert.Nil(t, a.Finalize())
}

func TestPatchFiles(t *testing.T) {
	patch := "*** Begin Patch\n*** Add File: new.go\n+package x\n*** Update File: old.go\n@@\n*** Delete File: gone.go\n*** End Patch"
	files := patchFiles(patch)
	require.Len(t, files, 3)
	assert.Equal(t, core.FileWritten, files[0].kind)
	assert.Equal(t, "new.go", files[0].path)
	assert.Equal(t, core.FileEdited, files[1].kind)
	assert.Equal(t, core.FileEdited, files[2].kind)
}
