package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonnes/lekhak/core"
)

func entry(id string, created time.Time) Entry {
	return Entry{
		SessionID: id,
		Title:     "Session " + id,
		Source:    "claude",
		CreatedAt: created,
		Href:      id + ".txt",
	}
}

func TestReadFileNotExist(t *testing.T) {
	m, err := ReadFile(filepath.Join(t.TempDir(), "manifest.json"))
	require.NoError(t, err)
	assert.Empty(t, m.Entries)
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	e := entry("sess-1", now)
	e.Usage = core.Usage{InputTokens: 5000, OutputTokens: 2000}
	e.UserTurns = 3
	e.ToolCalls = 7

	m := &Manifest{Entries: []Entry{e}}
	require.NoError(t, m.WriteFile(path))

	got, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, "sess-1", got.Entries[0].SessionID)
	assert.Equal(t, 5000, got.Entries[0].Usage.InputTokens)
	assert.Equal(t, 3, got.Entries[0].UserTurns)
	assert.Equal(t, 7, got.Entries[0].ToolCalls)
}

func TestUpsertReplace(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := &Manifest{}

	m.Upsert(entry("a", now))
	m.Upsert(entry("b", now.Add(time.Hour)))

	updated := entry("a", now)
	updated.Title = "Updated title"
	m.Upsert(updated)

	require.Len(t, m.Entries, 2)
	var found bool
	for _, e := range m.Entries {
		if e.SessionID == "a" {
			assert.Equal(t, "Updated title", e.Title)
			found = true
		}
	}
	assert.True(t, found, "entry 'a' should exist")
}

func TestUpsertSortsNewestFirst(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	m := &Manifest{}
	m.Upsert(entry("old", t0))
	m.Upsert(entry("new", t0.Add(2*time.Hour)))
	m.Upsert(entry("mid", t0.Add(time.Hour)))

	require.Len(t, m.Entries, 3)
	assert.Equal(t, "new", m.Entries[0].SessionID)
	assert.Equal(t, "mid", m.Entries[1].SessionID)
	assert.Equal(t, "old", m.Entries[2].SessionID)
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")

	m := &Manifest{Entries: []Entry{entry("x", time.Now())}}
	require.NoError(t, m.WriteFile(path))

	// Verify no leftover temp files.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "manifest.json", entries[0].Name())
}

func TestWriteFileCreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "manifest.json")

	m := &Manifest{}
	require.NoError(t, m.WriteFile(path))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestNewEntry(t *testing.T) {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	events := []core.Event{
		{Kind: core.KindMetadata, SessionID: "sess-1", StartedAt: started},
		core.UserTurn("fix the login bug so sessions persist"),
		core.AssistantTurn("done"),
	}
	summary := &core.Event{Kind: core.KindSummary, Summary: &core.Summary{
		UserTurns:      1,
		AssistantTurns: 1,
		ToolCalls:      4,
		Model:          "gpt-5-codex",
		Usage:          core.Usage{InputTokens: 1000, OutputTokens: 500},
	}}

	e := NewEntry("codex", events, summary, "sess-1.txt")

	assert.Equal(t, "sess-1", e.SessionID)
	assert.Equal(t, "fix the login bug so sessions persist", e.Title)
	assert.Equal(t, "codex", e.Source)
	assert.Equal(t, "gpt-5-codex", e.Model)
	assert.Equal(t, started, e.CreatedAt)
	assert.Equal(t, 4, e.ToolCalls)
	assert.Equal(t, 1000, e.Usage.InputTokens)
	assert.Equal(t, "sess-1.txt", e.Href)
}
