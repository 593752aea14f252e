// Package manifest manages the session index file (manifest.json) that
// tracks all converted transcripts under an output directory.
package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sonnes/lekhak/core"
)

// Entry is the indexed metadata for one converted session.
type Entry struct {
	SessionID string    `json:"session_id"`
	Title     string    `json:"title,omitempty"`
	Source    string    `json:"source"`
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	UserTurns      int `json:"user_turns"`
	AssistantTurns int `json:"assistant_turns"`
	ToolCalls      int `json:"tool_calls"`

	Usage core.Usage `json:"usage"`

	// Href is the transcript path relative to the manifest.
	Href string `json:"href"`
}

// NewEntry builds an index entry from a session's metadata event and summary.
// The title is derived from the first user turn in events.
func NewEntry(source string, events []core.Event, summary *core.Event, href string) Entry {
	e := Entry{Source: source, Href: href}
	for _, ev := range events {
		switch ev.Kind {
		case core.KindMetadata:
			e.SessionID = ev.SessionID
			e.CreatedAt = ev.StartedAt
		case core.KindUserTurn:
			if e.Title == "" {
				e.Title = core.Title(ev.Text)
			}
		}
	}
	if summary != nil && summary.Summary != nil {
		s := summary.Summary
		e.Model = s.Model
		e.UserTurns = s.UserTurns
		e.AssistantTurns = s.AssistantTurns
		e.ToolCalls = s.ToolCalls
		e.Usage = s.Usage
	}
	return e
}

// Manifest holds the list of session entries.
type Manifest struct {
	Entries []Entry `json:"entries"`
}

// ReadFile reads a manifest from disk. Returns an empty Manifest if the file
// does not exist.
func ReadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Manifest{}, nil
	}
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Upsert adds or replaces an entry matched by SessionID. After upserting, the
// entries are sorted newest-first by CreatedAt.
func (m *Manifest) Upsert(entry Entry) {
	for i, e := range m.Entries {
		if e.SessionID == entry.SessionID {
			m.Entries[i] = entry
			m.sort()
			return
		}
	}
	m.Entries = append(m.Entries, entry)
	m.sort()
}

func (m *Manifest) sort() {
	sort.Slice(m.Entries, func(i, j int) bool {
		return m.Entries[i].CreatedAt.After(m.Entries[j].CreatedAt)
	})
}

// WriteFile writes the manifest to disk atomically using a temporary file and
// rename, which is safe against concurrent writers.
func (m *Manifest) WriteFile(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".manifest-*.json")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, path)
}
