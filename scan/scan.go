// Package scan discovers convertible sessions on disk. Each source tool lays
// its sessions out differently; discovery normalizes all three layouts into a
// flat list of (source, path, session ID) entries with deterministic output
// naming, so repeated runs over unchanged inputs produce identical file sets.
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Source identifies the tool that produced a session log.
type Source string

const (
	SourceClaude   Source = "claude"
	SourceCodex    Source = "codex"
	SourceOpenCode Source = "opencode"
)

// Session is one discovered session.
type Session struct {
	Source Source
	// Path is the session's primary artifact: the JSONL file for streaming
	// sources, the info record for opencode.
	Path string
	// ID is the stable session identifier used for output naming.
	ID string
}

// OutputPath derives the canonical transcript path for a session under dir.
// The mapping is a pure function of the session ID, which keeps conversion
// idempotent across runs.
func (s Session) OutputPath(dir string) string {
	return filepath.Join(dir, s.ID+".txt")
}

// Claude walks a Claude Code projects root (~/.claude/projects). Each project
// subdirectory holds one JSONL file per session, named by session ID.
func Claude(root string) ([]Session, error) {
	projects, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read projects root: %w", err)
	}

	var sessions []Session
	for _, p := range projects {
		if !p.IsDir() {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(root, p.Name()))
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
				continue
			}
			sessions = append(sessions, Session{
				Source: SourceClaude,
				Path:   filepath.Join(root, p.Name(), e.Name()),
				ID:     strings.TrimSuffix(e.Name(), ".jsonl"),
			})
		}
	}
	sortSessions(sessions)
	return sessions, nil
}

// Codex walks a Codex sessions root (~/.codex/sessions), a year/month/day
// tree of rollout-<timestamp>-<id>.jsonl files.
func Codex(root string) ([]Session, error) {
	var sessions []Session
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".jsonl") {
			return nil
		}
		sessions = append(sessions, Session{
			Source: SourceCodex,
			Path:   path,
			ID:     rolloutID(d.Name()),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk sessions root: %w", err)
	}
	sortSessions(sessions)
	return sessions, nil
}

// OpenCode lists the session info records under an OpenCode data root,
// covering both the flat layout and the project-keyed one.
func OpenCode(root string) ([]Session, error) {
	infoDir := filepath.Join(root, "storage", "session", "info")
	entries, err := os.ReadDir(infoDir)
	if err != nil {
		return nil, fmt.Errorf("read session info directory: %w", err)
	}

	var sessions []Session
	add := func(dir, name string) {
		if !strings.HasSuffix(name, ".json") {
			return
		}
		sessions = append(sessions, Session{
			Source: SourceOpenCode,
			Path:   filepath.Join(dir, name),
			ID:     strings.TrimSuffix(name, ".json"),
		})
	}

	for _, e := range entries {
		if e.IsDir() {
			nested, err := os.ReadDir(filepath.Join(infoDir, e.Name()))
			if err != nil {
				continue
			}
			for _, n := range nested {
				if !n.IsDir() {
					add(filepath.Join(infoDir, e.Name()), n.Name())
				}
			}
			continue
		}
		add(infoDir, e.Name())
	}
	sortSessions(sessions)
	return sessions, nil
}

// rolloutID strips the rollout- prefix and timestamp from a Codex file name,
// leaving the session UUID. Names that don't match the convention fall back
// to the bare file name.
func rolloutID(name string) string {
	base := strings.TrimSuffix(name, ".jsonl")
	rest, ok := strings.CutPrefix(base, "rollout-")
	if !ok {
		return base
	}
	// rollout-2026-03-02T09-00-00-<uuid>: the timestamp occupies the first
	// five hyphenated fields; the remainder is the ID, hyphens and all.
	fields := strings.SplitN(rest, "-", 6)
	if len(fields) < 6 {
		return base
	}
	return fields[5]
}

func sortSessions(sessions []Session) {
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Path < sessions[j].Path
	})
}
