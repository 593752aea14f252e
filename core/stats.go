package core

import (
	"strings"
	"time"
)

// Usage holds token counters. Used both as a per-record delta and as the
// session aggregate.
type Usage struct {
	InputTokens         int
	OutputTokens        int
	CacheReadTokens     int
	CacheCreationTokens int
}

// Add accumulates the counts from other into u.
func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CacheReadTokens += other.CacheReadTokens
	u.CacheCreationTokens += other.CacheCreationTokens
}

// Stats accumulates per-session running totals as canonical events are
// produced. Counters only grow; LastTimestamp is overwritten with each
// observed record timestamp. Not safe for concurrent use.
type Stats struct {
	// TrackModel controls whether the finalized summary reports the active
	// model. Sources that carry a model per record set it; sources where the
	// model is incidental leave it off.
	TrackModel bool

	UserTurns      int
	AssistantTurns int
	UserWords      int
	AssistantWords int
	ToolCalls      int
	ToolFailures   int
	Usage          Usage

	StartedAt     time.Time
	LastTimestamp time.Time

	filesRead    map[string]bool
	filesWritten map[string]bool
	filesEdited  map[string]bool

	model string
}

// NewStats creates an empty accumulator.
func NewStats() *Stats {
	return &Stats{
		filesRead:    make(map[string]bool),
		filesWritten: make(map[string]bool),
		filesEdited:  make(map[string]bool),
	}
}

// AddUserTurn counts one user turn and its whitespace-separated words.
func (s *Stats) AddUserTurn(text string) {
	s.UserTurns++
	s.UserWords += len(strings.Fields(text))
}

// AddAssistantTurn counts one assistant turn and its words.
func (s *Stats) AddAssistantTurn(text string) {
	s.AssistantTurns++
	s.AssistantWords += len(strings.Fields(text))
}

// AddToolOutcome counts one resolved tool invocation.
func (s *Stats) AddToolOutcome(failed bool) {
	s.ToolCalls++
	if failed {
		s.ToolFailures++
	}
}

// FileAccess enumerates the tracked file-touch kinds.
type FileAccess int

const (
	FileRead FileAccess = iota
	FileWritten
	FileEdited
)

// TouchFile records a successful file access. The same path counts once per
// kind no matter how often it is touched.
func (s *Stats) TouchFile(kind FileAccess, path string) {
	if path == "" {
		return
	}
	switch kind {
	case FileRead:
		s.filesRead[path] = true
	case FileWritten:
		s.filesWritten[path] = true
	case FileEdited:
		s.filesEdited[path] = true
	}
}

// Observe records a record timestamp. The latest observation wins.
func (s *Stats) Observe(t time.Time) {
	if t.IsZero() {
		return
	}
	s.LastTimestamp = t
}

// ObserveModel tracks the active model identifier and reports whether it
// changed from the previously observed value. The empty string is the
// "no model" sentinel: it never registers as a change, and the first real
// observation establishes the baseline without reporting one.
func (s *Stats) ObserveModel(model string) bool {
	if model == "" || model == s.model {
		return false
	}
	changed := s.model != ""
	s.model = model
	return changed
}

// Model returns the last observed model identifier.
func (s *Stats) Model() string {
	return s.model
}

// Empty reports whether the session produced no user and no assistant turns.
// Empty sessions yield no summary.
func (s *Stats) Empty() bool {
	return s.UserTurns == 0 && s.AssistantTurns == 0
}

// Summary is the finalized snapshot of a session's accumulator.
type Summary struct {
	// Duration is nil when the start or last timestamp is missing, or when
	// the computed value is negative.
	Duration *time.Duration

	// Model is the active model short name; empty unless the source tracks it.
	Model string

	UserTurns      int
	AssistantTurns int
	ToolCalls      int
	ToolFailures   int
	FilesRead      int
	FilesWritten   int
	FilesEdited    int
	Usage          Usage
}

// Summarize finalizes the accumulator into a summary event. It returns nil
// for empty sessions.
func (s *Stats) Summarize() *Event {
	if s.Empty() {
		return nil
	}

	sum := &Summary{
		UserTurns:      s.UserTurns,
		AssistantTurns: s.AssistantTurns,
		ToolCalls:      s.ToolCalls,
		ToolFailures:   s.ToolFailures,
		FilesRead:      len(s.filesRead),
		FilesWritten:   len(s.filesWritten),
		FilesEdited:    len(s.filesEdited),
		Usage:          s.Usage,
	}
	if s.TrackModel {
		sum.Model = ShortModel(s.model)
	}
	if !s.StartedAt.IsZero() && !s.LastTimestamp.IsZero() {
		d := s.LastTimestamp.Sub(s.StartedAt)
		if d >= 0 {
			sum.Duration = &d
		}
	}

	return &Event{Kind: KindSummary, Summary: sum}
}
