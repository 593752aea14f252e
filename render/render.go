// Package render maps canonical events to the tagged line format. The line
// prefixes are a compatibility surface: external line-oriented tooling (and
// the stats reporter) parse rendered transcripts by these tags, so the
// contract of tag symbol, single space, content must not change.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sonnes/lekhak/core"
)

// Line tags. One tag per event family; metadata and summary share "#".
const (
	TagMeta      = "#"
	TagUser      = ">"
	TagAssistant = "<"
	TagToolOK    = "+"
	TagToolFail  = "!"
	TagNote      = "~"
)

// Lines renders one canonical event. Most events produce a single line;
// metadata and summary produce a block of "#" lines. The mapping is
// deterministic and stateless.
func Lines(ev core.Event) []string {
	switch ev.Kind {
	case core.KindMetadata:
		return metadataLines(ev)
	case core.KindUserTurn:
		return []string{TagUser + " " + core.CollapseSpace(ev.Text)}
	case core.KindAssistantTurn:
		return []string{TagAssistant + " " + core.CollapseSpace(ev.Text)}
	case core.KindToolOutcome:
		return []string{toolLine(ev)}
	case core.KindModelChange:
		return []string{TagMeta + " model: " + ev.Model}
	case core.KindNotification:
		return []string{TagNote + " " + core.CollapseSpace(ev.Text)}
	case core.KindSummary:
		return summaryLines(ev.Summary)
	default:
		return nil
	}
}

func toolLine(ev core.Event) string {
	tag := TagToolOK
	if ev.Failed {
		tag = TagToolFail
	}
	if ev.ToolArgs == "" {
		return tag + " " + ev.ToolName
	}
	return tag + " " + ev.ToolName + ": " + core.CollapseSpace(ev.ToolArgs)
}

func metadataLines(ev core.Event) []string {
	lines := []string{TagMeta + " session: " + ev.SessionID}
	if ev.Dir != "" {
		lines = append(lines, TagMeta+" dir: "+ev.Dir)
	}
	if !ev.StartedAt.IsZero() {
		lines = append(lines, TagMeta+" started: "+ev.StartedAt.Format(time.RFC3339))
	}
	if ev.Version != "" {
		lines = append(lines, TagMeta+" version: "+ev.Version)
	}
	if ev.Branch != "" {
		lines = append(lines, TagMeta+" branch: "+ev.Branch)
	}
	return lines
}

// summaryLines renders the summary block in fixed field order. Zero-valued
// file counts are dropped individually; the tools, tokens, and cache lines
// are dropped whole when fully zero.
func summaryLines(s *core.Summary) []string {
	if s == nil {
		return nil
	}

	var lines []string
	if s.Duration != nil {
		lines = append(lines, TagMeta+" duration: "+core.FormatDuration(*s.Duration))
	}
	if s.Model != "" {
		lines = append(lines, TagMeta+" model: "+s.Model)
	}
	lines = append(lines, fmt.Sprintf("%s messages: %d user, %d assistant", TagMeta, s.UserTurns, s.AssistantTurns))
	if s.ToolCalls > 0 {
		lines = append(lines, fmt.Sprintf("%s tools: %d total, %d failed", TagMeta, s.ToolCalls, s.ToolFailures))
	}
	if fl := filesLine(s); fl != "" {
		lines = append(lines, fl)
	}
	if s.Usage.InputTokens > 0 || s.Usage.OutputTokens > 0 {
		lines = append(lines, fmt.Sprintf("%s tokens: %s in, %s out",
			TagMeta, core.FormatTokens(s.Usage.InputTokens), core.FormatTokens(s.Usage.OutputTokens)))
	}
	if s.Usage.CacheReadTokens > 0 || s.Usage.CacheCreationTokens > 0 {
		lines = append(lines, fmt.Sprintf("%s cache: %s read, %s created",
			TagMeta, core.FormatTokens(s.Usage.CacheReadTokens), core.FormatTokens(s.Usage.CacheCreationTokens)))
	}
	return lines
}

func filesLine(s *core.Summary) string {
	var parts []string
	if s.FilesRead > 0 {
		parts = append(parts, fmt.Sprintf("%d read", s.FilesRead))
	}
	if s.FilesWritten > 0 {
		parts = append(parts, fmt.Sprintf("%d written", s.FilesWritten))
	}
	if s.FilesEdited > 0 {
		parts = append(parts, fmt.Sprintf("%d edited", s.FilesEdited))
	}
	if len(parts) == 0 {
		return ""
	}
	return TagMeta + " files: " + strings.Join(parts, ", ")
}

// Writer streams events to w as tagged lines, inserting the blank line after
// the metadata block and the blank line before the summary block.
type Writer struct {
	w       io.Writer
	needSep bool
	wrote   bool
}

// NewWriter creates a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write renders one event. Events that map to nothing are no-ops.
func (tw *Writer) Write(ev core.Event) error {
	lines := Lines(ev)
	if len(lines) == 0 {
		return nil
	}

	if ev.Kind == core.KindSummary && tw.wrote {
		tw.needSep = true
	}
	if tw.needSep {
		if _, err := fmt.Fprintln(tw.w); err != nil {
			return err
		}
		tw.needSep = false
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(tw.w, line); err != nil {
			return err
		}
	}
	tw.wrote = true

	if ev.Kind == core.KindMetadata {
		tw.needSep = true
	}
	return nil
}

// WriteAll renders a full event slice.
func (tw *Writer) WriteAll(events []core.Event) error {
	for _, ev := range events {
		if err := tw.Write(ev); err != nil {
			return err
		}
	}
	return nil
}
