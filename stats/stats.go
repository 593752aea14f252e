// Package stats aggregates counters across rendered transcripts. It works
// from the tagged line format alone, so it can report over any transcript
// directory without access to the source logs.
package stats

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/x/term"
)

const defaultWidth = 100

// FileStats holds the counters recovered from one rendered transcript.
type FileStats struct {
	Path      string
	SessionID string

	UserTurns      int
	AssistantTurns int
	ToolCalls      int
	ToolFailures   int

	// Duration and Tokens are taken verbatim from the summary block; empty
	// when the transcript has none.
	Duration string
	Tokens   string
}

// ScanFile recovers counters from a rendered transcript by its line tags.
func ScanFile(path string) (FileStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileStats{}, err
	}
	defer f.Close()

	fs := FileStats{Path: path}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "> "):
			fs.UserTurns++
		case strings.HasPrefix(line, "< "):
			fs.AssistantTurns++
		case strings.HasPrefix(line, "+ "):
			fs.ToolCalls++
		case strings.HasPrefix(line, "! "):
			fs.ToolCalls++
			fs.ToolFailures++
		case strings.HasPrefix(line, "# "):
			fs.meta(line[2:])
		}
	}
	if err := scanner.Err(); err != nil {
		return FileStats{}, err
	}

	if fs.SessionID == "" {
		fs.SessionID = strings.TrimSuffix(filepath.Base(path), ".txt")
	}
	return fs, nil
}

func (fs *FileStats) meta(line string) {
	key, val, ok := strings.Cut(line, ": ")
	if !ok {
		return
	}
	switch key {
	case "session":
		if fs.SessionID == "" {
			fs.SessionID = val
		}
	case "duration":
		fs.Duration = val
	case "tokens":
		fs.Tokens = val
	}
}

// Report is a cross-session aggregation.
type Report struct {
	Files []FileStats
}

// ScanDir builds a report over every .txt transcript directly under dir,
// sorted by session ID. Unreadable files are skipped.
func ScanDir(dir string) (*Report, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read transcript directory: %w", err)
	}

	r := &Report{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		fs, err := ScanFile(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		r.Files = append(r.Files, fs)
	}

	sort.Slice(r.Files, func(i, j int) bool {
		return r.Files[i].SessionID < r.Files[j].SessionID
	})
	return r, nil
}

// Totals sums the counters over all files.
func (r *Report) Totals() FileStats {
	var t FileStats
	t.SessionID = "total"
	for _, fs := range r.Files {
		t.UserTurns += fs.UserTurns
		t.AssistantTurns += fs.AssistantTurns
		t.ToolCalls += fs.ToolCalls
		t.ToolFailures += fs.ToolFailures
	}
	return t
}

// Renderer writes a report as an aligned, colored table.
type Renderer struct {
	// Width overrides terminal width detection. Zero means auto-detect.
	Width int
}

// Render writes the table to w. Session IDs are truncated to fit the
// detected width.
func (rn *Renderer) Render(w io.Writer, r *Report) error {
	width := rn.termWidth()

	const numCols = "%6s %6s %6s %6s  %-10s %s"
	sessionWidth := width - 48
	if sessionWidth < 12 {
		sessionWidth = 12
	}

	header := fmt.Sprintf("%-*s "+numCols, sessionWidth, "SESSION",
		"USER", "ASST", "TOOLS", "FAIL", "DURATION", "TOKENS")
	fmt.Fprintln(w, styleHeader.Render(header))

	// Rows are padded before styling; styling a padded cell keeps the ANSI
	// escapes out of the width math.
	for _, fs := range r.Files {
		id := fmt.Sprintf("%-*s", sessionWidth, truncate(fs.SessionID, sessionWidth))
		row := fmt.Sprintf(numCols,
			fmt.Sprint(fs.UserTurns),
			fmt.Sprint(fs.AssistantTurns),
			fmt.Sprint(fs.ToolCalls),
			fmt.Sprint(fs.ToolFailures),
			fs.Duration,
			fs.Tokens)
		style := styleValue
		if fs.ToolFailures > 0 {
			style = styleFail
		}
		fmt.Fprintln(w, styleSession.Render(id)+" "+style.Render(row))
	}

	t := r.Totals()
	total := fmt.Sprintf("%-*s "+numCols, sessionWidth,
		fmt.Sprintf("%d sessions", len(r.Files)),
		fmt.Sprint(t.UserTurns),
		fmt.Sprint(t.AssistantTurns),
		fmt.Sprint(t.ToolCalls),
		fmt.Sprint(t.ToolFailures),
		"", "")
	fmt.Fprintln(w, styleTotal.Render(total))
	return nil
}

func (rn *Renderer) termWidth() int {
	if rn.Width > 0 {
		return rn.Width
	}
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}

func truncate(s string, maxWidth int) string {
	if len(s) <= maxWidth {
		return s
	}
	if maxWidth < 4 {
		maxWidth = 4
	}
	return s[:maxWidth-3] + "..."
}
