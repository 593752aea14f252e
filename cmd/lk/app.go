package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sonnes/lekhak/adapter"
	"github.com/sonnes/lekhak/adapter/claude"
	"github.com/sonnes/lekhak/adapter/codex"
	"github.com/sonnes/lekhak/adapter/opencode"
	"github.com/sonnes/lekhak/core"
	"github.com/sonnes/lekhak/render"
	"github.com/sonnes/lekhak/scan"
)

// source wires one agent's on-disk layout to its adapter.
type source struct {
	defaultRoot func() string
	scan        func(root string) ([]scan.Session, error)
	convert     func(root string, sess scan.Session) ([]core.Event, *core.Event, error)
}

func sources() map[string]source {
	return map[string]source{
		"claude": {
			defaultRoot: func() string { return filepath.Join(home(), ".claude", "projects") },
			scan:        scan.Claude,
			convert: func(_ string, sess scan.Session) ([]core.Event, *core.Event, error) {
				return consumeFile(claude.New(), sess.Path)
			},
		},
		"codex": {
			defaultRoot: func() string { return filepath.Join(home(), ".codex", "sessions") },
			scan:        scan.Codex,
			convert: func(_ string, sess scan.Session) ([]core.Event, *core.Event, error) {
				return consumeFile(codex.New(), sess.Path)
			},
		},
		"opencode": {
			defaultRoot: func() string {
				if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
					return filepath.Join(xdg, "opencode")
				}
				return filepath.Join(home(), ".local", "share", "opencode")
			},
			scan: scan.OpenCode,
			convert: func(root string, sess scan.Session) ([]core.Event, *core.Event, error) {
				a := opencode.New(root)
				events, err := a.Convert(sess.ID)
				if err != nil {
					return nil, nil, err
				}
				return events, a.Finalize(), nil
			},
		},
	}
}

func sourceByName(name string) (source, error) {
	src, ok := sources()[name]
	if !ok {
		return source{}, fmt.Errorf("unknown source %q", name)
	}
	return src, nil
}

// consumeFile drives a streaming adapter over every line of a JSONL log.
func consumeFile(a adapter.Adapter, path string) ([]core.Event, *core.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var events []core.Event
	scanner := bufio.NewScanner(f)
	// Single records can carry whole files; the default token limit is far
	// too small.
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		events = append(events, a.Consume(scanner.Bytes())...)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return events, a.Finalize(), nil
}

// writeEvents renders events plus summary as tagged lines to w.
func writeEvents(w io.Writer, events []core.Event, summary *core.Event) error {
	tw := render.NewWriter(w)
	if err := tw.WriteAll(events); err != nil {
		return err
	}
	if summary != nil {
		if err := tw.Write(*summary); err != nil {
			return err
		}
	}
	return nil
}

// writeTranscript renders events plus summary to path.
func writeTranscript(path string, events []core.Event, summary *core.Event) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return writeEvents(f, events, summary)
}

func home() string {
	h, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return h
}
