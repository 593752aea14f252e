package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/sonnes/lekhak/core"
	"github.com/sonnes/lekhak/manifest"
	htmlrender "github.com/sonnes/lekhak/render/html"
	"github.com/sonnes/lekhak/scan"
)

func convertCmd() *cli.Command {
	return &cli.Command{
		Name:  "convert",
		Usage: "Convert session logs to canonical transcripts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "source",
				Usage:    "Source tool (claude, codex, opencode)",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "file",
				Usage: "Path to a single session log file",
			},
			&cli.StringFlag{
				Name:  "session",
				Usage: "Session ID to convert",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Convert every discovered session",
			},
			&cli.StringFlag{
				Name:  "root",
				Usage: "Source data root (defaults to the tool's standard location)",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output directory; omit to print a single transcript to stdout",
			},
			&cli.BoolFlag{
				Name:  "html",
				Usage: "Also write an HTML page per transcript",
			},
		},
		Action: runConvert,
	}
}

func runConvert(ctx context.Context, cmd *cli.Command) error {
	name := cmd.String("source")
	src, err := sourceByName(name)
	if err != nil {
		return err
	}

	root := cmd.String("root")
	if root == "" {
		root = src.defaultRoot()
	}

	sessions, err := selectSessions(src, root, cmd)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		return fmt.Errorf("no sessions found")
	}

	out := cmd.String("out")
	if out == "" {
		if len(sessions) > 1 {
			return fmt.Errorf("--out is required when converting multiple sessions")
		}
		return convertToStdout(src, root, sessions[0])
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	manifestPath := filepath.Join(out, "manifest.json")
	m, err := manifest.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	var htmlr *htmlrender.Renderer
	if cmd.Bool("html") {
		htmlr = htmlrender.New()
	}

	var converted int
	for _, sess := range sessions {
		events, summary, err := src.convert(root, sess)
		if err != nil {
			log.Warn("skipping session", "source", name, "session", sess.ID, "err", err)
			continue
		}
		if summary == nil {
			log.Debug("skipping empty session", "session", sess.ID)
			continue
		}

		path := sess.OutputPath(out)
		if err := writeTranscript(path, events, summary); err != nil {
			log.Warn("skipping session", "session", sess.ID, "err", err)
			continue
		}
		if htmlr != nil {
			if err := writeHTML(htmlr, sess.ID, out, events, summary); err != nil {
				log.Warn("html render failed", "session", sess.ID, "err", err)
			}
		}

		m.Upsert(manifest.NewEntry(name, events, summary, sess.ID+".txt"))
		converted++
		log.Info("converted", "session", sess.ID, "path", path)
	}

	if converted == 0 {
		return fmt.Errorf("no sessions converted")
	}
	if err := m.WriteFile(manifestPath); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	fmt.Fprintf(os.Stdout, "converted %d of %d sessions to %s\n", converted, len(sessions), out)
	return nil
}

// selectSessions resolves the --file/--session/--all selection. Exactly one
// must be set.
func selectSessions(src source, root string, cmd *cli.Command) ([]scan.Session, error) {
	file := cmd.String("file")
	session := cmd.String("session")
	all := cmd.Bool("all")

	n := 0
	for _, set := range []bool{file != "", session != "", all} {
		if set {
			n++
		}
	}
	if n != 1 {
		return nil, fmt.Errorf("exactly one of --file, --session, or --all is required")
	}

	switch {
	case file != "":
		id := filepath.Base(file)
		id = id[:len(id)-len(filepath.Ext(id))]
		return []scan.Session{{Path: file, ID: id}}, nil
	case session != "":
		sessions, err := src.scan(root)
		if err != nil {
			return nil, err
		}
		for _, s := range sessions {
			if s.ID == session {
				return []scan.Session{s}, nil
			}
		}
		return nil, fmt.Errorf("session %q not found under %s", session, root)
	default:
		return src.scan(root)
	}
}

func convertToStdout(src source, root string, sess scan.Session) error {
	events, summary, err := src.convert(root, sess)
	if err != nil {
		return err
	}
	return writeEvents(os.Stdout, events, summary)
}

func writeHTML(r *htmlrender.Renderer, id, out string, events []core.Event, summary *core.Event) error {
	f, err := os.Create(filepath.Join(out, id+".html"))
	if err != nil {
		return err
	}
	defer f.Close()
	return r.Render(f, events, summary)
}
