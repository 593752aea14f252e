package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/sonnes/lekhak/stats"
)

func statsCmd() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Aggregate counters across converted transcripts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "dir",
				Aliases:  []string{"d"},
				Usage:    "Directory of converted transcripts",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "width",
				Usage: "Table width (defaults to terminal width)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			report, err := stats.ScanDir(cmd.String("dir"))
			if err != nil {
				return err
			}
			r := &stats.Renderer{Width: int(cmd.Int("width"))}
			return r.Render(os.Stdout, report)
		},
	}
}
