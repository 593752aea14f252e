package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

func main() {
	root := &cli.Command{
		Name:  "lk",
		Usage: "Normalize AI coding assistant session logs into canonical transcripts",
		Description: `
  _     _   _          _
 | |___| |_| |_  __ _| |__
 | / -_) / / ' \/ _' | / /
 |_\___|_\_\_||_\__,_|_\_\

 lekhak, the scribe: one tagged-line transcript format for every agent log.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log",
				Usage: "Log level: debug, info, warn, error",
				Value: "error",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level, err := log.ParseLevel(cmd.String("log"))
			if err != nil {
				return ctx, err
			}
			log.SetLevel(level)
			return ctx, nil
		},
		Commands: []*cli.Command{
			convertCmd(),
			statsCmd(),
			searchCmd(),
			indexCmd(),
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
