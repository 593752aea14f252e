package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/sonnes/lekhak/search"
)

func searchCmd() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search converted transcripts",
		ArgsUsage: "<pattern>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "dir",
				Aliases:  []string{"d"},
				Usage:    "Directory of converted transcripts",
				Required: true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			pattern := cmd.Args().First()
			if pattern == "" {
				return fmt.Errorf("a search pattern is required")
			}
			return search.Run(ctx, os.Stdout, cmd.String("dir"), pattern)
		},
	}
}
