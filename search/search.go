// Package search runs text queries over a transcript directory by delegating
// to ripgrep, falling back to grep when rg is not installed. Transcripts are
// plain tagged lines, so the system search tools already do this better than
// a reimplementation would.
package search

import (
	"context"
	"fmt"
	"io"
	"os/exec"
)

// Run searches pattern in every transcript under dir and streams matching
// lines to w in file:line:text form. A pattern with no matches is not an
// error.
func Run(ctx context.Context, w io.Writer, dir, pattern string) error {
	name, args := command(dir, pattern)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = w

	err := cmd.Run()
	if err == nil {
		return nil
	}
	// Both rg and grep exit 1 on zero matches.
	if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}

func command(dir, pattern string) (string, []string) {
	if _, err := exec.LookPath("rg"); err == nil {
		return "rg", []string{"--color=never", "--line-number", "--glob", "*.txt", pattern, dir}
	}
	return "grep", []string{"-rn", "--include=*.txt", pattern, dir}
}
