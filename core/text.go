package core

import (
	"regexp"
	"strings"
)

// injectedRE matches text that starts with an angle-bracket control tag such
// as <command-name>, <system-reminder>, or <ide_opened_file>. These are
// injected by the source tool, not authored by a human.
var injectedRE = regexp.MustCompile(`^<[a-zA-Z_][a-zA-Z0-9_-]*[ />]`)

// IsInjected reports whether user text begins with a source-internal control
// marker and should be suppressed rather than rendered as a turn.
func IsInjected(s string) bool {
	return injectedRE.MatchString(strings.TrimSpace(s))
}

// CollapseSpace normalizes text to a single line: runs of whitespace
// (including newlines) become one space, and the result is trimmed.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Title shortens text to 80 characters on a word boundary for use as a
// session title.
func Title(s string) string {
	return truncate(CollapseSpace(s), 80)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if i := strings.LastIndex(s[:maxLen], " "); i > 0 {
		return s[:i] + "..."
	}
	return s[:maxLen] + "..."
}
