package adapter

import "strings"

// readCommands are shell commands treated as file reads by ShellReadPath.
var readCommands = map[string]bool{
	"cat":  true,
	"head": true,
	"tail": true,
	"less": true,
	"more": true,
	"bat":  true,
}

// ShellReadPath extracts the file path read by a shell command, best effort.
// It finds the first known read command in the command string and returns the
// first path-like token after it, skipping flags. Pipelines, globs, and
// redirects are not handled; a miss only loses a file-read count, never
// correlation correctness.
func ShellReadPath(command string) string {
	fields := strings.Fields(command)
	for i, f := range fields {
		if !readCommands[f] {
			continue
		}
		for _, arg := range fields[i+1:] {
			if strings.HasPrefix(arg, "-") {
				continue
			}
			if arg == "|" || arg == "&&" || arg == ";" || strings.HasPrefix(arg, ">") {
				break
			}
			return arg
		}
		return ""
	}
	return ""
}
