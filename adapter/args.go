package adapter

import (
	"fmt"
	"strings"

	"github.com/sonnes/lekhak/core"
)

// maxArgLen caps rendered argument values so one tool line stays readable.
const maxArgLen = 120

// RenderArgs extracts the most relevant field from a tool's input and renders
// it as `key="value"`. Unknown tools fall back to a priority list of common
// field names; tools with no recognizable field render empty.
func RenderArgs(name string, input map[string]any) string {
	key, val := primaryField(strings.ToLower(name), input)
	if key == "" {
		return ""
	}
	val = core.CollapseSpace(val)
	if len(val) > maxArgLen {
		val = val[:maxArgLen] + "..."
	}
	return fmt.Sprintf("%s=%q", key, val)
}

func primaryField(name string, input map[string]any) (string, string) {
	if input == nil {
		return "", ""
	}

	keys := []string{"command", "file_path", "filePath", "path", "pattern", "query", "url", "prompt", "description"}
	switch name {
	case "bash", "shell":
		keys = []string{"command"}
	case "read", "write", "edit", "multiedit", "notebookedit":
		// file_path is the claude spelling, filePath the opencode one.
		keys = []string{"file_path", "filePath", "path"}
	case "glob", "grep":
		keys = []string{"pattern"}
	case "webfetch", "websearch":
		keys = []string{"url", "query"}
	case "task":
		keys = []string{"description", "prompt"}
	}

	for _, key := range keys {
		if v := stringField(input, key); v != "" {
			return key, v
		}
	}
	return "", ""
}

// FileAccessKind classifies a tool invocation as a tracked file access.
// The path is resolved from the invocation input; ok is false for tools
// that are not direct file accessors or carry no path.
func FileAccessKind(name string, input map[string]any) (kind core.FileAccess, path string, ok bool) {
	path = stringField(input, "file_path")
	if path == "" {
		path = stringField(input, "filePath")
	}
	if path == "" {
		path = stringField(input, "path")
	}
	if path == "" {
		return 0, "", false
	}

	switch strings.ToLower(name) {
	case "read":
		return core.FileRead, path, true
	case "write":
		return core.FileWritten, path, true
	case "edit", "multiedit", "notebookedit":
		return core.FileEdited, path, true
	default:
		return 0, "", false
	}
}

// stringField safely extracts a string value from a map.
func stringField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
