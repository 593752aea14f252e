package html

import (
	"html/template"
	"time"

	"github.com/sonnes/lekhak/core"
)

func funcMap() template.FuncMap {
	return template.FuncMap{
		"formatTime": formatTime,
		"formatDuration": func(d *time.Duration) string {
			if d == nil {
				return ""
			}
			return core.FormatDuration(*d)
		},
		"formatTokens": core.FormatTokens,
	}
}

func formatTime(t time.Time) string {
	return t.Format("Jan 2, 2006 3:04 PM")
}
