package core

import (
	"fmt"
	"regexp"
	"time"
)

// FormatDuration renders a duration as a compact human string like "1h 4m".
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	case m > 0 && s > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// FormatTokens abbreviates a token count with K/M suffixes at the 1,000 and
// 1,000,000 thresholds. One decimal place, trailing ".0" trimmed.
func FormatTokens(n int) string {
	switch {
	case n >= 1_000_000:
		return trimZero(fmt.Sprintf("%.1f", float64(n)/1_000_000)) + "M"
	case n >= 1_000:
		return trimZero(fmt.Sprintf("%.1f", float64(n)/1_000)) + "K"
	default:
		return fmt.Sprintf("%d", n)
	}
}

func trimZero(s string) string {
	if len(s) > 2 && s[len(s)-2:] == ".0" {
		return s[:len(s)-2]
	}
	return s
}

// modelDateRE matches trailing release-date suffixes like -20250929.
var modelDateRE = regexp.MustCompile(`-\d{8}$`)

// ShortModel strips the release-date suffix from a model identifier, e.g.
// "claude-sonnet-4-5-20250929" becomes "claude-sonnet-4-5".
func ShortModel(model string) string {
	return modelDateRE.ReplaceAllString(model, "")
}
