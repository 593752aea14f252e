package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{500 * time.Millisecond, "<1s"},
		{45 * time.Second, "45s"},
		{3 * time.Minute, "3m"},
		{3*time.Minute + 20*time.Second, "3m 20s"},
		{time.Hour, "1h"},
		{time.Hour + 4*time.Minute, "1h 4m"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.in))
		})
	}
}

func TestFormatTokens(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{350, "350"},
		{999, "999"},
		{1000, "1K"},
		{1234, "1.2K"},
		{10_000, "10K"},
		{999_999, "1000K"},
		{1_000_000, "1M"},
		{2_500_000, "2.5M"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTokens(tt.in))
		})
	}
}

func TestShortModel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"claude-sonnet-4-5-20250929", "claude-sonnet-4-5"},
		{"claude-opus-4-6", "claude-opus-4-6"},
		{"gpt-5-codex", "gpt-5-codex"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ShortModel(tt.in))
	}
}
