package stats

import "github.com/charmbracelet/lipgloss"

var (
	colorBright = lipgloss.AdaptiveColor{Light: "#0f172a", Dark: "#f1f5f9"}
	colorDim    = lipgloss.AdaptiveColor{Light: "#94a3b8", Dark: "#64748b"}
	colorUser   = lipgloss.AdaptiveColor{Light: "#2563eb", Dark: "#60a5fa"}
	colorFail   = lipgloss.AdaptiveColor{Light: "#dc2626", Dark: "#f87171"}
)

var (
	styleHeader  = lipgloss.NewStyle().Foreground(colorDim).Bold(true)
	styleSession = lipgloss.NewStyle().Foreground(colorUser)
	styleValue   = lipgloss.NewStyle().Foreground(colorBright)
	styleFail    = lipgloss.NewStyle().Foreground(colorFail)
	styleTotal   = lipgloss.NewStyle().Foreground(colorBright).Bold(true)
)
