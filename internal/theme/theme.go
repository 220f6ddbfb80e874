package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/automation-sync/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorBorder = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for section headers in command output.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// SummaryStyle frames the end-of-run summary.
var SummaryStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// MutedStyle is used for timestamps and secondary columns.
var MutedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// ErrorStyle highlights synchronization failures.
var ErrorStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorRed)

// ActionStyle returns a color-coded style for a sync record action.
func ActionStyle(action string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch action {
	case model.SyncActionUpdated:
		return base.Foreground(ColorGreen)
	case model.SyncActionUnchanged:
		return base.Foreground(ColorGray)
	default:
		return base.Foreground(ColorYellow)
	}
}

// AutomationStatusStyle returns a color-coded style for an automation status.
func AutomationStatusStyle(status string) lipgloss.Style {
	base := lipgloss.NewStyle()

	switch status {
	case model.AutomationStatusAutomated:
		return base.Foreground(ColorGreen)
	case model.AutomationStatusNotAutomated:
		return base.Foreground(ColorYellow)
	case model.AutomationStatusPlanned:
		return base.Foreground(ColorBlue)
	default:
		return base.Foreground(ColorGray)
	}
}
