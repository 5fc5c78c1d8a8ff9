package output

import "github.com/charmbracelet/lipgloss"

// Outcome badge styles for human-mode rendering. Colors follow the
// terminal scheme the system ships with (cyan on black base).
var (
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#33ffdd")).Bold(true)
	failedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff6b6b")).Bold(true)
	timedOutStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00")).Bold(true)
	neutralStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6bcfff"))
)

// OutcomeBadge renders an outcome name with its status color.
func OutcomeBadge(outcome string) string {
	switch outcome {
	case "success":
		return successStyle.Render("SUCCESS")
	case "failed":
		return failedStyle.Render("FAILED")
	case "timed_out":
		return timedOutStyle.Render("TIMED OUT")
	case "cancelled":
		return neutralStyle.Render("CANCELLED")
	case "sessioned":
		return neutralStyle.Render("SESSIONED")
	default:
		return outcome
	}
}
