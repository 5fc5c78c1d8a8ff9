// Package theme defines the TUI color palette.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme holds the palette used by the interactive views.
type Theme struct {
	Name   string
	IsDark bool

	// Accent colors
	Cyan   lipgloss.Color
	Green  lipgloss.Color
	Yellow lipgloss.Color
	Red    lipgloss.Color
	Blue   lipgloss.Color
	Purple lipgloss.Color

	// Text colors
	Text    lipgloss.Color
	Subtext lipgloss.Color

	// Surface colors
	Base    lipgloss.Color
	Surface lipgloss.Color
}

// Razonbilstro is the terminal scheme the original interface shipped with:
// cyan/green accents on a near-black base.
func Razonbilstro() Theme {
	return Theme{
		Name:    "Razonbilstro",
		IsDark:  true,
		Cyan:    lipgloss.Color("#00ffcc"),
		Green:   lipgloss.Color("#33ffdd"),
		Yellow:  lipgloss.Color("#ffcc00"),
		Red:     lipgloss.Color("#ff6b6b"),
		Blue:    lipgloss.Color("#6bcfff"),
		Purple:  lipgloss.Color("#cc00ff"),
		Text:    lipgloss.Color("#cccccc"),
		Subtext: lipgloss.Color("#888888"),
		Base:    lipgloss.Color("#0a0a0a"),
		Surface: lipgloss.Color("#1a1a1a"),
	}
}

// Current is the active theme.
var Current = Razonbilstro()
