package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/efficiency/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
	StyleClock  = lipgloss.NewStyle().Foreground(ColorFg).Bold(true).PaddingLeft(1).PaddingRight(1)
)

// StatePill returns a colored indicator for a session state, e.g. "● RUNNING".
func StatePill(state domain.SessionState) string {
	switch state {
	case domain.StateRunning:
		return StyleGreen.Render("● RUNNING")
	case domain.StatePaused:
		return StyleYellow.Render("‖ PAUSED")
	default:
		return StyleDim.Render("○ IDLE")
	}
}

// SourceBadge returns a purple "type:id" label for a source.
func SourceBadge(ref domain.SourceRef) string {
	return StylePurple.Render(ref.Key())
}

// Check renders a success mark followed by text.
func Check(text string) string {
	return StyleGreen.Render("✔") + " " + text
}

// Cross renders a failure mark followed by text.
func Cross(text string) string {
	return StyleRed.Render("✖") + " " + text
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
