package tui

import "github.com/charmbracelet/lipgloss"

// Color palette - keeping it minimal and accessible.
var (
	ColorSecondary = lipgloss.Color("245") // Gray
	ColorSuccess   = lipgloss.Color("34")  // Green
	ColorMuted     = lipgloss.Color("240") // Dark gray
)

var SuccessStyle = lipgloss.NewStyle().
	Foreground(ColorSuccess)

const SymbolCheck = "✓"
