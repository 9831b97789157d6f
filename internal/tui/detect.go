package tui

import (
	"os"

	"golang.org/x/term"
)

// Mode represents how progress should be presented.
type Mode int

const (
	// ModeNonInteractive is used for CI/CD pipelines, scripts, and redirected output.
	ModeNonInteractive Mode = iota
	// ModeInteractive is used when a human is watching the terminal.
	ModeInteractive
)

// DetectMode determines whether pgingest may redraw a progress bar in place.
//
// Returns ModeNonInteractive if:
//   - stderr is not a terminal (redirected to a file or pipe)
//   - PGINGEST_NON_INTERACTIVE=1 is set
//   - CI is set (common CI/CD convention)
//   - TERM=dumb
//
// Returns ModeInteractive otherwise.
func DetectMode() Mode {
	if os.Getenv("PGINGEST_NON_INTERACTIVE") == "1" {
		return ModeNonInteractive
	}
	if os.Getenv("CI") != "" {
		return ModeNonInteractive
	}
	if os.Getenv("TERM") == "dumb" {
		return ModeNonInteractive
	}

	// The bar is drawn on stderr so stdout stays clean for scripts.
	if !IsTerminal(os.Stderr) {
		return ModeNonInteractive
	}

	return ModeInteractive
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// TerminalWidth returns the width of f, or fallback when it cannot be determined.
func TerminalWidth(f *os.File, fallback int) int {
	if !IsTerminal(f) {
		return fallback
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}
