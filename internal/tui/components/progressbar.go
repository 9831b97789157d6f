package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vvka-141/pgingest/internal/tui"
)

// ChunkWrittenMsg reports cumulative rows written after a chunk.
type ChunkWrittenMsg struct {
	Chunk   int
	Chunks  int
	Written int
	Total   int
}

// ProgressBar renders rows written against the dataset size.
//
// It follows the tea.Model contract but never schedules commands, so it can
// be driven directly with Update and View without a tea.Program.
type ProgressBar struct {
	bar     progress.Model
	label   string
	chunk   int
	chunks  int
	written int
	total   int
	styles  progressStyles
}

type progressStyles struct {
	Label lipgloss.Style
	Count lipgloss.Style
	Done  lipgloss.Style
}

func defaultProgressStyles() progressStyles {
	return progressStyles{
		Label: lipgloss.NewStyle().Foreground(tui.ColorSecondary),
		Count: lipgloss.NewStyle().Foreground(tui.ColorMuted),
		Done:  tui.SuccessStyle,
	}
}

// NewProgressBar creates a bar whose gauge is width cells wide.
func NewProgressBar(label string, width int) ProgressBar {
	return ProgressBar{
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(width)),
		label:  label,
		styles: defaultProgressStyles(),
	}
}

// Init implements tea.Model.
func (p ProgressBar) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p ProgressBar) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ChunkWrittenMsg:
		p.chunk = msg.Chunk
		p.chunks = msg.Chunks
		p.written = msg.Written
		p.total = msg.Total
	case tea.WindowSizeMsg:
		p.bar.Width = max(msg.Width-40, 10)
	}
	return p, nil
}

// View implements tea.Model.
func (p ProgressBar) View() string {
	counts := fmt.Sprintf("%d/%d rows", p.written, p.total)
	if p.chunks > 0 {
		counts += fmt.Sprintf(" (chunk %d/%d)", p.chunk, p.chunks)
	}

	counter := p.styles.Count.Render(counts)
	if p.Done() {
		counter = p.styles.Done.Render(counts)
	}
	return p.styles.Label.Render(p.label) + " " + p.bar.ViewAs(p.Percent()) + " " + counter
}

// Percent returns the completed fraction in [0, 1].
func (p ProgressBar) Percent() float64 {
	if p.total <= 0 {
		return 0
	}
	return min(float64(p.written)/float64(p.total), 1)
}

// Done reports whether every row has been written.
func (p ProgressBar) Done() bool {
	return p.total > 0 && p.written >= p.total
}
