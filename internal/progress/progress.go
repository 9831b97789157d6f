// Package progress turns chunk notifications from the ingestor into
// something a person can watch: an in-place bar on a terminal, or one log
// line per chunk otherwise.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vvka-141/pgingest/internal/ingest"
	"github.com/vvka-141/pgingest/internal/tui"
	"github.com/vvka-141/pgingest/internal/tui/components"
	"github.com/vvka-141/pgingest/pkg/pgingest"
)

const defaultBarWidth = 40

// Bar redraws a progress bar on a single line after every chunk.
type Bar struct {
	mu    sync.Mutex
	out   io.Writer
	model components.ProgressBar

	// open is true while a partial bar is on screen without a newline.
	open bool
}

// NewBar creates a Bar writing to out. label is shown before the gauge.
// The gauge is sized to fit termWidth columns; a non-positive termWidth
// keeps the default gauge width.
func NewBar(out io.Writer, label string, termWidth int) *Bar {
	b := &Bar{out: out, model: components.NewProgressBar(label, defaultBarWidth)}
	if termWidth > 0 {
		m, _ := b.model.Update(tea.WindowSizeMsg{Width: termWidth})
		b.model = m.(components.ProgressBar)
	}
	return b
}

// Observe implements ingest.Observer.
func (b *Bar) Observe(p ingest.Progress) {
	b.mu.Lock()
	defer b.mu.Unlock()

	m, _ := b.model.Update(components.ChunkWrittenMsg{
		Chunk:   p.Chunk,
		Chunks:  p.Chunks,
		Written: p.Written,
		Total:   p.Total,
	})
	b.model = m.(components.ProgressBar)

	fmt.Fprint(b.out, "\r"+b.model.View())
	b.open = true
	if b.model.Done() {
		fmt.Fprintln(b.out, " "+tui.SuccessStyle.Render(tui.SymbolCheck))
		b.open = false
	}
}

// Finish ends a bar left incomplete by a failed run, so that later output
// starts on a fresh line.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.open {
		fmt.Fprintln(b.out)
		b.open = false
	}
}

// Finish calls Finish on observers that hold terminal state. It is safe to
// call with any observer, including nil.
func Finish(observer ingest.Observer) {
	if f, ok := observer.(interface{ Finish() }); ok {
		f.Finish()
	}
}

// Log reports each chunk as an Info line.
type Log struct {
	logger pgingest.Logger
}

// NewLog creates a Log observer. Panics if logger is nil.
func NewLog(logger pgingest.Logger) *Log {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Log{logger: logger}
}

// Observe implements ingest.Observer.
func (l *Log) Observe(p ingest.Progress) {
	l.logger.Info("Chunk %d/%d written: %d/%d rows (%.0f%%)",
		p.Chunk, p.Chunks, p.Written, p.Total, percent(p))
}

func percent(p ingest.Progress) float64 {
	if p.Total <= 0 {
		return 0
	}
	return 100 * float64(p.Written) / float64(p.Total)
}

// ForMode picks the observer for a run: nil when disabled, a Bar on stderr
// in interactive mode, and a Log otherwise.
func ForMode(mode tui.Mode, disabled bool, label string, logger pgingest.Logger) ingest.Observer {
	switch {
	case disabled:
		return nil
	case mode == tui.ModeInteractive:
		return NewBar(os.Stderr, label, tui.TerminalWidth(os.Stderr, 0))
	default:
		return NewLog(logger)
	}
}
