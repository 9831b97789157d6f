package dataset

import (
	"fmt"

	"github.com/vvka-141/pgingest/pkg/pgingest"
)

// Span is the half-open row range [Start, End).
type Span struct {
	Start int
	End   int
}

// Len returns the number of rows in the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Partition splits n rows into contiguous spans of at most threshold rows.
//
// When n <= threshold a single span covers every row (including n == 0,
// which yields one empty span). Otherwise ceil(n/threshold) spans are
// produced whose sizes differ by at most one, larger spans first.
func Partition(n, threshold int) ([]Span, error) {
	if threshold <= 0 {
		return nil, fmt.Errorf("chunk threshold must be positive, got %d: %w", threshold, pgingest.ErrInvalidConfig)
	}
	if n < 0 {
		return nil, fmt.Errorf("row count cannot be negative, got %d", n)
	}
	if n <= threshold {
		return []Span{{Start: 0, End: n}}, nil
	}

	count := (n + threshold - 1) / threshold
	base := n / count
	extra := n % count

	spans := make([]Span, count)
	start := 0
	for i := range spans {
		size := base
		if i < extra {
			size++
		}
		spans[i] = Span{Start: start, End: start + size}
		start += size
	}
	return spans, nil
}

// Chunk is a contiguous slice of a Dataset's rows that keeps the full
// column set. Rows share backing storage with the Dataset.
type Chunk struct {
	// Index is the zero-based position of the chunk in write order.
	Index int

	// Start is the offset of the chunk's first row in the Dataset.
	Start int

	Columns []Column
	Rows    [][]any
}

// Len returns the number of rows in the chunk.
func (c Chunk) Len() int {
	return len(c.Rows)
}

// End returns the offset one past the chunk's last row.
func (c Chunk) End() int {
	return c.Start + len(c.Rows)
}

// Chunks partitions the Dataset with Partition and returns the chunks in
// original row order.
func (d *Dataset) Chunks(threshold int) ([]Chunk, error) {
	spans, err := Partition(d.Len(), threshold)
	if err != nil {
		return nil, err
	}

	chunks := make([]Chunk, len(spans))
	for i, s := range spans {
		chunks[i] = Chunk{
			Index:   i,
			Start:   s.Start,
			Columns: d.Columns,
			Rows:    d.Rows[s.Start:s.End:s.End],
		}
	}
	return chunks, nil
}
