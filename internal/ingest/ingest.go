package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/pgingest/internal/dataset"
	"github.com/vvka-141/pgingest/pkg/pgingest"
)

// Progress is reported after every appended chunk.
type Progress struct {
	// Chunk is the 1-based position of the chunk just written.
	Chunk  int
	Chunks int

	ChunkRows int

	// Written is the cumulative number of rows appended so far.
	Written int
	Total   int
}

// Observer receives progress notifications. Implementations must not block
// for long; they run on the writing goroutine.
type Observer interface {
	Observe(p Progress)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(p Progress)

func (f ObserverFunc) Observe(p Progress) { f(p) }

// Result summarizes a completed ingestion.
type Result struct {
	Table  pgx.Identifier
	Rows   int
	Chunks int
}

// Ingestor writes datasets with the replace-then-append protocol.
type Ingestor struct {
	logger pgingest.Logger
}

// NewIngestor creates an Ingestor. Panics if logger is nil.
func NewIngestor(logger pgingest.Logger) *Ingestor {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Ingestor{logger: logger}
}

// Ingest replaces table with the contents of ds, appending at most
// threshold rows per COPY. observer may be nil.
//
// For N rows, N > threshold yields ceil(N/threshold) chunks whose sizes
// differ by at most one; otherwise a single chunk. When N is zero the table
// is created empty and observer is never called.
func (i *Ingestor) Ingest(ctx context.Context, conn pgingest.DBConnection, ds *dataset.Dataset, table string, threshold int, observer Observer) (*Result, error) {
	ident, err := ParseTableName(table)
	if err != nil {
		return nil, err
	}

	chunks, err := ds.Chunks(threshold)
	if err != nil {
		return nil, err
	}

	if err := i.replaceTable(ctx, conn, ident, ds.Columns); err != nil {
		return nil, err
	}

	total := ds.Len()
	columns := ds.ColumnNames()
	written := 0

	for _, chunk := range chunks {
		if chunk.Len() == 0 {
			continue
		}

		n, err := conn.CopyFrom(ctx, ident, columns, pgx.CopyFromRows(chunk.Rows))
		if err != nil {
			return nil, chunkError(chunk, len(chunks), err)
		}
		if int(n) != chunk.Len() {
			return nil, chunkError(chunk, len(chunks), fmt.Errorf("copied %d rows, expected %d", n, chunk.Len()))
		}

		written += chunk.Len()
		i.logger.Verbose("Chunk %d/%d: rows %d-%d appended", chunk.Index+1, len(chunks), chunk.Start, chunk.End()-1)

		if observer != nil {
			observer.Observe(Progress{
				Chunk:     chunk.Index + 1,
				Chunks:    len(chunks),
				ChunkRows: chunk.Len(),
				Written:   written,
				Total:     total,
			})
		}
	}

	return &Result{Table: ident, Rows: written, Chunks: len(chunks)}, nil
}

// replaceTable drops any existing table and creates it from columns, with
// zero rows.
func (i *Ingestor) replaceTable(ctx context.Context, conn pgingest.DBConnection, table pgx.Identifier, columns []dataset.Column) error {
	drop := dropTableSQL(table)
	i.logger.Verbose("Executing: %s", drop)
	if _, err := conn.Exec(ctx, drop); err != nil {
		return fmt.Errorf("drop table %s: %w: %w", table.Sanitize(), pgingest.ErrWriteFailed, withPgDetail(err))
	}

	create := createTableSQL(table, columns)
	i.logger.Verbose("Executing: %s", pgingest.Preview(create))
	if _, err := conn.Exec(ctx, create); err != nil {
		return fmt.Errorf("create table %s: %w: %w", table.Sanitize(), pgingest.ErrWriteFailed, withPgDetail(err))
	}
	return nil
}

func chunkError(chunk dataset.Chunk, chunks int, err error) error {
	return fmt.Errorf("append chunk %d/%d (rows %d-%d): %w: %w",
		chunk.Index+1, chunks, chunk.Start, chunk.End()-1, pgingest.ErrWriteFailed, withPgDetail(err))
}

// withPgDetail appends the server's DETAIL line, which names the offending
// value for most data errors.
func withPgDetail(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Detail != "" {
		return fmt.Errorf("%w; detail: %s", err, pgErr.Detail)
	}
	return err
}
