package pgingest

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBConnection is the subset of a PostgreSQL connection the chunked ingestor
// needs: plain statements for the header write and COPY for appends.
// *pgx.Conn satisfies it directly.
type DBConnection interface {
	// Exec executes a statement without returning any rows.
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)

	// CopyFrom bulk-loads rows into tableName using the COPY protocol and
	// returns the number of rows copied.
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Connection is a live, unpooled database connection owned by a single run.
// The caller must call Close when done, including on failure paths.
type Connection interface {
	DBConnection

	// Close terminates the connection.
	Close(ctx context.Context) error
}

// Connector establishes the connection for one ingestion run.
type Connector interface {
	// Connect opens a connection and verifies it is usable.
	Connect(ctx context.Context) (Connection, error)
}
