package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/pgingest/internal/dataset"
	"github.com/vvka-141/pgingest/internal/source"
	"github.com/vvka-141/pgingest/pkg/pgingest"
)

type mockConn struct {
	statements []string
	copied     int
	closed     bool
	copyErr    error
}

func (m *mockConn) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	m.statements = append(m.statements, sql)
	return pgconn.NewCommandTag("OK"), nil
}

func (m *mockConn) CopyFrom(_ context.Context, _ pgx.Identifier, _ []string, src pgx.CopyFromSource) (int64, error) {
	if m.copyErr != nil {
		return 0, m.copyErr
	}
	var n int64
	for src.Next() {
		n++
	}
	m.copied += int(n)
	return n, nil
}

func (m *mockConn) Close(_ context.Context) error {
	m.closed = true
	return nil
}

type mockConnector struct {
	conn *mockConn
	err  error
}

func (m *mockConnector) Connect(_ context.Context) (pgingest.Connection, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.conn, nil
}

// connectorFactoryFor returns a factory that always hands out connector.
func connectorFactoryFor(connector pgingest.Connector) ConnectorFactory {
	return func(*pgingest.ConnectionConfig) (pgingest.Connector, error) {
		return connector, nil
	}
}

type mockSource struct {
	ds     *dataset.Dataset
	err    error
	format source.Format
	reads  int
}

func (m *mockSource) Read(_ context.Context) (*dataset.Dataset, error) {
	m.reads++
	return m.ds, m.err
}

func (m *mockSource) Format() source.Format { return m.format }

// sourceFactoryFor selects src for every URL that passes suffix detection.
func sourceFactoryFor(src source.Source) SourceFactory {
	return func(rawURL string) (source.Source, error) {
		if _, err := source.DetectFormat(rawURL); err != nil {
			return nil, err
		}
		return src, nil
	}
}

// memFetcher serves a fixed payload for any URL.
type memFetcher struct {
	data []byte
}

func (m memFetcher) Fetch(_ context.Context, _ string) ([]byte, error) {
	if m.data == nil {
		return nil, errors.New("not found")
	}
	return m.data, nil
}
