package db

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/pgingest/pkg/pgingest"
)

// StandardConnector opens a single username/password connection. It does not
// retry: a failed connect or ping ends the run.
type StandardConnector struct {
	config *pgingest.ConnectionConfig
}

// NewStandardConnector creates a new StandardConnector with the given configuration.
func NewStandardConnector(config *pgingest.ConnectionConfig) *StandardConnector {
	return &StandardConnector{config: config}
}

// Connect opens the connection and pings it. libpq environment variables
// such as PGSSLMODE and PGCONNECT_TIMEOUT fill in settings the URI omits.
func (c *StandardConnector) Connect(ctx context.Context) (pgingest.Connection, error) {
	connConfig, err := pgx.ParseConfig(BuildConnectionString(c.config))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w: %w", pgingest.ErrConnectionFailed, err)
	}

	conn, err := pgx.ConnectConfig(ctx, connConfig)
	if err != nil {
		return nil, c.connectionError(err)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, c.connectionError(err)
	}

	return conn, nil
}

func (c *StandardConnector) connectionError(err error) error {
	return fmt.Errorf("%w: %w", pgingest.ErrConnectionFailed,
		wrapConnectionError(err, c.config.Host, c.config.Port, c.config.Database))
}

// NewConnector is the factory the ingestion service uses to obtain a
// Connector for a run.
func NewConnector(config *pgingest.ConnectionConfig) (pgingest.Connector, error) {
	if config == nil {
		return nil, fmt.Errorf("connection config is nil: %w", pgingest.ErrInvalidConfig)
	}
	return NewStandardConnector(config), nil
}

// wrapConnectionError wraps raw pgx connection errors with actionable guidance.
func wrapConnectionError(err error, host, port, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := net.JoinHostPort(host, port)

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`connection refused to %s

Possible causes:
  - PostgreSQL is not running (check: pg_isready -h %s -p %s)
  - Wrong host or port
  - Firewall blocking the connection

Original error: %w`, addr, host, port, err)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		return fmt.Errorf(`cannot resolve host "%s"

Possible causes:
  - Hostname is misspelled
  - DNS is not configured or reachable
  - Network connection issue

Original error: %w`, host, err)

	case strings.Contains(errStr, "password authentication failed"):
		return fmt.Errorf(`password authentication failed for database "%s"

Possible causes:
  - Wrong password
  - Wrong username
  - User does not have access to the database

Original error: %w`, database, err)

	case strings.Contains(errStr, "does not exist"):
		return fmt.Errorf(`database "%s" does not exist

To create it:
  createdb %s

Original error: %w`, database, database, err)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf(`connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Firewall silently dropping packets
  - Wrong host/port (server not listening)

Original error: %w`, addr, err)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		return fmt.Errorf(`SSL/TLS connection error

Possible causes:
  - Server requires SSL but PGSSLMODE is wrong
  - Certificate verification failed (try PGSSLMODE=require)
  - Client certificates missing (check PGSSLCERT, PGSSLKEY)

Original error: %w`, err)

	case strings.Contains(errStr, "too many connections"):
		return fmt.Errorf(`too many connections to database "%s"

Possible causes:
  - max_connections limit reached in postgresql.conf
  - Stale connections from previous runs

Original error: %w`, database, err)

	default:
		return fmt.Errorf("failed to connect to database: %w", err)
	}
}
