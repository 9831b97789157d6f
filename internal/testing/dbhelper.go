package testing

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/pgingest/internal/db"
	"github.com/vvka-141/pgingest/internal/testinfra"
	"github.com/vvka-141/pgingest/pkg/pgingest"
)

// ConnEnvVar names the variable that points tests at an existing server.
const ConnEnvVar = "PGINGEST_TEST_CONN"

var (
	testContainerOnce sync.Once
	testContainerConn string
	testContainerErr  error
)

func getOrStartTestContainer() (string, error) {
	testContainerOnce.Do(func() {
		ctx := context.Background()
		container, err := testinfra.StartSimplePostgres(ctx)
		if err != nil {
			testContainerErr = err
			return
		}
		testContainerConn = container.ConnString
	})
	return testContainerConn, testContainerErr
}

// GetTestConnectionString returns the test database connection string.
// Priority: PGINGEST_TEST_CONN env var > auto-started testcontainer > skip test.
func GetTestConnectionString(t *testing.T) string {
	t.Helper()

	if connString := os.Getenv(ConnEnvVar); connString != "" {
		return connString
	}

	connString, err := getOrStartTestContainer()
	if err != nil {
		t.Skipf("%s not set and Docker unavailable: %v", ConnEnvVar, err)
	}
	return connString
}

// SkipIfShort skips the test if running in short mode (-short flag).
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequireDatabase combines SkipIfShort and GetTestConnectionString for convenience.
// Returns the test connection string if available, otherwise skips the test.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return GetTestConnectionString(t)
}

// RequireConnectionConfig is RequireDatabase split into the discrete
// credential fields the CLI accepts.
func RequireConnectionConfig(t *testing.T) *pgingest.ConnectionConfig {
	t.Helper()

	config, err := db.ParseConnectionString(RequireDatabase(t))
	if err != nil {
		t.Fatalf("Failed to parse connection string: %v", err)
	}
	return config
}

// OpenConn opens a plain connection for assertions. It is closed when the
// test completes.
func OpenConn(t *testing.T, config *pgingest.ConnectionConfig) *pgx.Conn {
	t.Helper()

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, db.BuildConnectionString(config))
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}

	t.Cleanup(func() {
		_ = conn.Close(context.Background())
	})
	return conn
}

// UniqueTableName returns a fresh table name and drops the table when the
// test completes.
func UniqueTableName(t *testing.T, config *pgingest.ConnectionConfig) string {
	t.Helper()

	name := "t_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	t.Cleanup(func() {
		ctx := context.Background()
		conn, err := pgx.Connect(ctx, db.BuildConnectionString(config))
		if err != nil {
			t.Logf("Warning: Failed to connect for cleanup: %v", err)
			return
		}
		defer conn.Close(ctx)

		if _, err := conn.Exec(ctx, "DROP TABLE IF EXISTS "+pgx.Identifier{name}.Sanitize()); err != nil {
			t.Logf("Warning: Failed to drop table %s: %v", name, err)
		}
	})
	return name
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, conn *pgx.Conn, table string) int64 {
	t.Helper()

	var n int64
	err := conn.QueryRow(context.Background(), "SELECT count(*) FROM "+pgx.Identifier{table}.Sanitize()).Scan(&n)
	if err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}
	return n
}
