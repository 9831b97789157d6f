package services_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pgingest/internal/db"
	"github.com/vvka-141/pgingest/internal/ingest"
	"github.com/vvka-141/pgingest/internal/logging"
	"github.com/vvka-141/pgingest/internal/services"
	"github.com/vvka-141/pgingest/internal/source"
	testhelpers "github.com/vvka-141/pgingest/internal/testing"
	"github.com/vvka-141/pgingest/pkg/pgingest"
)

func newService() *services.IngestionService {
	logger := logging.NewNullLogger()
	fetcher := source.NewURLFetcher(nil, pgingest.ApplicationName)
	return services.NewIngestionService(db.NewConnector, services.NewSourceFactory(fetcher, logger), logger)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestIngestion_ReplacesPreviousContents(t *testing.T) {
	connCfg := testhelpers.RequireConnectionConfig(t)
	table := testhelpers.UniqueTableName(t, connCfg)
	ctx := context.Background()
	svc := newService()

	first := writeFile(t, "first.csv", "a,b\n1,x\n2,y\n3,z\n")
	_, err := svc.Run(ctx, pgingest.IngestConfig{Connection: *connCfg, Table: table, SourceURL: first, BatchSize: 2}, nil)
	require.NoError(t, err)

	conn := testhelpers.OpenConn(t, connCfg)
	assert.Equal(t, int64(3), testhelpers.CountRows(t, conn, table))

	second := writeFile(t, "second.csv", "c\nonly\nrows\n")
	_, err = svc.Run(ctx, pgingest.IngestConfig{Connection: *connCfg, Table: table, SourceURL: second, BatchSize: 2}, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(2), testhelpers.CountRows(t, conn, table))

	var columns []string
	rows, err := conn.Query(ctx, `SELECT column_name FROM information_schema.columns WHERE table_name = $1 ORDER BY ordinal_position`, table)
	require.NoError(t, err)
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		columns = append(columns, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"c"}, columns, "the second run's schema replaces the first")
}

func TestIngestion_TaxiDatetimesStoredAsTimestamp(t *testing.T) {
	connCfg := testhelpers.RequireConnectionConfig(t)
	table := testhelpers.UniqueTableName(t, connCfg)
	ctx := context.Background()

	path := writeFile(t, "yellow_tripdata_2021-01.csv",
		"VendorID,tpep_pickup_datetime,tpep_dropoff_datetime,passenger_count,fare_amount\n"+
			"1,2021-01-01 00:30:10,2021-01-01 00:36:12,1,8\n"+
			"2,2021-01-01 00:51:20,2021-01-01 00:52:19,,3.5\n")

	_, err := newService().Run(ctx, pgingest.IngestConfig{Connection: *connCfg, Table: table, SourceURL: path, BatchSize: 100}, nil)
	require.NoError(t, err)

	conn := testhelpers.OpenConn(t, connCfg)
	for _, col := range []string{"tpep_pickup_datetime", "tpep_dropoff_datetime"} {
		var dataType string
		err := conn.QueryRow(ctx, `SELECT data_type FROM information_schema.columns WHERE table_name = $1 AND column_name = $2`, table, col).Scan(&dataType)
		require.NoError(t, err)
		assert.Equal(t, "timestamp without time zone", dataType, col)
	}

	var pickup time.Time
	var passengers *int64
	err = conn.QueryRow(ctx, `SELECT tpep_pickup_datetime, passenger_count FROM `+pgx.Identifier{table}.Sanitize()+` WHERE "VendorID" = 2`).Scan(&pickup, &passengers)
	require.NoError(t, err)
	assert.Equal(t, "2021-01-01 00:51:20", pickup.Format("2006-01-02 15:04:05"))
	assert.Nil(t, passengers)
}

func TestIngestion_LargeDatasetOverHTTP(t *testing.T) {
	connCfg := testhelpers.RequireConnectionConfig(t)
	table := testhelpers.UniqueTableName(t, connCfg)
	ctx := context.Background()

	var body strings.Builder
	body.WriteString("id,zone\n")
	for i := 0; i < 250_000; i++ {
		fmt.Fprintf(&body, "%d,z%d\n", i, i%265)
	}
	payload := body.String()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	var events []ingest.Progress
	summary, err := newService().Run(ctx,
		pgingest.IngestConfig{Connection: *connCfg, Table: table, SourceURL: srv.URL + "/trips.csv", BatchSize: 100_000},
		ingest.ObserverFunc(func(p ingest.Progress) { events = append(events, p) }))
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Chunks)
	require.Len(t, events, 3)
	assert.Equal(t, 250_000, events[2].Written)

	conn := testhelpers.OpenConn(t, connCfg)
	assert.Equal(t, int64(250_000), testhelpers.CountRows(t, conn, table))
}

func TestIngestion_UnsupportedFormatCreatesNoTable(t *testing.T) {
	connCfg := testhelpers.RequireConnectionConfig(t)
	table := testhelpers.UniqueTableName(t, connCfg)
	ctx := context.Background()

	path := writeFile(t, "data.txt", "a,b\n1,2\n")
	_, err := newService().Run(ctx, pgingest.IngestConfig{Connection: *connCfg, Table: table, SourceURL: path, BatchSize: 10}, nil)
	require.ErrorIs(t, err, pgingest.ErrUnsupportedFormat)

	conn := testhelpers.OpenConn(t, connCfg)
	var exists bool
	require.NoError(t, conn.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, pgx.Identifier{table}.Sanitize()).Scan(&exists))
	assert.False(t, exists)
}

func TestIngestion_Parquet(t *testing.T) {
	connCfg := testhelpers.RequireConnectionConfig(t)
	table := testhelpers.UniqueTableName(t, connCfg)
	ctx := context.Background()

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "VendorID", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "tpep_pickup_datetime", Type: &arrow.TimestampType{Unit: arrow.Microsecond}, Nullable: true},
		{Name: "tpep_dropoff_datetime", Type: &arrow.TimestampType{Unit: arrow.Microsecond}, Nullable: true},
	}, nil)
	b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer b.Release()

	start := time.Date(2021, 1, 1, 0, 30, 10, 0, time.UTC)
	for i := 0; i < 5; i++ {
		b.Field(0).(*array.Int64Builder).Append(int64(i))
		b.Field(1).(*array.TimestampBuilder).Append(arrow.Timestamp(start.UnixMicro()))
		b.Field(2).(*array.TimestampBuilder).Append(arrow.Timestamp(start.Add(6 * time.Minute).UnixMicro()))
	}
	rec := b.NewRecord()
	defer rec.Release()
	tbl := array.NewTableFromRecords(schema, []arrow.Record{rec})
	defer tbl.Release()

	var buf bytes.Buffer
	require.NoError(t, pqarrow.WriteTable(tbl, &buf, 1024, parquet.NewWriterProperties(), pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())))
	path := writeFile(t, "yellow.parquet", buf.String())

	summary, err := newService().Run(ctx, pgingest.IngestConfig{Connection: *connCfg, Table: table, SourceURL: "file://" + filepath.ToSlash(path), BatchSize: 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, source.FormatParquet, summary.Format)
	assert.Equal(t, 3, summary.Chunks)

	conn := testhelpers.OpenConn(t, connCfg)
	assert.Equal(t, int64(5), testhelpers.CountRows(t, conn, table))
}
