package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vvka-141/pgingest/internal/checksum"
	"github.com/vvka-141/pgingest/internal/ingest"
	"github.com/vvka-141/pgingest/internal/normalize"
	"github.com/vvka-141/pgingest/internal/source"
	"github.com/vvka-141/pgingest/pkg/pgingest"
)

// ConnectorFactory creates the Connector for a run.
type ConnectorFactory func(*pgingest.ConnectionConfig) (pgingest.Connector, error)

// SourceFactory selects the Source for a URL.
type SourceFactory func(rawURL string) (source.Source, error)

// Summary describes a successful run.
type Summary struct {
	RunID    string
	Format   source.Format
	Rows     int
	Chunks   int
	Duration time.Duration
}

// IngestionService runs one ingestion end to end: connect, read, normalize,
// write. Thread-Safety: NOT safe for concurrent Run() calls on the same
// instance.
type IngestionService struct {
	connectorFactory ConnectorFactory
	sourceFactory    SourceFactory
	ingestor         *ingest.Ingestor
	logger           pgingest.Logger
}

// NewIngestionService creates a new IngestionService with all dependencies
// injected. Panics on nil dependencies.
func NewIngestionService(
	connectorFactory ConnectorFactory,
	sourceFactory SourceFactory,
	logger pgingest.Logger,
) *IngestionService {
	if connectorFactory == nil {
		panic("connectorFactory cannot be nil")
	}
	if sourceFactory == nil {
		panic("sourceFactory cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	return &IngestionService{
		connectorFactory: connectorFactory,
		sourceFactory:    sourceFactory,
		ingestor:         ingest.NewIngestor(logger),
		logger:           logger,
	}
}

// Run replaces cfg.Table with the dataset at cfg.SourceURL. observer may be
// nil. The connection is closed on every path out of Run.
func (s *IngestionService) Run(ctx context.Context, cfg pgingest.IngestConfig, observer ingest.Observer) (*Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	started := time.Now()
	runID := uuid.NewString()
	s.logger.Verbose("Run %s: %s -> %s (batch size %d)", runID, cfg.SourceURL, cfg.Table, cfg.BatchSize)

	connector, err := s.connectorFactory(&cfg.Connection)
	if err != nil {
		return nil, fmt.Errorf("failed to create connector: %w", err)
	}

	conn, err := connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := conn.Close(ctx); err != nil {
			s.logger.Verbose("Closing connection: %v", err)
		}
	}()
	s.logger.Verbose("Connected to %s:%s/%s", cfg.Connection.Host, cfg.Connection.Port, cfg.Connection.Database)

	src, err := s.sourceFactory(cfg.SourceURL)
	if err != nil {
		return nil, err
	}

	ds, err := src.Read(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Verbose("Read %d rows, %d columns (%s)", ds.Len(), len(ds.Columns), src.Format())

	if normalize.Applies(ds) {
		if err := normalize.TaxiTimestamps(ds); err != nil {
			return nil, err
		}
		s.logger.Verbose("Converted %s and %s to timestamp", normalize.PickupColumn, normalize.DropoffColumn)
	}

	res, err := s.ingestor.Ingest(ctx, conn, ds, cfg.Table, cfg.BatchSize, observer)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		RunID:    runID,
		Format:   src.Format(),
		Rows:     res.Rows,
		Chunks:   res.Chunks,
		Duration: time.Since(started),
	}
	s.logger.Info("Loaded %d rows into %s in %d chunk(s) (%s)",
		summary.Rows, res.Table.Sanitize(), summary.Chunks, summary.Duration.Round(time.Millisecond))
	return summary, nil
}

// NewSourceFactory returns the SourceFactory used by the CLI. Fetched bytes
// are fingerprinted in the verbose log.
func NewSourceFactory(fetcher source.Fetcher, logger pgingest.Logger) SourceFactory {
	fp := &fingerprintingFetcher{next: fetcher, sum: checksum.New(), logger: logger}
	return func(rawURL string) (source.Source, error) {
		return source.New(rawURL, fp)
	}
}

type fingerprintingFetcher struct {
	next   source.Fetcher
	sum    checksum.Calculator
	logger pgingest.Logger
}

func (f *fingerprintingFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	data, err := f.next.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	f.logger.Verbose("Fetched %s: %s", rawURL, checksum.Describe(f.sum, data))
	return data, nil
}
