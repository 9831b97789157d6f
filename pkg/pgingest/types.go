package pgingest

import (
	"errors"
	"fmt"
)

// ConnectionConfig holds the discrete credential fields a connection is
// built from. No defaults are applied; the driver validates the values.
type ConnectionConfig struct {
	Username string
	Password string
	Host     string
	Port     string
	Database string

	// AppName is reported as application_name when non-empty.
	AppName string
}

// IngestConfig contains all parameters needed for one ingestion run.
type IngestConfig struct {
	// Connection describes the target database.
	Connection ConnectionConfig

	// Table is the destination table, replaced at the start of the run.
	// The name is used verbatim; dots do not select a schema.
	Table string

	// SourceURL locates the dataset. It must end in .parquet or .csv.
	SourceURL string

	// BatchSize is the maximum number of rows per chunk.
	BatchSize int

	// Verbose enables detailed logging
	Verbose bool
}

// Validate checks if the IngestConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *IngestConfig) Validate() error {
	var errs []error

	if c.Table == "" {
		errs = append(errs, fmt.Errorf("Table is required: %w", ErrInvalidConfig))
	}

	if c.SourceURL == "" {
		errs = append(errs, fmt.Errorf("SourceURL is required: %w", ErrInvalidConfig))
	}

	if c.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("BatchSize must be positive, got %d: %w", c.BatchSize, ErrInvalidConfig))
	}

	return errors.Join(errs...)
}
