package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/vvka-141/pgingest/internal/dataset"
	"github.com/vvka-141/pgingest/pkg/pgingest"
)

// Source produces a fully materialized Dataset.
type Source interface {
	// Read fetches and decodes the whole file.
	Read(ctx context.Context) (*dataset.Dataset, error)

	// Format reports which variant decodes the file.
	Format() Format
}

// Format identifies a supported file format.
type Format int

const (
	FormatParquet Format = iota + 1
	FormatCSV
)

func (f Format) String() string {
	switch f {
	case FormatParquet:
		return "parquet"
	case FormatCSV:
		return "csv"
	default:
		return "unknown"
	}
}

// DetectFormat inspects the suffix of rawURL. For http, https and file URLs
// only the path is considered, so query strings such as presigned-URL
// signatures do not hide the suffix. Matching is exact and case-sensitive.
func DetectFormat(rawURL string) (Format, error) {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		switch strings.ToLower(u.Scheme) {
		case "http", "https", "file":
			path = u.Path
		}
	}

	switch {
	case strings.HasSuffix(path, ".parquet"):
		return FormatParquet, nil
	case strings.HasSuffix(path, ".csv"):
		return FormatCSV, nil
	default:
		return 0, fmt.Errorf("%q must end in .parquet or .csv: %w", rawURL, pgingest.ErrUnsupportedFormat)
	}
}

// New selects the Source variant for rawURL. Bytes are obtained through
// fetcher when Read is called.
func New(rawURL string, fetcher Fetcher) (Source, error) {
	format, err := DetectFormat(rawURL)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatParquet:
		return &ParquetSource{url: rawURL, fetcher: fetcher}, nil
	case FormatCSV:
		return &CSVSource{url: rawURL, fetcher: fetcher}, nil
	default:
		return nil, fmt.Errorf("format %v: %w", format, pgingest.ErrUnsupportedFormat)
	}
}

func readError(rawURL string, err error) error {
	return fmt.Errorf("read %s: %w: %w", rawURL, pgingest.ErrSourceRead, err)
}
