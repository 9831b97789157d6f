package pgingest

import (
	"errors"
	"strings"
)

// Sentinel errors for the failure kinds of an ingestion run.
// Callers distinguish them with errors.Is().
//
// Example usage:
//
//	err := ingester.Ingest(ctx, config)
//	if errors.Is(err, pgingest.ErrUnsupportedFormat) {
//	    // URL suffix was neither .parquet nor .csv
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnsupportedFormat indicates the source URL does not end in a recognized suffix.
	ErrUnsupportedFormat = errors.New("unsupported data format")

	// ErrSourceRead indicates the source could not be fetched or parsed.
	ErrSourceRead = errors.New("source read failed")

	// ErrTypeCoercion indicates a datetime column held malformed text.
	ErrTypeCoercion = errors.New("type coercion failed")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrWriteFailed indicates the header write or a chunk append failed.
	ErrWriteFailed = errors.New("write failed")
)

// usageErrorPrefixes are the message prefixes cobra and pflag use for
// command-line misuse.
var usageErrorPrefixes = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"required flag",
	"invalid argument",
	"flag needs an argument",
	"accepts ",
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrUnsupportedFormat):
		return ExitUnsupportedFormat
	case errors.Is(err, ErrTypeCoercion):
		return ExitTypeCoercion
	case errors.Is(err, ErrWriteFailed):
		return ExitWriteFailed
	case errors.Is(err, ErrSourceRead):
		return ExitSourceReadFailed
	}

	errStr := err.Error()
	for _, prefix := range usageErrorPrefixes {
		if strings.HasPrefix(errStr, prefix) {
			return ExitUsageError
		}
	}

	// Driver errors that escaped wrapping still deserve the connection code
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}

// Preview shortens s to at most MaxErrorPreviewLength characters for use in
// error messages.
func Preview(s string) string {
	if len(s) <= MaxErrorPreviewLength {
		return s
	}
	return s[:MaxErrorPreviewLength] + "..."
}
