package pgingest

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess           = 0  // Every chunk was appended
	ExitGeneralError      = 1  // Unknown or unclassified error
	ExitUsageError        = 2  // CLI usage error (missing or invalid flags)
	ExitPanic             = 3  // Internal panic (unexpected crash)
	ExitConfigError       = 10 // Invalid configuration
	ExitConnectionError   = 11 // Failed to connect to database
	ExitUnsupportedFormat = 12 // Source URL has an unrecognized suffix
	ExitTypeCoercion      = 13 // Datetime column could not be converted
	ExitWriteFailed       = 14 // Header or chunk write failed
	ExitSourceReadFailed  = 15 // Source could not be fetched or parsed
)

const (
	// DefaultBatchSize is the row threshold above which a dataset is split
	// into several chunks.
	DefaultBatchSize = 100000

	// ApplicationName is reported to PostgreSQL as application_name.
	ApplicationName = "pgingest"

	// MaxErrorPreviewLength is the maximum number of characters of a cell
	// value quoted in error messages.
	MaxErrorPreviewLength = 200
)
