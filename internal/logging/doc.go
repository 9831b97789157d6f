// Package logging provides concrete implementations of the pgingest.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: writes formatted lines to stderr (or any writer)
//   - NullLogger: discards all messages
//   - MemoryLogger: keeps messages for later inspection in tests
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
