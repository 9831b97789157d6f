// Package checksum fingerprints fetched source files so operators can tell
// which exact bytes a run loaded.
package checksum
