// Package dataset holds the in-memory tabular model shared by the source
// readers, the datetime normalizer and the chunked ingestor.
//
// A Dataset is an ordered list of typed columns and positionally ordered
// rows. Cell values are one of string, int64, float64, bool, time.Time,
// []byte, or nil for SQL NULL; the column Kind decides which.
//
// Chunks partition a Dataset into contiguous row ranges of bounded size.
// The partition never reorders, duplicates or drops rows.
package dataset
