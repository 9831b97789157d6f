// Package source reads a whole tabular file into a dataset.Dataset.
//
// The file format is chosen purely from the URL suffix and forms a closed
// set of variants:
//   - ParquetSource: ".parquet", decoded with Apache Arrow
//   - CSVSource: ".csv", delimited text with a header row
//
// Any other suffix is rejected with pgingest.ErrUnsupportedFormat before a
// single byte is fetched. Sources never stream and never retry: the raw
// file is materialized in memory by a Fetcher and then decoded.
package source
