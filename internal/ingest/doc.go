// Package ingest writes a Dataset into PostgreSQL with the replace-then-append
// protocol: the destination table is dropped and recreated from the dataset's
// columns, then each chunk is appended in row order with COPY.
//
// A failed append aborts the run. Chunks already written stay in the table;
// there is no rollback and no retry.
package ingest
