package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vvka-141/pgingest/internal/dataset"
)

const utf8BOM = "\uFEFF"

// CSVSource decodes comma-separated text whose first record is the header.
type CSVSource struct {
	url     string
	fetcher Fetcher
}

// Format implements Source.
func (s *CSVSource) Format() Format { return FormatCSV }

// Read implements Source.
func (s *CSVSource) Read(ctx context.Context) (*dataset.Dataset, error) {
	data, err := s.fetcher.Fetch(ctx, s.url)
	if err != nil {
		return nil, readError(s.url, err)
	}

	ds, err := ParseCSV(data)
	if err != nil {
		return nil, readError(s.url, err)
	}
	return ds, nil
}

// ParseCSV decodes CSV bytes into a Dataset.
//
// Blank and repeated header names are renamed so every column has a
// distinct, non-empty name.
//
// Empty cells become NULL. Each column's kind is inferred from its non-empty
// cells, trying integer, then float, then boolean, and falling back to text.
// Every record must have as many fields as the header.
func ParseCSV(data []byte) (*dataset.Dataset, error) {
	r := csv.NewReader(bytes.NewReader(data))

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("no columns to parse: file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header = dedupeHeader(stripHeaderBOM(header))

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		records = append(records, rec)
	}

	columns := make([]dataset.Column, len(header))
	for j, name := range header {
		columns[j] = dataset.Column{Name: name, Kind: inferKind(records, j)}
	}

	ds := dataset.New(columns)
	ds.Rows = make([][]any, len(records))
	for i, rec := range records {
		row := make([]any, len(rec))
		for j, cell := range rec {
			v, err := convertCell(cell, columns[j].Kind)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", i+1, columns[j].Name, err)
			}
			row[j] = v
		}
		ds.Rows[i] = row
	}
	return ds, nil
}

// stripHeaderBOM removes a UTF-8 BOM from the first header cell if present.
func stripHeaderBOM(headers []string) []string {
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], utf8BOM)
	}
	return headers
}

// dedupeHeader renames header cells the way pandas does: a blank cell at
// position i becomes "Unnamed: i", and a repeated name gets ".1", ".2", ...
// appended until it is unique.
func dedupeHeader(headers []string) []string {
	out := make([]string, len(headers))
	counts := make(map[string]int, len(headers))
	for i, name := range headers {
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		for n := counts[name]; n > 0; n = counts[name] {
			counts[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n)
		}
		counts[name]++
		out[i] = name
	}
	return out
}

func inferKind(records [][]string, col int) dataset.Kind {
	isInt, isFloat, isBool := true, true, true
	seen := false

	for _, rec := range records {
		cell := rec[col]
		if cell == "" {
			continue
		}
		seen = true
		if isInt {
			if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				isFloat = false
			}
		}
		if isBool {
			if _, ok := parseBool(cell); !ok {
				isBool = false
			}
		}
		if !isInt && !isFloat && !isBool {
			return dataset.KindText
		}
	}

	switch {
	case !seen:
		return dataset.KindText
	case isInt:
		return dataset.KindInteger
	case isFloat:
		return dataset.KindFloat
	case isBool:
		return dataset.KindBoolean
	default:
		return dataset.KindText
	}
}

func convertCell(cell string, kind dataset.Kind) (any, error) {
	if cell == "" {
		return nil, nil
	}

	switch kind {
	case dataset.KindInteger:
		return strconv.ParseInt(cell, 10, 64)
	case dataset.KindFloat:
		return strconv.ParseFloat(cell, 64)
	case dataset.KindBoolean:
		b, ok := parseBool(cell)
		if !ok {
			return nil, fmt.Errorf("invalid boolean %q", cell)
		}
		return b, nil
	default:
		return cell, nil
	}
}

// parseBool accepts the spellings pandas recognizes as booleans.
func parseBool(s string) (bool, bool) {
	switch s {
	case "true", "True", "TRUE":
		return true, true
	case "false", "False", "FALSE":
		return false, true
	default:
		return false, false
	}
}
