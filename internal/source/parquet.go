package source

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/vvka-141/pgingest/internal/dataset"
)

// ParquetSource decodes a Parquet file through Arrow.
type ParquetSource struct {
	url     string
	fetcher Fetcher
}

// Format implements Source.
func (s *ParquetSource) Format() Format { return FormatParquet }

// Read implements Source.
func (s *ParquetSource) Read(ctx context.Context) (*dataset.Dataset, error) {
	data, err := s.fetcher.Fetch(ctx, s.url)
	if err != nil {
		return nil, readError(s.url, err)
	}

	ds, err := ParseParquet(ctx, data)
	if err != nil {
		return nil, readError(s.url, err)
	}
	return ds, nil
}

// ParseParquet decodes Parquet bytes into a Dataset. Column kinds follow the
// Arrow types; types without a direct mapping are kept as text using
// Arrow's string form of each value.
func ParseParquet(ctx context.Context, data []byte) (*dataset.Dataset, error) {
	mem := memory.DefaultAllocator

	tbl, err := pqarrow.ReadTable(ctx, bytes.NewReader(data), parquet.NewReaderProperties(mem), pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, fmt.Errorf("decode parquet: %w", err)
	}
	defer tbl.Release()

	fields := tbl.Schema().Fields()
	columns := make([]dataset.Column, len(fields))
	for i, f := range fields {
		columns[i] = dataset.Column{Name: f.Name, Kind: kindForArrow(f.Type)}
	}

	numRows := int(tbl.NumRows())
	ds := dataset.New(columns)
	ds.Rows = make([][]any, numRows)
	for r := range ds.Rows {
		ds.Rows[r] = make([]any, len(columns))
	}

	for c := range columns {
		r := 0
		for _, arr := range tbl.Column(c).Data().Chunks() {
			value, err := valueReader(arr)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", columns[c].Name, err)
			}
			for i := 0; i < arr.Len(); i++ {
				if !arr.IsNull(i) {
					ds.Rows[r][c] = value(i)
				}
				r++
			}
		}
	}
	return ds, nil
}

func kindForArrow(dt arrow.DataType) dataset.Kind {
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32:
		return dataset.KindInteger
	case arrow.UINT64:
		// Values above math.MaxInt64 do not fit BIGINT.
		return dataset.KindNumeric
	case arrow.FLOAT32, arrow.FLOAT64:
		return dataset.KindFloat
	case arrow.BOOL:
		return dataset.KindBoolean
	case arrow.BINARY, arrow.LARGE_BINARY:
		return dataset.KindBytes
	case arrow.TIMESTAMP:
		if ts, ok := dt.(*arrow.TimestampType); ok && ts.TimeZone != "" {
			return dataset.KindTimestampTZ
		}
		return dataset.KindTimestamp
	case arrow.DATE32, arrow.DATE64:
		return dataset.KindDate
	default:
		return dataset.KindText
	}
}

// valueReader returns an accessor converting a non-null element of arr to
// the cell representation matching kindForArrow. Strings and byte slices are
// copied because the Arrow buffers are released after decoding.
func valueReader(arr arrow.Array) (func(int) any, error) {
	switch a := arr.(type) {
	case *array.Int8:
		return func(i int) any { return int64(a.Value(i)) }, nil
	case *array.Int16:
		return func(i int) any { return int64(a.Value(i)) }, nil
	case *array.Int32:
		return func(i int) any { return int64(a.Value(i)) }, nil
	case *array.Int64:
		return func(i int) any { return a.Value(i) }, nil
	case *array.Uint8:
		return func(i int) any { return int64(a.Value(i)) }, nil
	case *array.Uint16:
		return func(i int) any { return int64(a.Value(i)) }, nil
	case *array.Uint32:
		return func(i int) any { return int64(a.Value(i)) }, nil
	case *array.Uint64:
		return func(i int) any {
			return pgtype.Numeric{Int: new(big.Int).SetUint64(a.Value(i)), Valid: true}
		}, nil
	case *array.Float32:
		return func(i int) any { return float64(a.Value(i)) }, nil
	case *array.Float64:
		return func(i int) any { return a.Value(i) }, nil
	case *array.Boolean:
		return func(i int) any { return a.Value(i) }, nil
	case *array.String:
		return func(i int) any { return strings.Clone(a.Value(i)) }, nil
	case *array.LargeString:
		return func(i int) any { return strings.Clone(a.Value(i)) }, nil
	case *array.Binary:
		return func(i int) any { return bytes.Clone(a.Value(i)) }, nil
	case *array.LargeBinary:
		return func(i int) any { return bytes.Clone(a.Value(i)) }, nil
	case *array.Timestamp:
		toTime, err := a.DataType().(*arrow.TimestampType).GetToTimeFunc()
		if err != nil {
			return nil, err
		}
		return func(i int) any { return toTime(a.Value(i)) }, nil
	case *array.Date32:
		return func(i int) any { return a.Value(i).ToTime() }, nil
	case *array.Date64:
		return func(i int) any { return a.Value(i).ToTime() }, nil
	default:
		return func(i int) any { return a.ValueStr(i) }, nil
	}
}
