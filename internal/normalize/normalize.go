// Package normalize converts the datetime columns of NYC yellow-taxi trip
// data from text to timestamps.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/vvka-141/pgingest/internal/dataset"
	"github.com/vvka-141/pgingest/pkg/pgingest"
)

const (
	PickupColumn  = "tpep_pickup_datetime"
	DropoffColumn = "tpep_dropoff_datetime"
)

// layouts are tried in order. Fractional seconds are accepted by the first
// two because time.Parse allows them after a seconds field.
var layouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"01/02/2006 03:04:05 PM",
	"01/02/2006 15:04",
	"2006-01-02",
}

// TaxiTimestamps converts the pickup and dropoff columns to timestamps in
// place. The dataset is left unchanged unless both columns are present.
// Columns that already hold timestamps are not touched; NULL cells stay
// NULL.
func TaxiTimestamps(ds *dataset.Dataset) error {
	pickup := ds.ColumnIndex(PickupColumn)
	dropoff := ds.ColumnIndex(DropoffColumn)
	if pickup < 0 || dropoff < 0 {
		return nil
	}

	for _, col := range []int{pickup, dropoff} {
		if err := toTimestamp(ds, col); err != nil {
			return err
		}
	}
	return nil
}

// Applies reports whether TaxiTimestamps would convert anything in ds.
func Applies(ds *dataset.Dataset) bool {
	return ds.ColumnIndex(PickupColumn) >= 0 && ds.ColumnIndex(DropoffColumn) >= 0
}

func toTimestamp(ds *dataset.Dataset, col int) error {
	c := ds.Columns[col]
	switch c.Kind {
	case dataset.KindTimestamp, dataset.KindTimestampTZ:
		return nil
	}

	// Convert into a scratch slice first so a failure leaves the column as it was.
	converted := make([]any, len(ds.Rows))
	for i, row := range ds.Rows {
		v, err := coerce(row[col])
		if err != nil {
			return fmt.Errorf("column %q row %d: %w: %w", c.Name, i, pgingest.ErrTypeCoercion, err)
		}
		converted[i] = v
	}

	for i, row := range ds.Rows {
		row[col] = converted[i]
	}
	ds.Columns[col].Kind = dataset.KindTimestamp
	return nil
}

func coerce(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return x, nil
	case string:
		return ParseTimestamp(x)
	default:
		return nil, fmt.Errorf("cannot convert %T value %q to timestamp", v, pgingest.Preview(fmt.Sprint(v)))
	}
}

// ParseTimestamp parses s using the accepted datetime layouts. The result
// carries no zone information beyond UTC.
func ParseTimestamp(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	for _, layout := range layouts {
		t, err := time.Parse(layout, trimmed)
		if err == nil {
			if layout == time.RFC3339Nano {
				// timestamp without time zone: keep the wall clock, as written
				t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
			}
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime %q", pgingest.Preview(s))
}
