package dataset

import "fmt"

// Kind is the storage type of a column.
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindFloat
	KindBoolean
	KindTimestamp
	KindTimestampTZ
	KindDate
	KindBytes
	KindNumeric
)

var kindNames = map[Kind]string{
	KindText:        "text",
	KindInteger:     "integer",
	KindFloat:       "float",
	KindBoolean:     "boolean",
	KindTimestamp:   "timestamp",
	KindTimestampTZ: "timestamptz",
	KindDate:        "date",
	KindBytes:       "bytes",
	KindNumeric:     "numeric",
}

var sqlTypes = map[Kind]string{
	KindText:        "TEXT",
	KindInteger:     "BIGINT",
	KindFloat:       "DOUBLE PRECISION",
	KindBoolean:     "BOOLEAN",
	KindTimestamp:   "TIMESTAMP",
	KindTimestampTZ: "TIMESTAMPTZ",
	KindDate:        "DATE",
	KindBytes:       "BYTEA",
	KindNumeric:     "NUMERIC",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// SQLType returns the PostgreSQL column type used when creating the
// destination table. Unknown kinds fall back to TEXT.
func (k Kind) SQLType() string {
	if t, ok := sqlTypes[k]; ok {
		return t
	}
	return "TEXT"
}

// Column is a named, typed column.
type Column struct {
	Name string
	Kind Kind
}

// Dataset is an ordered table of named, typed columns.
// Not safe for concurrent mutation.
type Dataset struct {
	Columns []Column
	Rows    [][]any
}

// New creates an empty Dataset with the given columns.
func New(columns []Column) *Dataset {
	return &Dataset{Columns: columns}
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// ColumnNames returns the column names in order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the position of the named column, or -1 if absent.
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// AppendRow appends a row. The row must have one value per column.
func (d *Dataset) AppendRow(row []any) error {
	if len(row) != len(d.Columns) {
		return fmt.Errorf("row %d has %d values, expected %d", len(d.Rows), len(row), len(d.Columns))
	}
	d.Rows = append(d.Rows, row)
	return nil
}
