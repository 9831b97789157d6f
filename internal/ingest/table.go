package ingest

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/pgingest/internal/dataset"
	"github.com/vvka-141/pgingest/pkg/pgingest"
)

// ParseTableName turns the --table value into an identifier. The name is
// used verbatim, so "trips.2021" names one table, not a schema and a table.
func ParseTableName(table string) (pgx.Identifier, error) {
	if table == "" {
		return nil, fmt.Errorf("table name is empty: %w", pgingest.ErrInvalidConfig)
	}
	return pgx.Identifier{table}, nil
}

func dropTableSQL(table pgx.Identifier) string {
	return "DROP TABLE IF EXISTS " + table.Sanitize()
}

func createTableSQL(table pgx.Identifier, columns []dataset.Column) string {
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = pgx.Identifier{c.Name}.Sanitize() + " " + c.Kind.SQLType()
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", table.Sanitize(), strings.Join(defs, ", "))
}
