// Package schema maps dataset column types to PostgreSQL column types and
// renders CREATE TABLE statements from them.
package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/sagarc03/userload"
	"github.com/sagarc03/userload/dataset"
)

// FallbackType is used for any semantic type without a mapping.
const FallbackType = "TEXT"

var typeMapping = map[dataset.SemanticType]string{
	dataset.Integer:   "INTEGER",
	dataset.Float:     "NUMERIC",
	dataset.Text:      "TEXT",
	dataset.Timestamp: "TIMESTAMP",
	dataset.Boolean:   "BOOLEAN",
}

// ErrNoColumns is returned when a table would have no columns
var ErrNoColumns = errors.New("no columns")

// MapType returns the PostgreSQL column type for t, or FallbackType.
func MapType(t dataset.SemanticType) string {
	if pgType, ok := typeMapping[t]; ok {
		return pgType
	}
	return FallbackType
}

// ColumnDefinitions renders `"name" TYPE` for each column, in order.
func ColumnDefinitions(columns []dataset.Column) ([]string, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("column definitions: %w", ErrNoColumns)
	}

	seen := make(map[string]struct{}, len(columns))
	defs := make([]string, 0, len(columns))
	for i, col := range columns {
		if col.Name == "" {
			return nil, fmt.Errorf("column definitions: column %d has empty name", i)
		}
		if _, ok := seen[col.Name]; ok {
			return nil, fmt.Errorf("column definitions: duplicate column %s", col.Name)
		}
		seen[col.Name] = struct{}{}

		defs = append(defs, pgx.Identifier{col.Name}.Sanitize()+" "+MapType(col.Type))
	}

	return defs, nil
}

// CreateTableSQL renders an idempotent CREATE TABLE statement for table.
func CreateTableSQL(table string, columns []dataset.Column) (string, error) {
	if !userload.IsValidIdentifier(table) {
		return "", fmt.Errorf("create table sql: invalid table name: %s", table)
	}

	defs, err := ColumnDefinitions(columns)
	if err != nil {
		return "", fmt.Errorf("create table sql: %w", err)
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		pgx.Identifier{table}.Sanitize(),
		strings.Join(defs, ", "),
	), nil
}
