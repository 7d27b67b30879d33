// Package dataset provides a small typed, in-memory table.
//
// Every column carries a SemanticType chosen when the dataset is built, so
// consumers such as the schema package never inspect runtime value types.
// Datasets are treated as immutable: transformations return new datasets and
// leave the receiver untouched.
package dataset

import (
	"errors"
	"fmt"
)

// SemanticType tags the kind of values a column holds.
type SemanticType string

const (
	Integer   SemanticType = "integer"
	Float     SemanticType = "float"
	Text      SemanticType = "text"
	Timestamp SemanticType = "timestamp"
	Boolean   SemanticType = "boolean"
)

// IsValid reports whether t is one of the known semantic types.
func (t SemanticType) IsValid() bool {
	switch t {
	case Integer, Float, Text, Timestamp, Boolean:
		return true
	default:
		return false
	}
}

var (
	// ErrColumnNotFound is returned when a named column does not exist
	ErrColumnNotFound = errors.New("column not found")
	// ErrDuplicateColumn is returned when two columns share a name
	ErrDuplicateColumn = errors.New("duplicate column")
	// ErrRowWidth is returned when a row does not match the column count
	ErrRowWidth = errors.New("row width does not match columns")
)

// Column is a named, typed column.
type Column struct {
	Name string
	Type SemanticType
}

// Dataset is an ordered set of rows over named columns.
// Cells hold int64, float64, string, time.Time, bool or nil.
type Dataset struct {
	columns []Column
	index   map[string]int
	rows    [][]any
}

// New builds a dataset, checking column names and row widths.
func New(columns []Column, rows [][]any) (*Dataset, error) {
	index := make(map[string]int, len(columns))
	for i, col := range columns {
		if col.Name == "" {
			return nil, fmt.Errorf("new dataset: column %d has empty name", i)
		}
		if _, ok := index[col.Name]; ok {
			return nil, fmt.Errorf("new dataset: %w: %s", ErrDuplicateColumn, col.Name)
		}
		index[col.Name] = i
	}

	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("new dataset: row %d: %w: got %d, want %d", i, ErrRowWidth, len(row), len(columns))
		}
	}

	cols := make([]Column, len(columns))
	copy(cols, columns)

	return &Dataset{columns: cols, index: index, rows: rows}, nil
}

// Columns returns a copy of the column list.
func (d *Dataset) Columns() []Column {
	cols := make([]Column, len(d.columns))
	copy(cols, d.columns)
	return cols
}

// Names returns the column names in order.
func (d *Dataset) Names() []string {
	names := make([]string, len(d.columns))
	for i, col := range d.columns {
		names[i] = col.Name
	}
	return names
}

// Rows returns the underlying rows. Callers must not modify them.
func (d *Dataset) Rows() [][]any {
	return d.rows
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.rows)
}

// Index returns the position of the named column.
func (d *Dataset) Index(name string) (int, bool) {
	i, ok := d.index[name]
	return i, ok
}

// Column returns the named column.
func (d *Dataset) Column(name string) (Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return Column{}, false
	}
	return d.columns[i], true
}

// Value returns the cell at row i in the named column.
func (d *Dataset) Value(i int, name string) (any, error) {
	col, ok := d.index[name]
	if !ok {
		return nil, fmt.Errorf("value: %w: %s", ErrColumnNotFound, name)
	}
	if i < 0 || i >= len(d.rows) {
		return nil, fmt.Errorf("value: row %d out of range", i)
	}
	return d.rows[i][col], nil
}

// Head returns a dataset holding at most the first n rows.
func (d *Dataset) Head(n int) *Dataset {
	if n < 0 {
		n = 0
	}
	if n > len(d.rows) {
		n = len(d.rows)
	}
	return d.withRows(d.rows[:n:n])
}

// Row is a read-only view of one row used by Filter predicates.
type Row struct {
	ds     *Dataset
	values []any
}

// Get returns the value of the named column, or nil if it does not exist.
func (r Row) Get(name string) any {
	i, ok := r.ds.index[name]
	if !ok {
		return nil
	}
	return r.values[i]
}

// Filter returns the rows for which keep returns true.
func (d *Dataset) Filter(keep func(Row) bool) *Dataset {
	rows := make([][]any, 0, len(d.rows))
	for _, values := range d.rows {
		if keep(Row{ds: d, values: values}) {
			rows = append(rows, values)
		}
	}
	return d.withRows(rows)
}

// MapColumn returns a dataset whose named column is replaced by fn applied to
// every cell, retagged with typ.
func (d *Dataset) MapColumn(name string, typ SemanticType, fn func(any) (any, error)) (*Dataset, error) {
	col, ok := d.index[name]
	if !ok {
		return nil, fmt.Errorf("map column: %w: %s", ErrColumnNotFound, name)
	}

	rows := make([][]any, len(d.rows))
	for i, values := range d.rows {
		row := make([]any, len(values))
		copy(row, values)

		v, err := fn(values[col])
		if err != nil {
			return nil, fmt.Errorf("map column %s: row %d: %w", name, i, err)
		}
		row[col] = v
		rows[i] = row
	}

	columns := d.Columns()
	columns[col].Type = typ

	return New(columns, rows)
}

// RenameColumns returns a dataset with every column renamed by fn.
func (d *Dataset) RenameColumns(fn func(string) string) (*Dataset, error) {
	columns := d.Columns()
	for i := range columns {
		columns[i].Name = fn(columns[i].Name)
	}

	renamed, err := New(columns, d.rows)
	if err != nil {
		return nil, fmt.Errorf("rename columns: %w", err)
	}
	return renamed, nil
}

func (d *Dataset) withRows(rows [][]any) *Dataset {
	return &Dataset{columns: d.columns, index: d.index, rows: rows}
}
