// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package table holds the in-memory tabular container shared by the pipeline
// stages: ordered column names plus rows of string cells.
package table

import (
	"fmt"
)

// Table is a dense table of string cells. Every row has exactly
// len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string

	index map[string]int
}

// New builds a table from column names and rows. Rows shorter than the
// header are padded with empty cells; longer rows are an error.
func New(columns []string, rows [][]string) (*Table, error) {
	t := &Table{Columns: append([]string(nil), columns...)}
	for i, r := range rows {
		if len(r) > len(columns) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", i+1, len(r), len(columns))
		}
		row := make([]string, len(columns))
		copy(row, r)
		t.Rows = append(t.Rows, row)
	}
	t.reindex()
	return t, nil
}

// MustNew is New for literals in tests and fixtures; it panics on a ragged row.
func MustNew(columns []string, rows ...[]string) *Table {
	t, err := New(columns, rows)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		if _, dup := t.index[c]; !dup {
			t.index[c] = i
		}
	}
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Index returns the position of the named column, or -1.
func (t *Table) Index(col string) int {
	if t.index == nil {
		t.reindex()
	}
	if i, ok := t.index[col]; ok {
		return i
	}
	return -1
}

// Has reports whether the table carries the named column.
func (t *Table) Has(col string) bool { return t.Index(col) >= 0 }

// Missing returns the names in cols that the table lacks, in the order given.
func (t *Table) Missing(cols ...string) []string {
	var missing []string
	for _, c := range cols {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// Value returns the cell at row i in column col. An unknown column yields "".
func (t *Table) Value(i int, col string) string {
	j := t.Index(col)
	if j < 0 {
		return ""
	}
	return t.Rows[i][j]
}

// Column returns a copy of every value in the named column.
func (t *Table) Column(col string) []string {
	j := t.Index(col)
	if j < 0 {
		return nil
	}
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[j]
	}
	return out
}

// AddColumn appends a column. values must have one entry per row.
func (t *Table) AddColumn(name string, values []string) error {
	if len(values) != len(t.Rows) {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), len(t.Rows))
	}
	if t.Has(name) {
		return fmt.Errorf("column %q already exists", name)
	}
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], values[i])
	}
	t.reindex()
	return nil
}

// SetColumn replaces the named column's values, or appends the column when
// the table lacks it.
func (t *Table) SetColumn(name string, values []string) error {
	j := t.Index(name)
	if j < 0 {
		return t.AddColumn(name, values)
	}
	if len(values) != len(t.Rows) {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), len(t.Rows))
	}
	for i := range t.Rows {
		t.Rows[i][j] = values[i]
	}
	return nil
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	c := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, r := range t.Rows {
		c.Rows[i] = append([]string(nil), r...)
	}
	c.reindex()
	return c
}
