// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoColumns is returned by ReadCSV when the input has no header line.
var ErrNoColumns = errors.New("no columns to parse")

const bom = "\ufeff"

// ReadCSV parses comma-delimited text with a header row. A leading UTF-8
// byte order mark is dropped and a stray quote inside an unquoted field is
// kept as text. Blank input yields ErrNoColumns.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoColumns
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], bom)
	}
	if len(header) == 1 && header[0] == "" {
		return nil, ErrNoColumns
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		rows = append(rows, rec)
	}

	t, err := New(header, rows)
	if err != nil {
		return nil, fmt.Errorf("tokenizing data: %w", err)
	}
	return t, nil
}

// WriteCSV writes t with a header row and no index column.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
