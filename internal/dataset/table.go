// Package dataset holds the tabular payload that backs a chart: an ordered
// list of column names and an ordered list of records read from a delimited
// text file with a header row.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Common dataset errors.
var (
	ErrNoHeader = errors.New("data file has no header row")
)

// Record maps a column name to a cell value.
type Record map[string]Value

// Get returns the cell for column, or an empty text Value when absent.
func (r Record) Get(column string) Value {
	if v, ok := r[column]; ok {
		return v
	}
	return Text("")
}

// Table is a parsed data file. It is never mutated once handed to a renderer.
type Table struct {
	Columns []string
	Rows    []Record
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Column returns the name of the i-th column, or "" when out of range.
func (t *Table) Column(i int) string {
	if t == nil || i < 0 || i >= len(t.Columns) {
		return ""
	}
	return t.Columns[i]
}

// Cell returns the value at row i for the given column.
func (t *Table) Cell(i int, column string) Value {
	if t == nil || i < 0 || i >= len(t.Rows) {
		return Text("")
	}
	return t.Rows[i].Get(column)
}

// ParseCSV reads comma-separated text with a header row. Every cell is kept as
// text; numeric coercion is a separate step (see CoerceTable). Short rows are
// padded with empty cells and extra cells are dropped. When a header repeats a
// column name, the rightmost cell wins.
func ParseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	table := &Table{Columns: header}
	line := 1
	for {
		fields, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		line++
		if readErr != nil {
			return nil, fmt.Errorf("reading row %d: %w", line, readErr)
		}
		record := make(Record, len(header))
		for i, column := range header {
			cell := ""
			if i < len(fields) {
				cell = fields[i]
			}
			record[column] = Text(cell)
		}
		table.Rows = append(table.Rows, record)
	}

	return table, nil
}

// CoerceTable returns a copy of t where every cell has been passed through
// Coerce. Columns keep their order.
func CoerceTable(t *Table) *Table {
	if t == nil {
		return nil
	}
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Record, len(t.Rows)),
	}
	for i, row := range t.Rows {
		coerced := make(Record, len(row))
		for column, v := range row {
			if v.IsNumber() {
				coerced[column] = v
				continue
			}
			coerced[column] = Coerce(v.String())
		}
		out.Rows[i] = coerced
	}
	return out
}
