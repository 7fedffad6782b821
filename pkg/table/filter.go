package table

import (
	"fmt"
	"strconv"
	"strings"
)

// NonNumericError reports a cell that could not be coerced to a number while
// filtering. Resolution is expected for every crystallographic row, so a bad
// cell is a fatal data problem rather than a row to skip.
type NonNumericError struct {
	Column string
	Value  string
	Row    int
}

func (e *NonNumericError) Error() string {
	return fmt.Sprintf("column %q row %d: cannot parse %q as a number", e.Column, e.Row, e.Value)
}

// FilterByResolution keeps the rows whose value in column parses to a number
// at or below max. Row order is preserved and columns are untouched.
func (t Table) FilterByResolution(column string, max float64) (Table, error) {
	idx := t.ColumnIndex(column)
	if idx < 0 {
		return Table{}, fmt.Errorf("filter: no column %q", column)
	}

	kept := make([][]string, 0, len(t.Rows))
	for i, row := range t.Rows {
		raw := strings.TrimSpace(t.cell(i, idx))
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Table{}, &NonNumericError{Column: column, Value: raw, Row: i}
		}
		if v <= max {
			kept = append(kept, row)
		}
	}

	columns := make([]string, len(t.Columns))
	copy(columns, t.Columns)
	return Table{Columns: columns, Rows: kept}, nil
}
