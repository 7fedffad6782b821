// Package table turns the concatenated custom-report CSV text into a
// normalized in-memory table and filters it.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"github.com/calkins-dav/pdb-extraction-tool/pkg/fieldmap"
)

// ErrEmptyResult indicates the fetched records contained no usable data rows.
// The run aborts instead of writing a misleading empty CSV.
var ErrEmptyResult = errors.New("fetched records contain no data rows")

// Table is an ordered set of string rows under named columns.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Build parses the concatenated report text into a Table.
//
// Each per-identifier response repeats the same header line, and responses
// may carry blank separator lines. Parsing is quote-aware, so a field that
// contains the delimiter or an embedded newline survives intact. Exact
// duplicate rows are removed keeping first occurrences, which also reduces
// the repeated headers to the single leading one; that row becomes the
// column index and is renamed through the mapping.
func Build(raw string, m fieldmap.Mapping) (Table, error) {
	r := csv.NewReader(strings.NewReader(raw))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("parse records: %w", err)
	}

	records = dedupeRows(records)

	// Drop all-blank artifact rows wherever a response left them.
	rows := records[:0]
	for _, rec := range records {
		if !blankRow(rec) {
			rows = append(rows, rec)
		}
	}

	if len(rows) < 2 {
		return Table{}, ErrEmptyResult
	}

	header := rows[0]
	columns := make([]string, len(header))
	for i, key := range header {
		columns[i] = m.Rename(key)
	}

	return Table{Columns: columns, Rows: rows[1:]}, nil
}

// dedupeRows removes rows that exactly repeat an earlier row, preserving
// first-occurrence order.
func dedupeRows(rows [][]string) [][]string {
	seen := make(map[string]bool, len(rows))
	out := rows[:0]
	for _, row := range rows {
		key := strings.Join(row, "\x1f")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, row)
	}
	return out
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ColumnIndex returns the position of a column, or -1 when absent.
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// cell returns the value at (row, col), tolerating short rows.
func (t Table) cell(row, col int) string {
	if col < len(t.Rows[row]) {
		return t.Rows[row][col]
	}
	return ""
}

// Column returns all values of one column in row order.
func (t Table) Column(name string) ([]string, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("no column %q", name)
	}
	out := make([]string, len(t.Rows))
	for i := range t.Rows {
		out[i] = t.cell(i, idx)
	}
	return out, nil
}
