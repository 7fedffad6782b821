// Package condense collapses the full table to one row per structure.
//
// Sub-entity rows sharing a PDB ID differ only in the per-chain column and
// the mergeable columns. Condensing joins each mergeable column's distinct
// values into one string per structure, drops the chain column, and then
// collapses the now-identical rows of each group.
package condense

import (
	"fmt"
	"strings"

	"github.com/calkins-dav/pdb-extraction-tool/pkg/fieldmap"
	"github.com/calkins-dav/pdb-extraction-tool/pkg/table"
)

// ConflictError reports a column that was expected to be constant across the
// rows of one structure but was not. Without this check, condensing would
// silently emit more than one row for the structure.
type ConflictError struct {
	Identifier string
	Column     string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("structure %s: column %q differs across rows and is not configured for merging", e.Identifier, e.Column)
}

// Condense produces the one-row-per-structure table.
func Condense(t table.Table, m fieldmap.Mapping) (table.Table, error) {
	idIdx := t.ColumnIndex(m.IdentifierColumn())
	if idIdx < 0 {
		return table.Table{}, fmt.Errorf("condense: no identifier column %q", m.IdentifierColumn())
	}

	mergeable := make(map[string]bool, len(m.MergeColumns()))
	for _, c := range m.MergeColumns() {
		mergeable[c] = true
	}

	// Stable grouping: group order follows each identifier's first row.
	groups := make(map[string][]int)
	var order []string
	for i, row := range t.Rows {
		id := ""
		if idIdx < len(row) {
			id = row[idIdx]
		}
		if _, ok := groups[id]; !ok {
			order = append(order, id)
		}
		groups[id] = append(groups[id], i)
	}

	dropIdx := t.ColumnIndex(fieldmap.DiscriminatorColumn)

	// Any retained column outside the merge set must agree within a group.
	for col, name := range t.Columns {
		if col == dropIdx || mergeable[name] {
			continue
		}
		for _, id := range order {
			rows := groups[id]
			first := cellAt(t, rows[0], col)
			for _, r := range rows[1:] {
				if cellAt(t, r, col) != first {
					return table.Table{}, &ConflictError{Identifier: id, Column: name}
				}
			}
		}
	}

	var columns []string
	for i, name := range t.Columns {
		if i != dropIdx {
			columns = append(columns, name)
		}
	}

	var out [][]string
	for _, id := range order {
		rows := groups[id]

		merged := make(map[int]string)
		for col, name := range t.Columns {
			if !mergeable[name] {
				continue
			}
			sep := " "
			if name == m.LigandNameColumn() {
				sep = " | "
			}
			merged[col] = joinDistinct(t, rows, col, sep)
		}

		// Post-merge, every row of the group projects to the same values,
		// so collapsing duplicates leaves exactly one row per structure.
		seen := make(map[string]bool)
		for _, r := range rows {
			row := make([]string, 0, len(columns))
			for col := range t.Columns {
				if col == dropIdx {
					continue
				}
				if v, ok := merged[col]; ok {
					row = append(row, v)
				} else {
					row = append(row, cellAt(t, r, col))
				}
			}
			key := strings.Join(row, "\x1f")
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, row)
		}
	}

	return table.Table{Columns: columns, Rows: out}, nil
}

// joinDistinct joins the distinct non-blank values of one column across the
// given rows, in first-seen order.
func joinDistinct(t table.Table, rows []int, col int, sep string) string {
	seen := make(map[string]bool)
	var values []string
	for _, r := range rows {
		v := cellAt(t, r, col)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	return strings.Join(values, sep)
}

func cellAt(t table.Table, row, col int) string {
	if col < len(t.Rows[row]) {
		return t.Rows[row][col]
	}
	return ""
}

// Reorder rearranges columns by name: layout names come first in layout
// order (names the table lacks are skipped), remaining columns keep their
// existing relative order. Cell data is untouched.
func Reorder(t table.Table, layout []string) table.Table {
	var perm []int
	taken := make(map[int]bool, len(t.Columns))
	for _, name := range layout {
		if idx := t.ColumnIndex(name); idx >= 0 && !taken[idx] {
			perm = append(perm, idx)
			taken[idx] = true
		}
	}
	for i := range t.Columns {
		if !taken[i] {
			perm = append(perm, i)
		}
	}

	columns := make([]string, len(perm))
	for i, idx := range perm {
		columns[i] = t.Columns[idx]
	}
	rows := make([][]string, len(t.Rows))
	for r := range t.Rows {
		row := make([]string, len(perm))
		for i, idx := range perm {
			row[i] = cellAt(t, r, idx)
		}
		rows[r] = row
	}
	return table.Table{Columns: columns, Rows: rows}
}
