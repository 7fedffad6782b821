// Package output writes tables to CSV files with a write-to-temp-then-rename
// discipline, so an interrupted run never leaves a truncated file where a
// valid artifact from a previous run used to be.
package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/calkins-dav/pdb-extraction-tool/pkg/table"
)

// WriteError reports a failure to produce the output artifact. It is raised
// before the rename step, so the previous artifact (if any) is untouched.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string { return fmt.Sprintf("write %s: %v", e.Path, e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }

// TempPath returns the temporary sibling used while writing path.
func TempPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_tmp" + ext
}

// WriteCSV writes the table (header first, no index column) to path. The
// data goes to a temporary sibling which is verified to exist and be
// non-empty before it atomically replaces path.
func WriteCSV(t table.Table, path string) error {
	tmp := TempPath(path)

	if err := writeFile(t, tmp); err != nil {
		os.Remove(tmp)
		return &WriteError{Path: path, Err: err}
	}

	info, err := os.Stat(tmp)
	if err != nil {
		return &WriteError{Path: path, Err: fmt.Errorf("temporary file missing: %w", err)}
	}
	if info.Size() == 0 {
		os.Remove(tmp)
		return &WriteError{Path: path, Err: fmt.Errorf("temporary file %s is empty", tmp)}
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

func writeFile(t table.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		f.Close()
		return err
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
