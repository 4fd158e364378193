// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package save writes the merged table as the dated CDD upload file.
package save

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/cddprep/internal/table"
)

// Prefix starts every upload file name.
const Prefix = "CDDupload_input_file_"

var writeCSV = table.WriteCSV

// WriteError reports a failure to write the upload file.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to save the output file %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// FileName returns CDDupload_input_file_<YYYYMMDD>.csv for the local date of now.
func FileName(now time.Time) string {
	return Prefix + now.Local().Format("20060102") + ".csv"
}

// Save writes merged to dir/FileName(now) with a header row and no index
// column, replacing any file of the same name, and prints the path to w.
func Save(merged *table.Table, dir string, now time.Time, w io.Writer) (string, error) {
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, FileName(now))

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &WriteError{Path: path, Err: err}
	}
	if err := writeFile(path, merged); err != nil {
		return "", &WriteError{Path: path, Err: err}
	}

	fmt.Fprintf(w, "Output file saved to: %s\n", path)
	return path, nil
}

// writeFile writes t to a temporary file in the target directory and renames
// it over path, so a failed write leaves no partial upload file behind.
func writeFile(path string, t *table.Table) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".cddupload-*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := writeTo(f, t); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func writeTo(f *os.File, t *table.Table) error {
	if err := writeCSV(f, t); err != nil {
		f.Close()
		return err
	}
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
