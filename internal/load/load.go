// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package load reads the plate-scan and vial-registry CSV exports into
// tables, translating missing and empty files into typed errors.
package load

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pdiddy/cddprep/internal/table"
)

var (
	// ErrFileNotFound matches a *FileNotFoundError with errors.Is.
	ErrFileNotFound = errors.New("input file not found")
	// ErrEmptyInput matches an *EmptyInputError with errors.Is.
	ErrEmptyInput = errors.New("input file is empty")
)

// FileNotFoundError reports an input path that does not resolve to a
// readable file.
type FileNotFoundError struct {
	Path string
	Err  error
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("one of the input files was not found, please check the file paths: %s", e.Path)
}

func (e *FileNotFoundError) Is(target error) bool { return target == ErrFileNotFound }

func (e *FileNotFoundError) Unwrap() error { return e.Err }

// EmptyInputError reports a file that parsed to zero rows or zero columns.
type EmptyInputError struct {
	Path   string
	Reason string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("one of the input files is empty, please provide valid CSV files: %s (%s)", e.Path, e.Reason)
}

func (e *EmptyInputError) Is(target error) bool { return target == ErrEmptyInput }

// LoadError wraps any other failure while opening or parsing a file.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("an error occurred while loading %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load reads both exports. The first file that fails stops the load.
func Load(scanPath, vialPath string) (scan, vial *table.Table, err error) {
	scan, err = LoadFile(scanPath)
	if err != nil {
		return nil, nil, err
	}
	vial, err = LoadFile(vialPath)
	if err != nil {
		return nil, nil, err
	}
	return scan, vial, nil
}

// LoadFile reads one CSV export.
func LoadFile(path string) (*table.Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &FileNotFoundError{Path: path, Err: err}
		}
		return nil, &LoadError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &FileNotFoundError{Path: path, Err: fmt.Errorf("%s is a directory", path)}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	t, err := table.ReadCSV(f)
	if err != nil {
		if errors.Is(err, table.ErrNoColumns) {
			return nil, &EmptyInputError{Path: path, Reason: "no columns to parse"}
		}
		return nil, &LoadError{Path: path, Err: err}
	}
	if t.Len() == 0 {
		return nil, &EmptyInputError{Path: path, Reason: "no data rows"}
	}
	return t, nil
}
