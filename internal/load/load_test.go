// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package load

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scanCSV = `Container Id,Orientation Barcode,Row,Column,Barcode,Scan Time
C1,OB1,A,1,B1,2024-01-01 10:00
`

const vialCSV = `VIAL_QR_CODE,SYNONYMS,SMILES,INITIAL_VOLUME_UL,CONC_mM,SALT
B1,ethanol,CCO,50,10,
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	scanPath := writeFile(t, dir, "scan.csv", scanCSV)
	vialPath := writeFile(t, dir, "vial.csv", vialCSV)

	scan, vial, err := Load(scanPath, vialPath)
	require.NoError(t, err)
	assert.Equal(t, 1, scan.Len())
	assert.Equal(t, "B1", scan.Value(0, "Barcode"))
	assert.Equal(t, "CCO", vial.Value(0, "SMILES"))
	assert.Equal(t, "", vial.Value(0, "SALT"))
}

func TestLoadFileErrors(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, dir string) string
		sentinel error
		check    func(t *testing.T, err error, path string)
	}{
		{
			name: "missing file",
			setup: func(t *testing.T, dir string) string {
				return filepath.Join(dir, "nope.csv")
			},
			sentinel: ErrFileNotFound,
			check: func(t *testing.T, err error, path string) {
				assert.Contains(t, err.Error(), path)
			},
		},
		{
			name: "directory",
			setup: func(t *testing.T, dir string) string {
				sub := filepath.Join(dir, "sub")
				require.NoError(t, os.Mkdir(sub, 0o755))
				return sub
			},
			sentinel: ErrFileNotFound,
		},
		{
			name: "zero-byte file",
			setup: func(t *testing.T, dir string) string {
				return writeFile(t, dir, "empty.csv", "")
			},
			sentinel: ErrEmptyInput,
			check: func(t *testing.T, err error, path string) {
				assert.Contains(t, err.Error(), path)
			},
		},
		{
			name: "header without rows",
			setup: func(t *testing.T, dir string) string {
				return writeFile(t, dir, "header.csv", "VIAL_QR_CODE,SMILES\n")
			},
			sentinel: ErrEmptyInput,
		},
		{
			name: "ragged row",
			setup: func(t *testing.T, dir string) string {
				return writeFile(t, dir, "ragged.csv", "a,b\n1,2,3\n")
			},
			check: func(t *testing.T, err error, path string) {
				var le *LoadError
				require.True(t, errors.As(err, &le))
				assert.Equal(t, path, le.Path)
				assert.Contains(t, err.Error(), "3 fields")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.setup(t, t.TempDir())
			got, err := LoadFile(path)
			require.Error(t, err)
			assert.Nil(t, got)
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
			if tt.check != nil {
				tt.check(t, err, path)
			}
		})
	}
}

func TestLoadStopsAtFirstMissingFile(t *testing.T) {
	dir := t.TempDir()
	vialPath := writeFile(t, dir, "vial.csv", vialCSV)
	missing := filepath.Join(dir, "scan.csv")

	scan, vial, err := Load(missing, vialPath)
	require.ErrorIs(t, err, ErrFileNotFound)
	assert.Nil(t, scan)
	assert.Nil(t, vial)

	var nf *FileNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, missing, nf.Path)
}
