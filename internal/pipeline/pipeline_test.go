// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/cddprep/internal/depict"
	"github.com/pdiddy/cddprep/internal/history"
	"github.com/pdiddy/cddprep/internal/load"
	"github.com/pdiddy/cddprep/internal/merge"
	"github.com/pdiddy/cddprep/internal/smiles"
	"github.com/pdiddy/cddprep/internal/table"
	"github.com/pdiddy/cddprep/internal/visualize"
	"github.com/pdiddy/cddprep/pkg/types"
)

const scanCSV = "Container Id,Orientation Barcode,Row,Column,Barcode,Scan Time\n" +
	"P1,O1,A,1,B1,2026-03-07 09:00\n" +
	"P1,O1,A,2,B9,2026-03-07 09:00\n"

const vialCSV = "VIAL_QR_CODE,SYNONYMS,SMILES,INITIAL_VOLUME_UL,CONC_mM,SALT\n" +
	"B1,ethanol,CCO,100,10,\n"

type titleSurface struct{ titles []string }

func (s *titleSurface) Show(title string, _ image.Image) error {
	s.titles = append(s.titles, title)
	return nil
}

var fixedNow = func() time.Time { return time.Date(2026, 3, 7, 10, 0, 0, 0, time.Local) }

func writeInputs(t *testing.T, scan, vial string) (string, string, string) {
	t.Helper()
	dir := t.TempDir()
	sp := filepath.Join(dir, "scan.csv")
	vp := filepath.Join(dir, "vials.csv")
	require.NoError(t, os.WriteFile(sp, []byte(scan), 0o644))
	require.NoError(t, os.WriteFile(vp, []byte(vial), 0o644))
	return sp, vp, dir
}

func baseConfig(dir string) types.Config {
	cfg := types.DefaultConfig()
	cfg.Output.Dir = filepath.Join(dir, "out")
	cfg.Visualize.ImagesDir = filepath.Join(dir, "structures")
	cfg.History.Dir = filepath.Join(dir, ".cddprep")
	return cfg
}

func readOutput(t *testing.T, path string) *table.Table {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	tbl, err := table.ReadCSV(f)
	require.NoError(t, err)
	return tbl
}

func TestRunEndToEnd(t *testing.T) {
	sp, vp, dir := writeInputs(t, scanCSV, vialCSV)
	surface := &titleSurface{}
	var out bytes.Buffer

	res, err := Run(context.Background(), Options{
		ScanPath: sp,
		VialPath: vp,
		Config:   baseConfig(dir),
		Surface:  surface,
		Out:      &out,
		Logger:   zaptest.NewLogger(t),
		Now:      fixedNow,
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "out", "CDDupload_input_file_20260307.csv"), res.OutputPath)
	assert.Equal(t, 1, res.Rows)
	assert.Positive(t, res.OutputSize)
	assert.Equal(t, []string{"VIAL_QR_CODE: B1"}, surface.titles)

	got := readOutput(t, res.OutputPath)
	require.Equal(t, 1, got.Len())
	assert.Equal(t, "A1", got.Value(0, types.ColPlateWell))
	assert.Equal(t, "CCO", got.Value(0, types.ColSmiles))

	assert.Equal(t,
		"\nVIAL_QR_CODE: B1, SYNONYMS: ethanol, SMILES: CCO\n"+
			"Output file saved to: "+res.OutputPath+"\n",
		out.String())
}

func TestRunWritesImagesWithBuiltinBackend(t *testing.T) {
	sp, vp, dir := writeInputs(t, scanCSV, vialCSV)
	cfg := baseConfig(dir)
	cfg.Visualize.Width, cfg.Visualize.Height = 120, 120

	res, err := Run(context.Background(), Options{ScanPath: sp, VialPath: vp, Config: cfg, Now: fixedNow})
	require.NoError(t, err)
	require.Len(t, res.Images, 1)
	assert.Equal(t, filepath.Join(dir, "structures", "VIAL_QR_CODE_B1.png"), res.Images[0])
	assert.FileExists(t, res.Images[0])
}

func TestRunStopsBeforeSaving(t *testing.T) {
	tests := []struct {
		name  string
		scan  string
		vial  string
		check func(t *testing.T, err error)
	}{
		{
			name: "unmatched vial",
			scan: scanCSV,
			vial: vialCSV + "ZZ,ghost,C,1,1,\n",
			check: func(t *testing.T, err error) {
				var ue *merge.UnmatchedVialError
				require.ErrorAs(t, err, &ue)
				assert.Equal(t, []string{"ZZ"}, ue.Codes)
			},
		},
		{
			name: "missing columns",
			scan: "Barcode\nB1\n",
			vial: vialCSV,
			check: func(t *testing.T, err error) {
				var se *merge.SchemaError
				require.ErrorAs(t, err, &se)
				assert.NotEmpty(t, se.Missing1)
				assert.Empty(t, se.Missing2)
			},
		},
		{
			name: "empty vial file",
			scan: scanCSV,
			vial: "VIAL_QR_CODE,SYNONYMS,SMILES,INITIAL_VOLUME_UL,CONC_mM,SALT\n",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, load.ErrEmptyInput)
			},
		},
		{
			name: "invalid smiles",
			scan: scanCSV,
			vial: "VIAL_QR_CODE,SYNONYMS,SMILES,INITIAL_VOLUME_UL,CONC_mM,SALT\nB1,broken,C1CC,1,1,\n",
			check: func(t *testing.T, err error) {
				var ie *visualize.InvalidSmilesError
				require.ErrorAs(t, err, &ie)
				assert.Equal(t, "B1", ie.Code)
			},
		},
		{
			name: "over-bonded carbon",
			scan: scanCSV,
			vial: "VIAL_QR_CODE,SYNONYMS,SMILES,INITIAL_VOLUME_UL,CONC_mM,SALT\nB1,neopentyl,C(C)(C)(C)(C)C,1,1,\n",
			check: func(t *testing.T, err error) {
				var ie *visualize.InvalidSmilesError
				require.ErrorAs(t, err, &ie)
				assert.Equal(t, "C(C)(C)(C)(C)C", ie.Smiles)
				var ce *smiles.ChemistryError
				assert.ErrorAs(t, err, &ce)
			},
		},
		{
			name: "non-kekulizable ring",
			scan: scanCSV,
			vial: "VIAL_QR_CODE,SYNONYMS,SMILES,INITIAL_VOLUME_UL,CONC_mM,SALT\nB1,cyclopentadienyl,c1cccc1,1,1,\n",
			check: func(t *testing.T, err error) {
				var ie *visualize.InvalidSmilesError
				require.ErrorAs(t, err, &ie)
				assert.ErrorContains(t, err, "can't kekulize")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sp, vp, dir := writeInputs(t, tt.scan, tt.vial)
			cfg := baseConfig(dir)
			var out bytes.Buffer

			_, err := Run(context.Background(), Options{
				ScanPath: sp, VialPath: vp, Config: cfg,
				Depicter: &depict.Builtin{Width: 80, Height: 80},
				Surface:  visualize.Discard,
				Out:      &out,
				Now:      fixedNow,
			})
			tt.check(t, err)
			assert.NoDirExists(t, cfg.Output.Dir)
			assert.NotContains(t, out.String(), "Output file saved to")
		})
	}
}

func TestRunMissingInput(t *testing.T) {
	sp, _, dir := writeInputs(t, scanCSV, vialCSV)
	_, err := Run(context.Background(), Options{
		ScanPath: sp,
		VialPath: filepath.Join(dir, "absent.csv"),
		Config:   baseConfig(dir),
		Now:      fixedNow,
	})
	assert.ErrorIs(t, err, load.ErrFileNotFound)
}

func TestRunNoImages(t *testing.T) {
	sp, vp, dir := writeInputs(t, scanCSV, vialCSV)
	cfg := baseConfig(dir)
	cfg.Visualize.Enabled = false
	var out bytes.Buffer

	res, err := Run(context.Background(), Options{ScanPath: sp, VialPath: vp, Config: cfg, Out: &out, Now: fixedNow})
	require.NoError(t, err)
	assert.Empty(t, res.Images)
	assert.NoDirExists(t, cfg.Visualize.ImagesDir)
	assert.False(t, strings.Contains(out.String(), "VIAL_QR_CODE:"))
}

func TestRunPublishAndHistory(t *testing.T) {
	sp, vp, dir := writeInputs(t, scanCSV, vialCSV)
	cfg := baseConfig(dir)
	cfg.Publish = types.PublishConfig{Driver: types.PublishFilesystem, Root: filepath.Join(dir, "bucket"), Prefix: "cdd"}
	cfg.History.Enabled = true
	var out bytes.Buffer

	res, err := Run(context.Background(), Options{
		ScanPath: sp, VialPath: vp, Config: cfg,
		Surface: visualize.Discard,
		Out:     &out,
		Logger:  zaptest.NewLogger(t),
		Now:     fixedNow,
	})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "bucket", "cdd", "CDDupload_input_file_20260307.csv"))
	assert.True(t, strings.HasPrefix(res.PublishedURL, "file://"))
	assert.Contains(t, out.String(), "Output file published to: "+res.PublishedURL)
	require.NotEmpty(t, res.RunID)

	store, err := history.Open(cfg.History)
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.Runs(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, res.RunID, runs[0].ID)
	assert.Equal(t, res.OutputPath, runs[0].OutputPath)
	assert.Equal(t, res.PublishedURL, runs[0].PublishedURL)
	assert.Equal(t, 1, runs[0].Rows)
}

func TestRunPublishFailureKeepsOutput(t *testing.T) {
	sp, vp, dir := writeInputs(t, scanCSV, vialCSV)
	cfg := baseConfig(dir)
	cfg.Visualize.Enabled = false
	cfg.Publish = types.PublishConfig{Driver: types.PublishFilesystem, Root: filepath.Join(dir, "bucket")}
	opts := Options{ScanPath: sp, VialPath: vp, Config: cfg, Now: fixedNow}

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	res, err := Run(context.Background(), opts)
	assert.ErrorContains(t, err, "already exists")
	assert.FileExists(t, res.OutputPath)
}

func TestRunLogsDroppedScans(t *testing.T) {
	scan := "Container Id,Orientation Barcode,Row,Column,Barcode,Scan Time\n" +
		"P1,O1,A,1,B1,t\n" +
		"P1,O1,A,2,B1,t\n" +
		"P1,O1,A,3,B9,t\n"
	vial := "VIAL_QR_CODE,SYNONYMS,SMILES,INITIAL_VOLUME_UL,CONC_mM,SALT\n" +
		"B1,ethanol,CCO,100,10,\n" +
		"B1,ethanol lot 2,CCO,100,10,\n"
	sp, vp, dir := writeInputs(t, scan, vial)
	cfg := baseConfig(dir)
	cfg.Visualize.Enabled = false
	core, logs := observer.New(zapcore.InfoLevel)

	res, err := Run(context.Background(), Options{
		ScanPath: sp, VialPath: vp, Config: cfg,
		Logger: zap.New(core),
		Now:    fixedNow,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Rows)

	entries := logs.FilterMessage("merged").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, 4, fields["rows"])
	assert.EqualValues(t, 1, fields["dropped_scans"])
}
