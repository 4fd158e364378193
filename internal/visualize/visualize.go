// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package visualize renders one structure image per merged row and prints the
// identification line for each compound.
package visualize

import (
	"context"
	"fmt"
	"image"
	"io"

	"go.uber.org/zap"

	"github.com/pdiddy/cddprep/internal/depict"
	"github.com/pdiddy/cddprep/internal/table"
	"github.com/pdiddy/cddprep/pkg/types"
)

// InvalidSmilesError reports a SMILES string the depicter could not render.
type InvalidSmilesError struct {
	Code   string
	Smiles string
	Err    error
}

func (e *InvalidSmilesError) Error() string {
	return fmt.Sprintf("invalid SMILES string for VIAL_QR_CODE %s: %q: %v", e.Code, e.Smiles, e.Err)
}

func (e *InvalidSmilesError) Unwrap() error { return e.Err }

// Surface receives rendered structures.
type Surface interface {
	Show(title string, img image.Image) error
}

type discard struct{}

func (discard) Show(string, image.Image) error { return nil }

// Discard accepts and drops every image.
var Discard Surface = discard{}

// Title returns the caption used for a vial's structure.
func Title(code string) string {
	return "VIAL_QR_CODE: " + code
}

type rendered struct {
	code, synonyms, smiles string
	img                    image.Image
}

// Visualize renders every row of merged through d before showing anything,
// so an invalid SMILES anywhere aborts the stage with no output. It then
// writes one identification line per row to w and hands the image to s.
func Visualize(ctx context.Context, merged *table.Table, d depict.Depicter, s Surface, w io.Writer, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	out := make([]rendered, 0, merged.Len())
	for i := 0; i < merged.Len(); i++ {
		v := types.VialRecordAt(merged, i)
		r := rendered{code: v.VialQRCode, synonyms: v.Synonyms, smiles: v.Smiles}
		img, err := d.Depict(ctx, r.smiles, Title(r.code))
		if err != nil {
			return &InvalidSmilesError{Code: r.code, Smiles: r.smiles, Err: err}
		}
		logger.Debug("rendered structure", zap.String("vial", r.code), zap.String("smiles", r.smiles))
		r.img = img
		out = append(out, r)
	}

	for _, r := range out {
		fmt.Fprintf(w, "\nVIAL_QR_CODE: %s, SYNONYMS: %s, SMILES: %s\n", r.code, r.synonyms, r.smiles)
		if err := s.Show(Title(r.code), r.img); err != nil {
			return fmt.Errorf("showing structure for %s: %w", r.code, err)
		}
	}
	return nil
}
