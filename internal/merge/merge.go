// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge validates the scan and vial tables and joins them on
// Barcode = VIAL_QR_CODE, rejecting vials that match no scan.
package merge

import (
	"fmt"
	"strings"

	"github.com/pdiddy/cddprep/internal/table"
	"github.com/pdiddy/cddprep/pkg/types"
)

// SchemaError lists the required columns each input lacks, and the required
// columns of either input that the other input also carries. A shared name
// would be suffixed by the join and could no longer be found.
type SchemaError struct {
	Missing1  []string // input file 1 (scan)
	Missing2  []string // input file 2 (vial)
	Conflicts []string
}

func (e *SchemaError) Error() string {
	var parts []string
	if len(e.Missing1) > 0 {
		parts = append(parts, fmt.Sprintf("input file 1 is missing the following required columns: %s", quoteList(e.Missing1)))
	}
	if len(e.Missing2) > 0 {
		parts = append(parts, fmt.Sprintf("input file 2 is missing the following required columns: %s", quoteList(e.Missing2)))
	}
	if len(e.Conflicts) > 0 {
		parts = append(parts, fmt.Sprintf("the following required columns appear in both input files: %s", quoteList(e.Conflicts)))
	}
	return strings.Join(parts, "; ")
}

// UnmatchedVialError lists VIAL_QR_CODE values that match no Barcode, in
// the order they appear in the vial table.
type UnmatchedVialError struct {
	Codes []string
}

func (e *UnmatchedVialError) Error() string {
	return fmt.Sprintf("mismatch found: the following %s values in input file 2 did not match any %s in input file 1:\n%s\nplease double check these %s values",
		types.ColVialQRCode, types.ColBarcode, strings.Join(e.Codes, ", "), types.ColVialQRCode)
}

// Validate checks that scan and vial carry their required columns. Extra
// columns are allowed unless they reuse a required column name of the other
// input.
func Validate(scan, vial *table.Table) error {
	e := &SchemaError{
		Missing1: scan.Missing(types.ScanColumns...),
		Missing2: vial.Missing(types.VialColumns...),
	}
	for _, c := range types.ScanColumns {
		if vial.Has(c) {
			e.Conflicts = append(e.Conflicts, c)
		}
	}
	for _, c := range types.VialColumns {
		if scan.Has(c) {
			e.Conflicts = append(e.Conflicts, c)
		}
	}
	if len(e.Missing1) > 0 || len(e.Missing2) > 0 || len(e.Conflicts) > 0 {
		return e
	}
	return nil
}

// Merge joins scan and vial on Barcode = VIAL_QR_CODE and appends
// PLATE_WELL (Row followed by Column). Scans without a vial are dropped;
// vials without a scan fail the merge with *UnmatchedVialError.
// The inputs are not modified.
func Merge(scan, vial *table.Table) (*table.Table, error) {
	if err := Validate(scan, vial); err != nil {
		return nil, err
	}

	joined, err := OuterJoin(scan, vial, types.ColBarcode, types.ColVialQRCode)
	if err != nil {
		return nil, fmt.Errorf("joining inputs: %w", err)
	}

	if unmatched := joined.Filter(RightOnly); unmatched.Len() > 0 {
		return nil, &UnmatchedVialError{Codes: unmatched.Column(types.ColVialQRCode)}
	}

	merged := joined.Filter(Both)
	wells := make([]string, merged.Len())
	for i := range wells {
		scan := types.ScanRecordAt(merged, i)
		wells[i] = scan.Row + scan.Column
	}
	if err := merged.SetColumn(types.ColPlateWell, wells); err != nil {
		return nil, fmt.Errorf("deriving %s: %w", types.ColPlateWell, err)
	}
	return merged, nil
}

// DroppedScans counts the scan rows whose Barcode matches no VIAL_QR_CODE.
// Merge drops these rows without error.
func DroppedScans(scan, vial *table.Table) int {
	codes := make(map[string]bool, vial.Len())
	for _, c := range vial.Column(types.ColVialQRCode) {
		codes[c] = true
	}
	n := 0
	for _, b := range scan.Column(types.ColBarcode) {
		if !codes[b] {
			n++
		}
	}
	return n
}

func quoteList(names []string) string {
	q := make([]string, len(names))
	for i, n := range names {
		q[i] = fmt.Sprintf("%q", n)
	}
	return "[" + strings.Join(q, ", ") + "]"
}
