// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the column contracts, record views, and configuration
// shared by the cddprep pipeline stages.
package types

// Plate-scan export (input file 1) columns.
const (
	ColContainerID        = "Container Id"
	ColOrientationBarcode = "Orientation Barcode"
	ColRow                = "Row"
	ColColumn             = "Column"
	ColBarcode            = "Barcode"
	ColScanTime           = "Scan Time"
)

// Vial-registry export (input file 2) columns.
const (
	ColVialQRCode      = "VIAL_QR_CODE"
	ColSynonyms        = "SYNONYMS"
	ColSmiles          = "SMILES"
	ColInitialVolumeUL = "INITIAL_VOLUME_UL"
	ColConcMM          = "CONC_mM"
	ColSalt            = "SALT"
)

// ColPlateWell is the derived well label appended to the merged table.
const ColPlateWell = "PLATE_WELL"

// ScanColumns lists the columns input file 1 must carry, in report order.
var ScanColumns = []string{
	ColContainerID, ColOrientationBarcode, ColRow, ColColumn, ColBarcode, ColScanTime,
}

// VialColumns lists the columns input file 2 must carry, in report order.
var VialColumns = []string{
	ColVialQRCode, ColSynonyms, ColSmiles, ColInitialVolumeUL, ColConcMM, ColSalt,
}
