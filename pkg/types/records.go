// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Cells is the read side of a table row source; internal/table satisfies it.
type Cells interface {
	Len() int
	Value(i int, col string) string
}

// ScanRecord is one plate-well scan event from input file 1.
// Barcode is the join key.
type ScanRecord struct {
	ContainerID        string `json:"container_id" yaml:"container_id"`
	OrientationBarcode string `json:"orientation_barcode" yaml:"orientation_barcode"`
	Row                string `json:"row" yaml:"row"`
	Column             string `json:"column" yaml:"column"`
	Barcode            string `json:"barcode" yaml:"barcode"`
	ScanTime           string `json:"scan_time" yaml:"scan_time"`
}

// VialRecord is one registered chemical sample from input file 2.
// VialQRCode is the join key and must equal some ScanRecord.Barcode.
type VialRecord struct {
	VialQRCode      string `json:"vial_qr_code" yaml:"vial_qr_code"`
	Synonyms        string `json:"synonyms" yaml:"synonyms"`
	Smiles          string `json:"smiles" yaml:"smiles"`
	InitialVolumeUL string `json:"initial_volume_ul" yaml:"initial_volume_ul"`
	ConcMM          string `json:"conc_mm" yaml:"conc_mm"`
	Salt            string `json:"salt" yaml:"salt"`
}

// MergedRecord is a scan joined to its vial, plus the derived PlateWell.
type MergedRecord struct {
	ScanRecord `yaml:",inline"`
	VialRecord `yaml:",inline"`

	PlateWell string `json:"plate_well" yaml:"plate_well"`
}

// ScanRecordAt reads row i of a scan table.
func ScanRecordAt(c Cells, i int) ScanRecord {
	return ScanRecord{
		ContainerID:        c.Value(i, ColContainerID),
		OrientationBarcode: c.Value(i, ColOrientationBarcode),
		Row:                c.Value(i, ColRow),
		Column:             c.Value(i, ColColumn),
		Barcode:            c.Value(i, ColBarcode),
		ScanTime:           c.Value(i, ColScanTime),
	}
}

// VialRecordAt reads row i of a vial table.
func VialRecordAt(c Cells, i int) VialRecord {
	return VialRecord{
		VialQRCode:      c.Value(i, ColVialQRCode),
		Synonyms:        c.Value(i, ColSynonyms),
		Smiles:          c.Value(i, ColSmiles),
		InitialVolumeUL: c.Value(i, ColInitialVolumeUL),
		ConcMM:          c.Value(i, ColConcMM),
		Salt:            c.Value(i, ColSalt),
	}
}

// MergedRecordAt reads row i of a merged table.
func MergedRecordAt(c Cells, i int) MergedRecord {
	return MergedRecord{
		ScanRecord: ScanRecordAt(c, i),
		VialRecord: VialRecordAt(c, i),
		PlateWell:  c.Value(i, ColPlateWell),
	}
}
