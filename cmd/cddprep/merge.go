// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/cddprep/internal/pipeline"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <input_file_1> <input_file_2>",
	Short: "Merge a plate scan with the vial registry and write the upload file",
	Long: `Merge loads input_file_1 (the plate scan: Container Id, Orientation
Barcode, Row, Column, Barcode, Scan Time) and input_file_2 (the vial registry:
VIAL_QR_CODE, SYNONYMS, SMILES, INITIAL_VOLUME_UL, CONC_mM, SALT), keeps the
scanned vials, adds PLATE_WELL, draws each structure, and writes
CDDupload_input_file_<YYYYMMDD>.csv.

Any vial code without a matching scan barcode stops the run before the file
is written.`,
	Args: cobra.ExactArgs(2),
	RunE: runMerge,
}

func runMerge(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if noImages, _ := cmd.Flags().GetBool("no-images"); noImages {
		cfg.Visualize.Enabled = false
	}

	_, err = pipeline.Run(cmd.Context(), pipeline.Options{
		ScanPath: args[0],
		VialPath: args[1],
		Config:   cfg,
		Secrets:  loadedSecrets,
		Out:      os.Stdout,
		Logger:   logger,
	})
	return err
}

func init() {
	mergeCmd.Flags().String("output-dir", ".", "directory for the upload file")
	mergeCmd.Flags().String("images-dir", "structures", "directory for structure images")
	mergeCmd.Flags().String("backend", "builtin", "structure renderer: builtin or container")
	mergeCmd.Flags().Bool("no-images", false, "skip structure rendering")
	mergeCmd.Flags().String("publish", "", "upload the file after saving: fs or s3")
	mergeCmd.Flags().Bool("history", false, "record the run in the history ledger")

	for key, flag := range map[string]string{
		"output.dir":           "output-dir",
		"visualize.images_dir": "images-dir",
		"visualize.backend":    "backend",
		"publish.driver":       "publish",
		"history.enabled":      "history",
	} {
		_ = viper.BindPFlag(key, mergeCmd.Flags().Lookup(flag))
	}

	rootCmd.AddCommand(mergeCmd)
}
