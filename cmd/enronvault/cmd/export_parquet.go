package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mprosk/enronvault/internal/export"
)

var exportOut string

var exportParquetCmd = &cobra.Command{
	Use:   "export-parquet",
	Short: "Export the corpus to a Parquet file",
	Long: `Export every message in the corpus database to a Parquet file for
columnar analysis. Dates are stored as UTC timestamps with the original
zone offset in a separate column.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := exportOut
		if out == "" {
			out = filepath.Join(cfg.ExportsDir(), "enron.parquet")
		}

		rows, err := export.WriteParquet(cmd.Context(), cfg.DatabasePath(), out)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %d messages to %s\n", rows, out)
		return nil
	},
}

func init() {
	exportParquetCmd.Flags().StringVar(&exportOut, "out", "", "output path (default <data_dir>/exports/enron.parquet)")
	rootCmd.AddCommand(exportParquetCmd)
}
