package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"trainload/internal/export"
)

func newExportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export <file.fit|file.csv> <out>",
		Short: "Decode a session and write its sample stream to CSV or Parquet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, _, err := decodeFile(args[0], false)
			if err != nil {
				return err
			}

			rows := export.SampleRows(w)
			out := args[1]
			if format == "" {
				format = strings.TrimPrefix(strings.ToLower(filepath.Ext(out)), ".")
			}

			switch format {
			case "csv":
				if err := export.WriteSamplesCSV(out, rows); err != nil {
					return fmt.Errorf("writing CSV: %w", err)
				}
			case "parquet":
				if err := export.WriteSamplesParquet(out, rows); err != nil {
					return fmt.Errorf("writing Parquet: %w", err)
				}
			default:
				return fmt.Errorf("unsupported export format %q (use --format csv|parquet)", format)
			}
			fmt.Printf("wrote %d samples to %s\n", len(rows), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "output format (csv|parquet); inferred from the output extension if omitted")
	return cmd
}
