package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"trainload/internal/scalar"
	"trainload/internal/zones"
)

func newZonesCmd() *cobra.Command {
	var recovery bool

	cmd := &cobra.Command{
		Use:   "zones <file.fit>",
		Short: "Print time-in-zone and zone-weighted stress for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.FTPWatts <= 0 {
				return fmt.Errorf("an FTP is required (set ftp_watts in config or TRAINLOAD_FTP_WATTS)")
			}
			w, _, err := decodeFile(args[0], recovery)
			if err != nil {
				return err
			}

			ftp := scalar.FromFloat(cfg.FTPWatts, 2)
			table := zones.PowerZones(ftp)
			timeInZone := zones.TimeInZone(table, w)
			tssInZone := zones.TSSInZone(table, w, ftp)

			fmt.Printf("%-24s %10s %10s\n", "zone", "seconds", "TSS")
			for i, z := range table {
				fmt.Printf("%-24s %10d %10s\n", z.Name, timeInZone[i], tssInZone[i])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&recovery, "recover", false, "continue past CRC/format errors instead of failing")
	return cmd
}
