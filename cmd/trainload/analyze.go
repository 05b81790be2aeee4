package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"trainload/internal/notes"
	"trainload/internal/power"
	"trainload/internal/scalar"
)

func newAnalyzeCmd() *cobra.Command {
	var recovery bool

	cmd := &cobra.Command{
		Use:   "analyze <file.fit>",
		Short: "Decode a session and print its training-load summary and coaching notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, _, err := decodeFile(args[0], recovery)
			if err != nil {
				return err
			}

			in := power.Inputs{}
			if cfg.FTPWatts > 0 {
				ftp := scalar.FromFloat(cfg.FTPWatts, 2)
				in.FTP = &ftp
			}
			if cfg.LTHRBpm > 0 {
				lthr := scalar.FromFloat(cfg.LTHRBpm, 2)
				in.LTHR = &lthr
			}
			if cfg.ThresholdPaceSecM > 0 {
				pace := scalar.FromFloat(cfg.ThresholdPaceSecM, 6)
				in.ThresholdPace = &pace
			}
			if cfg.CriticalSwimSpeed > 0 {
				css := scalar.FromFloat(cfg.CriticalSwimSpeed, 6)
				in.CriticalSwimSpeed = &css
			}

			result := power.Compute(w, in)
			w.Summary.TSS = &result.TSS
			w.Summary.IF = &result.IF
			w.Summary.NP = &result.NP

			fmt.Println(notes.BuildTrainingNotes(w, notes.Input{TSS: &result}))
			return nil
		},
	}
	cmd.Flags().BoolVar(&recovery, "recover", false, "continue past CRC/format errors instead of failing")
	return cmd
}
