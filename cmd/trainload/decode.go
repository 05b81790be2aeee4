package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"trainload/internal/devfields"
	"trainload/internal/fitdecode"
	"trainload/internal/quirks"
	"trainload/internal/tableinput"
	"trainload/internal/validate"
	"trainload/internal/workout"
)

func newDecodeCmd() *cobra.Command {
	var recovery bool

	cmd := &cobra.Command{
		Use:   "decode <file.fit|file.csv>",
		Short: "Decode a FIT or line-oriented table file and print header, sample, and quality info",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, result, err := decodeFile(args[0], recovery)
			if err != nil {
				return err
			}
			fmt.Printf("sport: %s\n", w.Sport)
			fmt.Printf("duration: %ds\n", w.DurationS)
			fmt.Printf("samples: %d\n", len(w.Samples))
			fmt.Printf("power coverage: %.1f%%\n", w.PowerCoverage()*100)
			fmt.Printf("hr coverage: %.1f%%\n", w.HRCoverage()*100)
			if result != nil {
				fmt.Printf("payload crc valid: %v\n", result.PayloadCRCValid)
				fmt.Printf("degraded: %v\n", result.Degraded)
			}
			if flags := w.QualityFlags.All(); len(flags) > 0 {
				fmt.Printf("quality flags: %v\n", flags)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&recovery, "recover", false, "continue past CRC/format errors instead of failing")
	return cmd
}

// decodeFile runs the full decode -> build -> validate pipeline shared by
// the decode, analyze, zones, pmc, and export subcommands. A ".csv" path is read
// through the line-oriented table format (spec.md §6's secondary external
// interface) instead of the binary FIT decoder; result is nil in that case,
// since there is no FIT header or payload CRC to report.
func decodeFile(path string, recovery bool) (*workout.Workout, *fitdecode.Result, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return decodeTableFile(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	result, err := fitdecode.Decode(f, fitdecode.Options{Recovery: recovery})
	if err != nil {
		return nil, nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	reg := devfields.New()
	if cfg != nil && cfg.DevFieldCatalog != "" {
		if err := reg.LoadFile(cfg.DevFieldCatalog); err != nil {
			return nil, nil, fmt.Errorf("loading developer-field catalog: %w", err)
		}
	}

	w := workout.FromFITMessagesWithRegistry(result, reg)
	w.SortSamples()

	if cfg != nil && cfg.QuirkCatalog != "" {
		qreg, err := quirks.LoadFile(cfg.QuirkCatalog)
		if err != nil {
			return nil, nil, fmt.Errorf("loading device-quirk catalog: %w", err)
		}
		qreg.Apply(w)
	}

	if _, err := validate.Validate(w, validate.DefaultTable(), validate.ModeFlag); err != nil {
		return nil, nil, fmt.Errorf("validating %s: %w", path, err)
	}
	return w, result, nil
}

func decodeTableFile(path string) (*workout.Workout, *fitdecode.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	samples, err := tableinput.Parse(f)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	w := workout.New(workout.SportCycling)
	w.Samples = samples
	w.SortSamples()
	w.DurationS = w.MaxSampleT()
	if _, err := validate.Validate(w, validate.DefaultTable(), validate.ModeFlag); err != nil {
		return nil, nil, fmt.Errorf("validating %s: %w", path, err)
	}
	return w, nil, nil
}

