package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"trainload/internal/batch"
	"trainload/internal/devfields"
	"trainload/internal/fitdecode"
	"trainload/internal/mmp"
	"trainload/internal/quirks"
	"trainload/internal/validate"
	"trainload/internal/workout"
)

func newBatchCmd() *cobra.Command {
	var glob string
	var workers int

	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Decode every matching file in a directory concurrently and print the aggregate MMP curve",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := filepath.Glob(filepath.Join(args[0], glob))
			if err != nil {
				return fmt.Errorf("globbing %s: %w", args[0], err)
			}
			if len(paths) == 0 {
				return fmt.Errorf("no files matched %s in %s", glob, args[0])
			}

			n := workers
			if n <= 0 {
				n = cfg.Workers
			}

			jobs := make([]batch.DecodeJob, len(paths))
			for i, p := range paths {
				jobs[i] = batch.DecodeJob{Path: p}
			}

			results, err := batch.DecodeAll(context.Background(), jobs, n, func(path string) (*fitdecode.Result, error) {
				f, err := os.Open(path)
				if err != nil {
					return nil, err
				}
				defer f.Close()
				return fitdecode.Decode(f, fitdecode.Options{})
			})
			if err != nil {
				return fmt.Errorf("batch decode: %w", err)
			}

			reg := devfields.New()
			if cfg.DevFieldCatalog != "" {
				if err := reg.LoadFile(cfg.DevFieldCatalog); err != nil {
					return fmt.Errorf("loading developer-field catalog: %w", err)
				}
			}
			var qreg *quirks.Registry
			if cfg.QuirkCatalog != "" {
				qreg, err = quirks.LoadFile(cfg.QuirkCatalog)
				if err != nil {
					return fmt.Errorf("loading device-quirk catalog: %w", err)
				}
			}

			var sessions []*workout.Workout
			for _, r := range results {
				if r.Err != nil {
					fmt.Printf("skipping %s: %v\n", r.Path, r.Err)
					continue
				}
				w := workout.FromFITMessagesWithRegistry(r.Result, reg)
				w.SortSamples()
				if qreg != nil {
					qreg.Apply(w)
				}
				if _, err := validate.Validate(w, validate.DefaultTable(), validate.ModeFlag); err != nil {
					fmt.Printf("skipping %s: %v\n", r.Path, err)
					continue
				}
				sessions = append(sessions, w)
			}
			fmt.Printf("decoded %d/%d files successfully\n", len(sessions), len(paths))

			curve, err := batch.MMPFanIn(context.Background(), sessions, n, mmp.StandardDurations)
			if err != nil {
				return fmt.Errorf("computing aggregate MMP curve: %w", err)
			}

			fmt.Printf("%-10s %10s\n", "duration", "watts")
			for i, d := range curve.Durations {
				fmt.Printf("%-10d %10s\n", d, curve.Watts[i])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&glob, "glob", "*.fit", "file pattern to match within the directory")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker pool size (default: config workers)")
	return cmd
}
