package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"trainload/internal/aggregate"
	"trainload/internal/export"
	"trainload/internal/pmc"
	"trainload/internal/power"
	"trainload/internal/scalar"
	"trainload/internal/store"
	"trainload/internal/workout"
)

func newPMCCmd() *cobra.Command {
	var athleteID string
	var glob string
	var save bool
	var exportJSON string

	cmd := &cobra.Command{
		Use:   "pmc <dir>",
		Short: "Build a performance management chart from every FIT file in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := filepath.Glob(filepath.Join(args[0], glob))
			if err != nil {
				return fmt.Errorf("globbing %s: %w", args[0], err)
			}
			if len(paths) == 0 {
				return fmt.Errorf("no files matched %s in %s", glob, args[0])
			}

			var ftp *scalar.D
			if cfg.FTPWatts > 0 {
				v := scalar.FromFloat(cfg.FTPWatts, 2)
				ftp = &v
			}

			var loads []aggregate.SessionLoad
			for _, p := range paths {
				w, _, err := decodeFile(p, false)
				if err != nil {
					fmt.Printf("skipping %s: %v\n", p, err)
					continue
				}
				if w.Date.IsZero() {
					continue
				}
				res := power.Compute(w, power.Inputs{FTP: ftp})
				loads = append(loads, aggregate.SessionLoad{Date: w.Date, Sport: w.Sport, TSS: res.TSS})
			}

			contributions := aggregate.Scale(loads, workout.DefaultSportScaleFactors())
			daily := make([]pmc.DailyStress, len(contributions))
			for i, c := range contributions {
				daily[i] = pmc.DailyStress{Date: c.Date, Stress: c.ScaledTSS}
			}
			sort.Slice(daily, func(i, j int) bool { return daily[i].Date.Before(daily[j].Date) })

			points := pmc.Compute(daily, pmc.Seed{})
			if len(points) == 0 {
				return fmt.Errorf("no sessions with a valid date were found")
			}

			ctl := make([]float64, len(points))
			atl := make([]float64, len(points))
			for i, p := range points {
				ctl[i] = p.CTL.Float64()
				atl[i] = p.ATL.Float64()
			}

			fmt.Println(asciigraph.PlotMany([][]float64{ctl, atl},
				asciigraph.Height(12),
				asciigraph.Width(60),
				asciigraph.Precision(1),
				asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red),
				asciigraph.Caption("CTL (blue) vs ATL (red)")))

			last := points[len(points)-1]
			fmt.Printf("\nlatest (%s): CTL %s | ATL %s | TSB %s\n",
				last.Date.Format("2006-01-02"), last.CTL, last.ATL, last.TSB)

			if exportJSON != "" {
				if err := export.WritePMCSeriesJSON(exportJSON, points); err != nil {
					return fmt.Errorf("writing PMC series JSON: %w", err)
				}
				fmt.Printf("wrote %d points to %s\n", len(points), exportJSON)
			}

			if save {
				db, err := store.Open("")
				if err != nil {
					return fmt.Errorf("opening store: %w", err)
				}
				defer db.Close()
				ctx := context.Background()
				if err := db.EnsureAthlete(ctx, athleteID); err != nil {
					return fmt.Errorf("ensuring athlete: %w", err)
				}
				if err := db.SavePMCSeries(ctx, athleteID, points); err != nil {
					return fmt.Errorf("saving PMC series: %w", err)
				}
				fmt.Printf("saved %d points for athlete %q\n", len(points), athleteID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&athleteID, "athlete", "default", "athlete id for persisted series")
	cmd.Flags().StringVar(&glob, "glob", "*.fit", "file pattern to match within the directory")
	cmd.Flags().BoolVar(&save, "save", false, "persist the computed series to the local SQLite store")
	cmd.Flags().StringVar(&exportJSON, "export-json", "", "write the computed PMC series to this path as JSON")
	return cmd
}
