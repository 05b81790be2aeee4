// Package pmc implements the Performance Management Chart engine: daily
// chronic/acute training load and stress balance as an ordered, idempotent
// exponentially-weighted series.
package pmc

import (
	"sort"
	"time"

	"trainload/internal/scalar"
)

// TauCTL and TauATL are the time constants fixed by §4.H.
const (
	TauCTL = 42
	TauATL = 7
)

// DailyStress is one day's total stress input (already multi-sport scaled
// per §4.L before reaching this package).
type DailyStress struct {
	Date   time.Time // truncated to day
	Stress scalar.D
}

// Point is one day's CTL/ATL/TSB output.
type Point struct {
	Date time.Time
	CTL  scalar.D
	ATL  scalar.D
	TSB  scalar.D
}

// Seed supplies CTL/ATL values in effect the day before the first day of a
// resumed historical computation.
type Seed struct {
	CTL scalar.D
	ATL scalar.D
}

// Compute builds the daily series for every calendar day spanned by
// dailyStress (filling gaps with zero stress), per §4.H's recurrence:
//
//	CTL[d] = CTL[d-1] + (stress[d] - CTL[d-1]) / TauCTL
//	ATL[d] = ATL[d-1] + (stress[d] - ATL[d-1]) / TauATL
//	TSB[d] = CTL[d-1] - ATL[d-1]
//
// Output is chronologically sorted with no gaps and is idempotent: the same
// input always yields a bit-identical series (invariant 4 in §8).
func Compute(dailyStress []DailyStress, seed Seed) []Point {
	if len(dailyStress) == 0 {
		return nil
	}

	byDay := make(map[string]scalar.D)
	for _, ds := range dailyStress {
		key := dayKey(ds.Date)
		byDay[key] = byDay[key].Add(ds.Stress)
	}

	start := truncateDay(dailyStress[0].Date)
	end := truncateDay(dailyStress[0].Date)
	for _, ds := range dailyStress {
		d := truncateDay(ds.Date)
		if d.Before(start) {
			start = d
		}
		if d.After(end) {
			end = d
		}
	}

	var points []Point
	ctlPrev, atlPrev := seed.CTL, seed.ATL
	tauCTL := scalar.FromInt(TauCTL)
	tauATL := scalar.FromInt(TauATL)

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		stress := byDay[dayKey(d)] // zero value if absent, matching §4.H seeding

		tsb := ctlPrev.Sub(atlPrev)

		ctlDelta, _ := stress.Sub(ctlPrev).Div(tauCTL, 6)
		atlDelta, _ := stress.Sub(atlPrev).Div(tauATL, 6)
		ctl := ctlPrev.Add(ctlDelta).Round(4)
		atl := atlPrev.Add(atlDelta).Round(4)

		points = append(points, Point{Date: d, CTL: ctl, ATL: atl, TSB: tsb.Round(4)})

		ctlPrev, atlPrev = ctl, atl
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayKey(t time.Time) string {
	return truncateDay(t).Format("2006-01-02")
}
