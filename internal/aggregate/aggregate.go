// Package aggregate implements the multi-sport TSS scaling aggregator and
// the weekly/monthly rollups built on top of it.
package aggregate

import (
	"time"

	"trainload/internal/scalar"
	"trainload/internal/workout"
)

// SessionLoad is one session's raw (unscaled) TSS contribution, tagged with
// the sport and date needed to scale and bucket it.
type SessionLoad struct {
	Date time.Time
	Sport workout.Sport
	TSS  scalar.D
}

// Contribution is one session's raw and scaled TSS, per §4.L.
type Contribution struct {
	SessionLoad
	ScaledTSS scalar.D
}

// Scale applies the athlete's per-sport scaling factors to each session,
// per §4.L ("A per-sport scaling factor ... multiplies TSS before it enters
// §4.H").
func Scale(loads []SessionLoad, factors workout.SportScaleFactors) []Contribution {
	out := make([]Contribution, len(loads))
	for i, l := range loads {
		factor, ok := factors[l.Sport]
		if !ok {
			factor = scalar.MustNew("1.0")
		}
		out[i] = Contribution{SessionLoad: l, ScaledTSS: l.TSS.Mul(factor)}
	}
	return out
}

// Total sums the scaled TSS across all contributions, exactly in D. Per
// invariant 9 in §8, this must equal the sum of each session's independently
// scaled contribution.
func Total(contribs []Contribution) scalar.D {
	total := scalar.Zero
	for _, c := range contribs {
		total = total.Add(c.ScaledTSS)
	}
	return total
}

// BySport buckets scaled TSS totals per sport.
func BySport(contribs []Contribution) map[workout.Sport]scalar.D {
	out := make(map[workout.Sport]scalar.D)
	for _, c := range contribs {
		out[c.Sport] = out[c.Sport].Add(c.ScaledTSS)
	}
	return out
}

// Rollup is one week's or month's raw/combined TSS totals, per SPEC_FULL.md
// §5's weekly/monthly rollup supplement.
type Rollup struct {
	PeriodStart time.Time
	RawBySport  map[workout.Sport]scalar.D
	ScaledTotal scalar.D
}

// Weekly buckets contributions into ISO-week rollups, keyed by the Monday
// that starts each week (UTC).
func Weekly(contribs []Contribution) []Rollup {
	return bucketBy(contribs, startOfWeek)
}

// Monthly buckets contributions into calendar-month rollups.
func Monthly(contribs []Contribution) []Rollup {
	return bucketBy(contribs, startOfMonth)
}

func bucketBy(contribs []Contribution, periodStart func(time.Time) time.Time) []Rollup {
	index := make(map[time.Time]*Rollup)
	var order []time.Time

	for _, c := range contribs {
		key := periodStart(c.Date)
		r, ok := index[key]
		if !ok {
			r = &Rollup{PeriodStart: key, RawBySport: make(map[workout.Sport]scalar.D)}
			index[key] = r
			order = append(order, key)
		}
		r.RawBySport[c.Sport] = r.RawBySport[c.Sport].Add(c.TSS)
		r.ScaledTotal = r.ScaledTotal.Add(c.ScaledTSS)
	}

	out := make([]Rollup, 0, len(order))
	for _, k := range order {
		out = append(out, *index[k])
	}
	return out
}

func startOfWeek(t time.Time) time.Time {
	d := t.UTC()
	weekday := int(d.Weekday())
	// time.Weekday: Sunday=0; treat Monday as the week start.
	offset := (weekday + 6) % 7
	y, m, day := d.AddDate(0, 0, -offset).Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func startOfMonth(t time.Time) time.Time {
	d := t.UTC()
	y, m, _ := d.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}
