// Package mmp implements the mean-maximal-power curve: the best average
// power a session (or a set of sessions) sustained for each of a standard
// set of durations.
package mmp

import (
	"sort"

	"trainload/internal/power"
	"trainload/internal/scalar"
	"trainload/internal/workout"
)

// StandardDurations is the closed set of anchor durations, in seconds, per
// §4.I. Callers needing a custom set should build their own Curve via
// ForDurations.
var StandardDurations = []int{1, 5, 10, 15, 30, 60, 120, 300, 600, 1200, 1800, 3600, 5400, 7200}

// Curve is the best sustained power for each duration in Durations, indexed
// in parallel order (Curve.Watts[i] corresponds to Curve.Durations[i]).
type Curve struct {
	Durations []int
	Watts     []scalar.D
}

// ForWorkout computes the curve for a single session over the standard
// duration set.
func ForWorkout(w *workout.Workout) Curve {
	return ForDurations(w, StandardDurations)
}

// ForDurations computes the curve for a single session over an explicit,
// caller-supplied duration set (ascending order is not required).
func ForDurations(w *workout.Workout, durations []int) Curve {
	series := make([]float64, 0, len(w.Samples))
	for _, s := range w.Samples {
		if s.Power != nil {
			series = append(series, float64(*s.Power))
		} else {
			series = append(series, 0)
		}
	}

	c := Curve{Durations: append([]int(nil), durations...), Watts: make([]scalar.D, len(durations))}
	for i, d := range c.Durations {
		c.Watts[i] = scalar.FromFloat(power.BestRollingAverage(series, d), 1)
	}
	return c
}

// Merge folds other into c, keeping the per-duration maximum across both
// curves (cross-session aggregation per §4.I). Both curves must share the
// same Durations slice contents; mismatched durations are ignored.
func (c Curve) Merge(other Curve) Curve {
	idx := make(map[int]int, len(c.Durations))
	for i, d := range c.Durations {
		idx[d] = i
	}
	out := Curve{Durations: append([]int(nil), c.Durations...), Watts: append([]scalar.D(nil), c.Watts...)}
	for i, d := range other.Durations {
		j, ok := idx[d]
		if !ok {
			continue
		}
		if other.Watts[i].GreaterThan(out.Watts[j]) {
			out.Watts[j] = other.Watts[i]
		}
	}
	return out
}

// MergeAll aggregates a set of per-session curves into one best-ever curve.
// Panics never occur on an empty input; it returns a zero-valued Curve for
// the given duration set instead.
func MergeAll(durations []int, curves []Curve) Curve {
	out := Curve{Durations: append([]int(nil), durations...), Watts: make([]scalar.D, len(durations))}
	for _, c := range curves {
		out = out.Merge(c)
	}
	return out
}

// At returns the watts value for the given duration and true if that
// duration is present in the curve.
func (c Curve) At(durationS int) (scalar.D, bool) {
	for i, d := range c.Durations {
		if d == durationS {
			return c.Watts[i], true
		}
	}
	return scalar.Zero, false
}

// IsWeaklyDecreasing reports whether watts is non-increasing as duration
// grows, per invariant 5 in §8 (a longer best-effort can never exceed a
// shorter one drawn from the same data).
func (c Curve) IsWeaklyDecreasing() bool {
	type pair struct {
		d int
		w scalar.D
	}
	pairs := make([]pair, len(c.Durations))
	for i := range c.Durations {
		pairs[i] = pair{c.Durations[i], c.Watts[i]}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].d < pairs[j].d })
	for i := 1; i < len(pairs); i++ {
		if pairs[i].w.GreaterThan(pairs[i-1].w) {
			return false
		}
	}
	return true
}
