package aggregate

import (
	"testing"
	"time"

	"trainload/internal/scalar"
	"trainload/internal/workout"
)

func TestInvariant9ScaledTotalEqualsSumOfContributions(t *testing.T) {
	factors := workout.DefaultSportScaleFactors()
	loads := []SessionLoad{
		{Date: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), Sport: workout.SportCycling, TSS: scalar.FromInt(100)},
		{Date: time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC), Sport: workout.SportRunning, TSS: scalar.FromInt(80)},
		{Date: time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC), Sport: workout.SportSwimming, TSS: scalar.FromInt(60)},
	}

	contribs := Scale(loads, factors)
	total := Total(contribs)

	want := scalar.Zero
	for _, c := range contribs {
		want = want.Add(c.ScaledTSS)
	}
	if total.Cmp(want) != 0 {
		t.Fatalf("total must equal the exact sum of scaled contributions: got %s want %s", total, want)
	}

	// Running's 1.3x factor on 80 TSS should equal 104 exactly.
	runScaled := contribs[1].ScaledTSS
	if runScaled.Cmp(scalar.MustNew("104.0")) != 0 {
		t.Fatalf("expected running contribution scaled to 104, got %s", runScaled)
	}
}

func TestWeeklyRollupBucketsByISOWeek(t *testing.T) {
	factors := workout.DefaultSportScaleFactors()
	loads := []SessionLoad{
		{Date: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), Sport: workout.SportCycling, TSS: scalar.FromInt(50)},  // Monday
		{Date: time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC), Sport: workout.SportCycling, TSS: scalar.FromInt(50)}, // Sunday, same week
		{Date: time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC), Sport: workout.SportCycling, TSS: scalar.FromInt(50)}, // next Monday
	}
	contribs := Scale(loads, factors)
	weeks := Weekly(contribs)
	if len(weeks) != 2 {
		t.Fatalf("expected 2 weekly buckets, got %d", len(weeks))
	}
	if weeks[0].ScaledTotal.Cmp(scalar.MustNew("100.0")) != 0 {
		t.Fatalf("expected first week total 100, got %s", weeks[0].ScaledTotal)
	}
}

func TestMonthlyRollupBucketsByCalendarMonth(t *testing.T) {
	factors := workout.DefaultSportScaleFactors()
	loads := []SessionLoad{
		{Date: time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), Sport: workout.SportCycling, TSS: scalar.FromInt(50)},
		{Date: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), Sport: workout.SportCycling, TSS: scalar.FromInt(50)},
	}
	contribs := Scale(loads, factors)
	months := Monthly(contribs)
	if len(months) != 2 {
		t.Fatalf("expected 2 monthly buckets, got %d", len(months))
	}
}
