package mmp

import (
	"testing"

	"trainload/internal/workout"
)

func powerPtr(v int32) *int32 { return &v }

func rampWorkout() *workout.Workout {
	w := workout.New(workout.SportCycling)
	w.DurationS = 3600
	for i := 0; i < 3600; i++ {
		watts := int32(150)
		if i >= 1000 && i < 1300 {
			watts = 350 // a 5-minute surge
		}
		w.Samples = append(w.Samples, workout.DataPoint{T: uint32(i), Power: powerPtr(watts)})
	}
	return w
}

func TestCurveWeaklyDecreasing(t *testing.T) {
	c := ForWorkout(rampWorkout())
	if !c.IsWeaklyDecreasing() {
		t.Fatal("MMP curve must be weakly decreasing as duration grows (invariant 5)")
	}
}

func TestShortDurationCapturesSurge(t *testing.T) {
	c := ForWorkout(rampWorkout())
	v, ok := c.At(60)
	if !ok {
		t.Fatal("expected a 60s anchor point")
	}
	if v.Float64() < 349 {
		t.Fatalf("expected the 1-minute best to capture the 350W surge, got %v", v.Float64())
	}
}

func TestMergeAllAggregatesAcrossSessions(t *testing.T) {
	w1 := rampWorkout()
	w2 := workout.New(workout.SportCycling)
	w2.DurationS = 600
	for i := 0; i < 600; i++ {
		w2.Samples = append(w2.Samples, workout.DataPoint{T: uint32(i), Power: powerPtr(400)})
	}

	c1 := ForDurations(w1, []int{60, 300})
	c2 := ForDurations(w2, []int{60, 300})
	merged := MergeAll([]int{60, 300}, []Curve{c1, c2})

	v, _ := merged.At(300)
	if v.Float64() < 399 {
		t.Fatalf("expected merged 5-minute best to come from the second session, got %v", v.Float64())
	}
}
