package power

import (
	"testing"

	"trainload/internal/scalar"
	"trainload/internal/workout"
)

func powerPtr(v int32) *int32 { return &v }

func constantPowerWorkout(watts int32, seconds int) *workout.Workout {
	w := workout.New(workout.SportCycling)
	w.DurationS = uint32(seconds)
	for i := 0; i < seconds; i++ {
		w.Samples = append(w.Samples, workout.DataPoint{T: uint32(i), Power: powerPtr(watts)})
	}
	return w
}

func TestScenarioS1ConstantPower(t *testing.T) {
	w := constantPowerWorkout(200, 3600)
	ftp := scalar.MustNew("250")

	res := Compute(w, Inputs{FTP: &ftp})

	if res.Path != PathPower {
		t.Fatalf("expected power path, got %s", res.Path)
	}
	if res.NP.Cmp(scalar.FromInt(200)) != 0 {
		t.Fatalf("expected NP=200, got %s", res.NP)
	}
	if res.IF.Cmp(scalar.MustNew("0.8")) != 0 {
		t.Fatalf("expected IF=0.80, got %s", res.IF)
	}
	if res.TSS.Cmp(scalar.MustNew("64.00")) != 0 {
		t.Fatalf("expected TSS=64.00, got %s", res.TSS)
	}
}

func TestScenarioS2Intervals(t *testing.T) {
	w := workout.New(workout.SportCycling)
	w.DurationS = 3600
	for min := 0; min < 60; min++ {
		watts := int32(300)
		if min%2 == 1 {
			watts = 100
		}
		for s := 0; s < 60; s++ {
			w.Samples = append(w.Samples, workout.DataPoint{T: uint32(min*60 + s), Power: powerPtr(watts)})
		}
	}
	ftp := scalar.MustNew("250")

	res := Compute(w, Inputs{FTP: &ftp})

	if res.NP.LessThan(scalar.FromInt(200)) {
		t.Fatalf("NP should exceed the 200W average, got %s", res.NP)
	}
	ifFloat := res.IF.Float64()
	if ifFloat < 0.9 || ifFloat > 1.05 {
		t.Fatalf("expected IF roughly 0.98, got %v", ifFloat)
	}
}

func TestInvariantNPWithinMeanAndMax(t *testing.T) {
	w := workout.New(workout.SportCycling)
	w.DurationS = 120
	watts := []int32{100, 400, 150, 350, 120, 380}
	for i := 0; i < 60; i++ {
		for _, wt := range watts {
			w.Samples = append(w.Samples, workout.DataPoint{T: uint32(len(w.Samples)), Power: powerPtr(wt)})
		}
	}
	series := powerSeries(w)
	np := NormalizedPower(series, DefaultWindow)

	var sum, max float64
	for _, p := range series {
		sum += p
		if p > max {
			max = p
		}
	}
	meanVal := sum / float64(len(series))

	if np.Float64() > max+0.001 {
		t.Fatalf("NP must not exceed max power: NP=%v max=%v", np.Float64(), max)
	}
	if np.Float64() < meanVal-0.001 {
		t.Fatalf("NP must not be below mean power: NP=%v mean=%v", np.Float64(), meanVal)
	}
}

func TestFallbackToHeartRateWhenPowerCoverageLow(t *testing.T) {
	w := workout.New(workout.SportCycling)
	w.DurationS = 100
	for i := 0; i < 100; i++ {
		hr := int32(150)
		w.Samples = append(w.Samples, workout.DataPoint{T: uint32(i), HR: &hr})
	}
	lthr := scalar.MustNew("160")

	res := Compute(w, Inputs{LTHR: &lthr})

	if res.Path != PathHeartRate {
		t.Fatalf("expected heart-rate path, got %s", res.Path)
	}
}

func TestFallbackToEstimatedWhenNoData(t *testing.T) {
	w := workout.New(workout.SportCycling)
	w.DurationS = 3600

	res := Compute(w, Inputs{})

	if res.Path != PathEstimated {
		t.Fatalf("expected estimated path, got %s", res.Path)
	}
	if !res.LowConfidence {
		t.Fatal("expected low-confidence flag on estimated path")
	}
	if res.TSS.Cmp(scalar.MustNew("50.00")) != 0 {
		t.Fatalf("expected TSS=50.00 for 1hr estimate, got %s", res.TSS)
	}
}
