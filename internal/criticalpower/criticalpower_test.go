package criticalpower

import (
	"math"
	"testing"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestScenarioS5LinearFit(t *testing.T) {
	points := []Point{
		{Seconds: 180, Watts: 350},
		{Seconds: 300, Watts: 320},
		{Seconds: 600, Watts: 290},
		{Seconds: 1200, Watts: 275},
	}
	fit := LinearFit(points)

	if !approxEqual(fit.CP.Float64(), 261, 5) {
		t.Fatalf("expected CP ~= 261W, got %v", fit.CP.Float64())
	}
	if !approxEqual(fit.WPrime.Float64(), 16000, 1500) {
		t.Fatalf("expected W' ~= 16000J, got %v", fit.WPrime.Float64())
	}
	if fit.RSquared < 0.99 {
		t.Fatalf("expected r^2 > 0.99, got %v", fit.RSquared)
	}
	if fit.LowConfidence {
		t.Fatal("a clean fit should not be marked low-confidence")
	}
}

func TestInvariant6LowConfidenceBelowThreshold(t *testing.T) {
	// Noisy, non-monotone points drive r^2 below 0.95 and should trip
	// low-confidence regardless of the sign of CP/W'.
	points := []Point{
		{Seconds: 180, Watts: 200},
		{Seconds: 300, Watts: 340},
		{Seconds: 600, Watts: 150},
		{Seconds: 1200, Watts: 310},
	}
	fit := LinearFit(points)
	if !fit.LowConfidence {
		t.Fatalf("a noisy fit (r^2=%v) must be marked low-confidence", fit.RSquared)
	}
	if fit.RSquared >= 0.95 && (fit.CP.Float64() <= 0 || fit.WPrime.Float64() <= 0) {
		t.Fatal("a fit with r^2 >= 0.95 must have CP > 0 and W' > 0")
	}
}

func TestInvariant7WBalanceBounds(t *testing.T) {
	cp := 261.0
	wPrime := 16000.0
	tau := SkibaTau(cp, 180)

	power := make([]float64, 600)
	for i := range power {
		if i%120 < 30 {
			power[i] = 320 // above CP surge
		} else {
			power[i] = 150 // recovery
		}
	}

	trace := Balance(power, cp, wPrime, tau)
	if trace.Series[0].Float64() != wPrime {
		t.Fatalf("W'_bal[0] must equal W', got %v", trace.Series[0].Float64())
	}
	for i, v := range trace.Series {
		if v.Float64() > wPrime+0.01 {
			t.Fatalf("W'_bal[%d] must never exceed W': got %v", i, v.Float64())
		}
	}
}

func TestTimeToExhaustion(t *testing.T) {
	tte, ok := TimeToExhaustion(16000, 261, 320)
	if !ok {
		t.Fatal("expected a defined time-to-exhaustion above CP")
	}
	want := 16000.0 / (320 - 261)
	if !approxEqual(tte, want, 0.01) {
		t.Fatalf("got %v want %v", tte, want)
	}

	if _, ok := TimeToExhaustion(16000, 261, 250); ok {
		t.Fatal("time-to-exhaustion at or below CP must be undefined")
	}
}
