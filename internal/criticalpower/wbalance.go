package criticalpower

import (
	"math"

	"trainload/internal/scalar"
)

// SkibaTau computes the session's single below-CP recovery time constant,
// per §4.J: τ = 546 · e^{-0.01·(CP − P_avg_below_CP)} + 316.
func SkibaTau(cpWatts, avgBelowCPWatts float64) float64 {
	return 546*math.Exp(-0.01*(cpWatts-avgBelowCPWatts)) + 316
}

// BalanceTrace holds the full per-sample W′-balance series plus the
// session-level summary outputs named in §4.J.
type BalanceTrace struct {
	Series      []scalar.D
	Min         scalar.D
	SecondsBelowZero int
}

// Balance computes the W′-balance trace over a 1 Hz power series, per §4.J's
// differential recurrence. wPrimeJoules and cpWatts come from a CP fit;
// tau is the Skiba time constant for this session (see SkibaTau).
func Balance(powerWatts []float64, cpWatts, wPrimeJoules, tau float64) BalanceTrace {
	n := len(powerWatts)
	if n == 0 {
		return BalanceTrace{}
	}
	series := make([]scalar.D, n)
	wBal := wPrimeJoules
	series[0] = scalar.FromFloat(wBal, 1)

	min := wBal
	belowZero := 0
	if wBal < 0 {
		belowZero++
	}

	for i := 1; i < n; i++ {
		p := powerWatts[i]
		if p > cpWatts {
			wBal = wBal - (p-cpWatts)*1.0 // Δt = 1s under the 1 Hz resample
		} else {
			wBal = wPrimeJoules - (wPrimeJoules-wBal)*math.Exp(-1.0/tau)
		}
		series[i] = scalar.FromFloat(wBal, 1)
		if wBal < min {
			min = wBal
		}
		if wBal < 0 {
			belowZero++
		}
	}

	return BalanceTrace{
		Series:           series,
		Min:              scalar.FromFloat(min, 1),
		SecondsBelowZero: belowZero,
	}
}

// TimeToExhaustion returns t_te = wBalJoules / (targetWatts - cpWatts) and
// true, or (zero, false) when targetWatts <= cpWatts (undefined per §4.J).
func TimeToExhaustion(wBalJoules, cpWatts, targetWatts float64) (float64, bool) {
	if targetWatts <= cpWatts {
		return 0, false
	}
	return wBalJoules / (targetWatts - cpWatts), true
}

// AverageBelowCP returns the mean of the samples at or below cpWatts, used
// to seed SkibaTau. Returns 0 if no sample qualifies.
func AverageBelowCP(powerWatts []float64, cpWatts float64) float64 {
	var sum float64
	var n int
	for _, p := range powerWatts {
		if p <= cpWatts {
			sum += p
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
