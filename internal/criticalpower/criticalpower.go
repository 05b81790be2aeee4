// Package criticalpower implements the Monod-Scherrer critical-power/W′
// model: the CP/W′ linear fit over mean-maximal-power points, the Skiba
// W′-balance differential trace, and time-to-exhaustion.
package criticalpower

import (
	"math"

	"trainload/internal/scalar"
)

// AnchorMin and AnchorMax bound the MMP durations eligible for the CP fit,
// per §4.J ("shorter is neuromuscular, longer is depleted").
const (
	AnchorMin = 120  // 2 minutes
	AnchorMax = 1200 // 20 minutes
)

// PreferredAnchors is the standard anchor-duration set decided in
// SPEC_FULL.md §7.2 (3/5/10/20 minutes), used when all four are available in
// an MMP curve; any MMP points within [AnchorMin, AnchorMax] are used as a
// fallback otherwise.
var PreferredAnchors = []int{180, 300, 600, 1200}

// Point is one (duration-seconds, power-watts) MMP observation used as fit
// input.
type Point struct {
	Seconds int
	Watts   float64
}

// Fit is the result of a two-parameter linear CP/W′ regression.
type Fit struct {
	CP            scalar.D
	WPrime        scalar.D // joules
	RSquared      float64
	LowConfidence bool
}

// LinearFit solves P = CP + W'/t by ordinary least squares of P against 1/t,
// per §4.J. CP is the intercept, W' the slope. The fit is marked
// low-confidence when r² < 0.95 or CP <= 0 or W' <= 0 (invariant 6 in §8).
func LinearFit(points []Point) Fit {
	n := len(points)
	if n < 2 {
		return Fit{LowConfidence: true}
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, p := range points {
		xs[i] = 1.0 / float64(p.Seconds)
		ys[i] = p.Watts
	}

	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var sxy, sxx float64
	for i := range xs {
		dx := xs[i] - meanX
		sxy += dx * (ys[i] - meanY)
		sxx += dx * dx
	}
	if sxx == 0 {
		return Fit{LowConfidence: true}
	}

	slope := sxy / sxx     // W'
	intercept := meanY - slope*meanX // CP

	var ssRes, ssTot float64
	for i := range xs {
		predicted := intercept + slope*xs[i]
		ssRes += (ys[i] - predicted) * (ys[i] - predicted)
		ssTot += (ys[i] - meanY) * (ys[i] - meanY)
	}
	r2 := 1.0
	if ssTot != 0 {
		r2 = 1 - ssRes/ssTot
	}

	f := Fit{
		CP:       scalar.FromFloat(intercept, 1),
		WPrime:   scalar.FromFloat(slope, 0),
		RSquared: r2,
	}
	if r2 < 0.95 || intercept <= 0 || slope <= 0 {
		f.LowConfidence = true
	}
	return f
}

// SelectAnchors picks the preferred anchor durations from an MMP lookup
// function when all are present, falling back to any duration within
// [AnchorMin, AnchorMax].
func SelectAnchors(at func(seconds int) (float64, bool), available []int) []Point {
	var preferred []Point
	complete := true
	for _, d := range PreferredAnchors {
		w, ok := at(d)
		if !ok {
			complete = false
			break
		}
		preferred = append(preferred, Point{Seconds: d, Watts: w})
	}
	if complete {
		return preferred
	}

	var fallback []Point
	for _, d := range available {
		if d < AnchorMin || d > AnchorMax {
			continue
		}
		if w, ok := at(d); ok {
			fallback = append(fallback, Point{Seconds: d, Watts: w})
		}
	}
	return fallback
}

// ThreeParamFit is the alternative P = CP + W'/(t+k) nonlinear variant,
// fitted by least squares over a bounded, fixed-step grid of k values (a
// closed-form solution does not exist for the third parameter).
type ThreeParamFit struct {
	CP       scalar.D
	WPrime   scalar.D
	K        float64
	RSquared float64
}

// ThreeParamLinearFit fits P = CP + W'/(t+k) by scanning k over a bounded
// range and solving the inner two-parameter linear regression (in 1/(t+k))
// at each candidate, keeping the best r².
func ThreeParamLinearFit(points []Point) ThreeParamFit {
	best := ThreeParamFit{RSquared: -math.MaxFloat64}
	for kHundredths := 0; kHundredths <= 6000; kHundredths += 5 {
		k := float64(kHundredths) / 100.0
		fit := linearFitShifted(points, k)
		if fit.r2 > best.RSquared {
			best = ThreeParamFit{CP: scalar.FromFloat(fit.intercept, 1), WPrime: scalar.FromFloat(fit.slope, 0), K: k, RSquared: fit.r2}
		}
	}
	return best
}

type rawFit struct {
	intercept, slope, r2 float64
}

func linearFitShifted(points []Point, k float64) rawFit {
	n := len(points)
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, p := range points {
		xs[i] = 1.0 / (float64(p.Seconds) + k)
		ys[i] = p.Watts
	}
	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)
	var sxy, sxx float64
	for i := range xs {
		dx := xs[i] - meanX
		sxy += dx * (ys[i] - meanY)
		sxx += dx * dx
	}
	if sxx == 0 {
		return rawFit{}
	}
	slope := sxy / sxx
	intercept := meanY - slope*meanX
	var ssRes, ssTot float64
	for i := range xs {
		predicted := intercept + slope*xs[i]
		ssRes += (ys[i] - predicted) * (ys[i] - predicted)
		ssTot += (ys[i] - meanY) * (ys[i] - meanY)
	}
	r2 := 1.0
	if ssTot != 0 {
		r2 = 1 - ssRes/ssTot
	}
	return rawFit{intercept: intercept, slope: slope, r2: r2}
}
