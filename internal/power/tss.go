package power

import (
	"trainload/internal/formula"
	"trainload/internal/scalar"
	"trainload/internal/workout"
)

// CoverageThreshold is the minimum sensor-stream coverage required to use
// that sensor's path in the §4.G fallback hierarchy.
const CoverageThreshold = 0.8

// Path names which input stream drove the TSS computation.
type Path int

const (
	PathPower Path = iota
	PathPace
	PathHeartRate
	PathEstimated
)

func (p Path) String() string {
	switch p {
	case PathPower:
		return "power"
	case PathPace:
		return "pace"
	case PathHeartRate:
		return "heart_rate"
	default:
		return "estimated"
	}
}

// Result is the full output of one TSS computation.
type Result struct {
	Path       Path
	NP         scalar.D
	IF         scalar.D
	TSS        scalar.D
	LowConfidence bool
	FormulaErr error // non-nil if a caller-supplied formula failed and the engine fell back
}

// Inputs bundles everything the engine needs beyond the Workout itself.
type Inputs struct {
	FTP             *scalar.D
	ThresholdPace   *scalar.D // seconds per meter; lower is faster
	LTHR            *scalar.D
	CriticalSwimSpeed *scalar.D
	Formula         formula.Expr // optional caller-supplied override
}

// Compute runs the full §4.G fallback hierarchy against w, preferring the
// power path, then pace (running) or critical-swim-speed (swimming), then
// heart rate, then a flat estimate.
func Compute(w *workout.Workout, in Inputs) Result {
	durationHours := scalar.FromFloat(float64(w.DurationS)/3600.0, 6)

	if w.PowerCoverage() >= CoverageThreshold && in.FTP != nil && !in.FTP.IsZero() {
		return computePowerPath(w, *in.FTP, durationHours, in.Formula)
	}
	if w.Sport == workout.SportRunning && in.ThresholdPace != nil && w.PaceCoverage() >= CoverageThreshold {
		return computePacePath(w, *in.ThresholdPace, durationHours)
	}
	if w.Sport == workout.SportSwimming && in.CriticalSwimSpeed != nil && w.PaceCoverage() >= CoverageThreshold {
		return computeSwimPath(w, *in.CriticalSwimSpeed, durationHours)
	}
	if in.LTHR != nil && w.HRCoverage() >= CoverageThreshold {
		return computeHRPath(w, *in.LTHR, durationHours)
	}
	return computeEstimatedPath(durationHours)
}

func computePowerPath(w *workout.Workout, ftp, durationHours scalar.D, f formula.Expr) Result {
	series := powerSeries(w)
	np := NormalizedPower(series, DefaultWindow)
	ifVal, ok := np.Div(ftp, 4)
	if !ok {
		return computeEstimatedPath(durationHours)
	}

	if f != nil {
		env := formula.Env{
			"duration": durationHours,
			"IF":       ifVal,
			"NP":       np,
			"FTP":      ftp,
		}
		if tss, err := f.Eval(env); err == nil {
			return Result{Path: PathPower, NP: np, IF: ifVal, TSS: tss}
		} else {
			res := builtinTSS(np, ifVal, durationHours)
			res.FormulaErr = err
			if w.QualityFlags == nil {
				w.QualityFlags = workout.NewQualityFlags()
			}
			w.QualityFlags.Add("formula-fallback")
			return res
		}
	}
	return builtinTSS(np, ifVal, durationHours)
}

func builtinTSS(np, ifVal, durationHours scalar.D) Result {
	tss := durationHours.Mul(ifVal).Mul(ifVal).Mul(scalar.FromInt(100)).Round(2)
	return Result{Path: PathPower, NP: np, IF: ifVal, TSS: tss}
}

func computePacePath(w *workout.Workout, thresholdPace, durationHours scalar.D) Result {
	// pace is seconds-per-meter; a lower pace than threshold means
	// faster-than-threshold effort, so the ratio is threshold/actual. The
	// actual pace is the plain mean of the pace samples, not a normalized
	// pace.
	avgPace := averagePace(w)
	if avgPace.IsZero() {
		return computeEstimatedPath(durationHours)
	}
	ratio, ok := thresholdPace.Div(avgPace, 4)
	if !ok {
		return computeEstimatedPath(durationHours)
	}
	rtss := durationHours.Mul(ratio).Mul(ratio).Mul(ratio).Mul(scalar.FromInt(100)).Round(2)
	return Result{Path: PathPace, IF: ratio, TSS: rtss}
}

func computeSwimPath(w *workout.Workout, css, durationHours scalar.D) Result {
	avgPace := averagePace(w)
	if avgPace.IsZero() {
		return computeEstimatedPath(durationHours)
	}
	ratio, ok := css.Div(avgPace, 4)
	if !ok {
		return computeEstimatedPath(durationHours)
	}
	stss := durationHours.Mul(ratio).Mul(ratio).Mul(ratio).Mul(scalar.FromInt(100)).Round(2)
	return Result{Path: PathPace, IF: ratio, TSS: stss}
}

func computeHRPath(w *workout.Workout, lthr, durationHours scalar.D) Result {
	// The mean of the per-sample HR/LTHR ratios is used as IF, and
	// hrTSS = hours · IF² · 100. Samples are not banded into effort zones.
	samples := w.Samples
	if len(samples) == 0 {
		return computeEstimatedPath(durationHours)
	}
	var weightedSum scalar.D
	var n scalar.D
	for _, s := range samples {
		if s.HR == nil {
			continue
		}
		ratio, ok := scalar.FromInt(int64(*s.HR)).Div(lthr, 4)
		if !ok {
			continue
		}
		weightedSum = weightedSum.Add(ratio)
		n = n.Add(scalar.FromInt(1))
	}
	if n.IsZero() {
		return computeEstimatedPath(durationHours)
	}
	avgRatio, ok := weightedSum.Div(n, 4)
	if !ok {
		return computeEstimatedPath(durationHours)
	}
	hrtss := durationHours.Mul(avgRatio).Mul(avgRatio).Mul(scalar.FromInt(100)).Round(2)
	return Result{Path: PathHeartRate, IF: avgRatio, TSS: hrtss}
}

func computeEstimatedPath(durationHours scalar.D) Result {
	return Result{
		Path:          PathEstimated,
		TSS:           durationHours.Mul(scalar.FromInt(50)).Round(2),
		LowConfidence: true,
	}
}

func powerSeries(w *workout.Workout) []float64 {
	out := make([]float64, 0, len(w.Samples))
	for _, s := range w.Samples {
		if s.Power != nil {
			out = append(out, float64(*s.Power))
		} else {
			out = append(out, 0)
		}
	}
	return out
}

func averagePace(w *workout.Workout) scalar.D {
	var sum scalar.D
	var n scalar.D
	for _, s := range w.Samples {
		if s.Pace != nil {
			sum = sum.Add(*s.Pace)
			n = n.Add(scalar.FromInt(1))
		}
	}
	if n.IsZero() {
		return scalar.Zero
	}
	avg, _ := sum.Div(n, 6)
	return avg
}
