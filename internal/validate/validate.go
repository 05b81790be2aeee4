// Package validate implements the data validator: per-sport physiological
// range checks, monotonicity enforcement, and gap detection, in either
// flagging (default) or strict (removing) mode. Out-of-order sample times
// are an error in both modes.
package validate

import (
	"fmt"

	"trainload/internal/trainerr"
	"trainload/internal/workout"
)

// Range is an inclusive-low/inclusive-high physiological bound.
type Range struct{ Low, High float64 }

// Table holds the per-sport range bounds named in §4.F.
type Table struct {
	HeartRateBPM      Range
	CyclingPowerW     Range
	RunningPowerW     Range
	CyclingCadenceRPM Range
	RunningCadenceSPM Range
	SpeedMPS          Range
	ElevationM        Range
	LatitudeDeg       Range
	LongitudeDeg      Range
}

// DefaultTable returns the range bounds specified in §4.F.
func DefaultTable() Table {
	return Table{
		HeartRateBPM:      Range{30, 220},
		CyclingPowerW:     Range{0, 2000},
		RunningPowerW:     Range{0, 500},
		CyclingCadenceRPM: Range{0, 200},
		RunningCadenceSPM: Range{0, 300},
		SpeedMPS:          Range{0, 25},
		ElevationM:        Range{-500, 9000},
		LatitudeDeg:       Range{-90, 90},
		LongitudeDeg:      Range{-180, 180},
	}
}

// Mode selects how out-of-range samples are handled.
type Mode int

const (
	// ModeFlag (default): out-of-range samples are kept and flagged.
	ModeFlag Mode = iota
	// ModeStrict: out-of-range samples are removed from the sample stream.
	ModeStrict
)

// Report summarizes what the validator found.
type Report struct {
	OutOfRangeCount int
	RemovedCount    int
	Flags           []string
}

func (r *Range) contains(v float64) bool { return v >= r.Low && v <= r.High }

// Validate checks w.Samples against t and enforces monotonicity of t,
// mutating w.Samples in ModeStrict (removing violators) and always
// recording findings in w.QualityFlags.
func Validate(w *workout.Workout, t Table, mode Mode) (Report, error) {
	if w.QualityFlags == nil {
		w.QualityFlags = workout.NewQualityFlags()
	}
	report := Report{}

	var lastT uint32
	first := true
	kept := w.Samples[:0:0]
	for i, s := range w.Samples {
		if !first && s.T < lastT {
			return report, trainerr.New(trainerr.KindRange, fmt.Sprintf("sample %d out of order: t=%d < previous=%d", i, s.T, lastT))
		}
		lastT = s.T
		first = false

		violated := sampleViolatesRange(s, w.Sport, t)
		if violated {
			report.OutOfRangeCount++
			flag := "range-violation"
			w.QualityFlags.Add(flag)
			report.Flags = append(report.Flags, flag)
			if mode == ModeStrict {
				report.RemovedCount++
				continue
			}
		}
		kept = append(kept, s)
	}
	w.Samples = kept
	return report, nil
}

func sampleViolatesRange(s workout.DataPoint, sport workout.Sport, t Table) bool {
	if s.HR != nil && !t.HeartRateBPM.contains(float64(*s.HR)) {
		return true
	}
	if s.Power != nil {
		pr := t.CyclingPowerW
		if sport == workout.SportRunning {
			pr = t.RunningPowerW
		}
		if !pr.contains(float64(*s.Power)) {
			return true
		}
	}
	if s.Cadence != nil {
		cr := t.CyclingCadenceRPM
		if sport == workout.SportRunning {
			cr = t.RunningCadenceSPM
		}
		if !cr.contains(*s.Cadence) {
			return true
		}
	}
	if s.Speed != nil && !t.SpeedMPS.contains(*s.Speed) {
		return true
	}
	if s.Elevation != nil && !t.ElevationM.contains(*s.Elevation) {
		return true
	}
	if s.Position != nil {
		if !t.LatitudeDeg.contains(s.Position.Lat) || !t.LongitudeDeg.contains(s.Position.Lon) {
			return true
		}
	}
	return false
}
