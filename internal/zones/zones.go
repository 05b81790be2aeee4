// Package zones implements the power, heart-rate, and pace zone tables and
// the time-in-zone / TSS-in-zone attribution that reads them.
package zones

import (
	"trainload/internal/scalar"
	"trainload/internal/workout"
)

// Zone is one half-open boundary interval [Low, High); the top zone of a
// table has High = nil meaning unbounded.
type Zone struct {
	Number int
	Name   string
	Low    scalar.D
	High   *scalar.D // nil means [Low, +inf)
}

// contains reports whether v falls in [Low, High).
func (z Zone) contains(v scalar.D) bool {
	if v.LessThan(z.Low) {
		return false
	}
	if z.High == nil {
		return true
	}
	return v.LessThan(*z.High)
}

// powerZoneNames are the seven Coggan power zone labels in boundary order.
var powerZoneNames = []string{
	"Active Recovery",
	"Endurance",
	"Tempo",
	"Threshold",
	"VO2 Max",
	"Anaerobic Capacity",
	"Neuromuscular Power",
}

// powerZoneBoundaries are the seven-zone Coggan multipliers of FTP, per
// §4.K (0.55, 0.75, 0.90, 1.05, 1.20, 1.50).
var powerZoneBoundaries = []float64{0, 0.55, 0.75, 0.90, 1.05, 1.20, 1.50}

// PowerZones builds the seven Coggan power zones scaled to ftp.
func PowerZones(ftp scalar.D) []Zone {
	return buildZones(powerZoneNames, powerZoneBoundaries, ftp)
}

var hrZoneNames = []string{
	"Recovery",
	"Aerobic",
	"Tempo",
	"Threshold",
	"Supra-Threshold",
	"VO2 Max",
}

// hrZoneBoundaries are the six-zone LTHR multipliers, per §4.K
// (0.81, 0.89, 0.93, 1.00, 1.03).
var hrZoneBoundaries = []float64{0, 0.81, 0.89, 0.93, 1.00, 1.03}

// HRZones builds the six LTHR-relative heart-rate zones.
func HRZones(lthr scalar.D) []Zone {
	return buildZones(hrZoneNames, hrZoneBoundaries, lthr)
}

var runningPaceZoneNames = []string{
	"Recovery",
	"Endurance",
	"Tempo",
	"Threshold",
	"VO2 Max",
}

// runningPaceZoneBoundaries are multipliers of threshold pace (seconds per
// meter); since a *faster* pace is a *smaller* number, the zone ordering
// runs from slowest (largest seconds/meter) to fastest.
var runningPaceZoneBoundaries = []float64{1.30, 1.15, 1.05, 1.00, 0.90}

// RunningPaceZones builds the five running pace zones from threshold pace
// (seconds per meter). Zones are ordered slowest-first by Number (zone 1,
// Recovery, is the slowest) and each Zone's [Low, High) interval is
// expressed directly in seconds-per-meter, where Low is the faster
// (smaller) bound.
func RunningPaceZones(thresholdPace scalar.D) []Zone {
	// Descending multiplier order since pace zones run slow-to-fast in
	// seconds-per-meter but fast-to-slow in perceived effort.
	bounds := make([]float64, len(runningPaceZoneBoundaries))
	copy(bounds, runningPaceZoneBoundaries)

	zones := make([]Zone, len(bounds))
	for i, mult := range bounds {
		low := thresholdPace.Mul(scalar.FromFloat(mult, 4))
		z := Zone{Number: i + 1, Name: runningPaceZoneNames[i], Low: low}
		zones[i] = z
	}
	// High bound of zone i is the Low bound of the previous (slower) zone;
	// zone 1 (Recovery, slowest) is unbounded above.
	for i := 1; i < len(zones); i++ {
		high := zones[i-1].Low
		zones[i].High = &high
	}
	return zones
}

var swimPaceZoneNames = []string{
	"Easy",
	"Moderate",
	"Race Pace",
}

var swimPaceZoneBoundaries = []float64{1.20, 1.05, 1.00}

// SwimPaceZones builds the three critical-swim-speed pace zones (seconds
// per meter), same convention as RunningPaceZones.
func SwimPaceZones(css scalar.D) []Zone {
	bounds := swimPaceZoneBoundaries
	zones := make([]Zone, len(bounds))
	for i, mult := range bounds {
		low := css.Mul(scalar.FromFloat(mult, 4))
		zones[i] = Zone{Number: i + 1, Name: swimPaceZoneNames[i], Low: low}
	}
	for i := 1; i < len(zones); i++ {
		high := zones[i-1].Low
		zones[i].High = &high
	}
	return zones
}

func buildZones(names []string, boundaryMultipliers []float64, reference scalar.D) []Zone {
	zones := make([]Zone, len(names))
	for i := range names {
		low := reference.Mul(scalar.FromFloat(boundaryMultipliers[i], 4))
		var high *scalar.D
		if i+1 < len(boundaryMultipliers) {
			h := reference.Mul(scalar.FromFloat(boundaryMultipliers[i+1], 4))
			high = &h
		}
		zones[i] = Zone{Number: i + 1, Name: names[i], Low: low, High: high}
	}
	return zones
}

// Which returns the zone v falls into, or -1 if no zone in table matches
// (for the power and HR tables only if v is below the first zone's Low; for
// the pace tables only if v is below the last, fastest zone's Low).
func Which(table []Zone, v scalar.D) int {
	for i, z := range table {
		if z.contains(v) {
			return i
		}
	}
	return -1
}

// TimeInZone sums sample-interval seconds per zone over a power stream,
// per §4.K's half-open interval rule.
func TimeInZone(table []Zone, w *workout.Workout) []uint32 {
	out := make([]uint32, len(table))
	for i := 1; i < len(w.Samples); i++ {
		prev := w.Samples[i-1]
		if prev.Power == nil {
			continue
		}
		dt := w.Samples[i].T - prev.T
		idx := Which(table, scalar.FromInt(int64(*prev.Power)))
		if idx >= 0 {
			out[idx] += dt
		}
	}
	return out
}

// TSSInZone attributes a per-sample stress weight of IF² (computed per
// sample against ftp) to each zone and sums it, matching §4.K's
// TSS-in-zone definition.
func TSSInZone(table []Zone, w *workout.Workout, ftp scalar.D) []scalar.D {
	out := make([]scalar.D, len(table))
	for i := range out {
		out[i] = scalar.Zero
	}
	if ftp.IsZero() {
		return out
	}
	for i := 1; i < len(w.Samples); i++ {
		prev := w.Samples[i-1]
		if prev.Power == nil {
			continue
		}
		p := scalar.FromInt(int64(*prev.Power))
		ifVal, ok := p.Div(ftp, 4)
		if !ok {
			continue
		}
		dtHours := scalar.FromFloat(float64(w.Samples[i].T-prev.T)/3600.0, 6)
		weight := dtHours.Mul(ifVal).Mul(ifVal).Mul(scalar.FromInt(100))
		idx := Which(table, p)
		if idx >= 0 {
			out[idx] = out[idx].Add(weight)
		}
	}
	return out
}
