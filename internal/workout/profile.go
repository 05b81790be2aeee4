package workout

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"trainload/internal/scalar"
)

// ThresholdEntry is one (effective_from, value) pair in a timestamped
// threshold history, per §3's Athlete profile invariant: recomputation of a
// past session uses the threshold in effect that day.
type ThresholdEntry struct {
	EffectiveFrom time.Time
	Value         scalar.D
}

// ThresholdHistory is an ordered-by-insertion set of entries; At() does the
// lookup required by the invariant regardless of insertion order.
type ThresholdHistory struct {
	entries []ThresholdEntry
}

// Set appends a new effective-from value. Callers may insert entries out of
// order; At() always sorts before searching.
func (h *ThresholdHistory) Set(effectiveFrom time.Time, value scalar.D) {
	h.entries = append(h.entries, ThresholdEntry{EffectiveFrom: effectiveFrom, Value: value})
}

// At returns the most recent entry with EffectiveFrom <= d, and whether one
// exists at all.
func (h *ThresholdHistory) At(d time.Time) (scalar.D, bool) {
	if len(h.entries) == 0 {
		return scalar.Zero, false
	}
	sorted := append([]ThresholdEntry(nil), h.entries...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].EffectiveFrom.Before(sorted[j].EffectiveFrom)
	})
	best := -1
	for i, e := range sorted {
		if !e.EffectiveFrom.After(d) {
			best = i
		} else {
			break
		}
	}
	if best == -1 {
		return scalar.Zero, false
	}
	return sorted[best].Value, true
}

// SportScaleFactors maps a Sport to its multi-sport TSS scaling factor
// (§4.L); defaults match the spec's stated defaults.
type SportScaleFactors map[Sport]scalar.D

// DefaultSportScaleFactors returns the spec-mandated default scaling table.
func DefaultSportScaleFactors() SportScaleFactors {
	return SportScaleFactors{
		SportCycling:       scalar.MustNew("1.0"),
		SportRunning:       scalar.MustNew("1.3"),
		SportSwimming:      scalar.MustNew("0.9"),
		SportRowing:        scalar.MustNew("1.0"),
		SportCrossTraining: scalar.MustNew("1.0"),
		SportTriathlon:     scalar.MustNew("1.0"),
	}
}

// ZoneModelChoice names which zone table a sport uses; most sports have a
// single natural choice, but it is athlete-configurable per §9's dispatch
// table design ("sport is a variant ... data-only change").
type ZoneModelChoice int

const (
	ZoneModelPower ZoneModelChoice = iota
	ZoneModelHeartRate
	ZoneModelPace
)

// AthleteProfile holds the timestamped thresholds and per-sport
// configuration every metric engine consults read-only.
type AthleteProfile struct {
	ID uuid.UUID

	FTP                   *ThresholdHistory
	LTHR                  *ThresholdHistory
	MaxHR                 *ThresholdHistory
	ThresholdPace         *ThresholdHistory // seconds per meter
	CSS                   *ThresholdHistory // critical swim speed, seconds per meter
	RunningPowerThreshold *ThresholdHistory

	SportScaleFactors SportScaleFactors
	ZoneModelChoices  map[Sport]ZoneModelChoice
}

// NewAthleteProfile returns a profile with empty histories and default
// sport scale factors, ready for the caller to populate.
func NewAthleteProfile() *AthleteProfile {
	return &AthleteProfile{
		ID:                uuid.New(),
		FTP:               &ThresholdHistory{},
		LTHR:              &ThresholdHistory{},
		MaxHR:             &ThresholdHistory{},
		ThresholdPace:     &ThresholdHistory{},
		CSS:               &ThresholdHistory{},
		RunningPowerThreshold: &ThresholdHistory{},
		SportScaleFactors: DefaultSportScaleFactors(),
		ZoneModelChoices:  make(map[Sport]ZoneModelChoice),
	}
}

// FTPAt returns the FTP in effect on date d.
func (p *AthleteProfile) FTPAt(d time.Time) (scalar.D, bool) { return p.FTP.At(d) }

// LTHRAt returns the LTHR in effect on date d.
func (p *AthleteProfile) LTHRAt(d time.Time) (scalar.D, bool) { return p.LTHR.At(d) }

// ThresholdPaceAt returns the threshold pace in effect on date d.
func (p *AthleteProfile) ThresholdPaceAt(d time.Time) (scalar.D, bool) { return p.ThresholdPace.At(d) }

// ScaleFactor returns the configured TSS scaling factor for sport, defaulting
// to 1.0 if unset.
func (p *AthleteProfile) ScaleFactor(sport Sport) scalar.D {
	if f, ok := p.SportScaleFactors[sport]; ok {
		return f
	}
	return scalar.MustNew("1.0")
}
