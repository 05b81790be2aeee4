// Package workout holds the in-memory session representation shared by every
// downstream engine: the per-sample stream, session summary, sport tag, and
// data-quality flags.
package workout

import (
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"trainload/internal/scalar"
)

// Sport is the closed set of supported activity types.
type Sport int

const (
	SportCycling Sport = iota
	SportRunning
	SportSwimming
	SportRowing
	SportCrossTraining
	SportTriathlon
)

func (s Sport) String() string {
	switch s {
	case SportCycling:
		return "cycling"
	case SportRunning:
		return "running"
	case SportSwimming:
		return "swimming"
	case SportRowing:
		return "rowing"
	case SportCrossTraining:
		return "cross_training"
	case SportTriathlon:
		return "triathlon"
	default:
		return "unknown"
	}
}

// WorkoutType distinguishes a structured/prescribed session from free-form
// recording; it does not affect metric computation, only reporting.
type WorkoutType int

const (
	WorkoutTypeFreeRide WorkoutType = iota
	WorkoutTypeStructured
	WorkoutTypeRace
	WorkoutTypeTest
)

// PrimarySource names which sensor stream drives TSS computation for a
// session, per the §4.G fallback hierarchy.
type PrimarySource int

const (
	SourcePower PrimarySource = iota
	SourcePace
	SourceHeartRate
	SourceRPE
)

// Position is a GPS fix in decimal degrees.
type Position struct {
	Lat, Lon float64
}

// DevFieldKey identifies a developer field by its owning application and
// field number, matching the §3 "Developer-field entry" key shape.
type DevFieldKey struct {
	UUID        uuid.UUID
	FieldNumber uint8
}

// DataPoint is one sample of the per-second stream. Every sensor reading is
// optional; presence is tracked with the pointer-or-ok convention below via
// the Has* helpers rather than sentinel values, so a genuine zero reading
// (e.g. coasting at 0 W) is distinguishable from "not recorded".
type DataPoint struct {
	T uint32 // seconds from session start

	Power      *int32
	HR         *int32
	Pace       *scalar.D // seconds per meter, D-typed as it feeds rTSS
	Speed      *float64  // m/s
	Cadence    *float64
	Elevation  *float64
	Position   *Position
	LeftPower  *int32
	RightPower *int32

	DevFields map[DevFieldKey]scalar.D
}

// HasPower reports whether a power reading is present (including a
// legitimate zero).
func (dp DataPoint) HasPower() bool { return dp.Power != nil }

// HasHR reports whether a heart-rate reading is present.
func (dp DataPoint) HasHR() bool { return dp.HR != nil }

// HasPace reports whether a pace reading is present.
func (dp DataPoint) HasPace() bool { return dp.Pace != nil }

// QualityFlags records every correction, fallback, and recovery applied to a
// session, per §3's Workout invariant and §7's propagation policy: dedup'd,
// append-only, human-readable.
type QualityFlags struct {
	flags []string
	seen  map[string]bool
}

// NewQualityFlags returns an empty flag set.
func NewQualityFlags() *QualityFlags {
	return &QualityFlags{seen: make(map[string]bool)}
}

// Add appends flag if it has not already been recorded, enforcing the
// dedup invariant used by §4.E's idempotence guarantee.
func (q *QualityFlags) Add(flag string) {
	if q.seen == nil {
		q.seen = make(map[string]bool)
	}
	if q.seen[flag] {
		return
	}
	q.seen[flag] = true
	q.flags = append(q.flags, flag)
}

// Has reports whether flag was previously recorded.
func (q *QualityFlags) Has(flag string) bool {
	if q == nil || q.seen == nil {
		return false
	}
	return q.seen[flag]
}

// All returns the flags in insertion order.
func (q *QualityFlags) All() []string {
	if q == nil {
		return nil
	}
	return append([]string(nil), q.flags...)
}

// Summary holds the session-level rollup fields that, per §3's invariant,
// must equal their recomputation from Samples within one unit of least
// precision whenever Samples is present.
type Summary struct {
	AvgPower   *scalar.D
	MaxPower   *scalar.D
	NP         *scalar.D
	AvgHR      *scalar.D
	MaxHR      *scalar.D
	AvgPace    *scalar.D
	AvgCadence *scalar.D
	Distance   *scalar.D // meters
	TotalWorkKJ *scalar.D
	IF         *scalar.D
	TSS        *scalar.D
}

// SourceDevice identifies the recording device for quirk matching (§4.E).
type SourceDevice struct {
	ManufacturerID uint16
	ProductID      uint16
	FirmwareMajor  uint8
	FirmwareMinor  uint8
}

// Workout is one recorded (or summary-only) session.
type Workout struct {
	ID            uuid.UUID
	Date          time.Time
	Sport         Sport
	DurationS     uint32
	WorkoutType   WorkoutType
	PrimarySource PrimarySource

	Samples []DataPoint // nil for summary-only sessions

	Summary      Summary
	Notes        string
	SourceDevice *SourceDevice
	QualityFlags *QualityFlags

	Structure *Structure // supplemental: reconstructed prescribed/executed steps
}

// New constructs an empty Workout with an allocated quality-flag set and a
// fresh id, matching the teacher's habit of never returning a struct whose
// nested collections are nil.
func New(sport Sport) *Workout {
	return &Workout{
		ID:           uuid.New(),
		Sport:        sport,
		QualityFlags: NewQualityFlags(),
	}
}

// MaxSampleT returns the largest t seen in Samples, or 0 if empty.
func (w *Workout) MaxSampleT() uint32 {
	var max uint32
	for _, s := range w.Samples {
		if s.T > max {
			max = s.T
		}
	}
	return max
}

// Validate enforces the §3 Workout invariant duration_s >= max(sample.t) and
// the monotone-t-within-a-session sample invariant (no reordering).
func (w *Workout) Validate() error {
	if w.DurationS < w.MaxSampleT() {
		return &invariantError{"duration_s must be >= max(sample.t)"}
	}
	var last uint32
	first := true
	for i, s := range w.Samples {
		if !first && s.T < last {
			return &invariantError{sprintSampleOrder(i, last, s.T)}
		}
		last = s.T
		first = false
	}
	return nil
}

type invariantError struct{ msg string }

func (e *invariantError) Error() string { return e.msg }

func sprintSampleOrder(i int, last, t uint32) string {
	return "sample " + strconv.Itoa(i) + " out of order: t=" + strconv.Itoa(int(t)) + " < previous=" + strconv.Itoa(int(last))
}

// SortSamples sorts Samples by t, stable. The decoder guarantees byte-order
// emission already equals t-order; this is provided for consumers that build
// a Workout from an unordered source (e.g. merging two partial imports).
func (w *Workout) SortSamples() {
	sort.SliceStable(w.Samples, func(i, j int) bool {
		return w.Samples[i].T < w.Samples[j].T
	})
}

// PowerCoverage returns the fraction of samples carrying a power reading,
// used by §4.G's fallback hierarchy.
func (w *Workout) PowerCoverage() float64 {
	return coverage(w.Samples, DataPoint.HasPower)
}

// HRCoverage returns the fraction of samples carrying a heart-rate reading.
func (w *Workout) HRCoverage() float64 {
	return coverage(w.Samples, DataPoint.HasHR)
}

// PaceCoverage returns the fraction of samples carrying a pace reading.
func (w *Workout) PaceCoverage() float64 {
	return coverage(w.Samples, DataPoint.HasPace)
}

func coverage(samples []DataPoint, has func(DataPoint) bool) float64 {
	if len(samples) == 0 {
		return 0
	}
	n := 0
	for _, s := range samples {
		if has(s) {
			n++
		}
	}
	return float64(n) / float64(len(samples))
}
