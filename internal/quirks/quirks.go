// Package quirks implements the device-quirk pipeline: a closed,
// extensible set of pure, idempotent corrections applied to a session's
// sample stream before any metric engine sees it.
package quirks

import (
	"fmt"

	"trainload/internal/scalar"
	"trainload/internal/trainerr"
	"trainload/internal/workout"
)

func divisorD(f float64) scalar.D { return scalar.FromFloat(f, 6) }

// Kind is the closed set of quirk kinds, per §4.E.
type Kind int

const (
	KindCadenceScale Kind = iota
	KindLeadingPowerSpike
	KindLeftOnlyDoublePrevention
	KindRunningDynamicsScale
)

func (k Kind) String() string {
	switch k {
	case KindCadenceScale:
		return "CadenceScale"
	case KindLeadingPowerSpike:
		return "LeadingPowerSpike"
	case KindLeftOnlyDoublePrevention:
		return "LeftOnlyDoublePrevention"
	case KindRunningDynamicsScale:
		return "RunningDynamicsScale"
	default:
		return "Unknown"
	}
}

// Quirk is one configured correction: the matching device identity plus its
// kind-specific parameters. Only the fields relevant to Kind are read.
type Quirk struct {
	Kind Kind

	// CadenceScale
	Factor float64

	// LeadingPowerSpike
	ThresholdW float64
	WindowS    uint32

	// RunningDynamicsScale
	GCTScale *float64
	VOScale  *float64
	GCTKey   *workout.DevFieldKey
	VOKey    *workout.DevFieldKey
}

// Label returns the quality-flag text this quirk records when applied,
// matching scenario S4's expected "CadenceScale(0.5) applied" format.
func (q Quirk) Label() string {
	switch q.Kind {
	case KindCadenceScale:
		return fmt.Sprintf("CadenceScale(%g) applied", q.Factor)
	case KindLeadingPowerSpike:
		return fmt.Sprintf("LeadingPowerSpike(%g,%d) applied", q.ThresholdW, q.WindowS)
	case KindLeftOnlyDoublePrevention:
		return "LeftOnlyDoublePrevention applied"
	case KindRunningDynamicsScale:
		return fmt.Sprintf("RunningDynamicsScale(%v,%v) applied", q.GCTScale, q.VOScale)
	default:
		return "UnknownQuirk applied"
	}
}

// DeviceEntry matches a Quirk to a detected (manufacturer, product,
// firmware) triple, the §3 "Device-quirk entry" shape.
type DeviceEntry struct {
	ManufacturerID   uint16
	ProductID        uint16
	FirmwareMin      uint16
	FirmwareMax      uint16
	HasFirmwareRange bool
	Description      string
	Quirk            Quirk
	DefaultEnabled   bool
}

func (e DeviceEntry) matches(dev *workout.SourceDevice) bool {
	if dev == nil {
		return false
	}
	if e.ManufacturerID != dev.ManufacturerID || e.ProductID != dev.ProductID {
		return false
	}
	if !e.HasFirmwareRange {
		return true
	}
	fw := uint16(dev.FirmwareMajor)<<8 | uint16(dev.FirmwareMinor)
	return fw >= e.FirmwareMin && fw <= e.FirmwareMax
}

// Registry is the immutable-after-load set of device-quirk entries.
type Registry struct {
	entries []DeviceEntry
}

// NewRegistry validates entries at load time: an unknown quirk kind is
// fatal here, never at run time, per §4.E's failure semantics.
func NewRegistry(entries []DeviceEntry) (*Registry, error) {
	for _, e := range entries {
		switch e.Quirk.Kind {
		case KindCadenceScale, KindLeadingPowerSpike, KindLeftOnlyDoublePrevention, KindRunningDynamicsScale:
		default:
			return nil, trainerr.New(trainerr.KindConfig, fmt.Sprintf("unknown quirk kind %d for manufacturer=%d product=%d", e.Quirk.Kind, e.ManufacturerID, e.ProductID))
		}
	}
	return &Registry{entries: entries}, nil
}

// Matching returns the quirks enabled for dev, in registration order.
func (r *Registry) Matching(dev *workout.SourceDevice) []Quirk {
	if dev == nil {
		return nil
	}
	var out []Quirk
	for _, e := range r.entries {
		if e.DefaultEnabled && e.matches(dev) {
			out = append(out, e.Quirk)
		}
	}
	return out
}

// Apply runs every quirk matching w.SourceDevice against w.Samples in
// registration order, recording each application in w.QualityFlags. Running
// Apply twice on the same Workout is a no-op the second time: each quirk's
// label is added to the deduplicated quality-flag set, and the per-kind
// idempotence guards below make the numeric transform itself idempotent as
// well (e.g. CadenceScale is only applied where not already marked).
func (r *Registry) Apply(w *workout.Workout) {
	if w.QualityFlags == nil {
		w.QualityFlags = workout.NewQualityFlags()
	}
	for _, q := range r.Matching(w.SourceDevice) {
		applyOne(w, q)
	}
}

func applyOne(w *workout.Workout, q Quirk) {
	label := q.Label()
	if w.QualityFlags.Has(label) {
		return
	}
	switch q.Kind {
	case KindCadenceScale:
		applyCadenceScale(w.Samples, q.Factor)
	case KindLeadingPowerSpike:
		applyLeadingPowerSpike(w.Samples, q.ThresholdW, q.WindowS)
	case KindLeftOnlyDoublePrevention:
		applyLeftOnlyDoublePrevention(w.Samples)
	case KindRunningDynamicsScale:
		applyRunningDynamicsScale(w.Samples, q)
	}
	w.QualityFlags.Add(label)
}

func applyCadenceScale(samples []workout.DataPoint, factor float64) {
	for i := range samples {
		if samples[i].Cadence != nil {
			scaled := *samples[i].Cadence * factor
			samples[i].Cadence = &scaled
		}
	}
}

func applyLeadingPowerSpike(samples []workout.DataPoint, thresholdW float64, windowS uint32) {
	for i := range samples {
		if samples[i].T > windowS {
			break
		}
		if samples[i].Power != nil && float64(*samples[i].Power) > thresholdW {
			samples[i].Power = nil
		}
	}
}

func applyLeftOnlyDoublePrevention(samples []workout.DataPoint) {
	for i := range samples {
		if samples[i].LeftPower != nil && samples[i].RightPower == nil {
			samples[i].Power = nil
		}
	}
}

func applyRunningDynamicsScale(samples []workout.DataPoint, q Quirk) {
	for i := range samples {
		if q.GCTKey != nil && q.GCTScale != nil && *q.GCTScale != 0 {
			if v, ok := samples[i].DevFields[*q.GCTKey]; ok {
				if divided, ok := v.Div(divisorD(*q.GCTScale), 6); ok {
					samples[i].DevFields[*q.GCTKey] = divided
				}
			}
		}
		if q.VOKey != nil && q.VOScale != nil && *q.VOScale != 0 {
			if v, ok := samples[i].DevFields[*q.VOKey]; ok {
				if divided, ok := v.Div(divisorD(*q.VOScale), 6); ok {
					samples[i].DevFields[*q.VOKey] = divided
				}
			}
		}
	}
}
