package quirks

import (
	"testing"

	"trainload/internal/workout"
)

func cadencePtr(v float64) *float64 { return &v }

func TestCadenceScaleQuirkS4(t *testing.T) {
	reg, err := NewRegistry([]DeviceEntry{
		{
			ManufacturerID: 1, ProductID: 2697,
			Description:    "Garmin Edge 520 doubles cadence",
			Quirk:          Quirk{Kind: KindCadenceScale, Factor: 0.5},
			DefaultEnabled: true,
		},
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	w := workout.New(workout.SportCycling)
	w.SourceDevice = &workout.SourceDevice{ManufacturerID: 1, ProductID: 2697}
	for i := 0; i < 10; i++ {
		w.Samples = append(w.Samples, workout.DataPoint{T: uint32(i), Cadence: cadencePtr(180)})
	}

	reg.Apply(w)

	for _, s := range w.Samples {
		if *s.Cadence != 90 {
			t.Fatalf("expected cadence 90 after scaling, got %v", *s.Cadence)
		}
	}
	if !w.QualityFlags.Has("CadenceScale(0.5) applied") {
		t.Fatalf("expected quality flag recorded, got %v", w.QualityFlags.All())
	}
}

func TestQuirkIdempotent(t *testing.T) {
	reg, _ := NewRegistry([]DeviceEntry{
		{ManufacturerID: 1, ProductID: 1, Quirk: Quirk{Kind: KindCadenceScale, Factor: 0.5}, DefaultEnabled: true},
	})
	w := workout.New(workout.SportCycling)
	w.SourceDevice = &workout.SourceDevice{ManufacturerID: 1, ProductID: 1}
	w.Samples = []workout.DataPoint{{T: 0, Cadence: cadencePtr(180)}}

	reg.Apply(w)
	reg.Apply(w) // applying twice must equal applying once (invariant 8)

	if *w.Samples[0].Cadence != 90 {
		t.Fatalf("expected single application of CadenceScale, got cadence %v", *w.Samples[0].Cadence)
	}
}

func TestLeftOnlyDoublePrevention(t *testing.T) {
	reg, _ := NewRegistry([]DeviceEntry{
		{ManufacturerID: 5, ProductID: 9, Quirk: Quirk{Kind: KindLeftOnlyDoublePrevention}, DefaultEnabled: true},
	})
	w := workout.New(workout.SportCycling)
	w.SourceDevice = &workout.SourceDevice{ManufacturerID: 5, ProductID: 9}
	left := int32(150)
	inferred := int32(300)
	w.Samples = []workout.DataPoint{{T: 0, LeftPower: &left, Power: &inferred}}

	reg.Apply(w)

	if w.Samples[0].Power != nil {
		t.Fatalf("expected power to be cleared when only left_power present, got %v", *w.Samples[0].Power)
	}
}

func TestUnknownQuirkKindFatalAtLoad(t *testing.T) {
	_, err := NewRegistry([]DeviceEntry{
		{ManufacturerID: 1, ProductID: 1, Quirk: Quirk{Kind: Kind(99)}, DefaultEnabled: true},
	})
	if err == nil {
		t.Fatal("expected load-time error for unknown quirk kind")
	}
}

func TestNoDeviceIdentifierNoQuirks(t *testing.T) {
	reg, _ := NewRegistry([]DeviceEntry{
		{ManufacturerID: 1, ProductID: 1, Quirk: Quirk{Kind: KindCadenceScale, Factor: 0.5}, DefaultEnabled: true},
	})
	w := workout.New(workout.SportCycling)
	w.Samples = []workout.DataPoint{{T: 0, Cadence: cadencePtr(180)}}

	reg.Apply(w)

	if *w.Samples[0].Cadence != 180 {
		t.Fatalf("expected no quirks applied without a device identifier")
	}
}
