package notes

import (
	"strings"
	"testing"

	"trainload/internal/pmc"
	"trainload/internal/power"
	"trainload/internal/scalar"
	"trainload/internal/workout"
)

func TestBuildTrainingNotesIncludesLoadAndForm(t *testing.T) {
	w := workout.New(workout.SportCycling)
	w.DurationS = 3600

	tss := power.Result{Path: power.PathPower, NP: scalar.FromInt(200), IF: scalar.MustNew("0.8"), TSS: scalar.MustNew("64.00")}
	point := pmc.Point{CTL: scalar.MustNew("50"), ATL: scalar.MustNew("60"), TSB: scalar.MustNew("-10")}

	out := BuildTrainingNotes(w, Input{TSS: &tss, PMCPoint: &point})

	if !strings.Contains(out, "TSS 64.00") {
		t.Fatalf("expected TSS in output, got: %s", out)
	}
	if !strings.Contains(out, "Form is negative") {
		t.Fatalf("expected negative-TSB coaching note, got: %s", out)
	}
}

func TestBuildTrainingNotesNilWorkout(t *testing.T) {
	if out := BuildTrainingNotes(nil, Input{}); out != "" {
		t.Fatalf("expected empty string for nil workout, got %q", out)
	}
}

func TestBuildTrainingNotesNoTSS(t *testing.T) {
	w := workout.New(workout.SportCycling)
	w.DurationS = 60
	out := BuildTrainingNotes(w, Input{})
	if !strings.Contains(out, "No load assessment") {
		t.Fatalf("expected fallback coaching note when TSS is absent, got: %s", out)
	}
}
