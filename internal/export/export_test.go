package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"trainload/internal/pmc"
	"trainload/internal/scalar"
	"trainload/internal/workout"
)

func powerPtr(v int32) *int32 { return &v }

func sampleWorkout() *workout.Workout {
	w := workout.New(workout.SportCycling)
	w.DurationS = 3
	w.Samples = []workout.DataPoint{
		{T: 0, Power: powerPtr(150)},
		{T: 1, Power: powerPtr(160)},
		{T: 2},
	}
	return w
}

func TestSampleRowsTracksPresence(t *testing.T) {
	rows := SampleRows(sampleWorkout())
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if !rows[0].ValidPower || rows[0].PowerW != 150 {
		t.Fatalf("expected row 0 to carry a valid 150W reading, got %+v", rows[0])
	}
	if rows[2].ValidPower {
		t.Fatal("row 2 has no power sample and must not be marked valid")
	}
}

func TestWriteSamplesCSVRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "samples.csv")
	rows := SampleRows(sampleWorkout())

	if err := WriteSamplesCSV(path, rows); err != nil {
		t.Fatalf("WriteSamplesCSV: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written CSV: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty CSV output")
	}
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parsing written CSV: %v", err)
	}
	if len(records) != len(rows)+1 {
		t.Fatalf("expected a header plus %d rows, got %d records", len(rows), len(records))
	}
	if records[1][1] != "150" || records[1][6] != "true" || records[3][6] != "false" {
		t.Fatalf("unexpected round-tripped rows: %v", records[1:])
	}
}

func TestWritePMCSeriesJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pmc.json")
	points := []pmc.Point{
		{CTL: scalar.MustNew("10.5"), ATL: scalar.MustNew("20.25"), TSB: scalar.MustNew("-9.75")},
	}
	if err := WritePMCSeriesJSON(path, points); err != nil {
		t.Fatalf("WritePMCSeriesJSON: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written JSON: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty JSON output")
	}
}
