package zones

import (
	"testing"

	"trainload/internal/scalar"
	"trainload/internal/workout"
)

func TestPowerZoneBoundaries(t *testing.T) {
	ftp := scalar.FromInt(250)
	table := PowerZones(ftp)
	if len(table) != 7 {
		t.Fatalf("expected 7 power zones, got %d", len(table))
	}
	// 200W at FTP 250 is 0.80x -> falls in [0.75, 0.90), the Tempo zone
	idx := Which(table, scalar.FromInt(200))
	if idx != 2 {
		t.Fatalf("expected 200W at FTP 250 to land in zone index 2 (Tempo), got %d", idx)
	}
	// 400W is 1.60x -> above the top boundary, lands in the unbounded zone 7
	idx = Which(table, scalar.FromInt(400))
	if idx != 6 {
		t.Fatalf("expected 400W at FTP 250 to land in the unbounded top zone, got %d", idx)
	}
}

func TestHRZoneBoundaries(t *testing.T) {
	lthr := scalar.FromInt(170)
	table := HRZones(lthr)
	if len(table) != 6 {
		t.Fatalf("expected 6 HR zones, got %d", len(table))
	}
	idx := Which(table, scalar.FromInt(170))
	if idx != 4 {
		t.Fatalf("expected HR == LTHR to land in zone index 4 ([1.00,1.03) boundary), got %d", idx)
	}
}

func powerPtr(v int32) *int32 { return &v }

func TestTimeInZoneSumsIntervals(t *testing.T) {
	ftp := scalar.FromInt(250)
	table := PowerZones(ftp)
	w := workout.New(workout.SportCycling)
	w.DurationS = 10
	for i := 0; i < 10; i++ {
		w.Samples = append(w.Samples, workout.DataPoint{T: uint32(i), Power: powerPtr(200)})
	}
	times := TimeInZone(table, w)
	var total uint32
	for _, s := range times {
		total += s
	}
	if total != 9 { // 10 samples -> 9 intervals
		t.Fatalf("expected 9 seconds of interval coverage, got %d", total)
	}
}
