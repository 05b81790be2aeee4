package workout

import "trainload/internal/scalar"

// Lap is one lap/interval boundary recorded by the device or inferred from
// event markers, matching the per-lap rollups the decoder's Lap record
// carries (component C) before they are attached to a Workout.
type Lap struct {
	Index       int
	StartOffset uint32 // seconds from session start
	EndOffset   uint32

	AvgPower   *scalar.D
	MaxPower   *scalar.D
	AvgHR      *scalar.D
	AvgCadence *scalar.D
	Distance   *scalar.D
}

// DurationS returns the lap's length in seconds.
func (l Lap) DurationS() uint32 {
	if l.EndOffset < l.StartOffset {
		return 0
	}
	return l.EndOffset - l.StartOffset
}
