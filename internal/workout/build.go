package workout

import (
	"trainload/internal/devfields"
	"trainload/internal/fitdecode"
	"trainload/internal/scalar"
)

// Standard FIT record-message field numbers used by FromFITMessages. Only
// the fields this engine consumes are named; everything else in a record
// message is ignored (developer fields are resolved separately, by
// internal/devfields, against the same Message stream).
const (
	fieldRecordPower        = 7
	fieldRecordHeartRate    = 3
	fieldRecordCadence      = 4
	fieldRecordSpeed        = 6
	fieldRecordAltitude     = 2
	fieldRecordDistance     = 5
	fieldRecordPositionLat  = 0
	fieldRecordPositionLong = 1
	// left_power/right_power have no standalone field number in the FIT
	// profile (Garmin encodes a combined left_right_balance instead); 8/9
	// are this decoder's own convention for a split reading where a device
	// or catalog supplies one, matching the §3 data-model fields rather
	// than a literal FIT field.
	fieldRecordLeftPower    = 8
	fieldRecordRightPower   = 9
	fieldSessionSport       = 5
	fieldSessionSubSport    = 6
	fieldSessionTotalTimerS = 7

	fieldDeviceManufacturer = 2
	fieldDeviceProduct      = 4
	fieldDeviceSoftwareVers = 5
	fieldDeviceHardwareVers = 6
)

// semicirclesToDegrees converts a FIT position's native units to decimal
// degrees.
const semicirclesToDegrees = 180.0 / (1 << 31)

// sportFromFIT maps a FIT profile sport enum value to the closed Sport set.
// Unrecognized values fall back to SportCrossTraining, matching the
// teacher's habit of defaulting ambiguous session types to a catch-all
// rather than failing the whole decode.
func sportFromFIT(v uint8) Sport {
	switch v {
	case 2:
		return SportCycling
	case 1:
		return SportRunning
	case 5:
		return SportSwimming
	case 15:
		return SportRowing
	case 42:
		return SportTriathlon
	default:
		return SportCrossTraining
	}
}

// FromFITMessages builds a Workout from a decoded FIT message stream using
// an empty shared developer-field registry: per-file FieldDescription
// messages still resolve developer fields local to that file, but no
// cross-file catalog lookup is available. Callers with a loaded catalog
// should use FromFITMessagesWithRegistry instead.
func FromFITMessages(result *fitdecode.Result) *Workout {
	return FromFITMessagesWithRegistry(result, devfields.New())
}

// FromFITMessagesWithRegistry builds a Workout from a decoded FIT message
// stream: the session message supplies sport and duration, device_info
// supplies the source device used for quirk matching, and record messages
// supply the per-second sample stream. Developer fields on each record are
// resolved against reg (falling back to the file's own FieldDescription
// messages first, per §4.D). Timestamps are converted to elapsed seconds
// from the first record, matching the "t is seconds from session start"
// contract DataPoint documents.
func FromFITMessagesWithRegistry(result *fitdecode.Result, reg *devfields.Registry) *Workout {
	w := New(SportCrossTraining)
	resolver := devfields.NewSessionResolver(reg)

	var startSet bool
	var startUnix int64

	for _, m := range result.Messages {
		resolver.Observe(m)

		switch m.Kind {
		case fitdecode.KindDeviceInfo:
			manu, ok1 := m.Uint16Field(fieldDeviceManufacturer)
			prod, ok2 := m.Uint16Field(fieldDeviceProduct)
			if ok1 && ok2 && w.SourceDevice == nil {
				dev := &SourceDevice{ManufacturerID: manu, ProductID: prod}
				if hw, ok := m.Uint8Field(fieldDeviceHardwareVers); ok {
					dev.FirmwareMajor = hw
				}
				if sw, ok := m.Uint8Field(fieldDeviceSoftwareVers); ok {
					dev.FirmwareMinor = sw
				}
				w.SourceDevice = dev
			}

		case fitdecode.KindSession:
			if sport, ok := m.Uint8Field(fieldSessionSport); ok {
				w.Sport = sportFromFIT(sport)
			}
			if totalTimerS, ok := m.Float64Field(fieldSessionTotalTimerS); ok {
				w.DurationS = uint32(totalTimerS)
			}
			if m.Timestamp != nil && w.Date.IsZero() {
				w.Date = *m.Timestamp
			}

		case fitdecode.KindRecord:
			if m.Timestamp == nil {
				continue
			}
			unix := m.Timestamp.Unix()
			if !startSet {
				startUnix = unix
				startSet = true
				if w.Date.IsZero() {
					w.Date = *m.Timestamp
				}
			}
			elapsed := unix - startUnix
			if elapsed < 0 {
				elapsed = 0
			}

			dp := DataPoint{T: uint32(elapsed)}
			if p, ok := m.Uint16Field(fieldRecordPower); ok {
				v := int32(p)
				dp.Power = &v
			}
			if hr, ok := m.Uint8Field(fieldRecordHeartRate); ok {
				v := int32(hr)
				dp.HR = &v
			}
			if cad, ok := m.Float64Field(fieldRecordCadence); ok {
				dp.Cadence = &cad
			}
			if spd, ok := m.Float64Field(fieldRecordSpeed); ok {
				mps := spd
				dp.Speed = &mps
				if mps > 0 {
					pace := scalar.FromFloat(1.0/mps, 6)
					dp.Pace = &pace
				}
			}
			if alt, ok := m.Float64Field(fieldRecordAltitude); ok {
				dp.Elevation = &alt
			}
			if lat, okLat := m.Float64Field(fieldRecordPositionLat); okLat {
				if lon, okLon := m.Float64Field(fieldRecordPositionLong); okLon {
					dp.Position = &Position{
						Lat: lat * semicirclesToDegrees,
						Lon: lon * semicirclesToDegrees,
					}
				}
			}
			if lp, ok := m.Uint16Field(fieldRecordLeftPower); ok {
				v := int32(lp)
				dp.LeftPower = &v
			}
			if rp, ok := m.Uint16Field(fieldRecordRightPower); ok {
				v := int32(rp)
				dp.RightPower = &v
			}
			if resolved := resolver.Resolve(m); len(resolved) > 0 {
				dp.DevFields = make(map[DevFieldKey]scalar.D, len(resolved))
				for k, v := range resolved {
					dp.DevFields[DevFieldKey{UUID: k.UUID, FieldNumber: k.FieldNumber}] = v
				}
			}

			w.Samples = append(w.Samples, dp)
		}
	}

	if w.DurationS < w.MaxSampleT() {
		w.DurationS = w.MaxSampleT()
	}
	if result.Degraded {
		w.QualityFlags.Add("crc-recovered")
	}
	return w
}
