// Package export writes canonical per-second sample streams and PMC series
// to Parquet, CSV, or JSON, the thin "persistent storage / report
// rendering" collaborator named in spec.md §6.
package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"strconv"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"trainload/internal/pmc"
	"trainload/internal/workout"
)

// SampleRow is one flattened, export-ready sample.
type SampleRow struct {
	ElapsedS     float64
	PowerW       float64
	HRBPM        float64
	CadenceRPM   float64
	SpeedMPS     float64
	ElevationM   float64
	ValidPower   bool
	ValidHR      bool
	ValidCadence bool
}

// SampleRows flattens a Workout's samples into export rows.
func SampleRows(w *workout.Workout) []SampleRow {
	rows := make([]SampleRow, len(w.Samples))
	for i, s := range w.Samples {
		row := SampleRow{ElapsedS: float64(s.T)}
		if s.Power != nil {
			row.PowerW = float64(*s.Power)
			row.ValidPower = true
		}
		if s.HR != nil {
			row.HRBPM = float64(*s.HR)
			row.ValidHR = true
		}
		if s.Cadence != nil {
			row.CadenceRPM = *s.Cadence
			row.ValidCadence = true
		}
		if s.Speed != nil {
			row.SpeedMPS = *s.Speed
		}
		if s.Elevation != nil {
			row.ElevationM = *s.Elevation
		}
		rows[i] = row
	}
	return rows
}

type sampleParquetRow struct {
	ElapsedS     float64 `parquet:"name=elapsed_s, type=DOUBLE"`
	PowerW       float64 `parquet:"name=power_w, type=DOUBLE"`
	HRBPM        float64 `parquet:"name=hr_bpm, type=DOUBLE"`
	CadenceRPM   float64 `parquet:"name=cadence_rpm, type=DOUBLE"`
	SpeedMPS     float64 `parquet:"name=speed_mps, type=DOUBLE"`
	ElevationM   float64 `parquet:"name=elevation_m, type=DOUBLE"`
	ValidPower   bool    `parquet:"name=valid_power, type=BOOLEAN"`
	ValidHR      bool    `parquet:"name=valid_hr, type=BOOLEAN"`
	ValidCadence bool    `parquet:"name=valid_cadence, type=BOOLEAN"`
}

// WriteSamplesParquet writes rows to path as SNAPPY-compressed Parquet.
func WriteSamplesParquet(path string, rows []SampleRow) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	pw, err := writer.NewParquetWriter(fw, new(sampleParquetRow), 4)
	if err != nil {
		fw.Close()
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, r := range rows {
		row := sampleParquetRow{
			ElapsedS:     r.ElapsedS,
			PowerW:       r.PowerW,
			HRBPM:        r.HRBPM,
			CadenceRPM:   r.CadenceRPM,
			SpeedMPS:     r.SpeedMPS,
			ElevationM:   r.ElevationM,
			ValidPower:   r.ValidPower,
			ValidHR:      r.ValidHR,
			ValidCadence: r.ValidCadence,
		}
		if err := pw.Write(row); err != nil {
			pw.WriteStop()
			fw.Close()
			return err
		}
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return err
	}
	return fw.Close()
}

// WriteSamplesCSV writes rows to path as CSV with a header row.
func WriteSamplesCSV(path string, rows []SampleRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"elapsed_s", "power_w", "hr_bpm", "cadence_rpm", "speed_mps", "elevation_m", "valid_power", "valid_hr", "valid_cadence"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			strconv.FormatFloat(r.ElapsedS, 'f', -1, 64),
			strconv.FormatFloat(r.PowerW, 'f', -1, 64),
			strconv.FormatFloat(r.HRBPM, 'f', -1, 64),
			strconv.FormatFloat(r.CadenceRPM, 'f', -1, 64),
			strconv.FormatFloat(r.SpeedMPS, 'f', -1, 64),
			strconv.FormatFloat(r.ElevationM, 'f', -1, 64),
			strconv.FormatBool(r.ValidPower),
			strconv.FormatBool(r.ValidHR),
			strconv.FormatBool(r.ValidCadence),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WritePMCSeriesJSON writes a PMC series to path as pretty-printed JSON,
// relying on scalar.D's MarshalJSON for exact-precision output.
func WritePMCSeriesJSON(path string, points []pmc.Point) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(points)
}
