// Package tableinput implements the secondary, line-oriented session input
// named in spec.md §6: a header-row table whose recognized column names
// (with synonyms) map onto the DataPoint shape, for callers without a FIT
// file — an exported watch app CSV, a manually assembled session log.
package tableinput

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"trainload/internal/scalar"
	"trainload/internal/workout"
)

// columnSynonyms maps every accepted header spelling to the canonical field
// it feeds, matching spec.md §6's "accepted synonyms ... are part of the
// interface contract".
var columnSynonyms = map[string]string{
	"t": "t", "time": "t", "elapsed_s": "t", "seconds": "t",

	"power": "power", "watts": "power", "power_w": "power",

	"hr": "hr", "heart_rate": "hr", "heartrate": "hr", "bpm": "hr",

	"cadence": "cadence", "rpm": "cadence", "cadence_rpm": "cadence",

	"speed": "speed", "speed_mps": "speed", "mps": "speed",

	"elevation": "elevation", "altitude": "elevation", "elev_m": "elevation",
}

// canonicalColumn resolves a raw header cell to one of the fields above, or
// "" if the column is unrecognized and should be ignored.
func canonicalColumn(header string) string {
	key := strings.ToLower(strings.TrimSpace(header))
	return columnSynonyms[key]
}

// Parse reads a header-row CSV table from r and returns the decoded sample
// stream in file order. A missing or unparsable "t" column is an error;
// every other column is optional per sample.
func Parse(r io.Reader) ([]workout.DataPoint, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("tableinput: reading header: %w", err)
	}

	columns := make([]string, len(header))
	tCol := -1
	for i, h := range header {
		col := canonicalColumn(h)
		columns[i] = col
		if col == "t" {
			tCol = i
		}
	}
	if tCol < 0 {
		return nil, fmt.Errorf("tableinput: no recognized time column in header %v", header)
	}

	var samples []workout.DataPoint
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("tableinput: reading row: %w", err)
		}

		dp, err := rowToDataPoint(columns, record, tCol)
		if err != nil {
			return nil, err
		}
		samples = append(samples, dp)
	}
	return samples, nil
}

func rowToDataPoint(columns, record []string, tCol int) (workout.DataPoint, error) {
	t, err := strconv.ParseFloat(strings.TrimSpace(record[tCol]), 64)
	if err != nil {
		return workout.DataPoint{}, fmt.Errorf("tableinput: parsing t %q: %w", record[tCol], err)
	}
	dp := workout.DataPoint{T: uint32(t)}

	for i, col := range columns {
		if i >= len(record) || col == "" || col == "t" {
			continue
		}
		raw := strings.TrimSpace(record[i])
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		switch col {
		case "power":
			p := int32(v)
			dp.Power = &p
		case "hr":
			h := int32(v)
			dp.HR = &h
		case "cadence":
			c := v
			dp.Cadence = &c
		case "speed":
			s := v
			dp.Speed = &s
			if v > 0 {
				pace := scalar.FromFloat(1.0/v, 6)
				dp.Pace = &pace
			}
		case "elevation":
			e := v
			dp.Elevation = &e
		}
	}
	return dp, nil
}
