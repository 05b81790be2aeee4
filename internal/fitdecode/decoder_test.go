package fitdecode

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/tormoder/fit"
)

func buildTestFIT(t *testing.T) []byte {
	t.Helper()

	header := fit.NewHeader(fit.V20, true)
	file, err := fit.NewFile(fit.FileTypeActivity, header)
	if err != nil {
		t.Fatalf("new fit file: %v", err)
	}
	activity, err := file.Activity()
	if err != nil {
		t.Fatalf("activity accessor: %v", err)
	}

	start := time.Date(2026, 2, 26, 23, 0, 0, 0, time.UTC)
	ev := fit.NewEventMsg()
	ev.Timestamp = start
	ev.Event = fit.EventTimer
	ev.EventType = fit.EventTypeStart
	activity.Events = append(activity.Events, ev)

	for i := 0; i < 5; i++ {
		rec := fit.NewRecordMsg()
		rec.Timestamp = start.Add(time.Duration(i) * time.Second)
		rec.Power = uint16(200 + i*10)
		rec.HeartRate = uint8(140 + i)
		rec.Cadence = uint8(85)
		activity.Records = append(activity.Records, rec)
	}

	var buf bytes.Buffer
	if err := fit.Encode(&buf, file, binary.LittleEndian); err != nil {
		t.Fatalf("encode fit: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeValidFile(t *testing.T) {
	data := buildTestFIT(t)

	result, err := Decode(bytes.NewReader(data), Options{})
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if !result.PayloadCRCValid {
		t.Fatal("expected valid payload CRC")
	}
	if result.Degraded {
		t.Fatal("expected non-degraded result")
	}
	if result.Header.DataType != ".FIT" {
		t.Fatalf("unexpected data type: %q", result.Header.DataType)
	}

	var recordCount int
	for _, m := range result.Messages {
		if m.Kind == KindRecord {
			recordCount++
			if _, ok := m.Uint16Field(7); !ok { // power field number
				t.Fatalf("expected power field on record message")
			}
		}
	}
	if recordCount != 5 {
		t.Fatalf("expected 5 record messages, got %d", recordCount)
	}
}

func TestDecodeCorruptedPayloadStrict(t *testing.T) {
	data := buildTestFIT(t)
	corrupted := append([]byte(nil), data...)
	corrupted[len(corrupted)-3] ^= 0xFF // flip a payload byte, leaving CRC stale

	_, err := Decode(bytes.NewReader(corrupted), Options{})
	if err == nil {
		t.Fatal("expected integrity error in strict mode")
	}
}

func TestDecodeCorruptedPayloadRecovery(t *testing.T) {
	data := buildTestFIT(t)
	corrupted := append([]byte(nil), data...)
	corrupted[len(corrupted)-3] ^= 0xFF

	result, err := Decode(bytes.NewReader(corrupted), Options{Recovery: true})
	if err != nil {
		t.Fatalf("expected recovery mode to succeed, got %v", err)
	}
	if !result.Degraded {
		t.Fatal("expected degraded result")
	}
	found := false
	for _, f := range result.QualityFlags {
		if f == "CRC-recovered" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected CRC-recovered quality flag")
	}
}

func TestDecodeTruncatedHeaderFatal(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte{0x0C, 0x10}), Options{})
	if err == nil {
		t.Fatal("expected fatal error for truncated header")
	}
}
