package tableinput

import (
	"strings"
	"testing"
)

func TestParseRecognizesSynonyms(t *testing.T) {
	csv := "elapsed_s,watts,bpm,rpm\n0,150,120,85\n1,160,121,86\n"
	samples, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	if samples[0].Power == nil || *samples[0].Power != 150 {
		t.Fatalf("expected power 150, got %+v", samples[0])
	}
	if samples[0].HR == nil || *samples[0].HR != 120 {
		t.Fatalf("expected hr 120, got %+v", samples[0])
	}
	if samples[1].T != 1 {
		t.Fatalf("expected t=1 for second row, got %d", samples[1].T)
	}
}

func TestParseMissingTimeColumnErrors(t *testing.T) {
	csv := "watts,bpm\n150,120\n"
	if _, err := Parse(strings.NewReader(csv)); err == nil {
		t.Fatal("expected an error when no time column is present")
	}
}

func TestParseIgnoresUnrecognizedColumns(t *testing.T) {
	csv := "t,watts,device_notes\n0,200,\"lead pack\"\n"
	samples, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(samples) != 1 || samples[0].Power == nil || *samples[0].Power != 200 {
		t.Fatalf("expected one sample with power 200, got %+v", samples)
	}
}
