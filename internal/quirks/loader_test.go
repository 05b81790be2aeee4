package quirks

import (
	"os"
	"path/filepath"
	"testing"

	"trainload/internal/workout"
)

func TestLoadFileParsesCadenceScale(t *testing.T) {
	doc := `
[[entries]]
manufacturer_id = 1
product_id = 2697
description = "doubles cadence"
quirk_kind = "CadenceScale"
factor = 0.5
default_enabled = true
`
	path := filepath.Join(t.TempDir(), "quirks.toml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	reg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	dev := &workout.SourceDevice{ManufacturerID: 1, ProductID: 2697}
	matches := reg.Matching(dev)
	if len(matches) != 1 || matches[0].Kind != KindCadenceScale || matches[0].Factor != 0.5 {
		t.Fatalf("unexpected matches: %+v", matches)
	}
}

func TestLoadFileUnknownKindErrors(t *testing.T) {
	doc := `
[[entries]]
manufacturer_id = 1
product_id = 1
quirk_kind = "NotARealQuirk"
default_enabled = true
`
	path := filepath.Join(t.TempDir(), "quirks.toml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected an error for an unknown quirk_kind")
	}
}
