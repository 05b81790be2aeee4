package devfields

import (
	"testing"

	"github.com/google/uuid"

	"trainload/internal/scalar"
)

func TestLayerLastWriterWins(t *testing.T) {
	r := New()
	scale1 := 10.0
	err := r.Layer(CatalogDocument{Applications: map[string]CatalogApplication{
		"c47b2e7e-3a4e-4b0e-8f0a-000000000001": {
			Name: "first", Manufacturer: "acme",
			Fields: []CatalogFieldSpec{{Number: 1, Name: "gct", BaseType: "uint16", Scale: &scale1}},
		},
	}})
	if err != nil {
		t.Fatalf("layer 1: %v", err)
	}

	scale2 := 100.0
	err = r.Layer(CatalogDocument{Applications: map[string]CatalogApplication{
		"c47b2e7e-3a4e-4b0e-8f0a-000000000001": {
			Name: "second", Manufacturer: "acme",
			Fields: []CatalogFieldSpec{{Number: 1, Name: "gct", BaseType: "uint16", Scale: &scale2}},
		},
	}})
	if err != nil {
		t.Fatalf("layer 2: %v", err)
	}

	id := uuid.MustParse("c47b2e7e-3a4e-4b0e-8f0a-000000000001")
	def, ok := r.Lookup(id, 1)
	if !ok {
		t.Fatal("expected lookup hit")
	}
	if *def.Scale != 100.0 {
		t.Fatalf("expected second layer to win, got scale %v", *def.Scale)
	}
}

func TestLayerDuplicateFieldIsFatal(t *testing.T) {
	r := New()
	scale := 1.0
	err := r.Layer(CatalogDocument{Applications: map[string]CatalogApplication{
		"c47b2e7e-3a4e-4b0e-8f0a-000000000002": {
			Fields: []CatalogFieldSpec{
				{Number: 5, BaseType: "uint8", Scale: &scale},
				{Number: 5, BaseType: "uint8", Scale: &scale},
			},
		},
	}})
	if err == nil {
		t.Fatal("expected error for duplicate field number within a uuid")
	}
}

func TestApplyScale(t *testing.T) {
	scale := 2.0
	offset := 5.0
	def := FieldDefinition{Scale: &scale, Offset: &offset}
	got := ApplyScale(scalar.FromInt(20), def)
	want := scalar.MustNew("15") // 20/2 + 5
	if got.Cmp(want) != 0 {
		t.Fatalf("ApplyScale: got %s want %s", got, want)
	}
}
