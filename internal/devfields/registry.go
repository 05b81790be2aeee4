// Package devfields implements the developer-field registry: a mapping
// from (application-UUID, field-number) to a field definition with scale and
// offset, loaded from one or more layered catalog documents.
package devfields

import (
	"fmt"

	"github.com/google/uuid"

	"trainload/internal/fitdecode"
	"trainload/internal/scalar"
	"trainload/internal/trainerr"
)

// FieldDefinition is one developer field's metadata, as shipped in a
// catalog document or discovered from a file's own FieldDescription
// messages.
type FieldDefinition struct {
	Number      uint8
	Name        string
	BaseType    fitdecode.BaseType
	Units       string
	Scale       *float64
	Offset      *float64
	Description string
}

// Key identifies a registry entry.
type Key struct {
	UUID        uuid.UUID
	FieldNumber uint8
}

// Registry is the immutable-after-load, shared developer-field lookup
// table. Readers need no synchronization once LoadFile/Layer has returned.
type Registry struct {
	entries map[Key]FieldDefinition
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[Key]FieldDefinition)}
}

// CatalogDocument is the shape of one developer-field catalog file.
type CatalogDocument struct {
	Applications map[string]CatalogApplication `toml:"applications"`
}

// CatalogApplication is one application's entry in a catalog document.
type CatalogApplication struct {
	Name         string                `toml:"name"`
	Manufacturer string                `toml:"manufacturer"`
	Version      string                `toml:"version"`
	Fields       []CatalogFieldSpec    `toml:"fields"`
}

// CatalogFieldSpec is one field entry within an application.
type CatalogFieldSpec struct {
	Number      uint8   `toml:"number"`
	Name        string  `toml:"name"`
	BaseType    string  `toml:"base_type"`
	Units       string  `toml:"units"`
	Scale       *float64 `toml:"scale"`
	Offset      *float64 `toml:"offset"`
	Description string  `toml:"description"`
}

// Layer merges doc into the registry; entries for a (uuid, number) already
// present are overwritten (last writer wins), per §4.D's contract.
func (r *Registry) Layer(doc CatalogDocument) error {
	for uuidStr, app := range doc.Applications {
		id, err := uuid.Parse(uuidStr)
		if err != nil {
			return trainerr.Wrap(trainerr.KindConfig, err, fmt.Sprintf("invalid application uuid %q", uuidStr))
		}
		seen := make(map[uint8]bool, len(app.Fields))
		for _, f := range app.Fields {
			if seen[f.Number] {
				return trainerr.New(trainerr.KindConfig, fmt.Sprintf("duplicate field number %d for uuid %s", f.Number, uuidStr))
			}
			seen[f.Number] = true
			bt, err := parseBaseType(f.BaseType)
			if err != nil {
				return trainerr.Wrap(trainerr.KindConfig, err, fmt.Sprintf("uuid %s field %d", uuidStr, f.Number))
			}
			r.entries[Key{UUID: id, FieldNumber: f.Number}] = FieldDefinition{
				Number:      f.Number,
				Name:        f.Name,
				BaseType:    bt,
				Units:       f.Units,
				Scale:       f.Scale,
				Offset:      f.Offset,
				Description: f.Description,
			}
		}
	}
	return nil
}

// Lookup returns the field definition for (uuid, fieldNumber), if any.
// Unknown uuids/numbers are not an error: the caller treats the value as
// opaque bytes and decoding continues.
func (r *Registry) Lookup(id uuid.UUID, fieldNumber uint8) (FieldDefinition, bool) {
	d, ok := r.entries[Key{UUID: id, FieldNumber: fieldNumber}]
	return d, ok
}

// ApplyScale computes actual = raw/scale + offset in D, per §4.D. When def
// has no scale/offset, raw is returned unchanged (already D-typed by the
// caller's conversion from the decoder's raw numeric value).
func ApplyScale(raw scalar.D, def FieldDefinition) scalar.D {
	result := raw
	if def.Scale != nil && *def.Scale != 0 {
		scale := scalar.FromFloat(*def.Scale, 10)
		if divided, ok := result.Div(scale, 10); ok {
			result = divided
		}
	}
	if def.Offset != nil {
		result = result.Add(scalar.FromFloat(*def.Offset, 10))
	}
	return result
}

func parseBaseType(name string) (fitdecode.BaseType, error) {
	switch name {
	case "enum":
		return fitdecode.BaseEnum, nil
	case "sint8":
		return fitdecode.BaseSint8, nil
	case "uint8":
		return fitdecode.BaseUint8, nil
	case "sint16":
		return fitdecode.BaseSint16, nil
	case "uint16":
		return fitdecode.BaseUint16, nil
	case "sint32":
		return fitdecode.BaseSint32, nil
	case "uint32":
		return fitdecode.BaseUint32, nil
	case "string":
		return fitdecode.BaseString, nil
	case "float32":
		return fitdecode.BaseFloat32, nil
	case "float64":
		return fitdecode.BaseFloat64, nil
	case "byte":
		return fitdecode.BaseByte, nil
	case "sint64":
		return fitdecode.BaseSint64, nil
	case "uint64":
		return fitdecode.BaseUint64, nil
	default:
		return 0, fmt.Errorf("unknown base type %q", name)
	}
}
