package devfields

import (
	"encoding/binary"

	"github.com/google/uuid"

	"trainload/internal/fitdecode"
	"trainload/internal/scalar"
)

// SessionResolver buffers per-file DeveloperDataId and FieldDescription
// messages and resolves DevFieldRef occurrences on subsequent Record-kind
// messages against both the per-file definitions and the shared Registry.
// This is the consumer half of §4.C's ordering guarantee: the decoder emits
// DeveloperDataId/FieldDescription before any Record referencing them, and
// this type is where that buffering actually happens.
type SessionResolver struct {
	shared *Registry

	// developerDataIndex -> application uuid, from DeveloperDataId messages.
	devDataIndexToUUID map[uint8]uuid.UUID
	// (developerDataIndex, fieldNumber) -> local FieldDescription, when the
	// file carries its own field description rather than relying on the
	// shared catalog.
	localFields map[fitdecode.DevFieldRef]FieldDefinition
}

// NewSessionResolver returns a resolver backed by shared for any field not
// described locally within the file.
func NewSessionResolver(shared *Registry) *SessionResolver {
	return &SessionResolver{
		shared:             shared,
		devDataIndexToUUID: make(map[uint8]uuid.UUID),
		localFields:        make(map[fitdecode.DevFieldRef]FieldDefinition),
	}
}

// Observe feeds one decoded message to the resolver. Call it for every
// message in byte order; DeveloperDataId and FieldDescription kinds update
// internal state, everything else is a no-op here.
func (s *SessionResolver) Observe(msg fitdecode.Message) {
	switch msg.Kind {
	case fitdecode.KindDeveloperDataID:
		idx, ok := msg.Uint8Field(0) // developer_data_index
		if !ok {
			return
		}
		if raw, ok := msg.Field(1); ok { // application_id, byte[16]
			if b, ok := raw.Raw.([]byte); ok && len(b) == 16 {
				id, err := uuidFromFITBytes(b)
				if err == nil {
					s.devDataIndexToUUID[idx] = id
				}
			}
		}
	case fitdecode.KindFieldDescription:
		idx, ok1 := msg.Uint8Field(0)    // developer_data_index
		num, ok2 := msg.Uint8Field(1)    // field_definition_number
		baseRaw, ok3 := msg.Uint8Field(2) // fit_base_type_id
		name, _ := msg.StringField(3)
		units, _ := msg.StringField(8)
		if !ok1 || !ok2 || !ok3 {
			return
		}
		s.localFields[fitdecode.DevFieldRef{DeveloperDataIndex: idx, FieldNumber: num}] = FieldDefinition{
			Number:   num,
			Name:     name,
			BaseType: fitdecode.BaseType(baseRaw),
			Units:    units,
		}
	}
}

// Resolve converts the raw developer-field values on msg into a
// (uuid, field-number) -> D mapping, applying scale/offset from whichever
// source has a definition: a local FieldDescription first, then the shared
// Registry. Unresolvable refs (unknown uuid or unknown field) are dropped
// silently, per §4.D's "unknown uuids do not halt decoding" contract.
func (s *SessionResolver) Resolve(msg fitdecode.Message) map[Key]scalar.D {
	if len(msg.DevFields) == 0 {
		return nil
	}
	out := make(map[Key]scalar.D, len(msg.DevFields))
	for ref, val := range msg.DevFields {
		appUUID, ok := s.devDataIndexToUUID[ref.DeveloperDataIndex]
		if !ok {
			continue
		}
		raw, ok := val.Raw.([]byte)
		if !ok {
			continue
		}
		var def FieldDefinition
		var haveDef bool
		if local, ok := s.localFields[ref]; ok {
			def = local
			haveDef = true
		} else if shared, ok := s.shared.Lookup(appUUID, ref.FieldNumber); ok {
			def = shared
			haveDef = true
		}
		if !haveDef {
			continue
		}
		arch := binary.ByteOrder(binary.LittleEndian)
		if val.BigEndian {
			arch = binary.BigEndian
		}
		rawVal, ok := decodeRawNumeric(raw, def.BaseType, arch)
		if !ok {
			continue
		}
		scaled := ApplyScale(scalar.FromFloat(rawVal, 10), def)
		out[Key{UUID: appUUID, FieldNumber: ref.FieldNumber}] = scaled
	}
	return out
}

// decodeRawNumeric interprets raw multi-byte developer-field values using
// arch, the byte order declared by that field's message definition (FIT
// architecture byte: 0 = little-endian, 1 = big-endian) rather than
// assuming little-endian universally.
func decodeRawNumeric(raw []byte, bt fitdecode.BaseType, arch binary.ByteOrder) (float64, bool) {
	switch bt {
	case fitdecode.BaseUint8, fitdecode.BaseUint8z, fitdecode.BaseEnum:
		if len(raw) < 1 {
			return 0, false
		}
		return float64(raw[0]), true
	case fitdecode.BaseSint8:
		if len(raw) < 1 {
			return 0, false
		}
		return float64(int8(raw[0])), true
	case fitdecode.BaseUint16, fitdecode.BaseUint16z:
		if len(raw) < 2 {
			return 0, false
		}
		return float64(arch.Uint16(raw)), true
	case fitdecode.BaseSint16:
		if len(raw) < 2 {
			return 0, false
		}
		return float64(int16(arch.Uint16(raw))), true
	case fitdecode.BaseUint32, fitdecode.BaseUint32z:
		if len(raw) < 4 {
			return 0, false
		}
		return float64(arch.Uint32(raw)), true
	case fitdecode.BaseSint32:
		if len(raw) < 4 {
			return 0, false
		}
		return float64(int32(arch.Uint32(raw))), true
	default:
		return 0, false
	}
}

func uuidFromFITBytes(b []byte) (uuid.UUID, error) {
	var id uuid.UUID
	copy(id[:], b)
	return id, nil
}
