package fitdecode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/tormoder/fit/dyncrc16"

	"trainload/internal/trainerr"
)

const (
	compressedHeaderMask       = 0x80
	compressedLocalMesgNumMask = 0x60
	compressedTimeMask         = 0x1F
	mesgDefinitionMask         = 0x40
	devDataMask                = 0x20
	localMesgNumMask           = 0x0F

	headerSizeNoCRC = 12
	headerSizeCRC   = 14

	fieldNumTimestamp = 253
)

// Header is the decoded 12- or 14-byte file header.
type Header struct {
	Size            uint8
	ProtocolVersion uint8
	ProfileVersion  uint16
	DataSize        uint32
	DataType        string
	CRCPresent      bool
	HeaderCRCValid  bool
}

// Options controls decode behavior.
type Options struct {
	// Recovery, when true, continues past a payload CRC mismatch instead of
	// failing fast, and stops at the first malformed record or missing
	// definition, keeping the messages decoded before it instead of
	// returning an error. Either event leaves the Result with Degraded=true
	// and the "CRC-recovered" quality flag. Unknown field numbers are
	// decoded in both modes.
	Recovery bool
}

// Result is everything the decoder produced from one input.
type Result struct {
	Header          Header
	Messages        []Message
	PayloadCRCValid bool
	Degraded        bool
	QualityFlags    []string
	LeftoverBytes   int64
}

type fieldDefState struct {
	fieldNumber uint8
	size        uint8
	base        BaseType
}

type devFieldDefState struct {
	fieldNumber      uint8
	size             uint8
	developerDataIdx uint8
}

type localDefinitionState struct {
	localMessageType uint8
	globalMessageNum uint16
	arch             binary.ByteOrder
	fields           []fieldDefState
	devFields        []devFieldDefState
}

// Decode parses a complete FIT byte stream. It matches the "streaming
// decode" contract in shape (a single forward pass over the payload,
// building only the in-flight local-definition table as state) but, since
// CRC16 validation requires the whole payload per the dyncrc16 API, the
// payload is read fully into memory here. No chunked, bounded-memory
// decoder is provided.
func Decode(r io.Reader, opts Options) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, trainerr.Wrap(trainerr.KindFormat, err, "read fit input")
	}
	return decodeBytes(data, opts)
}

func decodeBytes(data []byte, opts Options) (*Result, error) {
	if len(data) < headerSizeNoCRC+2 {
		return nil, trainerr.New(trainerr.KindFormat, fmt.Sprintf("fit file too short: %d bytes", len(data)))
	}

	header, dataStart, err := parseHeader(data)
	if err != nil {
		return nil, err
	}

	required := int(dataStart) + int(header.DataSize) + 2
	if len(data) < required {
		return nil, trainerr.New(trainerr.KindFormat,
			fmt.Sprintf("fit file truncated: have %d bytes, need at least %d", len(data), required))
	}

	dataSection := data[dataStart : uint32(dataStart)+header.DataSize]
	crcBytes := data[uint32(dataStart)+header.DataSize : uint32(dataStart)+header.DataSize+2]
	storedCRC := binary.LittleEndian.Uint16(crcBytes)
	computedCRC := dyncrc16.Checksum(data[:uint32(dataStart)+header.DataSize])
	payloadValid := storedCRC == computedCRC

	d := &decodeState{
		base:        int(dataStart),
		payload:     dataSection,
		definitions: make(map[uint8]localDefinitionState),
		recovery:    opts.Recovery,
	}

	result := &Result{Header: header, PayloadCRCValid: payloadValid}

	if !payloadValid {
		if !opts.Recovery {
			return nil, trainerr.New(trainerr.KindIntegrity, "payload CRC mismatch")
		}
		result.Degraded = true
		result.QualityFlags = append(result.QualityFlags, "CRC-recovered")
	}

	if err := d.parseAll(); err != nil {
		if opts.Recovery {
			result.Degraded = true
			result.QualityFlags = append(result.QualityFlags, "CRC-recovered")
		} else {
			return nil, err
		}
	}
	result.Messages = d.messages
	result.LeftoverBytes = int64(len(data) - required)
	return result, nil
}

func parseHeader(data []byte) (Header, uint32, error) {
	size := data[0]
	if size != headerSizeNoCRC && size != headerSizeCRC {
		return Header{}, 0, trainerr.New(trainerr.KindFormat, fmt.Sprintf("invalid fit header size: %d", size))
	}
	if len(data) < int(size) {
		return Header{}, 0, trainerr.New(trainerr.KindFormat, fmt.Sprintf("truncated fit header: need %d bytes", size))
	}

	h := Header{
		Size:            size,
		ProtocolVersion: data[1],
		ProfileVersion:  binary.LittleEndian.Uint16(data[2:4]),
		DataSize:        binary.LittleEndian.Uint32(data[4:8]),
		DataType:        string(data[8:12]),
	}
	if h.DataType != ".FIT" {
		return Header{}, 0, trainerr.New(trainerr.KindFormat, fmt.Sprintf("invalid fit data type in header: %q", h.DataType))
	}
	if h.ProtocolVersion>>4 > 2 {
		return Header{}, 0, trainerr.New(trainerr.KindFormat, fmt.Sprintf("unsupported protocol major version: %d", h.ProtocolVersion>>4))
	}

	h.HeaderCRCValid = true
	if size == headerSizeCRC {
		h.CRCPresent = true
		stored := binary.LittleEndian.Uint16(data[12:14])
		if stored != 0 {
			computed := dyncrc16.Checksum(data[:12])
			h.HeaderCRCValid = stored == computed
		}
	}
	return h, uint32(size), nil
}

type decodeState struct {
	base           int
	payload        []byte
	definitions    map[uint8]localDefinitionState
	lastTimestamp  uint32
	lastTimeOffset int32
	messages       []Message
	recovery       bool
}

func (d *decodeState) parseAll() error {
	pos := 0
	idx := 0
	for pos < len(d.payload) {
		idx++
		start := pos
		headerByte := d.payload[pos]
		pos++

		switch {
		case headerByte&compressedHeaderMask == compressedHeaderMask:
			local := (headerByte & compressedLocalMesgNumMask) >> 5
			def, ok := d.definitions[local]
			if !ok {
				return trainerr.New(trainerr.KindReference, fmt.Sprintf("missing definition for compressed data message local=%d record=%d", local, idx))
			}
			msg, newPos, err := d.parseDataMessage(idx, start, pos, local, def, true)
			if err != nil {
				return err
			}
			d.messages = append(d.messages, msg)
			pos = newPos
		case headerByte&mesgDefinitionMask == mesgDefinitionMask:
			def, newPos, err := d.parseDefinition(pos, headerByte)
			if err != nil {
				return err
			}
			d.definitions[def.localMessageType] = def
			pos = newPos
		default:
			local := headerByte & localMesgNumMask
			def, ok := d.definitions[local]
			if !ok {
				return trainerr.New(trainerr.KindReference, fmt.Sprintf("missing definition for data message local=%d record=%d", local, idx))
			}
			msg, newPos, err := d.parseDataMessage(idx, start, pos, local, def, false)
			if err != nil {
				return err
			}
			d.messages = append(d.messages, msg)
			pos = newPos
		}
	}
	if pos != len(d.payload) {
		return trainerr.New(trainerr.KindFormat, fmt.Sprintf("fit parse did not consume all bytes: consumed %d of %d", pos, len(d.payload)))
	}
	return nil
}

func (d *decodeState) parseDefinition(pos int, headerByte uint8) (localDefinitionState, int, error) {
	read := func(n int) ([]byte, error) {
		if pos+n > len(d.payload) {
			return nil, trainerr.New(trainerr.KindFormat, "definition record truncated")
		}
		out := d.payload[pos : pos+n]
		pos += n
		return out, nil
	}

	local := headerByte & localMesgNumMask
	if _, err := read(1); err != nil { // reserved byte
		return localDefinitionState{}, 0, err
	}
	archRaw, err := read(1)
	if err != nil {
		return localDefinitionState{}, 0, err
	}
	var arch binary.ByteOrder
	switch archRaw[0] {
	case 0:
		arch = binary.LittleEndian
	case 1:
		arch = binary.BigEndian
	default:
		return localDefinitionState{}, 0, trainerr.New(trainerr.KindFormat, fmt.Sprintf("invalid architecture byte %d", archRaw[0]))
	}

	globalBytes, err := read(2)
	if err != nil {
		return localDefinitionState{}, 0, err
	}
	globalMsgNum := arch.Uint16(globalBytes)

	numFieldsRaw, err := read(1)
	if err != nil {
		return localDefinitionState{}, 0, err
	}
	fields := make([]fieldDefState, 0, numFieldsRaw[0])
	for i := 0; i < int(numFieldsRaw[0]); i++ {
		raw, err := read(3)
		if err != nil {
			return localDefinitionState{}, 0, err
		}
		fields = append(fields, fieldDefState{
			fieldNumber: raw[0],
			size:        raw[1],
			base:        decompressBaseType(raw[2]),
		})
	}

	var devFields []devFieldDefState
	if headerByte&devDataMask == devDataMask {
		devCountRaw, err := read(1)
		if err != nil {
			return localDefinitionState{}, 0, err
		}
		devFields = make([]devFieldDefState, 0, devCountRaw[0])
		for i := 0; i < int(devCountRaw[0]); i++ {
			raw, err := read(3)
			if err != nil {
				return localDefinitionState{}, 0, err
			}
			devFields = append(devFields, devFieldDefState{
				fieldNumber:      raw[0],
				size:             raw[1],
				developerDataIdx: raw[2],
			})
		}
	}

	return localDefinitionState{
		localMessageType: local,
		globalMessageNum: globalMsgNum,
		arch:             arch,
		fields:           fields,
		devFields:        devFields,
	}, pos, nil
}

func (d *decodeState) parseDataMessage(idx, start, pos int, local uint8, def localDefinitionState, compressed bool) (Message, int, error) {
	read := func(n int) ([]byte, error) {
		if pos+n > len(d.payload) {
			return nil, trainerr.New(trainerr.KindFormat, "data record truncated")
		}
		out := d.payload[pos : pos+n]
		pos += n
		return out, nil
	}

	msg := Message{
		Kind:          kindForGlobal(def.globalMessageNum),
		GlobalMesgNum: def.globalMessageNum,
		LocalMesgNum:  local,
		RecordIndex:   idx,
		FileOffset:    int64(d.base + start),
		Fields:        make(map[uint8]Value, len(def.fields)),
	}

	if compressed {
		headerByte := d.payload[start]
		offset := headerByte & compressedTimeMask
		if d.lastTimestamp != 0 {
			to := int32(offset)
			d.lastTimestamp += uint32((to - d.lastTimeOffset) & int32(compressedTimeMask))
			d.lastTimeOffset = to
			ts := fitEpochToTime(d.lastTimestamp)
			msg.Timestamp = &ts
		}
	}

	for _, fd := range def.fields {
		raw, err := read(int(fd.size))
		if err != nil {
			return Message{}, 0, err
		}
		v := decodeValue(raw, fd.base, def.arch)
		msg.Fields[fd.fieldNumber] = v
		if fd.fieldNumber == fieldNumTimestamp && !v.Invalid {
			if ts, ok := toUint32(v.Raw); ok {
				d.lastTimestamp = ts
				d.lastTimeOffset = int32(ts & compressedTimeMask)
				t := fitEpochToTime(ts)
				msg.Timestamp = &t
			}
		}
	}

	if len(def.devFields) > 0 {
		msg.DevFields = make(map[DevFieldRef]Value, len(def.devFields))
		for _, ddf := range def.devFields {
			raw, err := read(int(ddf.size))
			if err != nil {
				return Message{}, 0, err
			}
			msg.DevFields[DevFieldRef{DeveloperDataIndex: ddf.developerDataIdx, FieldNumber: ddf.fieldNumber}] = Value{
				Raw:       append([]byte(nil), raw...),
				BigEndian: def.arch == binary.BigEndian,
			}
		}
	}

	return msg, pos, nil
}

func decodeValue(raw []byte, bt BaseType, arch binary.ByteOrder) Value {
	if bt == BaseString {
		s := decodeNullTerminatedString(raw)
		return Value{Raw: s, Invalid: s == "" && allBytes(raw, 0x00)}
	}
	if bt == BaseByte {
		return Value{Raw: append([]byte(nil), raw...), Invalid: allBytes(raw, 0xFF)}
	}

	spec, ok := baseSpecs[bt]
	if !ok || spec.size <= 0 || len(raw)%spec.size != 0 {
		return Value{Raw: append([]byte(nil), raw...), Invalid: true}
	}

	count := len(raw) / spec.size
	if count == 1 {
		v, invalid := decodeSingle(raw, bt, arch)
		return Value{Raw: v, Invalid: invalid}
	}
	values := make([]any, count)
	allInvalid := true
	for i := 0; i < count; i++ {
		v, invalid := decodeSingle(raw[i*spec.size:(i+1)*spec.size], bt, arch)
		values[i] = v
		if !invalid {
			allInvalid = false
		}
	}
	return Value{Raw: values, Invalid: allInvalid}
}

func decodeSingle(raw []byte, bt BaseType, arch binary.ByteOrder) (any, bool) {
	switch bt {
	case BaseEnum:
		v := raw[0]
		return v, v == 0xFF
	case BaseSint8:
		v := int8(raw[0])
		return v, v == 0x7F
	case BaseUint8, BaseUint8z:
		v := raw[0]
		return v, v == 0xFF || (bt == BaseUint8z && v == 0x00)
	case BaseSint16:
		v := int16(arch.Uint16(raw))
		return v, v == 0x7FFF
	case BaseUint16, BaseUint16z:
		v := arch.Uint16(raw)
		return v, v == 0xFFFF || (bt == BaseUint16z && v == 0x0000)
	case BaseSint32:
		v := int32(arch.Uint32(raw))
		return v, v == 0x7FFFFFFF
	case BaseUint32, BaseUint32z:
		v := arch.Uint32(raw)
		return v, v == 0xFFFFFFFF || (bt == BaseUint32z && v == 0x00000000)
	case BaseFloat32:
		bits := arch.Uint32(raw)
		return float64(math.Float32frombits(bits)), bits == 0xFFFFFFFF
	case BaseFloat64:
		bits := arch.Uint64(raw)
		return math.Float64frombits(bits), bits == 0xFFFFFFFFFFFFFFFF
	case BaseSint64:
		v := int64(arch.Uint64(raw))
		return v, v == 0x7FFFFFFFFFFFFFFF
	case BaseUint64, BaseUint64z:
		v := arch.Uint64(raw)
		return v, v == 0xFFFFFFFFFFFFFFFF || (bt == BaseUint64z && v == 0)
	default:
		return append([]byte(nil), raw...), false
	}
}

func toUint32(v any) (uint32, bool) {
	u, ok := v.(uint32)
	return u, ok
}

func decodeNullTerminatedString(raw []byte) string {
	if i := bytes.IndexByte(raw, 0x00); i >= 0 {
		return string(raw[:i])
	}
	return string(raw)
}

func allBytes(raw []byte, value byte) bool {
	if len(raw) == 0 {
		return false
	}
	for _, b := range raw {
		if b != value {
			return false
		}
	}
	return true
}

// fitEpochToTime converts a FIT 32-bit timestamp (seconds since the FIT
// epoch) to UTC time. The FIT epoch is 1989-12-31T00:00:00Z.
func fitEpochToTime(ts uint32) time.Time {
	return fitEpoch.Add(time.Duration(ts) * time.Second)
}

var fitEpoch = time.Date(1989, 12, 31, 0, 0, 0, 0, time.UTC)
