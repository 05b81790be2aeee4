// Package trainerr defines the typed error taxonomy shared across the
// decode, validate, and metric-engine packages.
package trainerr

import (
	"errors"
	"fmt"
)

// Kind classifies an Error per the propagation policy: parse-level errors
// surface to the batch boundary, range warnings are collected alongside the
// session, and missing-input fallbacks never produce an Error at all (they
// are recorded as quality flags instead).
type Kind int

const (
	// KindFormat: header malformed, protocol unsupported, truncated payload.
	KindFormat Kind = iota
	// KindIntegrity: CRC mismatch (header or payload).
	KindIntegrity
	// KindReference: undefined local definition, or unknown developer-data index.
	KindReference
	// KindRange: sample-stream validation failure. The validator returns it
	// for out-of-order sample times in either mode; out-of-bounds sensor
	// values are flagged or removed, not returned as errors.
	KindRange
	// KindConfig: catalog load failure (duplicate key, unknown quirk kind, bad scale).
	KindConfig
	// KindCancelled: caller-initiated cancellation.
	KindCancelled
	// KindInternal: anything that should never happen.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindFormat:
		return "format"
	case KindIntegrity:
		return "integrity"
	case KindReference:
		return "reference"
	case KindRange:
		return "range"
	case KindConfig:
		return "config"
	case KindCancelled:
		return "cancelled"
	default:
		return "internal"
	}
}

// Error is a structured error carrying the context required by §7: file
// path, byte offset, session id, and sample index, any of which may be
// zero-valued when not applicable.
type Error struct {
	Kind       Kind
	File       string
	ByteOffset int64
	SessionID  string
	SampleIdx  int
	Msg        string
	Err        error
}

func (e *Error) Error() string {
	s := fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	if e.File != "" {
		s += fmt.Sprintf(" (file=%s", e.File)
		if e.ByteOffset > 0 {
			s += fmt.Sprintf(" offset=%d", e.ByteOffset)
		}
		s += ")"
	}
	if e.SessionID != "" {
		s += fmt.Sprintf(" [session=%s]", e.SessionID)
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds an Error of the given kind wrapping err.
func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// WithFile attaches file/offset context and returns the same *Error for chaining.
func (e *Error) WithFile(path string, offset int64) *Error {
	e.File = path
	e.ByteOffset = offset
	return e
}

// WithSession attaches session context and returns the same *Error for chaining.
func (e *Error) WithSession(id string) *Error {
	e.SessionID = id
	return e
}

// WithSample attaches a sample index and returns the same *Error for chaining.
func (e *Error) WithSample(idx int) *Error {
	e.SampleIdx = idx
	return e
}

// Is reports whether err is a trainerr *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
