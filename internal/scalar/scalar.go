// Package scalar implements the fixed-point decimal scalar used for every
// externally-visible metric in the training-load engines.
package scalar

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultPrecision is the fractional-digit count used when a caller does not
// specify one explicitly.
const DefaultPrecision = 4

func init() {
	decimal.DivisionPrecision = 34
}

// D is a fixed-point decimal value with at least 28 significant digits.
// It wraps decimal.Decimal and fixes the rounding mode to banker's rounding
// (round-half-to-even) everywhere a D is produced from a non-exact operation.
type D struct {
	v decimal.Decimal
}

// Zero is the additive identity.
var Zero = D{v: decimal.Zero}

// New builds a D from a string, returning an error on malformed input.
func New(s string) (D, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return D{}, fmt.Errorf("scalar: parse %q: %w", s, err)
	}
	return D{v: v}, nil
}

// MustNew is New but panics on error; intended for literals in tests and
// table initializers, never for untrusted input.
func MustNew(s string) D {
	d, err := New(s)
	if err != nil {
		panic(err)
	}
	return d
}

// FromInt builds an exact D from an integer.
func FromInt(i int64) D {
	return D{v: decimal.NewFromInt(i)}
}

// FromFloat builds a D from a float64, rounded to prec fractional digits
// using banker's rounding. Use this only at the boundary where a raw sensor
// value or a local floating-point computation (fourth-root, exponential
// decay) must re-enter D-space.
func FromFloat(f float64, prec int32) D {
	return D{v: decimal.NewFromFloat(f).RoundBank(prec)}
}

// Float64 returns the nearest float64 representation, for use inside a
// single local computation that will be rounded back into D immediately.
func (d D) Float64() float64 {
	f, _ := d.v.Float64()
	return f
}

// Add returns d + o, exact.
func (d D) Add(o D) D { return D{v: d.v.Add(o.v)} }

// Sub returns d - o, exact.
func (d D) Sub(o D) D { return D{v: d.v.Sub(o.v)} }

// Mul returns d * o, exact.
func (d D) Mul(o D) D { return D{v: d.v.Mul(o.v)} }

// Div returns d / o rounded to prec fractional digits with banker's
// rounding. Division by zero returns Zero and ok=false; callers that need
// exact division-by-zero semantics should check o.IsZero() first.
func (d D) Div(o D, prec int32) (result D, ok bool) {
	if o.v.IsZero() {
		return Zero, false
	}
	return D{v: d.v.Div(o.v).RoundBank(prec)}, true
}

// Neg returns -d.
func (d D) Neg() D { return D{v: d.v.Neg()} }

// Abs returns |d|.
func (d D) Abs() D { return D{v: d.v.Abs()} }

// Round rounds d to prec fractional digits using banker's rounding.
func (d D) Round(prec int32) D { return D{v: d.v.RoundBank(prec)} }

// Cmp compares d and o: -1, 0, 1.
func (d D) Cmp(o D) int { return d.v.Cmp(o.v) }

// LessThan reports whether d < o.
func (d D) LessThan(o D) bool { return d.v.LessThan(o.v) }

// GreaterThan reports whether d > o.
func (d D) GreaterThan(o D) bool { return d.v.GreaterThan(o.v) }

// IsZero reports whether d is exactly zero.
func (d D) IsZero() bool { return d.v.IsZero() }

// IsNegative reports whether d < 0.
func (d D) IsNegative() bool { return d.v.IsNegative() }

// Min returns the smaller of d and o.
func Min(d, o D) D {
	if d.LessThan(o) {
		return d
	}
	return o
}

// Max returns the larger of d and o.
func Max(d, o D) D {
	if d.GreaterThan(o) {
		return d
	}
	return o
}

// Sum adds a slice of D values left to right, exact.
func Sum(ds []D) D {
	total := Zero
	for _, d := range ds {
		total = total.Add(d)
	}
	return total
}

// String renders d at its natural (minimal) precision.
func (d D) String() string { return d.v.String() }

// StringFixed renders d with exactly prec fractional digits.
func (d D) StringFixed(prec int32) string { return d.v.StringFixed(prec) }

// MarshalJSON renders d as a JSON number with no quoting, matching the
// external "collaborator-facing output" contract for D-typed metrics.
func (d D) MarshalJSON() ([]byte, error) { return d.v.MarshalJSON() }

// UnmarshalJSON parses a JSON number into d.
func (d *D) UnmarshalJSON(b []byte) error { return d.v.UnmarshalJSON(b) }

// Value implements driver.Valuer for storage in internal/store.
func (d D) Value() (driver.Value, error) { return d.v.Value() }

// Scan implements sql.Scanner for retrieval from internal/store.
func (d *D) Scan(v any) error { return d.v.Scan(v) }
