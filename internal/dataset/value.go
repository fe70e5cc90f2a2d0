package dataset

import (
	"strconv"
	"time"
)

// Kind is the semantic type of a Value or of a whole Column after inference.
type Kind uint8

const (
	KindNull Kind = iota
	KindText
	KindInteger
	KindDecimal
	KindBoolean
	KindTimestamp
)

// String returns the lowercase name used in logs and summaries.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "decimal"
	case KindBoolean:
		return "boolean"
	case KindTimestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}

// Value is a tagged variant holding one cell of a Dataset.
//
// Readers produce values in whatever kind the source format preserves
// (spreadsheet cells arrive typed, CSV cells arrive as text); the inference
// pass rewrites whole columns into a single kind. Inspecting the tag is
// always preferred over runtime type switching on an `any`.
type Value struct {
	kind Kind

	s string
	i int64
	f float64
	b bool
	t time.Time
}

// Null returns the null Value. The zero Value is also null.
func Null() Value { return Value{} }

// Text wraps a string cell.
func Text(s string) Value { return Value{kind: KindText, s: s} }

// Integer wraps an int64 cell.
func Integer(i int64) Value { return Value{kind: KindInteger, i: i} }

// Decimal wraps a float64 cell.
func Decimal(f float64) Value { return Value{kind: KindDecimal, f: f} }

// Boolean wraps a bool cell.
func Boolean(b bool) Value { return Value{kind: KindBoolean, b: b} }

// Timestamp wraps a time.Time cell.
func Timestamp(t time.Time) Value { return Value{kind: KindTimestamp, t: t} }

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is absent.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the text payload. Valid only for KindText.
func (v Value) Str() string { return v.s }

// Int returns the integer payload. Valid only for KindInteger.
func (v Value) Int() int64 { return v.i }

// Float returns the decimal payload. Valid only for KindDecimal.
func (v Value) Float() float64 { return v.f }

// Bool returns the boolean payload. Valid only for KindBoolean.
func (v Value) Bool() bool { return v.b }

// Time returns the timestamp payload. Valid only for KindTimestamp.
func (v Value) Time() time.Time { return v.t }

// Bind converts the value into a driver-bindable argument. Null becomes nil.
func (v Value) Bind() any {
	switch v.kind {
	case KindText:
		return v.s
	case KindInteger:
		return v.i
	case KindDecimal:
		return v.f
	case KindBoolean:
		return v.b
	case KindTimestamp:
		return v.t
	default:
		return nil
	}
}

// canonical returns a stable string form used for duplicate-row detection.
// The kind tag is folded in so Text("1") and Integer(1) do not collide.
func (v Value) canonical() string {
	switch v.kind {
	case KindText:
		return "s:" + v.s
	case KindInteger:
		return "i:" + strconv.FormatInt(v.i, 10)
	case KindDecimal:
		return "f:" + strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBoolean:
		if v.b {
			return "b:true"
		}
		return "b:false"
	case KindTimestamp:
		return "t:" + v.t.UTC().Format(time.RFC3339Nano)
	default:
		return ""
	}
}
