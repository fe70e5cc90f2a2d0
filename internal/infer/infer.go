// Package infer assigns a single semantic type to every Dataset column by
// observing the parseability of its values.
//
// Promotion is column-wide and irreversible for the pass: a column is either
// fully promoted (values that fail to parse become null) or left as text.
// There is no per-row fallback to mixed types.
package infer

import (
	"math"
	"strconv"
	"strings"

	"sheetload/internal/dataset"
)

// NumericThreshold is the share of non-null values that must parse as
// numbers for a column to be promoted to a numeric kind. Fixed policy, not
// per-call configuration.
const NumericThreshold = 0.8

// Columns runs inference over every column of a cleaned Dataset, rewriting
// cell values in place and assigning each Column's Kind.
//
// Per column, in priority order:
//  1. temporal promotion when the resolved name contains "date" or "time"
//  2. boolean, when every non-null value is already a typed boolean
//  3. numeric promotion at NumericThreshold (integer when every parsed
//     value is a whole number with an exact int64 form, decimal otherwise)
//  4. text
func Columns(d *dataset.Dataset) {
	for c := range d.Columns {
		col := &d.Columns[c]

		if isTemporalName(col.Name) {
			promoteTemporal(d, c)
			col.Kind = dataset.KindTimestamp
			continue
		}
		if allBoolean(d, c) {
			col.Kind = dataset.KindBoolean
			continue
		}
		if kind, ok := tryNumeric(d, c); ok {
			col.Kind = kind
			continue
		}
		col.Kind = dataset.KindText
	}
}

// isTemporalName reports whether a resolved column name opts the column into
// temporal promotion.
func isTemporalName(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "date") || strings.Contains(n, "time")
}

// promoteTemporal rewrites every value of column c to a timestamp; values
// that cannot be interpreted become null.
func promoteTemporal(d *dataset.Dataset, c int) {
	for r := range d.Rows {
		v := d.Rows[r][c]
		switch v.Kind() {
		case dataset.KindNull, dataset.KindTimestamp:
			continue
		case dataset.KindText:
			if t, ok := parseTimeLoose(v.Str()); ok {
				d.Rows[r][c] = dataset.Timestamp(t)
			} else {
				d.Rows[r][c] = dataset.Null()
			}
		default:
			// Numeric or boolean cells in a date-named column carry no
			// usable calendar information.
			d.Rows[r][c] = dataset.Null()
		}
	}
}

// allBoolean reports whether column c has at least one value and every
// non-null value is a typed boolean.
func allBoolean(d *dataset.Dataset, c int) bool {
	seen := false
	for r := range d.Rows {
		v := d.Rows[r][c]
		if v.IsNull() {
			continue
		}
		if v.Kind() != dataset.KindBoolean {
			return false
		}
		seen = true
	}
	return seen
}

// tryNumeric attempts column-wide numeric promotion. It returns the
// resulting kind and whether promotion happened. On promotion, values that
// failed to parse are rewritten to null.
func tryNumeric(d *dataset.Dataset, c int) (dataset.Kind, bool) {
	nonNull := 0
	parsed := 0
	wholeOnly := true

	for r := range d.Rows {
		v := d.Rows[r][c]
		if v.IsNull() {
			continue
		}
		nonNull++
		n, ok := numericValue(v)
		if !ok {
			continue
		}
		parsed++
		if !n.exact {
			wholeOnly = false
		}
	}

	if nonNull == 0 || float64(parsed)/float64(nonNull) < NumericThreshold {
		return dataset.KindText, false
	}

	kind := dataset.KindDecimal
	if wholeOnly {
		kind = dataset.KindInteger
	}

	for r := range d.Rows {
		v := d.Rows[r][c]
		if v.IsNull() {
			continue
		}
		n, ok := numericValue(v)
		if !ok {
			d.Rows[r][c] = dataset.Null()
			continue
		}
		if kind == dataset.KindInteger {
			d.Rows[r][c] = dataset.Integer(n.i)
		} else {
			d.Rows[r][c] = dataset.Decimal(n.f)
		}
	}
	return kind, true
}

// number is one parsed numeric cell. i carries the value exactly when exact
// is true; f is always populated and may have lost precision for integers
// wider than float64's mantissa.
type number struct {
	i     int64
	f     float64
	exact bool
}

// maxExactFloat is the largest magnitude (2^53) at which float64 still
// represents every whole number exactly.
const maxExactFloat = 1 << 53

// numericValue interprets a cell as a number when possible. Typed integer
// and decimal cells always qualify; text cells qualify when they parse as an
// int64 or a float. Booleans and timestamps never qualify.
//
// Text integers go through strconv.ParseInt first so identifiers wider than
// float64's mantissa keep their exact value instead of rounding.
func numericValue(v dataset.Value) (number, bool) {
	switch v.Kind() {
	case dataset.KindInteger:
		return number{i: v.Int(), f: float64(v.Int()), exact: true}, true
	case dataset.KindDecimal:
		return floatNumber(v.Float()), true
	case dataset.KindText:
		s := strings.TrimSpace(v.Str())
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return number{i: i, f: float64(i), exact: true}, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return number{}, false
		}
		return floatNumber(f), true
	default:
		return number{}, false
	}
}

// floatNumber classifies a float payload. A whole value within float64's
// exact-integer range keeps an int64 form; anything fractional or wider
// stays float-only, which forces the decimal kind on the whole column.
func floatNumber(f float64) number {
	if f == math.Trunc(f) && math.Abs(f) <= maxExactFloat {
		return number{i: int64(f), f: f, exact: true}
	}
	return number{f: f}
}
