package frame

import (
	"strconv"
	"strings"
)

// ValueKind discriminates the cell types a Frame can hold.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindNumber
	KindString
	KindBool
)

// Value is a single cell. The zero value is null.
type Value struct {
	kind ValueKind
	num  float64
	str  string
	b    bool
}

// Null returns the null value.
func Null() Value {
	return Value{}
}

// Num returns a numeric value.
func Num(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Str returns a string value.
func Str(s string) Value {
	return Value{kind: KindString, str: s}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Kind reports the value's kind.
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Number returns the numeric payload. ok is false for non-numeric values.
func (v Value) Number() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Text returns the string payload. ok is false for non-string values.
func (v Value) Text() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// Boolean returns the bool payload. ok is false for non-bool values.
func (v Value) Boolean() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// Key renders a canonical string form used for grouping and equality.
// Integral numbers render without a fractional part, so a numeric wave 1.0
// and a string wave "1" group together.
func (v Value) Key() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindString:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.b)
	}
	return ""
}

// String implements fmt.Stringer for display purposes.
func (v Value) String() string {
	if v.kind == KindNull {
		return "<null>"
	}
	return v.Key()
}

// IsMissingToken reports whether a raw string denotes a missing response.
// Empty strings and the literal tokens NA, NAN, NULL (case-insensitive,
// whitespace-trimmed) all count as missing.
func IsMissingToken(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NA", "NAN", "NULL":
		return true
	}
	return false
}

// CoerceNumber converts a value to numeric. Missing-like values become null
// without being counted as failures; unparseable non-missing strings become
// null with failed=true. Booleans coerce to 0/1.
func CoerceNumber(v Value) (out Value, failed bool) {
	switch v.kind {
	case KindNull:
		return Null(), false
	case KindNumber:
		return v, false
	case KindBool:
		if v.b {
			return Num(1), false
		}
		return Num(0), false
	case KindString:
		if IsMissingToken(v.str) {
			return Null(), false
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return Null(), true
		}
		return Num(f), false
	}
	return Null(), true
}
