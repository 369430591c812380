// internal/tags/value.go
package tags

import (
	"cmp"
	"fmt"
	"math"
	"strconv"
)

// Kind identifies the type held by a Value.
type Kind uint8

// Kinds are ordered; values of a lower kind sort first.
const (
	KindBool Kind = iota
	KindInt
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a single tag value: a string, integer, float or boolean.
// Values are comparable and safe to use as map keys.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
}

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a floating point value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Bool returns a boolean value.
func Bool(b bool) Value {
	if b {
		return Value{kind: KindBool, i: 1}
	}
	return Value{kind: KindBool}
}

// ValueOf converts a Go value into a tag Value.
// It returns false for types that cannot be used as tag values. Unsigned
// integers above math.MaxInt64 become their decimal string.
func ValueOf(v any) (Value, bool) {
	switch x := v.(type) {
	case Value:
		return x, true
	case string:
		return String(x), true
	case bool:
		return Bool(x), true
	case int:
		return Int(int64(x)), true
	case int8:
		return Int(int64(x)), true
	case int16:
		return Int(int64(x)), true
	case int32:
		return Int(int64(x)), true
	case int64:
		return Int(x), true
	case uint:
		return unsigned(uint64(x)), true
	case uint8:
		return Int(int64(x)), true
	case uint16:
		return Int(int64(x)), true
	case uint32:
		return Int(int64(x)), true
	case uint64:
		return unsigned(x), true
	case uintptr:
		return unsigned(uint64(x)), true
	case float32:
		return Float(float64(x)), true
	case float64:
		return Float(x), true
	}
	return Value{}, false
}

func unsigned(x uint64) Value {
	if x > math.MaxInt64 {
		return String(strconv.FormatUint(x, 10))
	}
	return Int(int64(x))
}

// Kind reports the type of the value.
func (v Value) Kind() Kind { return v.kind }

// AsString returns the string payload; ok is false for other kinds.
func (v Value) AsString() (s string, ok bool) { return v.s, v.kind == KindString }

// AsInt returns the integer payload; ok is false for other kinds.
func (v Value) AsInt() (i int64, ok bool) { return v.i, v.kind == KindInt }

// AsFloat returns the float payload; ok is false for other kinds.
func (v Value) AsFloat() (f float64, ok bool) { return v.f, v.kind == KindFloat }

// AsBool returns the boolean payload; ok is false for other kinds.
func (v Value) AsBool() (b bool, ok bool) { return v.i == 1, v.kind == KindBool }

// Any returns the payload as a plain Go value.
func (v Value) Any() any {
	switch v.kind {
	case KindBool:
		return v.i == 1
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	}
	return v.s
}

func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.i == 1)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	}
	return v.s
}

// GoString renders strings quoted so %#v output is unambiguous.
func (v Value) GoString() string {
	if v.kind == KindString {
		return fmt.Sprintf("%q", v.s)
	}
	return v.String()
}

// compare orders values by kind, then by payload.
func compare(a, b Value) int {
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}
	switch a.kind {
	case KindBool, KindInt:
		switch {
		case a.i < b.i:
			return -1
		case a.i > b.i:
			return 1
		}
		return 0
	case KindFloat:
		// NaN sorts before every other float and equals only NaN
		return cmp.Compare(a.f, b.f)
	}
	switch {
	case a.s < b.s:
		return -1
	case a.s > b.s:
		return 1
	}
	return 0
}
