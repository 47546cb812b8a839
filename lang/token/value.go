package token

import (
	"math"
	"strconv"
	"strings"
)

// Flags record how a numeric payload was derived and how it should be
// reinterpreted.
type Flags uint8

const (
	// Float marks a decimal literal with a fractional part.
	Float Flags = 1 << iota

	// Hex marks an unsigned integer written with a 0x prefix. Hex excludes
	// Float.
	Hex

	// RequiresFloat64 marks a literal that exceeded the precision of its
	// 32-bit or 16-hex-digit representation. It is informational only and
	// does not change how the payload was accumulated.
	RequiresFloat64
)

// Has reports whether all bits of f2 are set in f.
func (f Flags) Has(f2 Flags) bool { return f&f2 == f2 }

// String returns the set flags joined by "|".
func (f Flags) String() string {
	if f == 0 {
		return "none"
	}

	part := make([]string, 0, 3)

	if f.Has(Float) {
		part = append(part, "float")
	}

	if f.Has(Hex) {
		part = append(part, "hex")
	}

	if f.Has(RequiresFloat64) {
		part = append(part, "float64")
	}

	return strings.Join(part, "|")
}

// ValueKind selects the active member of a [Value].
type ValueKind uint8

const (
	ValueNone ValueKind = iota
	ValueInt
	ValueUint
	ValueFloat32
	ValueFloat64
	ValueString
	ValueBool
)

// String returns the name of the value kind.
func (k ValueKind) String() string {
	switch k {
	case ValueInt:
		return "int"

	case ValueUint:
		return "uint"

	case ValueFloat32:
		return "float32"

	case ValueFloat64:
		return "float64"

	case ValueString:
		return "string"

	case ValueBool:
		return "bool"

	default:
		return "none"
	}
}

// Value is a tagged payload: a kind selecting which member is active, the
// numeric flags, and the storage. Numeric and boolean members share bits.
type Value struct {
	str   string
	bits  uint64
	kind  ValueKind
	flags Flags
}

// IntValue returns a signed integer value.
func IntValue(v int64) Value {
	return Value{kind: ValueInt, bits: uint64(v)}
}

// UintValue returns an unsigned integer value with the given flags.
func UintValue(v uint64, flags Flags) Value {
	return Value{kind: ValueUint, bits: v, flags: flags}
}

// Float32Value returns a 32-bit float value with the given flags.
func Float32Value(v float32, flags Flags) Value {
	return Value{
		kind:  ValueFloat32,
		bits:  uint64(math.Float32bits(v)),
		flags: flags,
	}
}

// Float64Value returns a 64-bit float value with the given flags.
func Float64Value(v float64, flags Flags) Value {
	return Value{kind: ValueFloat64, bits: math.Float64bits(v), flags: flags}
}

// StringValue returns a string value.
func StringValue(s string) Value {
	return Value{kind: ValueString, str: s}
}

// BoolValue returns a boolean value.
func BoolValue(b bool) Value {
	v := Value{kind: ValueBool}
	if b {
		v.bits = 1
	}

	return v
}

// Kind returns the active member.
func (v Value) Kind() ValueKind { return v.kind }

// Flags returns the numeric flags.
func (v Value) Flags() Flags { return v.flags }

// IsNumber reports whether the active member is numeric.
func (v Value) IsNumber() bool {
	switch v.kind {
	case ValueInt, ValueUint, ValueFloat32, ValueFloat64:
		return true

	default:
		return false
	}
}

// Int64 converts a numeric payload to int64. Floats truncate toward zero.
func (v Value) Int64() int64 {
	switch v.kind {
	case ValueInt, ValueUint:
		return int64(v.bits)

	case ValueFloat32:
		return int64(math.Float32frombits(uint32(v.bits)))

	case ValueFloat64:
		return int64(math.Float64frombits(v.bits))

	case ValueBool:
		return int64(v.bits)

	default:
		return 0
	}
}

// Uint64 converts a numeric payload to uint64.
func (v Value) Uint64() uint64 {
	if v.kind == ValueUint {
		return v.bits
	}

	return uint64(v.Int64())
}

// Float64 converts a numeric payload to float64.
func (v Value) Float64() float64 {
	switch v.kind {
	case ValueInt:
		return float64(int64(v.bits))

	case ValueUint:
		return float64(v.bits)

	case ValueFloat32:
		return float64(math.Float32frombits(uint32(v.bits)))

	case ValueFloat64:
		return math.Float64frombits(v.bits)

	default:
		return 0
	}
}

// Float32 converts a numeric payload to float32.
func (v Value) Float32() float32 {
	if v.kind == ValueFloat32 {
		return math.Float32frombits(uint32(v.bits))
	}

	return float32(v.Float64())
}

// Str returns the string payload, or "" if the value is not a string.
func (v Value) Str() string { return v.str }

// Bool returns the boolean payload.
func (v Value) Bool() bool { return v.kind == ValueBool && v.bits != 0 }

// Any returns the active member as a native Go value.
func (v Value) Any() any {
	switch v.kind {
	case ValueInt:
		return int64(v.bits)

	case ValueUint:
		return v.bits

	case ValueFloat32:
		return math.Float32frombits(uint32(v.bits))

	case ValueFloat64:
		return math.Float64frombits(v.bits)

	case ValueString:
		return v.str

	case ValueBool:
		return v.bits != 0

	default:
		return nil
	}
}

// String formats the value the way it would be written in source.
// Strings are quoted verbatim without escaping.
func (v Value) String() string {
	switch v.kind {
	case ValueInt:
		return strconv.FormatInt(int64(v.bits), 10)

	case ValueUint:
		if v.flags.Has(Hex) {
			return "0x" + strings.ToUpper(strconv.FormatUint(v.bits, 16))
		}

		return strconv.FormatUint(v.bits, 10)

	case ValueFloat32:
		return formatFloat(float64(math.Float32frombits(uint32(v.bits))), 32)

	case ValueFloat64:
		return formatFloat(math.Float64frombits(v.bits), 64)

	case ValueString:
		return `"` + v.str + `"`

	case ValueBool:
		return strconv.FormatBool(v.bits != 0)

	default:
		return ""
	}
}

// formatFloat always includes a decimal point so the literal reads back as a
// float.
func formatFloat(f float64, bitSize int) string {
	s := strconv.FormatFloat(f, 'f', -1, bitSize)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}

	return s
}
