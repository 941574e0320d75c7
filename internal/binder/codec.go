package binder

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/mcncl/jsonbind/internal/models"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/constraints"
)

// Kind is the declared value kind of a field.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
	KindFloat
	KindEnum
	KindDate
	KindList
	KindSet
	KindMap
	KindRecord
	KindOptional
	KindAny
)

var kindNames = map[Kind]string{
	KindString:   "string",
	KindBool:     "bool",
	KindInt:      "int",
	KindFloat:    "float",
	KindEnum:     "enum",
	KindDate:     "date",
	KindList:     "list",
	KindSet:      "set",
	KindMap:      "map",
	KindRecord:   "record",
	KindOptional: "optional",
	KindAny:      "any",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Codec converts between JSON values and values of type T.
//
// Decode reports false when v cannot be coerced; the caller then leaves the
// destination untouched. Encode reports false when x has nothing to emit,
// such as a nil optional, and the key is omitted.
type Codec[T any] interface {
	Decode(v models.Value, s *Settings) (T, bool)
	Encode(x T, s *Settings) (models.Value, bool)
	Kind() Kind
	Describe() string
}

// inPlaceDecoder is implemented by codecs that update an existing value
// instead of producing a fresh one.
type inPlaceDecoder[T any] interface {
	DecodeInto(v models.Value, dst *T, s *Settings) bool
}

// slotKeeper marks element codecs whose failures keep their position in a
// collection as the zero value instead of being dropped.
type slotKeeper interface {
	keepsSlot() bool
}

func keepsSlot(c any) bool {
	k, ok := c.(slotKeeper)
	return ok && k.keepsSlot()
}

const (
	// maxIntegerDigits is the widest integer part a 64-bit integer can hold.
	maxIntegerDigits = 20
	// maxExpandedExponent bounds the exponents canonical writes out in full.
	maxExpandedExponent = 64
)

// numericText returns the literal of a number, or the trimmed text of a
// string.
func numericText(v models.Value) (string, bool) {
	switch v.Kind() {
	case models.Number:
		return v.Literal()
	case models.String:
		s, _ := v.AsString()
		return strings.TrimSpace(s), true
	default:
		return "", false
	}
}

// numeric extracts a decimal from a number, or from a string holding numeric
// text.
func numeric(v models.Value) (decimal.Decimal, bool) {
	text, ok := numericText(v)
	if !ok {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// integerDigits counts the digits left of the decimal point of a non-zero d
// without expanding its exponent. Values below one give zero or less.
func integerDigits(d decimal.Decimal) int64 {
	return int64(d.NumDigits()) + int64(d.Exponent())
}

// canonical renders a scalar as text: numbers in their shortest decimal form,
// booleans as true/false. Numbers whose exponent is too large to write out
// keep their literal.
func canonical(v models.Value) (string, bool) {
	switch v.Kind() {
	case models.String:
		return v.AsString()
	case models.Number:
		d, ok := v.AsDecimal()
		if !ok {
			return "", false
		}
		if d.IsZero() {
			return "0", true
		}
		if e := d.Exponent(); e > maxExpandedExponent || e < -maxExpandedExponent {
			return v.Literal()
		}
		return d.String(), true
	case models.Bool:
		b, _ := v.AsBool()
		return strconv.FormatBool(b), true
	default:
		return "", false
	}
}

type stringCodec struct{}

// Str binds strings. Numbers and booleans are accepted and stored as text.
func Str() Codec[string] { return stringCodec{} }

func (stringCodec) Decode(v models.Value, _ *Settings) (string, bool) { return canonical(v) }

func (stringCodec) Encode(x string, _ *Settings) (models.Value, bool) {
	return models.StringValue(x), true
}

func (stringCodec) Kind() Kind       { return KindString }
func (stringCodec) Describe() string { return "string" }

type boolCodec struct{}

// Bool binds booleans. Strings accepted by strconv.ParseBool and numbers
// (zero is false) are coerced.
func Bool() Codec[bool] { return boolCodec{} }

func (boolCodec) Decode(v models.Value, _ *Settings) (bool, bool) {
	switch v.Kind() {
	case models.Bool:
		return v.AsBool()
	case models.String:
		s, _ := v.AsString()
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return false, false
		}
		return b, true
	case models.Number:
		d, ok := v.AsDecimal()
		if !ok {
			return false, false
		}
		return !d.IsZero(), true
	default:
		return false, false
	}
}

func (boolCodec) Encode(x bool, _ *Settings) (models.Value, bool) {
	return models.BoolValue(x), true
}

func (boolCodec) Kind() Kind       { return KindBool }
func (boolCodec) Describe() string { return "bool" }

type intCodec[T constraints.Integer] struct{}

// Int binds integers of any width. Numeric strings are parsed, fractions are
// truncated toward zero, and values outside the range of T are rejected.
func Int[T constraints.Integer]() Codec[T] { return intCodec[T]{} }

func (intCodec[T]) Decode(v models.Value, _ *Settings) (T, bool) {
	d, ok := numeric(v)
	if !ok {
		return 0, false
	}
	return toInteger[T](d)
}

func (intCodec[T]) Encode(x T, _ *Settings) (models.Value, bool) {
	if isSigned[T]() {
		return models.NumberFromInt(int64(x)), true
	}
	return models.NumberFromUint(uint64(x)), true
}

func (intCodec[T]) Kind() Kind { return KindInt }

func (intCodec[T]) Describe() string {
	var zero T
	return fmt.Sprintf("%T", zero)
}

func isSigned[T constraints.Integer]() bool {
	var zero T
	return zero-1 < zero
}

func toInteger[T constraints.Integer](d decimal.Decimal) (T, bool) {
	if d.IsZero() {
		return 0, true
	}
	switch digits := integerDigits(d); {
	case digits <= 0:
		return 0, true
	case digits > maxIntegerDigits:
		return 0, false
	}
	n := d.Truncate(0).BigInt()
	if isSigned[T]() {
		if !n.IsInt64() {
			return 0, false
		}
		i := n.Int64()
		t := T(i)
		if int64(t) != i {
			return 0, false
		}
		return t, true
	}
	if !n.IsUint64() {
		return 0, false
	}
	u := n.Uint64()
	t := T(u)
	if uint64(t) != u {
		return 0, false
	}
	return t, true
}

type floatCodec[T constraints.Float] struct{}

// Float binds floating point numbers. Numeric strings are parsed; values that
// overflow T are rejected. NaN and infinities are never emitted.
func Float[T constraints.Float]() Codec[T] { return floatCodec[T]{} }

func (floatCodec[T]) Decode(v models.Value, _ *Settings) (T, bool) {
	if _, ok := numeric(v); !ok {
		return 0, false
	}
	text, _ := numericText(v)
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	t := T(f)
	if math.IsInf(float64(t), 0) || math.IsNaN(float64(t)) {
		return 0, false
	}
	return t, true
}

func (floatCodec[T]) Encode(x T, _ *Settings) (models.Value, bool) {
	f := float64(x)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return models.Value{}, false
	}
	if reflect.TypeFor[T]().Kind() == reflect.Float32 {
		return models.NumberFromDecimal(decimal.NewFromFloat32(float32(x))), true
	}
	return models.NumberFromFloat(f), true
}

func (floatCodec[T]) Kind() Kind { return KindFloat }

func (floatCodec[T]) Describe() string {
	var zero T
	return fmt.Sprintf("%T", zero)
}

type anyCodec struct{}

// Any keeps the JSON value as it is, without coercion.
func Any() Codec[models.Value] { return anyCodec{} }

func (anyCodec) Decode(v models.Value, _ *Settings) (models.Value, bool) { return v, true }

func (anyCodec) Encode(x models.Value, _ *Settings) (models.Value, bool) { return x, true }

func (anyCodec) Kind() Kind       { return KindAny }
func (anyCodec) Describe() string { return "any" }
