// Package models holds the generic JSON value tree shared by the parser,
// the path resolver, the binder and the renderer.
package models

import (
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

// String returns the JSON name of the kind.
func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// Member is a single key/value entry of a JSON object.
type Member struct {
	Key   string
	Value Value
}

// Value is an immutable JSON value. The zero Value is JSON null.
// Numbers keep their literal text so nothing is lost before coercion.
// Object members keep document order.
type Value struct {
	kind    Kind
	b       bool
	s       string // string contents or number literal
	items   []Value
	members []Member
}

// NullValue returns JSON null.
func NullValue() Value { return Value{} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: Bool, b: b} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: String, s: s} }

// NumberValue wraps a number literal as it appeared in the document.
// The literal is not validated; the parser only hands over valid ones.
func NumberValue(literal string) Value { return Value{kind: Number, s: literal} }

// NumberFromInt wraps an integer.
func NumberFromInt(i int64) Value { return NumberValue(strconv.FormatInt(i, 10)) }

// NumberFromUint wraps an unsigned integer.
func NumberFromUint(u uint64) Value { return NumberValue(strconv.FormatUint(u, 10)) }

// NumberFromFloat wraps a float using its shortest exact decimal form.
// f must be finite.
func NumberFromFloat(f float64) Value {
	return NumberValue(decimal.NewFromFloat(f).String())
}

// NumberFromDecimal wraps an arbitrary precision decimal.
func NumberFromDecimal(d decimal.Decimal) Value { return NumberValue(d.String()) }

// ArrayValue builds an array from the given items.
func ArrayValue(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: Array, items: items}
}

// ObjectValue builds an object from the given members, keeping their order.
func ObjectValue(members ...Member) Value {
	if members == nil {
		members = []Member{}
	}
	return Value{kind: Object, members: members}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is JSON null.
func (v Value) IsNull() bool { return v.kind == Null }

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == Bool
}

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) {
	if v.kind != String {
		return "", false
	}
	return v.s, true
}

// Literal returns the number literal held by v.
func (v Value) Literal() (string, bool) {
	if v.kind != Number {
		return "", false
	}
	return v.s, true
}

// AsDecimal parses the number held by v.
func (v Value) AsDecimal() (decimal.Decimal, bool) {
	if v.kind != Number {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(v.s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// Items returns the elements of an array. The slice must not be modified.
func (v Value) Items() ([]Value, bool) {
	if v.kind != Array {
		return nil, false
	}
	return v.items, true
}

// Members returns the members of an object in document order.
// The slice must not be modified.
func (v Value) Members() ([]Member, bool) {
	if v.kind != Object {
		return nil, false
	}
	return v.members, true
}

// Len returns the number of elements or members, and 0 for scalars.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.items)
	case Object:
		return len(v.members)
	default:
		return 0
	}
}

// Get looks up a key in an object. When a key repeats, the last one wins.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != Object {
		return Value{}, false
	}
	for i := len(v.members) - 1; i >= 0; i-- {
		if v.members[i].Key == key {
			return v.members[i].Value, true
		}
	}
	return Value{}, false
}

// Index returns the i-th element of an array.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != Array || i < 0 || i >= len(v.items) {
		return Value{}, false
	}
	return v.items[i], true
}

// Equal reports whether two values are structurally equal. Numbers compare by
// numeric value, so 1.0 equals 1. Object members compare in order.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Null:
		return true
	case Bool:
		return v.b == o.b
	case String:
		return v.s == o.s
	case Number:
		a, aok := v.AsDecimal()
		b, bok := o.AsDecimal()
		if !aok || !bok {
			return v.s == o.s
		}
		ac, ae := normalize(a)
		bc, be := normalize(b)
		return ae == be && ac.Cmp(bc) == 0
	case Array:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case Object:
		if len(v.members) != len(o.members) {
			return false
		}
		for i := range v.members {
			if v.members[i].Key != o.members[i].Key || !v.members[i].Value.Equal(o.members[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

// normalize strips trailing zeros from the coefficient of d, so equal numbers
// share one form whatever their exponents. Zero has exponent 0.
func normalize(d decimal.Decimal) (*big.Int, int64) {
	c := d.Coefficient()
	if c.Sign() == 0 {
		return c, 0
	}
	exp := int64(d.Exponent())
	q, r := new(big.Int), new(big.Int)
	for {
		q.QuoRem(c, ten, r)
		if r.Sign() != 0 {
			return c, exp
		}
		c, q = q, c
		exp++
	}
}

var ten = big.NewInt(10)

// IntermediateRepresentation is the parsed document handed from the parser to
// the binder.
type IntermediateRepresentation struct {
	Root        Value
	RootIsArray bool // True if the root of the JSON is an array vs an object
}
