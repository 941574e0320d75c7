package binder

import (
	"strings"

	"github.com/mcncl/jsonbind/internal/models"
	"golang.org/x/exp/constraints"
)

type stringEnumCodec[E ~string] struct {
	cases []E
	valid map[E]struct{}
}

// Enum binds a fixed-choice string type. The raw JSON value is the case's
// string form; numbers are matched by their canonical text. Unknown raw
// values never bind.
//
//	type AnimalType string
//	binder.Enum(Cat, Dog, Bird)
func Enum[E ~string](cases ...E) Codec[E] {
	c := stringEnumCodec[E]{cases: cases, valid: make(map[E]struct{}, len(cases))}
	for _, e := range cases {
		c.valid[e] = struct{}{}
	}
	return c
}

func (c stringEnumCodec[E]) Decode(v models.Value, _ *Settings) (E, bool) {
	raw, ok := canonical(v)
	if !ok {
		return "", false
	}
	e := E(raw)
	if _, ok := c.valid[e]; !ok {
		return "", false
	}
	return e, true
}

func (c stringEnumCodec[E]) Encode(x E, _ *Settings) (models.Value, bool) {
	if _, ok := c.valid[x]; !ok {
		return models.Value{}, false
	}
	return models.StringValue(string(x)), true
}

func (c stringEnumCodec[E]) Kind() Kind { return KindEnum }

func (c stringEnumCodec[E]) Describe() string {
	names := make([]string, len(c.cases))
	for i, e := range c.cases {
		names[i] = string(e)
	}
	return "enum(" + strings.Join(names, "|") + ")"
}

type intEnumCodec[E constraints.Integer] struct {
	cases []E
	valid map[E]struct{}
}

// IntEnum binds a fixed-choice integer type whose raw JSON value is a number.
// Numeric strings are accepted.
func IntEnum[E constraints.Integer](cases ...E) Codec[E] {
	c := intEnumCodec[E]{cases: cases, valid: make(map[E]struct{}, len(cases))}
	for _, e := range cases {
		c.valid[e] = struct{}{}
	}
	return c
}

func (c intEnumCodec[E]) Decode(v models.Value, s *Settings) (E, bool) {
	d, ok := numeric(v)
	if !ok {
		return 0, false
	}
	e, ok := toInteger[E](d)
	if !ok || !d.IsZero() && !d.IsInteger() {
		return 0, false
	}
	if _, ok := c.valid[e]; !ok {
		return 0, false
	}
	return e, true
}

func (c intEnumCodec[E]) Encode(x E, s *Settings) (models.Value, bool) {
	if _, ok := c.valid[x]; !ok {
		return models.Value{}, false
	}
	return intCodec[E]{}.Encode(x, s)
}

func (c intEnumCodec[E]) Kind() Kind { return KindEnum }

func (c intEnumCodec[E]) Describe() string {
	names := make([]string, len(c.cases))
	for i, e := range c.cases {
		// raw numbers, not whatever a String method on E would print
		v, _ := intCodec[E]{}.Encode(e, nil)
		names[i], _ = v.Literal()
	}
	return "enum(" + strings.Join(names, "|") + ")"
}
