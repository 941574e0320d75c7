package binder

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/mcncl/jsonbind/internal/models"
)

type listCodec[T any] struct {
	elem Codec[T]
}

// List binds a JSON array to a slice. Elements are coerced one by one: an
// element that fails is dropped, unless the element codec is optional, in
// which case it becomes nil and keeps its index. A nil slice is omitted on
// output; an empty one is written as [].
func List[T any](elem Codec[T]) Codec[[]T] { return listCodec[T]{elem: elem} }

func (c listCodec[T]) Decode(v models.Value, s *Settings) ([]T, bool) {
	items, ok := v.Items()
	if !ok {
		return nil, false
	}
	out := make([]T, 0, len(items))
	keep := keepsSlot(c.elem)
	for i, item := range items {
		x, ok := c.elem.Decode(item, s.child(strconv.Itoa(i)))
		if ok {
			out = append(out, x)
			continue
		}
		if keep {
			var zero T
			out = append(out, zero)
			continue
		}
		s.Debug("element dropped", "index", i, "source", item.Kind())
	}
	return out, true
}

func (c listCodec[T]) Encode(x []T, s *Settings) (models.Value, bool) {
	if x == nil {
		return models.Value{}, false
	}
	return encodeElements(c.elem, x, s), true
}

func (c listCodec[T]) Kind() Kind       { return KindList }
func (c listCodec[T]) Describe() string { return "[]" + c.elem.Describe() }

func encodeElements[T any](elem Codec[T], xs []T, s *Settings) models.Value {
	out := make([]models.Value, 0, len(xs))
	keep := keepsSlot(elem)
	for i, x := range xs {
		v, ok := elem.Encode(x, s.child(strconv.Itoa(i)))
		if ok {
			out = append(out, v)
		} else if keep {
			out = append(out, models.NullValue())
		}
	}
	return models.ArrayValue(out...)
}

type setCodec[T comparable] struct {
	elem Codec[T]
}

// SetOf binds a JSON array to an insertion-ordered Set. Duplicates after
// coercion collapse into one element; failed elements are dropped.
func SetOf[T comparable](elem Codec[T]) Codec[*Set[T]] { return setCodec[T]{elem: elem} }

func (c setCodec[T]) Decode(v models.Value, s *Settings) (*Set[T], bool) {
	items, ok := v.Items()
	if !ok {
		return nil, false
	}
	out := NewSet[T]()
	keep := keepsSlot(c.elem)
	for i, item := range items {
		x, ok := c.elem.Decode(item, s.child(strconv.Itoa(i)))
		if !ok {
			if !keep {
				s.Debug("element dropped", "index", i, "source", item.Kind())
				continue
			}
			var zero T
			x = zero
		}
		out.Add(x)
	}
	return out, true
}

func (c setCodec[T]) Encode(x *Set[T], s *Settings) (models.Value, bool) {
	if x == nil {
		return models.Value{}, false
	}
	return encodeElements(c.elem, x.Values(), s), true
}

func (c setCodec[T]) Kind() Kind       { return KindSet }
func (c setCodec[T]) Describe() string { return "set<" + c.elem.Describe() + ">" }

type dictCodec[T any] struct {
	elem Codec[T]
}

// Dict binds a JSON object to a map. Entries that fail coercion are dropped.
// Keys are written in lexicographic order.
func Dict[T any](elem Codec[T]) Codec[map[string]T] { return dictCodec[T]{elem: elem} }

func (c dictCodec[T]) Decode(v models.Value, s *Settings) (map[string]T, bool) {
	members, ok := v.Members()
	if !ok {
		return nil, false
	}
	out := make(map[string]T, len(members))
	keep := keepsSlot(c.elem)
	for _, m := range members {
		x, ok := c.elem.Decode(m.Value, s.child(m.Key))
		if ok || keep {
			out[m.Key] = x
			continue
		}
		s.Debug("entry dropped", "key", m.Key, "source", m.Value.Kind())
	}
	return out, true
}

func (c dictCodec[T]) Encode(x map[string]T, s *Settings) (models.Value, bool) {
	if x == nil {
		return models.Value{}, false
	}
	keep := keepsSlot(c.elem)
	out := make([]models.Member, 0, len(x))
	for _, k := range slices.Sorted(maps.Keys(x)) {
		v, ok := c.elem.Encode(x[k], s.child(k))
		if !ok {
			if !keep {
				continue
			}
			v = models.NullValue()
		}
		out = append(out, models.Member{Key: k, Value: v})
	}
	return models.ObjectValue(out...), true
}

func (c dictCodec[T]) Kind() Kind { return KindMap }

func (c dictCodec[T]) Describe() string {
	return fmt.Sprintf("map<string,%s>", c.elem.Describe())
}

type optCodec[T any] struct {
	inner Codec[T]
}

// Opt makes a codec optional. JSON null decodes to nil, a nil value is
// omitted on output, and inside collections a failed element becomes nil
// instead of being dropped.
func Opt[T any](inner Codec[T]) Codec[*T] { return optCodec[T]{inner: inner} }

func (c optCodec[T]) Decode(v models.Value, s *Settings) (*T, bool) {
	if v.IsNull() {
		return nil, true
	}
	x, ok := c.inner.Decode(v, s)
	if !ok {
		return nil, false
	}
	return &x, true
}

func (c optCodec[T]) Encode(x *T, s *Settings) (models.Value, bool) {
	if x == nil {
		return models.Value{}, false
	}
	return c.inner.Encode(*x, s)
}

func (c optCodec[T]) Kind() Kind       { return KindOptional }
func (c optCodec[T]) Describe() string { return "optional<" + c.inner.Describe() + ">" }
func (c optCodec[T]) keepsSlot() bool  { return true }
