package binder

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/mcncl/jsonbind/internal/models"
)

// Record is implemented by types the binder can fill and serialize. Fields
// returns the bindable fields in declaration order, each pointing into the
// receiver:
//
//	func (j *Job) Fields() []binder.Descriptor {
//		return []binder.Descriptor{
//			binder.Field("name", &j.Name, binder.Str()),
//			binder.Field("salary", &j.Salary, binder.Int[int]()),
//		}
//	}
//
// The set of fields, their keys and kinds must not depend on the instance.
type Record interface {
	Fields() []Descriptor
}

// bindRecord fills rec from obj, field by field. Nothing here can fail: a
// field whose key is missing or whose value cannot be coerced keeps its
// current value (or takes its default).
func bindRecord(rec Record, obj models.Value, s *Settings) {
	for _, d := range rec.Fields() {
		key := s.keyFor(d)
		v, present := obj.Get(key)
		d.bind(v, present, s.child(key))
	}
}

// serializeRecord walks rec's fields in declaration order. Fields with nothing
// to emit are omitted; when two fields share a key only the first one
// written is kept.
func serializeRecord(rec Record, s *Settings) models.Value {
	fields := rec.Fields()
	members := make([]models.Member, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, d := range fields {
		key := s.keyFor(d)
		if _, dup := seen[key]; dup {
			s.child(key).Debug("duplicate key ignored", "name", d.Name())
			continue
		}
		v, ok := d.emit(s.child(key))
		if !ok {
			continue
		}
		seen[key] = struct{}{}
		members = append(members, models.Member{Key: key, Value: v})
	}
	return models.ObjectValue(members...)
}

type recordCodec[R any, P interface {
	*R
	Record
}] struct{}

// Nested binds a JSON object to a record type R whose pointer implements
// Record. Existing values are updated in place, so keys missing from the
// object leave the nested fields as they were.
//
//	binder.Field("job", &p.Jobs, binder.List(binder.Nested[Job]()))
func Nested[R any, P interface {
	*R
	Record
}]() Codec[R] {
	return recordCodec[R, P]{}
}

func (recordCodec[R, P]) Decode(v models.Value, s *Settings) (R, bool) {
	var r R
	if v.Kind() != models.Object {
		return r, false
	}
	bindRecord(P(&r), v, s)
	return r, true
}

func (recordCodec[R, P]) DecodeInto(v models.Value, dst *R, s *Settings) bool {
	if v.Kind() != models.Object {
		return false
	}
	bindRecord(P(dst), v, s)
	return true
}

func (recordCodec[R, P]) Encode(x R, s *Settings) (models.Value, bool) {
	return serializeRecord(P(&x), s), true
}

func (recordCodec[R, P]) Kind() Kind { return KindRecord }

func (recordCodec[R, P]) Describe() string {
	return reflect.TypeFor[R]().String()
}

// FieldInfo is the metadata of one registered field.
type FieldInfo struct {
	Name     string
	Key      string // explicit key, or the declared name
	Explicit bool   // Key was set with As
	Kind     Kind
	Type     string
	Optional bool
}

func (fi FieldInfo) String() string {
	return fmt.Sprintf("%s (%s) %s", fi.Key, fi.Kind, fi.Type)
}

// describeCache holds field metadata per record type. Entries are only ever
// added, so readers never need a lock.
var describeCache sync.Map // reflect.Type -> []FieldInfo

// Describe returns the metadata of rec's fields in declaration order. The
// result is computed once per Go type and cached.
func Describe(rec Record) []FieldInfo {
	t := reflect.TypeOf(rec)
	if cached, ok := describeCache.Load(t); ok {
		return cloneInfos(cached.([]FieldInfo))
	}

	fields := rec.Fields()
	infos := make([]FieldInfo, 0, len(fields))
	for _, d := range fields {
		info := FieldInfo{
			Name:     d.Name(),
			Key:      d.Name(),
			Kind:     d.Kind(),
			Type:     d.Describe(),
			Optional: d.Optional(),
		}
		if k := d.ExplicitKey(); k != "" {
			info.Key = k
			info.Explicit = true
		}
		infos = append(infos, info)
	}

	actual, _ := describeCache.LoadOrStore(t, infos)
	return cloneInfos(actual.([]FieldInfo))
}

func cloneInfos(in []FieldInfo) []FieldInfo {
	out := make([]FieldInfo, len(in))
	copy(out, in)
	return out
}
