package binder

import (
	"github.com/mcncl/jsonbind/internal/models"
)

// Descriptor describes one bindable field of a record instance: its declared
// name, optional explicit key, the codec converting its values and the
// accessor used to read and write it.
//
// Descriptors are created with Field and returned from Record.Fields.
type Descriptor interface {
	// Name is the declared name of the field.
	Name() string
	// ExplicitKey is the key set with As, or "" to derive it from Name.
	ExplicitKey() string
	Kind() Kind
	// Describe returns a readable type, e.g. "[]optional<enum(cat|dog)>".
	Describe() string
	Optional() bool

	bind(v models.Value, present bool, s *Settings)
	emit(s *Settings) (models.Value, bool)
}

// TypedField is the Descriptor for a field of type T.
type TypedField[T any] struct {
	name       string
	key        string
	ptr        *T
	codec      Codec[T]
	def        *T
	dateFormat string
	onChange   func(old, new T)
}

// Field declares that *ptr is bound under name using codec.
//
//	binder.Field("salary", &j.Salary, binder.Int[int]()).OnChange(notify)
func Field[T any](name string, ptr *T, codec Codec[T]) *TypedField[T] {
	return &TypedField[T]{name: name, ptr: ptr, codec: codec}
}

// As overrides the JSON key. The key style is not applied to explicit keys.
func (f *TypedField[T]) As(key string) *TypedField[T] {
	f.key = key
	return f
}

// Default sets the value stored when the key is absent or cannot be coerced.
func (f *TypedField[T]) Default(v T) *TypedField[T] {
	f.def = &v
	return f
}

// DateFormat overrides the binder's date pattern for this field, including
// dates nested in collections it holds.
func (f *TypedField[T]) DateFormat(pattern string) *TypedField[T] {
	f.dateFormat = pattern
	return f
}

// OnChange registers fn to run every time the binder stores a value.
func (f *TypedField[T]) OnChange(fn func(old, new T)) *TypedField[T] {
	f.onChange = fn
	return f
}

func (f *TypedField[T]) Name() string        { return f.name }
func (f *TypedField[T]) ExplicitKey() string { return f.key }
func (f *TypedField[T]) Kind() Kind          { return f.codec.Kind() }
func (f *TypedField[T]) Describe() string    { return f.codec.Describe() }
func (f *TypedField[T]) Optional() bool      { return f.codec.Kind() == KindOptional }

// Get returns the current value of the field.
func (f *TypedField[T]) Get() T { return *f.ptr }

// Set stores v and fires the change hook.
func (f *TypedField[T]) Set(v T) {
	old := *f.ptr
	*f.ptr = v
	if f.onChange != nil {
		f.onChange(old, v)
	}
}

func (f *TypedField[T]) scoped(s *Settings) *Settings {
	if f.dateFormat == "" {
		return s
	}
	c := *s
	c.dateFormat = f.dateFormat
	return &c
}

func (f *TypedField[T]) bind(v models.Value, present bool, s *Settings) {
	s = f.scoped(s)
	if present {
		if into, ok := f.codec.(inPlaceDecoder[T]); ok {
			old := *f.ptr
			if into.DecodeInto(v, f.ptr, s) {
				if f.onChange != nil {
					f.onChange(old, *f.ptr)
				}
				return
			}
		} else if x, ok := f.codec.Decode(v, s); ok {
			f.Set(x)
			return
		}
		s.Debug("field skipped", "kind", f.Kind(), "source", v.Kind())
	}
	if f.def != nil {
		f.Set(*f.def)
	}
}

func (f *TypedField[T]) emit(s *Settings) (models.Value, bool) {
	return f.codec.Encode(*f.ptr, f.scoped(s))
}
