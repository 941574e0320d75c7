// Package binder maps JSON documents onto records and back.
//
// Records declare their bindable fields explicitly through Record.Fields. The
// binder is lenient by design: a missing key, a type mismatch or a value that
// cannot be coerced leaves the field as it was. The only error a bind call
// returns is a parse error for text that is not valid JSON.
package binder

import (
	"time"

	"github.com/mcncl/jsonbind/internal/config"
	"github.com/mcncl/jsonbind/internal/formatter"
	"github.com/mcncl/jsonbind/internal/models"
	"github.com/mcncl/jsonbind/internal/parser"
	"github.com/mcncl/jsonbind/internal/resolver"
)

// Binder binds JSON to records with a fixed set of options. A Binder is
// immutable and safe for concurrent use; a single record must not be bound
// from two goroutines at once.
type Binder struct {
	settings  Settings
	formatter *formatter.Formatter
}

// Option configures a Binder.
type Option func(*Binder)

// WithDateFormat sets the default date pattern, e.g. "yyyy-MM-dd HH:mm".
func WithDateFormat(pattern string) Option {
	return func(b *Binder) { b.settings.dateFormat = pattern }
}

// WithLocation sets the time zone used to parse and render dates.
func WithLocation(loc *time.Location) Option {
	return func(b *Binder) {
		if loc != nil {
			b.settings.location = loc
		}
	}
}

// WithKeyStyle sets how declared names become keys when no key is given.
func WithKeyStyle(style config.KeyStyle) Option {
	return func(b *Binder) { b.settings.keyStyle = style }
}

// WithLogger receives debug traces for skipped fields.
func WithLogger(l Logger) Option {
	return func(b *Binder) {
		if l != nil {
			b.settings.logger = l
		}
	}
}

// WithPrettyOutput makes Marshal indent its output.
func WithPrettyOutput(indent string) Option {
	return func(b *Binder) { b.formatter = formatter.NewPrettyFormatter(indent) }
}

// New creates a Binder. Without options dates use "yyyy-MM-dd" in UTC, keys
// are the declared field names and output is compact.
func New(opts ...Option) *Binder {
	b := &Binder{
		settings:  defaultSettings(),
		formatter: formatter.NewFormatter(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// FromConfig creates a Binder from loaded configuration.
func FromConfig(cfg *config.Config, l Logger) (*Binder, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	opts := []Option{
		WithDateFormat(cfg.Binding.DateFormat),
		WithLocation(loc),
		WithKeyStyle(cfg.Binding.KeyStyle),
		WithLogger(l),
	}
	if cfg.Output.Pretty {
		opts = append(opts, WithPrettyOutput(cfg.Output.Indent))
	}
	return New(opts...), nil
}

// Bind parses text and fills rec from the document root.
func (b *Binder) Bind(rec Record, text string) error {
	return b.BindBytes(rec, []byte(text), "")
}

// BindPath parses text, narrows it to the subtree at path and fills rec from
// it. A path that matches nothing binds nothing and is not an error.
func (b *Binder) BindPath(rec Record, text, path string) error {
	return b.BindBytes(rec, []byte(text), path)
}

// BindBytes is BindPath for raw bytes.
func (b *Binder) BindBytes(rec Record, data []byte, path string) error {
	ir, err := parser.ParseBytes(data)
	if err != nil {
		return err
	}
	b.BindValue(rec, resolver.Resolve(ir.Root, path))
	return nil
}

// BindValue fills rec from an already parsed value. Values other than
// objects leave rec untouched.
func (b *Binder) BindValue(rec Record, v models.Value) {
	if v.Kind() != models.Object {
		b.settings.Debug("nothing to bind", "source", v.Kind())
		return
	}
	bindRecord(rec, v, &b.settings)
}

// Serialize converts rec to an object keyed by its fields' keys, in
// declaration order. Nil optionals are omitted.
func (b *Binder) Serialize(rec Record) models.Value {
	return serializeRecord(rec, &b.settings)
}

// Render writes v as JSON text using the binder's output settings.
func (b *Binder) Render(v models.Value) string {
	return b.formatter.Format(v)
}

// Marshal serializes rec and renders it as JSON text.
func (b *Binder) Marshal(rec Record) string {
	return b.Render(b.Serialize(rec))
}

// Describe returns rec's field metadata with keys derived the way this binder
// derives them.
func (b *Binder) Describe(rec Record) []FieldInfo {
	infos := Describe(rec)
	for i := range infos {
		if !infos[i].Explicit {
			infos[i].Key = b.settings.keyStyle.Apply(infos[i].Name)
		}
	}
	return infos
}

var std = New()

// Bind fills rec from text using default options.
func Bind(rec Record, text string) error { return std.Bind(rec, text) }

// BindPath fills rec from the subtree of text at path using default options.
func BindPath(rec Record, text, path string) error { return std.BindPath(rec, text, path) }

// Serialize converts rec to a value tree using default options.
func Serialize(rec Record) models.Value { return std.Serialize(rec) }

// Marshal renders rec as compact JSON using default options.
func Marshal(rec Record) string { return std.Marshal(rec) }
