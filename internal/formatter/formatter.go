package formatter

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/mcncl/jsonbind/internal/models"
)

// Formatter renders value trees as JSON text. Object members are written in
// the order they are stored, so rendering a serialized record follows field
// declaration order.
type Formatter struct {
	pretty bool
	indent string
}

// NewFormatter creates a Formatter producing compact output
func NewFormatter() *Formatter {
	return &Formatter{indent: "  "}
}

// NewPrettyFormatter creates a Formatter that puts each element on its own
// line, indented by indent per level.
func NewPrettyFormatter(indent string) *Formatter {
	if indent == "" {
		indent = "  "
	}
	return &Formatter{pretty: true, indent: indent}
}

// Format renders v as JSON text. The result is always valid JSON.
func (f *Formatter) Format(v models.Value) string {
	var b strings.Builder
	f.write(&b, v, 0)
	return b.String()
}

func (f *Formatter) write(b *strings.Builder, v models.Value, depth int) {
	switch v.Kind() {
	case models.Null:
		b.WriteString("null")
	case models.Bool:
		if val, _ := v.AsBool(); val {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case models.Number:
		lit, _ := v.Literal()
		b.WriteString(lit)
	case models.String:
		s, _ := v.AsString()
		writeString(b, s)
	case models.Array:
		items, _ := v.Items()
		if len(items) == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteByte('[')
		for i, item := range items {
			if i > 0 {
				b.WriteByte(',')
			}
			f.newline(b, depth+1)
			f.write(b, item, depth+1)
		}
		f.newline(b, depth)
		b.WriteByte(']')
	case models.Object:
		members, _ := v.Members()
		if len(members) == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteByte('{')
		for i, m := range members {
			if i > 0 {
				b.WriteByte(',')
			}
			f.newline(b, depth+1)
			writeString(b, m.Key)
			b.WriteByte(':')
			if f.pretty {
				b.WriteByte(' ')
			}
			f.write(b, m.Value, depth+1)
		}
		f.newline(b, depth)
		b.WriteByte('}')
	}
}

func (f *Formatter) newline(b *strings.Builder, depth int) {
	if !f.pretty {
		return
	}
	b.WriteByte('\n')
	for i := 0; i < depth; i++ {
		b.WriteString(f.indent)
	}
}

// writeString quotes s using encoding/json escaping, leaving <, > and &
// readable.
func writeString(b *strings.Builder, s string) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail
	_ = enc.Encode(s)
	b.Write(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}
