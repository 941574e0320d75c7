package binder

import (
	"strings"
	"sync"
	"time"

	"github.com/mcncl/jsonbind/internal/models"
)

type dateCodec struct{}

// Date binds time.Time. Strings are parsed with the field's date format
// (binder default "yyyy-MM-dd"); numbers are Unix timestamps in seconds and
// may carry a fraction. Dates are written back as strings in the same format.
func Date() Codec[time.Time] { return dateCodec{} }

func (dateCodec) Decode(v models.Value, s *Settings) (time.Time, bool) {
	switch v.Kind() {
	case models.String:
		text, _ := v.AsString()
		t, err := time.ParseInLocation(GoLayout(s.DateFormat()), text, s.Location())
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	case models.Number:
		d, ok := v.AsDecimal()
		if !ok {
			return time.Time{}, false
		}
		if d.IsZero() || integerDigits(d) <= -9 {
			// below a nanosecond
			return time.Unix(0, 0).In(s.Location()), true
		}
		if integerDigits(d) > maxIntegerDigits {
			return time.Time{}, false
		}
		whole := d.Truncate(0)
		if !whole.BigInt().IsInt64() {
			return time.Time{}, false
		}
		nanos := d.Sub(whole).Shift(9).IntPart()
		return time.Unix(whole.IntPart(), nanos).In(s.Location()), true
	default:
		return time.Time{}, false
	}
}

func (dateCodec) Encode(x time.Time, s *Settings) (models.Value, bool) {
	return models.StringValue(x.In(s.Location()).Format(GoLayout(s.DateFormat()))), true
}

func (dateCodec) Kind() Kind       { return KindDate }
func (dateCodec) Describe() string { return "date" }

var layoutCache sync.Map // pattern -> Go layout

// GoLayout converts a date pattern in the "yyyy-MM-dd HH:mm:ss" style into a
// Go reference layout. Patterns that already contain "2006" are treated as Go
// layouts and returned unchanged. Text in single quotes is copied literally
// and '' stands for a single quote.
func GoLayout(pattern string) string {
	if cached, ok := layoutCache.Load(pattern); ok {
		return cached.(string)
	}
	layout := pattern
	if !strings.Contains(pattern, "2006") {
		layout = translatePattern(pattern)
	}
	layoutCache.Store(pattern, layout)
	return layout
}

// patternTokens maps a letter to the Go layout for runs of 1, 2, 3 and 4+.
var patternTokens = map[byte][4]string{
	'y': {"2006", "06", "2006", "2006"},
	'M': {"1", "01", "Jan", "January"},
	'd': {"2", "02", "02", "02"},
	'E': {"Mon", "Mon", "Mon", "Monday"},
	'H': {"15", "15", "15", "15"},
	'h': {"3", "03", "03", "03"},
	'm': {"4", "04", "04", "04"},
	's': {"5", "05", "05", "05"},
	'a': {"PM", "PM", "PM", "PM"},
	'Z': {"-0700", "-0700", "-0700", "-07:00"},
	'X': {"Z07", "Z0700", "Z07:00", "Z07:00"},
	'z': {"MST", "MST", "MST", "MST"},
}

func translatePattern(pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); {
		c := pattern[i]
		if c == '\'' {
			i = copyQuoted(&b, pattern, i)
			continue
		}
		j := i
		for j < len(pattern) && pattern[j] == c {
			j++
		}
		run := j - i
		switch {
		case c == 'S':
			// fractional seconds; Go wants them after the seconds separator
			b.WriteString(strings.Repeat("0", run))
		case patternTokens[c] != [4]string{}:
			b.WriteString(patternTokens[c][min(run, 4)-1])
		default:
			b.WriteString(pattern[i:j])
		}
		i = j
	}
	return b.String()
}

// copyQuoted writes the quoted section starting at pattern[i] and returns the
// index just past it.
func copyQuoted(b *strings.Builder, pattern string, i int) int {
	if i+1 < len(pattern) && pattern[i+1] == '\'' {
		b.WriteByte('\'')
		return i + 2
	}
	i++
	for i < len(pattern) {
		if pattern[i] == '\'' {
			if i+1 < len(pattern) && pattern[i+1] == '\'' {
				b.WriteByte('\'')
				i += 2
				continue
			}
			return i + 1
		}
		b.WriteByte(pattern[i])
		i++
	}
	return i
}
