package binder

import (
	"time"

	"github.com/mcncl/jsonbind/internal/config"
	"github.com/mcncl/jsonbind/internal/logger"
)

// Logger receives debug traces for fields the binder skipped. Skips are
// never reported to the caller as errors.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
}

// Settings carries the binder-wide options down to codecs. A copy is made for
// every nested field, so codecs may read it freely but never change it.
type Settings struct {
	dateFormat string
	location   *time.Location
	keyStyle   config.KeyStyle
	logger     Logger
	trail      string // dotted key path of the field being processed
}

func defaultSettings() Settings {
	return Settings{
		dateFormat: config.DefaultDateFormat,
		location:   time.UTC,
		keyStyle:   config.KeyStyleNone,
		logger:     logger.Discard(),
	}
}

// DateFormat returns the date pattern in effect for the current field.
func (s *Settings) DateFormat() string { return s.dateFormat }

// Location returns the time zone dates are parsed and rendered in.
func (s *Settings) Location() *time.Location { return s.location }

// Trail returns the key path of the field being processed, e.g. "job.1.salary".
func (s *Settings) Trail() string { return s.trail }

// Debug forwards a trace to the configured logger, tagged with the field path.
func (s *Settings) Debug(msg string, keysAndValues ...any) {
	s.logger.Debug(msg, append([]any{"field", s.trail}, keysAndValues...)...)
}

// child returns settings for the member or element named seg.
func (s *Settings) child(seg string) *Settings {
	c := *s
	if c.trail == "" {
		c.trail = seg
	} else {
		c.trail = c.trail + "." + seg
	}
	return &c
}

func (s *Settings) keyFor(d Descriptor) string {
	if k := d.ExplicitKey(); k != "" {
		return k
	}
	return s.keyStyle.Apply(d.Name())
}
