package binder

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// box is a one-field record used to exercise a single codec.
type box[T any] struct {
	val   T
	codec Codec[T]
}

func (b *box[T]) Fields() []Descriptor {
	return []Descriptor{Field("v", &b.val, b.codec)}
}

// decode binds doc into a box holding initial and returns the field value.
func decode[T any](t *testing.T, b *Binder, c Codec[T], initial T, doc string) T {
	t.Helper()
	bx := &box[T]{val: initial, codec: c}
	require.NoError(t, b.Bind(bx, doc))
	return bx.val
}

// recordingLogger collects debug traces.
type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) Debug(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, strings.TrimSpace(fmt.Sprintln(append([]any{msg}, keysAndValues...)...)))
}

func (l *recordingLogger) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}
