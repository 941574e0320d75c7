// Package resolver narrows a JSON document to the subtree named by a path
// expression such as "result.items.0" or "result/items/0".
package resolver

import (
	"strconv"
	"strings"

	"github.com/mcncl/jsonbind/internal/models"
)

// Split breaks a path expression into its segments. Both '.' and '/' act as
// separators and empty segments are dropped, so "/a//b." yields [a b].
func Split(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool {
		return r == '.' || r == '/'
	})
}

// Resolve walks path from root. It never fails: when a segment is missing,
// an index is out of range, or the current value is not a container, the
// result is JSON null. An empty path returns root unchanged.
func Resolve(root models.Value, path string) models.Value {
	v, _ := Lookup(root, path)
	return v
}

// Lookup is Resolve with an explicit found flag, which distinguishes a path
// that points at a null value from a path that points nowhere.
func Lookup(root models.Value, path string) (models.Value, bool) {
	current := root
	for _, segment := range Split(path) {
		next, ok := step(current, segment)
		if !ok {
			return models.NullValue(), false
		}
		current = next
	}
	return current, true
}

func step(v models.Value, segment string) (models.Value, bool) {
	switch v.Kind() {
	case models.Object:
		return v.Get(segment)
	case models.Array:
		i, err := strconv.Atoi(segment)
		if err != nil {
			return models.Value{}, false
		}
		return v.Index(i)
	default:
		return models.Value{}, false
	}
}
