package e2e_test

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/mcncl/jsonbind/internal/binder"
	"github.com/mcncl/jsonbind/internal/records"
	"github.com/stretchr/testify/require"
)

// generatePeople creates an array of person objects with a mix of clean and
// dirty values, so every coercion path is taken
func generatePeople(count int) []map[string]interface{} {
	rng := rand.New(rand.NewSource(42))
	animals := []string{"cat", "dog", "bird", "fish"}

	people := make([]map[string]interface{}, count)
	for i := 0; i < count; i++ {
		jobs := make([]map[string]interface{}, rng.Intn(4))
		for j := range jobs {
			jobs[j] = map[string]interface{}{
				"name":   fmt.Sprintf("Job %d-%d", i, j),
				"salary": fmt.Sprintf("%d", rng.Intn(100000)),
			}
		}
		pets := make([]string, rng.Intn(3))
		for j := range pets {
			pets[j] = animals[rng.Intn(len(animals))]
		}
		people[i] = map[string]interface{}{
			"name":     fmt.Sprintf("Person %d", i),
			"age":      rng.Intn(90),
			"tags":     []interface{}{"1", 2, "3", rng.Intn(10)},
			"job":      jobs,
			"pet":      pets,
			"birthday": fmt.Sprintf("19%02d-%02d-%02d", rng.Intn(100), rng.Intn(12)+1, rng.Intn(28)+1),
		}
	}
	return people
}

// generateNestedJSON wraps value in depth levels of objects keyed level_N
func generateNestedJSON(depth int, value interface{}) (map[string]interface{}, string) {
	segments := make([]string, depth)
	current := value
	for i := depth - 1; i >= 0; i-- {
		key := fmt.Sprintf("level_%d", i)
		segments[i] = key
		current = map[string]interface{}{key: current, "noise": i}
	}
	return current.(map[string]interface{}), strings.Join(segments, ".")
}

// BenchmarkBindPeople benchmarks binding arrays of records of growing size
func BenchmarkBindPeople(b *testing.B) {
	sizes := []struct {
		name  string
		count int
	}{
		{"100Items", 100},
		{"1000Items", 1000},
	}

	for _, size := range sizes {
		b.Run(size.name, func(b *testing.B) {
			people := generatePeople(size.count)
			docs := make([]string, len(people))
			for i, p := range people {
				data, err := json.Marshal(p)
				require.NoError(b, err)
				docs[i] = string(data)
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				for _, doc := range docs {
					var p records.Person
					if err := binder.Bind(&p, doc); err != nil {
						b.Fatal(err)
					}
				}
			}
		})
	}
}

// BenchmarkDeepPath benchmarks binding at a designated path in deeply nested documents
func BenchmarkDeepPath(b *testing.B) {
	depths := []int{3, 10, 50}

	for _, depth := range depths {
		b.Run(fmt.Sprintf("Depth%d", depth), func(b *testing.B) {
			doc, path := generateNestedJSON(depth, generatePeople(1)[0])
			data, err := json.Marshal(doc)
			require.NoError(b, err)
			text := string(data)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				var p records.Person
				if err := binder.BindPath(&p, text, path); err != nil {
					b.Fatal(err)
				}
				if p.Name == nil {
					b.Fatal("path did not resolve")
				}
			}
		})
	}
}

// BenchmarkMarshal benchmarks serializing bound records
func BenchmarkMarshal(b *testing.B) {
	people := generatePeople(100)
	bound := make([]*records.Person, len(people))
	for i, p := range people {
		data, err := json.Marshal(p)
		require.NoError(b, err)
		bound[i] = &records.Person{}
		require.NoError(b, binder.Bind(bound[i], string(data)))
	}

	pretty := binder.New(binder.WithPrettyOutput("  "))
	b.Run("Compact", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			for _, p := range bound {
				_ = binder.Marshal(p)
			}
		}
	})
	b.Run("Pretty", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			for _, p := range bound {
				_ = pretty.Marshal(p)
			}
		}
	})
}
