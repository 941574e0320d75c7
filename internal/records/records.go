// Package records holds the plain records consumed by the rest of the
// toolkit. Their JSON shape is declared through binder.Record.
package records

import (
	"fmt"
	"sort"
	"time"

	"github.com/mcncl/jsonbind/internal/binder"
	"github.com/mcncl/jsonbind/internal/errors"
)

// AnimalType is a fixed-choice pet kind.
type AnimalType string

const (
	Cat  AnimalType = "cat"
	Dog  AnimalType = "dog"
	Bird AnimalType = "bird"
)

// Animals is the codec for AnimalType.
var Animals = binder.Enum(Cat, Dog, Bird)

// Job is a position held by a Person.
type Job struct {
	Name   string
	Salary int

	// SalaryChanged, when set, observes every salary the binder stores.
	SalaryChanged func(old, new int)
}

// Fields implements binder.Record.
func (j *Job) Fields() []binder.Descriptor {
	return []binder.Descriptor{
		binder.Field("name", &j.Name, binder.Str()),
		binder.Field("salary", &j.Salary, binder.Int[int]()).OnChange(func(old, new int) {
			if j.SalaryChanged != nil {
				j.SalaryChanged(old, new)
			}
		}),
	}
}

func (j Job) String() string {
	return fmt.Sprintf("Job(name: %s, salary: %d)", j.Name, j.Salary)
}

// Person is the sample profile record. Every field is optional.
type Person struct {
	Name     *string
	Age      *int
	Tags     *binder.Set[int]
	Job      []Job
	Pet      []*AnimalType
	Birthday *time.Time
}

// Fields implements binder.Record.
func (p *Person) Fields() []binder.Descriptor {
	return []binder.Descriptor{
		binder.Field("name", &p.Name, binder.Opt(binder.Str())),
		binder.Field("age", &p.Age, binder.Opt(binder.Int[int]())),
		binder.Field("tags", &p.Tags, binder.SetOf(binder.Int[int]())),
		binder.Field("job", &p.Job, binder.List(binder.Nested[Job]())),
		binder.Field("pet", &p.Pet, binder.List(binder.Opt(Animals))),
		binder.Field("birthday", &p.Birthday, binder.Opt(binder.Date())),
	}
}

// String renders the person the way the sample command prints it.
func (p *Person) String() string {
	return fmt.Sprintf("Person(name: %s, age: %s, tags: %v, job: %v, pet: %s, birthday: %s)",
		deref(p.Name), deref(p.Age), p.Tags.Values(), p.Job, pets(p.Pet), birthday(p.Birthday))
}

func deref[T any](p *T) string {
	if p == nil {
		return "nil"
	}
	return fmt.Sprint(*p)
}

func pets(ps []*AnimalType) string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = deref(p)
	}
	return fmt.Sprint(out)
}

func birthday(t *time.Time) string {
	if t == nil {
		return "nil"
	}
	return t.Format(time.DateOnly)
}

// Factory creates an empty record.
type Factory func() binder.Record

var registry = map[string]Factory{
	"job":    func() binder.Record { return &Job{} },
	"person": func() binder.Record { return &Person{} },
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("record %q: %w", name, errors.ErrUnknownRecord)
	}
	return f, nil
}

// Names lists the registered record names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
