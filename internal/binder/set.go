package binder

import "iter"

// Set is an insertion-ordered set. Iteration, Values and serialization all
// follow the order in which elements were first added, so rendered output is
// reproducible. The zero Set is empty and ready to use.
type Set[T comparable] struct {
	items []T
	index map[T]int
}

// NewSet returns a set holding items, duplicates removed.
func NewSet[T comparable](items ...T) *Set[T] {
	s := &Set[T]{}
	for _, x := range items {
		s.Add(x)
	}
	return s
}

// Add inserts x and reports whether it was not already present.
func (s *Set[T]) Add(x T) bool {
	if s.index == nil {
		s.index = make(map[T]int)
	}
	if _, ok := s.index[x]; ok {
		return false
	}
	s.index[x] = len(s.items)
	s.items = append(s.items, x)
	return true
}

// Remove deletes x and reports whether it was present.
func (s *Set[T]) Remove(x T) bool {
	i, ok := s.index[x]
	if !ok {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	delete(s.index, x)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j]] = j
	}
	return true
}

// Contains reports whether x is in the set.
func (s *Set[T]) Contains(x T) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[x]
	return ok
}

// Len returns the number of elements.
func (s *Set[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Values returns a copy of the elements in insertion order.
func (s *Set[T]) Values() []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// All iterates over the elements in insertion order.
func (s *Set[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		if s == nil {
			return
		}
		for _, x := range s.items {
			if !yield(x) {
				return
			}
		}
	}
}

// Equal reports whether both sets hold the same elements, in any order.
func (s *Set[T]) Equal(o *Set[T]) bool {
	if s.Len() != o.Len() {
		return false
	}
	for x := range s.All() {
		if !o.Contains(x) {
			return false
		}
	}
	return true
}
