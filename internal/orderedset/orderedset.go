// Package orderedset provides an insertion-ordered set of strings.
package orderedset

import orderedmap "github.com/wk8/go-ordered-map/v2"

// Set keeps unique strings in the order they were first added.
// The zero value is not usable; call New.
type Set struct {
	m *orderedmap.OrderedMap[string, struct{}]
}

// New returns a set populated with items, in order, skipping duplicates.
func New(items ...string) *Set {
	s := &Set{m: orderedmap.New[string, struct{}]()}
	for _, it := range items {
		s.Add(it)
	}
	return s
}

// Add inserts v and reports whether it was not already present.
func (s *Set) Add(v string) bool {
	if _, ok := s.m.Get(v); ok {
		return false
	}
	s.m.Set(v, struct{}{})
	return true
}

// Has reports membership.
func (s *Set) Has(v string) bool {
	_, ok := s.m.Get(v)
	return ok
}

// Len returns the number of members.
func (s *Set) Len() int {
	return s.m.Len()
}

// Values returns the members oldest first. The result is never nil.
func (s *Set) Values() []string {
	out := make([]string, 0, s.m.Len())
	for pair := s.m.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}
