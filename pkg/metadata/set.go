package metadata

import (
	"sort"

	"github.com/mwantia/coda/pkg/errors"
)

// InternalID is the field under which stores keep their own record identifier.
// It is bookkeeping only and never part of the plain mapping of a set.
const InternalID = "_id"

// Set is an ordered mapping from string keys to arbitrary JSON-representable
// values. Insertion order is kept for serialization but ignored by Equal.
//
// A nil *Set behaves like an empty set for every read operation.
type Set struct {
	keys   []string
	values map[string]any
}

func New() *Set {
	return &Set{
		values: make(map[string]any),
	}
}

// FromMap builds a set from a plain mapping. Go maps carry no order, so keys
// are inserted in sorted order to keep serialization deterministic.
func FromMap(m map[string]any) *Set {
	s := New()

	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		s.Set(key, m[key])
	}
	return s
}

func (s *Set) Get(key string) (any, error) {
	value, ok := s.Lookup(key)
	if !ok {
		return nil, errors.KeyNotFound(key)
	}
	return value, nil
}

func (s *Set) Lookup(key string) (any, bool) {
	if s == nil {
		return nil, false
	}
	value, ok := s.values[key]
	return value, ok
}

func (s *Set) Has(key string) bool {
	_, ok := s.Lookup(key)
	return ok
}

// Set inserts or overwrites key. Overwriting keeps the original position.
func (s *Set) Set(key string, value any) {
	if s.values == nil {
		s.values = make(map[string]any)
	}
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

func (s *Set) Delete(key string) {
	if s == nil {
		return
	}
	if _, ok := s.values[key]; !ok {
		return
	}

	delete(s.values, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Keys returns a copy of the keys in insertion order.
func (s *Set) Keys() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.keys...)
}

// Range calls fn for every pair in insertion order until fn returns false.
func (s *Set) Range(fn func(key string, value any) bool) {
	if s == nil {
		return
	}
	for _, key := range s.keys {
		if !fn(key, s.values[key]) {
			return
		}
	}
}

// Union returns a new set holding every key of both sets. On collision the
// value of other wins while the key keeps the position it has in s.
func (s *Set) Union(other *Set) *Set {
	res := s.Clone()
	other.Range(func(key string, value any) bool {
		res.Set(key, cloneValue(value))
		return true
	})
	return res
}

// Intersect returns a new set holding the pairs present in both sets with
// identical values. Keys whose values differ are dropped entirely.
func (s *Set) Intersect(other *Set) *Set {
	res := New()
	s.Range(func(key string, value any) bool {
		if v, ok := other.Lookup(key); ok && ValuesEqual(value, v) {
			res.Set(key, cloneValue(value))
		}
		return true
	})
	return res
}

func (s *Set) Equal(other *Set) bool {
	if s.Len() != other.Len() {
		return false
	}

	equal := true
	s.Range(func(key string, value any) bool {
		v, ok := other.Lookup(key)
		equal = ok && ValuesEqual(value, v)
		return equal
	})
	return equal
}

// ToMap materializes the set as a plain mapping without internal fields.
func (s *Set) ToMap() map[string]any {
	m := make(map[string]any, s.Len())
	s.Range(func(key string, value any) bool {
		if key != InternalID {
			m[key] = cloneValue(value)
		}
		return true
	})
	return m
}

// Clone returns a deep copy so that the result shares no mutable state with s.
func (s *Set) Clone() *Set {
	res := New()
	s.Range(func(key string, value any) bool {
		res.Set(key, cloneValue(value))
		return true
	})
	return res
}
