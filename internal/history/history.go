// Package history implements the bounded, deduplicating value lists behind
// search, file and session history.
package history

import (
	"context"
	"errors"
	"sort"
	"strings"
)

// PersistFunc writes the full entry list after a mutation
type PersistFunc func(ctx context.Context, entries []string) error

// Order decides where new entries land
type Order int

const (
	// MostRecentFirst inserts at the front
	MostRecentFirst Order = iota
	// Sorted keeps entries in ascending lexical order
	Sorted
)

// Unbounded disables the capacity limit
const Unbounded = 0

// ErrCapacity is returned for a negative capacity
var ErrCapacity = errors.New("history: capacity must be >= 1 or Unbounded")

// Options configures a Store
type Options struct {
	// Capacity is the maximum number of entries, or Unbounded
	Capacity int
	// Uppercase folds entries to upper case, making dedupe case-insensitive
	Uppercase bool
	Order     Order
	Persist   PersistFunc
}

// Store is an ordered, capacity-limited list without duplicates
type Store struct {
	entries   []string
	capacity  int
	uppercase bool
	order     Order
	persist   PersistFunc
}

// New creates a Store hydrated with initial. Initial entries are normalized,
// deduplicated and trimmed to capacity but not persisted.
func New(opts Options, initial []string) (*Store, error) {
	if opts.Capacity < 0 {
		return nil, ErrCapacity
	}
	s := &Store{
		capacity:  opts.Capacity,
		uppercase: opts.Uppercase,
		order:     opts.Order,
		persist:   opts.Persist,
	}
	seen := make(map[string]bool, len(initial))
	for _, v := range initial {
		v = s.normalize(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		s.entries = append(s.entries, v)
	}
	if s.order == Sorted {
		sort.Strings(s.entries)
	}
	if s.capacity != Unbounded && len(s.entries) > s.capacity {
		s.entries = s.entries[:s.capacity]
	}
	return s, nil
}

func (s *Store) normalize(v string) string {
	v = strings.TrimSpace(v)
	if s.uppercase {
		v = strings.ToUpper(v)
	}
	return v
}

// Add moves value to the front (or its sorted slot), evicting the oldest
// entry when over capacity. Empty values are ignored.
func (s *Store) Add(ctx context.Context, value string) error {
	v := s.normalize(value)
	if v == "" {
		return nil
	}
	next := make([]string, 0, len(s.entries)+1)
	next = append(next, v)
	for _, e := range s.entries {
		if e != v {
			next = append(next, e)
		}
	}
	if s.capacity != Unbounded && len(next) > s.capacity {
		next = next[:len(next)-1]
	}
	if s.order == Sorted {
		sort.Strings(next)
	}
	s.entries = next
	return s.save(ctx)
}

// Remove drops the first entry containing value as a substring.
// Callers pass bare names to purge qualified entries.
func (s *Store) Remove(ctx context.Context, value string) error {
	if value == "" {
		return nil
	}
	needle := value
	if s.uppercase {
		needle = strings.ToUpper(needle)
	}
	for i, e := range s.entries {
		if strings.Contains(e, needle) {
			s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
			return s.save(ctx)
		}
	}
	return nil
}

// RemoveExact drops every entry equal to value after normalization
func (s *Store) RemoveExact(ctx context.Context, value string) error {
	v := s.normalize(value)
	if v == "" {
		return nil
	}
	next := s.entries[:0:0]
	for _, e := range s.entries {
		if e != v {
			next = append(next, e)
		}
	}
	if len(next) == len(s.entries) {
		return nil
	}
	s.entries = next
	return s.save(ctx)
}

// Reset clears all entries
func (s *Store) Reset(ctx context.Context) error {
	s.entries = []string{}
	return s.save(ctx)
}

// Entries returns a copy of the current list
func (s *Store) Entries() []string {
	out := make([]string, len(s.entries))
	copy(out, s.entries)
	return out
}

// Contains reports whether value is present after normalization
func (s *Store) Contains(value string) bool {
	v := s.normalize(value)
	for _, e := range s.entries {
		if e == v {
			return true
		}
	}
	return false
}

// Len returns the number of entries
func (s *Store) Len() int { return len(s.entries) }

// Capacity returns the configured capacity (Unbounded for none)
func (s *Store) Capacity() int { return s.capacity }

func (s *Store) save(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}
	return s.persist(ctx, s.Entries())
}
