package settings

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore keeps settings in process memory. It backs the "memory"
// storage backend and the tests of packages built on Store.
type MemoryStore struct {
	mu        sync.Mutex
	values    map[Scope]map[string]json.RawMessage
	workspace bool

	// WriteErr, when set, is returned by every write
	WriteErr error
	writes   int
}

// NewMemoryStore creates an empty store with both scopes enabled
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: map[Scope]map[string]json.RawMessage{
			Global:    {},
			Workspace: {},
		},
		workspace: true,
	}
}

// DisableWorkspace makes workspace writes fail with ErrNoWorkspace
func (s *MemoryStore) DisableWorkspace() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspace = false
}

// Writes returns the number of successful writes
func (s *MemoryStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Get implements Store
func (s *MemoryStore) Get(_ context.Context, key string) (json.RawMessage, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if raw, ok := s.values[Workspace][key]; ok {
		return cloneRaw(raw), true, nil
	}
	raw, ok := s.values[Global][key]
	return cloneRaw(raw), ok, nil
}

// Inspect implements Store
func (s *MemoryStore) Inspect(_ context.Context, key string) (Inspection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Inspection{
		Key:       key,
		Global:    cloneRaw(s.values[Global][key]),
		Workspace: cloneRaw(s.values[Workspace][key]),
	}, nil
}

// Set implements Store
func (s *MemoryStore) Set(_ context.Context, key string, value json.RawMessage, scope Scope) error {
	return s.modify(scope, func(values map[string]json.RawMessage) error {
		values[key] = cloneRaw(value)
		return nil
	})
}

// Update implements Store
func (s *MemoryStore) Update(_ context.Context, key, field string, value any, scope Scope) error {
	return s.modify(scope, func(values map[string]json.RawMessage) error {
		raw, err := UpdateField(values[key], field, value)
		if err != nil {
			return err
		}
		values[key] = raw
		return nil
	})
}

// Delete implements Store
func (s *MemoryStore) Delete(_ context.Context, key string, scope Scope) error {
	return s.modify(scope, func(values map[string]json.RawMessage) error {
		delete(values, key)
		return nil
	})
}

func (s *MemoryStore) modify(scope Scope, fn func(map[string]json.RawMessage) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return s.WriteErr
	}
	if scope == Workspace && !s.workspace {
		return ErrNoWorkspace
	}
	if err := fn(s.values[scope]); err != nil {
		return err
	}
	s.writes++
	return nil
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}
