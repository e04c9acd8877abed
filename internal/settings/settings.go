// Package settings defines the key/value persistence contract the trees and
// filter managers write through, plus a JSON file implementation.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Scope selects which settings layer a write targets
type Scope int

const (
	Global Scope = iota
	Workspace
)

func (s Scope) String() string {
	if s == Workspace {
		return "workspace"
	}
	return "global"
}

// MarshalText renders the scope name in JSON output
func (s Scope) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseScope accepts "global" or "workspace"
func ParseScope(s string) (Scope, error) {
	switch s {
	case "global", "user", "":
		return Global, nil
	case "workspace":
		return Workspace, nil
	}
	return Global, fmt.Errorf("unknown scope %q", s)
}

// ErrNoWorkspace is returned for workspace writes when no workspace is open
var ErrNoWorkspace = errors.New("settings: no workspace scope configured")

// Inspection holds the raw per-scope values of one key
type Inspection struct {
	Key       string
	Global    json.RawMessage
	Workspace json.RawMessage
}

// Value returns the raw value stored at scope, or nil
func (i Inspection) Value(s Scope) json.RawMessage {
	if s == Workspace {
		return i.Workspace
	}
	return i.Global
}

// Store is the persistence contract. Get returns the effective value, with
// the workspace layer overriding the global one.
type Store interface {
	Get(ctx context.Context, key string) (json.RawMessage, bool, error)
	Inspect(ctx context.Context, key string) (Inspection, error)
	Set(ctx context.Context, key string, value json.RawMessage, scope Scope) error
	// Update replaces one field of the object stored under key, creating the
	// object when absent. Other fields are left untouched.
	Update(ctx context.Context, key, field string, value any, scope Scope) error
	Delete(ctx context.Context, key string, scope Scope) error
}

// Record is a settings value decoded as an object
type Record map[string]json.RawMessage

// DecodeRecord parses raw as an object. Empty input yields an empty record.
func DecodeRecord(raw json.RawMessage) (Record, error) {
	r := Record{}
	if len(raw) == 0 || string(raw) == "null" {
		return r, nil
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return r, nil
}

// GetRecord reads key from s as a Record
func GetRecord(ctx context.Context, s Store, key string) (Record, bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return Record{}, ok, err
	}
	r, err := DecodeRecord(raw)
	if err != nil {
		return nil, true, fmt.Errorf("%s: %w", key, err)
	}
	return r, true, nil
}

// Has reports whether field is present
func (r Record) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// Decode unmarshals field into v, reporting whether it was present
func (r Record) Decode(field string, v any) (bool, error) {
	raw, ok := r[field]
	if !ok || string(raw) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("decode field %s: %w", field, err)
	}
	return true, nil
}

// Strings decodes a string-list field
func (r Record) Strings(field string) ([]string, bool, error) {
	var out []string
	ok, err := r.Decode(field, &out)
	return out, ok, err
}

// Bool decodes a bool field, returning def when absent or malformed
func (r Record) Bool(field string, def bool) bool {
	var b bool
	if ok, err := r.Decode(field, &b); !ok || err != nil {
		return def
	}
	return b
}

// Set encodes v into field
func (r Record) Set(field string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode field %s: %w", field, err)
	}
	r[field] = raw
	return nil
}

// Marshal encodes the record
func (r Record) Marshal() (json.RawMessage, error) {
	return json.Marshal(map[string]json.RawMessage(r))
}

// UpdateField applies a field update to raw and returns the new encoding.
// Shared by the store implementations.
func UpdateField(raw json.RawMessage, field string, value any) (json.RawMessage, error) {
	r, err := DecodeRecord(raw)
	if err != nil {
		return nil, err
	}
	if err := r.Set(field, value); err != nil {
		return nil, err
	}
	return r.Marshal()
}
