package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/marcus/mfx/internal/lockfile"
)

// FileStore keeps each scope in its own JSON object file. Read-modify-write
// cycles are serialized across processes with a lock file beside each
// settings file; writes go through a temp file and rename.
type FileStore struct {
	mu    sync.Mutex
	paths map[Scope]string
}

// NewFileStore creates a store over the given files. An empty workspacePath
// disables the workspace scope.
func NewFileStore(globalPath, workspacePath string) *FileStore {
	paths := map[Scope]string{Global: globalPath}
	if workspacePath != "" {
		paths[Workspace] = workspacePath
	}
	return &FileStore{paths: paths}
}

// Path returns the file backing scope, or "" when the scope is disabled
func (s *FileStore) Path(scope Scope) string {
	return s.paths[scope]
}

// Get implements Store
func (s *FileStore) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, scope := range []Scope{Workspace, Global} {
		if _, ok := s.paths[scope]; !ok {
			continue
		}
		values, err := s.load(scope)
		if err != nil {
			return nil, false, err
		}
		if raw, ok := values[key]; ok {
			return raw, true, nil
		}
	}
	return nil, false, nil
}

// Inspect implements Store
func (s *FileStore) Inspect(ctx context.Context, key string) (Inspection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in := Inspection{Key: key}
	for scope := range s.paths {
		values, err := s.load(scope)
		if err != nil {
			return in, err
		}
		if raw, ok := values[key]; ok {
			if scope == Workspace {
				in.Workspace = raw
			} else {
				in.Global = raw
			}
		}
	}
	return in, nil
}

// Set implements Store
func (s *FileStore) Set(ctx context.Context, key string, value json.RawMessage, scope Scope) error {
	return s.modify(scope, func(values map[string]json.RawMessage) error {
		values[key] = value
		return nil
	})
}

// Update implements Store
func (s *FileStore) Update(ctx context.Context, key, field string, value any, scope Scope) error {
	return s.modify(scope, func(values map[string]json.RawMessage) error {
		next, err := UpdateField(values[key], field, value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		values[key] = next
		return nil
	})
}

// Delete implements Store
func (s *FileStore) Delete(ctx context.Context, key string, scope Scope) error {
	return s.modify(scope, func(values map[string]json.RawMessage) error {
		delete(values, key)
		return nil
	})
}

func (s *FileStore) modify(scope Scope, fn func(map[string]json.RawMessage) error) error {
	path, ok := s.paths[scope]
	if !ok {
		return ErrNoWorkspace
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return lockfile.With(path+".lock", lockfile.DefaultTimeout, func() error {
		values, err := s.load(scope)
		if err != nil {
			return err
		}
		if err := fn(values); err != nil {
			return err
		}
		return save(path, values)
	})
}

// load reads the scope file. A missing file is an empty object.
func (s *FileStore) load(scope Scope) (map[string]json.RawMessage, error) {
	path := s.paths[scope]
	values := make(map[string]json.RawMessage)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return values, nil
		}
		return nil, fmt.Errorf("read %s settings: %w", scope, err)
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse %s settings %s: %w", scope, path, err)
	}
	return values, nil
}

// save writes values using atomic write (temp file + rename)
func save(path string, values map[string]json.RawMessage) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "settings-*.json.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	slog.Debug("settings: saved", "path", path, "keys", len(values))
	return nil
}
