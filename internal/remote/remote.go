// Package remote defines the resource API the trees call for remote
// operations, and a registry resolving the API for each tree schema.
package remote

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/marcus/mfx/internal/models"
)

var (
	ErrNotFound    = errors.New("remote: resource not found")
	ErrExists      = errors.New("remote: resource already exists")
	ErrUnsupported = errors.New("remote: operation not supported")
	ErrNoAPI       = errors.New("remote: no API registered")
)

// Query selects the children to list. Pattern is a session-level search
// (data set pattern, USS directory or job name filter); Path lists the
// children of one resource.
type Query struct {
	Pattern string
	Path    string
}

// Entry is one listed resource
type Entry struct {
	Path  string
	Label string
	// Tag is the base context value of the resource
	Tag string
}

// API is the remote resource contract for one schema
type API interface {
	Schema() models.Schema
	Session(ctx context.Context, p *models.Profile) (*models.Session, error)
	List(ctx context.Context, s *models.Session, q Query) ([]Entry, error)
	Rename(ctx context.Context, s *models.Session, oldPath, newPath string) error
	Delete(ctx context.Context, s *models.Session, path string) error
	GetContents(ctx context.Context, s *models.Session, path string) ([]byte, error)
	PutContents(ctx context.Context, s *models.Session, path string, data []byte) error
}

// Submitter is implemented by job APIs
type Submitter interface {
	Submit(ctx context.Context, s *models.Session, jcl []byte) (string, error)
}

// Registry maps each schema to its API
type Registry struct {
	mu   sync.RWMutex
	apis map[models.Schema]API
}

// NewRegistry creates a registry holding apis
func NewRegistry(apis ...API) *Registry {
	r := &Registry{apis: make(map[models.Schema]API)}
	for _, a := range apis {
		r.Register(a)
	}
	return r
}

// Register installs api for its schema, replacing any previous one
func (r *Registry) Register(api API) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apis[api.Schema()] = api
}

// For returns the API registered for schema
func (r *Registry) For(schema models.Schema) (API, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	api, ok := r.apis[schema]
	if !ok {
		return nil, fmt.Errorf("%w for %s", ErrNoAPI, schema)
	}
	return api, nil
}
