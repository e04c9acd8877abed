package tree

import (
	"sync"

	"github.com/marcus/mfx/internal/models"
)

// Registry maps each schema to its live tree
type Registry struct {
	mu    sync.RWMutex
	trees map[models.Schema]*Provider
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{trees: make(map[models.Schema]*Provider)}
}

// Register installs p for its schema
func (r *Registry) Register(p *Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trees[p.schema] = p
}

// Get returns the tree for schema, or nil
func (r *Registry) Get(schema models.Schema) *Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.trees[schema]
}

// All returns the registered trees in schema order
func (r *Registry) All() []*Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Provider
	for _, s := range models.AllSchemas {
		if p, ok := r.trees[s]; ok {
			out = append(out, p)
		}
	}
	return out
}
