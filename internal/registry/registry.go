// Package registry owns the process-wide name → index mapping. Unlike the
// teacher's Engine, which loads and persists indexes to gob files on disk,
// this registry is purely in-memory: creating the process creates empty
// state, destroying it destroys all state, per spec.
package registry

import (
	"sync"

	"github.com/corewire/ftsearch/internal/apperr"
	"github.com/corewire/ftsearch/internal/invindex"
)

// Registry guards all create/get/delete traffic behind one RWMutex:
// Create, Delete and DeleteAll take it exclusively, Get takes it shared.
// Indexes are small and operations brief, so coarse-grained locking here is
// deliberate: it keeps index creation/deletion globally serialized and
// guarantees no caller ever observes the map mid-mutation.
type Registry struct {
	mu      sync.RWMutex
	indexes map[string]*invindex.Index
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{indexes: make(map[string]*invindex.Index)}
}

// Create adds a new, empty index under name. Returns an IndexExistsError if
// name is already registered.
func (r *Registry) Create(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.indexes[name]; exists {
		return apperr.NewIndexExistsError(name)
	}
	r.indexes[name] = invindex.New()
	return nil
}

// Get returns the index registered under name, or an IndexNotFoundError.
func (r *Registry) Get(name string) (*invindex.Index, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, exists := r.indexes[name]
	if !exists {
		return nil, apperr.NewIndexNotFoundError(name)
	}
	return idx, nil
}

// Delete removes the index registered under name, returning an
// IndexNotFoundError if it was not present.
func (r *Registry) Delete(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.indexes[name]; !exists {
		return apperr.NewIndexNotFoundError(name)
	}
	delete(r.indexes, name)
	return nil
}

// DeleteAll drops every registered index.
func (r *Registry) DeleteAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.indexes = make(map[string]*invindex.Index)
}
