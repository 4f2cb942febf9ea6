// Package registry keeps the metadata of the features compiled into the
// client, in the order they were registered.
package registry

import (
	"sync"

	"certa/pkg/appapi"
)

// Registry maps feature names to their metadata and instances.
type Registry struct {
	mu       sync.RWMutex
	names    []string
	features map[string]appapi.Feature
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{features: make(map[string]appapi.Feature)}
}

// Register adds f under its metadata name, replacing any earlier feature
// with that name while keeping its position.
func (r *Registry) Register(f appapi.Feature) {
	name := f.GetMetadata().Name
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.features[name]; !exists {
		r.names = append(r.names, name)
	}
	r.features[name] = f
}

// Get returns the feature registered as name.
func (r *Registry) Get(name string) (appapi.Feature, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.features[name]
	return f, ok
}

// Metadata returns the metadata of the feature registered as name.
func (r *Registry) Metadata(name string) (appapi.FeatureMetadata, bool) {
	f, ok := r.Get(name)
	if !ok {
		return appapi.FeatureMetadata{}, false
	}
	return f.GetMetadata(), true
}

// Names lists registered features in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.names...)
}

// All returns the metadata of every feature in registration order.
func (r *Registry) All() []appapi.FeatureMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]appapi.FeatureMetadata, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, r.features[n].GetMetadata())
	}
	return out
}
