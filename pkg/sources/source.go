// Package sources defines the Loader interface through which the pipeline
// reads record sources, and a thread-safe Registry that picks a Loader by
// the source identifier's file extension.
//
// Example usage:
//
//	reg := sources.NewRegistry(csvfile.New())
//	reg.Set(".tsv", csvfile.New(csvfile.WithComma('\t')))
//
//	recs, err := reg.Load(ctx, "people.tsv")
//	if err != nil {
//	    log.Fatal(err)
//	}
package sources

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/records"
)

// Loader reads every record of one source.
type Loader interface {
	// Load returns the records of the source named by id in source order.
	// Each record's Source is set to id.
	Load(ctx context.Context, id string) ([]*records.Record, error)
}

// LoaderFunc adapts an ordinary function to the Loader interface.
type LoaderFunc func(ctx context.Context, id string) ([]*records.Record, error)

// Load calls f(ctx, id).
func (f LoaderFunc) Load(ctx context.Context, id string) ([]*records.Record, error) {
	return f(ctx, id)
}

// Registry is a thread-safe set of loaders keyed by file extension.
// Identifiers whose extension has no loader use the fallback.
type Registry struct {
	mu       sync.RWMutex
	loaders  map[string]Loader
	fallback Loader
}

// NewRegistry creates a registry that uses fallback for unregistered
// extensions. fallback may be nil.
func NewRegistry(fallback Loader) *Registry {
	return &Registry{
		loaders:  make(map[string]Loader),
		fallback: fallback,
	}
}

// Get returns the loader registered for ext.
func (r *Registry) Get(ext string) (Loader, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, found := r.loaders[normalizeExt(ext)]
	return l, found
}

// Set registers l for ext. The extension is matched case-insensitively,
// with or without its leading dot.
func (r *Registry) Set(ext string, l Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[normalizeExt(ext)] = l
}

// Delete removes the loader registered for ext.
func (r *Registry) Delete(ext string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.loaders, normalizeExt(ext))
}

// Extensions returns the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.loaders))
	for ext := range r.loaders {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// Resolve returns the loader for id.
func (r *Registry) Resolve(id string) (Loader, error) {
	if l, ok := r.Get(filepath.Ext(id)); ok {
		return l, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.fallback == nil {
		return nil, &errors.ValidationError{
			Field:   "source",
			Value:   id,
			Message: "no loader for extension " + filepath.Ext(id),
		}
	}
	return r.fallback, nil
}

// Load implements Loader by dispatching on id's extension.
func (r *Registry) Load(ctx context.Context, id string) ([]*records.Record, error) {
	l, err := r.Resolve(id)
	if err != nil {
		return nil, err
	}
	return l.Load(ctx, id)
}

func normalizeExt(ext string) string {
	return "." + strings.ToLower(strings.TrimPrefix(ext, "."))
}
