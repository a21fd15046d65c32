// Package revalidate tracks a version per view path. Mutations bump the
// version of the path they were told to refresh; readers compare versions
// to decide whether a cached rendering is stale.
package revalidate

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/phillip/evently-go/metrics"
)

type Entry struct {
	Path          string    `json:"path"`
	Version       uint64    `json:"version"`
	RevalidatedAt time.Time `json:"revalidatedAt"`
}

// DefaultMaxEntries bounds how many paths a registry tracks.
const DefaultMaxEntries = 1024

type Registry struct {
	mu         sync.RWMutex
	entries    map[string]Entry
	maxEntries int
	logger     zerolog.Logger
	now        func() time.Time
}

func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		entries:    map[string]Entry{},
		maxEntries: DefaultMaxEntries,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Revalidate marks path stale. An empty path is ignored. When the registry
// is full the least recently revalidated path is forgotten and reads as
// version 0 again.
func (r *Registry) Revalidate(_ context.Context, path string) {
	if path == "" {
		return
	}

	r.mu.Lock()
	if _, ok := r.entries[path]; !ok && len(r.entries) >= r.maxEntries {
		r.evictOldest()
	}
	e := r.entries[path]
	e.Path = path
	e.Version++
	e.RevalidatedAt = r.now()
	r.entries[path] = e
	r.mu.Unlock()

	metrics.Revalidations.Inc()
	r.logger.Debug().Str("path", path).Uint64("version", e.Version).Msg("path revalidated")
}

// Lookup returns the current entry for path. A path never revalidated has
// version 0.
func (r *Registry) Lookup(path string) Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[path]
	if !ok {
		return Entry{Path: path}
	}
	return e
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *Registry) Version(path string) uint64 {
	return r.Lookup(path).Version
}

// evictOldest must be called with mu held.
func (r *Registry) evictOldest() {
	var oldest string
	var at time.Time
	for path, e := range r.entries {
		if oldest == "" || e.RevalidatedAt.Before(at) {
			oldest, at = path, e.RevalidatedAt
		}
	}
	delete(r.entries, oldest)
}
