// Package syncer keeps the local store and the remote document store
// converging: it runs the startup migration, drains the durable outbox,
// periodically pushes local-only records up, and serves reads from a
// per-session cache backed by the local store.
package syncer

import (
	"sync"

	"taskmarket/internal/models"
)

// ReadCache caches collection snapshots for the lifetime of a session so
// repeated reads do not hit SQLite. Writers keep it in step with the local
// store; Invalidate forces the next read to reload.
type ReadCache struct {
	mu   sync.RWMutex
	data map[string][]models.Doc
}

func NewReadCache() *ReadCache {
	return &ReadCache{data: make(map[string][]models.Doc)}
}

// Get returns a copy of the cached snapshot and whether one is present.
func (c *ReadCache) Get(collection string) ([]models.Doc, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	docs, ok := c.data[collection]
	if !ok {
		return nil, false
	}
	return models.CloneDocs(docs), true
}

// Set replaces the cached snapshot for a collection.
func (c *ReadCache) Set(collection string, docs []models.Doc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[collection] = models.CloneDocs(docs)
}

// Invalidate drops the cached snapshot for a collection.
func (c *ReadCache) Invalidate(collection string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, collection)
}

// Reset drops every cached snapshot.
func (c *ReadCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]models.Doc)
}
