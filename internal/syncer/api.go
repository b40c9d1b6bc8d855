package syncer

import (
	"context"
	"fmt"
	"time"

	"taskmarket/internal/common"
	"taskmarket/internal/localstore"
	"taskmarket/internal/models"
)

// List returns the collection snapshot. The local store is authoritative;
// cached snapshots are served for the rest of the session once loaded.
func (e *Engine) List(ctx context.Context, collection string) ([]models.Doc, error) {
	if docs, ok := e.cache.Get(collection); ok {
		return docs, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	docs, err := e.local.ReadCollection(ctx, collection)
	if err != nil {
		return nil, err
	}
	e.cache.Set(collection, docs)
	return models.CloneDocs(docs), nil
}

// Get returns the record with the given local id.
func (e *Engine) Get(ctx context.Context, collection string, id int64) (models.Doc, error) {
	docs, err := e.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		if doc.ID() == id {
			return doc, nil
		}
	}
	return nil, fmt.Errorf("%s/%d: %w", collection, id, common.ErrNotFound)
}

// Create stores a new record locally and queues its replication. A missing
// id is assigned; localId and updatedAt are always stamped here so every
// record carries them before it leaves the process.
func (e *Engine) Create(ctx context.Context, collection string, doc models.Doc) (models.Doc, error) {
	doc = doc.Clone()
	if doc.ID() == 0 {
		id, err := e.nextID()
		if err != nil {
			return nil, err
		}
		doc.SetID(id)
	}
	doc.SetLocalID(doc.ID())
	doc.SetUpdatedAt(time.Now())

	e.mu.Lock()
	defer e.mu.Unlock()

	docs, err := e.local.ReadCollection(ctx, collection)
	if err != nil {
		return nil, err
	}
	for _, existing := range docs {
		if existing.ID() == doc.ID() {
			return nil, fmt.Errorf("%s/%d already exists: %w", collection, doc.ID(), common.ErrValidation)
		}
	}
	docs = append(docs, doc)

	if err := e.commit(ctx, collection, docs,
		localstore.NewOutboxTask(collection, localstore.OpCreate, doc.ID(), doc.Clone())); err != nil {
		return nil, err
	}
	return doc.Clone(), nil
}

// Put replaces the record with doc's id and queues the update. updatedAt is
// restamped so last-write-wins resolution favors this write.
func (e *Engine) Put(ctx context.Context, collection string, doc models.Doc) (models.Doc, error) {
	doc = doc.Clone()
	if doc.ID() == 0 {
		return nil, fmt.Errorf("record id required: %w", common.ErrValidation)
	}
	doc.SetLocalID(doc.ID())
	doc.SetUpdatedAt(time.Now())

	e.mu.Lock()
	defer e.mu.Unlock()

	docs, err := e.local.ReadCollection(ctx, collection)
	if err != nil {
		return nil, err
	}
	found := false
	for i, existing := range docs {
		if existing.ID() == doc.ID() {
			// Keep the remote id the snapshot already learned.
			if doc.RemoteID() == "" && existing.RemoteID() != "" {
				doc.SetRemoteID(existing.RemoteID())
			}
			docs[i] = doc
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%s/%d: %w", collection, doc.ID(), common.ErrNotFound)
	}

	if err := e.commit(ctx, collection, docs,
		localstore.NewOutboxTask(collection, localstore.OpUpdate, doc.ID(), doc.Clone())); err != nil {
		return nil, err
	}
	return doc.Clone(), nil
}

// Delete removes the record locally and queues the remote delete. Deleting
// a record that is already gone is a no-op.
func (e *Engine) Delete(ctx context.Context, collection string, id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	docs, err := e.local.ReadCollection(ctx, collection)
	if err != nil {
		return err
	}

	kept := docs[:0]
	found := false
	for _, doc := range docs {
		if doc.ID() == id {
			found = true
			continue
		}
		kept = append(kept, doc)
	}
	if !found {
		return nil
	}

	return e.commit(ctx, collection, kept,
		localstore.NewOutboxTask(collection, localstore.OpDelete, id, nil))
}

// commit persists the new snapshot together with its outbox task, then
// refreshes the cache. The two writes share one transaction so a mutation is
// never durable without the task that replicates it.
func (e *Engine) commit(ctx context.Context, collection string, docs []models.Doc, task localstore.OutboxTask) error {
	if err := e.local.WriteCollectionAndEnqueue(ctx, collection, docs, task); err != nil {
		return err
	}
	e.cache.Set(collection, docs)
	return nil
}
