package syncer

import (
	"context"
	"fmt"
	"strconv"

	"taskmarket/internal/models"
)

// migrate reconciles every collection with the remote store at the start of
// an online session. A non-empty remote wins wholesale: the local snapshot
// and identity map are replaced by the remote contents. An empty remote is
// seeded from whatever exists locally.
func (e *Engine) migrate(ctx context.Context) error {
	for _, collection := range models.Collections() {
		if err := e.migrateCollection(ctx, collection); err != nil {
			return fmt.Errorf("migrating %s: %w", collection, err)
		}
	}
	return nil
}

func (e *Engine) migrateCollection(ctx context.Context, collection string) error {
	remoteDocs, err := e.raw.GetAll(ctx, collection)
	if err != nil {
		// Leave the local snapshot untouched rather than guess.
		e.log.Warn(ctx, "skipping migration, remote read failed",
			"collection", collection, "error", err)
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if len(remoteDocs) > 0 {
		return e.adoptRemote(ctx, collection, remoteDocs)
	}

	localDocs, err := e.local.ReadCollection(ctx, collection)
	if err != nil {
		return err
	}
	if len(localDocs) == 0 {
		return nil
	}
	return e.seedRemote(ctx, collection, localDocs)
}

// adoptRemote replaces the local snapshot with the remote one. Every remote
// document gets a local id: the localId it already carries, its remote id
// when that is numeric, or a freshly generated one.
func (e *Engine) adoptRemote(ctx context.Context, collection string, remoteDocs []models.Doc) error {
	mappings := make(map[int64]string, len(remoteDocs))
	docs := make([]models.Doc, 0, len(remoteDocs))

	for _, doc := range remoteDocs {
		localID := doc.LocalID()
		if localID == 0 {
			if n, err := strconv.ParseInt(doc.RemoteID(), 10, 64); err == nil && n > 0 {
				localID = n
			} else {
				id, err := e.nextID()
				if err != nil {
					return fmt.Errorf("assigning local id: %w", err)
				}
				localID = id
			}
		}
		doc.SetID(localID)
		doc.SetLocalID(localID)
		if rid := doc.RemoteID(); rid != "" {
			mappings[localID] = rid
		}
		docs = append(docs, doc)
	}

	if err := e.local.ReplaceCollectionAndMappings(ctx, collection, docs, mappings); err != nil {
		return err
	}
	e.cache.Set(collection, docs)
	e.log.Info(ctx, "adopted remote collection", "collection", collection, "records", len(docs))
	return nil
}

// seedRemote pushes the local snapshot into an empty remote collection and
// records the assigned remote ids.
func (e *Engine) seedRemote(ctx context.Context, collection string, localDocs []models.Doc) error {
	pushed := 0
	for _, doc := range localDocs {
		localID := doc.ID()
		if localID == 0 {
			continue
		}
		doc.SetLocalID(localID)

		added, err := e.raw.Add(ctx, collection, doc)
		if err != nil {
			e.log.Warn(ctx, "seeding record failed",
				"collection", collection, "localId", localID, "error", err)
			continue
		}
		doc.SetRemoteID(added.RemoteID())
		if err := e.local.PutMapping(ctx, collection, localID, added.RemoteID()); err != nil {
			return err
		}
		pushed++
	}

	if err := e.local.WriteCollection(ctx, collection, localDocs); err != nil {
		return err
	}
	e.cache.Set(collection, localDocs)
	if pushed > 0 {
		e.log.Info(ctx, "seeded remote collection", "collection", collection, "records", pushed)
	}
	return nil
}
