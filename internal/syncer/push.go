package syncer

import (
	"context"

	"taskmarket/internal/models"
)

// pushMissing walks every collection and uploads local records the remote
// does not have yet. Records with a queued outbox task are skipped so the
// outbox stays the single writer for in-flight changes. Failures are soft;
// the next pass picks up whatever is still missing.
func (e *Engine) pushMissing(ctx context.Context) {
	for _, collection := range models.Collections() {
		e.pushCollection(ctx, collection)
	}
}

func (e *Engine) pushCollection(ctx context.Context, collection string) {
	remoteDocs, err := e.soft.GetAll(ctx, collection)
	if err != nil || ctx.Err() != nil {
		return
	}

	// Set of localIds the remote already holds. A fresh listing rather than
	// the identity map, so records added remotely by another device are not
	// uploaded twice.
	onRemote := make(map[int64]struct{}, len(remoteDocs))
	remoteIDByLocal := make(map[int64]string, len(remoteDocs))
	for _, doc := range remoteDocs {
		if lid := doc.LocalID(); lid != 0 {
			onRemote[lid] = struct{}{}
			remoteIDByLocal[lid] = doc.RemoteID()
		}
	}

	pending, err := e.local.PendingOutboxIDs(ctx, collection)
	if err != nil {
		e.log.Warn(ctx, "push skipped, outbox unreadable", "collection", collection, "error", err)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Consulted under the lock: the remote snapshot above may predate an
	// upload a concurrent pass already recorded here.
	mappings, err := e.local.ListMappings(ctx, collection)
	if err != nil {
		e.log.Warn(ctx, "push skipped, identity map unreadable", "collection", collection, "error", err)
		return
	}

	localDocs, err := e.local.ReadCollection(ctx, collection)
	if err != nil {
		e.log.Warn(ctx, "push skipped, local unreadable", "collection", collection, "error", err)
		return
	}

	changed := false
	for _, doc := range localDocs {
		localID := doc.ID()
		if localID == 0 {
			continue
		}
		if _, inflight := pending[localID]; inflight {
			continue
		}
		if _, mapped := mappings[localID]; mapped {
			continue
		}

		if _, ok := onRemote[localID]; ok {
			// Self-heal the identity map for records another path uploaded.
			if rid := remoteIDByLocal[localID]; rid != "" && doc.RemoteID() != rid {
				doc.SetRemoteID(rid)
				changed = true
				if err := e.local.PutMapping(ctx, collection, localID, rid); err != nil {
					e.log.Warn(ctx, "mapping update failed", "collection", collection, "error", err)
				}
			}
			continue
		}

		doc.SetLocalID(localID)
		added, err := e.soft.Add(ctx, collection, doc)
		if err != nil || added == nil {
			continue
		}
		doc.SetRemoteID(added.RemoteID())
		changed = true
		if err := e.local.PutMapping(ctx, collection, localID, added.RemoteID()); err != nil {
			e.log.Warn(ctx, "mapping update failed", "collection", collection, "error", err)
		}
		e.log.Debug(ctx, "pushed local record", "collection", collection, "localId", localID)
	}

	if changed {
		if err := e.local.WriteCollection(ctx, collection, localDocs); err != nil {
			e.log.Warn(ctx, "snapshot write failed", "collection", collection, "error", err)
			return
		}
		e.cache.Set(collection, localDocs)
	}
}
