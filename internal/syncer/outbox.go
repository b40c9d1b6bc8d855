package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"taskmarket/internal/common"
	"taskmarket/internal/localstore"
	"taskmarket/internal/models"
)

// outboxBatch caps how many tasks a single drain pass loads.
const outboxBatch = 64

// drainOutbox replicates queued local writes to the remote store in FIFO
// order. The first task that still fails after its retries stops the pass;
// the task stays queued with its attempt count bumped and the ordering
// guarantee intact.
func (e *Engine) drainOutbox(ctx context.Context) error {
	tasks, err := e.local.ListOutbox(ctx, outboxBatch)
	if err != nil {
		return err
	}

	for _, task := range tasks {
		if err := e.applyWithRetry(ctx, task); err != nil {
			if bumpErr := e.local.BumpOutbox(ctx, task.ID, err.Error()); bumpErr != nil {
				return bumpErr
			}
			return fmt.Errorf("applying %s %s/%d: %w", task.Op, task.Collection, task.LocalID, err)
		}
		if err := e.local.AckOutbox(ctx, task.ID); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) applyWithRetry(ctx context.Context, task localstore.OutboxTask) error {
	backoff := retry.WithMaxRetries(e.cfg.OutboxMaxRetries,
		retry.NewExponential(500*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := e.applyOutboxTask(ctx, task); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

// applyOutboxTask performs one queued operation against the raw remote
// store. The identity map decides the concrete remote call; a localId lookup
// on the remote covers records created before the map knew about them.
func (e *Engine) applyOutboxTask(ctx context.Context, task localstore.OutboxTask) error {
	switch task.Op {
	case localstore.OpCreate:
		return e.replicateCreate(ctx, task)
	case localstore.OpUpdate:
		return e.replicateUpdate(ctx, task)
	case localstore.OpDelete:
		return e.replicateDelete(ctx, task)
	default:
		return fmt.Errorf("unknown outbox op %q", task.Op)
	}
}

func (e *Engine) replicateCreate(ctx context.Context, task localstore.OutboxTask) error {
	remoteID, err := e.local.GetMapping(ctx, task.Collection, task.LocalID)
	switch {
	case err == nil:
		// Already materialized (by a previous attempt or the push loop);
		// overwrite only if the remote copy is not newer than the payload.
		return e.setGuarded(ctx, task.Collection, remoteID, task.Payload)
	case errors.Is(err, common.ErrNotFound):
		return e.addAndMap(ctx, task.Collection, task.LocalID, task.Payload)
	default:
		return err
	}
}

func (e *Engine) replicateUpdate(ctx context.Context, task localstore.OutboxTask) error {
	remoteID, err := e.local.GetMapping(ctx, task.Collection, task.LocalID)
	switch {
	case err == nil:
		return e.setGuarded(ctx, task.Collection, remoteID, task.Payload)
	case errors.Is(err, common.ErrNotFound):
	default:
		return err
	}

	matches, err := e.raw.QueryEqual(ctx, task.Collection, models.FieldLocalID, task.LocalID)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		// Never reached the remote; an update of a local-only record is a
		// create from the remote's point of view.
		return e.addAndMap(ctx, task.Collection, task.LocalID, task.Payload)
	}

	remoteID = matches[0].RemoteID()
	if err := e.local.PutMapping(ctx, task.Collection, task.LocalID, remoteID); err != nil {
		return err
	}
	return e.setGuarded(ctx, task.Collection, remoteID, task.Payload)
}

func (e *Engine) replicateDelete(ctx context.Context, task localstore.OutboxTask) error {
	remoteID, err := e.local.GetMapping(ctx, task.Collection, task.LocalID)
	switch {
	case err == nil:
		if _, err := e.raw.Delete(ctx, task.Collection, remoteID); err != nil {
			return err
		}
		return e.local.DeleteMapping(ctx, task.Collection, task.LocalID)
	case errors.Is(err, common.ErrNotFound):
	default:
		return err
	}

	matches, err := e.raw.QueryEqual(ctx, task.Collection, models.FieldLocalID, task.LocalID)
	if err != nil {
		return err
	}
	for _, m := range matches {
		if _, err := e.raw.Delete(ctx, task.Collection, m.RemoteID()); err != nil {
			return err
		}
	}
	// Nothing matched: the record never reached the remote, so the delete is
	// already complete.
	return nil
}

// addAndMap creates the payload on the remote and records the id pair.
func (e *Engine) addAndMap(ctx context.Context, collection string, localID int64, payload models.Doc) error {
	added, err := e.raw.Add(ctx, collection, payload)
	if err != nil {
		return err
	}
	return e.local.PutMapping(ctx, collection, localID, added.RemoteID())
}

// setGuarded writes the payload unless the remote copy is newer. Last write
// wins by updatedAt; skipping a stale write counts as success so the task is
// acked and never retried.
func (e *Engine) setGuarded(ctx context.Context, collection, remoteID string, payload models.Doc) error {
	current, err := e.raw.GetByID(ctx, collection, remoteID)
	if err != nil {
		return err
	}
	if current != nil && current.UpdatedAt().After(payload.UpdatedAt()) {
		e.log.Debug(ctx, "skipping stale write", "collection", collection, "id", remoteID)
		return nil
	}
	_, err = e.raw.Set(ctx, collection, remoteID, payload)
	return err
}
