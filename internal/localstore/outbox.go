package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskmarket/internal/common"
	"taskmarket/internal/dbx"
	"taskmarket/internal/models"
)

// Replication operations carried by outbox tasks.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// OutboxTask is one pending replication of a local mutation to the remote
// store. Tasks are durable until acknowledged: a task is removed only after
// the remote call it describes has succeeded.
type OutboxTask struct {
	ID         string
	Collection string
	Op         string
	LocalID    int64
	// Payload is the record as of enqueue time; empty for deletes.
	Payload   models.Doc
	Attempts  int
	LastError string
	CreatedAt time.Time
}

// NewOutboxTask builds a task with a fresh id and creation timestamp.
func NewOutboxTask(collection, op string, localID int64, payload models.Doc) OutboxTask {
	return OutboxTask{
		ID:         uuid.NewString(),
		Collection: collection,
		Op:         op,
		LocalID:    localID,
		Payload:    payload,
		CreatedAt:  time.Now().UTC(),
	}
}

// EnqueueOutbox appends a replication task to the durable queue.
func (s *Store) EnqueueOutbox(ctx context.Context, task OutboxTask) error {
	return enqueueOutbox(ctx, s.db, task)
}

// enqueueOutbox inserts a task through db, which may be a transaction.
// created_at is stored as integer unix nanoseconds: the queue is ordered by
// this column, and a textual timestamp would not sort chronologically once
// trailing fractional zeros are trimmed.
func enqueueOutbox(ctx context.Context, db dbx.DBTX, task OutboxTask) error {
	payload := "{}"
	if task.Payload != nil {
		raw, err := json.Marshal(task.Payload)
		if err != nil {
			return fmt.Errorf("failed to encode outbox payload: %w", err)
		}
		payload = string(raw)
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO outbox (id, collection, op, local_id, payload, attempts, last_error, created_at)
		 VALUES (?, ?, ?, ?, ?, 0, '', ?)`,
		task.ID, task.Collection, task.Op, task.LocalID, payload,
		task.CreatedAt.UTC().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to enqueue outbox task: %w", err)
	}
	return nil
}

// ListOutbox returns up to limit pending tasks in enqueue order.
func (s *Store) ListOutbox(ctx context.Context, limit int) ([]OutboxTask, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, collection, op, local_id, payload, attempts, last_error, created_at
		 FROM outbox ORDER BY created_at, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list outbox: %w", err)
	}
	defer rows.Close()

	var tasks []OutboxTask
	for rows.Next() {
		var t OutboxTask
		var payload string
		var createdAt int64
		if err := rows.Scan(&t.ID, &t.Collection, &t.Op, &t.LocalID,
			&payload, &t.Attempts, &t.LastError, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payload), &t.Payload); err != nil {
			return nil, fmt.Errorf("corrupt outbox payload %s: %w", t.ID, err)
		}
		t.CreatedAt = time.Unix(0, createdAt).UTC()
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// AckOutbox removes an acknowledged task from the queue.
func (s *Store) AckOutbox(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM outbox WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to ack outbox task: %w", err)
	}
	return nil
}

// BumpOutbox records a failed delivery attempt so the task survives for the
// next drain cycle.
func (s *Store) BumpOutbox(ctx context.Context, id string, lastError string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE outbox SET attempts = attempts + 1, last_error = ? WHERE id = ?`,
		lastError, id)
	if err != nil {
		return fmt.Errorf("failed to bump outbox task: %w", err)
	}
	return nil
}

// PendingOutboxIDs returns the local ids of records with queued work for a
// collection. The push loop skips these so it does not race the worker.
func (s *Store) PendingOutboxIDs(ctx context.Context, collection string) (map[int64]struct{}, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT local_id FROM outbox WHERE collection = ?`, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending outbox ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// GetMapping returns the remote id linked to a local record, or
// common.ErrNotFound when the record has never been replicated.
func (s *Store) GetMapping(ctx context.Context, collection string, localID int64) (string, error) {
	var remoteID string
	err := s.db.QueryRowContext(ctx,
		`SELECT remote_id FROM identity_map WHERE collection = ? AND local_id = ?`,
		collection, localID).Scan(&remoteID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", common.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read identity mapping: %w", err)
	}
	return remoteID, nil
}

// PutMapping records (or replaces) the remote id linked to a local record.
func (s *Store) PutMapping(ctx context.Context, collection string, localID int64, remoteID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO identity_map (collection, local_id, remote_id) VALUES (?, ?, ?)
		 ON CONFLICT(collection, local_id) DO UPDATE SET remote_id = excluded.remote_id`,
		collection, localID, remoteID)
	if err != nil {
		return fmt.Errorf("failed to put identity mapping: %w", err)
	}
	return nil
}

// DeleteMapping drops the link for a locally deleted record.
func (s *Store) DeleteMapping(ctx context.Context, collection string, localID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM identity_map WHERE collection = ? AND local_id = ?`,
		collection, localID)
	if err != nil {
		return fmt.Errorf("failed to delete identity mapping: %w", err)
	}
	return nil
}

// ListMappings returns every localId-to-remote-id link for a collection.
func (s *Store) ListMappings(ctx context.Context, collection string) (map[int64]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT local_id, remote_id FROM identity_map WHERE collection = ?`, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list identity mappings: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]string)
	for rows.Next() {
		var localID int64
		var remoteID string
		if err := rows.Scan(&localID, &remoteID); err != nil {
			return nil, err
		}
		out[localID] = remoteID
	}
	return out, rows.Err()
}
