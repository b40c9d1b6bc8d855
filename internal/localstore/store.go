// Package localstore implements the durable client-side store: one JSON
// document per collection, the signed-in session singleton, the replication
// outbox, and the localId-to-remote-id identity map.
//
// The store is the default serving store for the UI. Collection writes are
// whole-document replacements; there is no per-record locking, and a single
// logical writer per collection is assumed within one session.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"taskmarket/internal/common"
	"taskmarket/internal/dbx"
	"taskmarket/internal/logging"
	"taskmarket/internal/models"
)

// Store wraps the local SQLite database.
type Store struct {
	db  *sql.DB
	log logging.Logger
}

// New returns a Store bound to an already-migrated database handle.
func New(db *sql.DB, log logging.Logger) *Store {
	return &Store{db: db, log: log.With("component", "localstore")}
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the raw handle for transactional helpers.
func (s *Store) DB() *sql.DB { return s.db }

// ReadCollection returns the last written snapshot of the named collection.
// A missing or unparseable document is treated as absent, not as an error:
// the fallback empty snapshot is returned and the corruption is logged.
func (s *Store) ReadCollection(ctx context.Context, name string) ([]models.Doc, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM collections WHERE name = ?`, name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []models.Doc{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read collection %s: %w", name, err)
	}

	var docs []models.Doc
	if err := json.Unmarshal([]byte(raw), &docs); err != nil {
		s.log.Warn(ctx, "corrupt collection document, serving fallback",
			"collection", name, "error", err)
		return []models.Doc{}, nil
	}
	if docs == nil {
		docs = []models.Doc{}
	}
	return docs, nil
}

// WriteCollection replaces the named collection's snapshot.
func (s *Store) WriteCollection(ctx context.Context, name string, docs []models.Doc) error {
	return writeCollection(ctx, s.db, name, docs)
}

// writeCollection upserts the snapshot through db, which may be a transaction.
func writeCollection(ctx context.Context, db dbx.DBTX, name string, docs []models.Doc) error {
	raw, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("failed to encode collection %s: %w", name, err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO collections (name, doc) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET doc = excluded.doc`,
		name, string(raw))
	if err != nil {
		return fmt.Errorf("failed to write collection %s: %w", name, err)
	}
	return nil
}

// WriteCollectionAndEnqueue stores a new collection snapshot and the
// replication task describing the change in one transaction, so a crash can
// never persist a local mutation without the task that pushes it upstream.
func (s *Store) WriteCollectionAndEnqueue(ctx context.Context, name string, docs []models.Doc, task OutboxTask) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := writeCollection(ctx, tx, name, docs); err != nil {
			return err
		}
		return enqueueOutbox(ctx, tx, task)
	})
}

// GetSession returns the signed-in identity, or common.ErrNotFound when no
// one is signed in.
func (s *Store) GetSession(ctx context.Context) (*models.Session, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM session WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		s.log.Warn(ctx, "corrupt session document, treating as signed out", "error", err)
		return nil, common.ErrNotFound
	}
	return &sess, nil
}

// SetSession stores the signed-in identity singleton.
func (s *Store) SetSession(ctx context.Context, sess *models.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO session (id, doc) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET doc = excluded.doc`, string(raw))
	if err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// ClearSession signs the current identity out.
func (s *Store) ClearSession(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// ReplaceCollectionAndMappings atomically overwrites a collection snapshot
// and its identity mappings. Used by startup migration when the remote store
// is authoritative.
func (s *Store) ReplaceCollectionAndMappings(ctx context.Context, name string, docs []models.Doc, mappings map[int64]string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := writeCollection(ctx, tx, name, docs); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM identity_map WHERE collection = ?`, name); err != nil {
			return err
		}
		for localID, remoteID := range mappings {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO identity_map (collection, local_id, remote_id) VALUES (?, ?, ?)`,
				name, localID, remoteID); err != nil {
				return err
			}
		}
		return nil
	})
}
