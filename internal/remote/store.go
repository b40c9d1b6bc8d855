// Package remote defines the capability interface over the authoritative
// remote document store and its SurrealDB-backed implementation.
//
// The remote store may be unreachable for a whole session. Callers on the
// read/migration path use the fail-soft wrapper, which converts every failure
// to an empty result; the outbox worker talks to the raw implementation so it
// can retry on real errors.
package remote

import (
	"context"

	"taskmarket/internal/models"
)

// Store is the set of operations the sync engine needs from the remote
// document store. Implementations must not retain the Doc values passed in.
type Store interface {
	// GetAll returns every document in the collection.
	GetAll(ctx context.Context, collection string) ([]models.Doc, error)

	// GetByID returns the document with the given remote id, or nil when it
	// does not exist.
	GetByID(ctx context.Context, collection, remoteID string) (models.Doc, error)

	// Add stores a new document and returns it annotated with the remote id
	// the store assigned.
	Add(ctx context.Context, collection string, payload models.Doc) (models.Doc, error)

	// Set writes the full document under the given remote id, creating it if
	// it does not exist and replacing it if it does.
	Set(ctx context.Context, collection, remoteID string, payload models.Doc) (models.Doc, error)

	// Update applies a partial patch to an existing document and returns the
	// full updated document, or nil when the document does not exist.
	Update(ctx context.Context, collection, remoteID string, patch models.Doc) (models.Doc, error)

	// Delete removes the document with the given remote id. Deleting a
	// missing document is not an error.
	Delete(ctx context.Context, collection, remoteID string) (bool, error)

	// QueryEqual returns the documents whose field equals value. Used to look
	// a record up by localId or by a unique business key.
	QueryEqual(ctx context.Context, collection, field string, value any) ([]models.Doc, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error
}
