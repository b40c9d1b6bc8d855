package remote

import (
	"context"
	"fmt"

	surrealdb "github.com/surrealdb/surrealdb.go"

	"taskmarket/internal/logging"
	"taskmarket/internal/models"
)

// Config describes how to reach and authenticate against SurrealDB.
type Config struct {
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string
}

// SurrealStore implements Store on a SurrealDB connection.
type SurrealStore struct {
	db  *surrealdb.DB
	log logging.Logger
}

var _ Store = (*SurrealStore)(nil)

// Connect dials SurrealDB, selects the namespace/database and signs in.
func Connect(ctx context.Context, cfg Config, log logging.Logger) (*SurrealStore, error) {
	db, err := surrealdb.FromEndpointURLString(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.URL, err)
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("selecting %s/%s: %w", cfg.Namespace, cfg.Database, err)
	}

	token, err := db.SignIn(ctx, &surrealdb.Auth{
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("signing in: %w", err)
	}
	if err := db.Authenticate(ctx, token); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("authenticating: %w", err)
	}

	return &SurrealStore{db: db, log: log.With("component", "remote")}, nil
}

// Close releases the underlying connection.
func (s *SurrealStore) Close(ctx context.Context) error {
	return s.db.Close(ctx)
}

func (s *SurrealStore) GetAll(ctx context.Context, collection string) ([]models.Doc, error) {
	raw, err := surrealdb.Select[[]map[string]any](ctx, s.db, collection)
	if err != nil {
		return nil, fmt.Errorf("selecting %s: %w", collection, err)
	}
	if raw == nil {
		return nil, nil
	}
	docs := make([]models.Doc, 0, len(*raw))
	for _, m := range *raw {
		docs = append(docs, fromSurreal(m))
	}
	return docs, nil
}

func (s *SurrealStore) GetByID(ctx context.Context, collection, remoteID string) (models.Doc, error) {
	rid := recordID(collection, remoteID)
	raw, err := surrealdb.Select[map[string]any](ctx, s.db, rid)
	if err != nil {
		return nil, fmt.Errorf("selecting %s:%s: %w", collection, remoteID, err)
	}
	if raw == nil || len(*raw) == 0 {
		return nil, nil
	}
	return fromSurreal(*raw), nil
}

func (s *SurrealStore) Add(ctx context.Context, collection string, payload models.Doc) (models.Doc, error) {
	created, err := surrealdb.Create[map[string]any](ctx, s.db, collection, toSurreal(payload))
	if err != nil {
		return nil, fmt.Errorf("creating in %s: %w", collection, err)
	}
	if created == nil {
		return nil, fmt.Errorf("creating in %s: empty response", collection)
	}
	return fromSurreal(*created), nil
}

func (s *SurrealStore) Set(ctx context.Context, collection, remoteID string, payload models.Doc) (models.Doc, error) {
	rid := recordID(collection, remoteID)
	updated, err := surrealdb.Upsert[map[string]any](ctx, s.db, rid, toSurreal(payload))
	if err != nil {
		return nil, fmt.Errorf("upserting %s:%s: %w", collection, remoteID, err)
	}
	if updated == nil {
		return nil, fmt.Errorf("upserting %s:%s: empty response", collection, remoteID)
	}
	return fromSurreal(*updated), nil
}

func (s *SurrealStore) Update(ctx context.Context, collection, remoteID string, patch models.Doc) (models.Doc, error) {
	rid := recordID(collection, remoteID)
	merged, err := surrealdb.Merge[map[string]any](ctx, s.db, rid, toSurreal(patch))
	if err != nil {
		return nil, fmt.Errorf("merging %s:%s: %w", collection, remoteID, err)
	}
	if merged == nil || len(*merged) == 0 {
		return nil, nil
	}
	return fromSurreal(*merged), nil
}

func (s *SurrealStore) Delete(ctx context.Context, collection, remoteID string) (bool, error) {
	rid := recordID(collection, remoteID)
	deleted, err := surrealdb.Delete[map[string]any](ctx, s.db, rid)
	if err != nil {
		return false, fmt.Errorf("deleting %s:%s: %w", collection, remoteID, err)
	}
	return deleted != nil && len(*deleted) > 0, nil
}

func (s *SurrealStore) QueryEqual(ctx context.Context, collection, field string, value any) ([]models.Doc, error) {
	const q = `SELECT * FROM type::table($tb) WHERE type::field($field) = $value`
	vars := map[string]any{
		"tb":    collection,
		"field": field,
		"value": value,
	}

	res, err := surrealdb.Query[[]map[string]any](ctx, s.db, q, vars)
	if err != nil {
		return nil, fmt.Errorf("querying %s where %s: %w", collection, field, err)
	}
	if res == nil || len(*res) == 0 {
		return nil, nil
	}
	rows := (*res)[0].Result
	docs := make([]models.Doc, 0, len(rows))
	for _, m := range rows {
		docs = append(docs, fromSurreal(m))
	}
	return docs, nil
}

func (s *SurrealStore) Ping(ctx context.Context) error {
	_, err := surrealdb.Query[any](ctx, s.db, "RETURN 1", nil)
	if err != nil {
		return fmt.Errorf("pinging: %w", err)
	}
	return nil
}
