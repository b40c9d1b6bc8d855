package remote

import (
	"context"

	"taskmarket/internal/logging"
	"taskmarket/internal/models"
)

// FailSoft wraps a Store so that remote failures degrade to empty results
// instead of propagating. The application keeps working off local data when
// the remote is down; every swallowed error is logged.
//
// The outbox worker must NOT use this wrapper: it relies on real errors to
// drive its retry schedule.
type FailSoft struct {
	inner Store
	log   logging.Logger
}

var _ Store = (*FailSoft)(nil)

func NewFailSoft(inner Store, log logging.Logger) *FailSoft {
	return &FailSoft{inner: inner, log: log.With("component", "remote.failsoft")}
}

func (f *FailSoft) GetAll(ctx context.Context, collection string) ([]models.Doc, error) {
	docs, err := f.inner.GetAll(ctx, collection)
	if err != nil {
		f.log.Warn(ctx, "remote getAll failed", "collection", collection, "error", err)
		return nil, nil
	}
	return docs, nil
}

func (f *FailSoft) GetByID(ctx context.Context, collection, remoteID string) (models.Doc, error) {
	doc, err := f.inner.GetByID(ctx, collection, remoteID)
	if err != nil {
		f.log.Warn(ctx, "remote getByID failed", "collection", collection, "id", remoteID, "error", err)
		return nil, nil
	}
	return doc, nil
}

func (f *FailSoft) Add(ctx context.Context, collection string, payload models.Doc) (models.Doc, error) {
	doc, err := f.inner.Add(ctx, collection, payload)
	if err != nil {
		f.log.Warn(ctx, "remote add failed", "collection", collection, "error", err)
		return nil, nil
	}
	return doc, nil
}

func (f *FailSoft) Set(ctx context.Context, collection, remoteID string, payload models.Doc) (models.Doc, error) {
	doc, err := f.inner.Set(ctx, collection, remoteID, payload)
	if err != nil {
		f.log.Warn(ctx, "remote set failed", "collection", collection, "id", remoteID, "error", err)
		return nil, nil
	}
	return doc, nil
}

func (f *FailSoft) Update(ctx context.Context, collection, remoteID string, patch models.Doc) (models.Doc, error) {
	doc, err := f.inner.Update(ctx, collection, remoteID, patch)
	if err != nil {
		f.log.Warn(ctx, "remote update failed", "collection", collection, "id", remoteID, "error", err)
		return nil, nil
	}
	return doc, nil
}

func (f *FailSoft) Delete(ctx context.Context, collection, remoteID string) (bool, error) {
	ok, err := f.inner.Delete(ctx, collection, remoteID)
	if err != nil {
		f.log.Warn(ctx, "remote delete failed", "collection", collection, "id", remoteID, "error", err)
		return false, nil
	}
	return ok, nil
}

func (f *FailSoft) QueryEqual(ctx context.Context, collection, field string, value any) ([]models.Doc, error) {
	docs, err := f.inner.QueryEqual(ctx, collection, field, value)
	if err != nil {
		f.log.Warn(ctx, "remote query failed", "collection", collection, "field", field, "error", err)
		return nil, nil
	}
	return docs, nil
}

func (f *FailSoft) Ping(ctx context.Context) error {
	return f.inner.Ping(ctx)
}
