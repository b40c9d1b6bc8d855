package syncer

import (
	"context"
	"fmt"
	"sync"

	"taskmarket/internal/models"
)

// fakeRemote is an in-memory remote.Store with per-method failure injection.
type fakeRemote struct {
	mu      sync.Mutex
	tables  map[string]map[string]models.Doc
	nextID  int
	failing map[string]error
	calls   map[string]int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		tables:  make(map[string]map[string]models.Doc),
		failing: make(map[string]error),
		calls:   make(map[string]int),
	}
}

func (f *fakeRemote) fail(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failing, method)
	} else {
		f.failing[method] = err
	}
}

func (f *fakeRemote) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// seed places a document directly into a table, bypassing failure injection.
func (f *fakeRemote) seed(collection string, doc models.Doc) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.put(collection, doc)
}

func (f *fakeRemote) put(collection string, doc models.Doc) string {
	t := f.tables[collection]
	if t == nil {
		t = make(map[string]models.Doc)
		f.tables[collection] = t
	}
	rid := doc.RemoteID()
	if rid == "" {
		f.nextID++
		rid = fmt.Sprintf("r%d", f.nextID)
	}
	stored := doc.Clone()
	stored.SetRemoteID(rid)
	delete(stored, models.FieldID)
	t[rid] = stored
	return rid
}

func (f *fakeRemote) check(method string) error {
	f.calls[method]++
	return f.failing[method]
}

func (f *fakeRemote) GetAll(ctx context.Context, collection string) ([]models.Doc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("GetAll"); err != nil {
		return nil, err
	}
	var out []models.Doc
	for _, doc := range f.tables[collection] {
		out = append(out, doc.Clone())
	}
	return out, nil
}

func (f *fakeRemote) GetByID(ctx context.Context, collection, remoteID string) (models.Doc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("GetByID"); err != nil {
		return nil, err
	}
	doc, ok := f.tables[collection][remoteID]
	if !ok {
		return nil, nil
	}
	return doc.Clone(), nil
}

func (f *fakeRemote) Add(ctx context.Context, collection string, payload models.Doc) (models.Doc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("Add"); err != nil {
		return nil, err
	}
	doc := payload.Clone()
	delete(doc, models.FieldRemoteID)
	rid := f.put(collection, doc)
	return f.tables[collection][rid].Clone(), nil
}

func (f *fakeRemote) Set(ctx context.Context, collection, remoteID string, payload models.Doc) (models.Doc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("Set"); err != nil {
		return nil, err
	}
	doc := payload.Clone()
	doc.SetRemoteID(remoteID)
	f.put(collection, doc)
	return f.tables[collection][remoteID].Clone(), nil
}

func (f *fakeRemote) Update(ctx context.Context, collection, remoteID string, patch models.Doc) (models.Doc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("Update"); err != nil {
		return nil, err
	}
	doc, ok := f.tables[collection][remoteID]
	if !ok {
		return nil, nil
	}
	for k, v := range patch {
		if k == models.FieldID || k == models.FieldRemoteID {
			continue
		}
		doc[k] = v
	}
	return doc.Clone(), nil
}

func (f *fakeRemote) Delete(ctx context.Context, collection, remoteID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("Delete"); err != nil {
		return false, err
	}
	if _, ok := f.tables[collection][remoteID]; !ok {
		return false, nil
	}
	delete(f.tables[collection], remoteID)
	return true, nil
}

func (f *fakeRemote) QueryEqual(ctx context.Context, collection, field string, value any) ([]models.Doc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("QueryEqual"); err != nil {
		return nil, err
	}
	var out []models.Doc
	for _, doc := range f.tables[collection] {
		if fmt.Sprint(doc[field]) == fmt.Sprint(value) {
			out = append(out, doc.Clone())
		}
	}
	return out, nil
}

func (f *fakeRemote) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.check("Ping")
}
