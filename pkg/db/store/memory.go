package store

import (
	"context"
	"sync"
	"time"

	"github.com/tidwall/btree"
)

// MemoryStore keeps documents in an in-process B-tree keyed by path.
// Nothing survives the process, which makes it the store used by tests.
type MemoryStore struct {
	mu sync.RWMutex

	docs *btree.Map[string, *Document]
	last time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: btree.NewMap[string, *Document](0),
	}
}

func (*MemoryStore) Name() string {
	return "memory"
}

func (ms *MemoryStore) Connect(ctx context.Context) error {
	return nil
}

func (ms *MemoryStore) Close() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.docs.Clear()
	return nil
}

func (ms *MemoryStore) Migrate(ctx context.Context) error {
	return nil
}

func (ms *MemoryStore) Health(ctx context.Context) error {
	return nil
}

func (ms *MemoryStore) Insert(ctx context.Context, doc *Document) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.docs.Get(doc.Path); ok {
		return ErrExists
	}

	stored := doc.Clone()
	now := ms.now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	ms.docs.Set(stored.Path, stored)
	return nil
}

func (ms *MemoryStore) Update(ctx context.Context, doc *Document) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	existing, ok := ms.docs.Get(doc.Path)
	if !ok {
		return ErrNotFound
	}

	stored := doc.Clone()
	stored.ID = existing.ID
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = ms.now()

	ms.docs.Set(stored.Path, stored)
	return nil
}

func (ms *MemoryStore) Delete(ctx context.Context, query Query) (int, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	matches := ms.scan(query)
	for _, doc := range matches {
		ms.docs.Delete(doc.Path)
	}
	return len(matches), nil
}

func (ms *MemoryStore) Find(ctx context.Context, query Query) ([]*Document, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	matches := ms.scan(query)
	docs := make([]*Document, 0, len(matches))
	for _, doc := range matches {
		docs = append(docs, doc.Clone())
	}
	return docs, nil
}

func (ms *MemoryStore) FindOne(ctx context.Context, query Query) (*Document, error) {
	docs, err := ms.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	return first(docs)
}

func (ms *MemoryStore) scan(query Query) []*Document {
	if path, ok := query.Path(); ok {
		doc, found := ms.docs.Get(path)
		if !found {
			return nil
		}
		return filterDocuments([]*Document{doc}, query)
	}

	docs := make([]*Document, 0, ms.docs.Len())
	ms.docs.Scan(func(_ string, doc *Document) bool {
		docs = append(docs, doc)
		return true
	})
	return filterDocuments(docs, query)
}

// now returns strictly increasing timestamps so that insertion order
// survives clocks with a coarse resolution.
func (ms *MemoryStore) now() time.Time {
	now := time.Now().UTC()
	if !now.After(ms.last) {
		now = ms.last.Add(time.Nanosecond)
	}
	ms.last = now
	return now
}
