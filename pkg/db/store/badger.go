package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

const prefixDocument = "doc:"

// BadgerStore implements DocumentStore on an embedded BadgerDB.
//
// Key layout:
//
//	doc:<base64url(path)>  ->  JSON encoded Document
//
// Queries on anything but the path scan the "doc:" prefix.
type BadgerStore struct {
	db *badger.DB
}

// BadgerConfig holds BadgerDB-specific configuration
type BadgerConfig struct {
	// Path is the data directory, ignored when InMemory is set
	Path     string
	InMemory bool
}

func NewBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, fmt.Errorf("badger path is required")
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	db, err := badger.Open(opts.WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	return &BadgerStore{db: db}, nil
}

func keyDocument(path string) []byte {
	return []byte(prefixDocument + documentKey(path))
}

func (*BadgerStore) Name() string {
	return "badger"
}

func (s *BadgerStore) Connect(ctx context.Context) error {
	return s.Health(ctx)
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Migrate is a no-op, documents carry their own schema
func (s *BadgerStore) Migrate(ctx context.Context) error {
	return nil
}

func (s *BadgerStore) Health(ctx context.Context) error {
	if s.db.IsClosed() {
		return fmt.Errorf("badger database is closed")
	}
	return nil
}

func (s *BadgerStore) Insert(ctx context.Context, doc *Document) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := keyDocument(doc.Path)

		_, err := txn.Get(key)
		if err == nil {
			return ErrExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		stored := doc.Clone()
		now := time.Now().UTC()
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = now
		}
		stored.UpdatedAt = now

		data, err := encodeDocument(stored)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

func (s *BadgerStore) Update(ctx context.Context, doc *Document) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := keyDocument(doc.Path)

		existing, err := getDocument(txn, key)
		if err != nil {
			return err
		}

		stored := doc.Clone()
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
		stored.UpdatedAt = time.Now().UTC()

		data, err := encodeDocument(stored)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

func (s *BadgerStore) Delete(ctx context.Context, query Query) (int, error) {
	var deleted int
	err := s.db.Update(func(txn *badger.Txn) error {
		docs, err := scanDocuments(txn, query)
		if err != nil {
			return err
		}

		for _, doc := range docs {
			if err := txn.Delete(keyDocument(doc.Path)); err != nil {
				return err
			}
		}

		deleted = len(docs)
		return nil
	})

	return deleted, err
}

func (s *BadgerStore) Find(ctx context.Context, query Query) ([]*Document, error) {
	var docs []*Document
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		docs, err = scanDocuments(txn, query)
		return err
	})

	return docs, err
}

func (s *BadgerStore) FindOne(ctx context.Context, query Query) (*Document, error) {
	docs, err := s.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	return first(docs)
}

func getDocument(txn *badger.Txn, key []byte) (*Document, error) {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var doc *Document
	err = item.Value(func(val []byte) error {
		doc, err = decodeDocument(val)
		return err
	})
	return doc, err
}

func scanDocuments(txn *badger.Txn, query Query) ([]*Document, error) {
	// A pinned path needs a single lookup instead of a prefix scan
	if path, ok := query.Path(); ok {
		doc, err := getDocument(txn, keyDocument(path))
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return filterDocuments([]*Document{doc}, query), nil
	}

	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefixDocument)

	it := txn.NewIterator(opts)
	defer it.Close()

	var docs []*Document
	for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
		err := it.Item().Value(func(val []byte) error {
			doc, err := decodeDocument(val)
			if err != nil {
				return err
			}
			docs = append(docs, doc)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return filterDocuments(docs, query), nil
}
