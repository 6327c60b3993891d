package store

import (
	"context"
)

// DocumentStore defines the operations the repository needs from a
// persistent store holding one document per tracked path
type DocumentStore interface {
	// Name returns the store type as used in the configuration
	Name() string

	// Lifecycle
	Connect(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error
	Health(ctx context.Context) error

	// Insert adds a new document and fails with ErrExists if its path is taken
	Insert(ctx context.Context, doc *Document) error
	// Update overwrites all fields of the document stored under doc.Path,
	// keeping its id and creation time. Fails with ErrNotFound.
	Update(ctx context.Context, doc *Document) error
	// Delete removes every matching document and returns how many were removed
	Delete(ctx context.Context, query Query) (int, error)
	// Find returns all matching documents ordered by creation time
	Find(ctx context.Context, query Query) ([]*Document, error)
	// FindOne returns the first matching document or ErrNotFound
	FindOne(ctx context.Context, query Query) (*Document, error)
}
