package repository

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"github.com/mwantia/coda/pkg/db/store"
	"github.com/mwantia/coda/pkg/entity"
	"github.com/mwantia/coda/pkg/errors"
	"github.com/mwantia/coda/pkg/log"
	"github.com/mwantia/coda/pkg/metadata"
)

// Service is the contract the command line works against.
type Service interface {
	Save(ctx context.Context, target entity.Operand) error
	Delete(ctx context.Context, target entity.Operand) error
	Find(ctx context.Context, query store.Query) (*entity.Collection, bool, error)
	FindOne(ctx context.Context, query store.Query) (*entity.File, bool, error)
	Status(ctx context.Context) error
}

// Repository translates files and collections into store documents and back.
type Repository struct {
	store store.DocumentStore
	log   log.LoggerService
	write bool
}

type Option func(*Repository)

// WithReadOnly rejects every Save and Delete with a persistence error.
func WithReadOnly() Option {
	return func(r *Repository) {
		r.write = false
	}
}

func WithLogger(logger log.LoggerService) Option {
	return func(r *Repository) {
		r.log = logger
	}
}

func NewRepository(s store.DocumentStore, opts ...Option) *Repository {
	r := &Repository{
		store: s,
		write: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Save writes every file of target. A file whose path is already stored has
// its record overwritten, last writer wins; any other file gets a new record.
func (r *Repository) Save(ctx context.Context, target entity.Operand) error {
	if !r.write {
		return errors.ReadOnly("save")
	}

	files, err := members(target, "save")
	if err != nil {
		return err
	}

	for _, f := range files {
		if err := r.save(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) save(ctx context.Context, f *entity.File) error {
	doc := &store.Document{
		Path:   f.Path(),
		Fields: fields(f.Metadata()),
	}

	err := r.store.Update(ctx, doc)
	if stderrors.Is(err, store.ErrNotFound) {
		doc.ID = uuid.NewString()
		err = r.store.Insert(ctx, doc)
		if err == nil {
			r.debug("inserted record '%s' for %s", doc.ID, doc.Path)
		}
	} else if err == nil {
		r.debug("updated record for %s", doc.Path)
	}

	if err != nil {
		return errors.Persistence(err, "failed to save '%s'", f.Path())
	}
	return nil
}

// Delete removes the records of every file of target. Paths that were never
// stored are ignored.
func (r *Repository) Delete(ctx context.Context, target entity.Operand) error {
	if !r.write {
		return errors.ReadOnly("delete")
	}

	files, err := members(target, "delete")
	if err != nil {
		return err
	}

	for _, f := range files {
		deleted, err := r.store.Delete(ctx, store.Query{store.FieldPath: f.Path()})
		if err != nil {
			return errors.Persistence(err, "failed to delete '%s'", f.Path())
		}
		r.debug("deleted %d record(s) for %s", deleted, f.Path())
	}
	return nil
}

// Find returns every stored file matching query. It reports false when
// nothing matched, which is different from an empty collection.
func (r *Repository) Find(ctx context.Context, query store.Query) (*entity.Collection, bool, error) {
	docs, err := r.store.Find(ctx, query)
	if err != nil {
		return nil, false, errors.Persistence(err, "failed to query store")
	}
	if len(docs) == 0 {
		return nil, false, nil
	}

	files := make([]*entity.File, 0, len(docs))
	for _, doc := range docs {
		f, err := hydrate(doc)
		if err != nil {
			return nil, false, err
		}
		files = append(files, f)
	}

	return entity.NewCollection(files), true, nil
}

// FindOne returns the first stored file matching query.
func (r *Repository) FindOne(ctx context.Context, query store.Query) (*entity.File, bool, error) {
	doc, err := r.store.FindOne(ctx, query)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Persistence(err, "failed to query store")
	}

	f, err := hydrate(doc)
	if err != nil {
		return nil, false, err
	}
	return f, true, nil
}

// Status probes the store connection.
func (r *Repository) Status(ctx context.Context) error {
	if err := r.store.Health(ctx); err != nil {
		return errors.Persistence(err, "%s store is not reachable", r.store.Name())
	}
	return nil
}

func (r *Repository) debug(msg string, args ...any) {
	if r.log != nil {
		r.log.Debug(msg, args...)
	}
}

func members(target entity.Operand, op string) ([]*entity.File, error) {
	switch t := target.(type) {
	case *entity.File:
		if t != nil {
			return []*entity.File{t}, nil
		}
	case *entity.Collection:
		if t != nil {
			return t.Files(), nil
		}
	}
	return nil, errors.UnsupportedOperand(op, target)
}

// fields strips the structural keys a stored record keeps separately.
func fields(md *metadata.Set) *metadata.Set {
	res := md.Clone()
	res.Delete(store.FieldPath)
	res.Delete(store.FieldID)
	return res
}

func hydrate(doc *store.Document) (*entity.File, error) {
	if doc.Path == "" {
		return nil, errors.InconsistentRecord(doc.ID)
	}
	return entity.Restore(doc.Path, fields(doc.Fields)), nil
}
