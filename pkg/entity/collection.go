package entity

import (
	"iter"
	"strings"

	"github.com/mwantia/coda/pkg/errors"
	"github.com/mwantia/coda/pkg/metadata"
)

// MetadataMode tells how a collection obtains its aggregate metadata.
type MetadataMode int

const (
	// ModeLazy derives the aggregate from the intersection of all members.
	ModeLazy MetadataMode = iota
	// ModeFixed uses an explicitly supplied set and never derives again.
	ModeFixed
)

func (m MetadataMode) String() string {
	switch m {
	case ModeLazy:
		return "lazy"
	case ModeFixed:
		return "fixed"
	default:
		return "unknown"
	}
}

// Collection is an ordered sequence of files, unique by path, together with
// the metadata shared by the collection.
type Collection struct {
	files []*File

	mode  MetadataMode
	fixed *metadata.Set
}

// NewCollection builds a collection from files, dropping later duplicates.
// Passing WithMetadata puts the collection into ModeFixed.
func NewCollection(files []*File, opts ...Option) *Collection {
	o := newOptions(opts)

	c := &Collection{
		files: make([]*File, 0, len(files)),
	}
	for _, f := range files {
		if f != nil && !c.Contains(f) {
			c.files = append(c.files, f)
		}
	}

	if o.metadata != nil {
		c.mode = ModeFixed
		c.fixed = o.metadata.Clone()
	}
	return c
}

// NewCollectionFromDir enumerates every regular file below dir and wraps each
// one in a file with empty metadata.
func NewCollectionFromDir(dir string, opts ...Option) (*Collection, error) {
	o := newOptions(opts)

	info, err := o.fs.Stat(dir)
	if err != nil {
		return nil, errors.InvalidPath(err, dir)
	}
	if !info.IsDir() {
		return nil, errors.NotADirectory(dir)
	}

	paths, err := Walk(o.fs, dir)
	if err != nil {
		return nil, errors.InvalidPath(err, dir)
	}

	files := make([]*File, 0, len(paths))
	for _, path := range paths {
		files = append(files, Restore(path, nil))
	}

	return NewCollection(files, opts...), nil
}

func (c *Collection) Mode() MetadataMode {
	return c.mode
}

// Metadata returns the aggregate metadata of the collection. In ModeLazy it
// is recomputed from the current members on every call and an empty
// collection has an empty aggregate. The returned set is a copy, use
// AddMetadata or SetMetadata to change it.
func (c *Collection) Metadata() *metadata.Set {
	if c.mode == ModeFixed {
		return c.fixed.Clone()
	}

	if len(c.files) == 0 {
		return metadata.New()
	}

	res := c.files[0].metadata.Clone()
	for _, f := range c.files[1:] {
		res = res.Intersect(f.metadata)
	}
	return res
}

// SetMetadata switches the collection into ModeFixed with md as its
// aggregate. There is no way back to ModeLazy.
func (c *Collection) SetMetadata(md *metadata.Set) {
	c.mode = ModeFixed
	c.fixed = md.Clone()
}

// AddMetadata tags every member file and the collection itself with the
// given pairs. In ModeLazy the aggregate reflects them through the members.
func (c *Collection) AddMetadata(pairs map[string]any) {
	md := metadata.FromMap(pairs)

	for _, f := range c.files {
		assign(f.metadata, md)
	}
	if c.mode == ModeFixed {
		assign(c.fixed, md)
	}
}

func assign(dst, src *metadata.Set) {
	src.Clone().Range(func(key string, value any) bool {
		dst.Set(key, value)
		return true
	})
}

// Filter returns the members matching fn in their current order. The result
// is always lazy since a subset may share more metadata than the whole.
func (c *Collection) Filter(fn func(*File) bool) *Collection {
	files := make([]*File, 0, len(c.files))
	for _, f := range c.files {
		if fn(f) {
			files = append(files, f)
		}
	}
	return NewCollection(files)
}

// Union appends the members of other that are not yet part of c. Fixed
// metadata of c is carried over.
func (c *Collection) Union(other Operand) (*Collection, error) {
	if isNil(other) {
		return nil, errors.UnsupportedOperand("union", other)
	}

	files := append(c.Files(), other.members()...)
	if c.mode == ModeFixed {
		return NewCollection(files, WithMetadata(c.fixed)), nil
	}
	return NewCollection(files), nil
}

// Difference returns the members of c that are not part of other.
func (c *Collection) Difference(other Operand) (*Collection, error) {
	if isNil(other) {
		return nil, errors.UnsupportedOperand("difference", other)
	}

	exclude := NewCollection(other.members())
	return c.Filter(func(f *File) bool {
		return !exclude.Contains(f)
	}), nil
}

func (c *Collection) Contains(file *File) bool {
	for _, f := range c.files {
		if f.Equal(file) {
			return true
		}
	}
	return false
}

func (c *Collection) Len() int {
	return len(c.files)
}

// At returns the file at position idx and panics when out of range, just
// like indexing a slice.
func (c *Collection) At(idx int) *File {
	return c.files[idx]
}

// Files returns the members in order. The slice is a copy, the files are not.
func (c *Collection) Files() []*File {
	return append([]*File(nil), c.files...)
}

// All iterates the members in order. The sequence can be ranged over any
// number of times.
func (c *Collection) All() iter.Seq[*File] {
	return func(yield func(*File) bool) {
		for _, f := range c.files {
			if !yield(f) {
				return
			}
		}
	}
}

// Equal reports whether both collections have exactly the same members,
// regardless of order.
func (c *Collection) Equal(other *Collection) bool {
	if c == nil || other == nil {
		return c == other
	}
	if len(c.files) != len(other.files) {
		return false
	}
	for _, f := range c.files {
		if !other.Contains(f) {
			return false
		}
	}
	return true
}

func (c *Collection) String() string {
	paths := make([]string, 0, len(c.files))
	for _, f := range c.files {
		paths = append(paths, f.path)
	}
	return strings.Join(paths, "\n")
}

func (c *Collection) members() []*File {
	return c.files
}

func isNil(op Operand) bool {
	switch o := op.(type) {
	case *File:
		return o == nil
	case *Collection:
		return o == nil
	default:
		return op == nil
	}
}
