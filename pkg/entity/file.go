package entity

import (
	"path/filepath"
	"strings"

	"github.com/mwantia/coda/pkg/errors"
	"github.com/mwantia/coda/pkg/metadata"
)

// Operand is either a *File or a *Collection.
type Operand interface {
	members() []*File
}

// File wraps one filesystem path and the metadata tagged onto it.
// Two files are equal when their paths are equal, metadata is not part of
// the identity.
type File struct {
	path     string
	metadata *metadata.Set
}

// NewFile validates that path refers to an existing non-directory and wraps
// it. The check happens once, a file moved afterwards is only noticed when
// it gets persisted or read again.
func NewFile(path string, opts ...Option) (*File, error) {
	o := newOptions(opts)

	info, err := o.fs.Stat(path)
	if err != nil {
		return nil, errors.InvalidPath(err, path)
	}
	if info.IsDir() {
		return nil, errors.NotAFile(path)
	}

	return Restore(path, o.metadata), nil
}

// Restore wraps path without touching the filesystem. It is used for records
// hydrated from a store, which own a fresh copy of md.
func Restore(path string, md *metadata.Set) *File {
	return &File{
		path:     path,
		metadata: md.Clone(),
	}
}

func (f *File) Path() string {
	return f.path
}

// SetPath changes the structural path of the file, never its metadata.
func (f *File) SetPath(path string) {
	f.path = path
}

func (f *File) Name() string {
	return filepath.Base(f.path)
}

func (f *File) Location() string {
	return filepath.Dir(f.path)
}

// Extension returns the part of the name after its last dot, or an empty
// string if the name has no dot.
func (f *File) Extension() string {
	name := f.Name()
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return ""
	}
	return name[idx+1:]
}

// Metadata returns the set owned by this file. Changes made to it are
// changes to the file.
func (f *File) Metadata() *metadata.Set {
	return f.metadata
}

func (f *File) Get(key string) (any, error) {
	return f.metadata.Get(key)
}

func (f *File) Set(key string, value any) {
	f.metadata.Set(key, value)
}

func (f *File) Equal(other *File) bool {
	if f == nil || other == nil {
		return f == other
	}
	return f.path == other.path
}

// Combine joins f with another file or collection:
//   - an equal file yields a singleton collection
//   - a collection that already contains f is returned unchanged
//   - anything else yields [f, other...] without duplicates
func (f *File) Combine(other Operand) (*Collection, error) {
	switch o := other.(type) {
	case *File:
		if o == nil {
			break
		}
		return NewCollection([]*File{f, o}), nil
	case *Collection:
		if o == nil {
			break
		}
		if o.Contains(f) {
			return o, nil
		}
		return NewCollection(append([]*File{f}, o.files...)), nil
	}

	return nil, errors.UnsupportedOperand("combine", other)
}

func (f *File) String() string {
	return f.path
}

func (f *File) members() []*File {
	return []*File{f}
}
