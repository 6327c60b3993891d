package entity

import (
	"github.com/mwantia/coda/pkg/metadata"
	"github.com/spf13/afero"
)

type options struct {
	fs       afero.Fs
	metadata *metadata.Set
}

type Option func(*options)

// WithFs sets the filesystem paths are validated and enumerated against.
// The operating system filesystem is used when omitted.
func WithFs(fs afero.Fs) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithMetadata attaches an explicit metadata set. For a file it becomes the
// file's own metadata, for a collection it switches the collection into
// fixed metadata mode, even when the set is empty.
func WithMetadata(md *metadata.Set) Option {
	return func(o *options) {
		o.metadata = md
	}
}

// WithMetadataMap is WithMetadata for a plain mapping.
func WithMetadataMap(m map[string]any) Option {
	return WithMetadata(metadata.FromMap(m))
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.fs == nil {
		o.fs = afero.NewOsFs()
	}
	return o
}
