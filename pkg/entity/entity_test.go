package entity_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/mwantia/coda/pkg/entity"
	codaerrors "github.com/mwantia/coda/pkg/errors"
	"github.com/mwantia/coda/pkg/metadata"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resources = "/resources/simple"

var (
	one   = filepath.Join(resources, "one.txt")
	two   = filepath.Join(resources, "two", "two.txt")
	three = filepath.Join(resources, "three", "three.txt")
)

func newTestFs(t *testing.T) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	for _, path := range []string{one, two, three} {
		require.NoError(t, afero.WriteFile(fs, path, []byte(filepath.Base(path)), 0644))
	}
	return fs
}

func newTestFile(t *testing.T, fs afero.Fs, path string, md map[string]any) *entity.File {
	t.Helper()

	f, err := entity.NewFile(path, entity.WithFs(fs), entity.WithMetadataMap(md))
	require.NoError(t, err)
	return f
}

func TestFile_Properties(t *testing.T) {
	fs := newTestFs(t)

	tests := []struct {
		name     string
		path     string
		metadata map[string]any
	}{
		{"one", one, map[string]any{"one": 1}},
		{"two", two, map[string]any{"one": 1, "two": 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFile(t, fs, tt.path, tt.metadata)

			assert.Equal(t, tt.path, f.Path())
			assert.Equal(t, filepath.Dir(tt.path), f.Location())
			assert.Equal(t, filepath.Base(tt.path), f.Name())
			assert.Equal(t, "txt", f.Extension())
			assert.Equal(t, tt.path, f.String())

			for key, want := range tt.metadata {
				got, err := f.Get(key)
				require.NoError(t, err)
				assert.Equal(t, want, got)
			}
		})
	}
}

func TestFile_Extension(t *testing.T) {
	tests := map[string]string{
		"/a/archive.tar.gz": "gz",
		"/a/README":         "",
		"/a/.bashrc":        "bashrc",
		"/a/trailing.":      "",
	}

	for path, want := range tests {
		assert.Equal(t, want, entity.Restore(path, nil).Extension(), path)
	}
}

func TestFile_InvalidPath(t *testing.T) {
	fs := newTestFs(t)

	_, err := entity.NewFile("/resources/missing.txt", entity.WithFs(fs))
	assert.True(t, errors.Is(err, codaerrors.ErrInvalidPath))

	_, err = entity.NewFile(resources, entity.WithFs(fs))
	assert.True(t, errors.Is(err, codaerrors.ErrInvalidPath))
}

func TestFile_Metadata(t *testing.T) {
	fs := newTestFs(t)
	f := newTestFile(t, fs, one, map[string]any{"one": 1})

	f.Set("two", 2)
	value, err := f.Metadata().Get("two")
	require.NoError(t, err)
	assert.Equal(t, 2, value)

	_, err = f.Get("three")
	assert.True(t, errors.Is(err, codaerrors.ErrKeyNotFound))

	// structural writes never reach the metadata
	f.SetPath(two)
	assert.Equal(t, two, f.Path())
	assert.False(t, f.Metadata().Has("path"))
}

func TestFile_MetadataIsOwned(t *testing.T) {
	md := metadata.FromMap(map[string]any{"type": "text"})
	f := entity.Restore(one, md)

	md.Set("type", "changed")
	value, _ := f.Get("type")
	assert.Equal(t, "text", value)
}

func TestFile_Combine(t *testing.T) {
	fs := newTestFs(t)
	f1 := newTestFile(t, fs, one, map[string]any{"filetype": "text", "content": "data"})
	f2 := newTestFile(t, fs, two, map[string]any{"filetype": "text", "content": "nothing"})
	f3 := newTestFile(t, fs, three, map[string]any{"filetype": "text", "content": "something"})

	cl1, err := f1.Combine(f2)
	require.NoError(t, err)
	require.Equal(t, 2, cl1.Len())
	assert.Equal(t, one, cl1.At(0).Path())
	assert.Equal(t, two, cl1.At(1).Path())

	cl2, err := f3.Combine(cl1)
	require.NoError(t, err)
	assert.Equal(t, []string{three, one, two}, paths(cl2))

	same, err := f1.Combine(f1)
	require.NoError(t, err)
	assert.Equal(t, 1, same.Len())

	unchanged, err := f2.Combine(cl1)
	require.NoError(t, err)
	assert.Same(t, cl1, unchanged)

	var missing *entity.File
	_, err = f1.Combine(missing)
	assert.True(t, errors.Is(err, codaerrors.ErrUnsupportedOperand))

	_, err = f1.Combine(nil)
	assert.True(t, errors.Is(err, codaerrors.ErrUnsupportedOperand))
}

func paths(c *entity.Collection) []string {
	var res []string
	for f := range c.All() {
		res = append(res, f.Path())
	}
	return res
}
