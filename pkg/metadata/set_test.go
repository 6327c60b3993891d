package metadata_test

import (
	"encoding/json"
	"errors"
	"testing"

	codaerrors "github.com/mwantia/coda/pkg/errors"
	"github.com/mwantia/coda/pkg/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_GetSet(t *testing.T) {
	s := metadata.New()
	s.Set("type", "text")
	s.Set("length", 7)

	value, err := s.Get("type")
	require.NoError(t, err)
	assert.Equal(t, "text", value)

	s.Set("type", "source")
	value, err = s.Get("type")
	require.NoError(t, err)
	assert.Equal(t, "source", value)
	assert.Equal(t, []string{"type", "length"}, s.Keys())

	_, err = s.Get("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, codaerrors.ErrKeyNotFound))
}

func TestSet_Delete(t *testing.T) {
	s := metadata.FromMap(map[string]any{"a": 1, "b": 2, "c": 3})
	s.Delete("b")
	s.Delete("missing")

	assert.Equal(t, []string{"a", "c"}, s.Keys())
	assert.False(t, s.Has("b"))
}

func TestSet_UnionIsRightBiased(t *testing.T) {
	a := metadata.FromMap(map[string]any{"cohort": "simple", "type": "text"})
	b := metadata.FromMap(map[string]any{"type": "source", "keep": true})

	u := a.Union(b)

	assert.Equal(t, []string{"cohort", "type", "keep"}, u.Keys())
	for _, key := range b.Keys() {
		want, _ := b.Get(key)
		got, err := u.Get(key)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// operands are left untouched
	value, _ := a.Get("type")
	assert.Equal(t, "text", value)
}

func TestSet_Intersect(t *testing.T) {
	tests := []struct {
		name string
		a, b map[string]any
		want map[string]any
	}{
		{
			name: "identical values kept",
			a:    map[string]any{"type": "text", "cohort": "simple"},
			b:    map[string]any{"type": "text", "cohort": "simple"},
			want: map[string]any{"type": "text", "cohort": "simple"},
		},
		{
			name: "partial overlap drops key",
			a:    map[string]any{"type": "text", "content": "data"},
			b:    map[string]any{"type": "text", "content": "nothing"},
			want: map[string]any{"type": "text"},
		},
		{
			name: "disjoint",
			a:    map[string]any{"one": 1},
			b:    map[string]any{"two": 2},
			want: map[string]any{},
		},
		{
			name: "numbers compare by value",
			a:    map[string]any{"length": 7},
			b:    map[string]any{"length": float64(7)},
			want: map[string]any{"length": 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := metadata.FromMap(tt.a).Intersect(metadata.FromMap(tt.b))
			assert.True(t, got.Equal(metadata.FromMap(tt.want)), "got %v", got.ToMap())
		})
	}
}

func TestSet_Equal(t *testing.T) {
	a := metadata.New()
	a.Set("one", 1)
	a.Set("nested", map[string]any{"x": []any{1, "two"}})

	b := metadata.New()
	b.Set("nested", map[string]any{"x": []any{float64(1), "two"}})
	b.Set("one", float64(1))

	assert.True(t, a.Equal(b))

	b.Set("one", 2)
	assert.False(t, a.Equal(b))

	var empty *metadata.Set
	assert.True(t, empty.Equal(metadata.New()))
}

func TestSet_ToMapExcludesInternalID(t *testing.T) {
	s := metadata.New()
	s.Set(metadata.InternalID, "0f8c")
	s.Set("type", "text")

	assert.Equal(t, map[string]any{"type": "text"}, s.ToMap())
}

func TestSet_CloneIsDeep(t *testing.T) {
	s := metadata.New()
	s.Set("nested", map[string]any{"x": "y"})

	c := s.Clone()
	nested, _ := c.Get("nested")
	nested.(map[string]any)["x"] = "z"

	original, _ := s.Get("nested")
	assert.Equal(t, "y", original.(map[string]any)["x"])
}

func TestSet_JSONKeepsInsertionOrder(t *testing.T) {
	s := metadata.New()
	s.Set("zeta", 1)
	s.Set("alpha", "a")
	s.Set("mid", []any{true})

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":1,"alpha":"a","mid":[true]}`, string(data))

	decoded := metadata.New()
	require.NoError(t, json.Unmarshal(data, decoded))
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, decoded.Keys())
	assert.True(t, s.Equal(decoded))

	require.Error(t, json.Unmarshal([]byte(`[1,2]`), decoded))
}
