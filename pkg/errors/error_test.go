package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/mwantia/coda/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestError_MessageNamesKind(t *testing.T) {
	cause := stderrors.New("connection refused")

	tests := []struct {
		name string
		err  error
		kind error
		want string
	}{
		{
			name: "persistence with cause",
			err:  errors.Persistence(cause, "failed to save '%s'", "/data/one.txt"),
			kind: errors.ErrPersistence,
			want: "coda: persistence failure: failed to save '/data/one.txt': connection refused",
		},
		{
			name: "key not found",
			err:  errors.KeyNotFound("type"),
			kind: errors.ErrKeyNotFound,
			want: "coda: key not found: metadata key 'type' not found",
		},
		{
			name: "inconsistent record",
			err:  errors.InconsistentRecord("abc"),
			kind: errors.ErrInconsistentRecord,
			want: "coda: inconsistent record: record 'abc' has no path, the store is in an inconsistent state; ensure every record has an associated path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.True(t, stderrors.Is(tt.err, tt.kind))
		})
	}

	assert.True(t, stderrors.Is(tests[0].err, cause))
}
