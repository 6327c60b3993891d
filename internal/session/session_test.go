package session_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/mwantia/coda/internal/config"
	"github.com/mwantia/coda/internal/session"
	"github.com/mwantia/coda/pkg/db/store"
	"github.com/mwantia/coda/pkg/entity"
	codaerrors "github.com/mwantia/coda/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(t *testing.T) *config.Config {
	cfg := config.GetDefault()
	cfg.Log.NoTerminal = true
	cfg.Log.File = filepath.Join(t.TempDir(), "coda.log")
	cfg.Store.Path = filepath.Join(t.TempDir(), "coda.db")
	return &cfg
}

func TestSession_OpenAndResolve(t *testing.T) {
	sess, err := session.NewSession(newTestConfig(t))
	require.NoError(t, err)

	ctx := t.Context()
	_, err = sess.Repository(ctx)
	assert.Error(t, err)
	assert.Nil(t, sess.Store())

	require.NoError(t, sess.Open(ctx))
	require.NoError(t, sess.Open(ctx))
	assert.Equal(t, "sqlite", sess.Store().Name())

	repo, err := sess.Repository(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Status(ctx))

	f := entity.Restore("/data/one.txt", nil)
	f.Set("type", "text")
	require.NoError(t, repo.Save(ctx, f))

	got, found, err := repo.FindOne(ctx, store.Query{"type": "text"})
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, got.Equal(f))

	require.NoError(t, sess.Close(ctx))
	assert.Nil(t, sess.Store())
}

func TestSession_ReadOnly(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Store.Write = false

	sess, err := session.NewSession(cfg)
	require.NoError(t, err)
	require.NoError(t, sess.Open(t.Context()))
	defer sess.Close(t.Context())

	repo, err := sess.Repository(t.Context())
	require.NoError(t, err)

	err = repo.Save(t.Context(), entity.Restore("/data/one.txt", nil))
	assert.True(t, errors.Is(err, codaerrors.ErrPersistence))
}

func TestSession_InvalidStore(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Store.Type = "mongodb"

	sess, err := session.NewSession(cfg)
	require.NoError(t, err)
	assert.Error(t, sess.Open(t.Context()))
}

func TestSession_InvalidLogLevel(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Log.Level = "verbose"

	_, err := session.NewSession(cfg)
	assert.Error(t, err)
}
