package log_test

import (
	"bytes"
	"encoding/json"
	"testing"

	config "github.com/mwantia/coda/internal/config"
	"github.com/mwantia/coda/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T, cfg config.LogConfig) (log.LoggerService, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	logger, err := log.NewLoggerServiceWithWriter("coda", cfg, &buf)
	require.NoError(t, err)
	return logger, &buf
}

func TestLogger_FiltersByLevel(t *testing.T) {
	cfg := config.GetDefault().Log
	cfg.Level = "warn"
	cfg.NoColor = true

	logger, buf := newTestLogger(t, cfg)
	logger.Info("hidden %d", 1)
	logger.Warn("shown %d", 2)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "WARN  [coda] shown 2")
}

func TestLogger_JSONAndNamed(t *testing.T) {
	cfg := config.GetDefault().Log
	cfg.Level = "DEBUG"
	cfg.JSON = true

	logger, buf := newTestLogger(t, cfg)
	logger.Named("repository").Debug("saved %s", "/data/one.txt")

	var entry map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "coda/repository", entry["service"])
	assert.Equal(t, "saved /data/one.txt", entry["message"])
}

func TestParse(t *testing.T) {
	level, err := log.Parse("error")
	require.NoError(t, err)
	assert.Equal(t, log.Error, level)
	assert.Equal(t, "ERROR", level.String())

	_, err = log.Parse("verbose")
	assert.Error(t, err)
}
