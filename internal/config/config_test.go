package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mwantia/coda/internal/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFile(t *testing.T, content string) (*config.Config, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "coda.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	return config.LoadConfig()
}

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, config.GetDefault(), *cfg)
}

func TestLoadConfig_File(t *testing.T) {
	cfg, err := loadFile(t, `
log:
  level: debug
store:
  type: postgres
  host: db.internal
  port: 5433
  write: false
  dbname: tags
`)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "postgres", cfg.Store.Type)
	assert.Equal(t, "db.internal", cfg.Store.Host)
	assert.Equal(t, 5433, cfg.Store.Port)
	assert.False(t, cfg.Store.Write)
	assert.Equal(t, "tags", cfg.Store.DBName)
	assert.Equal(t, "10s", cfg.Store.Timeout)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "store type", content: "store:\n  type: mongodb\n"},
		{name: "port", content: "store:\n  port: 70000\n"},
		{name: "log level", content: "log:\n  level: verbose\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadFile(t, tt.content)
			assert.Error(t, err)
		})
	}
}
