package store

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	config "github.com/mwantia/coda/internal/config"
)

// Open creates the document store selected by cfg.Type. The store still
// needs to be connected before use.
func Open(cfg config.StoreConfig) (DocumentStore, error) {
	switch cfg.Type {
	case "sqlite":
		path, err := dataPath(cfg, ".db")
		if err != nil {
			return nil, err
		}
		return NewSQLiteStore(SQLiteConfig{
			Path: path,
		})
	case "postgres":
		return NewPostgresStore(PostgresConfig{
			Host:     cfg.Host,
			Port:     portOrDefault(cfg.Port, 5432),
			User:     cfg.User,
			Password: cfg.Password,
			DBName:   cfg.DBName,
			SSLMode:  cfg.SSLMode,
		})
	case "badger":
		path, err := dataPath(cfg, "")
		if err != nil {
			return nil, err
		}
		return NewBadgerStore(BadgerConfig{
			Path: path,
		})
	case "consul":
		prefix := cfg.Prefix
		if prefix == "" {
			prefix = cfg.DBName + "/files/"
		}
		return NewConsulStore(&ConsulConfig{
			Address:    address(cfg.Host, portOrDefault(cfg.Port, 8500)),
			Token:      cfg.Token,
			Datacenter: cfg.Datacenter,
			Prefix:     prefix,
		})
	case "s3":
		bucket := cfg.Bucket
		if bucket == "" {
			bucket = cfg.DBName
		}
		return NewS3Store(S3Config{
			Endpoint:  address(cfg.Host, portOrDefault(cfg.Port, 9000)),
			Bucket:    bucket,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			UseSSL:    cfg.UseSSL,
			Prefix:    cfg.Prefix,
		})
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported store type '%s'", cfg.Type)
	}
}

// dataPath resolves the location of embedded stores, defaulting to
// $HOME/.coda/<dbname><ext>.
func dataPath(cfg config.StoreConfig, ext string) (string, error) {
	if cfg.Path != "" {
		return cfg.Path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}

	dir := filepath.Join(home, ".coda")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	return filepath.Join(dir, cfg.DBName+ext), nil
}

func portOrDefault(port, def int) int {
	if port == 0 {
		return def
	}
	return port
}

func address(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
