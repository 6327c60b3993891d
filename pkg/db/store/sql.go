package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/mwantia/coda/pkg/db/migrations"
	"github.com/mwantia/coda/pkg/db/models"
	"github.com/mwantia/coda/pkg/metadata"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLStore implements DocumentStore on top of GORM. Every document is a row
// in the files table, every metadata field a row in the tags table.
type SQLStore struct {
	db       *gorm.DB
	name     string
	maxConns int
	migrator *migrations.Migrator
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	Path     string
	LogLevel logger.LogLevel
}

// PostgresConfig holds PostgreSQL-specific configuration
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	LogLevel logger.LogLevel
}

// NewSQLiteStore creates a new SQLite-backed document store
func NewSQLiteStore(cfg SQLiteConfig) (*SQLStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	// SQLite only supports 1 writer
	return newSQLStore("sqlite", sqlite.Open(cfg.Path), cfg.LogLevel, 1)
}

// NewPostgresStore creates a new PostgreSQL-backed document store
func NewPostgresStore(cfg PostgresConfig) (*SQLStore, error) {
	if cfg.Host == "" || cfg.DBName == "" {
		return nil, fmt.Errorf("postgres host and dbname are required")
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	return newSQLStore("postgres", postgres.Open(dsn), cfg.LogLevel, 10)
}

func newSQLStore(name string, dialector gorm.Dialector, level logger.LogLevel, maxConns int) (*SQLStore, error) {
	// Default to silent logging
	if level == 0 {
		level = logger.Silent
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", name, err)
	}

	return &SQLStore{
		db:       db,
		name:     name,
		maxConns: maxConns,
		migrator: migrations.NewMigrator(db),
	}, nil
}

// DB returns the underlying GORM database instance
func (s *SQLStore) DB() *gorm.DB {
	return s.db
}

func (s *SQLStore) Name() string {
	return s.name
}

// Connect initializes the database connection
func (s *SQLStore) Connect(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(s.maxConns)
	sqlDB.SetMaxIdleConns(s.maxConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}

// Migrate runs all pending database migrations
func (s *SQLStore) Migrate(ctx context.Context) error {
	return s.migrator.Migrate(ctx)
}

// MigrationStatus reports which schema migrations have been applied
func (s *SQLStore) MigrationStatus(ctx context.Context) ([]migrations.MigrationStatus, error) {
	return s.migrator.Status(ctx)
}

// Health checks database connectivity
func (s *SQLStore) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLStore) Insert(ctx context.Context, doc *Document) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.File{}).Where("path = ?", doc.Path).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrExists
		}

		file := models.File{
			ID:   doc.ID,
			Path: doc.Path,
		}
		if !doc.CreatedAt.IsZero() {
			file.CreatedAt = doc.CreatedAt
		}

		tags, err := toTags(doc.ID, doc.Fields)
		if err != nil {
			return err
		}
		file.Tags = tags

		return tx.Create(&file).Error
	})
}

func (s *SQLStore) Update(ctx context.Context, doc *Document) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var file models.File
		if err := tx.Where("path = ?", doc.Path).First(&file).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Where("file_id = ?", file.ID).Delete(&models.Tag{}).Error; err != nil {
			return fmt.Errorf("failed to clear tags of '%s': %w", file.Path, err)
		}

		tags, err := toTags(file.ID, doc.Fields)
		if err != nil {
			return err
		}
		if len(tags) > 0 {
			if err := tx.Create(&tags).Error; err != nil {
				return fmt.Errorf("failed to write tags of '%s': %w", file.Path, err)
			}
		}

		return tx.Model(&file).Update("updated_at", time.Now().UTC()).Error
	})
}

func (s *SQLStore) Delete(ctx context.Context, query Query) (int, error) {
	var deleted int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scoped, ok, err := s.scope(tx, query)
		if err != nil || !ok {
			return err
		}

		var ids []string
		if err := scoped.Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		if err := tx.Where("file_id IN ?", ids).Delete(&models.Tag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", ids).Delete(&models.File{}).Error; err != nil {
			return err
		}

		deleted = len(ids)
		return nil
	})

	return deleted, err
}

func (s *SQLStore) Find(ctx context.Context, query Query) ([]*Document, error) {
	return s.find(ctx, query, 0)
}

func (s *SQLStore) FindOne(ctx context.Context, query Query) (*Document, error) {
	docs, err := s.find(ctx, query, 1)
	if err != nil {
		return nil, err
	}
	return first(docs)
}

func (s *SQLStore) find(ctx context.Context, query Query, limit int) ([]*Document, error) {
	scoped, ok, err := s.scope(s.db.WithContext(ctx), query)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	scoped = scoped.
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("created_at ASC").
		Order("path ASC")

	if limit > 0 {
		scoped = scoped.Limit(limit)
	}

	var files []models.File
	if err := scoped.Find(&files).Error; err != nil {
		return nil, err
	}

	docs := make([]*Document, 0, len(files))
	for _, file := range files {
		doc, err := toDocument(file)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// scope translates query into conditions on the files table. It reports
// false if the query can never match, e.g. when the path is not a string.
func (s *SQLStore) scope(db *gorm.DB, query Query) (*gorm.DB, bool, error) {
	scoped := db.Model(&models.File{})

	for _, key := range query.Keys() {
		value := query[key]

		switch key {
		case FieldPath, FieldID:
			str, ok := value.(string)
			if !ok {
				return nil, false, nil
			}
			column := "path"
			if key == FieldID {
				column = "id"
			}
			scoped = scoped.Where(column+" = ?", str)
		default:
			encoded, err := metadata.EncodeValue(value)
			if err != nil {
				return nil, false, fmt.Errorf("failed to encode query value for '%s': %w", key, err)
			}
			sub := db.Session(&gorm.Session{NewDB: true}).
				Model(&models.Tag{}).
				Select("file_id").
				Where(map[string]any{"key": key, "value": encoded})
			scoped = scoped.Where("id IN (?)", sub)
		}
	}

	return scoped, true, nil
}

func toTags(fileID string, fields *metadata.Set) ([]models.Tag, error) {
	var tags []models.Tag
	var err error

	fields.Range(func(key string, value any) bool {
		var encoded string
		if encoded, err = metadata.EncodeValue(value); err != nil {
			err = fmt.Errorf("failed to encode field '%s': %w", key, err)
			return false
		}

		tags = append(tags, models.Tag{
			FileID:   fileID,
			Position: len(tags),
			Key:      key,
			Value:    encoded,
		})
		return true
	})

	return tags, err
}

func toDocument(file models.File) (*Document, error) {
	fields := metadata.New()
	for _, tag := range file.Tags {
		value, err := metadata.DecodeValue(tag.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to decode field '%s' of '%s': %w", tag.Key, file.Path, err)
		}
		fields.Set(tag.Key, value)
	}

	return &Document{
		ID:        file.ID,
		Path:      file.Path,
		Fields:    fields,
		CreatedAt: file.CreatedAt,
		UpdatedAt: file.UpdatedAt,
	}, nil
}
