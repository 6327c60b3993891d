package migrations

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/mwantia/coda/pkg/db/models"
	"gorm.io/gorm"
)

// Migration is one versioned change of the document schema.
type Migration struct {
	Version     int
	Description string
	Up          func(*gorm.DB) error
	Down        func(*gorm.DB) error
}

// schemaVersion is one row of the history of applied migrations
type schemaVersion struct {
	ID          uint   `gorm:"primaryKey"`
	Version     int    `gorm:"uniqueIndex;not null"`
	Description string `gorm:"type:text"`
	AppliedAt   int64  `gorm:"autoCreateTime"`
}

func (schemaVersion) TableName() string {
	return "schema_versions"
}

// MigrationStatus reports whether a migration is part of the current schema.
type MigrationStatus struct {
	Version     int
	Description string
	Applied     bool
	AppliedAt   time.Time
}

// Migrator applies and reverts the migrations of the SQL document stores.
type Migrator struct {
	db         *gorm.DB
	migrations []Migration
}

func NewMigrator(db *gorm.DB) *Migrator {
	return &Migrator{
		db:         db,
		migrations: allMigrations(),
	}
}

// Migrate applies every pending migration in version order, each one in its
// own transaction.
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.db.WithContext(ctx).AutoMigrate(&schemaVersion{}); err != nil {
		return fmt.Errorf("failed to create schema version table: %w", err)
	}

	history, err := m.history(ctx)
	if err != nil {
		return err
	}

	for _, migration := range m.migrations {
		if _, ok := history[migration.Version]; ok {
			continue
		}

		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(tx); err != nil {
				return err
			}
			return tx.Create(&schemaVersion{
				Version:     migration.Version,
				Description: migration.Description,
			}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Description, err)
		}
	}

	return nil
}

// Rollback reverts the most recently applied migration.
func (m *Migrator) Rollback(ctx context.Context) error {
	var last schemaVersion
	if err := m.db.WithContext(ctx).Order("version DESC").First(&last).Error; err != nil {
		return fmt.Errorf("no migrations to rollback: %w", err)
	}

	idx := slices.IndexFunc(m.migrations, func(mi Migration) bool {
		return mi.Version == last.Version
	})
	if idx < 0 {
		return fmt.Errorf("schema version %d is unknown to this build", last.Version)
	}
	migration := m.migrations[idx]

	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := migration.Down(tx); err != nil {
			return fmt.Errorf("rollback of %d failed: %w", migration.Version, err)
		}
		if err := tx.Delete(&last).Error; err != nil {
			return fmt.Errorf("failed to update schema versions: %w", err)
		}
		return nil
	})
}

// Status lists every known migration together with the time it was applied.
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	history, err := m.history(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]MigrationStatus, 0, len(m.migrations))
	for _, migration := range m.migrations {
		status := MigrationStatus{
			Version:     migration.Version,
			Description: migration.Description,
		}
		if applied, ok := history[migration.Version]; ok {
			status.Applied = true
			status.AppliedAt = time.Unix(applied.AppliedAt, 0).UTC()
		}
		statuses = append(statuses, status)
	}

	return statuses, nil
}

func (m *Migrator) history(ctx context.Context) (map[int]schemaVersion, error) {
	var rows []schemaVersion
	if err := m.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query schema versions: %w", err)
	}

	history := make(map[int]schemaVersion, len(rows))
	for _, row := range rows {
		history[row.Version] = row
	}
	return history, nil
}

func allMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create file and tag tables",
			Up: func(db *gorm.DB) error {
				return db.AutoMigrate(&models.File{}, &models.Tag{})
			},
			Down: func(db *gorm.DB) error {
				return db.Migrator().DropTable(&models.Tag{}, &models.File{})
			},
		},
		{
			// Tags are always loaded per file in position order
			Version:     2,
			Description: "Index tag order per file",
			Up: func(db *gorm.DB) error {
				return db.Exec("CREATE INDEX IF NOT EXISTS idx_tag_file_position ON tags (file_id, position)").Error
			},
			Down: func(db *gorm.DB) error {
				return db.Exec("DROP INDEX IF EXISTS idx_tag_file_position").Error
			},
		},
	}
}
