package models

import (
	"time"
)

// File represents one tracked filesystem path
type File struct {
	ID   string `gorm:"primaryKey;type:text"`
	Path string `gorm:"type:text;not null;uniqueIndex"`

	// Timestamps
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time

	// Relationships
	Tags []Tag `gorm:"foreignKey:FileID;constraint:OnDelete:CASCADE"`
}
