package models

import (
	"time"
)

// Tag represents a key-value tag attached to a file.
// Value holds the JSON encoding of the tagged value.
type Tag struct {
	ID       uint   `gorm:"primaryKey"`
	FileID   string `gorm:"type:text;not null;index:idx_file_tags"`
	Position int    `gorm:"not null;default:0"`
	Key      string `gorm:"type:text;not null;index:idx_tag_key_value"`
	Value    string `gorm:"type:text;not null;index:idx_tag_key_value"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
