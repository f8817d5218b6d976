package models

import "time"

// Archive is the soft-delete pair carried by every history record.
// Queries filter on is_archive explicitly; gorm's DeletedAt scope is not used.
type Archive struct {
	IsArchive bool       `gorm:"index;not null;default:false" json:"is_archive"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}
