package model

import (
	"time"

	"github.com/google/uuid"
)

// File keeps the raw uploaded resume exactly as received. Content holds the
// bytes when cloud storage is disabled; otherwise StorageObjectName points
// at the object and Content stays nil.
type File struct {
	ID                int       `gorm:"primaryKey" json:"id"`
	UserID            uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Filename          string    `json:"filename"`
	Content           []byte    `json:"-"`
	Extension         string    `json:"extension"`
	StorageObjectName *string   `json:"-"`
	CreatedAt         time.Time `json:"created_at"`
}
