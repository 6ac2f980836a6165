package models

import (
	"time"

	"github.com/google/uuid"
)

// Workspace is the tenant boundary. Every scoped row hangs off one of these.
type Workspace struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
