package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an authenticated caller. Workspace access flows through
// WorkspaceMember rows, never through this table.
type User struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string     `gorm:"column:email;uniqueIndex;not null"`
	DisplayName  string     `gorm:"column:display_name;not null;default:''"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
