package models

import (
	"time"

	"github.com/google/uuid"
)

// TeamMember is a crew contact card. This is the one collection that may
// still lack its workspace_id column mid-migration; the scoped store owns the
// fallback behavior.
type TeamMember struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WorkspaceID *uuid.UUID `gorm:"column:workspace_id;type:uuid;index"`
	Name        string     `gorm:"column:name;not null"`
	Email       string     `gorm:"column:email;not null;default:''"`
	Phone       string     `gorm:"column:phone;not null;default:''"`
	Role        string     `gorm:"column:role;not null;default:''"`
	Notes       string     `gorm:"column:notes;not null;default:''"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (TeamMember) TableName() string { return "team_members" }
