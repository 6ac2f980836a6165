package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/javi-app/javi-backend/pkg/enums"
)

// WorkspaceMember links a user with a workspace and captures their role.
type WorkspaceMember struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WorkspaceID uuid.UUID        `gorm:"column:workspace_id;type:uuid;not null"`
	UserID      uuid.UUID        `gorm:"column:user_id;type:uuid;not null"`
	Role        enums.MemberRole `gorm:"column:role;not null"`
	DisplayName *string          `gorm:"column:display_name"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
