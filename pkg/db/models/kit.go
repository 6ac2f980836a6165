package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/javi-app/javi-backend/pkg/db/types"
)

// Kit is a named set of gear item ids added to events in one action.
type Kit struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WorkspaceID *uuid.UUID        `gorm:"column:workspace_id;type:uuid;index"`
	Name        string            `gorm:"column:name;not null"`
	ItemIDs     dbtypes.UUIDArray `gorm:"column:item_ids;type:uuid[]"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (Kit) TableName() string { return "kits" }
