package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/javi-app/javi-backend/pkg/db/types"
	"github.com/javi-app/javi-backend/pkg/enums"
)

// Checkout is a legacy custody record independent of the reservation table:
// a set of gear item ids out the door until DueAt. While OPEN it blocks new
// reservations for any window starting before DueAt.
type Checkout struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WorkspaceID *uuid.UUID           `gorm:"column:workspace_id;type:uuid;index"`
	EventID     *uuid.UUID           `gorm:"column:event_id;type:uuid;index"`
	Items       dbtypes.UUIDArray    `gorm:"column:items;type:uuid[]"`
	DueAt       time.Time            `gorm:"column:due_at;not null"`
	Status      enums.CheckoutStatus `gorm:"column:status;not null;default:'OPEN'"`
	Note        string               `gorm:"column:note;not null;default:''"`
	ReturnedAt  *time.Time           `gorm:"column:returned_at"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (Checkout) TableName() string { return "checkouts" }
