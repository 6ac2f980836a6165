package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/javi-app/javi-backend/pkg/enums"
)

// Reservation binds one physical gear item to one event for a time window.
// The window mirrors the event's window at creation and is realigned when the
// event's dates change. Rows are immutable history apart from status flips.
type Reservation struct {
	ID              uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WorkspaceID     *uuid.UUID              `gorm:"column:workspace_id;type:uuid;index"`
	EventID         uuid.UUID               `gorm:"column:event_id;type:uuid;not null;index"`
	GearItemID      uuid.UUID               `gorm:"column:gear_item_id;type:uuid;not null;index"`
	StartAt         time.Time               `gorm:"column:start_at;not null"`
	EndAt           time.Time               `gorm:"column:end_at;not null"`
	Status          enums.ReservationStatus `gorm:"column:status;not null;default:'ACTIVE'"`
	ReservedBy      *uuid.UUID              `gorm:"column:reserved_by;type:uuid"`
	ReservedByEmail *string                 `gorm:"column:reserved_by_email"`
	ReturnedBy      *uuid.UUID              `gorm:"column:returned_by;type:uuid"`
	ReturnedByEmail *string                 `gorm:"column:returned_by_email"`
	ReturnedAt      *time.Time              `gorm:"column:returned_at"`
	CreatedAt       time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (Reservation) TableName() string { return "reservations" }
