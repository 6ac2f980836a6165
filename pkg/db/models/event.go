package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/javi-app/javi-backend/pkg/enums"
	"github.com/javi-app/javi-backend/pkg/types"
)

// Event is a scheduled production window gear gets reserved against.
type Event struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WorkspaceID    *uuid.UUID         `gorm:"column:workspace_id;type:uuid;index"`
	Title          string             `gorm:"column:title;not null"`
	StartAt        time.Time          `gorm:"column:start_at;not null"`
	EndAt          time.Time          `gorm:"column:end_at;not null"`
	Location       string             `gorm:"column:location;not null;default:''"`
	Status         enums.EventStatus  `gorm:"column:status;not null;default:'DRAFT'"`
	Notes          string             `gorm:"column:notes;not null;default:''"`
	ProductionDocs types.DocumentList `gorm:"column:production_docs;type:jsonb"`
	AssignedPeople pq.StringArray     `gorm:"column:assigned_people;type:text[]"`
	CreatedBy      *uuid.UUID         `gorm:"column:created_by;type:uuid"`
	CreatedByEmail *string            `gorm:"column:created_by_email"`
	ClosedBy       *uuid.UUID         `gorm:"column:closed_by;type:uuid"`
	ClosedByEmail  *string            `gorm:"column:closed_by_email"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (Event) TableName() string { return "events" }
