package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/javi-app/javi-backend/pkg/enums"
)

// GearItem is one physical copy of equipment. Quantity is never stored:
// copies of the same logical item share (category, base name) and carry a
// " #N" name suffix from the second copy onward.
//
// WorkspaceID is nullable on purpose: rows created before the multi-tenant
// migration have no tenant stamp and remain addressable until backfilled.
type GearItem struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WorkspaceID *uuid.UUID         `gorm:"column:workspace_id;type:uuid;index"`
	Category    enums.GearCategory `gorm:"column:category;not null"`
	Name        string             `gorm:"column:name;not null"`
	Description string             `gorm:"column:description;not null;default:''"`
	AssetTag    string             `gorm:"column:asset_tag;not null;default:''"`
	Serial      string             `gorm:"column:serial;not null;default:''"`
	QRCode      string             `gorm:"column:qr_code;not null;default:''"`
	Location    string             `gorm:"column:location;not null;default:''"`
	ImageURL    string             `gorm:"column:image_url;not null;default:''"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (GearItem) TableName() string { return "gear_items" }
