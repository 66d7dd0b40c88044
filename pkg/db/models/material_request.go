package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mateovergara/sitesupply-backend/pkg/enums"
	"github.com/mateovergara/sitesupply-backend/pkg/types"
)

// MaterialRequest is a request for project materials. An approved request
// paired with a vendor is what a purchase order is raised from.
type MaterialRequest struct {
	ID          uuid.UUID                   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID   uuid.UUID                   `gorm:"column:project_id;type:uuid;not null;index"`
	RequestedBy uuid.UUID                   `gorm:"column:requested_by;type:uuid;not null"`
	Title       string                      `gorm:"column:title;type:text;not null"`
	Items       types.RequestItems          `gorm:"column:items;type:jsonb;serializer:json"`
	Status      enums.MaterialRequestStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	CreatedAt   time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}
