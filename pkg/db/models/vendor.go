package models

import (
	"time"

	"github.com/google/uuid"
)

// Vendor is a supplier purchase orders are assigned to.
type Vendor struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string    `gorm:"column:name;type:text;not null"`
	ContactEmail string    `gorm:"column:contact_email;type:text;not null"`
	Phone        *string   `gorm:"column:phone"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
