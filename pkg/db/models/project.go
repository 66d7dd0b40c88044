package models

import (
	"time"

	"github.com/google/uuid"
)

// Project is the construction project a purchase order belongs to. The
// access gate resolves employee and client visibility through it.
type Project struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string              `gorm:"column:name;type:text;not null"`
	ClientID    uuid.UUID           `gorm:"column:client_id;type:uuid;not null;index"`
	OwnerID     uuid.UUID           `gorm:"column:owner_id;type:uuid;not null"`
	IsActive    bool                `gorm:"column:is_active;not null;default:true"`
	Assignments []ProjectAssignment `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// ProjectAssignment links an employee to a project.
type ProjectAssignment struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID uuid.UUID `gorm:"column:project_id;type:uuid;not null;uniqueIndex:idx_project_assignments_project_user"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_project_assignments_project_user"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
