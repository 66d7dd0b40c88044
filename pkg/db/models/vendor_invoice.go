package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mateovergara/sitesupply-backend/pkg/enums"
	"github.com/mateovergara/sitesupply-backend/pkg/types"
)

// VendorInvoice is the snapshot invoice generated from the accepted
// quotation when delivery details are submitted. Amount, currency and items
// are copied by value at generation time and never re-derived.
type VendorInvoice struct {
	ID                 uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvoiceNumber      string               `gorm:"column:invoice_number;type:text;not null;uniqueIndex"`
	OrderID            uuid.UUID            `gorm:"column:order_id;type:uuid;not null;index"`
	ProjectID          uuid.UUID            `gorm:"column:project_id;type:uuid;not null"`
	VendorID           uuid.UUID            `gorm:"column:vendor_id;type:uuid;not null;index"`
	QuotationMessageID uuid.UUID            `gorm:"column:quotation_message_id;type:uuid;not null"`
	Amount             decimal.Decimal      `gorm:"column:amount;type:numeric;not null"`
	Currency           enums.Currency       `gorm:"column:currency;type:text;not null;default:'USD'"`
	Items              types.QuotationItems `gorm:"column:items;type:jsonb;serializer:json"`
	Description        *string              `gorm:"column:description"`
	Status             enums.InvoiceStatus  `gorm:"column:status;type:text;not null;default:'pending'"`
	IssuedAt           time.Time            `gorm:"column:issued_at;not null"`
	DueDate            *time.Time           `gorm:"column:due_date"`
	CreatedAt          time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
