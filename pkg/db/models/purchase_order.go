package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mateovergara/sitesupply-backend/pkg/enums"
	"github.com/mateovergara/sitesupply-backend/pkg/types"
)

// PurchaseOrder is one order raised for an approved material request and
// assigned to a vendor. The negotiation and delivery sub-records are
// flattened onto the row; the message ledger hangs off it.
type PurchaseOrder struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber       string          `gorm:"column:order_number;type:text;not null;uniqueIndex"`
	ProjectID         uuid.UUID       `gorm:"column:project_id;type:uuid;not null;index"`
	MaterialRequestID uuid.UUID       `gorm:"column:material_request_id;type:uuid;not null"`
	VendorID          uuid.UUID       `gorm:"column:vendor_id;type:uuid;not null;index"`
	CreatedBy         uuid.UUID       `gorm:"column:created_by;type:uuid;not null"`
	Status            enums.OrderStatus `gorm:"column:status;type:text;not null;default:'draft'"`

	// Negotiation sub-record.
	NegotiationActive          bool             `gorm:"column:negotiation_active;not null;default:true"`
	ChatClosed                 bool             `gorm:"column:chat_closed;not null;default:false"`
	ChatClosedAt               *time.Time       `gorm:"column:chat_closed_at"`
	AcceptedQuotationMessageID *uuid.UUID       `gorm:"column:accepted_quotation_message_id;type:uuid"`
	FinalAmount                *decimal.Decimal `gorm:"column:final_amount;type:numeric"`
	FinalCurrency              *enums.Currency  `gorm:"column:final_currency;type:text"`
	LastMessageAt              *time.Time       `gorm:"column:last_message_at"`

	// Delivery tracking sub-record. expected_delivery_date is the single
	// canonical arrival field; updates is append-only history.
	DeliveryStatus       enums.DeliveryStatus  `gorm:"column:delivery_status;type:text;not null;default:'not_started'"`
	TrackingNumber       *string               `gorm:"column:tracking_number"`
	Carrier              *string               `gorm:"column:carrier"`
	ExpectedDeliveryDate *time.Time            `gorm:"column:expected_delivery_date"`
	ActualArrival        *time.Time            `gorm:"column:actual_arrival"`
	DeliveryNotes        *string               `gorm:"column:delivery_notes"`
	DeliveryUpdates      types.DeliveryUpdates `gorm:"column:delivery_updates;type:jsonb;serializer:json"`
	DeliveryUpdatedAt    *time.Time            `gorm:"column:delivery_updated_at"`
	DeliveryUpdatedBy    *uuid.UUID            `gorm:"column:delivery_updated_by;type:uuid"`

	Messages  []NegotiationMessage `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
