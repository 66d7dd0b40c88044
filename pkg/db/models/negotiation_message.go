package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mateovergara/sitesupply-backend/pkg/enums"
	"github.com/mateovergara/sitesupply-backend/pkg/types"
)

// NegotiationMessage is one append-only ledger entry scoped to a purchase
// order. Exactly one payload column matching MessageType is populated.
// QuotationStatus and InResponseTo are promoted out of the payload:
// quotation_status is the only mutable field and the accept/reject race is
// resolved with a conditional update on it.
type NegotiationMessage struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID              `gorm:"column:order_id;type:uuid;not null;index"`
	SenderID        uuid.UUID              `gorm:"column:sender_id;type:uuid;not null"`
	SenderRole      enums.ActorRole        `gorm:"column:sender_role;type:text;not null"`
	MessageType     enums.MessageType      `gorm:"column:message_type;type:text;not null"`
	Content         string                 `gorm:"column:content;type:text;not null;default:''"`
	Quotation       *types.QuotationPayload `gorm:"column:quotation;type:jsonb;serializer:json"`
	QuotationStatus *enums.QuotationStatus `gorm:"column:quotation_status;type:text"`
	InResponseTo    *uuid.UUID             `gorm:"column:in_response_to;type:uuid"`
	Invoice         *types.InvoicePayload  `gorm:"column:invoice;type:jsonb;serializer:json"`
	Delivery        *types.DeliveryInfo    `gorm:"column:delivery;type:jsonb;serializer:json"`
	SystemEvent     *enums.SystemEvent     `gorm:"column:system_event;type:text"`
	Reads           []MessageRead          `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
}
