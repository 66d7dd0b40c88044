package negotiation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mateovergara/sitesupply-backend/pkg/db/models"
	"github.com/mateovergara/sitesupply-backend/pkg/enums"
	"github.com/mateovergara/sitesupply-backend/pkg/types"
)

// SendMessageInput carries a text or system message for the ledger.
type SendMessageInput struct {
	OrderID     uuid.UUID
	MessageType enums.MessageType
	Content     string
}

// SubmitQuotationInput carries a vendor quotation offer.
type SubmitQuotationInput struct {
	OrderID      uuid.UUID
	Amount       decimal.Decimal
	Currency     string
	Note         string
	Items        types.QuotationItems
	ValidUntil   *time.Time
	InResponseTo *uuid.UUID
}

// DeliveryDetailsInput carries the vendor's delivery submission that closes
// the negotiation.
type DeliveryDetailsInput struct {
	OrderID              uuid.UUID
	TrackingNumber       string
	Carrier              string
	ExpectedDeliveryDate *time.Time
	Notes                string
}

// DeliveryStatusInput carries a tracking update on an in-progress order.
type DeliveryStatusInput struct {
	OrderID              uuid.UUID
	Status               enums.DeliveryStatus
	TrackingNumber       *string
	Carrier              *string
	ExpectedDeliveryDate *time.Time
	Notes                *string
}

// AcceptResult reports the outcome of accepting a quotation.
type AcceptResult struct {
	Order     *models.PurchaseOrder
	Quotation *models.NegotiationMessage
	// Idempotent is true when the quotation was already accepted and the
	// call produced no new side effects.
	Idempotent bool
}

// DeliveryDetailsResult bundles the artifacts of the closing transition.
type DeliveryDetailsResult struct {
	Order   *models.PurchaseOrder
	Invoice *models.VendorInvoice
}

// MessagePostedEvent is emitted whenever a ledger entry is appended.
type MessagePostedEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	MessageID   uuid.UUID         `json:"message_id"`
	VendorID    uuid.UUID         `json:"vendor_id"`
	MessageType enums.MessageType `json:"message_type"`
}

// QuotationEvent is emitted on quotation submission, acceptance and
// rejection.
type QuotationEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	MessageID   uuid.UUID         `json:"message_id"`
	VendorID    uuid.UUID         `json:"vendor_id"`
	Amount      decimal.Decimal   `json:"amount"`
	OrderStatus enums.OrderStatus `json:"order_status"`
	Reason      string            `json:"reason,omitempty"`
}

// DeliveryEvent is emitted when delivery details are submitted or tracking
// changes.
type DeliveryEvent struct {
	OrderID        uuid.UUID            `json:"order_id"`
	VendorID       uuid.UUID            `json:"vendor_id"`
	DeliveryStatus enums.DeliveryStatus `json:"delivery_status"`
	OrderStatus    enums.OrderStatus    `json:"order_status"`
	InvoiceID      *uuid.UUID           `json:"invoice_id,omitempty"`
}
