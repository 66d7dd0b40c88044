package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mateovergara/sitesupply-backend/pkg/db/models"
	"github.com/mateovergara/sitesupply-backend/pkg/enums"
)

// OrderFilters describe the inputs supported by the order list.
type OrderFilters struct {
	VendorID   *uuid.UUID
	ProjectIDs []uuid.UUID
	Status     *enums.OrderStatus
}

// OrderSummary exposes the aggregated fields returned in the order list.
type OrderSummary struct {
	ID             uuid.UUID         `json:"id"`
	OrderNumber    string            `json:"order_number"`
	ProjectID      uuid.UUID         `json:"project_id"`
	VendorID       uuid.UUID         `json:"vendor_id"`
	Status         enums.OrderStatus `json:"status"`
	FinalAmount    *decimal.Decimal  `json:"final_amount,omitempty"`
	ChatClosed     bool              `json:"chat_closed"`
	LastMessageAt  *time.Time        `json:"last_message_at,omitempty"`
	DeliveryStatus enums.DeliveryStatus `json:"delivery_status"`
	CreatedAt      time.Time         `json:"created_at"`
}

// OrderList wraps the paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// CreateOrderInput captures the fields required to raise a purchase order.
type CreateOrderInput struct {
	ProjectID         uuid.UUID
	MaterialRequestID uuid.UUID
	VendorID          uuid.UUID
}

func summarize(order models.PurchaseOrder) OrderSummary {
	return OrderSummary{
		ID:             order.ID,
		OrderNumber:    order.OrderNumber,
		ProjectID:      order.ProjectID,
		VendorID:       order.VendorID,
		Status:         order.Status,
		FinalAmount:    order.FinalAmount,
		ChatClosed:     order.ChatClosed,
		LastMessageAt:  order.LastMessageAt,
		DeliveryStatus: order.DeliveryStatus,
		CreatedAt:      order.CreatedAt,
	}
}
