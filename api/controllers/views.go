package controllers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mateovergara/sitesupply-backend/pkg/db/models"
	"github.com/mateovergara/sitesupply-backend/pkg/enums"
	"github.com/mateovergara/sitesupply-backend/pkg/types"
)

// DeliveryView flattens the tracking sub-record. ExpectedArrival mirrors
// ExpectedDeliveryDate for clients still reading the old key.
type DeliveryView struct {
	Status               enums.DeliveryStatus  `json:"status"`
	TrackingNumber       *string               `json:"tracking_number,omitempty"`
	Carrier              *string               `json:"carrier,omitempty"`
	ExpectedDeliveryDate *time.Time            `json:"expected_delivery_date,omitempty"`
	ExpectedArrival      *time.Time            `json:"expectedArrival,omitempty"`
	ActualArrival        *time.Time            `json:"actual_arrival,omitempty"`
	Notes                *string               `json:"notes,omitempty"`
	Updates              types.DeliveryUpdates `json:"updates,omitempty"`
	UpdatedAt            *time.Time            `json:"updated_at,omitempty"`
}

type OrderView struct {
	ID                         uuid.UUID         `json:"id"`
	OrderNumber                string            `json:"order_number"`
	ProjectID                  uuid.UUID         `json:"project_id"`
	MaterialRequestID          uuid.UUID         `json:"material_request_id"`
	VendorID                   uuid.UUID         `json:"vendor_id"`
	CreatedBy                  uuid.UUID         `json:"created_by"`
	Status                     enums.OrderStatus `json:"status"`
	NegotiationActive          bool              `json:"negotiation_active"`
	ChatClosed                 bool              `json:"chat_closed"`
	ChatClosedAt               *time.Time        `json:"chat_closed_at,omitempty"`
	AcceptedQuotationMessageID *uuid.UUID        `json:"accepted_quotation_message_id,omitempty"`
	FinalAmount                *decimal.Decimal  `json:"final_amount,omitempty"`
	FinalCurrency              *enums.Currency   `json:"final_currency,omitempty"`
	LastMessageAt              *time.Time        `json:"last_message_at,omitempty"`
	Delivery                   DeliveryView      `json:"delivery"`
	CreatedAt                  time.Time         `json:"created_at"`
	UpdatedAt                  time.Time         `json:"updated_at"`
}

type MessageView struct {
	ID              uuid.UUID               `json:"id"`
	OrderID         uuid.UUID               `json:"order_id"`
	SenderID        uuid.UUID               `json:"sender_id"`
	SenderRole      enums.ActorRole         `json:"sender_role"`
	MessageType     enums.MessageType       `json:"message_type"`
	Content         string                  `json:"content,omitempty"`
	Quotation       *types.QuotationPayload `json:"quotation,omitempty"`
	QuotationStatus *enums.QuotationStatus  `json:"quotation_status,omitempty"`
	InResponseTo    *uuid.UUID              `json:"in_response_to,omitempty"`
	Invoice         *types.InvoicePayload   `json:"invoice,omitempty"`
	Delivery        *types.DeliveryInfo     `json:"delivery,omitempty"`
	SystemEvent     *enums.SystemEvent      `json:"system_event,omitempty"`
	ReadBy          []uuid.UUID             `json:"read_by"`
	CreatedAt       time.Time               `json:"created_at"`
}

type InvoiceView struct {
	ID            uuid.UUID            `json:"id"`
	InvoiceNumber string               `json:"invoice_number"`
	OrderID       uuid.UUID            `json:"order_id"`
	VendorID      uuid.UUID            `json:"vendor_id"`
	Amount        decimal.Decimal      `json:"amount"`
	Currency      enums.Currency       `json:"currency"`
	Items         types.QuotationItems `json:"items,omitempty"`
	Description   *string              `json:"description,omitempty"`
	Status        enums.InvoiceStatus  `json:"status"`
	IssuedAt      time.Time            `json:"issued_at"`
	DueDate       *time.Time           `json:"due_date,omitempty"`
}

func buildOrderView(order *models.PurchaseOrder) OrderView {
	return OrderView{
		ID:                         order.ID,
		OrderNumber:                order.OrderNumber,
		ProjectID:                  order.ProjectID,
		MaterialRequestID:          order.MaterialRequestID,
		VendorID:                   order.VendorID,
		CreatedBy:                  order.CreatedBy,
		Status:                     order.Status,
		NegotiationActive:          order.NegotiationActive,
		ChatClosed:                 order.ChatClosed,
		ChatClosedAt:               order.ChatClosedAt,
		AcceptedQuotationMessageID: order.AcceptedQuotationMessageID,
		FinalAmount:                order.FinalAmount,
		FinalCurrency:              order.FinalCurrency,
		LastMessageAt:              order.LastMessageAt,
		Delivery: DeliveryView{
			Status:               order.DeliveryStatus,
			TrackingNumber:       order.TrackingNumber,
			Carrier:              order.Carrier,
			ExpectedDeliveryDate: order.ExpectedDeliveryDate,
			ExpectedArrival:      order.ExpectedDeliveryDate,
			ActualArrival:        order.ActualArrival,
			Notes:                order.DeliveryNotes,
			Updates:              order.DeliveryUpdates,
			UpdatedAt:            order.DeliveryUpdatedAt,
		},
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
}

func buildMessageView(message models.NegotiationMessage) MessageView {
	readBy := make([]uuid.UUID, 0, len(message.Reads))
	for _, read := range message.Reads {
		readBy = append(readBy, read.UserID)
	}
	return MessageView{
		ID:              message.ID,
		OrderID:         message.OrderID,
		SenderID:        message.SenderID,
		SenderRole:      message.SenderRole,
		MessageType:     message.MessageType,
		Content:         message.Content,
		Quotation:       message.Quotation,
		QuotationStatus: message.QuotationStatus,
		InResponseTo:    message.InResponseTo,
		Invoice:         message.Invoice,
		Delivery:        message.Delivery,
		SystemEvent:     message.SystemEvent,
		ReadBy:          readBy,
		CreatedAt:       message.CreatedAt,
	}
}

func buildInvoiceView(invoice *models.VendorInvoice) InvoiceView {
	return InvoiceView{
		ID:            invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		OrderID:       invoice.OrderID,
		VendorID:      invoice.VendorID,
		Amount:        invoice.Amount,
		Currency:      invoice.Currency,
		Items:         invoice.Items,
		Description:   invoice.Description,
		Status:        invoice.Status,
		IssuedAt:      invoice.IssuedAt,
		DueDate:       invoice.DueDate,
	}
}
