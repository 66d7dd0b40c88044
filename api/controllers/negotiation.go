package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mateovergara/sitesupply-backend/api/middleware"
	"github.com/mateovergara/sitesupply-backend/api/responses"
	"github.com/mateovergara/sitesupply-backend/api/validators"
	"github.com/mateovergara/sitesupply-backend/internal/negotiation"
	"github.com/mateovergara/sitesupply-backend/pkg/enums"
	pkgerrors "github.com/mateovergara/sitesupply-backend/pkg/errors"
	"github.com/mateovergara/sitesupply-backend/pkg/logger"
	"github.com/mateovergara/sitesupply-backend/pkg/types"
)

// sendMessageRequest accepts an optional messageType but only plain text
// can be posted through the API; quotation, invoice, delivery and system
// entries are written by their own transitions.
type sendMessageRequest struct {
	Content     string `json:"content" validate:"required,min=1,max=5000"`
	MessageType string `json:"messageType,omitempty" validate:"omitempty,oneof=text"`
}

type quotationRequest struct {
	Amount       decimal.Decimal      `json:"amount" validate:"required"`
	Currency     string               `json:"currency,omitempty" validate:"omitempty,oneof=USD EUR GBP INR"`
	Note         string               `json:"note,omitempty" validate:"omitempty,max=5000"`
	Items        types.QuotationItems `json:"items,omitempty"`
	ValidUntil   *time.Time           `json:"valid_until,omitempty"`
	InResponseTo *uuid.UUID           `json:"in_response_to,omitempty"`
}

type rejectQuotationRequest struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=2000"`
}

// deliveryDetailsRequest accepts the canonical expected_delivery_date key
// and the legacy expectedArrival alias; the canonical key wins when both
// are present.
type deliveryDetailsRequest struct {
	TrackingNumber       string `json:"tracking_number" validate:"required,min=1"`
	Carrier              string `json:"carrier" validate:"required,min=1"`
	ExpectedDeliveryDate string `json:"expected_delivery_date,omitempty"`
	ExpectedArrival      string `json:"expectedArrival,omitempty"`
	Notes                string `json:"notes,omitempty" validate:"omitempty,max=5000"`
}

type deliveryStatusRequest struct {
	Status               string  `json:"status" validate:"required"`
	TrackingNumber       *string `json:"tracking_number,omitempty"`
	Carrier              *string `json:"carrier,omitempty"`
	ExpectedDeliveryDate string  `json:"expected_delivery_date,omitempty"`
	ExpectedArrival      string  `json:"expectedArrival,omitempty"`
	Notes                *string `json:"notes,omitempty"`
}

type acceptQuotationResponse struct {
	Order      OrderView   `json:"order"`
	Quotation  MessageView `json:"quotation"`
	Idempotent bool        `json:"idempotent"`
}

type deliveryDetailsResponse struct {
	Order   OrderView   `json:"order"`
	Invoice InvoiceView `json:"invoice"`
}

func parseArrivalDate(canonical, legacy string) (*time.Time, error) {
	raw := strings.TrimSpace(canonical)
	if raw == "" {
		raw = strings.TrimSpace(legacy)
	}
	if raw == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return &parsed, nil
	}
	if parsed, err := time.Parse("2006-01-02", raw); err == nil {
		return &parsed, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "expected delivery date must be RFC 3339 or YYYY-MM-DD").
		WithDetails(map[string]any{"field": "expected_delivery_date"})
}

// ListMessages returns the full negotiation ledger for an order.
func ListMessages(svc negotiation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseURLUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListMessages(r.Context(), middleware.ActorFromContext(r.Context()), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]MessageView, 0, len(rows))
		for _, row := range rows {
			views = append(views, buildMessageView(row))
		}
		responses.WriteSuccess(w, map[string]any{"messages": views})
	}
}

// SendMessage appends a plain text message to the ledger.
func SendMessage(svc negotiation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseURLUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req sendMessageRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		message, err := svc.SendMessage(r.Context(), middleware.ActorFromContext(r.Context()), negotiation.SendMessageInput{
			OrderID:     orderID,
			MessageType: enums.MessageTypeText,
			Content:     req.Content,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, buildMessageView(*message))
	}
}

// SubmitQuotation appends a vendor quotation to the ledger.
func SubmitQuotation(svc negotiation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseURLUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req quotationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		message, err := svc.SubmitQuotation(r.Context(), middleware.ActorFromContext(r.Context()), negotiation.SubmitQuotationInput{
			OrderID:      orderID,
			Amount:       req.Amount,
			Currency:     req.Currency,
			Note:         req.Note,
			Items:        req.Items,
			ValidUntil:   req.ValidUntil,
			InResponseTo: req.InResponseTo,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, buildMessageView(*message))
	}
}

// AcceptQuotation accepts a pending quotation and locks the final terms.
func AcceptQuotation(svc negotiation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseURLUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		messageID, err := validators.ParseURLUUID(chi.URLParam(r, "messageId"), "messageId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AcceptQuotation(r.Context(), middleware.ActorFromContext(r.Context()), orderID, messageID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, acceptQuotationResponse{
			Order:      buildOrderView(result.Order),
			Quotation:  buildMessageView(*result.Quotation),
			Idempotent: result.Idempotent,
		})
	}
}

// RejectQuotation rejects a pending quotation and reopens the negotiation.
func RejectQuotation(svc negotiation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseURLUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		messageID, err := validators.ParseURLUUID(chi.URLParam(r, "messageId"), "messageId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req rejectQuotationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RejectQuotation(r.Context(), middleware.ActorFromContext(r.Context()), orderID, messageID, req.Reason); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": string(enums.QuotationStatusRejected)})
	}
}

// SubmitDeliveryDetails records the initial shipment, generates the invoice
// and closes the negotiation chat.
func SubmitDeliveryDetails(svc negotiation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseURLUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req deliveryDetailsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		expected, err := parseArrivalDate(req.ExpectedDeliveryDate, req.ExpectedArrival)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SubmitDeliveryDetails(r.Context(), middleware.ActorFromContext(r.Context()), negotiation.DeliveryDetailsInput{
			OrderID:              orderID,
			TrackingNumber:       req.TrackingNumber,
			Carrier:              req.Carrier,
			ExpectedDeliveryDate: expected,
			Notes:                req.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, deliveryDetailsResponse{
			Order:   buildOrderView(result.Order),
			Invoice: buildInvoiceView(result.Invoice),
		})
	}
}

// UpdateDeliveryStatus records a tracking progression without touching the
// message ledger.
func UpdateDeliveryStatus(svc negotiation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseURLUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req deliveryStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		expected, err := parseArrivalDate(req.ExpectedDeliveryDate, req.ExpectedArrival)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.UpdateDeliveryStatus(r.Context(), middleware.ActorFromContext(r.Context()), negotiation.DeliveryStatusInput{
			OrderID:              orderID,
			Status:               enums.DeliveryStatus(req.Status),
			TrackingNumber:       req.TrackingNumber,
			Carrier:              req.Carrier,
			ExpectedDeliveryDate: expected,
			Notes:                req.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, buildOrderView(order))
	}
}

// MarkMessagesRead stamps read receipts on every ledger message the caller
// has not read yet.
func MarkMessagesRead(svc negotiation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseURLUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.MarkRead(r.Context(), middleware.ActorFromContext(r.Context()), orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "read"})
	}
}

// UnreadCount totals unread messages across every order visible to the caller.
func UnreadCount(svc negotiation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := svc.UnreadCount(r.Context(), middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"unread": count})
	}
}
