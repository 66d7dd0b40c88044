package negotiation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mateovergara/sitesupply-backend/internal/access"
	"github.com/mateovergara/sitesupply-backend/internal/messages"
	"github.com/mateovergara/sitesupply-backend/internal/orders"
	"github.com/mateovergara/sitesupply-backend/pkg/db/models"
	"github.com/mateovergara/sitesupply-backend/pkg/enums"
	pkgerrors "github.com/mateovergara/sitesupply-backend/pkg/errors"
	"github.com/mateovergara/sitesupply-backend/pkg/metrics"
	"github.com/mateovergara/sitesupply-backend/pkg/outbox"
	"github.com/mateovergara/sitesupply-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type accessGate interface {
	Authorize(ctx context.Context, order *models.PurchaseOrder, actor access.Actor) error
}

type invoiceGenerator interface {
	Generate(ctx context.Context, tx *gorm.DB, order *models.PurchaseOrder, quotation *models.NegotiationMessage) (*models.VendorInvoice, error)
}

type orderVisibility interface {
	VisibleOrderIDs(ctx context.Context, actor access.Actor) ([]uuid.UUID, error)
}

// Service is the authoritative state machine gating every mutation of an
// order's negotiation and delivery sub-state. Each operation is one
// transition: access gate, then transaction, then ledger append plus order
// mutation plus outbox emit as a single atomic unit.
type Service interface {
	ListMessages(ctx context.Context, actor access.Actor, orderID uuid.UUID) ([]models.NegotiationMessage, error)
	SendMessage(ctx context.Context, actor access.Actor, input SendMessageInput) (*models.NegotiationMessage, error)
	SubmitQuotation(ctx context.Context, actor access.Actor, input SubmitQuotationInput) (*models.NegotiationMessage, error)
	AcceptQuotation(ctx context.Context, actor access.Actor, orderID, messageID uuid.UUID) (*AcceptResult, error)
	RejectQuotation(ctx context.Context, actor access.Actor, orderID, messageID uuid.UUID, reason string) error
	SubmitDeliveryDetails(ctx context.Context, actor access.Actor, input DeliveryDetailsInput) (*DeliveryDetailsResult, error)
	UpdateDeliveryStatus(ctx context.Context, actor access.Actor, input DeliveryStatusInput) (*models.PurchaseOrder, error)
	MarkRead(ctx context.Context, actor access.Actor, orderID uuid.UUID) error
	UnreadCount(ctx context.Context, actor access.Actor) (int64, error)
}

type service struct {
	orders     orders.Repository
	messages   messages.Repository
	invoices   invoiceGenerator
	gate       accessGate
	tx         txRunner
	outbox     outboxPublisher
	visibility orderVisibility
	metrics    *metrics.NegotiationMetrics
	now        func() time.Time
}

// NewService builds the negotiation engine with the required dependencies.
func NewService(
	orderRepo orders.Repository,
	messageRepo messages.Repository,
	invoices invoiceGenerator,
	gate accessGate,
	tx txRunner,
	ob outboxPublisher,
	visibility orderVisibility,
	m *metrics.NegotiationMetrics,
) (Service, error) {
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if messageRepo == nil {
		return nil, fmt.Errorf("messages repository required")
	}
	if invoices == nil {
		return nil, fmt.Errorf("invoice generator required")
	}
	if gate == nil {
		return nil, fmt.Errorf("access gate required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if visibility == nil {
		return nil, fmt.Errorf("order visibility required")
	}
	return &service{
		orders:     orderRepo,
		messages:   messageRepo,
		invoices:   invoices,
		gate:       gate,
		tx:         tx,
		outbox:     ob,
		visibility: visibility,
		metrics:    m,
		now:        time.Now,
	}, nil
}

func (s *service) loadOrder(ctx context.Context, repo orders.Repository, orderID uuid.UUID, actor access.Actor) (*models.PurchaseOrder, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := repo.FindOrder(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if err := s.gate.Authorize(ctx, order, actor); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) observe(transition string, started time.Time, err error) {
	s.metrics.ObserveDuration(transition, time.Since(started))
	if err != nil {
		s.metrics.IncFailure(transition)
		return
	}
	s.metrics.IncSuccess(transition)
}

func (s *service) ListMessages(ctx context.Context, actor access.Actor, orderID uuid.UUID) ([]models.NegotiationMessage, error) {
	if _, err := s.loadOrder(ctx, s.orders, orderID, actor); err != nil {
		return nil, err
	}
	rows, err := s.messages.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list messages")
	}
	return rows, nil
}

func (s *service) SendMessage(ctx context.Context, actor access.Actor, input SendMessageInput) (message *models.NegotiationMessage, err error) {
	started := s.now()
	defer func() { s.observe("send_message", started, err) }()

	if input.MessageType != enums.MessageTypeText && input.MessageType != enums.MessageTypeSystem {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message type must be text or system")
	}
	content := strings.TrimSpace(input.Content)
	if input.MessageType == enums.MessageTypeText && content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message content required")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		orderRepo := s.orders.WithTx(tx)
		order, err := s.loadOrder(ctx, orderRepo, input.OrderID, actor)
		if err != nil {
			return err
		}
		if order.ChatClosed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "negotiation has ended")
		}

		now := s.now()
		message, err = s.messages.WithTx(tx).Append(ctx, &models.NegotiationMessage{
			OrderID:     order.ID,
			SenderID:    actor.UserID,
			SenderRole:  actor.Role,
			MessageType: input.MessageType,
			Content:     content,
			CreatedAt:   now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append message")
		}

		if err := orderRepo.UpdateOrder(ctx, order.ID, map[string]any{
			"last_message_at": now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update last message timestamp")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventMessagePosted,
			AggregateType: enums.AggregateNegotiationMessage,
			AggregateID:   message.ID,
			Version:       1,
			Actor:         buildActor(actor),
			Data: MessagePostedEvent{
				OrderID:     order.ID,
				MessageID:   message.ID,
				VendorID:    order.VendorID,
				MessageType: message.MessageType,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return message, nil
}

func (s *service) SubmitQuotation(ctx context.Context, actor access.Actor, input SubmitQuotationInput) (message *models.NegotiationMessage, err error) {
	started := s.now()
	defer func() { s.observe("submit_quotation", started, err) }()

	if actor.Role != enums.ActorRoleVendor {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the vendor can submit quotations")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quotation amount must be positive")
	}

	currency := enums.Currency(input.Currency)
	if input.Currency != "" && !currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown currency")
	}
	if input.Currency == "" {
		currency = enums.CurrencyUSD
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		orderRepo := s.orders.WithTx(tx)
		order, err := s.loadOrder(ctx, orderRepo, input.OrderID, actor)
		if err != nil {
			return err
		}
		if order.ChatClosed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "negotiation has ended")
		}
		if order.Status == enums.OrderStatusAccepted || order.AcceptedQuotationMessageID != nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "a quotation was already accepted for this order")
		}

		now := s.now()
		pending := enums.QuotationStatusPending
		message, err = s.messages.WithTx(tx).Append(ctx, &models.NegotiationMessage{
			OrderID:     order.ID,
			SenderID:    actor.UserID,
			SenderRole:  actor.Role,
			MessageType: enums.MessageTypeQuotation,
			Content:     input.Note,
			Quotation: &types.QuotationPayload{
				Amount:     input.Amount,
				Currency:   currency.String(),
				Note:       input.Note,
				Items:      input.Items,
				ValidUntil: input.ValidUntil,
			},
			QuotationStatus: &pending,
			InResponseTo:    input.InResponseTo,
			CreatedAt:       now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append quotation")
		}

		updates := map[string]any{"last_message_at": now}
		switch order.Status {
		case enums.OrderStatusDraft:
			updates["status"] = enums.OrderStatusSent
			order.Status = enums.OrderStatusSent
		case enums.OrderStatusSent, enums.OrderStatusAcknowledged:
			updates["status"] = enums.OrderStatusInNegotiation
			order.Status = enums.OrderStatusInNegotiation
		}
		if err := orderRepo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventQuotationSubmitted,
			AggregateType: enums.AggregatePurchaseOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(actor),
			Data: QuotationEvent{
				OrderID:     order.ID,
				MessageID:   message.ID,
				VendorID:    order.VendorID,
				Amount:      input.Amount,
				OrderStatus: order.Status,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return message, nil
}

func (s *service) AcceptQuotation(ctx context.Context, actor access.Actor, orderID, messageID uuid.UUID) (result *AcceptResult, err error) {
	started := s.now()
	defer func() { s.observe("accept_quotation", started, err) }()

	if actor.Role != enums.ActorRoleOwner && actor.Role != enums.ActorRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the owner can accept quotations")
	}
	if messageID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message id required")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		orderRepo := s.orders.WithTx(tx)
		messageRepo := s.messages.WithTx(tx)

		order, err := s.loadOrder(ctx, orderRepo, orderID, actor)
		if err != nil {
			return err
		}

		quotation, err := messageRepo.FindMessage(ctx, messageID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "quotation message not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quotation message")
		}
		if quotation.OrderID != order.ID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "quotation does not belong to order")
		}
		if quotation.MessageType != enums.MessageTypeQuotation || quotation.Quotation == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "message is not a quotation")
		}
		if !quotation.Quotation.Amount.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "quotation amount is malformed")
		}

		// documented idempotent case: re-accepting the winning quotation on
		// an already accepted order is a success with no side effects
		if isIdempotentAccept(order, quotation) {
			result = &AcceptResult{Order: order, Quotation: quotation, Idempotent: true}
			return nil
		}
		// once a winner is recorded the order is locked: any other
		// quotation fails here even if its own row is still pending
		if order.ChatClosed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "negotiation has ended")
		}
		if order.Status == enums.OrderStatusAccepted || order.AcceptedQuotationMessageID != nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "a quotation was already accepted")
		}
		if quotation.QuotationStatus == nil || *quotation.QuotationStatus != enums.QuotationStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "quotation is not pending")
		}

		flipped, err := messageRepo.UpdateQuotationStatus(ctx, quotation.ID, enums.QuotationStatusPending, enums.QuotationStatusAccepted)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "accept quotation")
		}
		if !flipped {
			// lost the conditional update to a concurrent caller
			reloaded, err := messageRepo.FindMessage(ctx, quotation.ID)
			if err == nil && isIdempotentAccept(order, reloaded) {
				result = &AcceptResult{Order: order, Quotation: reloaded, Idempotent: true}
				return nil
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "quotation is not pending")
		}

		now := s.now()
		systemEvents := []enums.SystemEvent{
			enums.SystemEventQuotationAccepted,
			enums.SystemEventDeliveryDetailsRequired,
		}
		for i := range systemEvents {
			// ListByOrder breaks created_at ties on the random id, so the
			// pair carries strictly increasing timestamps to keep its order
			if _, err := messageRepo.Append(ctx, &models.NegotiationMessage{
				OrderID:     order.ID,
				SenderID:    actor.UserID,
				SenderRole:  enums.ActorRoleSystem,
				MessageType: enums.MessageTypeSystem,
				SystemEvent: &systemEvents[i],
				CreatedAt:   now.Add(time.Duration(i) * time.Millisecond),
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append system message")
			}
		}

		finalCurrency := enums.Currency(quotation.Quotation.Currency)
		if err := orderRepo.UpdateOrder(ctx, order.ID, map[string]any{
			"status":                        enums.OrderStatusAccepted,
			"accepted_quotation_message_id": quotation.ID,
			"final_amount":                  quotation.Quotation.Amount,
			"final_currency":                finalCurrency,
			"last_message_at":               now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}

		order.Status = enums.OrderStatusAccepted
		order.AcceptedQuotationMessageID = &quotation.ID
		order.FinalAmount = &quotation.Quotation.Amount
		order.FinalCurrency = &finalCurrency
		accepted := enums.QuotationStatusAccepted
		quotation.QuotationStatus = &accepted
		result = &AcceptResult{Order: order, Quotation: quotation}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventQuotationAccepted,
			AggregateType: enums.AggregatePurchaseOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(actor),
			Data: QuotationEvent{
				OrderID:     order.ID,
				MessageID:   quotation.ID,
				VendorID:    order.VendorID,
				Amount:      quotation.Quotation.Amount,
				OrderStatus: order.Status,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func isIdempotentAccept(order *models.PurchaseOrder, quotation *models.NegotiationMessage) bool {
	if order == nil || quotation == nil || quotation.QuotationStatus == nil {
		return false
	}
	return *quotation.QuotationStatus == enums.QuotationStatusAccepted &&
		order.Status == enums.OrderStatusAccepted &&
		order.AcceptedQuotationMessageID != nil &&
		*order.AcceptedQuotationMessageID == quotation.ID
}

func (s *service) RejectQuotation(ctx context.Context, actor access.Actor, orderID, messageID uuid.UUID, reason string) (err error) {
	started := s.now()
	defer func() { s.observe("reject_quotation", started, err) }()

	if actor.Role != enums.ActorRoleOwner && actor.Role != enums.ActorRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the owner can reject quotations")
	}
	if messageID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "message id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		orderRepo := s.orders.WithTx(tx)
		messageRepo := s.messages.WithTx(tx)

		order, err := s.loadOrder(ctx, orderRepo, orderID, actor)
		if err != nil {
			return err
		}

		quotation, err := messageRepo.FindMessage(ctx, messageID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "quotation message not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quotation message")
		}
		if quotation.OrderID != order.ID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "quotation does not belong to order")
		}
		if quotation.MessageType != enums.MessageTypeQuotation {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "message is not a quotation")
		}
		// a leftover pending quotation on a locked order must not reopen
		// the negotiation
		if order.ChatClosed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "negotiation has ended")
		}
		if order.Status == enums.OrderStatusAccepted || order.AcceptedQuotationMessageID != nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "a quotation was already accepted")
		}

		flipped, err := messageRepo.UpdateQuotationStatus(ctx, quotation.ID, enums.QuotationStatusPending, enums.QuotationStatusRejected)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject quotation")
		}
		if !flipped {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "quotation is not pending")
		}

		now := s.now()
		rejected := enums.SystemEventQuotationRejected
		if _, err := messageRepo.Append(ctx, &models.NegotiationMessage{
			OrderID:     order.ID,
			SenderID:    actor.UserID,
			SenderRole:  enums.ActorRoleSystem,
			MessageType: enums.MessageTypeSystem,
			Content:     reason,
			SystemEvent: &rejected,
			CreatedAt:   now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append system message")
		}

		if err := orderRepo.UpdateOrder(ctx, order.ID, map[string]any{
			"status":          enums.OrderStatusInNegotiation,
			"last_message_at": now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		amount := decimalOrZero(quotation)
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventQuotationRejected,
			AggregateType: enums.AggregatePurchaseOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(actor),
			Data: QuotationEvent{
				OrderID:     order.ID,
				MessageID:   quotation.ID,
				VendorID:    order.VendorID,
				Amount:      amount,
				OrderStatus: enums.OrderStatusInNegotiation,
				Reason:      reason,
			},
		})
	})
}

func (s *service) SubmitDeliveryDetails(ctx context.Context, actor access.Actor, input DeliveryDetailsInput) (result *DeliveryDetailsResult, err error) {
	started := s.now()
	defer func() { s.observe("submit_delivery_details", started, err) }()

	if actor.Role != enums.ActorRoleVendor {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the vendor can submit delivery details")
	}

	// the delivery message, tracking update, invoice snapshot and chat close
	// commit or roll back together
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		orderRepo := s.orders.WithTx(tx)
		messageRepo := s.messages.WithTx(tx)

		order, err := s.loadOrder(ctx, orderRepo, input.OrderID, actor)
		if err != nil {
			return err
		}
		if order.Status != enums.OrderStatusAccepted || order.AcceptedQuotationMessageID == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order has no accepted quotation")
		}

		quotation, err := messageRepo.FindMessage(ctx, *order.AcceptedQuotationMessageID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load accepted quotation")
		}

		now := s.now()
		expected := ""
		if input.ExpectedDeliveryDate != nil {
			expected = input.ExpectedDeliveryDate.UTC().Format(time.RFC3339)
		}
		if _, err := messageRepo.Append(ctx, &models.NegotiationMessage{
			OrderID:     order.ID,
			SenderID:    actor.UserID,
			SenderRole:  actor.Role,
			MessageType: enums.MessageTypeDelivery,
			Content:     input.Notes,
			Delivery: &types.DeliveryInfo{
				Carrier:              input.Carrier,
				TrackingNumber:       input.TrackingNumber,
				ExpectedDeliveryDate: expected,
				Notes:                input.Notes,
			},
			CreatedAt: now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append delivery message")
		}

		invoice, err := s.invoices.Generate(ctx, tx, order, quotation)
		if err != nil {
			return err
		}

		if _, err := messageRepo.Append(ctx, &models.NegotiationMessage{
			OrderID:     order.ID,
			SenderID:    actor.UserID,
			SenderRole:  enums.ActorRoleSystem,
			MessageType: enums.MessageTypeInvoice,
			Invoice: &types.InvoicePayload{
				InvoiceID:     invoice.ID,
				InvoiceNumber: invoice.InvoiceNumber,
				Amount:        invoice.Amount,
				Currency:      invoice.Currency.String(),
				Status:        invoice.Status.String(),
			},
			CreatedAt: now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append invoice message")
		}

		history := append(order.DeliveryUpdates, types.DeliveryUpdate{
			Status:               enums.DeliveryStatusProcessing.String(),
			TrackingNumber:       input.TrackingNumber,
			Carrier:              input.Carrier,
			ExpectedDeliveryDate: expected,
			Notes:                input.Notes,
			UpdatedBy:            actor.UserID,
			UpdatedAt:            now,
		})
		if err := orderRepo.UpdateOrder(ctx, order.ID, map[string]any{
			"status":                 enums.OrderStatusInProgress,
			"delivery_status":        enums.DeliveryStatusProcessing,
			"tracking_number":        input.TrackingNumber,
			"carrier":                input.Carrier,
			"expected_delivery_date": input.ExpectedDeliveryDate,
			"delivery_notes":         input.Notes,
			"delivery_updates":       history,
			"delivery_updated_at":    now,
			"delivery_updated_by":    actor.UserID,
			"chat_closed":            true,
			"chat_closed_at":         now,
			"negotiation_active":     false,
			"last_message_at":        now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}

		order.Status = enums.OrderStatusInProgress
		order.DeliveryStatus = enums.DeliveryStatusProcessing
		order.ChatClosed = true
		order.DeliveryUpdates = history
		result = &DeliveryDetailsResult{Order: order, Invoice: invoice}

		invoiceID := invoice.ID
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDeliveryDetailsSubmitted,
			AggregateType: enums.AggregatePurchaseOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(actor),
			Data: DeliveryEvent{
				OrderID:        order.ID,
				VendorID:       order.VendorID,
				DeliveryStatus: order.DeliveryStatus,
				OrderStatus:    order.Status,
				InvoiceID:      &invoiceID,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) UpdateDeliveryStatus(ctx context.Context, actor access.Actor, input DeliveryStatusInput) (updated *models.PurchaseOrder, err error) {
	started := s.now()
	defer func() { s.observe("update_delivery_status", started, err) }()

	if actor.Role != enums.ActorRoleVendor {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the vendor can update delivery tracking")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown delivery status")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		orderRepo := s.orders.WithTx(tx)
		order, err := s.loadOrder(ctx, orderRepo, input.OrderID, actor)
		if err != nil {
			return err
		}

		now := s.now()
		updates := map[string]any{
			"delivery_status":     input.Status,
			"delivery_updated_at": now,
			"delivery_updated_by": actor.UserID,
		}
		entry := types.DeliveryUpdate{
			Status:    input.Status.String(),
			UpdatedBy: actor.UserID,
			UpdatedAt: now,
		}
		if input.TrackingNumber != nil {
			updates["tracking_number"] = *input.TrackingNumber
			entry.TrackingNumber = *input.TrackingNumber
		}
		if input.Carrier != nil {
			updates["carrier"] = *input.Carrier
			entry.Carrier = *input.Carrier
		}
		if input.ExpectedDeliveryDate != nil {
			updates["expected_delivery_date"] = *input.ExpectedDeliveryDate
			entry.ExpectedDeliveryDate = input.ExpectedDeliveryDate.UTC().Format(time.RFC3339)
		}
		if input.Notes != nil {
			updates["delivery_notes"] = *input.Notes
			entry.Notes = *input.Notes
		}
		updates["delivery_updates"] = append(order.DeliveryUpdates, entry)

		switch input.Status {
		case enums.DeliveryStatusDelivered:
			updates["actual_arrival"] = now
			updates["status"] = enums.OrderStatusCompleted
			order.Status = enums.OrderStatusCompleted
			order.ActualArrival = &now
		case enums.DeliveryStatusPartiallyDelivered:
			if order.Status != enums.OrderStatusPartiallyDelivered {
				updates["status"] = enums.OrderStatusPartiallyDelivered
				order.Status = enums.OrderStatusPartiallyDelivered
			}
		}

		if err := orderRepo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update delivery tracking")
		}

		order.DeliveryStatus = input.Status
		order.DeliveryUpdates = append(order.DeliveryUpdates, entry)
		updated = order

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderUpdated,
			AggregateType: enums.AggregatePurchaseOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(actor),
			Data: DeliveryEvent{
				OrderID:        order.ID,
				VendorID:       order.VendorID,
				DeliveryStatus: order.DeliveryStatus,
				OrderStatus:    order.Status,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) MarkRead(ctx context.Context, actor access.Actor, orderID uuid.UUID) (err error) {
	started := s.now()
	defer func() { s.observe("mark_read", started, err) }()

	if _, err = s.loadOrder(ctx, s.orders, orderID, actor); err != nil {
		return err
	}
	if err := s.messages.MarkRead(ctx, orderID, actor.UserID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark messages read")
	}
	return nil
}

func (s *service) UnreadCount(ctx context.Context, actor access.Actor) (int64, error) {
	ids, err := s.visibility.VisibleOrderIDs(ctx, actor)
	if err != nil {
		return 0, err
	}
	count, err := s.messages.CountUnread(ctx, ids, actor.UserID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread messages")
	}
	return count, nil
}

func buildActor(actor access.Actor) *outbox.ActorRef {
	return &outbox.ActorRef{
		UserID:   actor.UserID,
		VendorID: actor.VendorID,
		Role:     actor.Role.String(),
	}
}

func decimalOrZero(quotation *models.NegotiationMessage) (amount decimal.Decimal) {
	if quotation != nil && quotation.Quotation != nil {
		return quotation.Quotation.Amount
	}
	return amount
}
