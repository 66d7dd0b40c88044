package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateovergara/sitesupply-backend/internal/access"
	"github.com/mateovergara/sitesupply-backend/internal/messages"
	"github.com/mateovergara/sitesupply-backend/pkg/db/models"
	"github.com/mateovergara/sitesupply-backend/pkg/enums"
	pkgerrors "github.com/mateovergara/sitesupply-backend/pkg/errors"
	"github.com/mateovergara/sitesupply-backend/pkg/outbox"
	"github.com/mateovergara/sitesupply-backend/pkg/pagination"
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

type messageAppender interface {
	WithTx(tx *gorm.DB) messages.Repository
}

type projectScoper interface {
	ListProjectIDsForEmployee(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	ListProjectIDsForClient(ctx context.Context, clientID uuid.UUID) ([]uuid.UUID, error)
}

// Service defines purchase order lifecycle operations outside the
// negotiation engine.
type Service interface {
	Create(ctx context.Context, actor access.Actor, input CreateOrderInput) (*models.PurchaseOrder, error)
	Get(ctx context.Context, actor access.Actor, orderID uuid.UUID) (*models.PurchaseOrder, error)
	List(ctx context.Context, actor access.Actor, params pagination.Params, status *enums.OrderStatus) (*OrderList, error)
	Acknowledge(ctx context.Context, actor access.Actor, orderID uuid.UUID) error
	Cancel(ctx context.Context, actor access.Actor, orderID uuid.UUID, reason string) error
	VisibleOrderIDs(ctx context.Context, actor access.Actor) ([]uuid.UUID, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	outbox   outboxPublisher
	gate     accessGate
	messages messageAppender
	projects projectScoper
	now      func() time.Time
}

// OrderCreatedEvent is emitted when an owner raises a purchase order.
type OrderCreatedEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	ProjectID   uuid.UUID         `json:"project_id"`
	VendorID    uuid.UUID         `json:"vendor_id"`
	Status      enums.OrderStatus `json:"status"`
}

// OrderUpdatedEvent is emitted on lifecycle changes outside the negotiation
// transitions.
type OrderUpdatedEvent struct {
	OrderID  uuid.UUID         `json:"order_id"`
	VendorID uuid.UUID         `json:"vendor_id"`
	Status   enums.OrderStatus `json:"status"`
	Reason   string            `json:"reason,omitempty"`
}

// NewService builds the purchase order service with the required dependencies.
func NewService(repo Repository, tx txRunner, ob outboxPublisher, gate accessGate, messages messageAppender, projects projectScoper) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if gate == nil {
		return nil, fmt.Errorf("access gate required")
	}
	if messages == nil {
		return nil, fmt.Errorf("message appender required")
	}
	if projects == nil {
		return nil, fmt.Errorf("projects repository required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		outbox:   ob,
		gate:     gate,
		messages: messages,
		projects: projects,
		now:      time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, actor access.Actor, input CreateOrderInput) (*models.PurchaseOrder, error) {
	if actor.Role != enums.ActorRoleOwner && actor.Role != enums.ActorRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only owners can raise purchase orders")
	}
	if input.ProjectID == uuid.Nil || input.MaterialRequestID == uuid.Nil || input.VendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project, material request and vendor are required")
	}

	var created *models.PurchaseOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		request, err := repo.FindMaterialRequest(ctx, input.MaterialRequestID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "material request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load material request")
		}
		if request.ProjectID != input.ProjectID {
			return pkgerrors.New(pkgerrors.CodeValidation, "material request does not belong to project")
		}
		if request.Status != enums.MaterialRequestStatusApproved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "material request is not approved")
		}

		now := s.now()
		order := &models.PurchaseOrder{
			OrderNumber:       fmt.Sprintf("PO-%d", now.UnixMilli()),
			ProjectID:         input.ProjectID,
			MaterialRequestID: input.MaterialRequestID,
			VendorID:          input.VendorID,
			CreatedBy:         actor.UserID,
			Status:            enums.OrderStatusDraft,
			NegotiationActive: true,
		}
		created, err = repo.CreateOrder(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create purchase order")
		}

		if err := repo.UpdateMaterialRequestStatus(ctx, request.ID, enums.MaterialRequestStatusOrdered); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark material request ordered")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregatePurchaseOrder,
			AggregateID:   created.ID,
			Version:       1,
			Actor:         buildActor(actor),
			Data: OrderCreatedEvent{
				OrderID:     created.ID,
				OrderNumber: created.OrderNumber,
				ProjectID:   created.ProjectID,
				VendorID:    created.VendorID,
				Status:      created.Status,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, actor access.Actor, orderID uuid.UUID) (*models.PurchaseOrder, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrder(ctx, orderID)
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

func (s *service) List(ctx context.Context, actor access.Actor, params pagination.Params, status *enums.OrderStatus) (*OrderList, error) {
	filters, err := s.filtersFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	filters.Status = status
	list, err := s.repo.ListOrders(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func (s *service) VisibleOrderIDs(ctx context.Context, actor access.Actor) ([]uuid.UUID, error) {
	filters, err := s.filtersFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	ids, err := s.repo.ListOrderIDs(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order ids")
	}
	return ids, nil
}

// filtersFor maps the actor's role onto the visibility rules of the access
// gate: vendors see their own orders, employees their assigned projects,
// clients their owning projects, owners and admins everything.
func (s *service) filtersFor(ctx context.Context, actor access.Actor) (OrderFilters, error) {
	switch actor.Role {
	case enums.ActorRoleOwner, enums.ActorRoleAdmin:
		return OrderFilters{}, nil

	case enums.ActorRoleVendor:
		if actor.VendorID == nil {
			return OrderFilters{}, pkgerrors.New(pkgerrors.CodeForbidden, "vendor context missing")
		}
		return OrderFilters{VendorID: actor.VendorID}, nil

	case enums.ActorRoleEmployee:
		ids, err := s.projects.ListProjectIDsForEmployee(ctx, actor.UserID)
		if err != nil {
			return OrderFilters{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assigned projects")
		}
		if ids == nil {
			ids = []uuid.UUID{}
		}
		return OrderFilters{ProjectIDs: ids}, nil

	case enums.ActorRoleClient:
		ids, err := s.projects.ListProjectIDsForClient(ctx, actor.UserID)
		if err != nil {
			return OrderFilters{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list client projects")
		}
		if ids == nil {
			ids = []uuid.UUID{}
		}
		return OrderFilters{ProjectIDs: ids}, nil

	default:
		return OrderFilters{}, pkgerrors.New(pkgerrors.CodeForbidden, "role may not list orders")
	}
}

func (s *service) Acknowledge(ctx context.Context, actor access.Actor, orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if actor.Role != enums.ActorRoleVendor {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the vendor can acknowledge an order")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if err := s.gate.Authorize(ctx, order, actor); err != nil {
			return err
		}
		if order.Status == enums.OrderStatusAcknowledged {
			return nil
		}
		if order.Status != enums.OrderStatusSent {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot be acknowledged in current state")
		}

		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{
			"status": enums.OrderStatusAcknowledged,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderUpdated,
			AggregateType: enums.AggregatePurchaseOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(actor),
			Data: OrderUpdatedEvent{
				OrderID:  order.ID,
				VendorID: order.VendorID,
				Status:   enums.OrderStatusAcknowledged,
			},
		})
	})
}

func (s *service) Cancel(ctx context.Context, actor access.Actor, orderID uuid.UUID, reason string) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if actor.Role != enums.ActorRoleOwner && actor.Role != enums.ActorRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only owners can cancel orders")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is already terminal")
		}

		now := s.now()
		cancelEvent := enums.SystemEventOrderCancelled
		if _, err := s.messages.WithTx(tx).Append(ctx, &models.NegotiationMessage{
			OrderID:     order.ID,
			SenderID:    actor.UserID,
			SenderRole:  enums.ActorRoleSystem,
			MessageType: enums.MessageTypeSystem,
			Content:     reason,
			SystemEvent: &cancelEvent,
			CreatedAt:   now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append cancellation message")
		}

		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{
			"status":             enums.OrderStatusCancelled,
			"chat_closed":        true,
			"chat_closed_at":     now,
			"negotiation_active": false,
			"last_message_at":    now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderUpdated,
			AggregateType: enums.AggregatePurchaseOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(actor),
			Data: OrderUpdatedEvent{
				OrderID:  order.ID,
				VendorID: order.VendorID,
				Status:   enums.OrderStatusCancelled,
				Reason:   reason,
			},
		})
	})
}

func buildActor(actor access.Actor) *outbox.ActorRef {
	return &outbox.ActorRef{
		UserID:   actor.UserID,
		VendorID: actor.VendorID,
		Role:     actor.Role.String(),
	}
}
