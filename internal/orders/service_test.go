package orders

import (
	"context"
	"testing"

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

type memoryRepo struct {
	orders   map[uuid.UUID]*models.PurchaseOrder
	requests map[uuid.UUID]*models.MaterialRequest
	updates  []map[string]any
	listIDs  []uuid.UUID
	filters  *OrderFilters
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		orders:   map[uuid.UUID]*models.PurchaseOrder{},
		requests: map[uuid.UUID]*models.MaterialRequest{},
	}
}

func (r *memoryRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *memoryRepo) CreateOrder(ctx context.Context, order *models.PurchaseOrder) (*models.PurchaseOrder, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	r.orders[order.ID] = order
	return order, nil
}

func (r *memoryRepo) FindOrder(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (r *memoryRepo) UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	r.updates = append(r.updates, updates)
	return nil
}

func (r *memoryRepo) ListOrders(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	r.filters = &filters
	return &OrderList{}, nil
}

func (r *memoryRepo) ListOrderIDs(ctx context.Context, filters OrderFilters) ([]uuid.UUID, error) {
	r.filters = &filters
	return r.listIDs, nil
}

func (r *memoryRepo) FindMaterialRequest(ctx context.Context, id uuid.UUID) (*models.MaterialRequest, error) {
	request, ok := r.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return request, nil
}

func (r *memoryRepo) UpdateMaterialRequestStatus(ctx context.Context, id uuid.UUID, status enums.MaterialRequestStatus) error {
	if request, ok := r.requests[id]; ok {
		request.Status = status
	}
	return nil
}

type noopTx struct{}

func (noopTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

type recordingOutbox struct {
	events []outbox.DomainEvent
}

func (o *recordingOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	o.events = append(o.events, event)
	return nil
}

type openGate struct{}

func (openGate) Authorize(ctx context.Context, order *models.PurchaseOrder, actor access.Actor) error {
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if actor.Role == enums.ActorRoleVendor && (actor.VendorID == nil || *actor.VendorID != order.VendorID) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another vendor")
	}
	return nil
}

type ledgerStub struct {
	appended []*models.NegotiationMessage
}

func (l *ledgerStub) WithTx(tx *gorm.DB) messages.Repository { return l }

func (l *ledgerStub) Append(ctx context.Context, message *models.NegotiationMessage) (*models.NegotiationMessage, error) {
	message.ID = uuid.New()
	l.appended = append(l.appended, message)
	return message, nil
}

func (l *ledgerStub) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.NegotiationMessage, error) {
	return nil, nil
}

func (l *ledgerStub) FindMessage(ctx context.Context, id uuid.UUID) (*models.NegotiationMessage, error) {
	return nil, gorm.ErrRecordNotFound
}

func (l *ledgerStub) UpdateQuotationStatus(ctx context.Context, messageID uuid.UUID, from, to enums.QuotationStatus) (bool, error) {
	return false, nil
}

func (l *ledgerStub) MarkRead(ctx context.Context, orderID, userID uuid.UUID) error { return nil }

func (l *ledgerStub) CountUnread(ctx context.Context, orderIDs []uuid.UUID, userID uuid.UUID) (int64, error) {
	return 0, nil
}

type projectsStub struct {
	employeeProjects []uuid.UUID
	clientProjects   []uuid.UUID
}

func (p *projectsStub) ListProjectIDsForEmployee(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return p.employeeProjects, nil
}

func (p *projectsStub) ListProjectIDsForClient(ctx context.Context, clientID uuid.UUID) ([]uuid.UUID, error) {
	return p.clientProjects, nil
}

type orderFixture struct {
	service  Service
	repo     *memoryRepo
	outbox   *recordingOutbox
	ledger   *ledgerStub
	projects *projectsStub
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	f := &orderFixture{
		repo:     newMemoryRepo(),
		outbox:   &recordingOutbox{},
		ledger:   &ledgerStub{},
		projects: &projectsStub{},
	}
	svc, err := NewService(f.repo, noopTx{}, f.outbox, openGate{}, f.ledger, f.projects)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	f.service = svc
	return f
}

func approvedRequest(projectID uuid.UUID) *models.MaterialRequest {
	return &models.MaterialRequest{
		ID:        uuid.New(),
		ProjectID: projectID,
		Title:     "structural steel",
		Status:    enums.MaterialRequestStatusApproved,
	}
}

func owner() access.Actor {
	return access.Actor{UserID: uuid.New(), Role: enums.ActorRoleOwner}
}

func TestCreateOrderFromApprovedRequest(t *testing.T) {
	f := newOrderFixture(t)
	projectID := uuid.New()
	request := approvedRequest(projectID)
	f.repo.requests[request.ID] = request

	order, err := f.service.Create(context.Background(), owner(), CreateOrderInput{
		ProjectID:         projectID,
		MaterialRequestID: request.ID,
		VendorID:          uuid.New(),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if order.Status != enums.OrderStatusDraft {
		t.Fatalf("order status = %s, want draft", order.Status)
	}
	if order.OrderNumber == "" {
		t.Fatalf("order number not assigned")
	}
	if request.Status != enums.MaterialRequestStatusOrdered {
		t.Fatalf("material request status = %s, want ordered", request.Status)
	}
	if len(f.outbox.events) != 1 || f.outbox.events[0].EventType != enums.EventOrderCreated {
		t.Fatalf("outbox events = %+v, want one order_created", f.outbox.events)
	}
}

func TestCreateOrderRejectsVendor(t *testing.T) {
	f := newOrderFixture(t)
	vendorID := uuid.New()

	_, err := f.service.Create(context.Background(), access.Actor{
		UserID:   uuid.New(),
		Role:     enums.ActorRoleVendor,
		VendorID: &vendorID,
	}, CreateOrderInput{ProjectID: uuid.New(), MaterialRequestID: uuid.New(), VendorID: vendorID})
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("Create() error = %v, want forbidden", err)
	}
}

func TestCreateOrderRequiresApprovedRequest(t *testing.T) {
	f := newOrderFixture(t)
	projectID := uuid.New()
	request := approvedRequest(projectID)
	request.Status = enums.MaterialRequestStatusPending
	f.repo.requests[request.ID] = request

	_, err := f.service.Create(context.Background(), owner(), CreateOrderInput{
		ProjectID:         projectID,
		MaterialRequestID: request.ID,
		VendorID:          uuid.New(),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("Create() error = %v, want state conflict", err)
	}
}

func TestCreateOrderRejectsProjectMismatch(t *testing.T) {
	f := newOrderFixture(t)
	request := approvedRequest(uuid.New())
	f.repo.requests[request.ID] = request

	_, err := f.service.Create(context.Background(), owner(), CreateOrderInput{
		ProjectID:         uuid.New(),
		MaterialRequestID: request.ID,
		VendorID:          uuid.New(),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("Create() error = %v, want validation", err)
	}
}

func TestAcknowledgeSentOrder(t *testing.T) {
	f := newOrderFixture(t)
	vendorID := uuid.New()
	order := &models.PurchaseOrder{ID: uuid.New(), VendorID: vendorID, Status: enums.OrderStatusSent}
	f.repo.orders[order.ID] = order

	actor := access.Actor{UserID: uuid.New(), Role: enums.ActorRoleVendor, VendorID: &vendorID}
	if err := f.service.Acknowledge(context.Background(), actor, order.ID); err != nil {
		t.Fatalf("Acknowledge() error = %v", err)
	}
	if got := f.repo.updates[0]["status"]; got != enums.OrderStatusAcknowledged {
		t.Fatalf("status update = %v, want acknowledged", got)
	}
}

func TestAcknowledgeIsIdempotent(t *testing.T) {
	f := newOrderFixture(t)
	vendorID := uuid.New()
	order := &models.PurchaseOrder{ID: uuid.New(), VendorID: vendorID, Status: enums.OrderStatusAcknowledged}
	f.repo.orders[order.ID] = order

	actor := access.Actor{UserID: uuid.New(), Role: enums.ActorRoleVendor, VendorID: &vendorID}
	if err := f.service.Acknowledge(context.Background(), actor, order.ID); err != nil {
		t.Fatalf("Acknowledge() error = %v", err)
	}
	if len(f.repo.updates) != 0 {
		t.Fatalf("idempotent acknowledge issued %d updates", len(f.repo.updates))
	}
	if len(f.outbox.events) != 0 {
		t.Fatalf("idempotent acknowledge emitted %d events", len(f.outbox.events))
	}
}

func TestAcknowledgeDraftFails(t *testing.T) {
	f := newOrderFixture(t)
	vendorID := uuid.New()
	order := &models.PurchaseOrder{ID: uuid.New(), VendorID: vendorID, Status: enums.OrderStatusDraft}
	f.repo.orders[order.ID] = order

	actor := access.Actor{UserID: uuid.New(), Role: enums.ActorRoleVendor, VendorID: &vendorID}
	err := f.service.Acknowledge(context.Background(), actor, order.ID)
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("Acknowledge() error = %v, want state conflict", err)
	}
}

func TestCancelAppendsSystemMessageAndClosesChat(t *testing.T) {
	f := newOrderFixture(t)
	order := &models.PurchaseOrder{ID: uuid.New(), VendorID: uuid.New(), Status: enums.OrderStatusInNegotiation}
	f.repo.orders[order.ID] = order

	if err := f.service.Cancel(context.Background(), owner(), order.ID, "project descoped"); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if len(f.ledger.appended) != 1 {
		t.Fatalf("ledger messages = %d, want 1", len(f.ledger.appended))
	}
	appended := f.ledger.appended[0]
	if appended.SystemEvent == nil || *appended.SystemEvent != enums.SystemEventOrderCancelled {
		t.Fatalf("system event = %v, want order_cancelled", appended.SystemEvent)
	}
	if appended.Content != "project descoped" {
		t.Fatalf("cancellation content = %q", appended.Content)
	}
	updates := f.repo.updates[0]
	if updates["status"] != enums.OrderStatusCancelled {
		t.Fatalf("status update = %v, want cancelled", updates["status"])
	}
	if updates["chat_closed"] != true {
		t.Fatalf("chat not closed on cancellation")
	}
}

func TestCancelTerminalOrderFails(t *testing.T) {
	f := newOrderFixture(t)
	order := &models.PurchaseOrder{ID: uuid.New(), VendorID: uuid.New(), Status: enums.OrderStatusCompleted}
	f.repo.orders[order.ID] = order

	err := f.service.Cancel(context.Background(), owner(), order.ID, "too late")
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("Cancel() error = %v, want state conflict", err)
	}
}

func TestListScopesFiltersByRole(t *testing.T) {
	f := newOrderFixture(t)
	projectID := uuid.New()
	f.projects.employeeProjects = []uuid.UUID{projectID}

	employee := access.Actor{UserID: uuid.New(), Role: enums.ActorRoleEmployee}
	if _, err := f.service.List(context.Background(), employee, pagination.Params{}, nil); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if f.repo.filters == nil || len(f.repo.filters.ProjectIDs) != 1 || f.repo.filters.ProjectIDs[0] != projectID {
		t.Fatalf("employee filters = %+v, want project scope", f.repo.filters)
	}

	vendorID := uuid.New()
	vendor := access.Actor{UserID: uuid.New(), Role: enums.ActorRoleVendor, VendorID: &vendorID}
	if _, err := f.service.List(context.Background(), vendor, pagination.Params{}, nil); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if f.repo.filters.VendorID == nil || *f.repo.filters.VendorID != vendorID {
		t.Fatalf("vendor filters = %+v, want vendor scope", f.repo.filters)
	}

	if _, err := f.service.List(context.Background(), owner(), pagination.Params{}, nil); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if f.repo.filters.VendorID != nil || f.repo.filters.ProjectIDs != nil {
		t.Fatalf("owner filters = %+v, want unscoped", f.repo.filters)
	}
}

func TestListEmployeeWithoutAssignmentsSeesNothing(t *testing.T) {
	f := newOrderFixture(t)

	employee := access.Actor{UserID: uuid.New(), Role: enums.ActorRoleEmployee}
	if _, err := f.service.List(context.Background(), employee, pagination.Params{}, nil); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if f.repo.filters.ProjectIDs == nil || len(f.repo.filters.ProjectIDs) != 0 {
		t.Fatalf("employee filters = %+v, want empty project scope", f.repo.filters)
	}
}

func TestListVendorWithoutContextFails(t *testing.T) {
	f := newOrderFixture(t)

	vendor := access.Actor{UserID: uuid.New(), Role: enums.ActorRoleVendor}
	_, err := f.service.List(context.Background(), vendor, pagination.Params{}, nil)
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("List() error = %v, want forbidden", err)
	}
}

func TestVisibleOrderIDs(t *testing.T) {
	f := newOrderFixture(t)
	f.repo.listIDs = []uuid.UUID{uuid.New(), uuid.New()}

	ids, err := f.service.VisibleOrderIDs(context.Background(), owner())
	if err != nil {
		t.Fatalf("VisibleOrderIDs() error = %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("visible ids = %d, want 2", len(ids))
	}
}

func TestGetUnknownOrder(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.service.Get(context.Background(), owner(), uuid.New())
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("Get() error = %v, want not found", err)
	}
}
