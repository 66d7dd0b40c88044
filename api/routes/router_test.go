package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mateovergara/sitesupply-backend/internal/access"
	"github.com/mateovergara/sitesupply-backend/internal/negotiation"
	internalorders "github.com/mateovergara/sitesupply-backend/internal/orders"
	pkgauth "github.com/mateovergara/sitesupply-backend/pkg/auth"
	"github.com/mateovergara/sitesupply-backend/pkg/config"
	"github.com/mateovergara/sitesupply-backend/pkg/db/models"
	"github.com/mateovergara/sitesupply-backend/pkg/enums"
	pkgerrors "github.com/mateovergara/sitesupply-backend/pkg/errors"
	"github.com/mateovergara/sitesupply-backend/pkg/logger"
	"github.com/mateovergara/sitesupply-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubOrdersService struct {
	order *models.PurchaseOrder
}

func (s *stubOrdersService) Create(ctx context.Context, actor access.Actor, input internalorders.CreateOrderInput) (*models.PurchaseOrder, error) {
	return s.order, nil
}

func (s *stubOrdersService) Get(ctx context.Context, actor access.Actor, orderID uuid.UUID) (*models.PurchaseOrder, error) {
	if s.order == nil || s.order.ID != orderID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return s.order, nil
}

func (s *stubOrdersService) List(ctx context.Context, actor access.Actor, params pagination.Params, status *enums.OrderStatus) (*internalorders.OrderList, error) {
	return &internalorders.OrderList{Orders: []internalorders.OrderSummary{}}, nil
}

func (s *stubOrdersService) Acknowledge(ctx context.Context, actor access.Actor, orderID uuid.UUID) error {
	return nil
}

func (s *stubOrdersService) Cancel(ctx context.Context, actor access.Actor, orderID uuid.UUID, reason string) error {
	return nil
}

func (s *stubOrdersService) VisibleOrderIDs(ctx context.Context, actor access.Actor) ([]uuid.UUID, error) {
	return nil, nil
}

type stubNegotiationService struct {
	unread int64
}

func (s *stubNegotiationService) ListMessages(ctx context.Context, actor access.Actor, orderID uuid.UUID) ([]models.NegotiationMessage, error) {
	return nil, nil
}

func (s *stubNegotiationService) SendMessage(ctx context.Context, actor access.Actor, input negotiation.SendMessageInput) (*models.NegotiationMessage, error) {
	return &models.NegotiationMessage{ID: uuid.New(), OrderID: input.OrderID, Content: input.Content, MessageType: input.MessageType}, nil
}

func (s *stubNegotiationService) SubmitQuotation(ctx context.Context, actor access.Actor, input negotiation.SubmitQuotationInput) (*models.NegotiationMessage, error) {
	return &models.NegotiationMessage{ID: uuid.New(), OrderID: input.OrderID, MessageType: enums.MessageTypeQuotation}, nil
}

func (s *stubNegotiationService) AcceptQuotation(ctx context.Context, actor access.Actor, orderID, messageID uuid.UUID) (*negotiation.AcceptResult, error) {
	return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "quotation is not pending")
}

func (s *stubNegotiationService) RejectQuotation(ctx context.Context, actor access.Actor, orderID, messageID uuid.UUID, reason string) error {
	return nil
}

func (s *stubNegotiationService) SubmitDeliveryDetails(ctx context.Context, actor access.Actor, input negotiation.DeliveryDetailsInput) (*negotiation.DeliveryDetailsResult, error) {
	return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order has no accepted quotation")
}

func (s *stubNegotiationService) UpdateDeliveryStatus(ctx context.Context, actor access.Actor, input negotiation.DeliveryStatusInput) (*models.PurchaseOrder, error) {
	return &models.PurchaseOrder{ID: input.OrderID, DeliveryStatus: input.Status}, nil
}

func (s *stubNegotiationService) MarkRead(ctx context.Context, actor access.Actor, orderID uuid.UUID) error {
	return nil
}

func (s *stubNegotiationService) UnreadCount(ctx context.Context, actor access.Actor) (int64, error) {
	return s.unread, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "sitesupply-test",
			ExpirationMinutes: 15,
		},
	}
}

func testRouter(t *testing.T, cfg *config.Config, ordersSvc internalorders.Service, negotiationSvc negotiation.Service) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "router-test", Level: zerolog.ErrorLevel})
	return NewRouter(cfg, logg, stubPinger{}, nil, stubPinger{}, ordersSvc, negotiationSvc, nil)
}

func bearerToken(t *testing.T, cfg *config.Config, role enums.ActorRole) string {
	t.Helper()
	payload := pkgauth.AccessTokenPayload{UserID: uuid.New(), Role: role}
	if role == enums.ActorRoleVendor {
		vendorID := uuid.New()
		payload.VendorID = &vendorID
	}
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), payload)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func TestHealthLive(t *testing.T) {
	cfg := testConfig()
	router := testRouter(t, cfg, &stubOrdersService{}, &stubNegotiationService{})

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 but got %d", w.Code)
	}
	if got := w.Header().Get("X-SiteSupply-Env"); got != "test" {
		t.Fatalf("unexpected env header %q", got)
	}
}

func TestHealthReady(t *testing.T) {
	cfg := testConfig()
	router := testRouter(t, cfg, &stubOrdersService{}, &stubNegotiationService{})

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 but got %d", w.Code)
	}
}

func TestOrdersRequireAuth(t *testing.T) {
	cfg := testConfig()
	router := testRouter(t, cfg, &stubOrdersService{}, &stubNegotiationService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 but got %d", w.Code)
	}
}

func TestListOrdersWithToken(t *testing.T) {
	cfg := testConfig()
	router := testRouter(t, cfg, &stubOrdersService{}, &stubNegotiationService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", bearerToken(t, cfg, enums.ActorRoleOwner))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 but got %d", w.Code)
	}
}

func TestOrderDetailNotFound(t *testing.T) {
	cfg := testConfig()
	router := testRouter(t, cfg, &stubOrdersService{}, &stubNegotiationService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+uuid.NewString(), nil)
	req.Header.Set("Authorization", bearerToken(t, cfg, enums.ActorRoleOwner))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 but got %d", w.Code)
	}
}

func TestUnreadCount(t *testing.T) {
	cfg := testConfig()
	router := testRouter(t, cfg, &stubOrdersService{}, &stubNegotiationService{unread: 3})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/unread-count", nil)
	req.Header.Set("Authorization", bearerToken(t, cfg, enums.ActorRoleOwner))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 but got %d", w.Code)
	}
	var body struct {
		Data map[string]int64 `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Data["unread"] != 3 {
		t.Fatalf("unread = %d, want 3", body.Data["unread"])
	}
}

func TestAcceptQuotationStateConflictIs400(t *testing.T) {
	cfg := testConfig()
	router := testRouter(t, cfg, &stubOrdersService{}, &stubNegotiationService{})

	orderID := uuid.NewString()
	messageID := uuid.NewString()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/orders/"+orderID+"/quotation/"+messageID+"/accept", nil)
	req.Header.Set("Authorization", bearerToken(t, cfg, enums.ActorRoleOwner))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 but got %d", w.Code)
	}
}

func TestSendMessageDecodesBody(t *testing.T) {
	cfg := testConfig()
	router := testRouter(t, cfg, &stubOrdersService{}, &stubNegotiationService{})

	orderID := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID+"/messages", strings.NewReader(`{"content":"how soon can you ship?"}`))
	req.Header.Set("Authorization", bearerToken(t, cfg, enums.ActorRoleOwner))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 but got %d", w.Code)
	}
}

func TestSendMessageAcceptsTextTypeOnly(t *testing.T) {
	cfg := testConfig()
	router := testRouter(t, cfg, &stubOrdersService{}, &stubNegotiationService{})

	orderID := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID+"/messages", strings.NewReader(`{"content":"hello","messageType":"text"}`))
	req.Header.Set("Authorization", bearerToken(t, cfg, enums.ActorRoleOwner))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 but got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID+"/messages", strings.NewReader(`{"content":"hello","messageType":"system"}`))
	req.Header.Set("Authorization", bearerToken(t, cfg, enums.ActorRoleOwner))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 but got %d", w.Code)
	}
}

func TestSendMessageRejectsUnknownFields(t *testing.T) {
	cfg := testConfig()
	router := testRouter(t, cfg, &stubOrdersService{}, &stubNegotiationService{})

	orderID := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID+"/messages", strings.NewReader(`{"content":"hi","sneaky":true}`))
	req.Header.Set("Authorization", bearerToken(t, cfg, enums.ActorRoleOwner))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 but got %d", w.Code)
	}
}
