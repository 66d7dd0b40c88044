package invoices

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mateovergara/sitesupply-backend/pkg/db/models"
	"github.com/mateovergara/sitesupply-backend/pkg/enums"
	pkgerrors "github.com/mateovergara/sitesupply-backend/pkg/errors"
	"github.com/mateovergara/sitesupply-backend/pkg/types"
)

type stubInvoiceRepo struct {
	created   []*models.VendorInvoice
	createErr error
}

func (s *stubInvoiceRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubInvoiceRepo) Create(ctx context.Context, invoice *models.VendorInvoice) (*models.VendorInvoice, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, invoice)
	return invoice, nil
}

func (s *stubInvoiceRepo) FindByOrder(ctx context.Context, orderID uuid.UUID) (*models.VendorInvoice, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubInvoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.VendorInvoice, error) {
	return nil, gorm.ErrRecordNotFound
}

func acceptedQuotation(amount int64) *models.NegotiationMessage {
	accepted := enums.QuotationStatusAccepted
	return &models.NegotiationMessage{
		ID:              uuid.New(),
		MessageType:     enums.MessageTypeQuotation,
		QuotationStatus: &accepted,
		Quotation: &types.QuotationPayload{
			Amount:   decimal.NewFromInt(amount),
			Currency: "EUR",
			Note:     "steel beams, lot 4",
			Items: types.QuotationItems{
				{Description: "beam", Quantity: decimal.NewFromInt(20), UnitPrice: decimal.NewFromInt(9000), Total: decimal.NewFromInt(180000)},
			},
		},
	}
}

func TestGenerateSnapshotsQuotationFields(t *testing.T) {
	repo := &stubInvoiceRepo{}
	gen, err := NewGenerator(repo)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	gen.now = func() time.Time { return time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC) }

	order := &models.PurchaseOrder{
		ID:        uuid.New(),
		ProjectID: uuid.New(),
		VendorID:  uuid.New(),
	}
	quotation := acceptedQuotation(180000)

	invoice, err := gen.Generate(context.Background(), &gorm.DB{}, order, quotation)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 invoice created, got %d", len(repo.created))
	}
	if invoice.Status != enums.InvoiceStatusPending {
		t.Fatalf("expected pending status, got %s", invoice.Status)
	}
	if !invoice.Amount.Equal(decimal.NewFromInt(180000)) {
		t.Fatalf("expected amount 180000, got %s", invoice.Amount)
	}
	if invoice.Currency != enums.CurrencyEUR {
		t.Fatalf("expected EUR, got %s", invoice.Currency)
	}
	if invoice.OrderID != order.ID || invoice.VendorID != order.VendorID || invoice.ProjectID != order.ProjectID {
		t.Fatalf("order references not copied")
	}
	if invoice.QuotationMessageID != quotation.ID {
		t.Fatalf("quotation reference not copied")
	}
	if len(invoice.Items) != 1 || invoice.Items[0].Description != "beam" {
		t.Fatalf("items not snapshotted: %+v", invoice.Items)
	}
	if invoice.Description == nil || *invoice.Description != "steel beams, lot 4" {
		t.Fatalf("note not copied into description")
	}
	if invoice.InvoiceNumber == "" {
		t.Fatalf("invoice number missing")
	}
}

func TestGenerateRejectsMissingPayload(t *testing.T) {
	gen, _ := NewGenerator(&stubInvoiceRepo{})
	order := &models.PurchaseOrder{ID: uuid.New()}

	_, err := gen.Generate(context.Background(), &gorm.DB{}, order, &models.NegotiationMessage{})
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestGenerateSurfacesDuplicateAsConflict(t *testing.T) {
	repo := &stubInvoiceRepo{createErr: errors.New(`duplicate key value violates unique constraint "ux_vendor_invoices_order_live"`)}
	gen, _ := NewGenerator(repo)
	order := &models.PurchaseOrder{ID: uuid.New()}

	_, err := gen.Generate(context.Background(), &gorm.DB{}, order, acceptedQuotation(1000))
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}
