package invoices

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	dbpkg "github.com/mateovergara/sitesupply-backend/pkg/db"
	"github.com/mateovergara/sitesupply-backend/pkg/db/models"
	"github.com/mateovergara/sitesupply-backend/pkg/enums"
	pkgerrors "github.com/mateovergara/sitesupply-backend/pkg/errors"
)

// Generator produces the invoice snapshot from an accepted quotation at the
// moment delivery details are submitted.
type Generator struct {
	repo Repository
	now  func() time.Time
}

// NewGenerator builds an invoice generator.
func NewGenerator(repo Repository) (*Generator, error) {
	if repo == nil {
		return nil, fmt.Errorf("invoices repository required")
	}
	return &Generator{repo: repo, now: time.Now}, nil
}

// Generate copies amount, currency and items by value from the accepted
// quotation message and creates the pending invoice inside the caller's
// transaction. The unique index on order_id surfaces a second generation
// attempt as a conflict instead of overwriting.
func (g *Generator) Generate(ctx context.Context, tx *gorm.DB, order *models.PurchaseOrder, quotation *models.NegotiationMessage) (*models.VendorInvoice, error) {
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}
	if quotation == nil || quotation.Quotation == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "accepted quotation has no payload")
	}

	currency := enums.Currency(quotation.Quotation.Currency)
	if !currency.IsValid() {
		currency = enums.CurrencyUSD
	}

	now := g.now()
	invoice := &models.VendorInvoice{
		InvoiceNumber:      g.nextInvoiceNumber(now),
		OrderID:            order.ID,
		ProjectID:          order.ProjectID,
		VendorID:           order.VendorID,
		QuotationMessageID: quotation.ID,
		Amount:             quotation.Quotation.Amount,
		Currency:           currency,
		Items:              quotation.Quotation.Items,
		Status:             enums.InvoiceStatusPending,
		IssuedAt:           now,
	}
	if note := quotation.Quotation.Note; note != "" {
		invoice.Description = &note
	}

	created, err := g.repo.WithTx(tx).Create(ctx, invoice)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_vendor_invoices_order_live") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "invoice already exists for order")
		}
		if dbpkg.IsUniqueViolation(err, "ux_vendor_invoices_invoice_number") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "invoice number collision")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invoice")
	}
	return created, nil
}

func (g *Generator) nextInvoiceNumber(now time.Time) string {
	return fmt.Sprintf("INV-%s-%09d", now.UTC().Format("20060102"), now.UnixNano()%1_000_000_000)
}
