package invoices

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateovergara/sitesupply-backend/pkg/db/models"
)

// Repository defines persistence for vendor invoices.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, invoice *models.VendorInvoice) (*models.VendorInvoice, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) (*models.VendorInvoice, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.VendorInvoice, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an invoices repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, invoice *models.VendorInvoice) (*models.VendorInvoice, error) {
	if err := r.db.WithContext(ctx).Create(invoice).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

func (r *repository) FindByOrder(ctx context.Context, orderID uuid.UUID) (*models.VendorInvoice, error) {
	var invoice models.VendorInvoice
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.VendorInvoice, error) {
	var invoice models.VendorInvoice
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}
