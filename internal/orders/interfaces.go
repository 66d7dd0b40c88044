package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateovergara/sitesupply-backend/pkg/db/models"
	"github.com/mateovergara/sitesupply-backend/pkg/enums"
	"github.com/mateovergara/sitesupply-backend/pkg/pagination"
)

// Repository defines persistence operations for purchase orders and the
// material requests they are raised from.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOrder(ctx context.Context, order *models.PurchaseOrder) (*models.PurchaseOrder, error)
	FindOrder(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error

	ListOrders(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error)
	ListOrderIDs(ctx context.Context, filters OrderFilters) ([]uuid.UUID, error)

	FindMaterialRequest(ctx context.Context, id uuid.UUID) (*models.MaterialRequest, error)
	UpdateMaterialRequestStatus(ctx context.Context, id uuid.UUID, status enums.MaterialRequestStatus) error
}
