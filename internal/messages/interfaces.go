package messages

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateovergara/sitesupply-backend/pkg/db/models"
	"github.com/mateovergara/sitesupply-backend/pkg/enums"
)

// Repository defines the append-only message ledger operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	// Append persists one ledger entry. Payload fields are immutable after
	// this call except quotation_status and read receipts.
	Append(ctx context.Context, message *models.NegotiationMessage) (*models.NegotiationMessage, error)

	// ListByOrder returns the full ledger ascending by creation time.
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.NegotiationMessage, error)

	FindMessage(ctx context.Context, id uuid.UUID) (*models.NegotiationMessage, error)

	// UpdateQuotationStatus flips quotation_status from `from` to `to` and
	// reports whether this call performed the flip. A false return means the
	// status was no longer `from` when the update ran.
	UpdateQuotationStatus(ctx context.Context, messageID uuid.UUID, from, to enums.QuotationStatus) (bool, error)

	// MarkRead inserts a read receipt for every message on the order that
	// does not already carry one for the user. Idempotent.
	MarkRead(ctx context.Context, orderID, userID uuid.UUID) error

	// CountUnread counts messages without a receipt for the user across the
	// given orders, excluding messages the user sent.
	CountUnread(ctx context.Context, orderIDs []uuid.UUID, userID uuid.UUID) (int64, error)
}
