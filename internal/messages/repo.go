package messages

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mateovergara/sitesupply-backend/pkg/db/models"
	"github.com/mateovergara/sitesupply-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a message ledger repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Append(ctx context.Context, message *models.NegotiationMessage) (*models.NegotiationMessage, error) {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

func (r *repository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.NegotiationMessage, error) {
	var rows []models.NegotiationMessage
	err := r.db.WithContext(ctx).
		Preload("Reads").
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindMessage(ctx context.Context, id uuid.UUID) (*models.NegotiationMessage, error) {
	var message models.NegotiationMessage
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&message).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *repository) UpdateQuotationStatus(ctx context.Context, messageID uuid.UUID, from, to enums.QuotationStatus) (bool, error) {
	// conditional update resolves concurrent accept/reject: only one caller
	// observes RowsAffected == 1
	result := r.db.WithContext(ctx).
		Model(&models.NegotiationMessage{}).
		Where("id = ? AND quotation_status = ?", messageID, from).
		Update("quotation_status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) MarkRead(ctx context.Context, orderID, userID uuid.UUID) error {
	var messageIDs []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.NegotiationMessage{}).
		Where("order_id = ?", orderID).
		Where("id NOT IN (?)", r.db.WithContext(ctx).
			Model(&models.MessageRead{}).
			Select("message_id").
			Where("user_id = ?", userID)).
		Pluck("id", &messageIDs).Error
	if err != nil {
		return err
	}
	if len(messageIDs) == 0 {
		return nil
	}

	now := time.Now()
	receipts := make([]models.MessageRead, 0, len(messageIDs))
	for _, id := range messageIDs {
		receipts = append(receipts, models.MessageRead{
			MessageID: id,
			UserID:    userID,
			ReadAt:    now,
		})
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&receipts).Error
}

func (r *repository) CountUnread(ctx context.Context, orderIDs []uuid.UUID, userID uuid.UUID) (int64, error) {
	if len(orderIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.NegotiationMessage{}).
		Where("order_id IN (?)", orderIDs).
		Where("sender_id <> ?", userID).
		Where("id NOT IN (?)", r.db.WithContext(ctx).
			Model(&models.MessageRead{}).
			Select("message_id").
			Where("user_id = ?", userID)).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
