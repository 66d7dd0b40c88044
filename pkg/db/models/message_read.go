package models

import (
	"time"

	"github.com/google/uuid"
)

// MessageRead records that a user has seen a negotiation message. Rows are
// insert-only; the unique pair makes markRead idempotent.
type MessageRead struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MessageID uuid.UUID `gorm:"column:message_id;type:uuid;not null;uniqueIndex:idx_message_reads_message_user"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_message_reads_message_user"`
	ReadAt    time.Time `gorm:"column:read_at;not null;autoCreateTime"`
}
