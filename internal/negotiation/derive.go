package negotiation

import (
	"sort"

	"github.com/mateovergara/sitesupply-backend/pkg/db/models"
	"github.com/mateovergara/sitesupply-backend/pkg/enums"
	"github.com/mateovergara/sitesupply-backend/pkg/types"
)

// Replay derives the order status by replaying the message ledger and the
// delivery update history in creation order. Every engine transition keeps
// the persisted status equal to this derivation; repository tests and the
// engine tests hold the two together.
func Replay(seed enums.OrderStatus, msgs []models.NegotiationMessage, updates types.DeliveryUpdates) enums.OrderStatus {
	events := mergeTimeline(msgs, updates)
	status := seed

	for _, ev := range events {
		if ev.message != nil {
			status = applyMessage(status, ev.message)
			continue
		}
		status = applyDeliveryUpdate(status, ev.update)
	}
	return status
}

type timelineEvent struct {
	at      int64
	seq     int
	message *models.NegotiationMessage
	update  *types.DeliveryUpdate
}

func mergeTimeline(msgs []models.NegotiationMessage, updates types.DeliveryUpdates) []timelineEvent {
	events := make([]timelineEvent, 0, len(msgs)+len(updates))
	for i := range msgs {
		events = append(events, timelineEvent{
			at:      msgs[i].CreatedAt.UnixNano(),
			seq:     i,
			message: &msgs[i],
		})
	}
	for i := range updates {
		events = append(events, timelineEvent{
			at:     updates[i].UpdatedAt.UnixNano(),
			seq:    len(msgs) + i,
			update: &updates[i],
		})
	}
	sort.SliceStable(events, func(a, b int) bool {
		if events[a].at != events[b].at {
			return events[a].at < events[b].at
		}
		return events[a].seq < events[b].seq
	})
	return events
}

func applyMessage(status enums.OrderStatus, msg *models.NegotiationMessage) enums.OrderStatus {
	switch msg.MessageType {
	case enums.MessageTypeQuotation:
		// first submission on a draft order sends it; later submissions
		// open the negotiation
		switch status {
		case enums.OrderStatusDraft:
			return enums.OrderStatusSent
		case enums.OrderStatusSent, enums.OrderStatusAcknowledged:
			return enums.OrderStatusInNegotiation
		}
		return status

	case enums.MessageTypeSystem:
		if msg.SystemEvent == nil {
			return status
		}
		switch *msg.SystemEvent {
		case enums.SystemEventQuotationAccepted:
			return enums.OrderStatusAccepted
		case enums.SystemEventQuotationRejected:
			return enums.OrderStatusInNegotiation
		case enums.SystemEventOrderCancelled:
			return enums.OrderStatusCancelled
		}
		return status

	case enums.MessageTypeDelivery:
		return enums.OrderStatusInProgress
	}
	return status
}

func applyDeliveryUpdate(status enums.OrderStatus, update *types.DeliveryUpdate) enums.OrderStatus {
	switch enums.DeliveryStatus(update.Status) {
	case enums.DeliveryStatusDelivered:
		return enums.OrderStatusCompleted
	case enums.DeliveryStatusPartiallyDelivered:
		return enums.OrderStatusPartiallyDelivered
	}
	return status
}
