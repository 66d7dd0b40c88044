package enums

import "fmt"

// OrderStatus tracks the lifecycle of a purchase order through negotiation
// and fulfillment.
type OrderStatus string

const (
	OrderStatusDraft              OrderStatus = "draft"
	OrderStatusSent               OrderStatus = "sent"
	OrderStatusAcknowledged       OrderStatus = "acknowledged"
	OrderStatusInNegotiation      OrderStatus = "in_negotiation"
	OrderStatusAccepted           OrderStatus = "accepted"
	OrderStatusInProgress         OrderStatus = "in_progress"
	OrderStatusPartiallyDelivered OrderStatus = "partially_delivered"
	OrderStatusCompleted          OrderStatus = "completed"
	OrderStatusCancelled          OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusDraft,
	OrderStatusSent,
	OrderStatusAcknowledged,
	OrderStatusInNegotiation,
	OrderStatusAccepted,
	OrderStatusInProgress,
	OrderStatusPartiallyDelivered,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the order can no longer transition.
func (o OrderStatus) IsTerminal() bool {
	return o == OrderStatusCompleted || o == OrderStatusCancelled
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
