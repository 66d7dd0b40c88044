package enums

import "fmt"

// DeliveryStatus tracks the post-acceptance shipment sub-record of an order.
type DeliveryStatus string

const (
	DeliveryStatusNotStarted         DeliveryStatus = "not_started"
	DeliveryStatusProcessing         DeliveryStatus = "processing"
	DeliveryStatusPreparing          DeliveryStatus = "preparing"
	DeliveryStatusPacked             DeliveryStatus = "packed"
	DeliveryStatusDispatched         DeliveryStatus = "dispatched"
	DeliveryStatusInTransit          DeliveryStatus = "in_transit"
	DeliveryStatusOutForDelivery     DeliveryStatus = "out_for_delivery"
	DeliveryStatusDelivered          DeliveryStatus = "delivered"
	DeliveryStatusPartiallyDelivered DeliveryStatus = "partially_delivered"
)

var validDeliveryStatuses = []DeliveryStatus{
	DeliveryStatusNotStarted,
	DeliveryStatusProcessing,
	DeliveryStatusPreparing,
	DeliveryStatusPacked,
	DeliveryStatusDispatched,
	DeliveryStatusInTransit,
	DeliveryStatusOutForDelivery,
	DeliveryStatusDelivered,
	DeliveryStatusPartiallyDelivered,
}

// String implements fmt.Stringer.
func (d DeliveryStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryStatus.
func (d DeliveryStatus) IsValid() bool {
	for _, candidate := range validDeliveryStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeliveryStatus converts raw input into a DeliveryStatus.
func ParseDeliveryStatus(value string) (DeliveryStatus, error) {
	for _, candidate := range validDeliveryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery status %q", value)
}
