package enums

import "fmt"

// SystemEvent names the automated ledger entries the platform appends on
// behalf of the system actor.
type SystemEvent string

const (
	SystemEventQuotationAccepted       SystemEvent = "quotation_accepted"
	SystemEventQuotationRejected       SystemEvent = "quotation_rejected"
	SystemEventDeliveryDetailsRequired SystemEvent = "delivery_details_required"
	SystemEventOrderCancelled          SystemEvent = "order_cancelled"
)

var validSystemEvents = []SystemEvent{
	SystemEventQuotationAccepted,
	SystemEventQuotationRejected,
	SystemEventDeliveryDetailsRequired,
	SystemEventOrderCancelled,
}

// String implements fmt.Stringer.
func (s SystemEvent) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SystemEvent.
func (s SystemEvent) IsValid() bool {
	for _, candidate := range validSystemEvents {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSystemEvent converts raw input into a SystemEvent.
func ParseSystemEvent(value string) (SystemEvent, error) {
	for _, candidate := range validSystemEvents {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid system event %q", value)
}
