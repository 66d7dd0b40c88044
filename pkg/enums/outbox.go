package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregatePurchaseOrder      OutboxAggregateType = "purchase_order"
	AggregateNegotiationMessage OutboxAggregateType = "negotiation_message"
	AggregateVendorInvoice      OutboxAggregateType = "vendor_invoice"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregatePurchaseOrder,
	AggregateNegotiationMessage,
	AggregateVendorInvoice,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventOrderCreated             OutboxEventType = "order_created"
	EventOrderUpdated             OutboxEventType = "order_updated"
	EventMessagePosted            OutboxEventType = "message_posted"
	EventQuotationSubmitted       OutboxEventType = "quotation_submitted"
	EventQuotationAccepted        OutboxEventType = "quotation_accepted"
	EventQuotationRejected        OutboxEventType = "quotation_rejected"
	EventDeliveryDetailsSubmitted OutboxEventType = "delivery_details_submitted"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderCreated,
	EventOrderUpdated,
	EventMessagePosted,
	EventQuotationSubmitted,
	EventQuotationAccepted,
	EventQuotationRejected,
	EventDeliveryDetailsSubmitted,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
