package enums

import "fmt"

// MessageType discriminates the payload variant carried by a negotiation
// message.
type MessageType string

const (
	MessageTypeText      MessageType = "text"
	MessageTypeQuotation MessageType = "quotation"
	MessageTypeInvoice   MessageType = "invoice"
	MessageTypeSystem    MessageType = "system"
	MessageTypeDelivery  MessageType = "delivery"
)

var validMessageTypes = []MessageType{
	MessageTypeText,
	MessageTypeQuotation,
	MessageTypeInvoice,
	MessageTypeSystem,
	MessageTypeDelivery,
}

// String implements fmt.Stringer.
func (m MessageType) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MessageType.
func (m MessageType) IsValid() bool {
	for _, candidate := range validMessageTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMessageType converts raw input into a MessageType.
func ParseMessageType(value string) (MessageType, error) {
	for _, candidate := range validMessageTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid message type %q", value)
}
