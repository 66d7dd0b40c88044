package enums

import "fmt"

// QuotationStatus tracks the lifecycle of a quotation message. Only a
// pending quotation can be accepted or rejected.
type QuotationStatus string

const (
	QuotationStatusPending    QuotationStatus = "pending"
	QuotationStatusNegotiated QuotationStatus = "negotiated"
	QuotationStatusAccepted   QuotationStatus = "accepted"
	QuotationStatusRejected   QuotationStatus = "rejected"
	QuotationStatusExpired    QuotationStatus = "expired"
)

var validQuotationStatuses = []QuotationStatus{
	QuotationStatusPending,
	QuotationStatusNegotiated,
	QuotationStatusAccepted,
	QuotationStatusRejected,
	QuotationStatusExpired,
}

// String implements fmt.Stringer.
func (q QuotationStatus) String() string {
	return string(q)
}

// IsValid reports whether the value is a known QuotationStatus.
func (q QuotationStatus) IsValid() bool {
	for _, candidate := range validQuotationStatuses {
		if candidate == q {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the quotation can no longer change state.
func (q QuotationStatus) IsTerminal() bool {
	switch q {
	case QuotationStatusAccepted, QuotationStatusRejected, QuotationStatusExpired:
		return true
	}
	return false
}

// ParseQuotationStatus converts raw input into a QuotationStatus.
func ParseQuotationStatus(value string) (QuotationStatus, error) {
	for _, candidate := range validQuotationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quotation status %q", value)
}
