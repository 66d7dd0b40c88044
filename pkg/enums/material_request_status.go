package enums

import "fmt"

// MaterialRequestStatus tracks a material request from submission to the
// point a purchase order is raised for it.
type MaterialRequestStatus string

const (
	MaterialRequestStatusPending  MaterialRequestStatus = "pending"
	MaterialRequestStatusApproved MaterialRequestStatus = "approved"
	MaterialRequestStatusRejected MaterialRequestStatus = "rejected"
	MaterialRequestStatusOrdered  MaterialRequestStatus = "ordered"
)

var validMaterialRequestStatuses = []MaterialRequestStatus{
	MaterialRequestStatusPending,
	MaterialRequestStatusApproved,
	MaterialRequestStatusRejected,
	MaterialRequestStatusOrdered,
}

// String implements fmt.Stringer.
func (m MaterialRequestStatus) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MaterialRequestStatus.
func (m MaterialRequestStatus) IsValid() bool {
	for _, candidate := range validMaterialRequestStatuses {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMaterialRequestStatus converts raw input into a MaterialRequestStatus.
func ParseMaterialRequestStatus(value string) (MaterialRequestStatus, error) {
	for _, candidate := range validMaterialRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid material request status %q", value)
}
