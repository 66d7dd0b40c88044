package enums

import "fmt"

// ActorRole is the closed set of roles that can touch a purchase order.
type ActorRole string

const (
	ActorRoleOwner    ActorRole = "owner"
	ActorRoleVendor   ActorRole = "vendor"
	ActorRoleEmployee ActorRole = "employee"
	ActorRoleClient   ActorRole = "client"
	ActorRoleSystem   ActorRole = "system"
	ActorRoleAdmin    ActorRole = "admin"
)

var validActorRoles = []ActorRole{
	ActorRoleOwner,
	ActorRoleVendor,
	ActorRoleEmployee,
	ActorRoleClient,
	ActorRoleSystem,
	ActorRoleAdmin,
}

// String implements fmt.Stringer.
func (a ActorRole) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ActorRole.
func (a ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseActorRole converts raw input into an ActorRole.
func ParseActorRole(value string) (ActorRole, error) {
	for _, candidate := range validActorRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role %q", value)
}
