package shared

import (
	"fmt"
	"strings"
)

// Role identifies which audience a caller belongs to.
type Role string

const (
	RoleCentral Role = "central" // Dispatch desk, full visibility
	RoleClient  Role = "client"  // Merchant, sees its own orders
	RoleMotoboy Role = "motoboy" // Courier, sees its own deliveries
)

// IsValid checks if the role is known.
func (r Role) IsValid() bool {
	switch r {
	case RoleCentral, RoleClient, RoleMotoboy:
		return true
	default:
		return false
	}
}

// Scoped reports whether the role only sees records it owns.
func (r Role) Scoped() bool {
	return r == RoleClient || r == RoleMotoboy
}

// ParseRole normalises raw input into a Role.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !role.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, raw)
	}
	return role, nil
}

// Caller describes the authenticated actor behind a request.
type Caller struct {
	Role Role
	ID   string
}

// Validate fails loudly when a scoped role carries no id.
func (c Caller) Validate() error {
	if !c.Role.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, c.Role)
	}
	if c.Role.Scoped() && strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: role %s", ErrMissingCallerID, c.Role)
	}
	return nil
}

// Owns reports whether the caller is the given merchant or courier id.
func (c Caller) Owns(id string) bool {
	return c.ID != "" && c.ID == id
}
