package enums

import (
	"fmt"
	"strings"
)

// Role is the account-level role that drives route allow-lists.
type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RolePractitioner Role = "PRACTITIONER"
	RoleClient       Role = "CLIENT"
)

var validRoles = []Role{
	RoleAdmin,
	RolePractitioner,
	RoleClient,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsStaff reports whether the role sees every row instead of only owned ones.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RolePractitioner
}

// RequiresValidation reports whether accounts with this role sit behind the validation gate.
func (r Role) RequiresValidation() bool {
	return r == RoleClient
}

// ParseRole converts raw input into a Role; matching ignores case.
func ParseRole(value string) (Role, error) {
	normalized := Role(strings.ToUpper(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid role %q", value)
}
