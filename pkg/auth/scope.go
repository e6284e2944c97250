package auth

import (
	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/pkg/enums"
)

// Scope is the authenticated caller as seen by services: who they are and
// how wide their row visibility is.
type Scope struct {
	UserID uuid.UUID
	Role   enums.Role
}

// IsStaff reports whether the caller sees every row rather than only their own.
func (s Scope) IsStaff() bool {
	return s.Role.IsStaff()
}

// IsAdmin reports whether the caller holds the ADMIN role.
func (s Scope) IsAdmin() bool {
	return s.Role == enums.RoleAdmin
}

// Owns reports whether ownerID is visible to the caller.
func (s Scope) Owns(ownerID uuid.UUID) bool {
	return s.IsStaff() || s.UserID == ownerID
}
