package users

import (
	"time"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/pkg/db/models"
	"github.com/osteovet/clinic-backend/pkg/enums"
	"github.com/osteovet/clinic-backend/pkg/types"
)

// UserDTO is the transport shape that omits credentials.
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Phone       *string    `json:"phone,omitempty"`
	Role        enums.Role `json:"role"`
	Validated   bool       `json:"validated"`
	ValidatedAt *time.Time `json:"validated_at,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateUserDTO holds what the repository needs to insert a user.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        *string
	Role         enums.Role
	Validated    bool
}

// UpdateUserRequest is a partial update; nil fields are left alone.
type UpdateUserRequest struct {
	FirstName *string              `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName  *string              `json:"last_name" validate:"omitempty,min=1,max=100"`
	Email     *string              `json:"email" validate:"omitempty,email,max=320"`
	Phone     types.NullableString `json:"phone"`
	Role      *enums.Role          `json:"role" validate:"omitempty,oneof=ADMIN PRACTITIONER CLIENT"`
}

// BulkValidateRequest lists client ids to validate in one go.
type BulkValidateRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1,max=100"`
}

// SkippedID explains why an id was left out of a bulk validation.
type SkippedID struct {
	ID     uuid.UUID `json:"id"`
	Reason string    `json:"reason"`
}

// BulkValidateResult reports which ids were validated and which were skipped.
type BulkValidateResult struct {
	Validated []uuid.UUID `json:"validated"`
	Skipped   []SkippedID `json:"skipped"`
}

// ClientFilter narrows the client listing.
type ClientFilter struct {
	Validated *bool
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Phone:       u.Phone,
		Role:        u.Role,
		Validated:   u.Validated,
		ValidatedAt: u.ValidatedAt,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func FromModels(rows []models.User) []UserDTO {
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Phone:        c.Phone,
		Role:         c.Role,
		Validated:    c.Validated,
	}
}
