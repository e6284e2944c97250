package animals

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/pkg/db/models"
	"github.com/osteovet/clinic-backend/pkg/enums"
	pkgerrors "github.com/osteovet/clinic-backend/pkg/errors"
	"github.com/osteovet/clinic-backend/pkg/types"
	"github.com/shopspring/decimal"
)

// AnimalDTO is the API shape of an animal.
type AnimalDTO struct {
	ID        uuid.UUID          `json:"id"`
	OwnerID   uuid.UUID          `json:"owner_id"`
	Name      string             `json:"name"`
	Species   string             `json:"species"`
	Breed     string             `json:"breed"`
	Age       int                `json:"age"`
	WeightKg  *decimal.Decimal   `json:"weight_kg,omitempty"`
	Gender    enums.AnimalGender `json:"gender"`
	Notes     *string            `json:"notes,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// CreateAnimalRequest registers an animal. Staff must name the owning client.
type CreateAnimalRequest struct {
	OwnerID  *uuid.UUID       `json:"owner_id,omitempty"`
	Name     string           `json:"name" validate:"required,max=120"`
	Species  string           `json:"species" validate:"omitempty,max=60"`
	Breed    string           `json:"breed" validate:"required,max=120"`
	Age      *int             `json:"age" validate:"required,min=0,max=60"`
	WeightKg *decimal.Decimal `json:"weight_kg,omitempty"`
	Gender   string           `json:"gender" validate:"required"`
	Notes    *string          `json:"notes,omitempty" validate:"omitempty,max=4000"`
}

// UpdateAnimalRequest is a partial update.
type UpdateAnimalRequest struct {
	Name     *string                         `json:"name" validate:"omitempty,min=1,max=120"`
	Species  *string                         `json:"species" validate:"omitempty,max=60"`
	Breed    *string                         `json:"breed" validate:"omitempty,min=1,max=120"`
	Age      *int                            `json:"age" validate:"omitempty,min=0,max=60"`
	WeightKg types.Nullable[decimal.Decimal] `json:"weight_kg"`
	Gender   *string                         `json:"gender"`
	Notes    types.NullableString            `json:"notes"`
}

// ListFilter narrows the animal listing for staff.
type ListFilter struct {
	OwnerID *uuid.UUID
}

func FromModel(a *models.Animal) *AnimalDTO {
	if a == nil {
		return nil
	}
	return &AnimalDTO{
		ID:        a.ID,
		OwnerID:   a.OwnerID,
		Name:      a.Name,
		Species:   a.Species,
		Breed:     a.Breed,
		Age:       a.Age,
		WeightKg:  a.WeightKg,
		Gender:    a.Gender,
		Notes:     a.Notes,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// ToModel validates the request and builds the row for ownerID.
func (r CreateAnimalRequest) ToModel(ownerID uuid.UUID) (*models.Animal, error) {
	name := strings.TrimSpace(r.Name)
	breed := strings.TrimSpace(r.Breed)
	if name == "" || breed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and breed are required")
	}
	if r.Age == nil || *r.Age < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "age must be zero or more")
	}
	gender, err := enums.ParseAnimalGender(r.Gender)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gender must be male or female")
	}
	if err := checkWeight(r.WeightKg); err != nil {
		return nil, err
	}
	return &models.Animal{
		OwnerID:  ownerID,
		Name:     name,
		Species:  strings.TrimSpace(r.Species),
		Breed:    breed,
		Age:      *r.Age,
		WeightKg: r.WeightKg,
		Gender:   gender,
		Notes:    r.Notes,
	}, nil
}

func checkWeight(w *decimal.Decimal) error {
	if w != nil && w.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "weight_kg must be zero or more")
	}
	return nil
}
