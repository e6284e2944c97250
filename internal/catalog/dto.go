package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// ServiceDTO is the API shape of a bookable clinic service.
type ServiceDTO struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	DurationMinutes int             `json:"duration_minutes"`
	Price           decimal.Decimal `json:"price"`
	Active          bool            `json:"active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type CreateServiceRequest struct {
	Name            string          `json:"name" validate:"required,max=120"`
	Description     string          `json:"description" validate:"max=4000"`
	DurationMinutes int             `json:"duration_minutes" validate:"required,gt=0,max=1440"`
	Price           decimal.Decimal `json:"price"`
	Active          *bool           `json:"active,omitempty"`
}

type UpdateServiceRequest struct {
	Name            *string          `json:"name" validate:"omitempty,min=1,max=120"`
	Description     *string          `json:"description" validate:"omitempty,max=4000"`
	DurationMinutes *int             `json:"duration_minutes" validate:"omitempty,gt=0,max=1440"`
	Price           *decimal.Decimal `json:"price"`
	Active          *bool            `json:"active"`
}

func FromModel(m models.ClinicService) ServiceDTO {
	return ServiceDTO{
		ID:              m.ID,
		Name:            m.Name,
		Description:     m.Description,
		DurationMinutes: m.DurationMinutes,
		Price:           m.Price,
		Active:          m.Active,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
