package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/pkg/db"
	"github.com/osteovet/clinic-backend/pkg/db/models"
	pkgerrors "github.com/osteovet/clinic-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const notFoundMessage = "service not found"

type dbClient interface {
	DB() *gorm.DB
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages the clinic's catalog of bookable services.
type Service struct {
	db  dbClient
	now func() time.Time
}

func NewService(client dbClient) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("database client required")
	}
	return &Service{db: client, now: func() time.Time { return time.Now().UTC() }}, nil
}

// ListActive is the public catalog.
func (s *Service) ListActive(ctx context.Context) ([]ServiceDTO, error) {
	rows, err := NewRepository(s.db.DB()).ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list services")
	}
	out := make([]ServiceDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, req CreateServiceRequest) (*ServiceDTO, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if req.DurationMinutes <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "duration_minutes must be positive")
	}
	if err := checkPrice(req.Price); err != nil {
		return nil, err
	}
	row := models.ClinicService{
		Name:            name,
		Description:     strings.TrimSpace(req.Description),
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		Active:          req.Active == nil || *req.Active,
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		r := NewRepository(tx)
		if err := ensureNameFree(ctx, r, name, nil); err != nil {
			return err
		}
		if err := r.Create(ctx, &row); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "a service with this name already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create service")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := FromModel(row)
	return &dto, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateServiceRequest) (*ServiceDTO, error) {
	fields := map[string]any{}
	var newName string
	if req.Name != nil {
		newName = strings.TrimSpace(*req.Name)
		if newName == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must not be empty")
		}
		fields["name"] = newName
	}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
	}
	if req.DurationMinutes != nil {
		if *req.DurationMinutes <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duration_minutes must be positive")
		}
		fields["duration_minutes"] = *req.DurationMinutes
	}
	if req.Price != nil {
		if err := checkPrice(*req.Price); err != nil {
			return nil, err
		}
		fields["price"] = *req.Price
	}
	if req.Active != nil {
		fields["active"] = *req.Active
	}

	var out ServiceDTO
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		r := NewRepository(tx)
		if _, err := r.FindByID(ctx, id); err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load service")
		}
		if newName != "" {
			if err := ensureNameFree(ctx, r, newName, &id); err != nil {
				return err
			}
		}
		if len(fields) > 0 {
			fields["updated_at"] = s.now()
			if err := r.UpdateFields(ctx, id, fields); err != nil {
				if db.IsUniqueViolation(err, "") {
					return pkgerrors.New(pkgerrors.CodeConflict, "a service with this name already exists")
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update service")
			}
		}
		updated, err := r.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload service")
		}
		out = FromModel(*updated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Duration returns how long a booking for serviceID lasts. It is used by the
// booking and appointment services through their own transaction handle.
func Duration(ctx context.Context, conn *gorm.DB, serviceID uuid.UUID) (time.Duration, error) {
	svc, err := NewRepository(conn).FindByID(ctx, serviceID)
	if err != nil {
		if db.IsNotFound(err) {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load service")
	}
	if !svc.Active {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "service is not bookable")
	}
	return time.Duration(svc.DurationMinutes) * time.Minute, nil
}

func ensureNameFree(ctx context.Context, r *Repository, name string, except *uuid.UUID) error {
	taken, err := r.NameTaken(ctx, name, except)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check service name")
	}
	if taken {
		return pkgerrors.New(pkgerrors.CodeConflict, "a service with this name already exists")
	}
	return nil
}

func checkPrice(p decimal.Decimal) error {
	if p.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be zero or more")
	}
	return nil
}
