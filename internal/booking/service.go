package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/osteovet/clinic-backend/internal/animals"
	"github.com/osteovet/clinic-backend/internal/appointments"
	"github.com/osteovet/clinic-backend/internal/auditlog"
	"github.com/osteovet/clinic-backend/internal/reminders"
	pkgauth "github.com/osteovet/clinic-backend/pkg/auth"
	"github.com/osteovet/clinic-backend/pkg/db/models"
	"github.com/osteovet/clinic-backend/pkg/enums"
	pkgerrors "github.com/osteovet/clinic-backend/pkg/errors"
	"gorm.io/gorm"
)

type dbClient interface {
	DB() *gorm.DB
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ServiceParams struct {
	DB             dbClient
	BookingOffsets []time.Duration
	Now            func() time.Time
}

// Service runs the public booking flow as a single transaction.
type Service struct {
	db      dbClient
	offsets []time.Duration
	now     func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{db: params.DB, offsets: params.BookingOffsets, now: now}, nil
}

// Book resolves or creates the animal, schedules the appointment, optionally
// fans out reminders and records the audit entry. Nothing is kept on failure.
func (s *Service) Book(ctx context.Context, scope pkgauth.Scope, req BookingRequest) (*BookingDTO, error) {
	if (req.AnimalID == nil) == (req.Animal == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exactly one of animal_id or animal is required")
	}
	if req.ClientID != nil && !scope.IsStaff() && *req.ClientID != scope.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "clients can only book for themselves")
	}

	var out BookingDTO
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		animal, created, err := s.resolveAnimal(ctx, tx, scope, req)
		if err != nil {
			return err
		}
		appt, err := appointments.Schedule(ctx, tx, animal, appointments.Slot{
			ServiceID: req.ServiceID,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
			Notes:     req.Notes,
		})
		if err != nil {
			return err
		}

		var fanned []models.Reminder
		if req.WithReminders {
			if fanned, err = reminders.FanOut(ctx, tx, appt, scope.UserID, s.offsets, s.now()); err != nil {
				return err
			}
		}

		apptID := appt.ID
		if _, err := auditlog.NewRepository(tx).Append(ctx, auditlog.Entry{
			UserID:   &scope.UserID,
			Action:   enums.AuditActionBookingCreated,
			Entity:   "appointment",
			EntityID: &apptID,
			Meta: map[string]any{
				"animal_id":      animal.ID.String(),
				"animal_created": created,
				"reminders":      len(fanned),
			},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append audit log")
		}

		out = BookingDTO{
			Appointment: appointments.FromModel(appt),
			Animal:      animals.FromModel(animal),
			AnimalIsNew: created,
			Reminders:   reminders.FromModels(fanned),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) resolveAnimal(ctx context.Context, tx *gorm.DB, scope pkgauth.Scope, req BookingRequest) (*models.Animal, bool, error) {
	if req.AnimalID != nil {
		animal, err := animals.FindVisible(ctx, tx, scope, *req.AnimalID)
		if err != nil {
			return nil, false, err
		}
		if req.ClientID != nil && *req.ClientID != animal.OwnerID {
			return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "animal does not belong to client_id")
		}
		return animal, false, nil
	}

	owner := req.ClientID
	if owner == nil {
		owner = req.Animal.OwnerID
	}
	ownerID, err := animals.ResolveOwner(ctx, tx, scope, owner)
	if err != nil {
		return nil, false, err
	}
	animal, err := req.Animal.ToModel(ownerID)
	if err != nil {
		return nil, false, err
	}
	if err := animals.NewRepository(tx).Create(ctx, animal); err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create animal")
	}
	return animal, true, nil
}
