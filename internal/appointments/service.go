package appointments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/internal/animals"
	"github.com/osteovet/clinic-backend/internal/auditlog"
	"github.com/osteovet/clinic-backend/internal/catalog"
	pkgauth "github.com/osteovet/clinic-backend/pkg/auth"
	"github.com/osteovet/clinic-backend/pkg/db"
	"github.com/osteovet/clinic-backend/pkg/db/models"
	"github.com/osteovet/clinic-backend/pkg/enums"
	pkgerrors "github.com/osteovet/clinic-backend/pkg/errors"
	"gorm.io/gorm"
)

const (
	notFoundMessage = "appointment not found"
	// DefaultDuration applies when neither end_time nor a service gives one.
	DefaultDuration = 60 * time.Minute
)

type dbClient interface {
	DB() *gorm.DB
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

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

// Slot describes a new appointment for an already resolved animal.
type Slot struct {
	ServiceID *uuid.UUID
	StartTime time.Time
	EndTime   *time.Time
	Notes     *string
}

// Schedule inserts a SCHEDULED appointment for animal through conn. The end
// time defaults to the service duration, or DefaultDuration without a service.
func Schedule(ctx context.Context, conn *gorm.DB, animal *models.Animal, slot Slot) (*models.Appointment, error) {
	if slot.StartTime.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start_time is required")
	}
	start := slot.StartTime.UTC()
	var end time.Time
	switch {
	case slot.EndTime != nil:
		end = slot.EndTime.UTC()
		if slot.ServiceID != nil {
			if _, err := catalog.Duration(ctx, conn, *slot.ServiceID); err != nil {
				return nil, err
			}
		}
	case slot.ServiceID != nil:
		d, err := catalog.Duration(ctx, conn, *slot.ServiceID)
		if err != nil {
			return nil, err
		}
		end = start.Add(d)
	default:
		end = start.Add(DefaultDuration)
	}
	if !end.After(start) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end_time must be after start_time")
	}

	appt := &models.Appointment{
		ClientID:  animal.OwnerID,
		AnimalID:  animal.ID,
		ServiceID: slot.ServiceID,
		StartTime: start,
		EndTime:   end,
		Status:    enums.AppointmentStatusScheduled,
		Notes:     trimmedOrNil(slot.Notes),
	}
	if err := NewRepository(conn).Create(ctx, appt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create appointment")
	}
	return appt, nil
}

// FindVisible loads an appointment through conn, hiding other clients' rows.
func FindVisible(ctx context.Context, conn *gorm.DB, scope pkgauth.Scope, id uuid.UUID) (*models.Appointment, error) {
	appt, err := NewRepository(conn).FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load appointment")
	}
	if !scope.Owns(appt.ClientID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
	}
	return appt, nil
}

func (s *Service) List(ctx context.Context, scope pkgauth.Scope, f ListFilter) ([]AppointmentDTO, error) {
	if f.From != nil && f.To != nil && !f.To.After(*f.From) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "to must be after from")
	}
	var clientID *uuid.UUID
	if !scope.IsStaff() {
		clientID = &scope.UserID
	}
	rows, err := NewRepository(s.db.DB()).List(ctx, clientID, f)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list appointments")
	}
	out := make([]AppointmentDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, scope pkgauth.Scope, id uuid.UUID) (*AppointmentDTO, error) {
	appt, err := FindVisible(ctx, s.db.DB(), scope, id)
	if err != nil {
		return nil, err
	}
	return FromModel(appt), nil
}

func (s *Service) Create(ctx context.Context, scope pkgauth.Scope, req CreateAppointmentRequest) (*AppointmentDTO, error) {
	var out *AppointmentDTO
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		animal, err := animals.FindVisible(ctx, tx, scope, req.AnimalID)
		if err != nil {
			return err
		}
		appt, err := Schedule(ctx, tx, animal, Slot{
			ServiceID: req.ServiceID,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
			Notes:     req.Notes,
		})
		if err != nil {
			return err
		}
		if err := appendAudit(ctx, tx, scope, enums.AuditActionAppointmentCreated, appt, map[string]any{
			"animal_id":  appt.AnimalID.String(),
			"start_time": appt.StartTime.Format(time.RFC3339),
		}); err != nil {
			return err
		}
		out = FromModel(appt)
		return nil
	})
	return out, err
}

// Update reschedules or annotates an appointment. Staff may edit any live
// appointment; clients only their own SCHEDULED ones.
func (s *Service) Update(ctx context.Context, scope pkgauth.Scope, id uuid.UUID, req UpdateAppointmentRequest) (*AppointmentDTO, error) {
	editable := []enums.AppointmentStatus{enums.AppointmentStatusScheduled}
	if scope.IsStaff() {
		editable = append(editable, enums.AppointmentStatusConfirmed)
	}

	var out *AppointmentDTO
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		appt, err := FindVisible(ctx, tx, scope, id)
		if err != nil {
			return err
		}
		if !statusIn(appt.Status, editable) {
			return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("appointment cannot be edited while %s", appt.Status))
		}

		fields := map[string]any{}
		start, end := appt.StartTime, appt.EndTime
		if req.StartTime != nil {
			start = req.StartTime.UTC()
			fields["start_time"] = start
		}
		if req.EndTime != nil {
			end = req.EndTime.UTC()
			fields["end_time"] = end
		} else if req.StartTime != nil {
			end = start.Add(appt.EndTime.Sub(appt.StartTime))
			fields["end_time"] = end
		}
		if !end.After(start) {
			return pkgerrors.New(pkgerrors.CodeValidation, "end_time must be after start_time")
		}
		if req.Notes.Set {
			fields["notes"] = trimmedOrNil(req.Notes.Value)
		}

		r := NewRepository(tx)
		if len(fields) > 0 {
			fields["updated_at"] = s.now()
			ok, err := r.UpdateIfStatus(ctx, id, editable, fields)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update appointment")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeConflict, "appointment changed status concurrently")
			}
		}
		updated, err := r.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload appointment")
		}
		out = FromModel(updated)
		return nil
	})
	return out, err
}

type transition struct {
	target    enums.AppointmentStatus
	from      []enums.AppointmentStatus
	action    enums.AuditAction
	staffOnly bool
	kind      *enums.CancellationKind
	reason    *string
}

// Confirm accepts a SCHEDULED request.
func (s *Service) Confirm(ctx context.Context, scope pkgauth.Scope, id uuid.UUID) (*AppointmentDTO, error) {
	return s.transition(ctx, scope, id, transition{
		target:    enums.AppointmentStatusConfirmed,
		from:      enums.SourcesFor(enums.AppointmentStatusConfirmed),
		action:    enums.AuditActionAppointmentConfirmed,
		staffOnly: true,
	})
}

// Refuse declines a SCHEDULED request. The row lands in CANCELLED with kind REFUSED.
func (s *Service) Refuse(ctx context.Context, scope pkgauth.Scope, id uuid.UUID, req ReasonRequest) (*AppointmentDTO, error) {
	kind := enums.CancellationKindRefused
	return s.transition(ctx, scope, id, transition{
		target:    enums.AppointmentStatusCancelled,
		from:      []enums.AppointmentStatus{enums.AppointmentStatusScheduled},
		action:    enums.AuditActionAppointmentRefused,
		staffOnly: true,
		kind:      &kind,
		reason:    req.Reason,
	})
}

// Cancel ends any live appointment. The kind records whether the client or staff did it.
func (s *Service) Cancel(ctx context.Context, scope pkgauth.Scope, id uuid.UUID, req ReasonRequest) (*AppointmentDTO, error) {
	kind := enums.CancellationKindClient
	if scope.IsStaff() {
		kind = enums.CancellationKindStaff
	}
	return s.transition(ctx, scope, id, transition{
		target: enums.AppointmentStatusCancelled,
		from:   enums.SourcesFor(enums.AppointmentStatusCancelled),
		action: enums.AuditActionAppointmentCancelled,
		kind:   &kind,
		reason: req.Reason,
	})
}

// Complete closes a CONFIRMED appointment.
func (s *Service) Complete(ctx context.Context, scope pkgauth.Scope, id uuid.UUID) (*AppointmentDTO, error) {
	return s.transition(ctx, scope, id, transition{
		target:    enums.AppointmentStatusCompleted,
		from:      enums.SourcesFor(enums.AppointmentStatusCompleted),
		action:    enums.AuditActionAppointmentCompleted,
		staffOnly: true,
	})
}

func (s *Service) transition(ctx context.Context, scope pkgauth.Scope, id uuid.UUID, t transition) (*AppointmentDTO, error) {
	if t.staffOnly && !scope.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}

	var out *AppointmentDTO
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		appt, err := FindVisible(ctx, tx, scope, id)
		if err != nil {
			return err
		}
		now := s.now()
		fields := map[string]any{
			"status":     t.target,
			"updated_at": now,
		}
		if scope.IsStaff() {
			fields["decided_by"] = scope.UserID
			fields["decided_at"] = now
		}
		if t.kind != nil {
			fields["cancellation_kind"] = *t.kind
			fields["cancellation_reason"] = trimmedOrNil(t.reason)
		}

		r := NewRepository(tx)
		ok, err := r.UpdateIfStatus(ctx, id, t.from, fields)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update appointment status")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("cannot move appointment from %s to %s", appt.Status, t.target)).
				WithDetails(map[string]any{"status": appt.Status})
		}

		meta := map[string]any{"from": string(appt.Status), "to": string(t.target)}
		if t.kind != nil {
			meta["cancellation_kind"] = string(*t.kind)
		}
		if err := appendAudit(ctx, tx, scope, t.action, appt, meta); err != nil {
			return err
		}
		updated, err := r.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload appointment")
		}
		out = FromModel(updated)
		return nil
	})
	return out, err
}

// Delete removes an appointment together with its reminders. ADMIN only.
func (s *Service) Delete(ctx context.Context, scope pkgauth.Scope, id uuid.UUID) error {
	if !scope.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		appt, err := FindVisible(ctx, tx, scope, id)
		if err != nil {
			return err
		}
		reminders, err := NewRepository(tx).Delete(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete appointment")
		}
		return appendAudit(ctx, tx, scope, enums.AuditActionAppointmentDeleted, appt, map[string]any{
			"status":            string(appt.Status),
			"reminders_deleted": reminders,
		})
	})
}

func appendAudit(ctx context.Context, tx *gorm.DB, scope pkgauth.Scope, action enums.AuditAction, appt *models.Appointment, meta map[string]any) error {
	id := appt.ID
	if _, err := auditlog.NewRepository(tx).Append(ctx, auditlog.Entry{
		UserID:   &scope.UserID,
		Action:   action,
		Entity:   "appointment",
		EntityID: &id,
		Meta:     meta,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append audit log")
	}
	return nil
}

func statusIn(status enums.AppointmentStatus, set []enums.AppointmentStatus) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
