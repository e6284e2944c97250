package reminders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	pkgauth "github.com/osteovet/clinic-backend/pkg/auth"
	"github.com/osteovet/clinic-backend/pkg/db"
	"github.com/osteovet/clinic-backend/pkg/db/models"
	"github.com/osteovet/clinic-backend/pkg/enums"
	pkgerrors "github.com/osteovet/clinic-backend/pkg/errors"
	"gorm.io/gorm"
)

const (
	notFoundMessage  = "reminder not found"
	maxSnoozeMinutes = 7 * 24 * 60
)

type dbClient interface {
	DB() *gorm.DB
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ServiceParams struct {
	DB dbClient
	// BookingOffsets are the lead times of the reminders created for an appointment.
	BookingOffsets []time.Duration
	Now            func() time.Time
}

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

// Classify derives the stored category. An explicit category wins, then a
// display type that names a category, then APPOINTMENT for linked reminders.
func Classify(displayType string, explicit *string, linked bool) (enums.ReminderCategory, error) {
	if explicit != nil && strings.TrimSpace(*explicit) != "" {
		c, ok := enums.MatchReminderCategory(*explicit)
		if !ok {
			return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown reminder category %q", *explicit))
		}
		return c, nil
	}
	if c, ok := enums.MatchReminderCategory(displayType); ok {
		return c, nil
	}
	if linked {
		return enums.ReminderCategoryAppointment, nil
	}
	return enums.ReminderCategoryGeneral, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) (*ListResult, error) {
	r := NewRepository(s.db.DB())
	rows, err := r.List(ctx, f)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reminders")
	}
	active, completed, err := r.Counts(ctx, f.AppointmentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count reminders")
	}
	return &ListResult{Items: FromModels(rows), ActiveCount: active, CompletedCount: completed}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ReminderDTO, error) {
	row, err := load(ctx, NewRepository(s.db.DB()), id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(*row)
	return &dto, nil
}

func (s *Service) Create(ctx context.Context, scope pkgauth.Scope, req CreateReminderRequest) (*ReminderDTO, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message is required")
	}
	if req.RemindAt == nil || req.RemindAt.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "remind_at is required")
	}
	displayType := strings.TrimSpace(req.Type)
	if displayType == "" {
		displayType = DefaultDisplayType
	}
	category, err := Classify(displayType, req.Category, req.AppointmentID != nil)
	if err != nil {
		return nil, err
	}

	row := models.Reminder{
		Message:       message,
		DisplayType:   displayType,
		Category:      category,
		RemindAt:      req.RemindAt.UTC(),
		AppointmentID: req.AppointmentID,
		CreatedBy:     scope.UserID,
	}
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if req.AppointmentID != nil {
			if err := ensureAppointment(ctx, tx, *req.AppointmentID); err != nil {
				return err
			}
		}
		if err := NewRepository(tx).Create(ctx, &row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create reminder")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := FromModel(row)
	return &dto, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateReminderRequest) (*ReminderDTO, error) {
	var out ReminderDTO
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		r := NewRepository(tx)
		current, err := load(ctx, r, id)
		if err != nil {
			return err
		}

		fields := map[string]any{}
		if req.Message != nil {
			message := strings.TrimSpace(*req.Message)
			if message == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "message must not be empty")
			}
			fields["message"] = message
		}
		if req.RemindAt != nil {
			if req.RemindAt.IsZero() {
				return pkgerrors.New(pkgerrors.CodeValidation, "remind_at must not be empty")
			}
			fields["remind_at"] = req.RemindAt.UTC()
		}
		if req.Sent != nil {
			fields["sent"] = *req.Sent
			if *req.Sent {
				fields["sent_at"] = s.now()
			} else {
				fields["sent_at"] = nil
			}
		}

		displayType := current.DisplayType
		if req.Type != nil {
			displayType = strings.TrimSpace(*req.Type)
			if displayType == "" {
				displayType = DefaultDisplayType
			}
			fields["display_type"] = displayType
		}
		linked := current.AppointmentID != nil
		if req.AppointmentID.Set {
			if req.AppointmentID.Value != nil {
				if err := ensureAppointment(ctx, tx, *req.AppointmentID.Value); err != nil {
					return err
				}
			}
			linked = req.AppointmentID.Value != nil
			fields["appointment_id"] = req.AppointmentID.Value
		}
		if req.Type != nil || req.Category != nil || req.AppointmentID.Set {
			category, err := Classify(displayType, req.Category, linked)
			if err != nil {
				return err
			}
			fields["category"] = category
		}

		if len(fields) > 0 {
			fields["updated_at"] = s.now()
			if err := r.UpdateFields(ctx, id, fields); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update reminder")
			}
		}
		updated, err := load(ctx, r, id)
		if err != nil {
			return err
		}
		out = FromModel(*updated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := NewRepository(s.db.DB()).Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete reminder")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
	}
	return nil
}

// Complete marks a reminder done. Completing twice keeps the first timestamp.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*ReminderDTO, error) {
	return s.mutate(ctx, id, func(current *models.Reminder) map[string]any {
		if current.Completed {
			return nil
		}
		now := s.now()
		return map[string]any{"completed": true, "completed_at": now, "updated_at": now}
	})
}

// Snooze moves remind_at to now plus minutes, whatever it was before.
func (s *Service) Snooze(ctx context.Context, id uuid.UUID, minutes int) (*ReminderDTO, error) {
	if minutes < 1 || minutes > maxSnoozeMinutes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("minutes must be between 1 and %d", maxSnoozeMinutes))
	}
	return s.mutate(ctx, id, func(*models.Reminder) map[string]any {
		now := s.now()
		return map[string]any{"remind_at": now.Add(time.Duration(minutes) * time.Minute), "updated_at": now}
	})
}

func (s *Service) mutate(ctx context.Context, id uuid.UUID, change func(*models.Reminder) map[string]any) (*ReminderDTO, error) {
	var out ReminderDTO
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		r := NewRepository(tx)
		current, err := load(ctx, r, id)
		if err != nil {
			return err
		}
		if fields := change(current); len(fields) > 0 {
			if err := r.UpdateFields(ctx, id, fields); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update reminder")
			}
			if current, err = load(ctx, r, id); err != nil {
				return err
			}
		}
		out = FromModel(*current)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateForBooking runs the booking fan-out for an existing appointment.
func (s *Service) CreateForBooking(ctx context.Context, scope pkgauth.Scope, appointmentID uuid.UUID) ([]ReminderDTO, error) {
	var created []models.Reminder
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		var appt models.Appointment
		if err := tx.WithContext(ctx).First(&appt, "id = ?", appointmentID).Error; err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "appointment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load appointment")
		}
		if appt.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("appointment is %s", appt.Status))
		}
		var err error
		created, err = FanOut(ctx, tx, &appt, scope.UserID, s.offsets, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return FromModels(created), nil
}

// FanOut inserts one APPOINTMENT reminder per offset before the appointment
// start. Offsets already in the past, or already scheduled, are skipped.
func FanOut(ctx context.Context, tx *gorm.DB, appt *models.Appointment, createdBy uuid.UUID, offsets []time.Duration, now time.Time) ([]models.Reminder, error) {
	r := NewRepository(tx)
	existing, err := r.ScheduledFor(ctx, appt.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load scheduled reminders")
	}
	var animal models.Animal
	if err := tx.WithContext(ctx).Select("id", "name").First(&animal, "id = ?", appt.AnimalID).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load animal")
	}

	apptID := appt.ID
	rows := make([]*models.Reminder, 0, len(offsets))
	for _, offset := range offsets {
		at := appt.StartTime.Add(-offset).UTC()
		if !at.After(now) || alreadyScheduled(existing, at) {
			continue
		}
		rows = append(rows, &models.Reminder{
			Message:       fmt.Sprintf("Appointment for %s on %s (%s before)", animal.Name, appt.StartTime.UTC().Format("2006-01-02 15:04 MST"), leadTime(offset)),
			DisplayType:   "appointment",
			Category:      enums.ReminderCategoryAppointment,
			RemindAt:      at,
			AppointmentID: &apptID,
			CreatedBy:     createdBy,
		})
	}
	if err := r.Create(ctx, rows...); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create booking reminders")
	}
	out := make([]models.Reminder, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return out, nil
}

func alreadyScheduled(existing []time.Time, at time.Time) bool {
	for _, t := range existing {
		d := t.Sub(at)
		if d < time.Second && d > -time.Second {
			return true
		}
	}
	return false
}

func leadTime(d time.Duration) string {
	switch {
	case d%(24*time.Hour) == 0:
		days := int(d / (24 * time.Hour))
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	case d%time.Hour == 0:
		hours := int(d / time.Hour)
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	default:
		return d.String()
	}
}

func load(ctx context.Context, r *Repository, id uuid.UUID) (*models.Reminder, error) {
	row, err := r.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load reminder")
	}
	return row, nil
}

func ensureAppointment(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	var n int64
	if err := tx.WithContext(ctx).Model(&models.Appointment{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check appointment")
	}
	if n == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "appointment not found")
	}
	return nil
}
