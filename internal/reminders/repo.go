package reminders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/internal/repo"
	"github.com/osteovet/clinic-backend/pkg/db/models"
	"gorm.io/gorm"
)

type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, rows ...*models.Reminder) error {
	if len(rows) == 0 {
		return nil
	}
	return r.DB(ctx).Create(rows).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Reminder, error) {
	var row models.Reminder
	if err := r.DB(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// List returns reminders by ascending due date.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]models.Reminder, error) {
	q := r.scoped(ctx, f.AppointmentID)
	switch f.Status {
	case StatusCompleted:
		q = q.Where("completed = ?", true)
	case StatusAll:
	default:
		q = q.Where("completed = ?", false)
	}
	var rows []models.Reminder
	err := q.Order("remind_at ASC").Order("id ASC").Find(&rows).Error
	return rows, err
}

// Counts returns how many active and completed reminders match appointmentID.
func (r *Repository) Counts(ctx context.Context, appointmentID *uuid.UUID) (active, completed int64, err error) {
	type row struct {
		Completed bool
		N         int64
	}
	var rows []row
	err = r.scoped(ctx, appointmentID).
		Select("completed, COUNT(*) AS n").
		Group("completed").
		Scan(&rows).Error
	if err != nil {
		return 0, 0, err
	}
	for _, rw := range rows {
		if rw.Completed {
			completed = rw.N
		} else {
			active = rw.N
		}
	}
	return active, completed, nil
}

// ScheduledFor lists the remind_at values already set for an appointment.
func (r *Repository) ScheduledFor(ctx context.Context, appointmentID uuid.UUID) ([]time.Time, error) {
	var times []time.Time
	err := r.DB(ctx).Model(&models.Reminder{}).
		Where("appointment_id = ?", appointmentID).
		Pluck("remind_at", &times).Error
	return times, err
}

func (r *Repository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.DB(ctx).Model(&models.Reminder{}).Where("id = ?", id).Updates(fields).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB(ctx).Delete(&models.Reminder{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

// Due returns up to limit reminders whose time has come and that were neither
// pushed nor completed, oldest first.
func (r *Repository) Due(ctx context.Context, now time.Time, limit int) ([]models.Reminder, error) {
	var rows []models.Reminder
	err := r.DB(ctx).
		Where("remind_at <= ? AND sent = ? AND completed = ?", now, false, false).
		Order("remind_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// MarkSent flags one reminder as pushed unless someone already did.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res := r.DB(ctx).Model(&models.Reminder{}).
		Where("id = ? AND sent = ?", id, false).
		Updates(map[string]any{"sent": true, "sent_at": at, "updated_at": at})
	return res.RowsAffected == 1, res.Error
}

func (r *Repository) scoped(ctx context.Context, appointmentID *uuid.UUID) *gorm.DB {
	q := r.DB(ctx).Model(&models.Reminder{})
	if appointmentID != nil {
		q = q.Where("appointment_id = ?", *appointmentID)
	}
	return q
}
