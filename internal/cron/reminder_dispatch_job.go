package cron

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/pkg/db/models"
	"github.com/osteovet/clinic-backend/pkg/logger"
	"github.com/osteovet/clinic-backend/pkg/metrics"
	"github.com/osteovet/clinic-backend/pkg/push"
	"go.uber.org/multierr"
)

const (
	reminderDispatchJobName      = "reminder-dispatch"
	defaultReminderDispatchBatch = 100
)

type dueReminderStore interface {
	Due(ctx context.Context, now time.Time, limit int) ([]models.Reminder, error)
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
}

type ReminderDispatchJobParams struct {
	Logger   *logger.Logger
	Store    dueReminderStore
	Notifier push.Notifier
	Metrics  *metrics.CronJobMetrics
	Batch    int
	Now      func() time.Time
}

// ReminderDispatchJob pushes every due reminder to staff devices and flags it sent.
type ReminderDispatchJob struct {
	logg     *logger.Logger
	store    dueReminderStore
	notifier push.Notifier
	metrics  *metrics.CronJobMetrics
	batch    int
	now      func() time.Time
}

func NewReminderDispatchJob(params ReminderDispatchJobParams) (*ReminderDispatchJob, error) {
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	if params.Store == nil {
		return nil, errors.New("reminder store required")
	}
	if params.Notifier == nil {
		return nil, errors.New("notifier required")
	}
	batch := params.Batch
	if batch <= 0 {
		batch = defaultReminderDispatchBatch
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &ReminderDispatchJob{
		logg:     params.Logger,
		store:    params.Store,
		notifier: params.Notifier,
		metrics:  params.Metrics,
		batch:    batch,
		now:      now,
	}, nil
}

func (j *ReminderDispatchJob) Name() string { return reminderDispatchJobName }

// Run handles at most one batch. A failed push leaves the reminder unsent so
// the next cycle retries it.
func (j *ReminderDispatchJob) Run(ctx context.Context) error {
	now := j.now()
	due, err := j.store.Due(ctx, now, j.batch)
	if err != nil {
		return fmt.Errorf("load due reminders: %w", err)
	}
	if len(due) == 0 {
		return nil
	}

	var (
		errs         error
		sent, failed int
	)
	for i := range due {
		reminder := &due[i]
		if err := j.notifier.Notify(ctx, notificationFor(reminder)); err != nil {
			failed++
			errs = multierr.Append(errs, fmt.Errorf("push reminder %s: %w", reminder.ID, err))
			continue
		}
		marked, err := j.store.MarkSent(ctx, reminder.ID, now)
		if err != nil {
			failed++
			errs = multierr.Append(errs, fmt.Errorf("mark reminder %s sent: %w", reminder.ID, err))
			continue
		}
		if marked {
			sent++
		}
	}

	j.metrics.AddItems(reminderDispatchJobName, "sent", sent)
	j.metrics.AddItems(reminderDispatchJobName, "failed", failed)
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"due":    len(due),
		"sent":   sent,
		"failed": failed,
	}), "reminder dispatch finished")
	return errs
}

func notificationFor(r *models.Reminder) push.Notification {
	data := map[string]string{
		"reminder_id": r.ID.String(),
		"category":    string(r.Category),
		"type":        r.DisplayType,
		"remind_at":   r.RemindAt.UTC().Format(time.RFC3339),
	}
	if r.AppointmentID != nil {
		data["appointment_id"] = r.AppointmentID.String()
	}
	title := "Reminder"
	if t := strings.TrimSpace(r.DisplayType); t != "" && !strings.EqualFold(t, "general") {
		title = "Reminder: " + t
	}
	return push.Notification{Title: title, Body: r.Message, Data: data}
}
