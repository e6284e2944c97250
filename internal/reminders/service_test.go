package reminders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/pkg/auth"
	"github.com/osteovet/clinic-backend/pkg/db"
	"github.com/osteovet/clinic-backend/pkg/db/dbtest"
	"github.com/osteovet/clinic-backend/pkg/db/models"
	"github.com/osteovet/clinic-backend/pkg/enums"
	pkgerrors "github.com/osteovet/clinic-backend/pkg/errors"
	"github.com/osteovet/clinic-backend/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

func strPtr(v string) *string { return &v }

func timePtr(v time.Time) *time.Time { return &v }

func newService(t *testing.T) (*Service, *db.Client, auth.Scope) {
	t.Helper()
	client := dbtest.Open(t)
	svc, err := NewService(ServiceParams{
		DB:             client,
		BookingOffsets: []time.Duration{7 * 24 * time.Hour, 24 * time.Hour, 2 * time.Hour},
		Now:            func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	vet := dbtest.SeedUser(t, client, enums.RolePractitioner, true)
	return svc, client, auth.Scope{UserID: vet.ID, Role: enums.RolePractitioner}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name        string
		displayType string
		explicit    *string
		linked      bool
		want        enums.ReminderCategory
	}{
		{"type names category", "follow-up", nil, false, enums.ReminderCategoryFollowUp},
		{"free text unlinked", "vaccination booster", nil, false, enums.ReminderCategoryGeneral},
		{"free text linked", "vaccination booster", nil, true, enums.ReminderCategoryAppointment},
		{"explicit wins", "call", strPtr("administrative"), false, enums.ReminderCategoryAdministrative},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Classify(tc.displayType, tc.explicit, tc.linked)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
	_, err := Classify("call", strPtr("urgent"), false)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestCreateKeepsDisplayType(t *testing.T) {
	svc, _, staff := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, staff, CreateReminderRequest{
		Message:  "Order more massage oil",
		Type:     "Supplies run",
		RemindAt: timePtr(fixedNow.Add(time.Hour)),
	})
	require.NoError(t, err)
	assert.Equal(t, "Supplies run", created.Type)
	assert.Equal(t, enums.ReminderCategoryGeneral, created.Category)
	assert.Nil(t, created.AppointmentID)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Supplies run", got.Type)

	defaulted, err := svc.Create(ctx, staff, CreateReminderRequest{Message: "x", RemindAt: timePtr(fixedNow)})
	require.NoError(t, err)
	assert.Equal(t, DefaultDisplayType, defaulted.Type)

	_, err = svc.Create(ctx, staff, CreateReminderRequest{Message: "  ", RemindAt: timePtr(fixedNow)})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
	_, err = svc.Create(ctx, staff, CreateReminderRequest{Message: "no date"})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	missing := uuid.New()
	_, err = svc.Create(ctx, staff, CreateReminderRequest{Message: "x", RemindAt: timePtr(fixedNow), AppointmentID: &missing})
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

// Reminders without an appointment live in the same table as booking ones, so a
// fresh service still finds them.
func TestManualReminderSurvivesNewService(t *testing.T) {
	svc, client, staff := newService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, staff, CreateReminderRequest{Message: "call supplier", Type: "call", RemindAt: timePtr(fixedNow)})
	require.NoError(t, err)

	restarted, err := NewService(ServiceParams{DB: client})
	require.NoError(t, err)
	got, err := restarted.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ReminderCategoryCall, got.Category)
}

func TestListOrderingAndCompletion(t *testing.T) {
	svc, _, staff := newService(t)
	ctx := context.Background()

	future, err := svc.Create(ctx, staff, CreateReminderRequest{Message: "future", RemindAt: timePtr(fixedNow.Add(48 * time.Hour))})
	require.NoError(t, err)
	past, err := svc.Create(ctx, staff, CreateReminderRequest{Message: "past", RemindAt: timePtr(fixedNow.Add(-48 * time.Hour))})
	require.NoError(t, err)

	list, err := svc.List(ctx, ListFilter{Status: StatusActive})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, past.ID, list.Items[0].ID)
	assert.Equal(t, future.ID, list.Items[1].ID)

	done, err := svc.Complete(ctx, past.ID)
	require.NoError(t, err)
	assert.True(t, done.Completed)
	require.NotNil(t, done.CompletedAt)

	list, err = svc.List(ctx, ListFilter{Status: StatusActive})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, future.ID, list.Items[0].ID)
	assert.EqualValues(t, 1, list.ActiveCount)
	assert.EqualValues(t, 1, list.CompletedCount)

	completed, err := svc.List(ctx, ListFilter{Status: StatusCompleted})
	require.NoError(t, err)
	require.Len(t, completed.Items, 1)
	assert.Equal(t, past.ID, completed.Items[0].ID)

	all, err := svc.List(ctx, ListFilter{Status: StatusAll})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)
}

func TestSnoozeIgnoresPreviousDueDate(t *testing.T) {
	svc, _, staff := newService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, staff, CreateReminderRequest{Message: "x", RemindAt: timePtr(fixedNow.Add(30 * 24 * time.Hour))})
	require.NoError(t, err)

	snoozed, err := svc.Snooze(ctx, created.ID, 15)
	require.NoError(t, err)
	assert.True(t, snoozed.RemindAt.Equal(fixedNow.Add(15*time.Minute)))
	assert.False(t, snoozed.Sent)
	assert.False(t, snoozed.Completed)

	_, err = svc.Snooze(ctx, created.ID, 0)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
	_, err = svc.Snooze(ctx, created.ID, 10081)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
	_, err = svc.Snooze(ctx, uuid.New(), 5)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestUpdateReclassifies(t *testing.T) {
	svc, client, staff := newService(t)
	ctx := context.Background()
	owner := dbtest.SeedUser(t, client, enums.RoleClient, true)
	appt := dbtest.SeedAppointment(t, client, dbtest.SeedAnimal(t, client, owner.ID, "Rex"), fixedNow.Add(72*time.Hour), enums.AppointmentStatusScheduled)

	created, err := svc.Create(ctx, staff, CreateReminderRequest{Message: "x", Type: "prep room", RemindAt: timePtr(fixedNow)})
	require.NoError(t, err)
	assert.Equal(t, enums.ReminderCategoryGeneral, created.Category)

	linked, err := svc.Update(ctx, created.ID, UpdateReminderRequest{AppointmentID: types.NullableUUID{Set: true, Value: &appt.ID}})
	require.NoError(t, err)
	assert.Equal(t, enums.ReminderCategoryAppointment, linked.Category)
	assert.Equal(t, "prep room", linked.Type)

	unlinked, err := svc.Update(ctx, created.ID, UpdateReminderRequest{AppointmentID: types.NullableUUID{Set: true}, Type: strPtr("Follow up")})
	require.NoError(t, err)
	assert.Nil(t, unlinked.AppointmentID)
	assert.Equal(t, enums.ReminderCategoryFollowUp, unlinked.Category)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(svc.Delete(ctx, created.ID)))
}

func TestBookingFanOut(t *testing.T) {
	svc, client, staff := newService(t)
	ctx := context.Background()
	owner := dbtest.SeedUser(t, client, enums.RoleClient, true)
	rex := dbtest.SeedAnimal(t, client, owner.ID, "Rex")

	soon := dbtest.SeedAppointment(t, client, rex, fixedNow.Add(30*time.Hour), enums.AppointmentStatusScheduled)
	created, err := svc.CreateForBooking(ctx, staff, soon.ID)
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.True(t, created[0].RemindAt.Equal(soon.StartTime.Add(-24*time.Hour)))
	assert.True(t, created[1].RemindAt.Equal(soon.StartTime.Add(-2*time.Hour)))
	for _, r := range created {
		assert.Equal(t, enums.ReminderCategoryAppointment, r.Category)
		assert.Contains(t, r.Message, "Rex")
	}

	again, err := svc.CreateForBooking(ctx, staff, soon.ID)
	require.NoError(t, err)
	assert.Empty(t, again)

	var total int64
	require.NoError(t, client.DB().Model(&models.Reminder{}).Where("appointment_id = ?", soon.ID).Count(&total).Error)
	assert.EqualValues(t, 2, total)

	done := dbtest.SeedAppointment(t, client, rex, fixedNow.Add(-time.Hour), enums.AppointmentStatusCompleted)
	_, err = svc.CreateForBooking(ctx, staff, done.ID)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))

	_, err = svc.CreateForBooking(ctx, staff, uuid.New())
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestDueAndMarkSent(t *testing.T) {
	_, client, staff := newService(t)
	ctx := context.Background()
	r := NewRepository(client.DB())
	due := &models.Reminder{Message: "due", DisplayType: "general", Category: enums.ReminderCategoryGeneral, RemindAt: fixedNow.Add(-time.Minute), CreatedBy: staff.UserID}
	later := &models.Reminder{Message: "later", DisplayType: "general", Category: enums.ReminderCategoryGeneral, RemindAt: fixedNow.Add(time.Hour), CreatedBy: staff.UserID}
	require.NoError(t, r.Create(ctx, due, later))

	rows, err := r.Due(ctx, fixedNow, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, due.ID, rows[0].ID)

	ok, err := r.MarkSent(ctx, due.ID, fixedNow)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = r.MarkSent(ctx, due.ID, fixedNow)
	require.NoError(t, err)
	assert.False(t, ok)

	rows, err = r.Due(ctx, fixedNow, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
