package booking

import (
	"context"
	"testing"
	"time"

	"github.com/osteovet/clinic-backend/internal/animals"
	"github.com/osteovet/clinic-backend/pkg/auth"
	"github.com/osteovet/clinic-backend/pkg/db"
	"github.com/osteovet/clinic-backend/pkg/db/dbtest"
	"github.com/osteovet/clinic-backend/pkg/db/models"
	"github.com/osteovet/clinic-backend/pkg/enums"
	pkgerrors "github.com/osteovet/clinic-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*Service, *db.Client) {
	t.Helper()
	client := dbtest.Open(t)
	svc, err := NewService(ServiceParams{
		DB:             client,
		BookingOffsets: []time.Duration{24 * time.Hour, 2 * time.Hour},
		Now:            func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return svc, client
}

func countRows(t *testing.T, client *db.Client, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, client.DB().Model(model).Count(&n).Error)
	return n
}

func newAnimal() *animals.CreateAnimalRequest {
	age := 3
	return &animals.CreateAnimalRequest{Name: "Rex", Breed: "Labrador", Age: &age, Gender: "male"}
}

func TestBookWithNewAnimalAndReminders(t *testing.T) {
	svc, client := newService(t)
	ctx := context.Background()
	owner := dbtest.SeedUser(t, client, enums.RoleClient, true)
	scope := auth.Scope{UserID: owner.ID, Role: enums.RoleClient}

	out, err := svc.Book(ctx, scope, BookingRequest{
		Animal:        newAnimal(),
		StartTime:     fixedNow.Add(72 * time.Hour),
		WithReminders: true,
	})
	require.NoError(t, err)
	assert.True(t, out.AnimalIsNew)
	assert.Equal(t, owner.ID, out.Animal.OwnerID)
	assert.Equal(t, out.Animal.ID, out.Appointment.AnimalID)
	assert.Equal(t, enums.AppointmentStatusScheduled, out.Appointment.Status)
	assert.Len(t, out.Reminders, 2)

	var audit models.AuditLog
	require.NoError(t, client.DB().First(&audit, "action = ?", enums.AuditActionBookingCreated).Error)
	require.NotNil(t, audit.EntityID)
	assert.Equal(t, out.Appointment.ID, *audit.EntityID)
}

func TestBookRollsBackOnFailure(t *testing.T) {
	svc, client := newService(t)
	ctx := context.Background()
	owner := dbtest.SeedUser(t, client, enums.RoleClient, true)
	scope := auth.Scope{UserID: owner.ID, Role: enums.RoleClient}

	start := fixedNow.Add(72 * time.Hour)
	badEnd := start.Add(-time.Hour)
	_, err := svc.Book(ctx, scope, BookingRequest{Animal: newAnimal(), StartTime: start, EndTime: &badEnd, WithReminders: true})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	assert.Zero(t, countRows(t, client, &models.Animal{}))
	assert.Zero(t, countRows(t, client, &models.Appointment{}))
	assert.Zero(t, countRows(t, client, &models.Reminder{}))
	assert.Zero(t, countRows(t, client, &models.AuditLog{}))
}

func TestBookExistingAnimal(t *testing.T) {
	svc, client := newService(t)
	ctx := context.Background()
	owner := dbtest.SeedUser(t, client, enums.RoleClient, true)
	other := dbtest.SeedUser(t, client, enums.RoleClient, true)
	vet := dbtest.SeedUser(t, client, enums.RolePractitioner, true)
	rex := dbtest.SeedAnimal(t, client, owner.ID, "Rex")

	out, err := svc.Book(ctx, auth.Scope{UserID: owner.ID, Role: enums.RoleClient}, BookingRequest{AnimalID: &rex.ID, StartTime: fixedNow.Add(time.Hour)})
	require.NoError(t, err)
	assert.False(t, out.AnimalIsNew)
	assert.Empty(t, out.Reminders)

	_, err = svc.Book(ctx, auth.Scope{UserID: other.ID, Role: enums.RoleClient}, BookingRequest{AnimalID: &rex.ID, StartTime: fixedNow.Add(time.Hour)})
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	staff := auth.Scope{UserID: vet.ID, Role: enums.RolePractitioner}
	_, err = svc.Book(ctx, staff, BookingRequest{AnimalID: &rex.ID, ClientID: &other.ID, StartTime: fixedNow.Add(time.Hour)})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	forOther, err := svc.Book(ctx, staff, BookingRequest{Animal: newAnimal(), ClientID: &other.ID, StartTime: fixedNow.Add(time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, other.ID, forOther.Appointment.ClientID)

	_, err = svc.Book(ctx, staff, BookingRequest{StartTime: fixedNow})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
	_, err = svc.Book(ctx, staff, BookingRequest{AnimalID: &rex.ID, Animal: newAnimal(), StartTime: fixedNow})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}
