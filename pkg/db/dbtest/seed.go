package dbtest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/pkg/db"
	"github.com/osteovet/clinic-backend/pkg/db/models"
	"github.com/osteovet/clinic-backend/pkg/enums"
)

// SeedUser inserts a user with the given role. Clients are created unvalidated
// unless validated is true; staff are always validated.
func SeedUser(t testing.TB, client *db.Client, role enums.Role, validated bool) models.User {
	t.Helper()
	id := uuid.New()
	user := models.User{
		ID:           id,
		Email:        strings.ToLower(fmt.Sprintf("%s-%s@example.test", role, id.String()[:8])),
		PasswordHash: "unused",
		FirstName:    "Test",
		LastName:     string(role),
		Role:         role,
		Validated:    validated || role.IsStaff(),
	}
	if err := client.DB().Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

// SeedAnimal inserts an animal owned by ownerID.
func SeedAnimal(t testing.TB, client *db.Client, ownerID uuid.UUID, name string) models.Animal {
	t.Helper()
	animal := models.Animal{
		OwnerID: ownerID,
		Name:    name,
		Species: "dog",
		Breed:   "Labrador",
		Age:     4,
		Gender:  enums.AnimalGenderMale,
	}
	if err := client.DB().Create(&animal).Error; err != nil {
		t.Fatalf("seed animal: %v", err)
	}
	return animal
}

// SeedAppointment inserts an appointment for animal in the given status.
func SeedAppointment(t testing.TB, client *db.Client, animal models.Animal, start time.Time, status enums.AppointmentStatus) models.Appointment {
	t.Helper()
	appt := models.Appointment{
		ClientID:  animal.OwnerID,
		AnimalID:  animal.ID,
		StartTime: start.UTC(),
		EndTime:   start.UTC().Add(time.Hour),
		Status:    status,
	}
	if status == enums.AppointmentStatusCancelled {
		kind := enums.CancellationKindStaff
		appt.CancellationKind = &kind
	}
	if err := client.DB().Create(&appt).Error; err != nil {
		t.Fatalf("seed appointment: %v", err)
	}
	return appt
}
