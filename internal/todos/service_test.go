package todos

import (
	"context"
	"testing"
	"time"

	"github.com/osteovet/clinic-backend/pkg/auth"
	"github.com/osteovet/clinic-backend/pkg/db/dbtest"
	"github.com/osteovet/clinic-backend/pkg/enums"
	pkgerrors "github.com/osteovet/clinic-backend/pkg/errors"
	"github.com/osteovet/clinic-backend/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTodoOrderingAndToggle(t *testing.T) {
	client := dbtest.Open(t)
	svc, err := NewService(client)
	require.NoError(t, err)
	ctx := context.Background()

	vet := dbtest.SeedUser(t, client, enums.RolePractitioner, true)
	admin := dbtest.SeedUser(t, client, enums.RoleAdmin, true)
	me := auth.Scope{UserID: vet.ID, Role: enums.RolePractitioner}
	boss := auth.Scope{UserID: admin.ID, Role: enums.RoleAdmin}

	tomorrow := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
	nextWeek := tomorrow.Add(6 * 24 * time.Hour)

	undated, err := svc.Create(ctx, me, CreateTodoRequest{Task: "tidy room"})
	require.NoError(t, err)
	assert.Equal(t, enums.TodoPriorityMedium, undated.Priority)
	low, err := svc.Create(ctx, me, CreateTodoRequest{Task: "order towels", Priority: "low", DueDate: &tomorrow})
	require.NoError(t, err)
	high, err := svc.Create(ctx, me, CreateTodoRequest{Task: "call lab", Priority: "HIGH", DueDate: &tomorrow})
	require.NoError(t, err)
	later, err := svc.Create(ctx, me, CreateTodoRequest{Task: "invoices", Priority: "HIGH", DueDate: &nextWeek})
	require.NoError(t, err)
	_, err = svc.Create(ctx, boss, CreateTodoRequest{Task: "payroll"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, me, CreateTodoRequest{Task: "x", Priority: "urgent"})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = svc.Toggle(ctx, me, high.ID)
	require.NoError(t, err)

	list, err := svc.List(ctx, me, ListFilter{OwnerID: &vet.ID})
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, low.ID, list[0].ID)
	assert.Equal(t, later.ID, list[1].ID)
	assert.Equal(t, undated.ID, list[2].ID)
	assert.Equal(t, high.ID, list[3].ID)
	assert.True(t, list[3].Completed)
	assert.NotNil(t, list[3].CompletedAt)

	open := false
	pending, err := svc.List(ctx, me, ListFilter{OwnerID: &vet.ID, Completed: &open})
	require.NoError(t, err)
	assert.Len(t, pending, 3)

	everyone, err := svc.List(ctx, boss, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, everyone, 5)

	reopened, err := svc.Toggle(ctx, me, high.ID)
	require.NoError(t, err)
	assert.False(t, reopened.Completed)
	assert.Nil(t, reopened.CompletedAt)
}

func TestTodoOwnership(t *testing.T) {
	client := dbtest.Open(t)
	svc, err := NewService(client)
	require.NoError(t, err)
	ctx := context.Background()

	alice := dbtest.SeedUser(t, client, enums.RoleClient, true)
	bob := dbtest.SeedUser(t, client, enums.RoleClient, true)
	aliceScope := auth.Scope{UserID: alice.ID, Role: enums.RoleClient}
	bobScope := auth.Scope{UserID: bob.ID, Role: enums.RoleClient}

	todo, err := svc.Create(ctx, aliceScope, CreateTodoRequest{Task: "buy harness"})
	require.NoError(t, err)

	mine, err := svc.List(ctx, bobScope, ListFilter{OwnerID: &alice.ID})
	require.NoError(t, err)
	assert.Empty(t, mine)

	_, err = svc.Toggle(ctx, bobScope, todo.ID)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(svc.Delete(ctx, bobScope, todo.ID)))

	due := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	task := "buy harness (M)"
	updated, err := svc.Update(ctx, aliceScope, todo.ID, UpdateTodoRequest{Task: &task, DueDate: types.NullableTime{Set: true, Value: &due}})
	require.NoError(t, err)
	assert.Equal(t, task, updated.Task)
	require.NotNil(t, updated.DueDate)

	cleared, err := svc.Update(ctx, aliceScope, todo.ID, UpdateTodoRequest{DueDate: types.NullableTime{Set: true}})
	require.NoError(t, err)
	assert.Nil(t, cleared.DueDate)

	require.NoError(t, svc.Delete(ctx, aliceScope, todo.ID))
	_, err = svc.Toggle(ctx, aliceScope, todo.ID)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}
