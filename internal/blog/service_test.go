package blog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/pkg/auth"
	"github.com/osteovet/clinic-backend/pkg/db/dbtest"
	"github.com/osteovet/clinic-backend/pkg/db/models"
	"github.com/osteovet/clinic-backend/pkg/enums"
	pkgerrors "github.com/osteovet/clinic-backend/pkg/errors"
	"github.com/osteovet/clinic-backend/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(v string) *string { return &v }

func TestDraftPublishLifecycle(t *testing.T) {
	client := dbtest.Open(t)
	svc, err := NewService(client)
	require.NoError(t, err)
	ctx := context.Background()
	vet := dbtest.SeedUser(t, client, enums.RolePractitioner, true)
	staff := auth.Scope{UserID: vet.ID, Role: enums.RolePractitioner}

	draft, err := svc.Create(ctx, staff, CreatePostRequest{
		Title:   "Ostéopathie équine : premiers pas",
		TitleFR: "Ostéopathie équine : premiers pas",
		Content: "body",
	})
	require.NoError(t, err)
	assert.Equal(t, "osteopathie-equine-premiers-pas", draft.Slug)
	assert.False(t, draft.Published)
	assert.Nil(t, draft.PublishedAt)

	_, err = svc.GetPublished(ctx, draft.Slug)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	_, err = svc.Create(ctx, staff, CreatePostRequest{Slug: "Osteopathie Equine Premiers Pas", Title: "Other", Content: "x"})
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
	_, err = svc.Create(ctx, staff, CreatePostRequest{Title: "!!!", Content: "x"})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	published, err := svc.SetPublished(ctx, staff, draft.ID, true)
	require.NoError(t, err)
	require.NotNil(t, published.PublishedAt)
	firstPublished := *published.PublishedAt

	got, err := svc.GetPublished(ctx, "OSTEOPATHIE-EQUINE-PREMIERS-PAS")
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.ID)

	_, err = svc.SetPublished(ctx, staff, draft.ID, false)
	require.NoError(t, err)
	again, err := svc.SetPublished(ctx, staff, draft.ID, true)
	require.NoError(t, err)
	assert.True(t, again.PublishedAt.Equal(firstPublished))

	var audits int64
	require.NoError(t, client.DB().Model(&models.AuditLog{}).Where("action = ?", enums.AuditActionBlogPostPublished).Count(&audits).Error)
	assert.EqualValues(t, 2, audits)

	require.NoError(t, svc.Delete(ctx, draft.ID))
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(svc.Delete(ctx, draft.ID)))
}

func TestListAndUpdate(t *testing.T) {
	client := dbtest.Open(t)
	svc, err := NewService(client)
	require.NoError(t, err)
	ctx := context.Background()
	vet := dbtest.SeedUser(t, client, enums.RolePractitioner, true)
	staff := auth.Scope{UserID: vet.ID, Role: enums.RolePractitioner}

	var ids []uuid.UUID
	for _, title := range []string{"One", "Two", "Three"} {
		post, err := svc.Create(ctx, staff, CreatePostRequest{Title: title, Content: "c", Published: true})
		require.NoError(t, err)
		ids = append(ids, post.ID)
	}
	_, err = svc.Create(ctx, staff, CreatePostRequest{Title: "Draft", Content: "c"})
	require.NoError(t, err)

	page, err := svc.ListPublished(ctx, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.NotEmpty(t, page.NextCursor)

	rest, err := svc.ListPublished(ctx, pagination.Params{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, rest.Items, 1)
	assert.Empty(t, rest.NextCursor)

	seen := map[uuid.UUID]bool{}
	for _, p := range append(page.Items, rest.Items...) {
		seen[p.ID] = true
	}
	for _, id := range ids {
		assert.True(t, seen[id])
	}

	all, err := svc.ListAll(ctx, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 4)

	_, err = svc.ListAll(ctx, pagination.Params{Cursor: "%%%"})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	updated, err := svc.Update(ctx, staff, ids[0], UpdatePostRequest{Slug: strPtr("Renamed Post"), ContentFR: strPtr("contenu")})
	require.NoError(t, err)
	assert.Equal(t, "renamed-post", updated.Slug)
	assert.Equal(t, "contenu", updated.ContentFR)

	_, err = svc.Update(ctx, staff, ids[1], UpdatePostRequest{Slug: strPtr("renamed-post")})
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
	_, err = svc.Update(ctx, staff, uuid.New(), UpdatePostRequest{Title: strPtr("x")})
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}
