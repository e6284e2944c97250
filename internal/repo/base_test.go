package repo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/pkg/db/dbtest"
	"github.com/osteovet/clinic-backend/pkg/db/models"
	"github.com/osteovet/clinic-backend/pkg/pagination"
	"github.com/stretchr/testify/require"
)

func TestBaseDBBindsContext(t *testing.T) {
	conn := dbtest.Open(t).DB()
	base := NewBase(conn)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	withCtx := base.DB(ctx)
	require.NotNil(t, withCtx.Statement)
	require.Equal(t, ctx, withCtx.Statement.Context)

	require.Same(t, conn, base.DB(nil))
}

func TestCountAndKeyset(t *testing.T) {
	conn := dbtest.Open(t).DB()
	ctx := context.Background()
	base := NewBase(conn)

	base0 := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	var logs []models.AuditLog
	for i := 0; i < 3; i++ {
		entry := models.AuditLog{ID: uuid.New(), Action: "USER_UPDATED", CreatedAt: base0.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, conn.Create(&entry).Error)
		logs = append(logs, entry)
	}

	n, err := base.Count(ctx, &models.AuditLog{}, "action = ?", "USER_UPDATED")
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	var page []models.AuditLog
	require.NoError(t, KeysetDesc(base.DB(ctx).Model(&models.AuditLog{}), "audit_logs", nil).Limit(2).Find(&page).Error)
	require.Len(t, page, 2)
	require.Equal(t, logs[2].ID, page[0].ID)

	cursor := &pagination.Cursor{CreatedAt: page[1].CreatedAt, ID: page[1].ID}
	var rest []models.AuditLog
	require.NoError(t, KeysetDesc(base.DB(ctx).Model(&models.AuditLog{}), "audit_logs", cursor).Find(&rest).Error)
	require.Len(t, rest, 1)
	require.Equal(t, logs[0].ID, rest[0].ID)
}
