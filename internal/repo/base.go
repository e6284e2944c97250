package repo

import (
	"context"
	"fmt"

	"github.com/osteovet/clinic-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Base is embedded by every domain repository.
type Base struct {
	db *gorm.DB
}

// NewBase wraps a connection or an open transaction.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the handle bound to ctx (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Count returns how many rows of model match the condition.
func (b Base) Count(ctx context.Context, model any, query string, args ...any) (int64, error) {
	var n int64
	if err := b.DB(ctx).Model(model).Where(query, args...).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// KeysetDesc orders by (created_at, id) newest first and, when cursor is set,
// keeps only rows strictly after it in that order.
func KeysetDesc(q *gorm.DB, table string, cursor *pagination.Cursor) *gorm.DB {
	createdAt := fmt.Sprintf("%s.created_at", table)
	id := fmt.Sprintf("%s.id", table)
	if cursor != nil {
		q = q.Where(
			fmt.Sprintf("(%s < ?) OR (%s = ? AND %s < ?)", createdAt, createdAt, id),
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}
	return q.Order(createdAt + " DESC").Order(id + " DESC")
}
