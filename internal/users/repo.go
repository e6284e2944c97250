package users

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/internal/repo"
	"github.com/osteovet/clinic-backend/pkg/db/models"
	"github.com/osteovet/clinic-backend/pkg/enums"
	"github.com/osteovet/clinic-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository exposes user persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.DB(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail retrieves the user matching the (already normalized) email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDs loads every user whose id is listed.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	var rows []models.User
	if len(ids) == 0 {
		return rows, nil
	}
	if err := r.DB(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateLastLogin refreshes last_login_at.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// UpdateFields applies the column changes and returns the rows affected.
func (r *Repository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (int64, error) {
	res := r.DB(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	return res.RowsAffected, res.Error
}

// MarkValidated flips a pending client to validated. It only touches rows that
// are still CLIENT and unvalidated, so concurrent callers cannot both win.
func (r *Repository) MarkValidated(ctx context.Context, id, actorID uuid.UUID, at time.Time) (bool, error) {
	res := r.DB(ctx).
		Model(&models.User{}).
		Where("id = ? AND role = ? AND validated = ?", id, enums.RoleClient, false).
		Updates(map[string]any{
			"validated":    true,
			"validated_at": at,
			"validated_by": actorID,
			"updated_at":   at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Delete removes the user row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB(ctx).Delete(&models.User{}, "id = ?", id)
	return res.RowsAffected == 1, res.Error
}

// Dependencies counts rows that reference the user and block deletion.
func (r *Repository) Dependencies(ctx context.Context, id uuid.UUID) (map[string]int64, error) {
	checks := []struct {
		name  string
		model any
		where string
	}{
		{"animals", &models.Animal{}, "owner_id = ?"},
		{"appointments", &models.Appointment{}, "client_id = ?"},
		{"treatment_notes", &models.TreatmentNote{}, "author_id = ?"},
		{"reminders", &models.Reminder{}, "created_by = ?"},
		{"blog_posts", &models.BlogPost{}, "author_id = ?"},
	}
	out := map[string]int64{}
	for _, c := range checks {
		n, err := r.Count(ctx, c.model, c.where, id)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			out[c.name] = n
		}
	}
	return out, nil
}

// DeleteTodos removes the user's private todos.
func (r *Repository) DeleteTodos(ctx context.Context, ownerID uuid.UUID) error {
	return r.DB(ctx).Where("owner_id = ?", ownerID).Delete(&models.Todo{}).Error
}

// ListClients pages through CLIENT accounts newest first.
func (r *Repository) ListClients(ctx context.Context, f ClientFilter, params pagination.Params) ([]models.User, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	q := r.DB(ctx).Model(&models.User{}).Where("role = ?", enums.RoleClient)
	if f.Validated != nil {
		q = q.Where("validated = ?", *f.Validated)
	}
	var rows []models.User
	if err := repo.KeysetDesc(q, "users", cursor).Limit(pagination.LimitWithBuffer(params.Limit)).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// PendingClients returns unvalidated clients, oldest registration first.
func (r *Repository) PendingClients(ctx context.Context) ([]models.User, error) {
	var rows []models.User
	err := r.DB(ctx).
		Where("role = ? AND validated = ?", enums.RoleClient, false).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// Search matches names, email and phone case-insensitively.
func (r *Repository) Search(ctx context.Context, term string, limit int) ([]models.User, error) {
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	var rows []models.User
	err := r.DB(ctx).
		Where(
			"LOWER(first_name) LIKE ? ESCAPE '\\' OR LOWER(last_name) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\' OR LOWER(COALESCE(phone, '')) LIKE ? ESCAPE '\\'",
			pattern, pattern, pattern, pattern,
		).
		Order("last_name ASC").
		Order("first_name ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}
